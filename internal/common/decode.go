package common

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DecodeJSON reads a single JSON document from the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return NewAppError(CodeBadRequest, "request body is required", http.StatusBadRequest, err)
		}
		return NewAppError(CodeBadRequest, "invalid JSON payload", http.StatusBadRequest, err)
	}
	return nil
}

// ParseUUID parses an identifier taken from a path or payload.
func ParseUUID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		e := Validation(field+" must be a valid id", map[string]string{field: "invalid id"})
		e.Err = err
		return uuid.Nil, e
	}
	return id, nil
}

// QueryLimit reads ?limit= as a page size. Missing, malformed or out of
// range values fall back to def.
func QueryLimit(r *http.Request, def, max int) int {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > max {
		return def
	}
	return n
}
