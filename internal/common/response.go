package common

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorBody represents a consistent error payload returned by the API.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes the provided value to the response writer as JSON.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError renders an error response using the canonical error shape.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{
		"error": ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteError maps err onto the canonical error shape. Anything that is not an
// AppError becomes a 500 without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		JSONError(w, http.StatusInternalServerError, CodeInternal, "internal error", nil)
		return
	}
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	code := appErr.Code
	if code == "" {
		code = CodeInternal
	}
	message := appErr.Message
	if message == "" {
		message = "internal error"
	}
	details := appErr.Details
	if appErr.Err != nil && details == nil {
		var syntaxErr *json.SyntaxError
		if errors.As(appErr.Err, &syntaxErr) {
			details = map[string]any{"offset": syntaxErr.Offset}
		}
	}
	JSONError(w, status, code, message, details)
}
