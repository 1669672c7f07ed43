package common

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	idemPending = "pending"
	// CodeIdempotentReplay is returned while the first request with a key is still running.
	CodeIdempotentReplay = "IDEMPOTENT_REPLAY"
)

// Idem provides an Idempotency-Key middleware backed by Redis. The first
// request with a key runs; later requests get the stored response back.
type Idem struct {
	R   *redis.Client
	TTL time.Duration
}

type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

func idemKey(r *http.Request, header string) string {
	sum := sha256.Sum256([]byte(r.Method + " " + r.URL.Path + " " + header))
	return "idem:" + hex.EncodeToString(sum[:])
}

// Middleware enforces idempotency semantics for write endpoints.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Idempotency-Key")
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		key := idemKey(r, header)
		ok, err := i.R.SetNX(ctx, key, idemPending, i.TTL).Result()
		if err != nil {
			JSONError(w, http.StatusInternalServerError, CodeInternal, "idempotency store error", nil)
			return
		}
		if !ok {
			i.replay(w, r, key)
			return
		}

		rec := &bodyRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// Failed requests release the key so the client can retry.
		if rec.status >= http.StatusInternalServerError || !json.Valid(rec.buf.Bytes()) {
			_ = i.R.Del(ctx, key).Err()
			return
		}
		payload, err := json.Marshal(storedResponse{Status: rec.status, Body: rec.buf.Bytes()})
		if err != nil {
			return
		}
		_ = i.R.Set(ctx, key, payload, i.TTL).Err()
	})
}

func (i Idem) replay(w http.ResponseWriter, r *http.Request, key string) {
	raw, err := i.R.Get(r.Context(), key).Bytes()
	if err != nil || string(raw) == idemPending {
		JSONError(w, http.StatusConflict, CodeIdempotentReplay, "duplicate request in progress", nil)
		return
	}
	var stored storedResponse
	if err := json.Unmarshal(raw, &stored); err != nil {
		JSONError(w, http.StatusConflict, CodeIdempotentReplay, "duplicate request", nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}

type bodyRecorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (b *bodyRecorder) WriteHeader(code int) {
	b.status = code
	b.ResponseWriter.WriteHeader(code)
}

func (b *bodyRecorder) Write(p []byte) (int, error) {
	b.buf.Write(p)
	return b.ResponseWriter.Write(p)
}
