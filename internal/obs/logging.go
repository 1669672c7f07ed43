package obs

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// NewLogger builds the process logger. format "console" (or "text") gives
// human-readable output; anything else is JSON. Unknown levels mean info.
func NewLogger(format, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out io.Writer = os.Stdout
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "console", "text":
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

// RequestLogger writes one "http_request" line per request and installs a
// request-scoped logger (carrying request_id) that handlers fetch with
// zerolog.Ctx.
type RequestLogger struct {
	Logger zerolog.Logger
}

// Middleware implements the access log.
func (l RequestLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := middleware.GetReqID(r.Context())
		scoped := l.Logger.With().Str("request_id", reqID).Logger()
		r = r.WithContext(scoped.WithContext(r.Context()))

		recorder := NewStatusRecorder(w)
		next.ServeHTTP(recorder, r)

		evt := l.Logger.Info()
		if recorder.Status() >= http.StatusInternalServerError {
			evt = l.Logger.Error()
		}
		evt = evt.
			Str("request_id", reqID).
			Str("method", r.Method).
			Str("route", routeOf(r, r.URL.Path)).
			Str("path", r.URL.Path).
			Int("status", recorder.Status()).
			Int64("bytes", recorder.BytesWritten()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("remote_addr", r.RemoteAddr)
		if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
			evt = evt.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
		}
		if key := strings.TrimSpace(r.Header.Get("Idempotency-Key")); key != "" {
			evt = evt.Str("idempotency_key", key)
		}
		if ua := r.UserAgent(); ua != "" {
			evt = evt.Str("user_agent", ua)
		}
		evt.Msg("http_request")
	})
}
