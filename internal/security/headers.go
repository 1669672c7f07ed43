package security

import (
	"fmt"
	"net/http"
)

const defaultHSTSMaxAge = 365 * 24 * 60 * 60

// Headers adds hardening headers suited to a JSON-only API.
type Headers struct {
	Enable                bool
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
}

// Middleware sets the headers before next runs. Responses carry live stock
// and rates, so they are marked no-store. HSTS is only sent over TLS.
func (h Headers) Middleware(next http.Handler) http.Handler {
	if !h.Enable {
		return next
	}
	static := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "no-referrer",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
		"Cache-Control":           "no-store",
	}
	hsts := h.hstsValue()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out := w.Header()
		for k, v := range static {
			out.Set(k, v)
		}
		if hsts != "" && r.TLS != nil {
			out.Set("Strict-Transport-Security", hsts)
		}
		next.ServeHTTP(w, r)
	})
}

func (h Headers) hstsValue() string {
	if !h.EnableHSTS {
		return ""
	}
	maxAge := h.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = defaultHSTSMaxAge
	}
	v := fmt.Sprintf("max-age=%d", maxAge)
	if h.HSTSIncludeSubdomains {
		v += "; includeSubDomains"
	}
	return v
}
