package middleware

import "net/http"

// CORSMiddleware answers cross-origin requests for the browser clients. An
// origin is reflected back only when the allowlist carries it verbatim, so
// the scheme and host must match exactly; "*" in the allowlist opens the
// surface to every origin.
type CORSMiddleware struct {
	allowedOrigins map[string]struct{}
	allowAll       bool
}

// NewCORSMiddleware builds the middleware from the configured origin list.
func NewCORSMiddleware(allowedOrigins []string) *CORSMiddleware {
	m := &CORSMiddleware{allowedOrigins: make(map[string]struct{}, len(allowedOrigins))}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			m.allowAll = true
			continue
		}
		m.allowedOrigins[origin] = struct{}{}
	}
	return m
}

// Handler wraps next with the CORS headers and answers preflight requests
// with 204 before they reach the router.
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && m.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Trace-ID")
			w.Header().Set("Access-Control-Expose-Headers", "X-Trace-ID")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *CORSMiddleware) originAllowed(origin string) bool {
	if m.allowAll {
		return true
	}
	_, ok := m.allowedOrigins[origin]
	return ok
}
