package restapi

import (
	"net/http"
)

type header struct{ name, value string }

var securityHeaderSet = []header{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Strict-Transport-Security", "max-age=31536000; includeSubDomains"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none';"},
}

// Map clients run in the browser on another origin and create, steer and
// delete sessions from there.
var corsHeaderSet = []header{
	{"Access-Control-Allow-Origin", "*"},
	{"Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS"},
	{"Access-Control-Allow-Headers", "Content-Type, Authorization"},
	{"Access-Control-Max-Age", "86400"},
}

func (api *RestAPI) WithSecurityHeaders(handler http.Handler) http.Handler {
	return securityHeaders(handler)
}

// securityHeaders sets the fixed response headers, adds CORS headers for
// cross-origin requests and answers preflight requests itself.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, sh := range securityHeaderSet {
			h.Set(sh.name, sh.value)
		}
		if r.Header.Get("Origin") != "" {
			for _, ch := range corsHeaderSet {
				h.Set(ch.name, ch.value)
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
