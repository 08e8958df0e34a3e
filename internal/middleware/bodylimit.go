package middleware

import "net/http"

// BodyLimit caps request body size at maxBytes. Oversized bodies surface as
// read errors in the handlers, which report 400 via the JSON error envelope.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
