package middleware

import "net/http"

// NewMaxBodySizeHandler returns a middleware that limits incoming request body
// sizes to limit bytes. Requests whose Content-Length exceeds the limit are
// rejected with 413 Request Entity Too Large before reaching the next handler.
// Bodies of unknown length are wrapped in http.MaxBytesReader, so the next
// handler's read fails with *http.MaxBytesError once the limit is crossed.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeJSONMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
