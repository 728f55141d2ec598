package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// corsMaxAge is how long, in seconds, browsers may cache a preflight answer.
const corsMaxAge = 600

// NewCORSHandler lets the browser client call the API from the given origins.
// An origin is scheme plus host with no trailing slash; "*" allows any.
// Browser code may read the replay marker on responses.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", IdempotencyKeyHeader},
		ExposedHeaders: []string{ReplayedHeader},
		MaxAge:         corsMaxAge,
	})
	return c.Handler
}
