package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/libris/internal/handler/gen"
	"github.com/pkordes/libris/internal/middleware"
	"github.com/pkordes/libris/spec"
)

// RouterConfig carries the cross-cutting settings NewRouter applies.
type RouterConfig struct {
	Logger *slog.Logger

	// CORSOrigins enables CORS for the listed origins. Empty disables CORS.
	CORSOrigins []string

	// MaxBodyBytes caps request bodies. Zero disables the cap.
	MaxBodyBytes int64

	// Idempotency wraps every route when non-nil.
	Idempotency func(http.Handler) http.Handler
}

// NewRouter builds the full HTTP handler: middleware chain, the generated
// API routes backed by srv, and the embedded OpenAPI document.
//
// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer →
// CORS → body limit → idempotency.
func NewRouter(srv *Server, cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(log))
	r.Use(chimiddleware.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	}
	if cfg.MaxBodyBytes > 0 {
		r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	}
	if cfg.Idempotency != nil {
		r.Use(cfg.Idempotency)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec.OpenAPI)
	})

	// gen.NewStrictHandlerWithOptions adapts our StrictServerInterface
	// implementation to the lower-level ServerInterface chi expects.
	strict := gen.NewStrictHandlerWithOptions(srv, nil, gen.StrictHTTPServerOptions{
		RequestErrorHandlerFunc:  RequestErrorHandler,
		ResponseErrorHandlerFunc: NewResponseErrorHandler(log),
	})
	gen.HandlerWithOptions(strict, gen.ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: RequestErrorHandler,
	})
	return r
}
