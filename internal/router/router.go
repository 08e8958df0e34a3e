// Package router sets up all HTTP routes and middleware chains for the
// autopublicador API. CRUD routes run under a short request timeout;
// generation runs without one because a provider call can take minutes.
package router

import (
	"time"

	"github.com/go-chi/chi/v5"

	"autopublicador/internal/handlers"
	"autopublicador/internal/middleware"
)

// maxBodyBytes caps JSON request bodies. Bulk keyword imports are the
// largest legitimate payload.
const maxBodyBytes = 10 << 20 // 10 MiB

// crudTimeout bounds every non-generation request.
const crudTimeout = 30 * time.Second

// Options carries the middleware knobs the router needs from config.
type Options struct {
	RateLimitEnabled bool
	RequestsPerMin   int
	RequestsPerHour  int
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(api *handlers.API, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.BodyLimit(maxBodyBytes))

	if opts.RateLimitEnabled {
		perMin := middleware.NewRateLimiter(opts.RequestsPerMin, time.Minute)
		perHour := middleware.NewRateLimiter(opts.RequestsPerHour, time.Hour)
		r.Use(perMin.Middleware)
		r.Use(perHour.Middleware)
	}

	// Health check, exempt from the CRUD timeout.
	r.Get("/health", api.Health)

	// Generation runs without a request timeout; the coordinator enforces
	// its own per-attempt budget.
	r.Post("/generate", api.Generate)

	// CRUD routes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(crudTimeout))

		r.Route("/keywords", func(r chi.Router) {
			r.Post("/", api.CreateKeyword)
			r.Post("/bulk", api.BulkCreateKeywords)
			r.Get("/", api.ListKeywords)
			r.Get("/{id}", api.GetKeyword)
		})

		r.Route("/content", func(r chi.Router) {
			r.Get("/", api.ListContent)
			r.Get("/{id}", api.GetContent)
			r.Patch("/{id}", api.UpdateContent)
			r.Delete("/{id}", api.DeleteContent)
		})

		r.Get("/history", api.ListHistory)

		r.Route("/themes", func(r chi.Router) {
			r.Get("/", api.ListThemes)
			r.Get("/{name}", api.GetTheme)
		})
	})

	return r
}
