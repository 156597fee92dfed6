/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/state             Resource pool snapshot
  /api/orders/*          Sub-order listing and lookup
  /api/allocations/*     Run control and manual overrides
  /api/logs              Last run's log
  /api/summary           Aggregate view
  /api/reset             Seed reset (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.GetState)
		r.Get("/summary", h.GetSummary)
		r.Get("/logs", h.GetLogs)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListSubOrders)
			r.Get("/{id}", h.GetSubOrder)
		})

		r.Route("/allocations", func(r chi.Router) {
			r.Post("/run", h.RunAllocations)
			r.Get("/status", h.GetRunStatus)
			r.Post("/manual", h.ManualAllocate)
		})

		r.Post("/reset", h.ResetState)
	})

	return r
}
