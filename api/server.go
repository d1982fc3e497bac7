/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack and route definitions. This is
  the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

SECURITY NOTE:
  No authentication middleware. Identity and sessions are external
  collaborators; callers are expected to sit behind an authenticating proxy.

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

	r.Route("/api", func(r chi.Router) {
		// Student routes
		r.Route("/students/{id}", func(r chi.Router) {
			r.Get("/attendance", h.GetAttendance)
			r.Get("/bill", h.GetBill)
			r.Post("/payments", h.RecordPayment)

			r.Get("/leaves", h.ListLeaves)
			r.Post("/leaves", h.ApplyLeave)
			r.Delete("/leaves/{date}", h.CancelLeave)

			r.Get("/plan", h.GetPlan)
			r.Put("/plan", h.ActivatePlan)
		})

		// Mess routes (holiday and settings administration)
		r.Route("/messes/{id}", func(r chi.Router) {
			r.Get("/holidays", h.ListHolidays)
			r.Post("/holidays", h.DeclareHoliday)
			r.Delete("/holidays/{date}", h.RemoveHoliday)

			r.Get("/settings", h.GetSettings)
			r.Put("/settings", h.SaveSettings)
		})
	})

	return r
}
