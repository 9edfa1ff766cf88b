/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

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
  /api/employees/*    Stamping, summaries, balances per employee
  /api/entries/*      Entry edit pipeline
  /api/balances/*     Cross-employee balance views
  /api/review/*       Flagged-day queue
  /api/presence       Live presence board
  /api/time-models/*  Schedule administration
  /api/holidays/*     Holiday calendar administration

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public;
  deploy behind an authenticating proxy.

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

// RouterOptions tunes the router without reaching into middleware.
type RouterOptions struct {
	CORSOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetEmployee)

				// Stamping
				r.Post("/stamps", h.Stamp)
				r.Post("/corrections", h.SubmitCorrection)
				r.Post("/admin-corrections", h.AdminCorrection)
				r.Get("/expected-next", h.ExpectedNext)
				r.Get("/entries", h.ListEntries)

				// Summaries
				r.Route("/days/{date}", func(r chi.Router) {
					r.Get("/", h.GetDay)
					r.Put("/review", h.SetReview)
					r.Put("/note", h.SetNote)
					r.Put("/target", h.SetTargetOverride)
				})
				r.Get("/weeks/{date}", h.GetWeek)
				r.Get("/months/{month}", h.GetMonth)

				// Balances
				r.Get("/balance", h.GetCurrentBalance)
				r.Get("/balances/{month}", h.GetMonthBalance)
				r.Post("/adjustments", h.RecordAdjustment)
				r.Post("/payouts", h.RecordPayout)
			})
		})

		// Entry edit pipeline
		r.Route("/entries/{id}", func(r chi.Router) {
			r.Post("/preview", h.PreviewEdit)
			r.Put("/", h.EditEntry)
			r.Delete("/", h.DeleteEntry)
		})

		// Cross-employee views
		r.Get("/balances/{month}", h.ListMonthBalances)
		r.Get("/review/missing", h.ListMissing)
		r.Get("/presence", h.GetPresence)

		// Administration
		r.Route("/time-models", func(r chi.Router) {
			r.Get("/", h.ListTimeModels)
			r.Post("/", h.CreateTimeModel)
		})
		r.Post("/holidays", h.CreateHoliday)
	})

	return r
}
