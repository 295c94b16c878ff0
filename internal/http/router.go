package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/billable/internal/auth"
	"github.com/MrJamesThe3rd/billable/internal/http/client"
	"github.com/MrJamesThe3rd/billable/internal/http/dashboard"
	"github.com/MrJamesThe3rd/billable/internal/http/invoice"
	"github.com/MrJamesThe3rd/billable/internal/http/matching"
	"github.com/MrJamesThe3rd/billable/internal/http/profile"
	"github.com/MrJamesThe3rd/billable/internal/http/rate"
	"github.com/MrJamesThe3rd/billable/internal/http/respond"
	"github.com/MrJamesThe3rd/billable/internal/http/timeentry"
	"github.com/MrJamesThe3rd/billable/internal/http/tools"
)

type Handlers struct {
	TimeEntries *timeentry.Handler
	Clients     *client.Handler
	Profile     *profile.Handler
	Rates       *rate.Handler
	Invoices    *invoice.Handler
	Matching    *matching.Handler
	Dashboard   *dashboard.Handler
	Tools       *tools.Handler
}

type Options struct {
	Verifier       *auth.Verifier
	AllowedOrigins []string
	Timeout        time.Duration
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(opts.Verifier))

		if opts.Timeout > 0 {
			r.Use(middleware.Timeout(opts.Timeout))
		}

		r.Route("/time-entries", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json", "multipart/form-data"))
			h.TimeEntries.Routes(r)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Clients.Routes(r)
		})

		r.Route("/profile", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Profile.Routes(r)
		})

		r.Route("/exchange-rates", h.Rates.Routes)

		r.Route("/invoices", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Invoices.Routes(r)
		})

		r.Route("/matching", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Matching.Routes(r)
		})

		r.Route("/dashboard", h.Dashboard.Routes)
		r.Route("/tools", h.Tools.Routes)
	})

	return router
}
