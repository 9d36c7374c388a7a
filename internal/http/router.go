package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/prestamos/internal/auth"
	"github.com/MrJamesThe3rd/prestamos/internal/http/analytics"
	"github.com/MrJamesThe3rd/prestamos/internal/http/client"
	"github.com/MrJamesThe3rd/prestamos/internal/http/collections"
	"github.com/MrJamesThe3rd/prestamos/internal/http/loan"
	"github.com/MrJamesThe3rd/prestamos/internal/http/payment"
	"github.com/MrJamesThe3rd/prestamos/internal/http/rates"
	"github.com/MrJamesThe3rd/prestamos/internal/http/report"
)

// Options configures cross-cutting middleware.
type Options struct {
	AllowedOrigins []string
	// JWTSecret enables bearer-token auth on /api/v1 when set.
	JWTSecret string
}

type Handlers struct {
	Clients     *client.Handler
	Loans       *loan.Handler
	Payments    *payment.Handler
	Rates       *rates.Handler
	Collections *collections.Handler
	Analytics   *analytics.Handler
	Reports     *report.Handler
}

func New(opts Options, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		if opts.JWTSecret != "" {
			r.Use(auth.Middleware([]byte(opts.JWTSecret)))
		}

		r.Route("/clients", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Clients.Routes(r)
		})

		r.Route("/loans", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Loans.Routes(r)
		})

		r.Route("/payments", h.Payments.Routes)

		r.Route("/rates", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Rates.Routes(r)
		})

		r.Route("/collections", h.Collections.Routes)
		r.Route("/analytics", h.Analytics.Routes)
		r.Route("/reports", h.Reports.Routes)
	})

	return router
}
