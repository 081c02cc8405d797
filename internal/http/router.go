package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/projectlibrary/internal/auth"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/account"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/catalog"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/customrequest"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/download"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/order"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/payment"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/render"
)

type Options struct {
	Tokens         *auth.Tokens
	AllowedOrigins []string
	Timeout        time.Duration
	// Health reports whether backing services are reachable. Nil always reports ok.
	Health func(ctx context.Context) error
}

func New(
	opts Options,
	catalogV1 *catalog.Handler,
	accountsV1 *account.Handler,
	ordersV1 *order.Handler,
	paymentsV1 *payment.Handler,
	downloadsV1 *download.Handler,
	requestsV1 *customrequest.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", health(opts.Health))

	router.Route("/api/v1", func(r chi.Router) {
		// Streams are not bounded by the request timeout.
		r.With(opts.Tokens.Require).Route("/downloads", downloadsV1.Routes)

		r.Group(func(r chi.Router) {
			if opts.Timeout > 0 {
				r.Use(middleware.Timeout(opts.Timeout))
			}

			r.With(opts.Tokens.Optional).Route("/projects", catalogV1.Routes)
			r.Route("/accounts", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				accountsV1.Routes(r)
			})
			r.With(opts.Tokens.Require).Route("/orders", ordersV1.Routes)
			r.With(opts.Tokens.Require).Route("/dashboard", ordersV1.DashboardRoutes)
			r.Route("/payments", paymentsV1.Routes)
			r.With(opts.Tokens.Optional).Route("/custom-requests", requestsV1.Routes)

			r.Route("/staff", func(r chi.Router) {
				r.Use(opts.Tokens.Require, auth.RequireStaff)
				r.Route("/custom-requests", requestsV1.StaffRoutes)
				r.Route("/orders", ordersV1.StaffRoutes)
			})
		})
	})

	return router
}

func health(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				slog.Error("health check failed", "error", err)
				render.Error(w, http.StatusServiceUnavailable, "unavailable")

				return
			}
		}

		render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
