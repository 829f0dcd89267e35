package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/jw6ventures/carrental-console/internal/auth"
	"github.com/jw6ventures/carrental-console/internal/config"
	"github.com/jw6ventures/carrental-console/internal/console"
	"github.com/jw6ventures/carrental-console/internal/http/csrf"
	httperrors "github.com/jw6ventures/carrental-console/internal/http/errors"
	"github.com/jw6ventures/carrental-console/internal/http/ratelimit"
	"github.com/jw6ventures/carrental-console/internal/metrics"
	"github.com/jw6ventures/carrental-console/internal/ui"
)

// HealthChecker is a dependency /readyz must reach before the console takes traffic.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter wires the console pages and the operational endpoints.
func NewRouter(cfg *config.Config, authService *auth.Service, registry *console.Registry, limiter *ratelimit.IPRateLimiter, checks ...HealthChecker) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(overrideMethod)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		for _, check := range checks {
			if err := check.HealthCheck(ctx); err != nil {
				httperrors.LogError(r, "readiness check failed", err)
				http.Error(w, "unready", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.PrometheusEnabled {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	uiHandler := ui.NewHandler(cfg, authService, registry)

	r.Group(func(r chi.Router) {
		r.Use(authService.Attach)
		r.Use(csrf.Middleware(cfg))

		r.Get("/login", uiHandler.LoginPage)
		r.With(limiter.Middleware()).Post("/login", uiHandler.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(authService.RequireSession)
		r.Use(csrf.Middleware(cfg))

		r.Get("/", uiHandler.Home)
		r.Post("/logout", uiHandler.Logout)

		r.Get("/cars", uiHandler.Cars)
		r.Get("/cars/new", uiHandler.NewCar)
		r.Post("/cars", uiHandler.CreateCar)
		r.Get("/cars/{id}/edit", uiHandler.EditCar)
		r.Put("/cars/{id}", uiHandler.UpdateCar)
		r.Get("/cars/{id}/delete", uiHandler.ConfirmDeleteCar)
		r.Delete("/cars/{id}", uiHandler.DeleteCar)
		r.Post("/cars/{id}/delete", uiHandler.DeleteCar) // HTML form fallback
		r.Get("/cars/{id}/book", uiHandler.BookCar)

		r.Get("/bookings", uiHandler.Bookings)
		r.Post("/bookings", uiHandler.CreateBooking)
		r.Get("/bookings/{id}/edit", uiHandler.EditBooking)
		r.Put("/bookings/{id}", uiHandler.UpdateBooking)
		r.Get("/bookings/{id}/delete", uiHandler.ConfirmDeleteBooking)
		r.Delete("/bookings/{id}", uiHandler.DeleteBooking)
		r.Post("/bookings/{id}/delete", uiHandler.DeleteBooking) // HTML form fallback

		r.Get("/customers", uiHandler.Customers)
		r.Get("/customers/new", uiHandler.NewCustomer)
		r.Post("/customers", uiHandler.CreateCustomer)
		r.Get("/customers/{id}/edit", uiHandler.EditCustomer)
		r.Put("/customers/{id}", uiHandler.UpdateCustomer)
		r.Get("/customers/{id}/delete", uiHandler.ConfirmDeleteCustomer)
		r.Delete("/customers/{id}", uiHandler.DeleteCustomer)
		r.Post("/customers/{id}/delete", uiHandler.DeleteCustomer) // HTML form fallback
	})

	return otelhttp.NewHandler(r, "carrental-console")
}

// overrideMethod lets HTML forms send PUT and DELETE through a hidden _method field.
func overrideMethod(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			method := strings.TrimSpace(r.PostFormValue("_method"))
			if method == "" {
				method = strings.TrimSpace(r.URL.Query().Get("_method"))
			}
			switch strings.ToUpper(method) {
			case http.MethodPut, http.MethodDelete:
				r.Method = strings.ToUpper(method)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// LoginLimiter is the per-IP limiter applied to login attempts.
func LoginLimiter(cfg *config.Config) *ratelimit.IPRateLimiter {
	return ratelimit.NewIPRateLimiter(rate.Every(time.Second), 5, 10000, 15*time.Minute, cfg.TrustedProxies)
}
