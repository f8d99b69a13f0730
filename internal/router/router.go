package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samims/notifier/internal/handler"
	customMiddleware "github.com/samims/notifier/internal/middleware"
)

// NewRouter builds the intake API served by cmd/notification
func NewRouter(
	nh *handler.NotificationHandler,
	oh *handler.OptimizerHandler,
	healthHandler *handler.HealthHandler,
) http.Handler {
	r := newBaseRouter(healthHandler)

	r.Route("/notifications", func(r chi.Router) {
		r.Post("/", nh.Create)
		r.Get("/{id}", nh.GetByID)
	})
	r.Post("/ai/optimize", oh.Optimize)

	return r
}

// NewWorkerRouter exposes only probes and metrics for cmd/worker
func NewWorkerRouter(healthHandler *handler.HealthHandler) http.Handler {
	return newBaseRouter(healthHandler)
}

func newBaseRouter(healthHandler *handler.HealthHandler) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(customMiddleware.MetricsMiddleware)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health & Readiness Routes
	r.Get("/healthz", healthHandler.Liveness)
	r.Get("/readyz", healthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
