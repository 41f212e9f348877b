package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maxcasase/BDPW-Back-End/pkg/health"
	"github.com/maxcasase/BDPW-Back-End/pkg/middleware"
)

// RouterConfig carries the pieces NewRouter wires together.
type RouterConfig struct {
	ServiceName    string
	Reviews        ReviewService
	Notifications  NotificationService
	Health         *health.Handler
	ValidateToken  middleware.TokenValidator
	CORSOrigins    []string
	PprofCIDRs     []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates a chi router with all review service routes registered.
// ctx bounds the rate limiter's background sweeper.
func NewRouter(ctx context.Context, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	reviewHandler := NewReviewHandler(cfg.Reviews, logger)
	notificationHandler := NewNotificationHandler(cfg.Notifications, logger)
	auth := middleware.Auth(cfg.ValidateToken)
	writeLimit := middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Review listings are public.
		r.With(middleware.RequestLogger(logger)).Get("/reviews", reviewHandler.ListReviews)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Use(middleware.RequestLogger(logger))
			r.Use(middleware.NoStore)

			r.Get("/reviews/user", reviewHandler.GetUserReviews)
			r.With(writeLimit).Post("/reviews", reviewHandler.CreateReview)
			r.With(writeLimit).Delete("/reviews/{id}", reviewHandler.DeleteReview)

			r.Get("/notifications", notificationHandler.ListNotifications)
			r.Patch("/notifications/read-all", notificationHandler.MarkAllRead)
		})
	})

	return r
}
