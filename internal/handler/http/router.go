package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fairlane/careerfair/internal/service"
	"github.com/fairlane/careerfair/internal/stream"
	"github.com/fairlane/careerfair/pkg/health"
	"github.com/fairlane/careerfair/pkg/middleware"
)

// RouterConfig carries the handler dependencies and middleware settings.
type RouterConfig struct {
	Reviews   *service.ReviewService
	Search    *service.SearchService
	Profiles  *service.ProfileService
	Companies *service.CompanyService
	Matches   *service.MatchService
	Hub       *stream.Hub
	Health    *health.Handler

	TokenValidator middleware.TokenValidator
	CORS           middleware.CORSConfig
	PprofCIDRs     []string
	Logger         *slog.Logger
}

// NewRouter creates a chi router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("careerfair"))
	r.Use(middleware.Tracing("careerfair"))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	reviewHandler := NewReviewHandler(cfg.Reviews, cfg.Search, logger)
	streamHandler := NewStreamHandler(cfg.Hub, logger)
	fairHandler := NewFairHandler(cfg.Profiles, cfg.Companies, cfg.Matches, logger)

	authed := middleware.Auth(cfg.TokenValidator)

	r.Route("/api/v1", func(r chi.Router) {
		// The stream is long-lived; it must sit outside the request
		// timeout and compression wrappers, which buffer SSE frames.
		r.Get("/reviews/stream", streamHandler.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Compress(5))
			r.Use(chimw.Timeout(30 * time.Second))

			r.Get("/reviews", reviewHandler.ListReviews)
			r.With(middleware.CacheControl(30)).Get("/reviews/summary", reviewHandler.Summary)

			r.Group(func(r chi.Router) {
				// The directory changes rarely during a fair.
				r.Use(middleware.CacheControl(300))

				r.Get("/companies", fairHandler.ListCompanies)
				r.Get("/companies/{id}", fairHandler.GetCompany)
			})

			r.Group(func(r chi.Router) {
				r.Use(authed)

				r.Post("/reviews", reviewHandler.CreateReview)
				r.Patch("/reviews/{id}", reviewHandler.UpdateReview)
				r.Delete("/reviews/{id}", reviewHandler.DeleteReview)

				r.Get("/profile", fairHandler.GetProfile)
				r.Put("/profile", fairHandler.UpsertProfile)
				r.Get("/matches", fairHandler.GetMatches)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole("admin"))

					r.Post("/companies", fairHandler.CreateCompany)
					r.Post("/search/reindex", reviewHandler.Reindex)
				})
			})
		})
	})

	return r
}
