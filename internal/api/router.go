package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/api/middleware"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/config"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/handlers"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/ratelimit"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/store"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, db store.DataStore, limiter *ratelimit.Limiter, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(64 * 1024)) // 64KB max body
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// CORS - the web client sends the session cookie with every request
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Session cookie resolution (handlers decide 401/403)
	r.Use(middleware.Session([]byte(cfg.AppSecret)))

	h := handlers.NewHandler(db, []byte(cfg.AppSecret), cfg.InviteCodes, !cfg.IsDevelopment(), logger)

	strict := middleware.RateLimit(limiter, ratelimit.Strict, logger)
	standard := middleware.RateLimit(limiter, ratelimit.Standard, logger)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", h.Health)

	// Authentication-adjacent endpoints use the strict limiter class
	r.Group(func(r chi.Router) {
		r.Use(strict)
		r.Post("/api/auth/login", h.Login)
		r.Post("/api/auth/logout", h.Logout)
	})

	// General API traffic uses the standard limiter class
	r.Group(func(r chi.Router) {
		r.Use(standard)

		r.Get("/api/me", h.Me)
		r.Post("/api/me", h.Consent)

		r.Get("/api/companions", h.ListCompanions)

		r.Get("/api/sessions", h.ListSessions)
		r.Post("/api/sessions", h.CreateSession)
		r.Delete("/api/sessions", h.DeleteSession)
		r.Put("/api/sessions", h.UpdateSessionStatus)

		r.Get("/api/messages", h.FetchMessages)
		r.Post("/api/messages", h.PostMessage)

		r.Get("/api/mood", h.ListMoods)
		r.Post("/api/mood", h.RecordMood)

		r.Get("/api/journal", h.ListJournal)
		r.Post("/api/journal", h.CreateJournal)
		r.Delete("/api/journal", h.DeleteJournal)
	})

	return r
}
