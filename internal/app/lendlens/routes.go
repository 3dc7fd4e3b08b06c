package lendlens

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/lendlens/internal/config"
	"github.com/magabrotheeeer/lendlens/internal/http/handlers/admin/assets"
	"github.com/magabrotheeeer/lendlens/internal/http/handlers/admin/create"
	"github.com/magabrotheeeer/lendlens/internal/http/handlers/admin/setenabled"
	"github.com/magabrotheeeer/lendlens/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/lendlens/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/lendlens/internal/http/handlers/auth/session"
	"github.com/magabrotheeeer/lendlens/internal/http/handlers/defaulters/list"
	"github.com/magabrotheeeer/lendlens/internal/http/handlers/defaulters/report"
	"github.com/magabrotheeeer/lendlens/internal/http/handlers/defaulters/stream"
	"github.com/magabrotheeeer/lendlens/internal/http/handlers/health"
	"github.com/magabrotheeeer/lendlens/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lendlens/internal/metrics"
	"github.com/magabrotheeeer/lendlens/internal/models"
	defaulterservice "github.com/magabrotheeeer/lendlens/internal/services/defaulter"
	reportservice "github.com/magabrotheeeer/lendlens/internal/services/report"
	sessionservice "github.com/magabrotheeeer/lendlens/internal/services/session"
	"github.com/magabrotheeeer/lendlens/internal/services/sweeper"
	"github.com/magabrotheeeer/lendlens/internal/storage"
)

// Services собирает зависимости обработчиков.
type Services struct {
	Defaulters *defaulterservice.DefaulterService
	Sessions   *sessionservice.SessionService
	Reports    *reportservice.ReportService
	Sweeper    *sweeper.Sweeper
	Assets     storage.AssetStore
	Provider   string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		metrics.Middleware,
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}),
	)

	limiter := middlewarectx.NewRateLimiter(cfg.RatePerSecond, cfg.Burst)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/login", login.New(logger, s.Sessions).ServeHTTP)
		r.Get("/defaulters", list.New(logger, s.Defaulters, list.Public).ServeHTTP)
		r.Get("/defaulters/stream", stream.New(logger, s.Defaulters, s.Sweeper, list.Public, cfg.Sweeper.Interval).ServeHTTP)
		r.With(middlewarectx.RateLimitMiddleware(logger, limiter)).
			Post("/defaulters/{id}/reports", report.New(logger, s.Reports).ServeHTTP)

		// Группа с проверкой сессии администратора
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Sessions, logger))
			r.Use(middlewarectx.RequireRole(logger, models.RoleAdmin))
			r.Post("/logout", logout.New(logger, s.Sessions).ServeHTTP)
			r.Get("/session", session.New(logger, s.Sessions).ServeHTTP)
			r.Get("/admin/defaulters", list.New(logger, s.Defaulters, list.All).ServeHTTP)
			r.Get("/admin/defaulters/stream", stream.New(logger, s.Defaulters, s.Sweeper, list.All, cfg.Sweeper.Interval).ServeHTTP)
			r.Post("/admin/defaulters", create.New(logger, s.Defaulters).ServeHTTP)
			r.Put("/admin/defaulters/{id}/enabled", setenabled.New(logger, s.Defaulters).ServeHTTP)
			r.Post("/admin/assets", assets.New(logger, s.Assets, cfg.MaxUploadSize).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, s.Provider).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
