package breachwatch

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	_ "github.com/digitalguardian/breachwatch/docs"
	"github.com/digitalguardian/breachwatch/internal/config"
	"github.com/digitalguardian/breachwatch/internal/http/handlers/auth/login"
	"github.com/digitalguardian/breachwatch/internal/http/handlers/auth/register"
	"github.com/digitalguardian/breachwatch/internal/http/handlers/auth/social"
	"github.com/digitalguardian/breachwatch/internal/http/handlers/billing/checkout"
	"github.com/digitalguardian/breachwatch/internal/http/handlers/billing/setupintent"
	"github.com/digitalguardian/breachwatch/internal/http/handlers/billing/webhook"
	"github.com/digitalguardian/breachwatch/internal/http/handlers/dashboard/stats"
	exposurelist "github.com/digitalguardian/breachwatch/internal/http/handlers/exposure/list"
	exposureread "github.com/digitalguardian/breachwatch/internal/http/handlers/exposure/read"
	"github.com/digitalguardian/breachwatch/internal/http/handlers/health"
	reputationcheck "github.com/digitalguardian/breachwatch/internal/http/handlers/reputation/check"
	scanrun "github.com/digitalguardian/breachwatch/internal/http/handlers/scan/run"
	scansearch "github.com/digitalguardian/breachwatch/internal/http/handlers/scan/search"
	subscriptionview "github.com/digitalguardian/breachwatch/internal/http/handlers/subscription/view"
	"github.com/digitalguardian/breachwatch/internal/http/middlewarectx"
	authservice "github.com/digitalguardian/breachwatch/internal/services/auth"
	billingservice "github.com/digitalguardian/breachwatch/internal/services/billing"
	reputationservice "github.com/digitalguardian/breachwatch/internal/services/reputation"
	scanservice "github.com/digitalguardian/breachwatch/internal/services/scan"
	subscriptionservice "github.com/digitalguardian/breachwatch/internal/services/subscription"
	"github.com/digitalguardian/breachwatch/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, db *repository.Storage,
	authService *authservice.AuthService,
	subscriptionService *subscriptionservice.Service,
	scanService *scanservice.Service,
	billingService *billingservice.Service,
	reputationService *reputationservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	limiter := rate.NewLimiter(rate.Limit(cfg.HTTPServer.RateLimit), cfg.HTTPServer.RateBurst)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
		r.Post("/auth/social", social.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(limiter, logger))
			r.Post("/scan", scanrun.New(logger, scanService).ServeHTTP)
			r.Post("/scan/search", scansearch.New(logger, scanService).ServeHTTP)
			r.Get("/scan/results", exposurelist.New(logger, subscriptionService).ServeHTTP)
			r.Get("/scan/results/{id}", exposureread.New(logger, subscriptionService).ServeHTTP)
			r.Get("/dashboard", stats.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscription", subscriptionview.New(logger, subscriptionService).ServeHTTP)
			r.Post("/billing/checkout", checkout.New(logger, billingService).ServeHTTP)
			r.Post("/billing/setup-intent", setupintent.New(logger, billingService).ServeHTTP)
			r.Get("/reputation", reputationcheck.New(logger, reputationService).ServeHTTP)
		})

		// Webhook endpoint (без аутентификации)
		r.Post("/billing/webhook", webhook.New(logger, billingService, cfg.Stripe.WebhookSecret).ServeHTTP)

		r.Get("/health", health.New(logger, db).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
