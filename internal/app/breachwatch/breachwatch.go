// Package breachwatch собирает основное приложение: хранилище, кеш,
// сервисы и HTTP-сервер с graceful shutdown.
package breachwatch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/digitalguardian/breachwatch/internal/breachsource"
	"github.com/digitalguardian/breachwatch/internal/cache"
	"github.com/digitalguardian/breachwatch/internal/config"
	"github.com/digitalguardian/breachwatch/internal/lib/entitlement"
	"github.com/digitalguardian/breachwatch/internal/lib/jwt"
	"github.com/digitalguardian/breachwatch/internal/migrations"
	libreputation "github.com/digitalguardian/breachwatch/internal/reputation"
	authservice "github.com/digitalguardian/breachwatch/internal/services/auth"
	billingservice "github.com/digitalguardian/breachwatch/internal/services/billing"
	reputationservice "github.com/digitalguardian/breachwatch/internal/services/reputation"
	scanservice "github.com/digitalguardian/breachwatch/internal/services/scan"
	subscriptionservice "github.com/digitalguardian/breachwatch/internal/services/subscription"
	"github.com/digitalguardian/breachwatch/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New создает приложение: подключает PostgreSQL и Redis, прогоняет
// миграции и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rules := entitlement.NewRules(cfg.Access.ExemptEmail)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	source := breachsource.New(cfg.BreachProvider)

	authService := authservice.NewAuthService(db, db, jwtMaker, cfg.Access.TrialDuration)
	subscriptionService := subscriptionservice.New(db, db, db, cacheRedis, rules, logger)
	scanService := scanservice.New(db, db, db, source, rules, logger)
	billingService := billingservice.New(db, db, subscriptionService,
		cfg.Stripe, cfg.Access.TrialDuration, logger)
	reputationClient := libreputation.NewClient(cfg.Reputation.ReputationAPIKey,
		&http.Client{Timeout: cfg.Reputation.ReputationTimeout})
	reputationService := reputationservice.New(reputationClient, db, rules)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, db,
		authService, subscriptionService, scanService, billingService, reputationService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", slog.String("error", closeErr.Error()))
		}
		return err
	}
}
