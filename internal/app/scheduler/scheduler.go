// Package scheduler собирает приложение планировщика мониторинга.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/digitalguardian/breachwatch/internal/breachsource"
	"github.com/digitalguardian/breachwatch/internal/config"
	"github.com/digitalguardian/breachwatch/internal/lib/entitlement"
	"github.com/digitalguardian/breachwatch/internal/rabbitmq"
	monitorservice "github.com/digitalguardian/breachwatch/internal/services/monitor"
	scanservice "github.com/digitalguardian/breachwatch/internal/services/scan"
	"github.com/digitalguardian/breachwatch/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *monitorservice.SchedulerService
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range 10 {
		if err := db.CheckDatabaseReady(ctx); err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.Rabbit.RabbitAddress, cfg.Rabbit.RabbitRetries, cfg.Rabbit.RabbitDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := waitForDB(ctx, db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	rules := entitlement.NewRules(cfg.Access.ExemptEmail)
	source := breachsource.New(cfg.BreachProvider)
	scanService := scanservice.New(db, db, db, source, rules, logger)
	schedulerService := monitorservice.NewSchedulerService(db, db, scanService,
		rules, cfg.Monitor.MonitorInterval, logger)

	return &App{
		schedulerService: schedulerService,
		conn:             conn,
		ch:               ch,
		logger:           logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}

// Run запускает планировщик и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	go a.schedulerService.Run(ctx, a.ch)

	<-ctx.Done()

	a.logger.Info("shutting down scheduler service")
	closeResources(a.ch, a.conn, a.logger)

	return nil
}
