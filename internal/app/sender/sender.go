// Package sender собирает приложение отправки писем мониторинга.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/digitalguardian/breachwatch/internal/config"
	"github.com/digitalguardian/breachwatch/internal/lib/smtp"
	"github.com/digitalguardian/breachwatch/internal/rabbitmq"
	monitorservice "github.com/digitalguardian/breachwatch/internal/services/monitor"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *monitorservice.SenderService
	logger        *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.Rabbit.RabbitAddress, cfg.Rabbit.RabbitRetries, cfg.Rabbit.RabbitDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close connection", slog.Any("err", closeErr))
		}
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := monitorservice.NewSenderService(transport, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.AlertsQueue, a.senderService.SendAlert)
	if err != nil {
		a.logger.Error("failed to start alerts consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
