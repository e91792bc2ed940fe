// Package monitor реализует фоновый мониторинг: планировщик периодически
// пересканирует адреса премиум-пользователей и публикует уведомления
// о новых утечках в очередь, откуда их забирает отправитель писем.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/digitalguardian/breachwatch/internal/lib/entitlement"
	rabbit "github.com/digitalguardian/breachwatch/internal/lib/rabbitmq"
	"github.com/digitalguardian/breachwatch/internal/lib/sl"
	"github.com/digitalguardian/breachwatch/internal/models"
	"github.com/digitalguardian/breachwatch/internal/rabbitmq"
)

type UserRepository interface {
	FindUsersForMonitoring(ctx context.Context, exemptEmail string) ([]*models.User, error)
}

type SubscriptionRepository interface {
	GetSubscriptionByUserUID(ctx context.Context, userUID string) (*models.Subscription, error)
}

// Scanner запускает сканирование адреса пользователя.
type Scanner interface {
	ScanOwn(ctx context.Context, userUID, email string) (*models.ScanReport, error)
}

type SchedulerService struct {
	users    UserRepository
	subs     SubscriptionRepository
	scanner  Scanner
	rules    entitlement.Rules
	interval time.Duration
	now      func() time.Time
	log      *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(users UserRepository, subs SubscriptionRepository, scanner Scanner,
	rules entitlement.Rules, interval time.Duration, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		users:    users,
		subs:     subs,
		scanner:  scanner,
		rules:    rules,
		interval: interval,
		now:      time.Now,
		log:      log,
	}
}

// WithClock подменяет источник времени. Используется в тестах.
func (s *SchedulerService) WithClock(now func() time.Time) *SchedulerService {
	s.now = now
	return s
}

// Run запускает цикл мониторинга и блокируется до отмены контекста.
func (s *SchedulerService) Run(ctx context.Context, channel *amqp.Channel) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, channel)
		}
	}
}

// runOnce выполняет один проход мониторинга. Ошибка по одному пользователю
// не прерывает обход остальных.
func (s *SchedulerService) runOnce(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting monitoring pass")

	users, err := s.users.FindUsersForMonitoring(ctx, s.rules.ExemptEmail())
	if err != nil {
		s.log.Error("failed to find users for monitoring", sl.Err(err))
		return
	}

	for _, user := range users {
		sub, err := s.subs.GetSubscriptionByUserUID(ctx, user.UID)
		if err != nil {
			s.log.Error("failed to read subscription", slog.String("user_uid", user.UID), sl.Err(err))
			continue
		}
		if !s.rules.Classify(user.Email, sub, s.now()).Premium() {
			continue
		}

		report, err := s.scanner.ScanOwn(ctx, user.UID, user.Email)
		if err != nil {
			s.log.Error("monitoring scan failed", slog.String("user_uid", user.UID), sl.Err(err))
			continue
		}
		if report.Count == 0 {
			continue
		}

		alert := models.AlertMessage{
			UserUID:  user.UID,
			Email:    user.Email,
			Count:    report.Count,
			HighRisk: countHighRisk(report.Exposures),
		}
		if err := rabbit.PublishMessage(channel, rabbitmq.AlertsExchange,
			rabbitmq.AlertsRoutingKey, alert); err != nil {
			s.log.Error("failed to publish alert", slog.String("user_uid", user.UID), sl.Err(err))
		}
	}

	s.log.Info("monitoring pass finished", slog.Int("users", len(users)))
}

func countHighRisk(exposures []models.Exposure) int {
	var n int
	for _, e := range exposures {
		if e.Severity == "high" {
			n++
		}
	}
	return n
}
