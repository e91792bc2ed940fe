// Package reputation содержит бизнес-логику проверки репутации адреса:
// премиум-гейт поверх внешнего API.
package reputation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/digitalguardian/breachwatch/internal/lib/emailaddr"
	"github.com/digitalguardian/breachwatch/internal/lib/entitlement"
	"github.com/digitalguardian/breachwatch/internal/models"
)

var (
	// ErrEntitlementRequired — у пользователя нет премиум-доступа.
	ErrEntitlementRequired = errors.New("premium subscription required")
	// ErrInvalidEmail — адрес не прошёл синтаксическую проверку.
	ErrInvalidEmail = errors.New("valid email required")
)

// Checker описывает клиента внешнего API репутации.
type Checker interface {
	Check(ctx context.Context, email string) (*models.EmailReputation, error)
}

// SubscriptionRepository определяет чтение подписки для проверки прав.
type SubscriptionRepository interface {
	GetSubscriptionByUserUID(ctx context.Context, userUID string) (*models.Subscription, error)
}

// Service проверяет права пользователя и делегирует запрос внешнему API.
type Service struct {
	checker Checker
	subs    SubscriptionRepository
	rules   entitlement.Rules
	now     func() time.Time
}

// New создает новый экземпляр Service.
func New(checker Checker, subs SubscriptionRepository, rules entitlement.Rules) *Service {
	return &Service{
		checker: checker,
		subs:    subs,
		rules:   rules,
		now:     time.Now,
	}
}

// WithClock подменяет источник времени. Используется в тестах.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Check возвращает репутацию адреса. Доступ проверяется до обращения
// к внешнему API.
func (s *Service) Check(ctx context.Context, userUID, userEmail, targetEmail string) (*models.EmailReputation, error) {
	const op = "reputation.Check"

	targetEmail = emailaddr.Normalize(targetEmail)
	if !emailaddr.Valid(targetEmail) {
		return nil, ErrInvalidEmail
	}

	sub, err := s.subs.GetSubscriptionByUserUID(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !s.rules.Classify(userEmail, sub, s.now()).Premium() {
		return nil, ErrEntitlementRequired
	}

	rep, err := s.checker.Check(ctx, targetEmail)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rep, nil
}
