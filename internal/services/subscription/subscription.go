// Package subscription содержит бизнес-логику представления подписки
// и агрегатов для дашборда, включая кеширование.
package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/digitalguardian/breachwatch/internal/lib/entitlement"
	"github.com/digitalguardian/breachwatch/internal/models"
)

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// GetSubscriptionByUserUID возвращает подписку пользователя либо (nil, nil).
	GetSubscriptionByUserUID(ctx context.Context, userUID string) (*models.Subscription, error)
}

// UserRepository определяет методы для чтения пользователей.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// ExposureRepository определяет метод подсчёта записей по серьёзности.
type ExposureRepository interface {
	CountExposuresBySeverity(ctx context.Context, userUID string) (map[string]int, error)
	ListExposuresByUser(ctx context.Context, userUID string) ([]*models.Exposure, error)
	GetExposure(ctx context.Context, id int, userUID string) (*models.Exposure, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Service реализует представление подписки и агрегаты дашборда.
type Service struct {
	subs      SubscriptionRepository
	users     UserRepository
	exposures ExposureRepository
	cache     Cache
	rules     entitlement.Rules
	now       func() time.Time
	log       *slog.Logger
}

// New создает новый экземпляр Service. Часы инжектируются для тестов.
func New(subs SubscriptionRepository, users UserRepository, exposures ExposureRepository,
	cache Cache, rules entitlement.Rules, log *slog.Logger) *Service {
	return &Service{
		subs:      subs,
		users:     users,
		exposures: exposures,
		cache:     cache,
		rules:     rules,
		now:       time.Now,
		log:       log,
	}
}

// WithClock подменяет источник времени; используется в тестах.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func viewCacheKey(userUID string) string {
	return fmt.Sprintf("subscription:view:%s", userUID)
}

// BuildView собирает представление подписки на момент now.
// Отсутствие записи даёт статус "none"; премиум при этом возможен
// только для exempt-адреса.
func BuildView(rules entitlement.Rules, email string, sub *models.Subscription, now time.Time) models.SubscriptionView {
	status := rules.Classify(email, sub, now)
	if sub == nil {
		return models.SubscriptionView{
			Status:    "none",
			IsPremium: status.Premium(),
			Exempt:    status == entitlement.Exempt,
		}
	}
	return models.SubscriptionView{
		Status:           sub.Status,
		IsPremium:        status.Premium(),
		TrialActive:      status == entitlement.TrialActive,
		TrialEndsAt:      sub.TrialEndsAt,
		Exempt:           status == entitlement.Exempt,
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
		Plan:             sub.Plan,
	}
}

// View возвращает представление подписки пользователя, используя кеш.
// TTL короткий, чтобы граница пробного периода не зависала в кеше.
func (s *Service) View(ctx context.Context, userUID string) (*models.SubscriptionView, error) {
	var cached models.SubscriptionView
	cacheKey := viewCacheKey(userUID)
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read view from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return &cached, nil
	}

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	sub, err := s.subs.GetSubscriptionByUserUID(ctx, userUID)
	if err != nil {
		return nil, err
	}

	view := BuildView(s.rules, user.Email, sub, s.now())
	if err := s.cache.Set(cacheKey, view, time.Minute); err != nil {
		s.log.Warn("failed to cache view", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return &view, nil
}

// InvalidateView сбрасывает кешированное представление подписки.
// Вызывается после применения платёжного события.
func (s *Service) InvalidateView(userUID string) {
	cacheKey := viewCacheKey(userUID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate view", slog.String("key", cacheKey), slog.Any("err", err))
	}
}

// DashboardStats возвращает агрегаты по найденным утечкам и текущее
// представление подписки.
func (s *Service) DashboardStats(ctx context.Context, userUID string) (*models.DashboardStats, *models.SubscriptionView, error) {
	counts, err := s.exposures.CountExposuresBySeverity(ctx, userUID)
	if err != nil {
		return nil, nil, err
	}
	stats := &models.DashboardStats{
		TotalExposures: counts["high"] + counts["medium"] + counts["low"],
		HighRisk:       counts["high"],
		MediumRisk:     counts["medium"],
		LowRisk:        counts["low"],
	}
	view, err := s.View(ctx, userUID)
	if err != nil {
		return nil, nil, err
	}
	return stats, view, nil
}

// ListExposures возвращает записи пользователя, новые первыми.
func (s *Service) ListExposures(ctx context.Context, userUID string) ([]*models.Exposure, error) {
	return s.exposures.ListExposuresByUser(ctx, userUID)
}

// GetExposure возвращает запись пользователя по ID либо (nil, nil),
// если записи нет или она принадлежит другому пользователю.
func (s *Service) GetExposure(ctx context.Context, id int, userUID string) (*models.Exposure, error) {
	return s.exposures.GetExposure(ctx, id, userUID)
}
