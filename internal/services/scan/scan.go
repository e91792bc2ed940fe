// Package scan реализует оркестратор сканирования: собственный скан
// и премиум-поиск по произвольному адресу.
//
// Проверка прав для поиска выполняется ДО обращения к провайдеру;
// журнал действий пишется best-effort и не влияет на результат.
package scan

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/digitalguardian/breachwatch/internal/breachsource"
	"github.com/digitalguardian/breachwatch/internal/lib/classify"
	"github.com/digitalguardian/breachwatch/internal/lib/emailaddr"
	"github.com/digitalguardian/breachwatch/internal/lib/entitlement"
	"github.com/digitalguardian/breachwatch/internal/lib/sl"
	"github.com/digitalguardian/breachwatch/internal/models"
)

// Ошибки уровня сервиса; обработчики переводят их в HTTP-статусы.
var (
	// ErrScanFailed — общий ответ при сбое провайдера; детали остаются в логе.
	ErrScanFailed = errors.New("scan failed")
	// ErrInvalidEmail — адрес не прошёл синтаксическую проверку.
	ErrInvalidEmail = errors.New("valid email required")
	// ErrEntitlementRequired — у пользователя нет премиум-доступа.
	ErrEntitlementRequired = errors.New("premium subscription required")
)

// Действия журнала.
const (
	actionScanOwn    = "scan_own"
	actionScanSearch = "scan_search"
)

// ExposureRepository определяет запись найденных утечек.
type ExposureRepository interface {
	CreateExposure(ctx context.Context, exposure models.Exposure) (int, error)
}

// AuditRepository определяет запись журнала действий.
type AuditRepository interface {
	CreateAuditLog(ctx context.Context, userUID, action, emailScanned string) error
}

// SubscriptionRepository определяет чтение подписки для проверки прав.
type SubscriptionRepository interface {
	GetSubscriptionByUserUID(ctx context.Context, userUID string) (*models.Subscription, error)
}

// Service координирует сканирование: адаптер провайдера, классификация,
// персистентность и журнал.
type Service struct {
	exposures ExposureRepository
	audit     AuditRepository
	subs      SubscriptionRepository
	source    breachsource.Adapter
	rules     entitlement.Rules
	now       func() time.Time
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(exposures ExposureRepository, audit AuditRepository, subs SubscriptionRepository,
	source breachsource.Adapter, rules entitlement.Rules, log *slog.Logger) *Service {
	return &Service{
		exposures: exposures,
		audit:     audit,
		subs:      subs,
		source:    source,
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

// ScanOwn сканирует собственный адрес пользователя. Доступно всем
// независимо от подписки. Каждое совпадение сохраняется новой строкой:
// повторный скан не дедуплицирует историю.
func (s *Service) ScanOwn(ctx context.Context, userUID, email string) (*models.ScanReport, error) {
	scanEmail := emailaddr.Normalize(email)

	if err := s.audit.CreateAuditLog(ctx, userUID, actionScanOwn, scanEmail); err != nil {
		s.log.Warn("failed to write audit log", sl.Err(err))
	}

	breaches, err := s.source.Lookup(ctx, scanEmail)
	if err != nil {
		s.log.Error("breach lookup failed", sl.Err(err))
		return nil, ErrScanFailed
	}

	exposures := make([]models.Exposure, 0, len(breaches))
	for _, b := range breaches {
		exposure := classify.MapExposure(b, scanEmail)
		exposure.UserUID = userUID
		id, err := s.exposures.CreateExposure(ctx, exposure)
		if err != nil {
			s.log.Error("failed to persist exposure", sl.Err(err))
			return nil, ErrScanFailed
		}
		exposure.ID = id
		exposures = append(exposures, exposure)
	}

	return &models.ScanReport{
		Exposures: exposures,
		Count:     len(exposures),
		Scanned:   scanEmail,
	}, nil
}

// Search выполняет премиум-поиск по произвольному адресу. Результаты
// не сохраняются — возвращаются только в ответе. Проверка прав идёт
// строго до сетевого вызова.
func (s *Service) Search(ctx context.Context, userUID, userEmail, searchEmail string) (*models.ScanReport, error) {
	scanEmail := emailaddr.Normalize(searchEmail)
	if !emailaddr.Valid(scanEmail) {
		return nil, ErrInvalidEmail
	}

	sub, err := s.subs.GetSubscriptionByUserUID(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if !s.rules.Classify(userEmail, sub, s.now()).Premium() {
		return nil, ErrEntitlementRequired
	}

	if err := s.audit.CreateAuditLog(ctx, userUID, actionScanSearch, scanEmail); err != nil {
		s.log.Warn("failed to write audit log", sl.Err(err))
	}

	breaches, err := s.source.Lookup(ctx, scanEmail)
	if err != nil {
		s.log.Error("breach lookup failed", sl.Err(err))
		return nil, ErrScanFailed
	}

	exposures := make([]models.Exposure, 0, len(breaches))
	for _, b := range breaches {
		exposures = append(exposures, classify.MapExposure(b, scanEmail))
	}

	return &models.ScanReport{
		Exposures: exposures,
		Count:     len(exposures),
		Scanned:   scanEmail,
	}, nil
}
