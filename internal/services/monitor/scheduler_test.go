package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/digitalguardian/breachwatch/internal/lib/entitlement"
	"github.com/digitalguardian/breachwatch/internal/models"
)

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) FindUsersForMonitoring(ctx context.Context, exemptEmail string) ([]*models.User, error) {
	args := m.Called(ctx, exemptEmail)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

type SubsRepoMock struct{ mock.Mock }

func (m *SubsRepoMock) GetSubscriptionByUserUID(ctx context.Context, userUID string) (*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	sub, _ := args.Get(0).(*models.Subscription)
	return sub, args.Error(1)
}

type ScannerMock struct{ mock.Mock }

func (m *ScannerMock) ScanOwn(ctx context.Context, userUID, email string) (*models.ScanReport, error) {
	args := m.Called(ctx, userUID, email)
	report, _ := args.Get(0).(*models.ScanReport)
	return report, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestRunOnce_SkipsUsersWithoutPremium(t *testing.T) {
	users := new(UserRepoMock)
	subs := new(SubsRepoMock)
	scanner := new(ScannerMock)

	expired := fixedClock().Add(-time.Hour)
	users.On("FindUsersForMonitoring", mock.Anything, "").
		Return([]*models.User{{UID: "uid-1", Email: "expired@example.com"}}, nil).Once()
	subs.On("GetSubscriptionByUserUID", mock.Anything, "uid-1").
		Return(&models.Subscription{Status: "trialing", TrialEndsAt: &expired}, nil).Once()

	svc := NewSchedulerService(users, subs, scanner, entitlement.NewRules(""),
		time.Hour, newNoopLogger()).WithClock(fixedClock)

	svc.runOnce(context.Background(), nil)

	scanner.AssertNotCalled(t, "ScanOwn", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunOnce_ScansPremiumUsers(t *testing.T) {
	users := new(UserRepoMock)
	subs := new(SubsRepoMock)
	scanner := new(ScannerMock)

	users.On("FindUsersForMonitoring", mock.Anything, "").
		Return([]*models.User{{UID: "uid-1", Email: "active@example.com"}}, nil).Once()
	subs.On("GetSubscriptionByUserUID", mock.Anything, "uid-1").
		Return(&models.Subscription{Status: "active"}, nil).Once()
	// Пустой отчёт: уведомление не публикуется, канал не трогается.
	scanner.On("ScanOwn", mock.Anything, "uid-1", "active@example.com").
		Return(&models.ScanReport{Count: 0}, nil).Once()

	svc := NewSchedulerService(users, subs, scanner, entitlement.NewRules(""),
		time.Hour, newNoopLogger()).WithClock(fixedClock)

	svc.runOnce(context.Background(), nil)

	scanner.AssertExpectations(t)
}

func TestRunOnce_ScanErrorDoesNotAbortPass(t *testing.T) {
	users := new(UserRepoMock)
	subs := new(SubsRepoMock)
	scanner := new(ScannerMock)

	users.On("FindUsersForMonitoring", mock.Anything, "").
		Return([]*models.User{
			{UID: "uid-1", Email: "first@example.com"},
			{UID: "uid-2", Email: "second@example.com"},
		}, nil).Once()
	subs.On("GetSubscriptionByUserUID", mock.Anything, "uid-1").
		Return(&models.Subscription{Status: "active"}, nil).Once()
	subs.On("GetSubscriptionByUserUID", mock.Anything, "uid-2").
		Return(&models.Subscription{Status: "active"}, nil).Once()
	scanner.On("ScanOwn", mock.Anything, "uid-1", "first@example.com").
		Return(nil, errors.New("provider down")).Once()
	scanner.On("ScanOwn", mock.Anything, "uid-2", "second@example.com").
		Return(&models.ScanReport{Count: 0}, nil).Once()

	svc := NewSchedulerService(users, subs, scanner, entitlement.NewRules(""),
		time.Hour, newNoopLogger()).WithClock(fixedClock)

	svc.runOnce(context.Background(), nil)

	scanner.AssertExpectations(t)
}

func TestCountHighRisk(t *testing.T) {
	exposures := []models.Exposure{
		{Severity: "high"},
		{Severity: "medium"},
		{Severity: "high"},
		{Severity: "low"},
	}
	assert.Equal(t, 2, countHighRisk(exposures))
}
