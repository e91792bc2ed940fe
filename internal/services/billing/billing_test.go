package billing

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"

	"github.com/digitalguardian/breachwatch/internal/config"
	"github.com/digitalguardian/breachwatch/internal/models"
)

type SubsRepoMock struct{ mock.Mock }

func (m *SubsRepoMock) GetSubscriptionByUserUID(ctx context.Context, userUID string) (*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	sub, _ := args.Get(0).(*models.Subscription)
	return sub, args.Error(1)
}

func (m *SubsRepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}

func (m *SubsRepoMock) SetStripeCustomerID(ctx context.Context, userUID, customerID string) error {
	return m.Called(ctx, userUID, customerID).Error(0)
}

func (m *SubsRepoMock) UpsertSubscriptionFromEvent(ctx context.Context, userUID, stripeSubscriptionID,
	status, plan string, currentPeriodEnd time.Time) error {
	return m.Called(ctx, userUID, stripeSubscriptionID, status, plan, currentPeriodEnd).Error(0)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type ViewsMock struct{ mock.Mock }

func (m *ViewsMock) InvalidateView(userUID string) {
	m.Called(userUID)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func subscriptionEvent(eventType string, raw string) stripe.Event {
	return stripe.Event{
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: json.RawMessage(raw)},
	}
}

func TestApplyEvent_UpsertsKnownUser(t *testing.T) {
	subs := new(SubsRepoMock)
	users := new(UserRepoMock)
	views := new(ViewsMock)

	users.On("GetUser", mock.Anything, "uid-1").Return(&models.User{UID: "uid-1"}, nil).Once()
	wantPeriodEnd := time.Unix(1750000000, 0).UTC()
	subs.On("UpsertSubscriptionFromEvent", mock.Anything, "uid-1", "sub_123",
		"active", "premium", wantPeriodEnd).Return(nil).Once()
	views.On("InvalidateView", "uid-1").Once()

	svc := New(subs, users, views, config.Stripe{}, 72*time.Hour, newNoopLogger())

	err := svc.ApplyEvent(context.Background(), subscriptionEvent("customer.subscription.updated", `{
		"id": "sub_123",
		"status": "active",
		"current_period_end": 1750000000,
		"metadata": {"userId": "uid-1"}
	}`))
	require.NoError(t, err)
	subs.AssertExpectations(t)
	views.AssertExpectations(t)
}

func TestApplyEvent_UnknownUserIsAcknowledgedNoOp(t *testing.T) {
	subs := new(SubsRepoMock)
	users := new(UserRepoMock)
	views := new(ViewsMock)

	users.On("GetUser", mock.Anything, "ghost").
		Return(nil, fmt.Errorf("storage.GetUser: %w", sql.ErrNoRows)).Once()

	svc := New(subs, users, views, config.Stripe{}, 72*time.Hour, newNoopLogger())

	err := svc.ApplyEvent(context.Background(), subscriptionEvent("customer.subscription.created", `{
		"id": "sub_999",
		"status": "active",
		"metadata": {"userId": "ghost"}
	}`))
	require.NoError(t, err)
	subs.AssertNotCalled(t, "UpsertSubscriptionFromEvent",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	views.AssertNotCalled(t, "InvalidateView", mock.Anything)
}

func TestApplyEvent_MissingUserIDIgnored(t *testing.T) {
	subs := new(SubsRepoMock)
	users := new(UserRepoMock)

	svc := New(subs, users, new(ViewsMock), config.Stripe{}, 72*time.Hour, newNoopLogger())

	err := svc.ApplyEvent(context.Background(), subscriptionEvent("customer.subscription.updated", `{
		"id": "sub_123",
		"status": "active",
		"metadata": {}
	}`))
	require.NoError(t, err)
	users.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestApplyEvent_IrrelevantTypeIgnored(t *testing.T) {
	subs := new(SubsRepoMock)

	svc := New(subs, new(UserRepoMock), new(ViewsMock), config.Stripe{}, 72*time.Hour, newNoopLogger())

	err := svc.ApplyEvent(context.Background(),
		subscriptionEvent("invoice.payment_succeeded", `{"id": "in_1"}`))
	require.NoError(t, err)
	subs.AssertNotCalled(t, "UpsertSubscriptionFromEvent",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyEvent_PlanIsForcedPremium(t *testing.T) {
	subs := new(SubsRepoMock)
	users := new(UserRepoMock)
	views := new(ViewsMock)

	users.On("GetUser", mock.Anything, "uid-1").Return(&models.User{UID: "uid-1"}, nil).Once()
	subs.On("UpsertSubscriptionFromEvent", mock.Anything, "uid-1", "sub_123",
		"trialing", "premium", mock.Anything).Return(nil).Once()
	views.On("InvalidateView", "uid-1").Once()

	svc := New(subs, users, views, config.Stripe{}, 72*time.Hour, newNoopLogger())

	// Тариф из события не читается: платёжное событие всегда означает premium.
	err := svc.ApplyEvent(context.Background(), subscriptionEvent("customer.subscription.created", `{
		"id": "sub_123",
		"status": "trialing",
		"metadata": {"userId": "uid-1", "plan": "enterprise"}
	}`))
	require.NoError(t, err)
	subs.AssertExpectations(t)
}

func TestCreateCheckout_NotConfigured(t *testing.T) {
	svc := New(new(SubsRepoMock), new(UserRepoMock), new(ViewsMock),
		config.Stripe{}, 72*time.Hour, newNoopLogger())

	_, err := svc.CreateCheckout(context.Background(), "uid-1", "")
	assert.ErrorIs(t, err, ErrPaymentNotConfigured)
	assert.False(t, svc.Configured())
}

func TestCreateSetupIntent_NotConfigured(t *testing.T) {
	svc := New(new(SubsRepoMock), new(UserRepoMock), new(ViewsMock),
		config.Stripe{}, 72*time.Hour, newNoopLogger())

	_, err := svc.CreateSetupIntent(context.Background(), "uid-1")
	assert.ErrorIs(t, err, ErrPaymentNotConfigured)
}
