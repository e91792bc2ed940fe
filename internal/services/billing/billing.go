// Package billing реализует интеграцию с платёжным провайдером Stripe:
// создание checkout-сессии, setup intent и применение webhook-событий
// к состоянию подписки.
//
// Проверка подписи события — обязанность HTTP-обработчика; сюда событие
// попадает уже проверенным.
package billing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"

	"github.com/digitalguardian/breachwatch/internal/config"
	"github.com/digitalguardian/breachwatch/internal/lib/entitlement"
	"github.com/digitalguardian/breachwatch/internal/models"
)

// ErrPaymentNotConfigured — у сервиса нет ключа платёжного провайдера.
var ErrPaymentNotConfigured = errors.New("payment not configured")

// premiumPlan — тариф, принудительно выставляемый платёжным событием.
const premiumPlan = "premium"

// metadataUserKey — ключ внутреннего идентификатора пользователя
// в metadata объектов Stripe.
const metadataUserKey = "userId"

// SubscriptionRepository определяет мутации подписки из платёжных событий.
type SubscriptionRepository interface {
	GetSubscriptionByUserUID(ctx context.Context, userUID string) (*models.Subscription, error)
	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	SetStripeCustomerID(ctx context.Context, userUID, customerID string) error
	UpsertSubscriptionFromEvent(ctx context.Context, userUID, stripeSubscriptionID,
		status, plan string, currentPeriodEnd time.Time) error
}

// UserRepository определяет чтение пользователей.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// ViewInvalidator сбрасывает кешированное представление подписки.
type ViewInvalidator interface {
	InvalidateView(userUID string)
}

// Service — бизнес-логика биллинга.
type Service struct {
	subs          SubscriptionRepository
	users         UserRepository
	views         ViewInvalidator
	sc            *stripeclient.API // nil, если провайдер не сконфигурирован
	cfg           config.Stripe
	trialDuration time.Duration
	now           func() time.Time
	log           *slog.Logger
}

// New создает новый экземпляр Service. При пустом секретном ключе
// платёжные операции возвращают ErrPaymentNotConfigured.
func New(subs SubscriptionRepository, users UserRepository, views ViewInvalidator,
	cfg config.Stripe, trialDuration time.Duration, log *slog.Logger) *Service {
	var sc *stripeclient.API
	if cfg.SecretKey != "" {
		sc = &stripeclient.API{}
		sc.Init(cfg.SecretKey, nil)
	}
	return &Service{
		subs:          subs,
		users:         users,
		views:         views,
		sc:            sc,
		cfg:           cfg,
		trialDuration: trialDuration,
		now:           time.Now,
		log:           log,
	}
}

// Configured сообщает, задан ли ключ платёжного провайдера.
func (s *Service) Configured() bool {
	return s.sc != nil
}

// WebhookSecret возвращает секрет проверки подписи событий.
func (s *Service) WebhookSecret() string {
	return s.cfg.WebhookSecret
}

// CreateCheckout создаёт checkout-сессию подписки и возвращает URL редиректа.
func (s *Service) CreateCheckout(ctx context.Context, userUID, priceID string) (string, error) {
	const op = "billing.CreateCheckout"
	if s.sc == nil {
		return "", ErrPaymentNotConfigured
	}
	if priceID == "" {
		priceID = s.cfg.PriceID
	}

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card", "link"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata(metadataUserKey, user.UID)

	session, err := s.sc.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return session.URL, nil
}

// CreateSetupIntent создаёт setup intent для привязки карты и возвращает
// client secret.
func (s *Service) CreateSetupIntent(ctx context.Context, userUID string) (string, error) {
	const op = "billing.CreateSetupIntent"
	if s.sc == nil {
		return "", ErrPaymentNotConfigured
	}

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	params := &stripe.SetupIntentParams{
		Customer:           stripe.String(customerID),
		Usage:              stripe.String("off_session"),
		PaymentMethodTypes: stripe.StringSlice([]string{"card", "link"}),
	}
	params.Context = ctx

	intent, err := s.sc.SetupIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return intent.ClientSecret, nil
}

// subscriptionObject — нужные поля объекта подписки из webhook-события.
// Разбирается из сырого JSON, чтобы не зависеть от версии схемы SDK.
type subscriptionObject struct {
	ID               string            `json:"id"`
	Status           string            `json:"status"`
	CurrentPeriodEnd int64             `json:"current_period_end"`
	Metadata         map[string]string `json:"metadata"`
}

// ApplyEvent применяет webhook-событие провайдера к состоянию подписки.
// Событие без разрешимого идентификатора пользователя принимается и
// игнорируется: провайдеру в любом случае отвечают успехом, чтобы
// не провоцировать шторм повторных доставок.
func (s *Service) ApplyEvent(ctx context.Context, event stripe.Event) error {
	const op = "billing.ApplyEvent"

	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated":
	default:
		s.log.Info("ignored webhook event", slog.String("type", string(event.Type)))
		return nil
	}

	var obj subscriptionObject
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	userUID := obj.Metadata[metadataUserKey]
	if userUID == "" {
		s.log.Info("webhook event without user id, ignored", slog.String("subscription", obj.ID))
		return nil
	}
	if _, err := s.users.GetUser(ctx, userUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.log.Info("webhook event for unknown user, ignored", slog.String("user_uid", userUID))
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	periodEnd := time.Unix(obj.CurrentPeriodEnd, 0).UTC()
	if err := s.subs.UpsertSubscriptionFromEvent(ctx, userUID, obj.ID, obj.Status,
		premiumPlan, periodEnd); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.views.InvalidateView(userUID)

	s.log.Info("applied billing event",
		slog.String("type", string(event.Type)),
		slog.String("user_uid", userUID),
		slog.String("status", obj.Status))
	return nil
}

// ensureCustomer возвращает идентификатор клиента Stripe, создавая клиента
// и запись подписки, если их ещё нет. Подписка, созданная здесь лениво,
// получает обычный пробный период.
func (s *Service) ensureCustomer(ctx context.Context, user *models.User) (string, error) {
	sub, err := s.subs.GetSubscriptionByUserUID(ctx, user.UID)
	if err != nil {
		return "", err
	}
	if sub == nil {
		trialEndsAt := entitlement.TrialEnd(s.now(), s.trialDuration)
		if _, err := s.subs.CreateSubscription(ctx, models.Subscription{
			UserUID:     user.UID,
			Status:      "trialing",
			TrialEndsAt: &trialEndsAt,
			Plan:        "free",
		}); err != nil {
			return "", err
		}
		sub = &models.Subscription{UserUID: user.UID}
	}
	if sub.StripeCustomerID != "" {
		return sub.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(user.Email),
	}
	params.Context = ctx
	params.AddMetadata(metadataUserKey, user.UID)

	customer, err := s.sc.Customers.New(params)
	if err != nil {
		return "", err
	}
	if err := s.subs.SetStripeCustomerID(ctx, user.UID, customer.ID); err != nil {
		return "", err
	}
	return customer.ID, nil
}
