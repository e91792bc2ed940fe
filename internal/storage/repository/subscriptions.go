package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/digitalguardian/breachwatch/internal/models"
)

// CreateSubscription вставляет запись подписки пользователя и возвращает её ID.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_uid, status, trial_ends_at, plan)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		sub.UserUID, sub.Status, sub.TrialEndsAt, sub.Plan).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetSubscriptionByUserUID возвращает подписку пользователя.
// Отсутствие записи — это не ошибка: возвращается (nil, nil),
// машина состояний трактует это как отсутствие доступа.
func (s *Storage) GetSubscriptionByUserUID(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByUserUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, COALESCE(stripe_customer_id, ''), COALESCE(stripe_subscription_id, ''),
			      status, trial_ends_at, current_period_end, COALESCE(plan, ''), created_at, updated_at
			  FROM subscriptions
			  WHERE user_uid = $1`
	row := s.DB.QueryRowContext(ctx, query, userUID)

	sub := &models.Subscription{}
	var trialEndsAt, currentPeriodEnd sql.NullTime
	err := row.Scan(&sub.ID, &sub.UserUID, &sub.StripeCustomerID, &sub.StripeSubscriptionID,
		&sub.Status, &trialEndsAt, &currentPeriodEnd, &sub.Plan, &sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if trialEndsAt.Valid {
		sub.TrialEndsAt = &trialEndsAt.Time
	}
	if currentPeriodEnd.Valid {
		sub.CurrentPeriodEnd = &currentPeriodEnd.Time
	}
	return sub, nil
}

// SetStripeCustomerID сохраняет идентификатор клиента платёжного провайдера.
func (s *Storage) SetStripeCustomerID(ctx context.Context, userUID, customerID string) error {
	const op = "storage.SetStripeCustomerID"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET stripe_customer_id = $1, updated_at = now()
			  WHERE user_uid = $2`
	_, err := s.DB.ExecContext(ctx, query, customerID, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpsertSubscriptionFromEvent применяет платёжное событие провайдера к подписке
// пользователя. Upsert атомарен на уровне строки: при гонке побеждает
// последняя запись, что допустимо при доставке событий в порядке возрастания.
func (s *Storage) UpsertSubscriptionFromEvent(ctx context.Context, userUID, stripeSubscriptionID,
	status, plan string, currentPeriodEnd time.Time) error {
	const op = "storage.UpsertSubscriptionFromEvent"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_uid, stripe_subscription_id, status, plan, current_period_end)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (user_uid) DO UPDATE
			  SET stripe_subscription_id = EXCLUDED.stripe_subscription_id,
			      status = EXCLUDED.status,
			      plan = EXCLUDED.plan,
			      current_period_end = EXCLUDED.current_period_end,
			      updated_at = now()`
	_, err := s.DB.ExecContext(ctx, query, userUID, stripeSubscriptionID, status, plan, currentPeriodEnd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
