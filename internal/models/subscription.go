package models

import "time"

// Subscription представляет запись подписки пользователя.
// У каждого пользователя не более одной подписки; отсутствие записи
// означает отсутствие доступа (кроме exempt-пользователя).
// Даты окончания пробного периода и оплаченного периода могут быть nil.
type Subscription struct {
	ID                   int        // Внутренний идентификатор записи
	UserUID              string     // Владелец подписки
	StripeCustomerID     string     // Идентификатор клиента в платёжном провайдере
	StripeSubscriptionID string     // Идентификатор подписки в платёжном провайдере
	Status               string     // trialing | active | canceled и др.
	TrialEndsAt          *time.Time // Момент окончания пробного периода
	CurrentPeriodEnd     *time.Time // Конец текущего оплаченного периода
	Plan                 string     // Название тарифа (free, premium)
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// SubscriptionSummary — краткое представление подписки в ответах
// регистрации и входа.
type SubscriptionSummary struct {
	Status      string     `json:"status"`
	Plan        string     `json:"plan"`
	TrialEndsAt *time.Time `json:"trialEndsAt,omitempty"`
}

// SummarizeSubscription строит краткое представление; nil остаётся nil.
func SummarizeSubscription(sub *Subscription) *SubscriptionSummary {
	if sub == nil {
		return nil
	}
	return &SubscriptionSummary{
		Status:      sub.Status,
		Plan:        sub.Plan,
		TrialEndsAt: sub.TrialEndsAt,
	}
}

// SubscriptionView — представление подписки для клиента API.
type SubscriptionView struct {
	Status           string     `json:"status"`
	IsPremium        bool       `json:"isPremium"`
	TrialActive      bool       `json:"trialActive"`
	TrialEndsAt      *time.Time `json:"trialEndsAt"`
	Exempt           bool       `json:"exempt"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd,omitempty"`
	Plan             string     `json:"plan,omitempty"`
}
