// Package entitlement реализует машину состояний доступа к премиум-функциям.
//
// Состояние выводится как чистая функция от (email, подписка, текущее время):
// никаких побочных эффектов и обращений к часам внутри — время всегда
// передаётся снаружи, что делает логику детерминированной и тестируемой.
package entitlement

import (
	"time"

	"github.com/digitalguardian/breachwatch/internal/lib/emailaddr"
	"github.com/digitalguardian/breachwatch/internal/models"
)

// Status — вычисленный уровень доступа пользователя.
type Status string

const (
	// Exempt — пользователь из конфигурации с бессрочным премиум-доступом.
	Exempt Status = "exempt"
	// Active — действующая оплаченная подписка.
	Active Status = "active"
	// TrialActive — пробный период ещё не истёк.
	TrialActive Status = "trial_active"
	// TrialExpired — пробный период закончился, оплаты нет.
	TrialExpired Status = "trial_expired"
	// None — подписки нет либо она в неизвестном статусе.
	None Status = "none"
)

// Premium сообщает, открывает ли статус премиум-функции
// (поиск по произвольному адресу, постоянный мониторинг).
func (s Status) Premium() bool {
	return s == Exempt || s == Active || s == TrialActive
}

// Rules хранит конфигурацию машины состояний.
// Exempt-адрес передаётся явно при создании, а не читается из глобалов.
type Rules struct {
	exemptEmail string
}

// NewRules создаёт Rules с нормализованным exempt-адресом.
// Пустая строка означает отсутствие exempt-пользователя.
func NewRules(exemptEmail string) Rules {
	return Rules{exemptEmail: emailaddr.Normalize(exemptEmail)}
}

// ExemptEmail возвращает нормализованный exempt-адрес, пустая строка —
// exempt-пользователь не задан.
func (r Rules) ExemptEmail() string {
	return r.exemptEmail
}

// Classify вычисляет уровень доступа пользователя на момент now.
//
// Порядок проверок фиксирован: exempt-адрес перекрывает всё, затем
// отсутствие подписки, затем статусы active и trialing. Граница пробного
// периода строгая: в момент trial_ends_at доступ уже закрыт.
func (r Rules) Classify(email string, sub *models.Subscription, now time.Time) Status {
	if r.exemptEmail != "" && emailaddr.Normalize(email) == r.exemptEmail {
		return Exempt
	}
	if sub == nil {
		return None
	}
	switch sub.Status {
	case "active":
		return Active
	case "trialing":
		if sub.TrialEndsAt != nil && now.Before(*sub.TrialEndsAt) {
			return TrialActive
		}
		return TrialExpired
	default:
		return None
	}
}

// TrialEnd вычисляет момент окончания пробного периода от момента создания
// подписки. Длительность точная, без округления до календарных суток.
func TrialEnd(createdAt time.Time, trialDuration time.Duration) time.Time {
	return createdAt.UTC().Add(trialDuration)
}
