// Package classify преобразует нормализованную запись об утечке
// в персистентную запись Exposure: вычисляет серьёзность по числу
// затронутых записей и выводит тип утечки из классов данных.
package classify

import (
	"strings"

	"github.com/digitalguardian/breachwatch/internal/models"
)

// Пороговые значения серьёзности по числу затронутых записей.
const (
	highThreshold   = 100_000_000
	mediumThreshold = 1_000_000
)

// Severity возвращает серьёзность утечки по числу затронутых записей.
// Пороги строгие: ровно 100 000 000 — это ещё medium, ровно 1 000 000 — low.
// Нулевое или отсутствующее значение даёт low.
func Severity(hitCount int) string {
	switch {
	case hitCount > highThreshold:
		return "high"
	case hitCount > mediumThreshold:
		return "medium"
	default:
		return "low"
	}
}

// InferType выводит тип утечки из строки классов данных.
// Проверки идут по убыванию критичности, срабатывает первое совпадение:
// пароли важнее адресов почты, почта важнее телефонов и т.д.
func InferType(dataClasses string) string {
	dc := strings.ToLower(dataClasses)
	switch {
	case strings.Contains(dc, "password"):
		return "Credentials"
	case strings.Contains(dc, "email"):
		return "Email"
	case strings.Contains(dc, "phone"):
		return "Phone"
	case strings.Contains(dc, "address"):
		return "Address"
	default:
		return "Account"
	}
}

// MapView строит клиентское представление записи. Тип выводится из
// классов данных при каждом чтении, а не хранится.
func MapView(e models.Exposure) models.ExposureView {
	return models.ExposureView{
		ID:           e.ID,
		Type:         InferType(e.DataClasses),
		Source:       e.Source,
		Data:         e.DataClasses,
		Risk:         e.Severity,
		Date:         e.BreachDate,
		Status:       "active",
		Assessment:   assessment(e.Severity),
		BreachName:   e.BreachName,
		BreachDomain: e.BreachDomain,
	}
}

func assessment(severity string) string {
	switch severity {
	case "high":
		return "Смените пароль немедленно и включите двухфакторную аутентификацию."
	case "medium":
		return "Рекомендуется сменить пароль на затронутом сервисе."
	default:
		return "Следите за подозрительной активностью на аккаунте."
	}
}

// MapExposure строит Exposure из нормализованной записи провайдера.
// Все значения по умолчанию подставляются здесь, один раз: дальше по
// конвейеру запись считается полностью заполненной.
func MapExposure(breach models.NormalizedBreach, email string) models.Exposure {
	domain := breach.Domain
	if domain == "" {
		domain = "unknown"
	}
	date := breach.Date
	if date == "" {
		date = "unknown"
	}
	source := breach.Title
	if source == "" {
		source = breach.Name
	}
	return models.Exposure{
		Email:             email,
		BreachName:        breach.Name,
		BreachDomain:      domain,
		BreachDate:        date,
		BreachDescription: breach.Description,
		DataClasses:       strings.Join(breach.DataClasses, ", "),
		Severity:          Severity(breach.HitCount),
		Source:            source,
	}
}
