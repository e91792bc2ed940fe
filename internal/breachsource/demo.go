package breachsource

import (
	"context"

	"github.com/digitalguardian/breachwatch/internal/models"
)

// DemoSource — фиксированный набор утечек для разработки без API-ключа.
// Это НЕ продакшен-поведение: каждая запись помечена флагом Demo, чтобы
// её нельзя было спутать с настоящим результатом.
type DemoSource struct{}

// NewDemoSource создаёт демонстрационный источник.
func NewDemoSource() *DemoSource {
	return &DemoSource{}
}

// Lookup возвращает копию фиксированного набора записей.
func (d *DemoSource) Lookup(_ context.Context, _ string) ([]models.NormalizedBreach, error) {
	demos := []models.NormalizedBreach{
		{
			Name:        "Adobe",
			Title:       "Adobe",
			Domain:      "adobe.com",
			Date:        "2013-10-04",
			Description: "In October 2013, 153 million Adobe accounts were breached.",
			DataClasses: []string{"Email addresses", "Password hints", "Usernames"},
			HitCount:    152445165,
			Verified:    true,
			Demo:        true,
		},
		{
			Name:        "LinkedIn",
			Title:       "LinkedIn",
			Domain:      "linkedin.com",
			Date:        "2012-05-01",
			Description: "LinkedIn breach affecting millions of accounts.",
			DataClasses: []string{"Email addresses", "Passwords", "Usernames"},
			HitCount:    164611595,
			Verified:    true,
			Demo:        true,
		},
		{
			Name:        "Collection1",
			Title:       "Collection #1",
			Domain:      "multiple",
			Date:        "2018-12-01",
			Description: "Collection of credentials from various breaches.",
			DataClasses: []string{"Email addresses", "Passwords"},
			HitCount:    773000000,
			Verified:    true,
			Demo:        true,
		},
	}
	return demos, nil
}
