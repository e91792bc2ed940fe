// Package breachsource содержит адаптеры провайдеров данных об утечках.
//
// Каждый адаптер приводит ответ конкретного провайдера к единой форме
// models.NormalizedBreach; различия форматов не выходят за границу пакета.
// Ответ "адрес не найден" — это пустой список, а не ошибка. Любой другой
// сбой провайдера заворачивается в ErrProvider и не ретраится.
package breachsource

import (
	"context"
	"errors"
	"net/http"

	"github.com/digitalguardian/breachwatch/internal/config"
	"github.com/digitalguardian/breachwatch/internal/models"
)

// ErrProvider — сбой внешнего провайдера: сеть, таймаут, некорректный
// ответ или не-успешный статус. Вызывающая сторона ловит его на своей
// границе и превращает в общий ответ об ошибке сканирования.
var ErrProvider = errors.New("breach provider error")

// Adapter описывает источник данных об утечках для одного email.
type Adapter interface {
	Lookup(ctx context.Context, email string) ([]models.NormalizedBreach, error)
}

// New выбирает адаптер по конфигурации. Предпочтение отдаётся провайдеру
// из cfg.Provider; если его ключ не задан, но задан ключ другого
// провайдера, используется тот. Совсем без ключей возвращается
// демонстрационный источник — фолбэк для разработки, его записи
// помечены флагом Demo.
func New(cfg config.BreachProvider) Adapter {
	httpClient := &http.Client{Timeout: cfg.ProviderTimeout}
	if cfg.Provider == "hibp" && cfg.HIBPAPIKey != "" {
		return NewHIBPClient(cfg.HIBPAPIKey, httpClient)
	}
	if cfg.LeakCheckAPIKey != "" {
		return NewLeakCheckClient(cfg.LeakCheckAPIKey, httpClient)
	}
	if cfg.HIBPAPIKey != "" {
		return NewHIBPClient(cfg.HIBPAPIKey, httpClient)
	}
	return NewDemoSource()
}
