// Package models содержит доменные структуры, описывающие пользователя,
// его подписку, найденные утечки и журнал действий, а также вспомогательные
// типы для приёма данных из внешних источников (JSON-запросы, очереди).
package models

import "time"

// User представляет зарегистрированного пользователя системы.
// Email нормализуется (trim + lowercase) при регистрации и после этого не меняется.
type User struct {
	UID          string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта (уникальная, нормализованная)
	Name         string    // Отображаемое имя
	PasswordHash string    // Хэш пароля; пустая строка для пользователей социального входа
	CreatedAt    time.Time // Дата создания учётной записи
}
