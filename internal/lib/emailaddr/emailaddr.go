// Package emailaddr содержит функции нормализации и синтаксической проверки
// адресов электронной почты. Нормализация выполняется до любого обращения
// к внешним провайдерам и до записи в журнал действий.
package emailaddr

import (
	"net/mail"
	"strings"
)

// Normalize приводит адрес к канонической форме: обрезает пробелы
// и переводит в нижний регистр.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Valid выполняет синтаксическую проверку адреса.
// Адрес должен разбираться без display name и содержать домен.
func Valid(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email
}
