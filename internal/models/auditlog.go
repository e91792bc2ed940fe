package models

import "time"

// AuditLogEntry — запись журнала действий пользователя.
// Журнал пишется best-effort: ошибка записи не прерывает основную операцию.
type AuditLogEntry struct {
	ID           int
	UserUID      string
	Action       string // scan_own | scan_search
	EmailScanned string
	CreatedAt    time.Time
}
