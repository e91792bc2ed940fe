package repository

import (
	"context"
	"fmt"
)

// CreateAuditLog пишет запись журнала действий пользователя.
// Вызывающая сторона глотает ошибку: журнал best-effort.
func (s *Storage) CreateAuditLog(ctx context.Context, userUID, action, emailScanned string) error {
	const op = "storage.CreateAuditLog"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO audit_logs (user_uid, action, email_scanned)
			  VALUES ($1, $2, $3)`
	_, err := s.DB.ExecContext(ctx, query, userUID, action, emailScanned)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
