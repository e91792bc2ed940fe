package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/digitalguardian/breachwatch/internal/models"
)

// CreateExposure вставляет новую запись об утечке и возвращает её ID.
// Дедупликации нет: повторное сканирование добавляет новые строки,
// таблица ведётся как история.
func (s *Storage) CreateExposure(ctx context.Context, exposure models.Exposure) (int, error) {
	const op = "storage.CreateExposure"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO exposures (user_uid, email, breach_name, breach_domain, breach_date,
			      breach_description, data_classes, severity, source)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		exposure.UserUID, exposure.Email, exposure.BreachName, exposure.BreachDomain,
		exposure.BreachDate, exposure.BreachDescription, exposure.DataClasses,
		exposure.Severity, exposure.Source).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetExposure возвращает запись по ID, только если она принадлежит
// пользователю. Чужие записи неотличимы от отсутствующих: (nil, nil).
func (s *Storage) GetExposure(ctx context.Context, id int, userUID string) (*models.Exposure, error) {
	const op = "storage.GetExposure"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, email, breach_name, breach_domain, breach_date,
			      breach_description, data_classes, severity, source, created_at
			  FROM exposures
			  WHERE id = $1 AND user_uid = $2`
	row := s.DB.QueryRowContext(ctx, query, id, userUID)

	e := &models.Exposure{}
	err := row.Scan(&e.ID, &e.UserUID, &e.Email, &e.BreachName, &e.BreachDomain, &e.BreachDate,
		&e.BreachDescription, &e.DataClasses, &e.Severity, &e.Source, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

// ListExposuresByUser возвращает все записи пользователя, новые первыми.
func (s *Storage) ListExposuresByUser(ctx context.Context, userUID string) ([]*models.Exposure, error) {
	const op = "storage.ListExposuresByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, email, breach_name, breach_domain, breach_date,
			      breach_description, data_classes, severity, source, created_at
			  FROM exposures
			  WHERE user_uid = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Exposure
	for rows.Next() {
		e := &models.Exposure{}
		if err = rows.Scan(&e.ID, &e.UserUID, &e.Email, &e.BreachName, &e.BreachDomain, &e.BreachDate,
			&e.BreachDescription, &e.DataClasses, &e.Severity, &e.Source, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountExposuresBySeverity возвращает количество записей пользователя
// в разрезе серьёзности.
func (s *Storage) CountExposuresBySeverity(ctx context.Context, userUID string) (map[string]int, error) {
	const op = "storage.CountExposuresBySeverity"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT severity, COUNT(*)
			  FROM exposures
			  WHERE user_uid = $1
			  GROUP BY severity`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	result := make(map[string]int)
	for rows.Next() {
		var severity string
		var count int
		if err = rows.Scan(&severity, &count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[severity] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
