package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/digitalguardian/breachwatch/internal/models"
)

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (uid, email, name, password_hash)
			  VALUES ($1, $2, $3, NULLIF($4, ''))
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.UID, user.Email, user.Name, user.PasswordHash).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmail возвращает пользователя по нормализованному email.
// Если пользователь не найден, возвращает (nil, nil).
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, name, password_hash, created_at
			  FROM users
			  WHERE email = $1`
	u, err := s.scanUser(s.DB.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, name, password_hash, created_at
			  FROM users
			  WHERE uid = $1`
	u, err := s.scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// FindUsersForMonitoring возвращает пользователей, для которых активен
// премиум-мониторинг: действующая или пробная подписка либо exempt-адрес.
// Точная проверка прав остаётся за машиной состояний.
func (s *Storage) FindUsersForMonitoring(ctx context.Context, exemptEmail string) ([]*models.User, error) {
	const op = "storage.FindUsersForMonitoring"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.uid, u.email, u.name, u.password_hash, u.created_at
			  FROM users u
			  LEFT JOIN subscriptions s ON s.user_uid = u.uid
			  WHERE s.status IN ('active', 'trialing') OR u.email = $1
			  ORDER BY u.created_at;`
	rows, err := s.DB.QueryContext(ctx, query, exemptEmail)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.User
	for rows.Next() {
		u := &models.User{}
		var passwordHash sql.NullString
		if err = rows.Scan(&u.UID, &u.Email, &u.Name, &passwordHash, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		u.PasswordHash = passwordHash.String
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Storage) scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var passwordHash sql.NullString
	if err := row.Scan(&u.UID, &u.Email, &u.Name, &passwordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.PasswordHash = passwordHash.String
	return u, nil
}
