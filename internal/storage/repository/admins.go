package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/lendlens/internal/lib/password"
	"github.com/magabrotheeeer/lendlens/internal/models"
	"github.com/magabrotheeeer/lendlens/internal/storage"
)

// normalizeEmail приводит email к виду, в котором он хранится в admins.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SeedAdmin создаёт или обновляет учётную запись администратора из конфига.
func (s *Storage) SeedAdmin(ctx context.Context, email, passwordHash string) error {
	const op = "storage.repository.SeedAdmin"

	query := `INSERT INTO admins (email, password_hash) VALUES ($1, $2)
			  ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash`
	if _, err := s.DB.ExecContext(ctx, query, normalizeEmail(email), passwordHash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetAdmin возвращает учётную запись по email.
func (s *Storage) GetAdmin(ctx context.Context, email string) (*models.Admin, error) {
	const op = "storage.repository.GetAdmin"

	var a models.Admin
	query := `SELECT email, password_hash, created_at FROM admins WHERE email = $1`
	err := s.DB.QueryRowContext(ctx, query, normalizeEmail(email)).Scan(&a.Email, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &a, nil
}

// Authenticate сверяет пароль с хэшем из таблицы admins.
func (s *Storage) Authenticate(ctx context.Context, email, pass string) error {
	const op = "storage.repository.Authenticate"

	admin, err := s.GetAdmin(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, models.ErrAuthentication)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(admin.PasswordHash, pass); err != nil {
		return fmt.Errorf("%s: %w", op, models.ErrAuthentication)
	}
	return nil
}

// LoadSession возвращает последнюю сохранённую сессию.
func (s *Storage) LoadSession(ctx context.Context) (models.Session, error) {
	const op = "storage.repository.LoadSession"

	var session models.Session
	query := `SELECT id, email, role, created_at, expires_at
			  FROM admin_sessions ORDER BY created_at DESC LIMIT 1`
	err := s.DB.QueryRowContext(ctx, query).
		Scan(&session.ID, &session.Email, &session.Role, &session.CreatedAt, &session.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, storage.ErrNoSession
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}

// SaveSession заменяет сохранённую сессию одной транзакцией.
func (s *Storage) SaveSession(ctx context.Context, session models.Session) error {
	const op = "storage.repository.SaveSession"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM admin_sessions`); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	query := `INSERT INTO admin_sessions (id, email, role, created_at, expires_at)
			  VALUES ($1, $2, $3, $4, $5)`
	if _, err = tx.ExecContext(ctx, query,
		session.ID, session.Email, session.Role, session.CreatedAt, session.ExpiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClearSession удаляет сохранённую сессию.
func (s *Storage) ClearSession(ctx context.Context) error {
	const op = "storage.repository.ClearSession"
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM admin_sessions`); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
