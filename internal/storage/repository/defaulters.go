package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/lendlens/internal/lib/sl"
	"github.com/magabrotheeeer/lendlens/internal/models"
)

// CreateRecord сохраняет новую запись.
func (s *Storage) CreateRecord(ctx context.Context, d models.Defaulter) (string, error) {
	const op = "storage.repository.CreateRecord"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO defaulters (id, image, name, amount, currency, end_time, enabled, is_expired, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	var id string
	err := s.DB.QueryRowContext(ctx, query,
		d.ID, d.Image, d.Name, d.Amount, string(d.Currency),
		d.EndTime, d.Enabled, d.IsExpired, d.CreatedAt).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdateRecord обновляет флаги enabled и is_expired.
func (s *Storage) UpdateRecord(ctx context.Context, d models.Defaulter) error {
	const op = "storage.repository.UpdateRecord"

	query := `UPDATE defaulters SET enabled = $2, is_expired = $3 WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query, d.ID, d.Enabled, d.IsExpired)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// ListRecords возвращает все записи в порядке вставки.
func (s *Storage) ListRecords(ctx context.Context) ([]models.Defaulter, error) {
	const op = "storage.repository.ListRecords"

	query := `SELECT id, image, name, amount, currency, end_time, enabled, is_expired, created_at
			  FROM defaulters
			  ORDER BY seq`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Defaulter
	for rows.Next() {
		var d models.Defaulter
		var currency string
		if err := rows.Scan(&d.ID, &d.Image, &d.Name, &d.Amount, &currency,
			&d.EndTime, &d.Enabled, &d.IsExpired, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		d.Currency = models.Currency(currency)
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ResubscribeDelay — пауза перед повторным LISTEN после обрыва соединения.
var ResubscribeDelay = time.Second

// Subscribe выполняет LISTEN на отдельном соединении и вызывает onChange
// на каждое уведомление, пока не отменён ctx. Оборванное соединение
// заменяется новым.
func (s *Storage) Subscribe(ctx context.Context, log *slog.Logger, onChange func()) error {
	const op = "storage.repository.Subscribe"

	conn, err := s.listen(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	go func() {
		for {
			err := waitNotifications(ctx, conn, onChange)
			_ = conn.Close()
			if ctx.Err() != nil {
				return
			}
			log.Warn("change notifications interrupted, resubscribing", slog.String("op", op), sl.Err(err))

			for {
				select {
				case <-ctx.Done():
					return
				case <-time.After(ResubscribeDelay):
				}
				conn, err = s.listen(ctx)
				if err == nil {
					break
				}
				if ctx.Err() != nil {
					return
				}
				log.Warn("failed to resubscribe to change notifications", slog.String("op", op), sl.Err(err))
			}
			log.Info("change notifications resubscribed", slog.String("op", op))
			onChange()
		}
	}()
	return nil
}

func (s *Storage) listen(ctx context.Context) (*sql.Conn, error) {
	conn, err := s.DB.Conn(ctx)
	if err != nil {
		return nil, err
	}
	if _, err = conn.ExecContext(ctx, "LISTEN "+ChangesChannel); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func waitNotifications(ctx context.Context, conn *sql.Conn, onChange func()) error {
	return conn.Raw(func(driverConn any) error {
		pgConn, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return errors.New("unexpected driver connection")
		}
		for {
			if _, err := pgConn.Conn().WaitForNotification(ctx); err != nil {
				return err
			}
			onChange()
		}
	})
}
