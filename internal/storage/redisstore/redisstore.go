// Package redisstore хранит записи и сессию администратора в redis.
// Все записи лежат одним JSON-массивом под ключом RecordsKey, сессия под SessionKey.
// Изменения публикуются в канал ChangesChannel, чтобы другие экземпляры перечитали данные.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/lendlens/internal/cache"
	"github.com/magabrotheeeer/lendlens/internal/models"
	"github.com/magabrotheeeer/lendlens/internal/storage"
)

const (
	RecordsKey     = "lendlens_defaulters"
	SessionKey     = "lendlens_user"
	ChangesChannel = "lendlens_defaulters_changed"

	maxTxRetries = 5
)

// Storage работает поверх cache.Cache.
type Storage struct {
	cache *cache.Cache
}

// New создаёт хранилище поверх готового подключения.
func New(c *cache.Cache) *Storage {
	return &Storage{cache: c}
}

// readRecords читает массив записей. Испорченное содержимое считается пустым списком.
func (s *Storage) readRecords(ctx context.Context, getter redis.Cmdable) ([]models.Defaulter, error) {
	raw, err := getter.Get(ctx, RecordsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	records, err := decodeRecords(raw)
	if err != nil {
		return nil, nil
	}
	return records, nil
}

// mutate выполняет чтение-изменение-запись массива под WATCH и публикует уведомление.
func (s *Storage) mutate(ctx context.Context, fn func([]models.Defaulter) ([]models.Defaulter, error)) error {
	txf := func(tx *redis.Tx) error {
		records, err := s.readRecords(ctx, tx)
		if err != nil {
			return err
		}
		records, err = fn(records)
		if err != nil {
			return err
		}
		data, err := encodeRecords(records)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, RecordsKey, data, 0)
			pipe.Publish(ctx, ChangesChannel, "changed")
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = s.cache.Db.Watch(ctx, txf, RecordsKey)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

// CreateRecord добавляет запись в конец массива.
func (s *Storage) CreateRecord(ctx context.Context, d models.Defaulter) (string, error) {
	const op = "storage.redisstore.CreateRecord"
	err := s.mutate(ctx, func(records []models.Defaulter) ([]models.Defaulter, error) {
		for _, r := range records {
			if r.ID == d.ID {
				return nil, fmt.Errorf("duplicate id %q", d.ID)
			}
		}
		return append(records, d), nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return d.ID, nil
}

// UpdateRecord меняет флаги enabled и is_expired записи.
func (s *Storage) UpdateRecord(ctx context.Context, d models.Defaulter) error {
	const op = "storage.redisstore.UpdateRecord"
	err := s.mutate(ctx, func(records []models.Defaulter) ([]models.Defaulter, error) {
		for i := range records {
			if records[i].ID == d.ID {
				records[i].Enabled = d.Enabled
				records[i].IsExpired = d.IsExpired
				return records, nil
			}
		}
		return nil, models.ErrNotFound
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListRecords возвращает все записи.
func (s *Storage) ListRecords(ctx context.Context) ([]models.Defaulter, error) {
	const op = "storage.redisstore.ListRecords"
	records, err := s.readRecords(ctx, s.cache.Db)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

// Subscribe слушает канал изменений и вызывает onChange на каждое сообщение.
// Переподключение выполняет сам клиент go-redis.
func (s *Storage) Subscribe(ctx context.Context, log *slog.Logger, onChange func()) error {
	const op = "storage.redisstore.Subscribe"
	pubsub := s.cache.Db.Subscribe(ctx, ChangesChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("%s: %w", op, err)
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					log.Warn("change notifications channel closed", slog.String("op", op))
					return
				}
				onChange()
			}
		}
	}()
	return nil
}

// LoadSession читает сохранённую сессию. Испорченное значение считается отсутствующим.
func (s *Storage) LoadSession(ctx context.Context) (models.Session, error) {
	const op = "storage.redisstore.LoadSession"
	var session models.Session
	ok, err := s.cache.Get(ctx, SessionKey, &session)
	if errors.Is(err, cache.ErrMalformed) {
		return models.Session{}, storage.ErrNoSession
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return models.Session{}, storage.ErrNoSession
	}
	return session, nil
}

// SaveSession сохраняет сессию до истечения её срока.
func (s *Storage) SaveSession(ctx context.Context, session models.Session) error {
	const op = "storage.redisstore.SaveSession"
	if err := s.cache.Set(ctx, SessionKey, session, 0); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !session.ExpiresAt.IsZero() {
		if err := s.cache.Db.ExpireAt(ctx, SessionKey, session.ExpiresAt).Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// ClearSession удаляет сессию.
func (s *Storage) ClearSession(ctx context.Context) error {
	const op = "storage.redisstore.ClearSession"
	if err := s.cache.Invalidate(ctx, SessionKey); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает подключение к redis.
func (s *Storage) Close() error {
	return s.cache.Close()
}
