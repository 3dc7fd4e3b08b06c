// Package memory реализует хранилище записей и сессии в памяти процесса.
// Используется в простейшем развёртывании и как запасной набор данных,
// когда удалённое хранилище недоступно при старте.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/lendlens/internal/models"
	"github.com/magabrotheeeer/lendlens/internal/storage"
)

// Storage хранит записи и сессию под одним мьютексом.
type Storage struct {
	mu      sync.Mutex
	records []models.Defaulter
	index   map[string]int
	session *models.Session
}

// New создаёт пустое хранилище.
func New() *Storage {
	return &Storage{index: make(map[string]int)}
}

// NewWithMockData создаёт хранилище с демонстрационными записями.
func NewWithMockData(now time.Time) *Storage {
	s := New()
	for _, d := range MockDefaulters(now) {
		s.index[d.ID] = len(s.records)
		s.records = append(s.records, d)
	}
	return s
}

// MockDefaulters возвращает демонстрационный набор: одна запись с идущим
// таймером, одна уже раскрытая и одна скрытая администратором.
func MockDefaulters(now time.Time) []models.Defaulter {
	const placeholder = "https://via.placeholder.com/300"
	return []models.Defaulter{
		{
			ID:        "mock-1",
			Image:     placeholder,
			Name:      "Kwame Mensah",
			Amount:    decimal.RequireFromString("1500"),
			Currency:  models.GHS,
			EndTime:   now.Add(48 * time.Hour),
			Enabled:   true,
			CreatedAt: now.Add(-time.Hour),
		},
		{
			ID:        "mock-2",
			Image:     placeholder,
			Name:      "Jane Doe",
			Amount:    decimal.RequireFromString("100"),
			Currency:  models.USD,
			EndTime:   now.Add(-time.Hour),
			Enabled:   true,
			IsExpired: true,
			CreatedAt: now.Add(-3 * time.Hour),
		},
		{
			ID:        "mock-3",
			Image:     placeholder,
			Name:      "John Smith",
			Amount:    decimal.RequireFromString("250.75"),
			Currency:  models.GBP,
			EndTime:   now.Add(30 * time.Minute),
			Enabled:   false,
			CreatedAt: now.Add(-2 * time.Hour),
		},
	}
}

// CreateRecord добавляет запись в конец списка.
func (s *Storage) CreateRecord(ctx context.Context, d models.Defaulter) (string, error) {
	const op = "storage.memory.CreateRecord"
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[d.ID]; ok {
		return "", fmt.Errorf("%s: duplicate id %q", op, d.ID)
	}
	s.index[d.ID] = len(s.records)
	s.records = append(s.records, d)
	return d.ID, nil
}

// UpdateRecord перезаписывает флаги enabled и is_expired.
func (s *Storage) UpdateRecord(ctx context.Context, d models.Defaulter) error {
	const op = "storage.memory.UpdateRecord"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[d.ID]
	if !ok {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	s.records[i].Enabled = d.Enabled
	s.records[i].IsExpired = d.IsExpired
	return nil
}

// ListRecords возвращает копию списка записей.
func (s *Storage) ListRecords(ctx context.Context) ([]models.Defaulter, error) {
	const op = "storage.memory.ListRecords"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Defaulter, len(s.records))
	copy(out, s.records)
	return out, nil
}

// LoadSession возвращает сохранённую сессию или storage.ErrNoSession.
func (s *Storage) LoadSession(_ context.Context) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return models.Session{}, storage.ErrNoSession
	}
	return *s.session, nil
}

// SaveSession заменяет сохранённую сессию.
func (s *Storage) SaveSession(_ context.Context, session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &session
	return nil
}

// ClearSession удаляет сохранённую сессию.
func (s *Storage) ClearSession(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}
