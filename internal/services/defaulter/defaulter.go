// Package services содержит бизнес-логику работы с записями должников:
// создание, скрытие, выдачу публичного и полного списка, пересчёт истёкших таймеров.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/lendlens/internal/lib/sl"
	"github.com/magabrotheeeer/lendlens/internal/metrics"
	"github.com/magabrotheeeer/lendlens/internal/models"
)

// RecordRepository определяет методы внешнего хранилища записей.
type RecordRepository interface {
	// CreateRecord сохраняет запись и возвращает её идентификатор.
	CreateRecord(ctx context.Context, d models.Defaulter) (string, error)
	// UpdateRecord перезаписывает флаги enabled и is_expired.
	UpdateRecord(ctx context.Context, d models.Defaulter) error
	// ListRecords возвращает все записи в порядке создания.
	ListRecords(ctx context.Context) ([]models.Defaulter, error)
}

// Notifier получает событие о созданной записи.
type Notifier interface {
	DefaulterCreated(ctx context.Context, d models.Defaulter)
}

// DefaulterService владеет коллекцией записей. Коллекция хранится в памяти
// в порядке вставки; каждое изменение сначала сохраняется во внешнем хранилище.
type DefaulterService struct {
	mu      sync.RWMutex
	records []models.Defaulter
	index   map[string]int

	repo     RecordRepository
	notifier Notifier
	log      *slog.Logger
	timeout  time.Duration
	now      func() time.Time
	newID    func() string
}

// NewDefaulterService создает новый экземпляр DefaulterService.
// timeout ограничивает каждый вызов внешнего хранилища.
func NewDefaulterService(repo RecordRepository, notifier Notifier, log *slog.Logger, timeout time.Duration) *DefaulterService {
	return &DefaulterService{
		index:    make(map[string]int),
		repo:     repo,
		notifier: notifier,
		log:      log,
		timeout:  timeout,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Сумма хранится как NUMERIC(20,2): не больше 18 цифр до запятой и 2 после.
const amountScale = 2

var maxAmount = decimal.New(1, 18)

func validation(msg string) error {
	return fmt.Errorf("%w: %s", models.ErrValidation, msg)
}

func (s *DefaulterService) remoteCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// build проверяет входные данные и строит запись на момент now.
func (s *DefaulterService) build(req models.DummyDefaulter, now time.Time) (models.Defaulter, error) {
	image := strings.TrimSpace(req.Image)
	if image == "" {
		return models.Defaulter{}, validation("image is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Defaulter{}, validation("name is required")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount.String()))
	if err != nil {
		return models.Defaulter{}, validation("amount must be a number")
	}
	if !amount.IsPositive() {
		return models.Defaulter{}, validation("amount must be greater than zero")
	}
	if !amount.Equal(amount.Truncate(amountScale)) {
		return models.Defaulter{}, validation("amount must have at most 2 decimal places")
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return models.Defaulter{}, validation("amount is too large")
	}
	if !req.Currency.Valid() {
		return models.Defaulter{}, validation(fmt.Sprintf("unsupported currency %q", string(req.Currency)))
	}
	if req.Duration <= 0 {
		return models.Defaulter{}, validation("duration must be a positive integer")
	}
	unitMs, err := req.DurationUnit.Milliseconds()
	if err != nil {
		return models.Defaulter{}, validation("duration_unit must be one of minutes, hours, days")
	}
	if int64(req.Duration) > math.MaxInt64/int64(time.Millisecond)/unitMs {
		return models.Defaulter{}, validation("duration is too large")
	}

	return models.Defaulter{
		ID:        s.newID(),
		Image:     image,
		Name:      name,
		Amount:    amount,
		Currency:  req.Currency,
		EndTime:   now.Add(time.Duration(int64(req.Duration)*unitMs) * time.Millisecond),
		Enabled:   true,
		IsExpired: false,
		CreatedAt: now,
	}, nil
}

// Create проверяет данные, сохраняет запись во внешнем хранилище и добавляет её в конец коллекции.
// При ошибке проверки хранилище не вызывается, при ошибке хранилища коллекция не меняется.
func (s *DefaulterService) Create(ctx context.Context, req models.DummyDefaulter) (models.Defaulter, error) {
	const op = "services.defaulter.Create"

	d, err := s.build(req, s.now())
	if err != nil {
		return models.Defaulter{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	callCtx, cancel := s.remoteCtx(ctx)
	id, err := s.repo.CreateRecord(callCtx, d)
	cancel()
	if err != nil {
		s.mu.Unlock()
		metrics.ProviderErrors.WithLabelValues("create").Inc()
		return models.Defaulter{}, fmt.Errorf("%s: %w: %w", op, models.ErrCollaborator, err)
	}
	if id != "" {
		d.ID = id
	}
	s.index[d.ID] = len(s.records)
	s.records = append(s.records, d)
	s.mu.Unlock()

	metrics.DefaultersCreated.Inc()
	s.log.Info("created new defaulter",
		slog.String("id", d.ID),
		slog.String("currency", string(d.Currency)),
		slog.Time("end_time", d.EndTime))
	s.notifier.DefaulterCreated(ctx, d)

	return d, nil
}

// SetEnabled меняет только флаг enabled записи.
func (s *DefaulterService) SetEnabled(ctx context.Context, id string, enabled bool) error {
	const op = "services.defaulter.SetEnabled"

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	upd := s.records[i]
	upd.Enabled = enabled

	callCtx, cancel := s.remoteCtx(ctx)
	defer cancel()
	if err := s.repo.UpdateRecord(callCtx, upd); err != nil {
		metrics.ProviderErrors.WithLabelValues("update").Inc()
		return fmt.Errorf("%s: %w: %w", op, models.ErrCollaborator, err)
	}
	s.records[i].Enabled = enabled

	s.log.Info("defaulter visibility changed", slog.String("id", id), slog.Bool("enabled", enabled))
	return nil
}

// snapshot копирует записи, прошедшие фильтр, и пересчитывает is_expired на момент now.
func (s *DefaulterService) snapshot(keep func(models.Defaulter) bool) []models.Defaulter {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Defaulter, 0, len(s.records))
	for _, d := range s.records {
		if !keep(d) {
			continue
		}
		d.IsExpired = d.ExpiredAt(now)
		out = append(out, d)
	}
	return out
}

// ListPublic возвращает включённые записи в порядке вставки.
func (s *DefaulterService) ListPublic() []models.Defaulter {
	return s.snapshot(func(d models.Defaulter) bool { return d.Enabled })
}

// ListAll возвращает все записи в порядке вставки.
func (s *DefaulterService) ListAll() []models.Defaulter {
	return s.snapshot(func(models.Defaulter) bool { return true })
}

// Get возвращает запись по идентификатору.
func (s *DefaulterService) Get(id string) (models.Defaulter, error) {
	const op = "services.defaulter.Get"
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return models.Defaulter{}, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	d := s.records[i]
	d.IsExpired = d.ExpiredAt(s.now())
	return d, nil
}

// Sweep выставляет is_expired = now >= end_time там, где он изменился,
// и возвращает записи, только что перешедшие в истёкшие. Остальные поля не трогает.
func (s *DefaulterService) Sweep(now time.Time) []models.Defaulter {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exposed []models.Defaulter
	for i := range s.records {
		expired := s.records[i].ExpiredAt(now)
		if expired == s.records[i].IsExpired {
			continue
		}
		s.records[i].IsExpired = expired
		if expired {
			exposed = append(exposed, s.records[i])
		}
	}
	return exposed
}

// SyncFlags сохраняет текущие флаги записи во внешнем хранилище.
func (s *DefaulterService) SyncFlags(ctx context.Context, id string) error {
	const op = "services.defaulter.SyncFlags"

	s.mu.RLock()
	i, ok := s.index[id]
	var d models.Defaulter
	if ok {
		d = s.records[i]
	}
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	callCtx, cancel := s.remoteCtx(ctx)
	defer cancel()
	if err := s.repo.UpdateRecord(callCtx, d); err != nil {
		metrics.ProviderErrors.WithLabelValues("update").Inc()
		return fmt.Errorf("%s: %w: %w", op, models.ErrCollaborator, err)
	}
	return nil
}

// Reload заменяет коллекцию содержимым внешнего хранилища.
func (s *DefaulterService) Reload(ctx context.Context) error {
	const op = "services.defaulter.Reload"

	callCtx, cancel := s.remoteCtx(ctx)
	defer cancel()
	records, err := s.repo.ListRecords(callCtx)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues("list").Inc()
		return fmt.Errorf("%s: %w: %w", op, models.ErrCollaborator, err)
	}

	index := make(map[string]int, len(records))
	kept := make([]models.Defaulter, 0, len(records))
	for _, d := range records {
		if _, dup := index[d.ID]; dup {
			s.log.Warn("duplicate defaulter id in storage", slog.String("id", d.ID))
			continue
		}
		index[d.ID] = len(kept)
		kept = append(kept, d)
	}

	s.mu.Lock()
	s.records = kept
	s.index = index
	s.mu.Unlock()

	s.log.Debug("defaulters reloaded", slog.Int("count", len(kept)))
	return nil
}

// OnRemoteChange перечитывает коллекцию после уведомления хранилища.
// Ошибка только пишется в журнал.
func (s *DefaulterService) OnRemoteChange(ctx context.Context) func() {
	return func() {
		if err := s.Reload(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Error("failed to reload defaulters after remote change", sl.Err(err))
		}
	}
}
