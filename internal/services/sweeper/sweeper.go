// Package sweeper периодически пересчитывает признак истечения таймеров.
// Цикл работает, только пока подключён хотя бы один наблюдатель.
package sweeper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/lendlens/internal/lib/sl"
	"github.com/magabrotheeeer/lendlens/internal/metrics"
	"github.com/magabrotheeeer/lendlens/internal/models"
)

// Store — часть хранилища записей, которую использует цикл.
type Store interface {
	Sweep(now time.Time) []models.Defaulter
	SyncFlags(ctx context.Context, id string) error
}

// Notifier получает событие о раскрытой записи.
type Notifier interface {
	DefaulterExposed(ctx context.Context, d models.Defaulter)
}

// Sweeper запускает цикл при первом наблюдателе и останавливает при уходе последнего.
type Sweeper struct {
	store    Store
	notifier Notifier
	log      *slog.Logger
	interval time.Duration
	now      func() time.Time

	mu        sync.Mutex
	observers int
	cancel    context.CancelFunc
	done      chan struct{}
	stopped   bool
}

// New создаёт цикл с периодом interval.
func New(store Store, notifier Notifier, log *slog.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		notifier: notifier,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

// Observe подключает наблюдателя и возвращает функцию отключения.
// Повторный вызов функции отключения ничего не делает.
func (s *Sweeper) Observe() (release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return func() {}
	}
	s.observers++
	metrics.SweeperObservers.Set(float64(s.observers))
	if s.observers == 1 {
		s.start()
	}

	var once sync.Once
	return func() {
		once.Do(s.release)
	}
}

// Running сообщает, работает ли цикл.
func (s *Sweeper) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Stop останавливает цикл и запрещает последующий запуск.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	s.stopped = true
	done := s.halt()
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Sweeper) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.observers == 0 {
		return
	}
	s.observers--
	metrics.SweeperObservers.Set(float64(s.observers))
	if s.observers == 0 {
		s.halt()
	}
}

// start вызывается под s.mu.
func (s *Sweeper) start() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	go s.loop(ctx, done)
	s.log.Debug("sweeper started", slog.Duration("interval", s.interval))
}

// halt вызывается под s.mu и возвращает канал завершения остановленного цикла.
func (s *Sweeper) halt() chan struct{} {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	done := s.done
	s.cancel = nil
	s.done = nil
	s.log.Debug("sweeper stopped")
	return done
}

func (s *Sweeper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	s.Tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick выполняет один проход: помечает истёкшие записи, сохраняет их флаги
// и публикует уведомления. Сбой сохранения только пишется в журнал.
// Флаг в памяти уже выставлен, поэтому сохранение и публикация
// выполняются и после отмены ctx.
func (s *Sweeper) Tick(ctx context.Context) {
	const op = "sweeper.Tick"
	exposed := s.store.Sweep(s.now())
	if len(exposed) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, d := range exposed {
		metrics.DefaultersExposed.Inc()
		s.log.Info("defaulter exposed",
			slog.String("op", op),
			slog.String("id", d.ID),
			slog.Time("end_time", d.EndTime))

		if err := s.store.SyncFlags(ctx, d.ID); err != nil {
			s.log.Warn("failed to persist expired flag", slog.String("op", op), slog.String("id", d.ID), sl.Err(err))
		}
		s.notifier.DefaulterExposed(ctx, d)
	}
}
