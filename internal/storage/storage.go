// Package storage описывает контракт внешнего хранилища, через которое
// сервис сохраняет записи должников, изображения и сессию администратора.
// Реализации лежат во вложенных пакетах и выбираются при старте по конфигу.
package storage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/lendlens/internal/models"
)

// ErrNoSession возвращается SessionStore.LoadSession, если сохранённой сессии нет.
var ErrNoSession = errors.New("no persisted session")

// RecordStore хранит записи должников.
type RecordStore interface {
	// CreateRecord сохраняет новую запись и возвращает её идентификатор.
	CreateRecord(ctx context.Context, d models.Defaulter) (string, error)
	// UpdateRecord перезаписывает изменяемые поля (enabled, is_expired) записи.
	UpdateRecord(ctx context.Context, d models.Defaulter) error
	// ListRecords возвращает все записи в порядке создания.
	ListRecords(ctx context.Context) ([]models.Defaulter, error)
}

// Subscriber уведомляет об изменениях, сделанных другими экземплярами сервиса.
// onChange вызывается из отдельной горутины; подписка живёт до отмены ctx.
// Обрыв подписки пишется в log, после переподключения onChange вызывается
// один раз, чтобы догнать пропущенные изменения.
type Subscriber interface {
	Subscribe(ctx context.Context, log *slog.Logger, onChange func()) error
}

// AssetStore сохраняет изображения и возвращает ссылку на них.
type AssetStore interface {
	UploadAsset(ctx context.Context, data []byte, contentType string) (string, error)
}

// Authenticator проверяет учётные данные администратора.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) error
}

// SessionStore хранит единственную сессию администратора между перезапусками.
type SessionStore interface {
	LoadSession(ctx context.Context) (models.Session, error)
	SaveSession(ctx context.Context, s models.Session) error
	ClearSession(ctx context.Context) error
}

// Provider собирает реализации, выбранные для текущего развёртывания.
// Subscriber может отсутствовать; Close освобождает соединения провайдера.
type Provider struct {
	Name          string
	Records       RecordStore
	Subscriber    Subscriber
	Assets        AssetStore
	Authenticator Authenticator
	Sessions      SessionStore
	Close         func() error
}
