// Package services управляет единственной сессией администратора:
// вход, выход, восстановление после перезапуска и проверка токена.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/lendlens/internal/lib/jwt"
	"github.com/magabrotheeeer/lendlens/internal/lib/sl"
	"github.com/magabrotheeeer/lendlens/internal/metrics"
	"github.com/magabrotheeeer/lendlens/internal/models"
	"github.com/magabrotheeeer/lendlens/internal/storage"
)

// Authenticator проверяет учётные данные.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) error
}

// SessionRepository хранит сессию между перезапусками.
type SessionRepository interface {
	LoadSession(ctx context.Context) (models.Session, error)
	SaveSession(ctx context.Context, s models.Session) error
	ClearSession(ctx context.Context) error
}

// SessionService хранит текущую сессию. Новая сессия вытесняет предыдущую,
// и токены старой сессии перестают приниматься.
type SessionService struct {
	mu      sync.RWMutex
	current *models.Session

	auth    Authenticator
	repo    SessionRepository
	tokens  jwt.Maker
	log     *slog.Logger
	timeout time.Duration
	now     func() time.Time
	newID   func() string
}

// NewSessionService создает новый экземпляр SessionService.
func NewSessionService(auth Authenticator, repo SessionRepository, tokens jwt.Maker, log *slog.Logger, timeout time.Duration) *SessionService {
	return &SessionService{
		auth:    auth,
		repo:    repo,
		tokens:  tokens,
		log:     log,
		timeout: timeout,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (s *SessionService) remoteCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Login проверяет учётные данные и открывает новую сессию.
// При неверных данных состояние не меняется.
func (s *SessionService) Login(ctx context.Context, email, password string) (string, models.Session, error) {
	const op = "services.session.Login"

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		return "", models.Session{}, fmt.Errorf("%s: %w", op, models.ErrAuthentication)
	}

	callCtx, cancel := s.remoteCtx(ctx)
	err := s.auth.Authenticate(callCtx, email, password)
	cancel()
	if err != nil {
		if errors.Is(err, models.ErrAuthentication) {
			metrics.LoginAttempts.WithLabelValues("rejected").Inc()
			return "", models.Session{}, fmt.Errorf("%s: %w", op, err)
		}
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return "", models.Session{}, fmt.Errorf("%s: %w: %w", op, models.ErrCollaborator, err)
	}

	session := models.Session{
		ID:        s.newID(),
		Email:     email,
		Role:      models.RoleAdmin,
		CreatedAt: s.now(),
	}
	token, expiresAt, err := s.tokens.GenerateToken(session.ID, session.Email, session.Role)
	if err != nil {
		return "", models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	session.ExpiresAt = expiresAt

	s.mu.Lock()
	s.current = &session
	s.mu.Unlock()

	callCtx, cancel = s.remoteCtx(ctx)
	defer cancel()
	if err := s.repo.SaveSession(callCtx, session); err != nil {
		s.log.Warn("failed to persist session", slog.String("op", op), sl.Err(err))
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	s.log.Info("admin logged in", slog.String("email", session.Email), slog.String("session_id", session.ID))
	return token, session, nil
}

// Logout всегда закрывает сессию. Ошибка очистки хранилища возвращается,
// но состояние в памяти уже сброшено.
func (s *SessionService) Logout(ctx context.Context) error {
	const op = "services.session.Logout"

	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.mu.Unlock()

	callCtx, cancel := s.remoteCtx(ctx)
	defer cancel()
	if err := s.repo.ClearSession(callCtx); err != nil {
		s.log.Warn("failed to clear persisted session", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, models.ErrCollaborator, err)
	}
	if prev != nil {
		s.log.Info("admin logged out", slog.String("session_id", prev.ID))
	}
	return nil
}

// Current возвращает действующую сессию.
func (s *SessionService) Current() (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || !s.current.Active(s.now()) {
		return models.Session{}, false
	}
	return *s.current, true
}

// Restore загружает сохранённую сессию при старте. Истёкшая сессия удаляется.
func (s *SessionService) Restore(ctx context.Context) error {
	const op = "services.session.Restore"

	callCtx, cancel := s.remoteCtx(ctx)
	defer cancel()
	session, err := s.repo.LoadSession(callCtx)
	if errors.Is(err, storage.ErrNoSession) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, models.ErrCollaborator, err)
	}
	if !session.Active(s.now()) {
		s.log.Info("persisted session expired", slog.String("session_id", session.ID))
		if err := s.repo.ClearSession(callCtx); err != nil {
			s.log.Warn("failed to clear expired session", slog.String("op", op), sl.Err(err))
		}
		return nil
	}

	s.mu.Lock()
	s.current = &session
	s.mu.Unlock()
	s.log.Info("admin session restored", slog.String("email", session.Email), slog.String("session_id", session.ID))
	return nil
}

// Authorize проверяет токен: подпись, срок действия и принадлежность текущей сессии.
func (s *SessionService) Authorize(token string) (models.Session, error) {
	const op = "services.session.Authorize"

	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w: %w", op, models.ErrAuthentication, err)
	}
	current, ok := s.Current()
	if !ok || claims.ID != current.ID {
		return models.Session{}, fmt.Errorf("%s: %w: session is not active", op, models.ErrAuthentication)
	}
	if claims.Role != models.RoleAdmin {
		return models.Session{}, fmt.Errorf("%s: %w: insufficient role", op, models.ErrAuthentication)
	}
	return current, nil
}
