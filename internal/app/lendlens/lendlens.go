// Package lendlens собирает HTTP-сервис: хранилище, сервисы, цикл таймеров и маршруты.
package lendlens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/lendlens/internal/config"
	"github.com/magabrotheeeer/lendlens/internal/lib/jwt"
	"github.com/magabrotheeeer/lendlens/internal/lib/sl"
	"github.com/magabrotheeeer/lendlens/internal/rabbitmq"
	defaulterservice "github.com/magabrotheeeer/lendlens/internal/services/defaulter"
	"github.com/magabrotheeeer/lendlens/internal/services/notifier"
	reportservice "github.com/magabrotheeeer/lendlens/internal/services/report"
	sessionservice "github.com/magabrotheeeer/lendlens/internal/services/session"
	"github.com/magabrotheeeer/lendlens/internal/services/sweeper"
	"github.com/magabrotheeeer/lendlens/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App владеет HTTP-сервером и ресурсами, которые нужно закрыть при остановке.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	provider *storage.Provider
	sweeper  *sweeper.Sweeper
	conn     *amqp.Connection
	ch       *amqp.Channel
}

// New подключает хранилище, восстанавливает коллекцию и сессию и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.lendlens.New"

	provider, err := openProvider(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("persistence provider ready", slog.String("provider", provider.Name))

	app := &App{logger: logger, provider: provider}

	var notify notifier.Notifier = notifier.Nop{}
	if cfg.RabbitMQURL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			_ = provider.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
		if err != nil {
			conn.Close()
			_ = provider.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.conn, app.ch = conn, ch
		notify = notifier.NewAMQP(ch, logger)
	}

	defaulters := defaulterservice.NewDefaulterService(provider.Records, notify, logger, cfg.Persistence.Timeout)
	if err := defaulters.Reload(ctx); err != nil {
		logger.Error("failed to load defaulters, starting empty", sl.Err(err))
	}
	if provider.Subscriber != nil {
		if err := provider.Subscriber.Subscribe(ctx, logger, defaulters.OnRemoteChange(ctx)); err != nil {
			logger.Warn("remote change notifications are unavailable", sl.Err(err))
		}
	}

	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	sessions := sessionservice.NewSessionService(provider.Authenticator, provider.Sessions, tokens, logger, cfg.Persistence.Timeout)
	if err := sessions.Restore(ctx); err != nil {
		logger.Warn("failed to restore admin session", sl.Err(err))
	}

	app.sweeper = sweeper.New(defaulters, notify, logger, cfg.Sweeper.Interval)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, Services{
		Defaulters: defaulters,
		Sessions:   sessions,
		Reports:    reportservice.NewReportService(defaulters, logger),
		Sweeper:    app.sweeper,
		Assets:     provider.Assets,
		Provider:   provider.Name,
	})

	// Потоковые запросы завершаются вместе с базовым контекстом при Shutdown.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}
	app.server.RegisterOnShutdown(cancelBase)
	return app, nil
}

// Handler возвращает корневой обработчик сервера.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run запускает сервер и останавливает его после отмены ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	a.sweeper.Stop()
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if err := a.provider.Close(); err != nil {
		a.logger.Error("failed to close persistence provider", sl.Err(err))
	}
}
