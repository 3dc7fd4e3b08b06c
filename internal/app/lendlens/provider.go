package lendlens

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/lendlens/internal/cache"
	"github.com/magabrotheeeer/lendlens/internal/config"
	"github.com/magabrotheeeer/lendlens/internal/lib/sl"
	"github.com/magabrotheeeer/lendlens/internal/migrations"
	"github.com/magabrotheeeer/lendlens/internal/storage"
	"github.com/magabrotheeeer/lendlens/internal/storage/blob"
	"github.com/magabrotheeeer/lendlens/internal/storage/credentials"
	"github.com/magabrotheeeer/lendlens/internal/storage/memory"
	"github.com/magabrotheeeer/lendlens/internal/storage/mongostore"
	"github.com/magabrotheeeer/lendlens/internal/storage/redisstore"
	"github.com/magabrotheeeer/lendlens/internal/storage/repository"
)

// openProvider подключает выбранное хранилище. Если удалённое хранилище
// недоступно и разрешён откат, возвращается память с демонстрационными записями.
func openProvider(ctx context.Context, cfg *config.Config, log *slog.Logger) (*storage.Provider, error) {
	const op = "app.lendlens.openProvider"

	assets, err := openAssets(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p, err := openRecords(ctx, cfg)
	if err != nil {
		if !cfg.FallbackToMock || cfg.Provider == config.ProviderMemory {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Warn("persistence provider unavailable, falling back to mock data",
			slog.String("provider", cfg.Provider), sl.Err(err))
		p, err = openMemory(cfg, true)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	p.Assets = assets
	return p, nil
}

func openRecords(ctx context.Context, cfg *config.Config) (*storage.Provider, error) {
	checkCtx, cancel := context.WithTimeout(ctx, cfg.Persistence.Timeout)
	defer cancel()

	switch cfg.Provider {
	case config.ProviderRedis:
		c, err := cache.InitServer(checkCtx, cfg.RedisConnection)
		if err != nil {
			return nil, err
		}
		auth, err := credentials.New(cfg.AdminEmail, cfg.AdminPasswordHash)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		s := redisstore.New(c)
		return &storage.Provider{
			Name:          config.ProviderRedis,
			Records:       s,
			Subscriber:    s,
			Authenticator: auth,
			Sessions:      s,
			Close:         s.Close,
		}, nil

	case config.ProviderPostgres:
		s, err := repository.New(checkCtx, cfg.StorageConnectionString)
		if err != nil {
			return nil, err
		}
		if err := migrations.Run(s.DB, cfg.MigrationsPath); err != nil {
			_ = s.Close()
			return nil, err
		}
		if err := s.CheckDatabaseReady(checkCtx); err != nil {
			_ = s.Close()
			return nil, err
		}
		if err := s.SeedAdmin(checkCtx, cfg.AdminEmail, cfg.AdminPasswordHash); err != nil {
			_ = s.Close()
			return nil, err
		}
		return &storage.Provider{
			Name:          config.ProviderPostgres,
			Records:       s,
			Subscriber:    s,
			Authenticator: s,
			Sessions:      s,
			Close:         s.Close,
		}, nil

	case config.ProviderMongo:
		s, err := mongostore.New(checkCtx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		auth, err := credentials.New(cfg.AdminEmail, cfg.AdminPasswordHash)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		return &storage.Provider{
			Name:          config.ProviderMongo,
			Records:       s,
			Subscriber:    s,
			Authenticator: auth,
			Sessions:      s,
			Close:         s.Close,
		}, nil

	default:
		return openMemory(cfg, false)
	}
}

func openMemory(cfg *config.Config, mock bool) (*storage.Provider, error) {
	auth, err := credentials.New(cfg.AdminEmail, cfg.AdminPasswordHash)
	if err != nil {
		return nil, err
	}
	s := memory.New()
	name := config.ProviderMemory
	if mock {
		s = memory.NewWithMockData(time.Now())
		name = "mock"
	}
	return &storage.Provider{
		Name:          name,
		Records:       s,
		Authenticator: auth,
		Sessions:      s,
		Close:         func() error { return nil },
	}, nil
}

func openAssets(ctx context.Context, cfg *config.Config) (storage.AssetStore, error) {
	if cfg.BlobProvider == config.BlobS3 {
		return blob.NewS3(ctx, cfg.Blob)
	}
	return blob.NewInline(), nil
}
