package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/lendlens/internal/migrations"
	"github.com/magabrotheeeer/lendlens/internal/models"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// Defaulter возвращает запись с предсказуемыми полями
func (f *TestDataFactory) Defaulter(id, name string, amount string, endIn time.Duration) models.Defaulter {
	created := time.Now().UTC().Truncate(time.Microsecond)
	return models.Defaulter{
		ID:        id,
		Image:     "https://via.placeholder.com/300",
		Name:      name,
		Amount:    decimal.RequireFromString(amount),
		Currency:  models.GHS,
		EndTime:   created.Add(endIn),
		Enabled:   true,
		CreatedAt: created,
	}
}

// CreateDefaulter сохраняет запись через хранилище
func (f *TestDataFactory) CreateDefaulter(t *testing.T, d models.Defaulter) {
	_, err := f.storage.CreateRecord(context.Background(), d)
	require.NoError(t, err)
}

// CreateAdmin создает администратора
func (f *TestDataFactory) CreateAdmin(t *testing.T, email, passwordHash string) {
	_, err := f.storage.DB.Exec(`INSERT INTO admins (email, password_hash) VALUES ($1, $2)`,
		email, passwordHash)
	require.NoError(t, err)
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL и применяет миграции
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")

	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err, "Failed to get host")
	port, err := postgresContainer.MappedPort(ctx, "5432")
	require.NoError(t, err, "Failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(ctx, connStr)
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "Failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath), "Failed to apply migrations")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if postgresContainer != nil {
			_ = postgresContainer.Terminate(ctx)
		}
	}

	return storage, cleanup
}
