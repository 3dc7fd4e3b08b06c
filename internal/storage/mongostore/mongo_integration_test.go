package mongostore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/lendlens/internal/models"
	"github.com/magabrotheeeer/lendlens/internal/storage"
)

func setupTestMongo(t *testing.T) *Storage {
	if testing.Short() {
		t.Skip("requires docker")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	s, err := New(ctx, fmt.Sprintf("mongodb://%s:%s", host, port.Port()), "lendlens_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorage_Records(t *testing.T) {
	s := setupTestMongo(t)
	ctx := context.Background()
	created := time.Now().UTC().Truncate(time.Millisecond)

	for i, name := range []string{"Kwame Mensah", "Jane Doe"} {
		_, err := s.CreateRecord(ctx, models.Defaulter{
			ID:        fmt.Sprintf("d-%d", i+1),
			Image:     "https://via.placeholder.com/300",
			Name:      name,
			Amount:    decimal.RequireFromString("100.25"),
			Currency:  models.USD,
			EndTime:   created.Add(time.Hour),
			Enabled:   true,
			CreatedAt: created,
		})
		require.NoError(t, err)
	}

	list, err := s.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "d-1", list[0].ID)
	assert.Equal(t, "d-2", list[1].ID)
	assert.True(t, list[0].Amount.Equal(decimal.RequireFromString("100.25")))

	require.NoError(t, s.UpdateRecord(ctx, models.Defaulter{ID: "d-2", Enabled: false, IsExpired: true}))
	list, err = s.ListRecords(ctx)
	require.NoError(t, err)
	assert.False(t, list[1].Enabled)
	assert.True(t, list[1].IsExpired)

	err = s.UpdateRecord(ctx, models.Defaulter{ID: "missing"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_Session(t *testing.T) {
	s := setupTestMongo(t)
	ctx := context.Background()

	_, err := s.LoadSession(ctx)
	assert.ErrorIs(t, err, storage.ErrNoSession)

	now := time.Now().UTC().Truncate(time.Millisecond)
	session := models.Session{ID: "s-1", Email: "admin@lendlens.com", Role: models.RoleAdmin, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, s.SaveSession(ctx, session))
	session.ID = "s-2"
	require.NoError(t, s.SaveSession(ctx, session))

	got, err := s.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, session, got)

	require.NoError(t, s.ClearSession(ctx))
	_, err = s.LoadSession(ctx)
	assert.ErrorIs(t, err, storage.ErrNoSession)
}
