package mongostore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lendlens/internal/models"
)

func TestDefaulterDoc(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	d := models.Defaulter{
		ID:        "d-1",
		Image:     "https://via.placeholder.com/300",
		Name:      "Kwame Mensah",
		Amount:    decimal.RequireFromString("1234.50"),
		Currency:  models.GHS,
		EndTime:   created.Add(24 * time.Hour),
		Enabled:   true,
		CreatedAt: created,
	}

	doc := toDoc(d)
	assert.Equal(t, "1234.5", doc.Amount)
	assert.Equal(t, "GHS", doc.Currency)

	got, err := doc.toModel()
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(d.Amount))
	assert.Equal(t, d.ID, got.ID)
	assert.Equal(t, d.EndTime, got.EndTime)
	assert.Equal(t, d.Currency, got.Currency)
}

func TestDefaulterDocBadAmount(t *testing.T) {
	_, err := defaulterDoc{ID: "d-1", Amount: "lots"}.toModel()
	assert.Error(t, err)
}

func TestSessionDoc(t *testing.T) {
	s := models.Session{
		ID:        "s-1",
		Email:     "admin@lendlens.com",
		Role:      models.RoleAdmin,
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		ExpiresAt: time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC),
	}
	doc := toSessionDoc(s)
	assert.Equal(t, currentSessionID, doc.ID)
	assert.Equal(t, s, doc.toModel())
}
