package view

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lendlens/internal/models"
)

func TestNewCard(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	d := models.Defaulter{
		ID:        "d-1",
		Name:      "Jane Doe",
		Image:     "https://img.example/jane.png",
		Amount:    decimal.RequireFromString("1234.5"),
		Currency:  models.USD,
		EndTime:   now.Add(2 * time.Hour),
		Enabled:   true,
		CreatedAt: now,
	}

	card := NewCard(d, now)
	assert.Equal(t, "1234.50", card.Amount)
	assert.Equal(t, "$1,234.50", card.AmountDisplay)
	assert.Equal(t, "02:00:00", card.CountdownDisplay)
	assert.True(t, card.Blurred)
	assert.False(t, card.IsExpired)

	later := NewCard(d, now.Add(3*time.Hour))
	assert.False(t, later.Blurred)
	assert.True(t, later.IsExpired)
	assert.True(t, later.Countdown.IsZero())
	assert.Equal(t, "00:00:00", later.CountdownDisplay)
}

func TestCards_KeepsOrder(t *testing.T) {
	now := time.Now()
	ds := []models.Defaulter{
		{ID: "a", Amount: decimal.NewFromInt(1), Currency: models.EUR, EndTime: now},
		{ID: "b", Amount: decimal.NewFromInt(2), Currency: models.GHS, EndTime: now.Add(time.Minute)},
	}
	cards := Cards(ds, now)
	require.Len(t, cards, 2)
	assert.Equal(t, "a", cards[0].ID)
	assert.Equal(t, "b", cards[1].ID)
	assert.Empty(t, Cards(nil, now))
}
