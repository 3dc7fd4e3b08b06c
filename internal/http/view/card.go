// Package view строит представление записи должника для клиентов API:
// отформатированную сумму, остаток таймера и признак размытия фотографии.
package view

import (
	"time"

	"github.com/magabrotheeeer/lendlens/internal/lib/countdown"
	"github.com/magabrotheeeer/lendlens/internal/lib/money"
	"github.com/magabrotheeeer/lendlens/internal/models"
)

// Card — карточка должника в ответе API.
type Card struct {
	ID               string              `json:"id" example:"5f0c1d9e-8a7b-4c2d-9e1f-0a1b2c3d4e5f"`
	Name             string              `json:"name" example:"Jane Doe"`
	Image            string              `json:"image"`
	Blurred          bool                `json:"blurred"`
	Amount           string              `json:"amount" example:"1234.50"`
	Currency         models.Currency     `json:"currency" example:"USD"`
	AmountDisplay    string              `json:"amount_display" example:"$1,234.50"`
	EndTime          time.Time           `json:"end_time"`
	Countdown        countdown.Remaining `json:"countdown"`
	CountdownDisplay string              `json:"countdown_display" example:"02:00:00"`
	Enabled          bool                `json:"enabled"`
	IsExpired        bool                `json:"is_expired"`
	CreatedAt        time.Time           `json:"created_at"`
}

// NewCard строит карточку записи на момент now.
// Фотография размыта, пока таймер не истёк.
func NewCard(d models.Defaulter, now time.Time) Card {
	expired := d.ExpiredAt(now)
	left := countdown.Compute(d.EndTime, now)
	return Card{
		ID:               d.ID,
		Name:             d.Name,
		Image:            d.Image,
		Blurred:          !expired,
		Amount:           d.Amount.StringFixed(2),
		Currency:         d.Currency,
		AmountDisplay:    money.Format(d.Amount, d.Currency),
		EndTime:          d.EndTime,
		Countdown:        left,
		CountdownDisplay: left.String(),
		Enabled:          d.Enabled,
		IsExpired:        expired,
		CreatedAt:        d.CreatedAt,
	}
}

// Cards строит карточки в исходном порядке.
func Cards(ds []models.Defaulter, now time.Time) []Card {
	cards := make([]Card, 0, len(ds))
	for _, d := range ds {
		cards = append(cards, NewCard(d, now))
	}
	return cards
}
