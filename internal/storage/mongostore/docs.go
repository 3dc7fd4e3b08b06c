package mongostore

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/lendlens/internal/models"
)

// defaulterDoc — представление записи в коллекции. Сумма хранится строкой без потери точности.
type defaulterDoc struct {
	ID        string    `bson:"_id"`
	Seq       int64     `bson:"seq"`
	Image     string    `bson:"image"`
	Name      string    `bson:"name"`
	Amount    string    `bson:"amount"`
	Currency  string    `bson:"currency"`
	EndTime   time.Time `bson:"end_time"`
	Enabled   bool      `bson:"enabled"`
	IsExpired bool      `bson:"is_expired"`
	CreatedAt time.Time `bson:"created_at"`
}

func toDoc(d models.Defaulter) defaulterDoc {
	return defaulterDoc{
		ID:        d.ID,
		Image:     d.Image,
		Name:      d.Name,
		Amount:    d.Amount.String(),
		Currency:  string(d.Currency),
		EndTime:   d.EndTime,
		Enabled:   d.Enabled,
		IsExpired: d.IsExpired,
		CreatedAt: d.CreatedAt,
	}
}

func (doc defaulterDoc) toModel() (models.Defaulter, error) {
	amount, err := decimal.NewFromString(doc.Amount)
	if err != nil {
		return models.Defaulter{}, fmt.Errorf("record %s: bad amount %q: %w", doc.ID, doc.Amount, err)
	}
	return models.Defaulter{
		ID:        doc.ID,
		Image:     doc.Image,
		Name:      doc.Name,
		Amount:    amount,
		Currency:  models.Currency(doc.Currency),
		EndTime:   doc.EndTime.UTC(),
		Enabled:   doc.Enabled,
		IsExpired: doc.IsExpired,
		CreatedAt: doc.CreatedAt.UTC(),
	}, nil
}

type sessionDoc struct {
	ID        string    `bson:"_id"`
	SessionID string    `bson:"session_id"`
	Email     string    `bson:"email"`
	Role      string    `bson:"role"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func toSessionDoc(s models.Session) sessionDoc {
	return sessionDoc{
		ID:        currentSessionID,
		SessionID: s.ID,
		Email:     s.Email,
		Role:      s.Role,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

func (doc sessionDoc) toModel() models.Session {
	return models.Session{
		ID:        doc.SessionID,
		Email:     doc.Email,
		Role:      doc.Role,
		CreatedAt: doc.CreatedAt.UTC(),
		ExpiresAt: doc.ExpiresAt.UTC(),
	}
}
