// Package models содержит доменные структуры сервиса: запись должника,
// сессию администратора и жалобу посетителя, а также вспомогательные типы
// для приёма данных из JSON-запросов.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Currency — код валюты суммы долга.
type Currency string

// Поддерживаемые валюты.
const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	GHS Currency = "GHS"
	JPY Currency = "JPY"
	AUD Currency = "AUD"
	CAD Currency = "CAD"
)

// Currencies перечисляет допустимые валюты в порядке отображения в форме.
var Currencies = []Currency{USD, EUR, GBP, GHS, JPY, AUD, CAD}

// Valid сообщает, входит ли валюта в поддерживаемый набор.
func (c Currency) Valid() bool {
	for _, known := range Currencies {
		if c == known {
			return true
		}
	}
	return false
}

// DurationUnit — единица длительности обратного отсчёта.
type DurationUnit string

// Допустимые единицы длительности.
const (
	Minutes DurationUnit = "minutes"
	Hours   DurationUnit = "hours"
	Days    DurationUnit = "days"
)

// Milliseconds возвращает длину одной единицы в миллисекундах.
func (u DurationUnit) Milliseconds() (int64, error) {
	switch u {
	case Minutes:
		return 60_000, nil
	case Hours:
		return 3_600_000, nil
	case Days:
		return 86_400_000, nil
	default:
		return 0, fmt.Errorf("unknown duration unit %q", string(u))
	}
}

// Defaulter представляет запись о должнике с таймером раскрытия фотографии.
// IsExpired — производное поле: всегда должно совпадать с now >= EndTime.
type Defaulter struct {
	ID        string          `json:"id"`
	Image     string          `json:"image"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  Currency        `json:"currency"`
	EndTime   time.Time       `json:"end_time"`
	Enabled   bool            `json:"enabled"`
	IsExpired bool            `json:"is_expired"`
	CreatedAt time.Time       `json:"created_at"`
}

// ExpiredAt вычисляет признак истечения таймера на момент now.
func (d Defaulter) ExpiredAt(now time.Time) bool {
	return !now.Before(d.EndTime)
}

// DummyDefaulter используется для приёма данных из JSON-запроса,
// прежде чем сервис проверит их и построит Defaulter.
// Сумма принимается и строкой, и числом, чтобы её можно было разобрать без потери точности.
type DummyDefaulter struct {
	Name         string       `json:"name" validate:"required"`                                   // Имя должника
	Image        string       `json:"image" validate:"required"`                                  // Ссылка на фото или data URL
	Amount       json.Number  `json:"amount" validate:"required"`                                 // Сумма долга (>0)
	Currency     Currency     `json:"currency" validate:"required"`                               // Код валюты
	Duration     int          `json:"duration" validate:"required,gt=0"`                          // Длительность отсчёта
	DurationUnit DurationUnit `json:"duration_unit" validate:"required,oneof=minutes hours days"` // Единица длительности
}
