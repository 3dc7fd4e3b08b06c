package models

import "time"

// Report — жалоба посетителя на опубликованного должника.
type Report struct {
	DefaulterID   string    `json:"defaulter_id"`
	ContactNumber string    `json:"contact_number"`
	Message       string    `json:"message"`
	ReceivedAt    time.Time `json:"received_at"`
}

// DummyReport принимает поля жалобы из JSON-запроса.
type DummyReport struct {
	ContactNumber string `json:"contact_number" validate:"required,max=32"`
	Message       string `json:"message" validate:"required,max=2000"`
}
