// Package services принимает жалобы посетителей на опубликованных должников.
// Жалоба проверяется, пишется в журнал и подтверждается; хранение не предусмотрено.
package services

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/magabrotheeeer/lendlens/internal/metrics"
	"github.com/magabrotheeeer/lendlens/internal/models"
)

// Acknowledgement — ответ посетителю после приёма жалобы.
const Acknowledgement = "Thank you for your report. We will review it shortly."

const (
	maxContactLength = 32
	maxMessageLength = 2000
)

// DefaulterGetter находит запись по идентификатору.
type DefaulterGetter interface {
	Get(id string) (models.Defaulter, error)
}

// ReportService принимает жалобы.
type ReportService struct {
	defaulters DefaulterGetter
	log        *slog.Logger
	now        func() time.Time
}

// NewReportService создает новый экземпляр ReportService.
func NewReportService(defaulters DefaulterGetter, log *slog.Logger) *ReportService {
	return &ReportService{defaulters: defaulters, log: log, now: time.Now}
}

// Submit проверяет жалобу на опубликованную запись и возвращает текст подтверждения.
// Скрытая запись для посетителя не существует.
func (s *ReportService) Submit(defaulterID string, req models.DummyReport) (models.Report, string, error) {
	const op = "services.report.Submit"

	d, err := s.defaulters.Get(defaulterID)
	if err != nil {
		return models.Report{}, "", fmt.Errorf("%s: %w", op, err)
	}
	if !d.Enabled {
		return models.Report{}, "", fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	contact := strings.TrimSpace(req.ContactNumber)
	message := strings.TrimSpace(req.Message)
	switch {
	case contact == "":
		return models.Report{}, "", fmt.Errorf("%s: %w: contact_number is required", op, models.ErrValidation)
	case utf8.RuneCountInString(contact) > maxContactLength:
		return models.Report{}, "", fmt.Errorf("%s: %w: contact_number is too long", op, models.ErrValidation)
	case message == "":
		return models.Report{}, "", fmt.Errorf("%s: %w: message is required", op, models.ErrValidation)
	case utf8.RuneCountInString(message) > maxMessageLength:
		return models.Report{}, "", fmt.Errorf("%s: %w: message is too long", op, models.ErrValidation)
	}

	report := models.Report{
		DefaulterID:   d.ID,
		ContactNumber: contact,
		Message:       message,
		ReceivedAt:    s.now(),
	}
	metrics.ReportsReceived.Inc()
	s.log.Info("report received",
		slog.String("op", op),
		slog.String("defaulter_id", report.DefaulterID),
		slog.String("contact_number", report.ContactNumber),
		slog.Int("message_length", len(report.Message)))

	return report, Acknowledgement, nil
}
