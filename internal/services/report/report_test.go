package services

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lendlens/internal/models"
)

type stubDefaulters map[string]models.Defaulter

func (s stubDefaulters) Get(id string) (models.Defaulter, error) {
	d, ok := s[id]
	if !ok {
		return models.Defaulter{}, models.ErrNotFound
	}
	return d, nil
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReportService_Submit(t *testing.T) {
	defaulters := stubDefaulters{
		"public": {ID: "public", Enabled: true},
		"hidden": {ID: "hidden", Enabled: false},
	}
	valid := models.DummyReport{ContactNumber: "+233 20 000 0000", Message: "I know where they live."}

	tests := []struct {
		name    string
		id      string
		req     models.DummyReport
		wantErr error
	}{
		{name: "accepted", id: "public", req: valid},
		{name: "unknown defaulter", id: "missing", req: valid, wantErr: models.ErrNotFound},
		{name: "hidden defaulter", id: "hidden", req: valid, wantErr: models.ErrNotFound},
		{name: "blank contact", id: "public", req: models.DummyReport{ContactNumber: "  ", Message: "x"}, wantErr: models.ErrValidation},
		{name: "blank message", id: "public", req: models.DummyReport{ContactNumber: "123", Message: ""}, wantErr: models.ErrValidation},
		{name: "long contact", id: "public", req: models.DummyReport{ContactNumber: strings.Repeat("1", 33), Message: "x"}, wantErr: models.ErrValidation},
		{name: "long message", id: "public", req: models.DummyReport{ContactNumber: "123", Message: strings.Repeat("м", 2001)}, wantErr: models.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewReportService(defaulters, newNoopLogger())
			report, ack, err := s.Submit(tt.id, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, ack)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Acknowledgement, ack)
			assert.Equal(t, "public", report.DefaulterID)
			assert.Equal(t, valid.ContactNumber, report.ContactNumber)
			assert.False(t, report.ReceivedAt.IsZero())
		})
	}
}
