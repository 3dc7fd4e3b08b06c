package list

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lendlens/internal/http/view"
	"github.com/magabrotheeeer/lendlens/internal/models"
)

type DefaulterServiceMock struct {
	mock.Mock
}

func (m *DefaulterServiceMock) ListPublic() []models.Defaulter {
	return m.Called().Get(0).([]models.Defaulter)
}

func (m *DefaulterServiceMock) ListAll() []models.Defaulter {
	return m.Called().Get(0).([]models.Defaulter)
}

func TestListHandler(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	visible := models.Defaulter{
		ID: "a", Name: "Jane Doe", Amount: decimal.NewFromInt(1500), Currency: models.GHS,
		EndTime: now.Add(90 * time.Minute), Enabled: true, CreatedAt: now,
	}
	hidden := models.Defaulter{
		ID: "b", Name: "John Roe", Amount: decimal.NewFromInt(20), Currency: models.GBP,
		EndTime: now.Add(-time.Minute), Enabled: false, CreatedAt: now.Add(-time.Hour),
	}

	tests := []struct {
		name    string
		scope   Scope
		method  string
		records []models.Defaulter
		wantIDs []string
	}{
		{name: "public", scope: Public, method: "ListPublic", records: []models.Defaulter{visible}, wantIDs: []string{"a"}},
		{name: "all", scope: All, method: "ListAll", records: []models.Defaulter{visible, hidden}, wantIDs: []string{"a", "b"}},
		{name: "empty", scope: Public, method: "ListPublic", records: []models.Defaulter{}, wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(DefaulterServiceMock)
			serviceMock.On(tt.method).Return(tt.records).Once()

			h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), serviceMock, tt.scope)
			h.now = func() time.Time { return now }

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/defaulters", nil))
			require.Equal(t, http.StatusOK, rec.Code)

			var got struct {
				Status string      `json:"status"`
				Data   []view.Card `json:"data"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, "OK", got.Status)

			ids := make([]string, 0, len(got.Data))
			for _, c := range got.Data {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			serviceMock.AssertExpectations(t)
		})
	}
}

func TestListHandler_CardFields(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	serviceMock := new(DefaulterServiceMock)
	serviceMock.On("ListPublic").Return([]models.Defaulter{{
		ID: "a", Name: "Jane Doe", Amount: decimal.NewFromInt(1500), Currency: models.GHS,
		EndTime: now.Add(26 * time.Hour), Enabled: true,
	}})

	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), serviceMock, Public)
	h.now = func() time.Time { return now }
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/defaulters", nil))

	var got struct {
		Data []view.Card `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got.Data, 1)
	assert.Equal(t, "GH₵1,500.00", got.Data[0].AmountDisplay)
	assert.Equal(t, "1d:02:00:00", got.Data[0].CountdownDisplay)
	assert.True(t, got.Data[0].Blurred)
}
