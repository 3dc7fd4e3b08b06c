package setenabled

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lendlens/internal/models"
)

type DefaulterServiceMock struct {
	mock.Mock
}

func (m *DefaulterServiceMock) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return m.Called(ctx, id, enabled).Error(0)
}

func TestSetEnabledHandler(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		body        string
		callEnabled *bool
		mockErr     error
		wantCode    int
		wantError   string
	}{
		{name: "disable", id: "d-1", body: `{"enabled":false}`, callEnabled: ptr(false), wantCode: http.StatusOK},
		{name: "enable", id: "d-1", body: `{"enabled":true}`, callEnabled: ptr(true), wantCode: http.StatusOK},
		{name: "missing flag", id: "d-1", body: `{}`, wantCode: http.StatusUnprocessableEntity, wantError: "field Enabled is a required field"},
		{name: "bad json", id: "d-1", body: `{`, wantCode: http.StatusBadRequest, wantError: "invalid request body"},
		{
			name:        "unknown id",
			id:          "missing",
			body:        `{"enabled":false}`,
			callEnabled: ptr(false),
			mockErr:     fmt.Errorf("services.defaulter.SetEnabled: %w", models.ErrNotFound),
			wantCode:    http.StatusNotFound,
			wantError:   "defaulter not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(DefaulterServiceMock)
			if tt.callEnabled != nil {
				serviceMock.On("SetEnabled", mock.Anything, tt.id, *tt.callEnabled).Return(tt.mockErr).Once()
			}

			r := chi.NewRouter()
			r.Put("/admin/defaulters/{id}/enabled", New(slog.New(slog.NewTextHandler(io.Discard, nil)), serviceMock).ServeHTTP)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/defaulters/"+tt.id+"/enabled", bytes.NewBufferString(tt.body)))

			assert.Equal(t, tt.wantCode, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				data := got["data"].(map[string]any)
				assert.Equal(t, *tt.callEnabled, data["enabled"])
			}
			serviceMock.AssertExpectations(t)
		})
	}
}

func ptr(b bool) *bool { return &b }
