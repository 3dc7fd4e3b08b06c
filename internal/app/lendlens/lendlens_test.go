package lendlens

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lendlens/internal/config"
	"github.com/magabrotheeeer/lendlens/internal/lib/password"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	hash, err := password.GetHash("admin123")
	require.NoError(t, err)

	cfg := &config.Config{Env: "test"}
	cfg.Provider = config.ProviderMemory
	cfg.Persistence.Timeout = time.Second
	cfg.BlobProvider = config.BlobInline
	cfg.MaxUploadSize = 1 << 20
	cfg.JWTSecretKey = "test-secret"
	cfg.TokenTTL = time.Hour
	cfg.AdminEmail = "admin@lendlens.com"
	cfg.AdminPasswordHash = hash
	cfg.Sweeper.Interval = 50 * time.Millisecond
	cfg.RatePerSecond = 1
	cfg.Burst = 3
	return cfg
}

type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error"`
	Data   json.RawMessage `json:"data"`
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env), rec.Body.String())
	return rec.Code, env
}

func TestApp_AdminFlow(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := New(context.Background(), newTestConfig(t), logger)
	require.NoError(t, err)
	t.Cleanup(app.close)
	h := app.Handler()

	code, _ := do(t, h, http.MethodPost, "/api/v1/admin/defaulters", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, h, http.MethodPost, "/api/v1/login", "", map[string]string{"email": "admin@lendlens.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := do(t, h, http.MethodPost, "/api/v1/login", "", map[string]string{"email": "admin@lendlens.com", "password": "admin123"})
	require.Equal(t, http.StatusOK, code, env.Error)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.Token)

	code, env = do(t, h, http.MethodPost, "/api/v1/admin/defaulters", login.Token, map[string]any{
		"name": "Jane Doe", "image": "https://img.example/jane.png", "amount": "1500",
		"currency": "GHS", "duration": 2, "duration_unit": "hours",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var card struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &card))

	code, _ = do(t, h, http.MethodPost, "/api/v1/admin/defaulters", login.Token, map[string]any{
		"name": "Zero", "image": "x", "amount": "0", "currency": "GHS", "duration": 2, "duration_unit": "hours",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	var public []map[string]any
	_, env = do(t, h, http.MethodGet, "/api/v1/defaulters", "", nil)
	require.NoError(t, json.Unmarshal(env.Data, &public))
	require.Len(t, public, 1)
	assert.Equal(t, "GH₵1,500.00", public[0]["amount_display"])

	code, _ = do(t, h, http.MethodPut, "/api/v1/admin/defaulters/"+card.ID+"/enabled", login.Token, map[string]bool{"enabled": false})
	assert.Equal(t, http.StatusOK, code)

	public = nil
	_, env = do(t, h, http.MethodGet, "/api/v1/defaulters", "", nil)
	require.NoError(t, json.Unmarshal(env.Data, &public))
	assert.Empty(t, public)

	var all []map[string]any
	_, env = do(t, h, http.MethodGet, "/api/v1/admin/defaulters", login.Token, nil)
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 1)

	code, _ = do(t, h, http.MethodPut, "/api/v1/admin/defaulters/missing/enabled", login.Token, map[string]bool{"enabled": true})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, h, http.MethodPost, "/api/v1/logout", login.Token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, h, http.MethodGet, "/api/v1/session", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestApp_ReportRateLimited(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := New(context.Background(), newTestConfig(t), logger)
	require.NoError(t, err)
	t.Cleanup(app.close)
	h := app.Handler()

	body := map[string]string{"contact_number": "+233200000000", "message": "hello"}
	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		code, _ := do(t, h, http.MethodPost, "/api/v1/defaulters/unknown/reports", "", body)
		codes = append(codes, code)
	}
	assert.Equal(t, []int{http.StatusNotFound, http.StatusNotFound, http.StatusNotFound, http.StatusTooManyRequests}, codes)
}

func TestApp_FallbackToMock(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Provider = config.ProviderRedis
	cfg.AddressRedis = "127.0.0.1:1"
	cfg.DialTimeout = 100 * time.Millisecond
	cfg.FallbackToMock = true

	app, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(app.close)

	var public []map[string]any
	_, env := do(t, app.Handler(), http.MethodGet, "/api/v1/defaulters", "", nil)
	require.NoError(t, json.Unmarshal(env.Data, &public))
	assert.Len(t, public, 2)

	code, env := do(t, app.Handler(), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"provider":"mock"`)

	cfg.FallbackToMock = false
	_, err = New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
