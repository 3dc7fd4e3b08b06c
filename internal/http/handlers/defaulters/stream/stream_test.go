package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lendlens/internal/http/handlers/defaulters/list"
	"github.com/magabrotheeeer/lendlens/internal/http/view"
	"github.com/magabrotheeeer/lendlens/internal/models"
)

type fakeService struct {
	public []models.Defaulter
	all    []models.Defaulter
}

func (f fakeService) ListPublic() []models.Defaulter { return f.public }
func (f fakeService) ListAll() []models.Defaulter    { return f.all }

type countingObserver struct {
	active   atomic.Int32
	observed atomic.Int32
}

func (o *countingObserver) Observe() func() {
	o.active.Add(1)
	o.observed.Add(1)
	return func() { o.active.Add(-1) }
}

func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return event, data
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestStreamHandler(t *testing.T) {
	now := time.Now()
	svc := fakeService{
		public: []models.Defaulter{{ID: "a", Amount: decimal.NewFromInt(5), Currency: models.USD, EndTime: now.Add(time.Hour), Enabled: true}},
		all: []models.Defaulter{
			{ID: "a", Amount: decimal.NewFromInt(5), Currency: models.USD, EndTime: now.Add(time.Hour), Enabled: true},
			{ID: "b", Amount: decimal.NewFromInt(7), Currency: models.EUR, EndTime: now.Add(-time.Hour)},
		},
	}

	tests := []struct {
		name  string
		scope list.Scope
		want  int
	}{
		{name: "public", scope: list.Public, want: 1},
		{name: "admin", scope: list.All, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observer := &countingObserver{}
			h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, observer, tt.scope, 20*time.Millisecond)
			srv := httptest.NewServer(h)
			defer srv.Close()

			ctx, cancel := context.WithCancel(context.Background())
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

			reader := bufio.NewReader(resp.Body)
			for i := 0; i < 2; i++ {
				event, data := readEvent(t, reader)
				assert.Equal(t, EventName, event)
				var cards []view.Card
				require.NoError(t, json.Unmarshal([]byte(data), &cards))
				assert.Len(t, cards, tt.want)
			}
			assert.Equal(t, int32(1), observer.active.Load())

			cancel()
			assert.Eventually(t, func() bool { return observer.active.Load() == 0 }, time.Second, 10*time.Millisecond)
			assert.Equal(t, int32(1), observer.observed.Load())
		})
	}
}
