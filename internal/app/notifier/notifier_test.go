package notifier

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/lendlens/internal/config"
)

func TestNew_RequiresBrokerURL(t *testing.T) {
	app, err := New(context.Background(), &config.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
	assert.Nil(t, app)
}
