// Package health отдаёт состояние сервиса для проверок живости.
package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/lendlens/internal/http/response"
)

// Handler отвечает на проверку живости.
type Handler struct {
	log      *slog.Logger
	provider string
}

// New создает Handler; provider попадает в ответ как имя активного хранилища.
func New(log *slog.Logger, provider string) *Handler {
	return &Handler{
		log:      log,
		provider: provider,
	}
}

// ServeHTTP godoc
// @Summary Проверка живости
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]any
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status":   "ok",
		"provider": h.provider,
	}))
}
