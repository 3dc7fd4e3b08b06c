// Package logout реализует HTTP-обработчик выхода администратора.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/lendlens/internal/http/response"
	"github.com/magabrotheeeer/lendlens/internal/lib/sl"
)

// Handler закрывает текущую сессию.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сервиса сессий, нужный для выхода.
type Service interface {
	Logout(ctx context.Context) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выход администратора
// @Description Закрывает сессию. Локальное состояние сбрасывается всегда, 502 означает, что не удалось очистить хранилище.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Нет активной сессии"
// @Failure 502 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := h.service.Logout(r.Context()); err != nil {
		log.Error("failed to clear persisted session", sl.Err(err))
		render.Status(r, response.HTTPStatus(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	log.Info("logout success")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"logged_out": true,
	}))
}
