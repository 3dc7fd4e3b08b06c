// Package session реализует HTTP-обработчик, возвращающий текущую сессию администратора.
package session

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/lendlens/internal/http/response"
	"github.com/magabrotheeeer/lendlens/internal/models"
)

// Handler отдаёт данные активной сессии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает доступ к текущей сессии.
type Service interface {
	Current() (models.Session, bool)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Текущая сессия
// @Description Возвращает электронную почту, роль и срок действия активной сессии.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.Session}
// @Failure 401 {object} response.ErrorResponse "Нет активной сессии"
// @Router /session [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.session"

	s, ok := h.service.Current()
	if !ok {
		h.log.Warn("no active session",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("no active session"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(s))
}
