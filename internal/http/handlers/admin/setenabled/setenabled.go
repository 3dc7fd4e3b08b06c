// Package setenabled реализует HTTP-обработчик скрытия и показа записи должника.
package setenabled

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/lendlens/internal/http/response"
	"github.com/magabrotheeeer/lendlens/internal/lib/sl"
)

// Request — новое значение флага видимости.
type Request struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// Handler меняет флаг видимости записи.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает изменение флага.
type Service interface {
	SetEnabled(ctx context.Context, id string, enabled bool) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Показать или скрыть должника
// @Description Меняет только флаг enabled. Скрытая запись пропадает из публичного списка.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID должника"
// @Param request body Request true "Новое значение"
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Должник не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /admin/defaulters/{id}/enabled [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.setenabled"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.SetEnabled(r.Context(), id, *req.Enabled); err != nil {
		log.Error("failed to update defaulter", slog.String("id", id), sl.Err(err))
		render.Status(r, response.HTTPStatus(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	log.Info("defaulter visibility changed", slog.String("id", id), slog.Bool("enabled", *req.Enabled))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id":      id,
		"enabled": *req.Enabled,
	}))
}
