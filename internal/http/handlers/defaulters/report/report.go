// Package report реализует HTTP-обработчик приёма жалобы на опубликованного должника.
//
// Жалоба только проверяется и записывается в журнал, клиент получает текст подтверждения.
package report

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/lendlens/internal/http/response"
	"github.com/magabrotheeeer/lendlens/internal/lib/sl"
	"github.com/magabrotheeeer/lendlens/internal/models"
)

// Handler принимает жалобы посетителей.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает приём жалобы.
type Service interface {
	Submit(defaulterID string, req models.DummyReport) (models.Report, string, error)
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
// @Summary Пожаловаться на должника
// @Description Принимает номер для связи и сообщение. Жалоба не сохраняется, ответ содержит подтверждение.
// @Tags Defaulters
// @Accept  json
// @Produce  json
// @Param id path string true "ID должника"
// @Param request body models.DummyReport true "Жалоба"
// @Success 200 {object} map[string]any "Жалоба принята"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Должник не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Router /defaulters/{id}/reports [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.defaulters.report"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyReport
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
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
	rep, ack, err := h.service.Submit(id, req)
	if err != nil {
		log.Warn("report rejected", slog.String("defaulter_id", id), sl.Err(err))
		render.Status(r, response.HTTPStatus(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"defaulter_id": rep.DefaulterID,
		"received_at":  rep.ReceivedAt,
		"message":      ack,
	}))
}
