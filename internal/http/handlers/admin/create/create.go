// Package create реализует HTTP-обработчик добавления должника администратором.
//
// Handler принимает JSON с данными записи, проверяет обязательные поля валидатором
// и передаёт их сервису. Сервис повторно проверяет сумму, валюту и длительность,
// сохраняет запись во внешнем хранилище и только затем добавляет её в коллекцию.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/lendlens/internal/http/response"
	"github.com/magabrotheeeer/lendlens/internal/http/view"
	"github.com/magabrotheeeer/lendlens/internal/lib/sl"
	"github.com/magabrotheeeer/lendlens/internal/models"
)

// Handler управляет HTTP-запросами на создание записей.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис коллекции должников
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания записи.
type Service interface {
	Create(ctx context.Context, req models.DummyDefaulter) (models.Defaulter, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Добавить должника
// @Description Создает запись с таймером раскрытия. Запись включена и видна сразу.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyDefaulter true "Данные должника"
// @Success 201 {object} response.Response{data=view.Card}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Нет активной сессии"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /admin/defaulters [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyDefaulter
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

	d, err := h.service.Create(r.Context(), req)
	if err != nil {
		log.Error("failed to create defaulter", sl.Err(err))
		render.Status(r, response.HTTPStatus(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	log.Info("defaulter created", slog.String("id", d.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(view.NewCard(d, time.Now())))
}
