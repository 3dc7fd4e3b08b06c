// Package assets реализует загрузку фотографии должника в хранилище изображений.
//
// Handler принимает multipart/form-data с полем "file", ограничивает размер тела
// и возвращает ссылку, которую затем передают в поле image при создании записи.
package assets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/lendlens/internal/http/response"
	"github.com/magabrotheeeer/lendlens/internal/lib/sl"
	"github.com/magabrotheeeer/lendlens/internal/storage/blob"
)

// FormField — имя поля формы с файлом.
const FormField = "file"

// Uploader сохраняет изображение и возвращает ссылку на него.
type Uploader interface {
	UploadAsset(ctx context.Context, data []byte, contentType string) (string, error)
}

// Handler принимает файл изображения.
type Handler struct {
	log     *slog.Logger
	store   Uploader
	maxSize int64
}

// New создает Handler с ограничением размера maxSize байт.
func New(log *slog.Logger, store Uploader, maxSize int64) *Handler {
	return &Handler{
		log:     log,
		store:   store,
		maxSize: maxSize,
	}
}

// ServeHTTP godoc
// @Summary Загрузить фотографию
// @Description Сохраняет изображение и возвращает ссылку (data URL или публичный адрес в S3).
// @Tags Admin
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param file formData file true "Изображение"
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse "Нет файла"
// @Failure 413 {object} response.ErrorResponse "Файл слишком большой"
// @Failure 422 {object} response.ErrorResponse "Файл не является изображением"
// @Failure 502 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /admin/assets [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.assets"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if r.ContentLength > h.maxSize {
		log.Warn("upload is too large", slog.Int64("size", r.ContentLength), slog.Int64("limit", h.maxSize))
		render.Status(r, http.StatusRequestEntityTooLarge)
		render.JSON(w, r, response.Error("file is too large"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)
	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("upload is too large", slog.Int64("limit", h.maxSize))
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, response.Error("file is too large"))
			return
		}
		log.Error("failed to parse multipart form", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile(FormField)
	if err != nil {
		log.Error("file field is missing", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("file field is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error("failed to read uploaded file", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read file"))
		return
	}

	ref, err := h.store.UploadAsset(r.Context(), data, header.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, blob.ErrUnsupportedType) {
			log.Warn("rejected upload", sl.Err(err))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("file must be an image"))
			return
		}
		log.Error("failed to store asset", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("storage is temporarily unavailable"))
		return
	}

	log.Info("asset stored", slog.Int("size", len(data)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"image": ref,
	}))
}
