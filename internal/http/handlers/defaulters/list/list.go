// Package list реализует HTTP-обработчики списка должников.
//
// Публичный список содержит только включённые записи, административный все.
// Каждая запись отдаётся карточкой с отформатированной суммой и остатком таймера.
package list

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/lendlens/internal/http/response"
	"github.com/magabrotheeeer/lendlens/internal/http/view"
	"github.com/magabrotheeeer/lendlens/internal/models"
)

// Scope определяет, какие записи попадают в список.
type Scope int

const (
	// Public — только включённые записи.
	Public Scope = iota
	// All — все записи, для администратора.
	All
)

// Service описывает чтение коллекции записей.
type Service interface {
	ListPublic() []models.Defaulter
	ListAll() []models.Defaulter
}

// Snapshot возвращает записи выбранной области видимости.
func Snapshot(s Service, scope Scope) []models.Defaulter {
	if scope == All {
		return s.ListAll()
	}
	return s.ListPublic()
}

// Handler отдаёт список карточек.
type Handler struct {
	log     *slog.Logger
	service Service
	scope   Scope
	now     func() time.Time
}

// New создает Handler для заданной области видимости.
func New(log *slog.Logger, service Service, scope Scope) *Handler {
	return &Handler{
		log:     log,
		service: service,
		scope:   scope,
		now:     time.Now,
	}
}

// ServeHTTP godoc
// @Summary Список должников
// @Description Публичный список возвращает включённые записи в порядке добавления. Фото размыто, пока таймер не истёк.
// @Tags Defaulters
// @Produce  json
// @Success 200 {object} response.Response{data=[]view.Card}
// @Router /defaulters [get]
// @Router /admin/defaulters [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.defaulters.list"

	cards := view.Cards(Snapshot(h.service, h.scope), h.now())
	h.log.Debug("defaulters listed",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("count", len(cards)),
		slog.Bool("all", h.scope == All))
	render.JSON(w, r, response.StatusOKWithData(cards))
}
