// Package stream реализует поток Server-Sent Events со списком должников.
//
// Пока клиент подключён, обработчик держит наблюдателя цикла истечения таймеров
// и с тем же периодом отправляет свежий снимок карточек.
package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/lendlens/internal/http/handlers/defaulters/list"
	"github.com/magabrotheeeer/lendlens/internal/http/response"
	"github.com/magabrotheeeer/lendlens/internal/http/view"
	"github.com/magabrotheeeer/lendlens/internal/lib/sl"
)

// EventName — имя события в потоке.
const EventName = "defaulters"

// Observer подключает наблюдателя к циклу истечения таймеров.
type Observer interface {
	Observe() (release func())
}

// Handler отдаёт поток снимков.
type Handler struct {
	log      *slog.Logger
	service  list.Service
	observer Observer
	scope    list.Scope
	interval time.Duration
	now      func() time.Time
}

// New создает Handler, отправляющий снимок каждые interval.
func New(log *slog.Logger, service list.Service, observer Observer, scope list.Scope, interval time.Duration) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		observer: observer,
		scope:    scope,
		interval: interval,
		now:      time.Now,
	}
}

// ServeHTTP godoc
// @Summary Поток списка должников
// @Description Server-Sent Events: событие "defaulters" с массивом карточек сразу после подключения и затем на каждом такте.
// @Tags Defaulters
// @Produce  text/event-stream
// @Success 200 {array} view.Card
// @Router /defaulters/stream [get]
// @Router /admin/defaulters/stream [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.defaulters.stream"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("response writer does not support flushing")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("streaming is not supported"))
		return
	}

	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("write deadline is not adjustable", sl.Err(err))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	release := h.observer.Observe()
	defer release()
	log.Info("stream opened")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		if err := h.send(w); err != nil {
			log.Warn("stream write failed", sl.Err(err))
			return
		}
		flusher.Flush()

		select {
		case <-r.Context().Done():
			log.Info("stream closed")
			return
		case <-ticker.C:
		}
	}
}

func (h *Handler) send(w http.ResponseWriter) error {
	payload, err := json.Marshal(view.Cards(list.Snapshot(h.service, h.scope), h.now()))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", EventName, payload)
	return err
}
