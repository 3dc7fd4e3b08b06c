// Package notifier публикует события жизненного цикла записей в RabbitMQ
// и обрабатывает их на стороне потребителя.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/lendlens/internal/lib/money"
	"github.com/magabrotheeeer/lendlens/internal/lib/sl"
	"github.com/magabrotheeeer/lendlens/internal/metrics"
	"github.com/magabrotheeeer/lendlens/internal/models"
	"github.com/magabrotheeeer/lendlens/internal/rabbitmq"
)

// Event — тело уведомления.
type Event struct {
	Type        string    `json:"type"`
	DefaulterID string    `json:"defaulter_id"`
	Name        string    `json:"name"`
	Amount      string    `json:"amount"`
	Display     string    `json:"display_amount"`
	Currency    string    `json:"currency"`
	EndTime     time.Time `json:"end_time"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewEvent строит уведомление о записи.
func NewEvent(kind string, d models.Defaulter, at time.Time) Event {
	return Event{
		Type:        kind,
		DefaulterID: d.ID,
		Name:        d.Name,
		Amount:      d.Amount.StringFixed(2),
		Display:     money.Format(d.Amount, d.Currency),
		Currency:    string(d.Currency),
		EndTime:     d.EndTime,
		OccurredAt:  at,
	}
}

// Notifier сообщает о создании и раскрытии записей. Ошибки публикации не
// влияют на операции над записями, поэтому методы ничего не возвращают.
type Notifier interface {
	DefaulterCreated(ctx context.Context, d models.Defaulter)
	DefaulterExposed(ctx context.Context, d models.Defaulter)
}

// Nop ничего не публикует. Используется, когда адрес брокера не задан.
type Nop struct{}

func (Nop) DefaulterCreated(context.Context, models.Defaulter) {}
func (Nop) DefaulterExposed(context.Context, models.Defaulter) {}

type publishFunc func(exchange, routingKey string, message any) error

// AMQP публикует уведомления в обменник rabbitmq.Exchange.
type AMQP struct {
	mu      sync.Mutex
	publish publishFunc
	log     *slog.Logger
	now     func() time.Time
}

// NewAMQP создаёт публикатор поверх настроенного канала.
func NewAMQP(ch *amqp.Channel, log *slog.Logger) *AMQP {
	return newAMQP(func(exchange, routingKey string, message any) error {
		return rabbitmq.PublishMessage(ch, exchange, routingKey, message)
	}, log)
}

func newAMQP(publish publishFunc, log *slog.Logger) *AMQP {
	return &AMQP{publish: publish, log: log, now: time.Now}
}

// DefaulterCreated публикует событие created.
func (n *AMQP) DefaulterCreated(ctx context.Context, d models.Defaulter) {
	n.send(ctx, rabbitmq.RoutingKeyCreated, d)
}

// DefaulterExposed публикует событие exposed.
func (n *AMQP) DefaulterExposed(ctx context.Context, d models.Defaulter) {
	n.send(ctx, rabbitmq.RoutingKeyExposed, d)
}

// send публикует событие об уже зафиксированном изменении, поэтому отмена ctx его не пропускает.
func (n *AMQP) send(_ context.Context, routingKey string, d models.Defaulter) {
	const op = "notifier.send"
	event := NewEvent(routingKey, d, n.now())

	n.mu.Lock()
	err := n.publish(rabbitmq.Exchange, routingKey, event)
	n.mu.Unlock()

	if err != nil {
		metrics.Notifications.WithLabelValues(routingKey, "error").Inc()
		n.log.Error("failed to publish notification",
			slog.String("op", op),
			slog.String("routing_key", routingKey),
			slog.String("defaulter_id", d.ID),
			sl.Err(err))
		return
	}
	metrics.Notifications.WithLabelValues(routingKey, "published").Inc()
	n.log.Debug("notification published",
		slog.String("op", op),
		slog.String("routing_key", routingKey),
		slog.String("defaulter_id", d.ID))
}

// Handler обрабатывает уведомления из очередей и пишет их в журнал.
type Handler struct {
	log *slog.Logger
}

// NewHandler создаёт обработчик очередей уведомлений.
func NewHandler(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// Handle разбирает событие. Неразбираемое тело возвращается с ошибкой.
func (h *Handler) Handle(body []byte) error {
	const op = "notifier.Handle"
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		h.log.Error("failed to unmarshal notification", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if event.DefaulterID == "" {
		return fmt.Errorf("%s: notification without defaulter id", op)
	}

	metrics.Notifications.WithLabelValues(event.Type, "consumed").Inc()
	h.log.Info("notification received",
		slog.String("op", op),
		slog.String("type", event.Type),
		slog.String("defaulter_id", event.DefaulterID),
		slog.String("name", event.Name),
		slog.String("amount", event.Display),
		slog.Time("end_time", event.EndTime))
	return nil
}
