package rabbitmq

// Exchange — direct-обменник всех уведомлений сервиса.
const Exchange = "notifications"

// Ключи маршрутизации уведомлений.
const (
	RoutingKeyExposed = "exposed"
	RoutingKeyCreated = "created"
)

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые объявляются при старте.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.exposed", RoutingKey: RoutingKeyExposed},
		{QueueName: "notifications.created", RoutingKey: RoutingKeyCreated},
	}
}
