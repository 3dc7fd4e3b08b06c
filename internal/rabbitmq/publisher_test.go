package rabbitmq

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openChannel(t *testing.T, amqpURI string) *amqp.Channel {
	t.Helper()
	conn, err := Connect(amqpURI, 3, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ch, err := SetupChannel(conn, GetNotificationQueues())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ch.Close() })
	return ch
}

func TestPublishMessage_ToNotificationsExchange(t *testing.T) {
	ctx := context.Background()
	ch := openChannel(t, brokerURI(ctx, t))

	type exposed struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	msg := exposed{ID: "d-1", Name: "Jane Doe"}
	require.NoError(t, PublishMessage(ch, Exchange, RoutingKeyExposed, msg))

	deliveries, err := ch.Consume("notifications.exposed", "test-consumer", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		var got exposed
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, msg, got)
		assert.Equal(t, "application/json", d.ContentType)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message via exchange")
	}

	t.Run("marshal error", func(t *testing.T) {
		badMsg := struct {
			Ch chan int `json:"ch"`
		}{Ch: make(chan int)}

		err := PublishMessage(ch, Exchange, RoutingKeyExposed, badMsg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rabbitmq.PublishMessage")
	})
}

func TestConsumerMessage_HandleMessages(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ch := openChannel(t, brokerURI(ctx, t))

	var wg sync.WaitGroup
	wg.Add(2)
	var mu sync.Mutex
	received := make([]string, 0)

	handler := func(body []byte) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, string(body))
		wg.Done()
		return nil
	}
	require.NoError(t, ConsumerMessage(ctx, newNoopLogger(), ch, "notifications.created", handler))

	for _, msg := range []string{"hello", "world"} {
		require.NoError(t, PublishMessage(ch, Exchange, RoutingKeyCreated, msg))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Timeout waiting for messages to be processed")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{`"hello"`, `"world"`}, received)
}
