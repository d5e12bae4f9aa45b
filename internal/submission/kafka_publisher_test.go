package submission

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ajinkyamaster/storefront/internal/domain"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

func setupKafka(t *testing.T) (string, func()) {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}

	return brokers[0], cleanup
}

func TestKafkaPublisher_WritesSubmission(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}
	broker, cleanup := setupKafka(t)
	defer cleanup()

	topic := "cart-submissions-test"
	pub := NewKafkaPublisher(topic, broker)
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	receipt := &domain.Receipt{
		Items:       []domain.SubmittedItem{item("1", 10, 2)},
		TotalPrice:  20,
		TotalItems:  2,
		SubmittedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	// the topic is auto-created on first write; the broker may need a moment
	require.Eventually(t, func() bool {
		return pub.Publish(ctx, receipt) == nil
	}, 30*time.Second, time.Second)

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     topic,
		Partition: 0,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)

	var event SubmittedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, string(msg.Key), event.SubmissionID)
	assert.Equal(t, 20.0, event.Receipt.TotalPrice)
	assert.Equal(t, 2, event.Receipt.TotalItems)
	require.Len(t, event.Receipt.Items, 1)
	assert.Equal(t, 2, event.Receipt.Items[0].Quantity)
}
