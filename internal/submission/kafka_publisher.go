package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ajinkyamaster/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "cart-submissions"

// SubmittedEvent is the message written for every accepted submission.
type SubmittedEvent struct {
	SubmissionID string          `json:"submission_id"`
	Receipt      *domain.Receipt `json:"receipt"`
}

// KafkaPublisher writes accepted submissions to a Kafka topic, one message per
// submission keyed by a fresh submission id.
type KafkaPublisher struct {
	writer  *kafka.Writer
	timeout time.Duration
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
	return &KafkaPublisher{writer: w, timeout: 5 * time.Second}
}

func (p *KafkaPublisher) Publish(ctx context.Context, receipt *domain.Receipt) error {
	id := uuid.NewString()
	payload, err := json.Marshal(SubmittedEvent{SubmissionID: id, Receipt: receipt})
	if err != nil {
		return fmt.Errorf("marshal submission event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(id),
		Value: payload,
		Time:  receipt.SubmittedAt,
	})
	if err != nil {
		return fmt.Errorf("write submission event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
