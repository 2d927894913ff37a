package kafka

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// Publisher implements bus.Publisher on one shared kafka writer. The writer
// is created without a fixed topic; each message carries its own.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string) *Publisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Publisher{writer: writer}
}

// Publish delivers one payload, keyed so all events of a booking land in one
// partition and keep their order.
func (p *Publisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Close flushes and shuts down the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
