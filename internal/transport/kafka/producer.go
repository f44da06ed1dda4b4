package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes index events keyed by document id.
type Producer struct {
	writer messageWriter
}

// NewProducer creates a synchronous writer for topic.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
	}}
}

// Publish writes one event and waits for the broker acknowledgement.
func (p *Producer) Publish(ctx context.Context, ev IndexEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal index event: %w", err)
	}
	if err = p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(ev.DocumentID), Value: value}); err != nil {
		return fmt.Errorf("publish index event %s: %w", ev.DocumentID, err)
	}
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
