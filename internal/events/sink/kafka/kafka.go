// Package kafka publishes every emitted event to a kafka topic, keyed by
// the event's first topic value so per-account ordering is preserved.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"tokenhost/internal/events"
)

// Producer is the subset of the kafka client the sink uses. *kgo.Client
// satisfies it; tests substitute a recorder.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Sink produces one record per event.
type Sink struct {
	producer Producer
	topic    string
}

// New builds a Sink over an established producer.
func New(producer Producer, topic string) *Sink {
	return &Sink{producer: producer, topic: topic}
}

// Connect dials the brokers and returns a ready Sink.
func Connect(brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	return New(client, topic), nil
}

func (s *Sink) Publish(ctx context.Context, event events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	var key []byte
	if len(event.Topics) > 0 {
		key = []byte(event.Topics[0].Value)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   key,
		Value: body,
		Headers: []kgo.RecordHeader{
			{Key: "kind", Value: []byte(event.Kind)},
		},
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce event: %w", err)
	}
	return nil
}

// Close flushes and releases the producer.
func (s *Sink) Close() { s.producer.Close() }
