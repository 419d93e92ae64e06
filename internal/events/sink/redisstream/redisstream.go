// Package redisstream appends every emitted event to a redis stream so
// external consumers can tail the change feed durably.
package redisstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"tokenhost/internal/events"
)

// Sink XADDs one entry per event to a single stream.
type Sink struct {
	client *redis.Client
	stream string
}

// New builds a Sink on an established redis client.
func New(client *redis.Client, stream string) *Sink {
	return &Sink{client: client, stream: stream}
}

func (s *Sink) Publish(ctx context.Context, event events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	values := map[string]interface{}{
		"kind":  string(event.Kind),
		"event": string(body),
	}
	for _, topic := range event.Topics {
		values["topic:"+topic.Name] = topic.Value
	}

	if err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("xadd event: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Sink) Close() error { return s.client.Close() }
