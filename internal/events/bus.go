package events

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tokenhost/internal/platform/metrics"
	"tokenhost/pkg/domain"
	"tokenhost/pkg/platform/sentinel"
)

// ListenerID identifies one registered listener.
type ListenerID string

// Listener is a registered notification endpoint with the event kinds it
// subscribed to. Owner records who registered it.
type Listener struct {
	ID        ListenerID     `json:"id"`
	Endpoint  string         `json:"endpoint"`
	Kinds     []Kind         `json:"kinds"`
	Owner     domain.Account `json:"owner"`
	CreatedAt time.Time      `json:"created_at"`
}

func (l Listener) wants(kind Kind) bool {
	for _, k := range l.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Deliverer pushes one event to one listener endpoint.
type Deliverer interface {
	Deliver(ctx context.Context, endpoint string, event Event) error
}

// Sink receives every emitted event regardless of listener subscriptions,
// e.g. a redis stream or a kafka topic.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Bus owns the listener registry and fans emitted events out to listeners
// and sinks. Registry mutation is guarded at the service layer; the bus
// itself only stores and delivers.
type Bus struct {
	mu        sync.RWMutex
	listeners map[ListenerID]Listener

	deliverer Deliverer
	sinks     []Sink
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type BusOption func(b *Bus)

func WithSinks(sinks ...Sink) BusOption {
	return func(b *Bus) {
		b.sinks = append(b.sinks, sinks...)
	}
}

func WithLogger(logger *slog.Logger) BusOption {
	return func(b *Bus) {
		b.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) BusOption {
	return func(b *Bus) {
		b.metrics = m
	}
}

// NewBus constructs a Bus delivering through the given deliverer.
func NewBus(deliverer Deliverer, opts ...BusOption) *Bus {
	b := &Bus{
		listeners: make(map[ListenerID]Listener),
		deliverer: deliverer,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Emit broadcasts events to every matching listener and every sink. It
// never fails: delivery errors are logged and counted only.
func (b *Bus) Emit(ctx context.Context, evs ...Event) {
	b.mu.RLock()
	listeners := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		listeners = append(listeners, l)
	}
	b.mu.RUnlock()

	for _, event := range evs {
		if b.metrics != nil {
			b.metrics.EventsEmitted.Inc()
		}
		for _, listener := range listeners {
			if !listener.wants(event.Kind) {
				continue
			}
			if err := b.deliverer.Deliver(ctx, listener.Endpoint, event); err != nil {
				if b.metrics != nil {
					b.metrics.DeliveriesFailed.Inc()
				}
				b.logger.WarnContext(ctx, "event delivery failed",
					"listener_id", string(listener.ID),
					"endpoint", listener.Endpoint,
					"kind", string(event.Kind),
					"error", err,
				)
			}
		}
		for _, sink := range b.sinks {
			if err := sink.Publish(ctx, event); err != nil {
				if b.metrics != nil {
					b.metrics.DeliveriesFailed.Inc()
				}
				b.logger.WarnContext(ctx, "event sink publish failed",
					"kind", string(event.Kind),
					"error", err,
				)
			}
		}
	}
}

// Register adds a listener for the given kinds and returns it.
func (b *Bus) Register(endpoint string, kinds []Kind, owner domain.Account) Listener {
	listener := Listener{
		ID:        ListenerID(uuid.NewString()),
		Endpoint:  endpoint,
		Kinds:     kinds,
		Owner:     owner,
		CreatedAt: time.Now().UTC(),
	}

	b.mu.Lock()
	b.listeners[listener.ID] = listener
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.ListenersRegistered.Inc()
	}
	return listener
}

// Unregister removes a listener by id.
func (b *Bus) Unregister(id ListenerID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.listeners[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(b.listeners, id)
	return nil
}

// Get returns a listener by id.
func (b *Bus) Get(id ListenerID) (Listener, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	listener, ok := b.listeners[id]
	if !ok {
		return Listener{}, sentinel.ErrNotFound
	}
	return listener, nil
}

// List returns all listeners ordered by registration time.
func (b *Bus) List() []Listener {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
