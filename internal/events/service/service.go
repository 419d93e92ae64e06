// Package service gates mutation of the listener registry. Administering
// listeners requires the event-listeners role; subscribing oneself does not.
package service

import (
	"context"
	"errors"
	"log/slog"

	"tokenhost/internal/events"
	"tokenhost/internal/observability"
	"tokenhost/internal/rbac"
	"tokenhost/internal/state"
	"tokenhost/pkg/domain"
	dErrors "tokenhost/pkg/domain-errors"
	"tokenhost/pkg/platform/sentinel"
)

// Service is the listener registry orchestration layer.
type Service struct {
	state  *state.State
	bus    *events.Bus
	logger *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New constructs a Service.
func New(st *state.State, bus *events.Bus, opts ...Option) *Service {
	s := &Service{state: st, bus: bus, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a listener on behalf of any owner. Gated by the
// event-listeners role.
func (s *Service) Register(ctx context.Context, caller domain.Account, endpoint string, kinds []events.Kind, owner domain.Account) (events.Listener, error) {
	if err := s.guard(caller); err != nil {
		return events.Listener{}, err
	}
	if err := validate(endpoint, kinds); err != nil {
		return events.Listener{}, err
	}
	listener := s.bus.Register(endpoint, kinds, owner)
	s.logAudit(ctx, "listener_registered",
		"listener_id", string(listener.ID),
		"owner", owner.String(),
		"caller", caller.String(),
	)
	return listener, nil
}

// Unregister removes any listener by id. Gated by the event-listeners role.
func (s *Service) Unregister(ctx context.Context, caller domain.Account, id events.ListenerID) error {
	if err := s.guard(caller); err != nil {
		return err
	}
	if err := s.bus.Unregister(id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "listener not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to unregister listener")
	}
	s.logAudit(ctx, "listener_unregistered", "listener_id", string(id), "caller", caller.String())
	return nil
}

// Subscribe registers the caller as a listener over their own endpoint.
// Deliberately ungated: any authenticated account may follow events.
func (s *Service) Subscribe(ctx context.Context, caller domain.Account, endpoint string, kinds []events.Kind) (events.Listener, error) {
	if err := validate(endpoint, kinds); err != nil {
		return events.Listener{}, err
	}
	listener := s.bus.Register(endpoint, kinds, caller)
	s.logAudit(ctx, "listener_subscribed", "listener_id", string(listener.ID), "owner", caller.String())
	return listener, nil
}

// Unsubscribe removes one of the caller's own listeners. Callers holding
// the event-listeners role may remove anyone's.
func (s *Service) Unsubscribe(ctx context.Context, caller domain.Account, id events.ListenerID) error {
	listener, err := s.bus.Get(id)
	if err != nil {
		return dErrors.New(dErrors.CodeNotFound, "listener not found")
	}
	if listener.Owner != caller {
		if guardErr := s.guard(caller); guardErr != nil {
			return guardErr
		}
	}
	if err := s.bus.Unregister(id); err != nil {
		return dErrors.New(dErrors.CodeNotFound, "listener not found")
	}
	s.logAudit(ctx, "listener_unsubscribed", "listener_id", string(id), "owner", caller.String())
	return nil
}

// List returns every registered listener. Gated by the event-listeners role.
func (s *Service) List(caller domain.Account) ([]events.Listener, error) {
	if err := s.guard(caller); err != nil {
		return nil, err
	}
	return s.bus.List(), nil
}

func (s *Service) guard(caller domain.Account) error {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.Roles.Guard(rbac.RoleEventListeners, caller)
}

func validate(endpoint string, kinds []events.Kind) error {
	if endpoint == "" {
		return dErrors.New(dErrors.CodeBadRequest, "endpoint must not be empty")
	}
	if len(kinds) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "at least one event kind is required")
	}
	for _, kind := range kinds {
		if !kind.Valid() {
			return dErrors.Newf(dErrors.CodeBadRequest, "unknown event kind %q", kind)
		}
	}
	return nil
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	observability.LogAudit(ctx, s.logger, event, attributes...)
}
