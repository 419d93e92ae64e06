// Package service orchestrates membership transitions: guard, mutate,
// emit. Issue and revoke are privileged batches; accept and decline are
// self-service.
package service

import (
	"context"
	"log/slog"

	"tokenhost/internal/events"
	"tokenhost/internal/observability"
	"tokenhost/internal/platform/metrics"
	"tokenhost/internal/rbac"
	"tokenhost/internal/state"
	"tokenhost/pkg/domain"
)

// Service is the membership orchestration layer.
type Service struct {
	state   *state.State
	bus     *events.Bus
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(st *state.State, bus *events.Bus, opts ...Option) *Service {
	s := &Service{state: st, bus: bus, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue offers a membership to each account. Gated by the Issue role.
// Accounts are attempted independently; the response carries one result
// per account.
func (s *Service) Issue(ctx context.Context, caller domain.Account, accounts []domain.Account) ([]error, error) {
	s.state.Lock()
	defer s.state.Unlock()

	if err := s.state.Roles.Guard(rbac.RoleIssue, caller); err != nil {
		return nil, err
	}

	results := make([]error, len(accounts))
	for i, account := range accounts {
		change, err := s.state.Registry.Issue(account)
		if err != nil {
			results[i] = err
			continue
		}
		s.bus.Emit(ctx, events.FromChange(change)...)
		if s.metrics != nil {
			s.metrics.MembershipsIssued.Inc()
		}
		s.logAudit(ctx, "membership_issued", "account", account.String(), "caller", caller.String())
	}
	return results, nil
}

// Revoke removes each account's membership. Gated by the Revoke role.
func (s *Service) Revoke(ctx context.Context, caller domain.Account, accounts []domain.Account) ([]error, error) {
	s.state.Lock()
	defer s.state.Unlock()

	if err := s.state.Roles.Guard(rbac.RoleRevoke, caller); err != nil {
		return nil, err
	}

	results := make([]error, len(accounts))
	for i, account := range accounts {
		change, err := s.state.Registry.Revoke(account)
		if err != nil {
			results[i] = err
			continue
		}
		s.bus.Emit(ctx, events.FromChange(change)...)
		if s.metrics != nil {
			s.metrics.MembershipsRevoked.Inc()
		}
		s.logAudit(ctx, "membership_revoked", "account", account.String(), "caller", caller.String())
	}
	return results, nil
}

// Accept promotes the caller's pending offer to a full membership.
func (s *Service) Accept(ctx context.Context, caller domain.Account) error {
	s.state.Lock()
	defer s.state.Unlock()

	change, err := s.state.Registry.Accept(caller)
	if err != nil {
		return err
	}
	s.bus.Emit(ctx, events.FromChange(change)...)
	if s.metrics != nil {
		s.metrics.MembershipsAccepted.Inc()
	}
	s.logAudit(ctx, "membership_accepted", "account", caller.String())
	return nil
}

// Decline discards the caller's pending offer.
func (s *Service) Decline(ctx context.Context, caller domain.Account) error {
	s.state.Lock()
	defer s.state.Unlock()

	change, err := s.state.Registry.Decline(caller)
	if err != nil {
		return err
	}
	s.bus.Emit(ctx, events.FromChange(change)...)
	if s.metrics != nil {
		s.metrics.MembershipsDeclined.Inc()
	}
	s.logAudit(ctx, "membership_declined", "account", caller.String())
	return nil
}

// IsMember reports whether the account holds a full membership.
func (s *Service) IsMember(account domain.Account) bool {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.Registry.IsMember(account)
}

// IsPending reports whether the account holds an unanswered offer.
func (s *Service) IsPending(account domain.Account) bool {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.Registry.IsPending(account)
}

// TotalMembers returns the member count.
func (s *Service) TotalMembers() int {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.Registry.TotalMembers()
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	observability.LogAudit(ctx, s.logger, event, attributes...)
}
