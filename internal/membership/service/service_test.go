package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"tokenhost/internal/currency"
	"tokenhost/internal/events"
	"tokenhost/internal/membership"
	"tokenhost/internal/rbac"
	"tokenhost/internal/state"
	"tokenhost/pkg/domain"
	dErrors "tokenhost/pkg/domain-errors"
)

const (
	admin = domain.Account("admin")
	carol = domain.Account("carol")
	dave  = domain.Account("dave")
	host  = domain.Account("tokenhost")
)

type nopDeliverer struct{}

func (nopDeliverer) Deliver(context.Context, string, events.Event) error { return nil }

type captureSink struct {
	events []events.Event
}

func (s *captureSink) Publish(_ context.Context, event events.Event) error {
	s.events = append(s.events, event)
	return nil
}

type ServiceSuite struct {
	suite.Suite
	state   *state.State
	sink    *captureSink
	service *Service
	ctx     context.Context
}

func (s *ServiceSuite) SetupTest() {
	s.state = state.New(
		currency.NewToken(currency.Info{Name: "Test", Symbol: "TST"}),
		membership.NewRegistry(),
		rbac.Single(admin, host),
	)
	s.sink = &captureSink{}
	s.service = New(s.state, events.NewBus(nopDeliverer{}, events.WithSinks(s.sink)))
	s.ctx = context.Background()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestIssue() {
	s.Run("denied without the issue role", func() {
		_, err := s.service.Issue(s.ctx, carol, []domain.Account{carol})
		s.True(dErrors.HasCode(err, dErrors.CodeAccessDenied))
		s.False(s.service.IsPending(carol))
		s.Empty(s.sink.events)
	})

	s.Run("commits good accounts and reports bad ones", func() {
		_, err := s.service.Issue(s.ctx, admin, []domain.Account{carol})
		s.Require().NoError(err)

		results, err := s.service.Issue(s.ctx, admin, []domain.Account{carol, dave})
		s.Require().NoError(err)
		s.Require().Len(results, 2)

		s.True(dErrors.HasCode(results[0], dErrors.CodeAlreadyMember))
		s.NoError(results[1])
		s.True(s.service.IsPending(dave))
	})

	s.Run("emits a status change per issued account", func() {
		s.sink.events = nil
		_, err := s.service.Issue(s.ctx, admin, []domain.Account{"erin"})
		s.Require().NoError(err)

		s.Require().Len(s.sink.events, 1)
		s.Equal(events.KindStatusChanged, s.sink.events[0].Kind)
	})
}

func (s *ServiceSuite) TestAccept() {
	s.Run("promotes the caller and emits a voting power balance", func() {
		_, err := s.service.Issue(s.ctx, admin, []domain.Account{carol})
		s.Require().NoError(err)
		s.sink.events = nil

		s.Require().NoError(s.service.Accept(s.ctx, carol))

		s.True(s.service.IsMember(carol))
		s.Equal(1, s.service.TotalMembers())
		s.Require().Len(s.sink.events, 2)
		s.Equal(events.KindStatusChanged, s.sink.events[0].Kind)
		s.Equal(events.KindBalanceChanged, s.sink.events[1].Kind)
	})

	s.Run("fails without a pending offer", func() {
		err := s.service.Accept(s.ctx, dave)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAMember))
	})
}

func (s *ServiceSuite) TestDecline() {
	_, err := s.service.Issue(s.ctx, admin, []domain.Account{carol})
	s.Require().NoError(err)
	s.sink.events = nil

	s.Require().NoError(s.service.Decline(s.ctx, carol))

	s.False(s.service.IsPending(carol))
	s.False(s.service.IsMember(carol))
	// Declining confers no voting power, so no balance event follows.
	s.Require().Len(s.sink.events, 1)
	s.Equal(events.KindStatusChanged, s.sink.events[0].Kind)
}

func (s *ServiceSuite) TestRevoke() {
	s.Run("denied without the revoke role", func() {
		_, err := s.service.Revoke(s.ctx, carol, []domain.Account{dave})
		s.True(dErrors.HasCode(err, dErrors.CodeAccessDenied))
	})

	s.Run("removes members and zeroes their voting power", func() {
		_, err := s.service.Issue(s.ctx, admin, []domain.Account{carol})
		s.Require().NoError(err)
		s.Require().NoError(s.service.Accept(s.ctx, carol))
		s.sink.events = nil

		results, err := s.service.Revoke(s.ctx, admin, []domain.Account{carol, dave})
		s.Require().NoError(err)
		s.Require().Len(results, 2)

		s.NoError(results[0])
		s.True(dErrors.HasCode(results[1], dErrors.CodeNotAMember))
		s.False(s.service.IsMember(carol))
		s.Equal(0, s.service.TotalMembers())

		s.Require().Len(s.sink.events, 2)
		s.Equal(events.KindStatusChanged, s.sink.events[0].Kind)
		s.Equal(events.KindBalanceChanged, s.sink.events[1].Kind)
		balance := s.sink.events[1].Payload.(events.BalanceChangedPayload)
		s.EqualValues(0, balance.NewBalance)
	})
}
