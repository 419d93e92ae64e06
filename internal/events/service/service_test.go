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
	alice = domain.Account("alice")
	host  = domain.Account("tokenhost")
)

type nopDeliverer struct{}

func (nopDeliverer) Deliver(context.Context, string, events.Event) error { return nil }

type ServiceSuite struct {
	suite.Suite
	bus     *events.Bus
	service *Service
	ctx     context.Context
}

func (s *ServiceSuite) SetupTest() {
	appState := state.New(
		currency.NewToken(currency.Info{Name: "Test", Symbol: "TST"}),
		membership.NewRegistry(),
		rbac.Single(admin, host),
	)
	s.bus = events.NewBus(nopDeliverer{})
	s.service = New(appState, s.bus)
	s.ctx = context.Background()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestRegister() {
	s.Run("denied without the event listeners role", func() {
		_, err := s.service.Register(s.ctx, alice, "http://a", []events.Kind{events.KindTokenMoved}, alice)
		s.True(dErrors.HasCode(err, dErrors.CodeAccessDenied))
		s.Empty(s.bus.List())
	})

	s.Run("role holder registers on behalf of any owner", func() {
		listener, err := s.service.Register(s.ctx, admin, "http://a", []events.Kind{events.KindTokenMoved}, alice)
		s.Require().NoError(err)
		s.Equal(alice, listener.Owner)
	})

	s.Run("rejects unknown kinds", func() {
		_, err := s.service.Register(s.ctx, admin, "http://a", []events.Kind{"token.exploded"}, alice)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("rejects an empty endpoint", func() {
		_, err := s.service.Register(s.ctx, admin, "", []events.Kind{events.KindTokenMoved}, alice)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ServiceSuite) TestUnregister() {
	s.Run("denied without the role", func() {
		listener, err := s.service.Subscribe(s.ctx, alice, "http://a", []events.Kind{events.KindTokenMoved})
		s.Require().NoError(err)

		err = s.service.Unregister(s.ctx, alice, listener.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeAccessDenied))
	})

	s.Run("role holder removes any listener", func() {
		listener, err := s.service.Subscribe(s.ctx, alice, "http://a", []events.Kind{events.KindTokenMoved})
		s.Require().NoError(err)

		s.Require().NoError(s.service.Unregister(s.ctx, admin, listener.ID))
	})

	s.Run("unknown id maps to not found", func() {
		err := s.service.Unregister(s.ctx, admin, "missing")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestSubscribe() {
	s.Run("any caller may subscribe themselves", func() {
		listener, err := s.service.Subscribe(s.ctx, alice, "http://mine", []events.Kind{events.KindBalanceChanged})
		s.Require().NoError(err)
		s.Equal(alice, listener.Owner)
	})

	s.Run("still validates kinds", func() {
		_, err := s.service.Subscribe(s.ctx, alice, "http://mine", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ServiceSuite) TestUnsubscribe() {
	s.Run("owner removes their own listener", func() {
		listener, err := s.service.Subscribe(s.ctx, alice, "http://mine", []events.Kind{events.KindTokenMoved})
		s.Require().NoError(err)

		s.Require().NoError(s.service.Unsubscribe(s.ctx, alice, listener.ID))
	})

	s.Run("a stranger without the role is denied", func() {
		listener, err := s.service.Subscribe(s.ctx, alice, "http://mine", []events.Kind{events.KindTokenMoved})
		s.Require().NoError(err)

		err = s.service.Unsubscribe(s.ctx, "mallory", listener.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeAccessDenied))
	})

	s.Run("the role holder may remove anyone's", func() {
		listener, err := s.service.Subscribe(s.ctx, alice, "http://mine", []events.Kind{events.KindTokenMoved})
		s.Require().NoError(err)

		s.NoError(s.service.Unsubscribe(s.ctx, admin, listener.ID))
	})

	s.Run("unknown id maps to not found", func() {
		err := s.service.Unsubscribe(s.ctx, alice, "missing")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestList() {
	_, err := s.service.List(alice)
	s.True(dErrors.HasCode(err, dErrors.CodeAccessDenied))

	_, err = s.service.Subscribe(s.ctx, alice, "http://a", []events.Kind{events.KindTokenMoved})
	s.Require().NoError(err)

	listeners, err := s.service.List(admin)
	s.Require().NoError(err)
	s.Len(listeners, 1)
}
