package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"tokenhost/pkg/platform/sentinel"
)

type fakeDeliverer struct {
	delivered []struct {
		Endpoint string
		Event    Event
	}
	failFor map[string]error
}

func (d *fakeDeliverer) Deliver(_ context.Context, endpoint string, event Event) error {
	if err, ok := d.failFor[endpoint]; ok {
		return err
	}
	d.delivered = append(d.delivered, struct {
		Endpoint string
		Event    Event
	}{endpoint, event})
	return nil
}

type fakeSink struct {
	published []Event
	err       error
}

func (s *fakeSink) Publish(_ context.Context, event Event) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, event)
	return nil
}

type BusSuite struct {
	suite.Suite
	deliverer *fakeDeliverer
	bus       *Bus
	ctx       context.Context
}

func (s *BusSuite) SetupTest() {
	s.deliverer = &fakeDeliverer{failFor: map[string]error{}}
	s.bus = NewBus(s.deliverer)
	s.ctx = context.Background()
}

func (s *BusSuite) SetupSubTest() {
	s.SetupTest()
}

func TestBusSuite(t *testing.T) {
	suite.Run(t, new(BusSuite))
}

func (s *BusSuite) TestEmit() {
	s.Run("delivers only to listeners wanting the kind", func() {
		s.bus.Register("http://a", []Kind{KindTokenMoved}, "alice")
		s.bus.Register("http://b", []Kind{KindSupplyChanged}, "bob")

		s.bus.Emit(s.ctx, Event{Kind: KindTokenMoved})

		s.Require().Len(s.deliverer.delivered, 1)
		s.Equal("http://a", s.deliverer.delivered[0].Endpoint)
	})

	s.Run("a failed delivery never blocks the rest", func() {
		s.bus.Register("http://down", []Kind{KindTokenMoved}, "alice")
		s.bus.Register("http://up", []Kind{KindTokenMoved}, "bob")
		s.deliverer.failFor["http://down"] = errors.New("connection refused")

		s.bus.Emit(s.ctx, Event{Kind: KindTokenMoved})

		s.Require().Len(s.deliverer.delivered, 1)
		s.Equal("http://up", s.deliverer.delivered[0].Endpoint)
	})

	s.Run("sinks receive every event regardless of subscriptions", func() {
		sink := &fakeSink{}
		bus := NewBus(s.deliverer, WithSinks(sink))

		bus.Emit(s.ctx, Event{Kind: KindTokenMoved}, Event{Kind: KindSupplyChanged})

		s.Len(sink.published, 2)
	})

	s.Run("a failing sink never blocks the others", func() {
		broken := &fakeSink{err: errors.New("stream gone")}
		healthy := &fakeSink{}
		bus := NewBus(s.deliverer, WithSinks(broken, healthy))

		bus.Emit(s.ctx, Event{Kind: KindTokenMoved})

		s.Len(healthy.published, 1)
	})
}

func (s *BusSuite) TestRegistry() {
	s.Run("register assigns distinct ids", func() {
		a := s.bus.Register("http://a", []Kind{KindTokenMoved}, "alice")
		b := s.bus.Register("http://b", []Kind{KindTokenMoved}, "bob")

		s.NotEqual(a.ID, b.ID)
		s.Len(s.bus.List(), 2)
	})

	s.Run("unregister removes the listener", func() {
		listener := s.bus.Register("http://a", []Kind{KindTokenMoved}, "alice")

		s.Require().NoError(s.bus.Unregister(listener.ID))
		s.Empty(s.bus.List())

		s.bus.Emit(s.ctx, Event{Kind: KindTokenMoved})
		s.Empty(s.deliverer.delivered)
	})

	s.Run("unregister of an unknown id returns ErrNotFound", func() {
		err := s.bus.Unregister("missing")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("get resolves a registered listener", func() {
		listener := s.bus.Register("http://a", []Kind{KindTokenMoved}, "alice")

		found, err := s.bus.Get(listener.ID)
		s.Require().NoError(err)
		s.Equal(listener.Endpoint, found.Endpoint)

		_, err = s.bus.Get("missing")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}
