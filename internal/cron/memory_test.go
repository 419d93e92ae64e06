package cron

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"tokenhost/pkg/platform/sentinel"
)

type fireRecorder struct {
	mu    sync.Mutex
	fires []TaskID
	done  chan struct{}
}

func (r *fireRecorder) fire(expect int) FireFunc {
	var once sync.Once
	return func(id TaskID, _ KindTag, _ []byte) {
		r.mu.Lock()
		r.fires = append(r.fires, id)
		reached := len(r.fires) >= expect
		r.mu.Unlock()
		if reached {
			once.Do(func() { close(r.done) })
		}
	}
}

func (r *fireRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fires)
}

func (r *fireRecorder) wait(t *testing.T, timeout time.Duration) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(timeout):
		t.Fatal("timed out waiting for fires")
	}
}

type MemorySuite struct {
	suite.Suite
	scheduler *Memory
}

func (s *MemorySuite) SetupTest() {
	s.scheduler = NewMemory()
}

func (s *MemorySuite) TearDownTest() {
	s.scheduler.Stop()
}

func TestMemorySuite(t *testing.T) {
	suite.Run(t, new(MemorySuite))
}

func (s *MemorySuite) schedule(exact uint64, infinite bool) Schedule {
	return Schedule{
		Interval:   5 * time.Millisecond,
		Iterations: Iterations{Infinite: infinite, Exact: exact},
	}
}

func (s *MemorySuite) TestEnqueue() {
	s.Run("stores detail and assigns an id", func() {
		s.scheduler.Bind(func(TaskID, KindTag, []byte) {})

		id, err := s.scheduler.Enqueue("tick", map[string]string{"k": "v"}, s.schedule(0, true))
		s.Require().NoError(err)
		s.NotEmpty(id)

		detail, err := s.scheduler.Get(id)
		s.Require().NoError(err)
		s.Equal(KindTag("tick"), detail.Kind)
		s.JSONEq(`{"k":"v"}`, string(detail.Payload))
		s.Nil(detail.FiresLeft)
	})

	s.Run("exact iterations record a fire budget", func() {
		id, err := s.scheduler.Enqueue("tick", nil, s.schedule(3, false))
		s.Require().NoError(err)

		detail, err := s.scheduler.Get(id)
		s.Require().NoError(err)
		s.Require().NotNil(detail.FiresLeft)
		s.EqualValues(3, *detail.FiresLeft)
	})

	s.Run("returns a detached iteration counter", func() {
		id, err := s.scheduler.Enqueue("tick", nil, Schedule{
			Interval:   time.Hour,
			Iterations: Iterations{Exact: 3},
		})
		s.Require().NoError(err)

		first, err := s.scheduler.Get(id)
		s.Require().NoError(err)
		second, err := s.scheduler.Get(id)
		s.Require().NoError(err)
		s.NotSame(first.FiresLeft, second.FiresLeft)

		*first.FiresLeft = 0
		fresh, err := s.scheduler.Get(id)
		s.Require().NoError(err)
		s.EqualValues(3, *fresh.FiresLeft)
	})

	s.Run("rejects an unencodable payload", func() {
		_, err := s.scheduler.Enqueue("tick", func() {}, s.schedule(0, true))
		s.ErrorIs(err, sentinel.ErrNotEncodable)
	})

	s.Run("rejects after Stop", func() {
		s.scheduler.Stop()
		_, err := s.scheduler.Enqueue("tick", nil, s.schedule(0, true))
		s.ErrorIs(err, sentinel.ErrUnavailable)
	})
}

func (s *MemorySuite) TestFiring() {
	s.Run("exact task fires its budget then retires", func() {
		recorder := &fireRecorder{done: make(chan struct{})}
		s.scheduler.Bind(recorder.fire(2))

		id, err := s.scheduler.Enqueue("tick", nil, s.schedule(2, false))
		s.Require().NoError(err)

		recorder.wait(s.T(), time.Second)

		// Retired tasks disappear from the scheduler.
		s.Eventually(func() bool {
			_, err := s.scheduler.Get(id)
			return err != nil
		}, time.Second, 5*time.Millisecond)
		s.Equal(2, recorder.count())
	})

	s.Run("infinite task keeps firing", func() {
		recorder := &fireRecorder{done: make(chan struct{})}
		s.scheduler.Bind(recorder.fire(3))

		id, err := s.scheduler.Enqueue("tick", nil, s.schedule(0, true))
		s.Require().NoError(err)

		recorder.wait(s.T(), time.Second)

		_, err = s.scheduler.Get(id)
		s.NoError(err)
	})
}

func (s *MemorySuite) TestDequeue() {
	s.Run("cancelled task never fires", func() {
		recorder := &fireRecorder{done: make(chan struct{})}
		s.scheduler.Bind(recorder.fire(1))

		id, err := s.scheduler.Enqueue("tick", nil, Schedule{
			Interval:   50 * time.Millisecond,
			Iterations: Iterations{Infinite: true},
		})
		s.Require().NoError(err)

		s.scheduler.Dequeue(id)

		time.Sleep(120 * time.Millisecond)
		s.Equal(0, recorder.count())

		_, err = s.scheduler.Get(id)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("unknown id is ignored", func() {
		s.NotPanics(func() { s.scheduler.Dequeue("missing") })
	})
}
