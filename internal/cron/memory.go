package cron

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"tokenhost/pkg/platform/sentinel"
)

type memoryTask struct {
	detail TaskDetail
	timer  *time.Timer
}

// Memory is an in-process Scheduler backed by one timer per task. It is the
// wiring default; a durable collaborator can replace it behind the same
// interface.
type Memory struct {
	mu      sync.Mutex
	tasks   map[TaskID]*memoryTask
	fire    FireFunc
	stopped bool
}

// NewMemory builds an empty in-process scheduler. Bind must be called before
// the first Enqueue.
func NewMemory() *Memory {
	return &Memory{tasks: make(map[TaskID]*memoryTask)}
}

// Bind installs the fire callback. Tasks enqueued before Bind never fire.
func (m *Memory) Bind(fire FireFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fire = fire
}

func (m *Memory) Enqueue(kind KindTag, payload any, schedule Schedule) (TaskID, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", sentinel.ErrNotEncodable
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return "", sentinel.ErrUnavailable
	}

	id := TaskID(uuid.NewString())
	now := time.Now().UTC()
	task := &memoryTask{
		detail: TaskDetail{
			ID:          id,
			Kind:        kind,
			Payload:     encoded,
			Schedule:    schedule,
			ScheduledAt: now,
		},
	}
	if !schedule.Iterations.Infinite {
		left := schedule.Iterations.Exact
		task.detail.FiresLeft = &left
	}
	task.timer = time.AfterFunc(schedule.Interval, func() { m.elapsed(id) })
	m.tasks[id] = task
	return id, nil
}

func (m *Memory) Dequeue(id TaskID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task, ok := m.tasks[id]; ok {
		task.timer.Stop()
		delete(m.tasks, id)
	}
}

func (m *Memory) Get(id TaskID) (TaskDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return TaskDetail{}, sentinel.ErrNotFound
	}
	detail := task.detail
	if detail.FiresLeft != nil {
		// Detach the counter: the timer goroutine keeps decrementing the
		// live one after the lock is released.
		left := *detail.FiresLeft
		detail.FiresLeft = &left
	}
	return detail, nil
}

// Stop cancels every pending timer. Used on shutdown.
func (m *Memory) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	for id, task := range m.tasks {
		task.timer.Stop()
		delete(m.tasks, id)
	}
}

// elapsed fires the task, then either reschedules it or retires it when its
// iteration budget is spent. Firing happens outside the lock because the
// callback re-enters domain services.
func (m *Memory) elapsed(id TaskID) {
	m.mu.Lock()
	task, ok := m.tasks[id]
	if !ok || m.stopped {
		m.mu.Unlock()
		return
	}
	fire := m.fire
	kind := task.detail.Kind
	payload := task.detail.Payload

	retired := false
	if task.detail.FiresLeft != nil {
		if *task.detail.FiresLeft == 0 {
			delete(m.tasks, id)
			m.mu.Unlock()
			return
		}
		*task.detail.FiresLeft--
		if *task.detail.FiresLeft == 0 {
			delete(m.tasks, id)
			retired = true
		}
	}
	if !retired {
		task.detail.RescheduledAt = time.Now().UTC()
		task.timer.Reset(task.detail.Schedule.Interval)
	}
	m.mu.Unlock()

	if fire != nil {
		fire(id, kind, payload)
	}
}
