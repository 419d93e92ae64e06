// Package recurrence registers, dispatches and cancels periodic ledger
// operations. Task storage and timer firing belong to the scheduling
// collaborator; this package tracks ownership and re-invokes the ledger
// when a task fires.
package recurrence

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"tokenhost/internal/cron"
	"tokenhost/internal/platform/metrics"
	"tokenhost/pkg/domain"
	dErrors "tokenhost/pkg/domain-errors"
)

// Task kind tags stored with the collaborator. The tag is decoded back into
// a typed payload exactly once, in HandleFire.
const (
	KindMint     cron.KindTag = "recurrent_mint"
	KindTransfer cron.KindTag = "recurrent_transfer"
)

// MintTask is the stored payload of a recurring mint.
type MintTask struct {
	To      domain.Account `json:"to"`
	Qty     uint64         `json:"qty"`
	Payload []byte         `json:"payload,omitempty"`
}

// TransferTask is the stored payload of a recurring transfer.
type TransferTask struct {
	From    domain.Account `json:"from"`
	To      domain.Account `json:"to"`
	Qty     uint64         `json:"qty"`
	Payload []byte         `json:"payload,omitempty"`
}

// Task is the manager's view of one scheduled task. Mint tasks carry no
// owner; minting is privileged, not account-bound.
type Task struct {
	ID    cron.TaskID    `json:"id"`
	Kind  cron.KindTag   `json:"kind"`
	Owner domain.Account `json:"owner,omitempty"`
}

// Executor re-invokes ledger mutations when a task fires. The firing path
// is internally trusted: implementations stamp the host's own identity.
type Executor interface {
	ExecuteMint(ctx context.Context, task MintTask) error
	ExecuteTransfer(ctx context.Context, task TransferTask) error
}

// Manager indexes task ownership and bridges the collaborator's fire
// callback back into the ledger.
type Manager struct {
	mu            sync.Mutex
	mintTasks     map[cron.TaskID]struct{}
	transferTasks map[cron.TaskID]domain.Account

	scheduler cron.Scheduler
	executor  Executor
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(m *Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

func WithMetrics(mx *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mx }
}

// New constructs a Manager over the scheduling collaborator.
func New(scheduler cron.Scheduler, opts ...Option) *Manager {
	m := &Manager{
		mintTasks:     make(map[cron.TaskID]struct{}),
		transferTasks: make(map[cron.TaskID]domain.Account),
		scheduler:     scheduler,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Bind installs the executor the fire path dispatches into.
func (m *Manager) Bind(executor Executor) { m.executor = executor }

// ScheduleMint registers a recurring mint. The caller has already committed
// the triggering mutation; a scheduling failure is reported but changes
// nothing that already happened.
func (m *Manager) ScheduleMint(task MintTask, schedule cron.Schedule) (cron.TaskID, error) {
	id, err := m.scheduler.Enqueue(KindMint, task, schedule)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeScheduling, "failed to schedule recurrent mint")
	}
	m.mu.Lock()
	m.mintTasks[id] = struct{}{}
	m.mu.Unlock()
	if m.metrics != nil {
		m.metrics.TasksScheduled.Inc()
	}
	return id, nil
}

// ScheduleTransfer registers a recurring transfer owned by its initiator.
func (m *Manager) ScheduleTransfer(owner domain.Account, task TransferTask, schedule cron.Schedule) (cron.TaskID, error) {
	id, err := m.scheduler.Enqueue(KindTransfer, task, schedule)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeScheduling, "failed to schedule recurrent transfer")
	}
	m.mu.Lock()
	m.transferTasks[id] = owner
	m.mu.Unlock()
	if m.metrics != nil {
		m.metrics.TasksScheduled.Inc()
	}
	return id, nil
}

// HandleFire is the collaborator's callback. Failures are logged, never
// escalated, and never deregister the task: a later interval may succeed.
func (m *Manager) HandleFire(id cron.TaskID, kind cron.KindTag, payload []byte) {
	ctx := context.Background()
	if m.metrics != nil {
		m.metrics.TasksFired.Inc()
	}
	if m.executor == nil {
		m.logger.Error("recurrent task fired before an executor was bound", "task_id", string(id))
		return
	}

	var err error
	switch kind {
	case KindMint:
		var task MintTask
		if err = json.Unmarshal(payload, &task); err == nil {
			err = m.executor.ExecuteMint(ctx, task)
		}
	case KindTransfer:
		var task TransferTask
		if err = json.Unmarshal(payload, &task); err == nil {
			err = m.executor.ExecuteTransfer(ctx, task)
		}
	default:
		m.logger.Error("recurrent task fired with an unknown kind",
			"task_id", string(id),
			"kind", string(kind),
		)
		return
	}

	if err != nil {
		if m.metrics != nil {
			m.metrics.TaskFireErrors.Inc()
		}
		m.logger.Warn("recurrent task execution failed",
			"task_id", string(id),
			"kind", string(kind),
			"error", err,
		)
	}

	// Retire our index entry once the collaborator no longer knows the task
	// (it ran out of iterations).
	if _, detailErr := m.scheduler.Get(id); detailErr != nil {
		m.forget(id)
	}
}

// Cancel deregisters a task. Transfer tasks may be cancelled only by their
// owner; mint tasks only by callers holding the mint privilege. Unknown or
// unowned ids return false, which never aborts sibling cancellations.
func (m *Manager) Cancel(id cron.TaskID, requester domain.Account, canMint bool) bool {
	m.mu.Lock()
	if _, ok := m.mintTasks[id]; ok {
		if !canMint {
			m.mu.Unlock()
			return false
		}
		delete(m.mintTasks, id)
		m.mu.Unlock()
		m.scheduler.Dequeue(id)
		if m.metrics != nil {
			m.metrics.TasksCancelled.Inc()
		}
		return true
	}
	if owner, ok := m.transferTasks[id]; ok {
		if owner != requester {
			m.mu.Unlock()
			return false
		}
		delete(m.transferTasks, id)
		m.mu.Unlock()
		m.scheduler.Dequeue(id)
		if m.metrics != nil {
			m.metrics.TasksCancelled.Inc()
		}
		return true
	}
	m.mu.Unlock()
	return false
}

// List returns the owner's transfer tasks, pruning ids the collaborator has
// already expired.
func (m *Manager) List(owner domain.Account) []Task {
	m.mu.Lock()
	ids := make([]cron.TaskID, 0)
	for id, taskOwner := range m.transferTasks {
		if taskOwner == owner {
			ids = append(ids, id)
		}
	}
	m.mu.Unlock()

	tasks := make([]Task, 0, len(ids))
	for _, id := range ids {
		if !m.alive(id) {
			continue
		}
		tasks = append(tasks, Task{ID: id, Kind: KindTransfer, Owner: owner})
	}
	sortTasks(tasks)
	return tasks
}

// ListAll returns every task known to the manager.
func (m *Manager) ListAll() []Task {
	m.mu.Lock()
	all := make([]Task, 0, len(m.mintTasks)+len(m.transferTasks))
	for id := range m.mintTasks {
		all = append(all, Task{ID: id, Kind: KindMint})
	}
	for id, owner := range m.transferTasks {
		all = append(all, Task{ID: id, Kind: KindTransfer, Owner: owner})
	}
	m.mu.Unlock()

	tasks := make([]Task, 0, len(all))
	for _, task := range all {
		if !m.alive(task.ID) {
			continue
		}
		tasks = append(tasks, task)
	}
	sortTasks(tasks)
	return tasks
}

// Describe resolves scheduling detail from the collaborator. Visibility
// follows Cancel's rule: transfer tasks are visible to their owner, mint
// tasks to holders of the mint privilege. Invisible ids read as unknown.
func (m *Manager) Describe(id cron.TaskID, requester domain.Account, canMint bool) (cron.TaskDetail, error) {
	m.mu.Lock()
	_, isMint := m.mintTasks[id]
	owner, isTransfer := m.transferTasks[id]
	m.mu.Unlock()

	if (isMint && !canMint) || (isTransfer && owner != requester) || (!isMint && !isTransfer) {
		return cron.TaskDetail{}, dErrors.New(dErrors.CodeNotFound, "task not found")
	}
	detail, err := m.scheduler.Get(id)
	if err != nil {
		m.forget(id)
		return cron.TaskDetail{}, dErrors.Wrap(err, dErrors.CodeNotFound, "task not found")
	}
	return detail, nil
}

func (m *Manager) alive(id cron.TaskID) bool {
	if _, err := m.scheduler.Get(id); err != nil {
		m.forget(id)
		return false
	}
	return true
}

func (m *Manager) forget(id cron.TaskID) {
	m.mu.Lock()
	delete(m.mintTasks, id)
	delete(m.transferTasks, id)
	m.mu.Unlock()
}

func sortTasks(tasks []Task) {
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
}
