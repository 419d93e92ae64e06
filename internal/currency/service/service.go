// Package service orchestrates ledger operations: guard, mutate, emit,
// and optionally schedule a recurrence. Each entry point runs under the
// single application-state lock and either fully commits or changes nothing.
package service

import (
	"context"
	"log/slog"

	"tokenhost/internal/cron"
	"tokenhost/internal/currency"
	"tokenhost/internal/events"
	"tokenhost/internal/observability"
	"tokenhost/internal/platform/metrics"
	"tokenhost/internal/rbac"
	"tokenhost/internal/recurrence"
	"tokenhost/internal/state"
	"tokenhost/pkg/domain"
	dErrors "tokenhost/pkg/domain-errors"
)

// MintEntry is one mint in a batch, with an optional recurrence.
type MintEntry struct {
	To         domain.Account
	Qty        uint64
	Payload    []byte
	Recurrence *cron.Schedule
}

// TransferEntry is one transfer in a batch; the sender is always the caller.
type TransferEntry struct {
	To         domain.Account
	Qty        uint64
	Payload    []byte
	Recurrence *cron.Schedule
}

// EntryResult reports one batch entry. Err is the mutation outcome;
// SchedulingErr is set when the mutation committed but its recurrence could
// not be registered (non-fatal by contract).
type EntryResult struct {
	Err           error
	TaskID        cron.TaskID
	SchedulingErr error
}

// Service is the ledger orchestration layer.
type Service struct {
	state      *state.State
	bus        *events.Bus
	recurrence *recurrence.Manager
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithRecurrence(manager *recurrence.Manager) Option {
	return func(s *Service) { s.recurrence = manager }
}

// New constructs a Service.
func New(st *state.State, bus *events.Bus, opts ...Option) *Service {
	s := &Service{state: st, bus: bus, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mint credits each entry's target. Gated by the Mint role. Entries are
// attempted independently: the response carries one result per entry and
// state reflects exactly the successful ones.
func (s *Service) Mint(ctx context.Context, caller domain.Account, entries []MintEntry) ([]EntryResult, error) {
	s.state.Lock()
	defer s.state.Unlock()

	if err := s.state.Roles.Guard(rbac.RoleMint, caller); err != nil {
		return nil, err
	}

	results := make([]EntryResult, len(entries))
	for i, entry := range entries {
		effect, err := s.state.Token.Mint(entry.To, entry.Qty, entry.Payload)
		if err != nil {
			results[i] = EntryResult{Err: err}
			continue
		}
		s.bus.Emit(ctx, events.FromEffect(effect)...)
		if s.metrics != nil {
			s.metrics.Mints.Inc()
		}
		s.logAudit(ctx, "tokens_minted", "account", entry.To.String())
		results[i] = s.scheduleMint(ctx, entry)
	}
	return results, nil
}

// Transfer debits the caller once per entry. No role is required; owning
// the balance is the authorization.
func (s *Service) Transfer(ctx context.Context, caller domain.Account, entries []TransferEntry) ([]EntryResult, error) {
	s.state.Lock()
	defer s.state.Unlock()

	results := make([]EntryResult, len(entries))
	for i, entry := range entries {
		effect, err := s.state.Token.Transfer(caller, entry.To, entry.Qty, entry.Payload)
		if err != nil {
			results[i] = EntryResult{Err: err}
			continue
		}
		s.bus.Emit(ctx, events.FromEffect(effect)...)
		if s.metrics != nil {
			s.metrics.Transfers.Inc()
		}
		s.logAudit(ctx, "tokens_transferred", "from", caller.String(), "to", entry.To.String())
		results[i] = s.scheduleTransfer(ctx, caller, entry)
	}
	return results, nil
}

// Burn destroys part of the caller's balance.
func (s *Service) Burn(ctx context.Context, caller domain.Account, qty uint64, payload []byte) error {
	s.state.Lock()
	defer s.state.Unlock()

	effect, err := s.state.Token.Burn(caller, qty, payload)
	if err != nil {
		return err
	}
	s.bus.Emit(ctx, events.FromEffect(effect)...)
	if s.metrics != nil {
		s.metrics.Burns.Inc()
	}
	s.logAudit(ctx, "tokens_burned", "account", caller.String())
	return nil
}

// BalanceOf reads a balance; absent accounts read as zero.
func (s *Service) BalanceOf(account domain.Account) uint64 {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.Token.BalanceOf(account)
}

// TotalSupply returns the aggregate supply.
func (s *Service) TotalSupply() uint64 {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.Token.TotalSupply()
}

// Info returns the token metadata.
func (s *Service) Info() currency.Info {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.Token.Info()
}

// UpdateInfo replaces the token metadata. Gated by the Info role. Returns
// the previous metadata.
func (s *Service) UpdateInfo(ctx context.Context, caller domain.Account, newInfo currency.Info) (currency.Info, error) {
	s.state.Lock()
	defer s.state.Unlock()

	if err := s.state.Roles.Guard(rbac.RoleInfo, caller); err != nil {
		return currency.Info{}, err
	}
	old := s.state.Token.UpdateInfo(newInfo)
	s.bus.Emit(ctx, events.InfoChanged(newInfo))
	s.logAudit(ctx, "info_updated", "name", newInfo.Name)
	return old, nil
}

// Controllers returns every external role set.
func (s *Service) Controllers() map[rbac.RoleKind][]domain.Account {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.Roles.All()
}

// Controller returns the accounts holding one role.
func (s *Service) Controller(kind rbac.RoleKind) []domain.Account {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.Roles.Get(kind)
}

// UpdateController replaces a role set. Each set governs itself: only a
// current holder may rewrite it, and writing an empty set locks the role
// permanently. Returns the previous holders.
func (s *Service) UpdateController(ctx context.Context, caller domain.Account, kind rbac.RoleKind, accounts []domain.Account) ([]domain.Account, error) {
	s.state.Lock()
	defer s.state.Unlock()

	if err := s.state.Roles.Guard(kind, caller); err != nil {
		return nil, err
	}
	old, err := s.state.Roles.Update(kind, accounts)
	if err != nil {
		return nil, err
	}
	s.bus.Emit(ctx, events.RoleChanged(kind, old, s.state.Roles.Get(kind)))
	s.logAudit(ctx, "controller_updated", "role", string(kind), "caller", caller.String())
	return old, nil
}

// ExecuteMint is the recurrence fire path for mints. It runs as the host's
// own identity, skips the external role guard, and never schedules again.
func (s *Service) ExecuteMint(ctx context.Context, task recurrence.MintTask) error {
	s.state.Lock()
	defer s.state.Unlock()

	effect, err := s.state.Token.Mint(task.To, task.Qty, task.Payload)
	if err != nil {
		return err
	}
	s.bus.Emit(ctx, events.FromEffect(effect)...)
	if s.metrics != nil {
		s.metrics.Mints.Inc()
	}
	return nil
}

// ExecuteTransfer is the recurrence fire path for transfers.
func (s *Service) ExecuteTransfer(ctx context.Context, task recurrence.TransferTask) error {
	s.state.Lock()
	defer s.state.Unlock()

	effect, err := s.state.Token.Transfer(task.From, task.To, task.Qty, task.Payload)
	if err != nil {
		return err
	}
	s.bus.Emit(ctx, events.FromEffect(effect)...)
	if s.metrics != nil {
		s.metrics.Transfers.Inc()
	}
	return nil
}

// CancelTasks cancels each id independently and reports one bool per id.
// A false never aborts its siblings.
func (s *Service) CancelTasks(ctx context.Context, caller domain.Account, ids []cron.TaskID) []bool {
	if s.recurrence == nil {
		return make([]bool, len(ids))
	}

	s.state.Lock()
	canMint := s.state.Roles.Guard(rbac.RoleMint, caller) == nil
	s.state.Unlock()

	results := make([]bool, len(ids))
	for i, id := range ids {
		results[i] = s.recurrence.Cancel(id, caller, canMint)
		if results[i] {
			s.logAudit(ctx, "task_cancelled", "task_id", string(id))
		}
	}
	return results
}

// ListTasks returns the caller's own transfer tasks.
func (s *Service) ListTasks(caller domain.Account) []recurrence.Task {
	if s.recurrence == nil {
		return nil
	}
	return s.recurrence.List(caller)
}

// ListAllTasks returns every known task. Gated by the Mint role, the
// privilege that creates ownerless mint tasks.
func (s *Service) ListAllTasks(caller domain.Account) ([]recurrence.Task, error) {
	s.state.Lock()
	err := s.state.Roles.Guard(rbac.RoleMint, caller)
	s.state.Unlock()
	if err != nil {
		return nil, err
	}
	if s.recurrence == nil {
		return nil, nil
	}
	return s.recurrence.ListAll(), nil
}

// DescribeTask resolves scheduling detail for one of the caller's visible
// tasks: their own transfer tasks, or any mint task when they hold the mint
// role. Everything else reads as not found.
func (s *Service) DescribeTask(caller domain.Account, id cron.TaskID) (cron.TaskDetail, error) {
	if s.recurrence == nil {
		return cron.TaskDetail{}, dErrors.New(dErrors.CodeNotFound, "task not found")
	}
	s.state.Lock()
	canMint := s.state.Roles.Guard(rbac.RoleMint, caller) == nil
	s.state.Unlock()
	return s.recurrence.Describe(id, caller, canMint)
}

// scheduleMint bolts a recurrence onto an already-committed mint.
func (s *Service) scheduleMint(ctx context.Context, entry MintEntry) EntryResult {
	if entry.Recurrence == nil || s.recurrence == nil {
		return EntryResult{}
	}
	task := recurrence.MintTask{To: entry.To, Qty: entry.Qty, Payload: entry.Payload}
	id, err := s.recurrence.ScheduleMint(task, *entry.Recurrence)
	if err != nil {
		s.logger.WarnContext(ctx, "recurrent mint scheduling failed",
			"account", entry.To.String(),
			"error", err,
		)
		return EntryResult{SchedulingErr: err}
	}
	return EntryResult{TaskID: id}
}

// scheduleTransfer bolts a recurrence onto an already-committed transfer.
func (s *Service) scheduleTransfer(ctx context.Context, caller domain.Account, entry TransferEntry) EntryResult {
	if entry.Recurrence == nil || s.recurrence == nil {
		return EntryResult{}
	}
	task := recurrence.TransferTask{From: caller, To: entry.To, Qty: entry.Qty, Payload: entry.Payload}
	id, err := s.recurrence.ScheduleTransfer(caller, task, *entry.Recurrence)
	if err != nil {
		s.logger.WarnContext(ctx, "recurrent transfer scheduling failed",
			"from", caller.String(),
			"to", entry.To.String(),
			"error", err,
		)
		return EntryResult{SchedulingErr: err}
	}
	return EntryResult{TaskID: id}
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	observability.LogAudit(ctx, s.logger, event, attributes...)
}
