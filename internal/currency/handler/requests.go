package handler

import (
	"strings"
	"time"

	"tokenhost/internal/cron"
	"tokenhost/internal/currency"
	"tokenhost/internal/currency/service"
	"tokenhost/pkg/domain"
	dErrors "tokenhost/pkg/domain-errors"
)

// RecurrenceModel is the wire form of a periodic re-invocation request.
type RecurrenceModel struct {
	DurationNano uint64 `json:"duration_nano"`
	Iterations   struct {
		Infinite bool   `json:"infinite"`
		Exact    uint64 `json:"exact"`
	} `json:"iterations"`
}

func (m *RecurrenceModel) toSchedule() (cron.Schedule, error) {
	if m.DurationNano == 0 {
		return cron.Schedule{}, dErrors.New(dErrors.CodeValidation, "recurrence duration_nano must be positive")
	}
	if !m.Iterations.Infinite && m.Iterations.Exact == 0 {
		return cron.Schedule{}, dErrors.New(dErrors.CodeValidation, "recurrence iterations must be infinite or a positive exact count")
	}
	return cron.Schedule{
		Interval: time.Duration(m.DurationNano),
		Iterations: cron.Iterations{
			Infinite: m.Iterations.Infinite,
			Exact:    m.Iterations.Exact,
		},
	}, nil
}

// MintEntryModel is one entry of a mint batch.
type MintEntryModel struct {
	To         string           `json:"to"`
	Qty        uint64           `json:"qty"`
	Payload    []byte           `json:"payload,omitempty"`
	Recurrence *RecurrenceModel `json:"recurrence,omitempty"`
}

// MintRequest is the HTTP request body for POST /token/mint.
type MintRequest struct {
	Entries []MintEntryModel `json:"entries"`

	parsed []service.MintEntry
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *MintRequest) Validate() error {
	if r == nil || len(r.Entries) == 0 {
		return dErrors.New(dErrors.CodeValidation, "entries is required")
	}
	r.parsed = make([]service.MintEntry, len(r.Entries))
	for i, entry := range r.Entries {
		to, err := domain.ParseAccount(entry.To)
		if err != nil {
			return err
		}
		parsed := service.MintEntry{To: to, Qty: entry.Qty, Payload: entry.Payload}
		if entry.Recurrence != nil {
			schedule, err := entry.Recurrence.toSchedule()
			if err != nil {
				return err
			}
			parsed.Recurrence = &schedule
		}
		r.parsed[i] = parsed
	}
	return nil
}

// ParsedEntries returns the validated mint entries.
func (r *MintRequest) ParsedEntries() []service.MintEntry { return r.parsed }

// TransferEntryModel is one entry of a transfer batch. The sender is always
// the authenticated caller.
type TransferEntryModel struct {
	To         string           `json:"to"`
	Qty        uint64           `json:"qty"`
	Payload    []byte           `json:"payload,omitempty"`
	Recurrence *RecurrenceModel `json:"recurrence,omitempty"`
}

// TransferRequest is the HTTP request body for POST /token/transfer.
type TransferRequest struct {
	Entries []TransferEntryModel `json:"entries"`

	parsed []service.TransferEntry
}

// Validate validates and parses the request.
func (r *TransferRequest) Validate() error {
	if r == nil || len(r.Entries) == 0 {
		return dErrors.New(dErrors.CodeValidation, "entries is required")
	}
	r.parsed = make([]service.TransferEntry, len(r.Entries))
	for i, entry := range r.Entries {
		to, err := domain.ParseAccount(entry.To)
		if err != nil {
			return err
		}
		parsed := service.TransferEntry{To: to, Qty: entry.Qty, Payload: entry.Payload}
		if entry.Recurrence != nil {
			schedule, err := entry.Recurrence.toSchedule()
			if err != nil {
				return err
			}
			parsed.Recurrence = &schedule
		}
		r.parsed[i] = parsed
	}
	return nil
}

// ParsedEntries returns the validated transfer entries.
func (r *TransferRequest) ParsedEntries() []service.TransferEntry { return r.parsed }

// BurnRequest is the HTTP request body for POST /token/burn.
type BurnRequest struct {
	Qty     uint64 `json:"qty"`
	Payload []byte `json:"payload,omitempty"`
}

// Validate validates the request. The zero-quantity rule itself belongs to
// the ledger; transport only rejects a missing body.
func (r *BurnRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

// UpdateInfoRequest is the HTTP request body for PUT /token/info.
type UpdateInfoRequest struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Validate validates the request.
func (r *UpdateInfoRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Symbol = strings.TrimSpace(r.Symbol)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.Symbol == "" {
		return dErrors.New(dErrors.CodeValidation, "symbol is required")
	}
	return nil
}

// ParsedInfo returns the validated token metadata.
func (r *UpdateInfoRequest) ParsedInfo() currency.Info {
	return currency.Info{Name: r.Name, Symbol: r.Symbol, Decimals: r.Decimals}
}

// UpdateControllerRequest is the HTTP request body for PUT /controllers/{role}.
type UpdateControllerRequest struct {
	Accounts []string `json:"accounts"`

	parsed []domain.Account
}

// Validate validates and parses the request. An empty accounts list is
// legal: it locks the role out permanently.
func (r *UpdateControllerRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.parsed = make([]domain.Account, len(r.Accounts))
	for i, raw := range r.Accounts {
		account, err := domain.ParseAccount(raw)
		if err != nil {
			return err
		}
		r.parsed[i] = account
	}
	return nil
}

// ParsedAccounts returns the validated account set.
func (r *UpdateControllerRequest) ParsedAccounts() []domain.Account { return r.parsed }

// CancelTasksRequest is the HTTP request body for POST /tasks/cancel.
type CancelTasksRequest struct {
	IDs []string `json:"ids"`
}

// Validate validates the request.
func (r *CancelTasksRequest) Validate() error {
	if r == nil || len(r.IDs) == 0 {
		return dErrors.New(dErrors.CodeValidation, "ids is required")
	}
	return nil
}

// ParsedIDs returns the task ids to cancel.
func (r *CancelTasksRequest) ParsedIDs() []cron.TaskID {
	ids := make([]cron.TaskID, len(r.IDs))
	for i, raw := range r.IDs {
		ids[i] = cron.TaskID(raw)
	}
	return ids
}
