// Package events constructs and broadcasts topic-tagged change notifications.
//
// Emission is synchronous fire-and-forget: a failed delivery to one listener
// is logged and counted but never fails the mutation that produced the event
// nor blocks delivery to the remaining listeners.
package events

import (
	"time"

	"tokenhost/internal/currency"
	"tokenhost/internal/membership"
	"tokenhost/internal/rbac"
	"tokenhost/pkg/domain"
)

// Kind identifies an event schema.
type Kind string

const (
	KindTokenMoved     Kind = "token.moved"
	KindBalanceChanged Kind = "balance.changed"
	KindSupplyChanged  Kind = "supply.changed"
	KindStatusChanged  Kind = "status.changed"
	KindRoleChanged    Kind = "role.changed"
	KindInfoChanged    Kind = "info.changed"
)

// Kinds lists every event kind this host emits.
var Kinds = []Kind{
	KindTokenMoved,
	KindBalanceChanged,
	KindSupplyChanged,
	KindStatusChanged,
	KindRoleChanged,
	KindInfoChanged,
}

// Valid reports whether k names a known event kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Topic is an indexed event field the notification collaborator uses for
// subscriber-side filtering.
type Topic struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Event is an immutable change notification. It is emitted once per causal
// mutation and never stored or retried by this host.
type Event struct {
	Kind      Kind      `json:"kind"`
	Topics    []Topic   `json:"topics,omitempty"`
	Payload   any       `json:"payload"`
	EmittedAt time.Time `json:"emitted_at"`
}

// TokenMovedPayload describes one quantity movement. An empty From means a
// mint, an empty To means a burn.
type TokenMovedPayload struct {
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Qty     uint64 `json:"qty"`
	Payload []byte `json:"payload,omitempty"`
}

// BalanceChangedPayload carries the post-mutation balance of one account.
type BalanceChangedPayload struct {
	Account    string `json:"account"`
	NewBalance uint64 `json:"new_balance"`
}

// SupplyChangedPayload carries the new aggregate supply.
type SupplyChangedPayload struct {
	NewTotalSupply uint64 `json:"new_total_supply"`
}

// StatusChangedPayload carries a membership transition.
type StatusChangedPayload struct {
	Account   string `json:"account"`
	NewStatus string `json:"new_status"`
}

// RoleChangedPayload carries a controller set replacement.
type RoleChangedPayload struct {
	Role        string   `json:"role"`
	OldAccounts []string `json:"old_accounts"`
	NewAccounts []string `json:"new_accounts"`
}

// InfoChangedPayload carries replaced token metadata.
type InfoChangedPayload struct {
	NewInfo currency.Info `json:"new_info"`
}

// FromEffect translates a committed ledger mutation into its event sequence.
// The order is fixed so subscribers can replay intermediate state: the move
// first, then the supply when it changed, then balances debit-before-credit.
func FromEffect(effect currency.Effect) []Event {
	now := time.Now().UTC()
	events := make([]Event, 0, 2+len(effect.Balances))

	var topics []Topic
	if !effect.Move.From.IsNobody() {
		topics = append(topics, Topic{Name: "from", Value: effect.Move.From.String()})
	}
	if !effect.Move.To.IsNobody() {
		topics = append(topics, Topic{Name: "to", Value: effect.Move.To.String()})
	}
	events = append(events, Event{
		Kind:   KindTokenMoved,
		Topics: topics,
		Payload: TokenMovedPayload{
			From:    effect.Move.From.String(),
			To:      effect.Move.To.String(),
			Qty:     effect.Move.Qty,
			Payload: effect.Move.Payload,
		},
		EmittedAt: now,
	})

	if effect.SupplyChanged {
		events = append(events, Event{
			Kind:      KindSupplyChanged,
			Payload:   SupplyChangedPayload{NewTotalSupply: effect.NewTotalSupply},
			EmittedAt: now,
		})
	}

	for _, fact := range effect.Balances {
		events = append(events, Event{
			Kind:   KindBalanceChanged,
			Topics: []Topic{{Name: "account", Value: fact.Account.String()}},
			Payload: BalanceChangedPayload{
				Account:    fact.Account.String(),
				NewBalance: fact.NewBalance,
			},
			EmittedAt: now,
		})
	}
	return events
}

// FromChange translates a membership transition into its event sequence:
// the status change first, then the derived voting-power balance when the
// transition carries one.
func FromChange(change membership.Change) []Event {
	now := time.Now().UTC()
	events := []Event{{
		Kind: KindStatusChanged,
		Topics: []Topic{
			{Name: "account", Value: change.Account.String()},
			{Name: "status", Value: string(change.NewStatus)},
		},
		Payload: StatusChangedPayload{
			Account:   change.Account.String(),
			NewStatus: string(change.NewStatus),
		},
		EmittedAt: now,
	}}

	if change.VotingPower != nil {
		events = append(events, Event{
			Kind:   KindBalanceChanged,
			Topics: []Topic{{Name: "account", Value: change.Account.String()}},
			Payload: BalanceChangedPayload{
				Account:    change.Account.String(),
				NewBalance: *change.VotingPower,
			},
			EmittedAt: now,
		})
	}
	return events
}

// RoleChanged builds the event for a controller set replacement.
func RoleChanged(kind rbac.RoleKind, oldAccounts, newAccounts []domain.Account) Event {
	return Event{
		Kind:   KindRoleChanged,
		Topics: []Topic{{Name: "role", Value: string(kind)}},
		Payload: RoleChangedPayload{
			Role:        string(kind),
			OldAccounts: accountStrings(oldAccounts),
			NewAccounts: accountStrings(newAccounts),
		},
		EmittedAt: time.Now().UTC(),
	}
}

// InfoChanged builds the event for a token metadata update.
func InfoChanged(newInfo currency.Info) Event {
	return Event{
		Kind:      KindInfoChanged,
		Payload:   InfoChangedPayload{NewInfo: newInfo},
		EmittedAt: time.Now().UTC(),
	}
}

func accountStrings(accounts []domain.Account) []string {
	out := make([]string, len(accounts))
	for i, account := range accounts {
		out[i] = account.String()
	}
	return out
}
