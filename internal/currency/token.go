// Package currency implements the divisible-balance ledger: a balance map
// plus aggregate supply, mutated by mint, transfer and burn.
//
// Every mutation either fully commits or leaves the ledger untouched, and
// returns the facts needed to build notification events. Two invariants hold
// between calls: no stored balance is zero, and the total supply equals the
// sum of all balances.
package currency

import (
	"tokenhost/pkg/domain"
	dErrors "tokenhost/pkg/domain-errors"
)

// Info is descriptive token metadata.
type Info struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Move records one quantity movement. A missing From means a mint, a missing
// To means a burn. Payload is opaque caller data echoed to listeners.
type Move struct {
	From    domain.Account
	To      domain.Account
	Qty     uint64
	Payload []byte
}

// BalanceFact is the post-mutation balance of one affected account.
type BalanceFact struct {
	Account    domain.Account
	NewBalance uint64
}

// Effect is everything a committed mutation changed, in event order: the
// move itself, the new supply when it changed, then per-account balances in
// debit-before-credit order.
type Effect struct {
	Move           Move
	SupplyChanged  bool
	NewTotalSupply uint64
	Balances       []BalanceFact
}

// Token is the ledger state. It is not safe for concurrent use; the owning
// service serializes access.
type Token struct {
	balances    map[domain.Account]uint64
	totalSupply uint64
	info        Info
}

// NewToken creates an empty ledger with the given metadata.
func NewToken(info Info) *Token {
	return &Token{
		balances: make(map[domain.Account]uint64),
		info:     info,
	}
}

// Mint credits qty to the target account and grows the total supply.
func (t *Token) Mint(to domain.Account, qty uint64, payload []byte) (Effect, error) {
	if qty == 0 {
		return Effect{}, dErrors.New(dErrors.CodeZeroQuantity, "cannot mint a zero quantity")
	}

	newBalance := t.balances[to] + qty
	t.balances[to] = newBalance
	t.totalSupply += qty

	return Effect{
		Move:           Move{To: to, Qty: qty, Payload: payload},
		SupplyChanged:  true,
		NewTotalSupply: t.totalSupply,
		Balances:       []BalanceFact{{Account: to, NewBalance: newBalance}},
	}, nil
}

// Transfer moves qty between accounts. The supply is unchanged. A transfer
// to oneself is permitted: it validates and emits like any other transfer
// but leaves the balance as it was.
func (t *Token) Transfer(from, to domain.Account, qty uint64, payload []byte) (Effect, error) {
	if qty == 0 {
		return Effect{}, dErrors.New(dErrors.CodeZeroQuantity, "cannot transfer a zero quantity")
	}

	fromBalance := t.balances[from]
	if fromBalance < qty {
		return Effect{}, dErrors.New(dErrors.CodeInsufficientBalance, "transfer exceeds the sender balance")
	}

	if from == to {
		return Effect{
			Move: Move{From: from, To: to, Qty: qty, Payload: payload},
			Balances: []BalanceFact{
				{Account: from, NewBalance: fromBalance},
				{Account: to, NewBalance: fromBalance},
			},
		}, nil
	}

	newFromBalance := fromBalance - qty
	newToBalance := t.balances[to] + qty
	if newFromBalance == 0 {
		delete(t.balances, from)
	} else {
		t.balances[from] = newFromBalance
	}
	t.balances[to] = newToBalance

	return Effect{
		Move: Move{From: from, To: to, Qty: qty, Payload: payload},
		Balances: []BalanceFact{
			{Account: from, NewBalance: newFromBalance},
			{Account: to, NewBalance: newToBalance},
		},
	}, nil
}

// Burn debits qty from the account and shrinks the total supply.
func (t *Token) Burn(from domain.Account, qty uint64, payload []byte) (Effect, error) {
	if qty == 0 {
		return Effect{}, dErrors.New(dErrors.CodeZeroQuantity, "cannot burn a zero quantity")
	}

	balance := t.balances[from]
	if balance < qty {
		return Effect{}, dErrors.New(dErrors.CodeInsufficientBalance, "burn exceeds the account balance")
	}

	newBalance := balance - qty
	if newBalance == 0 {
		delete(t.balances, from)
	} else {
		t.balances[from] = newBalance
	}
	t.totalSupply -= qty

	return Effect{
		Move:           Move{From: from, Qty: qty, Payload: payload},
		SupplyChanged:  true,
		NewTotalSupply: t.totalSupply,
		Balances:       []BalanceFact{{Account: from, NewBalance: newBalance}},
	}, nil
}

// BalanceOf reads a balance; absent accounts read as zero.
func (t *Token) BalanceOf(account domain.Account) uint64 {
	return t.balances[account]
}

// TotalSupply returns the aggregate supply.
func (t *Token) TotalSupply() uint64 { return t.totalSupply }

// Holders returns the number of accounts with a non-zero balance.
func (t *Token) Holders() int { return len(t.balances) }

// Info returns the token metadata.
func (t *Token) Info() Info { return t.info }

// UpdateInfo replaces the metadata and returns the previous value.
func (t *Token) UpdateInfo(newInfo Info) Info {
	old := t.info
	t.info = newInfo
	return old
}
