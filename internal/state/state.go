// Package state owns the single mutable instance of the ledger, registry
// and roles. The hosting process is the only owner; every logical operation
// acquires the one mutex for its full duration, so the domain types stay
// free of locking.
package state

import (
	"sync"

	"tokenhost/internal/currency"
	"tokenhost/internal/membership"
	"tokenhost/internal/rbac"
)

// State is the application state injected into each service.
type State struct {
	mu sync.Mutex

	Token    *currency.Token
	Registry *membership.Registry
	Roles    *rbac.Roles
}

// New initializes the state with an empty ledger and registry. The
// initializer account seeds every controller role unless explicit sets are
// supplied.
func New(token *currency.Token, registry *membership.Registry, roles *rbac.Roles) *State {
	return &State{Token: token, Registry: registry, Roles: roles}
}

// Lock acquires the state for one logical operation.
func (s *State) Lock() { s.mu.Lock() }

// Unlock releases the state.
func (s *State) Unlock() { s.mu.Unlock() }
