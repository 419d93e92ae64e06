// Package rbac maintains the named controller roles that gate every mutating
// operation. A role maps to a set of authorized accounts; an empty set is a
// deliberate permanent lockout, not a defect.
package rbac

import (
	"slices"

	"tokenhost/pkg/domain"
	dErrors "tokenhost/pkg/domain-errors"
)

// RoleKind names a controller role.
type RoleKind string

const (
	// RoleMint authorizes minting and recurrent-mint administration.
	RoleMint RoleKind = "mint"
	// RoleInfo authorizes token metadata updates.
	RoleInfo RoleKind = "info"
	// RoleEventListeners authorizes listener registry mutation.
	RoleEventListeners RoleKind = "event_listeners"
	// RoleIssue authorizes issuing memberships.
	RoleIssue RoleKind = "issue"
	// RoleRevoke authorizes revoking memberships.
	RoleRevoke RoleKind = "revoke"
	// RoleSelf is reserved for the hosting process identity. It protects
	// internal re-entry paths and can never be reassigned.
	RoleSelf RoleKind = "self"
)

// ExternalRoles lists the roles external callers can hold and update.
var ExternalRoles = []RoleKind{RoleMint, RoleInfo, RoleEventListeners, RoleIssue, RoleRevoke}

// ParseRoleKind validates an externally supplied role name.
func ParseRoleKind(raw string) (RoleKind, error) {
	kind := RoleKind(raw)
	if kind == RoleSelf {
		return "", dErrors.New(dErrors.CodeForbidden, "the self role is reserved")
	}
	if !slices.Contains(ExternalRoles, kind) {
		return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown role %q", raw)
	}
	return kind, nil
}

// Roles holds the account set per role plus the host's own identity.
type Roles struct {
	self domain.Account
	sets map[RoleKind]map[domain.Account]struct{}
}

// Single seeds every external role with the one initializing account, the
// default for a freshly initialized token.
func Single(initializer, self domain.Account) *Roles {
	r := &Roles{self: self, sets: make(map[RoleKind]map[domain.Account]struct{}, len(ExternalRoles))}
	for _, kind := range ExternalRoles {
		r.sets[kind] = map[domain.Account]struct{}{initializer: {}}
	}
	return r
}

// FromSets seeds roles from explicitly supplied account sets. Roles absent
// from the map start empty, which locks them out.
func FromSets(sets map[RoleKind][]domain.Account, self domain.Account) *Roles {
	r := &Roles{self: self, sets: make(map[RoleKind]map[domain.Account]struct{}, len(ExternalRoles))}
	for _, kind := range ExternalRoles {
		set := make(map[domain.Account]struct{}, len(sets[kind]))
		for _, account := range sets[kind] {
			set[account] = struct{}{}
		}
		r.sets[kind] = set
	}
	return r
}

// Guard succeeds iff caller satisfies the role. The Self role is satisfied
// only by the hosting process identity.
func (r *Roles) Guard(kind RoleKind, caller domain.Account) error {
	if kind == RoleSelf {
		if !r.self.IsNobody() && caller == r.self {
			return nil
		}
		return dErrors.New(dErrors.CodeForbidden, "operation is reserved for the hosting process")
	}
	if caller.IsNobody() {
		return dErrors.Newf(dErrors.CodeAccessDenied, "the caller does not hold the %s role", kind)
	}
	if _, ok := r.sets[kind][caller]; !ok {
		return dErrors.Newf(dErrors.CodeAccessDenied, "the caller does not hold the %s role", kind)
	}
	return nil
}

// Update replaces a role's account set wholesale and returns the previous
// set for audit and event purposes. Setting an empty set is legal and locks
// the role out permanently, including for its current holders.
func (r *Roles) Update(kind RoleKind, accounts []domain.Account) ([]domain.Account, error) {
	if kind == RoleSelf {
		return nil, dErrors.New(dErrors.CodeForbidden, "the self role cannot be reassigned")
	}
	if _, ok := r.sets[kind]; !ok {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown role %q", kind)
	}
	old := r.Get(kind)
	set := make(map[domain.Account]struct{}, len(accounts))
	for _, account := range accounts {
		if account.IsNobody() {
			continue
		}
		set[account] = struct{}{}
	}
	r.sets[kind] = set
	return old, nil
}

// Get returns the role's accounts in sorted order.
func (r *Roles) Get(kind RoleKind) []domain.Account {
	set := r.sets[kind]
	accounts := make([]domain.Account, 0, len(set))
	for account := range set {
		accounts = append(accounts, account)
	}
	slices.Sort(accounts)
	return accounts
}

// All returns every external role's accounts, keyed by role kind.
func (r *Roles) All() map[RoleKind][]domain.Account {
	out := make(map[RoleKind][]domain.Account, len(r.sets))
	for _, kind := range ExternalRoles {
		out[kind] = r.Get(kind)
	}
	return out
}

// Self returns the hosting process identity.
func (r *Roles) Self() domain.Account { return r.self }
