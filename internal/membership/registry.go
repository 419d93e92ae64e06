// Package membership implements the binary membership registry: disjoint
// pending and member sets with the issue/accept/decline/revoke lifecycle.
package membership

import (
	"tokenhost/pkg/domain"
	dErrors "tokenhost/pkg/domain-errors"
)

// Status is the externally visible membership state after a transition.
type Status string

const (
	StatusIssued   Status = "issued"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
	StatusRevoked  Status = "revoked"
)

// Change records one committed status transition. VotingPower carries the
// derived one-member-one-vote weight for accept and revoke transitions.
type Change struct {
	Account     domain.Account
	NewStatus   Status
	VotingPower *uint64
}

// Registry is the membership state. Not safe for concurrent use; the owning
// service serializes access. An account is never pending and member at once.
type Registry struct {
	pending map[domain.Account]struct{}
	members map[domain.Account]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		pending: make(map[domain.Account]struct{}),
		members: make(map[domain.Account]struct{}),
	}
}

// Issue moves an unlisted account into the pending set.
func (r *Registry) Issue(to domain.Account) (Change, error) {
	if r.IsMember(to) || r.IsPending(to) {
		return Change{}, dErrors.New(dErrors.CodeAlreadyMember, "the account already holds or was offered a membership")
	}
	r.pending[to] = struct{}{}
	return Change{Account: to, NewStatus: StatusIssued}, nil
}

// Accept promotes the caller from pending to member.
func (r *Registry) Accept(caller domain.Account) (Change, error) {
	if !r.IsPending(caller) {
		return Change{}, dErrors.New(dErrors.CodeNotAMember, "the caller has no pending membership to accept")
	}
	delete(r.pending, caller)
	r.members[caller] = struct{}{}
	power := uint64(1)
	return Change{Account: caller, NewStatus: StatusAccepted, VotingPower: &power}, nil
}

// Decline removes the caller's pending offer, leaving them unlisted.
func (r *Registry) Decline(caller domain.Account) (Change, error) {
	if !r.IsPending(caller) {
		return Change{}, dErrors.New(dErrors.CodeNotAMember, "the caller has no pending membership to decline")
	}
	delete(r.pending, caller)
	return Change{Account: caller, NewStatus: StatusDeclined}, nil
}

// Revoke removes a member, leaving them unlisted.
func (r *Registry) Revoke(from domain.Account) (Change, error) {
	if !r.IsMember(from) {
		return Change{}, dErrors.New(dErrors.CodeNotAMember, "the account is not a member")
	}
	delete(r.members, from)
	power := uint64(0)
	return Change{Account: from, NewStatus: StatusRevoked, VotingPower: &power}, nil
}

// IsMember reports whether the account is a full member.
func (r *Registry) IsMember(account domain.Account) bool {
	_, ok := r.members[account]
	return ok
}

// IsPending reports whether the account holds an unanswered offer.
func (r *Registry) IsPending(account domain.Account) bool {
	_, ok := r.pending[account]
	return ok
}

// TotalMembers returns the member count.
func (r *Registry) TotalMembers() int { return len(r.members) }
