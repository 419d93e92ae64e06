package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Collaborators and registries
// return these (optionally wrapped) so services can translate them into
// domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in the registry
// - ErrAlreadyRegistered: listener or task id already present
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: collaborator temporarily unavailable
// - ErrNotEncodable: payload cannot be serialized for the collaborator
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrInvalidState      = errors.New("invalid state")
	ErrUnavailable       = errors.New("unavailable")
	ErrNotEncodable      = errors.New("not encodable")
)
