package handler

import (
	"strings"

	"tokenhost/internal/events"
	"tokenhost/pkg/domain"
	dErrors "tokenhost/pkg/domain-errors"
)

// ListenerEntryModel is one entry of a privileged listener batch add.
type ListenerEntryModel struct {
	Endpoint string   `json:"endpoint"`
	Kinds    []string `json:"kinds"`
	Owner    string   `json:"owner"`

	parsedKinds []events.Kind
	parsedOwner domain.Account
}

func (m *ListenerEntryModel) validate() error {
	m.Endpoint = strings.TrimSpace(m.Endpoint)
	if m.Endpoint == "" {
		return dErrors.New(dErrors.CodeValidation, "endpoint is required")
	}
	kinds, err := parseKinds(m.Kinds)
	if err != nil {
		return err
	}
	m.parsedKinds = kinds
	owner, err := domain.ParseAccount(m.Owner)
	if err != nil {
		return err
	}
	m.parsedOwner = owner
	return nil
}

// ParsedKinds returns the validated event kinds.
func (m *ListenerEntryModel) ParsedKinds() []events.Kind { return m.parsedKinds }

// ParsedOwner returns the validated owner account.
func (m *ListenerEntryModel) ParsedOwner() domain.Account { return m.parsedOwner }

// RegisterRequest is the HTTP request body for POST /listeners.
type RegisterRequest struct {
	Listeners []ListenerEntryModel `json:"listeners"`
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterRequest) Validate() error {
	if r == nil || len(r.Listeners) == 0 {
		return dErrors.New(dErrors.CodeValidation, "listeners is required")
	}
	for i := range r.Listeners {
		if err := r.Listeners[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

// RemoveRequest is the HTTP request body for POST /listeners/remove.
type RemoveRequest struct {
	IDs []string `json:"ids"`
}

// Validate validates the request.
func (r *RemoveRequest) Validate() error {
	if r == nil || len(r.IDs) == 0 {
		return dErrors.New(dErrors.CodeValidation, "ids is required")
	}
	return nil
}

// SubscribeRequest is the HTTP request body for POST /listeners/subscribe.
type SubscribeRequest struct {
	Endpoint string   `json:"endpoint"`
	Kinds    []string `json:"kinds"`

	parsedKinds []events.Kind
}

// Validate validates and parses the request.
func (r *SubscribeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Endpoint = strings.TrimSpace(r.Endpoint)
	if r.Endpoint == "" {
		return dErrors.New(dErrors.CodeValidation, "endpoint is required")
	}
	kinds, err := parseKinds(r.Kinds)
	if err != nil {
		return err
	}
	r.parsedKinds = kinds
	return nil
}

// ParsedKinds returns the validated event kinds.
func (r *SubscribeRequest) ParsedKinds() []events.Kind { return r.parsedKinds }

func parseKinds(raw []string) ([]events.Kind, error) {
	if len(raw) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one event kind is required")
	}
	kinds := make([]events.Kind, len(raw))
	for i, name := range raw {
		kind := events.Kind(name)
		if !kind.Valid() {
			return nil, dErrors.Newf(dErrors.CodeValidation, "unknown event kind %q", name)
		}
		kinds[i] = kind
	}
	return kinds, nil
}
