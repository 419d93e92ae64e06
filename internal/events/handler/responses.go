package handler

import (
	"time"

	"tokenhost/internal/events"
)

// ListenerModel is the wire form of one registered listener.
type ListenerModel struct {
	ID        string    `json:"id"`
	Endpoint  string    `json:"endpoint"`
	Kinds     []string  `json:"kinds"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
}

// FromListener maps a listener onto the wire model.
func FromListener(listener events.Listener) ListenerModel {
	kinds := make([]string, len(listener.Kinds))
	for i, kind := range listener.Kinds {
		kinds[i] = string(kind)
	}
	return ListenerModel{
		ID:        string(listener.ID),
		Endpoint:  listener.Endpoint,
		Kinds:     kinds,
		Owner:     listener.Owner.String(),
		CreatedAt: listener.CreatedAt,
	}
}

// ListenersResponse is the response body of GET /listeners.
type ListenersResponse struct {
	Listeners []ListenerModel `json:"listeners"`
}

// FromListeners maps listeners onto the wire model.
func FromListeners(listeners []events.Listener) ListenersResponse {
	out := make([]ListenerModel, len(listeners))
	for i, listener := range listeners {
		out[i] = FromListener(listener)
	}
	return ListenersResponse{Listeners: out}
}

// RegisterResultModel reports one batch add entry.
type RegisterResultModel struct {
	OK        bool          `json:"ok"`
	ErrorCode string        `json:"error_code,omitempty"`
	Error     string        `json:"error,omitempty"`
	Listener  ListenerModel `json:"listener,omitempty"`
}

// RegisterResponse is the response body of POST /listeners.
type RegisterResponse struct {
	Results []RegisterResultModel `json:"results"`
}

// EntryResultModel reports one batch removal entry.
type EntryResultModel struct {
	OK        bool   `json:"ok"`
	ErrorCode string `json:"error_code,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RemoveResponse is the response body of POST /listeners/remove.
type RemoveResponse struct {
	Results []EntryResultModel `json:"results"`
}
