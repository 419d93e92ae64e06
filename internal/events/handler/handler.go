// Package handler wires the listener registry endpoints to the events
// service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tokenhost/internal/events"
	"tokenhost/pkg/domain"
	dErrors "tokenhost/pkg/domain-errors"
	"tokenhost/pkg/platform/httputil"
	"tokenhost/pkg/requestcontext"
)

// Service defines the listener registry operations the handler depends on.
type Service interface {
	Register(ctx context.Context, caller domain.Account, endpoint string, kinds []events.Kind, owner domain.Account) (events.Listener, error)
	Unregister(ctx context.Context, caller domain.Account, id events.ListenerID) error
	Subscribe(ctx context.Context, caller domain.Account, endpoint string, kinds []events.Kind) (events.Listener, error)
	Unsubscribe(ctx context.Context, caller domain.Account, id events.ListenerID) error
	List(caller domain.Account) ([]events.Listener, error)
}

// Handler wires listener endpoints to the events service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an events handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/listeners", h.HandleList)
	r.Post("/listeners", h.HandleRegister)
	r.Post("/listeners/remove", h.HandleRemove)
	r.Post("/listeners/subscribe", h.HandleSubscribe)
	r.Delete("/listeners/{id}", h.HandleUnsubscribe)
}

// HandleList handles GET /listeners requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r.Context())
	if !ok {
		return
	}
	listeners, err := h.service.List(caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromListeners(listeners))
}

// HandleRegister handles POST /listeners requests: a privileged batch add
// of listeners on behalf of arbitrary owners.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	results := make([]RegisterResultModel, len(req.Listeners))
	for i, entry := range req.Listeners {
		listener, err := h.service.Register(ctx, caller, entry.Endpoint, entry.ParsedKinds(), entry.ParsedOwner())
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeAccessDenied) || dErrors.HasCode(err, dErrors.CodeForbidden) {
				httputil.WriteError(w, err)
				return
			}
			results[i] = RegisterResultModel{
				OK:        false,
				ErrorCode: string(dErrors.CodeOf(err)),
				Error:     err.Error(),
			}
			continue
		}
		results[i] = RegisterResultModel{OK: true, Listener: FromListener(listener)}
	}
	httputil.WriteJSON(w, http.StatusOK, RegisterResponse{Results: results})
}

// HandleRemove handles POST /listeners/remove requests: a privileged batch
// removal by id.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[RemoveRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	results := make([]EntryResultModel, len(req.IDs))
	for i, raw := range req.IDs {
		err := h.service.Unregister(ctx, caller, events.ListenerID(raw))
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeAccessDenied) || dErrors.HasCode(err, dErrors.CodeForbidden) {
				httputil.WriteError(w, err)
				return
			}
			results[i] = EntryResultModel{
				OK:        false,
				ErrorCode: string(dErrors.CodeOf(err)),
				Error:     err.Error(),
			}
			continue
		}
		results[i] = EntryResultModel{OK: true}
	}
	httputil.WriteJSON(w, http.StatusOK, RemoveResponse{Results: results})
}

// HandleSubscribe handles POST /listeners/subscribe requests: the caller
// registers themselves.
func (h *Handler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[SubscribeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	listener, err := h.service.Subscribe(ctx, caller, req.Endpoint, req.ParsedKinds())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromListener(listener))
}

// HandleUnsubscribe handles DELETE /listeners/{id} requests.
func (h *Handler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, ctx)
	if !ok {
		return
	}
	if err := h.service.Unsubscribe(ctx, caller, events.ListenerID(chi.URLParam(r, "id"))); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireCaller(w http.ResponseWriter, ctx context.Context) (domain.Account, bool) {
	caller := requestcontext.Caller(ctx)
	if caller.IsNobody() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return domain.Nobody, false
	}
	return caller, true
}
