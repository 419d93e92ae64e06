// Package handler wires the membership endpoints to the membership service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tokenhost/pkg/domain"
	dErrors "tokenhost/pkg/domain-errors"
	"tokenhost/pkg/platform/httputil"
	"tokenhost/pkg/requestcontext"
)

// Service defines the membership operations the handler depends on.
type Service interface {
	Issue(ctx context.Context, caller domain.Account, accounts []domain.Account) ([]error, error)
	Revoke(ctx context.Context, caller domain.Account, accounts []domain.Account) ([]error, error)
	Accept(ctx context.Context, caller domain.Account) error
	Decline(ctx context.Context, caller domain.Account) error
	IsMember(account domain.Account) bool
	IsPending(account domain.Account) bool
	TotalMembers() int
}

// Handler wires membership endpoints to the membership service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a membership handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/memberships/issue", h.HandleIssue)
	r.Post("/memberships/revoke", h.HandleRevoke)
	r.Post("/memberships/accept", h.HandleAccept)
	r.Post("/memberships/decline", h.HandleDecline)
	r.Get("/memberships/stats", h.HandleStats)
	r.Get("/memberships/{account}", h.HandleStatus)
}

// HandleIssue handles POST /memberships/issue requests.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	h.handleBatch(w, r, h.service.Issue)
}

// HandleRevoke handles POST /memberships/revoke requests.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	h.handleBatch(w, r, h.service.Revoke)
}

// HandleAccept handles POST /memberships/accept requests.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.handleSelf(w, r, h.service.Accept)
}

// HandleDecline handles POST /memberships/decline requests.
func (h *Handler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	h.handleSelf(w, r, h.service.Decline)
}

// HandleStatus handles GET /memberships/{account} requests.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	account, err := domain.ParseAccount(chi.URLParam(r, "account"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Account: account.String(),
		Status:  statusOf(h.service, account),
	})
}

// HandleStats handles GET /memberships/stats requests.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, StatsResponse{TotalMembers: h.service.TotalMembers()})
}

type batchFunc func(ctx context.Context, caller domain.Account, accounts []domain.Account) ([]error, error)

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request, op batchFunc) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[BatchRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	results, err := op(ctx, caller, req.ParsedAccounts())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromBatchResults(results))
}

func (h *Handler) handleSelf(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, caller domain.Account) error) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, ctx)
	if !ok {
		return
	}
	if err := op(ctx, caller); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Account: caller.String(),
		Status:  statusOf(h.service, caller),
	})
}

func (h *Handler) requireCaller(w http.ResponseWriter, ctx context.Context) (domain.Account, bool) {
	caller := requestcontext.Caller(ctx)
	if caller.IsNobody() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return domain.Nobody, false
	}
	return caller, true
}

func statusOf(s Service, account domain.Account) string {
	switch {
	case s.IsMember(account):
		return "member"
	case s.IsPending(account):
		return "pending"
	default:
		return "none"
	}
}
