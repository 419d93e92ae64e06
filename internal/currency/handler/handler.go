// Package handler wires the ledger, controller and task endpoints to the
// currency service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tokenhost/internal/cron"
	"tokenhost/internal/currency"
	"tokenhost/internal/currency/service"
	"tokenhost/internal/rbac"
	"tokenhost/internal/recurrence"
	"tokenhost/pkg/domain"
	dErrors "tokenhost/pkg/domain-errors"
	"tokenhost/pkg/platform/httputil"
	"tokenhost/pkg/requestcontext"
)

// Service defines the currency operations the handler depends on.
type Service interface {
	Mint(ctx context.Context, caller domain.Account, entries []service.MintEntry) ([]service.EntryResult, error)
	Transfer(ctx context.Context, caller domain.Account, entries []service.TransferEntry) ([]service.EntryResult, error)
	Burn(ctx context.Context, caller domain.Account, qty uint64, payload []byte) error
	BalanceOf(account domain.Account) uint64
	TotalSupply() uint64
	Info() currency.Info
	UpdateInfo(ctx context.Context, caller domain.Account, newInfo currency.Info) (currency.Info, error)
	Controllers() map[rbac.RoleKind][]domain.Account
	Controller(kind rbac.RoleKind) []domain.Account
	UpdateController(ctx context.Context, caller domain.Account, kind rbac.RoleKind, accounts []domain.Account) ([]domain.Account, error)
	CancelTasks(ctx context.Context, caller domain.Account, ids []cron.TaskID) []bool
	ListTasks(caller domain.Account) []recurrence.Task
	ListAllTasks(caller domain.Account) ([]recurrence.Task, error)
	DescribeTask(caller domain.Account, id cron.TaskID) (cron.TaskDetail, error)
}

// Handler wires ledger endpoints to the currency service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a currency handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/token/mint", h.HandleMint)
	r.Post("/token/transfer", h.HandleTransfer)
	r.Post("/token/burn", h.HandleBurn)
	r.Get("/token/balance/{account}", h.HandleBalance)
	r.Get("/token/supply", h.HandleSupply)
	r.Get("/token/info", h.HandleInfo)
	r.Put("/token/info", h.HandleUpdateInfo)

	r.Get("/controllers", h.HandleControllers)
	r.Get("/controllers/{role}", h.HandleController)
	r.Put("/controllers/{role}", h.HandleUpdateController)

	r.Get("/tasks", h.HandleListTasks)
	r.Get("/tasks/all", h.HandleListAllTasks)
	r.Get("/tasks/{id}", h.HandleDescribeTask)
	r.Post("/tasks/cancel", h.HandleCancelTasks)
}

// HandleMint handles POST /token/mint requests.
func (h *Handler) HandleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[MintRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	results, err := h.service.Mint(ctx, caller, req.ParsedEntries())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEntryResults(results))
}

// HandleTransfer handles POST /token/transfer requests.
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[TransferRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	results, err := h.service.Transfer(ctx, caller, req.ParsedEntries())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEntryResults(results))
}

// HandleBurn handles POST /token/burn requests.
func (h *Handler) HandleBurn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[BurnRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	if err := h.service.Burn(ctx, caller, req.Qty, req.Payload); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SupplyResponse{TotalSupply: h.service.TotalSupply()})
}

// HandleBalance handles GET /token/balance/{account} requests.
func (h *Handler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	account, err := domain.ParseAccount(chi.URLParam(r, "account"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BalanceResponse{
		Account: account.String(),
		Balance: h.service.BalanceOf(account),
	})
}

// HandleSupply handles GET /token/supply requests.
func (h *Handler) HandleSupply(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, SupplyResponse{TotalSupply: h.service.TotalSupply()})
}

// HandleInfo handles GET /token/info requests.
func (h *Handler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, FromInfo(h.service.Info()))
}

// HandleUpdateInfo handles PUT /token/info requests. Responds with the
// replaced metadata.
func (h *Handler) HandleUpdateInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateInfoRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	old, err := h.service.UpdateInfo(ctx, caller, req.ParsedInfo())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromInfo(old))
}

// HandleControllers handles GET /controllers requests.
func (h *Handler) HandleControllers(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, FromControllers(h.service.Controllers()))
}

// HandleController handles GET /controllers/{role} requests.
func (h *Handler) HandleController(w http.ResponseWriter, r *http.Request) {
	kind, err := rbac.ParseRoleKind(chi.URLParam(r, "role"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ControllerResponse{
		Role:     string(kind),
		Accounts: accountStrings(h.service.Controller(kind)),
	})
}

// HandleUpdateController handles PUT /controllers/{role} requests. Responds
// with the replaced account set.
func (h *Handler) HandleUpdateController(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, ctx)
	if !ok {
		return
	}

	kind, err := rbac.ParseRoleKind(chi.URLParam(r, "role"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateControllerRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	old, err := h.service.UpdateController(ctx, caller, kind, req.ParsedAccounts())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ControllerResponse{
		Role:     string(kind),
		Accounts: accountStrings(old),
	})
}

// HandleListTasks handles GET /tasks requests: the caller's own tasks.
func (h *Handler) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r.Context())
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTasks(h.service.ListTasks(caller)))
}

// HandleListAllTasks handles GET /tasks/all requests.
func (h *Handler) HandleListAllTasks(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r.Context())
	if !ok {
		return
	}
	tasks, err := h.service.ListAllTasks(caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTasks(tasks))
}

// HandleDescribeTask handles GET /tasks/{id} requests.
func (h *Handler) HandleDescribeTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r.Context())
	if !ok {
		return
	}
	detail, err := h.service.DescribeTask(caller, cron.TaskID(chi.URLParam(r, "id")))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "task not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTaskDetail(detail))
}

// HandleCancelTasks handles POST /tasks/cancel requests.
func (h *Handler) HandleCancelTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CancelTasksRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CancelTasksResponse{
		Cancelled: h.service.CancelTasks(ctx, caller, req.ParsedIDs()),
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
