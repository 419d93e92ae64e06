// Package httptransport assembles the HTTP surface: platform middleware,
// domain handlers and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	currencyhandler "tokenhost/internal/currency/handler"
	eventshandler "tokenhost/internal/events/handler"
	membershiphandler "tokenhost/internal/membership/handler"
	"tokenhost/internal/platform/middleware"
)

// Deps carries everything the router mounts.
type Deps struct {
	Currency   currencyhandler.Service
	Membership membershiphandler.Service
	Events     eventshandler.Service
	Validator  middleware.TokenValidator
	Logger     *slog.Logger
}

// NewRouter wires all endpoints. Every domain route requires a valid bearer
// token; only the operational endpoints are open.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))

	r.Get("/healthz", handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
		protected.Use(middleware.ContentTypeJSON)

		currencyhandler.New(deps.Currency, deps.Logger).Register(protected)
		membershiphandler.New(deps.Membership, deps.Logger).Register(protected)
		eventshandler.New(deps.Events, deps.Logger).Register(protected)
	})

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
