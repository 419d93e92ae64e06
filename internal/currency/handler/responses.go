package handler

import (
	"time"

	"tokenhost/internal/cron"
	"tokenhost/internal/currency"
	"tokenhost/internal/currency/service"
	"tokenhost/internal/rbac"
	"tokenhost/internal/recurrence"
	"tokenhost/pkg/domain"
	dErrors "tokenhost/pkg/domain-errors"
)

// EntryResultModel reports one batch entry on the wire. A committed entry
// with a failed recurrence still reports ok=true.
type EntryResultModel struct {
	OK              bool   `json:"ok"`
	ErrorCode       string `json:"error_code,omitempty"`
	Error           string `json:"error,omitempty"`
	TaskID          string `json:"task_id,omitempty"`
	SchedulingError string `json:"scheduling_error,omitempty"`
}

// BatchResponse is the response body of mint and transfer batches.
type BatchResponse struct {
	Results []EntryResultModel `json:"results"`
}

// FromEntryResults maps service results onto the wire model.
func FromEntryResults(results []service.EntryResult) BatchResponse {
	out := make([]EntryResultModel, len(results))
	for i, result := range results {
		if result.Err != nil {
			out[i] = EntryResultModel{
				OK:        false,
				ErrorCode: string(dErrors.CodeOf(result.Err)),
				Error:     result.Err.Error(),
			}
			continue
		}
		model := EntryResultModel{OK: true, TaskID: string(result.TaskID)}
		if result.SchedulingErr != nil {
			model.SchedulingError = result.SchedulingErr.Error()
		}
		out[i] = model
	}
	return BatchResponse{Results: out}
}

// BalanceResponse is the response body of GET /token/balance/{account}.
type BalanceResponse struct {
	Account string `json:"account"`
	Balance uint64 `json:"balance"`
}

// SupplyResponse is the response body of GET /token/supply.
type SupplyResponse struct {
	TotalSupply uint64 `json:"total_supply"`
}

// InfoResponse is the response body of token metadata reads and updates.
type InfoResponse struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// FromInfo maps token metadata onto the wire model.
func FromInfo(info currency.Info) InfoResponse {
	return InfoResponse{Name: info.Name, Symbol: info.Symbol, Decimals: info.Decimals}
}

// ControllersResponse is the response body of GET /controllers.
type ControllersResponse struct {
	Controllers map[string][]string `json:"controllers"`
}

// FromControllers maps the role sets onto the wire model.
func FromControllers(sets map[rbac.RoleKind][]domain.Account) ControllersResponse {
	out := make(map[string][]string, len(sets))
	for kind, accounts := range sets {
		out[string(kind)] = accountStrings(accounts)
	}
	return ControllersResponse{Controllers: out}
}

// ControllerResponse is the response body of single-role reads and updates.
type ControllerResponse struct {
	Role     string   `json:"role"`
	Accounts []string `json:"accounts"`
}

// CancelTasksResponse reports one bool per requested cancellation.
type CancelTasksResponse struct {
	Cancelled []bool `json:"cancelled"`
}

// TaskModel is the wire form of one scheduled task.
type TaskModel struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Owner string `json:"owner,omitempty"`
}

// TasksResponse is the response body of task listings.
type TasksResponse struct {
	Tasks []TaskModel `json:"tasks"`
}

// FromTasks maps manager tasks onto the wire model.
func FromTasks(tasks []recurrence.Task) TasksResponse {
	out := make([]TaskModel, len(tasks))
	for i, task := range tasks {
		out[i] = TaskModel{ID: string(task.ID), Kind: string(task.Kind), Owner: task.Owner.String()}
	}
	return TasksResponse{Tasks: out}
}

// TaskDetailResponse is the response body of GET /tasks/{id}.
type TaskDetailResponse struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	DurationNano  uint64    `json:"duration_nano"`
	Infinite      bool      `json:"infinite"`
	FiresLeft     *uint64   `json:"fires_left,omitempty"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	RescheduledAt time.Time `json:"rescheduled_at,omitempty"`
}

// FromTaskDetail maps collaborator detail onto the wire model.
func FromTaskDetail(detail cron.TaskDetail) TaskDetailResponse {
	return TaskDetailResponse{
		ID:            string(detail.ID),
		Kind:          string(detail.Kind),
		DurationNano:  uint64(detail.Schedule.Interval),
		Infinite:      detail.Schedule.Iterations.Infinite,
		FiresLeft:     detail.FiresLeft,
		ScheduledAt:   detail.ScheduledAt,
		RescheduledAt: detail.RescheduledAt,
	}
}

func accountStrings(accounts []domain.Account) []string {
	out := make([]string, len(accounts))
	for i, account := range accounts {
		out[i] = account.String()
	}
	return out
}
