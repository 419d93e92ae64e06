package handler

import (
	dErrors "tokenhost/pkg/domain-errors"
)

// EntryResultModel reports one batch entry on the wire.
type EntryResultModel struct {
	OK        bool   `json:"ok"`
	ErrorCode string `json:"error_code,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BatchResponse is the response body of issue and revoke batches.
type BatchResponse struct {
	Results []EntryResultModel `json:"results"`
}

// FromBatchResults maps per-entry outcomes onto the wire model.
func FromBatchResults(results []error) BatchResponse {
	out := make([]EntryResultModel, len(results))
	for i, err := range results {
		if err != nil {
			out[i] = EntryResultModel{
				OK:        false,
				ErrorCode: string(dErrors.CodeOf(err)),
				Error:     err.Error(),
			}
			continue
		}
		out[i] = EntryResultModel{OK: true}
	}
	return BatchResponse{Results: out}
}

// StatusResponse reports an account's membership status.
type StatusResponse struct {
	Account string `json:"account"`
	Status  string `json:"status"`
}

// StatsResponse is the response body of GET /memberships/stats.
type StatsResponse struct {
	TotalMembers int `json:"total_members"`
}
