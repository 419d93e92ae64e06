package handler

import (
	"tokenhost/pkg/domain"
	dErrors "tokenhost/pkg/domain-errors"
)

// BatchRequest is the HTTP request body for the issue and revoke batches.
type BatchRequest struct {
	Accounts []string `json:"accounts"`

	parsed []domain.Account
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *BatchRequest) Validate() error {
	if r == nil || len(r.Accounts) == 0 {
		return dErrors.New(dErrors.CodeValidation, "accounts is required")
	}
	r.parsed = make([]domain.Account, len(r.Accounts))
	for i, raw := range r.Accounts {
		account, err := domain.ParseAccount(raw)
		if err != nil {
			return err
		}
		r.parsed[i] = account
	}
	return nil
}

// ParsedAccounts returns the validated accounts.
func (r *BatchRequest) ParsedAccounts() []domain.Account { return r.parsed }
