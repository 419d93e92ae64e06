package testutil

import (
	"net/http"

	"tokenhost/pkg/domain"
	"tokenhost/pkg/requestcontext"
)

// WithCaller stamps an authenticated caller onto the request context,
// simulating what the auth middleware does for valid bearer tokens.
// A malformed account is silently ignored.
func WithCaller(req *http.Request, caller string) *http.Request {
	account, err := domain.ParseAccount(caller)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithCaller(req.Context(), account))
}

// WithRequestID stamps a correlation id onto the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
