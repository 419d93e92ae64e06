// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services read them without importing
// net/http. Tests inject them directly with the With* helpers.
package requestcontext

import (
	"context"

	"tokenhost/pkg/domain"
)

type (
	callerKey    struct{}
	requestIDKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyCaller    = callerKey{}
	ContextKeyRequestID = requestIDKey{}
)

// WithCaller stamps the authenticated caller account onto the context.
func WithCaller(ctx context.Context, caller domain.Account) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, caller)
}

// Caller returns the authenticated caller account, or domain.Nobody when the
// request carried no identity.
func Caller(ctx context.Context) domain.Account {
	caller, ok := ctx.Value(ContextKeyCaller).(domain.Account)
	if !ok {
		return domain.Nobody
	}
	return caller
}

// WithRequestID stamps a correlation id onto the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestID returns the correlation id, or "" when unset.
func RequestID(ctx context.Context) string {
	id, ok := ctx.Value(ContextKeyRequestID).(string)
	if !ok {
		return ""
	}
	return id
}
