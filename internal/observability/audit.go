// Package observability provides audit logging helpers shared by the
// domain services.
package observability

import (
	"context"
	"log/slog"

	"tokenhost/pkg/attrs"
	"tokenhost/pkg/requestcontext"
)

// LogAudit logs an audit event to the structured logger. It enriches the
// event with the request ID and a subject extracted from attrList.
func LogAudit(ctx context.Context, logger *slog.Logger, event string, attrList ...any) {
	requestID := requestcontext.RequestID(ctx)

	if requestID != "" {
		attrList = append(attrList, "request_id", requestID)
	}
	if subject := extractSubject(attrList); subject != "" {
		attrList = append(attrList, "subject", subject)
	}

	args := append(attrList, "event", event, "log_type", "audit")

	if logger != nil {
		logger.InfoContext(ctx, event, args...)
	}
}

func extractSubject(attrList []any) string {
	for _, key := range []string{"account", "from", "owner", "caller"} {
		if val := attrs.ExtractString(attrList, key); val != "" {
			return val
		}
	}
	return ""
}
