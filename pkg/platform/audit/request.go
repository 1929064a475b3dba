package audit

import (
	"context"

	"rolegate/pkg/requestcontext"
)

// FromContext starts an event for action with whatever the request context
// already knows: principal, request ID, client metadata and request time.
func FromContext(ctx context.Context, action AuditEvent) Event {
	return Event{
		Action:    string(action),
		Category:  action.Category(),
		Timestamp: requestcontext.Now(ctx),
		Identity:  requestcontext.Identity(ctx),
		Role:      requestcontext.Role(ctx),
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		Device:    requestcontext.Device(ctx),
	}
}
