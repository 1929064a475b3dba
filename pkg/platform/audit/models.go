package audit

import (
	"context"
	"time"

	"rolegate/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// route or retain them differently.
type EventCategory string

const (
	// CategorySecurity covers denials and other events worth alerting on.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity: issuance and bot operations.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string          `json:"id"`
	Category  EventCategory   `json:"category"`
	Timestamp time.Time       `json:"timestamp"`
	Identity  domain.Identity `json:"identity,omitempty"`
	Role      domain.Role     `json:"role,omitempty"`
	Action    string          `json:"action"`
	// Resource names the guarded operation, e.g. "send".
	Resource string `json:"resource,omitempty"`
	Decision string `json:"decision,omitempty"`
	Reason   string `json:"reason,omitempty"`
	// Detail carries operation-specific context such as the target channel.
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	Device    string `json:"device,omitempty"`
}

type AuditEvent string

const (
	EventTokenIssued  AuditEvent = "token_issued"
	EventAccessDenied AuditEvent = "access_denied"
	EventMessageSent  AuditEvent = "message_sent"
	EventBotRestarted AuditEvent = "bot_restarted"
	EventLogsViewed   AuditEvent = "logs_viewed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAccessDenied: CategorySecurity,

	EventTokenIssued:  CategoryOperations,
	EventMessageSent:  CategoryOperations,
	EventBotRestarted: CategoryOperations,
	EventLogsViewed:   CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, event Event) error
}
