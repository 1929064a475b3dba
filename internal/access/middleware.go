package access

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"rolegate/pkg/platform/audit"
	"rolegate/pkg/platform/httputil"
	"rolegate/pkg/platform/middleware/auth"
	"rolegate/pkg/requestcontext"
)

// Authorizer is the decision port the HTTP guard depends on.
type Authorizer interface {
	Authorize(ctx context.Context, credential string, policy Policy) Decision
}

// AuditPublisher records denials. Failures are logged and never change the verdict.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Guard turns policies into chi-compatible middleware.
type Guard struct {
	authorizer Authorizer
	auditor    AuditPublisher
	logger     *slog.Logger
}

type GuardOption func(*Guard)

func WithAuditPublisher(p AuditPublisher) GuardOption {
	return func(g *Guard) {
		g.auditor = p
	}
}

func NewGuard(authorizer Authorizer, logger *slog.Logger, opts ...GuardOption) (*Guard, error) {
	if authorizer == nil {
		return nil, errors.New("authorizer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	g := &Guard{authorizer: authorizer, logger: logger}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Require runs next only when the request's bearer credential satisfies
// policy. On success the verified principal is placed in the request context.
func (g *Guard) Require(policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			decision := g.authorizer.Authorize(ctx, auth.BearerToken(r), policy)
			if !decision.Allowed {
				g.denied(ctx, policy, decision)
				httputil.WriteError(w, decision.Err())
				return
			}

			ctx = requestcontext.WithPrincipal(ctx, decision.Identity, decision.Role)
			ctx = requestcontext.WithTokenID(ctx, decision.TokenID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (g *Guard) denied(ctx context.Context, policy Policy, decision Decision) {
	requestID := requestcontext.RequestID(ctx)
	attrs := []any{
		"request_id", requestID,
		"operation", policy.Operation(),
		"reason", string(decision.Reason),
	}
	if decision.Identity != "" {
		attrs = append(attrs, "identity", decision.Identity.String(), "role", decision.Role.String())
	}
	if decision.Cause != nil {
		attrs = append(attrs, "error", decision.Cause)
	}
	g.logger.WarnContext(ctx, "access denied", attrs...)

	if g.auditor == nil {
		return
	}
	event := audit.FromContext(ctx, audit.EventAccessDenied)
	event.Identity = decision.Identity
	event.Role = decision.Role
	event.Resource = policy.Operation()
	event.Decision = decision.Outcome()
	event.Reason = string(decision.Reason)
	if err := g.auditor.Emit(ctx, event); err != nil {
		g.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"request_id", requestID,
			"error", err,
		)
	}
}
