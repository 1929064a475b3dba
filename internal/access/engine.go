// Package access decides whether a presented credential may invoke a
// protected operation. Decisions are pure functions of the credential, the
// operation's policy, the signing secret and the clock.
package access

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rolegate/internal/access/metrics"
	jwttoken "rolegate/internal/jwt_token"
)

// TokenVerifier validates a raw credential and returns its claims.
type TokenVerifier interface {
	ValidateToken(tokenString string) (*jwttoken.VerifiedClaims, error)
}

// Engine evaluates credentials against policies.
type Engine struct {
	verifier TokenVerifier
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type Option func(*Engine)

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

func NewEngine(verifier TokenVerifier, opts ...Option) (*Engine, error) {
	if verifier == nil {
		return nil, errors.New("token verifier is required")
	}
	e := &Engine{
		verifier: verifier,
		tracer:   otel.Tracer("rolegate/internal/access"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Authorize applies, in order:
//  1. no credential            -> deny "no token"
//  2. verification fails       -> deny "invalid token" (expiry and forgery look alike)
//  3. role not in policy, not owner -> deny "insufficient role"
//
// A zero Policy permits nobody but owner.
func (e *Engine) Authorize(ctx context.Context, credential string, policy Policy) Decision {
	start := time.Now()
	_, span := e.tracer.Start(ctx, "access.authorize",
		trace.WithAttributes(attribute.String("access.operation", policy.Operation())),
	)
	defer span.End()

	decision := e.decide(credential, policy)

	span.SetAttributes(
		attribute.String("access.outcome", decision.Outcome()),
		attribute.String("access.reason", string(decision.Reason)),
		attribute.String("access.role", decision.Role.String()),
	)
	if decision.Cause != nil {
		span.SetStatus(codes.Error, string(decision.Reason))
	}
	e.metrics.IncrementOutcome(policy.Operation(), decision.Outcome(), string(decision.Reason))
	e.metrics.ObserveLatency(time.Since(start))
	return decision
}

func (e *Engine) decide(credential string, policy Policy) Decision {
	if credential == "" {
		return deny(ReasonNoToken)
	}

	claims, err := e.verifier.ValidateToken(credential)
	if err != nil {
		d := deny(ReasonInvalidToken)
		d.Cause = err
		return d
	}

	d := Decision{
		Identity: claims.Identity,
		Role:     claims.Role,
		TokenID:  claims.TokenID,
	}
	if !policy.Permits(claims.Role) {
		d.Reason = ReasonInsufficientRole
		return d
	}
	d.Allowed = true
	return d
}
