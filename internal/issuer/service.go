// Package issuer mints role-bearing credentials for identities.
package issuer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rolegate/internal/issuer/metrics"
	jwttoken "rolegate/internal/jwt_token"
	"rolegate/pkg/domain"
	dErrors "rolegate/pkg/domain-errors"
	"rolegate/pkg/platform/audit"
	"rolegate/pkg/requestcontext"
)

// TokenTTL is the fixed lifetime of every issued credential.
const TokenTTL = 8 * time.Hour

type RoleLookup interface {
	Lookup(identity domain.Identity) domain.Role
}

type TokenSigner interface {
	GenerateAccessToken(identity domain.Identity, role domain.Role, issuedAt time.Time, expiresIn time.Duration) (string, *jwttoken.VerifiedClaims, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Credential is an issued bearer token and the facts it asserts.
type Credential struct {
	Token     string
	Identity  domain.Identity
	Role      domain.Role
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Service issues credentials. It never writes shared state: the registry is
// read-only and each call signs a fresh token.
type Service struct {
	roles   RoleLookup
	signer  TokenSigner
	auditor AuditPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func(ctx context.Context) time.Time
}

type Option func(*Service)

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock pins issuance time. By default the request time is used.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = func(context.Context) time.Time { return now() }
	}
}

func New(roles RoleLookup, signer TokenSigner, opts ...Option) (*Service, error) {
	if roles == nil {
		return nil, errors.New("role lookup is required")
	}
	if signer == nil {
		return nil, errors.New("token signer is required")
	}
	s := &Service{
		roles:  roles,
		signer: signer,
		logger: slog.Default(),
		now:    requestcontext.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue looks up the identity's role (member when unregistered) and signs a
// credential valid for TokenTTL from now.
func (s *Service) Issue(ctx context.Context, rawIdentity string) (*Credential, error) {
	identity, err := domain.ParseIdentity(rawIdentity)
	if err != nil {
		return nil, err
	}

	role := s.roles.Lookup(identity)
	token, claims, err := s.signer.GenerateAccessToken(identity, role, s.now(ctx), TokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	cred := &Credential{
		Token:     token,
		Identity:  identity,
		Role:      role,
		TokenID:   claims.TokenID,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	}
	s.metrics.IncrementIssued(role.String())
	s.logger.InfoContext(ctx, "token issued",
		"request_id", requestcontext.RequestID(ctx),
		"identity", identity.String(),
		"role", role.String(),
		"expires_at", cred.ExpiresAt,
	)
	s.emitIssued(ctx, cred)
	return cred, nil
}

func (s *Service) emitIssued(ctx context.Context, cred *Credential) {
	if s.auditor == nil {
		return
	}
	event := audit.FromContext(ctx, audit.EventTokenIssued)
	event.Identity = cred.Identity
	event.Role = cred.Role
	event.Detail = cred.TokenID
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"request_id", event.RequestID,
			"error", err,
		)
	}
}
