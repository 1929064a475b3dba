package jwttoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"rolegate/pkg/domain"
	dErrors "rolegate/pkg/domain-errors"
	"rolegate/pkg/platform/sentinel"
)

// Claims represents the JWT claims carried by access tokens.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// VerifiedClaims is the validated, typed view of a token.
type VerifiedClaims struct {
	Identity  domain.Identity
	Role      domain.Role
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// JWTService handles JWT creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	now        func() time.Time
}

type Option func(*JWTService)

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) {
		s.now = now
	}
}

func NewJWTService(signingKey string, issuer string, opts ...Option) *JWTService {
	s := &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateAccessToken signs a token binding identity and role for the window
// [issuedAt, issuedAt+expiresIn).
func (s *JWTService) GenerateAccessToken(
	identity domain.Identity,
	role domain.Role,
	issuedAt time.Time,
	expiresIn time.Duration) (string, *VerifiedClaims, error) {
	jti := uuid.NewString()
	expiresAt := issuedAt.Add(expiresIn)

	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: identity.String(),
		Role:  role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    s.issuer,
			ID:        jti,
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", nil, fmt.Errorf("sign access token: %w", err)
	}
	return signedToken, &VerifiedClaims{
		Identity:  identity,
		Role:      role,
		TokenID:   jti,
		IssuedAt:  issuedAt.Truncate(time.Second),
		ExpiresAt: expiresAt.Truncate(time.Second),
	}, nil
}

// ValidateToken verifies signature, issuer and expiry and returns typed claims.
// Every failure carries the same client-facing message; the wrapped sentinel
// (ErrExpired or ErrMalformed) is for logs only.
func (s *JWTService) ValidateToken(tokenString string) (*VerifiedClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, invalid(sentinel.ErrExpired)
		}
		return nil, invalid(fmt.Errorf("%w: %v", sentinel.ErrMalformed, err))
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, invalid(sentinel.ErrMalformed)
	}

	identity, err := domain.ParseIdentity(claims.Email)
	if err != nil || identity.String() != claims.Subject {
		return nil, invalid(fmt.Errorf("%w: subject mismatch", sentinel.ErrMalformed))
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil || role.String() != claims.Role {
		return nil, invalid(fmt.Errorf("%w: unknown role", sentinel.ErrMalformed))
	}

	return &VerifiedClaims{
		Identity:  identity,
		Role:      role,
		TokenID:   claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func invalid(cause error) error {
	return dErrors.Wrap(cause, dErrors.CodeUnauthorized, "invalid token")
}
