package access_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"rolegate/internal/access"
	"rolegate/internal/access/mocks"
	jwttoken "rolegate/internal/jwt_token"
	"rolegate/pkg/domain"
	"rolegate/pkg/platform/audit"
	"rolegate/pkg/requestcontext"
	"rolegate/pkg/testutil"
)

//go:generate mockgen -source=middleware.go -destination=mocks/mocks.go -package=mocks Authorizer,AuditPublisher
type GuardSuite struct {
	suite.Suite
	tokens    *jwttoken.JWTService
	publisher *mocks.MockAuditPublisher
	guard     *access.Guard
	handler   http.Handler
	reached   bool
}

func TestGuardSuite(t *testing.T) {
	suite.Run(t, new(GuardSuite))
}

func (s *GuardSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.publisher = mocks.NewMockAuditPublisher(ctrl)
	s.tokens = jwttoken.NewJWTService("guard-secret", "rolegate")

	engine, err := access.NewEngine(s.tokens)
	s.Require().NoError(err)
	s.guard, err = access.NewGuard(engine, slog.New(slog.NewTextHandler(io.Discard, nil)), access.WithAuditPublisher(s.publisher))
	s.Require().NoError(err)

	s.reached = false
	protected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.reached = true
		assert.Equal(s.T(), domain.Identity("mod@example.com"), requestcontext.Identity(r.Context()))
		assert.Equal(s.T(), domain.RoleMod, requestcontext.Role(r.Context()))
		assert.NotEmpty(s.T(), requestcontext.TokenID(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})
	s.handler = s.guard.Require(access.MustPolicy("send", domain.RoleAdmin, domain.RoleMod))(protected)
}

func (s *GuardSuite) mint(identity domain.Identity, role domain.Role) string {
	token, _, err := s.tokens.GenerateAccessToken(identity, role, time.Now(), 8*time.Hour)
	s.Require().NoError(err)
	return token
}

func (s *GuardSuite) expectDenial(reason access.Reason) {
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e audit.Event) error {
			assert.Equal(s.T(), string(audit.EventAccessDenied), e.Action)
			assert.Equal(s.T(), "send", e.Resource)
			assert.Equal(s.T(), "deny", e.Decision)
			assert.Equal(s.T(), string(reason), e.Reason)
			return nil
		})
}

func (s *GuardSuite) TestAllowedRequestReachesHandler() {
	req := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/send", nil), s.mint("mod@example.com", domain.RoleMod))

	rr := testutil.DoRequest(s.handler, req)

	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
	s.True(s.reached)
}

func (s *GuardSuite) TestMissingHeader() {
	s.expectDenial(access.ReasonNoToken)
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/send", nil)

	rr := testutil.DoRequest(s.handler, req)

	testutil.AssertError(s.T(), rr, http.StatusUnauthorized, "unauthorized", "no token")
	s.False(s.reached)
}

func (s *GuardSuite) TestEmptyBearerIsInvalid() {
	for _, header := range []string{"Bearer ", "Bearer"} {
		s.Run(header, func() {
			s.expectDenial(access.ReasonInvalidToken)
			req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/send", nil)
			req.Header.Set("Authorization", header)

			rr := testutil.DoRequest(s.handler, req)

			testutil.AssertError(s.T(), rr, http.StatusUnauthorized, "unauthorized", "invalid token")
			s.False(s.reached)
		})
	}
}

func (s *GuardSuite) TestMalformedCredential() {
	s.expectDenial(access.ReasonInvalidToken)
	req := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/send", nil), "garbage")

	rr := testutil.DoRequest(s.handler, req)

	testutil.AssertError(s.T(), rr, http.StatusUnauthorized, "unauthorized", "invalid token")
	s.False(s.reached)
}

func (s *GuardSuite) TestHeaderWithoutBearerPrefix() {
	s.expectDenial(access.ReasonInvalidToken)
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/send", nil)
	req.Header.Set("Authorization", s.mint("mod@example.com", domain.RoleMod))

	rr := testutil.DoRequest(s.handler, req)

	testutil.AssertError(s.T(), rr, http.StatusUnauthorized, "unauthorized", "invalid token")
}

func (s *GuardSuite) TestInsufficientRole() {
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e audit.Event) error {
			assert.Equal(s.T(), domain.Identity("random@x.com"), e.Identity)
			assert.Equal(s.T(), domain.RoleMember, e.Role)
			assert.Equal(s.T(), string(access.ReasonInsufficientRole), e.Reason)
			assert.Equal(s.T(), audit.CategorySecurity, e.Category)
			return nil
		})
	req := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/send", nil), s.mint("random@x.com", domain.RoleMember))

	rr := testutil.DoRequest(s.handler, req)

	testutil.AssertError(s.T(), rr, http.StatusForbidden, "forbidden", "insufficient role")
	s.False(s.reached)
}

func (s *GuardSuite) TestAuditFailureDoesNotChangeVerdict() {
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("sink down"))
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/send", nil)

	rr := testutil.DoRequest(s.handler, req)

	testutil.AssertError(s.T(), rr, http.StatusUnauthorized, "unauthorized", "no token")
}

func TestGuard_UsesAuthorizerPort(t *testing.T) {
	ctrl := gomock.NewController(t)
	authorizer := mocks.NewMockAuthorizer(ctrl)
	policy := access.MustPolicy("restart", domain.RoleAdmin)

	authorizer.EXPECT().Authorize(gomock.Any(), "tok", policy).Return(access.Decision{
		Allowed:  true,
		Identity: "owner@example.com",
		Role:     domain.RoleOwner,
		TokenID:  "jti-1",
	})

	guard, err := access.NewGuard(authorizer, nil)
	require.NoError(t, err)

	var seen domain.Role
	h := guard.Require(policy)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.Role(r.Context())
		assert.Equal(t, "jti-1", requestcontext.TokenID(r.Context()))
	}))

	req := testutil.WithBearer(testutil.NewJSONRequest(t, http.MethodPost, "/api/restart", nil), "tok")
	testutil.DoRequest(h, req)

	assert.Equal(t, domain.RoleOwner, seen)
}

func TestNewGuard_RequiresAuthorizer(t *testing.T) {
	_, err := access.NewGuard(nil, nil)
	require.Error(t, err)
}
