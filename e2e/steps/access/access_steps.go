package access

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"github.com/golang-jwt/jwt/v5"
)

type TestContext interface {
	POST(path string, body any, headers map[string]string) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	SetToken(identity, token string)
	CurrentToken() string
}

// RegisterSteps registers login and guarded-operation steps. signingKey is
// the server's JWT_SECRET, needed only to forge an already-expired credential.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext, signingKey string) {
	steps := &accessSteps{tc: tc, signingKey: signingKey}

	ctx.Step(`^I log in as "([^"]*)"$`, steps.logIn)
	ctx.Step(`^I log in without an email$`, steps.logInWithoutEmail)
	ctx.Step(`^I hold a credential for "([^"]*)" with role "([^"]*)" that expired an hour ago$`, steps.expiredCredential)
	ctx.Step(`^I hold a credential for "([^"]*)" with role "([^"]*)" signed with "([^"]*)"$`, steps.foreignCredential)
	ctx.Step(`^I send "([^"]*)" to channel "([^"]*)"$`, steps.send)
	ctx.Step(`^I restart the bot$`, steps.restart)
	ctx.Step(`^I read the bot logs$`, steps.readLogs)
	ctx.Step(`^I read the bot logs without a token$`, steps.readLogsAnonymously)
}

type accessSteps struct {
	tc         TestContext
	signingKey string
}

func (s *accessSteps) bearer() map[string]string {
	return map[string]string{"Authorization": "Bearer " + s.tc.CurrentToken()}
}

func (s *accessSteps) logIn(ctx context.Context, email string) error {
	if err := s.tc.POST("/api/login", map[string]string{"email": email}, nil); err != nil {
		return err
	}
	token, err := s.tc.GetResponseField("token")
	if err != nil {
		return err
	}
	str, ok := token.(string)
	if !ok {
		return fmt.Errorf("token is not a string: %v", token)
	}
	s.tc.SetToken(email, str)
	return nil
}

func (s *accessSteps) logInWithoutEmail(ctx context.Context) error {
	return s.tc.POST("/api/login", map[string]string{}, nil)
}

func (s *accessSteps) forge(email, role, key string, issuedAt time.Time) error {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"role":  role,
		"sub":   email,
		"iss":   "rolegate",
		"iat":   issuedAt.Unix(),
		"exp":   issuedAt.Add(8 * time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(key))
	if err != nil {
		return err
	}
	s.tc.SetToken(email, signed)
	return nil
}

func (s *accessSteps) expiredCredential(ctx context.Context, email, role string) error {
	return s.forge(email, role, s.signingKey, time.Now().Add(-9*time.Hour))
}

func (s *accessSteps) foreignCredential(ctx context.Context, email, role, key string) error {
	return s.forge(email, role, key, time.Now())
}

func (s *accessSteps) send(ctx context.Context, message, channel string) error {
	return s.tc.POST("/api/send", map[string]string{"channel": channel, "message": message}, s.bearer())
}

func (s *accessSteps) restart(ctx context.Context) error {
	return s.tc.POST("/api/restart", nil, s.bearer())
}

func (s *accessSteps) readLogs(ctx context.Context) error {
	return s.tc.GET("/api/logs", s.bearer())
}

func (s *accessSteps) readLogsAnonymously(ctx context.Context) error {
	return s.tc.GET("/api/logs", nil)
}
