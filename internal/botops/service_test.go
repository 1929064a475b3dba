package botops

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rolegate/pkg/domain"
	dErrors "rolegate/pkg/domain-errors"
	"rolegate/pkg/platform/audit"
	"rolegate/pkg/platform/audit/publisher"
	"rolegate/pkg/platform/audit/store/memory"
	"rolegate/pkg/requestcontext"
)

func newTestService(t *testing.T) (*Service, *memory.InMemoryStore) {
	t.Helper()
	store := memory.NewInMemoryStore()
	pub := publisher.NewPublisher(store)
	t.Cleanup(pub.Close)

	svc, err := New(NewActivityLog(10), WithAuditPublisher(pub))
	require.NoError(t, err)
	return svc, store
}

func principalCtx(identity domain.Identity, role domain.Role, now time.Time) context.Context {
	ctx := requestcontext.WithPrincipal(context.Background(), identity, role)
	return requestcontext.WithTime(ctx, now)
}

func TestNewSendCommand(t *testing.T) {
	cmd, err := NewSendCommand(" whatsapp ", "hello")
	require.NoError(t, err)
	assert.Equal(t, "whatsapp", cmd.Channel)

	_, err = NewSendCommand("", "hello")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.ErrorIs(t, err, dErrors.New(dErrors.CodeValidation, "channel required"))

	_, err = NewSendCommand("discord", "   ")
	assert.ErrorIs(t, err, dErrors.New(dErrors.CodeValidation, "message required"))
}

func TestService_Send(t *testing.T) {
	svc, store := newTestService(t)
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	ctx := principalCtx("mod@example.com", domain.RoleMod, now)

	sentTo, err := svc.Send(ctx, SendCommand{Channel: "discord", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "discord", sentTo)

	logs := svc.Logs(ctx)
	require.Len(t, logs, 1)
	assert.Equal(t, "Sent message to discord by mod@example.com", logs[0].Text)
	assert.True(t, now.Equal(logs[0].At))

	events, err := store.ListByIdentity(ctx, "mod@example.com")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, string(audit.EventMessageSent), events[0].Action)
	assert.Equal(t, "discord", events[0].Detail)
	assert.Equal(t, domain.RoleMod, events[0].Role)
	assert.Equal(t, string(audit.EventLogsViewed), events[1].Action)
}

func TestService_Restart(t *testing.T) {
	svc, store := newTestService(t)
	ctx := principalCtx("admin@example.com", domain.RoleAdmin, time.Now())

	require.NoError(t, svc.Restart(ctx))

	events, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventBotRestarted), events[0].Action)
	assert.Equal(t, "restart", events[0].Resource)
}

func TestService_LogsFallsBackToSampleLines(t *testing.T) {
	svc, _ := newTestService(t)
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	logs := svc.Logs(principalCtx("admin@example.com", domain.RoleAdmin, now))

	require.Len(t, logs, 2)
	assert.Equal(t, "Started bot", logs[0].Text)
	assert.Equal(t, "Received message from +491...", logs[1].Text)
	assert.True(t, logs[0].At.Before(logs[1].At))
	assert.True(t, logs[1].At.Before(now))
}

func TestService_WorksWithoutAuditPublisher(t *testing.T) {
	svc, err := New(NewActivityLog(5))
	require.NoError(t, err)

	require.NoError(t, svc.Restart(context.Background()))
	assert.Len(t, svc.Logs(context.Background()), 1)
}

func TestNew_RequiresActivityLog(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
