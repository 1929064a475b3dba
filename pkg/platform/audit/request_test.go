package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rolegate/pkg/domain"
	"rolegate/pkg/requestcontext"
)

func TestFromContext(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	ctx = requestcontext.WithPrincipal(ctx, "mod@example.com", domain.RoleMod)
	ctx = requestcontext.WithClientMetadata(ctx, "10.0.0.1", "curl/8.0", "bot:curl")

	e := FromContext(ctx, EventMessageSent)

	assert.Equal(t, "message_sent", e.Action)
	assert.Equal(t, CategoryOperations, e.Category)
	assert.True(t, now.Equal(e.Timestamp))
	assert.Equal(t, domain.Identity("mod@example.com"), e.Identity)
	assert.Equal(t, domain.RoleMod, e.Role)
	assert.Equal(t, "req-1", e.RequestID)
	assert.Equal(t, "10.0.0.1", e.ClientIP)
	assert.Equal(t, "bot:curl", e.Device)
}

func TestFromContext_EmptyContext(t *testing.T) {
	e := FromContext(context.Background(), EventAccessDenied)

	assert.Equal(t, CategorySecurity, e.Category)
	assert.Empty(t, e.Identity)
	assert.Empty(t, e.RequestID)
	assert.False(t, e.Timestamp.IsZero())
}
