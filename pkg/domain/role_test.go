package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "rolegate/pkg/domain-errors"
)

func TestParseRole(t *testing.T) {
	t.Run("accepts every declared role", func(t *testing.T) {
		for _, want := range AllRoles() {
			got, err := ParseRole(want.String())
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("normalizes case and whitespace", func(t *testing.T) {
		got, err := ParseRole("  Admin ")
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, got)
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseRole("  ")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := ParseRole("superuser")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestRole_Order(t *testing.T) {
	roles := AllRoles()
	for i := 1; i < len(roles); i++ {
		assert.Less(t, roles[i-1].Rank(), roles[i].Rank(), "%s should rank below %s", roles[i-1], roles[i])
	}
	assert.Equal(t, -1, Role("ghost").Rank())
}

func TestRole_IsOwner(t *testing.T) {
	for _, r := range AllRoles() {
		assert.Equal(t, r == RoleOwner, r.IsOwner(), r.String())
	}
	assert.Equal(t, RoleMember, DefaultRole)
}

func TestParseIdentity(t *testing.T) {
	t.Run("keeps whitespace", func(t *testing.T) {
		id, err := ParseIdentity("  admin@example.com ")
		require.NoError(t, err)
		assert.Equal(t, Identity("  admin@example.com "), id)
	})

	t.Run("accepts whitespace-only", func(t *testing.T) {
		id, err := ParseIdentity("   ")
		require.NoError(t, err)
		assert.Equal(t, "   ", id.String())
	})

	t.Run("does not change case", func(t *testing.T) {
		id, err := ParseIdentity("Admin@Example.com")
		require.NoError(t, err)
		assert.Equal(t, "Admin@Example.com", id.String())
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseIdentity("")
		require.ErrorIs(t, err, dErrors.New(dErrors.CodeValidation, "email required"))
	})

	t.Run("has no length limit", func(t *testing.T) {
		long := strings.Repeat("a", 300)
		id, err := ParseIdentity(long)
		require.NoError(t, err)
		assert.Equal(t, long, id.String())
	})
}
