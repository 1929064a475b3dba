package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rolegate/pkg/domain"
	dErrors "rolegate/pkg/domain-errors"
)

func TestNewPolicy(t *testing.T) {
	t.Run("empty role set is rejected", func(t *testing.T) {
		_, err := NewPolicy("restart")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("empty operation is rejected", func(t *testing.T) {
		_, err := NewPolicy(" ", domain.RoleAdmin)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		_, err := NewPolicy("send", domain.RoleAdmin, domain.Role("root"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("duplicates collapse and order is kept", func(t *testing.T) {
		p, err := NewPolicy("send", domain.RoleAdmin, domain.RoleMod, domain.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, []domain.Role{domain.RoleAdmin, domain.RoleMod}, p.Roles())
		assert.Equal(t, "send", p.Operation())
	})

	t.Run("MustPolicy panics on empty set", func(t *testing.T) {
		assert.Panics(t, func() { MustPolicy("logs") })
	})
}

func TestPolicy_Permits(t *testing.T) {
	p := MustPolicy("send", domain.RoleAdmin, domain.RoleMod)

	assert.True(t, p.Permits(domain.RoleAdmin))
	assert.True(t, p.Permits(domain.RoleMod))
	assert.True(t, p.Permits(domain.RoleOwner), "owner bypasses every policy")
	assert.False(t, p.Permits(domain.RoleTeam))
	assert.False(t, p.Permits(domain.RoleMember))
	assert.False(t, p.Permits(domain.Role("")))
}

func TestPolicy_RolesIsACopy(t *testing.T) {
	p := MustPolicy("send", domain.RoleAdmin)
	roles := p.Roles()
	roles[0] = domain.RoleMember
	assert.True(t, p.Permits(domain.RoleAdmin))
	assert.False(t, p.Permits(domain.RoleMember))
}

func TestPolicy_ZeroValuePermitsOnlyOwner(t *testing.T) {
	var p Policy
	assert.True(t, p.IsZero())
	assert.True(t, p.Permits(domain.RoleOwner))
	for _, r := range []domain.Role{domain.RoleMember, domain.RoleTeam, domain.RoleMod, domain.RoleAdmin} {
		assert.False(t, p.Permits(r), r.String())
	}
}
