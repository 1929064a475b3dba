package domain

import (
	"strings"

	dErrors "rolegate/pkg/domain-errors"
)

// Role is a label from a closed, ordered set that determines which
// operations an identity may invoke.
// Invariant: the value is one of the declared constants.
//
// Usage: construct via ParseRole at trust boundaries (config, token claims);
// direct casting bypasses validation.
type Role string

// Supported roles, lowest privilege first.
const (
	RoleMember Role = "member"
	RoleTeam   Role = "team"
	RoleMod    Role = "mod"
	RoleAdmin  Role = "admin"
	// RoleOwner satisfies every policy regardless of the roles it lists.
	RoleOwner Role = "owner"
)

// DefaultRole is assigned to identities missing from the registry.
const DefaultRole = RoleMember

// roleRank is the single source of truth for valid roles and their order.
var roleRank = map[Role]int{
	RoleMember: 0,
	RoleTeam:   1,
	RoleMod:    2,
	RoleAdmin:  3,
	RoleOwner:  4,
}

// ParseRole constructs a Role from external input. Matching ignores case and
// surrounding whitespace.
//
// Errors: returns CodeInvalidInput when the value is empty or not a known role.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role: "+s)
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// IsOwner reports whether r carries universal permission.
func (r Role) IsOwner() bool {
	return r == RoleOwner
}

// Rank returns the position of r in the role order, or -1 for unknown roles.
func (r Role) Rank() int {
	if rank, ok := roleRank[r]; ok {
		return rank
	}
	return -1
}

func (r Role) String() string {
	return string(r)
}

// AllRoles returns every supported role, lowest privilege first.
func AllRoles() []Role {
	return []Role{RoleMember, RoleTeam, RoleMod, RoleAdmin, RoleOwner}
}
