// Package roles holds the static identity-to-role registry consulted at token
// issuance. The registry is built once at startup and never mutated.
package roles

import (
	"fmt"
	"strings"

	"rolegate/pkg/domain"
	dErrors "rolegate/pkg/domain-errors"
)

// Registry maps identities to roles. The zero value is an empty registry in
// which every identity resolves to domain.DefaultRole.
type Registry struct {
	entries map[domain.Identity]domain.Role
}

// NewRegistry copies entries so later changes to the caller's map are not
// observed.
func NewRegistry(entries map[domain.Identity]domain.Role) (*Registry, error) {
	copied := make(map[domain.Identity]domain.Role, len(entries))
	for identity, role := range entries {
		if identity.IsNil() {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "registry identity cannot be empty")
		}
		if !role.IsValid() {
			return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("registry role for %s is invalid", identity))
		}
		copied[identity] = role
	}
	return &Registry{entries: copied}, nil
}

// DefaultEntries is the seeded demo registry.
func DefaultEntries() map[domain.Identity]domain.Role {
	return map[domain.Identity]domain.Role{
		"owner@example.com": domain.RoleOwner,
		"admin@example.com": domain.RoleAdmin,
		"mod@example.com":   domain.RoleMod,
		"team@example.com":  domain.RoleTeam,
	}
}

// ParseEntries reads "identity=role" pairs separated by commas, e.g.
// "alice@x.com=admin,bob@x.com=mod". Later duplicates win.
func ParseEntries(raw string) (map[domain.Identity]domain.Role, error) {
	entries := make(map[domain.Identity]domain.Role)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		rawIdentity, rawRole, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("registry entry %q must be identity=role", pair))
		}
		identity, err := domain.ParseIdentity(strings.TrimSpace(rawIdentity))
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, fmt.Sprintf("registry entry %q has no identity", pair))
		}
		role, err := domain.ParseRole(rawRole)
		if err != nil {
			return nil, err
		}
		entries[identity] = role
	}
	return entries, nil
}

// Lookup returns the registered role for identity, or domain.DefaultRole.
func (r *Registry) Lookup(identity domain.Identity) domain.Role {
	if r == nil {
		return domain.DefaultRole
	}
	if role, ok := r.entries[identity]; ok {
		return role
	}
	return domain.DefaultRole
}

// Len returns the number of registered identities.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}
