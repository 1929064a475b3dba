package access

import (
	"fmt"
	"strings"

	"rolegate/pkg/domain"
	dErrors "rolegate/pkg/domain-errors"
)

// Policy is the set of roles permitted to invoke one protected operation.
// Invariant: the set is non-empty and holds only valid roles. The owner role
// is permitted whether or not it is listed.
type Policy struct {
	operation string
	roles     []domain.Role
	allowed   map[domain.Role]struct{}
}

// NewPolicy builds a policy for operation. Duplicate roles are collapsed.
func NewPolicy(operation string, roles ...domain.Role) (Policy, error) {
	operation = strings.TrimSpace(operation)
	if operation == "" {
		return Policy{}, dErrors.New(dErrors.CodeInvalidInput, "policy operation cannot be empty")
	}
	if len(roles) == 0 {
		return Policy{}, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("policy for %s must permit at least one role", operation))
	}

	p := Policy{
		operation: operation,
		allowed:   make(map[domain.Role]struct{}, len(roles)),
	}
	for _, r := range roles {
		if !r.IsValid() {
			return Policy{}, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("policy for %s lists unknown role %q", operation, r))
		}
		if _, dup := p.allowed[r]; dup {
			continue
		}
		p.allowed[r] = struct{}{}
		p.roles = append(p.roles, r)
	}
	return p, nil
}

// MustPolicy is NewPolicy for route tables built at startup.
func MustPolicy(operation string, roles ...domain.Role) Policy {
	p, err := NewPolicy(operation, roles...)
	if err != nil {
		panic(err)
	}
	return p
}

// Permits applies the decision rule: role is listed, or role is owner.
func (p Policy) Permits(role domain.Role) bool {
	if role.IsOwner() {
		return true
	}
	_, ok := p.allowed[role]
	return ok
}

// Operation names the guarded operation.
func (p Policy) Operation() string {
	return p.operation
}

// Roles returns the declared roles in declaration order.
func (p Policy) Roles() []domain.Role {
	return append([]domain.Role(nil), p.roles...)
}

// IsZero reports whether p was never constructed.
func (p Policy) IsZero() bool {
	return len(p.allowed) == 0
}
