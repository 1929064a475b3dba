package access

import (
	"rolegate/pkg/domain"
	dErrors "rolegate/pkg/domain-errors"
)

// Reason explains a denial. The three values are distinct on purpose:
// callers and tests can tell "nothing presented" from "presented but bad"
// from "valid but not enough".
type Reason string

const (
	ReasonNoToken          Reason = "no token"
	ReasonInvalidToken     Reason = "invalid token"
	ReasonInsufficientRole Reason = "insufficient role"
)

// Decision is the verdict of one authorization check. A denial is an
// ordinary value, not an error.
type Decision struct {
	Allowed bool
	Reason  Reason

	// Set whenever the credential verified, including insufficient-role denials.
	Identity domain.Identity
	Role     domain.Role
	TokenID  string

	// Cause is the verification failure behind an "invalid token" denial.
	// It is for server-side logs only and never rendered to the caller.
	Cause error
}

// Outcome is the metrics/audit label for the verdict.
func (d Decision) Outcome() string {
	if d.Allowed {
		return "allow"
	}
	return "deny"
}

// Err converts a denial into the coded error the HTTP edge renders.
// Returns nil for an allow.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == ReasonInsufficientRole:
		return dErrors.New(dErrors.CodeForbidden, string(d.Reason))
	default:
		return dErrors.New(dErrors.CodeUnauthorized, string(d.Reason))
	}
}

func deny(reason Reason) Decision {
	return Decision{Reason: reason}
}
