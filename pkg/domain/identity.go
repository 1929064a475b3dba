package domain

import (
	dErrors "rolegate/pkg/domain-errors"
)

// Identity is the subject a credential is issued for, usually an email address.
// It is opaque: registry lookups are exact string matches, so whitespace and
// case are significant.
type Identity string

// ParseIdentity rejects only the empty string. No trimming, length limit or
// format check is applied.
func ParseIdentity(s string) (Identity, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "email required")
	}
	return Identity(s), nil
}

func (i Identity) String() string {
	return string(i)
}

// IsNil returns true if the identity is empty.
func (i Identity) IsNil() bool {
	return i == ""
}
