package handler

import (
	dErrors "rolegate/pkg/domain-errors"
)

// LoginRequest asks for a credential for Email. The value is passed on
// verbatim; only an absent or empty email is rejected.
type LoginRequest struct {
	Email string `json:"email"`
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email required")
	}
	return nil
}
