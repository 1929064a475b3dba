// Package handler exposes credential issuance over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rolegate/internal/issuer"
	dErrors "rolegate/pkg/domain-errors"
	"rolegate/pkg/platform/httputil"
	"rolegate/pkg/platform/middleware/request"
)

// Service issues credentials.
type Service interface {
	Issue(ctx context.Context, identity string) (*issuer.Credential, error)
}

type Handler struct {
	issuer Service
	logger *slog.Logger
}

func New(issuer Service, logger *slog.Logger) *Handler {
	return &Handler{issuer: issuer, logger: logger}
}

// Register mounts the unauthenticated login route.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/login", h.HandleLogin)
}

// HandleLogin issues a credential for the posted email. Unregistered emails
// receive the member role; there is no password check.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cred, err := h.issuer.Issue(ctx, req.Email)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "failed to issue token",
				"request_id", requestID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &LoginResponse{
		Token:     cred.Token,
		Role:      cred.Role.String(),
		ExpiresAt: cred.ExpiresAt,
	})
}
