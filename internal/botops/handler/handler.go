// Package handler exposes the guarded bot-control endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rolegate/internal/access"
	"rolegate/internal/botops"
	"rolegate/pkg/platform/httputil"
	"rolegate/pkg/platform/middleware/request"
)

type Service interface {
	Send(ctx context.Context, cmd botops.SendCommand) (string, error)
	Restart(ctx context.Context) error
	Logs(ctx context.Context) []botops.Entry
}

// Guard wraps a handler so it only runs when policy is satisfied.
type Guard interface {
	Require(policy access.Policy) func(http.Handler) http.Handler
}

type Handler struct {
	service Service
	guard   Guard
	logger  *slog.Logger
}

func New(service Service, guard Guard, logger *slog.Logger) *Handler {
	return &Handler{service: service, guard: guard, logger: logger}
}

// Register mounts each route behind its own policy.
func (h *Handler) Register(r chi.Router) {
	r.With(h.guard.Require(SendPolicy)).Post("/api/send", h.HandleSend)
	r.With(h.guard.Require(RestartPolicy)).Post("/api/restart", h.HandleRestart)
	r.With(h.guard.Require(LogsPolicy)).Get("/api/logs", h.HandleLogs)
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SendRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sentTo, err := h.service.Send(ctx, req.cmd)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to send message",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &SendResponse{OK: true, SentTo: sentTo})
}

func (h *Handler) HandleRestart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.Restart(ctx); err != nil {
		h.logger.ErrorContext(ctx, "failed to restart bot",
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &RestartResponse{OK: true, Restarted: true})
}

func (h *Handler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	entries := h.service.Logs(r.Context())
	lines := make([]LogLine, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, LogLine{TS: e.At.UnixMilli(), Text: e.Text})
	}
	httputil.WriteJSON(w, http.StatusOK, &LogsResponse{OK: true, Logs: lines})
}
