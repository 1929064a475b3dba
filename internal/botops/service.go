// Package botops implements the stub bot-control operations. Nothing here
// talks to a real messaging platform; operations are recorded as activity
// and audit events.
package botops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	dErrors "rolegate/pkg/domain-errors"
	"rolegate/pkg/platform/audit"
	"rolegate/pkg/requestcontext"
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// SendCommand is a validated outbound message.
type SendCommand struct {
	Channel string
	Message string
}

func NewSendCommand(channel, message string) (SendCommand, error) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return SendCommand{}, dErrors.New(dErrors.CodeValidation, "channel required")
	}
	if strings.TrimSpace(message) == "" {
		return SendCommand{}, dErrors.New(dErrors.CodeValidation, "message required")
	}
	return SendCommand{Channel: channel, Message: message}, nil
}

// Service runs bot operations on behalf of an already-authorized principal
// taken from the request context.
type Service struct {
	activity *ActivityLog
	auditor  AuditPublisher
	logger   *slog.Logger
}

type Option func(*Service)

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(activity *ActivityLog, opts ...Option) (*Service, error) {
	if activity == nil {
		return nil, errors.New("activity log is required")
	}
	s := &Service{
		activity: activity,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Send pretends to deliver cmd and returns the channel it was sent to.
func (s *Service) Send(ctx context.Context, cmd SendCommand) (string, error) {
	identity := requestcontext.Identity(ctx)
	s.activity.Record(Entry{
		At:   requestcontext.Now(ctx),
		Text: fmt.Sprintf("Sent message to %s by %s", cmd.Channel, identity),
	})
	s.logger.InfoContext(ctx, "message sent",
		"request_id", requestcontext.RequestID(ctx),
		"identity", identity.String(),
		"channel", cmd.Channel,
	)

	event := audit.FromContext(ctx, audit.EventMessageSent)
	event.Resource = "send"
	event.Detail = cmd.Channel
	s.emit(ctx, event)
	return cmd.Channel, nil
}

// Restart pretends to restart the bot.
func (s *Service) Restart(ctx context.Context) error {
	identity := requestcontext.Identity(ctx)
	s.activity.Record(Entry{
		At:   requestcontext.Now(ctx),
		Text: "Restart triggered by " + identity.String(),
	})
	s.logger.InfoContext(ctx, "bot restart triggered",
		"request_id", requestcontext.RequestID(ctx),
		"identity", identity.String(),
	)

	event := audit.FromContext(ctx, audit.EventBotRestarted)
	event.Resource = "restart"
	s.emit(ctx, event)
	return nil
}

// Logs returns recent activity, oldest first. Before anything has happened it
// returns two sample lines so the dashboard has something to show.
func (s *Service) Logs(ctx context.Context) []Entry {
	event := audit.FromContext(ctx, audit.EventLogsViewed)
	event.Resource = "logs"
	s.emit(ctx, event)

	if entries := s.activity.Snapshot(); len(entries) > 0 {
		return entries
	}
	now := requestcontext.Now(ctx)
	return []Entry{
		{At: now.Add(-10 * time.Second), Text: "Started bot"},
		{At: now.Add(-5 * time.Second), Text: "Received message from +491..."},
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"request_id", event.RequestID,
			"error", err,
		)
	}
}
