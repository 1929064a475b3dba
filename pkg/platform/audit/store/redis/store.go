package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	audit "rolegate/pkg/platform/audit"
)

// DefaultStream is the stream key audit events are appended to.
const DefaultStream = "rolegate:audit"

// Store appends audit events to a capped Redis stream. Each entry stores the
// event JSON under the "event" field plus a few indexable fields.
type Store struct {
	client redis.UniversalClient
	stream string
	maxLen int64
}

type Option func(*Store)

func WithStream(name string) Option {
	return func(s *Store) {
		s.stream = name
	}
}

// WithMaxLen caps the stream (approximate trimming).
func WithMaxLen(n int64) Option {
	return func(s *Store) {
		s.maxLen = n
	}
}

func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client: client,
		stream: DefaultStream,
		maxLen: 100_000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]any{
			"action":   event.Action,
			"category": string(event.Category),
			"identity": event.Identity.String(),
			"event":    payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd audit event: %w", err)
	}
	return nil
}

// ListRecent returns up to limit of the newest events, oldest first.
func (s *Store) ListRecent(ctx context.Context, limit int64) ([]audit.Event, error) {
	msgs, err := s.client.XRevRangeN(ctx, s.stream, "+", "-", limit).Result()
	if err != nil {
		return nil, fmt.Errorf("xrevrange audit stream: %w", err)
	}
	events := make([]audit.Event, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		raw, ok := msgs[i].Values["event"].(string)
		if !ok {
			continue
		}
		var e audit.Event
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("decode audit event %s: %w", msgs[i].ID, err)
		}
		events = append(events, e)
	}
	return events, nil
}
