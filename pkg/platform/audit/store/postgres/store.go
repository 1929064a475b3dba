package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"rolegate/pkg/domain"
	audit "rolegate/pkg/platform/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id          UUID PRIMARY KEY,
	category    TEXT NOT NULL,
	action      TEXT NOT NULL,
	identity    TEXT NOT NULL DEFAULT '',
	role        TEXT NOT NULL DEFAULT '',
	resource    TEXT NOT NULL DEFAULT '',
	decision    TEXT NOT NULL DEFAULT '',
	reason      TEXT NOT NULL DEFAULT '',
	detail      TEXT NOT NULL DEFAULT '',
	request_id  TEXT NOT NULL DEFAULT '',
	client_ip   TEXT NOT NULL DEFAULT '',
	device      TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_events_identity_idx ON audit_events (identity, occurred_at);
`

// Store implements audit.Store on a single append-only table.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store. The caller owns db.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the audit table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

// Append inserts the event. Duplicate IDs are ignored so redelivery is harmless.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := event.ID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	query := `
		INSERT INTO audit_events (id, category, action, identity, role, resource, decision,
			reason, detail, request_id, client_ip, device, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		eventID,
		string(event.Category),
		event.Action,
		event.Identity.String(),
		event.Role.String(),
		event.Resource,
		event.Decision,
		event.Reason,
		event.Detail,
		event.RequestID,
		event.ClientIP,
		event.Device,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByIdentity returns events for identity, oldest first.
func (s *Store) ListByIdentity(ctx context.Context, identity domain.Identity) ([]audit.Event, error) {
	query := `
		SELECT id, category, action, identity, role, resource, decision, reason, detail,
			request_id, client_ip, device, occurred_at
		FROM audit_events
		WHERE identity = $1
		ORDER BY occurred_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, identity.String())
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e        audit.Event
			category string
			ident    string
			role     string
		)
		if err := rows.Scan(&e.ID, &category, &e.Action, &ident, &role, &e.Resource, &e.Decision,
			&e.Reason, &e.Detail, &e.RequestID, &e.ClientIP, &e.Device, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		e.Identity = domain.Identity(ident)
		e.Role = domain.Role(role)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
