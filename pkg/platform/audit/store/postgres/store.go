package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	audit "eventgate/pkg/platform/audit"
)

// Store persists audit events in the audit_events table. Inserts are
// idempotent on event id so a replayed event is stored once.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const columns = `id, category, occurred_at, COALESCE(user_id, ''), subject, action, decision, reason, email, ip, device, request_id, actor_id`

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	var userID *string
	if event.UserID != "" {
		userID = &event.UserID
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_events (id, category, occurred_at, user_id, subject, action, decision, reason, email, ip, device, request_id, actor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING`,
		event.ID, string(event.Category), event.Timestamp, userID, event.Subject, event.Action,
		event.Decision, event.Reason, event.Email, event.IP, event.Device, event.RequestID, event.ActorID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByUser returns a user's events oldest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]audit.Event, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+columns+` FROM audit_events WHERE user_id = $1 ORDER BY occurred_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return collect(rows)
}

// ListRecent returns the newest limit events across all users.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+columns+` FROM audit_events ORDER BY occurred_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent audit events: %w", err)
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]audit.Event, error) {
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (audit.Event, error) {
		var (
			e        audit.Event
			category string
		)
		err := row.Scan(&e.ID, &category, &e.Timestamp, &e.UserID, &e.Subject, &e.Action,
			&e.Decision, &e.Reason, &e.Email, &e.IP, &e.Device, &e.RequestID, &e.ActorID)
		e.Category = audit.EventCategory(category)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan audit events: %w", err)
	}
	return events, nil
}
