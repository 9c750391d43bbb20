package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/google/uuid"

	id "healthhub/pkg/domain"
	audit "healthhub/pkg/platform/audit"
	txcontext "healthhub/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// Store implements audit.Store on the audit_events table.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the audit table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate audit_events: %w", err)
	}
	return nil
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append writes an audit event, inside the caller's transaction when present.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	var actorID *uuid.UUID
	if !event.ActorID.IsNil() {
		uid := uuid.UUID(event.ActorID)
		actorID = &uid
	}

	query := `
		INSERT INTO audit_events (
			id, category, action, patient_id, actor_id, actor_role,
			subject, request_id, client_ip, occurred_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(event.Action.Category()),
		string(event.Action),
		uuid.UUID(event.PatientID),
		actorID,
		string(event.ActorRole),
		event.Subject,
		event.RequestID,
		event.ClientIP,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByPatient returns a patient's events, newest first.
func (s *Store) ListByPatient(ctx context.Context, patientID id.PatientID) ([]audit.Event, error) {
	query := `
		SELECT action, patient_id, actor_id, actor_role, subject, request_id, client_ip, occurred_at
		FROM audit_events
		WHERE patient_id = $1
		ORDER BY occurred_at DESC, id
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(patientID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event   audit.Event
			action  string
			role    string
			patient uuid.UUID
			actor   uuid.NullUUID
		)
		if err := rows.Scan(&action, &patient, &actor, &role, &event.Subject, &event.RequestID, &event.ClientIP, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Action = audit.Action(action)
		event.PatientID = id.PatientID(patient)
		event.ActorRole = id.Role(role)
		if actor.Valid {
			event.ActorID = id.UserID(actor.UUID)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
