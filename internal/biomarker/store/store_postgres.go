package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"healthhub/internal/biomarker/models"
	id "healthhub/pkg/domain"
	"healthhub/pkg/platform/sentinel"
	txcontext "healthhub/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// PostgresStore persists biomarker records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed record store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the records table and index if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate biomarker_records: %w", err)
	}
	return nil
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, record *models.Record) error {
	query := `
		INSERT INTO biomarker_records (
			id, patient_id, name, value_number, value_text, unit, status, trend, measured_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(record.ID),
		uuid.UUID(record.PatientID),
		record.Name,
		nullFloat(record.Value.Number),
		record.Value.Text,
		record.Unit,
		string(record.Status),
		string(record.Trend),
		record.Timestamp,
		record.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert biomarker record: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByPatient(ctx context.Context, patientID id.PatientID) ([]models.Record, error) {
	query := `
		SELECT id, patient_id, name, value_number, value_text, unit, status, trend, measured_at, created_at
		FROM biomarker_records
		WHERE patient_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(patientID))
	if err != nil {
		return nil, fmt.Errorf("list biomarker records: %w", err)
	}
	defer rows.Close()

	records := make([]models.Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate biomarker records: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) CountByPatient(ctx context.Context, patientID id.PatientID) (int, error) {
	var count int
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM biomarker_records WHERE patient_id = $1`,
		uuid.UUID(patientID),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count biomarker records: %w", err)
	}
	return count, nil
}

func scanRecord(rows *sql.Rows) (models.Record, error) {
	var (
		recordID  uuid.UUID
		patientID uuid.UUID
		number    sql.NullFloat64
		status    string
		trend     string
		record    models.Record
	)
	err := rows.Scan(
		&recordID,
		&patientID,
		&record.Name,
		&number,
		&record.Value.Text,
		&record.Unit,
		&status,
		&trend,
		&record.Timestamp,
		&record.CreatedAt,
	)
	if err != nil {
		return models.Record{}, fmt.Errorf("scan biomarker record: %w", err)
	}
	record.ID = id.RecordID(recordID)
	record.PatientID = id.PatientID(patientID)
	record.Status = models.Status(status)
	record.Trend = models.Trend(trend)
	if number.Valid {
		record.Value.Number = &number.Float64
	}
	return record, nil
}

func nullFloat(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *value, Valid: true}
}

