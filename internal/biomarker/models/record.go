package models

import (
	"strings"
	"time"
	"unicode/utf8"

	id "healthhub/pkg/domain"
	dErrors "healthhub/pkg/domain-errors"
)

const maxNameLength = 128

// Record is an immutable biomarker snapshot appended by the upload/analysis
// pipeline or by a clinician.
//
// Invariants:
//   - Name is non-empty and at most 128 characters
//   - Status is one of normal, elevated, low, critical
//   - Trend is empty or one of up, down, stable
//   - Timestamp is non-empty; it is kept as received and parsed lazily
//   - PatientID is immutable after construction
type Record struct {
	ID        id.RecordID  `json:"id"`
	PatientID id.PatientID `json:"patient_id"`
	Name      string       `json:"name"`
	Value     Value        `json:"value"`
	Unit      string       `json:"unit"`
	Status    Status       `json:"status"`
	Trend     Trend        `json:"trend,omitempty"`
	Timestamp string       `json:"timestamp"`
	CreatedAt time.Time    `json:"created_at"`
}

// RecordInput carries the caller-supplied fields of a new record.
type RecordInput struct {
	Name      string
	Value     Value
	Unit      string
	Status    Status
	Trend     Trend
	Timestamp string
}

// Normalize trims whitespace and lowercases enum fields.
func (in *RecordInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	in.Status = Status(strings.ToLower(strings.TrimSpace(string(in.Status))))
	in.Trend = Trend(strings.ToLower(strings.TrimSpace(string(in.Trend))))
	in.Timestamp = strings.TrimSpace(in.Timestamp)
}

func NewRecord(recordID id.RecordID, patientID id.PatientID, in RecordInput, now time.Time) (*Record, error) {
	if patientID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "patient_id cannot be empty")
	}
	if in.Name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "name cannot be empty")
	}
	if utf8.RuneCountInString(in.Name) > maxNameLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "name must be 128 characters or less")
	}
	if in.Value.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "value cannot be empty")
	}
	if !in.Status.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "status must be one of normal, elevated, low, critical")
	}
	if !in.Trend.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "trend must be one of up, down, stable")
	}
	if in.Timestamp == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "timestamp cannot be empty")
	}
	return &Record{
		ID:        recordID,
		PatientID: patientID,
		Name:      in.Name,
		Value:     in.Value,
		Unit:      in.Unit,
		Status:    in.Status,
		Trend:     in.Trend,
		Timestamp: in.Timestamp,
		CreatedAt: now,
	}, nil
}
