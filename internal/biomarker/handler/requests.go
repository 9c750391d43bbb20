package handler

import (
	"strings"
	"unicode/utf8"

	"healthhub/internal/biomarker/models"
	dErrors "healthhub/pkg/domain-errors"
)

const (
	maxUnitLength      = 32
	maxTimestampLength = 64
	maxTextValueLength = 256
)

// RecordRequest is the HTTP request body for POST /patients/{patientID}/biomarkers.
type RecordRequest struct {
	Name      string       `json:"name"`
	Value     models.Value `json:"value"`
	Unit      string       `json:"unit"`
	Status    string       `json:"status"`
	Trend     string       `json:"trend,omitempty"`
	Timestamp string       `json:"timestamp"`
}

// Validate validates the request shape. Field semantics are enforced by the
// record constructor.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RecordRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	// Size validation (fail fast)
	if utf8.RuneCountInString(r.Unit) > maxUnitLength {
		return dErrors.New(dErrors.CodeValidation, "unit must be at most 32 characters")
	}
	if utf8.RuneCountInString(r.Timestamp) > maxTimestampLength {
		return dErrors.New(dErrors.CodeValidation, "timestamp must be at most 64 characters")
	}
	if utf8.RuneCountInString(r.Value.Text) > maxTextValueLength {
		return dErrors.New(dErrors.CodeValidation, "value must be at most 256 characters")
	}

	// Required fields
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.Value.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "value is required")
	}
	if strings.TrimSpace(r.Status) == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	if strings.TrimSpace(r.Timestamp) == "" {
		return dErrors.New(dErrors.CodeValidation, "timestamp is required")
	}
	return nil
}

// ToInput converts the request into the service input.
func (r *RecordRequest) ToInput() models.RecordInput {
	return models.RecordInput{
		Name:      r.Name,
		Value:     r.Value,
		Unit:      r.Unit,
		Status:    models.Status(r.Status),
		Trend:     models.Trend(r.Trend),
		Timestamp: r.Timestamp,
	}
}
