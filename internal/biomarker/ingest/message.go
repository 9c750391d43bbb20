// Package ingest consumes biomarker analysis results published by the upload
// pipeline and appends them to patient records.
package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"healthhub/internal/biomarker/models"
	"healthhub/internal/biomarker/service"
	id "healthhub/pkg/domain"
)

// Message is the JSON payload on the analysis topic.
type Message struct {
	PatientID string       `json:"patient_id"`
	Name      string       `json:"name"`
	Value     models.Value `json:"value"`
	Unit      string       `json:"unit"`
	Status    string       `json:"status"`
	Trend     string       `json:"trend,omitempty"`
	Timestamp string       `json:"timestamp"`
}

// recordNamespace scopes the name-based record IDs derived from topic offsets.
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("healthhub:biomarker-ingest"))

// RecordIDFor derives a stable record ID from a message's position in the log,
// so a redelivered message maps to the record it already produced.
func RecordIDFor(topic string, partition int32, offset int64) id.RecordID {
	return id.RecordID(uuid.NewSHA1(recordNamespace, fmt.Appendf(nil, "%s/%d/%d", topic, partition, offset)))
}

// Decode parses one message into a batch entry. Field validation beyond the
// patient ID is left to the service.
func Decode(raw []byte) (service.BatchEntry, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return service.BatchEntry{}, fmt.Errorf("decode analysis message: %w", err)
	}
	patientID, err := id.ParsePatientID(msg.PatientID)
	if err != nil {
		return service.BatchEntry{}, fmt.Errorf("decode analysis message: %w", err)
	}
	return service.BatchEntry{
		PatientID: patientID,
		Input: models.RecordInput{
			Name:      msg.Name,
			Value:     msg.Value,
			Unit:      msg.Unit,
			Status:    models.Status(msg.Status),
			Trend:     models.Trend(msg.Trend),
			Timestamp: msg.Timestamp,
		},
	}, nil
}
