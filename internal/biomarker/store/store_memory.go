package store

import (
	"context"
	"sync"

	"healthhub/internal/biomarker/models"
	id "healthhub/pkg/domain"
	"healthhub/pkg/platform/sentinel"
)

// InMemory keeps records per patient in append order. Reads return copies.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.PatientID][]models.Record
	ids     map[id.RecordID]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{
		records: make(map[id.PatientID][]models.Record),
		ids:     make(map[id.RecordID]struct{}),
	}
}

func (s *InMemory) Append(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ids[record.ID]; exists {
		return sentinel.ErrConflict
	}
	s.ids[record.ID] = struct{}{}
	s.records[record.PatientID] = append(s.records[record.PatientID], *record)
	return nil
}

func (s *InMemory) ListByPatient(_ context.Context, patientID id.PatientID) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Record{}, s.records[patientID]...), nil
}

func (s *InMemory) CountByPatient(_ context.Context, patientID id.PatientID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[patientID]), nil
}
