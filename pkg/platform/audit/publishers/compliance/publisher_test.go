package compliance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "healthhub/pkg/domain"
	audit "healthhub/pkg/platform/audit"
	"healthhub/pkg/platform/audit/store/memory"
	"healthhub/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error {
	return errors.New("disk full")
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestEmit_FillsRequestMetadata(t *testing.T) {
	store := memory.NewInMemoryStore()
	publisher := New(store, WithLogger(discard))
	patientID := id.PatientID(uuid.New())
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	ctx = requestcontext.WithClientMetadata(ctx, "10.0.0.7", "test")

	err := publisher.Emit(ctx, audit.Event{Action: audit.ActionDashboardViewed, PatientID: patientID})
	require.NoError(t, err)

	events, err := store.ListByPatient(ctx, patientID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, now, events[0].Timestamp)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, "10.0.0.7", events[0].ClientIP)
}

func TestEmit_RequiresFields(t *testing.T) {
	publisher := New(memory.NewInMemoryStore())

	err := publisher.Emit(context.Background(), audit.Event{Action: audit.ActionBiomarkerRecorded})
	assert.ErrorContains(t, err, "PatientID")

	err = publisher.Emit(context.Background(), audit.Event{PatientID: id.PatientID(uuid.New())})
	assert.ErrorContains(t, err, "Action")
}

func TestEmit_FailsClosed(t *testing.T) {
	publisher := New(failingStore{}, WithLogger(discard))

	err := publisher.Emit(context.Background(), audit.Event{
		Action:    audit.ActionBiomarkerRecorded,
		PatientID: id.PatientID(uuid.New()),
	})
	assert.ErrorContains(t, err, "compliance audit persistence failed")
}

func TestActionCategory(t *testing.T) {
	assert.Equal(t, audit.CategoryCompliance, audit.ActionDashboardViewed.Category())
	assert.Equal(t, audit.CategoryOperations, audit.ActionBiomarkerIngested.Category())
	assert.Equal(t, audit.CategoryCompliance, audit.Action("unknown").Category())
}
