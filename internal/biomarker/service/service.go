package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"healthhub/internal/biomarker/insights"
	"healthhub/internal/biomarker/metrics"
	"healthhub/internal/biomarker/models"
	id "healthhub/pkg/domain"
	dErrors "healthhub/pkg/domain-errors"
	"healthhub/pkg/platform/audit"
	"healthhub/pkg/platform/circuit"
	"healthhub/pkg/platform/sentinel"
	"healthhub/pkg/requestcontext"
)

const (
	SourceAPI    = "api"
	SourceIngest = "ingest"
)

type RecordStore interface {
	Append(ctx context.Context, record *models.Record) error
	ListByPatient(ctx context.Context, patientID id.PatientID) ([]models.Record, error)
}

// RecordCache holds a patient's record list. Set must skip the write when the
// patient was invalidated after gen was read from Generation.
type RecordCache interface {
	Get(ctx context.Context, patientID id.PatientID) ([]models.Record, error)
	Generation(ctx context.Context, patientID id.PatientID) (int64, error)
	Set(ctx context.Context, patientID id.PatientID, gen int64, records []models.Record) error
	Invalidate(ctx context.Context, patientID id.PatientID) error
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Auditor records access to patient data. Emit failures fail the operation.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service loads biomarker records and derives dashboards from them.
type Service struct {
	records      RecordStore
	cache        RecordCache
	cacheBreaker *circuit.Breaker
	tx           TxRunner
	auditor      Auditor
	logger       *slog.Logger
	metrics      *metrics.Metrics
	tracer       trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCache enables the record list cache. Without it every dashboard reads the store.
func WithCache(cache RecordCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithCacheBreaker overrides the breaker guarding cache reads.
func WithCacheBreaker(b *circuit.Breaker) Option {
	return func(s *Service) {
		s.cacheBreaker = b
	}
}

// WithTx sets the transaction runner that groups a write with its audit event.
func WithTx(tx TxRunner) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func WithAuditor(auditor Auditor) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New constructs a Service. The record store is required.
func New(records RecordStore, opts ...Option) (*Service, error) {
	if records == nil {
		return nil, errors.New("record store is required")
	}
	s := &Service{
		records: records,
		logger:  slog.Default(),
		tracer:  otel.Tracer("healthhub/biomarker"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache != nil && s.cacheBreaker == nil {
		s.cacheBreaker = circuit.New("record-cache")
	}
	return s, nil
}

// DashboardQuery selects the filter and ordering of a dashboard. Unknown values
// are not errors: an unknown filter matches nothing and an unknown sort keeps
// store order.
type DashboardQuery struct {
	Filter string
	Sort   insights.SortKey
}

// Dashboard returns the patient's composed biomarker view.
func (s *Service) Dashboard(ctx context.Context, patientID id.PatientID, q DashboardQuery) (*insights.View, error) {
	ctx, span := s.tracer.Start(ctx, "biomarker.Dashboard", trace.WithAttributes(
		attribute.String("filter", q.Filter),
		attribute.String("sort", string(q.Sort)),
	))
	defer span.End()
	start := time.Now()

	if err := authorizeRead(ctx, patientID); err != nil {
		return nil, err
	}

	records, err := s.load(ctx, patientID)
	if err != nil {
		span.SetStatus(codes.Error, "load records")
		return nil, err
	}

	if err := s.emit(ctx, audit.Event{
		Action:    audit.ActionDashboardViewed,
		PatientID: patientID,
		ActorID:   requestcontext.UserID(ctx),
		ActorRole: requestcontext.Role(ctx),
	}); err != nil {
		span.SetStatus(codes.Error, "audit dashboard view")
		return nil, err
	}

	view := insights.Compose(records, q.Filter, q.Sort)
	span.SetAttributes(attribute.Int("records.total", view.Stats.Total), attribute.Int("records.shown", len(view.Items)))
	s.metrics.ObserveDashboardLatency(time.Since(start))
	return &view, nil
}

// Record appends a new record for the patient on behalf of the caller.
func (s *Service) Record(ctx context.Context, patientID id.PatientID, in models.RecordInput) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "biomarker.Record")
	defer span.End()

	if err := authorizeWrite(ctx, patientID); err != nil {
		return nil, err
	}

	record, err := s.build(ctx, id.RecordID(uuid.New()), patientID, in)
	if err != nil {
		return nil, err
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.persist(ctx, record); err != nil {
			return err
		}
		return s.emit(ctx, audit.Event{
			Action:    audit.ActionBiomarkerRecorded,
			PatientID: patientID,
			ActorID:   requestcontext.UserID(ctx),
			ActorRole: requestcontext.Role(ctx),
			Subject:   record.ID.String(),
		})
	})
	if err != nil {
		span.SetStatus(codes.Error, "append record")
		return nil, err
	}
	s.invalidate(ctx, patientID)
	s.metrics.IncrementAppended(string(record.Status), SourceAPI)
	s.logger.InfoContext(ctx, "biomarker recorded",
		"request_id", requestcontext.RequestID(ctx),
		"patient_id", patientID,
		"record_id", record.ID,
		"status", record.Status,
	)
	return record, nil
}

// BatchEntry is one record destined for a patient. A non-nil RecordID is used
// as the record's ID so redelivered entries conflict instead of duplicating.
type BatchEntry struct {
	RecordID  id.RecordID
	PatientID id.PatientID
	Input     models.RecordInput
}

// RecordBatch appends entries from a trusted internal source (the ingest
// consumer) in one transaction. No caller authorization is applied.
func (s *Service) RecordBatch(ctx context.Context, entries []BatchEntry) ([]*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "biomarker.RecordBatch", trace.WithAttributes(
		attribute.Int("batch.size", len(entries)),
	))
	defer span.End()

	if len(entries) == 0 {
		return nil, nil
	}

	// Validate the whole batch before touching the store
	records := make([]*models.Record, 0, len(entries))
	for _, entry := range entries {
		recordID := entry.RecordID
		if recordID.IsNil() {
			recordID = id.RecordID(uuid.New())
		}
		record, err := s.build(ctx, recordID, entry.PatientID, entry.Input)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	err := s.inTx(ctx, func(ctx context.Context) error {
		for _, record := range records {
			if err := s.persist(ctx, record); err != nil {
				return err
			}
			if err := s.emit(ctx, audit.Event{
				Action:    audit.ActionBiomarkerIngested,
				PatientID: record.PatientID,
				Subject:   record.ID.String(),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, "record batch")
		if _, ok := dErrors.From(err); ok {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record batch")
	}

	invalidated := make(map[id.PatientID]struct{}, len(records))
	for _, record := range records {
		s.metrics.IncrementAppended(string(record.Status), SourceIngest)
		if _, done := invalidated[record.PatientID]; !done {
			invalidated[record.PatientID] = struct{}{}
			s.invalidate(ctx, record.PatientID)
		}
	}
	return records, nil
}

// Legend returns the palette of every status.
func (s *Service) Legend(_ context.Context) []insights.LegendEntry {
	return insights.Legend()
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.RunInTx(ctx, fn)
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.auditor == nil {
		return nil
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

func (s *Service) build(ctx context.Context, recordID id.RecordID, patientID id.PatientID, in models.RecordInput) (*models.Record, error) {
	in.Normalize()
	record, err := models.NewRecord(recordID, patientID, in, requestcontext.Now(ctx))
	if err != nil {
		// Convert invariant violations to validation errors for API response
		if de, ok := dErrors.From(err); ok && de.Code == dErrors.CodeInvariantViolation {
			return nil, dErrors.New(dErrors.CodeValidation, de.Message)
		}
		return nil, err
	}
	return record, nil
}

func (s *Service) persist(ctx context.Context, record *models.Record) error {
	if err := s.records.Append(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "record already exists")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store record")
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, patientID id.PatientID) {
	if s.cache == nil {
		return
	}
	err := s.cache.Invalidate(ctx, patientID)
	s.recordCacheOutcome(ctx, err)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate record cache",
			"patient_id", patientID,
			"error", err,
		)
	}
}

func (s *Service) load(ctx context.Context, patientID id.PatientID) ([]models.Record, error) {
	if s.cache == nil {
		return s.list(ctx, patientID)
	}

	if s.cacheBreaker.IsOpen() {
		s.metrics.IncrementCacheLookup("bypass")
	} else {
		records, err := s.cache.Get(ctx, patientID)
		switch {
		case err == nil:
			s.recordCacheOutcome(ctx, nil)
			s.metrics.IncrementCacheLookup("hit")
			return records, nil
		case errors.Is(err, sentinel.ErrNotFound):
			s.recordCacheOutcome(ctx, nil)
			s.metrics.IncrementCacheLookup("miss")
		default:
			s.recordCacheOutcome(ctx, err)
			s.metrics.IncrementCacheLookup("error")
			s.logger.WarnContext(ctx, "record cache unavailable, reading store",
				"patient_id", patientID,
				"error", err,
			)
		}
	}

	// The generation is read before the store so an append that lands in
	// between makes the fill below a no-op.
	gen, genErr := s.cache.Generation(ctx, patientID)
	s.recordCacheOutcome(ctx, genErr)

	records, err := s.list(ctx, patientID)
	if err != nil {
		return nil, err
	}

	// Fills still reach the cache while the breaker is open; their outcomes close it.
	if genErr != nil {
		s.logger.WarnContext(ctx, "failed to read record cache generation",
			"patient_id", patientID,
			"error", genErr,
		)
		return records, nil
	}
	err = s.cache.Set(ctx, patientID, gen, records)
	s.recordCacheOutcome(ctx, err)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to populate record cache",
			"patient_id", patientID,
			"error", err,
		)
	}
	return records, nil
}

func (s *Service) list(ctx context.Context, patientID id.PatientID) ([]models.Record, error) {
	records, err := s.records.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load records")
	}
	return records, nil
}

func (s *Service) recordCacheOutcome(ctx context.Context, err error) {
	var change circuit.StateChange
	if err != nil {
		_, change = s.cacheBreaker.RecordFailure()
	} else {
		_, change = s.cacheBreaker.RecordSuccess()
	}
	switch {
	case change.Opened:
		s.logger.WarnContext(ctx, "record cache circuit opened", "breaker", s.cacheBreaker.Name())
	case change.Closed:
		s.logger.InfoContext(ctx, "record cache circuit closed", "breaker", s.cacheBreaker.Name())
	}
}
