package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"healthhub/internal/biomarker/metrics"
	"healthhub/internal/biomarker/models"
	"healthhub/internal/biomarker/service"
	dErrors "healthhub/pkg/domain-errors"
	"healthhub/pkg/requestcontext"
)

// Fetcher is the subset of *kgo.Client the consumer needs.
type Fetcher interface {
	PollFetches(ctx context.Context) kgo.Fetches
	CommitUncommittedOffsets(ctx context.Context) error
}

type Recorder interface {
	RecordBatch(ctx context.Context, entries []service.BatchEntry) ([]*models.Record, error)
}

// Consumer appends analysis results in fetch-sized batches and commits offsets
// once a batch is stored. Undecodable or invalid messages are logged and skipped.
type Consumer struct {
	client       Fetcher
	recorder     Recorder
	logger       *slog.Logger
	metrics      *metrics.Metrics
	retryBackoff time.Duration
}

type Option func(*Consumer)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Consumer) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Consumer) {
		c.metrics = m
	}
}

// WithRetryBackoff sets the wait between attempts when the store is unavailable.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Consumer) {
		c.retryBackoff = d
	}
}

func New(client Fetcher, recorder Recorder, opts ...Option) *Consumer {
	c := &Consumer{
		client:       client,
		recorder:     recorder,
		logger:       slog.Default(),
		retryBackoff: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run polls until ctx is cancelled or the client is closed.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.InfoContext(ctx, "biomarker ingest consumer started")
	for {
		fetches := c.client.PollFetches(ctx)
		if ctx.Err() != nil || fetches.IsClientClosed() {
			c.logger.InfoContext(ctx, "biomarker ingest consumer stopped")
			return nil
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.ErrorContext(ctx, "kafka fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		entries := c.decode(ctx, fetches)
		if err := c.store(ctx, entries); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := c.client.CommitUncommittedOffsets(ctx); err != nil && ctx.Err() == nil {
			c.logger.ErrorContext(ctx, "kafka offset commit failed", "error", err)
		}
	}
}

func (c *Consumer) decode(ctx context.Context, fetches kgo.Fetches) []service.BatchEntry {
	var entries []service.BatchEntry
	fetches.EachRecord(func(record *kgo.Record) {
		entry, err := Decode(record.Value)
		if err != nil {
			c.metrics.IncrementIngestRejected("decode")
			c.logger.WarnContext(ctx, "skipping undecodable analysis message",
				"topic", record.Topic,
				"partition", record.Partition,
				"offset", record.Offset,
				"error", err,
			)
			return
		}
		entry.RecordID = RecordIDFor(record.Topic, record.Partition, record.Offset)
		entries = append(entries, entry)
	})
	return entries
}

// store appends the batch in one transaction. If any entry is invalid or was
// already stored by an earlier delivery, the batch is replayed entry by entry so
// the rest are kept. Store failures are retried until ctx is cancelled.
func (c *Consumer) store(ctx context.Context, entries []service.BatchEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ctx = requestcontext.WithTime(ctx, time.Now().UTC())

	err := c.retry(ctx, func() error {
		_, err := c.recorder.RecordBatch(ctx, entries)
		return err
	})
	if err == nil || !isRejection(err) {
		return err
	}

	for _, entry := range entries {
		err := c.retry(ctx, func() error {
			_, err := c.recorder.RecordBatch(ctx, []service.BatchEntry{entry})
			return err
		})
		if err == nil {
			continue
		}
		if !isRejection(err) {
			return err
		}
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			c.metrics.IncrementIngestRejected("duplicate")
			c.logger.InfoContext(ctx, "skipping already stored analysis message",
				"patient_id", entry.PatientID,
				"record_id", entry.RecordID,
			)
			continue
		}
		c.metrics.IncrementIngestRejected("invalid")
		c.logger.WarnContext(ctx, "skipping invalid analysis message",
			"patient_id", entry.PatientID,
			"name", entry.Input.Name,
			"error", err,
		)
	}
	return nil
}

func (c *Consumer) retry(ctx context.Context, fn func() error) error {
	for {
		err := fn()
		if err == nil || isRejection(err) {
			return err
		}
		c.logger.ErrorContext(ctx, "storing analysis batch failed, retrying",
			"backoff", c.retryBackoff,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(c.retryBackoff):
		}
	}
}

// isRejection reports errors that will not succeed on retry.
func isRejection(err error) bool {
	de, ok := dErrors.From(err)
	if !ok {
		return false
	}
	switch de.Code {
	case dErrors.CodeValidation, dErrors.CodeInvariantViolation, dErrors.CodeConflict:
		return true
	default:
		return false
	}
}
