package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"healthhub/internal/biomarker/models"
	id "healthhub/pkg/domain"
	"healthhub/pkg/platform/sentinel"
)

const (
	patientKeyPrefix = "biomarkers:patient:"
	generationSuffix = ":gen"
)

// setIfGeneration writes the list only while the patient's generation still
// matches the one read before loading it. A missing generation counts as 0.
var setIfGeneration = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RedisCache caches a patient's full record list as one JSON value. Each
// patient also has a generation counter bumped by Invalidate; a list loaded
// under an older generation is never written back.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache constructs a record-list cache with the given TTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func patientKey(patientID id.PatientID) string {
	return patientKeyPrefix + patientID.String()
}

func generationKey(patientID id.PatientID) string {
	return patientKey(patientID) + generationSuffix
}

// Generation returns the patient's current cache generation.
func (c *RedisCache) Generation(ctx context.Context, patientID id.PatientID) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(patientID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get cache generation: %w", err)
	}
	return gen, nil
}

// Get returns sentinel.ErrNotFound on a cache miss.
func (c *RedisCache) Get(ctx context.Context, patientID id.PatientID) ([]models.Record, error) {
	raw, err := c.client.Get(ctx, patientKey(patientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cached records: %w", err)
	}
	var records []models.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode cached records: %w", err)
	}
	return records, nil
}

// Set stores records unless the patient was invalidated after gen was read.
// A skipped write is not an error.
func (c *RedisCache) Set(ctx context.Context, patientID id.PatientID, gen int64, records []models.Record) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode records for cache: %w", err)
	}
	keys := []string{patientKey(patientID), generationKey(patientID)}
	err = setIfGeneration.Run(ctx, c.client, keys, gen, raw, c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("set cached records: %w", err)
	}
	return nil
}

// Invalidate bumps the generation and drops the cached list in one transaction.
func (c *RedisCache) Invalidate(ctx context.Context, patientID id.PatientID) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(patientID))
		pipe.Del(ctx, patientKey(patientID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate cached records: %w", err)
	}
	return nil
}
