//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"healthhub/internal/biomarker/models"
	"healthhub/internal/biomarker/store"
	id "healthhub/pkg/domain"
	"healthhub/pkg/platform/sentinel"
	"healthhub/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *store.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.cache = store.NewRedisCache(s.redis.Client, 5*time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestRoundTripAndInvalidate() {
	ctx := context.Background()
	patientID := id.PatientID(uuid.New())
	records := []models.Record{
		*newRecord(patientID, "LDL", models.NumberValue(130), time.Now().UTC()),
		*newRecord(patientID, "HCG", models.TextValue("negative"), time.Now().UTC()),
	}

	_, err := s.cache.Get(ctx, patientID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	gen, err := s.cache.Generation(ctx, patientID)
	s.Require().NoError(err)
	s.Require().NoError(s.cache.Set(ctx, patientID, gen, records))

	ttl, err := s.redis.TTL(ctx, "biomarkers:patient:"+patientID.String())
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, 5*time.Minute)

	found, err := s.cache.Get(ctx, patientID)
	s.Require().NoError(err)
	s.Require().Len(found, 2)
	s.Equal(records[0].ID, found[0].ID)
	s.Equal(records[0].PatientID, found[0].PatientID)
	s.Equal("negative", found[1].Value.Text)

	s.Require().NoError(s.cache.Invalidate(ctx, patientID))
	_, err = s.cache.Get(ctx, patientID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	next, err := s.cache.Generation(ctx, patientID)
	s.Require().NoError(err)
	s.Equal(gen+1, next)
}

func (s *RedisCacheSuite) TestSetSkipsListLoadedBeforeInvalidate() {
	ctx := context.Background()
	patientID := id.PatientID(uuid.New())
	stale := []models.Record{*newRecord(patientID, "LDL", models.NumberValue(130), time.Now().UTC())}

	gen, err := s.cache.Generation(ctx, patientID)
	s.Require().NoError(err)
	s.Require().NoError(s.cache.Invalidate(ctx, patientID))

	s.Require().NoError(s.cache.Set(ctx, patientID, gen, stale))
	_, err = s.cache.Get(ctx, patientID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	current, err := s.cache.Generation(ctx, patientID)
	s.Require().NoError(err)
	s.Require().NoError(s.cache.Set(ctx, patientID, current, stale))
	found, err := s.cache.Get(ctx, patientID)
	s.Require().NoError(err)
	s.Len(found, 1)
}

func (s *RedisCacheSuite) TestEntriesExpire() {
	ctx := context.Background()
	short := store.NewRedisCache(s.redis.Client, time.Second)
	patientID := id.PatientID(uuid.New())

	s.Require().NoError(short.Set(ctx, patientID, 0, []models.Record{}))
	s.Eventually(func() bool {
		_, err := short.Get(ctx, patientID)
		return err != nil
	}, 5*time.Second, 100*time.Millisecond)
}
