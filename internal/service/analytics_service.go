package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/pantau-go-api/internal/analytics"
	"github.com/noah-isme/pantau-go-api/internal/dto"
	"github.com/noah-isme/pantau-go-api/internal/models"
	"github.com/noah-isme/pantau-go-api/internal/observability"
	"github.com/noah-isme/pantau-go-api/internal/repository"
)

// AnalyticsService computes cross-snapshot analytics. Every read recomputes
// the full structure from the current snapshot sequence; the Redis cache is
// keyed by a content signature of that sequence, so stale entries simply stop
// being addressed once the sequence changes.
type AnalyticsService interface {
	GetAnalytics(ctx context.Context) (*dto.AnalyticsResponse, error)
}

type analyticsService struct {
	snapshots repository.SnapshotRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewAnalyticsService constructs the analytics service.
func NewAnalyticsService(snapshots repository.SnapshotRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AnalyticsService {
	return &analyticsService{
		snapshots: snapshots,
		cache:     cache,
		cacheTTL:  ttl,
		logger:    logger.With().Str("component", "analytics_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/pantau-go-api/internal/service/analytics"),
		now:       time.Now,
	}
}

func (s *analyticsService) GetAnalytics(ctx context.Context) (*dto.AnalyticsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.compute")
	defer span.End()

	sequence, err := s.snapshots.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load_snapshots_failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("analytics.snapshot_count", len(sequence)))
	if len(sequence) == 0 {
		return nil, nil
	}

	cacheKey := "analytics:v1:" + contentSignature(sequence)
	span.SetAttributes(attribute.String("analytics.cache_key", cacheKey))

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.AnalyticsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				observability.AnalyticsCacheHits().Inc()
				span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
				return &response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read analytics cache")
			span.RecordError(err)
		}
	}

	start := s.now()
	computed := analytics.Compute(sequence)
	observability.AnalyticsRecomputes().Inc()
	observability.AnalyticsComputeDuration().Observe(time.Since(start).Seconds())

	response := &dto.AnalyticsResponse{
		Analytics:   computed,
		GeneratedAt: s.now().UTC(),
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store analytics cache")
				span.RecordError(err)
			}
		}
	}

	s.logger.Debug().
		Int("snapshots", len(sequence)).
		Int("learners", computed.TotalLearners).
		Msg("analytics recomputed")

	return response, nil
}

// contentSignature hashes the identity of the snapshot sequence. Rows are
// immutable after ingest, so (id, position, name, row count) fully identifies
// the sequence content.
func contentSignature(sequence []models.Snapshot) string {
	hasher := sha256.New()
	for _, snapshot := range sequence {
		fmt.Fprintf(hasher, "%d|%d|%s|%d;", snapshot.ID, snapshot.Position, snapshot.Name, len(snapshot.Rows))
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
