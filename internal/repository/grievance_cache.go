package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
)

const grievanceCacheKeyPrefix = "grievance:"

// CachedGrievanceReader decorates a GrievanceRepository with a redis cache on
// detail reads. The cache is eventually consistent and only backs view
// queries; the transition engine reads through the authoritative repository,
// and the service invalidates after every append. Redis outages degrade to
// plain repository reads.
type CachedGrievanceReader struct {
	inner  GrievanceRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedGrievanceReader wraps the repository. A nil client disables caching.
func NewCachedGrievanceReader(inner GrievanceRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedGrievanceReader {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedGrievanceReader{inner: inner, client: client, ttl: ttl, logger: logger}
}

// GetByID serves from cache when possible.
func (c *CachedGrievanceReader) GetByID(ctx context.Context, id string) (*domain.Grievance, error) {
	if c.client != nil {
		raw, err := c.client.Get(ctx, grievanceCacheKeyPrefix+id).Bytes()
		if err == nil {
			var g domain.Grievance
			if err := json.Unmarshal(raw, &g); err == nil {
				return &g, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			c.logger.Debug("grievance cache read failed", zap.String("grievance_id", id), zap.Error(err))
		}
	}

	g, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, g)
	return g, nil
}

// ListByDepartment passes through to the repository.
func (c *CachedGrievanceReader) ListByDepartment(ctx context.Context, departmentID string) ([]domain.Grievance, error) {
	return c.inner.ListByDepartment(ctx, departmentID)
}

// ListAssignedTo passes through to the repository.
func (c *CachedGrievanceReader) ListAssignedTo(ctx context.Context, actorID string) ([]domain.Grievance, error) {
	return c.inner.ListAssignedTo(ctx, actorID)
}

// ListWithFilter passes through to the repository.
func (c *CachedGrievanceReader) ListWithFilter(ctx context.Context, filter GrievanceFilter) ([]domain.Grievance, error) {
	return c.inner.ListWithFilter(ctx, filter)
}

// Invalidate drops the cached detail after a successful append.
func (c *CachedGrievanceReader) Invalidate(ctx context.Context, id string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, grievanceCacheKeyPrefix+id).Err(); err != nil {
		c.logger.Debug("grievance cache invalidation failed", zap.String("grievance_id", id), zap.Error(err))
	}
}

func (c *CachedGrievanceReader) store(ctx context.Context, g *domain.Grievance) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(g)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, grievanceCacheKeyPrefix+g.ID, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("grievance cache write failed", zap.String("grievance_id", g.ID), zap.Error(err))
	}
}
