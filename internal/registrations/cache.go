package registrations

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/models"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/redis"
)

const (
	categoryCacheTTL = 5 * time.Minute
	categoryCacheKey = "categories:"
)

// CategoryCache keeps the read-heavy category lists in Redis. Cache
// problems degrade to the database, never to an error.
type CategoryCache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCategoryCache(client *redis.Client, logger *zap.Logger) *CategoryCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryCache{client: client, logger: logger}
}

// Get returns the cached list for an attendance type, or (nil, false).
func (c *CategoryCache) Get(ctx context.Context, attendanceType string) ([]models.RegistrationCategory, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, categoryCacheKey+attendanceType).Bytes()
	if err != nil {
		return nil, false
	}
	var cats []models.RegistrationCategory
	if err := json.Unmarshal(raw, &cats); err != nil {
		c.logger.Warn("corrupt category cache entry", zap.String("attendence_type", attendanceType))
		return nil, false
	}
	return cats, true
}

// Set stores a list.
func (c *CategoryCache) Set(ctx context.Context, attendanceType string, cats []models.RegistrationCategory) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(cats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, categoryCacheKey+attendanceType, raw, categoryCacheTTL).Err(); err != nil {
		c.logger.Warn("failed to cache categories", zap.Error(err))
	}
}

// Invalidate drops every cached category list after a mutation.
func (c *CategoryCache) Invalidate(ctx context.Context) {
	if c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, categoryCacheKey+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("failed to invalidate category cache", zap.Error(err))
		}
	}
}
