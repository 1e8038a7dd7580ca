package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairlane/careerfair/internal/domain"
	apperrors "github.com/fairlane/careerfair/pkg/errors"
)

const summaryKey = "reviews:summary"

// SummaryCache caches the aggregated review summary in Redis. The summary is
// recomputed from Postgres on a miss and invalidated on every review mutation.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache creates a new Redis-backed summary cache.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the cached summary. A miss returns apperrors.NotFound.
func (c *SummaryCache) Get(ctx context.Context) (*domain.ReviewSummary, error) {
	data, err := c.client.Get(ctx, summaryKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("summary", summaryKey)
		}
		return nil, fmt.Errorf("redis get summary: %w", err)
	}

	var summary domain.ReviewSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}

	return &summary, nil
}

// Set stores the summary with the configured TTL.
func (c *SummaryCache) Set(ctx context.Context, summary *domain.ReviewSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	if err := c.client.Set(ctx, summaryKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set summary: %w", err)
	}

	return nil
}

// Invalidate drops the cached summary.
func (c *SummaryCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, summaryKey).Err(); err != nil {
		return fmt.Errorf("redis del summary: %w", err)
	}
	return nil
}
