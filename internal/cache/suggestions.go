// Package cache holds the Redis-backed cache for search suggestions. The
// database remains the source of truth; cache failures degrade to a miss.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
)

const keyPrefix = "suggest:"

// SuggestionCache caches suggestion result lists keyed by normalized query.
type SuggestionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSuggestionCache creates a suggestion cache with the given TTL.
func NewSuggestionCache(client *redis.Client, ttl time.Duration) *SuggestionCache {
	return &SuggestionCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached suggestions for the query, or (nil, false) on a miss.
func (c *SuggestionCache) Get(ctx context.Context, query string) ([]domain.Suggestion, bool, error) {
	data, err := c.client.Get(ctx, key(query)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get suggestions: %w", err)
	}

	var suggestions []domain.Suggestion
	if err := json.Unmarshal(data, &suggestions); err != nil {
		return nil, false, fmt.Errorf("unmarshal suggestions: %w", err)
	}

	return suggestions, true, nil
}

// Set stores the suggestions for the query with the configured TTL.
func (c *SuggestionCache) Set(ctx context.Context, query string, suggestions []domain.Suggestion) error {
	data, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("marshal suggestions: %w", err)
	}

	if err := c.client.Set(ctx, key(query), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set suggestions: %w", err)
	}

	return nil
}

// Invalidate drops all cached suggestion lists. Called after catalog writes
// so stale names or stock states do not outlive the product change.
func (c *SuggestionCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan suggestions: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del suggestions: %w", err)
	}

	return nil
}

func key(query string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(query))
}
