package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = fmt.Errorf("cache miss")

type CacheService struct {
	client *redis.Client
}

func NewCacheService(client *redis.Client) *CacheService {
	return &CacheService{
		client: client,
	}
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := s.client.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	return nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// Cache key generators
func GameLogCacheKey(playerID string) string {
	return fmt.Sprintf("gamelog:%s", playerID)
}

func PredictionCacheKey(playerID, stat string) string {
	return fmt.Sprintf("prediction:%s:%s", playerID, stat)
}

func LinesCacheKey() string {
	return "lines:current"
}

// InvalidatePlayer drops everything cached for one player after a data
// refresh. Predictions are keyed per stat, so they go by pattern scan.
func (s *CacheService) InvalidatePlayer(ctx context.Context, playerID string) error {
	keys := []string{GameLogCacheKey(playerID)}

	iter := s.client.Scan(ctx, 0, fmt.Sprintf("prediction:%s:*", playerID), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan prediction keys: %w", err)
	}

	return s.Delete(ctx, keys...)
}
