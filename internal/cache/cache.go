/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a Redis-based caching layer for frequently accessed data.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/friendsincode/huginn_podcast/internal/models"
)

// Default TTL values for different cache types
const (
	DefaultEvaluationTTL = 5 * time.Minute
	DefaultEpisodeTTL    = 1 * time.Hour
	DefaultDurationTTL   = 15 * time.Minute
)

// Key prefixes for Redis cache
const (
	KeyEvaluation = "huginn:cache:evaluation:" // + smart_playlist_id
	KeyEpisode    = "huginn:cache:episode:"    // + episode_id
	KeyDuration   = "huginn:cache:duration:"   // + playlist_id
)

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// TTL overrides
	EvaluationTTL time.Duration
	EpisodeTTL    time.Duration
	DurationTTL   time.Duration

	// Fallback behavior
	DisableOnError bool // If true, disable caching on Redis errors
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		RedisAddr:      "localhost:6379",
		EvaluationTTL:  DefaultEvaluationTTL,
		EpisodeTTL:     DefaultEpisodeTTL,
		DurationTTL:    DefaultDurationTTL,
		DisableOnError: true,
	}
}

// Cache provides Redis-backed caching with graceful fallback.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool // Circuit breaker state
}

// New creates a new cache instance.
func New(cfg Config, logger zerolog.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis cache unavailable, running without caching")
		return &Cache{
			logger:   logger.With().Str("component", "cache").Logger(),
			config:   cfg,
			disabled: true,
		}, nil
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache initialized")

	return &Cache{
		client: client,
		logger: logger.With().Str("component", "cache").Logger(),
		config: cfg,
	}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAvailable returns true if the cache is operational.
func (c *Cache) IsAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

// handleError handles Redis errors with circuit breaker logic.
func (c *Cache) handleError(err error, operation string) {
	if err == nil || err == redis.Nil {
		return
	}

	c.logger.Debug().Err(err).Str("operation", operation).Msg("cache operation failed")

	if c.config.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn().Msg("disabling cache due to Redis error")
	}
}

// get retrieves a value from cache and unmarshals it.
func (c *Cache) get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.IsAvailable() {
		return false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		c.handleError(err, "get")
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("failed to unmarshal cached value")
		return false, nil
	}

	return true, nil
}

// set stores a value in cache with TTL.
func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.IsAvailable() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.handleError(err, "set")
		return err
	}

	return nil
}

// delete removes a key from cache.
func (c *Cache) delete(ctx context.Context, key string) error {
	if !c.IsAvailable() {
		return nil
	}

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.handleError(err, "delete")
		return err
	}

	return nil
}

// deletePattern deletes all keys matching a pattern.
func (c *Cache) deletePattern(ctx context.Context, pattern string) error {
	if !c.IsAvailable() {
		return nil
	}

	// Use SCAN to find keys (safer than KEYS for production)
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.handleError(err, "scan")
			return err
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.handleError(err, "delete_batch")
				return err
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return nil
}

// Evaluation caching methods

// CachedEvaluation holds the episode ids a smart playlist resolved to,
// stamped with the evaluation time.
type CachedEvaluation struct {
	SmartPlaylistID string    `json:"smart_playlist_id"`
	EpisodeIDs      []string  `json:"episode_ids"`
	EvaluatedAt     time.Time `json:"evaluated_at"`
}

// GetEvaluation retrieves the cached evaluation result for a smart playlist.
func (c *Cache) GetEvaluation(ctx context.Context, smartPlaylistID string) (*CachedEvaluation, bool) {
	var eval CachedEvaluation
	found, err := c.get(ctx, KeyEvaluation+smartPlaylistID, &eval)
	if err != nil || !found {
		return nil, false
	}
	c.logger.Debug().Str("smart_playlist_id", smartPlaylistID).Int("count", len(eval.EpisodeIDs)).Msg("evaluation cache hit")
	return &eval, true
}

// SetEvaluation caches the evaluation result for a smart playlist.
func (c *Cache) SetEvaluation(ctx context.Context, eval *CachedEvaluation) error {
	c.logger.Debug().Str("smart_playlist_id", eval.SmartPlaylistID).Int("count", len(eval.EpisodeIDs)).Msg("caching evaluation")
	return c.set(ctx, KeyEvaluation+eval.SmartPlaylistID, eval, c.config.EvaluationTTL)
}

// InvalidateEvaluation removes a smart playlist's evaluation from cache.
func (c *Cache) InvalidateEvaluation(ctx context.Context, smartPlaylistID string) error {
	c.logger.Debug().Str("smart_playlist_id", smartPlaylistID).Msg("invalidating evaluation cache")
	return c.delete(ctx, KeyEvaluation+smartPlaylistID)
}

// InvalidateAllEvaluations removes every cached evaluation. Called when the
// episode catalog changes, since any rule may now resolve differently.
func (c *Cache) InvalidateAllEvaluations(ctx context.Context) error {
	c.logger.Debug().Msg("invalidating all evaluation caches")
	return c.deletePattern(ctx, KeyEvaluation+"*")
}

// Episode caching methods

// GetEpisode retrieves a cached episode by ID.
func (c *Cache) GetEpisode(ctx context.Context, episodeID string) (*models.Episode, bool) {
	var ep models.Episode
	found, err := c.get(ctx, KeyEpisode+episodeID, &ep)
	if err != nil || !found {
		return nil, false
	}
	c.logger.Debug().Str("episode_id", episodeID).Msg("episode cache hit")
	return &ep, true
}

// SetEpisode caches an episode record.
func (c *Cache) SetEpisode(ctx context.Context, ep *models.Episode) error {
	c.logger.Debug().Str("episode_id", ep.ID).Msg("caching episode")
	return c.set(ctx, KeyEpisode+ep.ID, ep, c.config.EpisodeTTL)
}

// InvalidateEpisode removes an episode from cache.
func (c *Cache) InvalidateEpisode(ctx context.Context, episodeID string) error {
	c.logger.Debug().Str("episode_id", episodeID).Msg("invalidating episode cache")
	return c.delete(ctx, KeyEpisode+episodeID)
}

// Duration caching methods

// CachedDuration represents a cached playlist duration aggregate.
type CachedDuration struct {
	PlaylistID string `json:"playlist_id"`
	Total      int64  `json:"total"` // Nanoseconds
	Known      bool   `json:"known"`
}

// GetDuration retrieves a cached playlist duration.
func (c *Cache) GetDuration(ctx context.Context, playlistID string) (*CachedDuration, bool) {
	var d CachedDuration
	found, err := c.get(ctx, KeyDuration+playlistID, &d)
	if err != nil || !found {
		return nil, false
	}
	c.logger.Debug().Str("playlist_id", playlistID).Msg("duration cache hit")
	return &d, true
}

// SetDuration caches a playlist duration aggregate.
func (c *Cache) SetDuration(ctx context.Context, d *CachedDuration) error {
	c.logger.Debug().Str("playlist_id", d.PlaylistID).Msg("caching duration")
	return c.set(ctx, KeyDuration+d.PlaylistID, d, c.config.DurationTTL)
}

// InvalidateDuration removes a playlist duration from cache.
func (c *Cache) InvalidateDuration(ctx context.Context, playlistID string) error {
	c.logger.Debug().Str("playlist_id", playlistID).Msg("invalidating duration cache")
	return c.delete(ctx, KeyDuration+playlistID)
}

// FlushAll removes all cached data (use sparingly).
func (c *Cache) FlushAll(ctx context.Context) error {
	c.logger.Warn().Msg("flushing all cache data")
	return c.deletePattern(ctx, "huginn:cache:*")
}
