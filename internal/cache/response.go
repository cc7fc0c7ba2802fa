// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

// response.go provides a Valkey-backed cache for public content API
// responses. Serialized JSON payloads are stored per request signature so
// repeat public reads skip the DB. Admin writes invalidate by kind prefix.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// responseKeyPrefix is the Valkey key prefix for cached API responses.
	responseKeyPrefix = "content:"

	// DefaultResponseTTL is how long a public response stays cached.
	DefaultResponseTTL = 2 * time.Minute
)

// ResponseCache caches serialized public API responses in Valkey.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResponseCache creates a response cache backed by the given Valkey
// client. A nil client disables caching; every method becomes a no-op.
func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	if ttl == 0 {
		ttl = DefaultResponseTTL
	}
	return &ResponseCache{client: client, ttl: ttl}
}

// Get retrieves a cached response body. Returns false on miss or when
// caching is disabled.
func (rc *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if rc.client == nil {
		return nil, false
	}
	val, err := rc.client.Get(ctx, responseKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("response cache get error", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

// Set stores a response body with the configured TTL.
func (rc *ResponseCache) Set(ctx context.Context, key string, body []byte) {
	if rc.client == nil {
		return
	}
	if err := rc.client.Set(ctx, responseKeyPrefix+key, body, rc.ttl).Err(); err != nil {
		slog.Warn("response cache set error", "key", key, "error", err)
	}
}

// InvalidateKind removes every cached response whose key starts with the
// given kind segment. Called after any admin write to that kind.
func (rc *ResponseCache) InvalidateKind(ctx context.Context, kind string) {
	rc.invalidatePrefix(ctx, responseKeyPrefix+kind+":")
}

// InvalidateAll clears all cached public responses. Used after site
// setting and category changes, which can affect any response.
func (rc *ResponseCache) InvalidateAll(ctx context.Context) {
	rc.invalidatePrefix(ctx, responseKeyPrefix)
}

func (rc *ResponseCache) invalidatePrefix(ctx context.Context, prefix string) {
	if rc.client == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := rc.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			slog.Warn("response cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("response cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("response cache invalidated", "prefix", prefix, "deleted", deleted)
	}
}
