// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// content.go provides a Valkey-backed cache for single-article JSON
// responses. GET /content/{id} serves from here on a hit; every write to an
// article invalidates its entry.
package cache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// contentKeyPrefix is the Valkey key prefix for cached article JSON.
	contentKeyPrefix = "content:"

	// DefaultContentTTL is how long an article response stays cached.
	DefaultContentTTL = 5 * time.Minute
)

// ContentCache manages article JSON caching in Valkey. A nil *ContentCache
// is a valid no-op cache, so callers never need to branch on whether Valkey
// is configured.
type ContentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewContentCache creates a new article cache backed by the given Valkey
// client. A nil client yields a no-op cache.
func NewContentCache(client *redis.Client, ttl time.Duration) *ContentCache {
	if client == nil {
		return nil
	}
	if ttl == 0 {
		ttl = DefaultContentTTL
	}
	return &ContentCache{client: client, ttl: ttl}
}

func contentKey(id int64) string {
	return contentKeyPrefix + strconv.FormatInt(id, 10)
}

// Get retrieves cached JSON for an article. Returns false on miss or when
// the cache is disabled.
func (cc *ContentCache) Get(ctx context.Context, id int64) ([]byte, bool) {
	if cc == nil {
		return nil, false
	}
	val, err := cc.client.Get(ctx, contentKey(id)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("content cache get error", "id", id, "error", err)
		return nil, false
	}
	slog.Debug("content cache hit", "id", id)
	return val, true
}

// Set stores the JSON response for an article with the configured TTL.
func (cc *ContentCache) Set(ctx context.Context, id int64, body []byte) {
	if cc == nil {
		return
	}
	if err := cc.client.Set(ctx, contentKey(id), body, cc.ttl).Err(); err != nil {
		slog.Warn("content cache set error", "id", id, "error", err)
	}
}

// Invalidate removes a single article from the cache after an update or
// delete.
func (cc *ContentCache) Invalidate(ctx context.Context, id int64) {
	if cc == nil {
		return
	}
	if err := cc.client.Del(ctx, contentKey(id)).Err(); err != nil {
		slog.Warn("content cache invalidate error", "id", id, "error", err)
	}
	slog.Debug("content cache invalidated", "id", id)
}

// InvalidateAll removes all cached articles by scanning for the prefix.
func (cc *ContentCache) InvalidateAll(ctx context.Context) {
	if cc == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := cc.client.Scan(ctx, cursor, contentKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("content cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := cc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("content cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("content cache fully cleared", "deleted", deleted)
	}
}
