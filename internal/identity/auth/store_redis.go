// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kadrio/kadrio/internal/platform/constants"
)

// positiveHitTTL bounds cache entries created on a read-through hit, where
// the token's own remaining lifetime is not at hand. Write-through entries
// use the real expiry.
const positiveHitTTL = 5 * time.Minute

// RedisBlacklistCache is a read-through cache in front of a durable
// [BlacklistRepository]. Postgres stays the source of truth; Redis absorbs
// the per-request lookup that the authentication middleware performs on
// every bearer token.
type RedisBlacklistCache struct {
	client *redis.Client
	store  BlacklistRepository
}

// NewBlacklistCache wraps a durable blacklist repository with a Redis cache.
func NewBlacklistCache(client *redis.Client, store BlacklistRepository) *RedisBlacklistCache {
	return &RedisBlacklistCache{client: client, store: store}
}

func blacklistKey(token string) string {
	return constants.RedisPrefixBlacklist + token
}

/*
Blacklist records an invalidated access token in both tiers.

Description: Writes through to Postgres first — durability wins over cache
freshness — then caches the entry with the token's own remaining lifetime as
TTL, so the key evaporates exactly when the token would have expired anyway.

Parameters:
  - context: context.Context
  - token: string (raw access token)
  - expiresAt: time.Time (the token's own exp claim)
  - reason: string

Returns:
  - error: Durable-store errors; cache write failures are swallowed
*/
func (cache *RedisBlacklistCache) Blacklist(context context.Context, token string, expiresAt time.Time, reason string) error {
	if err := cache.store.Blacklist(context, token, expiresAt, reason); err != nil {
		return err
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	// A failed cache write is not an error: the durable tier already has
	// the row and the read path falls through on a miss.
	_ = cache.client.Set(context, blacklistKey(token), "1", ttl).Err()

	return nil
}

/*
IsBlacklisted answers the per-request revocation check.

Description: A cache hit answers immediately. On a miss (or a cache error)
the durable tier is consulted; a positive durable answer is cached briefly so
hot revoked tokens stop hitting Postgres.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - bool: Whether the token is revoked
  - error: Durable-store errors only
*/
func (cache *RedisBlacklistCache) IsBlacklisted(context context.Context, token string) (bool, error) {
	// Hit answers immediately; both a miss and an unavailable cache fall
	// through to the durable tier.
	if _, err := cache.client.Get(context, blacklistKey(token)).Result(); err == nil {
		return true, nil
	} else if !errors.Is(err, redis.Nil) && context.Err() != nil {
		return false, context.Err()
	}

	revoked, err := cache.store.IsBlacklisted(context, token)
	if err != nil {
		return false, err
	}

	if revoked {
		_ = cache.client.Set(context, blacklistKey(token), "1", positiveHitTTL).Err()
	}

	return revoked, nil
}

// PurgeExpired delegates to the durable tier; cache keys expire on their own.
func (cache *RedisBlacklistCache) PurgeExpired(context context.Context) (int64, error) {
	return cache.store.PurgeExpired(context)
}
