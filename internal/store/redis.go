package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"qrattend/internal/session"
)

// Redis wraps redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// SessionCache is a read-through cache of session records for the hot
// submission path. It caches the record only (expiry is always judged
// against the live clock by the caller) and is invalidated on every edit or
// delete, so a moved expiry takes effect on the next lookup.
type SessionCache struct {
	r   *Redis
	ttl time.Duration
}

// NewSessionCache creates a cache with the given record TTL.
func NewSessionCache(r *Redis, ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SessionCache{r: r, ttl: ttl}
}

func cacheKey(id string) string { return "qrattend:session:" + id }

// GetSession returns the cached record, or (nil, false) on miss or any redis
// error. Cache failures are never surfaced; the store is the authority.
func (c *SessionCache) GetSession(ctx context.Context, id string) (*session.Session, bool) {
	raw, err := c.r.Client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var s session.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	return &s, true
}

// SetSession stores a record under its id, best effort.
func (c *SessionCache) SetSession(ctx context.Context, s session.Session) {
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	_ = c.r.Client.Set(ctx, cacheKey(s.ID), raw, c.ttl).Err()
}

// Invalidate drops the cached record, best effort.
func (c *SessionCache) Invalidate(ctx context.Context, id string) {
	_ = c.r.Client.Del(ctx, cacheKey(id)).Err()
}
