// Package presence tracks which users are currently online using Redis
// keys with a sliding TTL.
package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	onlineKeyPrefix   = "presence:online:"
	lastSeenKeyPrefix = "presence:last_seen:"
)

// Status describes a user's presence as seen by the cache.
type Status struct {
	UserID   string    `json:"user_id"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen,omitempty"`
}

// Cache is a thin presence layer over Redis. A Cache built with a nil
// client is disabled: heartbeats are dropped and every user reads as
// offline, so the rest of the application never has to check whether
// Redis is configured.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache constructs a Cache. rdb may be nil to disable presence tracking.
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Enabled reports whether a Redis client is attached.
func (c *Cache) Enabled() bool {
	return c.rdb != nil
}

// Heartbeat marks the user online for the TTL window and records the
// moment as their last-seen time.
func (c *Cache) Heartbeat(ctx context.Context, userID string) error {
	if !c.Enabled() {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339)
	pipe := c.rdb.Pipeline()
	pipe.Set(ctx, onlineKeyPrefix+userID, "1", c.ttl)
	pipe.Set(ctx, lastSeenKeyPrefix+userID, now, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("presence heartbeat: %w", err)
	}
	return nil
}

// Status returns the user's current presence. A missing last-seen key
// leaves LastSeen zero.
func (c *Cache) Status(ctx context.Context, userID string) (*Status, error) {
	s := &Status{UserID: userID}
	if !c.Enabled() {
		return s, nil
	}

	n, err := c.rdb.Exists(ctx, onlineKeyPrefix+userID).Result()
	if err != nil {
		return nil, fmt.Errorf("presence status: %w", err)
	}
	s.Online = n > 0

	raw, err := c.rdb.Get(ctx, lastSeenKeyPrefix+userID).Result()
	if err != nil {
		if err == redis.Nil {
			return s, nil
		}
		return nil, fmt.Errorf("presence last seen: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		s.LastSeen = ts
	}
	return s, nil
}
