package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/openticket/helpdesk/internal/domain"
)

const (
	statsKeyPrefix  = "helpdesk:ticket_stats"
	statsVersionKey = statsKeyPrefix + ":version"
)

// StatsSlot pins the cache generation observed by Get. Counts computed after
// a miss are written back under that generation, so an Invalidate that lands
// in between leaves them unreachable. The zero slot is never written.
type StatsSlot struct {
	Key string
}

// StatsCache stores per-scope ticket counts. Misses and backend errors are
// indistinguishable to callers; they fall through to the Store.
type StatsCache interface {
	Get(ctx context.Context, scope string) (map[domain.TicketStatus]int, StatsSlot, bool)
	Set(ctx context.Context, slot StatsSlot, counts map[domain.TicketStatus]int)
	Invalidate(ctx context.Context)
}

type redisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatsCache returns a Redis-backed cache, or a no-op cache when client is nil or ttl is zero.
func NewStatsCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) StatsCache {
	if client == nil || ttl <= 0 {
		return NopStatsCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisStatsCache{client: client, ttl: ttl, logger: logger}
}

func (c *redisStatsCache) key(ctx context.Context, scope string) (string, error) {
	version, err := c.client.Get(ctx, statsVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("%s:v%d:%s", statsKeyPrefix, version, scope), nil
}

func (c *redisStatsCache) Get(ctx context.Context, scope string) (map[domain.TicketStatus]int, StatsSlot, bool) {
	key, err := c.key(ctx, scope)
	if err != nil {
		c.logger.Debug("stats cache unavailable", zap.Error(err))
		return nil, StatsSlot{}, false
	}
	slot := StatsSlot{Key: key}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("stats cache read failed", zap.Error(err))
		}
		return nil, slot, false
	}
	var counts map[domain.TicketStatus]int
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil, slot, false
	}
	return counts, slot, true
}

func (c *redisStatsCache) Set(ctx context.Context, slot StatsSlot, counts map[domain.TicketStatus]int) {
	if slot.Key == "" {
		return
	}
	raw, err := json.Marshal(counts)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, slot.Key, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("stats cache write failed", zap.Error(err))
	}
}

// Invalidate bumps the key version so every cached scope expires at once.
func (c *redisStatsCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, statsVersionKey).Err(); err != nil {
		c.logger.Debug("stats cache invalidation failed", zap.Error(err))
	}
}

// NopStatsCache never caches.
type NopStatsCache struct{}

func (NopStatsCache) Get(context.Context, string) (map[domain.TicketStatus]int, StatsSlot, bool) {
	return nil, StatsSlot{}, false
}

func (NopStatsCache) Set(context.Context, StatsSlot, map[domain.TicketStatus]int) {}

func (NopStatsCache) Invalidate(context.Context) {}
