package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cinetix/booking-engine/internal/domain"
	"github.com/redis/go-redis/v9"
)

const showtimeCacheTTL = 5 * time.Minute

// CachedShowtimeRegistry is a cache-aside wrapper over a ShowtimeRegistry.
// Showtime rows are read-mostly, so a short TTL keeps the booking path off
// the catalog tables. Cache failures fall back to the inner registry.
type CachedShowtimeRegistry struct {
	inner  domain.ShowtimeRegistry
	redis  redis.UniversalClient
	logger *slog.Logger
}

func NewCachedShowtimeRegistry(inner domain.ShowtimeRegistry, rdb redis.UniversalClient, logger *slog.Logger) *CachedShowtimeRegistry {
	return &CachedShowtimeRegistry{
		inner:  inner,
		redis:  rdb,
		logger: logger,
	}
}

func showtimeCacheKey(showtimeID int) string {
	return fmt.Sprintf("showtime:%d", showtimeID)
}

func (c *CachedShowtimeRegistry) Resolve(ctx context.Context, showtimeID int) (*domain.Showtime, error) {
	key := showtimeCacheKey(showtimeID)

	cached, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		var showtime domain.Showtime
		if err := json.Unmarshal(cached, &showtime); err == nil {
			return &showtime, nil
		}

		c.logger.Warn("dropping undecodable showtime cache entry", "key", key)
		c.redis.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("showtime cache read failed", "key", key, "error", err)
	}

	showtime, err := c.inner.Resolve(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(showtime)
	if err == nil {
		if err := c.redis.Set(ctx, key, encoded, showtimeCacheTTL).Err(); err != nil {
			c.logger.Warn("showtime cache write failed", "key", key, "error", err)
		}
	}

	return showtime, nil
}

// GetAll is a listing query and bypasses the cache.
func (c *CachedShowtimeRegistry) GetAll(ctx context.Context, filmID int) ([]domain.Showtime, error) {
	return c.inner.GetAll(ctx, filmID)
}
