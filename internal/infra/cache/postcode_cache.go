// Package cache implements the process-wide postcode lookup cache.
package cache

import (
	"context"
	"log/slog"

	"locator/config"
	"locator/internal/domain/entity"
	"locator/internal/domain/repository"
	"locator/internal/domain/service"
	"locator/internal/errors"
	"locator/internal/infra/metrics"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/fx"
	"golang.org/x/sync/singleflight"
)

// entry caches one resolution; a nil location records a confirmed miss.
type entry struct {
	location *entity.Location
}

// PostcodeCache is an LRU of exact lookups keyed by normalized postcode.
// Concurrent misses on one key share a single resolution.
type PostcodeCache struct {
	lru      *expirable.LRU[string, entry]
	group    singleflight.Group
	capacity int
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

var _ service.PostcodeCache = (*PostcodeCache)(nil)

// Params defines the dependencies of the postcode cache
type Params struct {
	fx.In

	Config  *config.Config
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// New creates the cache from config
func New(params Params) *PostcodeCache {
	return NewPostcodeCache(params.Config.Cache, params.Metrics, params.Logger)
}

// NewPostcodeCache creates a cache holding at most cfg.Size entries for cfg.TTL each.
// A zero TTL keeps entries until they are evicted.
func NewPostcodeCache(cfg config.CacheConfig, m *metrics.Metrics, logger *slog.Logger) *PostcodeCache {
	capacity := cfg.Size
	if capacity <= 0 {
		capacity = config.DefaultCacheSize
	}

	return &PostcodeCache{
		lru:      expirable.NewLRU[string, entry](capacity, nil, cfg.TTL),
		capacity: capacity,
		metrics:  m,
		logger:   logger,
	}
}

// Get returns the cached resolution of postcode or resolves and stores it.
// Misses are cached as repository.ErrLocationNotFound; store errors are not cached.
func (c *PostcodeCache) Get(ctx context.Context, postcode string, resolve service.ResolveFunc) (*entity.Location, error) {
	if cached, ok := c.lru.Get(postcode); ok {
		return c.hit(cached)
	}

	value, err, _ := c.group.Do(postcode, func() (any, error) {
		// A caller that lost the race may find the entry already stored.
		if cached, ok := c.lru.Get(postcode); ok {
			return cached, nil
		}

		c.record(metrics.LookupMiss)

		// Shared by every waiter, so one caller's cancellation must not fail the rest.
		location, err := resolve(context.WithoutCancel(ctx), postcode)
		switch {
		case err == nil:
		case errors.Is(err, repository.ErrLocationNotFound):
			location = nil
		default:
			if c.metrics != nil {
				c.metrics.CacheErrors.Inc()
			}

			return nil, err
		}

		resolved := entry{location: location}
		if evicted := c.lru.Add(postcode, resolved); evicted && c.metrics != nil {
			c.metrics.CacheEvictions.Inc()
		}

		c.logger.DebugContext(ctx, "Postcode cached",
			slog.String("postcode", postcode),
			slog.Bool("found", location != nil),
		)

		return resolved, nil
	})
	if err != nil {
		return nil, err
	}

	return lookupResult(value.(entry))
}

// Purge drops every entry.
func (c *PostcodeCache) Purge() {
	c.lru.Purge()
}

// Len returns the number of resident entries.
func (c *PostcodeCache) Len() int {
	return c.lru.Len()
}

// Capacity returns the maximum number of entries.
func (c *PostcodeCache) Capacity() int {
	return c.capacity
}

func (c *PostcodeCache) hit(cached entry) (*entity.Location, error) {
	if cached.location == nil {
		c.record(metrics.LookupNegativeHit)
	} else {
		c.record(metrics.LookupHit)
	}

	return lookupResult(cached)
}

func (c *PostcodeCache) record(result string) {
	if c.metrics != nil {
		c.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}

// lookupResult hands out a copy so callers cannot mutate the resident entry.
func lookupResult(cached entry) (*entity.Location, error) {
	if cached.location == nil {
		return nil, repository.ErrLocationNotFound
	}

	location := *cached.location

	return &location, nil
}
