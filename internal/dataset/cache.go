package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
	"github.com/wonny/fii-advisor/backend/pkg/redis"
)

// CachedProvider caches each (kind, year) slice of an underlying provider in Redis
type CachedProvider struct {
	next   contracts.DatasetProvider
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedProvider wraps next. A disabled Redis client turns caching off.
func NewCachedProvider(next contracts.DatasetProvider, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = redis.TTLDaily
	}
	return &CachedProvider{next: next, cache: cache, ttl: ttl, logger: log.WithComponent("dataset_cache")}
}

// Load returns the concatenation of cached per-year slices
func (p *CachedProvider) Load(ctx context.Context, kind contracts.DatasetKind, years []int) ([]contracts.Row, error) {
	var all []contracts.Row
	for _, year := range years {
		var rows []contracts.Row
		err := p.cache.GetOrSet(ctx, redis.DatasetKey(string(kind), year), &rows, p.ttl, func() (interface{}, error) {
			p.logger.WithFields(map[string]interface{}{
				"kind": kind,
				"year": year,
			}).Debug("Dataset cache miss")
			return p.next.Load(ctx, kind, []int{year})
		})
		if err != nil {
			return nil, fmt.Errorf("load %s %d: %w", kind, year, err)
		}
		all = append(all, rows...)
	}

	if all == nil {
		all = []contracts.Row{}
	}
	return all, nil
}

// Invalidate drops cached slices for year (0 = all years)
func (p *CachedProvider) Invalidate(ctx context.Context, year int) error {
	pattern := "dataset:*"
	if year > 0 {
		pattern = fmt.Sprintf("dataset:*:%d", year)
	}

	n, err := p.cache.DeletePattern(ctx, pattern)
	if err != nil {
		return err
	}
	p.logger.WithFields(map[string]interface{}{
		"pattern": pattern,
		"deleted": n,
	}).Info("Dataset cache invalidated")
	return nil
}
