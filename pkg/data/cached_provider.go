package data

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ducminhle1904/mc-portfolio/internal/monitoring"
	"github.com/ducminhle1904/mc-portfolio/pkg/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// MemoryCache implements DataCache using in-memory storage
type MemoryCache struct {
	cache map[string][]types.PricePoint
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: make(map[string][]types.PricePoint),
	}
}

// Get retrieves data from cache if available
func (c *MemoryCache) Get(key string) ([]types.PricePoint, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	data, exists := c.cache[key]
	if exists {
		// Return a copy to prevent external modifications
		result := make([]types.PricePoint, len(data))
		copy(result, data)
		return result, true
	}

	return nil, false
}

// Set stores data in cache
func (c *MemoryCache) Set(key string, data []types.PricePoint) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Store a copy to prevent external modifications
	cached := make([]types.PricePoint, len(data))
	copy(cached, data)
	c.cache[key] = cached
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string][]types.PricePoint)
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// CachedProvider wraps another provider, caching successful lookups and
// collapsing concurrent identical requests into one upstream call
type CachedProvider struct {
	provider PriceHistoryProvider
	cache    DataCache
	group    singleflight.Group
	logger   zerolog.Logger
}

// NewCachedProvider creates a new cached data provider
func NewCachedProvider(provider PriceHistoryProvider) *CachedProvider {
	return NewCachedProviderWithCache(provider, NewMemoryCache())
}

// NewCachedProviderWithCache creates a new cached data provider with custom cache
func NewCachedProviderWithCache(provider PriceHistoryProvider, cache DataCache) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    cache,
		logger:   zerolog.Nop(),
	}
}

// WithLogger sets the provider logger
func (p *CachedProvider) WithLogger(l zerolog.Logger) *CachedProvider {
	p.logger = l
	return p
}

// Name returns the name of the underlying provider with cache indication
func (p *CachedProvider) Name() string {
	return "cached " + p.provider.Name()
}

// History implements PriceHistoryProvider
func (p *CachedProvider) History(ctx context.Context, ticker string, start, end time.Time) ([]types.PricePoint, error) {
	key := cacheKey(ticker, start, end)

	if cached, ok := p.cache.Get(key); ok {
		monitoring.RecordProviderRequest(p.provider.Name(), "hit")
		return cached, nil
	}

	v, err, shared := p.group.Do(key, func() (interface{}, error) {
		p.logger.Debug().Str("ticker", ticker).Str("provider", p.provider.Name()).Msg("loading price history")

		points, err := p.provider.History(ctx, ticker, start, end)
		if err != nil {
			monitoring.RecordProviderRequest(p.provider.Name(), "error")
			return nil, err
		}

		p.cache.Set(key, points)
		monitoring.RecordProviderRequest(p.provider.Name(), "miss")
		p.logger.Debug().Str("ticker", ticker).Int("points", len(points)).Msg("price history cached")
		return points, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		monitoring.RecordProviderRequest(p.provider.Name(), "shared")
	}

	points := v.([]types.PricePoint)
	out := make([]types.PricePoint, len(points))
	copy(out, points)
	return out, nil
}

// GetCache returns the underlying cache for external management
func (p *CachedProvider) GetCache() DataCache {
	return p.cache
}

// ClearCache clears all cached data
func (p *CachedProvider) ClearCache() {
	p.cache.Clear()
}

func cacheKey(ticker string, start, end time.Time) string {
	return fmt.Sprintf("%s|%s|%s", strings.ToUpper(ticker), formatDate(start), formatDate(end))
}
