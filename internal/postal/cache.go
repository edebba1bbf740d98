package postal

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultDomesticCountry is the only country whose rows are loaded by default.
const DefaultDomesticCountry = "US"

// Cache builds an Index from a Source the first time it is needed and
// hands out the same Index afterwards.
type Cache struct {
	source   Source
	domestic string
	onLoad   []func(*Index)

	mu    sync.Mutex
	index atomic.Pointer[Index]
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithDomesticCountry overrides the country code rows must carry to be loaded.
func WithDomesticCountry(country string) CacheOption {
	return func(c *Cache) {
		if country != "" {
			c.domestic = country
		}
	}
}

// WithLoadHook registers fn to run once after every successful load.
func WithLoadHook(fn func(*Index)) CacheOption {
	return func(c *Cache) {
		if fn != nil {
			c.onLoad = append(c.onLoad, fn)
		}
	}
}

// NewCache returns a cache that loads lazily from source.
func NewCache(source Source, opts ...CacheOption) *Cache {
	c := &Cache{
		source:   source,
		domestic: DefaultDomesticCountry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewStaticCache returns a cache that is already populated with idx.
func NewStaticCache(idx *Index) *Cache {
	c := &Cache{domestic: DefaultDomesticCountry}
	c.index.Store(idx)
	return c
}

// DomesticCountry returns the country code the cache filters on.
func (c *Cache) DomesticCountry() string {
	return c.domestic
}

// Index returns the loaded index, loading it on the first call. Concurrent
// first callers wait for a single load. A failed load is not remembered, so
// a later call tries again.
func (c *Cache) Index(ctx context.Context) (*Index, error) {
	if idx := c.index.Load(); idx != nil {
		return idx, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if idx := c.index.Load(); idx != nil {
		return idx, nil
	}

	idx, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	c.index.Store(idx)
	for _, fn := range c.onLoad {
		fn(idx)
	}
	return idx, nil
}

// Loaded reports whether the index has been published.
func (c *Cache) Loaded() bool {
	return c.index.Load() != nil
}

func (c *Cache) load(ctx context.Context) (*Index, error) {
	logger := zap.S().Named("postal")

	if c.source == nil {
		return nil, fmt.Errorf("%w: no dataset source configured", ErrDatasetUnavailable)
	}

	start := time.Now()
	reader, format, err := c.source.Open(ctx)
	if err != nil {
		logger.Errorw("could not open postal code dataset", "source", c.source.String(), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}
	defer reader.Close()

	records, report, err := Parse(reader, format, c.domestic)
	if err != nil {
		logger.Errorw("could not parse postal code dataset", "source", c.source.String(), "error", err)
		return nil, err
	}

	idx := NewIndex(records, report)
	logger.Infow("postal code dataset loaded",
		append([]interface{}{"source", c.source.String(), "format", format.String(), "took", time.Since(start)}, report.fields()...)...)
	return idx, nil
}
