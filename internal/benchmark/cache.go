package benchmark

import (
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Loader produces a Dataset.
type Loader func() (*Dataset, error)

// EmbeddedLoader loads the dataset compiled into the binary.
func EmbeddedLoader() Loader {
	return Embedded
}

// FileLoader loads the dataset from path on every call.
func FileLoader(path string) Loader {
	return func() (*Dataset, error) { return ParseFile(path) }
}

// Cache holds a lazily loaded Dataset. The first Get loads it (concurrent
// first calls share one load); Invalidate drops it so the next Get reloads.
// A load that started before an Invalidate never repopulates the cache.
type Cache struct {
	load  Loader
	group singleflight.Group

	mu       sync.RWMutex
	ds       *Dataset
	loadedAt time.Time
	gen      uint64 // bumped by Invalidate
}

// NewCache creates an empty Cache around load.
func NewCache(load Loader) *Cache {
	if load == nil {
		load = EmbeddedLoader()
	}
	return &Cache{load: load}
}

// NewStaticCache returns a Cache pre-populated with ds.
func NewStaticCache(ds *Dataset) *Cache {
	return &Cache{
		load:     func() (*Dataset, error) { return ds, nil },
		ds:       ds,
		loadedAt: time.Now(),
	}
}

// Get returns the cached dataset, loading it on first use.
func (c *Cache) Get() (*Dataset, error) {
	c.mu.RLock()
	ds, gen := c.ds, c.gen
	c.mu.RUnlock()
	if ds != nil {
		return ds, nil
	}

	v, err, _ := c.group.Do("dataset-"+strconv.FormatUint(gen, 10), func() (any, error) {
		c.mu.RLock()
		cached := c.ds
		c.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		loaded, err := c.load()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gen == gen {
			c.ds = loaded
			c.loadedAt = time.Now()
		}
		c.mu.Unlock()

		zap.L().Debug("benchmark: dataset loaded",
			zap.String("version", loaded.Version),
			zap.Int("industries", len(loaded.Industries)),
		)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

// Invalidate drops the cached dataset.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.ds = nil
	c.loadedAt = time.Time{}
	c.gen++
	c.mu.Unlock()
}

// Loaded reports whether a dataset is currently cached and when it was loaded.
func (c *Cache) Loaded() (bool, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ds != nil, c.loadedAt
}
