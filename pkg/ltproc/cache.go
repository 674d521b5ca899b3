package ltproc

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Cache keeps recently used dictionaries open, keyed by absolute path.
// Concurrent requests for the same path share one load. Evicted
// dictionaries are closed once their last user closes them. A Cache is
// safe for concurrent use.
type Cache struct {
	entries *lru.Cache[string, *Dictionary]
	group   singleflight.Group
	opts    OpenOptions
	log     *slog.Logger
}

// NewCache returns a cache holding at most size dictionaries, opened
// with opts.
func NewCache(size int, opts OpenOptions) (*Cache, error) {
	c := &Cache{opts: opts, log: opts.Logger}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	entries, err := lru.NewWithEvict(size, func(key string, d *Dictionary) {
		c.log.Debug("dictionary evicted", "path", key)
		_ = d.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("ltproc: new cache: %w", err)
	}
	c.entries = entries
	return c, nil
}

// Get returns the dictionary at path, loading it on a miss. The caller
// owns one reference and must Close it when done.
func (c *Cache) Get(path string) (*Dictionary, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("ltproc: %s: %w", path, err)
	}
	for {
		if d, ok := c.entries.Get(key); ok && d.retain() {
			return d, nil
		}
		v, err, shared := c.group.Do(key, func() (any, error) {
			if d, ok := c.entries.Get(key); ok && !d.Closed() {
				return d, nil
			}
			c.log.Debug("dictionary cache miss", "path", key)
			d, err := Open(key, c.opts)
			if err != nil {
				return nil, err
			}
			c.entries.Add(key, d)
			return d, nil
		})
		if err != nil {
			return nil, err
		}
		if d := v.(*Dictionary); d.retain() {
			if shared {
				c.log.Debug("dictionary load shared", "path", key)
			}
			return d, nil
		}
		// Evicted between the load and retain; try again.
	}
}

// Preload loads every path concurrently. It stops at the first error.
func (c *Cache) Preload(ctx context.Context, paths ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := c.Get(path)
			if err != nil {
				return fmt.Errorf("preload %s: %w", path, err)
			}
			return d.Close()
		})
	}
	return g.Wait()
}

// Len returns the number of cached dictionaries.
func (c *Cache) Len() int { return c.entries.Len() }

// Close drops every cached dictionary.
func (c *Cache) Close() {
	c.entries.Purge()
}
