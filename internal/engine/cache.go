package engine

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LoadKey is the only key the dashboard caches under.
const LoadKey = "dataset-load"

// LoadFunc produces the value stored in a Cache.
type LoadFunc func(ctx context.Context) (*Dataset, error)

// Cache memoizes dataset loads per key. The first Get for a key runs the
// load; concurrent callers wait for that same load. Failed loads are not
// stored, so the next Get tries again. A load that was in flight when
// Invalidate ran is handed to its waiters but not stored.
type Cache struct {
	load    LoadFunc
	mu      sync.RWMutex
	entries map[string]*Dataset
	gen     uint64
	group   singleflight.Group
}

func NewCache(load LoadFunc) *Cache {
	return &Cache{
		load:    load,
		entries: make(map[string]*Dataset),
	}
}

// Get returns the cached Dataset, loading it on first access.
func (c *Cache) Get(ctx context.Context) (*Dataset, error) {
	if ds, ok := c.Peek(); ok {
		return ds, nil
	}

	ch := c.group.DoChan(LoadKey, func() (interface{}, error) {
		c.mu.RLock()
		ds, ok := c.entries[LoadKey]
		gen := c.gen
		c.mu.RUnlock()
		if ok {
			return ds, nil
		}
		// Shared by every waiter; detached from the first caller's cancellation.
		ds, err := c.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.entries[LoadKey] = ds
		}
		c.mu.Unlock()
		return ds, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Dataset), nil
	}
}

// Peek returns the cached Dataset without loading.
func (c *Cache) Peek() (*Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ds, ok := c.entries[LoadKey]
	return ds, ok
}

// Invalidate drops the cached Dataset; the next Get reloads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	delete(c.entries, LoadKey)
	c.gen++
	c.mu.Unlock()
	c.group.Forget(LoadKey)
}
