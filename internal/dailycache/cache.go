// Package dailycache memoises assembled daily responses until the client's
// local midnight.
package dailycache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/TheRealTwizzy/raiderdle/internal/localday"
)

// Key identifies one cached payload. The raw offset is part of the key:
// two offsets on the same literal date may straddle a day boundary.
type Key struct {
	Category string
	Day      localday.Day
	Offset   int
}

func (k Key) String() string {
	return k.Category + "-today-" + k.Day.Key() + "-offset-" + strconv.Itoa(k.Offset)
}

type entry struct {
	payload []byte
	expiry  time.Time
}

// Cache holds encoded payloads in memory. It is advisory: a lost race only
// costs a recomputation.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]entry
	group   singleflight.Group
	now     func() time.Time
}

func New(now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{entries: map[Key]entry{}, now: now}
}

// Get returns the payload for key while now is before its expiry.
func (c *Cache) Get(key Key) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expiry) {
		return nil, false
	}
	return e.payload, true
}

// Put stores payload until expiry, superseding any previous entry.
func (c *Cache) Put(key Key, payload []byte, expiry time.Time) {
	c.mu.Lock()
	c.entries[key] = entry{payload: payload, expiry: expiry}
	c.mu.Unlock()
}

// Fill returns the cached payload or runs build once for all concurrent
// callers of the same key, caching its result on success. The build runs on
// a context detached from every caller's cancellation; each caller stops
// waiting when its own ctx is done without failing the others.
func (c *Cache) Fill(ctx context.Context, key Key, expiry time.Time, build func(context.Context) ([]byte, error)) ([]byte, error) {
	if payload, ok := c.Get(key); ok {
		return payload, nil
	}
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.String(), func() (any, error) {
		if payload, ok := c.Get(key); ok {
			return payload, nil
		}
		payload, err := build(shared)
		if err != nil {
			return nil, err
		}
		c.Put(key, payload, expiry)
		return payload, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// Prune drops expired entries and reports how many were removed.
func (c *Cache) Prune() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expiry) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
