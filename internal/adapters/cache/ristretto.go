package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

const DefaultTTL = 30 * time.Second

type ristrettoCache struct {
	store *ristretto.Cache[string, any]
	ttl   time.Duration
}

// NewRistrettoCache returns an in-process cache whose entries expire after
// ttl. Every entry costs one unit, so maxItems bounds the entry count.
func NewRistrettoCache(ttl time.Duration, maxItems int64) (ports.Cache, func(), error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	store, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cache: %w", err)
	}

	c := &ristrettoCache{store: store, ttl: ttl}
	return c, store.Close, nil
}

func (c *ristrettoCache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

// Set waits for the write to land so a read right after sees it.
func (c *ristrettoCache) Set(key string, value any) {
	c.store.SetWithTTL(key, value, 1, c.ttl)
	c.store.Wait()
}

func (c *ristrettoCache) Delete(keys ...string) {
	for _, k := range keys {
		c.store.Del(k)
	}
}
