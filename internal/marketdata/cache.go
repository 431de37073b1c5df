package marketdata

import (
	"sync"
	"time"
)

type cacheItem struct {
	value    interface{}
	expireAt time.Time
}

func (c cacheItem) expired() bool {
	return time.Now().After(c.expireAt)
}

// ttlCache is a small time-boxed response cache. Entries expire after the
// configured TTL; there is no eviction beyond expiry since the key space is
// bounded by the symbol universe.
type ttlCache struct {
	mu   sync.RWMutex
	data map[string]cacheItem
	ttl  time.Duration
}

func newTTLCache(ttl time.Duration) *ttlCache {
	return &ttlCache{
		data: make(map[string]cacheItem),
		ttl:  ttl,
	}
}

func (c *ttlCache) get(key string) (interface{}, bool) {
	c.mu.RLock()
	item, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if item.expired() {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return nil, false
	}
	return item.value, true
}

func (c *ttlCache) set(key string, value interface{}) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.data[key] = cacheItem{value: value, expireAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}
