package marketdata

import (
	"testing"
	"time"
)

func TestTTLCache_SetGet(t *testing.T) {
	c := newTTLCache(time.Minute)
	c.set("TCS", 42.5)

	v, ok := c.get("TCS")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if v.(float64) != 42.5 {
		t.Errorf("got %v, want 42.5", v)
	}
}

func TestTTLCache_Miss(t *testing.T) {
	c := newTTLCache(time.Minute)
	if _, ok := c.get("UNKNOWN"); ok {
		t.Error("expected cache miss")
	}
}

func TestTTLCache_Expiry(t *testing.T) {
	c := newTTLCache(10 * time.Millisecond)
	c.set("TCS", "stale")

	time.Sleep(25 * time.Millisecond)

	if _, ok := c.get("TCS"); ok {
		t.Error("expected entry to expire")
	}
	// Expired entries are removed on read.
	c.mu.RLock()
	_, present := c.data["TCS"]
	c.mu.RUnlock()
	if present {
		t.Error("expired entry should be evicted after get")
	}
}

func TestTTLCache_DisabledWhenZeroTTL(t *testing.T) {
	c := newTTLCache(0)
	c.set("TCS", 1.0)
	if _, ok := c.get("TCS"); ok {
		t.Error("cache with zero TTL should not store entries")
	}
}
