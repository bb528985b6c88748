package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCache_RoundTrip(t *testing.T) {
	c := New(time.Hour)
	c.Set("technology", "report-body", time.Minute)

	got, ok := c.Get("technology")
	if !ok {
		t.Fatal("Get() miss, want hit")
	}
	if got != "report-body" {
		t.Errorf("Get() = %q, want %q", got, "report-body")
	}
}

func TestCache_Expiry(t *testing.T) {
	base := time.Now()
	c := New(time.Hour)
	c.now = func() time.Time { return base }

	c.Set("energy", "v1", time.Minute)

	// 过期前可读
	if _, ok := c.Get("energy"); !ok {
		t.Fatal("Get() before expiry miss, want hit")
	}

	// 时钟拨过 TTL 后视为不存在，且条目被惰性清除
	c.now = func() time.Time { return base.Add(time.Minute + time.Second) }
	if _, ok := c.Get("energy"); ok {
		t.Fatal("Get() after expiry hit, want miss")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after lazy eviction, want 0", c.Len())
	}
}

func TestCache_Overwrite(t *testing.T) {
	c := New(time.Hour)
	c.Set("k", "old", time.Minute)
	c.Set("k", "new", time.Minute)

	got, _ := c.Get("k")
	if got != "new" {
		t.Errorf("Get() = %q, want %q", got, "new")
	}
}

func TestCache_DefaultTTL(t *testing.T) {
	base := time.Now()
	c := New(time.Minute)
	c.now = func() time.Time { return base }

	c.Set("k", "v", 0)

	c.now = func() time.Time { return base.Add(30 * time.Second) }
	if _, ok := c.Get("k"); !ok {
		t.Fatal("Get() within default TTL miss, want hit")
	}

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok := c.Get("k"); ok {
		t.Fatal("Get() after default TTL hit, want miss")
	}
}

func TestCache_CleanupExpired(t *testing.T) {
	base := time.Now()
	c := New(time.Hour)
	c.now = func() time.Time { return base }

	c.Set("a", "1", time.Minute)
	c.Set("b", "2", time.Hour)

	c.now = func() time.Time { return base.Add(10 * time.Minute) }
	if removed := c.CleanupExpired(); removed != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", removed)
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("Get(b) miss after cleanup, want hit")
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New(time.Hour)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("sector-%d", i%5)
			c.Set(key, "report", time.Minute)
			c.Get(key)
		}(i)
	}
	wg.Wait()

	if c.Len() != 5 {
		t.Errorf("Len() = %d, want 5", c.Len())
	}
}
