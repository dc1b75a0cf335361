package cache

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type evictLog struct {
	mu   sync.Mutex
	keys []string
}

func (l *evictLog) hook(key string, _ int) {
	l.mu.Lock()
	l.keys = append(l.keys, key)
	l.mu.Unlock()
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	var ev evictLog
	c := NewLRUCache[int](2, time.Minute, WithEvictHook(ev.hook))

	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should be present")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d, want 2", c.Size())
	}
	if len(ev.keys) != 1 || ev.keys[0] != "b" {
		t.Fatalf("evicted = %v, want [b]", ev.keys)
	}
}

func TestLRUCache_ReplaceDoesNotEvict(t *testing.T) {
	var ev evictLog
	c := NewLRUCache[int](2, time.Minute, WithEvictHook(ev.hook))
	c.Set("a", 1)
	c.Set("a", 2)

	if v, _ := c.Get("a"); v != 2 {
		t.Fatalf("a = %d, want 2", v)
	}
	if len(ev.keys) != 0 {
		t.Fatalf("unexpected evictions %v", ev.keys)
	}
}

func TestLRUCache_TTLAndTouch(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	var ev evictLog
	c := NewLRUCache[int](10, time.Minute, WithEvictHook(ev.hook), WithClock[int](clock.Now))

	c.Set("a", 1)
	c.Set("b", 2)

	clock.Advance(50 * time.Second)
	if !c.Touch("a") {
		t.Fatal("touch on live key should succeed")
	}
	clock.Advance(20 * time.Second)

	if _, ok := c.Get("a"); !ok {
		t.Fatal("touched key should still be live")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have expired")
	}
	if c.Touch("missing") {
		t.Fatal("touch on missing key should fail")
	}

	clock.Advance(2 * time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired = %d, want 1", n)
	}
	if len(ev.keys) != 2 {
		t.Fatalf("evicted = %v, want b and a", ev.keys)
	}
}

func TestLRUCache_DeleteAndPurge(t *testing.T) {
	var ev evictLog
	c := NewLRUCache[int](10, time.Minute, WithEvictHook(ev.hook))
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	c.Delete("a")
	c.Delete("missing")
	if n := c.Purge(); n != 2 {
		t.Fatalf("Purge = %d, want 2", n)
	}
	if c.Size() != 0 {
		t.Fatalf("size after purge = %d", c.Size())
	}
	if len(ev.keys) != 3 {
		t.Fatalf("evicted = %v", ev.keys)
	}
}

func TestManager_CleanNowAndStop(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := NewLRUCache[int](10, time.Second, WithClock[int](clock.Now))
	c.Set("a", 1)

	m := NewManager(nil)
	m.Register(c)
	m.StartCleanup(time.Hour)

	clock.Advance(2 * time.Second)
	if n := m.CleanNow(); n != 1 {
		t.Fatalf("CleanNow = %d, want 1", n)
	}
	m.Stop()
	m.Stop()
}
