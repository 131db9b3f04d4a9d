package cache

import (
	"testing"
	"time"
)

func TestViewCacheGetSet(t *testing.T) {
	c := NewViewCache[string](4, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss on empty cache")
	}
	c.Set("a", "one")
	if v, ok := c.Get("a"); !ok || v != "one" {
		t.Errorf("Get(a) = %q %v", v, ok)
	}
	c.Set("a", "two")
	if v, _ := c.Get("a"); v != "two" {
		t.Errorf("overwrite failed, got %q", v)
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}
}

func TestViewCacheEviction(t *testing.T) {
	c := NewViewCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now the most recently used
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry survived eviction")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry was evicted")
	}
}

func TestViewCacheTTL(t *testing.T) {
	c := NewViewCache[int](4, 10*time.Millisecond)
	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Error("expired entry still served")
	}
	c.Set("b", 2)
	c.Set("c", 3)
	time.Sleep(20 * time.Millisecond)
	if n := c.CleanExpired(); n != 2 {
		t.Errorf("CleanExpired = %d, want 2", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size after cleanup = %d", c.Size())
	}
}

func TestKey(t *testing.T) {
	got := Key("budgets", 7, "EUR")
	if got != "budgets|7|EUR" {
		t.Errorf("Key = %q", got)
	}
	if Key("expenses", 0) != "expenses|0" {
		t.Errorf("Key without parts = %q", Key("expenses", 0))
	}
}
