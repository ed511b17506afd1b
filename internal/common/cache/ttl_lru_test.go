package cache

import (
	"testing"
	"time"
)

func TestNewTTLLRUCache_Disabled(t *testing.T) {
	if c := NewTTLLRUCache[int](0, time.Minute); c != nil {
		t.Fatal("expected nil cache for zero capacity")
	}
	if c := NewTTLLRUCache[int](10, 0); c != nil {
		t.Fatal("expected nil cache for zero ttl")
	}

	var c *TTLLRUCache[int]
	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Fatal("nil cache must always miss")
	}
	if c.Len() != 0 {
		t.Fatal("nil cache must be empty")
	}
}

func TestTTLLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewTTLLRUCache[string](2, time.Minute)

	c.Set("a", "A")
	c.Set("b", "B")
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected hit for a")
	}
	c.Set("c", "C")

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != "A" {
		t.Fatalf("expected a=A, got %q ok=%v", v, ok)
	}
	if v, ok := c.Get("c"); !ok || v != "C" {
		t.Fatalf("expected c=C, got %q ok=%v", v, ok)
	}
}

func TestTTLLRUCache_Expiry(t *testing.T) {
	c := NewTTLLRUCache[int](4, time.Second)
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	c.Set("k", 7)
	if v, ok := c.Get("k"); !ok || v != 7 {
		t.Fatalf("expected hit 7, got %d ok=%v", v, ok)
	}

	now = now.Add(time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry to be removed, len=%d", c.Len())
	}
}

func TestTTLLRUCache_OverwriteAndDelete(t *testing.T) {
	c := NewTTLLRUCache[int](4, time.Minute)
	c.Set("k", 1)
	c.Set("k", 2)
	if v, _ := c.Get("k"); v != 2 {
		t.Fatalf("expected overwritten value 2, got %d", v)
	}
	if c.Len() != 1 {
		t.Fatalf("expected single entry, got %d", c.Len())
	}
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after delete")
	}
}
