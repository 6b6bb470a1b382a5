package cache

import (
	"context"
	"testing"
	"time"
)

func TestLRUCache_ExpiryAndEviction(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](2, time.Hour).WithClock(func() time.Time { return now })

	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a")
	}
	// a was just used, so b is the eviction victim
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b evicted")
	}
	if c.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", c.Size())
	}

	now = now.Add(2 * time.Hour)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", c.Size())
	}
}

func TestLRUCache_DeleteFunc(t *testing.T) {
	c := NewLRUCache[int](10, time.Hour)
	c.Set("x", 1)
	c.Set("y", 2)
	c.Set("z", 1)
	if n := c.DeleteFunc(func(v int) bool { return v == 1 }); n != 2 {
		t.Fatalf("DeleteFunc() = %d, want 2", n)
	}
	if _, ok := c.Get("y"); !ok {
		t.Fatal("expected y kept")
	}
}

func TestManager_CleanAll(t *testing.T) {
	now := time.Now()
	c := NewLRUCache[string](10, time.Minute).WithClock(func() time.Time { return now })
	c.Set("k", "v")

	m := NewManager(nil)
	m.Register("test", c)
	if n := m.CleanAll(); n != 0 {
		t.Fatalf("CleanAll() = %d, want 0", n)
	}
	now = now.Add(time.Hour)
	if n := m.CleanAll(); n != 1 {
		t.Fatalf("CleanAll() = %d, want 1", n)
	}

	m.StartCleanup(context.Background(), time.Millisecond)
	m.Stop()
}
