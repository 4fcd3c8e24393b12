package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := New[string](time.Minute)
	c.Set("cus_1", "v")

	got, ok := c.Get("cus_1")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != "v" {
		t.Errorf("expected 'v', got %q", got)
	}
}

func TestCacheExpiryOnRead(t *testing.T) {
	c := New[int](time.Minute)
	agora := time.Now()
	c.now = func() time.Time { return agora }

	c.Set("cus_1", 42)

	agora = agora.Add(2 * time.Minute)
	if _, ok := c.Get("cus_1"); ok {
		t.Error("expected entry to be expired")
	}
	// The expired entry is gone, not just hidden.
	if len(c.items) != 0 {
		t.Errorf("expected expired entry to be deleted, %d left", len(c.items))
	}
}

func TestCacheDelete(t *testing.T) {
	c := New[int](time.Minute)
	c.Set("cus_1", 1)
	c.Delete("cus_1")

	if _, ok := c.Get("cus_1"); ok {
		t.Error("expected miss after delete")
	}
}

func TestCacheMissUnknownKey(t *testing.T) {
	c := New[int](time.Minute)
	if _, ok := c.Get("nope"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestCacheEvictsClosestToExpiryWhenFull(t *testing.T) {
	c := New[int](time.Hour)
	base := time.Now()
	tick := 0
	c.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Millisecond) }

	for i := 0; i < maxEntries; i++ {
		c.Set(fmt.Sprintf("cus_%d", i), i)
	}
	c.Set("cus_extra", -1)

	// cus_0 was set first, so its expiry is the soonest.
	if _, ok := c.Get("cus_0"); ok {
		t.Error("expected the entry closest to expiry to be evicted")
	}
	if _, ok := c.Get("cus_extra"); !ok {
		t.Error("expected the new entry to be present")
	}
	if len(c.items) > maxEntries {
		t.Errorf("cache grew past its cap: %d entries", len(c.items))
	}
}

func TestCacheFullPurgesExpiredBeforeEvicting(t *testing.T) {
	c := New[int](time.Minute)
	agora := time.Now()
	c.now = func() time.Time { return agora }

	c.Set("cus_old", 1)
	agora = agora.Add(2 * time.Minute)
	for i := 1; i < maxEntries; i++ {
		c.Set(fmt.Sprintf("cus_%d", i), i)
	}

	c.Set("cus_extra", -1)

	if _, ok := c.Get("cus_extra"); !ok {
		t.Error("expected the new entry to be present")
	}
	// Only the expired entry went away; every live one survived.
	if _, ok := c.Get("cus_1"); !ok {
		t.Error("expected live entries to survive the purge")
	}
	if len(c.items) != maxEntries {
		t.Errorf("expected exactly %d entries, got %d", maxEntries, len(c.items))
	}
}
