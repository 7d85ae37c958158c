package cache

import (
	"testing"
	"time"
)

func TestInMemory_SetGet(t *testing.T) {
	c := New[string](time.Minute)
	defer c.Close()

	c.Set("tip", "cook at home")

	got, ok := c.Get("tip")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "cook at home" {
		t.Errorf("expected 'cook at home', got %q", got)
	}
}

func TestInMemory_Miss(t *testing.T) {
	c := New[string](time.Minute)
	defer c.Close()

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected cache miss")
	}
}

func TestInMemory_Expiry(t *testing.T) {
	c := New[int](time.Minute)
	defer c.Close()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	c.Set("k", 42)

	c.now = func() time.Time { return base.Add(59 * time.Second) }
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit before ttl")
	}

	c.now = func() time.Time { return base.Add(time.Minute) }
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss at ttl")
	}

	c.purgeExpired()
	if c.Len() != 0 {
		t.Errorf("expected expired entry purged, got %d entries", c.Len())
	}
}

func TestInMemory_Delete(t *testing.T) {
	c := New[string](time.Minute)
	defer c.Close()

	c.Set("k", "v")
	c.Delete("k")

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestInMemory_ZeroTTLDisablesCaching(t *testing.T) {
	c := New[string](0)
	defer c.Close()

	c.Set("k", "v")
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected zero ttl to disable caching")
	}
}

func TestInMemory_CloseTwice(t *testing.T) {
	c := New[string](time.Second)
	c.Close()
	c.Close()
}
