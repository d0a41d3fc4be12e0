package cache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestMemory_PutGet(t *testing.T) {
	c := NewMemory(time.Now)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Error("Get() on missing key returned ok")
	}

	want := []byte(`{"answer":"hola"}`)
	if err := c.Put(ctx, "k", want, time.Minute); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok := c.Get(ctx, "k")
	if !ok {
		t.Fatal("Get() returned not ok after Put")
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Get() = %q, want %q", got, want)
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	c := NewMemory(clock)
	ctx := context.Background()

	c.Put(ctx, "k", []byte("v"), 2*time.Minute)

	now = now.Add(time.Minute)
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Error("entry expired before TTL")
	}

	now = now.Add(61 * time.Second)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("entry still readable after TTL")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after lazy expiry, want 0", c.Len())
	}
}

func TestMemory_NoExpiryForZeroTTL(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	c := NewMemory(clock)
	ctx := context.Background()

	c.Put(ctx, "k", []byte("v"), 0)

	now = now.Add(240 * time.Hour)
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Error("zero-TTL entry expired")
	}
}

func TestMemory_ValueIsolated(t *testing.T) {
	c := NewMemory(time.Now)
	ctx := context.Background()

	original := []byte("abc")
	c.Put(ctx, "k", original, time.Minute)
	original[0] = 'x'

	got, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value mutated to %q", got)
	}

	got[0] = 'y'
	again, _ := c.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("returned value aliased cache storage, got %q", again)
	}
}

func TestMemory_OverwriteRefreshesTTL(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	c := NewMemory(clock)
	ctx := context.Background()

	c.Put(ctx, "k", []byte("old"), time.Minute)
	now = now.Add(50 * time.Second)
	c.Put(ctx, "k", []byte("new"), time.Minute)

	now = now.Add(30 * time.Second)
	got, ok := c.Get(ctx, "k")
	if !ok || string(got) != "new" {
		t.Errorf("Get() = %q, %v after refresh, want new, true", got, ok)
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	c, err := New(Config{Type: "memory"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := c.(*Memory); !ok {
		t.Errorf("New() returned %T, want *Memory", c)
	}
}
