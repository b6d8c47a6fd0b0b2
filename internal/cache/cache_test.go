package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/session"
)

func record(ref string) *session.Record {
	return &session.Record{
		SessionRef: ref,
		OwnerID:    "alice",
		Principal:  []byte("payload"),
		Device:     session.Device{IP: "203.0.113.1", UserAgent: "test", LoginAt: 1},
		CreatedAt:  1,
		ExpiresAt:  2,
	}
}

func TestCacheHitAndMiss(t *testing.T) {
	c := New(8, time.Minute)

	if _, ok := c.Get("absent"); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	c.Add(record("ref-1"))
	got, ok := c.Get("ref-1")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.OwnerID != "alice" {
		t.Fatalf("owner mismatch: %q", got.OwnerID)
	}
}

func TestCacheTTLEviction(t *testing.T) {
	c := New(8, 20*time.Millisecond)

	c.Add(record("ref-1"))
	if _, ok := c.Get("ref-1"); !ok {
		t.Fatal("expected hit before TTL")
	}

	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get("ref-1"); ok {
		t.Fatal("entry should have aged out")
	}
}

func TestCacheCapacityBound(t *testing.T) {
	const size = 4
	c := New(size, time.Minute)

	for i := 0; i < size*3; i++ {
		c.Add(record(fmt.Sprintf("ref-%d", i)))
	}

	if c.Len() > size {
		t.Fatalf("cache exceeded capacity: %d > %d", c.Len(), size)
	}
	// The most recently added entry must have survived.
	if _, ok := c.Get(fmt.Sprintf("ref-%d", size*3-1)); !ok {
		t.Fatal("most recent entry was evicted")
	}
}

func TestCacheSnapshotIsolation(t *testing.T) {
	c := New(8, time.Minute)

	rec := record("ref-1")
	c.Add(rec)

	// Mutating the original after publish must not be observable.
	rec.Principal[0] = 'X'
	rec.OwnerID = "mallory"

	got, ok := c.Get("ref-1")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Principal[0] == 'X' || got.OwnerID == "mallory" {
		t.Fatal("published snapshot aliased the caller's record")
	}

	// Mutating a read result must not be observable by later readers.
	got.Principal[0] = 'Y'
	again, _ := c.Get("ref-1")
	if again.Principal[0] == 'Y' {
		t.Fatal("read snapshot aliased the cached record")
	}
}

func TestCacheRemove(t *testing.T) {
	c := New(8, time.Minute)

	c.Add(record("ref-1"))
	c.Remove("ref-1")
	if _, ok := c.Get("ref-1"); ok {
		t.Fatal("entry should be gone after Remove")
	}

	// Removing an absent entry is a no-op.
	c.Remove("ref-1")
}

func TestNilCacheIsAlwaysMiss(t *testing.T) {
	var c *Cache

	c.Add(record("ref-1"))
	if _, ok := c.Get("ref-1"); ok {
		t.Fatal("nil cache must always miss")
	}
	c.Remove("ref-1")
	c.Purge()
	if c.Len() != 0 {
		t.Fatal("nil cache length must be zero")
	}
}
