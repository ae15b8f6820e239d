package memstore

import (
	"fmt"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock { return &fakeClock{t: time.Unix(1700000000, 0)} }

func newStore(clk *fakeClock, max int) *Store {
	return New(5*time.Minute, max, WithClock(clk.Now))
}

func TestSetThenGet(t *testing.T) {
	s := newStore(newClock(), 100)
	s.Set("k", []byte("v"))
	got, ok := s.Get("k")
	if !ok || string(got) != "v" {
		t.Fatalf("Get = %q,%v, want v,true", got, ok)
	}
}

func TestGetMissing(t *testing.T) {
	s := newStore(newClock(), 100)
	if _, ok := s.Get("absent"); ok {
		t.Fatalf("expected miss")
	}
}

func TestLazyExpiry(t *testing.T) {
	clk := newClock()
	s := newStore(clk, 100)
	s.Set("k", []byte("v"))

	clk.Advance(5 * time.Minute)
	if _, ok := s.Get("k"); !ok {
		t.Fatalf("entry at exactly TTL should still be fresh")
	}

	clk.Advance(time.Second)
	if _, ok := s.Get("k"); ok {
		t.Fatalf("entry past TTL should be absent")
	}
	if s.Len() != 0 {
		t.Fatalf("expired entry should be removed on read, len=%d", s.Len())
	}
}

func TestFIFOEvictionAtCapacity(t *testing.T) {
	clk := newClock()
	s := newStore(clk, 100)
	for i := 0; i < 100; i++ {
		s.Set(fmt.Sprintf("k%03d", i), []byte("v"))
	}
	if s.Len() != 100 {
		t.Fatalf("len=%d, want 100", s.Len())
	}

	s.Set("overflow", []byte("v"))
	if s.Len() != 100 {
		t.Fatalf("len after overflow=%d, want 100", s.Len())
	}
	if _, ok := s.Get("k000"); ok {
		t.Fatalf("oldest entry should have been evicted")
	}
	if _, ok := s.Get("k001"); !ok {
		t.Fatalf("second-oldest entry should survive")
	}
	if _, ok := s.Get("overflow"); !ok {
		t.Fatalf("new entry should be present")
	}
}

func TestEvictionIgnoresAccessRecency(t *testing.T) {
	s := newStore(newClock(), 3)
	s.Set("a", []byte("1"))
	s.Set("b", []byte("2"))
	s.Set("c", []byte("3"))

	// Touch the oldest entry; FIFO must not promote it.
	if _, ok := s.Get("a"); !ok {
		t.Fatalf("expected hit on a")
	}
	s.Set("d", []byte("4"))
	if _, ok := s.Get("a"); ok {
		t.Fatalf("a should be evicted despite the recent read")
	}
}

func TestOverwriteKeepsFIFOSlotAndCapacity(t *testing.T) {
	s := newStore(newClock(), 3)
	s.Set("a", []byte("1"))
	s.Set("b", []byte("2"))
	s.Set("c", []byte("3"))

	s.Set("a", []byte("1b"))
	if s.Len() != 3 {
		t.Fatalf("overwrite changed size: %d", s.Len())
	}
	got, _ := s.Get("a")
	if string(got) != "1b" {
		t.Fatalf("overwrite did not replace value: %q", got)
	}

	// a kept its head slot, so the next insert evicts it.
	s.Set("d", []byte("4"))
	if _, ok := s.Get("a"); ok {
		t.Fatalf("overwritten entry should keep its eviction slot")
	}
	if _, ok := s.Get("b"); !ok {
		t.Fatalf("b should survive")
	}
}

func TestOverwriteRefreshesTTL(t *testing.T) {
	clk := newClock()
	s := newStore(clk, 100)
	s.Set("k", []byte("v1"))

	clk.Advance(4 * time.Minute)
	s.Set("k", []byte("v2"))

	clk.Advance(4 * time.Minute)
	got, ok := s.Get("k")
	if !ok || string(got) != "v2" {
		t.Fatalf("rewrite should fully replace the entry, got %q,%v", got, ok)
	}
}

func TestDeleteAndClear(t *testing.T) {
	s := newStore(newClock(), 100)
	s.Set("a", []byte("1"))
	s.Set("b", []byte("2"))

	s.Delete("a", "missing")
	if _, ok := s.Get("a"); ok {
		t.Fatalf("a should be deleted")
	}
	if s.Len() != 1 {
		t.Fatalf("len=%d, want 1", s.Len())
	}

	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("len after clear=%d", s.Len())
	}

	// Deleted keys must not occupy FIFO slots.
	for i := 0; i < 5; i++ {
		s.Set(fmt.Sprintf("x%d", i), []byte("v"))
	}
	if s.Len() != 5 {
		t.Fatalf("len=%d, want 5", s.Len())
	}
}
