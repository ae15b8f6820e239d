package search

import (
	"context"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/cafescout/cafescout/internal/cache/keys"
	"github.com/cafescout/cafescout/internal/cache/memstore"
	"github.com/cafescout/cafescout/internal/model"
	"github.com/cafescout/cafescout/internal/provider"
)

// countingProvider wraps the real fallback generator and counts fetches.
type countingProvider struct {
	inner *provider.Client
	calls int
}

func (p *countingProvider) Nearby(ctx context.Context, req model.SearchRequest) provider.Result {
	p.calls++
	return p.inner.Nearby(ctx, req)
}

func newEngine(t *testing.T) (*Engine, *countingProvider, *memstore.Store) {
	t.Helper()
	p := &countingProvider{
		inner: provider.New(nil, nil, "", provider.WithRand(rand.New(rand.NewSource(1)))),
	}
	store := memstore.New(5*time.Minute, 100)
	return New(nil, store, p), p, store
}

var baseReq = model.SearchRequest{
	Latitude:  37.7749,
	Longitude: -122.4194,
	Radius:    5000,
}

func TestMissThenHitServesIdenticalData(t *testing.T) {
	e, p, _ := newEngine(t)
	ctx := context.Background()

	first, err := e.Search(ctx, baseReq)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first.Meta.CacheHit {
		t.Fatalf("first call must be a miss")
	}
	if first.Meta.CacheSource != "mock" {
		t.Fatalf("cacheSource = %q, want mock", first.Meta.CacheSource)
	}
	if first.Meta.Count != 10 || len(first.Data) != 10 {
		t.Fatalf("count = %d", first.Meta.Count)
	}

	second, err := e.Search(ctx, baseReq)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !second.Meta.CacheHit || second.Meta.CacheSource != CacheSourceHit {
		t.Fatalf("second call must hit: %+v", second.Meta)
	}
	if p.calls != 1 {
		t.Fatalf("provider called %d times, want 1", p.calls)
	}

	if first.Data[0].DistanceMeters <= 0 {
		t.Fatalf("miss records should carry raw distances")
	}
	for i := range first.Data {
		a, b := first.Data[i], second.Data[i]
		if !b.Cached {
			t.Fatalf("hit record %d missing cached flag", i)
		}
		if b.DistanceMeters != 0 {
			t.Fatalf("hit record %d kept raw distance %f, which is not serialized", i, b.DistanceMeters)
		}
		// Everything else in the stored payload is returned verbatim.
		if !reflect.DeepEqual(normalizePoint(a), normalizePoint(b)) {
			t.Fatalf("record %d diverged:\n first=%+v\n second=%+v", i, a, b)
		}
	}
}

// normalizePoint zeroes the fields that legitimately differ between a miss
// and the hit replay of the same payload: the informational cached flag and
// the raw distance, which is transient and dropped from the cached bytes.
func normalizePoint(p model.PointOfInterest) model.PointOfInterest {
	p.Cached = false
	p.DistanceMeters = 0
	return p
}

func TestNearbyOriginsShareAnEntry(t *testing.T) {
	e, p, _ := newEngine(t)
	ctx := context.Background()

	if _, err := e.Search(ctx, baseReq); err != nil {
		t.Fatal(err)
	}

	nudged := baseReq
	nudged.Latitude += 0.0002
	nudged.Longitude -= 0.0003
	res, err := e.Search(ctx, nudged)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Meta.CacheHit {
		t.Fatalf("sub-grid perturbation should hit the same entry")
	}
	if p.calls != 1 {
		t.Fatalf("provider called %d times, want 1", p.calls)
	}
}

func TestPageTokenBypassesCacheBothWays(t *testing.T) {
	e, p, store := newEngine(t)
	ctx := context.Background()

	// Warm the first-page entry.
	if _, err := e.Search(ctx, baseReq); err != nil {
		t.Fatal(err)
	}

	paged := baseReq
	paged.PageToken = "tok-2"
	res, err := e.Search(ctx, paged)
	if err != nil {
		t.Fatal(err)
	}
	if res.Meta.CacheHit {
		t.Fatalf("paginated request must not be served from cache")
	}
	if p.calls != 2 {
		t.Fatalf("provider called %d times, want 2", p.calls)
	}
	if store.Len() != 1 {
		t.Fatalf("paginated result must not be stored, len=%d", store.Len())
	}

	// And again: still no cache involvement.
	if _, err := e.Search(ctx, paged); err != nil {
		t.Fatal(err)
	}
	if p.calls != 3 {
		t.Fatalf("provider called %d times, want 3", p.calls)
	}
}

type emptyProvider struct{ calls int }

func (p *emptyProvider) Nearby(_ context.Context, _ model.SearchRequest) provider.Result {
	p.calls++
	return provider.Result{Points: []model.PointOfInterest{}, Source: provider.SourcePlacesAPI}
}

func TestEmptyResultsAreNotCached(t *testing.T) {
	p := &emptyProvider{}
	store := memstore.New(5*time.Minute, 100)
	e := New(nil, store, p)
	ctx := context.Background()

	res, err := e.Search(ctx, baseReq)
	if err != nil {
		t.Fatal(err)
	}
	if res.Meta.Count != 0 || !res.Success {
		t.Fatalf("empty authoritative result should succeed with count 0: %+v", res.Meta)
	}
	if res.Data == nil {
		t.Fatalf("data must be an empty array, not null")
	}
	if store.Len() != 0 {
		t.Fatalf("empty result must not be stored")
	}

	if _, err := e.Search(ctx, baseReq); err != nil {
		t.Fatal(err)
	}
	if p.calls != 2 {
		t.Fatalf("second request should fetch again, calls=%d", p.calls)
	}
}

func TestExpiredEntryFetchesAgain(t *testing.T) {
	now := time.Unix(1700000000, 0)
	clock := func() time.Time { return now }
	store := memstore.New(5*time.Minute, 100, memstore.WithClock(func() time.Time { return now }))
	p := &countingProvider{
		inner: provider.New(nil, nil, "", provider.WithRand(rand.New(rand.NewSource(1)))),
	}
	e := New(nil, store, p)
	e.now = clock

	ctx := context.Background()
	if _, err := e.Search(ctx, baseReq); err != nil {
		t.Fatal(err)
	}

	now = now.Add(5*time.Minute + time.Second)
	res, err := e.Search(ctx, baseReq)
	if err != nil {
		t.Fatal(err)
	}
	if res.Meta.CacheHit {
		t.Fatalf("expired entry must not hit")
	}
	if p.calls != 2 {
		t.Fatalf("provider calls=%d, want 2", p.calls)
	}
}

func TestCorruptEntryIsDiscardedAndRefetched(t *testing.T) {
	e, p, store := newEngine(t)
	ctx := context.Background()

	store.Set(keys.Search(baseReq), []byte("{not json"))

	res, err := e.Search(ctx, baseReq)
	if err != nil {
		t.Fatal(err)
	}
	if res.Meta.CacheHit {
		t.Fatalf("corrupt entry must not be served")
	}
	if p.calls != 1 {
		t.Fatalf("provider calls=%d, want 1", p.calls)
	}

	// The refetch replaced the entry, so the next call hits.
	res2, err := e.Search(ctx, baseReq)
	if err != nil {
		t.Fatal(err)
	}
	if !res2.Meta.CacheHit {
		t.Fatalf("replacement entry should hit")
	}
}
