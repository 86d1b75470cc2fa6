package resultcache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestGetMissThenPut(t *testing.T) {
	cache := New[string](4)

	if _, ok := cache.Get("a"); ok {
		t.Fatal("empty cache should miss")
	}
	cache.Put("a", "alpha")
	value, ok := cache.Get("a")
	if !ok || value != "alpha" {
		t.Fatalf("got (%q, %v), want (alpha, true)", value, ok)
	}
}

func TestEvictionDropsLeastRecentlyUsed(t *testing.T) {
	cache := New[int](2)
	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Put("c", 3)

	if _, ok := cache.Get("a"); ok {
		t.Error("a should have been evicted")
	}
	if _, ok := cache.Get("b"); !ok {
		t.Error("b should survive")
	}
	if _, ok := cache.Get("c"); !ok {
		t.Error("c should survive")
	}
}

func TestReadPromotesEntry(t *testing.T) {
	cache := New[int](2)
	cache.Put("a", 1)
	cache.Put("b", 2)

	// Touch "a" so "b" becomes the eviction victim.
	if _, ok := cache.Get("a"); !ok {
		t.Fatal("a should be cached")
	}
	cache.Put("c", 3)

	if _, ok := cache.Get("a"); !ok {
		t.Error("promoted entry should survive eviction")
	}
	if _, ok := cache.Get("b"); ok {
		t.Error("least-recently-used entry should be evicted")
	}
}

func TestPutUpdatesExistingKey(t *testing.T) {
	cache := New[int](2)
	cache.Put("a", 1)
	cache.Put("a", 2)

	if cache.Len() != 1 {
		t.Errorf("len: got %d, want 1", cache.Len())
	}
	if value, _ := cache.Get("a"); value != 2 {
		t.Errorf("value: got %d, want 2", value)
	}
}

func TestZeroCapacityDisablesStorage(t *testing.T) {
	cache := New[int](0)
	cache.Put("a", 1)
	if _, ok := cache.Get("a"); ok {
		t.Error("zero-capacity cache must not store")
	}
}

func TestGetOrComputeCachesResult(t *testing.T) {
	cache := New[int](4)
	calls := 0
	compute := func() (int, error) {
		calls++
		return 42, nil
	}

	value, cached, err := cache.GetOrCompute("k", compute)
	if err != nil || value != 42 || cached {
		t.Fatalf("first call: value=%d cached=%v err=%v", value, cached, err)
	}
	value, cached, err = cache.GetOrCompute("k", compute)
	if err != nil || value != 42 || !cached {
		t.Fatalf("second call: value=%d cached=%v err=%v", value, cached, err)
	}
	if calls != 1 {
		t.Errorf("compute calls: got %d, want 1", calls)
	}
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	cache := New[int](4)
	boom := errors.New("boom")

	_, _, err := cache.GetOrCompute("k", func() (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected compute error, got %v", err)
	}

	value, cached, err := cache.GetOrCompute("k", func() (int, error) { return 7, nil })
	if err != nil || value != 7 || cached {
		t.Fatalf("failed compute must not poison the cache: value=%d cached=%v err=%v", value, cached, err)
	}
}

func TestGetOrComputeSuppressesDuplicates(t *testing.T) {
	cache := New[int](16)
	var calls atomic.Int64
	release := make(chan struct{})

	const workers = 8
	var wg sync.WaitGroup
	results := make([]int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			value, _, err := cache.GetOrCompute("shared", func() (int, error) {
				calls.Add(1)
				<-release
				return 99, nil
			})
			if err != nil {
				t.Errorf("worker %d: %v", idx, err)
			}
			results[idx] = value
		}(i)
	}
	close(release)
	wg.Wait()

	// Singleflight allows a small number of overlapping computations when a
	// flight completes between a caller's miss and its join, but never one
	// per caller.
	if calls.Load() >= workers {
		t.Errorf("compute ran %d times for %d workers", calls.Load(), workers)
	}
	for i, value := range results {
		if value != 99 {
			t.Errorf("worker %d got %d, want 99", i, value)
		}
	}
}

func TestGetOrComputeCountsOneMissPerColdLookup(t *testing.T) {
	cache := New[int](4)

	if _, _, err := cache.GetOrCompute("k", func() (int, error) { return 1, nil }); err != nil {
		t.Fatal(err)
	}
	hits, misses := cache.Stats()
	if hits != 0 || misses != 1 {
		t.Fatalf("cold lookup: hits=%d misses=%d, want 0/1", hits, misses)
	}

	if _, _, err := cache.GetOrCompute("k", func() (int, error) { return 1, nil }); err != nil {
		t.Fatal(err)
	}
	hits, misses = cache.Stats()
	if hits != 1 || misses != 1 {
		t.Fatalf("warm lookup: hits=%d misses=%d, want 1/1", hits, misses)
	}
}

func TestStats(t *testing.T) {
	cache := New[int](2)
	cache.Put("a", 1)
	cache.Get("a")
	cache.Get("b")

	hits, misses := cache.Stats()
	if hits != 1 {
		t.Errorf("hits: got %d, want 1", hits)
	}
	if misses != 1 {
		t.Errorf("misses: got %d, want 1", misses)
	}
}
