package assets

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/iamvince24/serenity-canvas/pkg/assetstore"
	"github.com/iamvince24/serenity-canvas/pkg/errors"
)

func newTestCache(store assetstore.Store) *Cache {
	return NewCache(store, CacheOptions{Logger: quiet})
}

func TestAcquireDeduplicatesConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	mem := assetstore.NewMemoryStore()
	putPNG(t, mem, "x")

	store := &countingStore{Store: mem, gate: make(chan struct{})}
	var decodes atomic.Int64
	c := NewCache(store, CacheOptions{
		Logger: quiet,
		Decode: func(b []byte) (*Image, error) {
			decodes.Add(1)
			return Decode(b)
		},
	})

	const n = 8
	var wg sync.WaitGroup
	entries := make([]Entry, n)
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entries[i], errs[i] = c.Acquire(ctx, "x")
		}()
	}

	waitFor(t, "all waiters", func() bool { return c.Stats().Waiters == n })
	close(store.gate)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("Acquire #%d: %v", i, err)
		}
		if entries[i].ObjectURL != entries[0].ObjectURL {
			t.Errorf("Acquire #%d got URL %s, want %s", i, entries[i].ObjectURL, entries[0].ObjectURL)
		}
	}
	if got := store.gets.Load(); got != 1 {
		t.Errorf("store reads = %d, want 1", got)
	}
	if got := decodes.Load(); got != 1 {
		t.Errorf("decodes = %d, want 1", got)
	}
	if got := c.RefCount("x"); got != n {
		t.Errorf("RefCount = %d, want %d", got, n)
	}
	if img := entries[0].Image; img.Width != 4 || img.Height != 3 {
		t.Errorf("decoded %dx%d, want 4x3", img.Width, img.Height)
	}

	for range n {
		c.Release("x")
	}
	if c.Has("x") {
		t.Error("entry survived releasing every reference")
	}
	if got := c.URLs().Len(); got != 0 {
		t.Errorf("live URLs = %d, want 0", got)
	}
}

func TestAcquireHitIncrementsRefCount(t *testing.T) {
	ctx := context.Background()
	mem := assetstore.NewMemoryStore()
	putPNG(t, mem, "x")
	store := &countingStore{Store: mem}
	c := newTestCache(store)

	first, err := c.Acquire(ctx, "x")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Acquire(ctx, "x")
	if err != nil {
		t.Fatal(err)
	}
	if first.ObjectURL != second.ObjectURL {
		t.Error("hit returned a different URL")
	}
	if second.RefCount != 2 || c.RefCount("x") != 2 {
		t.Errorf("RefCount = %d, want 2", c.RefCount("x"))
	}
	if store.gets.Load() != 1 {
		t.Errorf("store reads = %d, want 1", store.gets.Load())
	}
	if s := c.Stats(); s.Hits != 1 || s.Loads != 1 || s.Entries != 1 || s.References != 2 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestReleaseToZeroEvictsImmediately(t *testing.T) {
	ctx := context.Background()
	mem := assetstore.NewMemoryStore()
	putPNG(t, mem, "x")
	store := &countingStore{Store: mem}
	c := newTestCache(store)

	e, err := c.Acquire(ctx, "x")
	if err != nil {
		t.Fatal(err)
	}
	c.Release("x")
	if c.Has("x") {
		t.Fatal("entry not evicted at zero")
	}
	if _, _, ok := c.URLs().Resolve(e.ObjectURL); ok {
		t.Error("object URL not revoked")
	}

	// No grace period: re-acquiring pays a full reload.
	if _, err := c.Acquire(ctx, "x"); err != nil {
		t.Fatal(err)
	}
	if store.gets.Load() != 2 {
		t.Errorf("store reads = %d, want 2", store.gets.Load())
	}
}

func TestReleaseUnknownIsNoop(t *testing.T) {
	c := newTestCache(assetstore.NewMemoryStore())
	c.Release("nothing")
	if c.Stats().Entries != 0 {
		t.Error("Release created an entry")
	}
}

func TestAcquireFailurePropagatesAndRetries(t *testing.T) {
	ctx := context.Background()
	mem := assetstore.NewMemoryStore()
	store := &countingStore{Store: mem, gate: make(chan struct{})}
	c := newTestCache(store)

	const n = 3
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.Acquire(ctx, "missing")
		}()
	}
	waitFor(t, "all waiters", func() bool { return c.Stats().Waiters == n })
	close(store.gate)
	wg.Wait()

	for i, err := range errs {
		if !errors.Is(err, errors.ErrCodeAssetNotFound) {
			t.Errorf("waiter %d error = %v, want ASSET_NOT_FOUND", i, err)
		}
	}
	if s := c.Stats(); s.Pending != 0 || s.Entries != 0 || s.Failures != 1 {
		t.Errorf("Stats after failure = %+v", s)
	}

	// The failure is not sticky.
	putPNG(t, mem, "missing")
	if _, err := c.Acquire(ctx, "missing"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if store.gets.Load() != 2 {
		t.Errorf("store reads = %d, want 2", store.gets.Load())
	}
}

func TestAcquireDecodeFailureRevokesURL(t *testing.T) {
	ctx := context.Background()
	mem := assetstore.NewMemoryStore()
	rec := assetstore.NewRecord("bad", []byte("not an image"), "image/png", 0, 0)
	if err := mem.Put(ctx, rec); err != nil {
		t.Fatal(err)
	}
	c := newTestCache(mem)

	if _, err := c.Acquire(ctx, "bad"); !errors.Is(err, errors.ErrCodeDecodeFailed) {
		t.Fatalf("Acquire error = %v, want DECODE_FAILED", err)
	}
	if c.URLs().Len() != 0 {
		t.Error("URL leaked after decode failure")
	}
	if c.Has("bad") {
		t.Error("failed load was cached")
	}
}

func TestAcquireCanceledWaiterHoldsNoReference(t *testing.T) {
	mem := assetstore.NewMemoryStore()
	putPNG(t, mem, "x")
	store := &countingStore{Store: mem, gate: make(chan struct{})}
	c := newTestCache(store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Acquire(ctx, "x")
		done <- err
	}()
	waitFor(t, "waiter", func() bool { return c.Stats().Waiters == 1 })
	cancel()
	if err := <-done; err != context.Canceled {
		t.Fatalf("Acquire error = %v, want context.Canceled", err)
	}

	close(store.gate)
	waitFor(t, "load to finish", func() bool { return c.Stats().Pending == 0 })
	if c.Has("x") {
		t.Error("abandoned load was cached with no owner")
	}
	if c.URLs().Len() != 0 {
		t.Error("abandoned load leaked its URL")
	}
}

func TestInjectMakesAcquireAHit(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: assetstore.NewMemoryStore()}
	c := newTestCache(store)

	injected, err := c.Inject("up", pngBlob(t, 8, 6), "image/png")
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}
	if injected.RefCount != 0 {
		t.Errorf("injected RefCount = %d, want 0", injected.RefCount)
	}

	e, err := c.Acquire(ctx, "up")
	if err != nil {
		t.Fatal(err)
	}
	if store.gets.Load() != 0 {
		t.Error("Acquire after Inject read the store")
	}
	if e.ObjectURL != injected.ObjectURL || e.RefCount != 1 {
		t.Errorf("Acquire = %+v", e)
	}
	if e.Image.Width != 8 || e.Image.Height != 6 {
		t.Errorf("image = %dx%d", e.Image.Width, e.Image.Height)
	}
}

func TestInjectReplacesEntry(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(assetstore.NewMemoryStore())

	old, _ := c.Inject("a", pngBlob(t, 1, 1), "image/png")
	if _, err := c.Acquire(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	repl, err := c.Inject("a", pngBlob(t, 2, 2), "image/png")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, ok := c.URLs().Resolve(old.ObjectURL); ok {
		t.Error("old URL not revoked")
	}
	if repl.RefCount != 1 || c.RefCount("a") != 1 {
		t.Errorf("RefCount = %d, want carried-over 1", c.RefCount("a"))
	}
}

func TestInjectRejectsUndecodable(t *testing.T) {
	c := newTestCache(assetstore.NewMemoryStore())
	if _, err := c.Inject("a", []byte("junk"), "image/png"); err == nil {
		t.Error("Inject accepted junk")
	}
	if c.Has("a") || c.URLs().Len() != 0 {
		t.Error("failed Inject left state behind")
	}
}

func TestEvictIgnoresRefCount(t *testing.T) {
	ctx := context.Background()
	mem := assetstore.NewMemoryStore()
	putPNG(t, mem, "x")
	c := newTestCache(mem)

	c.Acquire(ctx, "x")
	c.Acquire(ctx, "x")
	c.Evict("x")
	if c.Has("x") || c.RefCount("x") != 0 {
		t.Error("Evict kept the entry")
	}
	if c.URLs().Len() != 0 {
		t.Error("Evict did not revoke the URL")
	}
	// Stale releases after an eviction are harmless.
	c.Release("x")
	c.Evict("x")
}

func TestAcquireAll(t *testing.T) {
	ctx := context.Background()
	mem := assetstore.NewMemoryStore()
	putPNG(t, mem, "a")
	putPNG(t, mem, "b")
	c := newTestCache(mem)

	got, err := c.AcquireAll(ctx, []string{"a", "b", "a"})
	if err != nil {
		t.Fatalf("AcquireAll: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d entries, want 2", len(got))
	}
	if c.RefCount("a") != 1 || c.RefCount("b") != 1 {
		t.Errorf("RefCounts = %d, %d; want 1, 1", c.RefCount("a"), c.RefCount("b"))
	}
}

func TestAcquireAllReleasesOnFailure(t *testing.T) {
	ctx := context.Background()
	mem := assetstore.NewMemoryStore()
	putPNG(t, mem, "a")
	c := newTestCache(mem)

	if _, err := c.AcquireAll(ctx, []string{"a", "missing"}); err == nil {
		t.Fatal("AcquireAll succeeded with a missing asset")
	}
	if c.RefCount("a") != 0 {
		t.Errorf("RefCount(a) = %d after failed batch, want 0", c.RefCount("a"))
	}
}
