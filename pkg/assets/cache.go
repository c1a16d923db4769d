package assets

import (
	"context"
	stderrors "errors"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/iamvince24/serenity-canvas/pkg/assetstore"
	"github.com/iamvince24/serenity-canvas/pkg/errors"
	"github.com/iamvince24/serenity-canvas/pkg/observability"
)

// Entry is a cached, decoded asset.
type Entry struct {
	ID        string
	ObjectURL string
	Image     *Image
	RefCount  int
}

// Stats is a point-in-time view of the cache.
type Stats struct {
	Entries    int   // cached entries
	References int   // sum of reference counts
	Pending    int   // loads in flight
	Waiters    int   // callers blocked on in-flight loads
	Hits       int64 // acquires served from cache
	Loads      int64 // store reads started
	Failures   int64 // loads that failed
}

// load is a single in-flight read+decode shared by every waiter.
type load struct {
	done    chan struct{}
	waiters int
	entry   Entry
	err     error
}

// CacheOptions configures a Cache.
type CacheOptions struct {
	// URLs issues object URLs. Nil creates a private registry.
	URLs *URLRegistry
	// Decode overrides the image decoder.
	Decode DecodeFunc
	// Concurrency bounds AcquireAll. Values <= 0 use 4.
	Concurrency int
	Logger      *log.Logger
}

// Cache is a reference-counted arena of decoded assets.
type Cache struct {
	store       assetstore.Store
	urls        *URLRegistry
	decode      DecodeFunc
	concurrency int
	logger      *log.Logger

	mu      sync.Mutex
	entries map[string]*Entry
	loads   map[string]*load

	hits, reads, failures int64
}

// NewCache returns a cache reading from store.
func NewCache(store assetstore.Store, opts CacheOptions) *Cache {
	if opts.URLs == nil {
		opts.URLs = NewURLRegistry()
	}
	if opts.Decode == nil {
		opts.Decode = Decode
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Cache{
		store:       store,
		urls:        opts.URLs,
		decode:      opts.Decode,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
		entries:     make(map[string]*Entry),
		loads:       make(map[string]*load),
	}
}

// URLs returns the registry the cache issues object URLs from.
func (c *Cache) URLs() *URLRegistry { return c.urls }

// Acquire returns the entry for id and takes one reference on it. The
// caller must Release it once. Concurrent acquires of an uncached id share
// one store read and one decode; if that load fails every waiter receives
// the error and a later call starts afresh.
//
// If ctx is done before the load finishes, Acquire returns ctx.Err() and
// holds no reference. The load itself keeps running for the other waiters.
func (c *Cache) Acquire(ctx context.Context, id string) (Entry, error) {
	c.mu.Lock()
	if e, ok := c.entries[id]; ok {
		e.RefCount++
		c.hits++
		out := *e
		c.mu.Unlock()
		observability.Assets().OnCacheHit(ctx, id)
		return out, nil
	}

	l, ok := c.loads[id]
	if !ok {
		l = &load{done: make(chan struct{})}
		c.loads[id] = l
		c.reads++
		go c.run(context.WithoutCancel(ctx), id, l)
	}
	l.waiters++
	c.mu.Unlock()
	observability.Assets().OnCacheMiss(ctx, id)

	select {
	case <-l.done:
		if l.err != nil {
			return Entry{}, l.err
		}
		return l.entry, nil
	case <-ctx.Done():
		c.mu.Lock()
		select {
		case <-l.done:
			// The load finished while we were leaving and already counted us.
			if l.err == nil {
				c.releaseLocked(id)
			}
		default:
			l.waiters--
		}
		c.mu.Unlock()
		return Entry{}, ctx.Err()
	}
}

// run performs the load and publishes the result to l's waiters.
func (c *Cache) run(ctx context.Context, id string, l *load) {
	start := time.Now()
	entry, size, err := c.fetch(ctx, id)
	observability.Assets().OnLoad(ctx, id, size, time.Since(start), err)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.loads, id)

	switch {
	case err != nil:
		c.failures++
		l.err = err
		c.logger.Debug("asset load failed", "id", id, "err", err)
	case l.waiters == 0:
		// Every caller gave up; nobody would release this entry.
		c.urls.Revoke(entry.ObjectURL)
	default:
		if cur, ok := c.entries[id]; ok {
			// Inject raced with the load; keep the injected entry.
			c.urls.Revoke(entry.ObjectURL)
			cur.RefCount += l.waiters
			entry = *cur
		} else {
			entry.RefCount = l.waiters
			stored := entry
			c.entries[id] = &stored
		}
		l.entry = entry
		c.logger.Debug("asset loaded", "id", id, "refs", entry.RefCount, "took", time.Since(start))
	}
	close(l.done)
}

// fetch reads id from the store, registers an object URL and decodes it.
// The URL is revoked again if decoding fails.
func (c *Cache) fetch(ctx context.Context, id string) (Entry, int, error) {
	rec, err := c.store.Get(ctx, id)
	if stderrors.Is(err, assetstore.ErrNotFound) {
		return Entry{}, 0, errors.Wrap(errors.ErrCodeAssetNotFound, err, "load asset %s", id)
	}
	if err != nil {
		return Entry{}, 0, errors.Wrap(errors.ErrCodeStorage, err, "load asset %s", id)
	}
	url := c.urls.Create(rec.Blob, rec.MimeType)
	img, err := c.decode(rec.Blob)
	if err != nil {
		c.urls.Revoke(url)
		return Entry{}, len(rec.Blob), err
	}
	return Entry{ID: id, ObjectURL: url, Image: img}, len(rec.Blob), nil
}

// Release drops one reference to id. At zero the object URL is revoked
// and the entry evicted immediately. Releasing an unknown id does nothing.
func (c *Cache) Release(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseLocked(id)
}

func (c *Cache) releaseLocked(id string) {
	e, ok := c.entries[id]
	if !ok {
		return
	}
	e.RefCount--
	evicted := e.RefCount <= 0
	if evicted {
		delete(c.entries, id)
		c.urls.Revoke(e.ObjectURL)
	}
	observability.Assets().OnRelease(id, evicted)
}

// Inject seeds the cache with blob, typically right after an upload, so
// the next Acquire is a hit. An existing entry is replaced: its URL is
// revoked and its reference count carried over.
func (c *Cache) Inject(id string, blob []byte, mime string) (Entry, error) {
	img, err := c.decode(blob)
	if err != nil {
		return Entry{}, err
	}
	url := c.urls.Create(blob, mime)

	c.mu.Lock()
	defer c.mu.Unlock()
	e := &Entry{ID: id, ObjectURL: url, Image: img}
	if old, ok := c.entries[id]; ok {
		c.urls.Revoke(old.ObjectURL)
		e.RefCount = old.RefCount
	}
	c.entries[id] = e
	return *e, nil
}

// Evict drops id regardless of its reference count.
func (c *Cache) Evict(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok {
		delete(c.entries, id)
		c.urls.Revoke(e.ObjectURL)
	}
}

// Has reports whether id has a cached entry.
func (c *Cache) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

// RefCount returns the reference count of id, or 0 if it is not cached.
func (c *Cache) RefCount(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok {
		return e.RefCount
	}
	return 0
}

// Stats returns current counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{
		Entries:  len(c.entries),
		Pending:  len(c.loads),
		Hits:     c.hits,
		Loads:    c.reads,
		Failures: c.failures,
	}
	for _, e := range c.entries {
		s.References += e.RefCount
	}
	for _, l := range c.loads {
		s.Waiters += l.waiters
	}
	return s
}

// AcquireAll acquires every distinct id concurrently, taking one
// reference per id. On any failure the references already taken are
// released and the first error is returned.
func (c *Cache) AcquireAll(ctx context.Context, ids []string) (map[string]Entry, error) {
	ids = slices.Compact(slices.Sorted(slices.Values(ids)))
	results := make([]Entry, len(ids))
	ok := make([]bool, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			e, err := c.Acquire(gctx, id)
			if err != nil {
				return err
			}
			results[i], ok[i] = e, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for i, id := range ids {
			if ok[i] {
				c.Release(id)
			}
		}
		return nil, err
	}

	out := make(map[string]Entry, len(ids))
	for i, id := range ids {
		out[id] = results[i]
	}
	return out, nil
}
