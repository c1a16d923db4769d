package store

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/iamvince24/serenity-canvas/pkg/assets"
	"github.com/iamvince24/serenity-canvas/pkg/assetstore"
	"github.com/iamvince24/serenity-canvas/pkg/canvas"
)

var quiet = log.New(io.Discard)

// newStore returns a store with sequential ids n1, n2, ...
func newStore(t *testing.T, opts Options) *Store {
	t.Helper()
	next := 0
	opts.NewID = func() string {
		next++
		return fmt.Sprintf("n%d", next)
	}
	opts.Logger = quiet
	return New(opts)
}

// withImages returns a store backed by an in-memory asset store holding
// one 8x6 PNG under "img".
func withImages(t *testing.T) (*Store, *assets.Cache, assetstore.Store, canvas.FileRecord) {
	t.Helper()
	backing := assetstore.NewMemoryStore()
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	rec := assetstore.NewRecord("img", buf.Bytes(), "image/png", 8, 6)
	if err := backing.Put(context.Background(), rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	cache := assets.NewCache(backing, assets.CacheOptions{Logger: quiet})
	return newStore(t, Options{Cache: cache}), cache, backing, rec.FileRecord()
}

func mustEdge(t *testing.T, s *Store, from, to string) string {
	t.Helper()
	id, err := s.AddEdge(from, to)
	if err != nil {
		t.Fatalf("AddEdge(%s, %s): %v", from, to, err)
	}
	return id
}

func undoLen(s *Store) int {
	u, _ := s.HistoryLen()
	return u
}
