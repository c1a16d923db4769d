package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/iamvince24/serenity-canvas/pkg/assetstore"
)

var quiet = log.New(io.Discard)

func pngBlob(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func putPNG(t *testing.T, s assetstore.Store, id string) {
	t.Helper()
	rec := assetstore.NewRecord(id, pngBlob(t, 4, 3), "image/png", 4, 3)
	if err := s.Put(context.Background(), rec); err != nil {
		t.Fatalf("Put(%s): %v", id, err)
	}
}

// countingStore counts reads and can hold them until gate is closed.
type countingStore struct {
	assetstore.Store
	gate       chan struct{}
	gets       atomic.Int64
	failDelete map[string]bool
}

func (s *countingStore) Get(ctx context.Context, id string) (*assetstore.Record, error) {
	s.gets.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	return s.Store.Get(ctx, id)
}

var errDiskFull = errors.New("disk full")

func (s *countingStore) Delete(ctx context.Context, id string) error {
	if s.failDelete[id] {
		return errDiskFull
	}
	return s.Store.Delete(ctx, id)
}

// waitFor polls cond until it holds or the test times out.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
