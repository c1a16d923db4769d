package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDraws(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, "Collecting...")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	if s.Frames() == 0 {
		t.Error("no frames drawn")
	}
	if !strings.Contains(out.String(), "Collecting...") {
		t.Errorf("output %q lacks the message", out.String())
	}
	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
	// Nothing is drawn once stopped.
	n := s.Frames()
	time.Sleep(2 * spinnerInterval)
	if s.Frames() != n {
		t.Error("spinner kept drawing after Stop")
	}
}

func TestSpinnerContext(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		}},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()

			s := newSpinnerTo(ctx, &syncBuffer{}, "Waiting...")
			s.Start()
			time.Sleep(100 * time.Millisecond)
			if !s.Cancelled() {
				t.Error("spinner should be cancelled once its context ends")
			}
			s.Stop()
		})
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerTo(context.Background(), &syncBuffer{}, "Stopping...")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopBeforeStart(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, "Never started")
	s.Stop()
	if s.Frames() != 0 {
		t.Errorf("Frames() = %d, want 0", s.Frames())
	}
}

func TestSpinnerStartTwice(t *testing.T) {
	s := newSpinnerTo(context.Background(), &syncBuffer{}, "Twice")
	s.Start()
	s.Start()
	s.Stop()
}

func TestSpinnerStopWithMessage(t *testing.T) {
	s := newSpinnerTo(context.Background(), &syncBuffer{}, "Working...")
	s.Start()
	s.StopWithSuccess("Done")

	s = newSpinnerTo(context.Background(), &syncBuffer{}, "Working...")
	s.Start()
	s.StopWithError("Failed")
}
