package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// History hooks
	h := NoopHistoryHooks{}
	h.OnExecute("move-node", 3)
	h.OnUndo("move-node")
	h.OnRedo("move-node")
	h.OnEvict("add-node")

	// Asset hooks
	a := NoopAssetHooks{}
	a.OnCacheHit(ctx, "img-1")
	a.OnCacheMiss(ctx, "img-2")
	a.OnLoad(ctx, "img-2", 2048, time.Millisecond, nil)
	a.OnLoad(ctx, "img-3", 0, time.Millisecond, errors.New("boom"))
	a.OnRelease("img-2", true)

	// GC hooks
	g := NoopGCHooks{}
	g.OnCollect(ctx, 2, 0, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := History().(NoopHistoryHooks); !ok {
		t.Error("History() should return NoopHistoryHooks by default")
	}
	if _, ok := Assets().(NoopAssetHooks); !ok {
		t.Error("Assets() should return NoopAssetHooks by default")
	}
	if _, ok := GC().(NoopGCHooks); !ok {
		t.Error("GC() should return NoopGCHooks by default")
	}

	// Set custom hooks
	customHistory := &testHistoryHooks{}
	SetHistoryHooks(customHistory)
	if History() != customHistory {
		t.Error("SetHistoryHooks should set custom hooks")
	}

	customAssets := &testAssetHooks{}
	SetAssetHooks(customAssets)
	if Assets() != customAssets {
		t.Error("SetAssetHooks should set custom hooks")
	}

	customGC := &testGCHooks{}
	SetGCHooks(customGC)
	if GC() != customGC {
		t.Error("SetGCHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := History().(NoopHistoryHooks); !ok {
		t.Error("Reset() should restore NoopHistoryHooks")
	}
	if _, ok := Assets().(NoopAssetHooks); !ok {
		t.Error("Reset() should restore NoopAssetHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testHistoryHooks{}
	SetHistoryHooks(custom)

	// Setting nil should be ignored
	SetHistoryHooks(nil)

	if History() != custom {
		t.Error("SetHistoryHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testHistoryHooks struct{ NoopHistoryHooks }
type testAssetHooks struct{ NoopAssetHooks }
type testGCHooks struct{ NoopGCHooks }
