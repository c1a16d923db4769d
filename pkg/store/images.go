package store

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/iamvince24/serenity-canvas/pkg/assets"
	"github.com/iamvince24/serenity-canvas/pkg/assetstore"
	"github.com/iamvince24/serenity-canvas/pkg/canvas"
	"github.com/iamvince24/serenity-canvas/pkg/errors"
	"github.com/iamvince24/serenity-canvas/pkg/history"
)

var errNoCache = errors.New(errors.ErrCodeUnsupported, "store has no asset cache")

// AcquireNodeImage loads the image of node id and holds one cache
// reference for it until the node is deleted or the document replaced.
// Repeated calls for the same node share that reference.
func (s *Store) AcquireNodeImage(ctx context.Context, id string) (assets.Entry, error) {
	if s.opts.Cache == nil {
		return assets.Entry{}, errNoCache
	}
	s.mu.Lock()
	n, err := s.nodeLocked(id)
	s.mu.Unlock()
	if err != nil {
		return assets.Entry{}, err
	}
	if n.Kind != canvas.KindImage {
		return assets.Entry{}, errors.New(errors.ErrCodeInvalidInput, "node %s is not an image", id)
	}

	entry, err := s.opts.Cache.Acquire(ctx, n.AssetID)
	if err != nil {
		return assets.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.state.Nodes[id]
	switch {
	case !ok || cur.AssetID != n.AssetID:
		// Deleted or repointed while loading.
		s.opts.Cache.Release(n.AssetID)
		return assets.Entry{}, errors.New(errors.ErrCodeNodeNotFound, "node %s changed while its image loaded", id)
	case s.held[id] == n.AssetID:
		s.opts.Cache.Release(n.AssetID)
	default:
		s.held[id] = n.AssetID
	}
	return entry, nil
}

// PreloadImages acquires the images of every image node concurrently.
// Nodes whose image cannot be loaded are reported together; the others
// stay loaded.
func (s *Store) PreloadImages(ctx context.Context) error {
	if s.opts.Cache == nil {
		return errNoCache
	}
	s.mu.Lock()
	var ids []string
	for _, n := range s.state.OrderedNodes() {
		if n.Kind == canvas.KindImage && s.held[n.ID] == "" {
			ids = append(ids, n.ID)
		}
	}
	s.mu.Unlock()

	var (
		failed = &errors.MultiError{}
		ch     = make(chan failure, len(ids))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.PreloadConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			if _, err := s.AcquireNodeImage(gctx, id); err != nil {
				ch <- failure{id, err}
			}
			return nil
		})
	}
	g.Wait()
	close(ch)
	for f := range ch {
		failed.Add(f.id, f.err)
	}
	s.logger.Debug("preloaded images", "nodes", len(ids), "failed", failed.Len())
	return failed.ErrOrNil()
}

type failure struct {
	id  string
	err error
}

// HeldImages returns the number of image references the store holds.
func (s *Store) HeldImages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.held)
}

// Collector returns an asset collector over backing that evicts from the
// store's cache and removes collected file records from the document.
func (s *Store) Collector(backing assetstore.Store) *assets.Collector {
	return assets.NewCollector(backing, assets.CollectorOptions{
		Cache:      s.opts.Cache,
		RemoveFile: s.RemoveFile,
		Logger:     s.logger,
	})
}

// CollectGarbage runs c against live snapshots of the document, so assets
// re-attached while the run is in progress are spared. Assets that an undo
// or redo could bring back count as referenced.
func (s *Store) CollectGarbage(ctx context.Context, c *assets.Collector) (*assets.GCReport, error) {
	return c.CollectGarbage(ctx, s.gcSnapshot)
}

func (s *Store) gcSnapshot() assets.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := assets.SnapshotOf(s.state.Clone())
	snap.Retained = s.historyAssetsLocked()
	return snap
}

// historyAssetsLocked returns the asset ids referenced by commands on the
// undo and redo stacks.
func (s *Store) historyAssetsLocked() map[string]bool {
	refs := make(map[string]bool)
	s.history.Walk(func(cmd history.Command) {
		switch c := cmd.(type) {
		case *history.AddNodeCommand:
			assets.AddNodeRefs(refs, c.Node())
		case *history.DeleteNodeCommand:
			assets.AddNodeRefs(refs, c.Node())
		case *history.UpdateContentCommand:
			from, to := c.Contents()
			for _, id := range assets.ExtractAssetRefs(from + "\n" + to) {
				refs[id] = true
			}
		}
	})
	return refs
}

// releaseImageLocked drops the reference held for node id, if any.
func (s *Store) releaseImageLocked(id string) {
	asset, ok := s.held[id]
	if !ok {
		return
	}
	delete(s.held, id)
	if s.opts.Cache != nil {
		s.opts.Cache.Release(asset)
	}
}

func (s *Store) releaseAllLocked() {
	for id := range s.held {
		s.releaseImageLocked(id)
	}
}
