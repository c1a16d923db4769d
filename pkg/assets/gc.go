package assets

import (
	"context"
	"maps"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/iamvince24/serenity-canvas/pkg/assetstore"
	"github.com/iamvince24/serenity-canvas/pkg/canvas"
	"github.com/iamvince24/serenity-canvas/pkg/errors"
	"github.com/iamvince24/serenity-canvas/pkg/observability"
)

// assetRefRegex matches asset:<id> references embedded in markdown. The
// id alphabet is the one errors.ValidateAssetID accepts; valid ids never
// end in a dot, so trailing dots are trimmed as punctuation.
var assetRefRegex = regexp.MustCompile(`asset:([A-Za-z0-9][A-Za-z0-9._-]*)`)

// ExtractAssetRefs returns the distinct asset ids referenced from
// markdown, sorted.
func ExtractAssetRefs(markdown string) []string {
	matches := assetRefRegex.FindAllStringSubmatch(markdown, -1)
	if len(matches) == 0 {
		return nil
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		// Sentence punctuation is not part of the id.
		if id := strings.TrimRight(m[1], "."); id != "" {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// Snapshot is the part of the canvas state garbage collection reads.
type Snapshot struct {
	Files map[string]canvas.FileRecord
	Nodes map[string]canvas.Node
	// Retained holds asset ids kept alive from outside the document, such
	// as nodes an undo or redo would bring back.
	Retained map[string]bool
}

// SnapshotOf extracts the collector's view of s.
func SnapshotOf(s *canvas.State) Snapshot {
	return Snapshot{Files: s.Files, Nodes: s.Nodes}
}

// Referenced returns every asset id the snapshot's nodes point at (image
// node asset ids and asset:<id> references in text markdown) plus the
// retained ids.
func (s Snapshot) Referenced() map[string]bool {
	refs := make(map[string]bool, len(s.Retained))
	for id, ok := range s.Retained {
		if ok {
			refs[id] = true
		}
	}
	for _, n := range s.Nodes {
		AddNodeRefs(refs, n)
	}
	return refs
}

// AddNodeRefs adds the asset ids n points at to refs.
func AddNodeRefs(refs map[string]bool, n canvas.Node) {
	switch n.Kind {
	case canvas.KindImage:
		if n.AssetID != "" {
			refs[n.AssetID] = true
		}
	case canvas.KindText:
		for _, id := range ExtractAssetRefs(n.ContentMarkdown) {
			refs[id] = true
		}
	}
}

// GCReport describes one collection run.
type GCReport struct {
	// Removed lists unreferenced FileRecords deleted in the first pass.
	Removed []string
	// Orphans lists store entries without a FileRecord deleted in the
	// second pass.
	Orphans []string
	// Spared lists orphans that were referenced again by the time of the
	// re-check and therefore kept.
	Spared []string
	// Failed holds per-id deletion errors.
	Failed errors.MultiError
}

// Total returns the number of deleted assets.
func (r *GCReport) Total() int { return len(r.Removed) + len(r.Orphans) }

// Err returns the collected deletion failures, or nil.
func (r *GCReport) Err() error { return r.Failed.ErrOrNil() }

// CollectorOptions configures a Collector.
type CollectorOptions struct {
	// Cache, when set, has collected ids evicted.
	Cache *Cache
	// RemoveFile drops a FileRecord from the live state.
	RemoveFile func(id string)
	Logger     *log.Logger
}

// Collector deletes unreferenced assets.
type Collector struct {
	store      assetstore.Store
	cache      *Cache
	removeFile func(id string)
	logger     *log.Logger
}

// NewCollector returns a collector over store.
func NewCollector(store assetstore.Store, opts CollectorOptions) *Collector {
	if opts.RemoveFile == nil {
		opts.RemoveFile = func(string) {}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Collector{
		store:      store,
		cache:      opts.Cache,
		removeFile: opts.RemoveFile,
		logger:     opts.Logger,
	}
}

// CollectGarbage runs two passes.
//
// The first pass deletes every FileRecord of latest() that no node
// references, from the store, the cache and the live files map.
//
// The second pass lists every id physically present in the store and
// deletes those with neither a FileRecord nor a reference. latest is
// called again immediately before each such deletion and the id is kept
// if it became referenced in the meantime.
//
// Deletion failures are recorded in the report and never stop the run;
// the returned error is non-nil only when the store cannot be listed.
func (c *Collector) CollectGarbage(ctx context.Context, latest func() Snapshot) (*GCReport, error) {
	start := time.Now()
	report := &GCReport{}
	defer func() {
		observability.GC().OnCollect(ctx, report.Total(), report.Failed.Len(), time.Since(start))
	}()

	snap := latest()
	refs := snap.Referenced()
	for _, id := range slices.Sorted(maps.Keys(snap.Files)) {
		if refs[id] {
			continue
		}
		if err := c.remove(ctx, id); err != nil {
			report.Failed.Add(id, err)
			continue
		}
		c.removeFile(id)
		report.Removed = append(report.Removed, id)
	}

	keys, err := c.store.GetAllKeys(ctx)
	if err != nil {
		return report, errors.Wrap(errors.ErrCodeStorage, err, "list assets")
	}
	for _, id := range keys {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if _, ok := snap.Files[id]; ok || refs[id] {
			continue
		}
		fresh := latest()
		if _, ok := fresh.Files[id]; ok || fresh.Referenced()[id] {
			c.logger.Debug("gc spared re-attached asset", "id", id)
			report.Spared = append(report.Spared, id)
			continue
		}
		if err := c.remove(ctx, id); err != nil {
			report.Failed.Add(id, err)
			continue
		}
		report.Orphans = append(report.Orphans, id)
	}

	c.logger.Info("gc complete",
		"removed", len(report.Removed),
		"orphans", len(report.Orphans),
		"failed", report.Failed.Len())
	return report, nil
}

func (c *Collector) remove(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		c.logger.Warn("gc delete failed", "id", id, "err", err)
		return errors.Wrap(errors.ErrCodeStorage, err, "delete asset %s", id)
	}
	if c.cache != nil {
		c.cache.Evict(id)
	}
	return nil
}
