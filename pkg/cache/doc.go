// Package cache stores rendered export artifacts so that exporting an
// unchanged canvas again skips Graphviz and rsvg-convert.
//
// Keys are derived from the DOT source and the output settings with
// [ArtifactKey], so any edit to the canvas that changes the diagram
// produces a new key. Stale entries expire by TTL or are removed with
// [FileCache.Clear].
//
//	c, _ := cache.NewFileCache(dir)
//	key := cache.ArtifactKey(dot, "png", 2)
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    return data, nil
//	}
package cache
