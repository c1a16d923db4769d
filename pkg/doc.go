// Package pkg holds the libraries behind the serenity canvas engine.
//
// # Overview
//
// A canvas is a set of text and image nodes joined by edges, stacked in a
// z-order, viewed through a pannable, zoomable viewport. The packages are
// layered leaf to root:
//
//  1. [canvas] - document types: nodes, edges, file records, viewport
//  2. [interaction] - the gesture state machine
//  3. [layer] - z-order algorithms
//  4. [geometry] - edge routing, anchors and label placement
//  5. [navigation] - arrow-key neighbour selection
//  6. [history] - undoable commands
//  7. [assetstore], [assets] - image blob storage, the decoded image
//     cache and garbage collection
//  8. [snapshot] - the persisted JSON format and legacy migration
//  9. [store] - the canvas store tying everything together
//
// Supporting packages: [config] (TOML settings), [errors] (coded errors),
// [observability] (instrumentation hooks), [render] and
// [render/nodelink] (diagram export), [cache] (rendered export cache) and
// [buildinfo].
//
// # Quick Start
//
//	backing, _ := assetstore.Open(ctx, assetstore.Options{Backend: "memory"})
//	s := store.New(store.Options{Cache: assets.NewCache(backing, assets.CacheOptions{})})
//
//	a := s.AddTextNode(0, 0, "# Plan")
//	b := s.AddTextNode(300, 0, "Ship it")
//	s.AddEdge(a, b)
//
//	s.Select(a)
//	s.HandleKey("right") // selects b
//	s.HandleKey("delete")
//	s.Undo()
//
//	data, _ := snapshot.Encode(s.Snapshot())
package pkg
