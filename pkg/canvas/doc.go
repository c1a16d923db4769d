// Package canvas defines the data model of the serenity canvas: nodes,
// edges, z-order, file records and the viewport.
//
// # Nodes
//
// A [Node] is a tagged variant over [KindText] and [KindImage]. Both kinds
// share the embedded [Base] geometry record; the kind-specific fields
// (ContentMarkdown for text, Content and AssetID for images) are only
// meaningful for their kind. Code that needs kind-specific behavior uses
// an exhaustive switch on [Node.Kind], see [Node.Text] and [DefaultSize].
//
// # State
//
// [State] is the single owned snapshot of a canvas. It keeps three
// invariants that every mutation must preserve:
//
//   - NodeOrder is a permutation of the key set of Nodes
//   - every edge references two distinct existing nodes
//   - each FileRecord corresponds to an asset that should exist in storage
//
// [State.Validate] checks the first two. [State.Clone] returns a deep copy
// with no shared pointers, which is what history snapshots and the garbage
// collector's re-check rely on.
//
// # Concurrency
//
// State is a plain value type and is not safe for concurrent mutation.
// The owning store serializes access.
package canvas
