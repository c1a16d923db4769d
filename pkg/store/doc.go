// Package store composes the canvas engine into one editable document.
//
// A [Store] owns the canvas state, the undo history, the interaction state
// machine and, optionally, an image asset cache. Every persistent mutation
// goes through a history command so it can be undone; pointer gestures
// (drag, resize) update nodes directly while in progress and record a
// single command when they commit.
//
// # Gestures
//
// Each gesture is a Begin/Preview/Commit triple driven by the interaction
// machine. Begin fails with GESTURE_BLOCKED unless the machine is idle,
// Preview and Commit fail with GESTURE_INACTIVE outside their gesture, and
// [Store.CancelGesture] rolls back any preview without touching history:
//
//	s.BeginDrag([]string{"n1"})
//	s.PreviewDrag(10, 0)   // many times, unrecorded
//	s.CommitDrag()         // one undoable move
//
// # Images
//
// Image nodes hold at most one cache reference each, taken by
// [Store.AcquireNodeImage] or [Store.PreloadImages] and released when the
// node is deleted or the document is replaced. [Store.CollectGarbage] runs
// the asset collector against live snapshots of the document.
//
// # Concurrency
//
// All methods are safe for concurrent use. Commands are applied under the
// store lock; cache loads run outside it.
package store
