// Package geometry computes edge routes, anchor snapping and edge label
// layout for the canvas.
//
// Every node exposes four anchors at the midpoints of its bounding box
// sides. [SmartAnchors] picks a single-segment route between two nodes by
// comparing the horizontal and vertical components of the center-to-center
// vector, and [ClosestAnchor] snaps a pointer to the nearest anchor during
// connect gestures and endpoint re-drags.
//
// Labels are laid out with a deterministic character-width heuristic
// (see [LayoutLabel]) rather than real text measurement, and [LabelGap]
// reports the segment of the edge line that must be left blank behind the
// label so the line and label renderers only share the midpoint/length
// contract.
//
// All functions are pure and safe for concurrent use.
package geometry
