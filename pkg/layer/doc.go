// Package layer implements z-order permutations over a canvas node order.
//
// The order is a flat slice of node ids painted front to back: later
// entries are drawn on top. The global operations ([MoveUp], [MoveDown],
// [ToFront], [ToBack]) swap with a neighbor or splice to one end.
//
// # Subset Reordering
//
// The *InSubset variants reorder only the ids that belong to a subset
// (for example, all text cards) while every other id keeps its absolute
// slot. The subset's indices and values are extracted, the operation runs
// on the extracted sub-sequence in isolation, and the reordered values are
// written back into the same indices:
//
//	order:  [t1 img t2 t3]        subset = {t1, t2, t3}
//	ToFrontInSubset(order, "t1", subset)
//	result: [t2 img t3 t1]
//
// The image stays in slot 1, so a text card brought to front never jumps
// over an unrelated image that sat between two text cards.
//
// # No-op Policy
//
// When an operation changes nothing (unknown id, id outside the subset,
// already at the boundary) the input slice itself is returned. Callers can
// detect this cheaply with [Same].
package layer
