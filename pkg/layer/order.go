package layer

import (
	"fmt"
	"slices"
)

// Op names a reorder operation.
type Op int

const (
	OpMoveUp Op = iota
	OpMoveDown
	OpToFront
	OpToBack
)

var opNames = [...]string{
	OpMoveUp:   "up",
	OpMoveDown: "down",
	OpToFront:  "front",
	OpToBack:   "back",
}

func (o Op) String() string {
	if int(o) >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// ParseOp converts "up", "down", "front" or "back" to an Op.
func ParseOp(s string) (Op, error) {
	for i, n := range opNames {
		if n == s {
			return Op(i), nil
		}
	}
	return 0, fmt.Errorf("unknown reorder op %q", s)
}

// Same reports whether a and b are the same slice (same length and
// backing array), which is how no-op results are signalled.
func Same(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

// MoveUp swaps id with the entry above it.
func MoveUp(order []string, id string) []string {
	i := slices.Index(order, id)
	if i < 0 || i == len(order)-1 {
		return order
	}
	out := slices.Clone(order)
	out[i], out[i+1] = out[i+1], out[i]
	return out
}

// MoveDown swaps id with the entry below it.
func MoveDown(order []string, id string) []string {
	i := slices.Index(order, id)
	if i <= 0 {
		return order
	}
	out := slices.Clone(order)
	out[i], out[i-1] = out[i-1], out[i]
	return out
}

// ToFront moves id to the top of the order.
func ToFront(order []string, id string) []string {
	i := slices.Index(order, id)
	if i < 0 || i == len(order)-1 {
		return order
	}
	out := make([]string, 0, len(order))
	out = append(out, order[:i]...)
	out = append(out, order[i+1:]...)
	return append(out, id)
}

// ToBack moves id to the bottom of the order.
func ToBack(order []string, id string) []string {
	i := slices.Index(order, id)
	if i <= 0 {
		return order
	}
	out := make([]string, 0, len(order))
	out = append(out, id)
	out = append(out, order[:i]...)
	return append(out, order[i+1:]...)
}

// Apply runs op on the global order.
func Apply(order []string, op Op, id string) []string {
	return opFunc(op)(order, id)
}

func opFunc(op Op) func([]string, string) []string {
	switch op {
	case OpMoveUp:
		return MoveUp
	case OpMoveDown:
		return MoveDown
	case OpToFront:
		return ToFront
	case OpToBack:
		return ToBack
	}
	return func(order []string, _ string) []string { return order }
}

// MoveUpInSubset is MoveUp restricted to the ids in subset.
func MoveUpInSubset(order []string, id string, subset map[string]bool) []string {
	return inSubset(order, id, subset, MoveUp)
}

// MoveDownInSubset is MoveDown restricted to the ids in subset.
func MoveDownInSubset(order []string, id string, subset map[string]bool) []string {
	return inSubset(order, id, subset, MoveDown)
}

// ToFrontInSubset is ToFront restricted to the ids in subset.
func ToFrontInSubset(order []string, id string, subset map[string]bool) []string {
	return inSubset(order, id, subset, ToFront)
}

// ToBackInSubset is ToBack restricted to the ids in subset.
func ToBackInSubset(order []string, id string, subset map[string]bool) []string {
	return inSubset(order, id, subset, ToBack)
}

// ApplyInSubset runs op restricted to the ids in subset.
func ApplyInSubset(order []string, op Op, id string, subset map[string]bool) []string {
	return inSubset(order, id, subset, opFunc(op))
}

// inSubset extracts the subset's slots, reorders their values with fn and
// writes them back into the same slots.
func inSubset(order []string, id string, subset map[string]bool, fn func([]string, string) []string) []string {
	if !subset[id] {
		return order
	}

	var slots []int
	var values []string
	for i, v := range order {
		if subset[v] {
			slots = append(slots, i)
			values = append(values, v)
		}
	}
	if !slices.Contains(values, id) {
		return order
	}

	reordered := fn(values, id)
	if Same(reordered, values) {
		return order
	}

	out := slices.Clone(order)
	for k, slot := range slots {
		out[slot] = reordered[k]
	}
	return out
}
