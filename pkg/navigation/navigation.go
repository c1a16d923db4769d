// Package navigation picks the node a directional key press should move
// the selection to.
package navigation

import (
	"math"
	"strings"

	"github.com/iamvince24/serenity-canvas/pkg/canvas"
	"github.com/iamvince24/serenity-canvas/pkg/geometry"
)

// Direction is an arrow-key direction.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

var directionNames = [...]string{"up", "down", "left", "right"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return "unknown"
	}
	return directionNames[d]
}

// ParseDirection accepts direction names and arrow key names
// ("up", "arrowup", "ArrowUp", ...).
func ParseDirection(s string) (Direction, bool) {
	s = strings.TrimPrefix(strings.ToLower(s), "arrow")
	for i, name := range directionNames {
		if s == name {
			return Direction(i), true
		}
	}
	return 0, false
}

// Scoring weights. Lower scores win.
const (
	WeightGap     = 1.0
	WeightCross   = 2.0
	WeightOverlap = 120.0
	WeightDist    = 0.25
)

type candidate struct {
	node    canvas.Node
	score   float64
	overlap bool
}

// FindDirectionalNeighbor returns the id of the best node in direction dir
// from currentID. Only nodes whose center lies strictly on the requested
// side of the current center are considered. Candidates overlapping the
// current node on the cross axis always beat those that do not; ties go
// to reading order (top, then left) and then to the smaller id.
func FindDirectionalNeighbor(nodes map[string]canvas.Node, currentID string, dir Direction) (string, bool) {
	cur, ok := nodes[currentID]
	if !ok {
		return "", false
	}
	from := rectOf(cur)
	fc := from.Center()

	var best *candidate
	for id, n := range nodes {
		if id == currentID {
			continue
		}
		to := rectOf(n)
		tc := to.Center()
		if !ahead(dir, fc, tc) {
			continue
		}
		c := candidate{node: n}
		c.score, c.overlap = score(dir, from, to)
		if best == nil || better(c, *best) {
			cc := c
			best = &cc
		}
	}
	if best == nil {
		return "", false
	}
	return best.node.ID, true
}

func rectOf(n canvas.Node) geometry.Rect {
	return geometry.Rect{X: n.X, Y: n.Y, W: n.Width, H: n.Height}
}

func ahead(dir Direction, from, to geometry.Point) bool {
	switch dir {
	case Up:
		return to.Y < from.Y
	case Down:
		return to.Y > from.Y
	case Left:
		return to.X < from.X
	case Right:
		return to.X > from.X
	}
	return false
}

// score computes the weighted distance of to from from along dir.
func score(dir Direction, from, to geometry.Rect) (float64, bool) {
	fc, tc := from.Center(), to.Center()

	var gap, cross, overlap, extent float64
	switch dir {
	case Up:
		gap = from.Y - (to.Y + to.H)
	case Down:
		gap = to.Y - (from.Y + from.H)
	case Left:
		gap = from.X - (to.X + to.W)
	case Right:
		gap = to.X - (from.X + from.W)
	}
	if dir == Up || dir == Down {
		cross = math.Abs(tc.X - fc.X)
		overlap = span(from.X, from.X+from.W, to.X, to.X+to.W)
		extent = math.Min(from.W, to.W)
	} else {
		cross = math.Abs(tc.Y - fc.Y)
		overlap = span(from.Y, from.Y+from.H, to.Y, to.Y+to.H)
		extent = math.Min(from.H, to.H)
	}
	gap = math.Max(0, gap)

	ratio := 0.0
	if extent > 0 {
		ratio = math.Min(1, overlap/extent)
	}
	dist := geometry.Distance(fc, tc)

	s := WeightGap*gap + WeightCross*cross + WeightOverlap*(1-ratio) + WeightDist*dist
	return s, overlap > 0
}

// span returns the length of the intersection of [a0,a1] and [b0,b1].
func span(a0, a1, b0, b1 float64) float64 {
	return math.Max(0, math.Min(a1, b1)-math.Max(a0, b0))
}

func better(a, b candidate) bool {
	if a.overlap != b.overlap {
		return a.overlap
	}
	if a.score != b.score {
		return a.score < b.score
	}
	if a.node.Y != b.node.Y {
		return a.node.Y < b.node.Y
	}
	if a.node.X != b.node.X {
		return a.node.X < b.node.X
	}
	return a.node.ID < b.node.ID
}
