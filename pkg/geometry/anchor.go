package geometry

import "math"

// Point is a position in world space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned bounding box with its top-left corner at X, Y.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Center returns the center of r.
func (r Rect) Center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Intersects reports whether r and o overlap, edges included.
func (r Rect) Intersects(o Rect) bool {
	return r.X <= o.X+o.W && o.X <= r.X+r.W && r.Y <= o.Y+o.H && o.Y <= r.Y+r.H
}

// Normalize returns r with non-negative width and height, for rectangles
// dragged up or to the left.
func (r Rect) Normalize() Rect {
	if r.W < 0 {
		r.X, r.W = r.X+r.W, -r.W
	}
	if r.H < 0 {
		r.Y, r.H = r.Y+r.H, -r.H
	}
	return r
}

// Side identifies one of the four anchors of a node.
type Side string

const (
	SideTop    Side = "top"
	SideRight  Side = "right"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
)

// Sides lists the anchors in scan order.
var Sides = [4]Side{SideTop, SideRight, SideBottom, SideLeft}

// Valid reports whether s names an anchor.
func (s Side) Valid() bool {
	switch s {
	case SideTop, SideRight, SideBottom, SideLeft:
		return true
	}
	return false
}

// AnchorPoint returns the midpoint of side s of r. An unknown side
// resolves to the center.
func AnchorPoint(r Rect, s Side) Point {
	switch s {
	case SideTop:
		return Point{X: r.X + r.W/2, Y: r.Y}
	case SideRight:
		return Point{X: r.X + r.W, Y: r.Y + r.H/2}
	case SideBottom:
		return Point{X: r.X + r.W/2, Y: r.Y + r.H}
	case SideLeft:
		return Point{X: r.X, Y: r.Y + r.H/2}
	}
	return r.Center()
}

// Anchors returns the four anchor points of r in [Sides] order.
func Anchors(r Rect) [4]Point {
	var out [4]Point
	for i, s := range Sides {
		out[i] = AnchorPoint(r, s)
	}
	return out
}

// SmartAnchors chooses the anchor pair for an edge between two node
// centers. The dominant axis of the center-to-center vector decides the
// route; a tie favors the horizontal axis.
func SmartAnchors(from, to Point) (fromSide, toSide Side) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	if math.Abs(dx) >= math.Abs(dy) {
		if dx >= 0 {
			return SideRight, SideLeft
		}
		return SideLeft, SideRight
	}
	if dy >= 0 {
		return SideBottom, SideTop
	}
	return SideTop, SideBottom
}

// Route is the straight segment an edge is drawn along.
type Route struct {
	Start    Point `json:"start"`
	End      Point `json:"end"`
	FromSide Side  `json:"fromSide"`
	ToSide   Side  `json:"toSide"`
}

// EdgeRoute computes the route between two node boxes. A valid pinned
// side overrides the automatic choice for that endpoint.
func EdgeRoute(from, to Rect, pinFrom, pinTo Side) Route {
	fs, ts := SmartAnchors(from.Center(), to.Center())
	if pinFrom.Valid() {
		fs = pinFrom
	}
	if pinTo.Valid() {
		ts = pinTo
	}
	return Route{
		Start:    AnchorPoint(from, fs),
		End:      AnchorPoint(to, ts),
		FromSide: fs,
		ToSide:   ts,
	}
}

// Target is a node box considered for anchor snapping.
type Target struct {
	ID   string
	Rect Rect
}

// AnchorHit is the result of [ClosestAnchor].
type AnchorHit struct {
	NodeID   string
	Side     Side
	Point    Point
	Distance float64
}

// ClosestAnchor returns the anchor nearest to p among all targets except
// excludeID, provided it lies within maxDistance. Candidates are compared
// by squared distance; the square root is taken once for the winner.
func ClosestAnchor(targets []Target, p Point, excludeID string, maxDistance float64) (AnchorHit, bool) {
	best := AnchorHit{}
	bestD2 := maxDistance * maxDistance
	found := false

	for _, t := range targets {
		if t.ID == excludeID {
			continue
		}
		for _, s := range Sides {
			a := AnchorPoint(t.Rect, s)
			dx, dy := a.X-p.X, a.Y-p.Y
			d2 := dx*dx + dy*dy
			if d2 > bestD2 || (found && d2 == bestD2) {
				continue
			}
			bestD2 = d2
			best = AnchorHit{NodeID: t.ID, Side: s, Point: a}
			found = true
		}
	}
	if !found {
		return AnchorHit{}, false
	}
	best.Distance = math.Sqrt(bestD2)
	return best, true
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
