package canvas

import "math"

// NodeKind tags the variant of a Node.
type NodeKind string

const (
	KindText  NodeKind = "text"
	KindImage NodeKind = "image"
)

// HeightMode controls whether a node grows with its content.
type HeightMode string

const (
	HeightAuto  HeightMode = "auto"
	HeightFixed HeightMode = "fixed"
)

// Direction describes which ends of an edge carry an arrowhead.
type Direction string

const (
	DirectionNone    Direction = "none"
	DirectionForward Direction = "forward"
	DirectionBoth    Direction = "both"
)

// Next cycles none → forward → both → none.
func (d Direction) Next() Direction {
	switch d {
	case DirectionNone:
		return DirectionForward
	case DirectionForward:
		return DirectionBoth
	default:
		return DirectionNone
	}
}

// LineStyle is the stroke pattern of an edge.
type LineStyle string

const (
	LineSolid  LineStyle = "solid"
	LineDashed LineStyle = "dashed"
	LineDotted LineStyle = "dotted"
)

// Palette lists the color ids nodes and edges may reference.
var Palette = []string{"red", "orange", "yellow", "green", "blue", "purple"}

// ValidColor reports whether c is nil (no color) or a palette id.
func ValidColor(c *string) bool {
	if c == nil {
		return true
	}
	for _, p := range Palette {
		if p == *c {
			return true
		}
	}
	return false
}

// Color returns a pointer to a copy of id, for building nullable colors.
func Color(id string) *string { return &id }

// Base holds the attributes shared by every node kind.
type Base struct {
	ID         string     `json:"id"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	HeightMode HeightMode `json:"heightMode"`
	Color      *string    `json:"color"`
}

// Node is a text or image card placed on the canvas.
type Node struct {
	Base
	Kind NodeKind `json:"type"`

	// ContentMarkdown is the body of a text node.
	ContentMarkdown string `json:"contentMarkdown,omitempty"`

	// Content is the caption of an image node.
	Content string `json:"content,omitempty"`
	// AssetID references the image blob in the asset store.
	AssetID string `json:"assetId,omitempty"`
}

// NewText returns a text node with default geometry at (x, y).
func NewText(id string, x, y float64, markdown string) Node {
	w, h := DefaultSize(KindText)
	return Node{
		Base:            Base{ID: id, X: x, Y: y, Width: w, Height: h, HeightMode: HeightAuto},
		Kind:            KindText,
		ContentMarkdown: markdown,
	}
}

// NewImage returns an image node with default geometry at (x, y).
func NewImage(id string, x, y float64, assetID, caption string) Node {
	w, h := DefaultSize(KindImage)
	return Node{
		Base:    Base{ID: id, X: x, Y: y, Width: w, Height: h, HeightMode: HeightFixed},
		Kind:    KindImage,
		Content: caption,
		AssetID: assetID,
	}
}

// DefaultSize returns the initial width and height of a node of kind k.
func DefaultSize(k NodeKind) (float64, float64) {
	switch k {
	case KindText:
		return 280, 120
	case KindImage:
		return 320, 240
	}
	return 200, 100
}

// Text returns the editable content of the node regardless of kind.
func (n Node) Text() string {
	switch n.Kind {
	case KindText:
		return n.ContentMarkdown
	case KindImage:
		return n.Content
	}
	return ""
}

// WithText returns a copy of n with its editable content replaced.
func (n Node) WithText(s string) Node {
	switch n.Kind {
	case KindText:
		n.ContentMarkdown = s
	case KindImage:
		n.Content = s
	}
	return n
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	if n.Color != nil {
		n.Color = Color(*n.Color)
	}
	return n
}

// Center returns the center point of the node's bounding box.
func (n Node) Center() (float64, float64) {
	return n.X + n.Width/2, n.Y + n.Height/2
}

// Geometry is the position and size of a node, as captured by resize gestures.
type Geometry struct {
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	HeightMode HeightMode `json:"heightMode"`
}

// Geometry returns the node's current geometry.
func (n Node) Geometry() Geometry {
	return Geometry{X: n.X, Y: n.Y, Width: n.Width, Height: n.Height, HeightMode: n.HeightMode}
}

// Edge is a connector between two nodes.
type Edge struct {
	ID        string    `json:"id"`
	FromNode  string    `json:"fromNode"`
	ToNode    string    `json:"toNode"`
	Direction Direction `json:"direction"`
	Label     string    `json:"label"`
	LineStyle LineStyle `json:"lineStyle"`
	Color     *string   `json:"color"`

	// FromAnchor and ToAnchor pin an endpoint to a side after the user
	// re-drags it. Empty means the side is chosen automatically.
	FromAnchor string `json:"fromAnchor,omitempty"`
	ToAnchor   string `json:"toAnchor,omitempty"`
}

// NewEdge returns a forward solid edge from → to.
func NewEdge(id, from, to string) Edge {
	return Edge{ID: id, FromNode: from, ToNode: to, Direction: DirectionForward, LineStyle: LineSolid}
}

// Clone returns a deep copy of e.
func (e Edge) Clone() Edge {
	if e.Color != nil {
		e.Color = Color(*e.Color)
	}
	return e
}

// Touches reports whether nodeID is an endpoint of e.
func (e Edge) Touches(nodeID string) bool {
	return e.FromNode == nodeID || e.ToNode == nodeID
}

// FileRecord is the metadata of an image asset that should exist in storage.
type FileRecord struct {
	ID             string `json:"id"`
	MimeType       string `json:"mimeType"`
	OriginalWidth  int    `json:"originalWidth"`
	OriginalHeight int    `json:"originalHeight"`
	ByteSize       int64  `json:"byteSize"`
	CreatedAt      int64  `json:"createdAt"` // Unix milliseconds
}

// Zoom bounds applied by ClampZoom when no configuration overrides them.
const (
	MinZoom = 0.1
	MaxZoom = 4.0
)

// Viewport is the camera transform of the canvas.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport returns the identity camera.
func DefaultViewport() Viewport { return Viewport{Zoom: 1} }

// ClampZoom limits z to [lo, hi].
func ClampZoom(z, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, z))
}

// ScreenToWorld converts a screen-space point to world coordinates.
func (v Viewport) ScreenToWorld(sx, sy float64) (float64, float64) {
	return (sx - v.X) / v.Zoom, (sy - v.Y) / v.Zoom
}

// ZoomAt returns the viewport scaled by factor around the screen point
// (sx, sy), keeping the world point under it fixed.
func (v Viewport) ZoomAt(sx, sy, factor, lo, hi float64) Viewport {
	wx, wy := v.ScreenToWorld(sx, sy)
	zoom := ClampZoom(v.Zoom*factor, lo, hi)
	return Viewport{X: sx - wx*zoom, Y: sy - wy*zoom, Zoom: zoom}
}
