package history

import "github.com/iamvince24/serenity-canvas/pkg/canvas"

// Context is the set of primitive setters commands mutate the canvas
// through. The store implements it; every method must keep the canvas
// invariants (DeleteNode removes the node from the order and drops its
// incident edges, AddNode appends the node to the top of the order).
type Context interface {
	AddNode(n canvas.Node)
	DeleteNode(id string)
	SetNodePosition(id string, x, y float64)
	SetNodeGeometry(id string, g canvas.Geometry)
	SetNodeContent(id, content string)
	SetNodeColor(id string, color *string)
	SetNodeHeightMode(id string, mode canvas.HeightMode)
	SetNodeOrder(order []string)
	AddEdge(e canvas.Edge)
	DeleteEdge(id string)
	SetEdge(e canvas.Edge)
}
