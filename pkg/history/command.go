package history

import (
	"encoding/json"
	"slices"

	"github.com/iamvince24/serenity-canvas/pkg/canvas"
	"github.com/iamvince24/serenity-canvas/pkg/errors"
)

// Command types reported by Type and ToJSON.
const (
	TypeAddNode       = "add-node"
	TypeDeleteNode    = "delete-node"
	TypeMoveNode      = "move-node"
	TypeResizeNode    = "resize-node"
	TypeUpdateContent = "update-content"
	TypeSetColor      = "set-color"
	TypeSetHeightMode = "set-height-mode"
	TypeReorder       = "reorder"
	TypeAddEdge       = "add-edge"
	TypeDeleteEdge    = "delete-edge"
	TypeUpdateEdge    = "update-edge"
	TypeComposite     = "composite"
)

// Command is one reversible mutation.
type Command interface {
	Type() string
	Execute(mc Context)
	Undo(mc Context)
	ToJSON() ([]byte, error)
}

// FromJSON would rebuild a command from ToJSON output. Replaying
// serialized history is not implemented; calling it is a programming error.
func FromJSON(data []byte) (Command, error) {
	return nil, errors.New(errors.ErrCodeUnsupported, "command deserialization is not implemented")
}

type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func marshal(typ string, payload any) ([]byte, error) {
	return json.Marshal(envelope{Type: typ, Payload: payload})
}

func cloneColor(c *string) *string {
	if c == nil {
		return nil
	}
	return canvas.Color(*c)
}

// =============================================================================
// Nodes
// =============================================================================

// AddNodeCommand creates a node on top of the order.
type AddNodeCommand struct {
	node canvas.Node
}

// NewAddNode records the creation of n.
func NewAddNode(n canvas.Node) *AddNodeCommand {
	return &AddNodeCommand{node: n.Clone()}
}

func (c *AddNodeCommand) Type() string            { return TypeAddNode }
func (c *AddNodeCommand) Execute(mc Context)      { mc.AddNode(c.node.Clone()) }
func (c *AddNodeCommand) Undo(mc Context)         { mc.DeleteNode(c.node.ID) }
func (c *AddNodeCommand) ToJSON() ([]byte, error) { return marshal(c.Type(), c.node) }

// Node returns a copy of the node the command creates.
func (c *AddNodeCommand) Node() canvas.Node { return c.node.Clone() }

// DeleteNodeCommand removes a node. Undo restores the node, its z-order
// slot and the incident edges captured at construction.
type DeleteNodeCommand struct {
	node        canvas.Node
	edges       []canvas.Edge
	orderBefore []string
}

// NewDeleteNode records the deletion of n. edges are the incident edges
// the deletion will cascade to, and orderBefore is the node order at the
// moment the command executes.
func NewDeleteNode(n canvas.Node, edges []canvas.Edge, orderBefore []string) *DeleteNodeCommand {
	cloned := make([]canvas.Edge, len(edges))
	for i, e := range edges {
		cloned[i] = e.Clone()
	}
	return &DeleteNodeCommand{
		node:        n.Clone(),
		edges:       cloned,
		orderBefore: slices.Clone(orderBefore),
	}
}

func (c *DeleteNodeCommand) Type() string { return TypeDeleteNode }

func (c *DeleteNodeCommand) Execute(mc Context) { mc.DeleteNode(c.node.ID) }

func (c *DeleteNodeCommand) Undo(mc Context) {
	mc.AddNode(c.node.Clone())
	mc.SetNodeOrder(slices.Clone(c.orderBefore))
	for _, e := range c.edges {
		mc.AddEdge(e.Clone())
	}
}

func (c *DeleteNodeCommand) ToJSON() ([]byte, error) {
	return marshal(c.Type(), map[string]any{
		"node":        c.node,
		"edges":       c.edges,
		"orderBefore": c.orderBefore,
	})
}

// NodeID returns the id of the deleted node.
func (c *DeleteNodeCommand) NodeID() string { return c.node.ID }

// Node returns a copy of the node as it was before deletion.
func (c *DeleteNodeCommand) Node() canvas.Node { return c.node.Clone() }

// MoveNodeCommand moves a node's top-left corner.
type MoveNodeCommand struct {
	id           string
	fromX, fromY float64
	toX, toY     float64
}

// NewMoveNode records a move of node id from (fromX, fromY) to (toX, toY).
func NewMoveNode(id string, fromX, fromY, toX, toY float64) *MoveNodeCommand {
	return &MoveNodeCommand{id: id, fromX: fromX, fromY: fromY, toX: toX, toY: toY}
}

func (c *MoveNodeCommand) Type() string       { return TypeMoveNode }
func (c *MoveNodeCommand) Execute(mc Context) { mc.SetNodePosition(c.id, c.toX, c.toY) }
func (c *MoveNodeCommand) Undo(mc Context)    { mc.SetNodePosition(c.id, c.fromX, c.fromY) }

func (c *MoveNodeCommand) ToJSON() ([]byte, error) {
	return marshal(c.Type(), map[string]any{
		"id":   c.id,
		"from": [2]float64{c.fromX, c.fromY},
		"to":   [2]float64{c.toX, c.toY},
	})
}

// ResizeNodeCommand changes a node's geometry, height mode included.
type ResizeNodeCommand struct {
	id       string
	from, to canvas.Geometry
}

// NewResizeNode records a geometry change of node id.
func NewResizeNode(id string, from, to canvas.Geometry) *ResizeNodeCommand {
	return &ResizeNodeCommand{id: id, from: from, to: to}
}

func (c *ResizeNodeCommand) Type() string       { return TypeResizeNode }
func (c *ResizeNodeCommand) Execute(mc Context) { mc.SetNodeGeometry(c.id, c.to) }
func (c *ResizeNodeCommand) Undo(mc Context)    { mc.SetNodeGeometry(c.id, c.from) }

func (c *ResizeNodeCommand) ToJSON() ([]byte, error) {
	return marshal(c.Type(), map[string]any{"id": c.id, "from": c.from, "to": c.to})
}

// UpdateContentCommand replaces a node's editable text.
type UpdateContentCommand struct {
	id       string
	from, to string
}

// NewUpdateContent records a content edit of node id.
func NewUpdateContent(id, from, to string) *UpdateContentCommand {
	return &UpdateContentCommand{id: id, from: from, to: to}
}

func (c *UpdateContentCommand) Type() string       { return TypeUpdateContent }
func (c *UpdateContentCommand) Execute(mc Context) { mc.SetNodeContent(c.id, c.to) }
func (c *UpdateContentCommand) Undo(mc Context)    { mc.SetNodeContent(c.id, c.from) }

// Contents returns the text before and after the edit.
func (c *UpdateContentCommand) Contents() (from, to string) { return c.from, c.to }

func (c *UpdateContentCommand) ToJSON() ([]byte, error) {
	return marshal(c.Type(), map[string]any{"id": c.id, "from": c.from, "to": c.to})
}

// SetColorCommand changes a node's palette color.
type SetColorCommand struct {
	id       string
	from, to *string
}

// NewSetColor records a color change of node id. Either color may be nil.
func NewSetColor(id string, from, to *string) *SetColorCommand {
	return &SetColorCommand{id: id, from: cloneColor(from), to: cloneColor(to)}
}

func (c *SetColorCommand) Type() string       { return TypeSetColor }
func (c *SetColorCommand) Execute(mc Context) { mc.SetNodeColor(c.id, cloneColor(c.to)) }
func (c *SetColorCommand) Undo(mc Context)    { mc.SetNodeColor(c.id, cloneColor(c.from)) }

func (c *SetColorCommand) ToJSON() ([]byte, error) {
	return marshal(c.Type(), map[string]any{"id": c.id, "from": c.from, "to": c.to})
}

// SetHeightModeCommand switches a node between auto and fixed height.
type SetHeightModeCommand struct {
	id       string
	from, to canvas.HeightMode
}

// NewSetHeightMode records a height mode change of node id.
func NewSetHeightMode(id string, from, to canvas.HeightMode) *SetHeightModeCommand {
	return &SetHeightModeCommand{id: id, from: from, to: to}
}

func (c *SetHeightModeCommand) Type() string       { return TypeSetHeightMode }
func (c *SetHeightModeCommand) Execute(mc Context) { mc.SetNodeHeightMode(c.id, c.to) }
func (c *SetHeightModeCommand) Undo(mc Context)    { mc.SetNodeHeightMode(c.id, c.from) }

func (c *SetHeightModeCommand) ToJSON() ([]byte, error) {
	return marshal(c.Type(), map[string]any{"id": c.id, "from": c.from, "to": c.to})
}

// ReorderCommand replaces the whole node order.
type ReorderCommand struct {
	from, to []string
}

// NewReorder records a z-order change.
func NewReorder(from, to []string) *ReorderCommand {
	return &ReorderCommand{from: slices.Clone(from), to: slices.Clone(to)}
}

func (c *ReorderCommand) Type() string       { return TypeReorder }
func (c *ReorderCommand) Execute(mc Context) { mc.SetNodeOrder(slices.Clone(c.to)) }
func (c *ReorderCommand) Undo(mc Context)    { mc.SetNodeOrder(slices.Clone(c.from)) }

func (c *ReorderCommand) ToJSON() ([]byte, error) {
	return marshal(c.Type(), map[string]any{"from": c.from, "to": c.to})
}

// =============================================================================
// Edges
// =============================================================================

// AddEdgeCommand creates an edge.
type AddEdgeCommand struct {
	edge canvas.Edge
}

// NewAddEdge records the creation of e.
func NewAddEdge(e canvas.Edge) *AddEdgeCommand {
	return &AddEdgeCommand{edge: e.Clone()}
}

func (c *AddEdgeCommand) Type() string            { return TypeAddEdge }
func (c *AddEdgeCommand) Execute(mc Context)      { mc.AddEdge(c.edge.Clone()) }
func (c *AddEdgeCommand) Undo(mc Context)         { mc.DeleteEdge(c.edge.ID) }
func (c *AddEdgeCommand) ToJSON() ([]byte, error) { return marshal(c.Type(), c.edge) }

// DeleteEdgeCommand removes an edge.
type DeleteEdgeCommand struct {
	edge canvas.Edge
}

// NewDeleteEdge records the deletion of e.
func NewDeleteEdge(e canvas.Edge) *DeleteEdgeCommand {
	return &DeleteEdgeCommand{edge: e.Clone()}
}

func (c *DeleteEdgeCommand) Type() string            { return TypeDeleteEdge }
func (c *DeleteEdgeCommand) Execute(mc Context)      { mc.DeleteEdge(c.edge.ID) }
func (c *DeleteEdgeCommand) Undo(mc Context)         { mc.AddEdge(c.edge.Clone()) }
func (c *DeleteEdgeCommand) ToJSON() ([]byte, error) { return marshal(c.Type(), c.edge) }

// UpdateEdgeCommand replaces an edge's attributes.
type UpdateEdgeCommand struct {
	from, to canvas.Edge
}

// NewUpdateEdge records a change of edge from → to. Both must share an id.
func NewUpdateEdge(from, to canvas.Edge) *UpdateEdgeCommand {
	return &UpdateEdgeCommand{from: from.Clone(), to: to.Clone()}
}

func (c *UpdateEdgeCommand) Type() string       { return TypeUpdateEdge }
func (c *UpdateEdgeCommand) Execute(mc Context) { mc.SetEdge(c.to.Clone()) }
func (c *UpdateEdgeCommand) Undo(mc Context)    { mc.SetEdge(c.from.Clone()) }

func (c *UpdateEdgeCommand) ToJSON() ([]byte, error) {
	return marshal(c.Type(), map[string]any{"from": c.from, "to": c.to})
}

// =============================================================================
// Composite
// =============================================================================

// CompositeCommand runs sub-commands as one history entry.
type CompositeCommand struct {
	label    string
	commands []Command
}

// NewComposite groups cmds. label is reported by Type when non-empty.
func NewComposite(label string, cmds ...Command) *CompositeCommand {
	return &CompositeCommand{label: label, commands: slices.Clone(cmds)}
}

func (c *CompositeCommand) Type() string {
	if c.label != "" {
		return c.label
	}
	return TypeComposite
}

// Execute runs the sub-commands in order.
func (c *CompositeCommand) Execute(mc Context) {
	for _, cmd := range c.commands {
		cmd.Execute(mc)
	}
}

// Undo reverts the sub-commands in reverse order.
func (c *CompositeCommand) Undo(mc Context) {
	for i := len(c.commands) - 1; i >= 0; i-- {
		c.commands[i].Undo(mc)
	}
}

// Len returns the number of sub-commands.
func (c *CompositeCommand) Len() int { return len(c.commands) }

func (c *CompositeCommand) ToJSON() ([]byte, error) {
	parts := make([]json.RawMessage, 0, len(c.commands))
	for _, cmd := range c.commands {
		data, err := cmd.ToJSON()
		if err != nil {
			return nil, err
		}
		parts = append(parts, data)
	}
	return marshal(c.Type(), parts)
}
