package store

import (
	"slices"

	"github.com/iamvince24/serenity-canvas/pkg/canvas"
	"github.com/iamvince24/serenity-canvas/pkg/errors"
	"github.com/iamvince24/serenity-canvas/pkg/history"
	"github.com/iamvince24/serenity-canvas/pkg/interaction"
	"github.com/iamvince24/serenity-canvas/pkg/layer"
)

// AddTextNode places a text node at (x, y) on top of the canvas.
func (s *Store) AddTextNode(x, y float64, markdown string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := canvas.NewText(s.opts.NewID(), x, y, markdown)
	s.execute(history.NewAddNode(n))
	return n.ID
}

// AddImageNode places an image node for file at (x, y) and registers the
// file record. The record stays after an undo; garbage collection removes
// it once nothing references it.
func (s *Store) AddImageNode(x, y float64, file canvas.FileRecord, caption string) (string, error) {
	if err := errors.ValidateAssetID(file.ID); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Files[file.ID] = file
	n := canvas.NewImage(s.opts.NewID(), x, y, file.ID, caption)
	if file.OriginalWidth > 0 && file.OriginalHeight > 0 {
		n.Height = n.Width * float64(file.OriginalHeight) / float64(file.OriginalWidth)
	}
	s.execute(history.NewAddNode(n))
	return n.ID, nil
}

// RemoveFile drops a file record from the document.
func (s *Store) RemoveFile(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.Files, id)
}

// AddEdge connects from → to with a forward solid edge.
func (s *Store) AddEdge(from, to string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.addEdgeLocked(from, to)
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

func (s *Store) addEdgeLocked(from, to string) (canvas.Edge, error) {
	e := canvas.NewEdge(s.opts.NewID(), from, to)
	if err := s.checkEdgeLocked(e); err != nil {
		return canvas.Edge{}, err
	}
	s.execute(history.NewAddEdge(e))
	return e, nil
}

func (s *Store) checkEdgeLocked(e canvas.Edge) error {
	if e.FromNode == e.ToNode {
		return errors.New(errors.ErrCodeInvalidEdge, "edge %s connects %s to itself", e.ID, e.FromNode)
	}
	for _, id := range []string{e.FromNode, e.ToNode} {
		if _, ok := s.state.Nodes[id]; !ok {
			return errors.New(errors.ErrCodeInvalidEdge, "edge %s references missing node %s", e.ID, id)
		}
	}
	if !canvas.ValidColor(e.Color) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown color %q", *e.Color)
	}
	return nil
}

// DeleteSelection removes the selected nodes and edges, together with every
// edge touching a removed node, as one undoable step. It is ignored while
// text is being edited; any other active gesture is cancelled first. It
// reports whether anything was deleted.
func (s *Store) DeleteSelection() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteSelectionLocked()
}

func (s *Store) deleteSelectionLocked() bool {
	if !interaction.AllowsDelete(s.machine.State()) {
		return false
	}
	s.cancelLocked()

	nodes := s.selectedLocked()
	edgeIDs := make(map[string]bool, len(s.selectedEdges))
	for id := range s.selectedEdges {
		edgeIDs[id] = true
	}
	for _, id := range nodes {
		for _, e := range s.state.IncidentEdges(id) {
			edgeIDs[e.ID] = true
		}
	}
	if len(nodes) == 0 && len(edgeIDs) == 0 {
		return false
	}

	var cmds []history.Command
	for _, id := range sortedKeys(edgeIDs) {
		if e, ok := s.state.Edges[id]; ok {
			cmds = append(cmds, history.NewDeleteEdge(e))
		}
	}
	// Each node records the order as it will be just before its own
	// deletion, so undoing in reverse restores every slot.
	order := slices.Clone(s.state.NodeOrder)
	for _, id := range nodes {
		cmds = append(cmds, history.NewDeleteNode(s.state.Nodes[id], nil, order))
		order = slices.DeleteFunc(slices.Clone(order), func(v string) bool { return v == id })
	}

	s.execute(history.NewComposite("delete-selection", cmds...))
	s.logger.Debug("deleted selection", "nodes", len(nodes), "edges", len(edgeIDs))
	return true
}

// DeleteNode removes one node and its edges as one undoable step.
func (s *Store) DeleteNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(id)
	if err != nil {
		return err
	}
	s.execute(history.NewDeleteNode(n, s.state.IncidentEdges(id), s.state.NodeOrder))
	return nil
}

// DeleteEdge removes one edge.
func (s *Store) DeleteEdge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.edgeLocked(id)
	if err != nil {
		return err
	}
	s.execute(history.NewDeleteEdge(e))
	return nil
}

// SetContent replaces the text of a node outside an edit gesture.
func (s *Store) SetContent(id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(id)
	if err != nil {
		return err
	}
	if n.Text() != content {
		s.execute(history.NewUpdateContent(id, n.Text(), content))
	}
	return nil
}

// SetColor colors every selected node and edge, as one undoable step.
// A nil color clears it.
func (s *Store) SetColor(color *string) error {
	if !canvas.ValidColor(color) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown color %q", *color)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var cmds []history.Command
	for _, id := range s.selectedLocked() {
		n := s.state.Nodes[id]
		if !sameColor(n.Color, color) {
			cmds = append(cmds, history.NewSetColor(id, n.Color, color))
		}
	}
	for _, id := range sortedKeys(s.selectedEdges) {
		e := s.state.Edges[id]
		if !sameColor(e.Color, color) {
			to := e.Clone()
			to.Color = color
			cmds = append(cmds, history.NewUpdateEdge(e, to))
		}
	}
	s.executeAll("set-color", cmds)
	return nil
}

// SetHeightMode switches a node between auto and fixed height.
func (s *Store) SetHeightMode(id string, mode canvas.HeightMode) error {
	if mode != canvas.HeightAuto && mode != canvas.HeightFixed {
		return errors.New(errors.ErrCodeInvalidInput, "unknown height mode %q", mode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(id)
	if err != nil {
		return err
	}
	if n.HeightMode != mode {
		s.execute(history.NewSetHeightMode(id, n.HeightMode, mode))
	}
	return nil
}

// UpdateEdge applies fn to a copy of edge id and records the result.
// The edited edge must still connect two distinct existing nodes.
func (s *Store) UpdateEdge(id string, fn func(e *canvas.Edge)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, err := s.edgeLocked(id)
	if err != nil {
		return err
	}
	to := from.Clone()
	fn(&to)
	to.ID = id
	if err := s.checkEdgeLocked(to); err != nil {
		return err
	}
	if edgesEqual(from, to) {
		return nil
	}
	s.execute(history.NewUpdateEdge(from, to))
	return nil
}

// CycleEdgeDirection steps edge id through none → forward → both.
func (s *Store) CycleEdgeDirection(id string) error {
	return s.UpdateEdge(id, func(e *canvas.Edge) { e.Direction = e.Direction.Next() })
}

// Reorder moves id in the global z-order.
func (s *Store) Reorder(op layer.Op, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.nodeLocked(id); err != nil {
		return false, err
	}
	return s.reorderLocked(layer.Apply(s.state.NodeOrder, op, id)), nil
}

// ReorderWithinKind moves id relative to nodes of its own kind only; nodes
// of other kinds keep their slots.
func (s *Store) ReorderWithinKind(op layer.Op, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(id)
	if err != nil {
		return false, err
	}
	subset := s.state.IDsOfKind(n.Kind)
	return s.reorderLocked(layer.ApplyInSubset(s.state.NodeOrder, op, id, subset)), nil
}

// ReorderSelection applies op to every selected node while keeping the
// selection's own relative order. Single steps stop at the ends of the
// order: a node that cannot move blocks the selected nodes behind it.
func (s *Store) ReorderSelection(op layer.Op) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reorderSelectionLocked(op)
}

func (s *Store) reorderSelectionLocked(op layer.Op) bool {
	ids := s.selectedLocked()
	switch op {
	case layer.OpMoveUp, layer.OpMoveDown:
		return s.reorderLocked(stepSelection(s.state.NodeOrder, ids, op == layer.OpMoveUp))
	case layer.OpToBack:
		slices.Reverse(ids)
	}
	order := s.state.NodeOrder
	for _, id := range ids {
		order = layer.Apply(order, op, id)
	}
	return s.reorderLocked(order)
}

// stepSelection moves each of ids (listed bottom to top) one slot up or
// down. The node nearest the destination goes first; once one is pinned
// at the end of the order, or behind another pinned node, the ones after
// it stay put too.
func stepSelection(order, ids []string, up bool) []string {
	out := slices.Clone(order)
	if up {
		ids = slices.Clone(ids)
		slices.Reverse(ids)
	}
	pinned := make(map[string]bool, len(ids))
	moved := false
	for _, id := range ids {
		i := slices.Index(out, id)
		j := i - 1
		if up {
			j = i + 1
		}
		if i < 0 || j < 0 || j >= len(out) || pinned[out[j]] {
			pinned[id] = true
			continue
		}
		out[i], out[j] = out[j], out[i]
		moved = true
	}
	if !moved {
		return order
	}
	return out
}

func (s *Store) reorderLocked(next []string) bool {
	if layer.Same(next, s.state.NodeOrder) || slices.Equal(next, s.state.NodeOrder) {
		return false
	}
	s.execute(history.NewReorder(s.state.NodeOrder, next))
	return true
}

func (s *Store) executeAll(label string, cmds []history.Command) {
	switch len(cmds) {
	case 0:
	case 1:
		s.execute(cmds[0])
	default:
		s.execute(history.NewComposite(label, cmds...))
	}
}

func sameColor(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func edgesEqual(a, b canvas.Edge) bool {
	ac, bc := a.Color, b.Color
	a.Color, b.Color = nil, nil
	return a == b && sameColor(ac, bc)
}
