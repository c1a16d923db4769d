package store

import (
	"maps"
	"slices"

	"github.com/iamvince24/serenity-canvas/pkg/canvas"
	"github.com/iamvince24/serenity-canvas/pkg/errors"
	"github.com/iamvince24/serenity-canvas/pkg/geometry"
	"github.com/iamvince24/serenity-canvas/pkg/history"
	"github.com/iamvince24/serenity-canvas/pkg/interaction"
)

// gesture is the scratch state of the active gesture. Only the fields of
// the current machine state are meaningful.
type gesture struct {
	ids      []string                  // dragged nodes
	startPos map[string]geometry.Point // drag origins
	nodeID   string                    // resized, edited or connect source node
	geom     canvas.Geometry           // resize origin
	hit      *geometry.AnchorHit       // connect snap target
	pointer  geometry.Point            // connect pointer
	viewport canvas.Viewport           // pan origin
	base     map[string]bool           // node selection before a box select
	baseEdge map[string]bool           // edge selection before a box select
	additive bool                      // box select extends base
	box      geometry.Rect             // box select rectangle
}

// begin moves the idle machine into a gesture.
func (s *Store) begin(e interaction.Event) error {
	from := s.machine.State()
	if from != interaction.StateIdle {
		return errors.New(errors.ErrCodeGestureBlocked, "cannot start %s while %s", e, from)
	}
	to, _ := s.machine.Send(e)
	s.gesture = gesture{}
	s.logger.Debug("gesture started", "event", e, "state", to)
	return nil
}

// end sends the gesture's end event and drops its scratch state.
func (s *Store) end(e interaction.Event) {
	to, _ := s.machine.Send(e)
	s.gesture = gesture{}
	s.logger.Debug("gesture ended", "event", e, "state", to)
}

func (s *Store) require(want interaction.State) error {
	if got := s.machine.State(); got != want {
		return errors.New(errors.ErrCodeGestureInactive, "no %s gesture in progress (state %s)", want, got)
	}
	return nil
}

// BeginDrag starts moving ids, or the selection when ids is empty. Nodes
// not already selected replace the selection.
func (s *Store) BeginDrag(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) == 0 {
		ids = s.selectedLocked()
	}
	if len(ids) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "nothing to drag")
	}
	start := make(map[string]geometry.Point, len(ids))
	for _, id := range ids {
		n, err := s.nodeLocked(id)
		if err != nil {
			return err
		}
		start[id] = geometry.Point{X: n.X, Y: n.Y}
	}
	if err := s.begin(interaction.EventNodePointerDown); err != nil {
		return err
	}
	s.gesture.ids = slices.Clone(ids)
	s.gesture.startPos = start
	if !s.allSelectedLocked(ids) {
		s.selectLocked(ids)
	}
	return nil
}

// PreviewDrag offsets the dragged nodes by (dx, dy) from where the drag
// started. Previews are not recorded in history.
func (s *Store) PreviewDrag(dx, dy float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(interaction.StateDragging); err != nil {
		return err
	}
	for _, id := range s.gesture.ids {
		p := s.gesture.startPos[id]
		mutator{s}.SetNodePosition(id, p.X+dx, p.Y+dy)
	}
	return nil
}

// CommitDrag records the drag as one undoable step. A drag that moved
// nothing records nothing.
func (s *Store) CommitDrag() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(interaction.StateDragging); err != nil {
		return err
	}

	var cmds []history.Command
	for _, id := range s.gesture.ids {
		n, ok := s.state.Nodes[id]
		p := s.gesture.startPos[id]
		if !ok || (n.X == p.X && n.Y == p.Y) {
			continue
		}
		cmds = append(cmds, history.NewMoveNode(id, p.X, p.Y, n.X, n.Y))
	}
	s.executeAll("move-nodes", cmds)
	s.end(interaction.EventDragEnd)
	return nil
}

// CancelGesture aborts the active gesture, restoring whatever its previews
// changed. Nothing is recorded. It reports whether a gesture was active.
func (s *Store) CancelGesture() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked()
}

func (s *Store) cancelLocked() bool {
	state := s.machine.State()
	if !interaction.IsCancellable(state) {
		return false
	}
	m := mutator{s}
	switch state {
	case interaction.StateDragging:
		for _, id := range s.gesture.ids {
			p := s.gesture.startPos[id]
			m.SetNodePosition(id, p.X, p.Y)
		}
	case interaction.StateResizing:
		m.SetNodeGeometry(s.gesture.nodeID, s.gesture.geom)
	case interaction.StatePanning:
		s.state.Viewport = s.gesture.viewport
	case interaction.StateBoxSelecting:
		s.selected, s.selectedEdges = s.gesture.base, s.gesture.baseEdge
	}
	s.end(interaction.EventEscape)
	return true
}

// BeginResize starts resizing id.
func (s *Store) BeginResize(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(id)
	if err != nil {
		return err
	}
	if err := s.begin(interaction.EventResizeStart); err != nil {
		return err
	}
	s.gesture.nodeID = id
	s.gesture.geom = n.Geometry()
	return nil
}

// PreviewResize applies g to the node being resized, clamped to the minimum
// node size. Previews are not recorded in history.
func (s *Store) PreviewResize(g canvas.Geometry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(interaction.StateResizing); err != nil {
		return err
	}
	g.Width = max(g.Width, MinNodeWidth)
	g.Height = max(g.Height, MinNodeHeight)
	if g.HeightMode == "" {
		g.HeightMode = s.gesture.geom.HeightMode
	}
	mutator{s}.SetNodeGeometry(s.gesture.nodeID, g)
	return nil
}

// CommitResize records the resize as one undoable step.
func (s *Store) CommitResize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(interaction.StateResizing); err != nil {
		return err
	}
	if n, ok := s.state.Nodes[s.gesture.nodeID]; ok && n.Geometry() != s.gesture.geom {
		s.execute(history.NewResizeNode(n.ID, s.gesture.geom, n.Geometry()))
	}
	s.end(interaction.EventResizeEnd)
	return nil
}

// BeginEdit enters text editing on id.
func (s *Store) BeginEdit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.nodeLocked(id); err != nil {
		return err
	}
	if err := s.begin(interaction.EventEditStart); err != nil {
		return err
	}
	s.gesture.nodeID = id
	s.selectLocked([]string{id})
	return nil
}

// CommitEdit stores content on the edited node and leaves editing.
// Unchanged content records nothing.
func (s *Store) CommitEdit(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(interaction.StateEditing); err != nil {
		return err
	}
	if n, ok := s.state.Nodes[s.gesture.nodeID]; ok && n.Text() != content {
		s.execute(history.NewUpdateContent(n.ID, n.Text(), content))
	}
	s.end(interaction.EventEditEnd)
	return nil
}

// EndEdit leaves editing without changing the node.
func (s *Store) EndEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(interaction.StateEditing); err != nil {
		return err
	}
	s.end(interaction.EventEditEnd)
	return nil
}

// EditingNode returns the node being edited, if any.
func (s *Store) EditingNode() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine.State() != interaction.StateEditing {
		return "", false
	}
	return s.gesture.nodeID, true
}

// BeginConnect starts drawing an edge out of fromID.
func (s *Store) BeginConnect(fromID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.nodeLocked(fromID); err != nil {
		return err
	}
	if err := s.begin(interaction.EventConnectStart); err != nil {
		return err
	}
	s.gesture.nodeID = fromID
	return nil
}

// PreviewConnect moves the loose end of the edge to world point p and
// returns the anchor it snaps to, if one is within the snap distance.
func (s *Store) PreviewConnect(p geometry.Point) (geometry.AnchorHit, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(interaction.StateConnecting); err != nil {
		return geometry.AnchorHit{}, false, err
	}
	s.gesture.pointer = p
	hit, ok := geometry.ClosestAnchor(s.targetsLocked(), p, s.gesture.nodeID, s.opts.SnapDistance)
	if ok {
		s.gesture.hit = &hit
	} else {
		s.gesture.hit = nil
	}
	return hit, ok, nil
}

// CommitConnect finishes the connect gesture with an edge to toID, or to
// the snapped anchor's node when toID is empty. It returns the new edge
// id, or "" when the gesture ended over empty canvas.
func (s *Store) CommitConnect(toID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(interaction.StateConnecting); err != nil {
		return "", err
	}
	from := s.gesture.nodeID
	if toID == "" && s.gesture.hit != nil {
		toID = s.gesture.hit.NodeID
	}
	defer s.end(interaction.EventConnectEnd)
	if toID == "" {
		return "", nil
	}
	e, err := s.addEdgeLocked(from, toID)
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

// BeginPan starts dragging the stage. It is refused while a node drag or
// resize is in progress.
func (s *Store) BeginPan() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state := s.machine.State(); !interaction.AllowsStagePan(state) {
		return errors.New(errors.ErrCodeGestureBlocked, "cannot pan while %s", state)
	}
	if err := s.begin(interaction.EventPanStart); err != nil {
		return err
	}
	s.gesture.viewport = s.state.Viewport
	return nil
}

// PanBy moves the camera by a screen-space delta during a pan gesture.
func (s *Store) PanBy(dx, dy float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(interaction.StatePanning); err != nil {
		return err
	}
	s.state.Viewport.X += dx
	s.state.Viewport.Y += dy
	return nil
}

// EndPan finishes the pan gesture.
func (s *Store) EndPan() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(interaction.StatePanning); err != nil {
		return err
	}
	s.end(interaction.EventPanEnd)
	return nil
}

// BeginBoxSelect starts a rubber-band selection. With additive, boxed
// nodes are added to the current selection instead of replacing it.
func (s *Store) BeginBoxSelect(additive bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, prevEdges := maps.Clone(s.selected), maps.Clone(s.selectedEdges)
	if err := s.begin(interaction.EventBoxSelectStart); err != nil {
		return err
	}
	s.gesture.base, s.gesture.baseEdge = prev, prevEdges
	s.gesture.additive = additive
	if !additive {
		clear(s.selected)
		clear(s.selectedEdges)
	}
	return nil
}

// UpdateBoxSelect selects the nodes intersecting the world rectangle r.
func (s *Store) UpdateBoxSelect(r geometry.Rect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(interaction.StateBoxSelecting); err != nil {
		return err
	}
	r = r.Normalize()
	s.gesture.box = r
	clear(s.selected)
	if s.gesture.additive {
		for id := range s.gesture.base {
			if _, ok := s.state.Nodes[id]; ok {
				s.selected[id] = true
			}
		}
	}
	for id, n := range s.state.Nodes {
		if r.Intersects(rectOf(n)) {
			s.selected[id] = true
		}
	}
	return nil
}

// EndBoxSelect finishes the rubber band, keeping the selection.
func (s *Store) EndBoxSelect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(interaction.StateBoxSelecting); err != nil {
		return err
	}
	s.end(interaction.EventBoxSelectEnd)
	return nil
}

func (s *Store) targetsLocked() []geometry.Target {
	targets := make([]geometry.Target, 0, len(s.state.NodeOrder))
	for _, n := range s.state.OrderedNodes() {
		targets = append(targets, geometry.Target{ID: n.ID, Rect: rectOf(n)})
	}
	return targets
}

func rectOf(n canvas.Node) geometry.Rect {
	return geometry.Rect{X: n.X, Y: n.Y, W: n.Width, H: n.Height}
}
