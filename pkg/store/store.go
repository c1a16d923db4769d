package store

import (
	"maps"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/iamvince24/serenity-canvas/pkg/assets"
	"github.com/iamvince24/serenity-canvas/pkg/canvas"
	"github.com/iamvince24/serenity-canvas/pkg/errors"
	"github.com/iamvince24/serenity-canvas/pkg/geometry"
	"github.com/iamvince24/serenity-canvas/pkg/history"
	"github.com/iamvince24/serenity-canvas/pkg/interaction"
)

// Defaults applied by New for zero-valued options.
const (
	DefaultSnapDistance       = 24.0
	DefaultPreloadConcurrency = 4
	MinNodeWidth              = 80.0
	MinNodeHeight             = 40.0
)

// Options configures a Store.
type Options struct {
	// MaxDepth bounds the undo stack. Values <= 0 use history.DefaultMaxDepth.
	MaxDepth int
	// MinZoom and MaxZoom bound ZoomAt. Zero values use canvas.MinZoom and
	// canvas.MaxZoom.
	MinZoom, MaxZoom float64
	// SnapDistance is the anchor snapping radius of connect gestures.
	SnapDistance float64
	// Labels measures edge labels.
	Labels geometry.LabelOptions
	// Cache serves image nodes. Nil disables image operations.
	Cache *assets.Cache
	// PreloadConcurrency bounds PreloadImages.
	PreloadConcurrency int
	// NewID generates node and edge ids. Nil uses random UUIDs.
	NewID  func() string
	Logger *log.Logger
}

// Store is an editable canvas document.
type Store struct {
	mu      sync.Mutex
	state   *canvas.State
	history *history.Manager
	machine *interaction.Machine
	opts    Options
	logger  *log.Logger

	selected      map[string]bool // node ids
	selectedEdges map[string]bool
	gesture       gesture

	// held maps image node ids to the asset id they hold a cache reference on.
	held map[string]string
}

// New returns a store over an empty canvas.
func New(opts Options) *Store {
	if opts.MinZoom <= 0 {
		opts.MinZoom = canvas.MinZoom
	}
	if opts.MaxZoom <= 0 {
		opts.MaxZoom = canvas.MaxZoom
	}
	if opts.SnapDistance <= 0 {
		opts.SnapDistance = DefaultSnapDistance
	}
	if opts.Labels.FontSize <= 0 {
		opts.Labels = geometry.DefaultLabelOptions()
	}
	if opts.PreloadConcurrency <= 0 {
		opts.PreloadConcurrency = DefaultPreloadConcurrency
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Store{
		state:         canvas.NewState(),
		machine:       interaction.NewMachine(),
		opts:          opts,
		logger:        opts.Logger,
		selected:      make(map[string]bool),
		selectedEdges: make(map[string]bool),
		held:          make(map[string]string),
	}
	s.history = history.NewManager(mutator{s}, history.Options{MaxDepth: opts.MaxDepth, Logger: opts.Logger})
	return s
}

// Snapshot returns a deep copy of the document.
func (s *Store) Snapshot() *canvas.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Load replaces the document. History, selection and any gesture are
// discarded and image references are released.
func (s *Store) Load(st *canvas.State) error {
	if err := st.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "load canvas")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseAllLocked()
	s.state = st.Clone()
	s.history.Clear()
	s.machine.Reset()
	s.gesture = gesture{}
	clear(s.selected)
	clear(s.selectedEdges)
	s.logger.Debug("canvas loaded", "nodes", len(s.state.Nodes), "edges", len(s.state.Edges))
	return nil
}

// Node returns a copy of the node with id.
func (s *Store) Node(id string) (canvas.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.state.Nodes[id]
	return n.Clone(), ok
}

// Edge returns a copy of the edge with id.
func (s *Store) Edge(id string) (canvas.Edge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.state.Edges[id]
	return e.Clone(), ok
}

// Order returns the z-order, bottom first.
func (s *Store) Order() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.NodeOrder)
}

// Mode returns the current interaction state.
func (s *Store) Mode() interaction.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.State()
}

// Undo reverts the last command. It does nothing while a gesture is active.
func (s *Store) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undoLocked()
}

func (s *Store) undoLocked() bool {
	if s.machine.State() != interaction.StateIdle {
		return false
	}
	return s.history.Undo()
}

// Redo reapplies the last undone command. It does nothing while a gesture
// is active.
func (s *Store) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redoLocked()
}

func (s *Store) redoLocked() bool {
	if s.machine.State() != interaction.StateIdle {
		return false
	}
	return s.history.Redo()
}

// HistoryLen returns the undo and redo stack sizes.
func (s *Store) HistoryLen() (undo, redo int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}

// Viewport returns the camera transform.
func (s *Store) Viewport() canvas.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Viewport
}

// PanViewport moves the camera by a screen-space delta. It is refused while
// a node drag or resize is in progress.
func (s *Store) PanViewport(dx, dy float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !interaction.AllowsStagePan(s.machine.State()) {
		return false
	}
	s.state.Viewport.X += dx
	s.state.Viewport.Y += dy
	return true
}

// ZoomAt scales the camera by factor around the screen point (sx, sy),
// keeping the world point under it fixed.
func (s *Store) ZoomAt(sx, sy, factor float64) canvas.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	if factor > 0 {
		s.state.Viewport = s.state.Viewport.ZoomAt(sx, sy, factor, s.opts.MinZoom, s.opts.MaxZoom)
	}
	return s.state.Viewport
}

// execute runs cmd through the history. Callers hold s.mu.
func (s *Store) execute(cmd history.Command) {
	s.history.Execute(cmd)
}

func (s *Store) nodeLocked(id string) (canvas.Node, error) {
	n, ok := s.state.Nodes[id]
	if !ok {
		return canvas.Node{}, errors.New(errors.ErrCodeNodeNotFound, "node %s does not exist", id)
	}
	return n, nil
}

func (s *Store) edgeLocked(id string) (canvas.Edge, error) {
	e, ok := s.state.Edges[id]
	if !ok {
		return canvas.Edge{}, errors.New(errors.ErrCodeEdgeNotFound, "edge %s does not exist", id)
	}
	return e, nil
}

// mutator applies commands to the store's state. The store lock is held by
// whoever drives the history manager.
type mutator struct{ s *Store }

var _ history.Context = mutator{}

func (m mutator) AddNode(n canvas.Node) {
	st := m.s.state
	st.Nodes[n.ID] = n.Clone()
	if !slices.Contains(st.NodeOrder, n.ID) {
		st.NodeOrder = append(st.NodeOrder, n.ID)
	}
}

func (m mutator) DeleteNode(id string) {
	st := m.s.state
	if _, ok := st.Nodes[id]; !ok {
		return
	}
	delete(st.Nodes, id)
	st.NodeOrder = slices.DeleteFunc(slices.Clone(st.NodeOrder), func(v string) bool { return v == id })
	for eid, e := range st.Edges {
		if e.Touches(id) {
			delete(st.Edges, eid)
			delete(m.s.selectedEdges, eid)
		}
	}
	delete(m.s.selected, id)
	m.s.releaseImageLocked(id)
}

func (m mutator) SetNodePosition(id string, x, y float64) {
	if n, ok := m.s.state.Nodes[id]; ok {
		n.X, n.Y = x, y
		m.s.state.Nodes[id] = n
	}
}

func (m mutator) SetNodeGeometry(id string, g canvas.Geometry) {
	if n, ok := m.s.state.Nodes[id]; ok {
		n.X, n.Y, n.Width, n.Height, n.HeightMode = g.X, g.Y, g.Width, g.Height, g.HeightMode
		m.s.state.Nodes[id] = n
	}
}

func (m mutator) SetNodeContent(id, content string) {
	if n, ok := m.s.state.Nodes[id]; ok {
		m.s.state.Nodes[id] = n.WithText(content)
	}
}

func (m mutator) SetNodeColor(id string, color *string) {
	if n, ok := m.s.state.Nodes[id]; ok {
		n.Color = color
		m.s.state.Nodes[id] = n.Clone()
	}
}

func (m mutator) SetNodeHeightMode(id string, mode canvas.HeightMode) {
	if n, ok := m.s.state.Nodes[id]; ok {
		n.HeightMode = mode
		m.s.state.Nodes[id] = n
	}
}

func (m mutator) SetNodeOrder(order []string) {
	m.s.state.NodeOrder = slices.Clone(order)
}

func (m mutator) AddEdge(e canvas.Edge) {
	m.s.state.Edges[e.ID] = e.Clone()
}

func (m mutator) DeleteEdge(id string) {
	delete(m.s.state.Edges, id)
	delete(m.s.selectedEdges, id)
}

func (m mutator) SetEdge(e canvas.Edge) {
	if _, ok := m.s.state.Edges[e.ID]; ok {
		m.s.state.Edges[e.ID] = e.Clone()
	}
}

// sortedKeys returns the keys of set in ascending order.
func sortedKeys(set map[string]bool) []string {
	return slices.Sorted(maps.Keys(set))
}
