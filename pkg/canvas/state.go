package canvas

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrOrderMismatch is returned by [State.Validate] when NodeOrder is not
	// a permutation of the node key set.
	ErrOrderMismatch = errors.New("node order does not match node set")

	// ErrDanglingEdge is returned by [State.Validate] when an edge references
	// a node that does not exist.
	ErrDanglingEdge = errors.New("edge references missing node")

	// ErrSelfEdge is returned by [State.Validate] when an edge connects a
	// node to itself.
	ErrSelfEdge = errors.New("edge endpoints must differ")
)

// State is the complete canvas document held by the store.
type State struct {
	Nodes     map[string]Node       `json:"nodes"`
	Edges     map[string]Edge       `json:"edges"`
	NodeOrder []string              `json:"nodeOrder"`
	Files     map[string]FileRecord `json:"files"`
	Viewport  Viewport              `json:"viewport"`
}

// NewState returns an empty canvas with the default viewport.
func NewState() *State {
	return &State{
		Nodes:     make(map[string]Node),
		Edges:     make(map[string]Edge),
		NodeOrder: []string{},
		Files:     make(map[string]FileRecord),
		Viewport:  DefaultViewport(),
	}
}

// Clone returns a deep copy of s. Nil maps are replaced with empty ones.
func (s *State) Clone() *State {
	out := &State{
		Nodes:     make(map[string]Node, len(s.Nodes)),
		Edges:     make(map[string]Edge, len(s.Edges)),
		NodeOrder: slices.Clone(s.NodeOrder),
		Files:     maps.Clone(s.Files),
		Viewport:  s.Viewport,
	}
	for id, n := range s.Nodes {
		out.Nodes[id] = n.Clone()
	}
	for id, e := range s.Edges {
		out.Edges[id] = e.Clone()
	}
	if out.NodeOrder == nil {
		out.NodeOrder = []string{}
	}
	if out.Files == nil {
		out.Files = make(map[string]FileRecord)
	}
	return out
}

// Validate checks the order/node bijection and edge endpoint invariants.
func (s *State) Validate() error {
	if len(s.NodeOrder) != len(s.Nodes) {
		return fmt.Errorf("%w: %d ordered, %d nodes", ErrOrderMismatch, len(s.NodeOrder), len(s.Nodes))
	}
	seen := make(map[string]bool, len(s.NodeOrder))
	for _, id := range s.NodeOrder {
		if seen[id] {
			return fmt.Errorf("%w: duplicate %s", ErrOrderMismatch, id)
		}
		if _, ok := s.Nodes[id]; !ok {
			return fmt.Errorf("%w: unknown %s", ErrOrderMismatch, id)
		}
		seen[id] = true
	}
	for _, id := range slices.Sorted(maps.Keys(s.Edges)) {
		e := s.Edges[id]
		if e.FromNode == e.ToNode {
			return fmt.Errorf("%w: %s", ErrSelfEdge, id)
		}
		if _, ok := s.Nodes[e.FromNode]; !ok {
			return fmt.Errorf("%w: %s → %s", ErrDanglingEdge, id, e.FromNode)
		}
		if _, ok := s.Nodes[e.ToNode]; !ok {
			return fmt.Errorf("%w: %s → %s", ErrDanglingEdge, id, e.ToNode)
		}
	}
	return nil
}

// IncidentEdges returns the edges touching nodeID, sorted by edge id.
func (s *State) IncidentEdges(nodeID string) []Edge {
	var out []Edge
	for _, e := range s.Edges {
		if e.Touches(nodeID) {
			out = append(out, e.Clone())
		}
	}
	slices.SortFunc(out, func(a, b Edge) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}

// IDsOfKind returns the set of node ids whose kind is k.
func (s *State) IDsOfKind(k NodeKind) map[string]bool {
	out := make(map[string]bool)
	for id, n := range s.Nodes {
		if n.Kind == k {
			out[id] = true
		}
	}
	return out
}

// OrderedNodes returns the nodes in z-order, bottom first.
func (s *State) OrderedNodes() []Node {
	out := make([]Node, 0, len(s.NodeOrder))
	for _, id := range s.NodeOrder {
		if n, ok := s.Nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

// OrderIndex returns the z-order position of id, or -1.
func (s *State) OrderIndex(id string) int {
	return slices.Index(s.NodeOrder, id)
}
