package store

import (
	"maps"
	"slices"

	"github.com/iamvince24/serenity-canvas/pkg/canvas"
	"github.com/iamvince24/serenity-canvas/pkg/geometry"
)

// EdgeLayout is everything a renderer needs to draw one edge.
type EdgeLayout struct {
	Edge  canvas.Edge
	Route geometry.Route
	// Label is nil for unlabelled edges, in which case Gap is zero.
	Label *geometry.LabelLayout
	Gap   geometry.Gap
}

// EdgeLayouts routes every edge and measures its label, sorted by edge id.
func (s *Store) EdgeLayouts() []EdgeLayout {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]EdgeLayout, 0, len(s.state.Edges))
	for _, id := range slices.Sorted(maps.Keys(s.state.Edges)) {
		out = append(out, s.layoutLocked(s.state.Edges[id]))
	}
	return out
}

// EdgeLayout routes one edge.
func (s *Store) EdgeLayout(id string) (EdgeLayout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.edgeLocked(id)
	if err != nil {
		return EdgeLayout{}, err
	}
	return s.layoutLocked(e), nil
}

func (s *Store) layoutLocked(e canvas.Edge) EdgeLayout {
	from, to := s.state.Nodes[e.FromNode], s.state.Nodes[e.ToNode]
	route := geometry.EdgeRoute(rectOf(from), rectOf(to), geometry.Side(e.FromAnchor), geometry.Side(e.ToAnchor))
	l := EdgeLayout{Edge: e.Clone(), Route: route}
	if label := geometry.LayoutLabel(e.Label, s.opts.Labels); label != nil {
		l.Label = label
		l.Gap = geometry.LabelGap(route.Start, route.End, label.Width, label.Height, s.opts.Labels.PaddingX)
	}
	return l
}
