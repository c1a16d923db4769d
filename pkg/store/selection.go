package store

import (
	"slices"

	"github.com/iamvince24/serenity-canvas/pkg/navigation"
)

// Selected returns the selected node ids in z-order, bottom first.
func (s *Store) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedLocked()
}

// SelectedEdges returns the selected edge ids, sorted.
func (s *Store) SelectedEdges() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.selectedEdges)
}

// Select replaces the selection with the existing nodes among ids.
func (s *Store) Select(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectLocked(ids)
}

// SelectEdge replaces the selection with edge id.
func (s *Store) SelectEdge(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.Edges[id]; !ok {
		return false
	}
	clear(s.selected)
	clear(s.selectedEdges)
	s.selectedEdges[id] = true
	return true
}

// ToggleSelect adds id to the selection or removes it.
func (s *Store) ToggleSelect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected[id] {
		delete(s.selected, id)
		return
	}
	if _, ok := s.state.Nodes[id]; ok {
		s.selected[id] = true
	}
}

// ClearSelection deselects everything.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.selected)
	clear(s.selectedEdges)
}

// SelectNeighbor moves a single-node selection to its nearest neighbor in
// dir. With nothing selected the top-most node is selected. It reports
// whether the selection changed.
func (s *Store) SelectNeighbor(dir navigation.Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectNeighborLocked(dir)
}

func (s *Store) selectNeighborLocked(dir navigation.Direction) bool {
	sel := s.selectedLocked()
	if len(sel) == 0 {
		if len(s.state.NodeOrder) == 0 {
			return false
		}
		s.selectLocked([]string{s.state.NodeOrder[len(s.state.NodeOrder)-1]})
		return true
	}
	next, ok := navigation.FindDirectionalNeighbor(s.state.Nodes, sel[len(sel)-1], dir)
	if !ok {
		return false
	}
	s.selectLocked([]string{next})
	return true
}

func (s *Store) selectedLocked() []string {
	out := make([]string, 0, len(s.selected))
	for _, id := range s.state.NodeOrder {
		if s.selected[id] {
			out = append(out, id)
		}
	}
	return out
}

func (s *Store) selectLocked(ids []string) {
	clear(s.selected)
	clear(s.selectedEdges)
	for _, id := range ids {
		if _, ok := s.state.Nodes[id]; ok {
			s.selected[id] = true
		}
	}
}

func (s *Store) allSelectedLocked(ids []string) bool {
	return !slices.ContainsFunc(ids, func(id string) bool { return !s.selected[id] })
}
