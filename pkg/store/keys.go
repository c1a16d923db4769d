package store

import (
	"strings"

	"github.com/iamvince24/serenity-canvas/pkg/interaction"
	"github.com/iamvince24/serenity-canvas/pkg/layer"
	"github.com/iamvince24/serenity-canvas/pkg/navigation"
)

// reorderKeys maps bracket keys to reorders of the selection.
var reorderKeys = map[string]layer.Op{
	"]": layer.OpMoveUp,
	"[": layer.OpMoveDown,
	"}": layer.OpToFront,
	"{": layer.OpToBack,
}

// HandleKey dispatches a keyboard shortcut and reports whether it was
// consumed. Keys use the names "up", "arrowleft", "delete", "backspace",
// "esc", "ctrl+z", "ctrl+shift+z", "ctrl+y" and the bracket keys.
// While editing only escape is handled; the text field owns the rest.
// The mode check and the action run under one lock.
func (s *Store) HandleKey(key string) bool {
	key = strings.ToLower(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	mode := s.machine.State()

	switch key {
	case "esc", "escape":
		return s.cancelLocked()
	}
	if mode == interaction.StateEditing {
		return false
	}

	switch key {
	case "delete", "backspace":
		return s.deleteSelectionLocked()
	case "ctrl+z", "cmd+z":
		return s.undoLocked()
	case "ctrl+shift+z", "cmd+shift+z", "ctrl+y":
		return s.redoLocked()
	}
	if op, ok := reorderKeys[key]; ok {
		return mode == interaction.StateIdle && s.reorderSelectionLocked(op)
	}
	if dir, ok := navigation.ParseDirection(key); ok && mode == interaction.StateIdle {
		return s.selectNeighborLocked(dir)
	}
	return false
}
