package history

import (
	"github.com/charmbracelet/log"

	"github.com/iamvince24/serenity-canvas/pkg/observability"
)

// DefaultMaxDepth is the number of undo entries kept when no depth is
// configured.
const DefaultMaxDepth = 50

// Options configures a Manager.
type Options struct {
	// MaxDepth bounds the undo stack. Values <= 0 use DefaultMaxDepth.
	MaxDepth int
	// Logger receives debug output. Nil uses log.Default().
	Logger *log.Logger
}

// Manager records executed commands on an undo stack and undone commands
// on a redo stack. It is not safe for concurrent use; the owning store
// serializes access.
type Manager struct {
	mc       Context
	undo     []Command
	redo     []Command
	maxDepth int
	logger   *log.Logger
}

// NewManager returns a Manager applying commands to mc.
func NewManager(mc Context, opts Options) *Manager {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Manager{mc: mc, maxDepth: opts.MaxDepth, logger: opts.Logger}
}

// Execute applies cmd, records it for undo and discards the redo branch.
func (m *Manager) Execute(cmd Command) {
	cmd.Execute(m.mc)
	m.push(cmd)
	m.redo = nil
	m.logger.Debug("history execute", "type", cmd.Type(), "depth", len(m.undo))
	observability.History().OnExecute(cmd.Type(), len(m.undo))
}

// Undo reverts the most recent command. It reports false when there is
// nothing to undo.
func (m *Manager) Undo() bool {
	if len(m.undo) == 0 {
		return false
	}
	cmd := m.undo[len(m.undo)-1]
	m.undo[len(m.undo)-1] = nil
	m.undo = m.undo[:len(m.undo)-1]

	cmd.Undo(m.mc)
	m.redo = append(m.redo, cmd)
	m.logger.Debug("history undo", "type", cmd.Type(), "depth", len(m.undo))
	observability.History().OnUndo(cmd.Type())
	return true
}

// Redo re-applies the most recently undone command. It reports false when
// there is nothing to redo.
func (m *Manager) Redo() bool {
	if len(m.redo) == 0 {
		return false
	}
	cmd := m.redo[len(m.redo)-1]
	m.redo[len(m.redo)-1] = nil
	m.redo = m.redo[:len(m.redo)-1]

	cmd.Execute(m.mc)
	m.push(cmd)
	m.logger.Debug("history redo", "type", cmd.Type(), "depth", len(m.undo))
	observability.History().OnRedo(cmd.Type())
	return true
}

func (m *Manager) push(cmd Command) {
	m.undo = append(m.undo, cmd)
	for len(m.undo) > m.maxDepth {
		evicted := m.undo[0]
		m.undo[0] = nil
		m.undo = m.undo[1:]
		m.logger.Debug("history evict", "type", evicted.Type())
		observability.History().OnEvict(evicted.Type())
	}
}

// CanUndo reports whether Undo would do anything.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether Redo would do anything.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// Len returns the undo and redo stack depths.
func (m *Manager) Len() (undo, redo int) { return len(m.undo), len(m.redo) }

// MaxDepth returns the configured undo bound.
func (m *Manager) MaxDepth() int { return m.maxDepth }

// Walk calls fn for every command on the undo and redo stacks, oldest
// undo entry first. Composite commands are expanded into their parts.
func (m *Manager) Walk(fn func(Command)) {
	var visit func(Command)
	visit = func(cmd Command) {
		if c, ok := cmd.(*CompositeCommand); ok {
			for _, sub := range c.commands {
				visit(sub)
			}
			return
		}
		fn(cmd)
	}
	for _, cmd := range m.undo {
		visit(cmd)
	}
	for _, cmd := range m.redo {
		visit(cmd)
	}
}

// Clear drops both stacks.
func (m *Manager) Clear() {
	m.undo = nil
	m.redo = nil
}
