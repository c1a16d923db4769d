// Package interaction arbitrates which pointer or keyboard gesture is
// active on the canvas.
//
// The machine is a pure lookup table: [Transition] maps a (state, event)
// pair to the next state and has no side effects. Pairs that are not in
// the table are self-loops, so stray events are silently ignored rather
// than reported as errors.
//
// [StateIdle] is the only state a gesture can start from. Every other
// state returns to idle on its matching end event or on [EventEscape].
package interaction

import "fmt"

// State is the active gesture.
type State int

const (
	StateIdle State = iota
	StateDragging
	StatePanning
	StateBoxSelecting
	StateResizing
	StateConnecting
	StateEditing
)

var stateNames = [...]string{
	StateIdle:         "idle",
	StateDragging:     "dragging",
	StatePanning:      "panning",
	StateBoxSelecting: "boxSelecting",
	StateResizing:     "resizing",
	StateConnecting:   "connecting",
	StateEditing:      "editing",
}

// States lists every state in declaration order.
var States = []State{
	StateIdle, StateDragging, StatePanning, StateBoxSelecting,
	StateResizing, StateConnecting, StateEditing,
}

func (s State) String() string {
	if int(s) >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Event is an input that may move the machine.
type Event string

const (
	EventNodePointerDown  Event = "NODE_POINTER_DOWN"
	EventNodeDoubleClick  Event = "NODE_DOUBLE_CLICK"
	EventStagePointerDown Event = "STAGE_POINTER_DOWN"
	EventPanStart         Event = "PAN_START"
	EventBoxSelectStart   Event = "BOX_SELECT_START"
	EventResizeStart      Event = "RESIZE_START"
	EventConnectStart     Event = "CONNECT_START"
	EventEditStart        Event = "EDIT_START"

	EventDragEnd      Event = "DRAG_END"
	EventPanEnd       Event = "PAN_END"
	EventBoxSelectEnd Event = "BOX_SELECT_END"
	EventResizeEnd    Event = "RESIZE_END"
	EventConnectEnd   Event = "CONNECT_END"
	EventEditEnd      Event = "EDIT_END"

	EventEscape Event = "ESCAPE"
)

// Events lists every event the machine understands.
var Events = []Event{
	EventNodePointerDown, EventNodeDoubleClick, EventStagePointerDown,
	EventPanStart, EventBoxSelectStart, EventResizeStart, EventConnectStart,
	EventEditStart, EventDragEnd, EventPanEnd, EventBoxSelectEnd,
	EventResizeEnd, EventConnectEnd, EventEditEnd, EventEscape,
}

// table holds the explicit transitions. Anything absent is a self-loop.
var table = map[State]map[Event]State{
	StateIdle: {
		EventNodePointerDown:  StateDragging,
		EventNodeDoubleClick:  StateEditing,
		EventStagePointerDown: StatePanning,
		EventPanStart:         StatePanning,
		EventBoxSelectStart:   StateBoxSelecting,
		EventResizeStart:      StateResizing,
		EventConnectStart:     StateConnecting,
		EventEditStart:        StateEditing,
	},
	StateDragging:     {EventDragEnd: StateIdle, EventEscape: StateIdle},
	StatePanning:      {EventPanEnd: StateIdle, EventEscape: StateIdle},
	StateBoxSelecting: {EventBoxSelectEnd: StateIdle, EventEscape: StateIdle},
	StateResizing:     {EventResizeEnd: StateIdle, EventEscape: StateIdle},
	StateConnecting:   {EventConnectEnd: StateIdle, EventEscape: StateIdle},
	StateEditing:      {EventEditEnd: StateIdle, EventEscape: StateIdle},
}

// Transition returns the state reached from s on e.
func Transition(s State, e Event) State {
	if next, ok := table[s][e]; ok {
		return next
	}
	return s
}

// Defined reports whether (s, e) has an explicit entry in the table.
func Defined(s State, e Event) bool {
	_, ok := table[s][e]
	return ok
}

// AllowsDelete reports whether Delete/Backspace should remove the selection.
// Deletion is suppressed while text is being edited.
func AllowsDelete(s State) bool { return s != StateEditing }

// AllowsStagePan reports whether the stage may be panned in state s.
func AllowsStagePan(s State) bool {
	return s != StateDragging && s != StateResizing
}

// IsCancellable reports whether ESCAPE aborts a gesture in state s.
func IsCancellable(s State) bool {
	return Defined(s, EventEscape)
}

// ParseState converts a state name as printed by String.
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return StateIdle, fmt.Errorf("unknown state %q", name)
}

// ParseEvent converts an event name.
func ParseEvent(name string) (Event, error) {
	for _, e := range Events {
		if string(e) == name {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown event %q", name)
}

// Machine tracks the current state. The zero value starts idle.
type Machine struct {
	state State
}

// NewMachine returns a machine in the idle state.
func NewMachine() *Machine { return &Machine{} }

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Send applies e and reports the new state and whether it changed.
func (m *Machine) Send(e Event) (State, bool) {
	prev := m.state
	m.state = Transition(prev, e)
	return m.state, m.state != prev
}

// Reset forces the machine back to idle.
func (m *Machine) Reset() { m.state = StateIdle }
