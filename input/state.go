package input

import (
	"github.com/loomtui/loom/reactive"
	"github.com/loomtui/loom/registry"
)

// State holds the process-wide reactive cells spec §4.6 names: last key,
// modifier state, mouse position/buttons, and the focused node index.
// Grounded on the teacher's implicit global Screen/input singletons,
// generalized into an explicit struct a mount owns (rather than package
// globals) so a test harness can create and swap a fresh State per test,
// per spec §9's determinism note.
type State struct {
	LastKey      *reactive.Cell[Event]
	Modifiers    *reactive.Cell[Mod]
	MouseX       *reactive.Cell[int]
	MouseY       *reactive.Cell[int]
	MouseButtons *reactive.Cell[MouseButton]
	IsMouseDown  *reactive.Cell[bool]
	FocusedIndex *reactive.Cell[int]
}

// NewState creates a State with focusedIndex unset (registry.RootIndex,
// meaning "nothing focused").
func NewState() *State {
	return &State{
		LastKey:      reactive.NewCell(Event{}),
		Modifiers:    reactive.NewCell[Mod](ModNone),
		MouseX:       reactive.NewCell(0),
		MouseY:       reactive.NewCell(0),
		MouseButtons: reactive.NewCell(MouseButtonNone),
		IsMouseDown:  reactive.NewCell(false),
		FocusedIndex: reactive.NewCell(registry.RootIndex),
	}
}

// ApplyKey updates LastKey and Modifiers from a decoded Event. Called before
// dispatch so handlers observing these cells see the event that triggered
// them.
func (s *State) ApplyKey(ev Event) {
	s.LastKey.Write(ev)
	s.Modifiers.Write(ev.Mod)
}

// ApplyMouse updates MouseX/Y/IsMouseDown/MouseButtons from a decoded
// MouseEvent, per spec §4.6 "mouse events set mouseX/Y/isMouseDown cells".
func (s *State) ApplyMouse(me MouseEvent) {
	s.MouseX.Write(me.X)
	s.MouseY.Write(me.Y)
	switch me.Action {
	case MouseDown:
		s.IsMouseDown.Write(true)
		s.MouseButtons.Write(me.Button)
	case MouseUp:
		s.IsMouseDown.Write(false)
		s.MouseButtons.Write(MouseButtonNone)
	}
}
