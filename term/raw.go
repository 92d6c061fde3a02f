package term

import (
	"os"

	xterm "golang.org/x/term"
)

// rawState is the terminal mode saved before entering raw mode, restored on
// Leave. Grounded on tui/term.go's State wrapper.
type rawState struct {
	state *xterm.State
}

func enableRawMode(f *os.File) (*rawState, error) {
	old, err := xterm.MakeRaw(int(f.Fd()))
	if err != nil {
		return nil, err
	}
	return &rawState{state: old}, nil
}

func disableRawMode(f *os.File, s *rawState) error {
	if s == nil || s.state == nil {
		return nil
	}
	return xterm.Restore(int(f.Fd()), s.state)
}
