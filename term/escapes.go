package term

// The bit-exact escape sequences spec §4.5/§6 names. Grounded on
// tui/screen.go's inline literals (cursor hide/show, `\x1b[%dH` cursor
// move), generalized to the full set Mount's three render modes need.
const (
	escAltScreenEnter = "\x1b[?1049h"
	escAltScreenLeave = "\x1b[?1049l"
	escCursorHide     = "\x1b[?25l"
	escCursorShow     = "\x1b[?25h"
	escSGRReset       = "\x1b[0m"
	escMouseEnable    = "\x1b[?1000;1002;1003;1006h"
	escMouseDisable   = "\x1b[?1000;1002;1003;1006l"
	escClearScreen    = "\x1b[2J"
)
