// Package input decodes raw terminal input bytes into key/mouse events,
// maintains the global reactive cells spec §4.6 names (last key, modifiers,
// mouse position/buttons, focused index), builds the hit grid used for
// mouse dispatch, and supplies the default Tab/Shift-Tab focus cycling and
// arrow/PgUp/PgDn/Home/End scroll bindings. Grounded on tui/input.go and
// tui/key.go, generalized from a channel-of-KeyEvent producer into a decoder
// that also reports modifiers and feeds mouse/focus/scroll state.
package input

// Key names one decoded key (spec §4.6's keyName), generalizing tui/key.go's
// Key enum with the mouse/modifier vocabulary the spec adds.
type Key int

const (
	KeyNull Key = iota
	KeyEnter
	KeyBackspace
	KeyTab
	KeyEsc
	KeySpace

	KeyArrowUp
	KeyArrowDown
	KeyArrowRight
	KeyArrowLeft

	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDown
	KeyDelete
	KeyInsert

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	// KeyChar carries a regular rune in Event.Rune.
	KeyChar
)

// Mod is a bitset of modifier keys (spec §4.6's modifiers{ctrl,alt,shift,meta}).
type Mod int

const (
	ModNone  Mod = 0
	ModCtrl  Mod = 1 << 0
	ModAlt   Mod = 1 << 1
	ModShift Mod = 1 << 2
	ModMeta  Mod = 1 << 3
)

// KeyState is the event's down/up/repeat phase. The teacher's byte stream
// only ever reports presses; repeat/up are distinguished by a higher layer
// that isn't available from a plain tty (no key-up bytes exist), so every
// decoded event carries KeyDown — this field exists so a future input
// source (e.g. an in-process test harness) can synthesize the others.
type KeyState int

const (
	KeyDown KeyState = iota
	KeyUp
	KeyRepeat
)

// Event is one decoded keyboard event (spec §4.6).
type Event struct {
	Key   Key
	Rune  rune
	Mod   Mod
	State KeyState
}

// csiFinalToKey maps a CSI final byte (no tilde) to its Key, mirroring
// tui/input.go's dispatchCSI switch.
func csiFinalToKey(final byte) (Key, bool) {
	switch final {
	case 'A':
		return KeyArrowUp, true
	case 'B':
		return KeyArrowDown, true
	case 'C':
		return KeyArrowRight, true
	case 'D':
		return KeyArrowLeft, true
	case 'H':
		return KeyHome, true
	case 'F':
		return KeyEnd, true
	}
	return KeyNull, false
}

// csiTildeToKey maps the leading numeric parameter of a tilde-terminated CSI
// sequence (e.g. "3~" for Delete) to its Key, mirroring tui/input.go's
// tilde-key table.
func csiTildeToKey(param string) (Key, bool) {
	switch param {
	case "1":
		return KeyHome, true
	case "2":
		return KeyInsert, true
	case "3":
		return KeyDelete, true
	case "4":
		return KeyEnd, true
	case "5":
		return KeyPgUp, true
	case "6":
		return KeyPgDown, true
	case "15":
		return KeyF5, true
	case "17":
		return KeyF6, true
	case "18":
		return KeyF7, true
	case "19":
		return KeyF8, true
	case "20":
		return KeyF9, true
	case "21":
		return KeyF10, true
	case "23":
		return KeyF11, true
	case "24":
		return KeyF12, true
	}
	return KeyNull, false
}

// ss3ToKey maps an SS3 final byte to its Key, mirroring tui/input.go's
// parseSS3.
func ss3ToKey(final byte) (Key, bool) {
	switch final {
	case 'A':
		return KeyArrowUp, true
	case 'B':
		return KeyArrowDown, true
	case 'C':
		return KeyArrowRight, true
	case 'D':
		return KeyArrowLeft, true
	case 'P':
		return KeyF1, true
	case 'Q':
		return KeyF2, true
	case 'R':
		return KeyF3, true
	case 'S':
		return KeyF4, true
	case 'H':
		return KeyHome, true
	case 'F':
		return KeyEnd, true
	}
	return KeyNull, false
}

// csiModifier decodes the xterm modifier-encoding convention of a CSI
// parameter suffix ";<n>" where n-1 is a bitmask of shift(1)/alt(2)/ctrl(4)/
// meta(8), e.g. "1;5C" for Ctrl+Right. Spec §4.6 requires "modifier-encoded
// variants"; the teacher's decoder predates this and only strips the suffix
// (tui/input.go's dispatchCSI "Strip modifier after semicolon"), so this is
// new code in the teacher's table-driven idiom rather than an adaptation.
func csiModifier(param string) Mod {
	semi := -1
	for i := 0; i < len(param); i++ {
		if param[i] == ';' {
			semi = i
			break
		}
	}
	if semi < 0 || semi+1 >= len(param) {
		return ModNone
	}
	n := 0
	for i := semi + 1; i < len(param); i++ {
		if param[i] < '0' || param[i] > '9' {
			return ModNone
		}
		n = n*10 + int(param[i]-'0')
	}
	if n < 1 {
		return ModNone
	}
	bits := n - 1
	var m Mod
	if bits&1 != 0 {
		m |= ModShift
	}
	if bits&2 != 0 {
		m |= ModAlt
	}
	if bits&4 != 0 {
		m |= ModCtrl
	}
	if bits&8 != 0 {
		m |= ModMeta
	}
	return m
}

// csiLeadingParam returns the numeric prefix of param, before any ';'.
func csiLeadingParam(param string) string {
	for i := 0; i < len(param); i++ {
		if param[i] == ';' {
			return param[:i]
		}
	}
	return param
}
