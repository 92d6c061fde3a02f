package input

import "time"

// escTimeout is how long Decoder waits for follow-up bytes after a bare ESC
// before emitting it as a standalone Esc key, mirroring tui/input.go's
// 10ms guard against swallowing a real Escape keypress.
const escTimeout = 10 * time.Millisecond

// csiTimeout bounds how long Decoder waits mid-sequence for the next byte of
// a CSI/SS3/mouse escape sequence, mirroring tui/input.go's csiTimeout.
const csiTimeout = 50 * time.Millisecond

// decodeState is where Decoder is within a multi-byte escape sequence.
type decodeState int

const (
	stateGround decodeState = iota
	stateEsc
	stateCSI
	stateSS3
	stateMouseX10
)

// ResultKind tags which field of Result is populated.
type ResultKind int

const (
	ResultNone ResultKind = iota
	ResultKey
	ResultMouse
)

// Result is one fully-decoded unit fed back to the caller: either a keyboard
// Event or a MouseEvent, never both (spec §4.6 decodes the two report
// families separately even though they share the CSI prefix).
type Result struct {
	Kind  ResultKind
	Key   Event
	Mouse MouseEvent
}

// Decoder turns a raw byte stream into Results. Unlike tui/input.go's
// inputLoop (which owns a goroutine reading os.Stdin directly), Decoder is
// fed bytes by its caller's own read loop — spec §5's single-threaded
// cooperative model has no engine-owned goroutines, so the caller decides
// how bytes arrive (blocking read, a select over multiple sources, a test
// feeding canned bytes) and Decoder only holds the parse state machine.
type Decoder struct {
	state     decodeState
	params    []byte
	x10       [2]byte
	x10Filled int
	onInvalid func(detail string)
}

// NewDecoder creates a Decoder. onInvalid, if non-nil, is called with a
// description of any byte sequence that could not be interpreted (spec
// §7's DecodeInvalid).
func NewDecoder(onInvalid func(detail string)) *Decoder {
	return &Decoder{onInvalid: onInvalid}
}

// Feed processes one input byte, returning a decoded Result. Most bytes
// mid-sequence return a Result with Kind ResultNone.
func (d *Decoder) Feed(b byte) Result {
	switch d.state {
	case stateEsc:
		return d.feedEsc(b)
	case stateCSI:
		return d.feedCSI(b)
	case stateSS3:
		return d.feedSS3(b)
	case stateMouseX10:
		return d.feedMouseX10(b)
	default:
		if b == 0x1b {
			d.state = stateEsc
			return Result{}
		}
		return Result{Kind: ResultKey, Key: decodeControlOrChar(b)}
	}
}

// Timeout resolves a pending bare-ESC wait or abandons an incomplete
// sequence, called by the caller's read loop when a read times out rather
// than producing a byte.
func (d *Decoder) Timeout() Result {
	switch d.state {
	case stateEsc:
		d.reset()
		return Result{Kind: ResultKey, Key: Event{Key: KeyEsc}}
	case stateCSI, stateSS3, stateMouseX10:
		d.reset()
		d.invalid("incomplete escape sequence")
	}
	return Result{}
}

// WaitTimeout reports how long the caller should wait for the next byte
// before calling Timeout, given Decoder's current state.
func (d *Decoder) WaitTimeout() time.Duration {
	if d.state == stateEsc {
		return escTimeout
	}
	return csiTimeout
}

// Waiting reports whether Decoder is mid-sequence and a caller read should
// use a timeout rather than blocking indefinitely.
func (d *Decoder) Waiting() bool { return d.state != stateGround }

func (d *Decoder) reset() {
	d.state = stateGround
	d.params = nil
	d.x10Filled = 0
}

func (d *Decoder) feedEsc(b byte) Result {
	switch b {
	case '[':
		d.state = stateCSI
		d.params = nil
		return Result{}
	case 'O':
		d.state = stateSS3
		return Result{}
	default:
		d.reset()
		return Result{Kind: ResultKey, Key: Event{Key: KeyChar, Rune: rune(b), Mod: ModAlt}}
	}
}

func (d *Decoder) feedCSI(b byte) Result {
	if len(d.params) == 0 && b == 'M' {
		// X10 mouse report: ESC [ M <button> <x> <y>, three raw bytes with
		// no digit/semicolon framing, so it cannot be told apart from an
		// empty-params CSI final byte until this point.
		d.state = stateMouseX10
		d.x10Filled = 0
		return Result{}
	}
	if b >= 0x40 && b <= 0x7e {
		params := string(d.params)
		d.reset()
		return d.dispatchCSI(params, b)
	}
	d.params = append(d.params, b)
	return Result{}
}

func (d *Decoder) dispatchCSI(params string, final byte) Result {
	if len(params) > 0 && params[0] == '<' {
		if me, ok := decodeMouseSGR(params[1:], final); ok {
			return Result{Kind: ResultMouse, Mouse: me}
		}
		d.invalid("unrecognized SGR mouse sequence")
		return Result{}
	}

	mod := csiModifier(params)
	if final == '~' {
		if key, ok := csiTildeToKey(csiLeadingParam(params)); ok {
			return Result{Kind: ResultKey, Key: Event{Key: key, Mod: mod}}
		}
		d.invalid("unrecognized CSI ~ sequence")
		return Result{}
	}
	if key, ok := csiFinalToKey(final); ok {
		return Result{Kind: ResultKey, Key: Event{Key: key, Mod: mod}}
	}
	d.invalid("unrecognized CSI sequence")
	return Result{}
}

func (d *Decoder) feedSS3(b byte) Result {
	d.reset()
	if key, ok := ss3ToKey(b); ok {
		return Result{Kind: ResultKey, Key: Event{Key: key}}
	}
	d.invalid("unrecognized SS3 sequence")
	return Result{}
}

func (d *Decoder) feedMouseX10(b byte) Result {
	if d.x10Filled < 2 {
		d.x10[d.x10Filled] = b
		d.x10Filled++
		return Result{}
	}
	button, x, y := d.x10[0], d.x10[1], b
	d.reset()
	me, ok := decodeMouseX10(button, x, y)
	if !ok {
		d.invalid("unrecognized X10 mouse report")
		return Result{}
	}
	return Result{Kind: ResultMouse, Mouse: me}
}

func (d *Decoder) invalid(detail string) {
	if d.onInvalid != nil {
		d.onInvalid(detail)
	}
}

// decodeControlOrChar classifies a non-ESC byte, mirroring tui/input.go's
// processChar.
func decodeControlOrChar(b byte) Event {
	switch {
	case b == 0x0d:
		return Event{Key: KeyEnter}
	case b == 0x09:
		return Event{Key: KeyTab}
	case b == 0x08:
		return Event{Key: KeyBackspace}
	case b == 0x7f:
		return Event{Key: KeyBackspace}
	case b == 0x03:
		return Event{Key: KeyChar, Rune: 'c', Mod: ModCtrl}
	case b <= 0x1f:
		return Event{Key: KeyChar, Rune: rune(b + 0x60), Mod: ModCtrl}
	default:
		return Event{Key: KeyChar, Rune: rune(b)}
	}
}
