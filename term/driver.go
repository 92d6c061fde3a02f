// Package term owns the actual terminal device: entering/leaving raw mode
// and the configured render mode, detecting size changes, and diffing the
// compositor's framebuffer into a minimal escape-sequence stream (spec
// §4.5). Grounded on tui/screen.go's Screen, generalized from a single
// owned Buffer pair to operate on compositor.Framebuffer and from
// goroutine+mutex-guarded rendering to the single-threaded cooperative
// model spec §5 requires (the driver has no lock; its methods are only
// ever called from the thread that owns Mount).
package term

import (
	"bufio"
	"io"
	"os"

	"github.com/loomtui/loom/compositor"
)

// Mode selects how frames are written to the terminal (spec §4.5).
type Mode int

const (
	ModeFullscreen Mode = iota
	ModeInline
	ModeAppend
)

// Observability is the subset of the engine-wide error taxonomy (spec §7)
// the driver can raise: I/O failures writing to the terminal, and malformed
// bytes read from it.
type Observability interface {
	TerminalIO(detail string)
	DecodeInvalid(detail string)
}

type noopObservability struct{}

func (noopObservability) TerminalIO(string)   {}
func (noopObservability) DecodeInvalid(string) {}

// CursorRequest is the compositor's resolved cursor intent for this frame
// (spec §4.4 step 2f), translated into terminal row/col by the caller.
type CursorRequest struct {
	Col, Row int
	Visible  bool
	OK       bool
}

// Options configures Mount's terminal use.
type Options struct {
	Mode  Mode
	Mouse bool
	// Cursor enables positioning the real terminal cursor at an
	// input-bearing node's request; when false the cursor stays hidden.
	Cursor bool
	Out    io.Writer // default os.Stdout
	In     *os.File  // default os.Stdin
	Obs    Observability
}

// Driver is the live terminal session for one mount. It is not safe for
// concurrent use, matching spec §5's single-owner-thread model.
type Driver struct {
	opts Options
	out  *bufio.Writer
	obs  Observability

	rawState      *rawState
	front         *compositor.Framebuffer
	inlineRows    int
	mouseEnabled  bool
}

// New creates a Driver. It does not touch the terminal until Enter is
// called.
func New(opts Options) *Driver {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Obs == nil {
		opts.Obs = noopObservability{}
	}
	return &Driver{
		opts: opts,
		out:  bufio.NewWriterSize(opts.Out, 64*1024),
		obs:  opts.Obs,
	}
}

// Enter puts the terminal into raw mode and applies the configured mode's
// setup: alt-screen for fullscreen, hidden cursor, optional mouse tracking
// (spec §4.5).
func (d *Driver) Enter() error {
	state, err := enableRawMode(d.opts.In)
	if err != nil {
		d.obs.TerminalIO(err.Error())
		return err
	}
	d.rawState = state

	if d.opts.Mode == ModeFullscreen {
		d.write(escAltScreenEnter)
	}
	d.write(escCursorHide)
	if d.opts.Mouse {
		d.write(escMouseEnable)
		d.mouseEnabled = true
	}
	return d.flush()
}

// Leave restores the terminal: SGR reset, mouse tracking disabled if it was
// enabled, cursor shown, alt-screen exited if entered, raw mode restored
// (spec §5's disposal sequence).
func (d *Driver) Leave() error {
	d.write(escSGRReset)
	if d.mouseEnabled {
		d.write(escMouseDisable)
	}
	d.write(escCursorShow)
	if d.opts.Mode == ModeFullscreen {
		d.write(escAltScreenLeave)
	}
	err := d.flush()

	if d.rawState != nil {
		if restoreErr := disableRawMode(d.opts.In, d.rawState); restoreErr != nil && err == nil {
			err = restoreErr
		}
	}
	if err != nil {
		d.obs.TerminalIO(err.Error())
	}
	return err
}

// Render writes fb to the terminal per the configured mode, then positions
// (or hides) the real cursor per cur.
func (d *Driver) Render(fb *compositor.Framebuffer, cur CursorRequest) error {
	switch d.opts.Mode {
	case ModeAppend:
		d.renderAppend(fb)
	case ModeInline:
		d.renderInline(fb)
	default:
		d.renderDiff(fb)
	}

	if d.opts.Cursor && cur.OK && cur.Visible {
		d.writeCursorPos(cur.Row+1, cur.Col+1)
		d.write(escCursorShow)
	} else {
		d.write(escCursorHide)
	}
	return d.flush()
}

func (d *Driver) write(s string) { d.out.WriteString(s) }

func (d *Driver) flush() error {
	if err := d.out.Flush(); err != nil {
		d.obs.TerminalIO(err.Error())
		return err
	}
	return nil
}
