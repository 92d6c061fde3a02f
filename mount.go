// Package loom wires the reactive graph, node registry, parallel-array
// store, layout engine, compositor and terminal driver into the single
// entry point applications use: Mount. Grounded on tui/render.go's
// Render (an effect wrapping a redraw), generalized from a direct
// Screen/Buffer write into the full registry -> layout -> compositor ->
// driver pipeline, and from the teacher's goroutine-per-concern model
// (screen.OnKey, screen.handleResize) into a single owner goroutine that
// drains notification channels and applies them synchronously, per spec
// §5's single-threaded cooperative model.
package loom

import (
	"os"
	"time"

	"github.com/loomtui/loom/compositor"
	"github.com/loomtui/loom/input"
	"github.com/loomtui/loom/layout"
	"github.com/loomtui/loom/observability"
	"github.com/loomtui/loom/reactive"
	"github.com/loomtui/loom/registry"
	"github.com/loomtui/loom/store"
	"github.com/loomtui/loom/term"
)

// Mode selects how frames are written to the terminal; re-exported from
// term so Options never requires importing term directly.
type Mode = term.Mode

const (
	ModeFullscreen = term.ModeFullscreen
	ModeInline     = term.ModeInline
	ModeAppend     = term.ModeAppend
)

// VariantResolver and ResolvedVariant re-export the theme contract defined
// in compositor, the package that actually consumes it (spec §6).
type VariantResolver = compositor.VariantResolver
type ResolvedVariant = compositor.ResolvedVariant

// Size is a terminal dimension in cells; the zero value is not "auto" —
// use AutoSize() for that, so a zero Options.Size isn't silently wrong.
type Size struct {
	Width, Height int
	Auto          bool
}

// AutoSize queries the terminal's current size at mount time and
// subscribes to resize notifications (spec §6's `size: 'auto'`).
func AutoSize() Size { return Size{Auto: true} }

// Options configures Mount (spec §6).
type Options struct {
	Mode Mode

	// Mouse and Cursor default to mode-dependent values (mouse: true in
	// fullscreen else false; cursor: true in fullscreen) when left nil.
	Mouse  *bool
	Cursor *bool

	Out *os.File // defaults to os.Stdout
	In  *os.File // defaults to os.Stdin

	Size Size // zero value: fixed 80x24; use AutoSize() to track the tty

	Theme    any
	Resolver VariantResolver

	Logger *observability.Logger
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func noopResolver(string, any) ResolvedVariant { return ResolvedVariant{} }

// mount is the live state one Mount call owns, threaded through the owner
// goroutine's closures instead of captured loose variables.
type mount struct {
	reg      *registry.Registry
	cols     *store.Columns
	layout   *layout.Engine
	composer *compositor.Composer
	driver   *term.Driver
	handlers *input.Handlers
	state    *input.State
	logger   *observability.Logger

	ctx *mountCtx
	fb  *compositor.Framebuffer
	hit *input.HitGrid

	size *reactive.Cell[term.Size]

	effect *reactive.Effect
	done   chan struct{}
}

// Mount builds the engine, runs render once and again whenever a cell it
// observed changes, and returns a disposer that tears everything down
// per spec §5: synchronously disposes the render effect, restores the
// terminal, and lets the registry/store be reclaimed with it.
func Mount(render func(), opts Options) func() {
	if opts.Logger == nil {
		opts.Logger = observability.NewNop()
	}
	if opts.Resolver == nil {
		opts.Resolver = noopResolver
	}
	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	driverOpts := term.Options{
		Mode:   opts.Mode,
		Mouse:  boolOr(opts.Mouse, opts.Mode == ModeFullscreen),
		Cursor: boolOr(opts.Cursor, opts.Mode == ModeFullscreen),
		Out:    out,
		In:     in,
		Obs:    opts.Logger,
	}
	driver := term.New(driverOpts)
	if err := driver.Enter(); err != nil {
		return func() {}
	}

	reg := registry.New()
	cols := store.New()

	m := &mount{
		reg:      reg,
		cols:     cols,
		layout:   layout.New(reg, cols, opts.Logger),
		composer: compositor.New(reg, cols, opts.Resolver, opts.Theme),
		driver:   driver,
		handlers: input.NewHandlers(),
		state:    input.NewState(),
		logger:   opts.Logger,
		ctx:      &mountCtx{reg: reg, cols: cols, autoSeq: map[int]int{}},
		fb:       compositor.NewFramebuffer(1, 1),
		size:     reactive.NewCell(initialSize(opts.Size)),
		done:     make(chan struct{}),
	}

	m.handlers.OnGlobalKey([]input.Key{input.KeyTab}, input.DefaultFocusKeyHandler(reg, cols, m.state))

	var resizeEvents <-chan term.Size
	var resizeWatcher *term.ResizeWatcher
	if opts.Size.Auto {
		resizeWatcher = term.WatchResize(out)
		resizeEvents = resizeWatcher.Events()
	}

	decoded := make(chan input.Result, 64)
	rawBytes := make(chan byte, 256)
	go readRawBytes(in, rawBytes)
	go decodeInput(rawBytes, decoded, m.done, opts.Logger)

	m.effect = reactive.CreateEffect(func(addCleanup func(reactive.Cleanup)) {
		m.renderOnce(render)
	})

	go m.ownerLoop(resizeEvents, decoded)

	disposed := false
	return func() {
		if disposed {
			return
		}
		disposed = true
		close(m.done)
		m.effect.Dispose()
		if resizeWatcher != nil {
			resizeWatcher.Stop()
		}
		driver.Leave()
	}
}

func initialSize(s Size) term.Size {
	if s.Auto {
		return term.GetSize(os.Stdout)
	}
	if s.Width > 0 && s.Height > 0 {
		return term.Size{Width: s.Width, Height: s.Height}
	}
	return term.Size{Width: 80, Height: 24}
}

// renderOnce runs one authoring pass, reconciles released nodes, lays out,
// composites, and renders a frame — the body of the render effect. Reading
// m.size here (rather than taking w/h as plain fields) means a resize
// writing m.size re-triggers this exact tracked body through the ordinary
// reactive scheduler instead of needing a side-channel re-render call.
func (m *mount) renderOnce(render func()) {
	sz := m.size.Read()

	m.ctx.autoSeq = map[int]int{}
	pushCtx(m.ctx)
	m.reg.BeginPass()
	render()
	released := m.reg.EndPass()
	popCtx()

	for _, idx := range released {
		m.cols.Release(idx)
		m.handlers.RemoveNode(idx)
	}

	input.RegisterDefaultScrollHandlers(m.reg, m.cols, m.handlers)

	m.layout.Compute(sz.Width, sz.Height)

	if m.fb.W != sz.Width || m.fb.H != sz.Height {
		m.fb.Resize(sz.Width, sz.Height)
	}
	focused := m.state.FocusedIndex.Peek()
	m.composer.Compose(m.fb, focused, true)
	m.hit = input.BuildHitGrid(m.reg, m.cols, sz.Width, sz.Height)

	col, row, visible, ok := m.composer.Cursor()
	cur := term.CursorRequest{Col: col, Row: row, Visible: visible, OK: ok}
	if err := m.driver.Render(m.fb, cur); err != nil {
		m.logger.TerminalIO(err.Error())
	}
}

// ownerLoop is the single goroutine that ever touches reactive state after
// mount time: it drains resize and decoded-input notifications and applies
// them via ordinary cell writes, which re-triggers the render effect
// synchronously through the reactive scheduler (spec §5).
func (m *mount) ownerLoop(resizeEvents <-chan term.Size, decoded <-chan input.Result) {
	for {
		select {
		case <-m.done:
			return
		case sz, ok := <-resizeEvents:
			if !ok {
				resizeEvents = nil
				continue
			}
			m.size.Write(sz)
		case res, ok := <-decoded:
			if !ok {
				return
			}
			m.applyInput(res)
		}
	}
}

func (m *mount) applyInput(res input.Result) {
	switch res.Kind {
	case input.ResultKey:
		m.state.ApplyKey(res.Key)
		focused := m.state.FocusedIndex.Peek()
		m.handlers.DispatchKey(focused, res.Key)
	case input.ResultMouse:
		m.state.ApplyMouse(res.Mouse)
		if m.hit != nil {
			target := m.hit.At(res.Mouse.X, res.Mouse.Y)
			m.handlers.DispatchMouse(m.reg, target, res.Mouse)
		}
	}
}

func readRawBytes(in *os.File, out chan<- byte) {
	buf := make([]byte, 256)
	for {
		n, err := in.Read(buf)
		for i := 0; i < n; i++ {
			out <- buf[i]
		}
		if err != nil {
			close(out)
			return
		}
	}
}

// decodeInput owns one input.Decoder, turning the raw byte stream into
// Results and handling the bare-Esc/incomplete-sequence timeouts the
// decoder's Waiting/WaitTimeout/Timeout contract expects a caller to drive.
func decodeInput(in <-chan byte, out chan<- input.Result, done <-chan struct{}, obs interface{ DecodeInvalid(string) }) {
	dec := input.NewDecoder(obs.DecodeInvalid)
	var timer *time.Timer
	for {
		var timeoutCh <-chan time.Time
		if dec.Waiting() {
			timer = time.NewTimer(dec.WaitTimeout())
			timeoutCh = timer.C
		}
		select {
		case <-done:
			if timer != nil {
				timer.Stop()
			}
			return
		case b, ok := <-in:
			if timer != nil {
				timer.Stop()
			}
			if !ok {
				close(out)
				return
			}
			if res := dec.Feed(b); res.Kind != input.ResultNone {
				out <- res
			}
		case <-timeoutCh:
			if res := dec.Timeout(); res.Kind != input.ResultNone {
				out <- res
			}
		}
	}
}
