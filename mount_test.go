package loom

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomtui/loom/compositor"
	"github.com/loomtui/loom/input"
	"github.com/loomtui/loom/layout"
	"github.com/loomtui/loom/observability"
	"github.com/loomtui/loom/reactive"
	"github.com/loomtui/loom/registry"
	"github.com/loomtui/loom/store"
	"github.com/loomtui/loom/term"
)

// newTestMount builds a mount the way Mount does, but against a Driver that
// never calls Enter (raw mode needs a real tty, unavailable under go test) —
// the same bypass term_test.go itself uses for the driver in isolation.
func newTestMount(w, h int) (*mount, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := observability.NewNop()
	reg := registry.New()
	cols := store.New()

	driver := term.New(term.Options{
		Mode: term.ModeFullscreen,
		Out:  &buf,
		Obs:  logger,
	})

	m := &mount{
		reg:      reg,
		cols:     cols,
		layout:   layout.New(reg, cols, logger),
		composer: compositor.New(reg, cols, nil, nil),
		driver:   driver,
		handlers: input.NewHandlers(),
		state:    input.NewState(),
		logger:   logger,
		ctx:      &mountCtx{reg: reg, cols: cols, autoSeq: map[int]int{}},
		fb:       compositor.NewFramebuffer(1, 1),
		size:     reactive.NewCell(term.Size{Width: w, Height: h}),
		done:     make(chan struct{}),
	}
	m.handlers.OnGlobalKey([]input.Key{input.KeyTab}, input.DefaultFocusKeyHandler(reg, cols, m.state))
	return m, &buf
}

func TestRenderOnceDrawsBoxAndText(t *testing.T) {
	m, buf := newTestMount(10, 3)

	m.renderOnce(func() {
		Box(Attrs{ID: "root", Width: Lit(store.Cells(10)), Height: Lit(store.Cells(3))}, func() {
			Text(Attrs{ID: "label", Content: Lit[store.Content]("hi")})
		})
	})

	assert.Contains(t, buf.String(), "hi")
	assert.Equal(t, 2, m.reg.Len(), "root box + text child")
}

func TestRenderOnceReRendersWhenSizeCellChanges(t *testing.T) {
	m, buf := newTestMount(10, 3)

	var lastW int
	render := func() {
		Box(Attrs{ID: "root"}, func() {
			lastW = m.size.Peek().Width
		})
	}

	m.renderOnce(render)
	assert.Equal(t, 10, lastW)

	buf.Reset()
	m.size.Write(term.Size{Width: 20, Height: 5})
	// size is only read inside renderOnce's tracked body; a direct write
	// here does not re-invoke it (no effect is registered in this test,
	// unlike Mount's CreateEffect-wrapped call) — re-run explicitly and
	// confirm the render body now observes the new value.
	m.renderOnce(render)
	assert.Equal(t, 20, lastW)
}

func TestApplyInputDispatchesFocusedKeyHandler(t *testing.T) {
	m, _ := newTestMount(10, 3)

	var boxIdx int
	m.renderOnce(func() {
		boxIdx = Box(Attrs{ID: "btn", Focusable: Lit(true)}, nil)
	})

	var handled bool
	m.handlers.OnKey(boxIdx, func(ev input.Event) bool {
		handled = true
		return true
	})
	m.state.FocusedIndex.Write(boxIdx)

	m.applyInput(input.Result{Kind: input.ResultKey, Key: input.Event{Key: input.KeyChar, Rune: 'x'}})
	assert.True(t, handled)
}

func TestApplyInputTabCyclesFocusAcrossFocusableNodes(t *testing.T) {
	m, _ := newTestMount(10, 3)

	var first, second int
	m.renderOnce(func() {
		first = Box(Attrs{ID: "a", Focusable: Lit(true)}, nil)
		second = Box(Attrs{ID: "b", Focusable: Lit(true)}, nil)
	})

	m.state.FocusedIndex.Write(first)
	m.applyInput(input.Result{Kind: input.ResultKey, Key: input.Event{Key: input.KeyTab}})
	assert.Equal(t, second, m.state.FocusedIndex.Peek())
}

func TestApplyInputMouseDispatchesToHitNode(t *testing.T) {
	m, _ := newTestMount(10, 3)

	var boxIdx int
	m.renderOnce(func() {
		boxIdx = Box(Attrs{
			ID:     "clickable",
			Width:  Lit(store.Cells(10)),
			Height: Lit(store.Cells(3)),
		}, nil)
	})
	require.NotNil(t, m.hit)

	var clickedNode int = -1
	m.handlers.OnMouse(boxIdx, func(me input.MouseEvent) bool {
		clickedNode = boxIdx
		return true
	})

	m.applyInput(input.Result{
		Kind:  input.ResultMouse,
		Mouse: input.MouseEvent{X: 0, Y: 0, Action: input.MouseDown, Button: input.MouseButtonLeft},
	})
	assert.Equal(t, boxIdx, clickedNode)
}
