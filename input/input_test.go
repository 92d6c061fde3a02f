package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomtui/loom/reactive"
	"github.com/loomtui/loom/registry"
	"github.com/loomtui/loom/store"
)

func setInt(s *reactive.SlotArray[int], idx, v int) {
	s.SetSource(idx, reactive.ConstSource(v))
}

func feedString(d *Decoder, s string) []Result {
	var out []Result
	for i := 0; i < len(s); i++ {
		r := d.Feed(s[i])
		if r.Kind != ResultNone {
			out = append(out, r)
		}
	}
	return out
}

func TestDecoderPlainCharAndEnter(t *testing.T) {
	d := NewDecoder(nil)
	results := feedString(d, "a\r")
	require.Len(t, results, 2)
	assert.Equal(t, KeyChar, results[0].Key.Key)
	assert.Equal(t, 'a', results[0].Key.Rune)
	assert.Equal(t, KeyEnter, results[1].Key.Key)
}

func TestDecoderCtrlChar(t *testing.T) {
	d := NewDecoder(nil)
	r := d.Feed(0x03)
	require.Equal(t, ResultKey, r.Kind)
	assert.Equal(t, KeyChar, r.Key.Key)
	assert.Equal(t, 'c', r.Key.Rune)
	assert.Equal(t, ModCtrl, r.Key.Mod)
}

func TestDecoderArrowKeyCSI(t *testing.T) {
	d := NewDecoder(nil)
	results := feedString(d, "\x1b[A")
	require.Len(t, results, 1)
	assert.Equal(t, KeyArrowUp, results[0].Key.Key)
}

func TestDecoderModifierEncodedArrow(t *testing.T) {
	d := NewDecoder(nil)
	// Ctrl+Right: CSI 1;5C (bits = 5-1 = 4 = ctrl)
	results := feedString(d, "\x1b[1;5C")
	require.Len(t, results, 1)
	assert.Equal(t, KeyArrowRight, results[0].Key.Key)
	assert.Equal(t, ModCtrl, results[0].Key.Mod)
}

func TestDecoderTildeKey(t *testing.T) {
	d := NewDecoder(nil)
	results := feedString(d, "\x1b[3~")
	require.Len(t, results, 1)
	assert.Equal(t, KeyDelete, results[0].Key.Key)
}

func TestDecoderSS3FunctionKey(t *testing.T) {
	d := NewDecoder(nil)
	results := feedString(d, "\x1bOP")
	require.Len(t, results, 1)
	assert.Equal(t, KeyF1, results[0].Key.Key)
}

func TestDecoderAltChar(t *testing.T) {
	d := NewDecoder(nil)
	results := feedString(d, "\x1bx")
	require.Len(t, results, 1)
	assert.Equal(t, KeyChar, results[0].Key.Key)
	assert.Equal(t, 'x', results[0].Key.Rune)
	assert.Equal(t, ModAlt, results[0].Key.Mod)
}

func TestDecoderBareEscTimeout(t *testing.T) {
	d := NewDecoder(nil)
	r := d.Feed(0x1b)
	assert.Equal(t, ResultNone, r.Kind)
	timed := d.Timeout()
	require.Equal(t, ResultKey, timed.Kind)
	assert.Equal(t, KeyEsc, timed.Key.Key)
}

func TestDecoderInvalidSequenceReportsOnce(t *testing.T) {
	var got []string
	d := NewDecoder(func(detail string) { got = append(got, detail) })
	feedString(d, "\x1b[9999z")
	assert.Len(t, got, 1)
}

func TestDecodeMouseSGRPressAndRelease(t *testing.T) {
	d := NewDecoder(nil)
	results := feedString(d, "\x1b[<0;10;5M")
	require.Len(t, results, 1)
	require.Equal(t, ResultMouse, results[0].Kind)
	me := results[0].Mouse
	assert.Equal(t, 9, me.X)
	assert.Equal(t, 4, me.Y)
	assert.Equal(t, MouseDown, me.Action)
	assert.Equal(t, MouseButtonLeft, me.Button)

	d2 := NewDecoder(nil)
	results2 := feedString(d2, "\x1b[<0;10;5m")
	require.Len(t, results2, 1)
	assert.Equal(t, MouseUp, results2[0].Mouse.Action)
}

func TestDecodeMouseSGRScroll(t *testing.T) {
	d := NewDecoder(nil)
	results := feedString(d, "\x1b[<64;3;3M")
	require.Len(t, results, 1)
	assert.Equal(t, MouseScrollUp, results[0].Mouse.Action)
}

func TestDecodeMouseX10(t *testing.T) {
	d := NewDecoder(nil)
	results := feedString(d, "\x1b[M"+string([]byte{32, 32 + 5, 32 + 3}))
	require.Len(t, results, 1)
	require.Equal(t, ResultMouse, results[0].Kind)
	me := results[0].Mouse
	assert.Equal(t, 4, me.X)
	assert.Equal(t, 2, me.Y)
	assert.Equal(t, MouseDown, me.Action)
}

func newTwoBoxRegistry(t *testing.T) (*registry.Registry, *store.Columns, int, int) {
	t.Helper()
	reg := registry.New()
	cols := store.New()
	reg.BeginPass()
	root, err := reg.Allocate("root")
	require.NoError(t, err)
	reg.PushParent(root)
	a, err := reg.Allocate("a")
	require.NoError(t, err)
	b, err := reg.Allocate("b")
	require.NoError(t, err)
	reg.PopParent()
	reg.EndPass()
	cols.Grow(reg.Len())

	setInt(cols.X, root, 0)
	setInt(cols.Y, root, 0)
	setInt(cols.W, root, 10)
	setInt(cols.H, root, 10)
	setInt(cols.ContentX, root, 0)
	setInt(cols.ContentY, root, 0)
	setInt(cols.ContentW, root, 10)
	setInt(cols.ContentH, root, 10)

	setInt(cols.X, a, 0)
	setInt(cols.Y, a, 0)
	setInt(cols.W, a, 5)
	setInt(cols.H, a, 5)
	setInt(cols.ContentX, a, 0)
	setInt(cols.ContentY, a, 0)
	setInt(cols.ContentW, a, 5)
	setInt(cols.ContentH, a, 5)

	setInt(cols.X, b, 2)
	setInt(cols.Y, b, 2)
	setInt(cols.W, b, 5)
	setInt(cols.H, b, 5)
	setInt(cols.ContentX, b, 2)
	setInt(cols.ContentY, b, 2)
	setInt(cols.ContentW, b, 5)
	setInt(cols.ContentH, b, 5)

	return reg, cols, a, b
}

func TestHitGridLaterSiblingOverwritesEarlier(t *testing.T) {
	reg, cols, a, b := newTwoBoxRegistry(t)
	grid := BuildHitGrid(reg, cols, 10, 10)

	assert.Equal(t, a, grid.At(1, 1), "only a covers this cell")
	assert.Equal(t, b, grid.At(3, 3), "b is painted after a and overlaps here")
}

func TestHitGridOutsideAnyNodeIsRoot(t *testing.T) {
	reg, cols, _, _ := newTwoBoxRegistry(t)
	// The root box covers 10x10, so the grid extends past it to leave a cell
	// no node paints.
	grid := BuildHitGrid(reg, cols, 12, 12)
	assert.Equal(t, registry.RootIndex, grid.At(11, 11))
}

func TestFocusNextWrapsByTabIndexThenAllocationOrder(t *testing.T) {
	reg := registry.New()
	cols := store.New()
	reg.BeginPass()
	root, _ := reg.Allocate("root")
	reg.PushParent(root)
	a, _ := reg.Allocate("a")
	b, _ := reg.Allocate("b")
	c, _ := reg.Allocate("c")
	reg.PopParent()
	reg.EndPass()
	cols.Grow(reg.Len())

	for _, idx := range []int{a, b, c} {
		cols.Focusable.SetSource(idx, reactive.ConstSource(true))
	}
	setInt(cols.TabIndex, a, 1)
	setInt(cols.TabIndex, b, 2)
	setInt(cols.TabIndex, c, 3)

	cur := registry.RootIndex
	cur = FocusNext(reg, cols, cur)
	assert.Equal(t, a, cur)
	cur = FocusNext(reg, cols, cur)
	assert.Equal(t, b, cur)
	cur = FocusNext(reg, cols, cur)
	assert.Equal(t, c, cur)
	cur = FocusNext(reg, cols, cur)
	assert.Equal(t, a, cur, "tab wraps back to the first focusable")

	cur = FocusPrev(reg, cols, a)
	assert.Equal(t, c, cur, "shift-tab wraps back to the last focusable")
}

func TestScrollContainerIsImplicitlyFocusable(t *testing.T) {
	reg := registry.New()
	cols := store.New()
	reg.BeginPass()
	root, _ := reg.Allocate("root")
	reg.EndPass()
	cols.Grow(reg.Len())
	cols.OverflowMode.SetSource(root, reactive.ConstSource(store.OverflowScroll))

	set := FocusableSet(reg, cols)
	assert.Equal(t, []int{root}, set)
}

func TestScrollKeyHandlerClampsAtMax(t *testing.T) {
	reg := registry.New()
	cols := store.New()
	reg.BeginPass()
	root, _ := reg.Allocate("root")
	reg.PushParent(root)
	child, _ := reg.Allocate("child")
	reg.PopParent()
	reg.EndPass()
	cols.Grow(reg.Len())

	cols.OverflowMode.SetSource(root, reactive.ConstSource(store.OverflowScroll))
	setInt(cols.ContentX, root, 0)
	setInt(cols.ContentY, root, 0)
	setInt(cols.ContentW, root, 10)
	setInt(cols.ContentH, root, 5)
	setInt(cols.ScrollOffsetY, root, 100)

	setInt(cols.X, child, 0)
	setInt(cols.Y, child, 0)
	setInt(cols.W, child, 10)
	setInt(cols.H, child, 20)

	handler := ScrollKeyHandlerFor(reg, cols, root)
	handled := handler(Event{Key: KeyPgDown})
	assert.True(t, handled)
	assert.Equal(t, 15, cols.ScrollOffsetY.Peek(root), "clamped to contentH(20)-viewportH(5)")
}

func TestHandlersDispatchKeyFocusedFirstThenGlobal(t *testing.T) {
	h := NewHandlers()
	var nodeSaw, globalSaw bool
	h.OnKey(5, func(ev Event) bool {
		nodeSaw = true
		return false
	})
	h.OnGlobalKey([]Key{KeyTab}, func(ev Event) bool {
		globalSaw = true
		return true
	})

	handled := h.DispatchKey(5, Event{Key: KeyTab})
	assert.True(t, handled)
	assert.True(t, nodeSaw)
	assert.True(t, globalSaw)
}

func TestHandlersRemoveNodeDropsItsHandlers(t *testing.T) {
	h := NewHandlers()
	called := false
	h.OnKey(7, func(ev Event) bool {
		called = true
		return true
	})
	h.RemoveNode(7)
	handled := h.DispatchKey(7, Event{Key: KeyEnter})
	assert.False(t, handled)
	assert.False(t, called)
}

func TestHandlersDispatchMouseCaptureOrderStopsOnConsumed(t *testing.T) {
	reg, _, a, _ := newTwoBoxRegistry(t)
	h := NewHandlers()
	var order []string
	h.OnMouse(reg.Parent(a), func(me MouseEvent) bool {
		order = append(order, "parent")
		return true
	})
	h.OnMouse(a, func(me MouseEvent) bool {
		order = append(order, "child")
		return true
	})

	handled := h.DispatchMouse(reg, a, MouseEvent{})
	assert.True(t, handled)
	assert.Equal(t, []string{"parent"}, order, "ancestor runs first and its consume stops the child from seeing the event")
}

func TestStateApplyMouseTracksButtonsAndDownFlag(t *testing.T) {
	s := NewState()
	s.ApplyMouse(MouseEvent{X: 3, Y: 4, Button: MouseButtonLeft, Action: MouseDown})
	assert.Equal(t, 3, s.MouseX.Peek())
	assert.Equal(t, 4, s.MouseY.Peek())
	assert.True(t, s.IsMouseDown.Peek())
	assert.Equal(t, MouseButtonLeft, s.MouseButtons.Peek())

	s.ApplyMouse(MouseEvent{X: 3, Y: 4, Action: MouseUp})
	assert.False(t, s.IsMouseDown.Peek())
	assert.Equal(t, MouseButtonNone, s.MouseButtons.Peek())
}
