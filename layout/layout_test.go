package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomtui/loom/reactive"
	"github.com/loomtui/loom/registry"
	"github.com/loomtui/loom/store"
)

func setWidth(cols *store.Columns, idx int, d store.Dimension) {
	cols.Width.SetSource(idx, reactive.ConstSource(d))
}
func setHeight(cols *store.Columns, idx int, d store.Dimension) {
	cols.Height.SetSource(idx, reactive.ConstSource(d))
}
func setGrow(cols *store.Columns, idx int, v float64) {
	cols.FlexGrow.SetSource(idx, reactive.ConstSource(v))
}

func TestFlexRowJustifyContentSpaceBetween(t *testing.T) {
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

	setWidth(cols, root, store.Cells(20))
	setHeight(cols, root, store.Cells(1))
	cols.JustifyContent.SetSource(root, reactive.ConstSource(store.JustifySpaceBetween))
	setWidth(cols, a, store.Cells(3))
	setWidth(cols, b, store.Cells(3))

	eng := New(reg, cols, nil)
	eng.Compute(80, 24)

	assert.Equal(t, 0, cols.X.Peek(a))
	assert.Equal(t, 17, cols.X.Peek(b), "space-between pushes the second item to the far edge")
}

func TestFlexGrowDistributesFreeSpace(t *testing.T) {
	reg := registry.New()
	cols := store.New()

	reg.BeginPass()
	root, _ := reg.Allocate("root")
	reg.PushParent(root)
	a, _ := reg.Allocate("a")
	b, _ := reg.Allocate("b")
	reg.PopParent()
	reg.EndPass()
	cols.Grow(reg.Len())

	setWidth(cols, root, store.Cells(10))
	setHeight(cols, root, store.Cells(1))
	setWidth(cols, a, store.Cells(2))
	setGrow(cols, a, 1)
	setWidth(cols, b, store.Cells(2))
	setGrow(cols, b, 1)

	eng := New(reg, cols, nil)
	eng.Compute(80, 24)

	assert.Equal(t, 5, cols.W.Peek(a))
	assert.Equal(t, 5, cols.W.Peek(b))
}

func TestScrollOffsetClampedToContentExtent(t *testing.T) {
	reg := registry.New()
	cols := store.New()

	reg.BeginPass()
	root, _ := reg.Allocate("root")
	reg.PushParent(root)
	child, _ := reg.Allocate("child")
	reg.PopParent()
	reg.EndPass()
	cols.Grow(reg.Len())

	setWidth(cols, root, store.Cells(10))
	setHeight(cols, root, store.Cells(5))
	cols.OverflowMode.SetSource(root, reactive.ConstSource(store.OverflowScroll))
	cols.FlexDirection.SetSource(root, reactive.ConstSource(store.Column))
	setHeight(cols, child, store.Cells(50))
	setWidth(cols, child, store.Cells(10))

	cols.ScrollOffsetY.SetSource(root, reactive.ConstSource(1000))

	eng := New(reg, cols, nil)
	eng.Compute(80, 24)

	assert.Equal(t, 45, cols.ScrollOffsetY.Peek(root), "50 content - 5 viewport = 45 max")
}

func TestInvisibleChildGeometryIsZeroedNotStale(t *testing.T) {
	reg := registry.New()
	cols := store.New()

	reg.BeginPass()
	root, _ := reg.Allocate("root")
	reg.PushParent(root)
	child, _ := reg.Allocate("child")
	reg.PopParent()
	reg.EndPass()
	cols.Grow(reg.Len())

	setWidth(cols, root, store.Cells(10))
	setHeight(cols, root, store.Cells(5))
	setWidth(cols, child, store.Cells(4))
	setHeight(cols, child, store.Cells(2))

	eng := New(reg, cols, nil)
	eng.Compute(80, 24)
	require.Equal(t, 4, cols.W.Peek(child), "sanity: child was placed with a real size while visible")

	cols.Visible.SetSource(child, reactive.ConstSource(false))
	eng.Compute(80, 24)

	assert.Equal(t, 0, cols.X.Peek(child))
	assert.Equal(t, 0, cols.Y.Peek(child))
	assert.Equal(t, 0, cols.W.Peek(child))
	assert.Equal(t, 0, cols.H.Peek(child))
	assert.Equal(t, 0, cols.ContentW.Peek(child))
	assert.Equal(t, 0, cols.ContentH.Peek(child))
}

func TestInvisibleRootGeometryIsZeroedAndExcludedFromStacking(t *testing.T) {
	reg := registry.New()
	cols := store.New()

	reg.BeginPass()
	a, _ := reg.Allocate("a")
	b, _ := reg.Allocate("b")
	reg.EndPass()
	cols.Grow(reg.Len())

	setWidth(cols, a, store.Cells(10))
	setHeight(cols, a, store.Cells(3))
	setWidth(cols, b, store.Cells(10))
	setHeight(cols, b, store.Cells(3))
	cols.Visible.SetSource(a, reactive.ConstSource(false))

	eng := New(reg, cols, nil)
	eng.Compute(80, 24)

	assert.Equal(t, 0, cols.H.Peek(a))
	assert.Equal(t, 0, cols.Y.Peek(b), "an invisible root must not reserve stacking space for its sibling")
}

func TestIntrinsicTextWidthIsGraphemeAware(t *testing.T) {
	w, h := intrinsicTextSize("hi")
	assert.Equal(t, 2, w)
	assert.Equal(t, 1, h)

	w2, _ := intrinsicTextSize("a\nbb")
	assert.Equal(t, 2, w2)
}

func TestWrapLinesBreaksAtWidth(t *testing.T) {
	lines := wrapLines("hello world", 5)
	assert.Equal(t, []string{"hello", "world"}, lines)
}
