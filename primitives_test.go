package loom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomtui/loom/registry"
	"github.com/loomtui/loom/store"
)

func withPass(t *testing.T, render func()) (*registry.Registry, *store.Columns) {
	t.Helper()
	reg := registry.New()
	cols := store.New()
	ctx := &mountCtx{reg: reg, cols: cols, autoSeq: map[int]int{}}

	pushCtx(ctx)
	reg.BeginPass()
	render()
	reg.EndPass()
	popCtx()
	cols.Grow(reg.Len())
	return reg, cols
}

func TestBoxAutoGeneratesCallSiteOrdinalID(t *testing.T) {
	reg, cols := withPass(t, func() {
		Box(Attrs{}, nil)
		Box(Attrs{}, nil)
	})

	children := reg.Children(registry.RootIndex)
	require.Len(t, children, 2)
	assert.Equal(t, registry.NodeID("#1"), cols.ID.Peek(children[0]))
	assert.Equal(t, registry.NodeID("#2"), cols.ID.Peek(children[1]))
}

func TestBoxChildOrderTracksAuthoringPosition(t *testing.T) {
	reg, cols := withPass(t, func() {
		Box(Attrs{ID: "a"}, nil)
		Box(Attrs{ID: "b"}, nil)
		Box(Attrs{ID: "c"}, nil)
	})

	children := reg.Children(registry.RootIndex)
	require.Len(t, children, 3)
	assert.Equal(t, 1, cols.ChildOrder.Peek(children[0]))
	assert.Equal(t, 2, cols.ChildOrder.Peek(children[1]))
	assert.Equal(t, 3, cols.ChildOrder.Peek(children[2]))
}

func TestBoxChildrenClosureNestsUnderParent(t *testing.T) {
	var childIdx int
	reg, _ := withPass(t, func() {
		Box(Attrs{ID: "parent"}, func() {
			childIdx = Text(Attrs{ID: "child", Content: Lit[store.Content]("hi")})
		})
	})

	parent := reg.Children(registry.RootIndex)[0]
	assert.Equal(t, []int{childIdx}, reg.Children(parent))
	assert.Equal(t, parent, reg.Parent(childIdx))
}

func TestAttrsApplyOnlySetsBoundFields(t *testing.T) {
	reg, cols := withPass(t, func() {
		Box(Attrs{ID: "a", Width: Lit(store.Cells(5))}, nil)
	})
	idx := reg.Children(registry.RootIndex)[0]

	assert.Equal(t, store.Cells(5), cols.Width.Peek(idx))
	assert.Equal(t, 1.0, cols.FlexShrink.Peek(idx), "unset Shrink keeps the store default, not float64's zero value")
}

func TestEachKeysRootNodeByItemKey(t *testing.T) {
	items := []string{"x", "y", "z"}
	reg, cols := withPass(t, func() {
		Each(
			func() []string { return items },
			func(s string) registry.NodeID { return registry.NodeID(s) },
			func(s string) {
				Box(Attrs{Content: Lit[store.Content](s)}, nil)
			},
		)
	})

	children := reg.Children(registry.RootIndex)
	require.Len(t, children, 3)
	for i, idx := range children {
		assert.Equal(t, registry.NodeID(items[i]), cols.ID.Peek(idx))
	}
}

func TestEachReconciliationReusesSurvivingIndices(t *testing.T) {
	reg := registry.New()
	cols := store.New()
	ctx := &mountCtx{reg: reg, cols: cols, autoSeq: map[int]int{}}

	renderPass := func(items []string) {
		ctx.autoSeq = map[int]int{}
		pushCtx(ctx)
		reg.BeginPass()
		Each(
			func() []string { return items },
			func(s string) registry.NodeID { return registry.NodeID(s) },
			func(s string) { Box(Attrs{}, nil) },
		)
		released := reg.EndPass()
		popCtx()
		cols.Grow(reg.Len())
		for _, idx := range released {
			cols.Release(idx)
		}
	}

	renderPass([]string{"a", "b", "c"})
	bIdx := -1
	for _, idx := range reg.Children(registry.RootIndex) {
		if cols.ID.Peek(idx) == "b" {
			bIdx = idx
		}
	}
	require.NotEqual(t, -1, bIdx)

	renderPass([]string{"a", "b"})
	survivedB := -1
	for _, idx := range reg.Children(registry.RootIndex) {
		if cols.ID.Peek(idx) == "b" {
			survivedB = idx
		}
	}
	assert.Equal(t, bIdx, survivedB, "surviving item keeps its index across passes")
	assert.Len(t, reg.Children(registry.RootIndex), 2)
}

func TestEachReorderingSurvivingKeysMovesChildrenSliceOrder(t *testing.T) {
	reg := registry.New()
	cols := store.New()
	ctx := &mountCtx{reg: reg, cols: cols, autoSeq: map[int]int{}}

	renderPass := func(items []string) {
		ctx.autoSeq = map[int]int{}
		pushCtx(ctx)
		reg.BeginPass()
		Each(
			func() []string { return items },
			func(s string) registry.NodeID { return registry.NodeID(s) },
			func(s string) { Box(Attrs{}, nil) },
		)
		reg.EndPass()
		popCtx()
		cols.Grow(reg.Len())
	}

	renderPass([]string{"a", "b", "c"})
	byKey := map[string]int{}
	for _, idx := range reg.Children(registry.RootIndex) {
		byKey[string(cols.ID.Peek(idx))] = idx
	}

	renderPass([]string{"c", "b", "a"})

	children := reg.Children(registry.RootIndex)
	require.Len(t, children, 3)
	assert.Equal(t, []int{byKey["c"], byKey["b"], byKey["a"]}, children,
		"reordering the same keys in a new pass must reorder the children slice, not freeze at first-insertion order")
}

func TestShowRendersThenOrElseBasedOnCond(t *testing.T) {
	cond := true
	reg, cols := withPass(t, func() {
		Show(func() bool { return cond },
			func() { Box(Attrs{ID: "then"}, nil) },
			func() { Box(Attrs{ID: "else"}, nil) },
		)
	})
	idx := reg.Children(registry.RootIndex)[0]
	assert.Equal(t, registry.NodeID("then"), cols.ID.Peek(idx))

	cond = false
	reg2, cols2 := withPass(t, func() {
		Show(func() bool { return cond },
			func() { Box(Attrs{ID: "then"}, nil) },
			func() { Box(Attrs{ID: "else"}, nil) },
		)
	})
	idx2 := reg2.Children(registry.RootIndex)[0]
	assert.Equal(t, registry.NodeID("else"), cols2.ID.Peek(idx2))
}

func TestWhenSkipsWithNoElseBranch(t *testing.T) {
	reg, _ := withPass(t, func() {
		When(func() bool { return false }, func() { Box(Attrs{ID: "never"}, nil) })
	})
	assert.Empty(t, reg.Children(registry.RootIndex))
}

func TestPrimitiveCallOutsideMountPanics(t *testing.T) {
	assert.Panics(t, func() { Box(Attrs{}, nil) })
}
