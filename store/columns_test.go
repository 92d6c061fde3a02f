package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loomtui/loom/reactive"
)

func TestNewColumnsDefaults(t *testing.T) {
	c := New()
	c.Grow(1)

	assert.Equal(t, ComponentBox, c.ComponentType.Peek(0))
	assert.True(t, c.Visible.Peek(0))
	assert.Equal(t, Auto(), c.Width.Peek(0))
	assert.Equal(t, 0.0, c.FlexGrow.Peek(0))
	assert.Equal(t, 1.0, c.FlexShrink.Peek(0))
	assert.Equal(t, JustifyStart, c.JustifyContent.Peek(0))
	assert.Equal(t, AlignStretch, c.AlignItems.Peek(0))
	assert.Equal(t, AlignAuto, c.AlignSelf.Peek(0))
	assert.Equal(t, Transparent, c.Fg.Peek(0))
	assert.Equal(t, BorderNone, c.BorderStyle.Peek(0))
	assert.Equal(t, "", c.Content.Peek(0))
	assert.Equal(t, TextNoWrap, c.TextWrap.Peek(0))
	assert.Nil(t, c.Cursor.Peek(0))
	assert.False(t, c.Focusable.Peek(0))
	assert.Equal(t, OverflowVisible, c.OverflowMode.Peek(0))
}

func TestColumnsGrowExtendsEveryColumn(t *testing.T) {
	c := New()
	c.Grow(4)

	for i := 0; i < 4; i++ {
		assert.Equal(t, ComponentBox, c.ComponentType.Peek(i))
	}
	assert.Equal(t, 4, c.ComponentType.Len())
	assert.Equal(t, 4, c.Content.Len())
}

func TestColumnsReleaseResetsToDefault(t *testing.T) {
	c := New()
	c.Grow(2)

	cell := reactive.NewCell(ComponentText)
	c.ComponentType.SetSource(1, reactive.CellSource(cell))
	c.Fg.SetSource(1, reactive.ConstSource(RGBA{R: 255, A: 255}))
	c.Width.SetSource(1, reactive.ConstSource(Cells(10)))

	assert.Equal(t, ComponentText, c.ComponentType.Peek(1))
	assert.Equal(t, RGBA{R: 255, A: 255}, c.Fg.Peek(1))

	c.Release(1)

	assert.Equal(t, ComponentBox, c.ComponentType.Peek(1))
	assert.Equal(t, Transparent, c.Fg.Peek(1))
	assert.Equal(t, Auto(), c.Width.Peek(1))
	// other slots are unaffected by releasing index 1.
	assert.Equal(t, ComponentBox, c.ComponentType.Peek(0))
}

func TestHandlerSetLifecycle(t *testing.T) {
	hs := NewHandlerSet[func()]()
	calledA, calledB := false, false

	idA := hs.Register(0, func() { calledA = true })
	idB := hs.Register(0, func() { calledB = true })
	idOther := hs.Register(1, func() {})

	assert.ElementsMatch(t, []int{idA, idB}, hs.ForNode(0))
	assert.ElementsMatch(t, []int{idOther}, hs.ForNode(1))

	h, ok := hs.Get(idA)
	assert.True(t, ok)
	h()
	assert.True(t, calledA)

	hs.Unregister(0, idB)
	_, ok = hs.Get(idB)
	assert.False(t, ok)
	assert.ElementsMatch(t, []int{idA}, hs.ForNode(0))

	hs.DisposeNode(0)
	assert.Empty(t, hs.ForNode(0))
	_, ok = hs.Get(idA)
	assert.False(t, ok)
	_ = calledB

	// node 1's handler is untouched by node 0's disposal.
	_, ok = hs.Get(idOther)
	assert.True(t, ok)
}
