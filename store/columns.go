package store

import (
	"github.com/loomtui/loom/reactive"
	"github.com/loomtui/loom/registry"
)

// Columns is the parallel-array attribute store: one reactive.SlotArray per
// node attribute, all kept the same length as the allocated-index space
// (spec §3). Every field is exported so layout/compositor/input can bind
// and read attributes directly; Grow/Release are the only structural
// operations a caller needs beyond that.
type Columns struct {
	// structure
	ComponentType  *reactive.SlotArray[ComponentType]
	ParentIndex    *reactive.SlotArray[int]
	ChildOrder     *reactive.SlotArray[int]
	Visible        *reactive.SlotArray[bool]
	ID             *reactive.SlotArray[registry.NodeID]
	Absolute       *reactive.SlotArray[bool]
	AnchorTopSet   *reactive.SlotArray[Dimension]
	AnchorRightSet *reactive.SlotArray[Dimension]
	AnchorBottom   *reactive.SlotArray[Dimension]
	AnchorLeftSet  *reactive.SlotArray[Dimension]

	// geometry inputs
	Width     *reactive.SlotArray[Dimension]
	Height    *reactive.SlotArray[Dimension]
	MinWidth  *reactive.SlotArray[Dimension]
	MaxWidth  *reactive.SlotArray[Dimension]
	MinHeight *reactive.SlotArray[Dimension]
	MaxHeight *reactive.SlotArray[Dimension]
	FlexGrow   *reactive.SlotArray[float64]
	FlexShrink *reactive.SlotArray[float64]
	Basis     *reactive.SlotArray[Dimension]

	// flex container
	FlexDirection  *reactive.SlotArray[FlexDirection]
	FlexWrap       *reactive.SlotArray[FlexWrap]
	JustifyContent *reactive.SlotArray[Justify]
	AlignItems     *reactive.SlotArray[Align]
	AlignSelf      *reactive.SlotArray[Align]
	GapRow         *reactive.SlotArray[int]
	GapColumn      *reactive.SlotArray[int]

	// spacing
	PaddingTop    *reactive.SlotArray[int]
	PaddingRight  *reactive.SlotArray[int]
	PaddingBottom *reactive.SlotArray[int]
	PaddingLeft   *reactive.SlotArray[int]
	MarginTop     *reactive.SlotArray[int]
	MarginRight   *reactive.SlotArray[int]
	MarginBottom  *reactive.SlotArray[int]
	MarginLeft    *reactive.SlotArray[int]

	// style
	Fg      *reactive.SlotArray[RGBA]
	Bg      *reactive.SlotArray[RGBA]
	Opacity *reactive.SlotArray[float64]
	TextAttrs   *reactive.SlotArray[Attrs]
	Variant *reactive.SlotArray[string]

	// borders
	BorderStyle  *reactive.SlotArray[BorderStyle]
	BorderColor  *reactive.SlotArray[RGBA]
	BorderTop    *reactive.SlotArray[BorderStyle]
	BorderRight  *reactive.SlotArray[BorderStyle]
	BorderBottom *reactive.SlotArray[BorderStyle]
	BorderLeft   *reactive.SlotArray[BorderStyle]
	BorderColorTop    *reactive.SlotArray[RGBA]
	BorderColorRight  *reactive.SlotArray[RGBA]
	BorderColorBottom *reactive.SlotArray[RGBA]
	BorderColorLeft   *reactive.SlotArray[RGBA]

	// text
	Content       *reactive.SlotArray[Content]
	TextAlign     *reactive.SlotArray[TextAlign]
	TextWrap      *reactive.SlotArray[TextWrapMode]
	Cursor        *reactive.SlotArray[*CursorDescriptor]
	Masked        *reactive.SlotArray[bool]
	MaskChar      *reactive.SlotArray[rune]
	HighlightLang *reactive.SlotArray[string]

	// interaction
	Focusable      *reactive.SlotArray[bool]
	TabIndex       *reactive.SlotArray[int]
	OverflowMode   *reactive.SlotArray[Overflow]
	ScrollOffsetX  *reactive.SlotArray[int]
	ScrollOffsetY  *reactive.SlotArray[int]

	// derived, written by layout (spec §4.3) rather than bound by the author;
	// still modeled as slot arrays so the compositor can subscribe per node.
	X        *reactive.SlotArray[int]
	Y        *reactive.SlotArray[int]
	W        *reactive.SlotArray[int]
	H        *reactive.SlotArray[int]
	ContentX *reactive.SlotArray[int]
	ContentY *reactive.SlotArray[int]
	ContentW *reactive.SlotArray[int]
	ContentH *reactive.SlotArray[int]
}

// New creates a Columns store with every attribute at its spec-default.
func New() *Columns {
	return &Columns{
		ComponentType:  reactive.NewSlotArray(ComponentBox),
		ParentIndex:    reactive.NewSlotArray(registry.RootIndex),
		ChildOrder:     reactive.NewSlotArray(0),
		Visible:        reactive.NewSlotArray(true),
		ID:             reactive.NewSlotArray(registry.NodeID("")),
		Absolute:       reactive.NewSlotArray(false),
		AnchorTopSet:   reactive.NewSlotArray(Auto()),
		AnchorRightSet: reactive.NewSlotArray(Auto()),
		AnchorBottom:   reactive.NewSlotArray(Auto()),
		AnchorLeftSet:  reactive.NewSlotArray(Auto()),

		Width:     reactive.NewSlotArray(Auto()),
		Height:    reactive.NewSlotArray(Auto()),
		MinWidth:  reactive.NewSlotArray(Auto()),
		MaxWidth:  reactive.NewSlotArray(Auto()),
		MinHeight: reactive.NewSlotArray(Auto()),
		MaxHeight: reactive.NewSlotArray(Auto()),
		FlexGrow:   reactive.NewSlotArray(0.0),
		FlexShrink: reactive.NewSlotArray(1.0),
		Basis:     reactive.NewSlotArray(Auto()),

		FlexDirection:  reactive.NewSlotArray(Row),
		FlexWrap:       reactive.NewSlotArray(NoWrap),
		JustifyContent: reactive.NewSlotArray(JustifyStart),
		AlignItems:     reactive.NewSlotArray(AlignStretch),
		AlignSelf:      reactive.NewSlotArray(AlignAuto),
		GapRow:         reactive.NewSlotArray(0),
		GapColumn:      reactive.NewSlotArray(0),

		PaddingTop:    reactive.NewSlotArray(0),
		PaddingRight:  reactive.NewSlotArray(0),
		PaddingBottom: reactive.NewSlotArray(0),
		PaddingLeft:   reactive.NewSlotArray(0),
		MarginTop:     reactive.NewSlotArray(0),
		MarginRight:   reactive.NewSlotArray(0),
		MarginBottom:  reactive.NewSlotArray(0),
		MarginLeft:    reactive.NewSlotArray(0),

		Fg:        reactive.NewSlotArray(Transparent),
		Bg:        reactive.NewSlotArray(Transparent),
		Opacity:   reactive.NewSlotArray(1.0),
		TextAttrs: reactive.NewSlotArray(Attrs(0)),
		Variant:   reactive.NewSlotArray(""),

		BorderStyle:       reactive.NewSlotArray(BorderNone),
		BorderColor:       reactive.NewSlotArray(Transparent),
		BorderTop:         reactive.NewSlotArray(BorderNone),
		BorderRight:       reactive.NewSlotArray(BorderNone),
		BorderBottom:      reactive.NewSlotArray(BorderNone),
		BorderLeft:        reactive.NewSlotArray(BorderNone),
		BorderColorTop:    reactive.NewSlotArray(Transparent),
		BorderColorRight:  reactive.NewSlotArray(Transparent),
		BorderColorBottom: reactive.NewSlotArray(Transparent),
		BorderColorLeft:   reactive.NewSlotArray(Transparent),

		Content:       reactive.NewSlotArray[Content](""),
		TextAlign:     reactive.NewSlotArray(TextAlignLeft),
		TextWrap:      reactive.NewSlotArray(TextNoWrap),
		Cursor:        reactive.NewSlotArray[*CursorDescriptor](nil),
		Masked:        reactive.NewSlotArray(false),
		MaskChar:      reactive.NewSlotArray('●'),
		HighlightLang: reactive.NewSlotArray(""),

		Focusable:     reactive.NewSlotArray(false),
		TabIndex:      reactive.NewSlotArray(0),
		OverflowMode:  reactive.NewSlotArray(OverflowVisible),
		ScrollOffsetX: reactive.NewSlotArray(0),
		ScrollOffsetY: reactive.NewSlotArray(0),

		X:        reactive.NewSlotArray(0),
		Y:        reactive.NewSlotArray(0),
		W:        reactive.NewSlotArray(0),
		H:        reactive.NewSlotArray(0),
		ContentX: reactive.NewSlotArray(0),
		ContentY: reactive.NewSlotArray(0),
		ContentW: reactive.NewSlotArray(0),
		ContentH: reactive.NewSlotArray(0),
	}
}

// column is the type-erased shape every reactive.SlotArray[T] satisfies
// regardless of T (its methods don't mention T in their signature), letting
// Grow/Release operate on every column uniformly.
type column interface {
	Reset(i int)
	Grow(n int)
}

func (c *Columns) all() []column {
	return []column{
		c.ComponentType, c.ParentIndex, c.ChildOrder, c.Visible, c.ID, c.Absolute,
		c.AnchorTopSet, c.AnchorRightSet, c.AnchorBottom, c.AnchorLeftSet,
		c.Width, c.Height, c.MinWidth, c.MaxWidth, c.MinHeight, c.MaxHeight,
		c.FlexGrow, c.FlexShrink, c.Basis,
		c.FlexDirection, c.FlexWrap, c.JustifyContent, c.AlignItems, c.AlignSelf,
		c.GapRow, c.GapColumn,
		c.PaddingTop, c.PaddingRight, c.PaddingBottom, c.PaddingLeft,
		c.MarginTop, c.MarginRight, c.MarginBottom, c.MarginLeft,
		c.Fg, c.Bg, c.Opacity, c.TextAttrs, c.Variant,
		c.BorderStyle, c.BorderColor, c.BorderTop, c.BorderRight, c.BorderBottom, c.BorderLeft,
		c.BorderColorTop, c.BorderColorRight, c.BorderColorBottom, c.BorderColorLeft,
		c.Content, c.TextAlign, c.TextWrap, c.Cursor, c.Masked, c.MaskChar, c.HighlightLang,
		c.Focusable, c.TabIndex, c.OverflowMode, c.ScrollOffsetX, c.ScrollOffsetY,
		c.X, c.Y, c.W, c.H, c.ContentX, c.ContentY, c.ContentW, c.ContentH,
	}
}

// Grow ensures every column has at least n slots.
func (c *Columns) Grow(n int) {
	for _, col := range c.all() {
		col.Grow(n)
	}
}

// Release resets every attribute column for idx back to its default (spec
// §3's "a released index clears every column back to its default").
func (c *Columns) Release(idx int) {
	for _, col := range c.all() {
		col.Reset(idx)
	}
}
