package loom

import (
	"github.com/loomtui/loom/reactive"
	"github.com/loomtui/loom/registry"
	"github.com/loomtui/loom/store"
)

// Bind wraps an explicit reactive.Source so it can be attached to an Attrs
// field. A nil field means "leave this attribute at the store's default";
// Bind's returned pointer is never nil, so setting a field always opts in.
func Bind[T any](src reactive.Source[T]) *reactive.Source[T] { return &src }

// Lit binds an Attrs field to a fixed value — the common case, a plain
// literal rather than something driven by a Cell.
func Lit[T any](v T) *reactive.Source[T] { return Bind(reactive.ConstSource(v)) }

// Dyn binds an Attrs field to a Cell, so the node re-resolves the attribute
// whenever the cell's value changes.
func Dyn[T any](c *reactive.Cell[T]) *reactive.Source[T] { return Bind(reactive.CellSource(c)) }

// Attrs is the attribute bag shared by Box and Text (spec §3's attribute
// columns). Every field is optional: a nil pointer leaves the underlying
// column at its default for a freshly-allocated node, or at its
// previously-bound source for a reused one. Box and Text both bind every
// field that is set; a field the node kind does not use (Content on a Box,
// FlexDirection on a Text) is stored but has no effect.
type Attrs struct {
	ID registry.NodeID // empty: auto-generated from call-site order

	Visible  *reactive.Source[bool]
	Absolute *reactive.Source[bool]
	AnchorTop    *reactive.Source[store.Dimension]
	AnchorRight  *reactive.Source[store.Dimension]
	AnchorBottom *reactive.Source[store.Dimension]
	AnchorLeft   *reactive.Source[store.Dimension]

	Width     *reactive.Source[store.Dimension]
	Height    *reactive.Source[store.Dimension]
	MinWidth  *reactive.Source[store.Dimension]
	MaxWidth  *reactive.Source[store.Dimension]
	MinHeight *reactive.Source[store.Dimension]
	MaxHeight *reactive.Source[store.Dimension]
	Grow   *reactive.Source[float64]
	Shrink *reactive.Source[float64]
	Basis  *reactive.Source[store.Dimension]

	FlexDirection  *reactive.Source[store.FlexDirection]
	FlexWrap       *reactive.Source[store.FlexWrap]
	JustifyContent *reactive.Source[store.Justify]
	AlignItems     *reactive.Source[store.Align]
	AlignSelf      *reactive.Source[store.Align]
	GapRow    *reactive.Source[int]
	GapColumn *reactive.Source[int]

	PaddingTop    *reactive.Source[int]
	PaddingRight  *reactive.Source[int]
	PaddingBottom *reactive.Source[int]
	PaddingLeft   *reactive.Source[int]
	MarginTop     *reactive.Source[int]
	MarginRight   *reactive.Source[int]
	MarginBottom  *reactive.Source[int]
	MarginLeft    *reactive.Source[int]

	Fg      *reactive.Source[store.RGBA]
	Bg      *reactive.Source[store.RGBA]
	Opacity *reactive.Source[float64]
	TextAttrs *reactive.Source[store.Attrs]
	Variant   *reactive.Source[string]

	BorderStyle  *reactive.Source[store.BorderStyle]
	BorderColor  *reactive.Source[store.RGBA]
	BorderTop    *reactive.Source[store.BorderStyle]
	BorderRight  *reactive.Source[store.BorderStyle]
	BorderBottom *reactive.Source[store.BorderStyle]
	BorderLeft   *reactive.Source[store.BorderStyle]
	BorderColorTop    *reactive.Source[store.RGBA]
	BorderColorRight  *reactive.Source[store.RGBA]
	BorderColorBottom *reactive.Source[store.RGBA]
	BorderColorLeft   *reactive.Source[store.RGBA]

	Content       *reactive.Source[store.Content]
	TextAlign     *reactive.Source[store.TextAlign]
	TextWrap      *reactive.Source[store.TextWrapMode]
	Cursor        *reactive.Source[*store.CursorDescriptor]
	Masked        *reactive.Source[bool]
	MaskChar      *reactive.Source[rune]
	HighlightLang *reactive.Source[string]

	Focusable     *reactive.Source[bool]
	TabIndex      *reactive.Source[int]
	OverflowMode  *reactive.Source[store.Overflow]
	ScrollOffsetX *reactive.Source[int]
	ScrollOffsetY *reactive.Source[int]
}

// apply binds every set field of a onto idx's columns, leaving unset fields
// at whatever the column already holds (the store default on first
// allocation, or last pass's binding on reuse).
func apply(cols *store.Columns, idx int, a Attrs) {
	bindIf(cols.Visible, idx, a.Visible)
	bindIf(cols.Absolute, idx, a.Absolute)
	bindIf(cols.AnchorTopSet, idx, a.AnchorTop)
	bindIf(cols.AnchorRightSet, idx, a.AnchorRight)
	bindIf(cols.AnchorBottom, idx, a.AnchorBottom)
	bindIf(cols.AnchorLeftSet, idx, a.AnchorLeft)

	bindIf(cols.Width, idx, a.Width)
	bindIf(cols.Height, idx, a.Height)
	bindIf(cols.MinWidth, idx, a.MinWidth)
	bindIf(cols.MaxWidth, idx, a.MaxWidth)
	bindIf(cols.MinHeight, idx, a.MinHeight)
	bindIf(cols.MaxHeight, idx, a.MaxHeight)
	bindIf(cols.FlexGrow, idx, a.Grow)
	bindIf(cols.FlexShrink, idx, a.Shrink)
	bindIf(cols.Basis, idx, a.Basis)

	bindIf(cols.FlexDirection, idx, a.FlexDirection)
	bindIf(cols.FlexWrap, idx, a.FlexWrap)
	bindIf(cols.JustifyContent, idx, a.JustifyContent)
	bindIf(cols.AlignItems, idx, a.AlignItems)
	bindIf(cols.AlignSelf, idx, a.AlignSelf)
	bindIf(cols.GapRow, idx, a.GapRow)
	bindIf(cols.GapColumn, idx, a.GapColumn)

	bindIf(cols.PaddingTop, idx, a.PaddingTop)
	bindIf(cols.PaddingRight, idx, a.PaddingRight)
	bindIf(cols.PaddingBottom, idx, a.PaddingBottom)
	bindIf(cols.PaddingLeft, idx, a.PaddingLeft)
	bindIf(cols.MarginTop, idx, a.MarginTop)
	bindIf(cols.MarginRight, idx, a.MarginRight)
	bindIf(cols.MarginBottom, idx, a.MarginBottom)
	bindIf(cols.MarginLeft, idx, a.MarginLeft)

	bindIf(cols.Fg, idx, a.Fg)
	bindIf(cols.Bg, idx, a.Bg)
	bindIf(cols.Opacity, idx, a.Opacity)
	bindIf(cols.TextAttrs, idx, a.TextAttrs)
	bindIf(cols.Variant, idx, a.Variant)

	bindIf(cols.BorderStyle, idx, a.BorderStyle)
	bindIf(cols.BorderColor, idx, a.BorderColor)
	bindIf(cols.BorderTop, idx, a.BorderTop)
	bindIf(cols.BorderRight, idx, a.BorderRight)
	bindIf(cols.BorderBottom, idx, a.BorderBottom)
	bindIf(cols.BorderLeft, idx, a.BorderLeft)
	bindIf(cols.BorderColorTop, idx, a.BorderColorTop)
	bindIf(cols.BorderColorRight, idx, a.BorderColorRight)
	bindIf(cols.BorderColorBottom, idx, a.BorderColorBottom)
	bindIf(cols.BorderColorLeft, idx, a.BorderColorLeft)

	bindIf(cols.Content, idx, a.Content)
	bindIf(cols.TextAlign, idx, a.TextAlign)
	bindIf(cols.TextWrap, idx, a.TextWrap)
	bindIf(cols.Cursor, idx, a.Cursor)
	bindIf(cols.Masked, idx, a.Masked)
	bindIf(cols.MaskChar, idx, a.MaskChar)
	bindIf(cols.HighlightLang, idx, a.HighlightLang)

	bindIf(cols.Focusable, idx, a.Focusable)
	bindIf(cols.TabIndex, idx, a.TabIndex)
	bindIf(cols.OverflowMode, idx, a.OverflowMode)
	bindIf(cols.ScrollOffsetX, idx, a.ScrollOffsetX)
	bindIf(cols.ScrollOffsetY, idx, a.ScrollOffsetY)
}

func bindIf[T any](col *reactive.SlotArray[T], idx int, src *reactive.Source[T]) {
	if src != nil {
		col.SetSource(idx, *src)
	}
}
