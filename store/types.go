// Package store holds the parallel-array attribute columns: one slot array
// per per-node attribute, so the reactive graph can subscribe to each
// attribute independently (spec §3).
package store

// ComponentType distinguishes the two node kinds the engine lays out and
// draws (spec §3).
type ComponentType int

const (
	ComponentBox ComponentType = iota
	ComponentText
)

// FlexDirection is the main axis of a flex container.
type FlexDirection int

const (
	Row FlexDirection = iota
	RowReverse
	Column
	ColumnReverse
)

// FlexWrap controls whether a container's children may wrap onto new lines.
type FlexWrap int

const (
	NoWrap FlexWrap = iota
	Wrap
	WrapReverse
)

// Justify distributes leftover main-axis space (spec §4.3 step 6).
type Justify int

const (
	JustifyStart Justify = iota
	JustifyEnd
	JustifyCenter
	JustifySpaceBetween
	JustifySpaceAround
	JustifySpaceEvenly
)

// Align positions items on the cross axis (spec §4.3 step 7), both as a
// container-level default (AlignItems) and a per-item override (AlignSelf).
type Align int

const (
	AlignStretch Align = iota
	AlignStart
	AlignEnd
	AlignCenter
	AlignAuto // AlignSelf-only: defer to the container's AlignItems.
)

// Overflow controls clipping and scrollability of a container's content box.
type Overflow int

const (
	OverflowVisible Overflow = iota
	OverflowHidden
	OverflowScroll
)

// AbsoluteAnchor names one of the four offsets an absolutely-positioned node
// may set (spec §3).
type AbsoluteAnchor int

const (
	AnchorTop AbsoluteAnchor = iota
	AnchorRight
	AnchorBottom
	AnchorLeft
)

// BorderStyle enumerates the fixed set of line-drawing styles (spec §3).
type BorderStyle int

const (
	BorderNone BorderStyle = iota
	BorderSingle
	BorderDouble
	BorderRounded
	BorderBold
	BorderDashed
	BorderDotted
	BorderASCII
	BorderBlock
	BorderMixedDoubleHorizontal
	BorderMixedDoubleVertical
)

// TextAlign positions a Text node's content within its content box.
type TextAlign int

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

// TextWrapMode selects whether overflowing text wraps onto new lines.
type TextWrapMode int

const (
	TextNoWrap TextWrapMode = iota
	TextWrap
)

// Attrs is a bitfield of text attributes, independent of color.
type Attrs int

const (
	AttrBold Attrs = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
)

// Dimension is a geometry input that is either absent, an absolute integer
// cell count, or a percentage of the parent's content box (spec §3).
type DimensionKind int

const (
	DimAbsent DimensionKind = iota
	DimCells
	DimPercent
)

type Dimension struct {
	Kind  DimensionKind
	Value float64 // cell count for DimCells, 0..100 for DimPercent
}

// Auto is the absent dimension: "size me by content."
func Auto() Dimension { return Dimension{Kind: DimAbsent} }

// Cells is a fixed cell-count dimension.
func Cells(n float64) Dimension { return Dimension{Kind: DimCells, Value: n} }

// Percent is a dimension expressed as a percentage of the parent content box.
func Percent(p float64) Dimension { return Dimension{Kind: DimPercent, Value: p} }

// RGBA is a straight-alpha color, Alpha in [0,255] matching spec §4.4's blend
// formula (`out = src.rgb*src.a + dst.rgb*(1-src.a)`, scaled to bytes).
type RGBA struct {
	R, G, B, A uint8
}

// Transparent is the zero value: fully transparent black, used as the
// default background so panels don't paint over their parent unless styled.
var Transparent = RGBA{}

// CursorDescriptor requests the real terminal cursor be positioned at an
// input-bearing Text node's caret (spec §3/§4.4(f)).
type CursorDescriptor struct {
	Col, Row int // offset within the node's content box
	Visible  bool
}

// Content is the reactive-or-literal payload of a Text node: a string, a
// number (formatted with fmt), or anything else formatted via fmt.Sprint.
type Content = any
