package layout

import (
	"math"

	"github.com/loomtui/loom/reactive"
	"github.com/loomtui/loom/store"
)

func constInt(v int) reactive.Source[int] { return reactive.ConstSource(v) }

type borderThicknessSides struct{ top, right, bottom, left int }

func (e *Engine) borderThickness(idx int) borderThicknessSides {
	c := e.cols
	base := c.BorderStyle.Peek(idx)
	side := func(specific store.BorderStyle) int {
		style := specific
		if style == store.BorderNone {
			style = base
		}
		if style == store.BorderNone {
			return 0
		}
		return 1
	}
	return borderThicknessSides{
		top:    side(c.BorderTop.Peek(idx)),
		right:  side(c.BorderRight.Peek(idx)),
		bottom: side(c.BorderBottom.Peek(idx)),
		left:   side(c.BorderLeft.Peek(idx)),
	}
}

// resolveDimension resolves dim against an available extent, returning
// ok=false for Auto (the caller should fall back to intrinsic sizing).
// A percentage against an indefinite (<=0) available extent contributes 0,
// per spec §4.3 step 1.
func (e *Engine) resolveDimension(idx int, dim store.Dimension, avail int) (int, bool) {
	if dim.Kind != store.DimAbsent && (math.IsNaN(dim.Value) || dim.Value < 0) {
		e.obs.ConstraintUnsatisfiable(idx, "negative or NaN dimension clamped to zero")
		return 0, true
	}
	switch dim.Kind {
	case store.DimCells:
		return roundNonNeg(dim.Value), true
	case store.DimPercent:
		if avail <= 0 {
			return 0, true
		}
		return roundNonNeg(dim.Value / 100 * float64(avail)), true
	default:
		return 0, false
	}
}

func (e *Engine) resolveMin(idx int, dim store.Dimension, avail int) int {
	if dim.Kind == store.DimAbsent {
		return 0
	}
	v, _ := e.resolveDimension(idx, dim, avail)
	return v
}

// resolveMax returns 0 to mean "unbounded" (Auto), matching clamp's
// convention that a non-positive hi is ignored.
func (e *Engine) resolveMax(idx int, dim store.Dimension, avail int) int {
	if dim.Kind == store.DimAbsent {
		return 0
	}
	v, _ := e.resolveDimension(idx, dim, avail)
	return v
}

func roundNonNeg(v float64) int {
	if v < 0 {
		return 0
	}
	return int(v + 0.5)
}

// place assigns idx's absolute origin (x, y) given its already-measured
// outer box b, then positions its children along the main/cross axes
// (spec §4.3 steps 5-9) and recurses.
func (e *Engine) place(idx, x, y int, b box, memo map[int]box) {
	c := e.cols
	c.X.SetSource(idx, constInt(x))
	c.Y.SetSource(idx, constInt(y))
	c.W.SetSource(idx, constInt(b.w))
	c.H.SetSource(idx, constInt(b.h))

	borders := e.borderThickness(idx)
	padT, padL := c.PaddingTop.Peek(idx), c.PaddingLeft.Peek(idx)
	contentX := x + padL + borders.left
	contentY := y + padT + borders.top

	c.ContentX.SetSource(idx, constInt(contentX))
	c.ContentY.SetSource(idx, constInt(contentY))
	c.ContentW.SetSource(idx, constInt(b.contentW))
	c.ContentH.SetSource(idx, constInt(b.contentH))

	if c.ComponentType.Peek(idx) == store.ComponentText {
		return
	}

	dir := c.FlexDirection.Peek(idx)
	items := e.visibleChildren(idx)
	if len(items) > 0 {
		lines := e.resolveLines(idx, items, b.contentW, b.contentH, dir)
		e.placeLines(idx, contentX, contentY, b.contentW, b.contentH, dir, lines, memo)
	}

	e.placeAbsoluteChildren(idx, contentX, contentY, b.contentW, b.contentH, memo)

	for _, child := range e.reg.Children(idx) {
		if !c.Visible.Peek(child) {
			e.zeroSubtree(child)
		}
	}

	if c.OverflowMode.Peek(idx) == store.OverflowScroll {
		// children lay out against their own content size; the viewport for
		// scroll clamping is this node's content box.
		e.clampScroll(idx, b.contentW, b.contentH)
	}
}

func (e *Engine) placeLines(idx, contentX, contentY, contentW, contentH int, dir store.FlexDirection, lines []flexLine, memo map[int]box) {
	c := e.cols
	row := isRowDirection(dir)
	reverse := isReverse(dir)
	gapCross := c.GapRow.Peek(idx)
	if row {
		gapCross = c.GapColumn.Peek(idx)
	}
	justify := c.JustifyContent.Peek(idx)
	containerAlign := c.AlignItems.Peek(idx)

	crossCursor := 0
	for li, ln := range lines {
		e.placeLine(idx, contentX, contentY, contentW, contentH, row, reverse, justify, containerAlign, ln, crossCursor, memo)
		crossCursor += ln.crossSize
		if li < len(lines)-1 {
			crossCursor += gapCross
		}
	}
}

func (e *Engine) placeLine(parent, contentX, contentY, contentW, contentH int, row, reverse bool, justify store.Justify, containerAlign store.Align, ln flexLine, crossOffset int, memo map[int]box) {
	c := e.cols
	n := len(ln.items)
	if n == 0 {
		return
	}

	mainAvail := contentW
	if !row {
		mainAvail = contentH
	}
	used := ln.gapTotal
	for _, it := range ln.items {
		used += it.mainSize
	}
	free := mainAvail - used
	if free < 0 {
		free = 0
	}

	leadGap, betweenGap, afterEach := justifyGaps(justify, free, n)

	mainCursor := leadGap
	order := ln.items
	if reverse {
		order = reverseItems(ln.items)
	}

	for i, it := range order {
		gapRow := c.GapRow.Peek(parent)
		gapCol := c.GapColumn.Peek(parent)
		gapMain := gapRow
		if row {
			gapMain = gapCol
		}
		if i > 0 {
			mainCursor += gapMain + betweenGap
		}

		align := c.AlignSelf.Peek(it.idx)
		if align == store.AlignAuto {
			align = containerAlign
		}
		hasExplicitCross := e.hasExplicitCrossSize(it.idx, row)

		crossSize := it.crossSize
		if align == store.AlignStretch && !hasExplicitCross {
			crossSize = ln.crossSize
		}

		var x, y, w, h int
		if row {
			x = contentX + mainCursor
			w = it.mainSize
			h = crossSize
			y = contentY + crossOffset + crossAlignOffset(align, ln.crossSize, crossSize)
		} else {
			y = contentY + mainCursor
			h = it.mainSize
			w = crossSize
			x = contentX + crossOffset + crossAlignOffset(align, ln.crossSize, crossSize)
		}

		childBox := box{w: w, h: h}
		// re-measure the child's content box at its final outer size so
		// descendants see accurate constraints (padding/border already
		// folded into it.mainSize/crossSize by resolveItemBasis/Cross).
		childBox = e.finalizeBox(it.idx, w, h)
		memo[it.idx] = childBox
		e.place(it.idx, x, y, childBox, memo)

		mainCursor += it.mainSize
		if afterEach > 0 {
			mainCursor += afterEach
		}
	}
}

// finalizeBox recomputes idx's content box for an already-decided outer
// size, needed because flex resolution may have grown/shrunk the item past
// its originally measured hypothetical size.
func (e *Engine) finalizeBox(idx, w, h int) box {
	borders := e.borderThickness(idx)
	c := e.cols
	hDeduct := c.PaddingLeft.Peek(idx) + c.PaddingRight.Peek(idx) + borders.left + borders.right
	vDeduct := c.PaddingTop.Peek(idx) + c.PaddingBottom.Peek(idx) + borders.top + borders.bottom
	return box{
		w: w, h: h,
		contentW: clampNonNeg(w - hDeduct),
		contentH: clampNonNeg(h - vDeduct),
	}
}

func (e *Engine) hasExplicitCrossSize(idx int, row bool) bool {
	c := e.cols
	if row {
		return c.Height.Peek(idx).Kind != store.DimAbsent
	}
	return c.Width.Peek(idx).Kind != store.DimAbsent
}

// crossAlignOffset positions an item of crossSize within a line of
// lineCross, per alignItems/alignSelf (spec §4.3 step 7).
func crossAlignOffset(align store.Align, lineCross, itemCross int) int {
	switch align {
	case store.AlignEnd:
		return lineCross - itemCross
	case store.AlignCenter:
		return (lineCross - itemCross) / 2
	default:
		return 0
	}
}

// justifyGaps returns the leading gap, the gap between each pair of items,
// and an additional per-item trailing gap (used by space-around only;
// space-evenly spaces items through the between gap),
// implementing spec §4.3 step 6. A single item degenerates space-between
// to flex-start (spec tie-break).
func justifyGaps(justify store.Justify, free, n int) (lead, between, afterEach int) {
	if n <= 1 && justify == store.JustifySpaceBetween {
		justify = store.JustifyStart
	}
	switch justify {
	case store.JustifyEnd:
		return free, 0, 0
	case store.JustifyCenter:
		return free / 2, 0, 0
	case store.JustifySpaceBetween:
		if n > 1 {
			return 0, free / (n - 1), 0
		}
		return 0, 0, 0
	case store.JustifySpaceAround:
		unit := free / n
		return unit / 2, 0, unit
	case store.JustifySpaceEvenly:
		unit := free / (n + 1)
		return unit, unit, 0
	default:
		return 0, 0, 0
	}
}

func reverseItems(items []flexItem) []flexItem {
	out := make([]flexItem, len(items))
	for i, it := range items {
		out[len(items)-1-i] = it
	}
	return out
}

// placeAbsoluteChildren positions absolutely-positioned children by their
// anchor offsets relative to the containing content box, skipping flex
// resolution entirely (spec §4.3 "Absolute-positioned children...").
func (e *Engine) placeAbsoluteChildren(parent, contentX, contentY, contentW, contentH int, memo map[int]box) {
	c := e.cols
	for _, child := range e.reg.Children(parent) {
		if !c.Visible.Peek(child) || !c.Absolute.Peek(child) {
			continue
		}
		b := e.measure(child, contentW, contentH)
		x, y := contentX, contentY

		if top, ok := e.resolveDimension(child, c.AnchorTopSet.Peek(child), contentH); ok {
			y = contentY + top
		} else if bottom, ok := e.resolveDimension(child, c.AnchorBottom.Peek(child), contentH); ok {
			y = contentY + contentH - bottom - b.h
		}
		if left, ok := e.resolveDimension(child, c.AnchorLeftSet.Peek(child), contentW); ok {
			x = contentX + left
		} else if right, ok := e.resolveDimension(child, c.AnchorRightSet.Peek(child), contentW); ok {
			x = contentX + contentW - right - b.w
		}

		memo[child] = b
		e.place(child, x, y, b, memo)
	}
}

// clampScroll clamps idx's scroll offsets to [0, contentSize-viewportSize]
// (spec §4.3 "Overflow and scroll").
func (e *Engine) clampScroll(idx, viewportW, viewportH int) {
	c := e.cols
	maxX := e.childrenExtentX(idx) - viewportW
	maxY := e.childrenExtentY(idx) - viewportH
	if maxX < 0 {
		maxX = 0
	}
	if maxY < 0 {
		maxY = 0
	}
	offX := clampInt(c.ScrollOffsetX.Peek(idx), 0, maxX)
	offY := clampInt(c.ScrollOffsetY.Peek(idx), 0, maxY)
	if offX != c.ScrollOffsetX.Peek(idx) {
		c.ScrollOffsetX.SetSource(idx, constInt(offX))
	}
	if offY != c.ScrollOffsetY.Peek(idx) {
		c.ScrollOffsetY.SetSource(idx, constInt(offY))
	}
}

func (e *Engine) childrenExtentX(idx int) int {
	max := 0
	for _, child := range e.reg.Children(idx) {
		if !e.cols.Visible.Peek(child) {
			continue
		}
		if right := e.cols.X.Peek(child) - e.cols.ContentX.Peek(idx) + e.cols.W.Peek(child); right > max {
			max = right
		}
	}
	return max
}

func (e *Engine) childrenExtentY(idx int) int {
	max := 0
	for _, child := range e.reg.Children(idx) {
		if !e.cols.Visible.Peek(child) {
			continue
		}
		if bottom := e.cols.Y.Peek(child) - e.cols.ContentY.Peek(idx) + e.cols.H.Peek(child); bottom > max {
			max = bottom
		}
	}
	return max
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
