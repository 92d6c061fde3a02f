// Package layout implements the flexbox pass: it walks the node forest and
// attribute columns and writes the four dense geometry columns plus the
// content-box columns for every node (spec §4.3).
package layout

import (
	"math"

	"github.com/loomtui/loom/registry"
	"github.com/loomtui/loom/store"
)

// Observability receives layout's programmer-error reports (negative width,
// NaN) without the layout package depending on the concrete sink.
type Observability interface {
	ConstraintUnsatisfiable(node int, detail string)
}

type noopObservability struct{}

func (noopObservability) ConstraintUnsatisfiable(int, string) {}

// Engine holds only the forest/attribute references and the observability
// sink; Compute allocates its working state afresh and keeps nothing
// between calls.
type Engine struct {
	reg *registry.Registry
	cols *store.Columns
	obs  Observability
}

// New creates a layout Engine bound to reg/cols. obs may be nil, in which
// case constraint failures are silently dropped.
func New(reg *registry.Registry, cols *store.Columns, obs Observability) *Engine {
	if obs == nil {
		obs = noopObservability{}
	}
	return &Engine{reg: reg, cols: cols, obs: obs}
}

// box is a resolved outer rectangle, computed bottom-up then translated to
// absolute coordinates top-down.
type box struct {
	w, h             int
	contentW, contentH int
}

// Compute lays out the whole forest rooted at registry.RootIndex into a
// viewport of size (w, h), writing x/y/w/h and contentX/Y/W/H for every
// live node (spec §4.3).
func (e *Engine) Compute(w, h int) {
	allRoots := e.reg.Children(registry.RootIndex)
	roots := make([]int, 0, len(allRoots))
	for _, idx := range allRoots {
		if e.cols.Visible.Peek(idx) {
			roots = append(roots, idx)
		} else {
			e.zeroSubtree(idx)
		}
	}

	sizes := make(map[int]box, e.reg.Len())
	for _, idx := range roots {
		sizes[idx] = e.measure(idx, w, h)
	}
	cursorX, cursorY := 0, 0
	for _, idx := range roots {
		b := sizes[idx]
		e.place(idx, cursorX, cursorY, b, sizes)
		cursorY += b.h
	}
}

// measure computes idx's outer box given an available (w, h) constraint,
// recursing into children first (bottom-up, per the teacher's Measure).
// It does not write the final x/y — place does that in a second pass so
// justify/align, which need every sibling's size up front, can run first.
func (e *Engine) measure(idx int, availW, availH int) box {
	c := e.cols
	kind := c.ComponentType.Peek(idx)

	padT, padR, padB, padL := c.PaddingTop.Peek(idx), c.PaddingRight.Peek(idx), c.PaddingBottom.Peek(idx), c.PaddingLeft.Peek(idx)
	borderSides := e.borderThickness(idx)

	hDeduct := padL + padR + borderSides.left + borderSides.right
	vDeduct := padT + padB + borderSides.top + borderSides.bottom

	contentAvailW := clampNonNeg(availW - hDeduct)
	contentAvailH := clampNonNeg(availH - vDeduct)

	width := c.Width.Peek(idx)
	height := c.Height.Peek(idx)

	var outerW, outerH int
	var contentW, contentH int

	if kind == store.ComponentText {
		contentW, contentH = e.measureText(idx, contentAvailW)
	} else {
		contentW, contentH = e.measureBox(idx, contentAvailW, contentAvailH)
	}

	if resolved, ok := e.resolveDimension(idx, width, availW); ok {
		outerW = resolved
	} else {
		outerW = contentW + hDeduct
	}
	if resolved, ok := e.resolveDimension(idx, height, availH); ok {
		outerH = resolved
	} else {
		outerH = contentH + vDeduct
	}

	outerW = clamp(outerW, e.resolveMin(idx, c.MinWidth.Peek(idx), availW), e.resolveMax(idx, c.MaxWidth.Peek(idx), availW))
	outerH = clamp(outerH, e.resolveMin(idx, c.MinHeight.Peek(idx), availH), e.resolveMax(idx, c.MaxHeight.Peek(idx), availH))

	return box{
		w: outerW, h: outerH,
		contentW: clampNonNeg(outerW - hDeduct),
		contentH: clampNonNeg(outerH - vDeduct),
	}
}

func (e *Engine) measureText(idx int, availW int) (w, h int) {
	c := e.cols
	content := contentString(c.Content.Peek(idx))
	if c.TextWrap.Peek(idx) == store.TextWrap && availW > 0 {
		lines := wrapLines(content, availW)
		maxW := 0
		for _, l := range lines {
			if lw := displayWidth(l); lw > maxW {
				maxW = lw
			}
		}
		return maxW, len(lines)
	}
	return intrinsicTextSize(content)
}

// measureBox measures a container's content size from its flex-resolved
// children (spec §4.3 steps 2-4): sum along the main axis, max along cross.
func (e *Engine) measureBox(idx int, availW, availH int) (w, h int) {
	items := e.visibleChildren(idx)
	if len(items) == 0 {
		return 0, 0
	}
	dir := e.cols.FlexDirection.Peek(idx)
	lines := e.resolveLines(idx, items, availW, availH, dir)

	mainTotal, crossTotal := 0, 0
	for _, ln := range lines {
		lineMain := ln.gapTotal
		for _, it := range ln.items {
			lineMain += it.mainSize
		}
		if lineMain > mainTotal {
			mainTotal = lineMain
		}
		crossTotal += ln.crossSize
	}
	gapCol := e.cols.GapColumn.Peek(idx)
	if len(lines) > 1 {
		crossTotal += gapCol * (len(lines) - 1)
	}

	if isRowDirection(dir) {
		return mainTotal, crossTotal
	}
	return crossTotal, mainTotal
}

// zeroGeometry resets idx's eight geometry columns to zero, the layout
// contribution an invisible node must present (spec §3 "visible=false
// zeroes the node's contribution to layout") rather than whatever it held
// from the last pass it was visible in.
func (e *Engine) zeroGeometry(idx int) {
	c := e.cols
	c.X.SetSource(idx, constInt(0))
	c.Y.SetSource(idx, constInt(0))
	c.W.SetSource(idx, constInt(0))
	c.H.SetSource(idx, constInt(0))
	c.ContentX.SetSource(idx, constInt(0))
	c.ContentY.SetSource(idx, constInt(0))
	c.ContentW.SetSource(idx, constInt(0))
	c.ContentH.SetSource(idx, constInt(0))
}

// zeroSubtree zeroes idx and every descendant's geometry: place never
// recurses into an invisible node's children either, so without this their
// stale geometry would persist indefinitely from the last pass they were
// placed in.
func (e *Engine) zeroSubtree(idx int) {
	e.zeroGeometry(idx)
	for _, child := range e.reg.Children(idx) {
		e.zeroSubtree(child)
	}
}

func (e *Engine) visibleChildren(idx int) []int {
	children := e.reg.Children(idx)
	out := make([]int, 0, len(children))
	for _, child := range children {
		if e.cols.Visible.Peek(child) && !e.cols.Absolute.Peek(child) {
			out = append(out, child)
		}
	}
	return out
}

type flexItem struct {
	idx                int
	mainSize, crossSize int
	basis              float64
	grow, shrink       float64
	minMain, maxMain   int
}

type flexLine struct {
	items     []flexItem
	crossSize int
	gapTotal  int
}

// resolveLines runs spec §4.3 steps 1-7 for one container's children:
// hypothetical sizing, wrap into lines, grow/shrink resolution, and
// cross-axis sizing. It does not assign absolute positions (place does
// that, after every sibling's size is known).
func (e *Engine) resolveLines(idx int, items []int, availW, availH int, dir store.FlexDirection) []flexLine {
	row := isRowDirection(dir)
	mainAvail, crossAvail := availW, availH
	if !row {
		mainAvail, crossAvail = availH, availW
	}
	gapMain := e.cols.GapRow.Peek(idx)
	if !row {
		gapMain = e.cols.GapColumn.Peek(idx)
	}

	wrap := e.cols.FlexWrap.Peek(idx) != store.NoWrap

	resolved := make([]flexItem, len(items))
	for i, child := range items {
		resolved[i] = e.resolveItemBasis(child, mainAvail, crossAvail, row)
	}

	var lines []flexLine
	cur := flexLine{}
	curMain := 0
	for _, it := range resolved {
		addGap := 0
		if len(cur.items) > 0 && it.mainSize > 0 {
			addGap = gapMain
		}
		if wrap && len(cur.items) > 0 && curMain+addGap+it.mainSize > mainAvail {
			lines = append(lines, cur)
			cur = flexLine{}
			curMain = 0
			addGap = 0
		}
		cur.items = append(cur.items, it)
		curMain += addGap + it.mainSize
		cur.gapTotal += addGap
	}
	if len(cur.items) > 0 || len(lines) == 0 {
		lines = append(lines, cur)
	}

	// A scroll container's children keep their own main size when they
	// overflow it, so the content can extend past the viewport.
	scroll := e.cols.OverflowMode.Peek(idx) == store.OverflowScroll
	for li := range lines {
		used := lines[li].gapTotal
		for _, it := range lines[li].items {
			used += it.mainSize
		}
		if !scroll || used <= mainAvail {
			e.resolveGrowShrink(&lines[li], mainAvail)
		}
		lines[li].crossSize = 0
		for i, it := range lines[li].items {
			cross := e.resolveItemCross(it.idx, row, it.mainSize)
			lines[li].items[i].crossSize = cross
			if cross > lines[li].crossSize {
				lines[li].crossSize = cross
			}
		}
	}
	return lines
}

func (e *Engine) resolveItemBasis(idx int, mainAvail, crossAvail int, row bool) flexItem {
	c := e.cols
	basisDim := c.Basis.Peek(idx)
	var mainAvailForChild, crossAvailForChild int
	if row {
		mainAvailForChild, crossAvailForChild = mainAvail, crossAvail
	} else {
		mainAvailForChild, crossAvailForChild = crossAvail, mainAvail
	}

	var main int
	if resolved, ok := e.resolveDimension(idx, basisDim, mainAvail); ok {
		main = resolved
	} else {
		var b box
		if row {
			b = e.measure(idx, mainAvailForChild, crossAvailForChild)
			main = b.w
		} else {
			b = e.measure(idx, crossAvailForChild, mainAvailForChild)
			main = b.h
		}
	}

	var minMain, maxMain int
	if row {
		minMain = e.resolveMin(idx, c.MinWidth.Peek(idx), mainAvail)
		maxMain = e.resolveMax(idx, c.MaxWidth.Peek(idx), mainAvail)
	} else {
		minMain = e.resolveMin(idx, c.MinHeight.Peek(idx), mainAvail)
		maxMain = e.resolveMax(idx, c.MaxHeight.Peek(idx), mainAvail)
	}
	main = clamp(main, minMain, maxMain)

	return flexItem{
		idx: idx, mainSize: main, basis: float64(main),
		grow: c.FlexGrow.Peek(idx), shrink: c.FlexShrink.Peek(idx),
		minMain: minMain, maxMain: maxMain,
	}
}

// resolveItemCross measures idx's cross-axis size given its already-resolved
// main-axis size, used for the line's cross size before stretch/align apply.
func (e *Engine) resolveItemCross(idx int, row bool, mainSize int) int {
	var b box
	if row {
		b = e.measure(idx, mainSize, math.MaxInt32>>2)
		return b.h
	}
	b = e.measure(idx, math.MaxInt32>>2, mainSize)
	return b.w
}

// resolveGrowShrink distributes free space along grow/shrink weights using
// the standard frozen-items loop: items pinned by a min/max clamp are
// excluded from the next round's weight sum (spec §4.3 step 4).
func (e *Engine) resolveGrowShrink(line *flexLine, mainAvail int) {
	used := line.gapTotal
	for _, it := range line.items {
		used += it.mainSize
	}
	free := mainAvail - used
	if free == 0 {
		return
	}

	frozen := make([]bool, len(line.items))
	for pass := 0; pass < len(line.items)+1; pass++ {
		var weightSum float64
		for i, it := range line.items {
			if frozen[i] {
				continue
			}
			if free > 0 {
				weightSum += it.grow
			} else {
				weightSum += it.shrink * it.basis
			}
		}
		if weightSum <= 0 {
			return
		}

		changed := false
		remaining := free
		for i := range line.items {
			if frozen[i] || remaining == 0 {
				continue
			}
			it := &line.items[i]
			var share float64
			if free > 0 {
				share = float64(remaining) * (it.grow / weightSum)
			} else {
				share = float64(remaining) * (it.shrink * it.basis / weightSum)
			}
			delta := int(math.Round(share))
			newSize := it.mainSize + delta
			clamped := clamp(newSize, it.minMain, it.maxMain)
			if clamped != newSize {
				frozen[i] = true
				changed = true
			}
			it.mainSize = clamped
		}
		used = line.gapTotal
		for _, it := range line.items {
			used += it.mainSize
		}
		free = mainAvail - used
		if !changed || free == 0 {
			return
		}
	}
}

func isRowDirection(dir store.FlexDirection) bool {
	return dir == store.Row || dir == store.RowReverse
}

func isReverse(dir store.FlexDirection) bool {
	return dir == store.RowReverse || dir == store.ColumnReverse
}

func clamp(v, lo, hi int) int {
	if hi > 0 && hi < lo {
		hi = lo // min wins over max (spec §4.3 tie-break)
	}
	if v < lo {
		v = lo
	}
	if hi > 0 && v > hi {
		v = hi
	}
	return v
}

func clampNonNeg(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
