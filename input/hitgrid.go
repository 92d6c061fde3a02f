package input

import (
	"github.com/loomtui/loom/registry"
	"github.com/loomtui/loom/store"
)

// HitGrid maps each terminal cell to the top-most visible node covering it
// (spec §4.6), so a mouse report's (x, y) can be turned into a dispatch
// target. Rebuilt once per layout pass from the same geometry columns the
// compositor draws from.
type HitGrid struct {
	w, h  int
	nodes []int // registry.RootIndex where nothing covers the cell
}

// BuildHitGrid walks the forest the same depth-first, parent-before-child
// order the compositor composes in (a child painted after its parent is
// "on top"), recording each visible node's content+border box into the
// grid — later writes (descendants, then later siblings) simply overwrite
// earlier ones, reproducing the compositor's z-order without needing a
// Framebuffer. Clipping and scroll-offset translation mirror
// compositor.Composer.drawNode exactly, since the hit grid must agree with
// what was actually drawn.
func BuildHitGrid(reg *registry.Registry, cols *store.Columns, w, h int) *HitGrid {
	g := &HitGrid{w: w, h: h, nodes: make([]int, w*h)}
	for i := range g.nodes {
		g.nodes[i] = registry.RootIndex
	}
	clip := hitRect{x0: 0, y0: 0, x1: w, y1: h}
	for _, root := range reg.Children(registry.RootIndex) {
		g.paint(reg, cols, root, clip, 0, 0)
	}
	return g
}

type hitRect struct{ x0, y0, x1, y1 int }

func (r hitRect) intersect(o hitRect) hitRect {
	out := hitRect{x0: r.x0, y0: r.y0, x1: r.x1, y1: r.y1}
	if o.x0 > out.x0 {
		out.x0 = o.x0
	}
	if o.y0 > out.y0 {
		out.y0 = o.y0
	}
	if o.x1 < out.x1 {
		out.x1 = o.x1
	}
	if o.y1 < out.y1 {
		out.y1 = o.y1
	}
	return out
}

func (g *HitGrid) paint(reg *registry.Registry, cols *store.Columns, idx int, clip hitRect, offX, offY int) {
	if !cols.Visible.Peek(idx) || cols.Opacity.Peek(idx) <= 0 {
		return
	}

	x := cols.X.Peek(idx) + offX
	y := cols.Y.Peek(idx) + offY
	w := cols.W.Peek(idx)
	ht := cols.H.Peek(idx)
	g.fill(idx, x, y, w, ht, clip)

	contentX := cols.ContentX.Peek(idx) + offX
	contentY := cols.ContentY.Peek(idx) + offY
	contentW := cols.ContentW.Peek(idx)
	contentH := cols.ContentH.Peek(idx)

	childClip := clip
	overflow := cols.OverflowMode.Peek(idx)
	if overflow == store.OverflowHidden || overflow == store.OverflowScroll {
		childClip = clip.intersect(hitRect{x0: contentX, y0: contentY, x1: contentX + contentW, y1: contentY + contentH})
	}
	childOffX, childOffY := offX, offY
	if overflow == store.OverflowScroll {
		childOffX -= cols.ScrollOffsetX.Peek(idx)
		childOffY -= cols.ScrollOffsetY.Peek(idx)
	}

	for _, child := range reg.Children(idx) {
		g.paint(reg, cols, child, childClip, childOffX, childOffY)
	}
}

func (g *HitGrid) fill(idx, x, y, w, h int, clip hitRect) {
	x0, y0 := x, y
	x1, y1 := x+w, y+h
	if x0 < clip.x0 {
		x0 = clip.x0
	}
	if y0 < clip.y0 {
		y0 = clip.y0
	}
	if x1 > clip.x1 {
		x1 = clip.x1
	}
	if y1 > clip.y1 {
		y1 = clip.y1
	}
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > g.w {
		x1 = g.w
	}
	if y1 > g.h {
		y1 = g.h
	}
	for row := y0; row < y1; row++ {
		base := row * g.w
		for col := x0; col < x1; col++ {
			g.nodes[base+col] = idx
		}
	}
}

// At returns the top-most node covering (x, y), or registry.RootIndex if
// nothing does.
func (g *HitGrid) At(x, y int) int {
	if x < 0 || x >= g.w || y < 0 || y >= g.h {
		return registry.RootIndex
	}
	return g.nodes[y*g.w+x]
}
