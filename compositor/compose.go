package compositor

import (
	"github.com/loomtui/loom/registry"
	"github.com/loomtui/loom/store"
)

// Composer walks the node forest in z-order (depth-first, a child always
// drawn after its parent's background/border) and rasterizes it into a
// Framebuffer (spec §4.4). It holds no per-frame state of its own beyond
// what Compose's parameters provide, so the same Composer composes many
// frames against the same forest/columns.
type Composer struct {
	reg      *registry.Registry
	cols     *store.Columns
	resolver VariantResolver
	theme    any

	fb            *Framebuffer
	focused       int
	showFocusRing bool
	lastCursor    *resolvedCursor
}

// resolvedCursor is a CursorDescriptor translated into absolute framebuffer
// coordinates, for the terminal driver to position the real cursor (spec
// §4.4 step 2f).
type resolvedCursor struct {
	Col, Row int
	Visible  bool
}

// New creates a Composer bound to reg/cols. resolver may be nil, in which
// case variant-tagged nodes fall back to their inherited/explicit style.
func New(reg *registry.Registry, cols *store.Columns, resolver VariantResolver, theme any) *Composer {
	return &Composer{reg: reg, cols: cols, resolver: resolver, theme: theme}
}

// Compose rasterizes the whole forest into fb. focused is the focused
// node's index (registry.RootIndex or any invalid index disables the focus
// ring for this frame); showFocusRing enables the focus-ring overlay (spec
// §4.4 step 3). Compose clears fb before drawing, so fb is not required to
// be blank on entry.
func (c *Composer) Compose(fb *Framebuffer, focused int, showFocusRing bool) {
	c.fb = fb
	c.focused = focused
	c.showFocusRing = showFocusRing
	c.lastCursor = nil

	fb.Clear(store.Transparent)
	clip := fullRect(fb.W, fb.H)
	for _, root := range c.reg.Children(registry.RootIndex) {
		c.drawNode(root, store.Transparent, clip, 0, 0)
	}

	if showFocusRing && c.reg.Alive(focused) {
		focusClip, offX, offY := c.ancestorClipAndOffset(focused)
		c.drawFocusRing(focused, focusClip, offX, offY)
	}
}

// ancestorClipAndOffset recomputes the clip rectangle and scroll-driven draw
// offset that drawNode would have applied to idx, by walking its ancestor
// chain. Used to draw the focus-ring overlay, which happens outside the main
// recursive walk and so does not have this context threaded through.
func (c *Composer) ancestorClipAndOffset(idx int) (rect, int, int) {
	cols := c.cols
	var chain []int
	for p := c.reg.Parent(idx); p != registry.RootIndex; p = c.reg.Parent(p) {
		chain = append(chain, p)
	}
	clip := fullRect(c.fb.W, c.fb.H)
	offX, offY := 0, 0
	for i := len(chain) - 1; i >= 0; i-- {
		anc := chain[i]
		overflow := cols.OverflowMode.Peek(anc)
		if overflow == store.OverflowHidden || overflow == store.OverflowScroll {
			cx := cols.ContentX.Peek(anc) + offX
			cy := cols.ContentY.Peek(anc) + offY
			cw, ch := cols.ContentW.Peek(anc), cols.ContentH.Peek(anc)
			clip = clip.intersect(rect{x0: cx, y0: cy, x1: cx + cw, y1: cy + ch})
		}
		if overflow == store.OverflowScroll {
			offX -= cols.ScrollOffsetX.Peek(anc)
			offY -= cols.ScrollOffsetY.Peek(anc)
		}
	}
	return clip, offX, offY
}

// Cursor returns the last input-bearing Text node's cursor request drawn
// this frame, translated to framebuffer coordinates, or ok=false if no node
// requested one (spec §4.4 step 2f).
func (c *Composer) Cursor() (col, row int, visible bool, ok bool) {
	if c.lastCursor == nil {
		return 0, 0, false, false
	}
	return c.lastCursor.Col, c.lastCursor.Row, c.lastCursor.Visible, true
}

// drawNode draws idx and its subtree. offX/offY is the cumulative draw
// translation introduced by ancestor overflow='scroll' containers (spec
// §4.4 "shifts child draw positions by (-scrollOffsetX, -scrollOffsetY)");
// it is applied to every coordinate read from the columns before drawing.
func (c *Composer) drawNode(idx int, inheritedFg store.RGBA, clip rect, offX, offY int) {
	cols := c.cols
	if !cols.Visible.Peek(idx) {
		return
	}
	opacity := cols.Opacity.Peek(idx)
	if opacity <= 0 {
		return
	}

	st := c.resolveStyle(idx, inheritedFg)

	x := cols.X.Peek(idx) + offX
	y := cols.Y.Peek(idx) + offY
	w := cols.W.Peek(idx)
	h := cols.H.Peek(idx)

	c.fillBackground(x, y, w, h, st.bg, opacity, clip)

	hasBorder := st.borderStyle[sideTop] != store.BorderNone ||
		st.borderStyle[sideRight] != store.BorderNone ||
		st.borderStyle[sideBottom] != store.BorderNone ||
		st.borderStyle[sideLeft] != store.BorderNone
	if hasBorder {
		c.drawBorder(x, y, w, h, st, clip)
	}

	contentX := cols.ContentX.Peek(idx) + offX
	contentY := cols.ContentY.Peek(idx) + offY
	contentW := cols.ContentW.Peek(idx)
	contentH := cols.ContentH.Peek(idx)

	if cols.ComponentType.Peek(idx) == store.ComponentText {
		c.drawText(idx, contentX, contentY, contentW, contentH, st, clip)
		if cur := cols.Cursor.Peek(idx); cur != nil {
			c.lastCursor = &resolvedCursor{
				Col:     contentX + cur.Col,
				Row:     contentY + cur.Row,
				Visible: cur.Visible,
			}
		}
		return
	}

	childClip := clip
	overflow := cols.OverflowMode.Peek(idx)
	if overflow == store.OverflowHidden || overflow == store.OverflowScroll {
		childClip = clip.intersect(rect{x0: contentX, y0: contentY, x1: contentX + contentW, y1: contentY + contentH})
	}

	childOffX, childOffY := offX, offY
	if overflow == store.OverflowScroll {
		childOffX -= cols.ScrollOffsetX.Peek(idx)
		childOffY -= cols.ScrollOffsetY.Peek(idx)
	}

	for _, child := range c.reg.Children(idx) {
		c.drawNode(child, st.fg, childClip, childOffX, childOffY)
	}
}

// fillBackground implements spec §4.4 step 2c for a node's own rectangle:
// every cell blends bg over whatever is already in the framebuffer (an
// ancestor's background, typically), with opacity scaling bg's alpha.
func (c *Composer) fillBackground(x, y, w, h int, bg store.RGBA, opacity float64, clip rect) {
	if bg.A == 0 || w <= 0 || h <= 0 {
		return
	}
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			if !clip.contains(col, row) || col < 0 || col >= c.fb.W || row < 0 || row >= c.fb.H {
				continue
			}
			existing := c.fb.At(col, row)
			blended := blendOver(existing.Bg, bg, opacity)
			existing.Bg = blended
			if existing.Codepoint == 0 {
				existing.Codepoint = ' '
			}
			c.fb.Cells[row*c.fb.W+col] = existing
		}
	}
}

// drawFocusRing overlays a single-line border around the focused node on
// top of whatever has already been drawn (spec §4.4 step 3), independent of
// and not replacing the node's own border layer. Unlike drawBorder, it
// preserves each cell's existing background rather than overwriting it with
// a style's bg, since it draws after the node (and its children) already
// painted their own backgrounds.
func (c *Composer) drawFocusRing(idx int, clip rect, offX, offY int) {
	cols := c.cols
	if !cols.Visible.Peek(idx) {
		return
	}
	x := cols.X.Peek(idx) + offX
	y := cols.Y.Peek(idx) + offY
	w := cols.W.Peek(idx)
	h := cols.H.Peek(idx)
	if w <= 0 || h <= 0 {
		return
	}

	ringColor := cols.Fg.Peek(idx)
	if ringColor == store.Transparent {
		ringColor = store.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	g := borderGlyphs[store.BorderSingle]

	put := func(px, py int, r rune) {
		if px < 0 || px >= c.fb.W || py < 0 || py >= c.fb.H || !clip.contains(px, py) {
			return
		}
		cell := c.fb.At(px, py)
		cell.Codepoint = r
		cell.Fg = ringColor
		c.fb.Cells[py*c.fb.W+px] = cell
	}

	for i := 1; i < w-1; i++ {
		put(x+i, y, g.h)
		put(x+i, y+h-1, g.h)
	}
	for i := 1; i < h-1; i++ {
		put(x, y+i, g.v)
		put(x+w-1, y+i, g.v)
	}
	put(x, y, g.tl)
	put(x+w-1, y, g.tr)
	put(x, y+h-1, g.bl)
	put(x+w-1, y+h-1, g.br)
}
