package compositor

import "github.com/loomtui/loom/store"

// glyphSet names the six box-drawing runes one border style needs: the two
// straight runs plus all four corners (a style's corner is only used when
// the two meeting sides share it, or it wins the dominant-side tie-break).
type glyphSet struct {
	h, v               rune
	tl, tr, bl, br rune
}

// borderGlyphs is grounded on tui/layout_engine.go's drawBorder, which only
// drew a single fixed single-line box; generalized to the full style set
// spec.md §3 enumerates.
var borderGlyphs = map[store.BorderStyle]glyphSet{
	store.BorderSingle:                {h: '─', v: '│', tl: '┌', tr: '┐', bl: '└', br: '┘'},
	store.BorderDouble:                {h: '═', v: '║', tl: '╔', tr: '╗', bl: '╚', br: '╝'},
	store.BorderRounded:               {h: '─', v: '│', tl: '╭', tr: '╮', bl: '╰', br: '╯'},
	store.BorderBold:                  {h: '━', v: '┃', tl: '┏', tr: '┓', bl: '┗', br: '┛'},
	store.BorderDashed:                {h: '╌', v: '╎', tl: '┌', tr: '┐', bl: '└', br: '┘'},
	store.BorderDotted:                {h: '┄', v: '┆', tl: '┌', tr: '┐', bl: '└', br: '┘'},
	store.BorderASCII:                 {h: '-', v: '|', tl: '+', tr: '+', bl: '+', br: '+'},
	store.BorderBlock:                 {h: '█', v: '█', tl: '█', tr: '█', bl: '█', br: '█'},
	store.BorderMixedDoubleHorizontal: {h: '═', v: '│', tl: '╒', tr: '╕', bl: '╘', br: '╛'},
	store.BorderMixedDoubleVertical:   {h: '─', v: '║', tl: '╓', tr: '╖', bl: '╙', br: '╜'},
}

// cornerCompat names the few mismatched-style pairs that do have a sensible
// shared glyph, independent of the dominant-side tie-break (spec §4.4 step
// 2d: "table-lookup with a documented compatibility matrix").
var cornerCompat = map[[2]store.BorderStyle]store.BorderStyle{
	{store.BorderSingle, store.BorderRounded}: store.BorderRounded,
	{store.BorderRounded, store.BorderSingle}: store.BorderRounded,
	{store.BorderSingle, store.BorderASCII}:   store.BorderASCII,
	{store.BorderASCII, store.BorderSingle}:   store.BorderASCII,
	{store.BorderSingle, store.BorderDashed}:  store.BorderSingle,
	{store.BorderDashed, store.BorderSingle}:  store.BorderSingle,
	{store.BorderSingle, store.BorderDotted}:  store.BorderSingle,
	{store.BorderDotted, store.BorderSingle}:  store.BorderSingle,
}

// sidePriority ranks sides for the dominant-side tie-break (spec §4.4 step
// 2d: "order top > left > right > bottom"), lower is more dominant.
var sidePriority = map[int]int{sideTop: 0, sideLeft: 1, sideRight: 2, sideBottom: 3}

// cornerStyle resolves which style's corner glyph to draw where sideA and
// sideB meet, given their effective border styles.
func cornerStyle(a, b int, styleA, styleB store.BorderStyle) store.BorderStyle {
	if styleA == styleB {
		return styleA
	}
	if styleA == store.BorderNone {
		return styleB
	}
	if styleB == store.BorderNone {
		return styleA
	}
	if compat, ok := cornerCompat[[2]store.BorderStyle{styleA, styleB}]; ok {
		return compat
	}
	if sidePriority[a] < sidePriority[b] {
		return styleA
	}
	return styleB
}

// drawBorder draws idx's four border runs and corners into the framebuffer
// within the outer rectangle (x, y, w, h) (spec §4.4 step 2d).
func (c *Composer) drawBorder(x, y, w, h int, st effectiveStyle, clip rect) {
	if w <= 0 || h <= 0 {
		return
	}
	top, right, bottom, left := st.borderStyle[sideTop], st.borderStyle[sideRight], st.borderStyle[sideBottom], st.borderStyle[sideLeft]

	if g, ok := borderGlyphs[top]; ok {
		for i := 1; i < w-1; i++ {
			c.fb.set(x+i, y, Cell{Codepoint: g.h, Fg: st.borderColor[sideTop], Bg: st.bg}, clip)
		}
	}
	if g, ok := borderGlyphs[bottom]; ok {
		for i := 1; i < w-1; i++ {
			c.fb.set(x+i, y+h-1, Cell{Codepoint: g.h, Fg: st.borderColor[sideBottom], Bg: st.bg}, clip)
		}
	}
	if g, ok := borderGlyphs[left]; ok {
		for i := 1; i < h-1; i++ {
			c.fb.set(x, y+i, Cell{Codepoint: g.v, Fg: st.borderColor[sideLeft], Bg: st.bg}, clip)
		}
	}
	if g, ok := borderGlyphs[right]; ok {
		for i := 1; i < h-1; i++ {
			c.fb.set(x+w-1, y+i, Cell{Codepoint: g.v, Fg: st.borderColor[sideRight], Bg: st.bg}, clip)
		}
	}

	c.drawCorner(x, y, sideTop, sideLeft, top, left, st, clip, func(g glyphSet) rune { return g.tl })
	c.drawCorner(x+w-1, y, sideTop, sideRight, top, right, st, clip, func(g glyphSet) rune { return g.tr })
	c.drawCorner(x, y+h-1, sideBottom, sideLeft, bottom, left, st, clip, func(g glyphSet) rune { return g.bl })
	c.drawCorner(x+w-1, y+h-1, sideBottom, sideRight, bottom, right, st, clip, func(g glyphSet) rune { return g.br })
}

func (c *Composer) drawCorner(x, y, sideA, sideB int, styleA, styleB store.BorderStyle, st effectiveStyle, clip rect, pick func(glyphSet) rune) {
	style := cornerStyle(sideA, sideB, styleA, styleB)
	if style == store.BorderNone {
		return
	}
	g, ok := borderGlyphs[style]
	if !ok {
		return
	}
	colorSide := sideA
	if sidePriority[sideB] < sidePriority[sideA] {
		colorSide = sideB
	}
	c.fb.set(x, y, Cell{Codepoint: pick(g), Fg: st.borderColor[colorSide], Bg: st.bg}, clip)
}
