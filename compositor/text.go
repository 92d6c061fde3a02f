package compositor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/loomtui/loom/store"
)

// contentString renders a store.Content payload and strips embedded ANSI
// escapes, which do not occupy grid cells (spec §3, §4.3). Grounded the same
// way as layout/text.go's contentString; kept package-local since compositor
// has no dependency on layout.
func contentString(v any) string {
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	return ansi.Strip(s)
}

func displayWidth(s string) int {
	width := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		width += clusterWidth(cluster)
	}
	return width
}

func clusterWidth(cluster string) int {
	for _, r := range cluster {
		return runewidth.RuneWidth(r)
	}
	return 0
}

// wrapTextLines breaks content into lines no wider than width, word-wrapping
// when wrap is store.TextWrap and hard-breaking a single overlong word at
// grapheme boundaries (spec §4.4 step 2e). wrap == store.TextNoWrap or
// width <= 0 leaves each explicit line whole, to be clipped at draw time.
func wrapTextLines(content string, wrap store.TextWrapMode, width int) []string {
	lines := strings.Split(content, "\n")
	if wrap != store.TextWrap || width <= 0 {
		return lines
	}
	var out []string
	for _, line := range lines {
		out = append(out, wrapOneTextLine(line, width)...)
	}
	if len(out) == 0 {
		out = []string{""}
	}
	return out
}

func wrapOneTextLine(line string, width int) []string {
	if displayWidth(line) <= width {
		return []string{line}
	}

	var lines []string
	var cur strings.Builder
	curW := 0
	flush := func() {
		lines = append(lines, cur.String())
		cur.Reset()
		curW = 0
	}

	for _, word := range strings.Split(line, " ") {
		ww := displayWidth(word)
		if ww > width {
			if curW > 0 {
				flush()
			}
			lines = append(lines, breakTextGraphemes(word, width)...)
			continue
		}
		needed := ww
		if curW > 0 {
			needed++
		}
		if curW+needed > width {
			flush()
			needed = ww
		}
		if curW > 0 {
			cur.WriteByte(' ')
			curW++
		}
		cur.WriteString(word)
		curW += ww
	}
	if curW > 0 || len(lines) == 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

func breakTextGraphemes(word string, width int) []string {
	var out []string
	var cur strings.Builder
	curW := 0
	state := -1
	rest := word
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		cw := clusterWidth(cluster)
		if curW+cw > width && curW > 0 {
			out = append(out, cur.String())
			cur.Reset()
			curW = 0
		}
		cur.WriteString(cluster)
		curW += cw
	}
	if curW > 0 {
		out = append(out, cur.String())
	}
	return out
}

// alignOffset returns the leading blank-cell count for a line of width
// lineW inside a box of width boxW, per align (spec §4.4 step 2e).
func alignOffset(align store.TextAlign, lineW, boxW int) int {
	free := boxW - lineW
	if free <= 0 {
		return 0
	}
	switch align {
	case store.TextAlignCenter:
		return free / 2
	case store.TextAlignRight:
		return free
	default:
		return 0
	}
}

// drawText shapes and draws idx's content into its content box (spec §4.4
// step 2e): wrap, align, highlight-span blending, mask substitution, and
// grapheme-width-aware cell writes where a wide cluster occupies two cells
// and suppresses the following cell.
func (c *Composer) drawText(idx, x, y, w, h int, st effectiveStyle, clip rect) {
	if w <= 0 || h <= 0 {
		return
	}
	cols := c.cols
	raw := contentString(cols.Content.Peek(idx))
	wrap := cols.TextWrap.Peek(idx)
	lines := wrapTextLines(raw, wrap, w)

	masked := cols.Masked.Peek(idx)
	maskChar := cols.MaskChar.Peek(idx)
	align := cols.TextAlign.Peek(idx)

	// Highlight spans are byte-offset into raw; wrapping reflows words onto
	// new lines without preserving raw's newline positions, which would
	// desync the offset walk below. Highlighting is a code-block feature
	// that is typically shown unwrapped, so it is only applied when the
	// node's lines are exactly raw's explicit lines (no reflow).
	lang := cols.HighlightLang.Peek(idx)
	var spans []highlightSpan
	if lang != "" && !masked && wrap != store.TextWrap {
		spans = highlightSpans(raw, lang)
	}

	lineOffset := 0
	for row, line := range lines {
		if row >= h {
			break
		}
		lineW := displayWidth(line)
		dx := alignOffset(align, lineW, w)

		col := 0
		byteOff := lineOffset
		state := -1
		rest := line
		for len(rest) > 0 {
			var cluster string
			cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
			cw := clusterWidth(cluster)
			if cw < 1 {
				cw = 1
			}

			fg, attrs := st.fg, st.attrs
			if !masked {
				if sp, ok := styleAt(spans, byteOff); ok && sp.hasFg {
					fg = sp.fg
					attrs |= sp.attrs
				}
			}

			r := firstRune(cluster)
			if masked {
				r = maskChar
			}

			if dx+col < w {
				if dx+col+cw <= w {
					c.fb.set(x+dx+col, y+row, Cell{Codepoint: r, Fg: fg, Bg: st.bg, Attrs: attrs}, clip)
					for i := 1; i < cw; i++ {
						c.fb.set(x+dx+col+i, y+row, Cell{Codepoint: 0, Fg: fg, Bg: st.bg, Attrs: attrs}, clip)
					}
				} else {
					// A wide grapheme that doesn't fully fit before the
					// right edge is suppressed as a space rather than
					// clipped mid-glyph (spec §8).
					c.fb.set(x+dx+col, y+row, Cell{Codepoint: ' ', Fg: fg, Bg: st.bg, Attrs: attrs}, clip)
				}
			}

			col += cw
			byteOff += len(cluster)
		}
		lineOffset += len(line) + 1 // +1 for the '\n' wrapTextLines split on
	}
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return ' '
}
