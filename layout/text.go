package layout

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// contentString renders a store.Content payload (spec §3: "a string, a
// number, or anything else formatted via fmt.Sprint") and strips any ANSI
// escape sequences embedded in user text, which do not occupy grid cells
// (spec §4.3).
func contentString(v any) string {
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	return ansi.Strip(s)
}

// displayWidth measures s the way the terminal will render it: grapheme
// clusters rather than runes, with East-Asian-Wide and emoji counted as two
// cells (spec §4.3).
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
	w := 0
	for _, r := range cluster {
		w = runewidth.RuneWidth(r)
		break
	}
	return w
}

// splitLines splits on explicit newlines in content, each measured
// independently (a Text node's intrinsic height before wrapping is the
// number of explicit lines).
func splitLines(s string) []string {
	return strings.Split(s, "\n")
}

// intrinsicTextSize computes a Text node's unwrapped size: width is the
// widest line, height is the line count (spec §4.3).
func intrinsicTextSize(content string) (w, h int) {
	lines := splitLines(content)
	for _, line := range lines {
		if lw := displayWidth(line); lw > w {
			w = lw
		}
	}
	return w, len(lines)
}

// wrapLines breaks content into lines no wider than width (grapheme-aware),
// breaking at grapheme-cluster boundaries when a single line exceeds width
// with no earlier break opportunity (spec §4.3/§4.4(e)). width <= 0 disables
// wrapping (each explicit line stays whole).
func wrapLines(content string, width int) []string {
	if width <= 0 {
		return splitLines(content)
	}
	var out []string
	for _, line := range splitLines(content) {
		out = append(out, wrapOneLine(line, width)...)
	}
	if len(out) == 0 {
		out = []string{""}
	}
	return out
}

// wrapOneLine greedily packs space-separated words onto lines no wider than
// width, falling back to a hard grapheme-level break for a single word
// wider than width on its own.
func wrapOneLine(line string, width int) []string {
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
			for _, piece := range breakGraphemes(word, width) {
				lines = append(lines, piece)
			}
			continue
		}

		needed := ww
		if curW > 0 {
			needed++ // separating space
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

// breakGraphemes hard-splits a single overlong word into width-wide chunks
// at grapheme-cluster boundaries.
func breakGraphemes(word string, width int) []string {
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
