package compositor

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/loomtui/loom/store"
)

// highlightSpan is one run of same-styled text within a Text node's content,
// byte-offset bounded (spec §5 supplemental feature: "a Text node may carry
// a HighlightLang attribute; its content is then tokenized and each token's
// style is blended in on top of the node's resolved fg/attrs").
type highlightSpan struct {
	start, end int // byte offsets into the node's content string
	fg         store.RGBA
	attrs      store.Attrs
	hasFg      bool
}

// highlightStyleName is fixed rather than theme-driven: spec.md leaves syntax
// palette selection out of resolveVariant's contract, so a single built-in
// style keeps every highlighted node visually consistent regardless of
// variant. Grounded on tui/highlight_chroma.go's own hard-coded "monokai".
const highlightStyleName = "monokai"

// highlightSpans tokenizes content under lang via Chroma and returns one
// span per token, generalizing tui/highlight_chroma.go's build-tag-gated
// Span list from ANSI escape strings to store.RGBA so the compositor can
// blend it like any other resolved color (spec §4.4 step 2e).
func highlightSpans(content, lang string) []highlightSpan {
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(highlightStyleName)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return nil
	}

	spans := make([]highlightSpan, 0, 16)
	offset := 0
	for _, token := range iterator.Tokens() {
		end := offset + len(token.Value)
		span := highlightSpan{start: offset, end: end}

		entry := style.Get(token.Type)
		if entry.Bold == chroma.Yes {
			span.attrs |= store.AttrBold
		}
		if entry.Underline == chroma.Yes {
			span.attrs |= store.AttrUnderline
		}
		if entry.Italic == chroma.Yes {
			span.attrs |= store.AttrItalic
		}

		if entry.Colour.IsSet() {
			span.fg = store.RGBA{R: entry.Colour.Red(), G: entry.Colour.Green(), B: entry.Colour.Blue(), A: 255}
			span.hasFg = true
		} else if fg, attrs, ok := categoryFallback(token.Type.Category()); ok {
			span.fg = fg
			span.attrs |= attrs
			span.hasFg = true
		}

		spans = append(spans, span)
		offset = end
	}
	return spans
}

// categoryFallback mirrors tui/highlight_chroma.go's token-category switch,
// used only when the style entry carries no explicit color (Chroma styles
// commonly leave common categories to inherit the theme's default color).
func categoryFallback(category chroma.TokenType) (store.RGBA, store.Attrs, bool) {
	switch category {
	case chroma.Keyword:
		return store.RGBA{R: 198, G: 120, B: 221, A: 255}, store.AttrBold, true
	case chroma.Name:
		return store.RGBA{R: 220, G: 220, B: 220, A: 255}, 0, true
	case chroma.LiteralString:
		return store.RGBA{R: 152, G: 195, B: 121, A: 255}, 0, true
	case chroma.LiteralNumber:
		return store.RGBA{R: 97, G: 175, B: 239, A: 255}, 0, true
	case chroma.Comment:
		return store.RGBA{R: 128, G: 128, B: 128, A: 255}, store.AttrDim, true
	case chroma.Operator, chroma.Punctuation:
		return store.RGBA{R: 220, G: 220, B: 220, A: 255}, 0, true
	default:
		return store.RGBA{}, 0, false
	}
}

// styleAt returns the highlight span covering byte offset pos, or ok=false
// if pos falls outside every span (shouldn't happen for in-range content,
// but callers index defensively since token boundaries are byte-, not
// grapheme-cluster-, aligned).
func styleAt(spans []highlightSpan, pos int) (highlightSpan, bool) {
	for _, sp := range spans {
		if pos >= sp.start && pos < sp.end {
			return sp, true
		}
	}
	return highlightSpan{}, false
}
