package compositor

import "github.com/loomtui/loom/store"

// ResolvedVariant is what an external theme resolver hands back for an
// opaque variant tag (spec §6: "resolveVariant(variant, theme) → {fg, bg,
// border, attrs}"). The engine never hard-codes palette values itself.
type ResolvedVariant struct {
	Fg          store.RGBA
	Bg          store.RGBA
	Border      store.BorderStyle
	BorderColor store.RGBA
	Attrs       store.Attrs
}

// VariantResolver is the external collaborator the engine consumes for
// turning a variant tag into concrete style; theme is caller-owned
// (typically a reactive cell the caller reads inside the resolver).
type VariantResolver func(variant string, theme any) ResolvedVariant

type effectiveStyle struct {
	fg          store.RGBA
	bg          store.RGBA
	attrs       store.Attrs
	borderStyle [4]store.BorderStyle // top, right, bottom, left
	borderColor [4]store.RGBA
}

const (
	sideTop = iota
	sideRight
	sideBottom
	sideLeft
)

// resolveStyle implements spec §4.4 step 2b: "any attribute set on the node
// wins; otherwise fall back to the variant resolver; otherwise inherit fg
// from the nearest ancestor with an fg set; bg does not inherit."
func (c *Composer) resolveStyle(idx int, inheritedFg store.RGBA) effectiveStyle {
	cols := c.cols
	var resolved ResolvedVariant
	variant := cols.Variant.Peek(idx)
	haveVariant := variant != ""
	if haveVariant && c.resolver != nil {
		resolved = c.resolver(variant, c.theme)
	}

	st := effectiveStyle{}

	if fg := cols.Fg.Peek(idx); fg != store.Transparent {
		st.fg = fg
	} else if haveVariant {
		st.fg = resolved.Fg
	} else {
		st.fg = inheritedFg
	}

	if bg := cols.Bg.Peek(idx); bg != store.Transparent {
		st.bg = bg
	} else if haveVariant {
		st.bg = resolved.Bg
	} // else stays transparent: bg never inherits.

	if attrs := cols.TextAttrs.Peek(idx); attrs != 0 {
		st.attrs = attrs
	} else if haveVariant {
		st.attrs = resolved.Attrs
	}

	base := cols.BorderStyle.Peek(idx)
	if base == store.BorderNone && haveVariant {
		base = resolved.Border
	}
	baseColor := cols.BorderColor.Peek(idx)
	if baseColor == store.Transparent {
		if haveVariant && resolved.BorderColor != store.Transparent {
			baseColor = resolved.BorderColor
		} else {
			baseColor = st.fg
		}
	}

	perSide := [4]store.BorderStyle{
		cols.BorderTop.Peek(idx), cols.BorderRight.Peek(idx),
		cols.BorderBottom.Peek(idx), cols.BorderLeft.Peek(idx),
	}
	perSideColor := [4]store.RGBA{
		cols.BorderColorTop.Peek(idx), cols.BorderColorRight.Peek(idx),
		cols.BorderColorBottom.Peek(idx), cols.BorderColorLeft.Peek(idx),
	}
	for i := 0; i < 4; i++ {
		style := perSide[i]
		if style == store.BorderNone {
			style = base
		}
		st.borderStyle[i] = style

		color := perSideColor[i]
		if color == store.Transparent {
			color = baseColor
		}
		st.borderColor[i] = color
	}

	return st
}
