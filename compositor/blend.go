package compositor

import "github.com/loomtui/loom/store"

// blendOver composites src over dst using straight alpha, src.a scaled by
// opacity (spec §4.4 step 2c: "out = src.rgb * src.a + dst.rgb * (1 - src.a)").
func blendOver(dst, src store.RGBA, opacity float64) store.RGBA {
	srcA := (float64(src.A) / 255) * clamp01(opacity)
	if srcA <= 0 {
		return dst
	}
	if srcA >= 1 {
		return src
	}
	inv := 1 - srcA
	return store.RGBA{
		R: blendChannel(dst.R, src.R, srcA, inv),
		G: blendChannel(dst.G, src.G, srcA, inv),
		B: blendChannel(dst.B, src.B, srcA, inv),
		A: blendChannel(dst.A, src.A, srcA, inv),
	}
}

func blendChannel(dst, src uint8, srcA, inv float64) uint8 {
	v := float64(src)*srcA + float64(dst)*inv
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
