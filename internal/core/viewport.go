package core

import "math"

// DefaultRenderScale renders at half the surface resolution.
const DefaultRenderScale = 0.5

// Viewport holds the resolution-derived state of a render surface: the outer
// surface size and the reduced size the pipeline is evaluated at.
type Viewport struct {
	Surface Size
	Scale   float64
	Render  Size
}

// NewViewport derives a viewport for a w*h surface rendered at scale.
func NewViewport(w, h int, scale float64) Viewport {
	return Viewport{Scale: normalizeScale(scale)}.with(w, h)
}

// Resize returns the viewport for a new surface size and whether the render
// resolution changed. Resizing to the current size is a no-op.
func (v Viewport) Resize(w, h int) (Viewport, bool) {
	next := v.with(w, h)
	return next, next.Render != v.Render
}

func (v Viewport) with(w, h int) Viewport {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	scale := normalizeScale(v.Scale)
	return Viewport{
		Surface: Size{W: w, H: h},
		Scale:   scale,
		Render: Size{
			W: max(1, int(math.Floor(float64(w)*scale))),
			H: max(1, int(math.Floor(float64(h)*scale))),
		},
	}
}

func normalizeScale(s float64) float64 {
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return DefaultRenderScale
	}
	if s > 1 {
		return 1
	}
	return s
}
