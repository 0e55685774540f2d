package pipeline

import (
	"cmp"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// LayerSample pairs a layer with its coverage at one pixel.
type LayerSample struct {
	Layer Layer
	Alpha float64
}

// Result is the composited color of one pixel before output clamping.
type Result struct {
	RGB   mgl64.Vec3
	Alpha float64
}

// Premultiplied returns RGB scaled by Alpha.
func (r Result) Premultiplied() mgl64.Vec3 { return r.RGB.Mul(r.Alpha) }

// Cascade composites samples by priority. Starting from transparent, layers are
// visited from least to most important and a layer overwrites the result only
// when its alpha exceeds its own threshold, so the most important qualifying
// layer always wins and hues never blend. The input is not modified.
func Cascade(samples []LayerSample) Result {
	ordered := slices.Clone(samples)
	sortForCascade(ordered)
	return cascadeOrdered(ordered)
}

// LinearMix blends two samples: color by colorWeight, alpha by alphaWeight.
// Layer thresholds are ignored.
func LinearMix(a, b LayerSample, colorWeight, alphaWeight float64) Result {
	return Result{
		RGB:   mixVec(a.Layer.Color, b.Layer.Color, colorWeight),
		Alpha: mix(a.Alpha, b.Alpha, alphaWeight),
	}
}

// CascadeOrder returns a copy of layers in the order Cascade visits them,
// least important first.
func CascadeOrder(layers []Layer) []Layer {
	out := slices.Clone(layers)
	slices.SortStableFunc(out, func(a, b Layer) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	return out
}

// sortForCascade orders layers so that priority 1 comes last.
func sortForCascade(samples []LayerSample) {
	slices.SortStableFunc(samples, func(a, b LayerSample) int {
		return cmp.Compare(b.Layer.Priority, a.Layer.Priority)
	})
}

func cascadeOrdered(samples []LayerSample) Result {
	var out Result
	for _, s := range samples {
		if s.Alpha > s.Layer.Threshold {
			out = Result{RGB: s.Layer.Color, Alpha: s.Alpha}
		}
	}
	return out
}

// coverage maps a caustic sample to layer alpha.
func (c *Composite) coverage(caustic float64) float64 {
	i := caustic - c.Bias
	if c.Intensity == IntensityExp {
		i = math.Exp(i)
	}
	return smoothstep(c.LowEdge, c.HighEdge, i)
}
