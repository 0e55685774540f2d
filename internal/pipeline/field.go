package pipeline

import (
	"caustics/internal/noise"

	"github.com/go-gl/mathgl/mgl64"
)

// Warp derives caustic intensity by recursive domain warping. Each pass samples
// gradient noise, steps the position against the gradient, and the position is
// scaled by Growth after the first pass only. The last pass's noise value is
// returned.
func Warp(pos mgl64.Vec3, p WarpParams) float64 {
	n := noise.Gradient3D(pos)
	for pass := 1; pass < p.Passes; pass++ {
		pos = pos.Sub(n.Vec3().Mul(p.Strength))
		if pass == 1 {
			pos = pos.Mul(p.Growth)
		}
		n = noise.Gradient3D(pos)
	}
	return n[3]
}

// FractalSum derives caustic intensity from octaves of 2D value noise over the
// plane coordinates of pos, drifting with time. The sum is left unnormalized.
func FractalSum(pos mgl64.Vec3, t float64, p FractalParams) float64 {
	q := mgl64.Vec2{pos[0], pos[2]}
	drift := mgl64.Vec2{t * p.Rate, t * p.Rate}
	var sum float64
	scale := 1.0
	for o := 0; o < p.Octaves; o++ {
		sum += noise.Value2D(q.Mul(scale).Add(drift)) * p.Weight
		scale *= 2
	}
	return sum
}

// caustic samples the configured field at pos.
func (c *Config) caustic(pos mgl64.Vec3, t float64) float64 {
	if c.Field == FieldFractal {
		return FractalSum(pos, t, c.Fractal)
	}
	return Warp(pos, c.Warp)
}
