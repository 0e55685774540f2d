package noise

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// FractalOctaves is the octave count used by Fractal2D callers by default.
const FractalOctaves = 3

// Value2D evaluates hash-based value noise at p. The result lies in [0, 1].
func Value2D(p mgl64.Vec2) float64 {
	ix, iy := math.Floor(p[0]), math.Floor(p[1])
	fx, fy := p[0]-ix, p[1]-iy

	a := hash2(ix, iy)
	b := hash2(ix+1, iy)
	c := hash2(ix, iy+1)
	d := hash2(ix+1, iy+1)

	ux := fx * fx * (3 - 2*fx)
	uy := fy * fy * (3 - 2*fy)

	return a + (b-a)*ux + (c-a)*uy*(1-ux) + (d-b)*ux*uy
}

// Fractal2D sums octaves of Value2D at doubling frequency with the weight
// halving per octave, starting at 0.5.
func Fractal2D(p mgl64.Vec2, octaves int) float64 {
	var sum float64
	freq, weight := 1.0, 0.5
	for o := 0; o < octaves; o++ {
		sum += Value2D(p.Mul(freq)) * weight
		freq *= 2
		weight *= 0.5
	}
	return sum
}

// hash2 maps an integer lattice point to a pseudo-random value in [0, 1).
func hash2(x, y float64) float64 {
	return fract(math.Sin(x*127.1+y*311.7) * 43758.5453)
}

func fract(x float64) float64 {
	f := x - math.Floor(x)
	if f >= 1 {
		return 0
	}
	return f
}
