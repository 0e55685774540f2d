// Package noise provides the lattice noise kernels sampled by the caustic field.
package noise

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// LatticePeriod is the wrap modulus applied to lattice indices.
const LatticePeriod = 289.0

const (
	skew   = 1.0 / 3.0
	unskew = 1.0 / 6.0

	// falloff is the squared radius of a simplex corner's contribution.
	falloff = 0.6
	// amplitude rescales the corner sum to roughly [-1, 1].
	amplitude = 42.0
)

// Wrap289 reduces x into [0, 289) while keeping it congruent to x modulo 289.
// Non-finite input yields 0.
func Wrap289(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	r := math.Mod(x, LatticePeriod)
	if r < 0 {
		r += LatticePeriod
	}
	if r >= LatticePeriod || r == 0 {
		return 0
	}
	return r
}

func permute(x float64) float64 {
	return Wrap289((x*34 + 1) * x)
}

// Gradient3D evaluates 3D simplex noise at v. The first three components of the
// result are the analytic gradient and the fourth is the noise value, roughly in
// [-1, 1]. Gradients are not normalized.
func Gradient3D(v mgl64.Vec3) mgl64.Vec4 {
	s := v.Dot(mgl64.Vec3{skew, skew, skew})
	i := mgl64.Vec3{math.Floor(v[0] + s), math.Floor(v[1] + s), math.Floor(v[2] + s)}
	t := i.Dot(mgl64.Vec3{unskew, unskew, unskew})
	x0 := v.Sub(i).Add(mgl64.Vec3{t, t, t})

	// Rank the offsets to find the two middle corners of the simplex.
	g := mgl64.Vec3{step(x0[1], x0[0]), step(x0[2], x0[1]), step(x0[0], x0[2])}
	l := mgl64.Vec3{1 - g[0], 1 - g[1], 1 - g[2]}
	i1 := mgl64.Vec3{math.Min(g[0], l[2]), math.Min(g[1], l[0]), math.Min(g[2], l[1])}
	i2 := mgl64.Vec3{math.Max(g[0], l[2]), math.Max(g[1], l[0]), math.Max(g[2], l[1])}

	corners := [4]mgl64.Vec3{
		x0,
		x0.Sub(i1).Add(mgl64.Vec3{unskew, unskew, unskew}),
		x0.Sub(i2).Add(mgl64.Vec3{skew, skew, skew}),
		x0.Sub(mgl64.Vec3{0.5, 0.5, 0.5}),
	}

	iw := mgl64.Vec3{Wrap289(i[0]), Wrap289(i[1]), Wrap289(i[2])}
	var hashes [4]float64
	for c := 0; c < 4; c++ {
		var o mgl64.Vec3
		switch c {
		case 1:
			o = i1
		case 2:
			o = i2
		case 3:
			o = mgl64.Vec3{1, 1, 1}
		}
		p := permute(iw[2] + o[2])
		p = permute(p + iw[1] + o[1])
		hashes[c] = permute(p + iw[0] + o[0])
	}

	grads := latticeGradients(hashes)

	var grad mgl64.Vec3
	var value float64
	for c := 0; c < 4; c++ {
		x := corners[c]
		m := math.Max(falloff-x.Dot(x), 0)
		m2 := m * m
		m3 := m2 * m
		m4 := m2 * m2
		d := x.Dot(grads[c])
		grad = grad.Add(x.Mul(-6 * m3 * d)).Add(grads[c].Mul(m4))
		value += m4 * d
	}
	return mgl64.Vec4{amplitude * grad[0], amplitude * grad[1], amplitude * grad[2], amplitude * value}
}

// latticeGradients maps corner hashes onto a 7x7 grid folded over an octahedron.
func latticeGradients(p [4]float64) [4]mgl64.Vec3 {
	var x, y, h [4]float64
	for k := 0; k < 4; k++ {
		j := p[k] - 49*math.Floor(p[k]/49)
		xf := math.Floor(j / 7)
		yf := math.Floor(j - 7*xf)
		x[k] = (xf*2+0.5)/7 - 1
		y[k] = (yf*2+0.5)/7 - 1
		h[k] = 1 - math.Abs(x[k]) - math.Abs(y[k])
	}

	var out [4]mgl64.Vec3
	for k := 0; k < 4; k++ {
		gx, gy := x[k], y[k]
		if h[k] <= 0 {
			gx -= math.Floor(gx)*2 + 1
			gy -= math.Floor(gy)*2 + 1
		}
		out[k] = mgl64.Vec3{gx, gy, h[k]}
	}
	return out
}

// step returns 0 when x < edge and 1 otherwise.
func step(edge, x float64) float64 {
	if x < edge {
		return 0
	}
	return 1
}
