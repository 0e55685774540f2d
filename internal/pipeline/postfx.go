package pipeline

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PostFX holds the optional stages applied around compositing. Pixelate runs
// before projection; Echo, CRT and Vignette run after compositing, in that order.
type PostFX struct {
	// Pixelate is the block size in pixels; values <= 1 disable it.
	Pixelate float64
	Echo     Echo
	CRT      CRT
	Vignette Vignette
}

// Echo recomposites slightly earlier in the time slice and blends the result
// back as a cool-tinted trail.
type Echo struct {
	Enabled bool
	// Factor is the time-slice offset in units of the camera time scale.
	Factor    float64
	Tint      mgl64.Vec3
	Gain      float64
	Weight    float64
	Rebalance float64
}

// CRT applies a scanline and aperture-grille mask.
type CRT struct {
	Enabled bool
	Weight  float64
}

// Vignette darkens the surface towards its corners.
type Vignette struct {
	Enabled   bool
	Inner     float64
	Outer     float64
	Floor     float64
	Intensity float64
}

// DefaultEcho returns the disabled echo stage with its tuned parameters.
func DefaultEcho() Echo {
	return Echo{Factor: 0.9, Tint: mgl64.Vec3{0.82, 0.87, 0.97}, Gain: 0.6, Weight: 0.25, Rebalance: 0.4}
}

// DefaultCRT returns the disabled CRT stage with its tuned parameters.
func DefaultCRT() CRT { return CRT{Weight: 0.07} }

// DefaultVignette returns the disabled vignette stage with its tuned parameters.
func DefaultVignette() Vignette {
	return Vignette{Inner: 0.55, Outer: 0.9, Floor: 0.58, Intensity: 0.8}
}

var (
	grilleR = mgl64.Vec3{1.02, 0.97, 0.97}
	grilleG = mgl64.Vec3{0.97, 1.02, 0.97}
	grilleB = mgl64.Vec3{0.97, 0.97, 1.02}
)

// pixelate snaps a fragment coordinate to the center of its size*size block.
func pixelate(frag mgl64.Vec2, size float64) mgl64.Vec2 {
	if size <= 1 {
		return frag
	}
	return mgl64.Vec2{
		math.Floor(frag[0]/size)*size + size*0.5,
		math.Floor(frag[1]/size)*size + size*0.5,
	}
}

// blend folds a premultiplied trail color into base and pulls the result back
// towards the dominant color.
func (e Echo) blend(base, trail mgl64.Vec3) mgl64.Vec3 {
	trail = mulVec(trail, e.Tint)
	boosted := clampVec(base.Add(trail.Mul(e.Gain)), 0, 1)
	c := mixVec(base, boosted, e.Weight)
	return mixVec(c, base, e.Rebalance)
}

func (c CRT) apply(rgb mgl64.Vec3, frag mgl64.Vec2) mgl64.Vec3 {
	scan := 0.92 + 0.08*math.Sin(frag[1]*math.Pi)
	var grille mgl64.Vec3
	switch triad := math.Mod(frag[0], 3); {
	case triad < 1:
		grille = grilleR
	case triad < 2:
		grille = grilleG
	default:
		grille = grilleB
	}
	masked := mulVec(rgb, grille.Mul(scan))
	return mixVec(rgb, masked, c.Weight)
}

func (v Vignette) apply(rgb mgl64.Vec3, frag mgl64.Vec2, res Resolution) mgl64.Vec3 {
	r := res.vec()
	uv := mgl64.Vec2{frag[0] / r[0], frag[1] / r[1]}
	d := uv.Sub(mgl64.Vec2{0.5, 0.5}).Len()
	vig := smoothstep(v.Inner, v.Outer, d)
	return rgb.Mul(mix(1, v.Floor, vig*v.Intensity))
}
