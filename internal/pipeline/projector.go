package pipeline

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// minDenominator bounds |direction.y| away from zero in the plane intersection.
const minDenominator = 1e-6

var worldUp = mgl64.Vec3{0, 1, 0}

// Resolution is the size of the evaluated surface in pixels.
type Resolution struct {
	W, H int
}

func (r Resolution) vec() mgl64.Vec2 {
	return mgl64.Vec2{float64(max(r.W, 1)), float64(max(r.H, 1))}
}

// ViewRay is a camera ray through one pixel. Direction is unit length.
type ViewRay struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// Projector maps fragment coordinates onto the animated noise volume.
type Projector struct {
	ww, uu, vv mgl64.Vec3
	timeScale  float64
	tiling     float64
}

// NewProjector builds the orthonormal camera basis for cam. The tilt must not
// be parallel to the up axis; Config.Validate enforces this.
func NewProjector(cam Camera) Projector {
	ww := cam.Tilt.Normalize()
	uu := ww.Cross(worldUp).Normalize()
	vv := uu.Cross(ww).Normalize()
	return Projector{ww: ww, uu: uu, vv: vv, timeScale: cam.TimeScale, tiling: cam.Tiling}
}

// NDC converts a fragment coordinate to viewport-centered coordinates scaled by
// the resolution height, so feature size follows vertical resolution.
func NDC(frag mgl64.Vec2, res Resolution) mgl64.Vec2 {
	r := res.vec()
	return mgl64.Vec2{(2*frag[0] - r[0]) / r[1], (2*frag[1] - r[1]) / r[1]}
}

// Ray returns the view ray through frag.
func (p Projector) Ray(frag mgl64.Vec2, res Resolution) ViewRay {
	n := NDC(frag, res)
	rd := p.uu.Mul(n[0]).Add(p.vv.Mul(n[1])).Add(p.ww)
	return ViewRay{Origin: p.ww, Direction: rd.Normalize()}
}

// Project intersects the ray through frag with the reference plane, replaces
// the vertical axis with the time slice t*timeScale and applies tiling.
func (p Projector) Project(frag mgl64.Vec2, res Resolution, t float64) mgl64.Vec3 {
	ray := p.Ray(frag, res)
	dy := clampDenominator(ray.Direction[1])
	pos := ray.Origin.Add(ray.Direction.Mul(ray.Origin[1] / dy))
	pos[1] = t * p.timeScale
	return pos.Mul(p.tiling)
}

func clampDenominator(d float64) float64 {
	if math.IsNaN(d) {
		return minDenominator
	}
	if math.Abs(d) >= minDenominator {
		return d
	}
	if d < 0 {
		return -minDenominator
	}
	return minDenominator
}
