package pipeline

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

func smoothstep(lo, hi, x float64) float64 {
	t := mgl64.Clamp((x-lo)/(hi-lo), 0, 1)
	return t * t * (3 - 2*t)
}

func mix(a, b, t float64) float64 { return a*(1-t) + b*t }

func mixVec(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return mgl64.Vec3{mix(a[0], b[0], t), mix(a[1], b[1], t), mix(a[2], b[2], t)}
}

func mulVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// unit clamps v to [0, 1]. NaN and infinities map to 0.
func unit(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return mgl64.Clamp(v, 0, 1)
}

func unitVec(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{unit(v[0]), unit(v[1]), unit(v[2])}
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func clampVec(v mgl64.Vec3, lo, hi float64) mgl64.Vec3 {
	return mgl64.Vec3{mgl64.Clamp(v[0], lo, hi), mgl64.Clamp(v[1], lo, hi), mgl64.Clamp(v[2], lo, hi)}
}
