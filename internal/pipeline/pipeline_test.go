package pipeline

import (
	"errors"
	"math"
	"testing"

	"caustics/internal/noise"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeLayers() []Layer {
	return []Layer{
		{Name: "one", Color: mgl64.Vec3{1, 0, 0}, Priority: 1, Threshold: 0.6},
		{Name: "two", Color: mgl64.Vec3{0, 1, 0}, Priority: 2, Threshold: 0.4},
		{Name: "three", Color: mgl64.Vec3{0, 0, 1}, Priority: 3, Threshold: 0.2},
	}
}

func samplesFor(layers []Layer, alphas ...float64) []LayerSample {
	out := make([]LayerSample, len(layers))
	for i, l := range layers {
		out[i] = LayerSample{Layer: l, Alpha: alphas[i]}
	}
	return out
}

func TestCascadeMostImportantQualifyingLayerWins(t *testing.T) {
	layers := threeLayers()
	got := Cascade(samplesFor(layers, 0.9, 0.0, 0.5))
	assert.Equal(t, layers[0].Color, got.RGB)
	assert.Equal(t, 0.9, got.Alpha)
}

func TestCascadeProperty(t *testing.T) {
	layers := threeLayers()
	grid := []float64{0, 0.1, 0.2, 0.21, 0.4, 0.41, 0.5, 0.6, 0.61, 0.9, 1}
	for _, a1 := range grid {
		for _, a2 := range grid {
			for _, a3 := range grid {
				alphas := []float64{a1, a2, a3}
				got := Cascade(samplesFor(layers, alphas...))

				want := Result{}
				for i := range layers { // priority 1 first
					if alphas[i] > layers[i].Threshold {
						want = Result{RGB: layers[i].Color, Alpha: alphas[i]}
						break
					}
				}
				if got != want {
					t.Fatalf("alphas %v: got %+v, want %+v", alphas, got, want)
				}
			}
		}
	}
}

func TestCascadeIgnoresInputOrder(t *testing.T) {
	layers := threeLayers()
	forward := Cascade(samplesFor(layers, 0.7, 0.5, 0.3))
	reversed := samplesFor(layers, 0.7, 0.5, 0.3)
	reversed[0], reversed[2] = reversed[2], reversed[0]
	snapshot := append([]LayerSample(nil), reversed...)

	assert.Equal(t, forward, Cascade(reversed))
	assert.Equal(t, snapshot, reversed, "Cascade must not reorder its input")
}

func TestCascadeTransparentWhenNothingQualifies(t *testing.T) {
	got := Cascade(samplesFor(threeLayers(), 0.6, 0.4, 0.2))
	assert.Equal(t, Result{}, got, "thresholds are exclusive")
}

func TestLinearMixIgnoresThresholds(t *testing.T) {
	a := LayerSample{Layer: Layer{Color: mgl64.Vec3{1, 0, 0}, Threshold: 0.99}, Alpha: 0.3}
	b := LayerSample{Layer: Layer{Color: mgl64.Vec3{0, 0, 1}, Threshold: 0.99}, Alpha: 0.8}
	for _, w := range []float64{0, 0.25, 0.5, 0.9, 1} {
		got := LinearMix(a, b, 0.5, w)
		assert.Equal(t, a.Alpha*(1-w)+b.Alpha*w, got.Alpha)
		assert.Equal(t, mgl64.Vec3{0.5, 0, 0.5}, got.RGB)
	}
}

func TestProjectorClampsDenominator(t *testing.T) {
	// A tilt that makes the central ray nearly parallel to the plane.
	p := NewProjector(Camera{Tilt: mgl64.Vec3{0, 1e-9, 1}, TimeScale: 0.02, Tiling: 0.7})
	pos := p.Project(mgl64.Vec2{50, 50}, Resolution{W: 100, H: 100}, 3)
	for i, c := range pos {
		require.False(t, math.IsNaN(c) || math.IsInf(c, 0), "component %d is %g", i, c)
	}
	assert.InDelta(t, 3*0.02*0.7, pos[1], 1e-12)
}

func TestProjectorRayIsNormalized(t *testing.T) {
	p := NewProjector(Default().Camera)
	for _, frag := range []mgl64.Vec2{{0.5, 0.5}, {50.5, 20.5}, {99.5, 99.5}} {
		ray := p.Ray(frag, Resolution{W: 100, H: 60})
		assert.InDelta(t, 1, ray.Direction.Len(), 1e-12)
	}
}

func TestNDCIsCenteredAndHeightScaled(t *testing.T) {
	res := Resolution{W: 200, H: 100}
	assert.Equal(t, mgl64.Vec2{0, 0}, NDC(mgl64.Vec2{100, 50}, res))
	assert.Equal(t, mgl64.Vec2{2, 1}, NDC(mgl64.Vec2{200, 100}, res))
}

func TestProjectTimeSlice(t *testing.T) {
	cfg := Default()
	p := NewProjector(cfg.Camera)
	a := p.Project(mgl64.Vec2{10.5, 10.5}, Resolution{W: 64, H: 64}, 0)
	b := p.Project(mgl64.Vec2{10.5, 10.5}, Resolution{W: 64, H: 64}, 10)
	assert.Equal(t, a[0], b[0])
	assert.Equal(t, a[2], b[2])
	assert.InDelta(t, 10*cfg.Camera.TimeScale*cfg.Camera.Tiling, b[1]-a[1], 1e-12)
}

func TestPixelateSnapsToBlockCenter(t *testing.T) {
	assert.Equal(t, mgl64.Vec2{1, 1}, pixelate(mgl64.Vec2{0.5, 1.5}, 2))
	assert.Equal(t, mgl64.Vec2{3, 5}, pixelate(mgl64.Vec2{2.5, 5.5}, 2))
	assert.Equal(t, mgl64.Vec2{2.5, 5.5}, pixelate(mgl64.Vec2{2.5, 5.5}, 1))
}

func TestWarpSinglePassIsPlainNoise(t *testing.T) {
	pos := mgl64.Vec3{0.3, 0.1, -0.4}
	assert.Equal(t, noise.Gradient3D(pos)[3], Warp(pos, WarpParams{Passes: 1, Growth: 1.62, Strength: 0.07}))
}

func TestFractalSumUnnormalized(t *testing.T) {
	p := FractalParams{Octaves: 3, Weight: 0.5, Rate: 0.1}
	for x := -4.0; x < 4; x += 0.29 {
		v := FractalSum(mgl64.Vec3{x, 0, -x * 0.7}, 1.5, p)
		if v < 0 || v > 1.5 {
			t.Fatalf("FractalSum out of [0, 1.5]: %g", v)
		}
	}
}

func TestCRTAndVignette(t *testing.T) {
	rgb := mgl64.Vec3{0.5, 0.5, 0.5}
	crt := DefaultCRT().apply(rgb, mgl64.Vec2{0.5, 0.5})
	scan := 0.92 + 0.08*math.Sin(0.5*math.Pi)
	assert.InDelta(t, mix(0.5, 0.5*1.02*scan, 0.07), crt[0], 1e-12)
	assert.InDelta(t, mix(0.5, 0.5*0.97*scan, 0.07), crt[1], 1e-12)

	v := DefaultVignette()
	res := Resolution{W: 100, H: 100}
	center := v.apply(rgb, mgl64.Vec2{50, 50}, res)
	assert.Equal(t, rgb, center, "center is untouched")
	corner := v.apply(rgb, mgl64.Vec2{0, 0}, res)
	assert.Less(t, corner[0], rgb[0])
	assert.GreaterOrEqual(t, corner[0], rgb[0]*0.58)
}

func TestEchoKeepsHueIdentity(t *testing.T) {
	e := DefaultEcho()
	base := mgl64.Vec3{0.98, 0.17, 0.21}
	same := e.blend(base, mgl64.Vec3{})
	for i := range base {
		assert.InDelta(t, base[i], same[i], 1e-12, "no trail, no change")
	}

	out := e.blend(base, mgl64.Vec3{0, 0.79, 0.32})
	assert.Greater(t, out[0], out[1], "dominant channel stays dominant")
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	cases := map[string]func(*Config){
		"kernel":      func(c *Config) { c.Kernel = "perlin" },
		"field":       func(c *Config) { c.Field = FieldFractal },
		"passes":      func(c *Config) { c.Warp.Passes = 0 },
		"tilt":        func(c *Config) { c.Camera.Tilt = mgl64.Vec3{0, 2, 0} },
		"tiling":      func(c *Config) { c.Camera.Tiling = 0 },
		"edges":       func(c *Config) { c.Composite.LowEdge = 0.9 },
		"mix layers":  func(c *Config) { c.Composite.Strategy = StrategyLinearMix },
		"no layers":   func(c *Config) { c.Composite.Layers = nil },
		"priorities":  func(c *Config) { c.Composite.Layers[1].Priority = 1 },
		"intensity":   func(c *Config) { c.Composite.Intensity = "log" },
		"pixelate":    func(c *Config) { c.PostFX.Pixelate = -2 },
		"strategy":    func(c *Config) { c.Composite.Strategy = "average" },
		"value field": func(c *Config) { c.Kernel = noise.KindValue2D },
		"nan time scale": func(c *Config) { c.Camera.TimeScale = math.NaN() },
		"inf tiling":     func(c *Config) { c.Camera.Tiling = math.Inf(1) },
		"inf strength":   func(c *Config) { c.Warp.Strength = math.Inf(-1) },
		"nan edge":       func(c *Config) { c.Composite.HighEdge = math.NaN() },
		"nan weight":     func(c *Config) { c.Composite.AlphaWeight = math.NaN() },
		"nan threshold":  func(c *Config) { c.Composite.Layers[2].Threshold = math.NaN() },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default().Clone()
			mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestNonFiniteOverridesAreRejected(t *testing.T) {
	cfg := ApplyOverrides(Default(), map[string]string{"time_scale": "NaN", "strategy": "mix"})
	cfg.Composite.Layers = cfg.Composite.Layers[:2]
	_, err := Compile(cfg)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestCloneIsDeep(t *testing.T) {
	a := Default()
	b := a.Clone()
	b.Composite.Layers[0].Threshold = 0.99
	assert.Equal(t, 0.6, a.Composite.Layers[0].Threshold)
}

func TestApplyOverrides(t *testing.T) {
	base := Default()
	got := ApplyOverrides(base, map[string]string{
		"tiling":        "1.5",
		"passes":        "0", // below minimum, ignored
		"growth":        "nope",
		"echo":          "true",
		"red_threshold": "0.75",
		"pixelate":      "3",
		"strategy":      "mix",
		"kernel":        "value2d",
		"unknown":       "1",
	})
	assert.Equal(t, 1.5, got.Camera.Tiling)
	assert.Equal(t, DefaultWarpPasses, got.Warp.Passes)
	assert.Equal(t, DefaultWarpGrowth, got.Warp.Growth)
	assert.True(t, got.PostFX.Echo.Enabled)
	assert.Equal(t, 0.75, got.Composite.Layers[0].Threshold)
	assert.Equal(t, 3.0, got.PostFX.Pixelate)
	assert.Equal(t, StrategyLinearMix, got.Composite.Strategy)
	assert.Equal(t, noise.KindValue2D, got.Kernel)

	assert.Equal(t, 0.6, base.Composite.Layers[0].Threshold, "base is untouched")
	assert.Contains(t, OverrideKeys(base), "blue_threshold")
}

func TestParametersSnapshot(t *testing.T) {
	snap := Default().Parameters()
	p, ok := snap.Lookup("passes")
	require.True(t, ok)
	assert.Equal(t, "4", p.Value)
	p, ok = snap.Lookup("green_threshold")
	require.True(t, ok)
	assert.Equal(t, "0.4", p.Value)
}
