// Package pipeline evaluates the procedural caustics effect for a single pixel.
//
// A Config is compiled once into a Pipeline; every frame a RenderContext is built
// from the current time and resolution and passed by value to Shade.
package pipeline

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"caustics/internal/noise"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidConfig is wrapped by every Config validation failure.
var ErrInvalidConfig = errors.New("pipeline: invalid config")

// FieldKind selects how caustic intensity is derived from the noise kernel.
type FieldKind string

const (
	// FieldWarp feeds each pass's gradient back into the next sample position.
	FieldWarp FieldKind = "warp"
	// FieldFractal sums value-noise octaves.
	FieldFractal FieldKind = "fractal"
)

// Strategy selects how layer samples are combined into one color.
type Strategy string

const (
	// StrategyCascade lets the most important layer above its threshold win.
	StrategyCascade Strategy = "cascade"
	// StrategyLinearMix blends exactly two layers with fixed weights.
	StrategyLinearMix Strategy = "mix"
)

// IntensityMap converts a caustic sample into the value fed to smoothstep.
type IntensityMap string

const (
	// IntensityExp maps c to exp(c - bias).
	IntensityExp IntensityMap = "exp"
	// IntensityLinear maps c to c - bias.
	IntensityLinear IntensityMap = "linear"
)

// Defaults for the recursive warp and camera. The warp constants are empirical.
const (
	DefaultWarpPasses    = 4
	DefaultWarpGrowth    = 1.62
	DefaultWarpStrength  = 0.07
	DefaultTimeScale     = 0.02
	DefaultTiling        = 0.7
	DefaultLowEdge       = 0.6
	DefaultHighEdge      = 0.8
	DefaultFractalWeight = 0.5
)

// DefaultTilt is the fixed up-tilted view vector of the stylized camera.
var DefaultTilt = mgl64.Vec3{0, 1, 0.5}

// Layer is one compositing channel.
type Layer struct {
	Name  string
	Color mgl64.Vec3
	// Priority ranks the layer; 1 is the most important and is written last.
	Priority  int
	Threshold float64
	// Offset is added to every axis of the sample position to decorrelate layers.
	Offset float64
}

// WarpParams configures the recursive domain warp.
type WarpParams struct {
	Passes   int
	Growth   float64
	Strength float64
}

// FractalParams configures the fractal value-noise sum.
type FractalParams struct {
	Octaves int
	Weight  float64
	Rate    float64
}

// Camera configures the view projection.
type Camera struct {
	Tilt      mgl64.Vec3
	TimeScale float64
	Tiling    float64
}

// Composite configures the layer compositor.
type Composite struct {
	Strategy  Strategy
	Layers    []Layer
	Intensity IntensityMap
	Bias      float64
	LowEdge   float64
	HighEdge  float64
	// ColorWeight and AlphaWeight are used by StrategyLinearMix only.
	ColorWeight float64
	AlphaWeight float64
}

// Config is the immutable description of a render session. Changing behavior
// means building a new Config.
type Config struct {
	Name        string
	Kernel      noise.Kind
	Field       FieldKind
	Warp        WarpParams
	Fractal     FractalParams
	Camera      Camera
	Composite   Composite
	PostFX      PostFX
	RenderScale float64
	Antialias   bool
}

// DefaultLayers returns the red/green/blue palette of the cascade profiles.
func DefaultLayers() []Layer {
	return []Layer{
		{Name: "red", Color: mgl64.Vec3{0.98, 0.17, 0.21}, Priority: 1, Threshold: 0.6, Offset: 0},
		{Name: "green", Color: mgl64.Vec3{0, 0.79, 0.32}, Priority: 2, Threshold: 0.4, Offset: 1},
		{Name: "blue", Color: mgl64.Vec3{0.17, 0.5, 1}, Priority: 3, Threshold: 0.2, Offset: -1},
	}
}

// Default returns the high-fidelity configuration: gradient noise, recursive
// warp, three-layer cascade, no post effects.
func Default() Config {
	return Config{
		Name:   "default",
		Kernel: noise.KindGradient3D,
		Field:  FieldWarp,
		Warp: WarpParams{
			Passes:   DefaultWarpPasses,
			Growth:   DefaultWarpGrowth,
			Strength: DefaultWarpStrength,
		},
		Fractal: FractalParams{
			Octaves: noise.FractalOctaves,
			Weight:  DefaultFractalWeight,
			Rate:    0.05,
		},
		Camera: Camera{
			Tilt:      DefaultTilt,
			TimeScale: DefaultTimeScale,
			Tiling:    DefaultTiling,
		},
		Composite: Composite{
			Strategy:    StrategyCascade,
			Layers:      DefaultLayers(),
			Intensity:   IntensityExp,
			LowEdge:     DefaultLowEdge,
			HighEdge:    DefaultHighEdge,
			ColorWeight: 0.5,
			AlphaWeight: 0.9,
		},
		PostFX:      PostFX{Echo: DefaultEcho(), CRT: DefaultCRT(), Vignette: DefaultVignette()},
		RenderScale: 0.5,
	}
}

// Clone returns a deep copy so the receiver can never be mutated through it.
func (c Config) Clone() Config {
	c.Composite.Layers = slices.Clone(c.Composite.Layers)
	return c
}

// nonFinite names the first float field of c that is NaN or infinite.
func (c Config) nonFinite() (string, bool) {
	fields := []struct {
		name string
		vals []float64
	}{
		{"warp", []float64{c.Warp.Growth, c.Warp.Strength}},
		{"fractal", []float64{c.Fractal.Weight, c.Fractal.Rate}},
		{"camera", []float64{c.Camera.Tilt[0], c.Camera.Tilt[1], c.Camera.Tilt[2], c.Camera.TimeScale, c.Camera.Tiling}},
		{"composite", []float64{c.Composite.Bias, c.Composite.LowEdge, c.Composite.HighEdge, c.Composite.ColorWeight, c.Composite.AlphaWeight}},
		{"echo", []float64{c.PostFX.Echo.Factor, c.PostFX.Echo.Gain, c.PostFX.Echo.Weight, c.PostFX.Echo.Rebalance,
			c.PostFX.Echo.Tint[0], c.PostFX.Echo.Tint[1], c.PostFX.Echo.Tint[2]}},
		{"crt", []float64{c.PostFX.CRT.Weight}},
		{"vignette", []float64{c.PostFX.Vignette.Inner, c.PostFX.Vignette.Outer, c.PostFX.Vignette.Floor, c.PostFX.Vignette.Intensity}},
		{"pixelate", []float64{c.PostFX.Pixelate}},
		{"render scale", []float64{c.RenderScale}},
	}
	for _, f := range fields {
		if !finite(f.vals...) {
			return f.name, true
		}
	}
	for _, l := range c.Composite.Layers {
		if !finite(l.Threshold, l.Offset, l.Color[0], l.Color[1], l.Color[2]) {
			return "layer " + l.Name, true
		}
	}
	return "", false
}

// Validate reports the first inconsistency in c.
func (c Config) Validate() error {
	switch c.Kernel {
	case noise.KindGradient3D:
		if c.Field != FieldWarp {
			return fmt.Errorf("%w: kernel %s requires field %s", ErrInvalidConfig, c.Kernel, FieldWarp)
		}
		if c.Warp.Passes < 1 {
			return fmt.Errorf("%w: warp passes %d < 1", ErrInvalidConfig, c.Warp.Passes)
		}
	case noise.KindValue2D:
		if c.Field != FieldFractal {
			return fmt.Errorf("%w: kernel %s requires field %s", ErrInvalidConfig, c.Kernel, FieldFractal)
		}
		if c.Fractal.Octaves < 1 {
			return fmt.Errorf("%w: fractal octaves %d < 1", ErrInvalidConfig, c.Fractal.Octaves)
		}
	default:
		return fmt.Errorf("%w: unknown kernel %q", ErrInvalidConfig, c.Kernel)
	}

	if name, ok := c.nonFinite(); ok {
		return fmt.Errorf("%w: %s is not finite", ErrInvalidConfig, name)
	}

	tilt := c.Camera.Tilt
	if tilt.Len() == 0 {
		return fmt.Errorf("%w: camera tilt is zero", ErrInvalidConfig)
	}
	if tilt.Normalize().Cross(worldUp).Len() < 1e-6 {
		return fmt.Errorf("%w: camera tilt %v is parallel to the up axis", ErrInvalidConfig, tilt)
	}
	if c.Camera.Tiling <= 0 {
		return fmt.Errorf("%w: tiling %g <= 0", ErrInvalidConfig, c.Camera.Tiling)
	}

	comp := c.Composite
	if comp.Intensity != IntensityExp && comp.Intensity != IntensityLinear {
		return fmt.Errorf("%w: unknown intensity map %q", ErrInvalidConfig, comp.Intensity)
	}
	if !(comp.LowEdge < comp.HighEdge) {
		return fmt.Errorf("%w: smoothstep edges %g..%g", ErrInvalidConfig, comp.LowEdge, comp.HighEdge)
	}
	switch comp.Strategy {
	case StrategyCascade:
		if len(comp.Layers) == 0 {
			return fmt.Errorf("%w: cascade needs at least one layer", ErrInvalidConfig)
		}
	case StrategyLinearMix:
		if len(comp.Layers) != 2 {
			return fmt.Errorf("%w: linear mix needs exactly 2 layers, got %d", ErrInvalidConfig, len(comp.Layers))
		}
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, comp.Strategy)
	}
	seen := make(map[int]string, len(comp.Layers))
	for _, l := range comp.Layers {
		if prev, ok := seen[l.Priority]; ok {
			return fmt.Errorf("%w: layers %q and %q share priority %d", ErrInvalidConfig, prev, l.Name, l.Priority)
		}
		seen[l.Priority] = l.Name
	}

	if p := c.PostFX.Pixelate; p < 0 || math.IsNaN(p) {
		return fmt.Errorf("%w: pixelate block %g", ErrInvalidConfig, p)
	}
	return nil
}
