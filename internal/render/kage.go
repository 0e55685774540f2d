//go:build ebiten

package render

import (
	"context"
	_ "embed"
	"fmt"

	"caustics/internal/pipeline"

	"github.com/hajimehoshi/ebiten/v2"
)

//go:embed caustics.kage
var causticsKage []byte

const (
	maxKageLayers = 3
	maxKagePasses = 8
)

// Surface is implemented by backends that render into an ebiten image.
type Surface interface {
	Backend
	Surface() *ebiten.Image
}

// Kage evaluates the pipeline in a fragment shader.
type Kage struct {
	shader   *ebiten.Shader
	target   *ebiten.Image
	res      pipeline.Resolution
	compiled *pipeline.Pipeline
	uniforms map[string]any
}

// KageSource compiles the embedded shader. It fails with ErrUnsupported for
// configurations the shader does not implement.
func KageSource() Source {
	return Source{
		Name: "kage",
		Open: func(_ context.Context, cfg pipeline.Config, res pipeline.Resolution) (Backend, error) {
			if err := kageSupports(cfg); err != nil {
				return nil, err
			}
			shader, err := ebiten.NewShader(causticsKage)
			if err != nil {
				return nil, fmt.Errorf("compile shader: %w", err)
			}
			k := &Kage{shader: shader}
			if err := k.Resize(res); err != nil {
				shader.Dispose()
				return nil, err
			}
			return k, nil
		},
	}
}

func kageSupports(cfg pipeline.Config) error {
	switch {
	case cfg.Field != pipeline.FieldWarp:
		return fmt.Errorf("%w: kage: %s field", ErrUnsupported, cfg.Field)
	case len(cfg.Composite.Layers) > maxKageLayers:
		return fmt.Errorf("%w: kage: %d layers", ErrUnsupported, len(cfg.Composite.Layers))
	case cfg.Warp.Passes > maxKagePasses:
		return fmt.Errorf("%w: kage: %d warp passes", ErrUnsupported, cfg.Warp.Passes)
	}
	return nil
}

// Name returns the backend identifier.
func (k *Kage) Name() string { return "kage" }

// Supports reports whether cfg can be rendered without reopening.
func (k *Kage) Supports(cfg pipeline.Config) error { return kageSupports(cfg) }

// Resize reallocates the render target when res changes.
func (k *Kage) Resize(res pipeline.Resolution) error {
	if res.W <= 0 || res.H <= 0 {
		return fmt.Errorf("render: kage: empty resolution %dx%d", res.W, res.H)
	}
	if k.target != nil && k.res == res {
		return nil
	}
	if k.target != nil {
		k.target.Dispose()
	}
	k.target = ebiten.NewImage(res.W, res.H)
	k.res = res
	return nil
}

// Render draws one frame into the render target.
func (k *Kage) Render(rc pipeline.RenderContext) error {
	if rc.Pipeline == nil {
		return fmt.Errorf("render: kage: nil pipeline")
	}
	if err := k.Resize(rc.Resolution); err != nil {
		return err
	}
	if rc.Pipeline != k.compiled {
		cfg := rc.Pipeline.Config()
		if err := kageSupports(cfg); err != nil {
			return err
		}
		k.uniforms = kageUniforms(cfg)
		k.compiled = rc.Pipeline
	}
	k.uniforms["Time"] = float32(rc.Time)
	k.uniforms["Resolution"] = []float32{float32(rc.Resolution.W), float32(rc.Resolution.H)}

	k.target.Clear()
	op := &ebiten.DrawRectShaderOptions{Uniforms: k.uniforms}
	k.target.DrawRectShader(rc.Resolution.W, rc.Resolution.H, k.shader, op)
	return nil
}

// Surface returns the render target.
func (k *Kage) Surface() *ebiten.Image { return k.target }

// Close releases the shader and render target.
func (k *Kage) Close() error {
	if k.target != nil {
		k.target.Dispose()
		k.target = nil
	}
	k.shader.Dispose()
	return nil
}

func kageUniforms(cfg pipeline.Config) map[string]any {
	comp := cfg.Composite
	layers := pipeline.CascadeOrder(comp.Layers)
	if comp.Strategy == pipeline.StrategyLinearMix {
		layers = comp.Layers
	}
	var colors [maxKageLayers][]float32
	var thresholds, offsets [maxKageLayers]float32
	for i := range colors {
		colors[i] = []float32{0, 0, 0}
		if i < len(layers) {
			l := layers[i]
			colors[i] = []float32{float32(l.Color[0]), float32(l.Color[1]), float32(l.Color[2])}
			thresholds[i] = float32(l.Threshold)
			offsets[i] = float32(l.Offset)
		}
	}

	fx := cfg.PostFX
	return map[string]any{
		"Tilt":      vec3(cfg.Camera.Tilt),
		"TimeScale": float32(cfg.Camera.TimeScale),
		"Tiling":    float32(cfg.Camera.Tiling),

		"Passes":   float32(cfg.Warp.Passes),
		"Growth":   float32(cfg.Warp.Growth),
		"Strength": float32(cfg.Warp.Strength),

		"Strategy":    flag(comp.Strategy == pipeline.StrategyLinearMix),
		"LayerCount":  float32(len(layers)),
		"Color0":      colors[0],
		"Color1":      colors[1],
		"Color2":      colors[2],
		"Thresholds":  thresholds[:],
		"Offsets":     offsets[:],
		"Exponential": flag(comp.Intensity == pipeline.IntensityExp),
		"Bias":        float32(comp.Bias),
		"LowEdge":     float32(comp.LowEdge),
		"HighEdge":    float32(comp.HighEdge),
		"ColorWeight": float32(comp.ColorWeight),
		"AlphaWeight": float32(comp.AlphaWeight),

		"Pixelate":          float32(fx.Pixelate),
		"Echo":              flag(fx.Echo.Enabled),
		"EchoFactor":        float32(fx.Echo.Factor),
		"EchoTint":          vec3(fx.Echo.Tint),
		"EchoGain":          float32(fx.Echo.Gain),
		"EchoWeight":        float32(fx.Echo.Weight),
		"EchoRebalance":     float32(fx.Echo.Rebalance),
		"CRT":               flag(fx.CRT.Enabled),
		"CRTWeight":         float32(fx.CRT.Weight),
		"Vignette":          flag(fx.Vignette.Enabled),
		"VignetteInner":     float32(fx.Vignette.Inner),
		"VignetteOuter":     float32(fx.Vignette.Outer),
		"VignetteFloor":     float32(fx.Vignette.Floor),
		"VignetteIntensity": float32(fx.Vignette.Intensity),
	}
}

func vec3(v [3]float64) []float32 {
	return []float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

func flag(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
