package pipeline

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// maxStackLayers is the layer count composited without heap allocation.
const maxStackLayers = 8

// Color is a straight-alpha RGBA value with every channel in [0, 1].
type Color struct {
	R, G, B, A float64
}

// NRGBA converts c to an 8-bit non-premultiplied color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

func to8(v float64) uint8 {
	return uint8(unit(v)*255 + 0.5)
}

// Pipeline is a validated Config prepared for per-pixel evaluation. It is
// immutable and safe for concurrent use.
type Pipeline struct {
	cfg   Config
	proj  Projector
	order []Layer
}

// Compile validates cfg and prepares it for shading.
func Compile(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clone()
	return &Pipeline{cfg: cfg, proj: NewProjector(cfg.Camera), order: CascadeOrder(cfg.Composite.Layers)}, nil
}

// MustCompile is Compile for configurations known to be valid, such as the
// registered profiles.
func MustCompile(cfg Config) *Pipeline {
	p, err := Compile(cfg)
	if err != nil {
		panic(err)
	}
	return p
}

// Config returns a copy of the compiled configuration.
func (p *Pipeline) Config() Config { return p.cfg.Clone() }

// Name returns the configuration name.
func (p *Pipeline) Name() string { return p.cfg.Name }

// RenderContext carries the inputs of one frame. It is built fresh every tick
// and passed by value; nothing is carried between frames.
type RenderContext struct {
	Time       float64
	Resolution Resolution
	Pipeline   *Pipeline
}

// Shade evaluates the pixel at (x, y), counted from the bottom-left corner.
func (rc RenderContext) Shade(x, y int) Color {
	return rc.Pipeline.shade(x, y, rc.Resolution, rc.Time)
}

// Shade evaluates a single pixel of cfg without a render surface.
func Shade(x, y int, res Resolution, t float64, cfg Config) (Color, error) {
	p, err := Compile(cfg)
	if err != nil {
		return Color{}, fmt.Errorf("pipeline: shade: %w", err)
	}
	return p.shade(x, y, res, t), nil
}

func (p *Pipeline) shade(x, y int, res Resolution, t float64) Color {
	fx := &p.cfg.PostFX
	frag := mgl64.Vec2{float64(x) + 0.5, float64(y) + 0.5}

	pos := p.proj.Project(pixelate(frag, fx.Pixelate), res, t)
	r := p.composite(pos, t)
	rgb := r.RGB

	if fx.Echo.Enabled {
		trailPos := pos
		trailPos[1] -= fx.Echo.Factor * p.cfg.Camera.TimeScale
		trail := p.composite(trailPos, t).Premultiplied()
		rgb = fx.Echo.blend(rgb, trail)
	}
	if fx.CRT.Enabled {
		rgb = fx.CRT.apply(rgb, frag)
	}
	if fx.Vignette.Enabled {
		rgb = fx.Vignette.apply(rgb, frag, res)
	}

	rgb = unitVec(rgb)
	return Color{R: rgb[0], G: rgb[1], B: rgb[2], A: unit(r.Alpha)}
}

// composite samples every layer at pos and combines them.
func (p *Pipeline) composite(pos mgl64.Vec3, t float64) Result {
	comp := &p.cfg.Composite
	if comp.Strategy == StrategyLinearMix {
		a := p.sample(comp.Layers[0], pos, t)
		b := p.sample(comp.Layers[1], pos, t)
		return LinearMix(a, b, comp.ColorWeight, comp.AlphaWeight)
	}

	var buf [maxStackLayers]LayerSample
	samples := buf[:0]
	for _, l := range p.order {
		samples = append(samples, p.sample(l, pos, t))
	}
	return cascadeOrdered(samples)
}

func (p *Pipeline) sample(l Layer, pos mgl64.Vec3, t float64) LayerSample {
	offset := mgl64.Vec3{l.Offset, l.Offset, l.Offset}
	c := p.cfg.caustic(pos.Add(offset), t)
	return LayerSample{Layer: l, Alpha: p.cfg.Composite.coverage(c)}
}
