// Package lite is the lightweight profile: fractal value noise with two
// cascaded layers. The fractal sum is unnormalized, so the smoothstep edges
// sit inside its [0, 1.5] range instead of the exponential one.
package lite

import (
	"caustics/internal/noise"
	"caustics/internal/pipeline"
	"caustics/internal/profiles"

	"github.com/go-gl/mathgl/mgl64"
)

// Name is the registry key of this profile.
const Name = "lite"

// DefaultConfig returns the default configuration.
func DefaultConfig() pipeline.Config {
	c := pipeline.Default()
	c.Name = Name
	c.Kernel = noise.KindValue2D
	c.Field = pipeline.FieldFractal
	c.Fractal = pipeline.FractalParams{
		Octaves: noise.FractalOctaves,
		Weight:  pipeline.DefaultFractalWeight,
		Rate:    0.05,
	}
	c.Composite.Intensity = pipeline.IntensityLinear
	c.Composite.LowEdge = 0.7
	c.Composite.HighEdge = 0.95
	c.Composite.Layers = []pipeline.Layer{
		{Name: "red", Color: mgl64.Vec3{0.98, 0.17, 0.21}, Priority: 1, Threshold: 0.5, Offset: 0},
		{Name: "blue", Color: mgl64.Vec3{0.17, 0.5, 1}, Priority: 2, Threshold: 0.2, Offset: -1},
	}
	return c
}

// FromMap populates a Config from a string map.
func FromMap(cfg map[string]string) pipeline.Config {
	return pipeline.ApplyOverrides(DefaultConfig(), cfg)
}

func init() {
	profiles.Register(Name, FromMap)
}
