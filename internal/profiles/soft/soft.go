// Package soft blends two layers linearly instead of cascading them, which
// keeps edges smooth enough for antialiased output.
package soft

import (
	"caustics/internal/pipeline"
	"caustics/internal/profiles"
)

// Name is the registry key of this profile.
const Name = "soft"

// Bias shifts the caustic before the exponential map, dimming the result.
const Bias = 0.1

// DefaultConfig returns the default configuration.
func DefaultConfig() pipeline.Config {
	c := pipeline.Default()
	c.Name = Name
	layers := pipeline.DefaultLayers()
	c.Composite.Strategy = pipeline.StrategyLinearMix
	c.Composite.Layers = layers[:2]
	c.Composite.Bias = Bias
	c.Composite.ColorWeight = 0.5
	c.Composite.AlphaWeight = 0.9
	c.PostFX.Vignette.Enabled = true
	c.Antialias = true
	return c
}

// FromMap populates a Config from a string map.
func FromMap(cfg map[string]string) pipeline.Config {
	return pipeline.ApplyOverrides(DefaultConfig(), cfg)
}

func init() {
	profiles.Register(Name, FromMap)
}
