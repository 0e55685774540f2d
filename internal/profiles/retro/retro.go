// Package retro layers the post effects over the classic cascade: blocky
// sampling, a temporal echo trail, a CRT mask and a vignette.
package retro

import (
	"caustics/internal/pipeline"
	"caustics/internal/profiles"
)

// Name is the registry key of this profile.
const Name = "retro"

// PixelBlock is the edge of the square sampling block in pixels.
const PixelBlock = 2

// DefaultConfig returns the default configuration.
func DefaultConfig() pipeline.Config {
	c := pipeline.Default()
	c.Name = Name
	c.PostFX.Pixelate = PixelBlock
	c.PostFX.Echo.Enabled = true
	c.PostFX.CRT.Enabled = true
	c.PostFX.Vignette.Enabled = true
	return c
}

// FromMap populates a Config from a string map.
func FromMap(cfg map[string]string) pipeline.Config {
	return pipeline.ApplyOverrides(DefaultConfig(), cfg)
}

func init() {
	profiles.Register(Name, FromMap)
}
