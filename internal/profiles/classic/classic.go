// Package classic is the high-fidelity profile: recursive warp over gradient
// noise composited by a three-layer priority cascade, with no post effects.
package classic

import (
	"caustics/internal/pipeline"
	"caustics/internal/profiles"
)

// Name is the registry key of this profile.
const Name = "classic"

// DefaultConfig returns the default configuration.
func DefaultConfig() pipeline.Config {
	c := pipeline.Default()
	c.Name = Name
	return c
}

// FromMap populates a Config from a string map.
func FromMap(cfg map[string]string) pipeline.Config {
	return pipeline.ApplyOverrides(DefaultConfig(), cfg)
}

func init() {
	profiles.Register(Name, FromMap)
}
