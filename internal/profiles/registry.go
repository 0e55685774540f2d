// Package profiles holds the registry of named pipeline configurations.
// Profile packages register themselves from init, so binaries pick the set
// they ship with blank imports.
package profiles

import (
	"errors"
	"fmt"
	"sort"

	"caustics/internal/pipeline"
)

// ErrUnknownProfile is returned by Build for names nobody registered.
var ErrUnknownProfile = errors.New("profiles: unknown profile")

// Factory builds a configuration from optional key/value overrides.
type Factory func(overrides map[string]string) pipeline.Config

var factories = map[string]Factory{}

// Register adds a profile factory under the provided name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	factories[name] = f
}

// Profiles exposes the registry of available profile factories.
func Profiles() map[string]Factory {
	return factories
}

// Names returns the registered profile names in sorted order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build resolves name, applies overrides and validates the result.
func Build(name string, overrides map[string]string) (pipeline.Config, error) {
	f, ok := factories[name]
	if !ok {
		return pipeline.Config{}, fmt.Errorf("%w %q (have %v)", ErrUnknownProfile, name, Names())
	}
	cfg := f(overrides)
	if err := cfg.Validate(); err != nil {
		return pipeline.Config{}, fmt.Errorf("profiles: build %s: %w", name, err)
	}
	return cfg, nil
}
