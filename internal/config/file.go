package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// File is a profile file: a base profile and overrides in the same keys
// accepted by -set. Override values may be strings, numbers or booleans.
type File struct {
	Profile   string         `toml:"profile" yaml:"profile"`
	Overrides map[string]any `toml:"overrides" yaml:"overrides"`
}

// OverrideMap returns the overrides as strings.
func (f File) OverrideMap() map[string]string {
	m := make(map[string]string, len(f.Overrides))
	for k, v := range f.Overrides {
		m[k] = fmt.Sprint(v)
	}
	return m
}

// Keys returns the override keys in sorted order.
func (f File) Keys() []string {
	keys := make([]string, 0, len(f.Overrides))
	for k := range f.Overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load reads a profile file. The format follows the extension.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	f, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return File{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes data as TOML or YAML according to ext.
func Parse(data []byte, ext string) (File, error) {
	var f File
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &f); err != nil {
			return File{}, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return File{}, err
		}
	default:
		return File{}, fmt.Errorf("unsupported profile file extension %q", ext)
	}
	return f, nil
}
