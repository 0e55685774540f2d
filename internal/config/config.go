// Package config binds command-line flags and profile files to a pipeline
// configuration.
package config

import (
	"flag"
	"fmt"
	"runtime"
	"strings"
	"time"

	"caustics/internal/pipeline"
	"caustics/internal/profiles"
	"caustics/internal/scheduler"
)

// DefaultProfile is used when neither a flag nor a file names one.
const DefaultProfile = "classic"

// Config represents the command-line parameters of the viewer.
type Config struct {
	Profile     string
	Scale       float64
	Width       int
	Height      int
	FPS         int
	IdleTimeout time.Duration
	Preview     string
	File        string
	Watch       bool
	Workers     int
	HUD         bool
	Overrides   KVList
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Width:       960,
		Height:      540,
		FPS:         60,
		IdleTimeout: scheduler.DefaultIdleTimeout,
		Workers:     runtime.NumCPU(),
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Profile, "profile", c.Profile, "profile to render ("+strings.Join(profiles.Names(), ", ")+")")
	fs.Float64Var(&c.Scale, "scale", c.Scale, "render scale relative to the window, 0 keeps the profile's")
	fs.IntVar(&c.Width, "width", c.Width, "window width")
	fs.IntVar(&c.Height, "height", c.Height, "window height")
	fs.IntVar(&c.FPS, "fps", c.FPS, "frame rate cap, 0 for uncapped")
	fs.DurationVar(&c.IdleTimeout, "idle-timeout", c.IdleTimeout, "longest wait for idle before activating")
	fs.StringVar(&c.Preview, "preview", c.Preview, "static preview image shown until the renderer is ready")
	fs.StringVar(&c.File, "config", c.File, "profile file (.toml, .yaml)")
	fs.BoolVar(&c.Watch, "watch", c.Watch, "reload the profile file when it changes")
	fs.IntVar(&c.Workers, "workers", c.Workers, "CPU shading goroutines")
	fs.BoolVar(&c.HUD, "hud", c.HUD, "show the parameter panel")
	fs.Var(&c.Overrides, "set", "parameter override in key=value form (repeatable)")
}

// Pipeline resolves the configuration. Values from file, when given, are
// overridden by flags.
func (c *Config) Pipeline(file *File) (pipeline.Config, error) {
	name := DefaultProfile
	overrides := map[string]string{}
	if file != nil {
		if file.Profile != "" {
			name = file.Profile
		}
		for k, v := range file.OverrideMap() {
			overrides[k] = v
		}
	}
	if c.Profile != "" {
		name = c.Profile
	}
	for k, v := range c.Overrides.Map() {
		overrides[k] = v
	}
	if c.Scale > 0 {
		overrides["render_scale"] = fmt.Sprint(c.Scale)
	}
	return profiles.Build(name, overrides)
}

// Load reads the profile file named by the File flag, if any, and resolves
// the configuration.
func (c *Config) Load() (pipeline.Config, error) {
	if c.File == "" {
		return c.Pipeline(nil)
	}
	f, err := Load(c.File)
	if err != nil {
		return pipeline.Config{}, err
	}
	return c.Pipeline(&f)
}

// KVList collects repeated key=value flags.
type KVList []string

func (l *KVList) String() string {
	return strings.Join(*l, ",")
}

// Set appends a key=value pair.
func (l *KVList) Set(value string) error {
	if !strings.Contains(value, "=") {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	*l = append(*l, value)
	return nil
}

// Map returns the pairs as a map. Later pairs win.
func (l KVList) Map() map[string]string {
	m := make(map[string]string, len(l))
	for _, kv := range l {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		m[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return m
}
