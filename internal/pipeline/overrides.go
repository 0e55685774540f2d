package pipeline

import (
	"sort"
	"strconv"
	"strings"

	"caustics/internal/noise"
)

// ApplyOverrides returns a copy of base with flag-style key/value pairs applied.
// Unknown keys and unparsable values are ignored. Layer thresholds are set with
// "<layer>_threshold", e.g. "red_threshold".
func ApplyOverrides(base Config, m map[string]string) Config {
	c := base.Clone()
	if len(m) == 0 {
		return c
	}
	if v, ok := m["name"]; ok && v != "" {
		c.Name = v
	}
	if v, ok := m["kernel"]; ok {
		if k, err := noise.ParseKind(v); err == nil {
			c.Kernel = k
		}
	}
	if v, ok := m["field"]; ok && (v == string(FieldWarp) || v == string(FieldFractal)) {
		c.Field = FieldKind(v)
	}
	if v, ok := m["strategy"]; ok && (v == string(StrategyCascade) || v == string(StrategyLinearMix)) {
		c.Composite.Strategy = Strategy(v)
	}
	if v, ok := m["intensity"]; ok && (v == string(IntensityExp) || v == string(IntensityLinear)) {
		c.Composite.Intensity = IntensityMap(v)
	}

	setInt(m, "passes", &c.Warp.Passes, 1)
	setFloat(m, "growth", &c.Warp.Growth)
	setFloat(m, "strength", &c.Warp.Strength)
	setInt(m, "octaves", &c.Fractal.Octaves, 1)
	setFloat(m, "weight", &c.Fractal.Weight)
	setFloat(m, "rate", &c.Fractal.Rate)

	setFloat(m, "time_scale", &c.Camera.TimeScale)
	setPositive(m, "tiling", &c.Camera.Tiling)
	setFloat(m, "tilt_z", &c.Camera.Tilt[2])

	setFloat(m, "bias", &c.Composite.Bias)
	setFloat(m, "low_edge", &c.Composite.LowEdge)
	setFloat(m, "high_edge", &c.Composite.HighEdge)
	setFloat(m, "color_weight", &c.Composite.ColorWeight)
	setFloat(m, "alpha_weight", &c.Composite.AlphaWeight)
	for i := range c.Composite.Layers {
		setFloat(m, c.Composite.Layers[i].Name+"_threshold", &c.Composite.Layers[i].Threshold)
	}

	setFloat(m, "pixelate", &c.PostFX.Pixelate)
	if c.PostFX.Pixelate < 0 {
		c.PostFX.Pixelate = 0
	}
	setBool(m, "echo", &c.PostFX.Echo.Enabled)
	setFloat(m, "echo_factor", &c.PostFX.Echo.Factor)
	setBool(m, "crt", &c.PostFX.CRT.Enabled)
	setFloat(m, "crt_weight", &c.PostFX.CRT.Weight)
	setBool(m, "vignette", &c.PostFX.Vignette.Enabled)
	setFloat(m, "vignette_intensity", &c.PostFX.Vignette.Intensity)

	setPositive(m, "render_scale", &c.RenderScale)
	setBool(m, "antialias", &c.Antialias)
	return c
}

// OverrideKeys lists the keys understood by ApplyOverrides for c.
func OverrideKeys(c Config) []string {
	keys := []string{
		"name", "kernel", "field", "strategy", "intensity",
		"passes", "growth", "strength", "octaves", "weight", "rate",
		"time_scale", "tiling", "tilt_z",
		"bias", "low_edge", "high_edge", "color_weight", "alpha_weight",
		"pixelate", "echo", "echo_factor", "crt", "crt_weight", "vignette", "vignette_intensity",
		"render_scale", "antialias",
	}
	for _, l := range c.Composite.Layers {
		keys = append(keys, l.Name+"_threshold")
	}
	sort.Strings(keys)
	return keys
}

func setFloat(m map[string]string, key string, dst *float64) {
	if v, ok := m[key]; ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			*dst = parsed
		}
	}
}

func setPositive(m map[string]string, key string, dst *float64) {
	if v, ok := m[key]; ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && parsed > 0 {
			*dst = parsed
		}
	}
}

func setInt(m map[string]string, key string, dst *int, minimum int) {
	if v, ok := m[key]; ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= minimum {
			*dst = parsed
		}
	}
}

func setBool(m map[string]string, key string, dst *bool) {
	if v, ok := m[key]; ok {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			*dst = parsed
		}
	}
}
