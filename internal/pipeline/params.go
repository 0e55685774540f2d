package pipeline

import (
	"fmt"
	"strconv"

	"caustics/internal/core"
)

// Parameters describes c for the HUD and the CLI listing.
func (c Config) Parameters() core.ParameterSnapshot {
	field := core.ParameterGroup{
		Name:    "field",
		Summary: fmt.Sprintf("%s kernel, %s field", c.Kernel, c.Field),
		Params: []core.Parameter{
			str("kernel", "Kernel", string(c.Kernel)),
			str("field", "Field", string(c.Field)),
		},
	}
	if c.Field == FieldWarp {
		field.Params = append(field.Params,
			integer("passes", "Warp passes", c.Warp.Passes),
			float("growth", "Warp growth", c.Warp.Growth),
			float("strength", "Warp strength", c.Warp.Strength),
		)
	} else {
		field.Params = append(field.Params,
			integer("octaves", "Octaves", c.Fractal.Octaves),
			float("weight", "Octave weight", c.Fractal.Weight),
			float("rate", "Drift rate", c.Fractal.Rate),
		)
	}

	camera := core.ParameterGroup{
		Name: "camera",
		Params: []core.Parameter{
			float("time_scale", "Time scale", c.Camera.TimeScale),
			float("tiling", "Tiling", c.Camera.Tiling),
			float("render_scale", "Render scale", c.RenderScale),
		},
	}

	comp := core.ParameterGroup{
		Name:    "composite",
		Summary: fmt.Sprintf("%s over %d layers", c.Composite.Strategy, len(c.Composite.Layers)),
		Params: []core.Parameter{
			str("strategy", "Strategy", string(c.Composite.Strategy)),
			str("intensity", "Intensity", string(c.Composite.Intensity)),
			float("bias", "Bias", c.Composite.Bias),
			float("low_edge", "Low edge", c.Composite.LowEdge),
			float("high_edge", "High edge", c.Composite.HighEdge),
		},
	}
	for _, l := range c.Composite.Layers {
		comp.Params = append(comp.Params, core.Parameter{
			Key:         l.Name + "_threshold",
			Label:       fmt.Sprintf("%s (p%d)", l.Name, l.Priority),
			Type:        core.ParamTypeFloat,
			Value:       strconv.FormatFloat(l.Threshold, 'g', -1, 64),
			Description: "alpha threshold",
		})
	}

	fx := core.ParameterGroup{
		Name: "postfx",
		Params: []core.Parameter{
			float("pixelate", "Pixelate", c.PostFX.Pixelate),
			boolean("echo", "Echo", c.PostFX.Echo.Enabled),
			boolean("crt", "CRT", c.PostFX.CRT.Enabled),
			boolean("vignette", "Vignette", c.PostFX.Vignette.Enabled),
		},
	}

	return core.ParameterSnapshot{Groups: []core.ParameterGroup{field, camera, comp, fx}}
}

func str(key, label, v string) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeString, Value: v}
}

func integer(key, label string, v int) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeInt, Value: strconv.Itoa(v)}
}

func float(key, label string, v float64) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeFloat, Value: strconv.FormatFloat(v, 'g', -1, 64)}
}

func boolean(key, label string, v bool) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeBool, Value: strconv.FormatBool(v)}
}
