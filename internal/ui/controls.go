package ui

import (
	"math"
	"strconv"

	"caustics/internal/core"
)

// Control describes a HUD-adjustable parameter. Key is an override key
// understood by pipeline.ApplyOverrides.
type Control struct {
	Key    string
	Label  string
	Type   core.ParamType
	Step   float64
	Min    float64
	Max    float64
	HasMin bool
	HasMax bool
}

// DefaultControls lists the parameters the HUD exposes with +/- buttons.
// Keys missing from the current snapshot are shown disabled.
func DefaultControls() []Control {
	return []Control{
		{Key: "passes", Label: "Warp passes", Type: core.ParamTypeInt, Step: 1, Min: 1, Max: 8, HasMin: true, HasMax: true},
		{Key: "strength", Label: "Warp strength", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 0.5, HasMin: true, HasMax: true},
		{Key: "octaves", Label: "Octaves", Type: core.ParamTypeInt, Step: 1, Min: 1, Max: 8, HasMin: true, HasMax: true},
		{Key: "time_scale", Label: "Time scale", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "tiling", Label: "Tiling", Type: core.ParamTypeFloat, Step: 0.1, Min: 0.1, Max: 5, HasMin: true, HasMax: true},
		{Key: "low_edge", Label: "Low edge", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 2, HasMin: true, HasMax: true},
		{Key: "high_edge", Label: "High edge", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 3, HasMin: true, HasMax: true},
		{Key: "pixelate", Label: "Pixelate", Type: core.ParamTypeFloat, Step: 1, Min: 0, Max: 16, HasMin: true, HasMax: true},
	}
}

// Adjust returns the value one step away from current in direction, clamped
// to the control's range, and whether it differs from current.
func (c Control) Adjust(current float64, direction int) (float64, bool) {
	if direction == 0 {
		return current, false
	}
	step := c.step()
	target := current + float64(direction)*step
	if c.Type == core.ParamTypeInt {
		target = math.Round(target)
	}
	if c.HasMin && target < c.Min {
		target = c.Min
	}
	if c.HasMax && target > c.Max {
		target = c.Max
	}
	if math.Abs(target-current) < 1e-9 {
		return current, false
	}
	return target, true
}

// Format renders v with a precision derived from the step size.
func (c Control) Format(v float64) string {
	if c.Type == core.ParamTypeInt {
		return strconv.Itoa(int(math.Round(v)))
	}
	precision := 1
	switch step := c.step(); {
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step < 0.1:
		precision = 2
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// Override renders v as an override value for c.Key.
func (c Control) Override(v float64) string {
	if c.Type == core.ParamTypeInt {
		return strconv.Itoa(int(math.Round(v)))
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (c Control) step() float64 {
	if c.Step > 0 {
		return c.Step
	}
	if c.Type == core.ParamTypeInt {
		return 1
	}
	return 0.05
}

// controlValue parses the snapshot value for c.
func controlValue(snap core.ParameterSnapshot, c Control) (float64, bool) {
	p, ok := snap.Lookup(c.Key)
	if !ok || p.Type != c.Type {
		return 0, false
	}
	v, err := strconv.ParseFloat(p.Value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
