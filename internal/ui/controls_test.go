package ui

import (
	"testing"

	"caustics/internal/core"
	"caustics/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlAdjustClamps(t *testing.T) {
	c := Control{Key: "passes", Type: core.ParamTypeInt, Step: 1, Min: 1, Max: 8, HasMin: true, HasMax: true}

	v, ok := c.Adjust(4, 1)
	assert.True(t, ok)
	assert.Equal(t, 5.0, v)

	_, ok = c.Adjust(8, 1)
	assert.False(t, ok, "already at max")
	_, ok = c.Adjust(1, -1)
	assert.False(t, ok, "already at min")
	_, ok = c.Adjust(4, 0)
	assert.False(t, ok)
}

func TestControlFloatStepAndFormat(t *testing.T) {
	c := Control{Key: "tiling", Type: core.ParamTypeFloat, Step: 0.1, Min: 0.1, HasMin: true}
	v, ok := c.Adjust(0.15, -1)
	require.True(t, ok)
	assert.Equal(t, 0.1, v)
	assert.Equal(t, "0.1", c.Format(v))

	fine := Control{Type: core.ParamTypeFloat, Step: 0.01}
	assert.Equal(t, "0.07", fine.Format(0.07))
	assert.Equal(t, "0.07", fine.Override(0.07))

	assert.Equal(t, "3", Control{Type: core.ParamTypeInt}.Format(3.2))
}

func TestDefaultControlsRoundTripThroughOverrides(t *testing.T) {
	cfg := pipeline.Default()
	snap := cfg.Parameters()
	for _, c := range DefaultControls() {
		cur, ok := controlValue(snap, c)
		if !ok {
			continue
		}
		next, changed := c.Adjust(cur, 1)
		if !changed {
			next, changed = c.Adjust(cur, -1)
		}
		require.True(t, changed, c.Key)

		updated := pipeline.ApplyOverrides(cfg, map[string]string{c.Key: c.Override(next)})
		got, ok := controlValue(updated.Parameters(), c)
		require.True(t, ok, c.Key)
		assert.InDelta(t, next, got, 1e-12, c.Key)
	}
}

func TestControlValueMissingKey(t *testing.T) {
	snap := pipeline.Default().Parameters()
	_, ok := controlValue(snap, Control{Key: "octaves", Type: core.ParamTypeInt})
	assert.False(t, ok, "warp field has no octaves")
}
