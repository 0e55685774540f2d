//go:build !ebiten

package ui

import "caustics/internal/core"

// Status is the scheduler summary shown at the top of the HUD.
type Status struct {
	Profile string
	State   string
	Backend string
	Trigger string
	TPS     float64
}

// HUD is a no-op placeholder for headless builds.
type HUD struct{}

// NewHUD returns nil in the headless build.
func NewHUD(int, []Control, func(key, value string)) *HUD { return nil }

// Width is always zero in the headless build.
func (h *HUD) Width() int { return 0 }

// Update is a no-op in the headless build.
func (h *HUD) Update(core.ParameterSnapshot, Status, int) {}

// Draw is a no-op in the headless build.
func (h *HUD) Draw(any, int) {}
