package ui

import (
	"errors"

	"caustics/internal/render"
	"caustics/internal/scheduler"
)

// Banner returns the message shown over the surface for st, or "" when the
// surface is rendering normally.
func Banner(st scheduler.Status, loadErr error) string {
	switch st.State {
	case scheduler.AwaitingActivation:
		return "click, scroll or press a key to start"
	case scheduler.Paused:
		return "paused"
	case scheduler.Fallback:
		if errors.Is(loadErr, render.ErrBackendUnavailable) {
			return "no renderer available, showing preview"
		}
		return "renderer failed, showing preview"
	}
	return ""
}
