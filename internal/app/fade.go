package app

import (
	"time"

	"caustics/internal/preview"
	"caustics/internal/scheduler"
)

// syncFade starts fading the preview once live frames are rendering and
// brings it back whenever there is no backend to draw, such as after a
// config swap that exhausted every source.
func syncFade(f *preview.Fade, now time.Duration, st scheduler.Status, hasBackend bool) {
	switch {
	case !hasBackend:
		f.Reset()
	case st.State == scheduler.Active:
		f.Start(now)
	}
}
