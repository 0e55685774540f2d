package app

import (
	"testing"
	"time"

	"caustics/internal/preview"
	"caustics/internal/scheduler"

	"github.com/stretchr/testify/assert"
)

func TestSyncFadeRestoresPreviewInFallback(t *testing.T) {
	f := preview.NewFade(100 * time.Millisecond)

	syncFade(f, 0, scheduler.Status{State: scheduler.AwaitingActivation}, false)
	assert.Equal(t, 1.0, f.Alpha(0))

	syncFade(f, time.Second, scheduler.Status{State: scheduler.Active}, true)
	assert.True(t, f.Done(2*time.Second), "faded out behind live frames")

	syncFade(f, 3*time.Second, scheduler.Status{State: scheduler.Fallback}, false)
	assert.False(t, f.Done(3*time.Second))
	assert.Equal(t, 1.0, f.Alpha(4*time.Second), "preview stays opaque without a backend")
}

func TestSyncFadeKeepsFadeWhilePaused(t *testing.T) {
	f := preview.NewFade(100 * time.Millisecond)
	syncFade(f, 0, scheduler.Status{State: scheduler.Active}, true)
	syncFade(f, time.Second, scheduler.Status{State: scheduler.Paused}, true)
	assert.True(t, f.Done(time.Second))
}
