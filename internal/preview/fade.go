package preview

import "time"

// DefaultFade is how long the preview takes to fade out once live frames are
// available.
const DefaultFade = 500 * time.Millisecond

// Fade tracks the preview opacity on a caller-supplied clock.
type Fade struct {
	duration time.Duration
	start    time.Duration
	started  bool
}

// NewFade returns an opaque fade of duration d.
func NewFade(d time.Duration) *Fade {
	if d <= 0 {
		d = DefaultFade
	}
	return &Fade{duration: d}
}

// Start begins fading at now. Later calls are ignored.
func (f *Fade) Start(now time.Duration) {
	if f.started {
		return
	}
	f.started = true
	f.start = now
}

// Reset makes the preview opaque again; the next Start fades it anew.
func (f *Fade) Reset() {
	f.started = false
	f.start = 0
}

// Started reports whether Start was called.
func (f *Fade) Started() bool { return f.started }

// Alpha returns the preview opacity at now with an ease-out curve.
func (f *Fade) Alpha(now time.Duration) float64 {
	if !f.started {
		return 1
	}
	p := float64(now-f.start) / float64(f.duration)
	if p <= 0 {
		return 1
	}
	if p >= 1 {
		return 0
	}
	return (1 - p) * (1 - p)
}

// Done reports whether the preview is fully transparent.
func (f *Fade) Done(now time.Duration) bool {
	return f.started && now-f.start >= f.duration
}
