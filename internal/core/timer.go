package core

import "time"

// FixedStep caps how often frames are rendered. A zero rate never throttles.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Duration
	started     bool
}

// NewFixedStep constructs a FixedStep targeting the given frames per second.
// A non-positive fps disables throttling.
func NewFixedStep(fps int) *FixedStep {
	fs := &FixedStep{}
	fs.SetRate(fps)
	fs.accumulator = fs.step
	return fs
}

// SetRate changes the frame rate. It is safe to call from the main loop.
func (f *FixedStep) SetRate(fps int) {
	if fps <= 0 {
		f.step = 0
		return
	}
	f.step = time.Second / time.Duration(fps)
}

// Step returns the frame interval, or zero when unthrottled.
func (f *FixedStep) Step() time.Duration { return f.step }

// ShouldStep reports whether a frame is due at the clock reading now.
func (f *FixedStep) ShouldStep(now time.Duration) bool {
	if f.step <= 0 {
		return true
	}
	if !f.started {
		f.started = true
		f.last = now
	}
	delta := now - f.last
	if delta < 0 {
		delta = 0
	}
	f.last = now
	f.accumulator += delta
	if f.accumulator >= f.step {
		f.accumulator -= f.step
		// Long stalls must not turn into a burst of catch-up frames.
		if f.accumulator > f.step {
			f.accumulator = f.step
		}
		return true
	}
	return false
}
