package app

import (
	"sync"

	"caustics/internal/scheduler"
)

// Host adapts a frame-loop window to scheduler.Host. Input handling pushes
// size, visibility, idle and interaction events in; the loop asks
// TakeFrameRequest whether the scheduler wants a callback.
type Host struct {
	mu         sync.Mutex
	w, h       int
	visibility float64
	requested  bool

	resizeFns     []func(w, h int)
	visibilityFns []func(ratio float64)

	idle         *scheduler.OneShot
	interactions map[scheduler.Trigger]*scheduler.OneShot
}

// NewHost returns a fully visible host of w*h pixels.
func NewHost(w, h int) *Host {
	return &Host{
		w:            w,
		h:            h,
		visibility:   1,
		idle:         scheduler.NewOneShot(scheduler.TriggerIdle),
		interactions: scheduler.Interactions(),
	}
}

// Size implements scheduler.Host.
func (h *Host) Size() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.w, h.h
}

// RequestFrame implements scheduler.Host.
func (h *Host) RequestFrame() {
	h.mu.Lock()
	h.requested = true
	h.mu.Unlock()
}

// TakeFrameRequest reports and clears a pending frame request.
func (h *Host) TakeFrameRequest() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := h.requested
	h.requested = false
	return r
}

// WatchResize implements scheduler.ResizeWatcher.
func (h *Host) WatchResize(fn func(w, h int)) func() {
	h.mu.Lock()
	h.resizeFns = append(h.resizeFns, fn)
	idx := len(h.resizeFns) - 1
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		h.resizeFns[idx] = nil
		h.mu.Unlock()
	}
}

// WatchVisibility implements scheduler.VisibilityWatcher. Like an
// intersection observer, fn is called once with the current ratio.
func (h *Host) WatchVisibility(fn func(ratio float64)) func() {
	h.mu.Lock()
	h.visibilityFns = append(h.visibilityFns, fn)
	idx := len(h.visibilityFns) - 1
	ratio := h.visibility
	h.mu.Unlock()
	fn(ratio)
	return func() {
		h.mu.Lock()
		h.visibilityFns[idx] = nil
		h.mu.Unlock()
	}
}

// IdleSource implements scheduler.IdleProvider.
func (h *Host) IdleSource() scheduler.Source { return h.idle }

// Interactions implements scheduler.InteractionProvider.
func (h *Host) Interactions() []scheduler.Source {
	out := make([]scheduler.Source, 0, len(h.interactions))
	for _, t := range scheduler.InteractionTriggers() {
		out = append(out, h.interactions[t])
	}
	return out
}

// SetSize records a new surface size and notifies watchers when it changed.
func (h *Host) SetSize(w, hh int) {
	h.mu.Lock()
	if w == h.w && hh == h.h {
		h.mu.Unlock()
		return
	}
	h.w, h.h = w, hh
	fns := append([]func(int, int){}, h.resizeFns...)
	h.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn(w, hh)
		}
	}
}

// SetVisibility records the visible fraction and notifies watchers when it
// changed.
func (h *Host) SetVisibility(ratio float64) {
	h.mu.Lock()
	if ratio == h.visibility {
		h.mu.Unlock()
		return
	}
	h.visibility = ratio
	fns := append([]func(float64){}, h.visibilityFns...)
	h.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn(ratio)
		}
	}
}

// Idle signals that the host has spare time.
func (h *Host) Idle() bool { return h.idle.Fire() }

// Interact reports a user interaction of kind t.
func (h *Host) Interact(t scheduler.Trigger) bool {
	o, ok := h.interactions[t]
	if !ok {
		return false
	}
	return o.Fire()
}
