// Package scheduler drives the render loop of one surface: deferred
// activation, backend loading with fallback, visibility pausing and per-tick
// render contexts.
package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrDestroyed is returned for any event or call after teardown.
	ErrDestroyed = errors.New("scheduler: destroyed")
	// ErrInvalidTransition is returned when an event does not apply to the
	// current state.
	ErrInvalidTransition = errors.New("scheduler: invalid transition")
)

// State is the lifecycle phase of a scheduler.
type State int

const (
	Uninitialized State = iota
	AwaitingActivation
	Active
	Paused
	// Fallback is entered when no backend could be loaded. The static
	// presentation stays and no ticks are requested.
	Fallback
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case AwaitingActivation:
		return "awaiting-activation"
	case Active:
		return "active"
	case Paused:
		return "paused"
	case Fallback:
		return "fallback"
	case Destroyed:
		return "destroyed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// EventKind identifies a lifecycle event.
type EventKind int

const (
	HostReady EventKind = iota
	Activated
	BackendReady
	BackendFailed
	VisibilityEnter
	VisibilityExit
	Tick
	Teardown
)

func (k EventKind) String() string {
	switch k {
	case HostReady:
		return "host-ready"
	case Activated:
		return "activated"
	case BackendReady:
		return "backend-ready"
	case BackendFailed:
		return "backend-failed"
	case VisibilityEnter:
		return "visibility-enter"
	case VisibilityExit:
		return "visibility-exit"
	case Tick:
		return "tick"
	case Teardown:
		return "teardown"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is an input to Status.Apply. Time is read by Tick only.
type Event struct {
	Kind EventKind
	Time float64
}

// Status is the scheduler state as a value. Transitions never mutate a Status;
// Apply returns the next one.
type Status struct {
	State State
	// DeferredReady is set once the activation race has fired.
	DeferredReady bool
	// Visible is the last reported visibility. Hosts that cannot report it
	// are treated as always visible.
	Visible bool
	// LastFrame is the time input of the most recent tick, in seconds.
	LastFrame float64
}

// Initial returns the status of a freshly constructed scheduler.
func Initial() Status {
	return Status{State: Uninitialized, Visible: true}
}

// Running reports whether ticks are being evaluated.
func (s Status) Running() bool { return s.State == Active }

// Apply returns the status after ev. When ev does not apply, the unchanged
// status is returned with an error wrapping ErrInvalidTransition, or
// ErrDestroyed once torn down.
func (s Status) Apply(ev Event) (Status, error) {
	if s.State == Destroyed {
		return s, ErrDestroyed
	}
	next := s
	switch ev.Kind {
	case Teardown:
		next.State = Destroyed
		return next, nil

	case VisibilityEnter, VisibilityExit:
		next.Visible = ev.Kind == VisibilityEnter
		switch {
		case s.State == Active && !next.Visible:
			next.State = Paused
		case s.State == Paused && next.Visible:
			next.State = Active
		}
		return next, nil

	case HostReady:
		if s.State == Uninitialized {
			next.State = AwaitingActivation
			return next, nil
		}

	case Activated:
		if s.State == AwaitingActivation && !s.DeferredReady {
			next.DeferredReady = true
			return next, nil
		}

	case BackendReady:
		switch {
		case s.State == AwaitingActivation && s.DeferredReady:
			next.State = Active
			return next, nil
		case s.State == Active || s.State == Paused:
			return next, nil
		}

	case BackendFailed:
		if (s.State == AwaitingActivation && s.DeferredReady) || s.State == Active || s.State == Paused {
			next.State = Fallback
			return next, nil
		}

	case Tick:
		if s.State == Active {
			if ev.Time > s.LastFrame {
				next.LastFrame = ev.Time
			}
			return next, nil
		}
	}
	return s, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, ev.Kind, s.State)
}
