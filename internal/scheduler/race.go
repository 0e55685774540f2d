package scheduler

import (
	"context"
	"sync"
	"time"

	"caustics/internal/core"
)

// Trigger names the event that won an activation race.
type Trigger string

const (
	TriggerIdle    Trigger = "idle"
	TriggerTimeout Trigger = "timeout"
	TriggerClick   Trigger = "click"
	TriggerScroll  Trigger = "scroll"
	TriggerTouch   Trigger = "touchstart"
	TriggerKey     Trigger = "keydown"
)

// InteractionTriggers lists the user interactions that activate a surface.
func InteractionTriggers() []Trigger {
	return []Trigger{TriggerClick, TriggerScroll, TriggerTouch, TriggerKey}
}

// Source is one participant of a Race. Arm starts listening and calls fire at
// most once; the returned disarm stops listening.
type Source interface {
	Arm(fire func(Trigger)) (disarm func())
}

// SourceFunc adapts a function to Source.
type SourceFunc func(fire func(Trigger)) func()

// Arm calls f.
func (f SourceFunc) Arm(fire func(Trigger)) func() { return f(fire) }

// poller is implemented by sources that fire from Race.Poll instead of their
// own goroutine.
type poller interface {
	poll()
}

// Race waits for the first of several sources to fire. Every source is
// disarmed exactly once, as soon as a winner is known or the race is
// cancelled.
type Race struct {
	mu       sync.Mutex
	done     chan struct{}
	settled  bool
	winner   Trigger
	disarms  []func()
	pollable []poller
}

// NewRace arms sources in order. A source that fires while being armed wins
// and the remaining sources are never armed.
func NewRace(sources ...Source) *Race {
	r := &Race{done: make(chan struct{})}
	for _, src := range sources {
		if src == nil {
			continue
		}
		disarm := src.Arm(r.fire)
		r.mu.Lock()
		if r.settled {
			r.mu.Unlock()
			if disarm != nil {
				disarm()
			}
			break
		}
		if disarm != nil {
			r.disarms = append(r.disarms, disarm)
		}
		if p, ok := src.(poller); ok {
			r.pollable = append(r.pollable, p)
		}
		r.mu.Unlock()
	}
	return r
}

func (r *Race) fire(t Trigger) {
	r.settle(t, true)
}

func (r *Race) settle(t Trigger, won bool) {
	r.mu.Lock()
	if r.settled {
		r.mu.Unlock()
		return
	}
	r.settled = true
	if won {
		r.winner = t
	}
	disarms := r.disarms
	r.disarms = nil
	r.pollable = nil
	close(r.done)
	r.mu.Unlock()

	for _, d := range disarms {
		d()
	}
}

// Poll checks pollable sources and reports the winner without blocking.
func (r *Race) Poll() (Trigger, bool) {
	r.mu.Lock()
	pollable := append([]poller(nil), r.pollable...)
	r.mu.Unlock()
	for _, p := range pollable {
		p.poll()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.winner, r.settled && r.winner != ""
}

// waitPollInterval is how often Wait drives pollable sources.
const waitPollInterval = 10 * time.Millisecond

// Wait blocks until a source fires, the race is cancelled or ctx is done.
// Pollable sources such as Deadline are polled while waiting.
func (r *Race) Wait(ctx context.Context) (Trigger, error) {
	r.mu.Lock()
	polled := len(r.pollable) > 0
	r.mu.Unlock()

	var tick <-chan time.Time
	if polled {
		ticker := time.NewTicker(waitPollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	r.Poll()
wait:
	for {
		select {
		case <-r.done:
			break wait
		case <-ctx.Done():
			return "", ctx.Err()
		case <-tick:
			r.Poll()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.winner == "" {
		return "", context.Canceled
	}
	return r.winner, nil
}

// Done is closed once the race is settled.
func (r *Race) Done() <-chan struct{} { return r.done }

// Cancel disarms every source without a winner. It is a no-op once settled.
func (r *Race) Cancel() { r.settle("", false) }

// After fires t once d has elapsed on a runtime timer.
func After(d time.Duration, t Trigger) Source {
	return SourceFunc(func(fire func(Trigger)) func() {
		timer := time.AfterFunc(d, func() { fire(t) })
		return func() { timer.Stop() }
	})
}

// Deadline fires t from Race.Poll once clock reaches d past arming. It needs
// no goroutine and so suits frame-driven hosts and manual clocks.
func Deadline(clock core.Clock, d time.Duration, t Trigger) Source {
	return &deadline{clock: clock, d: d, trigger: t}
}

type deadline struct {
	clock   core.Clock
	d       time.Duration
	trigger Trigger

	mu   sync.Mutex
	at   time.Duration
	fire func(Trigger)
}

func (s *deadline) Arm(fire func(Trigger)) func() {
	s.mu.Lock()
	s.at = s.clock.Now() + s.d
	s.fire = fire
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.fire = nil
		s.mu.Unlock()
	}
}

func (s *deadline) poll() {
	s.mu.Lock()
	fire := s.fire
	due := s.clock.Now() >= s.at
	if due {
		s.fire = nil
	}
	s.mu.Unlock()
	if due && fire != nil {
		fire(s.trigger)
	}
}

// OneShot is a Source fired by its owner, typically from an input handler.
// Firing before arming or after disarming does nothing.
type OneShot struct {
	trigger Trigger

	mu   sync.Mutex
	fire func(Trigger)
}

// NewOneShot returns an unarmed one-shot source for t.
func NewOneShot(t Trigger) *OneShot { return &OneShot{trigger: t} }

// Trigger returns the trigger this source reports.
func (o *OneShot) Trigger() Trigger { return o.trigger }

// Arm implements Source.
func (o *OneShot) Arm(fire func(Trigger)) func() {
	o.mu.Lock()
	o.fire = fire
	o.mu.Unlock()
	return func() {
		o.mu.Lock()
		o.fire = nil
		o.mu.Unlock()
	}
}

// Armed reports whether the source is listening.
func (o *OneShot) Armed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fire != nil
}

// Fire reports the trigger once. It returns false when the source is not armed.
func (o *OneShot) Fire() bool {
	o.mu.Lock()
	fire := o.fire
	o.fire = nil
	o.mu.Unlock()
	if fire == nil {
		return false
	}
	fire(o.trigger)
	return true
}

// Interactions returns one armed-on-demand source per interaction trigger,
// keyed by trigger.
func Interactions() map[Trigger]*OneShot {
	out := make(map[Trigger]*OneShot, 4)
	for _, t := range InteractionTriggers() {
		out[t] = NewOneShot(t)
	}
	return out
}
