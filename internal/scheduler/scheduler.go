package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"caustics/internal/core"
	"caustics/internal/pipeline"
	"caustics/internal/render"
)

// Defaults for Options.
const (
	DefaultIdleTimeout         = 2 * time.Second
	DefaultFallbackIdleTimeout = time.Second
	DefaultVisibilityThreshold = 0.10
)

// Host is the environment a scheduler renders into. Calls into the scheduler
// are expected from a single thread, the host's.
type Host interface {
	// Size returns the drawable surface size in pixels.
	Size() (w, h int)
	// RequestFrame asks the host to call Scheduler.Frame again before the
	// next paint.
	RequestFrame()
}

// VisibilityWatcher is implemented by hosts that can report which fraction of
// the surface is on screen. Hosts without it are always visible.
type VisibilityWatcher interface {
	WatchVisibility(fn func(ratio float64)) (stop func())
}

// ResizeWatcher is implemented by hosts that push surface size changes.
type ResizeWatcher interface {
	WatchResize(fn func(w, h int)) (stop func())
}

// IdleProvider is implemented by hosts with a native idle signal.
type IdleProvider interface {
	IdleSource() Source
}

// InteractionProvider is implemented by hosts that report user interaction.
type InteractionProvider interface {
	Interactions() []Source
}

// Options tunes a Scheduler. Zero fields take their defaults.
type Options struct {
	// IdleTimeout bounds the wait for a host idle signal.
	IdleTimeout time.Duration
	// FallbackIdleTimeout is the activation delay for hosts without one.
	FallbackIdleTimeout time.Duration
	// VisibilityThreshold is the visible fraction at or above which
	// rendering runs.
	VisibilityThreshold float64
	// MaxFPS caps the tick rate; zero is uncapped.
	MaxFPS int
	// RenderScale overrides the configuration's render scale when positive.
	RenderScale float64
	Logger      *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	if o.FallbackIdleTimeout <= 0 {
		o.FallbackIdleTimeout = DefaultFallbackIdleTimeout
	}
	if o.VisibilityThreshold <= 0 {
		o.VisibilityThreshold = DefaultVisibilityThreshold
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Scheduler owns the lifecycle of one render surface.
type Scheduler struct {
	host    Host
	clock   core.Clock
	sources []render.Source
	opts    Options
	log     *slog.Logger

	status   Status
	race     *Race
	trigger  Trigger
	pipeline *pipeline.Pipeline
	pending  *pipeline.Pipeline
	backend  render.Backend
	viewport core.Viewport
	step     *core.FixedStep
	origin   time.Duration
	stops    []func()
	loadErr  error
}

// New compiles cfg and prepares a scheduler. Nothing happens until Start.
func New(host Host, clock core.Clock, cfg pipeline.Config, sources []render.Source, opts Options) (*Scheduler, error) {
	if host == nil {
		return nil, errors.New("scheduler: nil host")
	}
	if clock == nil {
		clock = core.NewWallClock()
	}
	p, err := pipeline.Compile(cfg)
	if err != nil {
		return nil, fmt.Errorf("scheduler: new: %w", err)
	}
	opts = opts.withDefaults()
	s := &Scheduler{
		host:     host,
		clock:    clock,
		sources:  sources,
		opts:     opts,
		log:      opts.Logger,
		status:   Initial(),
		pipeline: p,
		step:     core.NewFixedStep(opts.MaxFPS),
	}
	w, h := host.Size()
	s.viewport = core.NewViewport(w, h, s.scaleFor(cfg))
	return s, nil
}

func (s *Scheduler) scaleFor(cfg pipeline.Config) float64 {
	if s.opts.RenderScale > 0 {
		return s.opts.RenderScale
	}
	return cfg.RenderScale
}

// Start moves the scheduler out of Uninitialized and arms the activation race:
// a bounded idle wait plus every interaction the host reports.
func (s *Scheduler) Start() error {
	if err := s.apply(Event{Kind: HostReady}); err != nil {
		return err
	}
	s.origin = s.clock.Now()
	if rw, ok := s.host.(ResizeWatcher); ok {
		s.stops = append(s.stops, rw.WatchResize(s.Resize))
	}

	var sources []Source
	if ip, ok := s.host.(IdleProvider); ok {
		sources = append(sources, ip.IdleSource(), Deadline(s.clock, s.opts.IdleTimeout, TriggerTimeout))
	} else {
		sources = append(sources, Deadline(s.clock, s.opts.FallbackIdleTimeout, TriggerTimeout))
	}
	if ip, ok := s.host.(InteractionProvider); ok {
		sources = append(sources, ip.Interactions()...)
	}
	s.race = NewRace(sources...)
	s.host.RequestFrame()
	return nil
}

// Frame runs one host callback. While awaiting activation it polls the race;
// once active it evaluates a tick. Backend exhaustion is not an error: the
// scheduler parks in Fallback and LoadErr reports the cause.
func (s *Scheduler) Frame(ctx context.Context) error {
	switch s.status.State {
	case Uninitialized:
		return fmt.Errorf("%w: frame before start", ErrInvalidTransition)
	case Destroyed:
		return ErrDestroyed
	case AwaitingActivation:
		trigger, ok := s.race.Poll()
		if !ok {
			s.host.RequestFrame()
			return nil
		}
		return s.activate(ctx, trigger)
	case Active:
		return s.tick(ctx)
	}
	return nil
}

// Activate waits for the activation race and loads the backend. It is the
// blocking counterpart of Frame for hosts without a frame loop.
func (s *Scheduler) Activate(ctx context.Context) error {
	if s.status.State != AwaitingActivation {
		return fmt.Errorf("%w: activate in %s", ErrInvalidTransition, s.status.State)
	}
	trigger, err := s.race.Wait(ctx)
	if err != nil {
		return fmt.Errorf("scheduler: activate: %w", err)
	}
	return s.activate(ctx, trigger)
}

func (s *Scheduler) activate(ctx context.Context, trigger Trigger) error {
	if err := s.apply(Event{Kind: Activated}); err != nil {
		return err
	}
	s.trigger = trigger
	s.log.Info("activation", "trigger", string(trigger))

	b, err := render.Load(ctx, s.sources, s.pipeline.Config(), s.resolution(), s.log)
	if err != nil {
		s.loadErr = err
		return s.apply(Event{Kind: BackendFailed})
	}
	s.backend = b
	if err := s.apply(Event{Kind: BackendReady}); err != nil {
		return err
	}
	if vw, ok := s.host.(VisibilityWatcher); ok {
		s.stops = append(s.stops, vw.WatchVisibility(s.SetVisible))
	}
	if s.status.Running() {
		s.host.RequestFrame()
	}
	return nil
}

func (s *Scheduler) tick(ctx context.Context) error {
	now := s.clock.Now()
	if !s.step.ShouldStep(now) {
		s.host.RequestFrame()
		return nil
	}
	if s.pending != nil {
		s.swap(ctx)
		if !s.status.Running() {
			return nil
		}
	}

	t := (now - s.origin).Seconds()
	if err := s.apply(Event{Kind: Tick, Time: t}); err != nil {
		return err
	}
	rc := pipeline.RenderContext{Time: s.status.LastFrame, Resolution: s.resolution(), Pipeline: s.pipeline}
	err := s.backend.Render(rc)
	s.host.RequestFrame()
	if err != nil {
		return fmt.Errorf("scheduler: render %s: %w", s.backend.Name(), err)
	}
	return nil
}

// swap installs the pending pipeline. A backend that cannot run it is
// replaced through the sources; if none can, the scheduler falls back.
func (s *Scheduler) swap(ctx context.Context) {
	p := s.pending
	s.pending = nil
	cfg := p.Config()

	if scale := s.scaleFor(cfg); scale != s.viewport.Scale {
		s.viewport = core.NewViewport(s.viewport.Surface.W, s.viewport.Surface.H, scale)
		s.resizeBackend()
	}
	if sup, ok := s.backend.(render.Supporter); ok {
		if err := sup.Supports(cfg); err != nil {
			s.log.Info("reloading backend", "backend", s.backend.Name(), "reason", err)
			s.closeBackend()
			b, err := render.Load(ctx, s.sources, cfg, s.resolution(), s.log)
			if err != nil {
				s.loadErr = err
				_ = s.apply(Event{Kind: BackendFailed})
				return
			}
			s.backend = b
		}
	}
	s.pipeline = p
	s.log.Info("profile swapped", "profile", p.Name())
}

// SetConfig queues cfg; it replaces the running pipeline at the start of the
// next tick so a frame never mixes two configurations.
func (s *Scheduler) SetConfig(cfg pipeline.Config) error {
	if s.status.State == Destroyed {
		return ErrDestroyed
	}
	p, err := pipeline.Compile(cfg)
	if err != nil {
		return fmt.Errorf("scheduler: set config: %w", err)
	}
	if s.backend == nil {
		s.pipeline = p
		if scale := s.scaleFor(cfg); scale != s.viewport.Scale {
			s.viewport = core.NewViewport(s.viewport.Surface.W, s.viewport.Surface.H, scale)
		}
		return nil
	}
	s.pending = p
	return nil
}

// Resize recomputes the viewport synchronously. The backend is resized only
// when the render resolution changes, so repeating a size is a no-op.
func (s *Scheduler) Resize(w, h int) {
	if s.status.State == Destroyed {
		return
	}
	vp, changed := s.viewport.Resize(w, h)
	s.viewport = vp
	if changed {
		s.resizeBackend()
	}
}

func (s *Scheduler) resizeBackend() {
	r, ok := s.backend.(render.Resizer)
	if !ok {
		return
	}
	if err := r.Resize(s.resolution()); err != nil {
		s.log.Warn("backend resize failed", "backend", s.backend.Name(), "err", err)
	}
}

// SetVisible reports the visible fraction of the surface. Falling below the
// threshold pauses; reaching it again resumes and requests a frame.
func (s *Scheduler) SetVisible(ratio float64) {
	kind := VisibilityExit
	if ratio >= s.opts.VisibilityThreshold {
		kind = VisibilityEnter
	}
	prev := s.status.State
	if err := s.apply(Event{Kind: kind}); err != nil {
		return
	}
	switch {
	case prev == Active && s.status.State == Paused:
		s.log.Info("render paused")
	case prev == Paused && s.status.State == Active:
		s.log.Info("render resumed")
		s.host.RequestFrame()
	}
}

// Destroy tears the scheduler down: the race is cancelled, host
// subscriptions are released and the backend is closed. It is idempotent.
func (s *Scheduler) Destroy() {
	if s.status.State == Destroyed {
		return
	}
	_ = s.apply(Event{Kind: Teardown})
	if s.race != nil {
		s.race.Cancel()
	}
	for _, stop := range s.stops {
		if stop != nil {
			stop()
		}
	}
	s.stops = nil
	s.closeBackend()
}

func (s *Scheduler) closeBackend() {
	if s.backend == nil {
		return
	}
	if err := render.Close(s.backend); err != nil {
		s.log.Warn("backend close failed", "backend", s.backend.Name(), "err", err)
	}
	s.backend = nil
}

func (s *Scheduler) apply(ev Event) error {
	next, err := s.status.Apply(ev)
	if err != nil {
		return err
	}
	if next.State != s.status.State {
		s.log.Info("scheduler", "from", s.status.State.String(), "to", next.State.String(), "event", ev.Kind.String())
	}
	s.status = next
	return nil
}

func (s *Scheduler) resolution() pipeline.Resolution {
	r := s.viewport.Render
	return pipeline.Resolution{W: r.W, H: r.H}
}

// Status returns the current status value.
func (s *Scheduler) Status() Status { return s.status }

// Trigger returns the event that won activation, or "" before activation.
func (s *Scheduler) Trigger() Trigger { return s.trigger }

// Backend returns the loaded backend, or nil.
func (s *Scheduler) Backend() render.Backend { return s.backend }

// LoadErr returns the error that sent the scheduler to Fallback.
func (s *Scheduler) LoadErr() error { return s.loadErr }

// Pipeline returns the running pipeline.
func (s *Scheduler) Pipeline() *pipeline.Pipeline { return s.pipeline }

// Viewport returns the resolution-derived state.
func (s *Scheduler) Viewport() core.Viewport { return s.viewport }

// Resolution returns the render resolution ticks are evaluated at.
func (s *Scheduler) Resolution() pipeline.Resolution { return s.resolution() }
