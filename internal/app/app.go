//go:build ebiten

package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"time"

	"caustics/internal/core"
	"caustics/internal/pipeline"
	"caustics/internal/preview"
	"caustics/internal/render"
	"caustics/internal/scheduler"
	"caustics/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Options configures a Game.
type Options struct {
	Width       int
	Height      int
	FPS         int
	IdleTimeout time.Duration
	Workers     int
	HUD         bool
	// Preview is shown until the first live frame and fades out after.
	Preview *image.NRGBA
	// Reloads delivers configurations from a watched profile file.
	Reloads <-chan pipeline.Config
	Logger  *slog.Logger
}

// hudWidth is the width of the parameter panel.
const hudWidth = 240

// Game adapts a frame scheduler to the ebiten.Game interface.
type Game struct {
	host    *Host
	sched   *scheduler.Scheduler
	clock   *core.WallClock
	cfg     pipeline.Config
	hud     *ui.HUD
	overlay *ui.Overlay
	log     *slog.Logger

	preview *ebiten.Image
	fade    *preview.Fade
	reloads <-chan pipeline.Config

	paused bool
	w, h   int
}

// New constructs a Game rendering cfg. Backends are tried in order: the Kage
// shader first, then CPU shading uploaded as pixels.
func New(cfg pipeline.Config, opts Options) (*Game, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	host := NewHost(opts.Width, opts.Height)
	clock := core.NewWallClock()
	sources := []render.Source{render.KageSource(), render.PixelsSource(opts.Workers)}
	sched, err := scheduler.New(host, clock, cfg, sources, scheduler.Options{
		IdleTimeout: opts.IdleTimeout,
		MaxFPS:      opts.FPS,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("app: new: %w", err)
	}
	g := &Game{
		host:    host,
		sched:   sched,
		clock:   clock,
		cfg:     cfg,
		overlay: ui.NewOverlay(),
		log:     logger,
		fade:    preview.NewFade(preview.DefaultFade),
		reloads: opts.Reloads,
		w:       opts.Width,
		h:       opts.Height,
	}
	if opts.HUD {
		g.hud = ui.NewHUD(hudWidth, ui.DefaultControls(), g.adjust)
	}
	if opts.Preview != nil {
		g.preview = ebiten.NewImageFromImage(opts.Preview)
	}
	if err := sched.Start(); err != nil {
		return nil, fmt.Errorf("app: start: %w", err)
	}
	return g, nil
}

// Update handles input and drives the scheduler.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	g.forwardInput()
	g.drainReloads()

	if g.host.TakeFrameRequest() {
		err := g.sched.Frame(context.Background())
		switch {
		case errors.Is(err, scheduler.ErrDestroyed):
			return ebiten.Termination
		case err != nil:
			g.log.Warn("frame failed", "err", err)
		}
	}

	st := g.sched.Status()
	syncFade(g.fade, g.clock.Now(), st, g.sched.Backend() != nil)
	status := ui.Status{
		Profile: g.cfg.Name,
		State:   st.State.String(),
		Trigger: string(g.sched.Trigger()),
		TPS:     ebiten.ActualTPS(),
	}
	if b := g.sched.Backend(); b != nil {
		status.Backend = b.Name()
	}
	g.hud.Update(g.cfg.Parameters(), status, g.w-g.hud.Width())
	g.overlay.Update(ui.Banner(st, g.sched.LoadErr()), g.cfg)
	return nil
}

func (g *Game) forwardInput() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.host.Interact(scheduler.TriggerClick)
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		g.host.Interact(scheduler.TriggerScroll)
	}
	if len(inpututil.AppendJustPressedTouchIDs(nil)) > 0 {
		g.host.Interact(scheduler.TriggerTouch)
	}
	if len(inpututil.AppendJustPressedKeys(nil)) > 0 {
		g.host.Interact(scheduler.TriggerKey)
	}
	if ebiten.ActualTPS() > 0 {
		g.host.Idle()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		switch g.sched.Status().State {
		case scheduler.Active, scheduler.Paused:
			g.paused = !g.paused
		}
	}
	ratio := 1.0
	if g.paused || ebiten.IsWindowMinimized() {
		ratio = 0
	}
	g.host.SetVisibility(ratio)
}

func (g *Game) drainReloads() {
	for {
		select {
		case cfg, ok := <-g.reloads:
			if !ok {
				g.reloads = nil
				return
			}
			g.setConfig(cfg)
		default:
			return
		}
	}
}

// adjust applies a single HUD override to the running configuration.
func (g *Game) adjust(key, value string) {
	g.setConfig(pipeline.ApplyOverrides(g.cfg, map[string]string{key: value}))
}

func (g *Game) setConfig(cfg pipeline.Config) {
	if err := g.sched.SetConfig(cfg); err != nil {
		g.log.Warn("configuration rejected", "err", err)
		return
	}
	g.cfg = cfg
}

// Draw renders the live surface, the fading preview and the panels.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	if s, ok := g.sched.Backend().(render.Surface); ok {
		if img := s.Surface(); img != nil {
			filter := ebiten.FilterNearest
			if g.cfg.Antialias {
				filter = ebiten.FilterLinear
			}
			drawFitted(screen, img, 1, filter)
		}
	}
	now := g.clock.Now()
	if g.preview != nil && !g.fade.Done(now) {
		drawFitted(screen, g.preview, float32(g.fade.Alpha(now)), ebiten.FilterLinear)
	}
	g.overlay.Draw(screen)
	g.hud.Draw(screen, g.w-g.hud.Width())
}

func drawFitted(screen, img *ebiten.Image, alpha float32, filter ebiten.Filter) {
	sb, ib := screen.Bounds(), img.Bounds()
	if ib.Dx() == 0 || ib.Dy() == 0 {
		return
	}
	op := &ebiten.DrawImageOptions{Filter: filter}
	op.GeoM.Scale(float64(sb.Dx())/float64(ib.Dx()), float64(sb.Dy())/float64(ib.Dy()))
	op.ColorScale.ScaleAlpha(alpha)
	screen.DrawImage(img, op)
}

// Layout tracks the window size; the scheduler resizes synchronously.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.w, g.h = outsideWidth, outsideHeight
	g.host.SetSize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// Close tears down the scheduler and releases GPU images.
func (g *Game) Close() {
	g.sched.Destroy()
	if g.preview != nil {
		g.preview.Dispose()
		g.preview = nil
	}
}
