// Package export renders frame sequences to image files without a window.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"caustics/internal/pipeline"
	"caustics/internal/render"

	"golang.org/x/sync/errgroup"
)

// Config holds the parameters of an export run.
type Config struct {
	Pipeline pipeline.Config
	// Width and Height are the output size; frames are shaded at
	// Pipeline.RenderScale of it and upscaled.
	Width  int
	Height int
	Frames int
	FPS    float64
	// Start is the time of the first frame in seconds.
	Start   float64
	OutDir  string
	Format  render.Format
	Workers int
	// Progress is the interval between progress log lines; zero disables.
	Progress time.Duration
	Logger   *slog.Logger
}

// Result describes one written frame.
type Result struct {
	Index int
	Time  float64
	Path  string
}

// FrameTime returns the time of frame i.
func (c Config) FrameTime(i int) float64 {
	if c.FPS <= 0 {
		return c.Start
	}
	return c.Start + float64(i)/c.FPS
}

// FramePath returns the output path of frame i.
func (c Config) FramePath(i int) string {
	return filepath.Join(c.OutDir, fmt.Sprintf("frame_%04d%s", i, c.Format.Ext()))
}

// Run renders every frame and writes it to OutDir. Frames are spread over
// Workers goroutines, each shading its frame on a single goroutine.
func Run(ctx context.Context, cfg Config) ([]Result, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Format == "" {
		cfg.Format = render.FormatWebP
	}
	if cfg.Frames <= 0 {
		return nil, errors.New("export: no frames requested")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("export: invalid size %dx%d", cfg.Width, cfg.Height)
	}
	p, err := pipeline.Compile(cfg.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create %s: %w", cfg.OutDir, err)
	}

	res := pipeline.Resolution{
		W: max(1, int(float64(cfg.Width)*cfg.Pipeline.RenderScale)),
		H: max(1, int(float64(cfg.Height)*cfg.Pipeline.RenderScale)),
	}
	smooth := cfg.Pipeline.Antialias || cfg.Pipeline.PostFX.Pixelate <= 1

	results := make([]Result, cfg.Frames)
	var written atomic.Int64
	start := time.Now()

	done := make(chan struct{})
	defer close(done)
	if cfg.Progress > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Progress)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if n := written.Load(); n > 0 {
						rate := float64(n) / time.Since(start).Seconds()
						cfg.Logger.Info("export progress", "written", n, "total", cfg.Frames, "fps", fmt.Sprintf("%.1f", rate))
					}
				}
			}
		}()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := 0; i < cfg.Frames; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rc := pipeline.RenderContext{Time: cfg.FrameTime(i), Resolution: res, Pipeline: p}
			img, err := render.RenderImage(rc, 1)
			if err != nil {
				return fmt.Errorf("export: frame %d: %w", i, err)
			}
			path := cfg.FramePath(i)
			if err := writeFrame(path, render.Upscale(img, cfg.Width, cfg.Height, smooth), cfg.Format); err != nil {
				return fmt.Errorf("export: frame %d: %w", i, err)
			}
			results[i] = Result{Index: i, Time: rc.Time, Path: path}
			written.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	cfg.Logger.Info("export finished", "frames", cfg.Frames, "dir", cfg.OutDir, "elapsed", time.Since(start).Round(time.Millisecond))
	return results, nil
}

func writeFrame(path string, img image.Image, f render.Format) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return render.Encode(out, img, f)
}
