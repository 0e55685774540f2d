// Package render turns compiled pipelines into pixels. Backends are opened
// from an ordered list of sources; the first one that opens wins.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"caustics/internal/pipeline"
)

var (
	// ErrBackendUnavailable is returned by Load when every source failed.
	ErrBackendUnavailable = errors.New("render: no backend available")
	// ErrUnsupported is returned by a source or backend that cannot evaluate a
	// configuration.
	ErrUnsupported = errors.New("render: configuration not supported")
)

// Backend evaluates one frame per Render call.
type Backend interface {
	Name() string
	Render(rc pipeline.RenderContext) error
}

// Resizer is implemented by backends that keep size-derived buffers.
type Resizer interface {
	Resize(res pipeline.Resolution) error
}

// Supporter is implemented by backends that can only run some configurations.
type Supporter interface {
	Supports(cfg pipeline.Config) error
}

// Source opens a backend.
type Source struct {
	Name string
	Open func(ctx context.Context, cfg pipeline.Config, res pipeline.Resolution) (Backend, error)
}

// Load tries sources in order and returns the first backend that opens. Each
// failure is logged and the next source is tried. When all fail the returned
// error wraps ErrBackendUnavailable and every cause.
func Load(ctx context.Context, sources []Source, cfg pipeline.Config, res pipeline.Resolution, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var errs []error
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if src.Open == nil {
			continue
		}
		b, err := src.Open(ctx, cfg, res)
		if err == nil && b == nil {
			err = errors.New("source returned no backend")
		}
		if err != nil {
			logger.Warn("backend source failed", "source", src.Name, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name, err))
			continue
		}
		logger.Info("backend ready", "source", src.Name, "profile", cfg.Name)
		return b, nil
	}
	if len(errs) == 0 {
		errs = append(errs, errors.New("no sources"))
	}
	logger.Error("all backend sources failed", "sources", len(sources))
	return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, errors.Join(errs...))
}

// Close releases b when it holds resources.
func Close(b Backend) error {
	if c, ok := b.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
