//go:build ebiten

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"

	"caustics/internal/app"
	"caustics/internal/config"
	"caustics/internal/pipeline"
	_ "caustics/internal/profiles/classic"
	_ "caustics/internal/profiles/lite"
	_ "caustics/internal/profiles/retro"
	_ "caustics/internal/profiles/soft"
	"caustics/internal/preview"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := config.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	pcfg, err := cfg.Load()
	if err != nil {
		log.Fatal(err)
	}

	still, err := preview.LoadOrRender(cfg.Preview, pcfg, cfg.Width, cfg.Height, cfg.Workers, logger)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads chan pipeline.Config
	if cfg.Watch && cfg.File != "" {
		w, err := config.NewWatcher(cfg.File, logger)
		if err != nil {
			log.Fatal(err)
		}
		defer w.Close()
		reloads = make(chan pipeline.Config, 1)
		go w.Run(ctx, func(f config.File) {
			next, err := cfg.Pipeline(&f)
			if err != nil {
				logger.Warn("reloaded profile rejected", "err", err)
				return
			}
			select {
			case reloads <- next:
			default:
				// Drop the stale pending config in favor of the newest.
				select {
				case <-reloads:
				default:
				}
				reloads <- next
			}
		})
	}

	game, err := app.New(pcfg, app.Options{
		Width:       cfg.Width,
		Height:      cfg.Height,
		FPS:         cfg.FPS,
		IdleTimeout: cfg.IdleTimeout,
		Workers:     cfg.Workers,
		HUD:         cfg.HUD,
		Preview:     still,
		Reloads:     reloads,
		Logger:      logger,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	ebiten.SetWindowTitle("caustics - " + pcfg.Name)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetRunnableOnUnfocused(true)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
