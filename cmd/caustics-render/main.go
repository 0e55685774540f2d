package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"caustics/internal/config"
	"caustics/internal/export"
	"caustics/internal/pipeline"
	_ "caustics/internal/profiles/classic"
	_ "caustics/internal/profiles/lite"
	_ "caustics/internal/profiles/retro"
	_ "caustics/internal/profiles/soft"
	"caustics/internal/render"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := config.NewConfig()
	cfg.Bind(flag.CommandLine)
	frames := flag.Int("frames", 1, "number of frames to render")
	start := flag.Float64("start", 0, "time of the first frame in seconds")
	out := flag.String("out", "frames", "output directory")
	format := flag.String("format", string(render.FormatWebP), "output format (webp, png)")
	list := flag.Bool("list", false, "print the resolved parameters and exit")
	flag.Parse()

	pcfg, err := cfg.Load()
	if err != nil {
		log.Fatal(err)
	}
	if *list {
		printParams(pcfg)
		return
	}
	f, err := render.ParseFormat(*format)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fps := float64(cfg.FPS)
	if fps <= 0 {
		fps = 60
	}
	results, err := export.Run(ctx, export.Config{
		Pipeline: pcfg,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Frames:   *frames,
		FPS:      fps,
		Start:    *start,
		OutDir:   *out,
		Format:   f,
		Workers:  cfg.Workers,
		Progress: 2 * time.Second,
		Logger:   logger,
	})
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range results {
		fmt.Printf("%s t=%.3f\n", r.Path, r.Time)
	}
}

func printParams(c pipeline.Config) {
	fmt.Printf("profile %s\n", c.Name)
	for _, g := range c.Parameters().Groups {
		fmt.Printf("\n[%s]", g.Name)
		if g.Summary != "" {
			fmt.Printf(" %s", g.Summary)
		}
		fmt.Println()
		for _, p := range g.Params {
			fmt.Printf("  %-18s %s\n", p.Key, p.Value)
		}
	}
}
