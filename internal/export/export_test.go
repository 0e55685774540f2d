package export

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"caustics/internal/pipeline"
	"caustics/internal/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Pipeline: pipeline.Default(),
		Width:    32,
		Height:   16,
		Frames:   3,
		FPS:      10,
		Start:    1,
		OutDir:   filepath.Join(t.TempDir(), "frames"),
		Format:   render.FormatPNG,
		Workers:  2,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRunWritesFrameSequence(t *testing.T) {
	cfg := testConfig(t)
	results, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.InDelta(t, 1+float64(i)/10, r.Time, 1e-12)
		assert.Equal(t, filepath.Join(cfg.OutDir, "frame_000"+string(rune('0'+i))+".png"), r.Path)
		assert.FileExists(t, r.Path)
	}

	f, err := os.Open(results[0].Path)
	require.NoError(t, err)
	defer f.Close()
	got, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 32, 16), got.Bounds())

	p := pipeline.MustCompile(cfg.Pipeline)
	small, err := render.RenderImage(pipeline.RenderContext{Time: 1, Resolution: pipeline.Resolution{W: 16, H: 8}, Pipeline: p}, 1)
	require.NoError(t, err)
	want := render.Upscale(small, 32, 16, true)
	for y := 0; y < 16; y++ {
		for x := 0; x < 32; x++ {
			c := color.NRGBAModel.Convert(got.At(x, y)).(color.NRGBA)
			if c != want.NRGBAAt(x, y) {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, c, want.NRGBAAt(x, y))
			}
		}
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Frames = 0
	_, err := Run(context.Background(), cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Width = 0
	_, err = Run(context.Background(), cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Pipeline.Warp.Passes = 0
	_, err = Run(context.Background(), cfg)
	assert.True(t, errors.Is(err, pipeline.ErrInvalidConfig))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, testConfig(t))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFrameTimeAndPath(t *testing.T) {
	cfg := Config{Start: 2, FPS: 4, OutDir: "out", Format: render.FormatWebP}
	assert.Equal(t, 2.5, cfg.FrameTime(2))
	assert.Equal(t, filepath.Join("out", "frame_0012.webp"), cfg.FramePath(12))

	cfg.FPS = 0
	assert.Equal(t, 2.0, cfg.FrameTime(7), "zero fps holds the start time")
}
