package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"caustics/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestLoadPNGAndFit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 255})))
	path := filepath.Join(t.TempDir(), "preview.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	img, err := LoadOrRender(path, pipeline.Default(), 16, 8, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())
	got := img.NRGBAAt(7, 3)
	assert.InDelta(t, 10, int(got.R), 1)
	assert.InDelta(t, 20, int(got.G), 1)
	assert.InDelta(t, 30, int(got.B), 1)
	assert.Equal(t, uint8(255), got.A)
}

func TestDecodeRejectsUnknownFormat(t *testing.T) {
	_, err := Decode(bytes.NewReader(nil), ".bmp")
	assert.Error(t, err)
}

func TestMissingPreviewFallsBackToStill(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	cfg := pipeline.Default()

	img, err := LoadOrRender(filepath.Join(t.TempDir(), "gone.webp"), cfg, 20, 10, 2, logger)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 10), img.Bounds())
	assert.Contains(t, logs.String(), "preview image unavailable")
}

func TestStillIsFirstFrame(t *testing.T) {
	cfg := pipeline.Default()
	still, err := Still(cfg, 6, 4, 1)
	require.NoError(t, err)
	c, err := pipeline.Shade(2, 3, pipeline.Resolution{W: 6, H: 4}, 0, cfg)
	require.NoError(t, err)
	assert.Equal(t, c.NRGBA(), still.NRGBAAt(2, 0), "top image row is the last shading row")

	bad := cfg.Clone()
	bad.Camera.Tiling = -1
	_, err = Still(bad, 2, 2, 1)
	assert.ErrorIs(t, err, pipeline.ErrInvalidConfig)
	_, err = LoadOrRender("", bad, 2, 2, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestFade(t *testing.T) {
	f := NewFade(0)
	assert.Equal(t, 1.0, f.Alpha(time.Hour))
	assert.False(t, f.Done(time.Hour))

	f.Start(time.Second)
	f.Start(2 * time.Second)
	assert.True(t, f.Started())
	assert.Equal(t, 1.0, f.Alpha(time.Second))
	assert.InDelta(t, 0.25, f.Alpha(time.Second+250*time.Millisecond), 1e-12)
	assert.Equal(t, 0.0, f.Alpha(time.Second+DefaultFade))
	assert.True(t, f.Done(time.Second+DefaultFade))
}
