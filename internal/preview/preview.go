// Package preview provides the static image shown before the renderer is
// ready and kept when it never becomes ready.
package preview

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"caustics/internal/pipeline"
	"caustics/internal/render"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// Load decodes a preview image. The decoder follows the file extension.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("preview: open %s: %w", path, err)
	}
	defer f.Close()
	img, err := Decode(f, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("preview: decode %s: %w", path, err)
	}
	return img, nil
}

// Decode reads an image in the format named by ext.
func Decode(r io.Reader, ext string) (image.Image, error) {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Decode(r)
	case ".jpg", ".jpeg":
		return jpeg.Decode(r)
	case ".webp":
		return webp.Decode(r)
	case ".tga":
		return tga.Decode(r)
	}
	return nil, fmt.Errorf("unsupported preview format %q", ext)
}

// Still renders the first frame of cfg on the CPU.
func Still(cfg pipeline.Config, w, h, workers int) (*image.NRGBA, error) {
	p, err := pipeline.Compile(cfg)
	if err != nil {
		return nil, fmt.Errorf("preview: still: %w", err)
	}
	rc := pipeline.RenderContext{Resolution: pipeline.Resolution{W: w, H: h}, Pipeline: p}
	return render.RenderImage(rc, workers)
}

// LoadOrRender loads path, or renders a still of cfg when path is empty or
// cannot be read. The result is fitted to w x h.
func LoadOrRender(path string, cfg pipeline.Config, w, h, workers int, logger *slog.Logger) (*image.NRGBA, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path != "" {
		img, err := Load(path)
		if err == nil {
			return Fit(img, w, h), nil
		}
		logger.Warn("preview image unavailable, rendering a still", "path", path, "err", err)
	}
	// The still is cheap at reduced size and upscaled like live frames.
	sw, sh := max(1, int(float64(w)*cfg.RenderScale)), max(1, int(float64(h)*cfg.RenderScale))
	still, err := Still(cfg, sw, sh, workers)
	if err != nil {
		return nil, err
	}
	return render.Upscale(still, w, h, cfg.PostFX.Pixelate <= 1), nil
}

// Fit scales img to exactly w x h.
func Fit(img image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
