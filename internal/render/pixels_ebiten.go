//go:build ebiten

package render

import (
	"context"

	"caustics/internal/pipeline"

	"github.com/hajimehoshi/ebiten/v2"
)

// Pixels shades on the CPU and uploads each frame to an ebiten image.
type Pixels struct {
	cpu *CPU
	img *ebiten.Image
	buf []byte
}

// PixelsSource opens a Pixels backend. It never fails.
func PixelsSource(workers int) Source {
	return Source{
		Name: "cpu",
		Open: func(_ context.Context, _ pipeline.Config, res pipeline.Resolution) (Backend, error) {
			p := &Pixels{cpu: NewCPU(res, workers)}
			if err := p.Resize(res); err != nil {
				return nil, err
			}
			return p, nil
		},
	}
}

// Name returns the backend identifier.
func (p *Pixels) Name() string { return "cpu" }

// Resize reallocates the upload buffers when res changes.
func (p *Pixels) Resize(res pipeline.Resolution) error {
	if err := p.cpu.Resize(res); err != nil {
		return err
	}
	if p.img != nil {
		w, h := p.img.Bounds().Dx(), p.img.Bounds().Dy()
		if w == res.W && h == res.H {
			return nil
		}
		p.img.Dispose()
	}
	p.img = ebiten.NewImage(res.W, res.H)
	p.buf = make([]byte, 4*res.W*res.H)
	return nil
}

// Render shades the frame and uploads it.
func (p *Pixels) Render(rc pipeline.RenderContext) error {
	if err := p.Resize(rc.Resolution); err != nil {
		return err
	}
	if err := p.cpu.Render(rc); err != nil {
		return err
	}
	premultiply(p.buf, p.cpu.Image().Pix)
	p.img.WritePixels(p.buf)
	return nil
}

// Surface returns the uploaded frame.
func (p *Pixels) Surface() *ebiten.Image { return p.img }

// Close releases the ebiten image.
func (p *Pixels) Close() error {
	if p.img != nil {
		p.img.Dispose()
		p.img = nil
	}
	return nil
}
