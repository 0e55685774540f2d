package render

import (
	"context"
	"errors"
	"image"
	"runtime"

	"caustics/internal/pipeline"

	"golang.org/x/sync/errgroup"
)

// CPU shades frames on the CPU, spreading rows over a bounded set of
// goroutines. The frame is kept as a straight-alpha image.
type CPU struct {
	workers int
	img     *image.NRGBA
}

// NewCPU allocates a CPU backend for res. workers <= 0 uses every CPU.
func NewCPU(res pipeline.Resolution, workers int) *CPU {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	c := &CPU{workers: workers}
	c.alloc(res)
	return c
}

// CPUSource opens a CPU backend. It never fails.
func CPUSource(workers int) Source {
	return Source{
		Name: "cpu",
		Open: func(_ context.Context, _ pipeline.Config, res pipeline.Resolution) (Backend, error) {
			return NewCPU(res, workers), nil
		},
	}
}

// Name returns the backend identifier.
func (c *CPU) Name() string { return "cpu" }

// Resize reallocates the frame when res differs from the current size.
func (c *CPU) Resize(res pipeline.Resolution) error {
	if res.W <= 0 || res.H <= 0 {
		return errors.New("render: cpu: empty resolution")
	}
	b := c.img.Bounds()
	if b.Dx() != res.W || b.Dy() != res.H {
		c.alloc(res)
	}
	return nil
}

func (c *CPU) alloc(res pipeline.Resolution) {
	c.img = image.NewNRGBA(image.Rect(0, 0, max(res.W, 0), max(res.H, 0)))
}

// Render shades every pixel of rc into the frame.
func (c *CPU) Render(rc pipeline.RenderContext) error {
	if rc.Pipeline == nil {
		return errors.New("render: cpu: nil pipeline")
	}
	if err := c.Resize(rc.Resolution); err != nil {
		return err
	}
	var g errgroup.Group
	g.SetLimit(c.workers)
	stride := c.img.Stride
	rowBytes := rc.Resolution.W * 4
	for y := 0; y < rc.Resolution.H; y++ {
		row := c.img.Pix[y*stride : y*stride+rowBytes]
		g.Go(func() error {
			fillRow(row, rc, y)
			return nil
		})
	}
	return g.Wait()
}

// Image returns the last rendered frame. It is overwritten by the next Render.
func (c *CPU) Image() *image.NRGBA { return c.img }

// RenderImage shades a single frame into a new image.
func RenderImage(rc pipeline.RenderContext, workers int) (*image.NRGBA, error) {
	c := NewCPU(rc.Resolution, workers)
	if err := c.Render(rc); err != nil {
		return nil, err
	}
	return c.img, nil
}
