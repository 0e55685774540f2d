//go:build ebiten

package ui

import (
	"fmt"
	"image/color"

	"caustics/internal/pipeline"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// Overlay draws the activation banner and an optional layer legend on top of
// the render surface.
type Overlay struct {
	showLegend bool
	banner     string
	layers     []pipeline.Layer
	strategy   pipeline.Strategy

	pixel *ebiten.Image
}

// NewOverlay constructs a new overlay instance.
func NewOverlay() *Overlay {
	o := &Overlay{}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update refreshes the banner text and legend contents. Key 1 toggles the
// legend.
func (o *Overlay) Update(banner string, cfg pipeline.Config) {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showLegend = !o.showLegend
	}
	o.banner = banner
	o.layers = cfg.Composite.Layers
	o.strategy = cfg.Composite.Strategy
}

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return
	}
	if o.banner != "" {
		o.drawBanner(screen, o.banner)
	}
	if o.showLegend {
		o.drawLegend(screen)
	}
}

func (o *Overlay) drawBanner(screen *ebiten.Image, msg string) {
	face := basicfont.Face7x13
	bounds := text.BoundString(face, msg)
	const pad = 10
	w := bounds.Dx() + 2*pad
	h := bounds.Dy() + 2*pad
	sb := screen.Bounds()
	x := (sb.Dx() - w) / 2
	y := sb.Dy() - h - 24
	o.fillRect(screen, float64(x), float64(y), float64(w), float64(h), color.RGBA{R: 8, G: 10, B: 14, A: 200})
	text.Draw(screen, msg, face, x+pad, y+pad+bounds.Dy(), colorText)
}

func (o *Overlay) drawLegend(screen *ebiten.Image) {
	face := basicfont.Face7x13
	const (
		left   = 12
		top    = 12
		row    = 18
		swatch = 12
	)
	o.fillRect(screen, left-6, top-6, 200, float64(len(o.layers)*row+row+6), color.RGBA{R: 8, G: 10, B: 14, A: 180})
	text.Draw(screen, string(o.strategy), face, left, top+swatch, colorMuted)
	for i, l := range o.layers {
		y := top + (i+1)*row
		o.fillRect(screen, left, float64(y), swatch, swatch, layerColor(l))
		label := fmt.Sprintf("%s p%d > %.2f", l.Name, l.Priority, l.Threshold)
		if o.strategy == pipeline.StrategyLinearMix {
			label = l.Name
		}
		text.Draw(screen, label, face, left+swatch+8, y+swatch-1, colorText)
	}
}

func (o *Overlay) fillRect(screen *ebiten.Image, x, y, w, h float64, col color.RGBA) {
	if o.pixel == nil || w <= 0 || h <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func layerColor(l pipeline.Layer) color.RGBA {
	return color.RGBA{R: to8(l.Color[0]), G: to8(l.Color[1]), B: to8(l.Color[2]), A: 255}
}

func to8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
