//go:build ebiten

package ui

import (
	"fmt"
	"image"
	"image/color"

	"caustics/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// Status is the scheduler summary shown at the top of the HUD.
type Status struct {
	Profile string
	State   string
	Backend string
	Trigger string
	TPS     float64
}

// HUD renders the parameter panel along the right edge of the screen.
type HUD struct {
	width      int
	panel      *ebiten.Image
	lastHeight int
	snapshot   core.ParameterSnapshot
	status     Status
	visible    bool

	controls     []hudControlState
	onAdjust     func(key, value string)
	panelOffsetX int

	pixel *ebiten.Image
}

type hudControlState struct {
	control  Control
	value    float64
	hasValue bool

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

// NewHUD constructs a HUD of the given width. onAdjust receives the override
// key and value whenever a +/- button changes a parameter.
func NewHUD(width int, controls []Control, onAdjust func(key, value string)) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{width: width, onAdjust: onAdjust, visible: true}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	h.controls = make([]hudControlState, len(controls))
	for i, ctrl := range controls {
		h.controls[i] = hudControlState{control: ctrl}
	}
	h.layoutControls()
	return h
}

// Width returns the panel width, or zero when hidden.
func (h *HUD) Width() int {
	if h == nil || !h.visible {
		return 0
	}
	return h.width
}

// Update refreshes the cached snapshot and handles panel input.
func (h *HUD) Update(snap core.ParameterSnapshot, status Status, panelOffsetX int) {
	if h == nil {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		h.visible = !h.visible
	}
	h.snapshot = snap
	h.status = status
	h.panelOffsetX = panelOffsetX
	for i := range h.controls {
		st := &h.controls[i]
		st.value, st.hasValue = controlValue(snap, st.control)
	}
	if h.visible {
		h.handleInput()
	}
}

// Draw paints the panel at offsetX.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int) {
	if h == nil || h.width <= 0 || !h.visible {
		return
	}
	height := screen.Bounds().Dy()
	if height <= 0 {
		return
	}
	if h.panel == nil || h.lastHeight != height {
		if h.panel != nil {
			h.panel.Dispose()
		}
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 230})
	h.drawStatus()
	h.drawControls()
	h.drawGroups()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) handleInput() {
	if len(h.controls) == 0 || h.onAdjust == nil {
		return
	}
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx < h.panelOffsetX {
		return
	}
	px := mx - h.panelOffsetX
	for i := range h.controls {
		st := &h.controls[i]
		if !st.hasValue {
			continue
		}
		dir := 0
		switch {
		case pointInRect(px, my, st.minusRect):
			dir = -1
		case pointInRect(px, my, st.plusRect):
			dir = 1
		default:
			continue
		}
		if target, ok := st.control.Adjust(st.value, dir); ok {
			st.value = target
			h.onAdjust(st.control.Key, st.control.Override(target))
		}
		return
	}
}

func (h *HUD) drawStatus() {
	face := basicfont.Face7x13
	title := h.status.Profile
	if title == "" {
		title = "caustics"
	}
	text.Draw(h.panel, title, face, panelPadding, panelPadding+headerBaseline, colorTitle)
	lines := []string{
		fmt.Sprintf("state    %s", h.status.State),
		fmt.Sprintf("backend  %s", orDash(h.status.Backend)),
		fmt.Sprintf("trigger  %s", orDash(h.status.Trigger)),
		fmt.Sprintf("tps      %.0f", h.status.TPS),
	}
	for i, l := range lines {
		text.Draw(h.panel, l, face, panelPadding, statusTop+i*statusLine, colorMuted)
	}
}

func (h *HUD) drawControls() {
	face := basicfont.Face7x13
	for i := range h.controls {
		st := &h.controls[i]
		labelY := st.top + labelBaseline
		text.Draw(h.panel, st.control.Label, face, panelPadding, labelY, colorText)

		value, valueColor := "--", colorMuted
		if st.hasValue {
			value, valueColor = st.control.Format(st.value), colorText
		}
		bounds := text.BoundString(face, value)
		text.Draw(h.panel, value, face, st.minusRect.Min.X-buttonGap-bounds.Dx(), labelY, valueColor)

		_, canDec := st.control.Adjust(st.value, -1)
		_, canInc := st.control.Adjust(st.value, 1)
		h.drawButton(st.minusRect, "-", st.hasValue && canDec)
		h.drawButton(st.plusRect, "+", st.hasValue && canInc)
	}
}

// drawGroups lists the read-only summary of every parameter group below the
// controls.
func (h *HUD) drawGroups() {
	face := basicfont.Face7x13
	y := controlsTop + len(h.controls)*lineHeight + headerBaseline
	for _, g := range h.snapshot.Groups {
		if y > h.lastHeight-panelPadding {
			return
		}
		line := g.Name
		if g.Summary != "" {
			line += ": " + g.Summary
		}
		text.Draw(h.panel, line, face, panelPadding, y, colorMuted)
		y += statusLine
	}
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	if h.pixel == nil {
		return
	}
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(bg)
	h.panel.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

func (h *HUD) layoutControls() {
	if h.width <= 0 {
		return
	}
	for i := range h.controls {
		top := controlsTop + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plusRect := image.Rect(h.width-panelPadding-buttonSize, buttonY, h.width-panelPadding, buttonY+buttonSize)
		minusRect := image.Rect(plusRect.Min.X-buttonGap-buttonSize, buttonY, plusRect.Min.X-buttonGap, buttonY+buttonSize)
		h.controls[i].top = top
		h.controls[i].minusRect = minusRect
		h.controls[i].plusRect = plusRect
	}
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var (
	colorTitle = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	colorText  = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	colorMuted = color.RGBA{R: 160, G: 160, B: 170, A: 255}
)

const (
	panelPadding   = 12
	lineHeight     = 30
	buttonSize     = 22
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 20
	statusLine     = 16
	statusTop      = panelPadding + headerBaseline + 20
	controlsTop    = statusTop + 4*statusLine
)
