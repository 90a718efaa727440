//go:build ebiten

package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// HUD renders the run status panel to the right of the map.
type HUD struct {
	width      int
	panel      *ebiten.Image
	lastHeight int
	status     Status
}

// NewHUD constructs a HUD with the given panel width.
func NewHUD(width int) *HUD {
	return &HUD{width: max(width, 0)}
}

// Width returns the panel width in pixels.
func (h *HUD) Width() int {
	if h == nil {
		return 0
	}
	return h.width
}

// Update caches the snapshot drawn on the next frame.
func (h *HUD) Update(s Status) {
	if h == nil {
		return
	}
	h.status = s
}

// Draw paints the panel at offsetX with the given height.
func (h *HUD) Draw(screen *ebiten.Image, offsetX, height int) {
	if h == nil || h.width <= 0 || height <= 0 {
		return
	}
	if h.panel == nil || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})

	face := basicfont.Face7x13
	y := panelPadding + headerBaseline
	text.Draw(h.panel, "World Generator", face, panelPadding, y, color.RGBA{R: 200, G: 200, B: 210, A: 255})
	y += infoSpacing
	for _, line := range h.status.Lines() {
		if y > height-panelPadding {
			break
		}
		text.Draw(h.panel, line, face, panelPadding, y, lineColor(line))
		y += lineHeight
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func lineColor(line string) color.RGBA {
	if line == "" {
		return color.RGBA{}
	}
	switch line[0] {
	case '!', 'f':
		return color.RGBA{R: 230, G: 110, B: 100, A: 255}
	case '>':
		return color.RGBA{R: 240, G: 220, B: 140, A: 255}
	case ' ':
		return color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	return color.RGBA{R: 220, G: 220, B: 230, A: 255}
}

const (
	panelPadding   = 12
	lineHeight     = 16
	headerBaseline = 18
	infoSpacing    = 24
)
