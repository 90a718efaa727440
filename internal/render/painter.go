//go:build ebiten

package render

import (
	"github.com/hajimehoshi/ebiten/v2"

	"worldgen/internal/core"
	"worldgen/internal/world"
)

// GridPainter keeps one RGBA image the size of the world and redraws it
// from a layer.
type GridPainter struct {
	w, h int
	img  *ebiten.Image
	buf  []byte
}

// NewGridPainter allocates a painter for a grid of size w*h.
func NewGridPainter(w, h int) *GridPainter {
	gp := &GridPainter{w: w, h: h, buf: make([]byte, 4*w*h)}
	gp.img = ebiten.NewImage(w, h)
	return gp
}

// Upload renders l into the painter image.
func (gp *GridPainter) Upload(name world.LayerName, l core.Layer, sea float64) error {
	if s := l.Size(); s.W != gp.w || s.H != gp.h {
		clear(gp.buf)
	} else if err := Fill(gp.buf, name, l, sea); err != nil {
		return err
	}
	gp.img.WritePixels(gp.buf)
	return nil
}

// Clear blanks the image.
func (gp *GridPainter) Clear() {
	clear(gp.buf)
	gp.img.WritePixels(gp.buf)
}

// Blit draws the current image scaled onto dst.
func (gp *GridPainter) Blit(dst *ebiten.Image, scale int) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	dst.DrawImage(gp.img, op)
}

// Size returns the dimensions of the underlying image.
func (gp *GridPainter) Size() (int, int) { return gp.w, gp.h }
