//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"worldgen/internal/core"
	"worldgen/internal/world"
)

// Overlay draws optional wind arrows and relief shading over the map.
type Overlay struct {
	scale     int
	showWind  bool
	showShade bool

	shadeImg *ebiten.Image
	shadeBuf []byte
	// shadeSrc is the elevation field the shade image was built from.
	shadeSrc *core.Field[float64]

	pixel       *ebiten.Image
	windSamples []windSample
	windSize    core.Size
	windSpan    float64
}

// NewOverlay constructs an overlay for the given pixel scale.
func NewOverlay(scale int) *Overlay {
	o := &Overlay{scale: max(scale, 1)}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles overlays: W for wind, H for relief shading.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyW) {
		o.showWind = !o.showWind
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		o.showShade = !o.showShade
	}
}

// Draw renders the enabled overlays for whatever layers w holds so far.
func (o *Overlay) Draw(screen *ebiten.Image, w *world.World) {
	if w == nil {
		return
	}
	if o.showShade {
		if elev, err := world.Get[float64](w, world.LayerElevation); err == nil {
			o.drawShade(screen, elev)
		} else if base, err := world.Get[float64](w, world.LayerBaseElevation); err == nil {
			o.drawShade(screen, base)
		}
	}
	if o.showWind {
		u, errU := world.Get[float64](w, world.LayerWindU)
		v, errV := world.Get[float64](w, world.LayerWindV)
		if errU == nil && errV == nil {
			o.drawWind(screen, u, v)
		}
	}
}

func (o *Overlay) drawWind(screen *ebiten.Image, u, v *core.Field[float64]) {
	size := u.Size()
	if o.windSize != size || len(o.windSamples) == 0 {
		o.windSamples, o.windSpan = windGrid(size, o.scale)
		o.windSize = size
	}

	const (
		calmThreshold    = 0.05
		maxSpeedEstimate = 1.1
		headAngle        = math.Pi / 6
	)
	scale := float64(o.scale)
	minLength := o.windSpan * 0.35
	maxLength := o.windSpan * 0.7
	calmDot := math.Max(o.windSpan*0.18, scale*0.75)

	for _, s := range o.windSamples {
		vx, vy := u.At(s.x, s.y), v.At(s.x, s.y)
		speed := math.Hypot(vx, vy)
		if speed < calmThreshold {
			o.drawPoint(screen, s.sx, s.sy, calmDot, color.RGBA{R: 90, G: 130, B: 170, A: 120})
			continue
		}
		nx, ny := vx/speed, vy/speed
		norm := math.Min(speed/maxSpeedEstimate, 1)
		length := minLength + (maxLength-minLength)*math.Sqrt(norm)
		head := math.Min(length*0.3, scale*4.5)
		tail := length * 0.4
		tipX, tipY := s.sx+nx*(length-tail), s.sy+ny*(length-tail)
		thickness := math.Max(scale*(0.65+0.4*norm), 1)

		r, g, b, a := windColor(norm)
		col := color.RGBA{R: r, G: g, B: b, A: a}
		o.drawLine(screen, s.sx-nx*tail, s.sy-ny*tail, tipX-nx*head, tipY-ny*head, thickness, col)
		angle := math.Atan2(ny, nx)
		o.drawLine(screen, tipX, tipY, tipX-math.Cos(angle+headAngle)*head, tipY-math.Sin(angle+headAngle)*head, thickness*0.85, col)
		o.drawLine(screen, tipX, tipY, tipX-math.Cos(angle-headAngle)*head, tipY-math.Sin(angle-headAngle)*head, thickness*0.85, col)
	}
}

func (o *Overlay) drawPoint(screen *ebiten.Image, x, y, size float64, col color.RGBA) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(x-size*0.5, y-size*0.5)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

// drawShade darkens cells by their steepest neighbour drop so relief reads
// on top of categorical layers.
func (o *Overlay) drawShade(screen *ebiten.Image, elev *core.Field[float64]) {
	size := elev.Size()
	if o.shadeImg == nil || o.shadeImg.Bounds().Dx() != size.W || o.shadeImg.Bounds().Dy() != size.H {
		o.shadeImg = ebiten.NewImage(size.W, size.H)
		o.shadeBuf = make([]byte, 4*size.W*size.H)
		o.shadeSrc = nil
	}
	if o.shadeSrc != elev {
		shade(o.shadeBuf, elev)
		o.shadeImg.WritePixels(o.shadeBuf)
		o.shadeSrc = elev
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(o.scale), float64(o.scale))
	screen.DrawImage(o.shadeImg, op)
}
