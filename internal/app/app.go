//go:build ebiten

package app

import (
	"context"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"worldgen/internal/core"
	"worldgen/internal/render"
	"worldgen/internal/ui"
)

var layerKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// Game adapts a generation Session to the ebiten.Game interface.
type Game struct {
	session *Session
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	cadence *core.Cadence
	logger  *slog.Logger

	scale int
}

// New constructs a Game for the provided session.
func New(s *Session, cfg *Config, logger *slog.Logger) *Game {
	size := s.Params().Size()
	return &Game{
		session: s,
		painter: render.NewGridPainter(size.W, size.H),
		overlay: ui.NewOverlay(cfg.Scale),
		hud:     ui.NewHUD(cfg.HUDWidth),
		cadence: core.NewCadence(cfg.StepEvery),
		logger:  logger,
		scale:   cfg.Scale,
	}
}

// Update handles input and advances the pipeline.
func (g *Game) Update() error {
	ctx := context.Background()
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.session.SetRunning(!g.session.Running())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.session.SetRunning(true)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		g.session.Finish(ctx)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.session.Step(ctx)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.restart(g.session.Restart())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.restart(g.session.ReseedNext())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.session.NextLayer()
	}
	for i, k := range layerKeys {
		if inpututil.IsKeyJustPressed(k) {
			g.session.SelectLayer(i)
		}
	}
	g.overlay.Update()

	if g.session.Running() && g.cadence.Due() {
		g.session.Step(ctx)
	}
	g.hud.Update(g.session.Status())

	if g.session.TakeDirty() {
		g.upload()
	}
	return nil
}

func (g *Game) restart(err error) {
	if err != nil {
		g.logger.Error("restart failed", slog.String("error", err.Error()))
	}
}

func (g *Game) upload() {
	name, l, ok := g.session.Layer()
	if !ok {
		g.painter.Clear()
		return
	}
	if err := g.painter.Upload(name, l, g.session.Params().Base.SeaLevel); err != nil {
		g.logger.Warn("layer not drawable", slog.String("layer", string(name)), slog.String("error", err.Error()))
		g.painter.Clear()
	}
}

// Draw renders the selected layer, overlays and the status panel.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	g.painter.Blit(screen, g.scale)
	g.overlay.Draw(screen, g.session.World())
	w, h := g.painter.Size()
	g.hud.Draw(screen, w*g.scale, h*g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.painter.Size()
	return w*g.scale + g.hud.Width(), h * g.scale
}
