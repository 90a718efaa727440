//go:build ebiten

package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/pflag"

	"worldgen/internal/app"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(pflag.CommandLine)
	pflag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	p, err := cfg.WorldParams()
	if err != nil {
		logger.Error("invalid params", slog.String("error", err.Error()))
		os.Exit(2)
	}
	session, err := app.NewSession(p, logger)
	if err != nil {
		logger.Error("invalid params", slog.String("error", err.Error()))
		os.Exit(2)
	}

	game := app.New(session, cfg, logger)
	size := p.Size()

	ebiten.SetWindowTitle("worldgen viewer")
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(size.W*cfg.Scale+max(cfg.HUDWidth, 0), size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Error("viewer stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
