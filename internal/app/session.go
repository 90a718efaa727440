package app

import (
	"context"
	"errors"
	"log/slog"

	"worldgen/internal/core"
	"worldgen/internal/params"
	"worldgen/internal/pipeline"
	"worldgen/internal/render"
	"worldgen/internal/ui"
	"worldgen/internal/world"
	rng "worldgen/pkg/core"
)

// Session drives one world generation a stage at a time for the viewer.
// It is not safe for concurrent use.
type Session struct {
	params  params.WorldParams
	opts    []pipeline.Option
	logger  *slog.Logger
	stepper *pipeline.Stepper
	reseeds *rng.RNG
	err     error

	layer   int
	running bool
	dirty   bool
}

// NewSession prepares a run for p. Invalid params are reported here.
func NewSession(p params.WorldParams, logger *slog.Logger, opts ...pipeline.Option) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		params:  p,
		opts:    append([]pipeline.Option{pipeline.WithLogger(logger)}, opts...),
		logger:  logger,
		reseeds: rng.NewStreams(p.Seed).StreamFor("viewer/reseed"),
	}
	if err := s.Restart(); err != nil {
		return nil, err
	}
	return s, nil
}

// Restart discards the current run and starts over with the same params.
func (s *Session) Restart() error {
	st, err := pipeline.NewStepper(s.params, s.opts...)
	if err != nil {
		return err
	}
	s.stepper = st
	s.err = nil
	s.running = false
	s.dirty = true
	return nil
}

// Reseed restarts with a different seed.
func (s *Session) Reseed(seed int64) error {
	s.params.Seed = seed
	return s.Restart()
}

// ReseedNext restarts with the next seed of a stream rooted at the seed the
// session started with, so the same key presses revisit the same worlds.
func (s *Session) ReseedNext() error {
	return s.Reseed(s.reseeds.Int64())
}

// Params returns the parameters of the current run.
func (s *Session) Params() params.WorldParams { return s.params }

// Step runs the next stage. It is a no-op once the run finished or failed.
func (s *Session) Step(ctx context.Context) {
	if s.err != nil || s.stepper.Done() {
		s.running = false
		return
	}
	if _, err := s.stepper.RunNext(ctx); err != nil {
		if !errors.Is(err, pipeline.ErrFinished) {
			s.err = err
			s.logger.Warn("viewer run stopped", slog.String("error", err.Error()))
		}
		s.running = false
	}
	if s.stepper.Done() {
		s.running = false
	}
	s.dirty = true
}

// Finish runs every remaining stage.
func (s *Session) Finish(ctx context.Context) {
	for s.err == nil && !s.stepper.Done() {
		s.Step(ctx)
	}
}

// SetRunning starts or stops automatic stepping.
func (s *Session) SetRunning(on bool) {
	s.running = on && s.err == nil && !s.stepper.Done()
}

// Running reports whether automatic stepping is on.
func (s *Session) Running() bool { return s.running }

// Done reports whether the world was finalized.
func (s *Session) Done() bool { return s.stepper.Done() }

// Err returns the error that stopped the run.
func (s *Session) Err() error { return s.err }

// NextLayer cycles the displayed layer.
func (s *Session) NextLayer() {
	s.layer = (s.layer + 1) % len(render.ImageLayers)
	s.dirty = true
}

// SelectLayer shows render.ImageLayers[i]. Out of range indexes are ignored.
func (s *Session) SelectLayer(i int) {
	if i < 0 || i >= len(render.ImageLayers) {
		return
	}
	s.layer = i
	s.dirty = true
}

// LayerName returns the selected layer.
func (s *Session) LayerName() world.LayerName { return render.ImageLayers[s.layer] }

// Layer returns the selected layer if the run produced it yet.
func (s *Session) Layer() (world.LayerName, core.Layer, bool) {
	name := s.LayerName()
	l, ok := s.stepper.World().Layer(name)
	return name, l, ok
}

// World exposes the layers produced so far.
func (s *Session) World() *world.World { return s.stepper.World() }

// TakeDirty reports whether the picture changed since the last call.
func (s *Session) TakeDirty() bool {
	d := s.dirty
	s.dirty = false
	return d
}

// Status snapshots the run for the HUD.
func (s *Session) Status() ui.Status {
	st := ui.Status{
		Seed:    s.params.Seed,
		Width:   s.params.Width,
		Height:  s.params.Height,
		RunID:   s.stepper.RunID(),
		Layer:   string(s.LayerName()),
		Running: s.running,
		Params:  s.params.Snapshot(),
	}
	reports := s.stepper.Reports()
	next := s.stepper.Next()
	for i, name := range pipeline.StageNames() {
		line := ui.StageLine{Name: name}
		switch {
		case i < len(reports):
			line.State = ui.StageDone
			line.Duration = reports[i].Duration
			line.Hash = reports[i].Hash.Short()
		case name == next && s.err != nil:
			line.State = ui.StageFailed
		case name == next:
			line.State = ui.StageNext
		}
		st.Stages = append(st.Stages, line)
	}
	if res := s.stepper.Result(); res != nil {
		st.Checksum = res.Checksum.Short()
	}
	if s.err != nil {
		st.Err = s.err.Error()
	}
	return st
}
