// Package pipeline runs the generation stages in order, hashes every layer
// as it is produced and seals the finished world with a checksum.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"worldgen/internal/core"
	"worldgen/internal/params"
	"worldgen/internal/world"
	rng "worldgen/pkg/core"
)

// LayerHash pairs a layer with the hash recorded when it was installed.
type LayerHash struct {
	Name world.LayerName
	Hash world.Hash
}

// StageReport describes one completed stage.
type StageReport struct {
	Name     string
	Duration time.Duration
	// Hash combines the hashes of the stage outputs in declared order.
	Hash   world.Hash
	Layers []LayerHash
}

// Result is a finalized world.
type Result struct {
	RunID       string
	Params      params.WorldParams
	Layers      map[world.LayerName]core.Layer
	LayerHashes map[world.LayerName]world.Hash
	Checksum    world.Hash
	Stages      []StageReport
}

type config struct {
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a run.
type Option func(*config)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics reports into m instead of the collectors registered on the
// default Prometheus registry.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// Stepper advances a run one stage at a time.
type Stepper struct {
	cfg     config
	runID   string
	state   *state
	stages  []stage
	next    int
	reports []StageReport
	started time.Time
	result  *Result
	err     error
}

// NewStepper validates p and prepares a run. Invalid params fail here with
// a GenerationError for the init stage.
func NewStepper(p params.WorldParams, opts ...Option) (*Stepper, error) {
	return newStepper(p, defaultStages, opts...)
}

func newStepper(p params.WorldParams, stages []stage, opts ...Option) (*Stepper, error) {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.metrics == nil {
		cfg.metrics = defaultMetrics()
	}
	s := &Stepper{
		cfg:     cfg,
		runID:   uuid.NewString()[:12],
		stages:  stages,
		started: time.Now(),
	}
	if err := p.Validate(); err != nil {
		return nil, s.fail(context.Background(), StageInit, err)
	}
	s.state = &state{p: p, streams: rng.NewStreams(p.Seed), world: world.New(p.Size())}

	cfg.logger.Info("pipeline started",
		slog.String("run_id", s.runID),
		slog.Int64("seed", p.Seed),
		slog.Int("width", p.Width),
		slog.Int("height", p.Height),
	)
	return s, nil
}

// RunID identifies the run in logs, results and the ledger.
func (s *Stepper) RunID() string { return s.runID }

// Next returns the name of the stage RunNext would execute, or
// StageFinalize once every stage has run.
func (s *Stepper) Next() string {
	if s.next < len(s.stages) {
		return s.stages[s.next].name
	}
	return StageFinalize
}

// Done reports whether the world has been finalized.
func (s *Stepper) Done() bool { return s.result != nil }

// Err returns the error that stopped the run, if any.
func (s *Stepper) Err() error { return s.err }

// Reports lists the completed stages.
func (s *Stepper) Reports() []StageReport { return append([]StageReport(nil), s.reports...) }

// World exposes the layers produced so far. Callers must not modify them.
func (s *Stepper) World() *world.World { return s.state.world }

// Result returns the finalized world, or nil before the last stage ran.
func (s *Stepper) Result() *Result { return s.result }

// RunNext executes the next stage. After the last stage it also computes
// the world checksum. A failed stepper keeps returning its error.
func (s *Stepper) RunNext(ctx context.Context) (*StageReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return nil, ErrFinished
	}
	st := s.stages[s.next]
	if err := ctx.Err(); err != nil {
		return nil, s.fail(ctx, st.name, errors.Join(core.ErrCanceled, err))
	}

	ctx, span := tracer.Start(ctx, "pipeline.Stage",
		trace.WithAttributes(
			attribute.String("stage", st.name),
			attribute.String("run_id", s.runID),
		),
	)
	defer span.End()

	report, err := s.runStage(ctx, st)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, s.fail(ctx, st.name, err)
	}
	s.next++
	s.reports = append(s.reports, report)

	stageAttr := attribute.String("stage", st.name)
	otelInstruments().stageLatency.Record(ctx, report.Duration.Seconds(), metric.WithAttributes(stageAttr))
	s.cfg.metrics.StageSeconds.WithLabelValues(st.name).Observe(report.Duration.Seconds())
	s.cfg.logger.Info("stage completed",
		slog.String("run_id", s.runID),
		slog.String("stage", st.name),
		slog.Duration("duration", report.Duration),
		slog.String("layer_hash", report.Hash.Short()),
	)

	if s.next == len(s.stages) {
		if err := s.finalize(); err != nil {
			return nil, s.fail(ctx, StageFinalize, err)
		}
	}
	return &report, nil
}

func (s *Stepper) runStage(ctx context.Context, st stage) (StageReport, error) {
	w := s.state.world
	for _, in := range st.inputs {
		if !w.Has(in) {
			return StageReport{}, &core.CellError{Layer: string(in), Kind: core.ErrInvariant, Msg: "missing stage input"}
		}
	}

	sw := core.NewStopwatch()
	outs, err := st.run(ctx, s.state)
	if err != nil {
		return StageReport{}, err
	}
	if err := checkOutputs(st, outs); err != nil {
		return StageReport{}, err
	}

	report := StageReport{Name: st.name, Layers: make([]LayerHash, 0, len(outs))}
	hashes := make([]world.Hash, 0, len(outs))
	for _, o := range outs {
		if f, ok := o.layer.(*core.Field[float64]); ok {
			if err := world.CheckFinite(o.name, f); err != nil {
				return StageReport{}, err
			}
		}
		h, err := w.Put(o.name, o.layer)
		if err != nil {
			return StageReport{}, err
		}
		report.Layers = append(report.Layers, LayerHash{Name: o.name, Hash: h})
		hashes = append(hashes, h)
	}
	report.Hash = world.CombineHashes(hashes...)
	report.Duration = sw.Lap()
	return report, nil
}

// checkOutputs requires the outputs to match the declared list exactly and
// in order.
func checkOutputs(st stage, outs []output) error {
	if len(outs) != len(st.outputs) {
		return &core.CellError{Layer: st.name, Kind: core.ErrInvariant,
			Msg: fmt.Sprintf("stage produced %d layers, declared %d", len(outs), len(st.outputs))}
	}
	for i, o := range outs {
		if o.name != st.outputs[i] {
			return &core.CellError{Layer: string(o.name), Kind: core.ErrInvariant,
				Msg: fmt.Sprintf("undeclared output, want %s", st.outputs[i])}
		}
	}
	return nil
}

func (s *Stepper) finalize() error {
	w := s.state.world
	sum, err := world.Checksum(s.state.p.Digest(), w)
	if err != nil {
		return err
	}
	res := &Result{
		RunID:       s.runID,
		Params:      s.state.p,
		Layers:      w.Layers(),
		LayerHashes: make(map[world.LayerName]world.Hash, len(world.FinalLayers)),
		Checksum:    sum,
		Stages:      s.Reports(),
	}
	for _, name := range world.FinalLayers {
		res.LayerHashes[name], _ = w.Hash(name)
	}
	s.result = res
	s.cfg.metrics.Runs.WithLabelValues("ok").Inc()
	s.cfg.logger.Info("pipeline finalized",
		slog.String("run_id", s.runID),
		slog.String("checksum", sum.String()),
		slog.Duration("duration", time.Since(s.started)),
	)
	return nil
}

func (s *Stepper) fail(ctx context.Context, stage string, err error) error {
	gerr := &GenerationError{Stage: stage, Err: err}
	s.err = gerr
	otelInstruments().failures.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
	s.cfg.metrics.Runs.WithLabelValues("failed").Inc()
	s.cfg.logger.Error("pipeline failed",
		slog.String("run_id", s.runID),
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
	return gerr
}

// Generate runs every stage and returns the finalized world. On failure no
// result is returned.
func Generate(ctx context.Context, p params.WorldParams, opts ...Option) (*Result, error) {
	ctx, span := tracer.Start(ctx, "pipeline.Generate",
		trace.WithAttributes(
			attribute.Int64("seed", p.Seed),
			attribute.Int("width", p.Width),
			attribute.Int("height", p.Height),
		),
	)
	defer span.End()

	s, err := NewStepper(p, opts...)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	for !s.Done() {
		if _, err := s.RunNext(ctx); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}
	span.SetAttributes(attribute.String("checksum", s.result.Checksum.String()))
	return s.result, nil
}
