package pipeline

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var (
	tracer = otel.Tracer("worldgen/pipeline")
	meter  = otel.Meter("worldgen/pipeline")
)

// Metrics are the Prometheus collectors a run reports into.
type Metrics struct {
	StageSeconds *prometheus.HistogramVec
	Runs         *prometheus.CounterVec
}

// NewMetrics registers the pipeline collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		StageSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "worldgen",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each generation stage.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"stage"}),
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldgen",
			Name:      "runs_total",
			Help:      "Generation runs by outcome.",
		}, []string{"outcome"}),
	}
}

var defaultMetrics = sync.OnceValue(func() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
})

type instruments struct {
	stageLatency metric.Float64Histogram
	failures     metric.Int64Counter
}

var otelInstruments = sync.OnceValue(func() instruments {
	var in instruments
	var err error
	in.stageLatency, err = meter.Float64Histogram("worldgen_stage_duration_seconds",
		metric.WithDescription("Time spent executing each generation stage"),
		metric.WithUnit("s"),
	)
	if err != nil {
		in.stageLatency = noop.Float64Histogram{}
	}
	in.failures, err = meter.Int64Counter("worldgen_stage_failure_total",
		metric.WithDescription("Number of failed generation stages"),
	)
	if err != nil {
		in.failures = noop.Int64Counter{}
	}
	return in
})
