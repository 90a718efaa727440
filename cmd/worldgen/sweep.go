package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"worldgen/internal/core"
	"worldgen/internal/params"
	"worldgen/internal/pipeline"
	"worldgen/internal/world"
)

// seedResult summarises one swept seed.
type seedResult struct {
	seed          int64
	checksum      world.Hash
	deterministic bool
	land          float64
	lakes         int
	rivers        int
	elapsed       time.Duration
}

func (r seedResult) String() string {
	return fmt.Sprintf("seed=%d checksum=%s land=%.3f lakes=%d rivers=%d elapsed=%s",
		r.seed, r.checksum.Short(), r.land, r.lakes, r.rivers, r.elapsed.Round(time.Millisecond))
}

var (
	errNondeterministic  = errors.New("nondeterministic seeds")
	errChecksumCollision = errors.New("checksum collision")
)

func newSweepCmd(c *cli) *cobra.Command {
	var (
		count       int
		jobs        int
		top         int
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Generate a range of seeds and check each is reproducible",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			base, err := c.resolveParams(cmd)
			if err != nil {
				return err
			}
			reg := prometheus.NewRegistry()
			metrics := pipeline.NewMetrics(reg)
			if metricsAddr != "" {
				srv := &http.Server{Addr: metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), ReadHeaderTimeout: 5 * time.Second}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						c.logger.Error("metrics server stopped", "err", err)
					}
				}()
				defer srv.Close()
				c.logger.Info("serving metrics", "addr", metricsAddr)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Sweeping %d seeds from %d (%d jobs, %dx%d)\n", count, base.Seed, jobs, base.Width, base.Height)
			start := time.Now()
			results, err := sweep(cmd.Context(), base, count, jobs, pipeline.WithLogger(c.logger), pipeline.WithMetrics(metrics))
			if err != nil {
				return err
			}
			return report(w, results, top, time.Since(start))
		},
	}
	c.bindParamFlags(cmd)
	cmd.Flags().IntVar(&count, "count", 8, "number of consecutive seeds")
	cmd.Flags().IntVar(&jobs, "jobs", 2, "seeds generated concurrently")
	cmd.Flags().IntVar(&top, "top", 5, "results to list, ranked by land fraction")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

// sweep generates seeds base.Seed .. base.Seed+count-1. Each seed runs
// twice, single-banded and with the configured workers, and the two
// checksums are compared.
func sweep(ctx context.Context, base params.WorldParams, count, jobs int, opts ...pipeline.Option) ([]seedResult, error) {
	results := make([]seedResult, count)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i := range count {
		g.Go(func() error {
			p := base
			p.Seed = base.Seed + int64(i)
			start := time.Now()
			res, err := pipeline.Generate(ctx, p, opts...)
			if err != nil {
				return fmt.Errorf("seed %d: %w", p.Seed, err)
			}
			elapsed := time.Since(start)

			serial := p
			serial.Run.Workers = 1
			again, err := pipeline.Generate(ctx, serial, opts...)
			if err != nil {
				return fmt.Errorf("seed %d (serial): %w", p.Seed, err)
			}
			results[i] = summarise(res, again.Checksum == res.Checksum, elapsed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func summarise(res *pipeline.Result, deterministic bool, elapsed time.Duration) seedResult {
	r := seedResult{
		seed:          res.Params.Seed,
		checksum:      res.Checksum,
		deterministic: deterministic,
		elapsed:       elapsed,
	}
	if mask, ok := res.Layers[world.LayerWaterMask].(*core.Field[world.WaterClass]); ok {
		land := 0
		for _, v := range mask.Cells() {
			switch v {
			case world.WaterLand:
				land++
			case world.WaterRiver:
				land++
				r.rivers++
			}
		}
		r.land = float64(land) / float64(len(mask.Cells()))
	}
	if ids, ok := res.Layers[world.LayerLakeID].(*core.Field[uint32]); ok {
		for _, id := range ids.Cells() {
			r.lakes = max(r.lakes, int(id))
		}
	}
	return r
}

func report(w io.Writer, results []seedResult, top int, elapsed time.Duration) error {
	var bad []int64
	var collisions []string
	bySum := map[world.Hash]int64{}
	for _, r := range results {
		if !r.deterministic {
			bad = append(bad, r.seed)
			fmt.Fprintf(w, "NONDETERMINISTIC %s\n", r)
		}
		if other, ok := bySum[r.checksum]; ok {
			fmt.Fprintf(w, "Checksum collision: seeds %d and %d share %s\n", other, r.seed, r.checksum.Short())
			collisions = append(collisions, fmt.Sprintf("%d/%d", other, r.seed))
		}
		bySum[r.checksum] = r.seed
	}

	ranked := slices.Clone(results)
	slices.SortStableFunc(ranked, func(a, b seedResult) int {
		switch {
		case a.land > b.land:
			return -1
		case a.land < b.land:
			return 1
		}
		return 0
	})
	fmt.Fprintf(w, "\nTop %d results (elapsed %s):\n", min(top, len(ranked)), elapsed.Round(time.Millisecond))
	for i := 0; i < len(ranked) && i < top; i++ {
		fmt.Fprintf(w, "%2d) %s\n", i+1, ranked[i])
	}

	var errs []error
	if len(bad) > 0 {
		errs = append(errs, fmt.Errorf("%w: %v", errNondeterministic, bad))
	}
	if len(collisions) > 0 {
		errs = append(errs, fmt.Errorf("%w: seeds %v", errChecksumCollision, collisions))
	}
	return errors.Join(errs...)
}
