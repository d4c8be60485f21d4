package folds

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"sync/atomic"

	"github.com/huangsam/eegstudy/internal/metricstore"
	"github.com/huangsam/eegstudy/schema"
	"golang.org/x/sync/errgroup"
)

// ScaffoldOptions control the synthetic artifacts written by Scaffold.
type ScaffoldOptions struct {
	Metrics    []string
	MetricFile string
	Workers    int
	Seed       int64
}

// Scaffold writes one metric artifact per plan under
// root/<paradigm>/<tail path>/<metric file> and returns how many it wrote.
// Values are drawn from a generator seeded per plan, so the tree is
// reproducible regardless of scheduling.
func Scaffold(ctx context.Context, root string, plans []schema.FoldPlan, opts ScaffoldOptions) (int, error) {
	metrics := opts.Metrics
	if len(metrics) == 0 {
		metrics = schema.DefaultMetrics
	}
	metricFile := opts.MetricFile
	if metricFile == "" {
		metricFile = schema.TestMetricFile
	}

	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}

	var written atomic.Int64
	for i, plan := range plans {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(root, string(plan.Paradigm), filepath.FromSlash(plan.TailPath), metricFile)
			rng := rand.New(rand.NewPCG(uint64(opts.Seed), uint64(i)))
			if err := metricstore.Write(path, syntheticRecord(rng, metrics)); err != nil {
				return err
			}
			written.Add(1)
			return nil
		})
	}
	err := g.Wait()
	return int(written.Load()), err
}

// syntheticRecord draws a loss in [0.2, 1.2) and every other metric in [0.5, 0.95).
func syntheticRecord(rng *rand.Rand, metrics []string) schema.MetricRecord {
	record := make(schema.MetricRecord, len(metrics))
	for _, m := range metrics {
		if m == "loss" {
			record[m] = schema.Scalar(0.2 + rng.Float64())
			continue
		}
		record[m] = schema.Scalar(0.5 + 0.45*rng.Float64())
	}
	return record
}
