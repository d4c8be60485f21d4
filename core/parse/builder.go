package parse

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/eegstudy/core/algo"
	"github.com/huangsam/eegstudy/internal/metricstore"
	"github.com/huangsam/eegstudy/schema"
)

// errNoUnits marks a directory in which no unit produced metrics.
var errNoUnits = errors.New("no unit produced metrics")

// builder accumulates the values of one parser call into stats it owns.
type builder struct {
	opts    Options
	stats   schema.ParadigmStats
	loaded  int
	skipped int
}

func newBuilder(kind schema.StatsKind, opts Options) *builder {
	b := &builder{opts: opts.withDefaults()}
	if kind == schema.NestedStats {
		b.stats = schema.NewNestedStats()
	} else {
		b.stats = schema.NewFlatStats()
	}
	return b
}

// subdirs lists the child directories of dir in lexicographic order.
// Regular files and hidden entries are ignored.
func (b *builder) subdirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		b.opts.Diag.Warn("Skipping unreadable directory", err)
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names
}

// load reads the unit in unitDir and returns one value per requested
// metric. A unit missing any metric contributes nothing.
func (b *builder) load(unitDir string) (map[string]float64, bool) {
	path := filepath.Join(unitDir, b.opts.MetricFile)
	record, ok := b.opts.Loader.Load(path)
	if !ok {
		b.skipped++
		return nil, false
	}

	values := make(map[string]float64, len(b.opts.Metrics))
	for _, metric := range b.opts.Metrics {
		v, present := record[metric]
		if !present {
			return b.reject(path, fmt.Errorf("%w: missing metric %q", metricstore.ErrSchemaMismatch, metric))
		}
		if kind, ok := v.Supported(); !ok {
			return b.reject(path, fmt.Errorf("%w: metric %q holds unsupported data (%s)", metricstore.ErrSchemaMismatch, metric, kind))
		}
		f, ok := v.Float()
		if !ok {
			return b.reject(path, fmt.Errorf("%w: metric %q is an empty sequence", metricstore.ErrSchemaMismatch, metric))
		}
		values[metric] = f
	}
	b.loaded++
	return values, true
}

func (b *builder) reject(path string, err error) (map[string]float64, bool) {
	b.skipped++
	b.opts.Diag.Warn("Skipping metric artifact", &schema.ArtifactReadError{Path: path, Err: err})
	return nil, false
}

func (b *builder) warnEmpty(dir string) {
	b.opts.Diag.Warn("Skipping fold", fmt.Errorf("%s: %w", dir, errNoUnits))
}

// openGroup registers a nested group as soon as its directory is walked,
// so a group whose units all fail still reaches the aggregator empty.
func (b *builder) openGroup(group string) {
	if _, ok := b.stats.Nested[group]; !ok {
		b.stats.Nested[group] = make(map[string][]float64, len(b.opts.Metrics))
	}
}

func (b *builder) addNested(group string, values map[string]float64) {
	b.openGroup(group)
	metrics := b.stats.Nested[group]
	for metric, v := range values {
		metrics[metric] = append(metrics[metric], v)
	}
}

func (b *builder) addFlat(values map[string]float64) {
	for metric, v := range values {
		b.stats.Flat[metric] = append(b.stats.Flat[metric], v)
	}
}

// meanOf averages each metric over units; units must be non-empty.
func (b *builder) meanOf(units []map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(b.opts.Metrics))
	for _, metric := range b.opts.Metrics {
		series := make([]float64, len(units))
		for i, u := range units {
			series[i] = u[metric]
		}
		out[metric], _ = algo.Mean(series)
	}
	return out
}

func (b *builder) result() Result {
	return Result{Stats: b.stats, Loaded: b.loaded, Skipped: b.skipped}
}
