package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/eegstudy/core/agg"
	"github.com/huangsam/eegstudy/core/algo"
	"github.com/huangsam/eegstudy/core/parse"
	"github.com/huangsam/eegstudy/internal/contract"
	"github.com/huangsam/eegstudy/schema"
)

// StudyOptions select the metrics and artifact read by an aggregation.
type StudyOptions struct {
	Metrics    []string
	MetricFile string
	Diag       contract.Diagnostics // defaults to the diagnostics carried by ctx
	Loader     parse.Loader         // defaults to the metric store
}

func (o StudyOptions) parseOptions(ctx context.Context) parse.Options {
	diag := o.Diag
	if diag == nil {
		diag = diagnosticsFromContext(ctx)
	}
	return parse.Options{Metrics: o.Metrics, MetricFile: o.MetricFile, Loader: o.Loader, Diag: diag}
}

// AggregateParadigm parses one paradigm directory and reduces it with the
// aggregator of its shape. An empty paradigm fails with *schema.NoDataError.
func AggregateParadigm(ctx context.Context, p schema.Paradigm, dir string, opts StudyOptions) (schema.ParadigmResult, error) {
	parser := parse.For(p)
	if parser == nil {
		return schema.ParadigmResult{}, &schema.UnknownParadigmError{Name: string(p), Path: dir}
	}
	popts := opts.parseOptions(ctx)
	parsed := parser(dir, popts)

	metrics := popts.Metrics
	if len(metrics) == 0 {
		metrics = schema.DefaultMetrics
	}
	aggregated, err := agg.For(parsed.Stats.Kind)(p, parsed.Stats, metrics)
	if err != nil {
		return schema.ParadigmResult{}, err
	}
	groups, err := agg.Breakdown(p, parsed.Stats, metrics)
	if err != nil {
		return schema.ParadigmResult{}, err
	}

	return schema.ParadigmResult{
		Paradigm:   p,
		Kind:       parsed.Stats.Kind,
		Groups:     groups,
		Aggregated: aggregated,
		Loaded:     parsed.Loaded,
		Skipped:    parsed.Skipped,
		Stats:      parsed.Stats,
	}, nil
}

// AggregateStudy drives every paradigm under resultsRoot in lexicographic
// order, pools their aggregated series and summarizes each metric with its
// mean and population standard deviation. No partial result is returned.
func AggregateStudy(ctx context.Context, resultsRoot string, opts StudyOptions) (schema.StudyResult, error) {
	paradigms, err := ListParadigms(resultsRoot)
	if err != nil {
		return schema.StudyResult{}, err
	}
	if len(paradigms) == 0 {
		return schema.StudyResult{}, &schema.NoDataError{Reason: fmt.Sprintf("no paradigm directories under %s", resultsRoot)}
	}

	metrics := opts.Metrics
	if len(metrics) == 0 {
		metrics = schema.DefaultMetrics
	}
	metricFile := opts.MetricFile
	if metricFile == "" {
		metricFile = schema.TestMetricFile
	}

	result := schema.StudyResult{
		ResultsRoot: resultsRoot,
		MetricFile:  metricFile,
		Metrics:     metrics,
		Pooled:      schema.AggregatedStats{},
	}
	for _, p := range paradigms {
		if err := ctx.Err(); err != nil {
			return schema.StudyResult{}, err
		}
		pr, err := AggregateParadigm(ctx, p, filepath.Join(resultsRoot, string(p)), opts)
		if err != nil {
			return schema.StudyResult{}, err
		}
		result.Paradigms = append(result.Paradigms, pr)
		result.Pooled.Extend(pr.Aggregated)
	}

	overall, err := algo.SummarizeAll(result.Pooled, metrics, "", "")
	if err != nil {
		return schema.StudyResult{}, err
	}
	result.Overall = overall
	return result, nil
}

// ListParadigms returns the paradigm directories of resultsRoot in
// lexicographic order. Any other directory fails with
// *schema.UnknownParadigmError; regular files and hidden entries are ignored.
func ListParadigms(resultsRoot string) ([]schema.Paradigm, error) {
	info, err := os.Stat(resultsRoot)
	if err != nil {
		return nil, fmt.Errorf("cannot access results root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("results root %s is not a directory", resultsRoot)
	}

	entries, err := os.ReadDir(resultsRoot)
	if err != nil {
		return nil, fmt.Errorf("cannot list results root: %w", err)
	}
	var paradigms []schema.Paradigm
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		p, ok := schema.ParseParadigm(e.Name())
		if !ok {
			return nil, &schema.UnknownParadigmError{Name: e.Name(), Path: filepath.Join(resultsRoot, e.Name())}
		}
		paradigms = append(paradigms, p)
	}
	return paradigms, nil
}

// ParadigmFromDir resolves the paradigm named by the base of dir.
func ParadigmFromDir(dir string) (schema.Paradigm, error) {
	name := filepath.Base(filepath.Clean(dir))
	p, ok := schema.ParseParadigm(name)
	if !ok {
		return "", &schema.UnknownParadigmError{Name: name, Path: dir}
	}
	return p, nil
}

// ScopeStats summarizes a paradigm's aggregated series for recording.
func ScopeStats(pr schema.ParadigmResult, metrics []string) (schema.OverallStats, error) {
	summaries, err := algo.SummarizeAll(pr.Aggregated, metrics, pr.Paradigm, "")
	if err != nil {
		return nil, err
	}
	return schema.OverallStats(summaries), nil
}
