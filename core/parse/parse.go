// Package parse walks the results tree of one paradigm and collects the
// raw metric values of every fold unit.
package parse

import (
	"path/filepath"

	"github.com/huangsam/eegstudy/internal/contract"
	"github.com/huangsam/eegstudy/internal/metricstore"
	"github.com/huangsam/eegstudy/schema"
)

// Loader reads the metric record of one unit, reporting failures itself.
type Loader interface {
	Load(path string) (schema.MetricRecord, bool)
}

// Options control which metrics are collected and from which artifact.
type Options struct {
	Metrics    []string
	MetricFile string
	Loader     Loader               // defaults to a metricstore.Store on Diag
	Diag       contract.Diagnostics // defaults to stderr
}

// Result is what a parser collected for one paradigm directory.
type Result struct {
	Stats   schema.ParadigmStats
	Loaded  int // units whose record contributed values
	Skipped int // units reported as absent
}

// Parser collects the ParadigmStats of one paradigm directory.
type Parser func(dir string, opts Options) Result

// For returns the parser of a paradigm.
func For(p schema.Paradigm) Parser {
	switch p {
	case schema.WithinSession:
		return WithinSession
	case schema.CrossSession:
		return CrossSession
	case schema.LeaveOneSessionOut:
		return LeaveOneSessionOut
	case schema.LeaveOneSubjectOut:
		return LeaveOneSubjectOut
	}
	return nil
}

// WithinSession walks fold/session/subject. Raw per-subject values are
// kept under "<fold>/<session>" without averaging.
func WithinSession(dir string, opts Options) Result {
	b := newBuilder(schema.NestedStats, opts)
	for _, fold := range b.subdirs(dir) {
		foldDir := filepath.Join(dir, fold)
		for _, session := range b.subdirs(foldDir) {
			sessionDir := filepath.Join(foldDir, session)
			group := fold + "/" + session
			b.openGroup(group)
			for _, subject := range b.subdirs(sessionDir) {
				if values, ok := b.load(filepath.Join(sessionDir, subject)); ok {
					b.addNested(group, values)
				}
			}
		}
	}
	return b.result()
}

// LeaveOneSessionOut walks fold/session where the session is the held-out
// test session. Raw per-fold values are kept under the session name; every
// walked session gets a group even when none of its units load.
func LeaveOneSessionOut(dir string, opts Options) Result {
	b := newBuilder(schema.NestedStats, opts)
	for _, fold := range b.subdirs(dir) {
		foldDir := filepath.Join(dir, fold)
		for _, session := range b.subdirs(foldDir) {
			b.openGroup(session)
			if values, ok := b.load(filepath.Join(foldDir, session)); ok {
				b.addNested(session, values)
			}
		}
	}
	return b.result()
}

// CrossSession walks fold/session. The sessions of a fold are CV repeats
// of one merged-session training, so they are averaged right away into
// one value per fold.
func CrossSession(dir string, opts Options) Result {
	b := newBuilder(schema.FlatStats, opts)
	for _, fold := range b.subdirs(dir) {
		foldDir := filepath.Join(dir, fold)
		var repeats []map[string]float64
		for _, session := range b.subdirs(foldDir) {
			if values, ok := b.load(filepath.Join(foldDir, session)); ok {
				repeats = append(repeats, values)
			}
		}
		if len(repeats) == 0 {
			b.warnEmpty(foldDir)
			continue
		}
		b.addFlat(b.meanOf(repeats))
	}
	return b.result()
}

// LeaveOneSubjectOut walks the fold level only; each fold holds one
// held-out subject and yields one value.
func LeaveOneSubjectOut(dir string, opts Options) Result {
	b := newBuilder(schema.FlatStats, opts)
	for _, fold := range b.subdirs(dir) {
		if values, ok := b.load(filepath.Join(dir, fold)); ok {
			b.addFlat(values)
		}
	}
	return b.result()
}

func (o Options) withDefaults() Options {
	if o.Diag == nil {
		o.Diag = contract.StderrDiagnostics{}
	}
	if o.Loader == nil {
		o.Loader = metricstore.New(o.Diag)
	}
	if o.MetricFile == "" {
		o.MetricFile = schema.TestMetricFile
	}
	if len(o.Metrics) == 0 {
		o.Metrics = schema.DefaultMetrics
	}
	return o
}
