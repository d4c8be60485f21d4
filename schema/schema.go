// Package schema has configs, models and shared constants for all parts of eegstudy.
package schema

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// MetricValue is one entry of a MetricRecord: either a final scalar or an
// ordered sequence of per-epoch or per-fold scalars. Entries that are
// neither, such as a confusion matrix, are kept as unsupported values.
type MetricValue struct {
	scalar      float64
	sequence    []float64
	isSeq       bool
	unsupported string
}

// Scalar wraps a single value.
func Scalar(v float64) MetricValue {
	return MetricValue{scalar: v}
}

// Sequence wraps an ordered series of values.
func Sequence(vs ...float64) MetricValue {
	return MetricValue{sequence: append([]float64{}, vs...), isSeq: true}
}

// Unsupported marks an entry whose data is not numeric; typeName describes it.
func Unsupported(typeName string) MetricValue {
	return MetricValue{unsupported: typeName}
}

// Supported reports whether the value holds numbers. For an unsupported
// value it also returns the description of the data found.
func (v MetricValue) Supported() (string, bool) {
	return v.unsupported, v.unsupported == ""
}

// IsSequence reports whether the value was stored as a series.
func (v MetricValue) IsSequence() bool {
	return v.isSeq
}

// Values returns the stored values; a scalar yields a single-entry slice
// and an unsupported value yields none.
func (v MetricValue) Values() []float64 {
	if v.isSeq {
		return append([]float64{}, v.sequence...)
	}
	if v.unsupported != "" {
		return nil
	}
	return []float64{v.scalar}
}

// Float reduces the value to one number. Sequences reduce to their
// arithmetic mean; an empty sequence or unsupported value has no value.
func (v MetricValue) Float() (float64, bool) {
	if v.unsupported != "" {
		return 0, false
	}
	if !v.isSeq {
		return v.scalar, true
	}
	if len(v.sequence) == 0 {
		return 0, false
	}
	return stat.Mean(v.sequence, nil), true
}

// Raw returns the value as plain Go data for encoders: float64, []float64,
// or nil when unsupported.
func (v MetricValue) Raw() any {
	if v.isSeq {
		return append([]float64{}, v.sequence...)
	}
	if v.unsupported != "" {
		return nil
	}
	return v.scalar
}

// MetricRecord maps metric names to values for one evaluated fold unit.
type MetricRecord map[string]MetricValue

// Names returns the metric names of the record in sorted order.
func (r MetricRecord) Names() []string {
	return SortedKeys(r)
}

// ParadigmStats holds the raw per-paradigm collections. Kind selects which
// of the two maps is populated.
type ParadigmStats struct {
	Kind   StatsKind                       `json:"kind"`
	Nested map[string]map[string][]float64 `json:"nested,omitempty"` // group -> metric -> values
	Flat   map[string][]float64            `json:"flat,omitempty"`   // metric -> values
}

// NewNestedStats returns empty stats keyed by group.
func NewNestedStats() ParadigmStats {
	return ParadigmStats{Kind: NestedStats, Nested: map[string]map[string][]float64{}}
}

// NewFlatStats returns empty stats keyed by metric.
func NewFlatStats() ParadigmStats {
	return ParadigmStats{Kind: FlatStats, Flat: map[string][]float64{}}
}

// Groups returns the group keys of nested stats in lexicographic order.
func (s ParadigmStats) Groups() []string {
	return SortedKeys(s.Nested)
}

// Empty reports whether no value was collected at all.
func (s ParadigmStats) Empty() bool {
	switch s.Kind {
	case NestedStats:
		for _, metrics := range s.Nested {
			for _, vs := range metrics {
				if len(vs) > 0 {
					return false
				}
			}
		}
	default:
		for _, vs := range s.Flat {
			if len(vs) > 0 {
				return false
			}
		}
	}
	return true
}

// AggregatedStats maps a metric to one value per leaf group, ready for pooling.
type AggregatedStats map[string][]float64

// Extend appends every sequence of other to s.
func (s AggregatedStats) Extend(other AggregatedStats) {
	for metric, vs := range other {
		s[metric] = append(s[metric], vs...)
	}
}

// MetricSummary is the mean and population standard deviation over N values.
type MetricSummary struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	N    int     `json:"n"`
}

// OverallStats maps a metric to its pooled summary.
type OverallStats map[string]MetricSummary

// GroupSummary summarizes one group of a paradigm. Flat paradigms have a
// single summary with an empty group name.
type GroupSummary struct {
	Group   string                   `json:"group"`
	Metrics map[string]MetricSummary `json:"metrics"`
}

// ParadigmResult is the outcome of parsing and aggregating one paradigm.
type ParadigmResult struct {
	Paradigm   Paradigm        `json:"paradigm"`
	Kind       StatsKind       `json:"kind"`
	Groups     []GroupSummary  `json:"groups"`
	Aggregated AggregatedStats `json:"aggregated"`
	Loaded     int             `json:"loaded"`  // units whose artifact was read
	Skipped    int             `json:"skipped"` // units reported as absent
	Stats      ParadigmStats   `json:"-"`
}

// StudyResult is the full outcome of one aggregation run.
type StudyResult struct {
	ResultsRoot string           `json:"results_root"`
	MetricFile  string           `json:"metric_file"`
	Metrics     []string         `json:"metrics"`
	Paradigms   []ParadigmResult `json:"paradigms"`
	Pooled      AggregatedStats  `json:"pooled"`
	Overall     OverallStats     `json:"overall"`
}

// Loaded returns the number of artifacts read across all paradigms.
func (r StudyResult) Loaded() int {
	n := 0
	for _, p := range r.Paradigms {
		n += p.Loaded
	}
	return n
}

// SortedKeys returns the keys of a string-keyed map in lexicographic order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
