package schema

import (
	"encoding/json"
	"math"
)

// finite encodes NaN and infinities as null, which encoding/json refuses.
type finite float64

func (f finite) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func finiteSlice(vs []float64) []finite {
	if vs == nil {
		return nil
	}
	out := make([]finite, len(vs))
	for i, v := range vs {
		out[i] = finite(v)
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (s MetricSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Mean finite `json:"mean"`
		Std  finite `json:"std"`
		N    int    `json:"n"`
	}{finite(s.Mean), finite(s.Std), s.N})
}

// MarshalJSON implements json.Marshaler.
func (s AggregatedStats) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	out := make(map[string][]finite, len(s))
	for metric, vs := range s {
		out[metric] = finiteSlice(vs)
	}
	return json.Marshal(out)
}

// MarshalJSON implements json.Marshaler.
func (s ParadigmStats) MarshalJSON() ([]byte, error) {
	var nested map[string]map[string][]finite
	if len(s.Nested) > 0 {
		nested = make(map[string]map[string][]finite, len(s.Nested))
		for group, metrics := range s.Nested {
			nested[group] = make(map[string][]finite, len(metrics))
			for metric, vs := range metrics {
				nested[group][metric] = finiteSlice(vs)
			}
		}
	}
	var flat map[string][]finite
	if len(s.Flat) > 0 {
		flat = make(map[string][]finite, len(s.Flat))
		for metric, vs := range s.Flat {
			flat[metric] = finiteSlice(vs)
		}
	}
	return json.Marshal(struct {
		Kind   StatsKind                      `json:"kind"`
		Nested map[string]map[string][]finite `json:"nested,omitempty"`
		Flat   map[string][]finite            `json:"flat,omitempty"`
	}{s.Kind, nested, flat})
}
