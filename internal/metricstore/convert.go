package metricstore

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/huangsam/eegstudy/schema"
)

// pyMapping matches the ordered dictionaries produced by the pickle decoder.
type pyMapping interface {
	Keys() []any
	Get(key any) (any, bool)
}

// pySequence matches the list types produced by the pickle decoder.
type pySequence interface {
	Len() int
	Get(i int) any
}

// toRecord converts decoded artifact data into a MetricRecord. The top
// level must be a mapping. Entries with non-string keys are ignored and
// entries without numeric data are kept as unsupported values, so only the
// metrics a caller asks for decide whether the record is usable.
func toRecord(raw any) (schema.MetricRecord, error) {
	entries, err := mappingEntries(raw)
	if err != nil {
		return nil, err
	}
	record := make(schema.MetricRecord, len(entries))
	for key, v := range entries {
		if name, ok := key.(string); ok {
			record[name] = toMetricValue(v)
		}
	}
	return record, nil
}

func mappingEntries(raw any) (map[any]any, error) {
	switch m := raw.(type) {
	case map[string]any:
		out := make(map[any]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, nil
	case map[any]any:
		return m, nil
	case pyMapping:
		out := make(map[any]any)
		for _, k := range m.Keys() {
			v, _ := m.Get(k)
			out[k] = v
		}
		return out, nil
	}

	rv := reflect.ValueOf(raw)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Map {
		out := make(map[any]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().Interface()] = iter.Value().Interface()
		}
		return out, nil
	}
	if out, ok := entrySlice(rv); ok {
		return out, nil
	}
	return nil, fmt.Errorf("%w: expected a mapping of metric names, got %T", ErrSchemaMismatch, raw)
}

// entrySlice reads a dictionary stored as a slice of {Key, Value} entries.
func entrySlice(rv reflect.Value) (map[any]any, bool) {
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	elem := rv.Type().Elem()
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		return nil, false
	}
	out := make(map[any]any, rv.Len())
	for i := range rv.Len() {
		entry := rv.Index(i)
		for entry.Kind() == reflect.Pointer && !entry.IsNil() {
			entry = entry.Elem()
		}
		if entry.Kind() != reflect.Struct {
			return nil, false
		}
		key, value := entry.FieldByName("Key"), entry.FieldByName("Value")
		if !key.IsValid() || !value.IsValid() {
			return nil, false
		}
		out[key.Interface()] = value.Interface()
	}
	return out, true
}

func toMetricValue(v any) schema.MetricValue {
	switch o := v.(type) {
	case *numpyArray:
		switch {
		case o.values == nil:
			return schema.Unsupported(fmt.Sprintf("ndarray of shape %v", o.shape))
		case len(o.shape) == 0:
			return schema.Scalar(o.values[0])
		case len(o.shape) == 1:
			return schema.Sequence(o.values...)
		}
		return schema.Unsupported(fmt.Sprintf("ndarray of shape %v", o.shape))
	case *opaqueObject:
		return schema.Unsupported(o.class)
	}
	if f, ok := toFloat(v); ok {
		return schema.Scalar(f)
	}
	items, ok := sequenceItems(v)
	if !ok {
		return schema.Unsupported(fmt.Sprintf("%T", v))
	}
	values := make([]float64, len(items))
	for i, item := range items {
		f, ok := toFloat(item)
		if !ok {
			return schema.Unsupported(fmt.Sprintf("sequence of %T", item))
		}
		values[i] = f
	}
	return schema.Sequence(values...)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case *big.Int:
		f, _ := new(big.Float).SetInt(n).Float64()
		return f, true
	}
	return 0, false
}

// sequenceItems flattens lists and tuples into a slice of their elements.
func sequenceItems(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []float64:
		out := make([]any, len(s))
		for i, f := range s {
			out[i] = f
		}
		return out, true
	case pySequence:
		out := make([]any, s.Len())
		for i := range out {
			out[i] = s.Get(i)
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false // raw bytes are not a metric series
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
