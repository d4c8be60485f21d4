package metricstore

import (
	"encoding/json"
	"io"

	"github.com/huangsam/eegstudy/schema"
	"gopkg.in/yaml.v3"
)

func decodeJSON(r io.Reader) (any, error) {
	var raw any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func encodeJSON(w io.Writer, record schema.MetricRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plain(record))
}

func decodeYAML(r io.Reader) (any, error) {
	var raw any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func encodeYAML(w io.Writer, record schema.MetricRecord) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(plain(record)); err != nil {
		return err
	}
	return enc.Close()
}

// plain converts a record into maps and slices the text encoders
// understand, leaving out unsupported entries.
func plain(record schema.MetricRecord) map[string]any {
	out := make(map[string]any, len(record))
	for name, v := range record {
		if _, ok := v.Supported(); ok {
			out[name] = v.Raw()
		}
	}
	return out
}
