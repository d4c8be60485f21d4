package schema

import (
	"fmt"
	"strings"
)

// ArtifactReadError reports a metric artifact that could not be loaded.
// It is recoverable: the unit is treated as absent.
type ArtifactReadError struct {
	Path string
	Err  error
}

func (e *ArtifactReadError) Error() string {
	return fmt.Sprintf("cannot read metric artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactReadError) Unwrap() error {
	return e.Err
}

// NoDataError reports an average requested over an empty sequence.
type NoDataError struct {
	Paradigm Paradigm
	Group    string
	Metric   string
	Reason   string
}

func (e *NoDataError) Error() string {
	var parts []string
	if e.Paradigm != "" {
		parts = append(parts, "paradigm "+string(e.Paradigm))
	}
	if e.Group != "" {
		parts = append(parts, "group "+e.Group)
	}
	if e.Metric != "" {
		parts = append(parts, "metric "+e.Metric)
	}
	msg := "no data"
	if len(parts) > 0 {
		msg += " for " + strings.Join(parts, ", ")
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// UnknownParadigmError reports a results root entry that names no paradigm.
type UnknownParadigmError struct {
	Name string
	Path string
}

func (e *UnknownParadigmError) Error() string {
	return fmt.Sprintf("unknown paradigm %q at %s (expected one of %s)", e.Name, e.Path, paradigmList())
}

func paradigmList() string {
	names := make([]string, len(AllParadigms))
	for i, p := range AllParadigms {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
