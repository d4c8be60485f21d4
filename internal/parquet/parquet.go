// Package parquet provides row types and writers for exporting eegstudy
// results and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/eegstudy/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single aggregation run with metadata.
// This struct maps to the eegstudy_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the aggregation began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the aggregation completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	ResultsRoot     string `parquet:"results_root,snappy"`
	MetricFile      string `parquet:"metric_file,snappy"`
	Paradigms       int32  `parquet:"paradigms,snappy"`
	ArtifactsLoaded int32  `parquet:"artifacts_loaded,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// ScopeStat is one recorded metric summary of a run.
// This struct maps to the eegstudy_scope_stats database table.
type ScopeStat struct {
	RunID int64 `parquet:"run_id,snappy"`

	// Scope is a paradigm name or "overall"
	Scope    string  `parquet:"scope,snappy,dict"`
	Metric   string  `parquet:"metric,snappy,dict"`
	Mean     float64 `parquet:"mean,snappy"`
	Std      float64 `parquet:"std,snappy"`
	Replicas int32   `parquet:"replicas,snappy"`
}

// StudyStat is one row of a study result: a group summary of a paradigm,
// or a pooled summary when Scope is "overall".
type StudyStat struct {
	Scope  string  `parquet:"scope,snappy,dict"`
	Group  string  `parquet:"group,snappy"`
	Metric string  `parquet:"metric,snappy,dict"`
	Mean   float64 `parquet:"mean,snappy"`
	Std    float64 `parquet:"std,snappy"`
	N      int32   `parquet:"n,snappy"`
}

// FoldUnit assigns one unit to a split of a planned fold.
type FoldUnit struct {
	Paradigm  string `parquet:"paradigm,snappy,dict"`
	TailPath  string `parquet:"tail_path,snappy"`
	HeldOut   string `parquet:"held_out,snappy"`
	FoldIndex int32  `parquet:"fold_index,snappy"`
	Split     string `parquet:"split,snappy,dict"`
	Subject   string `parquet:"subject,snappy"`
	Session   string `parquet:"session,snappy"`
}

// WriteRunsParquet writes run rows to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteScopeStatsParquet writes scope statistic rows to a Parquet file.
func WriteScopeStatsParquet(data []ScopeStat, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteStudyStatsParquet writes study result rows to a Parquet file.
func WriteStudyStatsParquet(data []StudyStat, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteFoldUnitsParquet writes fold assignment rows to a Parquet file.
func WriteFoldUnitsParquet(data []FoldUnit, outputPath string) error {
	return writeRows(data, outputPath)
}

// writeRows creates outputPath and writes data with a schema derived from
// the struct tags of T.
func writeRows[T any](data []T, outputPath string) (err error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:           record.RunID,
			StartTime:       record.StartTime,
			EndTime:         record.EndTime,
			RunDurationMs:   record.RunDurationMs,
			ResultsRoot:     record.ResultsRoot,
			MetricFile:      record.MetricFile,
			Paradigms:       record.Paradigms,
			ArtifactsLoaded: record.ArtifactsLoaded,
			ConfigParams:    record.ConfigParams,
		}
	}
	return result
}

// ConvertScopeStatRecords converts schema.ScopeStatRecord to ScopeStat for Parquet export.
func ConvertScopeStatRecords(records []schema.ScopeStatRecord) []ScopeStat {
	result := make([]ScopeStat, len(records))
	for i, record := range records {
		result[i] = ScopeStat(record)
	}
	return result
}

// StudyStatRows flattens a study result: every group of every paradigm in
// order, then the pooled summary of each metric in request order.
func StudyStatRows(result schema.StudyResult) []StudyStat {
	var rows []StudyStat
	for _, pr := range result.Paradigms {
		for _, g := range pr.Groups {
			for _, metric := range result.Metrics {
				s, ok := g.Metrics[metric]
				if !ok {
					continue
				}
				rows = append(rows, StudyStat{
					Scope:  string(pr.Paradigm),
					Group:  g.Group,
					Metric: metric,
					Mean:   s.Mean,
					Std:    s.Std,
					N:      int32(s.N),
				})
			}
		}
	}
	for _, metric := range result.Metrics {
		s, ok := result.Overall[metric]
		if !ok {
			continue
		}
		rows = append(rows, StudyStat{
			Scope:  schema.OverallScope,
			Metric: metric,
			Mean:   s.Mean,
			Std:    s.Std,
			N:      int32(s.N),
		})
	}
	return rows
}

// FoldUnitRows lists every unit of every plan with the split it belongs to.
func FoldUnitRows(plans []schema.FoldPlan) []FoldUnit {
	var rows []FoldUnit
	for _, p := range plans {
		splits := []struct {
			name  string
			units []schema.Unit
		}{{"train", p.Train}, {"valid", p.Valid}, {"test", p.Test}}
		for _, split := range splits {
			for _, u := range split.units {
				rows = append(rows, FoldUnit{
					Paradigm:  string(p.Paradigm),
					TailPath:  p.TailPath,
					HeldOut:   p.HeldOut,
					FoldIndex: int32(p.Index),
					Split:     split.name,
					Subject:   u.Subject,
					Session:   u.Session,
				})
			}
		}
	}
	return rows
}
