// Package outwriter renders study results and fold plans as text tables,
// CSV, JSON or Parquet.
package outwriter

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/eegstudy/internal/contract"
	"github.com/huangsam/eegstudy/internal/parquet"
	"github.com/huangsam/eegstudy/schema"
)

// WriteStudyResult outputs an aggregation result, dispatching based on the output format configured.
func WriteStudyResult(result schema.StudyResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForStudy(w, result, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeParquetFile(cfg.OutputFile, func(path string) error {
			return parquet.WriteStudyStatsParquet(parquet.StudyStatRows(result), path)
		}); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStudyText(w, result, cfg, fmtFloat, duration)
		}, "Wrote results"); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	}
	return nil
}

// WriteFoldPlans outputs fold plans, dispatching based on the output format configured.
func WriteFoldPlans(plans []schema.FoldPlan, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, plans)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForFolds(w, plans)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeParquetFile(cfg.OutputFile, func(path string) error {
			return parquet.WriteFoldUnitsParquet(parquet.FoldUnitRows(plans), path)
		}); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFoldTable(w, plans, cfg, duration)
		}, "Wrote fold plan"); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	}
	return nil
}

// writeParquetFile runs a Parquet writer against outputFile, which must be set.
func writeParquetFile(outputFile string, write func(path string) error) error {
	if outputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}
	if err := write(outputFile); err != nil {
		return err
	}
	fmt.Fprintf(stderr, "💾 Wrote Parquet to %s\n", outputFile)
	return nil
}
