package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/eegstudy/internal/contract"
	"github.com/huangsam/eegstudy/internal/parquet"
)

// ExecuteHistoryExport exports the run history of the global store to Parquet files.
func ExecuteHistoryExport(outputFile string) error {
	store := Manager.GetHistoryStore()
	if store == nil {
		return errors.New("run history is disabled; set --history-backend to export")
	}
	return ExportHistory(store, outputFile)
}

// ExportHistory writes <outputFile>.runs.parquet and
// <outputFile>.scope_stats.parquet from store.
func ExportHistory(store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total statistic records: %d\n", status.TableSizes[scopeStatsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	stats, err := store.GetAllScopeStats()
	if err != nil {
		return fmt.Errorf("failed to retrieve scope statistics: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	parquetRuns := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	statsFile := outputFile + ".scope_stats.parquet"
	parquetStats := parquet.ConvertScopeStatRecords(stats)
	if err := parquet.WriteScopeStatsParquet(parquetStats, statsFile); err != nil {
		return fmt.Errorf("failed to write scope statistics: %w", err)
	}
	fmt.Printf("Exported %d statistic records to: %s\n", len(parquetStats), statsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - Polars")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
