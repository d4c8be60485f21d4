package cmd

import (
	"errors"
	"fmt"

	"github.com/huangsam/eegstudy/internal/contract"
	"github.com/huangsam/eegstudy/internal/iocache"
	"github.com/huangsam/eegstudy/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historySetup loads minimal configuration needed for history operations.
// It skips results-root validation and the aggregation settings.
func historySetup(initStore bool) error {
	if err := readConfigFile(); err != nil {
		return err
	}

	backend, err := contract.ParseDatabaseBackend(viper.GetString("history-backend"))
	if err != nil {
		return err
	}
	connStr := viper.GetString("history-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	if !initStore {
		return nil
	}
	if err := iocache.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup(true)
}

// historyConfigWrapper loads history settings without opening the store,
// so that migrate and clear work on fresh or broken databases.
func historyConfigWrapper(_ *cobra.Command, _ []string) error {
	return historySetup(false)
}

// historyDBPath is the SQLite file for clear and migrate.
func historyDBPath() string {
	if cfg.HistoryDBConnect != "" {
		return cfg.HistoryDBConnect
	}
	return iocache.GetHistoryDBFilePath()
}

// historyCmd focused on run history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the history of aggregation runs",
	Long: `Manage the recorded history of aggregation runs.

When --history-backend is set, every aggregate run stores:
- Run metadata (timestamp, results root, metric file, configuration, duration)
- The mean, standard deviation and replicate count of every metric,
  per paradigm and pooled

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all history data
  migrate - Run database schema migrations

Examples:
  # Record runs in the default SQLite file
  eegstudy aggregate ./results --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  eegstudy history export --history-backend sqlite --output-file runs`,
}

// historyClearCmd clears the run history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs",
	Long: `Delete all stored runs and their statistics.

For SQLite the database file is removed; for MySQL and PostgreSQL the history
tables are dropped.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  eegstudy history export --history-backend sqlite --output-file backup
  eegstudy history clear --history-backend sqlite`,
	PreRunE: historyConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(cfg.HistoryBackend, historyDBPath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		_, _ = contract.SuccessColor.Println("Run history cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show the backend, the number of recorded runs, the first and last run
times, the artifacts read across all runs and the size of each table.

Examples:
  eegstudy history status --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			contract.LogFatal("Failed to get history status", errors.New("run history is disabled; set --history-backend"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(status)
	},
}

// historyExportCmd exports the run history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the run history to Parquet",
	Long: `Export all recorded runs to two Parquet files:
- <output-file>.runs.parquet with one row per run
- <output-file>.scope_stats.parquet with one row per run, scope and metric

Requires: --output-file parameter

Examples:
  eegstudy history export --history-backend sqlite --output-file runs
  duckdb -c "SELECT * FROM read_parquet('runs.scope_stats.parquet') WHERE scope = 'overall'"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions of the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  eegstudy history migrate --history-backend sqlite

  # Rollback to initial state
  eegstudy history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		connStr := cfg.HistoryDBConnect
		if cfg.HistoryBackend == schema.SQLiteBackend {
			connStr = historyDBPath()
		}
		if err := iocache.MigrateHistory(cfg.HistoryBackend, connStr, viper.GetInt("target-version")); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
