// Package cmd defines the command-line interface for eegstudy.
package cmd

import (
	"github.com/huangsam/eegstudy/internal/contract"
	"github.com/huangsam/eegstudy/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(aggregateCmd)
	rootCmd.AddCommand(paradigmCmd)
	rootCmd.AddCommand(foldsCmd)
	rootCmd.AddCommand(scaffoldCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("metric-file", schema.TestMetricFile, "Metric artifact read in every unit directory (e.g. valid_metrics.pkl)")
	rootCmd.PersistentFlags().StringSlice("metrics", schema.DefaultMetrics, "Metrics to report when none are given as arguments")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only print the aggregated results")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("history-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname?parseTime=true)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Fold planning flags are shared by folds and scaffold; each command
	// binds its own set to Viper in PreRunE since keys can only bind once.
	addFoldFlags(foldsCmd)
	addFoldFlags(scaffoldCmd)

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}

// addFoldFlags registers the fold planning flags on c.
func addFoldFlags(c *cobra.Command) {
	fs := c.Flags()
	fs.String("subjects", "", "Comma-separated subject identifiers")
	fs.String("sessions", "", "Comma-separated session identifiers")
	fs.String("paradigms", "", "Comma-separated paradigms (default: all four)")
	fs.Int64("seed", contract.DefaultSeed, "Seed of the validation split and synthetic metrics")
	fs.Float64("valid-ratio", contract.DefaultValidRatio, "Share of training units moved to validation, in [0, 1)")
	fs.Int("k-folds", contract.DefaultKFolds, "Number of within-session folds")
	fs.Int("repeats", contract.DefaultRepeats, "Number of cross-session repeats")
}
