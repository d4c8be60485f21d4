package cmd

import (
	"github.com/huangsam/eegstudy/core"
	"github.com/huangsam/eegstudy/internal/contract"
	"github.com/spf13/cobra"
)

// aggregateCmd aggregates every paradigm of a results tree.
var aggregateCmd = &cobra.Command{
	Use:   "aggregate <results-root> [metric...]",
	Short: "Aggregate every paradigm under a results root.",
	Long: `Walk every paradigm directory under the results root, average the metrics
of each fold and report the mean and population standard deviation of every
requested metric, per paradigm and pooled across paradigms.

Paradigm directories must be named within-session, cross-session,
leave-one-session-out or leave-one-subject-out. Unreadable artifacts are
reported and skipped.

Examples:
  # Aggregate the default metrics (loss, f1, acc)
  eegstudy aggregate ./results

  # Aggregate chosen metrics from the validation artifacts
  eegstudy aggregate ./results acc kappa --metric-file valid_metrics.pkl

  # Only print the pooled lines
  eegstudy aggregate ./results acc --quiet

  # Export statistics for pandas or DuckDB
  eegstudy aggregate ./results --output parquet --output-file study.parquet`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: setupFor(existingRoot),
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAggregate(rootCtx, cfg, historyManager); err != nil {
			contract.LogFatal("Cannot aggregate results", err)
		}
	},
}

// paradigmCmd aggregates one paradigm directory.
var paradigmCmd = &cobra.Command{
	Use:   "paradigm <paradigm-dir> [metric...]",
	Short: "Aggregate a single paradigm directory.",
	Long: `Parse and aggregate one paradigm directory. The paradigm is taken from the
directory's base name, so the path must end in one of the paradigm names.

Examples:
  # Per-group breakdown of the within-session runs
  eegstudy paradigm ./results/within-session acc f1

  # CSV rows for one paradigm
  eegstudy paradigm ./results/leave-one-subject-out --output csv`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: setupFor(existingRoot),
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteParadigm(rootCtx, cfg, historyManager); err != nil {
			contract.LogFatal("Cannot aggregate paradigm", err)
		}
	},
}
