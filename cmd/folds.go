package cmd

import (
	"github.com/huangsam/eegstudy/core"
	"github.com/huangsam/eegstudy/internal/contract"
	"github.com/spf13/cobra"
)

// foldsCmd prints fold plans.
var foldsCmd = &cobra.Command{
	Use:   "folds [paradigm...] --subjects a,b --sessions x,y",
	Short: "Plan the train, validation and test units of each fold.",
	Long: `Plan the cross-validation folds of each paradigm and print where each fold
writes its artifacts together with its train, validation and test units.

Unit-level paradigms hold out one subject or one (subject, session). Trial-level
paradigms (cross-session, within-session) reuse the same units in every split.
Validation units are drawn with --seed, so plans are reproducible.

Examples:
  # Leave-one-subject-out plan for three subjects
  eegstudy folds leave-one-subject-out --subjects s1,s2,s3 --sessions session_E

  # All paradigms as JSON
  eegstudy folds --subjects s1,s2 --sessions session_E,session_T --output json`,
	PreRunE: setupFor(paradigmNames),
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFolds(rootCtx, cfg, historyManager); err != nil {
			contract.LogFatal("Cannot plan folds", err)
		}
	},
}

// scaffoldCmd writes a synthetic results tree.
var scaffoldCmd = &cobra.Command{
	Use:   "scaffold <results-root> [metric...] --subjects a,b --sessions x,y",
	Short: "Write a synthetic results tree following the fold plans.",
	Long: `Write one metric artifact per planned fold under the results root, laid out
exactly as the aggregate command reads it. Values are drawn with --seed.

The artifact format follows the extension of --metric-file: .pkl, .json,
.yaml or .yml, optionally followed by .zst.

Examples:
  # Scaffold every paradigm, then aggregate it
  eegstudy scaffold ./synthetic --subjects s1,s2,s3 --sessions session_E,session_T
  eegstudy aggregate ./synthetic

  # Compressed JSON artifacts for one paradigm
  eegstudy scaffold ./synthetic --paradigms within-session --metric-file test_metrics.json.zst \
    --subjects s1,s2 --sessions session_E`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: setupFor(targetRoot),
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteScaffold(rootCtx, cfg, historyManager); err != nil {
			contract.LogFatal("Cannot scaffold results", err)
		}
	},
}
