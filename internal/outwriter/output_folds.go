package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/eegstudy/internal/contract"
	"github.com/huangsam/eegstudy/internal/parquet"
	"github.com/huangsam/eegstudy/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeFoldTable prints one row per fold with the size of each split.
func writeFoldTable(w io.Writer, plans []schema.FoldPlan, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Paradigm", "Fold", "Held Out", "Train", "Valid", "Test"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	maxWidth := GetMaxTablePathWidth(cfg)
	var paradigms []schema.Paradigm
	var data [][]string
	for _, p := range plans {
		if !slices.Contains(paradigms, p.Paradigm) {
			paradigms = append(paradigms, p.Paradigm)
		}
		data = append(data, []string{
			string(p.Paradigm),
			truncatePath(p.TailPath, maxWidth),
			p.HeldOut,
			strconv.Itoa(len(p.Train)),
			strconv.Itoa(len(p.Valid)),
			strconv.Itoa(len(p.Test)),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Planned %d folds (%s) in %v\n", len(plans), formatParadigms(paradigms), duration)
	return err
}

// writeCSVResultsForFolds writes one row per unit assignment.
func writeCSVResultsForFolds(w io.Writer, plans []schema.FoldPlan) error {
	header := []string{"paradigm", "fold_index", "tail_path", "held_out", "split", "subject", "session"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range parquet.FoldUnitRows(plans) {
			record := []string{
				row.Paradigm,
				strconv.Itoa(int(row.FoldIndex)),
				row.TailPath,
				row.HeldOut,
				row.Split,
				row.Subject,
				row.Session,
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}
