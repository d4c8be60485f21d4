package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/huangsam/eegstudy/internal/contract"
	"github.com/huangsam/eegstudy/internal/parquet"
	"github.com/huangsam/eegstudy/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// flatGroupLabel names the single group of a flat paradigm in tables.
const flatGroupLabel = "all folds"

// writeStudyText prints the per-paradigm breakdown unless quiet, then one
// pooled line per metric in request order.
func writeStudyText(w io.Writer, result schema.StudyResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	if !cfg.Quiet {
		for _, pr := range result.Paradigms {
			if err := writeParadigmTable(w, pr, result.Metrics, fmtFloat); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintln(w, "Aggregated results"); err != nil {
		return err
	}
	for _, metric := range result.Metrics {
		s := result.Overall[metric]
		if _, err := fmt.Fprintf(w, "%s %s +- %s\n", metric, fmtFloat(s.Mean), fmtFloat(s.Std)); err != nil {
			return err
		}
	}

	if cfg.Quiet {
		return nil
	}
	_, err := fmt.Fprintf(w, "Aggregation of %d artifacts completed in %v. History backend: %s\n", result.Loaded(), duration, cfg.HistoryBackend)
	return err
}

// writeParadigmTable prints one paradigm: a header line and a row per group
// with "mean ± std" cells.
func writeParadigmTable(w io.Writer, pr schema.ParadigmResult, metrics []string, fmtFloat func(float64) string) error {
	header := fmt.Sprintf("%s (%s, %d loaded", contract.HeaderColor.Sprint(pr.Paradigm), pr.Kind, pr.Loaded)
	if pr.Skipped > 0 {
		header += fmt.Sprintf(", %s", contract.WarnColor.Sprintf("%d skipped", pr.Skipped))
	}
	if _, err := fmt.Fprintln(w, header+")"); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	headers := append([]string{"Group"}, metrics...)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, g := range pr.Groups {
		label := g.Group
		if label == "" {
			label = flatGroupLabel
		}
		row := []string{label}
		for _, metric := range metrics {
			s := g.Metrics[metric]
			row = append(row, fmt.Sprintf("%s ± %s", fmtFloat(s.Mean), fmtFloat(s.Std)))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeCSVResultsForStudy writes one row per group summary and per pooled metric.
func writeCSVResultsForStudy(w io.Writer, result schema.StudyResult, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"scope", "group", "metric", "mean", "std", "n"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range parquet.StudyStatRows(result) {
			record := []string{
				row.Scope,
				row.Group,
				row.Metric,
				fmtFloat(row.Mean),
				fmtFloat(row.Std),
				fmt.Sprintf(intFmt, row.N),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// formatParadigms joins paradigm names for summaries.
func formatParadigms(ps []schema.Paradigm) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
