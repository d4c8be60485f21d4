package iocache

import (
	"fmt"

	"github.com/huangsam/eegstudy/schema"
)

// PrintHistoryStatus prints run history status information.
func PrintHistoryStatus(status schema.HistoryStatus) {
	fmt.Printf("History Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		fmt.Printf("Last Run ID: %d\n", status.LastRunID)
		fmt.Printf("Last Run: %s\n", status.LastRunTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Oldest Run: %s\n", status.OldestRunTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Total Artifacts Loaded: %d\n", status.TotalArtifacts)
	}
	fmt.Println("Table Sizes:")
	for _, table := range schema.SortedKeys(status.TableSizes) {
		fmt.Printf("  %s: %d rows\n", table, status.TableSizes[table])
	}
}
