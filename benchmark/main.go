// Package main provides a performance benchmarking tool for the eegstudy CLI.
// It scaffolds synthetic results trees of increasing size, then times the
// aggregate command on each tree with run history disabled and with SQLite
// history, treating the first successful run as cold and averaging the rest
// as warm. Results are written to a CSV file for documentation.
//
// Prerequisites:
// - eegstudy binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where the synthetic trees are written
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (scaffold time, cold run and average of warm runs).
type BenchmarkResult struct {
	Study        string
	Artifacts    int
	History      string
	ScaffoldTime string
	ColdTime     string
	WarmTime     string
}

// StudySize describes one synthetic study.
type StudySize struct {
	Name     string
	Subjects int
	Sessions int
	KFolds   int
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir  string
	Timeout  time.Duration
	Workers  int
	Runs     int
	Studies  []StudySize
	Backends []string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir: os.Args[1],
		Timeout: 5 * time.Minute,
		Workers: 8,
		Runs:    4,
		Studies: []StudySize{
			{Name: "small", Subjects: 9, Sessions: 2, KFolds: 5},
			{Name: "medium", Subjects: 54, Sessions: 2, KFolds: 10},
			{Name: "large", Subjects: 109, Sessions: 4, KFolds: 10},
		},
		Backends: []string{"none", "sqlite"},
	}

	if _, err := exec.LookPath("eegstudy"); err != nil {
		fmt.Printf("Prerequisites check failed: eegstudy binary not found in PATH\n")
		os.Exit(1)
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		fmt.Printf("Failed to create work dir: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks scaffolds and aggregates every configured study.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d studies, %v timeout, %d workers, %d runs per backend\n",
		len(config.Studies), config.Timeout, config.Workers, config.Runs)

	for _, study := range config.Studies {
		fmt.Printf("Benchmarking %s study\n", study.Name)

		root := filepath.Join(config.WorkDir, study.Name)
		_ = os.RemoveAll(root)

		start := time.Now()
		artifacts, err := scaffold(config, study, root)
		if err != nil {
			fmt.Printf("  Scaffold failed: %v\n", err)
			continue
		}
		scaffoldTime := fmt.Sprintf("%.3fs", time.Since(start).Seconds())

		for _, backend := range config.Backends {
			cold, warm := runPhase(config, root, backend)
			results = append(results, BenchmarkResult{
				Study:        study.Name,
				Artifacts:    artifacts,
				History:      backend,
				ScaffoldTime: scaffoldTime,
				ColdTime:     cold,
				WarmTime:     warm,
			})
		}
	}

	return results
}

// scaffold writes the study tree and returns the number of artifacts written.
func scaffold(config BenchmarkConfig, study StudySize, root string) (int, error) {
	args := []string{
		"scaffold", root,
		"--subjects", names("s", study.Subjects),
		"--sessions", names("session-", study.Sessions),
		"--k-folds", strconv.Itoa(study.KFolds),
		"--workers", strconv.Itoa(config.Workers),
	}
	output, err := exec.Command("eegstudy", args...).CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}

	var written int
	if _, err := fmt.Sscanf(string(output), "Wrote %d", &written); err != nil {
		return 0, fmt.Errorf("unexpected scaffold output: %s", strings.TrimSpace(string(output)))
	}
	return written, nil
}

// runPhase times the aggregate command with the given history backend.
func runPhase(config BenchmarkConfig, root, backend string) (coldTime, warmAvg string) {
	fmt.Printf("  history=%s (%d runs)\n", backend, config.Runs)

	args := []string{"aggregate", root, "--quiet", "--history-backend", backend}
	if backend == "sqlite" {
		dbPath := filepath.Join(config.WorkDir, "benchmark_history.db")
		_ = os.Remove(dbPath)
		args = append(args, "--history-db-connect", dbPath)
	}

	var times []float64
	for range config.Runs {
		start := time.Now()
		cmd := exec.Command("eegstudy", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	coldTime, warmAvg = "TIMEOUT", "TIMEOUT"
	if len(times) > 0 {
		coldTime = fmt.Sprintf("%.3fs", times[0])
	}
	if len(times) > 1 {
		var sum float64
		for _, t := range times[1:] {
			sum += t
		}
		warmAvg = fmt.Sprintf("%.3fs", sum/float64(len(times)-1))
	}
	fmt.Printf("    Cold time: %s, Warm average: %s\n", coldTime, warmAvg)
	return coldTime, warmAvg
}

// names returns prefix1..prefixN joined by commas.
func names(prefix string, n int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%03d", prefix, i+1)
	}
	return strings.Join(out, ",")
}

// isSuccess checks if command output holds the pooled results
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Aggregated results") && !strings.Contains(outputStr, "Warn")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("eegstudy_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"study", "artifacts", "history", "scaffold_time", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		if err := writer.Write([]string{r.Study, strconv.Itoa(r.Artifacts), r.History, r.ScaffoldTime, r.ColdTime, r.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, r := range results {
		fmt.Printf("  %-8s %7d artifacts, history=%-6s: Scaffold: %s, Cold: %s, Warm: %s\n",
			r.Study, r.Artifacts, r.History, r.ScaffoldTime, r.ColdTime, r.WarmTime)
	}
}
