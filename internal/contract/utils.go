package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fatih/color"
)

// Color variables for console output.
var (
	FatalColor   = color.New(color.FgRed, color.Bold)  // FatalColor marks errors that abort the run.
	WarnColor    = color.New(color.FgYellow)           // WarnColor marks skipped artifacts and other recoverable problems.
	HeaderColor  = color.New(color.FgCyan, color.Bold) // HeaderColor marks paradigm section headers.
	SuccessColor = color.New(color.FgGreen)            // SuccessColor marks completed maintenance operations.
)

// SetColorEnabled toggles colored output for every label in the process.
func SetColorEnabled(enabled bool) {
	color.NoColor = !enabled
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s %s: %v\n", FatalColor.Sprint("Fatal"), msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s %s: %v\n", WarnColor.Sprint("Warn"), msg, err)
}

// StderrDiagnostics reports diagnostics with LogWarn.
type StderrDiagnostics struct{}

var _ Diagnostics = StderrDiagnostics{} // Compile-time check

// Warn implements the Diagnostics interface.
func (StderrDiagnostics) Warn(msg string, err error) {
	LogWarn(msg, err)
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".eegstudy_history.db"
	}
	return filepath.Join(homeDir, ".eegstudy_history.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// ParseNameList splits a comma-separated list, trims entries, drops empties
// and returns the distinct names in lexicographic order.
func ParseNameList(s string) []string {
	var names []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			names = append(names, p)
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}
