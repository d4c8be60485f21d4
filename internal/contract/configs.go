package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"unicode"

	"github.com/huangsam/eegstudy/schema"
)

// Default values for configuration.
const (
	DefaultPrecision  = 4
	MaxPrecision      = 8
	DefaultValidRatio = 0.2
	DefaultKFolds     = 5
	DefaultRepeats    = 1
	DefaultSeed       = 1234
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for aggregation and fold planning.
// This struct remains the "final, validated" config.
type Config struct {
	RootPath   string // results root, paradigm directory or scaffold target
	Metrics    []string
	MetricFile string
	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Quiet      bool
	Width      int // Terminal width override (0 = auto-detect)
	Workers    int

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	Subjects   []string
	Sessions   []string
	Paradigms  []schema.Paradigm
	Seed       int64
	ValidRatio float64
	KFolds     int
	Repeats    int

	UseColors bool // Enable colored labels in output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args, so no tag
	RootPathStr   string
	MetricArgs    []string
	RootMustExist bool

	// --- Fields from rootCmd.PersistentFlags() ---
	MetricFile       string   `mapstructure:"metric-file"`
	Metrics          []string `mapstructure:"metrics"`
	Output           string   `mapstructure:"output"`
	OutputFile       string   `mapstructure:"output-file"`
	Precision        int      `mapstructure:"precision"`
	Quiet            bool     `mapstructure:"quiet"`
	Width            int      `mapstructure:"width"`
	Workers          int      `mapstructure:"workers"`
	HistoryBackend   string   `mapstructure:"history-backend"`
	HistoryDBConnect string   `mapstructure:"history-db-connect"`
	Color            string   `mapstructure:"color"`

	// --- Fields from foldsCmd and scaffoldCmd flags ---
	Subjects   string  `mapstructure:"subjects"`
	Sessions   string  `mapstructure:"sessions"`
	Paradigms  string  `mapstructure:"paradigms"`
	Seed       int64   `mapstructure:"seed"`
	ValidRatio float64 `mapstructure:"valid-ratio"`
	KFolds     int     `mapstructure:"k-folds"`
	Repeats    int     `mapstructure:"repeats"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Metrics = slices.Clone(c.Metrics)
	clone.Subjects = slices.Clone(c.Subjects)
	clone.Sessions = slices.Clone(c.Sessions)
	clone.Paradigms = slices.Clone(c.Paradigms)
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processMetrics(cfg, input); err != nil {
		return err
	}
	if err := processFoldPlanning(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	return resolveRootPath(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseDatabaseBackend normalizes a backend name; empty means history is disabled.
func ParseDatabaseBackend(s string) (schema.DatabaseBackend, error) {
	if strings.TrimSpace(s) == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", s)
	}
	return backend, nil
}

// RevalidateMetrics re-runs metric validation for a request that overrides
// the metric names or the artifact file. Empty overrides keep cfg's values.
func RevalidateMetrics(cfg *Config, metrics []string, metricFile string) error {
	input := &ConfigRawInput{MetricArgs: metrics, Metrics: cfg.Metrics, MetricFile: metricFile}
	if input.MetricFile == "" {
		input.MetricFile = cfg.MetricFile
	}
	return processMetrics(cfg, input)
}

// FoldPlanningInput returns the raw fold planning fields of cfg, ready to be
// overridden and passed to RevalidateFoldPlanning.
func (c *Config) FoldPlanningInput() *ConfigRawInput {
	paradigms := make([]string, len(c.Paradigms))
	for i, p := range c.Paradigms {
		paradigms[i] = string(p)
	}
	return &ConfigRawInput{
		Subjects:   strings.Join(c.Subjects, ","),
		Sessions:   strings.Join(c.Sessions, ","),
		Paradigms:  strings.Join(paradigms, ","),
		Seed:       c.Seed,
		ValidRatio: c.ValidRatio,
		KFolds:     c.KFolds,
		Repeats:    c.Repeats,
	}
}

// RevalidateFoldPlanning re-runs fold planning validation on input.
func RevalidateFoldPlanning(cfg *Config, input *ConfigRawInput) error {
	return processFoldPlanning(cfg, input)
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// validateSimpleInputs processes and validates output and execution fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Quiet = input.Quiet

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	cfg.Width = input.Width

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	return nil
}

// processMetrics resolves the requested metric names and the artifact file name.
// Positional metric arguments take precedence over the configured list.
func processMetrics(cfg *Config, input *ConfigRawInput) error {
	requested := input.MetricArgs
	if len(requested) == 0 {
		requested = input.Metrics
	}
	if len(requested) == 0 {
		requested = schema.DefaultMetrics
	}

	cfg.Metrics = make([]string, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
			return fmt.Errorf("invalid metric name %q: must not contain whitespace", name)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		cfg.Metrics = append(cfg.Metrics, name)
	}
	if len(cfg.Metrics) == 0 {
		return fmt.Errorf("at least one metric name is required")
	}

	cfg.MetricFile = strings.TrimSpace(input.MetricFile)
	if cfg.MetricFile == "" {
		cfg.MetricFile = schema.TestMetricFile
	}
	if cfg.MetricFile != filepath.Base(cfg.MetricFile) {
		return fmt.Errorf("metric-file must be a file name, not a path (received %q)", input.MetricFile)
	}
	return nil
}

// processFoldPlanning handles the subject, session and split parameters.
func processFoldPlanning(cfg *Config, input *ConfigRawInput) error {
	cfg.Subjects = ParseNameList(input.Subjects)
	cfg.Sessions = ParseNameList(input.Sessions)

	cfg.Paradigms = nil
	for _, name := range ParseNameList(input.Paradigms) {
		p, ok := schema.ParseParadigm(name)
		if !ok {
			return fmt.Errorf("invalid paradigm '%s'", name)
		}
		cfg.Paradigms = append(cfg.Paradigms, p)
	}
	if len(cfg.Paradigms) == 0 {
		cfg.Paradigms = slices.Clone(schema.AllParadigms)
	}

	if input.ValidRatio < 0 || input.ValidRatio >= 1 {
		return fmt.Errorf("valid-ratio must be in [0, 1) (received %.3f)", input.ValidRatio)
	}
	cfg.ValidRatio = input.ValidRatio

	if input.KFolds < 2 {
		return fmt.Errorf("k-folds must be at least 2 (received %d)", input.KFolds)
	}
	cfg.KFolds = input.KFolds

	if input.Repeats < 1 {
		return fmt.Errorf("repeats must be at least 1 (received %d)", input.Repeats)
	}
	cfg.Repeats = input.Repeats
	cfg.Seed = input.Seed

	return nil
}

// validateBackendConfig validates the history backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	backend, err := ParseDatabaseBackend(input.HistoryBackend)
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// resolveRootPath makes the positional path absolute and checks it when required.
func resolveRootPath(cfg *Config, input *ConfigRawInput) error {
	if input.RootPathStr == "" {
		cfg.RootPath = ""
		if input.RootMustExist {
			return fmt.Errorf("a results directory is required")
		}
		return nil
	}

	absPath, err := filepath.Abs(input.RootPathStr)
	if err != nil {
		return err
	}
	cfg.RootPath = filepath.Clean(absPath)

	if !input.RootMustExist {
		return nil
	}
	info, err := os.Stat(cfg.RootPath)
	if err != nil {
		return fmt.Errorf("cannot access results directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("results path %s is not a directory", cfg.RootPath)
	}
	return nil
}
