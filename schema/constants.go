package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string

	// Paradigm identifies one of the cross-validation designs. Its value is
	// also the directory name under a results root.
	Paradigm string

	// StatsKind tags the shape of a ParadigmStats value.
	StatsKind string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// All paradigms supported.
const (
	WithinSession      Paradigm = "within-session"
	CrossSession       Paradigm = "cross-session"
	LeaveOneSessionOut Paradigm = "leave-one-session-out"
	LeaveOneSubjectOut Paradigm = "leave-one-subject-out"
)

// Shapes of ParadigmStats.
const (
	NestedStats StatsKind = "nested"
	FlatStats   StatsKind = "flat"
)

// Artifact names written by the trainer for every fold.
const (
	TestMetricFile  = "test_metrics.pkl" // default
	ValidMetricFile = "valid_metrics.pkl"
)

// DefaultMetrics is used when no metric names are requested.
var DefaultMetrics = []string{"loss", "f1", "acc"}

// AllParadigms returns every paradigm in lexicographic order of its directory name.
var AllParadigms = []Paradigm{CrossSession, LeaveOneSessionOut, LeaveOneSubjectOut, WithinSession}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ParseParadigm maps a directory name to its Paradigm.
func ParseParadigm(name string) (Paradigm, bool) {
	switch p := Paradigm(name); p {
	case WithinSession, CrossSession, LeaveOneSessionOut, LeaveOneSubjectOut:
		return p, true
	default:
		return "", false
	}
}

// Kind returns the ParadigmStats shape produced for the paradigm.
func (p Paradigm) Kind() StatsKind {
	switch p {
	case WithinSession, LeaveOneSessionOut:
		return NestedStats
	default:
		return FlatStats
	}
}

// Depth returns how many directory levels sit between the paradigm
// directory and a metric artifact.
func (p Paradigm) Depth() int {
	switch p {
	case WithinSession:
		return 3
	case CrossSession, LeaveOneSessionOut:
		return 2
	default:
		return 1
	}
}
