package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/eegstudy/internal/contract"
	"github.com/huangsam/eegstudy/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for run history.
const (
	runsTable       = "eegstudy_runs"
	scopeStatsTable = "eegstudy_scope_stats"
)

var historyTables = []string{runsTable, scopeStatsTable}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
// The none backend yields a store whose writes are no-ops.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}
	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables applies every up migration of the backend in order.
// The migrations only use CREATE TABLE IF NOT EXISTS, so this is idempotent
// and agrees with MigrateHistory.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	dir, err := migrationDir(backend)
	if err != nil {
		return err
	}
	ups, err := fs.Glob(migrationsFS, dir+"/*.up.sql")
	if err != nil {
		return err
	}
	for _, name := range ups { // fs.Glob returns names in lexical order
		query, err := fs.ReadFile(migrationsFS, name)
		if err != nil {
			return err
		}
		if _, err := db.Exec(string(query)); err != nil {
			return fmt.Errorf("failed to apply %s: %w", name, err)
		}
	}
	return nil
}

func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// bind rewrites ? placeholders to $n for PostgreSQL.
func (hs *HistoryStoreImpl) bind(query string) string {
	if hs.backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// BeginRun creates a new run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, resultsRoot, metricFile string, configParams map[string]any) (int64, error) {
	if hs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	table := quoteTableName(runsTable, hs.backend)
	args := []any{formatTime(startTime, hs.backend), resultsRoot, metricFile, string(configJSON)}

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, results_root, metric_file, config_params) VALUES (?, ?, ?, ?) RETURNING run_id`, table)
		err = hs.db.QueryRow(hs.bind(query), args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, results_root, metric_file, config_params) VALUES (?, ?, ?, ?)`, table)
		var result sql.Result
		result, err = hs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordScopeStats stores one row per metric of stats under scope.
func (hs *HistoryStoreImpl) RecordScopeStats(runID int64, scope string, stats schema.OverallStats) error {
	if hs.disabled() {
		return nil
	}

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := hs.bind(fmt.Sprintf(`INSERT INTO %s (run_id, scope, metric, mean_value, std_value, replicas) VALUES (?, ?, ?, ?, ?, ?)`,
		quoteTableName(scopeStatsTable, hs.backend)))
	for _, metric := range schema.SortedKeys(stats) {
		s := stats[metric]
		if _, err := tx.Exec(query, runID, scope, metric, s.Mean, s.Std, s.N); err != nil {
			return fmt.Errorf("failed to insert %s statistics for %s: %w", metric, scope, err)
		}
	}
	return tx.Commit()
}

// EndRun updates the run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, paradigms, artifactsLoaded int) error {
	if hs.disabled() {
		return nil
	}

	table := quoteTableName(runsTable, hs.backend)
	row := hs.db.QueryRow(hs.bind(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, table)), runID)
	startTime, err := scanTime(row, hs.backend)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()
	query := fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, paradigms = ?, artifacts_loaded = ? WHERE run_id = ?`, table)
	if _, err := hs.db.Exec(hs.bind(query), formatTime(endTime, hs.backend), durationMs, paradigms, artifactsLoaded, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.disabled() {
		return status, nil
	}

	runs := quoteTableName(runsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := hs.db.QueryRow(fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}

		var err error
		row = hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		if status.LastRunTime, err = scanTime(row, hs.backend); err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		row = hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs))
		if status.OldestRunTime, err = scanTime(row, hs.backend); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}

		row = hs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(artifacts_loaded), 0) FROM %s", runs))
		if err := row.Scan(&status.TotalArtifacts); err != nil {
			return status, fmt.Errorf("failed to get total artifacts: %w", err)
		}
	}

	for _, table := range historyTables {
		var count int64
		row := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all runs from the store ordered by ID.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, results_root, metric_file,
		paradigms, artifacts_loaded, config_params FROM %s ORDER BY run_id`, quoteTableName(runsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var paradigms, artifacts sql.NullInt32

		switch hs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &startTimeStr, &endTimeStr, &record.RunDurationMs, &record.ResultsRoot,
				&record.MetricFile, &paradigms, &artifacts, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			startTime, err := time.Parse(time.RFC3339Nano, startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL store native datetimes
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs, &record.ResultsRoot,
				&record.MetricFile, &paradigms, &artifacts, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}
		record.Paradigms = paradigms.Int32
		record.ArtifactsLoaded = artifacts.Int32
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllScopeStats retrieves every recorded statistic ordered by run, scope and metric.
func (hs *HistoryStoreImpl) GetAllScopeStats() ([]schema.ScopeStatRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, scope, metric, mean_value, std_value, replicas FROM %s ORDER BY run_id, scope, metric`,
		quoteTableName(scopeStatsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query scope statistics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ScopeStatRecord
	for rows.Next() {
		var record schema.ScopeStatRecord
		if err := rows.Scan(&record.RunID, &record.Scope, &record.Metric, &record.Mean, &record.Std, &record.Replicas); err != nil {
			return nil, fmt.Errorf("failed to scan scope statistics: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scope statistics: %w", err)
	}
	return results, nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t
}

// scanTime reads a start_time column written by formatTime.
func scanTime(row *sql.Row, backend schema.DatabaseBackend) (time.Time, error) {
	if backend != schema.SQLiteBackend {
		var t time.Time
		err := row.Scan(&t)
		return t, err
	}
	var s string
	if err := row.Scan(&s); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, s)
}
