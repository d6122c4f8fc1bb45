package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/pulsegrid/afterglow/schema"
)

// Table names for fit-run tracking.
const (
	fitRunsTable   = "afterglow_fit_runs"
	runParamsTable = "afterglow_run_params"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db       *sql.DB
	backend  schema.DatabaseBackend
	location string
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	var db *sql.DB
	var err error
	location := connStr

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetRunsDBFilePath()
		}
		location = dbPath
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{
			db:      nil,
			backend: backend,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database server is running and accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	// Create the table schemas
	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{
		db:       db,
		backend:  backend,
		location: location,
	}, nil
}

// createRunTables creates the fit-run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{fitRunsTable, getCreateFitRunsQuery(backend)},
		{runParamsTable, getCreateRunParamsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateFitRunsQuery returns the CREATE TABLE query for afterglow_fit_runs.
func getCreateFitRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(fitRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				transient VARCHAR(255) NOT NULL DEFAULT '',
				model VARCHAR(100) NOT NULL DEFAULT '',
				likelihood VARCHAR(100) NOT NULL DEFAULT '',
				max_log_like DOUBLE,
				acceptance DOUBLE,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				transient TEXT NOT NULL DEFAULT '',
				model TEXT NOT NULL DEFAULT '',
				likelihood TEXT NOT NULL DEFAULT '',
				max_log_like DOUBLE PRECISION,
				acceptance DOUBLE PRECISION,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				transient TEXT NOT NULL DEFAULT '',
				model TEXT NOT NULL DEFAULT '',
				likelihood TEXT NOT NULL DEFAULT '',
				max_log_like REAL,
				acceptance REAL,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateRunParamsQuery returns the CREATE TABLE query for afterglow_run_params.
func getCreateRunParamsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runParamsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				ordinal INT NOT NULL,
				name VARCHAR(100) NOT NULL,
				median DOUBLE NOT NULL,
				lower_q DOUBLE NOT NULL,
				upper_q DOUBLE NOT NULL,
				max_like DOUBLE NOT NULL,
				PRIMARY KEY (run_id, name)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				ordinal INT NOT NULL,
				name TEXT NOT NULL,
				median DOUBLE PRECISION NOT NULL,
				lower_q DOUBLE PRECISION NOT NULL,
				upper_q DOUBLE PRECISION NOT NULL,
				max_like DOUBLE PRECISION NOT NULL,
				PRIMARY KEY (run_id, name)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				ordinal INTEGER NOT NULL,
				name TEXT NOT NULL,
				median REAL NOT NULL,
				lower_q REAL NOT NULL,
				upper_q REAL NOT NULL,
				max_like REAL NOT NULL,
				PRIMARY KEY (run_id, name)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new fit run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	// Serialize config params to JSON
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(fitRunsTable, rs.backend)

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, formatTime(startTime, rs.backend), string(configJSON))
		if err != nil {
			return 0, err
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert fit run: %w", err)
	}

	return runID, nil
}

// EndRun updates the fit run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, result *schema.FitResult) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	// First, get the start_time to calculate duration
	quotedTableName := quoteTableName(fitRunsTable, rs.backend)
	startTime, err := rs.getStartTime(runID, quotedTableName)
	if err != nil {
		return err
	}

	// Calculate duration in milliseconds
	durationMs := endTime.Sub(startTime).Milliseconds()

	// Update the fit run with completion data
	var updateQuery string
	var args []any

	switch rs.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, transient = $3, model = $4,
			likelihood = $5, max_log_like = $6, acceptance = $7 WHERE run_id = $8`, quotedTableName)
		args = []any{endTime, durationMs, result.Transient, result.Model, string(result.Likelihood), result.MaxLogLike, result.Acceptance, runID}
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, transient = ?, model = ?,
			likelihood = ?, max_log_like = ?, acceptance = ? WHERE run_id = ?`, quotedTableName)
		args = []any{formatTime(endTime, rs.backend), durationMs, result.Transient, result.Model, string(result.Likelihood), result.MaxLogLike, result.Acceptance, runID}
	}

	if _, err := rs.db.Exec(updateQuery, args...); err != nil {
		return fmt.Errorf("failed to update fit run: %w", err)
	}

	return nil
}

// getStartTime reads the start_time column of one run, handling the
// per-backend time storage formats.
func (rs *RunStoreImpl) getStartTime(runID int64, quotedTableName string) (time.Time, error) {
	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = $1`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quotedTableName)
	}

	row := rs.db.QueryRow(query, runID)

	switch rs.backend {
	case schema.SQLiteBackend:
		var startTimeStr string
		if err := row.Scan(&startTimeStr); err != nil {
			return time.Time{}, fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
		}
		startTime, err := time.Parse(time.RFC3339Nano, startTimeStr)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse start_time: %w", err)
		}
		return startTime, nil
	default: // MySQL and PostgreSQL store as native datetime
		var startTime time.Time
		if err := row.Scan(&startTime); err != nil {
			return time.Time{}, fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
		}
		return startTime, nil
	}
}

// RecordParams stores the posterior summaries for the run's parameters.
func (rs *RunStoreImpl) RecordParams(runID int64, params []schema.ParamSummary) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runParamsTable, rs.backend)

	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (run_id, ordinal, name, median, lower_q, upper_q, max_like)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`INSERT INTO %s (run_id, ordinal, name, median, lower_q, upper_q, max_like)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, quotedTableName)
	}

	for i, p := range params {
		if _, err := rs.db.Exec(query, runID, i, p.Name, p.Median, p.Lower, p.Upper, p.MaxLike); err != nil {
			return fmt.Errorf("failed to insert run param %s: %w", p.Name, err)
		}
	}

	return nil
}

// ListRuns returns the most recent fit runs, newest first.
func (rs *RunStoreImpl) ListRuns(limit int) ([]schema.FitRunRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	quotedTableName := quoteTableName(fitRunsTable, rs.backend)
	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, transient, model, likelihood,
			max_log_like, acceptance, config_params FROM %s ORDER BY run_id DESC LIMIT $1`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, transient, model, likelihood,
			max_log_like, acceptance, config_params FROM %s ORDER BY run_id DESC LIMIT ?`, quotedTableName)
	}

	rows, err := rs.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fit runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FitRunRecord

	for rows.Next() {
		var record schema.FitRunRecord

		switch rs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &startTimeStr, &endTimeStr, &record.RunDurationMs, &record.Transient,
				&record.Model, &record.Likelihood, &record.MaxLogLike, &record.Acceptance, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan fit run: %w", err)
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
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs, &record.Transient,
				&record.Model, &record.Likelihood, &record.MaxLogLike, &record.Acceptance, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan fit run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fit runs: %w", err)
	}

	return results, nil
}

// ListParams returns the parameter summaries recorded for a run, in model order.
func (rs *RunStoreImpl) ListParams(runID int64) ([]schema.RunParamRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(runParamsTable, rs.backend)
	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT run_id, name, median, lower_q, upper_q, max_like FROM %s
			WHERE run_id = $1 ORDER BY ordinal`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT run_id, name, median, lower_q, upper_q, max_like FROM %s
			WHERE run_id = ? ORDER BY ordinal`, quotedTableName)
	}

	rows, err := rs.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run params: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunParamRecord

	for rows.Next() {
		var record schema.RunParamRecord
		if err := rows.Scan(&record.RunID, &record.Name, &record.Median, &record.Lower, &record.Upper, &record.MaxLike); err != nil {
			return nil, fmt.Errorf("failed to scan run param: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run params: %w", err)
	}

	return results, nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStoreStatus, error) {
	status := schema.RunStoreStatus{
		Backend:    rs.backend,
		Location:   rs.location,
		TableSizes: make(map[string]int),
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	// Get total runs
	runsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(fitRunsTable, rs.backend))
	row := rs.db.QueryRow(runsQuery)
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	// Get table sizes
	tables := []string{fitRunsTable, runParamsTable}
	for _, table := range tables {
		quotedTable := quoteTableName(table, rs.backend)
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTable)
		row = rs.db.QueryRow(countQuery)
		var count int
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// Clear removes all recorded runs and their parameter summaries.
func (rs *RunStoreImpl) Clear() error {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	tables := []string{runParamsTable, fitRunsTable}
	for _, table := range tables {
		quotedTable := quoteTableName(table, rs.backend)
		query := fmt.Sprintf("DELETE FROM %s", quotedTable)
		if _, err := rs.db.Exec(query); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}
