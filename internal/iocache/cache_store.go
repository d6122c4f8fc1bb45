package iocache

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/pulsegrid/afterglow/schema"
)

// datasetCacheTable is the name of the table for cached transient datasets.
const datasetCacheTable = "afterglow_dataset_cache"

// DatasetStoreImpl handles durable dataset storage using various database backends.
type DatasetStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	location  string
}

var _ contract.CacheStore = &DatasetStoreImpl{} // Compile-time check

// NewDatasetStore initializes and returns a new dataset store based on the backend type.
func NewDatasetStore(tableName string, backend schema.DatabaseBackend, connStr string) (contract.CacheStore, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	var db *sql.DB
	var err error
	location := connStr

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetDatasetDBFilePath()
		}
		location = dbPath
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite cache at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL cache: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL cache: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled caching
		return &DatasetStoreImpl{
			db:        nil,
			tableName: tableName,
			backend:   backend,
			location:  connStr,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported cache backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	// Ping to verify connection (skip for NoneBackend)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	// Create the table schema
	query := getCreateCacheTableQuery(tableName, backend)
	if _, err := db.Exec(query); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &DatasetStoreImpl{
		db:        db,
		tableName: tableName,
		backend:   backend,
		location:  location,
	}, nil
}

// getCreateCacheTableQuery returns the CREATE TABLE query for the given backend.
func getCreateCacheTableQuery(tableName string, backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key VARCHAR(255) PRIMARY KEY,
				cache_value BLOB NOT NULL,
				cache_version INT NOT NULL,
				cache_timestamp BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key TEXT PRIMARY KEY,
				cache_value BYTEA NOT NULL,
				cache_version INTEGER NOT NULL,
				cache_timestamp BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key TEXT PRIMARY KEY,
				cache_value BLOB NOT NULL,
				cache_version INTEGER NOT NULL,
				cache_timestamp INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// Get retrieves a value by key from the store.
func (ds *DatasetStoreImpl) Get(key string) ([]byte, int, int64, error) {
	// Return not found error for NoneBackend
	if ds.backend == schema.NoneBackend || ds.db == nil {
		return nil, 0, 0, sql.ErrNoRows
	}

	var value []byte
	var version int
	var ts int64

	// Use backend-specific placeholder
	quotedTableName := quoteTableName(ds.tableName, ds.backend)
	placeholder := ds.getPlaceholder()
	query := fmt.Sprintf(`SELECT cache_value, cache_version, cache_timestamp FROM %s WHERE cache_key = %s`, quotedTableName, placeholder)
	row := ds.db.QueryRow(query, key)

	if err := row.Scan(&value, &version, &ts); err != nil {
		return nil, 0, 0, err
	}
	return value, version, ts, nil
}

// Set inserts or replaces a key/value pair in the store.
func (ds *DatasetStoreImpl) Set(key string, value []byte, version int, timestamp int64) error {
	// Skip for NoneBackend
	if ds.backend == schema.NoneBackend || ds.db == nil {
		return nil
	}

	// Use backend-specific UPSERT
	query := ds.getUpsertQuery()
	_, err := ds.db.Exec(query, key, value, version, timestamp)
	return err
}

// getPlaceholder returns the parameter placeholder for the backend.
func (ds *DatasetStoreImpl) getPlaceholder() string {
	switch ds.backend {
	case schema.PostgreSQLBackend:
		return "$1"
	default: // SQLite and MySQL
		return "?"
	}
}

// getUpsertQuery returns the UPSERT query for the backend.
func (ds *DatasetStoreImpl) getUpsertQuery() string {
	quotedTableName := quoteTableName(ds.tableName, ds.backend)
	switch ds.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE cache_value = new.cache_value, cache_version = new.cache_version, cache_timestamp = new.cache_timestamp`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES ($1, $2, $3, $4)
			ON CONFLICT (cache_key) DO UPDATE SET cache_value = EXCLUDED.cache_value, cache_version = EXCLUDED.cache_version, cache_timestamp = EXCLUDED.cache_timestamp`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES (?, ?, ?, ?)`, quotedTableName)
	}
}

// Clear removes every cached dataset.
func (ds *DatasetStoreImpl) Clear() error {
	if ds.backend == schema.NoneBackend || ds.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(ds.tableName, ds.backend)
	query := fmt.Sprintf("DELETE FROM %s", quotedTableName)
	if _, err := ds.db.Exec(query); err != nil {
		return fmt.Errorf("failed to clear table %s: %w", ds.tableName, err)
	}
	return nil
}

// Close closes the underlying DB connection.
func (ds *DatasetStoreImpl) Close() error {
	if ds.db != nil {
		return ds.db.Close()
	}
	return nil
}

// GetStatus returns status information about the dataset store.
func (ds *DatasetStoreImpl) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:  ds.backend,
		Location: ds.location,
	}

	if ds.backend == schema.NoneBackend || ds.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(ds.tableName, ds.backend)

	// Get total entries
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)
	row := ds.db.QueryRow(countQuery)
	if err := row.Scan(&status.Entries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}

	if status.Entries == 0 {
		return status, nil
	}

	// Get oldest entry time
	oldestQuery := fmt.Sprintf("SELECT MIN(cache_timestamp) FROM %s", quotedTableName)
	row = ds.db.QueryRow(oldestQuery)
	if err := row.Scan(&status.OldestUnix); err != nil {
		return status, fmt.Errorf("failed to get oldest entry time: %w", err)
	}

	// Get approximate payload size
	sizeQuery := fmt.Sprintf("SELECT COALESCE(SUM(LENGTH(cache_value)), 0) FROM %s", quotedTableName)
	row = ds.db.QueryRow(sizeQuery)
	if err := row.Scan(&status.SizeBytes); err != nil {
		return status, fmt.Errorf("failed to get payload size: %w", err)
	}

	return status, nil
}
