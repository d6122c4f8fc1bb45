// Package contract provides interfaces and shared utilities for the afterglow CLI's internal architecture.
package contract

import (
	"time"

	"github.com/pulsegrid/afterglow/schema"
)

// StoreManager defines the interface for managing persistence stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetDatasetStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for the dataset cache.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Clear() error
	Close() error
}

// RunStore defines the interface for tracking fit runs and their posterior summaries.
type RunStore interface {
	// BeginRun creates a new fit run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the fit run with completion data
	EndRun(runID int64, endTime time.Time, result *schema.FitResult) error

	// RecordParams stores posterior summaries for the run's parameters
	RecordParams(runID int64, params []schema.ParamSummary) error

	// ListRuns returns the most recent fit runs, newest first
	ListRuns(limit int) ([]schema.FitRunRecord, error)

	// ListParams returns the parameter summaries recorded for a run
	ListParams(runID int64) ([]schema.RunParamRecord, error)

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStoreStatus, error)

	// Clear removes all recorded runs
	Clear() error

	// Close closes the underlying connection
	Close() error
}
