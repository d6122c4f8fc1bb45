// Package schema has configs, models and shared types for all parts of afterglow.
package schema

import "time"

// ParamSummary holds the marginal posterior summary for a single model parameter.
type ParamSummary struct {
	Name       string  // Parameter name as declared by the model
	Median     float64 // 50th percentile of the posterior samples
	Lower      float64 // 16th percentile (lower edge of the 68% credible interval)
	Upper      float64 // 84th percentile (upper edge of the 68% credible interval)
	MaxLike    float64 // Value at the maximum-likelihood sample
	PriorLower float64 // Lower bound of the prior
	PriorUpper float64 // Upper bound of the prior
}

// FitResult represents the outcome of one Bayesian fit of a model to a transient.
type FitResult struct {
	Transient      string         // Name of the transient that was fitted
	Model          string         // Model name from the registry
	Likelihood     LikelihoodKind // Likelihood used for the fit
	DataMode       DataMode       // Data mode the fit ran against
	Points         int            // Number of data points used
	Walkers        int            // Ensemble walkers
	Steps          int            // Steps per walker (after burn-in)
	Burn           int            // Burn-in steps discarded per walker
	Thin           int            // Thinning stride applied to the chain
	Seed           uint64         // RNG seed, for reproducibility
	Acceptance     float64        // Mean acceptance fraction across walkers
	MaxLogLike     float64        // Highest log-likelihood seen in the chain
	Params         []ParamSummary // Per-parameter posterior summaries, in model order
	Samples        [][]float64    // Flattened posterior samples [draw][param]
	StartedAt      time.Time      // Wall-clock start of sampling
	Duration       time.Duration  // Total sampling time
	PredictiveTime []float64      // Dense time grid for posterior-predictive draws (optional)
	Predictive     [][]float64    // Posterior-predictive curves [draw][time] (optional)
}

// EvalResult represents one model evaluation over a time grid.
type EvalResult struct {
	Model  string             // Model name from the registry
	Unit   OutputUnit         // Physical unit of Values
	Params map[string]float64 // Parameter values used
	Time   []float64          // Time grid in days
	Values []float64          // Model output, same length as Time
}

// CacheStatus provides information about the dataset cache store.
type CacheStatus struct {
	Backend    DatabaseBackend // Backend in use
	Location   string          // File path or connection target
	Entries    int             // Number of cached datasets
	SizeBytes  int64           // Approximate payload size
	OldestUnix int64           // Timestamp of the oldest entry (0 if empty)
}

// RunStoreStatus provides information about the fit-run store.
type RunStoreStatus struct {
	Backend    DatabaseBackend // Backend in use
	Location   string          // File path or connection target
	TotalRuns  int             // Number of recorded fit runs
	TableSizes map[string]int  // Row counts keyed by table name
}

// FitRunRecord mirrors a row of the afterglow_fit_runs table.
type FitRunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	Transient     string
	Model         string
	Likelihood    string
	MaxLogLike    *float64
	Acceptance    *float64
	ConfigParams  *string
}

// RunParamRecord mirrors a row of the afterglow_run_params table.
type RunParamRecord struct {
	RunID   int64
	Name    string
	Median  float64
	Lower   float64
	Upper   float64
	MaxLike float64
}
