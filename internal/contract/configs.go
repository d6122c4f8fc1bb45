package contract

import (
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"

	"github.com/pulsegrid/afterglow/schema"
)

// Default values for configuration.
const (
	DefaultWalkers   = 64
	DefaultSteps     = 500
	DefaultBurn      = 250
	DefaultThin      = 1
	DefaultPrecision = 4
	MaxWalkers       = 4096
	MaxSteps         = 100000
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for fitting and evaluation.
// This struct remains the "final, validated" config.
type Config struct {
	DataFile      string
	TransientName string
	TransientType schema.TransientType
	DataMode      schema.DataMode
	Bands         []string
	Redshift      float64 // NaN when not given

	Model      string
	PriorFile  string
	Likelihood schema.LikelihoodKind
	Unit       schema.OutputUnit
	EvalParams map[string]float64

	Walkers int
	Steps   int
	Burn    int
	Thin    int
	Seed    uint64
	Workers int

	PredictiveDraws  int
	PredictivePoints int

	TimeStart  float64
	TimeEnd    float64
	TimePoints int
	Noise      float64 // fractional noise for simulate

	Output      schema.OutputMode
	OutputFile  string
	SamplesFile string
	Precision   int
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext
}

// Clone returns a deep copy of the config so callers can adjust it per
// request without mutating the shared base config.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Bands != nil {
		clone.Bands = append([]string(nil), c.Bands...)
	}
	if c.EvalParams != nil {
		clone.EvalParams = make(map[string]float64, len(c.EvalParams))
		for k, v := range c.EvalParams {
			clone.EvalParams[k] = v
		}
	}
	return &clone
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	DataFileStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Name           string `mapstructure:"name"`
	Type           string `mapstructure:"type"`
	DataMode       string `mapstructure:"data-mode"`
	Bands          string `mapstructure:"bands"`
	Redshift       string `mapstructure:"redshift"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Precision      int    `mapstructure:"precision"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	Workers        int    `mapstructure:"workers"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunsBackend    string `mapstructure:"runs-backend"`
	RunsDBConnect  string `mapstructure:"runs-db-connect"`

	// --- Fields from fitCmd.Flags() ---
	Model       string `mapstructure:"model"`
	PriorFile   string `mapstructure:"prior-file"`
	Likelihood  string `mapstructure:"likelihood"`
	Walkers     int    `mapstructure:"walkers"`
	Steps       int    `mapstructure:"steps"`
	Burn        int    `mapstructure:"burn"`
	Thin        int    `mapstructure:"thin"`
	Seed        uint64 `mapstructure:"seed"`
	Draws       int    `mapstructure:"predictive-draws"`
	DrawPoints  int    `mapstructure:"predictive-points"`
	SamplesFile string `mapstructure:"samples-file"`

	// --- Fields from evaluateCmd/simulateCmd.Flags() ---
	Unit   string  `mapstructure:"unit"`
	Params string  `mapstructure:"params"`
	TStart float64 `mapstructure:"tstart"`
	TEnd   float64 `mapstructure:"tend"`
	Points int     `mapstructure:"points"`
	Noise  float64 `mapstructure:"noise"`
}

// ProcessProfilingConfig processes the profiling prefix into the profile config.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSamplerInputs(cfg, input); err != nil {
		return err
	}
	if err := processGridInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs processes and validates the data and output fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.DataFile = input.DataFileStr
	cfg.TransientName = input.Name
	cfg.Model = input.Model
	cfg.PriorFile = input.PriorFile
	cfg.OutputFile = input.OutputFile
	cfg.SamplesFile = input.SamplesFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- Transient type ---
	cfg.TransientType = schema.TransientType(strings.ToLower(input.Type))
	if cfg.TransientType == "" {
		cfg.TransientType = schema.GenericType
	}
	if _, ok := schema.ValidTransientTypes[cfg.TransientType]; !ok {
		return fmt.Errorf("invalid transient type '%s'", input.Type)
	}

	// --- Data mode ---
	cfg.DataMode = schema.DataMode(strings.ToLower(input.DataMode))
	if _, ok := schema.ValidDataModes[cfg.DataMode]; !ok {
		return fmt.Errorf("invalid data mode '%s'. must be one of %v", input.DataMode, schema.AllDataModes)
	}

	// --- Bands ---
	cfg.Bands = nil
	if input.Bands != "" {
		for _, b := range strings.Split(input.Bands, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Bands = append(cfg.Bands, b)
			}
		}
	}

	// --- Redshift ---
	cfg.Redshift = math.NaN()
	if input.Redshift != "" {
		z, err := strconv.ParseFloat(input.Redshift, 64)
		if err != nil {
			return fmt.Errorf("invalid --redshift value %q: %w", input.Redshift, err)
		}
		if z <= 0 {
			return fmt.Errorf("redshift must be positive (received %g)", z)
		}
		cfg.Redshift = z
	}

	// --- Likelihood ---
	cfg.Likelihood = schema.LikelihoodKind(strings.ToLower(input.Likelihood))
	if cfg.Likelihood == "" {
		cfg.Likelihood = schema.GaussianLikelihood
	}
	if _, ok := schema.ValidLikelihoods[cfg.Likelihood]; !ok {
		return fmt.Errorf("invalid likelihood '%s'", input.Likelihood)
	}

	// --- Output unit ---
	cfg.Unit = schema.OutputUnit(strings.ToLower(input.Unit))
	if cfg.Unit == "" {
		cfg.Unit = schema.LuminosityUnit
	}
	if _, ok := schema.ValidOutputUnits[cfg.Unit]; !ok {
		return fmt.Errorf("invalid unit '%s'. must be luminosity, flux, flux_density, magnitude", input.Unit)
	}

	// --- Evaluation parameters ---
	params, err := ParseParamList(input.Params)
	if err != nil {
		return err
	}
	cfg.EvalParams = params

	// --- Precision and output format ---
	if input.Precision < 1 || input.Precision > 8 {
		return fmt.Errorf("precision must be between 1 and 8 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}

	// --- Workers ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	return nil
}

// processSamplerInputs validates the MCMC settings.
func processSamplerInputs(cfg *Config, input *ConfigRawInput) error {
	if input.Walkers < 4 || input.Walkers > MaxWalkers {
		return fmt.Errorf("walkers must be between 4 and %d (received %d)", MaxWalkers, input.Walkers)
	}
	if input.Walkers%2 != 0 {
		return fmt.Errorf("walkers must be even for the parallel stretch move (received %d)", input.Walkers)
	}
	cfg.Walkers = input.Walkers

	if input.Steps <= 0 || input.Steps > MaxSteps {
		return fmt.Errorf("steps must be between 1 and %d (received %d)", MaxSteps, input.Steps)
	}
	cfg.Steps = input.Steps

	if input.Burn < 0 {
		return fmt.Errorf("burn must not be negative (received %d)", input.Burn)
	}
	cfg.Burn = input.Burn

	if input.Thin < 1 {
		return fmt.Errorf("thin must be at least 1 (received %d)", input.Thin)
	}
	cfg.Thin = input.Thin

	cfg.Seed = input.Seed

	if input.Draws < 0 {
		return fmt.Errorf("predictive-draws must not be negative (received %d)", input.Draws)
	}
	cfg.PredictiveDraws = input.Draws
	cfg.PredictivePoints = input.DrawPoints
	if cfg.PredictiveDraws > 0 && cfg.PredictivePoints < 2 {
		return fmt.Errorf("predictive-points must be at least 2 (received %d)", input.DrawPoints)
	}
	return nil
}

// processGridInputs validates the time grid for evaluate/simulate.
func processGridInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.TimeStart = input.TStart
	cfg.TimeEnd = input.TEnd
	cfg.TimePoints = input.Points
	cfg.Noise = input.Noise

	if cfg.TimePoints < 2 {
		return fmt.Errorf("points must be at least 2 (received %d)", input.Points)
	}
	if !(cfg.TimeEnd > cfg.TimeStart) {
		return fmt.Errorf("tend must be greater than tstart (received [%g, %g])", input.TStart, input.TEnd)
	}
	if cfg.Noise < 0 {
		return fmt.Errorf("noise must not be negative (received %g)", input.Noise)
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
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

// validateBackendConfigs validates cache and run-store backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return err
	}

	// The two stores must not share a SQLite file.
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		runsPath := cfg.RunsDBConnect
		if runsPath == "" {
			runsPath = GetRunsDBFilePath()
		}
		if cachePath == runsPath {
			return fmt.Errorf("cache and run storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// ParseParamList parses "name=value,name=value" into a parameter map.
func ParseParamList(s string) (map[string]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	out := map[string]float64{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, found := strings.Cut(part, "=")
		if !found {
			return nil, fmt.Errorf("invalid parameter %q, expected name=value", part)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for parameter %q: %w", name, err)
		}
		out[strings.TrimSpace(name)] = v
	}
	return out, nil
}
