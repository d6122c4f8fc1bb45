package schema

// Custom string types for type safety.
type (
	// DataMode represents the kind of observational data held by a transient.
	DataMode string

	// OutputMode represents the format of the output.
	OutputMode string

	// OutputUnit represents the physical unit of a model evaluation.
	OutputUnit string

	// LikelihoodKind represents the likelihood used for fitting.
	LikelihoodKind string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string

	// TransientType represents the astrophysical class of a transient.
	TransientType string
)

// All data modes supported.
const (
	LuminosityMode  DataMode = "luminosity"
	FluxMode        DataMode = "flux"
	FluxDensityMode DataMode = "flux_density"
	MagnitudeMode   DataMode = "magnitude"
	CountsMode      DataMode = "counts"
	TTEMode         DataMode = "ttes"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All output units supported by model evaluation.
const (
	LuminosityUnit  OutputUnit = "luminosity"   // erg/s (bolometric)
	FluxUnit        OutputUnit = "flux"         // erg/s/cm^2 (integrated)
	FluxDensityUnit OutputUnit = "flux_density" // mJy at a band frequency
	MagnitudeUnit   OutputUnit = "magnitude"    // AB magnitude at a band frequency
)

// All likelihood kinds supported.
const (
	GaussianLikelihood   LikelihoodKind = "gaussian" // default
	QuadratureLikelihood LikelihoodKind = "gaussian_quadrature"
	UpperLimitLikelihood LikelihoodKind = "gaussian_upper_limits"
	StudentTLikelihood   LikelihoodKind = "student_t"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All transient types supported.
const (
	SupernovaType TransientType = "supernova"
	KilonovaType  TransientType = "kilonova"
	AfterglowType TransientType = "afterglow"
	TDEType       TransientType = "tde"
	MagnetarType  TransientType = "magnetar"
	GenericType   TransientType = "generic"
)

// AllDataModes returns a list of all supported data modes.
var AllDataModes = []DataMode{
	LuminosityMode, FluxMode, FluxDensityMode, MagnitudeMode, CountsMode, TTEMode,
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDataModes lists all valid data modes.
var ValidDataModes = map[DataMode]struct{}{
	LuminosityMode:  {},
	FluxMode:        {},
	FluxDensityMode: {},
	MagnitudeMode:   {},
	CountsMode:      {},
	TTEMode:         {},
}

// ValidOutputUnits lists all valid output units.
var ValidOutputUnits = map[OutputUnit]struct{}{
	LuminosityUnit:  {},
	FluxUnit:        {},
	FluxDensityUnit: {},
	MagnitudeUnit:   {},
}

// ValidLikelihoods lists all valid likelihood kinds.
var ValidLikelihoods = map[LikelihoodKind]struct{}{
	GaussianLikelihood:   {},
	QuadratureLikelihood: {},
	UpperLimitLikelihood: {},
	StudentTLikelihood:   {},
}

// ValidTransientTypes lists all valid transient classes.
var ValidTransientTypes = map[TransientType]struct{}{
	SupernovaType: {},
	KilonovaType:  {},
	AfterglowType: {},
	TDEType:       {},
	MagnetarType:  {},
	GenericType:   {},
}

// ValidDatabaseBackends lists all valid persistence backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
