package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and rollups.
	DatabaseBackend string

	// SourceKind represents where repository content is fetched from.
	SourceKind string

	// EdgeKind represents the relationship carried by a propagation edge.
	EdgeKind string

	// Trend represents the overall direction of a debt trajectory.
	Trend string

	// Momentum represents the short-window rate of debt change.
	Momentum string

	// Verdict represents the secondary opinion classification of a file.
	Verdict string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All source kinds supported.
const (
	AutoSource   SourceKind = "auto" // default
	LocalSource  SourceKind = "local"
	GitHubSource SourceKind = "github"
)

// All propagation edge kinds.
const (
	CloneEdge      EdgeKind = "clone"
	DependencyEdge EdgeKind = "dependency"
	PatternEdge    EdgeKind = "pattern"
	ImportEdge     EdgeKind = "import"
)

// All trend classes.
const (
	IncreasingTrend  Trend = "increasing"
	ImprovingTrend   Trend = "improving"
	UnstableTrend    Trend = "unstable"
	FluctuatingTrend Trend = "fluctuating"
)

// All momentum classes.
const (
	FastMomentum   Momentum = "fast"
	SlowMomentum   Momentum = "slow"
	StableMomentum Momentum = "stable"
)

// All secondary opinion verdicts.
const (
	AIGeneratedVerdict  Verdict = "ai-generated"
	HumanWrittenVerdict Verdict = "human-written"
	MixedVerdict        Verdict = "mixed"
)

// High-risk thresholds for the snapshot summary.
const (
	HighRiskAIThreshold   = 0.5
	HighRiskTechThreshold = 0.4
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidSourceKinds lists all valid source kinds.
var ValidSourceKinds = map[SourceKind]struct{}{
	AutoSource:   {},
	LocalSource:  {},
	GitHubSource: {},
}

// ValidVerdicts lists all valid secondary opinion verdicts.
var ValidVerdicts = map[Verdict]struct{}{
	AIGeneratedVerdict:  {},
	HumanWrittenVerdict: {},
	MixedVerdict:        {},
}
