// Package schema has configs, models and global variables for all parts of debtlens.
package schema

// FileRecord is a single code file fetched for analysis.
// Content is used once during scoring and is not retained in results.
type FileRecord struct {
	Path    string // Path relative to the repository root
	Content string // Raw file text
}

// FileMetrics is the bundle of bounded sub-scores computed for one file.
// Every field lies in [0,1].
type FileMetrics struct {
	// Pattern Detector
	SUS float64 `json:"sus"` // structural uniformity
	TDD float64 `json:"tdd"` // token distribution divergence
	PRI float64 `json:"pri"` // pattern repetition index
	CRS float64 `json:"crs"` // comment redundancy score
	SCS float64 `json:"scs"` // style consistency score
	GID float64 `json:"gid"` // generic identifier density proxy
	LLE float64 `json:"lle"` // line-length entropy proxy

	// Technical Debt Estimator
	DDP float64 `json:"ddp"` // defect density proxy
	MDS float64 `json:"mds"` // modularity degradation score

	// Cognitive Debt Estimator
	CCD float64 `json:"ccd"` // control-flow density
	ES  float64 `json:"es"`  // explainability
	AES float64 `json:"aes"` // line-length entropy
	RDI float64 `json:"rdi"` // comment ratio step
	CLI float64 `json:"cli"` // cognitive load index
	IAS float64 `json:"ias"` // identifier ambiguity
	AGS float64 `json:"ags"` // abstraction gap
	RI  float64 `json:"ri"`  // readability index
	CSC float64 `json:"csc"` // context switching cost

	// Derived propagation scores
	DPS float64 `json:"dps"` // debt propagation score
	DLI float64 `json:"dli"` // debt locality index
	DRF float64 `json:"drf"` // debt risk factor
}

// FileAnalysis is the full result for a single file in a snapshot.
type FileAnalysis struct {
	Path                 string      `json:"path"`
	AILikelihood         float64     `json:"ai_likelihood"`
	TechnicalDebt        float64     `json:"technical_debt"`
	CognitiveDebt        float64     `json:"cognitive_debt"`
	PropagationScore     float64     `json:"propagation_score"`
	Issues               []string    `json:"issues"`
	Metrics              FileMetrics `json:"metrics"`
	LinesOfCode          int         `json:"lines_of_code"`
	FunctionCount        int         `json:"function_count"`
	CyclomaticComplexity int         `json:"cyclomatic_complexity"`
	NestingDepth         int         `json:"nesting_depth"`
	AIDebtContribution   int         `json:"ai_debt_contribution"`
}

// CombinedDebt is the technical plus cognitive debt used for ranking.
func (f FileAnalysis) CombinedDebt() float64 {
	return f.TechnicalDebt + f.CognitiveDebt
}

// IsHighRisk reports whether the file is likely AI-originated and structurally indebted.
func (f FileAnalysis) IsHighRisk() bool {
	return f.AILikelihood > HighRiskAIThreshold && f.TechnicalDebt > HighRiskTechThreshold
}

// PropagationEdge links two files by a debt-spreading relationship.
type PropagationEdge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Weight float64  `json:"weight"`
	Kind   EdgeKind `json:"kind"`
}

// SnapshotSummary aggregates a snapshot at the repository level.
type SnapshotSummary struct {
	FileCount        int      `json:"file_count"`
	AvgAILikelihood  float64  `json:"avg_ai_likelihood"`
	AvgTechnicalDebt float64  `json:"avg_technical_debt"`
	AvgCognitiveDebt float64  `json:"avg_cognitive_debt"`
	TotalIssues      int      `json:"total_issues"`
	HighRiskCount    int      `json:"high_risk_count"`
	TopFiles         []string `json:"top_files"`
}

// SnapshotReport is the response of the analyze snapshot operation.
type SnapshotReport struct {
	Repo    string            `json:"repo"`
	Files   []FileAnalysis    `json:"files"`
	Edges   []PropagationEdge `json:"edges"`
	Summary SnapshotSummary   `json:"summary"`
}
