package schema

import "time"

// CommitInfo identifies one commit in a repository history.
type CommitInfo struct {
	Hash      string    `json:"hash"`
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// FilePatch is the unified diff of one changed file within a commit.
type FilePatch struct {
	Path  string `json:"path"`
	Patch string `json:"patch"`
}

// CommitDetail is a commit with its changed-file patches and line stats.
// Degraded is set when the detail fetch failed and only CommitInfo is known.
type CommitDetail struct {
	CommitInfo
	Files     []FilePatch `json:"files"`
	Additions int         `json:"additions"`
	Deletions int         `json:"deletions"`
	Degraded  bool        `json:"degraded"`
}

// DebtDelta is the per-commit increment produced by patch scoring.
type DebtDelta struct {
	Tech float64 `json:"tech"`
	Cog  float64 `json:"cog"`
	AI   float64 `json:"ai"`
}

// CommitRecord is one point of the accumulated debt trajectory.
type CommitRecord struct {
	ShortHash      string    `json:"short_hash"`
	Summary        string    `json:"summary"`
	Author         string    `json:"author"`
	Timestamp      time.Time `json:"timestamp"`
	TechDebt       float64   `json:"tech_debt"`
	CogDebt        float64   `json:"cog_debt"`
	AIContribution float64   `json:"ai_contribution"`
	FilesChanged   int       `json:"files_changed"`
	Additions      int       `json:"additions"`
	Deletions      int       `json:"deletions"`
	IsSpike        bool      `json:"is_spike"`
	Degraded       bool      `json:"degraded"`
}

// DeveloperImpact aggregates debt deltas attributed to one author.
type DeveloperImpact struct {
	Name        string  `json:"name"`
	TechImpact  float64 `json:"tech_impact"`
	CogImpact   float64 `json:"cog_impact"`
	TotalImpact float64 `json:"total_impact"`
	CommitCount int     `json:"commit_count"`
}

// Prediction is a linear projection of debt a number of commits ahead.
type Prediction struct {
	TechPlus5  float64 `json:"tech_plus_5"`
	TechPlus10 float64 `json:"tech_plus_10"`
	CogPlus5   float64 `json:"cog_plus_5"`
	CogPlus10  float64 `json:"cog_plus_10"`
}

// TimelineSummary classifies the overall shape of a debt trajectory.
type TimelineSummary struct {
	Trend         Trend      `json:"trend"`
	Momentum      Momentum   `json:"momentum"`
	SpikeCount    int        `json:"spike_count"`
	DegradedCount int        `json:"degraded_count"`
	Prediction    Prediction `json:"prediction"`
}

// HistoryReport is the response of the analyze history operation.
type HistoryReport struct {
	Repo       string            `json:"repo"`
	Commits    []CommitRecord    `json:"commits"`
	Developers []DeveloperImpact `json:"developers"`
	Summary    TimelineSummary   `json:"summary"`
}
