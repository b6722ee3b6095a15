package schema

import "time"

// RollupRecord is the persisted repository-level outcome of one snapshot.
// Rows are owned by Actor and never visible to other actors.
type RollupRecord struct {
	ID               int64     `json:"id" parquet:"id"`
	Actor            string    `json:"actor" parquet:"actor"`
	Repo             string    `json:"repo" parquet:"repo"`
	AvgAILikelihood  float64   `json:"avg_ai_likelihood" parquet:"avg_ai_likelihood"`
	AvgTechnicalDebt float64   `json:"avg_technical_debt" parquet:"avg_technical_debt"`
	AvgCognitiveDebt float64   `json:"avg_cognitive_debt" parquet:"avg_cognitive_debt"`
	FileCount        int       `json:"file_count" parquet:"file_count"`
	HighRiskCount    int       `json:"high_risk_count" parquet:"high_risk_count"`
	TotalIssues      int       `json:"total_issues" parquet:"total_issues"`
	CreatedAt        time.Time `json:"created_at" parquet:"created_at,timestamp"`
}

// NewRollupRecord builds a rollup from a snapshot summary.
func NewRollupRecord(actor, repo string, summary SnapshotSummary, createdAt time.Time) RollupRecord {
	return RollupRecord{
		Actor:            actor,
		Repo:             repo,
		AvgAILikelihood:  summary.AvgAILikelihood,
		AvgTechnicalDebt: summary.AvgTechnicalDebt,
		AvgCognitiveDebt: summary.AvgCognitiveDebt,
		FileCount:        summary.FileCount,
		HighRiskCount:    summary.HighRiskCount,
		TotalIssues:      summary.TotalIssues,
		CreatedAt:        createdAt,
	}
}
