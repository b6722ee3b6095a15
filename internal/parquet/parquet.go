// Package parquet exports debtlens results to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/huangsam/debtlens/schema"
	"github.com/parquet-go/parquet-go"
)

// FileAnalysisRow is one file of a snapshot, flattened for columnar storage.
type FileAnalysisRow struct {
	Repo                 string  `parquet:"repo,snappy,dict"`
	Path                 string  `parquet:"path,snappy"`
	AILikelihood         float64 `parquet:"ai_likelihood,snappy"`
	TechnicalDebt        float64 `parquet:"technical_debt,snappy"`
	CognitiveDebt        float64 `parquet:"cognitive_debt,snappy"`
	PropagationScore     float64 `parquet:"propagation_score,snappy"`
	AIDebtContribution   int32   `parquet:"ai_debt_contribution,snappy"`
	LinesOfCode          int32   `parquet:"lines_of_code,snappy"`
	FunctionCount        int32   `parquet:"function_count,snappy"`
	CyclomaticComplexity int32   `parquet:"cyclomatic_complexity,snappy"`
	NestingDepth         int32   `parquet:"nesting_depth,snappy"`

	// Issues is the issue tag set joined with "; "
	Issues string `parquet:"issues,snappy"`

	SUS float64 `parquet:"sus,snappy"`
	TDD float64 `parquet:"tdd,snappy"`
	PRI float64 `parquet:"pri,snappy"`
	CRS float64 `parquet:"crs,snappy"`
	SCS float64 `parquet:"scs,snappy"`
	DDP float64 `parquet:"ddp,snappy"`
	MDS float64 `parquet:"mds,snappy"`
	CCD float64 `parquet:"ccd,snappy"`
	ES  float64 `parquet:"es,snappy"`
	AES float64 `parquet:"aes,snappy"`
	RDI float64 `parquet:"rdi,snappy"`
	CLI float64 `parquet:"cli,snappy"`
	IAS float64 `parquet:"ias,snappy"`
	AGS float64 `parquet:"ags,snappy"`
	RI  float64 `parquet:"ri,snappy"`
	CSC float64 `parquet:"csc,snappy"`
	DPS float64 `parquet:"dps,snappy"`
	DLI float64 `parquet:"dli,snappy"`
	DRF float64 `parquet:"drf,snappy"`
}

// CommitRow is one point of a history trajectory.
type CommitRow struct {
	Repo           string    `parquet:"repo,snappy,dict"`
	ShortHash      string    `parquet:"short_hash,snappy"`
	Summary        string    `parquet:"summary,snappy"`
	Author         string    `parquet:"author,snappy,dict"`
	Timestamp      time.Time `parquet:"timestamp,snappy"`
	TechDebt       float64   `parquet:"tech_debt,snappy"`
	CogDebt        float64   `parquet:"cog_debt,snappy"`
	AIContribution float64   `parquet:"ai_contribution,snappy"`
	FilesChanged   int32     `parquet:"files_changed,snappy"`
	Additions      int32     `parquet:"additions,snappy"`
	Deletions      int32     `parquet:"deletions,snappy"`
	IsSpike        bool      `parquet:"is_spike,snappy"`
	Degraded       bool      `parquet:"degraded,snappy"`
}

// RollupRow is one persisted rollup.
type RollupRow struct {
	ID               int64     `parquet:"id,snappy"`
	Actor            string    `parquet:"actor,snappy,dict"`
	Repo             string    `parquet:"repo,snappy,dict"`
	AvgAILikelihood  float64   `parquet:"avg_ai_likelihood,snappy"`
	AvgTechnicalDebt float64   `parquet:"avg_technical_debt,snappy"`
	AvgCognitiveDebt float64   `parquet:"avg_cognitive_debt,snappy"`
	FileCount        int32     `parquet:"file_count,snappy"`
	HighRiskCount    int32     `parquet:"high_risk_count,snappy"`
	TotalIssues      int32     `parquet:"total_issues,snappy"`
	CreatedAt        time.Time `parquet:"created_at,snappy"`
}

// ConvertFileAnalyses flattens the files of a snapshot report.
func ConvertFileAnalyses(report schema.SnapshotReport) []FileAnalysisRow {
	rows := make([]FileAnalysisRow, 0, len(report.Files))
	for _, f := range report.Files {
		m := f.Metrics
		rows = append(rows, FileAnalysisRow{
			Repo:                 report.Repo,
			Path:                 f.Path,
			AILikelihood:         f.AILikelihood,
			TechnicalDebt:        f.TechnicalDebt,
			CognitiveDebt:        f.CognitiveDebt,
			PropagationScore:     f.PropagationScore,
			AIDebtContribution:   int32(f.AIDebtContribution),
			LinesOfCode:          int32(f.LinesOfCode),
			FunctionCount:        int32(f.FunctionCount),
			CyclomaticComplexity: int32(f.CyclomaticComplexity),
			NestingDepth:         int32(f.NestingDepth),
			Issues:               strings.Join(f.Issues, "; "),
			SUS:                  m.SUS, TDD: m.TDD, PRI: m.PRI, CRS: m.CRS, SCS: m.SCS,
			DDP: m.DDP, MDS: m.MDS,
			CCD: m.CCD, ES: m.ES, AES: m.AES, RDI: m.RDI, CLI: m.CLI, IAS: m.IAS, AGS: m.AGS, RI: m.RI, CSC: m.CSC,
			DPS: m.DPS, DLI: m.DLI, DRF: m.DRF,
		})
	}
	return rows
}

// ConvertCommitRecords flattens the commits of a history report.
func ConvertCommitRecords(report schema.HistoryReport) []CommitRow {
	rows := make([]CommitRow, 0, len(report.Commits))
	for _, c := range report.Commits {
		rows = append(rows, CommitRow{
			Repo:           report.Repo,
			ShortHash:      c.ShortHash,
			Summary:        c.Summary,
			Author:         c.Author,
			Timestamp:      c.Timestamp,
			TechDebt:       c.TechDebt,
			CogDebt:        c.CogDebt,
			AIContribution: c.AIContribution,
			FilesChanged:   int32(c.FilesChanged),
			Additions:      int32(c.Additions),
			Deletions:      int32(c.Deletions),
			IsSpike:        c.IsSpike,
			Degraded:       c.Degraded,
		})
	}
	return rows
}

// ConvertRollupRecords converts stored rollups to Parquet rows.
func ConvertRollupRecords(records []schema.RollupRecord) []RollupRow {
	rows := make([]RollupRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, RollupRow{
			ID:               r.ID,
			Actor:            r.Actor,
			Repo:             r.Repo,
			AvgAILikelihood:  r.AvgAILikelihood,
			AvgTechnicalDebt: r.AvgTechnicalDebt,
			AvgCognitiveDebt: r.AvgCognitiveDebt,
			FileCount:        int32(r.FileCount),
			HighRiskCount:    int32(r.HighRiskCount),
			TotalIssues:      int32(r.TotalIssues),
			CreatedAt:        r.CreatedAt,
		})
	}
	return rows
}

// Write encodes rows to w. The schema is derived from the row struct tags.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile writes rows to a new Parquet file at outputPath.
func WriteFile[T any](outputPath string, rows []T) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Read decodes every row of a Parquet stream.
func Read[T any](r io.ReaderAt) ([]T, error) {
	return parquet.Read[T](r, sizeOf(r))
}

// sizeOf returns the length of r when it can be measured.
func sizeOf(r io.ReaderAt) int64 {
	type sizer interface{ Size() int64 }
	type stater interface{ Stat() (os.FileInfo, error) }
	switch v := r.(type) {
	case sizer:
		return v.Size()
	case stater:
		if info, err := v.Stat(); err == nil {
			return info.Size()
		}
	}
	return 0
}
