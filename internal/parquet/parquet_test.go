package parquet

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/debtlens/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() schema.SnapshotReport {
	return schema.SnapshotReport{
		Repo: "acme/widgets",
		Files: []schema.FileAnalysis{
			{
				Path: "main.go", AILikelihood: 0.61, TechnicalDebt: 0.42, CognitiveDebt: 0.33,
				PropagationScore: 0.496, AIDebtContribution: 79, LinesOfCode: 120, FunctionCount: 4,
				CyclomaticComplexity: 9, NestingDepth: 3,
				Issues:  []string{"high complexity", "nested logic"},
				Metrics: schema.FileMetrics{SUS: 0.5, CLI: 0.4, DPS: 0.496},
			},
			{Path: "util.go", CyclomaticComplexity: 1},
		},
	}
}

func TestFileAnalysisRowSchema(t *testing.T) {
	s := parquet.SchemaOf(FileAnalysisRow{})
	for _, col := range []string{"repo", "path", "ai_likelihood", "technical_debt", "cognitive_debt", "issues", "sus", "drf"} {
		_, ok := s.Lookup(col)
		assert.True(t, ok, "column %s should exist", col)
	}
}

func TestConvertFileAnalyses(t *testing.T) {
	rows := ConvertFileAnalyses(sampleSnapshot())
	require.Len(t, rows, 2)
	assert.Equal(t, "acme/widgets", rows[0].Repo)
	assert.Equal(t, "high complexity; nested logic", rows[0].Issues)
	assert.Equal(t, int32(79), rows[0].AIDebtContribution)
	assert.Equal(t, 0.5, rows[0].SUS)
	assert.Equal(t, "", rows[1].Issues)
}

func TestWriteAndReadFileAnalyses(t *testing.T) {
	var buf bytes.Buffer
	rows := ConvertFileAnalyses(sampleSnapshot())
	require.NoError(t, Write(&buf, rows))

	got, err := Read[FileAnalysisRow](bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestWriteFileCommits(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	report := schema.HistoryReport{
		Repo: "acme/widgets",
		Commits: []schema.CommitRecord{
			{ShortHash: "0123456", Summary: "first", Author: "alice", Timestamp: ts, TechDebt: 0.1, CogDebt: 0.1, AIContribution: 0.05},
			{ShortHash: "789abcd", Summary: "second", Author: "bob", Timestamp: ts.Add(time.Hour), TechDebt: 0.28, IsSpike: true, Degraded: false, Additions: 101},
		},
	}
	out := filepath.Join(t.TempDir(), "history.parquet")
	require.NoError(t, WriteFile(out, ConvertCommitRecords(report)))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	got, err := Read[CommitRow](f)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "789abcd", got[1].ShortHash)
	assert.True(t, got[1].IsSpike)
	assert.Equal(t, int32(101), got[1].Additions)
	assert.WithinDuration(t, ts, got[0].Timestamp, time.Microsecond)
}

func TestWriteRollupsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ConvertRollupRecords(nil)))

	got, err := Read[RollupRow](bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestConvertRollupRecords(t *testing.T) {
	created := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := ConvertRollupRecords([]schema.RollupRecord{
		{ID: 7, Actor: "alice", Repo: "acme/widgets", AvgTechnicalDebt: 0.3, FileCount: 12, HighRiskCount: 2, TotalIssues: 30, CreatedAt: created},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, int64(7), rows[0].ID)
	assert.Equal(t, int32(12), rows[0].FileCount)
	assert.Equal(t, created, rows[0].CreatedAt)
}

func TestWriteFileInvalidPath(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "out.parquet"), []RollupRow{})
	assert.Error(t, err)
}
