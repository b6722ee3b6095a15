package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/internal/parquet"
	"github.com/huangsam/debtlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(output schema.OutputMode) *contract.Config {
	return &contract.Config{
		Output:        output,
		Precision:     2,
		Width:         120,
		UseColors:     false,
		Workers:       4,
		CacheBackend:  schema.NoneBackend,
		Actor:         "alice",
		LLMCharBudget: 100,
	}
}

func sampleSnapshot() *schema.SnapshotReport {
	return &schema.SnapshotReport{
		Repo: "acme/widgets",
		Files: []schema.FileAnalysis{
			{
				Path: "core/engine.go", AILikelihood: 0.71, TechnicalDebt: 0.62, CognitiveDebt: 0.55,
				PropagationScore: 0.4, AIDebtContribution: 44, LinesOfCode: 320, FunctionCount: 12,
				CyclomaticComplexity: 30, NestingDepth: 5, Issues: []string{"deep nesting", "long functions"},
			},
			{
				Path: "util/strings.go", AILikelihood: 0.2, TechnicalDebt: 0.1, CognitiveDebt: 0.15,
				LinesOfCode: 40, FunctionCount: 3,
			},
		},
		Edges: []schema.PropagationEdge{
			{Source: "core/engine.go", Target: "util/strings.go", Weight: 0.6, Kind: schema.ImportEdge},
		},
		Summary: schema.SnapshotSummary{
			FileCount: 2, AvgAILikelihood: 0.455, AvgTechnicalDebt: 0.36, AvgCognitiveDebt: 0.35,
			TotalIssues: 2, HighRiskCount: 1, TopFiles: []string{"core/engine.go", "util/strings.go"},
		},
	}
}

func sampleHistory() *schema.HistoryReport {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &schema.HistoryReport{
		Repo: "acme/widgets",
		Commits: []schema.CommitRecord{
			{ShortHash: "aaaaaaa", Summary: "initial import", Author: "Alice Smith", Timestamp: ts,
				TechDebt: 0.1, CogDebt: 0.05, AIContribution: 0.2, FilesChanged: 3, Additions: 120},
			{ShortHash: "bbbbbbb", Summary: "add engine", Author: "Bob Jones", Timestamp: ts.Add(time.Hour),
				TechDebt: 0.4, CogDebt: 0.3, AIContribution: 0.5, FilesChanged: 1, Additions: 80, Deletions: 4, IsSpike: true},
			{ShortHash: "ccccccc", Summary: "refactor", Author: "Alice Smith", Timestamp: ts.Add(2 * time.Hour),
				TechDebt: 0.4, CogDebt: 0.3, Degraded: true},
		},
		Developers: []schema.DeveloperImpact{
			{Name: "Bob Jones", TechImpact: 0.3, CogImpact: 0.25, TotalImpact: 0.55, CommitCount: 1},
			{Name: "Alice Smith", TechImpact: 0.1, CogImpact: 0.05, TotalImpact: 0.15, CommitCount: 2},
		},
		Summary: schema.TimelineSummary{
			Trend: schema.IncreasingTrend, Momentum: schema.FastMomentum, SpikeCount: 1, DegradedCount: 1,
			Prediction: schema.Prediction{TechPlus5: 1, TechPlus10: 1, CogPlus5: 0.9, CogPlus10: 1},
		},
	}
}

func readCSV(t *testing.T, data string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteSnapshotJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSnapshotJSON(&buf, sampleSnapshot()))

	var decoded struct {
		Repo  string `json:"repo"`
		Files []struct {
			Rank  int    `json:"rank"`
			Label string `json:"label"`
			Path  string `json:"path"`
		} `json:"files"`
		Summary schema.SnapshotSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "acme/widgets", decoded.Repo)
	require.Len(t, decoded.Files, 2)
	assert.Equal(t, 1, decoded.Files[0].Rank)
	assert.Equal(t, "core/engine.go", decoded.Files[0].Path)
	assert.Equal(t, schema.ModerateValue, decoded.Files[0].Label)
	assert.Equal(t, schema.LowValue, decoded.Files[1].Label)
	assert.Equal(t, 1, decoded.Summary.HighRiskCount)
}

func TestWriteSnapshotCSV(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, _ := createFormatters(2)
	require.NoError(t, writeSnapshotCSV(&buf, sampleSnapshot(), fmtFloat))

	records := readCSV(t, buf.String())
	require.Len(t, records, 3)
	assert.Equal(t, "rank", records[0][0])
	assert.Equal(t, "issues", records[0][len(records[0])-1])
	assert.Equal(t, []string{
		"1", "core/engine.go", "0.71", "0.62", "0.55", "0.40", "44", schema.ModerateValue,
		"320", "12", "30", "5", "deep nesting|long functions",
	}, records[1])
	assert.Equal(t, "", records[2][12])
}

func TestWriteSnapshotTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(schema.TextOut)
	fmtFloat, _ := createFormatters(cfg.Precision)
	require.NoError(t, writeSnapshotTable(&buf, sampleSnapshot(), cfg, fmtFloat, 1500*time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, "core/engine.go")
	assert.Contains(t, out, "44%")
	assert.Contains(t, out, "Propagation edges")
	assert.Contains(t, out, "import")
	assert.Contains(t, out, "Repository acme/widgets")
	assert.Contains(t, out, "Files: 2  Issues: 2  High risk: 1")
	assert.Contains(t, out, "Top files: core/engine.go, util/strings.go")
	assert.Contains(t, out, "Analysis completed in 1.5s with 4 workers")
	assert.NotContains(t, out, "\x1b[", "colors are disabled")
}

func TestWriteSnapshotTableWithoutEdges(t *testing.T) {
	var buf bytes.Buffer
	report := sampleSnapshot()
	report.Edges = nil
	cfg := testConfig(schema.TextOut)
	fmtFloat, _ := createFormatters(cfg.Precision)
	require.NoError(t, writeSnapshotTable(&buf, report, cfg, fmtFloat, time.Second))
	assert.NotContains(t, buf.String(), "Propagation edges")
}

func TestPrintSnapshotParquetFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "snapshot.parquet")
	cfg := testConfig(schema.ParquetOut)
	cfg.OutputFile = out
	require.NoError(t, PrintSnapshot(sampleSnapshot(), cfg, time.Second))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := parquet.Read[parquet.FileAnalysisRow](f)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "core/engine.go", rows[0].Path)
}

func TestWriteHistoryCSV(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, _ := createFormatters(2)
	require.NoError(t, writeHistoryCSV(&buf, sampleHistory(), fmtFloat))

	records := readCSV(t, buf.String())
	require.Len(t, records, 4)
	assert.Equal(t, "degraded", records[0][12])
	assert.Equal(t, "0", records[1][0])
	assert.Equal(t, "aaaaaaa", records[1][1])
	assert.Equal(t, "2025-03-01T10:00:00Z", records[1][2])
	assert.Equal(t, "true", records[2][11])
	assert.Equal(t, "true", records[3][12])
}

func TestWriteHistoryTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(schema.TextOut)
	fmtFloat, _ := createFormatters(cfg.Precision)
	require.NoError(t, writeHistoryTable(&buf, sampleHistory(), cfg, fmtFloat, time.Second))

	out := buf.String()
	assert.Contains(t, out, "bbbbbbb")
	assert.Contains(t, out, "2025-03-01")
	assert.Contains(t, out, "spike ▲")
	assert.Contains(t, out, "degraded")
	assert.Contains(t, out, "+80/-4")
	assert.Contains(t, out, "Developer impact")
	assert.Contains(t, out, "Bob Jones")
	assert.Contains(t, out, "Repository acme/widgets over 3 commits")
	assert.Contains(t, out, "Trend: increasing  Momentum: fast  Spikes: 1  Degraded: 1")
	assert.Contains(t, out, "Projected technical debt: +5 1.00  +10 1.00")
}

func TestPrintHistoryJSONFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "history.json")
	cfg := testConfig(schema.JSONOut)
	cfg.OutputFile = out
	require.NoError(t, PrintHistory(sampleHistory(), cfg, time.Second))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var decoded schema.HistoryReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, sampleHistory().Commits, decoded.Commits)
	assert.Equal(t, schema.IncreasingTrend, decoded.Summary.Trend)
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"fits", "short", 10, "short"},
		{"exact", "exactly10!", 10, "exactly10!"},
		{"cut", "this message is long", 10, "this me..."},
		{"multibyte", "héllo wörld", 8, "héllo..."},
		{"tiny width", "abcdef", 2, "a..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateText(tt.text, tt.width))
		})
	}
}

func TestGetMaxTablePathWidth(t *testing.T) {
	tests := []struct {
		width, other, want int
	}{
		{120, 70, 30},
		{80, 70, 15},
		{300, 70, 70},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetMaxTablePathWidth(&contract.Config{Width: tt.width}, tt.other))
	}
}

func TestUnsupportedFormats(t *testing.T) {
	cfg := testConfig(schema.CSVOut)
	assert.ErrorIs(t, PrintOpinion(schema.OpinionVerdict{}, cfg), contract.ErrInvalidInput)
	assert.ErrorIs(t, PrintMetricsDefinitions(cfg), contract.ErrInvalidInput)
	assert.ErrorIs(t, PrintCacheStatus(schema.CacheStatus{}, cfg), contract.ErrInvalidInput)
	assert.ErrorIs(t, PrintRollupStatus(schema.RollupStatus{}, cfg), contract.ErrInvalidInput)
}
