package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/internal/parquet"
	"github.com/huangsam/debtlens/schema"
)

// snapshotColumnsWidth is the width of every snapshot column except Path.
const snapshotColumnsWidth = 70

// PrintSnapshot outputs a snapshot report, dispatching based on the output format configured.
func PrintSnapshot(report *schema.SnapshotReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSnapshotJSON(w, report)
		}, "Wrote JSON snapshot")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSnapshotCSV(w, report, fmtFloat)
		}, "Wrote CSV snapshot")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertFileAnalyses(*report))
		}, "Wrote Parquet snapshot")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSnapshotTable(w, report, cfg, fmtFloat, duration)
		}, "Wrote snapshot table")
	}
}

// writeSnapshotJSON writes the report with rank and label added to every file.
func writeSnapshotJSON(w io.Writer, report *schema.SnapshotReport) error {
	type jsonSnapshot struct {
		Repo    string                        `json:"repo"`
		Files   []schema.EnrichedFileAnalysis `json:"files"`
		Edges   []schema.PropagationEdge      `json:"edges"`
		Summary schema.SnapshotSummary        `json:"summary"`
	}
	return writeJSON(w, jsonSnapshot{
		Repo:    report.Repo,
		Files:   schema.EnrichFiles(report.Files),
		Edges:   report.Edges,
		Summary: report.Summary,
	})
}

// writeSnapshotCSV writes one row per file.
func writeSnapshotCSV(w io.Writer, report *schema.SnapshotReport, fmtFloat func(float64) string) error {
	header := []string{
		"rank", "path", "ai_likelihood", "technical_debt", "cognitive_debt", "propagation_score",
		"ai_debt_contribution", "label", "lines_of_code", "function_count", "cyclomatic_complexity",
		"nesting_depth", "issues",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, f := range schema.EnrichFiles(report.Files) {
			rec := []string{
				strconv.Itoa(f.Rank),
				f.Path,
				fmtFloat(f.AILikelihood),
				fmtFloat(f.TechnicalDebt),
				fmtFloat(f.CognitiveDebt),
				fmtFloat(f.PropagationScore),
				strconv.Itoa(f.AIDebtContribution),
				f.Label,
				strconv.Itoa(f.LinesOfCode),
				strconv.Itoa(f.FunctionCount),
				strconv.Itoa(f.CyclomaticComplexity),
				strconv.Itoa(f.NestingDepth),
				strings.Join(f.Issues, "|"),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeSnapshotTable writes the file table, the edge table and the summary block.
func writeSnapshotTable(w io.Writer, report *schema.SnapshotReport, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	pathWidth := GetMaxTablePathWidth(cfg, snapshotColumnsWidth)
	table := newTable(w, "Rank", "Path", "AI", "Tech", "Cog", "Prop", "AI Debt", "Label", "Issues")
	var data [][]string
	for i, f := range report.Files {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(f.Path, pathWidth),
			fmtFloat(f.AILikelihood),
			fmtFloat(f.TechnicalDebt),
			fmtFloat(f.CognitiveDebt),
			fmtFloat(f.PropagationScore),
			fmt.Sprintf("%d%%", f.AIDebtContribution),
			labelFor(f.CombinedDebt()/2, cfg),
			strconv.Itoa(len(f.Issues)),
		})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}

	if len(report.Edges) > 0 {
		if _, err := fmt.Fprintln(w, "\nPropagation edges"); err != nil {
			return err
		}
		edges := newTable(w, "Source", "Target", "Kind", "Weight")
		var edgeData [][]string
		for _, e := range report.Edges {
			edgeData = append(edgeData, []string{
				contract.TruncatePath(e.Source, pathWidth/2+5),
				contract.TruncatePath(e.Target, pathWidth/2+5),
				string(e.Kind),
				fmtFloat(e.Weight),
			})
		}
		if err := renderTable(edges, edgeData); err != nil {
			return err
		}
	}

	return writeSnapshotSummary(w, report, cfg, fmtFloat, duration)
}

func writeSnapshotSummary(w io.Writer, report *schema.SnapshotReport, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	s := report.Summary
	bold := paint(cfg, color.Bold)
	risk := paint(cfg, color.FgRed, color.Bold)

	lines := []string{
		"",
		bold(fmt.Sprintf("Repository %s", report.Repo)),
		fmt.Sprintf("Files: %d  Issues: %d  High risk: %s", s.FileCount, s.TotalIssues, risk(strconv.Itoa(s.HighRiskCount))),
		fmt.Sprintf("Mean AI likelihood: %s  Mean technical debt: %s  Mean cognitive debt: %s",
			fmtFloat(s.AvgAILikelihood), fmtFloat(s.AvgTechnicalDebt), fmtFloat(s.AvgCognitiveDebt)),
	}
	if len(s.TopFiles) > 0 {
		lines = append(lines, "Top files: "+strings.Join(s.TopFiles, ", "))
	}
	lines = append(lines, fmt.Sprintf("Analysis completed in %v with %d workers. Cache backend: %s",
		duration.Round(time.Millisecond), cfg.Workers, cfg.CacheBackend))

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
