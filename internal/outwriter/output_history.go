package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/internal/parquet"
	"github.com/huangsam/debtlens/schema"
)

// historyColumnsWidth is the width of every commit column except Summary.
const historyColumnsWidth = 85

// PrintHistory outputs a history report, dispatching based on the output format configured.
func PrintHistory(report *schema.HistoryReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON history")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryCSV(w, report, fmtFloat)
		}, "Wrote CSV history")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertCommitRecords(*report))
		}, "Wrote Parquet history")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryTable(w, report, cfg, fmtFloat, duration)
		}, "Wrote history table")
	}
}

// writeHistoryCSV writes one row per commit, oldest first.
func writeHistoryCSV(w io.Writer, report *schema.HistoryReport, fmtFloat func(float64) string) error {
	header := []string{
		"index", "hash", "timestamp", "author", "summary", "tech_debt", "cog_debt", "ai_contribution",
		"files_changed", "additions", "deletions", "is_spike", "degraded",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, c := range report.Commits {
			rec := []string{
				strconv.Itoa(i),
				c.ShortHash,
				c.Timestamp.Format(contract.DateTimeFormat),
				c.Author,
				c.Summary,
				fmtFloat(c.TechDebt),
				fmtFloat(c.CogDebt),
				fmtFloat(c.AIContribution),
				strconv.Itoa(c.FilesChanged),
				strconv.Itoa(c.Additions),
				strconv.Itoa(c.Deletions),
				strconv.FormatBool(c.IsSpike),
				strconv.FormatBool(c.Degraded),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeHistoryTable writes the commit table, the developer leaderboard and the summary.
func writeHistoryTable(w io.Writer, report *schema.HistoryReport, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	red := paint(cfg, color.FgRed, color.Bold)
	faint := paint(cfg, color.Faint)
	summaryWidth := GetMaxTablePathWidth(cfg, historyColumnsWidth)

	table := newTable(w, "Commit", "Date", "Author", "Summary", "Tech", "Cog", "AI", "+/-", "Flags")
	var data [][]string
	for _, c := range report.Commits {
		flags := ""
		switch {
		case c.Degraded:
			flags = faint("degraded")
		case c.IsSpike:
			flags = red("spike ▲")
		}
		data = append(data, []string{
			c.ShortHash,
			c.Timestamp.Format(time.DateOnly),
			schema.AbbreviateName(c.Author),
			truncateText(c.Summary, summaryWidth),
			fmtFloat(c.TechDebt),
			fmtFloat(c.CogDebt),
			fmtFloat(c.AIContribution),
			fmt.Sprintf("+%d/-%d", c.Additions, c.Deletions),
			flags,
		})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}

	if len(report.Developers) > 0 {
		if _, err := fmt.Fprintln(w, "\nDeveloper impact"); err != nil {
			return err
		}
		devs := newTable(w, "Rank", "Developer", "Commits", "Tech", "Cog", "Total")
		var devData [][]string
		for i, d := range report.Developers {
			devData = append(devData, []string{
				strconv.Itoa(i + 1),
				d.Name,
				strconv.Itoa(d.CommitCount),
				fmtFloat(d.TechImpact),
				fmtFloat(d.CogImpact),
				fmtFloat(d.TotalImpact),
			})
		}
		if err := renderTable(devs, devData); err != nil {
			return err
		}
	}

	return writeTimelineSummary(w, report, cfg, fmtFloat, duration)
}

func writeTimelineSummary(w io.Writer, report *schema.HistoryReport, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	s := report.Summary
	bold := paint(cfg, color.Bold)
	p := s.Prediction

	lines := []string{
		"",
		bold(fmt.Sprintf("Repository %s over %d commits", report.Repo, len(report.Commits))),
		fmt.Sprintf("Trend: %s  Momentum: %s  Spikes: %d  Degraded: %d", trendText(s.Trend, cfg), s.Momentum, s.SpikeCount, s.DegradedCount),
		fmt.Sprintf("Projected technical debt: +5 %s  +10 %s", fmtFloat(p.TechPlus5), fmtFloat(p.TechPlus10)),
		fmt.Sprintf("Projected cognitive debt: +5 %s  +10 %s", fmtFloat(p.CogPlus5), fmtFloat(p.CogPlus10)),
		fmt.Sprintf("Analysis completed in %v. Cache backend: %s", duration.Round(time.Millisecond), cfg.CacheBackend),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// trendText colors a trend by whether it is bad news.
func trendText(trend schema.Trend, cfg *contract.Config) string {
	switch trend {
	case schema.IncreasingTrend:
		return paint(cfg, color.FgRed)(string(trend))
	case schema.ImprovingTrend:
		return paint(cfg, color.FgGreen)(string(trend))
	case schema.UnstableTrend:
		return paint(cfg, color.FgYellow)(string(trend))
	default:
		return string(trend)
	}
}

// truncateText cuts text to width runes with a trailing ellipsis.
func truncateText(text string, width int) string {
	if len([]rune(text)) <= width {
		return text
	}
	cut, _ := contract.TruncateText(text, max(width-3, 1))
	return cut + "..."
}
