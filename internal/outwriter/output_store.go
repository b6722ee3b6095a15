package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/internal/parquet"
	"github.com/huangsam/debtlens/schema"
)

// PrintRollups outputs stored rollups, dispatching based on the output format configured.
func PrintRollups(records []schema.RollupRecord, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, records)
		}, "Wrote JSON rollups")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRollupsCSV(w, records, fmtFloat)
		}, "Wrote CSV rollups")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertRollupRecords(records))
		}, "Wrote Parquet rollups")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRollupsTable(w, records, cfg, fmtFloat)
		}, "Wrote rollups table")
	}
}

func writeRollupsCSV(w io.Writer, records []schema.RollupRecord, fmtFloat func(float64) string) error {
	header := []string{
		"id", "actor", "repo", "avg_ai_likelihood", "avg_technical_debt", "avg_cognitive_debt",
		"file_count", "high_risk_count", "total_issues", "created_at",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range records {
			rec := []string{
				strconv.FormatInt(r.ID, 10),
				r.Actor,
				r.Repo,
				fmtFloat(r.AvgAILikelihood),
				fmtFloat(r.AvgTechnicalDebt),
				fmtFloat(r.AvgCognitiveDebt),
				strconv.Itoa(r.FileCount),
				strconv.Itoa(r.HighRiskCount),
				strconv.Itoa(r.TotalIssues),
				r.CreatedAt.Format(contract.DateTimeFormat),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeRollupsTable(w io.Writer, records []schema.RollupRecord, cfg *contract.Config, fmtFloat func(float64) string) error {
	if len(records) == 0 {
		_, err := fmt.Fprintf(w, "No rollups stored for %s\n", cfg.Actor)
		return err
	}
	table := newTable(w, "ID", "Repo", "Files", "AI", "Tech", "Cog", "High Risk", "Issues", "Created")
	var data [][]string
	for _, r := range records {
		data = append(data, []string{
			strconv.FormatInt(r.ID, 10),
			contract.TruncatePath(r.Repo, GetMaxTablePathWidth(cfg, 80)),
			strconv.Itoa(r.FileCount),
			fmtFloat(r.AvgAILikelihood),
			fmtFloat(r.AvgTechnicalDebt),
			fmtFloat(r.AvgCognitiveDebt),
			strconv.Itoa(r.HighRiskCount),
			strconv.Itoa(r.TotalIssues),
			r.CreatedAt.Local().Format(contract.DateTimeFormat),
		})
	}
	return renderTable(table, data)
}

// PrintCacheStatus outputs the result cache status.
func PrintCacheStatus(status schema.CacheStatus, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON cache status")
	}
	if cfg.Output != schema.TextOut {
		return unsupportedFormat("cache status", cfg.Output)
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCacheStatusText(w, status)
	}, "Wrote cache status")
}

func writeCacheStatusText(w io.Writer, status schema.CacheStatus) error {
	lines := []string{
		fmt.Sprintf("Cache Backend: %s", status.Backend),
		fmt.Sprintf("Connected: %t", status.Connected),
	}
	if status.Connected {
		lines = append(lines, fmt.Sprintf("Total Entries: %d", status.TotalEntries))
		if status.TotalEntries > 0 {
			lines = append(lines,
				fmt.Sprintf("Last Entry: %s", status.LastEntryTime.Format(contract.DateTimeFormat)),
				fmt.Sprintf("Oldest Entry: %s", status.OldestEntryTime.Format(contract.DateTimeFormat)),
			)
		}
		lines = append(lines, fmt.Sprintf("Table Size: %d bytes", status.TableSizeBytes))
	}
	return writeLines(w, lines)
}

// PrintRollupStatus outputs the rollup store status.
func PrintRollupStatus(status schema.RollupStatus, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON rollup status")
	}
	if cfg.Output != schema.TextOut {
		return unsupportedFormat("rollup status", cfg.Output)
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeRollupStatusText(w, status)
	}, "Wrote rollup status")
}

func writeRollupStatusText(w io.Writer, status schema.RollupStatus) error {
	lines := []string{
		fmt.Sprintf("Rollup Backend: %s", status.Backend),
		fmt.Sprintf("Connected: %t", status.Connected),
	}
	if status.Connected {
		lines = append(lines,
			fmt.Sprintf("Total Rollups: %d", status.TotalRollups),
			fmt.Sprintf("Total Actors: %d", status.TotalActors),
		)
		if status.TotalRollups > 0 {
			lines = append(lines,
				fmt.Sprintf("Last Rollup: %s", status.LastRollupTime.Local().Format(contract.DateTimeFormat)),
				fmt.Sprintf("Oldest Rollup: %s", status.OldestRollup.Local().Format(contract.DateTimeFormat)),
			)
		}
		if status.TableSizeBytes > 0 {
			lines = append(lines, fmt.Sprintf("Database Size: %d bytes", status.TableSizeBytes))
		}
	}
	return writeLines(w, lines)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
