// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteSnapshot prints a snapshot report using the configured output format.
func (ow *OutWriter) WriteSnapshot(report *schema.SnapshotReport, cfg *contract.Config, duration time.Duration) error {
	return PrintSnapshot(report, cfg, duration)
}

// WriteHistory prints a history report using the configured output format.
func (ow *OutWriter) WriteHistory(report *schema.HistoryReport, cfg *contract.Config, duration time.Duration) error {
	return PrintHistory(report, cfg, duration)
}

// WriteRollups prints stored rollups using the configured output format.
func (ow *OutWriter) WriteRollups(records []schema.RollupRecord, cfg *contract.Config) error {
	return PrintRollups(records, cfg)
}

// WriteOpinion prints a secondary opinion verdict using the configured output format.
func (ow *OutWriter) WriteOpinion(verdict schema.OpinionVerdict, cfg *contract.Config) error {
	return PrintOpinion(verdict, cfg)
}

// WriteCacheStatus prints result cache status using the configured output format.
func (ow *OutWriter) WriteCacheStatus(status schema.CacheStatus, cfg *contract.Config) error {
	return PrintCacheStatus(status, cfg)
}

// WriteRollupStatus prints rollup store status using the configured output format.
func (ow *OutWriter) WriteRollupStatus(status schema.RollupStatus, cfg *contract.Config) error {
	return PrintRollupStatus(status, cfg)
}

// WriteMetrics prints metric definitions using the configured output format.
func (ow *OutWriter) WriteMetrics(cfg *contract.Config) error {
	return PrintMetricsDefinitions(cfg)
}

// GetMaxTablePathWidth calculates the maximum width for file paths in table output
// based on terminal width and the width taken by the other columns.
func GetMaxTablePathWidth(cfg *contract.Config, otherColumns int) int {
	termWidth := cfg.Width
	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for table borders, separators, and padding
	available := termWidth - otherColumns - 20
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}

// unsupportedFormat reports an output mode a command cannot render.
func unsupportedFormat(what string, mode schema.OutputMode) error {
	return fmt.Errorf("%w: %s output is not supported for %s", contract.ErrInvalidInput, mode, what)
}
