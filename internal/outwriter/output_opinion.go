package outwriter

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/schema"
)

// PrintOpinion outputs a secondary opinion verdict.
func PrintOpinion(verdict schema.OpinionVerdict, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, verdict)
		}, "Wrote JSON opinion")
	case schema.TextOut:
		fmtFloat, _ := createFormatters(cfg.Precision)
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeOpinionText(w, verdict, cfg, fmtFloat)
		}, "Wrote opinion")
	default:
		return unsupportedFormat("opinion", cfg.Output)
	}
}

func writeOpinionText(w io.Writer, v schema.OpinionVerdict, cfg *contract.Config, fmtFloat func(float64) string) error {
	verdictColor := paint(cfg, color.FgYellow, color.Bold)
	switch v.Verdict {
	case schema.AIGeneratedVerdict:
		verdictColor = paint(cfg, color.FgRed, color.Bold)
	case schema.HumanWrittenVerdict:
		verdictColor = paint(cfg, color.FgGreen, color.Bold)
	}

	lines := []string{
		fmt.Sprintf("File: %s", v.Filename),
		fmt.Sprintf("Verdict: %s", verdictColor(string(v.Verdict))),
		fmt.Sprintf("AI probability: %s  Confidence: %s", fmtFloat(v.AIProbability), fmtFloat(v.Confidence)),
	}
	if len(v.Signals) > 0 {
		lines = append(lines, "Signals:")
		for _, s := range v.Signals {
			lines = append(lines, "  - "+s)
		}
	}
	if v.Explanation != "" {
		lines = append(lines, "", strings.TrimSpace(v.Explanation))
	}
	if v.Truncated {
		lines = append(lines, "", fmt.Sprintf("Note: content was truncated to %d characters before review", cfg.LLMCharBudget))
	}
	return writeLines(w, lines)
}
