package outwriter

import (
	"fmt"
	"io"
	"slices"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/schema"
)

// PrintMetricsDefinitions outputs the definition of every sub-metric and headline score.
func PrintMetricsDefinitions(cfg *contract.Config) error {
	model := schema.NewMetricsRenderModel()
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, model)
		}, "Wrote JSON metrics")
	case schema.TextOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsText(w, model)
		}, "Wrote metrics")
	default:
		return unsupportedFormat("metrics", cfg.Output)
	}
}

func writeMetricsText(w io.Writer, model schema.MetricsRenderModel) error {
	if _, err := fmt.Fprintf(w, "%s\n%s\n\n", model.Title, model.Description); err != nil {
		return err
	}

	table := newTable(w, "Key", "Name", "Component", "Meaning")
	var data [][]string
	for _, m := range model.Metrics {
		data = append(data, []string{m.Key, m.Name, m.Component, m.Meaning})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "\nFormulas"); err != nil {
		return err
	}
	keys := make([]string, 0, len(model.Formulas))
	for k := range model.Formulas {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "  %s = %s\n", k, model.Formulas[k]); err != nil {
			return err
		}
	}
	return nil
}
