package heuristic

import (
	"testing"

	"github.com/huangsam/debtlens/schema"
)

// FuzzAnalyzeFile checks that every score stays bounded for arbitrary text.
func FuzzAnalyzeFile(f *testing.F) {
	f.Add("")
	f.Add(sampleService)
	f.Add(uniformGetters)
	f.Add("}}}{{{")
	f.Add("// get\n// set\n// return\n")
	f.Add("\xff\xfe invalid utf8 {")

	f.Fuzz(func(t *testing.T, text string) {
		corpus := NewCorpus([]schema.FileRecord{{Path: "a", Content: text}, {Path: "b", Content: sampleService}})
		assertBounded(t, AnalyzeFile(schema.FileRecord{Path: "a", Content: text}, corpus))
	})
}

// FuzzTieredRules checks the strict tier boundaries for arbitrary values.
func FuzzTieredRules(f *testing.F) {
	f.Add(0.0)
	f.Add(0.5)
	f.Add(15.0)
	f.Add(-3.0)

	rule := Tiered(func(v float64) float64 { return v },
		Tier{Above: 10, Weight: 0.3, Tag: "strong"},
		Tier{Above: 5, Weight: 0.1, Tag: "weak"})

	f.Fuzz(func(t *testing.T, v float64) {
		finding, ok := rule(v)
		switch {
		case v > 10:
			if !ok || finding.Tag != "strong" {
				t.Fatalf("value %v should hit strong tier, got %+v", v, finding)
			}
		case v > 5:
			if !ok || finding.Tag != "weak" {
				t.Fatalf("value %v should hit weak tier, got %+v", v, finding)
			}
		default:
			if ok {
				t.Fatalf("value %v should not fire, got %+v", v, finding)
			}
		}
	})
}
