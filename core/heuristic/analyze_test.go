package heuristic

import (
	"strings"
	"testing"

	"github.com/huangsam/debtlens/schema"
	"github.com/stretchr/testify/assert"
)

const sampleService = `import { db } from "./db";

// This function will fetch the data of the user
export async function fetchUser(id) {
  const data = await db.get(id);
  if (data && data.active) {
    for (const item of data.items) {
      if (item.valid || item.pending) {
        console.log(item);
      }
    }
  }
  return data;
}
`

func TestAnalyzeFile(t *testing.T) {
	res := AnalyzeFile(schema.FileRecord{Path: "svc/user.js", Content: sampleService}, nil)

	assert.Equal(t, "svc/user.js", res.Path)
	assert.Equal(t, res.Metrics.DPS, res.PropagationScore)
	assert.Equal(t, 1, res.FunctionCount)
	assert.Equal(t, 4, res.NestingDepth)
	assert.Equal(t, 13, res.LinesOfCode)
	assert.Equal(t, 6, res.CyclomaticComplexity) // if, &&, for, if, || plus one
	assert.Contains(t, res.Issues, "assistant-style phrasing")

	seen := make(map[string]bool)
	for _, tag := range res.Issues {
		assert.False(t, seen[tag], "duplicate tag %q", tag)
		seen[tag] = true
	}
}

func TestAnalyzeFileBounds(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		sampleService,
		strings.Repeat(sampleService, 20),
		strings.Repeat("}", 500),
		strings.Repeat("{", 500),
		strings.Repeat("// comment\n", 100),
		uniformGetters,
	}
	for _, text := range inputs {
		assertBounded(t, AnalyzeFile(schema.FileRecord{Path: "f", Content: text}, nil))
	}
}

func TestMergeTags(t *testing.T) {
	got := MergeTags([]string{"a", "b"}, []string{"b", "c"}, nil, []string{"", "a"})
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func assertBounded(t *testing.T, res schema.FileAnalysis) {
	t.Helper()
	m := res.Metrics
	for name, v := range map[string]float64{
		"ai": res.AILikelihood, "tech": res.TechnicalDebt, "cog": res.CognitiveDebt, "prop": res.PropagationScore,
		"sus": m.SUS, "tdd": m.TDD, "pri": m.PRI, "crs": m.CRS, "scs": m.SCS, "gid": m.GID, "lle": m.LLE,
		"ddp": m.DDP, "mds": m.MDS, "ccd": m.CCD, "es": m.ES, "aes": m.AES, "rdi": m.RDI, "cli": m.CLI,
		"ias": m.IAS, "ags": m.AGS, "ri": m.RI, "csc": m.CSC, "dps": m.DPS, "dli": m.DLI, "drf": m.DRF,
	} {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 1.0, name)
	}
	assert.GreaterOrEqual(t, res.AIDebtContribution, 0)
	assert.LessOrEqual(t, res.AIDebtContribution, 100)
	assert.GreaterOrEqual(t, res.CyclomaticComplexity, 1)
	assert.GreaterOrEqual(t, res.NestingDepth, 0)
}

func BenchmarkAnalyzeFile(b *testing.B) {
	text := strings.Repeat(sampleService, 10)
	file := schema.FileRecord{Path: "bench.js", Content: text}
	for b.Loop() {
		_ = AnalyzeFile(file, nil)
	}
}

func BenchmarkExtract(b *testing.B) {
	text := strings.Repeat(uniformGetters, 20)
	for b.Loop() {
		_ = Extract(text)
	}
}
