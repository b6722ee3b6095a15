package timeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/huangsam/debtlens/schema"
	"github.com/stretchr/testify/assert"
)

func addedLines(line string, n int) string {
	return strings.Repeat("+"+line+"\n", n)
}

func TestParsePatch(t *testing.T) {
	patch := "--- a/x.go\n+++ b/x.go\n@@ -1,2 +1,3 @@\n context\n-old\n+new\n+another\n\\ No newline at end of file\n"
	d := ParsePatch(patch)

	assert.Equal(t, []string{"new", "another"}, d.Added)
	assert.Equal(t, []string{"old"}, d.Removed)
}

func TestParsePatchMarkerLinesInsideHunk(t *testing.T) {
	patch := "--- a/q.sql\n+++ b/q.sql\n@@ -1,2 +1,2 @@\n--- drop the legacy view\n+++counter;\n"
	d := ParsePatch(patch)

	assert.Equal(t, []string{"++counter;"}, d.Added)
	assert.Equal(t, []string{"-- drop the legacy view"}, d.Removed)
}

func TestScorePatch(t *testing.T) {
	tests := []struct {
		name  string
		patch string
		want  schema.DebtDelta
	}{
		{"empty", "", schema.DebtDelta{}},
		{"large surplus", addedLines("x := y", 101), schema.DebtDelta{Tech: 0.15}},
		{"moderate surplus", addedLines("x := y", 51), schema.DebtDelta{Tech: 0.10}},
		{"small surplus", addedLines("x := y", 50), schema.DebtDelta{}},
		{"brace and branch growth", addedLines("if a {", 4), schema.DebtDelta{Tech: 0.15 + 0.08}},
		{"balanced change", addedLines("if a {", 5) + strings.Repeat("-if a {\n", 5), schema.DebtDelta{}},
		{
			"duplicate long lines",
			addedLines("const totalAmount = computeShipping(order);", 3),
			schema.DebtDelta{Tech: 0.10, AI: 0.12},
		},
		{
			"generic names",
			"+data = result + temp\n+value = item + obj\n",
			schema.DebtDelta{Cog: 0.10, AI: 0.08},
		},
		{"comment heavy", "+// one\n+// two\n+x()\n", schema.DebtDelta{Cog: 0.10, AI: 0.10}},
		{"numeric literals", "+a := 10 + 20 + 30 + 40\n", schema.DebtDelta{Tech: 0.05}},
		{"unguarded async", "+async function load() { await fetch(u) }\n", schema.DebtDelta{Tech: 0.08}},
		{
			"guarded async",
			"+async function load() { try { await fetch(u) } catch (e) {} }\n",
			schema.DebtDelta{Tech: 0.02},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScorePatch(tt.patch)
			assert.InDelta(t, tt.want.Tech, got.Tech, 1e-9, "tech")
			assert.InDelta(t, tt.want.Cog, got.Cog, 1e-9, "cog")
			assert.InDelta(t, tt.want.AI, got.AI, 1e-9, "ai")
		})
	}
}

func TestScorePatchClamped(t *testing.T) {
	patch := addedLines("if data && result || temp { value(item, obj) } // 10 20 30 40", 200)
	got := ScorePatch(patch)

	assert.LessOrEqual(t, got.Tech, 1.0)
	assert.LessOrEqual(t, got.Cog, 1.0)
	assert.LessOrEqual(t, got.AI, 1.0)
	assert.InDelta(t, 1.0, got.Tech, 1e-9)
}

func TestScoreCommit(t *testing.T) {
	big := schema.FilePatch{Path: "big.go", Patch: addedLines("x := y", 101)}
	quiet := schema.FilePatch{Path: "quiet.go", Patch: "-x := y\n+x := z\n"}

	t.Run("no files", func(t *testing.T) {
		assert.Equal(t, schema.DebtDelta{}, ScoreCommit(nil))
	})

	t.Run("normalized by files", func(t *testing.T) {
		got := ScoreCommit([]schema.FilePatch{big, quiet})
		assert.InDelta(t, 0.075, got.Tech, 1e-9)
	})

	t.Run("only first files scored", func(t *testing.T) {
		var files []schema.FilePatch
		for i := range 12 {
			files = append(files, schema.FilePatch{Path: fmt.Sprintf("f%d.go", i), Patch: big.Patch})
		}
		got := ScoreCommit(files)
		// ten scored files clamp to 1, then divide by all twelve changed files
		assert.InDelta(t, 1.0/12, got.Tech, 1e-9)
	})

	t.Run("unscored files still normalize", func(t *testing.T) {
		files := []schema.FilePatch{big}
		for i := range 11 {
			files = append(files, schema.FilePatch{Path: fmt.Sprintf("q%d.go", i), Patch: quiet.Patch})
		}
		got := ScoreCommit(files)
		assert.InDelta(t, 0.15/12, got.Tech, 1e-9)
	})
}
