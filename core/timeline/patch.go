// Package timeline turns an ordered commit history into a debt trajectory.
package timeline

import (
	"regexp"
	"strings"

	"github.com/huangsam/debtlens/core/heuristic"
	"github.com/huangsam/debtlens/schema"
)

// MaxScoredFiles is how many changed files of a commit are scored.
const MaxScoredFiles = 10

var (
	numericLiteralRegex = regexp.MustCompile(`\b\d{2,}\b`)
	asyncRegex          = regexp.MustCompile(`\basync\b|\bawait\b|\.then\(`)
	tryCatchRegex       = regexp.MustCompile(`\btry\b|\bcatch\b|\.catch\(`)
)

// Diff holds the added and removed lines of a unified diff, without markers.
type Diff struct {
	Added   []string
	Removed []string
}

// ParsePatch splits a unified diff into added and removed lines.
// File headers before the first hunk and hunk headers are ignored.
func ParsePatch(patch string) Diff {
	var d Diff
	inHunk := false
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			inHunk = true
		case !inHunk && (strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---")):
		case strings.HasPrefix(line, "+"):
			d.Added = append(d.Added, line[1:])
		case strings.HasPrefix(line, "-"):
			d.Removed = append(d.Removed, line[1:])
		}
	}
	return d
}

// ScorePatch scores one file's unified diff. Each delta is clamped to [0,1].
func ScorePatch(patch string) schema.DebtDelta {
	d := ParsePatch(patch)
	added := strings.Join(d.Added, "\n")
	removed := strings.Join(d.Removed, "\n")

	var delta schema.DebtDelta

	if strings.Count(added, "{")-strings.Count(removed, "{") > 3 {
		delta.Tech += 0.15
	}
	if growth := heuristic.CountBranchTokens(added) - heuristic.CountBranchTokens(removed); growth > 0 {
		delta.Tech += 0.02 * float64(growth)
	}

	switch surplus := len(d.Added) - len(d.Removed); {
	case surplus > 100:
		delta.Tech += 0.15
	case surplus > 50:
		delta.Tech += 0.10
	}

	if duplicateLines(d.Added) >= 3 {
		delta.Tech += 0.10
		delta.AI += 0.12
	}
	if heuristic.CountGenericNames(added) > 5 {
		delta.Cog += 0.10
		delta.AI += 0.08
	}
	if commentShare(d.Added) > 0.30 {
		delta.Cog += 0.10
		delta.AI += 0.10
	}
	if len(numericLiteralRegex.FindAllStringIndex(added, -1)) > 3 {
		delta.Tech += 0.05
	}
	if asyncRegex.MatchString(added) && !tryCatchRegex.MatchString(added) {
		delta.Tech += 0.08
	}

	return clampDelta(delta)
}

// ScoreCommit scores up to MaxScoredFiles patches and normalizes by the
// number of files changed in the commit.
func ScoreCommit(files []schema.FilePatch) schema.DebtDelta {
	var sum schema.DebtDelta
	for _, f := range files[:min(len(files), MaxScoredFiles)] {
		d := ScorePatch(f.Patch)
		sum.Tech += d.Tech
		sum.Cog += d.Cog
		sum.AI += d.AI
	}
	sum = clampDelta(sum)
	den := float64(max(len(files), 1))
	return schema.DebtDelta{Tech: sum.Tech / den, Cog: sum.Cog / den, AI: sum.AI / den}
}

// duplicateLines counts added lines longer than 20 characters that occur more than once.
func duplicateLines(lines []string) int {
	counts := make(map[string]int)
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if len(t) > 20 {
			counts[t]++
		}
	}
	n := 0
	for _, c := range counts {
		if c >= 2 {
			n += c
		}
	}
	return n
}

func commentShare(lines []string) float64 {
	if len(lines) == 0 {
		return 0
	}
	comments := 0
	for _, l := range lines {
		if heuristic.IsCommentLine(l) {
			comments++
		}
	}
	return float64(comments) / float64(len(lines))
}

func clampDelta(d schema.DebtDelta) schema.DebtDelta {
	return schema.DebtDelta{
		Tech: heuristic.Clamp01(d.Tech),
		Cog:  heuristic.Clamp01(d.Cog),
		AI:   heuristic.Clamp01(d.AI),
	}
}
