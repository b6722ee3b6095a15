package heuristic

import (
	"math"
	"strings"
)

// Technical debt constants.
const (
	longFunctionLines    = 50
	minLongFunctionScope = 3
	maxLongFunctions     = 3
	blockWindow          = 3
	severeBonus          = 2
)

// TechResult is the structural debt estimate for one file.
type TechResult struct {
	TechnicalDebt        float64
	CyclomaticComplexity int
	NestingDepth         int
	LinesOfCode          int
	FunctionCount        int
	LongFunctions        int
	DuplicateBlocks      int
	DDP                  float64
	MDS                  float64
	Issues               []string
}

type techInput struct {
	f               *Features
	complexity      int
	longFunctions   int
	duplicateBlocks int
	mds             float64
}

var techRules = []Rule[*techInput]{
	Tiered(func(in *techInput) float64 { return float64(in.complexity) },
		Tier{15, 0.30, "very high complexity"},
		Tier{8, 0.18, "high complexity"},
		Tier{5, 0.06, "moderate complexity"}),
	Tiered(func(in *techInput) float64 { return float64(in.f.NestingDepth) },
		Tier{4, 0.30, "deep nesting"},
		Tier{3, 0.18, "nested logic"},
		Tier{2, 0.06, "moderate nesting"}),
	Tiered(func(in *techInput) float64 { return float64(in.f.LinesOfCode()) },
		Tier{300, 0.25, "very large file"},
		Tier{200, 0.15, "large file"},
		Tier{150, 0.05, "growing file size"}),
	func(in *techInput) (Finding, bool) {
		if len(in.f.Functions) < minLongFunctionScope || in.longFunctions == 0 {
			return Finding{}, false
		}
		n := min(in.longFunctions, maxLongFunctions)
		return Finding{Weight: 0.20 * float64(n), Tag: "long functions"}, true
	},
	When(func(in *techInput) bool { return len(in.f.Functions) > 20 }, 0.10, "too many functions"),
	When(func(in *techInput) bool { return in.duplicateBlocks > 1 }, 0.15, "duplicated blocks"),
	When(func(in *techInput) bool { return in.mds > 0.6 }, 0.10, "poor modularity"),
}

// EstimateTechnicalDebt scores structural debt signals of a file.
func EstimateTechnicalDebt(f *Features) TechResult {
	in := &techInput{
		f:               f,
		complexity:      1 + f.BranchCount,
		longFunctions:   countLongFunctions(f),
		duplicateBlocks: countDuplicateBlocks(f),
		mds:             Clamp01(float64(f.ImportCount) / (math.Max(float64(f.ExportCount), 1) * 3)),
	}

	score, tags := Fold(in, techRules)

	signals := float64(len(tags))
	if in.complexity > 15 {
		signals += severeBonus
	}
	if f.NestingDepth > 4 {
		signals += severeBonus
	}
	loc := f.LinesOfCode()

	return TechResult{
		TechnicalDebt:        Clamp01(score),
		CyclomaticComplexity: in.complexity,
		NestingDepth:         f.NestingDepth,
		LinesOfCode:          loc,
		FunctionCount:        len(f.Functions),
		LongFunctions:        in.longFunctions,
		DuplicateBlocks:      in.duplicateBlocks,
		DDP:                  Clamp01(signals / math.Max(float64(loc)/100, 1)),
		MDS:                  in.mds,
		Issues:               tags,
	}
}

func countLongFunctions(f *Features) int {
	n := 0
	for _, fn := range f.Functions {
		if fn.BodyLines > longFunctionLines {
			n++
		}
	}
	return n
}

// countDuplicateBlocks counts distinct windows of consecutive non-trivial
// lines that occur at least twice.
func countDuplicateBlocks(f *Features) int {
	lines := make([]string, 0, len(f.NonEmpty))
	for _, line := range f.NonEmpty {
		lines = append(lines, normalizeLine(line))
	}

	counts := make(map[string]int)
	for i := 0; i+blockWindow <= len(lines); i++ {
		window := lines[i : i+blockWindow]
		trivial := false
		for _, l := range window {
			if len(l) < minRepeatLineLength {
				trivial = true
				break
			}
		}
		if !trivial {
			counts[strings.Join(window, "\n")]++
		}
	}

	dups := 0
	for _, c := range counts {
		if c >= 2 {
			dups++
		}
	}
	return dups
}
