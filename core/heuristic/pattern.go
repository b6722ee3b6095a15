package heuristic

import (
	"math"
	"sort"

	"github.com/huangsam/debtlens/schema"
)

// Pattern detector constants.
const (
	minUniformityFunctions = 3
	minStyleLines          = 20
	minRepeatLineLength    = 5
	minCrossLineLength     = 12
	topTokenCount          = 10
	lengthBucketWidth      = 10
	lengthBucketCount      = 12
	likelihoodOffset       = 0.05
	errorHandlerFloor      = 5
)

// PatternMetrics are the sub-scores of the pattern detector.
type PatternMetrics struct {
	SUS float64
	TDD float64
	PRI float64
	CRS float64
	SCS float64
	GID float64
	LLE float64
}

// PatternResult is the AI-authorship estimate for one file.
type PatternResult struct {
	AILikelihood       float64
	AIDebtContribution int
	Score              float64 // additive rule score before blending
	WeightedAI         float64 // linear estimate from sub-scores
	Issues             []string
	Metrics            PatternMetrics
}

type patternInput struct {
	f         *Features
	m         PatternMetrics
	crossSim  float64
	crossFile bool
}

var patternRules = []Rule[*patternInput]{
	When(func(in *patternInput) bool {
		return len(in.f.Functions) >= minUniformityFunctions && in.m.SUS > 0.5
	}, 0.20, "highly uniform function structure"),
	When(func(in *patternInput) bool {
		return len(in.f.Functions) >= minUniformityFunctions && in.m.SUS > 0.25 && in.m.SUS <= 0.5
	}, 0.10, "similar function structure"),
	Tiered(func(in *patternInput) float64 { return in.m.CRS },
		Tier{0.5, 0.15, "redundant comments"},
		Tier{0.25, 0.08, "verbose comments"}),
	Tiered(func(in *patternInput) float64 { return in.m.PRI },
		Tier{0.6, 0.12, "repeated code lines"},
		Tier{0.3, 0.06, "some line repetition"}),
	Tiered(func(in *patternInput) float64 { return in.m.SCS },
		Tier{0.85, 0.10, "uniform line lengths"}),
	Tiered(func(in *patternInput) float64 { return in.m.TDD },
		Tier{0.6, 0.08, "low token diversity"}),
	Tiered(func(in *patternInput) float64 { return in.f.GenericDensity() },
		Tier{0.08, 0.12, "generic identifiers"},
		Tier{0.04, 0.06, "some generic identifiers"}),
	Tiered(func(in *patternInput) float64 { return in.f.CommentRatio() },
		Tier{0.35, 0.10, "excessive commenting"}),
	When(func(in *patternInput) bool { return in.f.Assistant > 0 },
		0.10, "assistant-style phrasing"),
	When(func(in *patternInput) bool {
		n := len(in.f.Functions)
		return n > 0 && in.f.ErrorHandler >= errorHandlerFloor && in.f.ErrorHandler >= n
	}, 0.06, "uniform error handling"),
	Tiered(func(in *patternInput) float64 {
		if !in.crossFile {
			return 0
		}
		return in.crossSim
	},
		Tier{0.5, 0.15, "cross-file duplication"},
		Tier{0.3, 0.08, "cross-file similarity"}),
}

// DetectPatterns estimates how likely a file is AI-originated.
// The corpus may be nil; cross-file matching only runs when it holds more than one file.
func DetectPatterns(path string, f *Features, corpus *Corpus) PatternResult {
	m := PatternMetrics{
		SUS: structuralUniformity(f),
		TDD: tokenDivergence(f),
		PRI: repetitionIndex(f),
		CRS: commentRedundancy(f),
		SCS: styleConsistency(f),
		GID: Clamp01(5 * f.GenericDensity()),
		LLE: lineLengthEntropy(f),
	}

	in := &patternInput{f: f, m: m}
	if corpus != nil && corpus.Size() > 1 {
		in.crossFile = true
		in.crossSim = corpus.MaxSimilarity(path, f.SignificantLines(minCrossLineLength))
	}

	score, tags := Fold(in, patternRules)
	weighted := 0.25*m.SUS + 0.20*m.PRI + 0.20*m.CRS + 0.15*m.GID + 0.20*m.LLE
	likelihood := Clamp01(math.Max(score+likelihoodOffset, weighted))

	return PatternResult{
		AILikelihood:       likelihood,
		AIDebtContribution: AIDebtContribution(likelihood),
		Score:              score,
		WeightedAI:         weighted,
		Issues:             tags,
		Metrics:            m,
	}
}

// AIDebtContribution maps an AI likelihood to a 0-100 debt contribution.
func AIDebtContribution(likelihood float64) int {
	var v float64
	if likelihood < 0.4 {
		v = 8 + 35*likelihood
	} else {
		v = 45 + 55*likelihood
	}
	return int(Clamp(math.Round(v), 0, 100))
}

func structuralUniformity(f *Features) float64 {
	if len(f.Functions) < minUniformityFunctions {
		return 0
	}
	counts := make(map[string]int, len(f.Functions))
	normalized := make([]string, len(f.Functions))
	for i, fn := range f.Functions {
		normalized[i] = normalizeBody(fn.Body)
		counts[normalized[i]]++
	}
	similar := 0
	for _, n := range normalized {
		if counts[n] >= 2 {
			similar++
		}
	}
	return Clamp01(float64(similar) / float64(len(f.Functions)))
}

func tokenDivergence(f *Features) float64 {
	if len(f.Tokens) == 0 {
		return 0
	}
	counts := make(map[string]int)
	for _, t := range f.Tokens {
		counts[t]++
	}
	freq := make([]int, 0, len(counts))
	for _, c := range counts {
		freq = append(freq, c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(freq)))
	top := 0
	for i := 0; i < len(freq) && i < topTokenCount; i++ {
		top += freq[i]
	}
	return Clamp01(float64(top) / float64(len(f.Tokens)))
}

func repetitionIndex(f *Features) float64 {
	counts := make(map[string]int)
	for _, line := range f.NonEmpty {
		norm := normalizeLine(line)
		if len(norm) >= minRepeatLineLength {
			counts[norm]++
		}
	}
	duplicated := 0
	for _, c := range counts {
		if c >= 2 {
			duplicated++
		}
	}
	return Clamp01(ratio(float64(duplicated), 0.1*float64(len(f.NonEmpty))))
}

func commentRedundancy(f *Features) float64 {
	if len(f.CommentLines) == 0 {
		return 0
	}
	return Clamp01(float64(f.Redundant) / float64(len(f.CommentLines)))
}

func styleConsistency(f *Features) float64 {
	if len(f.NonEmpty) <= minStyleLines {
		return 0
	}
	return Clamp01(1 - stddev(f.LineLengths)/40)
}

func lineLengthEntropy(f *Features) float64 {
	n := len(f.LineLengths)
	if n < 2 {
		return 0
	}
	buckets := make([]int, lengthBucketCount)
	for _, l := range f.LineLengths {
		b := int(l) / lengthBucketWidth
		if b >= lengthBucketCount {
			b = lengthBucketCount - 1
		}
		buckets[b]++
	}
	h := 0.0
	for _, c := range buckets {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(n)
		h -= p * math.Log2(p)
	}
	hMax := math.Log2(math.Min(float64(n), lengthBucketCount))
	if hMax <= 0 {
		return 0
	}
	return Clamp01(1 - h/hMax)
}

// Corpus holds the significant lines of every file in an analysis for cross-file matching.
type Corpus struct {
	lines map[string]map[string]struct{}
	order []string
}

// NewCorpus builds a corpus from the fetched files.
func NewCorpus(files []schema.FileRecord) *Corpus {
	c := &Corpus{lines: make(map[string]map[string]struct{}, len(files))}
	for _, file := range files {
		if _, ok := c.lines[file.Path]; ok {
			continue
		}
		c.lines[file.Path] = Extract(file.Content).SignificantLines(minCrossLineLength)
		c.order = append(c.order, file.Path)
	}
	return c
}

// Size is the number of files in the corpus.
func (c *Corpus) Size() int {
	return len(c.order)
}

// MaxSimilarity returns the highest Jaccard similarity between lines and any
// other file in the corpus.
func (c *Corpus) MaxSimilarity(path string, lines map[string]struct{}) float64 {
	if len(lines) == 0 {
		return 0
	}
	best := 0.0
	for _, other := range c.order {
		if other == path {
			continue
		}
		if sim := jaccard(lines, c.lines[other]); sim > best {
			best = sim
		}
	}
	return best
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for k := range a {
		if _, ok := b[k]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	return float64(shared) / float64(union)
}
