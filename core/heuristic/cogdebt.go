package heuristic

// CognitiveMetrics are the sub-scores of the cognitive debt estimator.
type CognitiveMetrics struct {
	CCD float64
	ES  float64
	AES float64
	RDI float64
	CLI float64
	IAS float64
	AGS float64
	RI  float64
	CSC float64
	DPS float64
	DLI float64
	DRF float64
}

// CognitiveResult is the comprehension burden estimate for one file.
type CognitiveResult struct {
	CognitiveDebt float64
	Metrics       CognitiveMetrics
	Issues        []string
}

// cognitiveWeights sum to 1.
var cognitiveWeights = struct {
	CCD, InvES, AES, RDI, CLI, IAS, AGS, RI, CSC float64
}{
	CCD: 0.12, InvES: 0.10, AES: 0.10, RDI: 0.10, CLI: 0.15, IAS: 0.12, AGS: 0.10, RI: 0.11, CSC: 0.10,
}

var cognitiveRules = []Rule[*CognitiveMetrics]{
	When(func(m *CognitiveMetrics) bool { return m.CLI > 0.6 }, 0, "high cognitive load index"),
	When(func(m *CognitiveMetrics) bool { return m.IAS > 0.3 }, 0, "high identifier ambiguity"),
	When(func(m *CognitiveMetrics) bool { return m.CCD > 0.3 }, 0, "dense control flow"),
	When(func(m *CognitiveMetrics) bool { return m.ES < 0.35 }, 0, "low explainability"),
	When(func(m *CognitiveMetrics) bool { return m.AES > 0.6 }, 0, "erratic line structure"),
	When(func(m *CognitiveMetrics) bool { return m.AGS > 0.5 }, 0, "abstraction gap"),
	When(func(m *CognitiveMetrics) bool { return m.RI > 0.6 }, 0, "low readability"),
	When(func(m *CognitiveMetrics) bool { return m.CSC > 0.6 }, 0, "high context switching cost"),
	When(func(m *CognitiveMetrics) bool { return m.RDI >= 0.8 }, 0, "comment-heavy"),
}

// EstimateCognitiveDebt scores the comprehension burden of a file given its
// already computed technical debt and AI likelihood.
func EstimateCognitiveDebt(f *Features, technicalDebt, aiLikelihood float64) CognitiveResult {
	nonEmpty := float64(len(f.NonEmpty))
	es := Clamp01(f.MeanIdentifierLength() / 12)
	nesting := Clamp01(float64(f.NestingDepth) / 6)

	m := CognitiveMetrics{
		CCD: Clamp01(ratio(float64(f.ControlCount), nonEmpty)),
		ES:  es,
		AES: Clamp01(stddev(f.LineLengths) / 40),
		RDI: commentStep(f.CommentRatio()),
		CLI: Clamp01(0.4*nesting +
			0.3*Clamp01(5*ratio(float64(f.BranchCount), nonEmpty)) +
			0.3*Clamp01(meanBodyLines(f)/60)),
		IAS: Clamp01(4 * ambiguity(f)),
		AGS: abstractionGap(f),
		RI: Clamp01(0.4*Clamp01(mean(f.LineLengths)/100) +
			0.3*nesting +
			0.3*(1-es)),
		CSC: Clamp01(0.5*Clamp01(float64(f.ImportCount)/20) +
			0.5*Clamp01(ratio(float64(f.CallSites), nonEmpty))),
	}
	m.DPS = Clamp01(0.6*technicalDebt + 0.4*aiLikelihood)
	m.DLI = Clamp01(0.5*technicalDebt + 0.5*m.CCD)
	m.DRF = Clamp01(0.4*m.AES + 0.3*technicalDebt + 0.3*aiLikelihood)

	w := cognitiveWeights
	debt := w.CCD*m.CCD + w.InvES*(1-m.ES) + w.AES*m.AES + w.RDI*m.RDI + w.CLI*m.CLI +
		w.IAS*m.IAS + w.AGS*m.AGS + w.RI*m.RI + w.CSC*m.CSC

	_, tags := Fold(&m, cognitiveRules)
	return CognitiveResult{
		CognitiveDebt: Clamp01(debt),
		Metrics:       m,
		Issues:        tags,
	}
}

// commentStep maps a comment ratio to the three-level RDI value.
func commentStep(commentRatio float64) float64 {
	switch {
	case commentRatio > 0.30:
		return 0.8
	case commentRatio < 0.05:
		return 0.55
	default:
		return 0.3
	}
}

func meanBodyLines(f *Features) float64 {
	if len(f.Functions) == 0 {
		return 0
	}
	total := 0
	for _, fn := range f.Functions {
		total += fn.BodyLines
	}
	return float64(total) / float64(len(f.Functions))
}

// ambiguity is the share of identifiers that are very short or generic.
func ambiguity(f *Features) float64 {
	if len(f.Identifiers) == 0 {
		return 0
	}
	n := 0
	for _, id := range f.Identifiers {
		if len(id) <= 2 {
			if _, ok := shortAllowed[id]; !ok {
				n++
				continue
			}
		}
		if IsGenericName(id) {
			n++
		}
	}
	return float64(n) / float64(len(f.Identifiers))
}

// abstractionGap compares how descriptive function names are with how much
// branching their bodies carry.
func abstractionGap(f *Features) float64 {
	if len(f.Functions) == 0 {
		return 0
	}
	nameLen, branches := 0, 0
	for _, fn := range f.Functions {
		nameLen += len(fn.Name)
		branches += fn.Branches
	}
	n := float64(len(f.Functions))
	gap := Clamp01(float64(nameLen)/n/20) - Clamp01(float64(branches)/n/10)
	if gap < 0 {
		gap = -gap
	}
	return Clamp01(gap)
}
