package heuristic

import "github.com/huangsam/debtlens/schema"

// AnalyzeFile runs the pattern, technical and cognitive estimators over one file.
// The corpus is optional and only used for cross-file matching.
func AnalyzeFile(file schema.FileRecord, corpus *Corpus) schema.FileAnalysis {
	f := Extract(file.Content)
	pattern := DetectPatterns(file.Path, f, corpus)
	tech := EstimateTechnicalDebt(f)
	cog := EstimateCognitiveDebt(f, tech.TechnicalDebt, pattern.AILikelihood)

	p, c := pattern.Metrics, cog.Metrics
	return schema.FileAnalysis{
		Path:             file.Path,
		AILikelihood:     pattern.AILikelihood,
		TechnicalDebt:    tech.TechnicalDebt,
		CognitiveDebt:    cog.CognitiveDebt,
		PropagationScore: c.DPS,
		Issues:           MergeTags(pattern.Issues, tech.Issues, cog.Issues),
		Metrics: schema.FileMetrics{
			SUS: p.SUS, TDD: p.TDD, PRI: p.PRI, CRS: p.CRS, SCS: p.SCS, GID: p.GID, LLE: p.LLE,
			DDP: tech.DDP, MDS: tech.MDS,
			CCD: c.CCD, ES: c.ES, AES: c.AES, RDI: c.RDI, CLI: c.CLI,
			IAS: c.IAS, AGS: c.AGS, RI: c.RI, CSC: c.CSC,
			DPS: c.DPS, DLI: c.DLI, DRF: c.DRF,
		},
		LinesOfCode:          tech.LinesOfCode,
		FunctionCount:        tech.FunctionCount,
		CyclomaticComplexity: tech.CyclomaticComplexity,
		NestingDepth:         tech.NestingDepth,
		AIDebtContribution:   pattern.AIDebtContribution,
	}
}
