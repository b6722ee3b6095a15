package timeline

import (
	"cmp"
	"slices"

	"github.com/huangsam/debtlens/core/heuristic"
	"github.com/huangsam/debtlens/schema"
)

// Classification constants.
const (
	increasingSlope = 0.15
	improvingSlope  = -0.10
	unstableSpikes  = 3
	momentumWindow  = 5
	fastMomentum    = 0.05
)

// Developers sums per-author debt deltas between consecutive records.
// The first record has no predecessor and is not attributed.
func Developers(records []schema.CommitRecord) []schema.DeveloperImpact {
	byName := make(map[string]*schema.DeveloperImpact)
	for i := 1; i < len(records); i++ {
		cur, prev := records[i], records[i-1]
		dev, ok := byName[cur.Author]
		if !ok {
			dev = &schema.DeveloperImpact{Name: cur.Author}
			byName[cur.Author] = dev
		}
		dev.TechImpact += cur.TechDebt - prev.TechDebt
		dev.CogImpact += cur.CogDebt - prev.CogDebt
		dev.CommitCount++
	}

	out := make([]schema.DeveloperImpact, 0, len(byName))
	for _, dev := range byName {
		dev.TotalImpact = dev.TechImpact + dev.CogImpact
		out = append(out, *dev)
	}
	slices.SortFunc(out, func(a, b schema.DeveloperImpact) int {
		if c := cmp.Compare(b.TotalImpact, a.TotalImpact); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// ClassifyTrend picks the trend class. Slope checks take priority over spike count.
func ClassifyTrend(avgSlope float64, spikeCount int) schema.Trend {
	switch {
	case avgSlope > increasingSlope:
		return schema.IncreasingTrend
	case avgSlope < improvingSlope:
		return schema.ImprovingTrend
	case spikeCount > unstableSpikes:
		return schema.UnstableTrend
	default:
		return schema.FluctuatingTrend
	}
}

// ClassifyMomentum picks the momentum class from the recent per-commit slope.
func ClassifyMomentum(recentSlope float64) schema.Momentum {
	switch {
	case recentSlope > fastMomentum:
		return schema.FastMomentum
	case recentSlope > 0:
		return schema.SlowMomentum
	default:
		return schema.StableMomentum
	}
}

// Summarize classifies a trajectory and projects it forward.
func Summarize(records []schema.CommitRecord) schema.TimelineSummary {
	summary := schema.TimelineSummary{
		Trend:    schema.FluctuatingTrend,
		Momentum: schema.StableMomentum,
	}
	for _, r := range records {
		if r.IsSpike {
			summary.SpikeCount++
		}
		if r.Degraded {
			summary.DegradedCount++
		}
	}
	if len(records) == 0 {
		return summary
	}

	first, last := records[0], records[len(records)-1]
	techSlope := last.TechDebt - first.TechDebt
	cogSlope := last.CogDebt - first.CogDebt
	summary.Trend = ClassifyTrend((techSlope+cogSlope)/2, summary.SpikeCount)

	start := max(len(records)-momentumWindow, 0)
	window := float64(len(records) - start)
	summary.Momentum = ClassifyMomentum((last.TechDebt - records[start].TechDebt) / window)

	summary.Prediction = schema.Prediction{
		TechPlus5:  heuristic.Clamp01(last.TechDebt + techSlope*0.5),
		TechPlus10: heuristic.Clamp01(last.TechDebt + techSlope),
		CogPlus5:   heuristic.Clamp01(last.CogDebt + cogSlope*0.5),
		CogPlus10:  heuristic.Clamp01(last.CogDebt + cogSlope),
	}
	return summary
}

// Analyze runs the accumulator over commits ordered oldest first.
func Analyze(details []schema.CommitDetail) ([]schema.CommitRecord, []schema.DeveloperImpact, schema.TimelineSummary) {
	records := Accumulate(details)
	return records, Developers(records), Summarize(records)
}
