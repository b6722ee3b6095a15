package timeline

import (
	"github.com/huangsam/debtlens/core/heuristic"
	"github.com/huangsam/debtlens/schema"
)

// SpikeThreshold is the per-commit jump that marks a spike. The comparison is strict.
const SpikeThreshold = 0.08

// State is the running debt carried from one commit to the next.
type State struct {
	Tech float64
	Cog  float64
	AI   float64
}

// Seed is the state before the first commit.
func Seed() State {
	return State{Tech: 0.1, Cog: 0.1, AI: 0.05}
}

// GrowthFactor amplifies prior debt when a commit grows the code and decays
// it more gently when the commit shrinks it.
func GrowthFactor(additions, deletions int) float64 {
	total := additions + deletions
	if total <= 0 {
		return 1
	}
	net := float64(additions-deletions) / float64(total)
	if net > 0 {
		return 1 + net*0.3
	}
	return 1 + net*0.1
}

// Advance applies one commit's delta and growth factor.
func (s State) Advance(delta schema.DebtDelta, growth float64) State {
	return State{
		Tech: heuristic.Clamp01(s.Tech*growth + delta.Tech),
		Cog:  heuristic.Clamp01(s.Cog*growth + delta.Cog),
		AI:   heuristic.Clamp01(s.AI + delta.AI*0.5),
	}
}

// Step advances the state by one commit. A degraded commit leaves the state unchanged.
func Step(prev State, detail schema.CommitDetail) State {
	if detail.Degraded {
		return prev
	}
	return prev.Advance(ScoreCommit(detail.Files), GrowthFactor(detail.Additions, detail.Deletions))
}

// Replay folds Step over commits ordered oldest first and returns the state after each one.
func Replay(seed State, details []schema.CommitDetail) []State {
	states := make([]State, len(details))
	s := seed
	for i, d := range details {
		s = Step(s, d)
		states[i] = s
	}
	return states
}

// IsSpike reports whether tech or cognitive debt jumped by more than SpikeThreshold.
func IsSpike(prev, cur State) bool {
	return cur.Tech-prev.Tech > SpikeThreshold || cur.Cog-prev.Cog > SpikeThreshold
}

// Accumulate builds the commit records of a history ordered oldest first.
func Accumulate(details []schema.CommitDetail) []schema.CommitRecord {
	states := Replay(Seed(), details)
	records := make([]schema.CommitRecord, len(details))
	for i, d := range details {
		s := states[i]
		records[i] = schema.CommitRecord{
			ShortHash:      schema.ShortHash(d.Hash),
			Summary:        schema.CommitSummary(d.Message),
			Author:         d.Author,
			Timestamp:      d.Timestamp,
			TechDebt:       s.Tech,
			CogDebt:        s.Cog,
			AIContribution: s.AI,
			FilesChanged:   len(d.Files),
			Additions:      max(d.Additions, 0),
			Deletions:      max(d.Deletions, 0),
			IsSpike:        i > 0 && IsSpike(states[i-1], s),
			Degraded:       d.Degraded,
		}
	}
	return records
}
