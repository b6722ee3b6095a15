package heuristic

// Finding is the contribution of one rule that fired.
type Finding struct {
	Weight float64
	Tag    string
}

// Rule is a pure scoring check over an input of type T.
// It reports false when its threshold is not crossed.
type Rule[T any] func(in T) (Finding, bool)

// Tier is one threshold level of a tiered rule. A value strictly above
// Above earns Weight and Tag.
type Tier struct {
	Above  float64
	Weight float64
	Tag    string
}

// Tiered builds a rule from tiers ordered strongest first. Only the first
// crossed tier fires, so a file never earns two tiers of the same rule.
func Tiered[T any](value func(in T) float64, tiers ...Tier) Rule[T] {
	return func(in T) (Finding, bool) {
		v := value(in)
		for _, t := range tiers {
			if v > t.Above {
				return Finding{Weight: t.Weight, Tag: t.Tag}, true
			}
		}
		return Finding{}, false
	}
}

// When builds a rule with a fixed weight that fires when cond holds.
func When[T any](cond func(in T) bool, weight float64, tag string) Rule[T] {
	return func(in T) (Finding, bool) {
		if cond(in) {
			return Finding{Weight: weight, Tag: tag}, true
		}
		return Finding{}, false
	}
}

// Fold evaluates rules in order and returns the summed weight and the
// deduplicated tags of every rule that fired.
func Fold[T any](in T, rules []Rule[T]) (float64, []string) {
	score := 0.0
	tags := newTagSet()
	for _, rule := range rules {
		if finding, ok := rule(in); ok {
			score += finding.Weight
			tags.add(finding.Tag)
		}
	}
	return score, tags.list()
}

// tagSet keeps the first-seen order of unique tags.
type tagSet struct {
	seen  map[string]struct{}
	order []string
}

func newTagSet() *tagSet {
	return &tagSet{seen: make(map[string]struct{})}
}

func (s *tagSet) add(tags ...string) {
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := s.seen[t]; ok {
			continue
		}
		s.seen[t] = struct{}{}
		s.order = append(s.order, t)
	}
}

func (s *tagSet) list() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// MergeTags concatenates tag lists and removes duplicates.
func MergeTags(lists ...[]string) []string {
	s := newTagSet()
	for _, l := range lists {
		s.add(l...)
	}
	return s.list()
}
