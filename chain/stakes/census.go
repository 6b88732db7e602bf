package stakes

import "github.com/witnet-go/witnet/chain/primitives"

// CensusStrategyKind selects how Census subsamples the power-ranked entry
// list (spec.md §4.9 "census(strategy): iterate by decreasing power with
// All | StepBy(n) | Take(n) | Evenly(n)").
type CensusStrategyKind uint8

// CensusStrategyKind values.
const (
	CensusAll CensusStrategyKind = iota
	CensusStepBy
	CensusTake
	CensusEvenly
)

// CensusStrategy pairs a strategy kind with its parameter n (unused for
// CensusAll).
type CensusStrategy struct {
	Kind CensusStrategyKind
	N    int
}

// Census returns the subset of Rank's output selected by strategy, always
// preserving descending-power order.
func (r *Registry) Census(cap Capability, epoch primitives.Epoch, strategy CensusStrategy) []RankEntry {
	ranked := r.Rank(cap, epoch)
	switch strategy.Kind {
	case CensusAll:
		return ranked
	case CensusStepBy:
		if strategy.N <= 0 {
			return nil
		}
		var out []RankEntry
		for i := 0; i < len(ranked); i += strategy.N {
			out = append(out, ranked[i])
		}
		return out
	case CensusTake:
		if strategy.N < 0 {
			return nil
		}
		if strategy.N > len(ranked) {
			return ranked
		}
		return ranked[:strategy.N]
	case CensusEvenly:
		return evenlySpaced(ranked, strategy.N)
	default:
		return nil
	}
}

// evenlySpaced selects n entries roughly evenly spaced across ranked,
// always including the first and last element when n >= 2.
func evenlySpaced(ranked []RankEntry, n int) []RankEntry {
	if n <= 0 || len(ranked) == 0 {
		return nil
	}
	if n >= len(ranked) {
		return ranked
	}
	if n == 1 {
		return []RankEntry{ranked[0]}
	}
	out := make([]RankEntry, 0, n)
	last := len(ranked) - 1
	for i := 0; i < n; i++ {
		idx := (i * last) / (n - 1)
		out = append(out, ranked[idx])
	}
	return out
}
