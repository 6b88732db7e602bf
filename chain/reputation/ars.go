// Package reputation implements the Active/Total Reputation Set engine used
// to gate witnessing eligibility (spec.md §4.8).
package reputation

import (
	"sort"

	"github.com/witnet-go/witnet/chain/primitives"
)

// ARS (Active Reputation Set) is a fixed-length ring of "activity pushes";
// membership means an identity appears in any of the last activityPeriod
// pushes (spec.md §4.8).
type ARS struct {
	pushes [][]primitives.PublicKeyHash
	period int
}

// NewARS returns an ARS retaining the last activityPeriod pushes.
func NewARS(activityPeriod int) *ARS {
	if activityPeriod < 1 {
		activityPeriod = 1
	}
	return &ARS{period: activityPeriod}
}

// Push records one round of active identities, evicting the oldest push
// once the ring is full.
func (a *ARS) Push(identities []primitives.PublicKeyHash) {
	a.pushes = append(a.pushes, append([]primitives.PublicKeyHash{}, identities...))
	if len(a.pushes) > a.period {
		a.pushes = a.pushes[len(a.pushes)-a.period:]
	}
}

// Contains reports whether pkh appears in any retained push.
func (a *ARS) Contains(pkh primitives.PublicKeyHash) bool {
	for _, push := range a.pushes {
		for _, id := range push {
			if id == pkh {
				return true
			}
		}
	}
	return false
}

// Members returns the deduplicated set of every identity currently active,
// sorted by PKH for deterministic iteration.
func (a *ARS) Members() []primitives.PublicKeyHash {
	seen := make(map[primitives.PublicKeyHash]bool)
	var out []primitives.PublicKeyHash
	for _, push := range a.pushes {
		for _, id := range push {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Len returns the number of distinct active identities.
func (a *ARS) Len() int {
	return len(a.Members())
}
