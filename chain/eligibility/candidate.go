package eligibility

import "github.com/witnet-go/witnet/chain/primitives"

// Candidate is everything the four-key strict total order (spec.md §4.5
// "Candidate comparison") needs to compare two competing block candidates
// for the same epoch.
type Candidate struct {
	Slot uint32 // the replication factor (rf) at which this candidate became eligible; lower is better

	// ProtocolV2 selects which of the next two fields breaks a Slot tie
	// (spec.md §4.5 point 2: "In protocol V2.0, higher stake power; else
	// higher active reputation; inactive-in-ARS loses to active").
	ProtocolV2       bool
	StakePower       uint64
	ActiveReputation uint64
	ActiveInARS      bool

	VRFHash   primitives.Hash
	BlockHash primitives.Hash
}

// Better reports whether a strictly beats b under spec.md §4.5's four-key
// order: lower slot, then (power or reputation, with ARS-inactive always
// losing to active), then lower VRF hash, then lower block hash.
func Better(a, b Candidate) bool {
	if a.Slot != b.Slot {
		return a.Slot < b.Slot
	}
	if a.ProtocolV2 != b.ProtocolV2 {
		// Mixed-protocol comparison is not a real scenario (both
		// candidates are built against the same activation state); treat
		// as a tie on this key and fall through to VRF hash.
	} else if a.ProtocolV2 {
		if a.StakePower != b.StakePower {
			return a.StakePower > b.StakePower
		}
	} else {
		if a.ActiveInARS != b.ActiveInARS {
			return a.ActiveInARS // active beats inactive regardless of magnitude
		}
		if a.ActiveReputation != b.ActiveReputation {
			return a.ActiveReputation > b.ActiveReputation
		}
	}
	if a.VRFHash != b.VRFHash {
		return a.VRFHash.Less(b.VRFHash)
	}
	if a.BlockHash != b.BlockHash {
		return a.BlockHash.Less(b.BlockHash)
	}
	return false // ties on all four keys: equal candidate, same block (spec.md §4.5)
}

// Equal reports whether a and b tie on all four comparison keys, meaning
// they represent the same candidate block (spec.md §4.5 "Ties on all four
// mean equal candidate (same block)").
func Equal(a, b Candidate) bool {
	return a.Slot == b.Slot && a.VRFHash == b.VRFHash && a.BlockHash == b.BlockHash &&
		((a.ProtocolV2 && a.StakePower == b.StakePower) ||
			(!a.ProtocolV2 && a.ActiveInARS == b.ActiveInARS && a.ActiveReputation == b.ActiveReputation))
}

// Best returns the winner among candidates per Better, or the zero value
// and false if candidates is empty.
func Best(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if Better(c, best) {
			best = c
		}
	}
	return best, true
}
