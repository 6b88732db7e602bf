package reputation

import "github.com/witnet-go/witnet/chain/primitives"

// Alpha is a minting-batch identifier: reputation units are grouped by the
// alpha that minted them and expire together (spec.md §4.8, GLOSSARY).
type Alpha uint32

// Gain is one (pkh, reputation) pair applied by TRS.Gain.
type Gain struct {
	PKH        primitives.PublicKeyHash
	Reputation uint32
}

// TRS (Total Reputation Set) holds per-identity reputation counters grouped
// by alpha (spec.md §4.8).
type TRS struct {
	byAlpha map[Alpha]map[primitives.PublicKeyHash]uint32
}

// NewTRS returns an empty TRS.
func NewTRS() *TRS {
	return &TRS{byAlpha: make(map[Alpha]map[primitives.PublicKeyHash]uint32)}
}

// Gain appends a reputation batch under alpha (spec.md §4.8
// "gain(alpha, vec<(pkh, rep)>): appends").
func (t *TRS) Gain(alpha Alpha, gains []Gain) {
	batch, ok := t.byAlpha[alpha]
	if !ok {
		batch = make(map[primitives.PublicKeyHash]uint32)
		t.byAlpha[alpha] = batch
	}
	for _, g := range gains {
		batch[g.PKH] += g.Reputation
	}
}

// Expire removes an entire alpha batch (spec.md §4.8 "expire(alpha):
// removes a batch").
func (t *TRS) Expire(alpha Alpha) {
	delete(t.byAlpha, alpha)
}

// DemurrageFunc maps an identity's current total reputation to its
// post-demurrage value.
type DemurrageFunc func(pkh primitives.PublicKeyHash, current uint32) uint32

// PenalizeMany applies fn to every identity with any reputation across all
// retained alphas, scaling each alpha-batch's contribution by fn's output
// over the identity's current total (spec.md §4.8
// "penalize_many(iter<(pkh, f(rep)->rep)>): applies a demurrage function
// per identity"). Each scaled batch is rounded down, so the new grand total
// can fall below fn's output by less than the number of batches holding
// the identity's reputation. An identity with zero total reputation is left
// alone.
func (t *TRS) PenalizeMany(fn DemurrageFunc) {
	totals := t.totalsByIdentity()
	for pkh, total := range totals {
		if total == 0 {
			continue
		}
		newTotal := fn(pkh, total)
		if newTotal == total {
			continue
		}
		for alpha, batch := range t.byAlpha {
			rep, ok := batch[pkh]
			if !ok || rep == 0 {
				continue
			}
			scaled := uint32((uint64(rep) * uint64(newTotal)) / uint64(total))
			batch[pkh] = scaled
			if batch[pkh] == 0 {
				delete(batch, pkh)
			}
			if len(batch) == 0 {
				delete(t.byAlpha, alpha)
			}
		}
	}
}

func (t *TRS) totalsByIdentity() map[primitives.PublicKeyHash]uint32 {
	totals := make(map[primitives.PublicKeyHash]uint32)
	for _, batch := range t.byAlpha {
		for pkh, rep := range batch {
			totals[pkh] += rep
		}
	}
	return totals
}

// Total returns pkh's total reputation summed across every retained alpha.
func (t *TRS) Total(pkh primitives.PublicKeyHash) uint32 {
	var total uint32
	for _, batch := range t.byAlpha {
		total += batch[pkh]
	}
	return total
}
