// Package eligibility implements RandPoE/RepPoE VRF-threshold eligibility
// and the four-key candidate strict total order (spec.md §4.5).
package eligibility

import (
	"math"
	"math/bits"

	"github.com/witnet-go/witnet/chain/primitives"
)

// saturatingMul64 multiplies a and b, clamping to math.MaxUint64 on
// overflow instead of wrapping (spec.md §4.5 "saturating").
func saturatingMul64(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

// truncateToUint32 takes the big-endian first word of a 64-bit threshold,
// matching the VRF output's own truncation rule (spec.md §4.2 "truncated
// to 32 bits (big-endian first word)").
func truncateToUint32(v uint64) uint32 {
	return uint32(v >> 32)
}

func denominator(count, minDifficulty uint64) uint64 {
	d := count
	if d < minDifficulty {
		d = minDifficulty
	}
	if d == 0 {
		d = 1
	}
	return d
}

// randDenominator computes RandPoE's denominator, applying the minimum-
// difficulty floor only while the minimum-difficulty regime is still active
// (spec.md §4.5 "Before the first hard fork a minimum-difficulty regime may
// override total_identities"): once epoch has passed
// epochsWithMinDifficulty, total_identities is used raw, floored only at 1
// to avoid division by zero.
func randDenominator(totalIdentities, minDifficulty uint64, epoch, epochsWithMinDifficulty primitives.Epoch) uint64 {
	if epoch <= epochsWithMinDifficulty {
		return denominator(totalIdentities, minDifficulty)
	}
	if totalIdentities == 0 {
		return 1
	}
	return totalIdentities
}

// RandPoEThreshold computes mining eligibility's target: t = max_u64 /
// max(total_identities, min_difficulty) · rf, truncated to 32 bits
// (spec.md §4.5 "RandPoE (mining)"). The min-difficulty floor on the
// denominator only applies while epoch is still within the
// minimum-difficulty regime (epoch <= epochsWithMinDifficulty); past that
// activation point total_identities is used raw, per spec.md §4.5/§8 S4.
func RandPoEThreshold(totalIdentities, minDifficulty uint64, rf uint32, epoch, epochsWithMinDifficulty primitives.Epoch) uint32 {
	base := math.MaxUint64 / randDenominator(totalIdentities, minDifficulty, epoch, epochsWithMinDifficulty)
	return truncateToUint32(saturatingMul64(base, uint64(rf)))
}

// RandPoEEligible reports whether vrfOutput clears the RandPoE threshold for
// replication factor rf (spec.md §4.5 "a miner is eligible iff
// vrf_output_u32 ≤ t").
func RandPoEEligible(vrfOutput uint32, totalIdentities, minDifficulty uint64, rf uint32, epoch, epochsWithMinDifficulty primitives.Epoch) (eligible bool, threshold uint32) {
	threshold = RandPoEThreshold(totalIdentities, minDifficulty, rf, epoch, epochsWithMinDifficulty)
	return vrfOutput <= threshold, threshold
}

// RepPoEThreshold computes witnessing eligibility's target: t =
// (max_u64 / max(total_active_rep, min_difficulty)) · (my_eligibility+1) ·
// num_witnesses, saturating, truncated to 32 bits (spec.md §4.5
// "RepPoE (witnessing)").
func RepPoEThreshold(totalActiveRep, minDifficulty uint64, myEligibility uint32, numWitnesses uint16) uint32 {
	base := math.MaxUint64 / denominator(totalActiveRep, minDifficulty)
	factor := uint64(myEligibility+1) * uint64(numWitnesses)
	return truncateToUint32(saturatingMul64(base, factor))
}

// RepPoEEligible reports whether vrfOutput clears the RepPoE threshold.
func RepPoEEligible(vrfOutput uint32, totalActiveRep, minDifficulty uint64, myEligibility uint32, numWitnesses uint16) (eligible bool, threshold uint32) {
	threshold = RepPoEThreshold(totalActiveRep, minDifficulty, myEligibility, numWitnesses)
	return vrfOutput <= threshold, threshold
}
