package eligibility

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/witnet-go/witnet/chain/primitives"
)

func TestRandPoEEligibleLowOutputAlwaysWins(t *testing.T) {
	eligible, threshold := RandPoEEligible(0, 1000, 1, 1, 0, 100)
	require.True(t, eligible)
	require.Greater(t, threshold, uint32(0))
}

func TestRandPoEMaxOutputUsuallyIneligible(t *testing.T) {
	eligible, _ := RandPoEEligible(math.MaxUint32, 1000, 1, 1, 0, 100)
	require.False(t, eligible)
}

func TestRandPoEHigherReplicationFactorRaisesThreshold(t *testing.T) {
	_, t1 := RandPoEEligible(0, 1000, 1, 1, 0, 100)
	_, t4 := RandPoEEligible(0, 1000, 1, 4, 0, 100)
	require.Greater(t, t4, t1)
}

func TestRandPoESaturatesInsteadOfOverflowing(t *testing.T) {
	_, threshold := RandPoEEligible(0, 1, 1, math.MaxUint32, 0, 100)
	require.Equal(t, uint32(math.MaxUint32), threshold)
}

// TestRandPoEMinDifficultyFloorAppliesBeforeActivation reproduces the
// pre-fork regime: epoch is still within epochsWithMinDifficulty, so the
// floor overrides the (small) total_identities count.
func TestRandPoEMinDifficultyFloorAppliesBeforeActivation(t *testing.T) {
	threshold := RandPoEThreshold(2, 2000, 1, 5, 100)
	require.Equal(t, uint32(0x0020c49b), threshold)
}

// TestRandPoEMinDifficultyFloorLiftedPostActivation reproduces spec.md §8
// S4 exactly: total_identities=2, rf=1, min_difficulty=2000, epoch past
// epochs_with_min_difficulty (post-WIP0009) ⇒ target 0x7FFFFFFF, i.e.
// probability ~0.5.
func TestRandPoEMinDifficultyFloorLiftedPostActivation(t *testing.T) {
	threshold := RandPoEThreshold(2, 2000, 1, 101, 100)
	require.Equal(t, uint32(0x7FFFFFFF), threshold)

	eligible, sameThreshold := RandPoEEligible(0x7FFFFFFF, 2, 2000, 1, 101, 100)
	require.Equal(t, threshold, sameThreshold)
	require.True(t, eligible)
	eligible, _ = RandPoEEligible(0x80000000, 2, 2000, 1, 101, 100)
	require.False(t, eligible)
}

func TestRepPoEEligible(t *testing.T) {
	eligible, threshold := RepPoEEligible(0, 1000, 1, 0, 5)
	require.True(t, eligible)
	require.Greater(t, threshold, uint32(0))
}

func candHash(b byte) primitives.Hash {
	var h primitives.Hash
	h[0] = b
	return h
}

func TestCandidateBetterLowerSlotWins(t *testing.T) {
	a := Candidate{Slot: 1}
	b := Candidate{Slot: 2}
	require.True(t, Better(a, b))
	require.False(t, Better(b, a))
}

func TestCandidateBetterV2PrefersHigherStakePower(t *testing.T) {
	a := Candidate{Slot: 1, ProtocolV2: true, StakePower: 100}
	b := Candidate{Slot: 1, ProtocolV2: true, StakePower: 50}
	require.True(t, Better(a, b))
}

func TestCandidateBetterLegacyActiveBeatsInactiveRegardlessOfReputation(t *testing.T) {
	active := Candidate{Slot: 1, ActiveInARS: true, ActiveReputation: 1}
	inactive := Candidate{Slot: 1, ActiveInARS: false, ActiveReputation: 1000}
	require.True(t, Better(active, inactive))
}

func TestCandidateBetterFallsBackToVRFHashThenBlockHash(t *testing.T) {
	a := Candidate{Slot: 1, VRFHash: candHash(1), BlockHash: candHash(9)}
	b := Candidate{Slot: 1, VRFHash: candHash(2), BlockHash: candHash(1)}
	require.True(t, Better(a, b)) // lower VRF hash wins regardless of block hash

	c := Candidate{Slot: 1, VRFHash: candHash(5), BlockHash: candHash(1)}
	d := Candidate{Slot: 1, VRFHash: candHash(5), BlockHash: candHash(2)}
	require.True(t, Better(c, d))
}

func TestCandidateEqualOnAllFourKeys(t *testing.T) {
	a := Candidate{Slot: 1, ProtocolV2: true, StakePower: 10, VRFHash: candHash(1), BlockHash: candHash(2)}
	b := a
	require.True(t, Equal(a, b))
	require.False(t, Better(a, b))
	require.False(t, Better(b, a))
}

func TestBestPicksWinnerAcrossMultipleCandidates(t *testing.T) {
	candidates := []Candidate{
		{Slot: 3},
		{Slot: 1, VRFHash: candHash(5)},
		{Slot: 1, VRFHash: candHash(2)},
	}
	best, ok := Best(candidates)
	require.True(t, ok)
	require.Equal(t, uint32(1), best.Slot)
	require.Equal(t, candHash(2), best.VRFHash)
}
