package reputation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/witnet-go/witnet/chain/primitives"
)

func id(b byte) primitives.PublicKeyHash {
	var p primitives.PublicKeyHash
	p[0] = b
	return p
}

func TestARSMembershipWithinActivityPeriod(t *testing.T) {
	a := NewARS(2)
	a.Push([]primitives.PublicKeyHash{id(1)})
	a.Push([]primitives.PublicKeyHash{id(2)})
	require.True(t, a.Contains(id(1)))
	require.True(t, a.Contains(id(2)))

	a.Push([]primitives.PublicKeyHash{id(3)}) // evicts the id(1) push
	require.False(t, a.Contains(id(1)))
	require.True(t, a.Contains(id(2)))
	require.True(t, a.Contains(id(3)))
}

func TestTRSGainAndExpire(t *testing.T) {
	trs := NewTRS()
	trs.Gain(1, []Gain{{PKH: id(1), Reputation: 10}})
	trs.Gain(2, []Gain{{PKH: id(1), Reputation: 5}})
	require.Equal(t, uint32(15), trs.Total(id(1)))

	trs.Expire(1)
	require.Equal(t, uint32(5), trs.Total(id(1)))
}

func TestTRSPenalizeManyScalesProportionally(t *testing.T) {
	trs := NewTRS()
	trs.Gain(1, []Gain{{PKH: id(1), Reputation: 60}})
	trs.Gain(2, []Gain{{PKH: id(1), Reputation: 40}})
	require.Equal(t, uint32(100), trs.Total(id(1)))

	trs.PenalizeMany(func(pkh primitives.PublicKeyHash, current uint32) uint32 {
		return current / 2
	})
	require.Equal(t, uint32(50), trs.Total(id(1)))
}

func TestActiveReputationSumOnlyCountsARSMembers(t *testing.T) {
	e := NewEngine(10)
	e.Gain(1, []Gain{{PKH: id(1), Reputation: 50}, {PKH: id(2), Reputation: 20}})
	e.Push([]primitives.PublicKeyHash{id(1)})

	require.Equal(t, uint64(50), e.ActiveReputationSum())
}

func TestThresholdFactorMonotonicInARSSize(t *testing.T) {
	e := NewEngine(10)
	e.Push([]primitives.PublicKeyHash{id(1), id(2), id(3), id(4)})

	require.Equal(t, uint64(0), e.ThresholdFactor(0))
	f1 := e.ThresholdFactor(1)
	f4 := e.ThresholdFactor(4)
	require.GreaterOrEqual(t, f1, f4)
	require.Equal(t, uint64(1), f4) // exactly enough ARS members for 4 witnesses
}
