package sessions

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/witnet-go/witnet/chain/primitives"
)

// TestBeaconBookkeepingP9 implements spec.md P9 literally: outbound limit 2,
// peers {A,B}; A sends a beacon, B sends none.
func TestBeaconBookkeepingP9(t *testing.T) {
	c := NewBeaconCollector([]string{"A", "B"})
	v0 := primitives.CheckpointBeacon{Checkpoint: 0, HashPrevBlock: primitives.ZeroHash}
	c.RecordBeacon("A", v0)

	got, ok := c.Send()
	require.True(t, ok)
	require.Equal(t, map[string]primitives.CheckpointBeacon{"A": v0}, got.WithBeacon)
	require.Equal(t, []string{"B"}, got.NotBeacon)

	_, ok = c.Send()
	require.False(t, ok)

	c.NewEpoch([]string{"A", "B"})
	got, ok = c.Send()
	require.True(t, ok)
	require.Empty(t, got.WithBeacon)
	require.ElementsMatch(t, []string{"A", "B"}, got.NotBeacon)
}

func TestRecordBeaconMovesPeerFromNotBeaconToWithBeacon(t *testing.T) {
	c := NewBeaconCollector([]string{"A"})
	c.RecordBeacon("A", primitives.CheckpointBeacon{Checkpoint: 5})
	got, ok := c.Send()
	require.True(t, ok)
	require.Empty(t, got.NotBeacon)
	require.Contains(t, got.WithBeacon, "A")
}
