package superblock

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/witnet-go/witnet/chain/primitives"
)

func TestAddVoteFinalizesAtTwoThirdsWeight(t *testing.T) {
	committee := NewCommittee([]primitives.PublicKeyHash{pkh(1), pkh(2), pkh(3)}, 0, nil)
	state := NewState(0, committee)

	hash := primitives.SHA256([]byte("sb"))
	require.False(t, state.AddVote(Vote{SuperblockHash: hash, Index: 0, Signer: pkh(1)}))
	require.True(t, state.AddVote(Vote{SuperblockHash: hash, Index: 0, Signer: pkh(2)}))
	final := state.AddVote(Vote{SuperblockHash: primitives.SHA256([]byte("other")), Index: 0, Signer: pkh(3)})
	require.True(t, final)

	got, ok := state.Finalized()
	require.True(t, ok)
	require.Equal(t, hash, got)
}

func TestAddVoteIgnoresNonCommitteeSigner(t *testing.T) {
	committee := NewCommittee([]primitives.PublicKeyHash{pkh(1), pkh(2), pkh(3)}, 0, nil)
	state := NewState(0, committee)
	hash := primitives.SHA256([]byte("sb"))
	require.False(t, state.AddVote(Vote{SuperblockHash: hash, Index: 0, Signer: pkh(99)}))
	_, ok := state.Finalized()
	require.False(t, ok)
}

func TestBufferedVotesReplayAfterConstruction(t *testing.T) {
	committee := NewCommittee([]primitives.PublicKeyHash{pkh(1), pkh(2), pkh(3)}, 0, nil)
	state := NewState(0, committee)
	hash := primitives.SHA256([]byte("sb"))

	state.Buffer(Vote{SuperblockHash: hash, Index: 0, Signer: pkh(1)})
	state.Buffer(Vote{SuperblockHash: hash, Index: 0, Signer: pkh(2)})
	require.False(t, state.Replay())

	final := state.AddVote(Vote{SuperblockHash: hash, Index: 0, Signer: pkh(3)})
	require.True(t, final)
}

func TestMismatchDetectsDisagreementWithLocal(t *testing.T) {
	committee := NewCommittee([]primitives.PublicKeyHash{pkh(1), pkh(2), pkh(3)}, 0, nil)
	state := NewState(0, committee)
	remote := primitives.SHA256([]byte("remote"))
	state.AddVote(Vote{SuperblockHash: remote, Index: 0, Signer: pkh(1)})
	state.AddVote(Vote{SuperblockHash: remote, Index: 0, Signer: pkh(2)})
	state.AddVote(Vote{SuperblockHash: remote, Index: 0, Signer: pkh(3)})

	local := primitives.SHA256([]byte("local"))
	require.True(t, state.Mismatch(local))
	require.False(t, state.Mismatch(remote))
}
