package superblock

import (
	"github.com/prysmaticlabs/go-bitfield"

	"github.com/witnet-go/witnet/chain/primitives"
)

// Vote is a gossiped SuperBlockVote (spec.md §4.7
// "SuperBlockVote{superblock_hash, index, signature, bn256_sig}"). Signature
// validation happens in a lower layer; State only checks committee
// membership.
type Vote struct {
	SuperblockHash primitives.Hash
	Index          uint32
	Signer         primitives.PublicKeyHash
	Signature      []byte
	BN256Sig       []byte
}

// State tracks, for the current superblock index, the ballots cast for each
// candidate hash and buffers votes that arrive before the local superblock
// is built (spec.md §4.7 "Votes that arrive before the local superblock is
// built are buffered and re-evaluated after construction").
type State struct {
	index     uint32
	committee Committee
	ballots   map[primitives.Hash]bitfield.Bitlist
	buffered  []Vote
	finalized primitives.Hash
	final     bool
}

// NewState starts tracking votes for superblockIndex against committee.
func NewState(superblockIndex uint32, committee Committee) *State {
	return &State{
		index:     superblockIndex,
		committee: committee,
		ballots:   make(map[primitives.Hash]bitfield.Bitlist),
	}
}

// AddVote records a vote. Votes for an index other than the one this State
// tracks, or from a non-committee signer, are ignored; votes for the
// current index that arrive before the committee is known are buffered via
// Buffer. Returns true once >= 2/3 of committee weight has converged on a
// single hash (spec.md §4.7 "finalized when >= 2/3 of committee-weight
// supports a single hash").
func (s *State) AddVote(v Vote) bool {
	if s.final || v.Index != s.index || !s.committee.Contains(v.Signer) {
		return s.final
	}
	ballot, ok := s.ballots[v.SuperblockHash]
	if !ok {
		ballot = s.committee.NewBallot()
		s.ballots[v.SuperblockHash] = ballot
	}
	s.committee.Record(ballot, v.Signer)

	total := s.committee.Len()
	if total == 0 {
		return s.final
	}
	if 3*s.committee.Weight(ballot) >= 2*total {
		s.final = true
		s.finalized = v.SuperblockHash
	}
	return s.final
}

// Buffer stashes a vote that arrived for a superblock index not yet built
// locally.
func (s *State) Buffer(v Vote) {
	s.buffered = append(s.buffered, v)
}

// Replay re-evaluates every buffered vote for the current index against
// now-constructed committee, returning true if finality was reached.
func (s *State) Replay() bool {
	pending := s.buffered
	s.buffered = nil
	for _, v := range pending {
		if v.Index != s.index {
			s.buffered = append(s.buffered, v)
			continue
		}
		if s.AddVote(v) {
			return true
		}
	}
	return s.final
}

// Finalized reports the agreed hash and whether consensus was reached.
func (s *State) Finalized() (primitives.Hash, bool) {
	return s.finalized, s.final
}

// Mismatch reports whether finalized disagrees with the node's local
// superblock hash, meaning the node must roll back (spec.md §4.7 "on
// mismatch with local, the node rolls back").
func (s *State) Mismatch(local primitives.Hash) bool {
	return s.final && s.finalized != local
}
