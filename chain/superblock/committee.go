package superblock

import (
	"sort"

	"github.com/prysmaticlabs/go-bitfield"

	"github.com/witnet-go/witnet/chain/primitives"
)

// Committee is the signing committee for one superblock index: the ARS
// members eligible to vote, in a fixed order, plus an optional emergency
// override (spec.md §4.7 "derived from ARS + an emergency committee
// override for specific superblock-index ranges on mainnet").
type Committee struct {
	members []primitives.PublicKeyHash
	index   map[primitives.PublicKeyHash]int
}

// EmergencyCommittee overrides the ARS-derived committee for a closed
// [FromIndex, ToIndex] range of superblock indices, matching mainnet's
// historical emergency committees.
type EmergencyCommittee struct {
	FromIndex uint32
	ToIndex   uint32
	Members   []primitives.PublicKeyHash
}

// NewCommittee builds the signing committee for superblockIndex: the
// emergency override if one matches, otherwise every ARS member, sorted for
// a deterministic bit assignment.
func NewCommittee(ars []primitives.PublicKeyHash, superblockIndex uint32, emergency []EmergencyCommittee) Committee {
	members := ars
	for _, ec := range emergency {
		if superblockIndex >= ec.FromIndex && superblockIndex <= ec.ToIndex {
			members = ec.Members
			break
		}
	}
	sorted := append([]primitives.PublicKeyHash{}, members...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	idx := make(map[primitives.PublicKeyHash]int, len(sorted))
	for i, m := range sorted {
		idx[m] = i
	}
	return Committee{members: sorted, index: idx}
}

// Len is the committee's signing_committee_length.
func (c Committee) Len() int { return len(c.members) }

// Contains reports whether pkh is a committee member (spec.md §4.7
// "SuperBlockState only checks that the vote signer is in the ARS").
func (c Committee) Contains(pkh primitives.PublicKeyHash) bool {
	_, ok := c.index[pkh]
	return ok
}

// NewBallot returns an empty committee-sized bitlist recording which
// members have voted for one candidate hash, using go-bitfield the way the
// rest of the retrieved pack tracks fixed-size membership sets.
func (c Committee) NewBallot() bitfield.Bitlist {
	return bitfield.NewBitlist(uint64(len(c.members)))
}

// Record marks pkh as having voted in ballot; a no-op if pkh is not a
// committee member.
func (c Committee) Record(ballot bitfield.Bitlist, pkh primitives.PublicKeyHash) {
	i, ok := c.index[pkh]
	if !ok {
		return
	}
	ballot.SetBitAt(uint64(i), true)
}

// Weight returns the number of members marked in ballot.
func (c Committee) Weight(ballot bitfield.Bitlist) int {
	return int(ballot.Count())
}
