// Package superblock implements periodic checkpointing: building a
// SuperBlock every superblock_period blocks, collecting ARS-signed votes
// from the current signing committee, and declaring a superblock final once
// >= 2/3 of committee weight agrees on one hash (spec.md §4.7).
package superblock

import (
	"sort"

	"github.com/witnet-go/witnet/chain/block"
	"github.com/witnet-go/witnet/chain/primitives"
)

// SuperBlock is the checkpoint committed every superblock_period blocks
// (spec.md §3 "SuperBlock").
type SuperBlock struct {
	DataRequestRoot                primitives.Hash
	TallyRoot                      primitives.Hash
	ARSRoot                        primitives.Hash
	Index                          uint32
	LastBlock                      primitives.Hash
	LastBlockInPreviousSuperblock  primitives.Hash
	SigningCommitteeLength         uint32
	ARSLength                      uint32
}

// Hash is the superblock_hash referenced by SuperBlockVote: SHA-256 over
// DataRequestRoot, TallyRoot, ARSRoot, LastBlock and
// LastBlockInPreviousSuperblock, followed by Index, SigningCommitteeLength
// and ARSLength as big-endian uint32s.
func (sb SuperBlock) Hash() primitives.Hash {
	buf := make([]byte, 0, 32*4+4+4+4)
	buf = append(buf, sb.DataRequestRoot.Bytes()...)
	buf = append(buf, sb.TallyRoot.Bytes()...)
	buf = append(buf, sb.ARSRoot.Bytes()...)
	buf = append(buf, sb.LastBlock.Bytes()...)
	buf = append(buf, sb.LastBlockInPreviousSuperblock.Bytes()...)
	buf = appendUint32(buf, sb.Index)
	buf = appendUint32(buf, sb.SigningCommitteeLength)
	buf = appendUint32(buf, sb.ARSLength)
	return primitives.SHA256(buf)
}

func appendUint32(dst []byte, v uint32) []byte {
	return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// arsRoot is the Merkle root of the sorted ARS PKHs (spec.md §4.7 "Merkle
// roots of ... the sorted ARS PKHs"). An empty ARS roots to the hash of the
// zero-value PKH, matching P10's `ars_root == PKH::default().hash()`.
func arsRoot(ars []primitives.PublicKeyHash) primitives.Hash {
	if len(ars) == 0 {
		var zero primitives.PublicKeyHash
		return primitives.SHA256(zero.Bytes())
	}
	sorted := append([]primitives.PublicKeyHash{}, ars...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	leaves := make([]primitives.Hash, len(sorted))
	for i, pkh := range sorted {
		leaves[i] = primitives.SHA256(pkh.Bytes())
	}
	return block.MerkleRoot(leaves)
}

// Build implements mining_build_superblock: given the consolidated blocks
// since the previous superblock, the current ARS membership, the next
// index and the previous superblock's last-block hash, returns the new
// SuperBlock, or false if there are no blocks to checkpoint (spec.md §4.7,
// P10: "mining_build_superblock([], [], 0, H0) == None").
func Build(blocks []block.Block, ars []primitives.PublicKeyHash, index uint32, prevLastBlock primitives.Hash, committeeLength uint32) (SuperBlock, bool) {
	if len(blocks) == 0 {
		return SuperBlock{}, false
	}
	drRoots := make([]primitives.Hash, len(blocks))
	tallyRoots := make([]primitives.Hash, len(blocks))
	for i, b := range blocks {
		drRoots[i] = b.Header.MerkleRoots.DR
		tallyRoots[i] = b.Header.MerkleRoots.Tally
	}
	last := blocks[len(blocks)-1]
	return SuperBlock{
		DataRequestRoot:               block.MerkleRoot(drRoots),
		TallyRoot:                     block.MerkleRoot(tallyRoots),
		ARSRoot:                       arsRoot(ars),
		Index:                         index,
		LastBlock:                     last.ID(),
		LastBlockInPreviousSuperblock: prevLastBlock,
		SigningCommitteeLength:        committeeLength,
		ARSLength:                     uint32(len(ars)),
	}, true
}
