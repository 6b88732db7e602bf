// Package block implements the Block/BlockHeader data model and Merkle-root
// computation (spec.md §3).
package block

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/witnet-go/witnet/chain/primitives"
	"github.com/witnet-go/witnet/chain/txn"
	"github.com/witnet-go/witnet/crypto"
)

// BlockEligibilityClaim carries the VRF proof that made the miner eligible
// to propose this block (spec.md §3/§4.5).
type BlockEligibilityClaim struct {
	VRFProof  []byte
	PublicKey crypto.PublicKey
}

// MerkleRoots bundles the six Merkle roots carried in a block header.
type MerkleRoots struct {
	Mint   primitives.Hash
	VT     primitives.Hash
	DR     primitives.Hash
	Commit primitives.Hash
	Reveal primitives.Hash
	Tally  primitives.Hash
}

// BlockHeader is the hashable part of a block; Block.ID() = SHA256(header).
type BlockHeader struct {
	Version      uint32
	Beacon       primitives.CheckpointBeacon
	MerkleRoots  MerkleRoots
	Eligibility  BlockEligibilityClaim
	BN256PublicKey []byte // optional
}

// Block is a full block: header, aggregate signature and transactions,
// partitioned by kind (spec.md §3).
type Block struct {
	Header    BlockHeader
	BlockSig  crypto.Signature
	Mint      txn.Transaction
	ValueTransfers []txn.Transaction
	DataRequests   []txn.Transaction
	Commits        []txn.Transaction
	Reveals        []txn.Transaction
	Tallies        []txn.Transaction
}

func appendMerkleRoot(dst []byte, field int, root primitives.Hash) []byte {
	dst = protowire.AppendTag(dst, protowire.Number(field), protowire.BytesType)
	return protowire.AppendBytes(dst, root[:])
}

// AppendProto encodes the header canonically for hashing/wire transfer.
func (h BlockHeader) AppendProto(dst []byte) []byte {
	dst = protowire.AppendTag(dst, 1, protowire.VarintType)
	dst = protowire.AppendVarint(dst, uint64(h.Version))
	dst = protowire.AppendTag(dst, 2, protowire.BytesType)
	dst = protowire.AppendBytes(dst, h.Beacon.AppendProto(nil))
	dst = appendMerkleRoot(dst, 3, h.MerkleRoots.Mint)
	dst = appendMerkleRoot(dst, 4, h.MerkleRoots.VT)
	dst = appendMerkleRoot(dst, 5, h.MerkleRoots.DR)
	dst = appendMerkleRoot(dst, 6, h.MerkleRoots.Commit)
	dst = appendMerkleRoot(dst, 7, h.MerkleRoots.Reveal)
	dst = appendMerkleRoot(dst, 8, h.MerkleRoots.Tally)
	dst = protowire.AppendTag(dst, 9, protowire.BytesType)
	dst = protowire.AppendBytes(dst, h.Eligibility.VRFProof)
	return dst
}

// ID is the block id: SHA256 of the canonical header encoding.
func (h BlockHeader) ID() primitives.Hash {
	return primitives.SHA256(h.AppendProto(nil))
}

// ID is a convenience forwarding to the header's ID.
func (b Block) ID() primitives.Hash {
	return b.Header.ID()
}

// AllTransactions returns every transaction in the block, in the canonical
// per-kind order used for Merkle-root computation: mint, VT, DR, commit,
// reveal, tally.
func (b Block) AllTransactions() []txn.Transaction {
	all := make([]txn.Transaction, 0, 1+len(b.ValueTransfers)+len(b.DataRequests)+len(b.Commits)+len(b.Reveals)+len(b.Tallies))
	all = append(all, b.Mint)
	all = append(all, b.ValueTransfers...)
	all = append(all, b.DataRequests...)
	all = append(all, b.Commits...)
	all = append(all, b.Reveals...)
	all = append(all, b.Tallies...)
	return all
}

// ComputeMerkleRoots recomputes the six roots from the block's current
// transaction lists, used both to build a candidate header and to verify
// invariant I3 ("Block header Merkle roots equal Merkle roots computed from
// txns").
func (b Block) ComputeMerkleRoots() MerkleRoots {
	return MerkleRoots{
		Mint:   MerkleRoot(txIDs([]txn.Transaction{b.Mint})),
		VT:     MerkleRoot(txIDs(b.ValueTransfers)),
		DR:     MerkleRoot(txIDs(b.DataRequests)),
		Commit: MerkleRoot(txIDs(b.Commits)),
		Reveal: MerkleRoot(txIDs(b.Reveals)),
		Tally:  MerkleRoot(txIDs(b.Tallies)),
	}
}

func txIDs(txs []txn.Transaction) []primitives.Hash {
	ids := make([]primitives.Hash, len(txs))
	for i, t := range txs {
		ids[i] = t.ID()
	}
	return ids
}

// VerifyMerkleRoots checks invariant I3 against the header as given.
func (b Block) VerifyMerkleRoots() bool {
	got := b.ComputeMerkleRoots()
	want := b.Header.MerkleRoots
	return got.Mint == want.Mint && got.VT == want.VT && got.DR == want.DR &&
		got.Commit == want.Commit && got.Reveal == want.Reveal && got.Tally == want.Tally
}
