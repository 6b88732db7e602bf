// Package txn defines the transaction data model: ValueTransferOutput,
// DataRequestOutput, KeyedSignature and the six transaction body variants
// (spec.md §3).
package txn

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/witnet-go/witnet/chain/primitives"
	"github.com/witnet-go/witnet/crypto"
)

// ValueTransferOutput is a UTXO: a payment to pkh, optionally time-locked.
type ValueTransferOutput struct {
	PKH      primitives.PublicKeyHash
	Value    uint64 // nanowits
	TimeLock uint64
}

// AppendProto encodes v as three fields: pkh (1), value (2), time_lock (3).
func (v ValueTransferOutput) AppendProto(dst []byte) []byte {
	dst = protowire.AppendTag(dst, 1, protowire.BytesType)
	dst = protowire.AppendBytes(dst, v.PKH[:])
	dst = protowire.AppendTag(dst, 2, protowire.VarintType)
	dst = protowire.AppendVarint(dst, v.Value)
	dst = protowire.AppendTag(dst, 3, protowire.VarintType)
	dst = protowire.AppendVarint(dst, v.TimeLock)
	return dst
}

// DataRequestOutput embeds the RAD script plus economic parameters for a DR
// (spec.md §3).
type DataRequestOutput struct {
	RADRequest          []byte // serialized RAD script (chain/radon script bytes)
	WitnessReward       uint64
	Witnesses           uint16
	CommitAndRevealFee  uint64
	MinConsensusPercent uint8 // must be >= 51
	Collateral          uint64
}

// AppendProto encodes o's fields in declaration order.
func (o DataRequestOutput) AppendProto(dst []byte) []byte {
	dst = protowire.AppendTag(dst, 1, protowire.BytesType)
	dst = protowire.AppendBytes(dst, o.RADRequest)
	dst = protowire.AppendTag(dst, 2, protowire.VarintType)
	dst = protowire.AppendVarint(dst, o.WitnessReward)
	dst = protowire.AppendTag(dst, 3, protowire.VarintType)
	dst = protowire.AppendVarint(dst, uint64(o.Witnesses))
	dst = protowire.AppendTag(dst, 4, protowire.VarintType)
	dst = protowire.AppendVarint(dst, o.CommitAndRevealFee)
	dst = protowire.AppendTag(dst, 5, protowire.VarintType)
	dst = protowire.AppendVarint(dst, uint64(o.MinConsensusPercent))
	dst = protowire.AppendTag(dst, 6, protowire.VarintType)
	dst = protowire.AppendVarint(dst, o.Collateral)
	return dst
}

// KeyedSignature pairs a signature with the public key that produced it.
type KeyedSignature struct {
	Signature crypto.Signature
	PublicKey crypto.PublicKey
}

// Kind enumerates the six transaction body variants (spec.md §3).
type Kind uint8

// Kind values.
const (
	KindValueTransfer Kind = iota
	KindDataRequest
	KindCommit
	KindReveal
	KindTally
	KindMint
)

// ValueTransferBody is the body of a ValueTransfer transaction.
type ValueTransferBody struct {
	Inputs  []primitives.OutputPointer
	Outputs []ValueTransferOutput
}

// DataRequestBody is the body of a DataRequest transaction.
type DataRequestBody struct {
	Inputs  []primitives.OutputPointer
	Outputs []ValueTransferOutput // change outputs
	DR      DataRequestOutput
}

// CommitBody is the body of a Commit transaction.
type CommitBody struct {
	DRPointer     primitives.Hash // the DataRequest transaction id
	CommitHash    primitives.Hash // SHA256(reveal || salt)
	VRFProof      []byte
	CollateralIns []primitives.OutputPointer
	ChangeOutputs []ValueTransferOutput
}

// RevealBody is the body of a Reveal transaction. Salt is the value
// committed to by the matching CommitBody's CommitHash
// (SHA256(Reveal || Salt)).
type RevealBody struct {
	DRPointer primitives.Hash
	Reveal    []byte // CBOR-encoded RadonTypes value
	Salt      []byte
	PKH       primitives.PublicKeyHash
}

// TallyBody is the body of a Tally transaction, produced by a miner.
type TallyBody struct {
	DRPointer     primitives.Hash
	Result        []byte // CBOR-encoded RadonTypes value
	Outputs       []ValueTransferOutput
	OutOfConsensus []primitives.PublicKeyHash
	Error         []primitives.PublicKeyHash // revealers whose reveal was an error
}

// MintBody is the body of the implicit block-reward transaction.
type MintBody struct {
	Epoch   primitives.Epoch
	Outputs []ValueTransferOutput
}

// Transaction is one typed body plus its signatures (spec.md §3: "Each has
// typed body plus vector of KeyedSignature. Body is the hashable part;
// transaction id = SHA256(body protobuf)").
type Transaction struct {
	Kind       Kind
	ValueTransfer *ValueTransferBody `json:",omitempty"`
	DataRequest   *DataRequestBody   `json:",omitempty"`
	Commit        *CommitBody        `json:",omitempty"`
	Reveal        *RevealBody        `json:",omitempty"`
	Tally         *TallyBody         `json:",omitempty"`
	Mint          *MintBody          `json:",omitempty"`
	Signatures    []KeyedSignature
}

// BodyProto returns the canonical protobuf encoding of the transaction's
// body (the hashable part).
func (t Transaction) BodyProto() []byte {
	var dst []byte
	switch t.Kind {
	case KindValueTransfer:
		for _, in := range t.ValueTransfer.Inputs {
			dst = protowire.AppendTag(dst, 1, protowire.BytesType)
			dst = protowire.AppendBytes(dst, in.TransactionID.AppendProto(nil))
		}
		for _, out := range t.ValueTransfer.Outputs {
			dst = protowire.AppendTag(dst, 2, protowire.BytesType)
			dst = protowire.AppendBytes(dst, out.AppendProto(nil))
		}
	case KindDataRequest:
		for _, in := range t.DataRequest.Inputs {
			dst = protowire.AppendTag(dst, 1, protowire.BytesType)
			dst = protowire.AppendBytes(dst, in.TransactionID.AppendProto(nil))
		}
		for _, out := range t.DataRequest.Outputs {
			dst = protowire.AppendTag(dst, 2, protowire.BytesType)
			dst = protowire.AppendBytes(dst, out.AppendProto(nil))
		}
		dst = protowire.AppendTag(dst, 3, protowire.BytesType)
		dst = protowire.AppendBytes(dst, t.DataRequest.DR.AppendProto(nil))
	case KindCommit:
		dst = protowire.AppendTag(dst, 1, protowire.BytesType)
		dst = protowire.AppendBytes(dst, t.Commit.DRPointer[:])
		dst = protowire.AppendTag(dst, 2, protowire.BytesType)
		dst = protowire.AppendBytes(dst, t.Commit.CommitHash[:])
		dst = protowire.AppendTag(dst, 3, protowire.BytesType)
		dst = protowire.AppendBytes(dst, t.Commit.VRFProof)
	case KindReveal:
		dst = protowire.AppendTag(dst, 1, protowire.BytesType)
		dst = protowire.AppendBytes(dst, t.Reveal.DRPointer[:])
		dst = protowire.AppendTag(dst, 2, protowire.BytesType)
		dst = protowire.AppendBytes(dst, t.Reveal.Reveal)
		dst = protowire.AppendTag(dst, 3, protowire.BytesType)
		dst = protowire.AppendBytes(dst, t.Reveal.Salt)
		dst = protowire.AppendTag(dst, 4, protowire.BytesType)
		dst = protowire.AppendBytes(dst, t.Reveal.PKH[:])
	case KindTally:
		dst = protowire.AppendTag(dst, 1, protowire.BytesType)
		dst = protowire.AppendBytes(dst, t.Tally.DRPointer[:])
		dst = protowire.AppendTag(dst, 2, protowire.BytesType)
		dst = protowire.AppendBytes(dst, t.Tally.Result)
		for _, out := range t.Tally.Outputs {
			dst = protowire.AppendTag(dst, 3, protowire.BytesType)
			dst = protowire.AppendBytes(dst, out.AppendProto(nil))
		}
	case KindMint:
		dst = protowire.AppendTag(dst, 1, protowire.VarintType)
		dst = protowire.AppendVarint(dst, uint64(t.Mint.Epoch))
		for _, out := range t.Mint.Outputs {
			dst = protowire.AppendTag(dst, 2, protowire.BytesType)
			dst = protowire.AppendBytes(dst, out.AppendProto(nil))
		}
	}
	return dst
}

// ID is the transaction id: SHA256 of the body's canonical protobuf
// encoding (spec.md §3).
func (t Transaction) ID() primitives.Hash {
	return primitives.SHA256(t.BodyProto())
}

// Outputs returns the transaction's value-transfer-shaped outputs, used by
// UTXO-pool insertion after a transaction is included in a consolidated
// block.
func (t Transaction) Outputs() []ValueTransferOutput {
	switch t.Kind {
	case KindValueTransfer:
		return t.ValueTransfer.Outputs
	case KindDataRequest:
		return t.DataRequest.Outputs
	case KindTally:
		return t.Tally.Outputs
	case KindMint:
		return t.Mint.Outputs
	default:
		return nil
	}
}

// Inputs returns the output pointers this transaction spends.
func (t Transaction) Inputs() []primitives.OutputPointer {
	switch t.Kind {
	case KindValueTransfer:
		return t.ValueTransfer.Inputs
	case KindDataRequest:
		return t.DataRequest.Inputs
	case KindCommit:
		return t.Commit.CollateralIns
	default:
		return nil
	}
}
