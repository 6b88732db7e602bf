package primitives

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Epoch is an integer protocol time step (spec.md §2 GLOSSARY).
type Epoch uint32

// CheckpointBeacon identifies a chain tip: the epoch it was consolidated at
// plus the hash of the block it points to (spec.md §3).
type CheckpointBeacon struct {
	Checkpoint    Epoch
	HashPrevBlock Hash
}

// CheckpointVRF is the rolling-VRF-input analogue of CheckpointBeacon,
// updated each epoch from the winning candidate's VRF proof (spec.md §3,
// SPEC_FULL.md §3 "CheckpointVRF").
type CheckpointVRF struct {
	Checkpoint  Epoch
	HashPrevVRF Hash
}

// AppendProto encodes b as two protobuf fields: checkpoint (varint, field 1)
// and hash_prev_block (length-delimited, field 2).
func (b CheckpointBeacon) AppendProto(dst []byte) []byte {
	dst = protowire.AppendTag(dst, 1, protowire.VarintType)
	dst = protowire.AppendVarint(dst, uint64(b.Checkpoint))
	dst = protowire.AppendTag(dst, 2, protowire.BytesType)
	dst = protowire.AppendBytes(dst, b.HashPrevBlock[:])
	return dst
}

// Hash computes the SHA-256 hash of b's canonical protobuf encoding.
func (b CheckpointBeacon) Hash() Hash {
	return SHA256(b.AppendProto(nil))
}

func (b CheckpointBeacon) String() string {
	return fmt.Sprintf("CheckpointBeacon{checkpoint:%d, hash_prev_block:%s}", b.Checkpoint, b.HashPrevBlock)
}

// AppendProto encodes v identically in shape to CheckpointBeacon.
func (v CheckpointVRF) AppendProto(dst []byte) []byte {
	dst = protowire.AppendTag(dst, 1, protowire.VarintType)
	dst = protowire.AppendVarint(dst, uint64(v.Checkpoint))
	dst = protowire.AppendTag(dst, 2, protowire.BytesType)
	dst = protowire.AppendBytes(dst, v.HashPrevVRF[:])
	return dst
}

// OutputPointer addresses one output of a previously created transaction
// (spec.md §3).
type OutputPointer struct {
	TransactionID Hash
	OutputIndex   uint32
}

// String renders p as "<hex>:<index>" (spec.md §3).
func (p OutputPointer) String() string {
	return fmt.Sprintf("%s:%d", p.TransactionID, p.OutputIndex)
}

// OutputPointerFromString parses the "<hex>:<index>" format.
func OutputPointerFromString(s string) (OutputPointer, error) {
	var p OutputPointer
	sepIdx := strings.LastIndexByte(s, ':')
	if sepIdx < 0 {
		return p, errors.Errorf("output pointer %q missing ':' separator", s)
	}
	h, err := HashFromHex(s[:sepIdx])
	if err != nil {
		return p, errors.Wrap(err, "parsing output pointer transaction id")
	}
	idx, err := strconv.ParseUint(s[sepIdx+1:], 10, 32)
	if err != nil {
		return p, errors.Wrap(err, "parsing output pointer index")
	}
	p.TransactionID = h
	p.OutputIndex = uint32(idx)
	return p, nil
}
