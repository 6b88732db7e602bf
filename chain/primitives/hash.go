// Package primitives defines the small, widely shared value types of the
// Witnet data model: Hash, PublicKeyHash, CheckpointBeacon, CheckpointVRF,
// OutputPointer and Epoch (spec.md §3). Every type here round-trips through
// a canonical protobuf-wire-format encoding (google.golang.org/protobuf/encoding/protowire)
// so that hash(x) == hash(y) iff their encodings are byte-identical (P1/P2).
package primitives

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// HashSize is the length in bytes of a Hash (spec.md §3: "SHA256([u8;32])").
const HashSize = 32

// Hash is the SHA-256 tagged hash variant used throughout the chain. It
// orders lexicographically by its raw bytes.
type Hash [HashSize]byte

// ZeroHash is the all-zero hash, used as the genesis block's hash_prev_block.
var ZeroHash Hash

// SHA256 computes the tagged SHA-256 hash of data.
func SHA256(data []byte) Hash {
	return Hash(sha256.Sum256(data))
}

// Bytes returns a copy of the underlying 32 bytes.
func (h Hash) Bytes() []byte {
	out := make([]byte, HashSize)
	copy(out, h[:])
	return out
}

// String renders h as lowercase hex.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Less reports whether h sorts before other, lexicographically by bytes
// (spec.md §3: "Ordered lexicographically by bytes").
func (h Hash) Less(other Hash) bool {
	for i := range h {
		if h[i] != other[i] {
			return h[i] < other[i]
		}
	}
	return false
}

// HashFromHex parses a hex string into a Hash.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, errors.Wrap(err, "decoding hash hex")
	}
	if len(b) != HashSize {
		return h, errors.Errorf("hash must be %d bytes, got %d", HashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// AppendProto appends h's protobuf wire-format encoding (a length-prefixed
// byte string, written without a field tag) to dst.
func (h Hash) AppendProto(dst []byte) []byte {
	return protowire.AppendBytes(dst, h[:])
}

// HashFromProto parses the encoding written by AppendProto.
func HashFromProto(b []byte) (Hash, error) {
	var h Hash
	raw, _ := protowire.ConsumeBytes(b)
	if len(raw) != HashSize {
		return h, errors.Errorf("protobuf hash payload must be %d bytes, got %d", HashSize, len(raw))
	}
	copy(h[:], raw)
	return h, nil
}
