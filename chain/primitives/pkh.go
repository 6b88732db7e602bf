package primitives

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// PKHSize is the length in bytes of a PublicKeyHash (spec.md §3: "20-byte
// hash of a compressed secp256k1 public key").
const PKHSize = 20

// PublicKeyHash identifies an identity by the SHA-256 hash of its
// compressed public key, truncated to 160 bits.
type PublicKeyHash [PKHSize]byte

// PKHFromPublicKey hashes a 33-byte compressed secp256k1 public key into a
// PublicKeyHash.
func PKHFromPublicKey(compressedPubKey []byte) (PublicKeyHash, error) {
	var pkh PublicKeyHash
	if len(compressedPubKey) != 33 {
		return pkh, errors.Errorf("compressed public key must be 33 bytes, got %d", len(compressedPubKey))
	}
	sum := sha256.Sum256(compressedPubKey)
	copy(pkh[:], sum[:PKHSize])
	return pkh, nil
}

// bech32HRP maps an environment name to its Bech32 human-readable part, per
// spec.md §3 ("Rendered as Bech32 with network-dependent HRP").
func bech32HRP(environment string) string {
	switch strings.ToLower(environment) {
	case "testnet":
		return "twit"
	case "devnet":
		return "dwit"
	default:
		return "wit"
	}
}

// Bech32 renders pkh using the standard Bech32 checksum encoding with the
// HRP for environment.
func (pkh PublicKeyHash) Bech32(environment string) (string, error) {
	return encodeBech32(bech32HRP(environment), pkh[:])
}

// PKHFromBech32 parses a Bech32-encoded PKH, returning the decoded HRP too.
func PKHFromBech32(s string) (PublicKeyHash, string, error) {
	var pkh PublicKeyHash
	hrp, data, err := decodeBech32(s)
	if err != nil {
		return pkh, "", err
	}
	if len(data) != PKHSize {
		return pkh, "", errors.Errorf("decoded PKH must be %d bytes, got %d", PKHSize, len(data))
	}
	copy(pkh[:], data)
	return pkh, hrp, nil
}

// Bytes returns a copy of the underlying bytes.
func (pkh PublicKeyHash) Bytes() []byte {
	out := make([]byte, PKHSize)
	copy(out, pkh[:])
	return out
}

// String renders pkh as hex, used for logging; Bech32 is the user-facing
// encoding.
func (pkh PublicKeyHash) String() string {
	return hex.EncodeToString(pkh[:])
}

// Less orders two PKHs lexicographically by bytes, used for the DR
// witness/reveal tie-break sort (spec.md §4.4).
func (pkh PublicKeyHash) Less(other PublicKeyHash) bool {
	for i := range pkh {
		if pkh[i] != other[i] {
			return pkh[i] < other[i]
		}
	}
	return false
}
