package crypto

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/pkg/errors"
)

// defaultHMACKey is the standard BIP32 master-key HMAC key, used unless the
// caller supplies an override (spec.md §4.2).
var defaultHMACKey = []byte("Bitcoin seed")

// ExtendedKey is a BIP32 node: a secp256k1 scalar plus the chain code used
// to derive its children.
type ExtendedKey struct {
	Key       []byte // 32-byte scalar (private) or 33-byte compressed point (public)
	ChainCode [32]byte
	Depth     uint8
	Index     uint32
	Private   bool
}

// NewMasterKey derives the BIP32 master extended key from seed, per
// spec.md §4.2: "seed length 16..=64 bytes and optional HMAC key (default
// b\"Bitcoin seed\")".
func NewMasterKey(seed []byte, hmacKey []byte) (*ExtendedKey, error) {
	if len(seed) < 16 || len(seed) > 64 {
		return nil, errors.Errorf("seed must be 16..=64 bytes, got %d", len(seed))
	}
	if hmacKey == nil {
		hmacKey = defaultHMACKey
	}
	mac := hmac.New(sha512.New, hmacKey)
	mac.Write(seed)
	sum := mac.Sum(nil)

	key := &ExtendedKey{Private: true, Key: append([]byte{}, sum[:32]...)}
	copy(key.ChainCode[:], sum[32:])
	return key, nil
}

// Hardened reports whether child index i denotes a hardened derivation
// (i >= 2^31), per BIP32.
func Hardened(i uint32) bool {
	return i&0x80000000 != 0
}

// Child derives the i-th child of k. Hardened children (i.e. i with the
// high bit set) use the parent's private scalar in the HMAC input;
// unhardened children use the parent's serialized compressed public key,
// exactly as spec.md §4.2 prescribes.
func (k *ExtendedKey) Child(i uint32) (*ExtendedKey, error) {
	if !k.Private && Hardened(i) {
		return nil, errors.New("cannot derive hardened child from a public-only extended key")
	}

	var data []byte
	if Hardened(i) {
		data = make([]byte, 0, 37)
		data = append(data, 0x00)
		data = append(data, k.Key...)
	} else {
		pub, err := k.compressedPubKey()
		if err != nil {
			return nil, err
		}
		data = append([]byte{}, pub...)
	}
	var idxBytes [4]byte
	binary.BigEndian.PutUint32(idxBytes[:], i)
	data = append(data, idxBytes[:]...)

	mac := hmac.New(sha512.New, k.ChainCode[:])
	mac.Write(data)
	sum := mac.Sum(nil)
	il, ir := sum[:32], sum[32:]

	curveOrder := btcec.S256().N
	ilNum := new(big.Int).SetBytes(il)
	if ilNum.Cmp(curveOrder) >= 0 {
		return nil, errors.New("derived scalar >= curve order, invalid child index")
	}

	child := &ExtendedKey{Depth: k.Depth + 1, Index: i, Private: k.Private}
	copy(child.ChainCode[:], ir)

	if k.Private {
		parentScalar := new(big.Int).SetBytes(k.Key)
		childScalar := new(big.Int).Add(parentScalar, ilNum)
		childScalar.Mod(childScalar, curveOrder)
		if childScalar.Sign() == 0 {
			return nil, errors.New("derived private scalar is zero, invalid child index")
		}
		buf := make([]byte, 32)
		childScalar.FillBytes(buf)
		child.Key = buf
		return child, nil
	}

	parentPub, err := k.compressedPubKey()
	if err != nil {
		return nil, err
	}
	parentX, parentY, err := decompress(parentPub)
	if err != nil {
		return nil, err
	}
	ilX, ilY := btcec.S256().ScalarBaseMult(il)
	sumX, sumY := btcec.S256().Add(ilX, ilY, parentX, parentY)
	child.Key = compressPoint(sumX, sumY)
	return child, nil
}

// compressedPubKey returns the 33-byte compressed public key for k,
// computing it from the private scalar when k is a private extended key.
func (k *ExtendedKey) compressedPubKey() ([]byte, error) {
	if !k.Private {
		return k.Key, nil
	}
	_, pub := btcec.PrivKeyFromBytes(k.Key)
	return pub.SerializeCompressed(), nil
}

func decompress(compressed []byte) (*big.Int, *big.Int, error) {
	pub, err := btcec.ParsePubKey(compressed)
	if err != nil {
		return nil, nil, err
	}
	return pub.X(), pub.Y(), nil
}

func compressPoint(x, y *big.Int) []byte {
	out := make([]byte, 33)
	if y.Bit(0) == 0 {
		out[0] = 0x02
	} else {
		out[0] = 0x03
	}
	x.FillBytes(out[1:])
	return out
}
