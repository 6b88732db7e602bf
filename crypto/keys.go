// Package crypto implements the secp256k1 signing, BIP32 key derivation and
// BIP39 mnemonic handling required by spec.md §4.2. ECDSA sign/verify is
// grounded on github.com/ethereum/go-ethereum/crypto, the same library
// go-ethereum itself uses for account keys; BIP32 derivation is implemented
// directly against btcec's curve arithmetic since neither teacher repo
// carries an off-the-shelf HD-wallet-for-secp256k1 package (prysm's wallet
// libraries are BLS12-381-only).
package crypto

import (
	"crypto/ecdsa"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// PublicKeySize is the length, in bytes, of a compressed secp256k1 public
// key as used throughout the data model (spec.md §3 "PublicKeyHash").
const PublicKeySize = 33

// PrivateKey wraps a secp256k1 private key.
type PrivateKey struct {
	key *ecdsa.PrivateKey
}

// PublicKey is the 33-byte compressed serialization of a secp256k1 point.
type PublicKey [PublicKeySize]byte

// GeneratePrivateKey returns a fresh, randomly sampled private key.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := gethcrypto.GenerateKey()
	if err != nil {
		return nil, errors.Wrap(err, "generating secp256k1 key")
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes parses a 32-byte scalar into a PrivateKey.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	key, err := gethcrypto.ToECDSA(b)
	if err != nil {
		return nil, errors.Wrap(err, "parsing secp256k1 private key")
	}
	return &PrivateKey{key: key}, nil
}

// Bytes returns the 32-byte big-endian scalar.
func (p *PrivateKey) Bytes() []byte {
	return gethcrypto.FromECDSA(p.key)
}

// PublicKey returns the compressed public key corresponding to p.
func (p *PrivateKey) PublicKey() PublicKey {
	var pk PublicKey
	copy(pk[:], gethcrypto.CompressPubkey(&p.key.PublicKey))
	return pk
}

// Sign produces a DER-encoded ECDSA signature over digest, a SHA-256 hash
// the caller has already computed, matching the KeyedSignature body
// described in spec.md §3.
func (p *PrivateKey) Sign(digest [32]byte) (Signature, error) {
	sig, err := signRecoverable(p.key, digest[:])
	if err != nil {
		return Signature{}, err
	}
	return sig, nil
}

// PublicKeyFromBytes parses a compressed 33-byte public key.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var pk PublicKey
	if len(b) != PublicKeySize {
		return pk, errors.Errorf("public key must be %d bytes, got %d", PublicKeySize, len(b))
	}
	if _, err := gethcrypto.DecompressPubkey(b); err != nil {
		return pk, errors.Wrap(err, "decompressing secp256k1 public key")
	}
	copy(pk[:], b)
	return pk, nil
}

func (pk PublicKey) ecdsa() (*ecdsa.PublicKey, error) {
	return gethcrypto.DecompressPubkey(pk[:])
}

// Signature is a typed wrapper for a DER-encoded ECDSA signature, keeping
// room for future signature kinds (spec.md §3: "only Secp256k1 variant
// today").
type Signature struct {
	Kind SignatureKind
	DER  []byte
}

// SignatureKind enumerates the KeyedSignature variants.
type SignatureKind uint8

// SignatureKind values.
const (
	SignatureSecp256k1 SignatureKind = iota
)

func signRecoverable(key *ecdsa.PrivateKey, digest []byte) (Signature, error) {
	sig, err := gethcrypto.Sign(digest, key)
	if err != nil {
		return Signature{}, errors.Wrap(err, "signing digest")
	}
	// gethcrypto.Sign returns a 65-byte [R || S || V] recoverable signature;
	// the wire format only needs R||S, re-encoded as ASN.1 DER below.
	der, err := rsToDER(sig[:32], sig[32:64])
	if err != nil {
		return Signature{}, err
	}
	return Signature{Kind: SignatureSecp256k1, DER: der}, nil
}

// Verify checks that sig is a valid signature over digest by pk.
func Verify(pk PublicKey, digest [32]byte, sig Signature) (bool, error) {
	if sig.Kind != SignatureSecp256k1 {
		return false, errors.Errorf("unsupported signature kind %d", sig.Kind)
	}
	pub, err := pk.ecdsa()
	if err != nil {
		return false, err
	}
	r, s, err := derToRS(sig.DER)
	if err != nil {
		return false, err
	}
	rsSig := append(append([]byte{}, r...), s...)
	pubBytes := gethcrypto.FromECDSAPub(pub)
	return gethcrypto.VerifySignature(pubBytes, digest[:], rsSig), nil
}
