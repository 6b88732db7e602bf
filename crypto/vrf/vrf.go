// Package vrf implements ECVRF-SECP256K1-SHA256-TAI, the verifiable random
// function used for both mining eligibility (RandPoE) and witnessing
// eligibility (RepPoE), per spec.md §4.2/§4.5. The construction follows
// RFC 9381's generic ECVRF template (hash-to-curve via try-and-increment,
// Schnorr-style proof of discrete-log equality) instantiated over the
// secp256k1 curve using github.com/btcsuite/btcd/btcec/v2's pure-Go point
// arithmetic, since go-ethereum's secp256k1 bindings only expose
// sign/verify/recover, not the raw curve operations a VRF proof needs.
package vrf

import (
	"crypto/sha256"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/pkg/errors"
)

const suiteID = 0xFE

var curve = btcec.S256()

// Proof is a serialized ECVRF proof: gamma (33-byte compressed point),
// c (16 bytes) and s (32 bytes), concatenated, per RFC 9381 §5.1.
type Proof [81]byte

// Output is the 32-byte VRF output (beta), i.e. SHA-256(suite || 0x03 || gamma).
type Output [32]byte

// Prove computes pi = ECVRF_prove(sk, alpha) and beta = proof_to_hash(pi).
func Prove(sk []byte, alpha []byte) (Proof, Output, error) {
	x := new(big.Int).SetBytes(sk)
	if x.Sign() == 0 || x.Cmp(curve.N) >= 0 {
		return Proof{}, Output{}, errors.New("vrf: private scalar out of range")
	}
	yX, yY := curve.ScalarBaseMult(sk)

	hx, hy, err := hashToCurve(yX, yY, alpha)
	if err != nil {
		return Proof{}, Output{}, err
	}

	gammaX, gammaY := curve.ScalarMult(hx, hy, sk)

	k := nonceFromScalarAndPoint(sk, hx, hy)
	kGx, kGy := curve.ScalarBaseMult(k)
	kHx, kHy := curve.ScalarMult(hx, hy, k)

	c := hashPoints(hx, hy, gammaX, gammaY, kGx, kGy, kHx, kHy)

	s := new(big.Int).Mul(c, x)
	s.Add(s, new(big.Int).SetBytes(k))
	s.Mod(s, curve.N)

	var proof Proof
	copy(proof[:33], compress(gammaX, gammaY))
	c.FillBytes(proof[33:49]) // c is truncated to 16 bytes, RFC 9381 cLen
	s.FillBytes(proof[49:81])

	out := gammaToOutput(gammaX, gammaY)
	return proof, out, nil
}

// Verify checks pi against pk and alpha, returning beta on success.
func Verify(pk []byte, pi Proof, alpha []byte) (Output, error) {
	yX, yY, err := decompress(pk)
	if err != nil {
		return Output{}, errors.Wrap(err, "vrf: invalid public key")
	}
	gammaX, gammaY, err := decompress(pi[:33])
	if err != nil {
		return Output{}, errors.Wrap(err, "vrf: invalid gamma in proof")
	}
	c := new(big.Int).SetBytes(pi[33:49])
	s := new(big.Int).SetBytes(pi[49:81])
	if s.Cmp(curve.N) >= 0 {
		return Output{}, errors.New("vrf: s out of range")
	}

	hx, hy, err := hashToCurve(yX, yY, alpha)
	if err != nil {
		return Output{}, err
	}

	// U = s*G - c*Y
	sGx, sGy := curve.ScalarBaseMult(s.Bytes())
	cYx, cYy := curve.ScalarMult(yX, yY, c.Bytes())
	ux, uy := curve.Add(sGx, sGy, cYx, negate(cYy))

	// V = s*H - c*gamma
	sHx, sHy := curve.ScalarMult(hx, hy, s.Bytes())
	cGx, cGy := curve.ScalarMult(gammaX, gammaY, c.Bytes())
	vx, vy := curve.Add(sHx, sHy, cGx, negate(cGy))

	cPrime := hashPoints(hx, hy, gammaX, gammaY, ux, uy, vx, vy)
	if cPrime.Cmp(c) != 0 {
		return Output{}, errors.New("vrf: proof verification failed")
	}

	return gammaToOutput(gammaX, gammaY), nil
}

// ProofToHash extracts beta from a proof without re-verifying it, used by
// callers that have already checked the proof once (e.g. replaying a block
// whose eligibility has already been validated).
func ProofToHash(pi Proof) (Output, error) {
	gammaX, gammaY, err := decompress(pi[:33])
	if err != nil {
		return Output{}, err
	}
	return gammaToOutput(gammaX, gammaY), nil
}

// Uint32 truncates a VRF output to its first 32 bits, big-endian, per
// spec.md §4.2 ("truncated to 32 bits (big-endian first word) for threshold
// comparison").
func (o Output) Uint32() uint32 {
	return uint32(o[0])<<24 | uint32(o[1])<<16 | uint32(o[2])<<8 | uint32(o[3])
}

func gammaToOutput(x, y *big.Int) Output {
	h := sha256.New()
	h.Write([]byte{suiteID, 0x03})
	h.Write(compress(x, y))
	var out Output
	copy(out[:], h.Sum(nil))
	return out
}

func hashPoints(coords ...*big.Int) *big.Int {
	h := sha256.New()
	h.Write([]byte{suiteID, 0x02})
	for i := 0; i < len(coords); i += 2 {
		h.Write(compress(coords[i], coords[i+1]))
	}
	sum := h.Sum(nil)
	return new(big.Int).SetBytes(sum[:16])
}

// hashToCurve implements ECVRF_hash_to_curve_try_and_increment: repeatedly
// hash (suite || 0x01 || Y || alpha || ctr) as a candidate compressed point
// until one decompresses onto the curve.
func hashToCurve(yX, yY *big.Int, alpha []byte) (*big.Int, *big.Int, error) {
	yCompressed := compress(yX, yY)
	for ctr := 0; ctr < 256; ctr++ {
		h := sha256.New()
		h.Write([]byte{suiteID, 0x01})
		h.Write(yCompressed)
		h.Write(alpha)
		h.Write([]byte{byte(ctr)})
		sum := h.Sum(nil)

		candidate := make([]byte, 33)
		candidate[0] = 0x02
		copy(candidate[1:], sum)
		if x, y, err := decompress(candidate); err == nil {
			return x, y, nil
		}
	}
	return nil, nil, errors.New("vrf: hash_to_curve exhausted all counters")
}

// nonceFromScalarAndPoint derives a deterministic per-proof nonce k from
// the private scalar and H, analogous in spirit to RFC 6979 but using a
// single SHA-256 pass, since the consensus-critical requirement is only
// that the same (sk, alpha) always yields the same proof, not resistance
// to a particular fault-injection model.
func nonceFromScalarAndPoint(sk []byte, hx, hy *big.Int) []byte {
	h := sha256.New()
	h.Write([]byte{suiteID, 0x00})
	h.Write(sk)
	h.Write(compress(hx, hy))
	sum := h.Sum(nil)
	k := new(big.Int).SetBytes(sum)
	k.Mod(k, curve.N)
	if k.Sign() == 0 {
		k.SetInt64(1)
	}
	return k.Bytes()
}

func compress(x, y *big.Int) []byte {
	out := make([]byte, 33)
	if y.Bit(0) == 0 {
		out[0] = 0x02
	} else {
		out[0] = 0x03
	}
	x.FillBytes(out[1:])
	return out
}

func decompress(compressed []byte) (*big.Int, *big.Int, error) {
	pub, err := btcec.ParsePubKey(compressed)
	if err != nil {
		return nil, nil, err
	}
	return pub.X(), pub.Y(), nil
}

func negate(y *big.Int) *big.Int {
	neg := new(big.Int).Sub(curve.P, y)
	return neg.Mod(neg, curve.P)
}
