package vrf

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

func genKeyPair(t *testing.T) ([]byte, []byte) {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	sk := priv.Serialize()
	pk := priv.PubKey().SerializeCompressed()
	return sk, pk
}

func TestProveVerifyRoundTrip(t *testing.T) {
	sk, pk := genKeyPair(t)
	alpha := []byte("checkpoint-vrf-input")

	proof, beta, err := Prove(sk, alpha)
	require.NoError(t, err)

	gotBeta, err := Verify(pk, proof, alpha)
	require.NoError(t, err)
	require.Equal(t, beta, gotBeta)
}

func TestProveIsDeterministic(t *testing.T) {
	sk, _ := genKeyPair(t)
	alpha := []byte("deterministic-input")

	proof1, beta1, err := Prove(sk, alpha)
	require.NoError(t, err)
	proof2, beta2, err := Prove(sk, alpha)
	require.NoError(t, err)

	require.Equal(t, proof1, proof2)
	require.Equal(t, beta1, beta2)
}

func TestVerifyRejectsWrongMessage(t *testing.T) {
	sk, pk := genKeyPair(t)
	proof, _, err := Prove(sk, []byte("alpha-1"))
	require.NoError(t, err)

	_, err = Verify(pk, proof, []byte("alpha-2"))
	require.Error(t, err)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	sk, _ := genKeyPair(t)
	_, otherPk := genKeyPair(t)
	proof, _, err := Prove(sk, []byte("alpha"))
	require.NoError(t, err)

	_, err = Verify(otherPk, proof, []byte("alpha"))
	require.Error(t, err)
}

func TestProofToHashMatchesProve(t *testing.T) {
	sk, _ := genKeyPair(t)
	proof, beta, err := Prove(sk, []byte("alpha"))
	require.NoError(t, err)

	got, err := ProofToHash(proof)
	require.NoError(t, err)
	require.Equal(t, beta, got)
}
