package crypto

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)

	digest := sha256.Sum256([]byte("witnet data request"))
	sig, err := priv.Sign(digest)
	require.NoError(t, err)

	ok, err := Verify(priv.PublicKey(), digest, sig)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyRejectsTamperedDigest(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)

	digest := sha256.Sum256([]byte("original"))
	sig, err := priv.Sign(digest)
	require.NoError(t, err)

	tampered := sha256.Sum256([]byte("tampered"))
	ok, err := Verify(priv.PublicKey(), tampered, sig)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPublicKeyFromBytesRoundTrip(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)

	pk := priv.PublicKey()
	parsed, err := PublicKeyFromBytes(pk[:])
	require.NoError(t, err)
	require.Equal(t, pk, parsed)
}
