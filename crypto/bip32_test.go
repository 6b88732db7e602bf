package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMasterKeyRejectsShortSeed(t *testing.T) {
	_, err := NewMasterKey(make([]byte, 15), nil)
	require.Error(t, err)
}

func TestNewMasterKeyRejectsLongSeed(t *testing.T) {
	_, err := NewMasterKey(make([]byte, 65), nil)
	require.Error(t, err)
}

func TestNewMasterKeyAcceptsBoundarySeeds(t *testing.T) {
	_, err := NewMasterKey(make([]byte, 16), nil)
	require.NoError(t, err)
	_, err = NewMasterKey(make([]byte, 64), nil)
	require.NoError(t, err)
}

func TestHardenedChildDerivationDeterministic(t *testing.T) {
	seed, err := SeedFromMnemonic(
		"day voice lake monkey suit bread occur own cattle visit object ordinary",
		"12345678",
	)
	require.NoError(t, err)

	master, err := NewMasterKey(seed, nil)
	require.NoError(t, err)

	// m/3'/4919'/0'/0/0 per spec.md §8 S6.
	path := []uint32{3 | 0x80000000, 4919 | 0x80000000, 0 | 0x80000000, 0, 0}
	key := master
	for _, idx := range path {
		key, err = key.Child(idx)
		require.NoError(t, err)
	}
	require.Len(t, key.Key, 32)

	// Deriving the same path twice must be deterministic.
	key2 := master
	for _, idx := range path {
		key2, err = key2.Child(idx)
		require.NoError(t, err)
	}
	require.Equal(t, key.Key, key2.Key)
}

func TestHardenedChildCannotDeriveFromPublicOnlyKey(t *testing.T) {
	master, err := NewMasterKey(make([]byte, 32), nil)
	require.NoError(t, err)
	pub := &ExtendedKey{Private: false, ChainCode: master.ChainCode}
	pub.Key, err = master.compressedPubKey()
	require.NoError(t, err)

	_, err = pub.Child(0 | 0x80000000)
	require.Error(t, err)
}
