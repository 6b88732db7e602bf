package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTempManager(t *testing.T) *BoltManager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "witnet.db")
	m, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestPutGetDelete(t *testing.T) {
	m := openTempManager(t)
	key := []byte("UTXO-abc:0")
	require.NoError(t, m.Put(key, []byte("value")))

	got, err := m.Get(key)
	require.NoError(t, err)
	require.Equal(t, []byte("value"), got)

	require.NoError(t, m.Delete(key))
	_, err = m.Get(key)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestIteratorWalksPrefix(t *testing.T) {
	m := openTempManager(t)
	require.NoError(t, m.Put([]byte("UTXO-a"), []byte("1")))
	require.NoError(t, m.Put([]byte("UTXO-b"), []byte("2")))
	require.NoError(t, m.Put([]byte("PEERS-x"), []byte("3")))

	it := m.Iterator([]byte("UTXO-"))
	defer it.Close()
	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	require.Equal(t, []string{"UTXO-a", "UTXO-b"}, keys)
}

func TestBatchCommitsAtomically(t *testing.T) {
	m := openTempManager(t)
	b := m.Batch()
	b.Put([]byte("chain_info"), []byte("v1"))
	b.Put([]byte("UTXO-x"), []byte("y"))
	require.NoError(t, b.Commit())

	got, err := m.Get([]byte("chain_info"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), got)
}

func TestMigrateChainStateBytesFromV0ReachesCurrent(t *testing.T) {
	v0 := []byte{0} // None tag, as in original_source's empty ChainState
	out, err := MigrateChainStateBytes(v0)
	require.NoError(t, err)
	version, err := readVersion(out)
	require.NoError(t, err)
	require.Equal(t, CurrentDBVersion, version)
}

func TestMigrateChainStateBytesMonotonic(t *testing.T) {
	versions := []uint32{}
	data := []byte{0}
	for {
		v, err := readVersion(data)
		require.NoError(t, err)
		versions = append(versions, v)
		if v == CurrentDBVersion {
			break
		}
		switch v {
		case 0, 1:
			data = migrateV0ToV2(data)
		case 2:
			data = migrateV2ToV3(data)
		case 3:
			data = migrateV3ToV4(data)
		case 4:
			data = migrateV4ToV5(data)
		}
	}
	for i := 1; i < len(versions); i++ {
		require.Greater(t, versions[i], versions[i-1])
	}
}

func TestMigrateChainStateBytesRejectsUnknownVersion(t *testing.T) {
	bad := make([]byte, 4)
	putVersion(bad, 99)
	_, err := MigrateChainStateBytes(bad)
	require.Error(t, err)
}

func TestMigrateOnOpenPersistsCurrentVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "witnet.db")
	m, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, m.Put(PrefixChainInfo, []byte{0}))
	require.NoError(t, Migrate(m))

	got, err := m.Get(PrefixChainInfo)
	require.NoError(t, err)
	version, err := readVersion(got)
	require.NoError(t, err)
	require.Equal(t, CurrentDBVersion, version)
	require.NoError(t, m.Close())
}
