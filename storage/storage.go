// Package storage implements the persistent key/value layer ChainManager
// consolidates blocks and UTXO diffs through: an abstract Manager interface
// plus a bbolt-backed implementation, key families, and db_version
// migrations (spec.md §6/§9, SPEC_FULL.md §4.12).
package storage

import "github.com/pkg/errors"

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("storage: key not found")

// Manager is the storage boundary every consensus-critical component talks
// to, so the concrete driver (bbolt here) never leaks into ChainManager's
// own logic (spec.md §9 "storage as a collaborator boundary").
type Manager interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Iterator(prefix []byte) Iterator
	Batch() WriteBatch
	Close() error
}

// Iterator walks every key sharing a prefix in ascending key order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Close() error
}

// WriteBatch buffers a set of mutations for atomic commit, used by
// ChainManager's consolidation step to write the new ChainState and its
// UtxoWriteBatch together (spec.md §4.6 point 6, §5 "Ordering guarantees").
type WriteBatch interface {
	Put(key, value []byte)
	Delete(key []byte)
	Commit() error
}

// Key families, exactly as named in spec.md §6/§9.
var (
	PrefixChainInfo   = []byte("chain_info")
	PrefixUTXO        = []byte("UTXO-")
	PrefixPeers       = []byte("PEERS")
	PrefixSuperblock  = []byte("superblock-")
	PrefixDRReport    = []byte("DR-report-")
	PrefixInventory   = []byte("inventory-")
	KeyDBVersion      = []byte("db_version")
)
