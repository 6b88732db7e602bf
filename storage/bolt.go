package storage

import (
	"bytes"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// rootBucket is the single bbolt bucket every key family lives in, flat-
// namespaced by the key-family prefixes declared in storage.go (spec.md §6
// describes key families as string prefixes within one keyspace, not as
// separate bbolt buckets).
var rootBucket = []byte("witnet")

// BoltManager is the bbolt-backed Manager implementation (SPEC_FULL.md
// §4.12): ChainManager's single-writer consolidation step needs a concrete
// atomic-batch driver, which a pure interface cannot exercise.
type BoltManager struct {
	db *bolt.DB
}

// Open opens (creating if absent) a bbolt database at path and ensures
// rootBucket exists, then runs any pending db_version migration.
func Open(path string) (*BoltManager, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "storage: opening %q", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "storage: creating root bucket")
	}
	m := &BoltManager{db: db}
	if err := Migrate(m); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "storage: migrating")
	}
	return m, nil
}

// Get implements Manager.
func (m *BoltManager) Get(key []byte) ([]byte, error) {
	var value []byte
	err := m.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(rootBucket).Get(key)
		if v == nil {
			return ErrNotFound
		}
		value = append([]byte{}, v...)
		return nil
	})
	return value, err
}

// Put implements Manager.
func (m *BoltManager) Put(key, value []byte) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(rootBucket).Put(key, value)
	})
}

// Delete implements Manager.
func (m *BoltManager) Delete(key []byte) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(rootBucket).Delete(key)
	})
}

// Close implements Manager.
func (m *BoltManager) Close() error {
	return m.db.Close()
}

// boltIterator adapts a bbolt cursor, snapshotted onto a read transaction
// held open until Close.
type boltIterator struct {
	tx     *bolt.Tx
	cursor *bolt.Cursor
	prefix []byte
	key    []byte
	value  []byte
	begun  bool
}

// Iterator implements Manager.
func (m *BoltManager) Iterator(prefix []byte) Iterator {
	tx, err := m.db.Begin(false)
	if err != nil {
		return &errIterator{err: err}
	}
	return &boltIterator{tx: tx, cursor: tx.Bucket(rootBucket).Cursor(), prefix: prefix}
}

func (it *boltIterator) Next() bool {
	var k, v []byte
	if !it.begun {
		it.begun = true
		k, v = it.cursor.Seek(it.prefix)
	} else {
		k, v = it.cursor.Next()
	}
	if k == nil || !bytes.HasPrefix(k, it.prefix) {
		it.key, it.value = nil, nil
		return false
	}
	it.key, it.value = append([]byte{}, k...), append([]byte{}, v...)
	return true
}

func (it *boltIterator) Key() []byte   { return it.key }
func (it *boltIterator) Value() []byte { return it.value }
func (it *boltIterator) Close() error  { return it.tx.Rollback() }

// errIterator reports a setup error (e.g. a closed DB) as an immediately
// exhausted iterator, so callers only need to check Next/Close, not the
// Iterator call itself.
type errIterator struct{ err error }

func (it *errIterator) Next() bool     { return false }
func (it *errIterator) Key() []byte    { return nil }
func (it *errIterator) Value() []byte  { return nil }
func (it *errIterator) Close() error   { return it.err }

// boltBatch buffers mutations and commits them as one bbolt transaction
// (spec.md §5 "atomic batch" / "ChainState snapshots atomic with UTXO
// diff").
type boltBatch struct {
	db      *bolt.DB
	puts    map[string][]byte
	deletes map[string]struct{}
	order   []batchOp
}

type batchOp struct {
	key    string
	delete bool
}

// Batch implements Manager.
func (m *BoltManager) Batch() WriteBatch {
	return &boltBatch{db: m.db, puts: make(map[string][]byte), deletes: make(map[string]struct{})}
}

func (b *boltBatch) Put(key, value []byte) {
	k := string(key)
	delete(b.deletes, k)
	if _, exists := b.puts[k]; !exists {
		b.order = append(b.order, batchOp{key: k})
	}
	b.puts[k] = append([]byte{}, value...)
}

func (b *boltBatch) Delete(key []byte) {
	k := string(key)
	delete(b.puts, k)
	if _, exists := b.deletes[k]; !exists {
		b.order = append(b.order, batchOp{key: k, delete: true})
	}
	b.deletes[k] = struct{}{}
}

func (b *boltBatch) Commit() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(rootBucket)
		for _, op := range b.order {
			if op.delete {
				if err := bucket.Delete([]byte(op.key)); err != nil {
					return err
				}
				continue
			}
			if err := bucket.Put([]byte(op.key), b.puts[op.key]); err != nil {
				return err
			}
		}
		return nil
	})
}
