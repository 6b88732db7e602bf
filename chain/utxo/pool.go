// Package utxo implements the UnspentOutputsPool: the UTXO set plus a
// per-PKH index cache and the snapshot-diff bookkeeping needed to keep it
// atomic with ChainState persistence (spec.md §3/§4.6, §5 "Shared resource
// policy"). The per-PKH index is a bounded LRU, grounded on
// github.com/hashicorp/golang-lru, the same caching library the teacher
// pulls in for its own bounded caches.
package utxo

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/witnet-go/witnet/chain/primitives"
	"github.com/witnet-go/witnet/chain/txn"
	"github.com/witnet-go/witnet/chain/validators"
)

// Entry pairs a UTXO with the block number it was created in and the role
// of the transaction that produced it, so a later spend can be checked
// against the per-role legality matrix (spec.md §4.6, chain/validators).
type Entry struct {
	Output            txn.ValueTransferOutput
	InclusionBlockNum uint32
	Role              validators.OutputRole
}

// pkhIndexCacheSize bounds the per-PKH reverse index; eviction here only
// drops fast-path lookups, correctness always falls back to the full scan.
const pkhIndexCacheSize = 4096

// Pool is the UnspentOutputsPool: a mapping OutputPointer -> Entry, with a
// derived per-PKH cache and a diff of mutations since the last snapshot.
type Pool struct {
	mu sync.RWMutex

	byPointer map[primitives.OutputPointer]Entry
	byPKH     *lru.Cache // PublicKeyHash -> map[OutputPointer]struct{}

	diff Diff
}

// Diff records every Insert/Remove applied since the pool was last
// snapshotted, so ChainManager can pair it with the same write batch as the
// ChainState persistence (spec.md §5 "Ordering guarantees").
type Diff struct {
	Inserted map[primitives.OutputPointer]Entry
	Removed  []primitives.OutputPointer
}

func newDiff() Diff {
	return Diff{Inserted: make(map[primitives.OutputPointer]Entry)}
}

// New returns an empty pool.
func New() *Pool {
	cache, err := lru.New(pkhIndexCacheSize)
	if err != nil {
		// lru.New only errors for size <= 0, which pkhIndexCacheSize never is.
		panic(err)
	}
	return &Pool{
		byPointer: make(map[primitives.OutputPointer]Entry),
		byPKH:     cache,
		diff:      newDiff(),
	}
}

// Insert adds op -> entry, failing if op is already present (spec.md §3:
// "must be absent").
func (p *Pool) Insert(op primitives.OutputPointer, entry Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byPointer[op]; ok {
		return errors.Errorf("utxo: output pointer %s already present", op)
	}
	p.byPointer[op] = entry
	p.diff.Inserted[op] = entry
	p.addToPKHIndex(entry.Output.PKH, op)
	return nil
}

// Remove deletes op, failing if it is absent.
func (p *Pool) Remove(op primitives.OutputPointer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.byPointer[op]
	if !ok {
		return errors.Errorf("utxo: output pointer %s not found", op)
	}
	delete(p.byPointer, op)
	delete(p.diff.Inserted, op)
	p.diff.Removed = append(p.diff.Removed, op)
	p.removeFromPKHIndex(entry.Output.PKH, op)
	return nil
}

// Get looks up op without mutating the pool.
func (p *Pool) Get(op primitives.OutputPointer) (Entry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entry, ok := p.byPointer[op]
	return entry, ok
}

// Len returns the number of UTXOs currently tracked.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byPointer)
}

// Iterate calls fn for every (OutputPointer, Entry) pair. Iteration order is
// unspecified.
func (p *Pool) Iterate(fn func(primitives.OutputPointer, Entry) bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for op, entry := range p.byPointer {
		if !fn(op, entry) {
			return
		}
	}
}

// IterateByPKH returns every output pointer currently owned by pkh
// (spec.md §8 P11: "utxo_iterator_by_pkh(p) returns exactly {op | ... }").
func (p *Pool) IterateByPKH(pkh primitives.PublicKeyHash) []primitives.OutputPointer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	raw, ok := p.byPKH.Get(pkh)
	if !ok {
		rebuilt := make(map[primitives.OutputPointer]struct{})
		for op, entry := range p.byPointer {
			if entry.Output.PKH == pkh {
				rebuilt[op] = struct{}{}
			}
		}
		p.byPKH.Add(pkh, rebuilt)
		raw = rebuilt
	}
	set := raw.(map[primitives.OutputPointer]struct{})
	out := make([]primitives.OutputPointer, 0, len(set))
	for op := range set {
		out = append(out, op)
	}
	return out
}

func (p *Pool) addToPKHIndex(pkh primitives.PublicKeyHash, op primitives.OutputPointer) {
	raw, ok := p.byPKH.Get(pkh)
	if !ok {
		// Left uncached: IterateByPKH rebuilds the complete set on a miss.
		return
	}
	set := raw.(map[primitives.OutputPointer]struct{})
	set[op] = struct{}{}
	p.byPKH.Add(pkh, set)
}

func (p *Pool) removeFromPKHIndex(pkh primitives.PublicKeyHash, op primitives.OutputPointer) {
	raw, ok := p.byPKH.Get(pkh)
	if !ok {
		return
	}
	set := raw.(map[primitives.OutputPointer]struct{})
	delete(set, op)
	p.byPKH.Add(pkh, set)
}

// TakeDiff returns the accumulated diff and resets it, meant to be called
// exactly once per superblock-epoch snapshot (spec.md §3 "Lifecycle").
func (p *Pool) TakeDiff() Diff {
	p.mu.Lock()
	defer p.mu.Unlock()
	diff := p.diff
	p.diff = newDiff()
	return diff
}

// TotalValue sums every UTXO's value.
func (p *Pool) TotalValue() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var total uint64
	for _, entry := range p.byPointer {
		total += entry.Output.Value
	}
	return total
}
