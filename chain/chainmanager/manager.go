package chainmanager

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/witnet-go/witnet/chain/block"
	"github.com/witnet-go/witnet/chain/eligibility"
	"github.com/witnet-go/witnet/chain/primitives"
	"github.com/witnet-go/witnet/chain/txn"
	"github.com/witnet-go/witnet/chain/utxo"
	"github.com/witnet-go/witnet/chain/validators"
	"github.com/witnet-go/witnet/storage"
)

// UTXOResolver is satisfied by *utxo.Pool; declared here so Manager can be
// built against a fake pool in tests.
type UTXOResolver interface {
	Get(op primitives.OutputPointer) (utxo.Entry, bool)
}

// Manager is the ChainManager: epoch-driven block production, validation
// and consolidation (spec.md §4.6). It owns the canonical UTXO pool and
// mempool directly; the data-request pool, stake registry and reputation
// engine are constructed independently and wired in, since they are each
// exercised directly by their own package's tests and by other callers
// (e.g. eligibility checks) besides ChainManager.
type Manager struct {
	mu sync.Mutex

	store storage.Manager
	utxo  *utxo.Pool

	environment string
	cc          ConsensusConstants
	info        ChainInfo

	mempool    []txn.Transaction
	candidates []candidateEntry
}

// candidateEntry pairs a built block with the eligibility.Candidate used to
// compare it against competitors (spec.md §4.5/§4.6 point 5).
type candidateEntry struct {
	Block block.Block
	Elig  eligibility.Candidate
}

// Bootstrap implements spec.md §4.6's bootstrap step: load ChainInfo from
// storage, validating it against the running environment/consensus
// constants, or seed a fresh one at genesis.
func Bootstrap(store storage.Manager, utxoPool *utxo.Pool, environment string, cc ConsensusConstants, genesisHash primitives.Hash) (*Manager, error) {
	info, err := loadOrInitChainInfo(store, environment, cc, genesisHash)
	if err != nil {
		return nil, err
	}
	return &Manager{
		store:       store,
		utxo:        utxoPool,
		environment: environment,
		cc:          cc,
		info:        info,
	}, nil
}

// ChainInfo returns a copy of the manager's current chain metadata.
func (m *Manager) ChainInfo() ChainInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info
}

// resolver adapts *utxo.Pool to validators.UTXOResolver, mapping each
// output's stored chain/utxo role forward (spec.md §4.6 "per-role
// input→output legality matrix").
type resolver struct{ pool UTXOResolver }

func (r resolver) Resolve(op primitives.OutputPointer) (txn.ValueTransferOutput, validators.OutputRole, bool) {
	e, ok := r.pool.Get(op)
	if !ok {
		return txn.ValueTransferOutput{}, 0, false
	}
	return e.Output, e.Role, true
}

// AddTransaction validates tx against the consolidated UTXO pool and, on
// success, admits it to the mempool (spec.md §4.6 "Mempool admission").
func (m *Manager) AddTransaction(tx txn.Transaction, now uint64) (fee uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fee, err = validators.AddTransaction(tx, resolver{m.utxo}, now)
	if err != nil {
		return 0, err
	}
	m.mempool = append(m.mempool, tx)
	return fee, nil
}

// Mempool returns a snapshot of the pending transaction pool.
func (m *Manager) Mempool() []txn.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]txn.Transaction, len(m.mempool))
	copy(out, m.mempool)
	return out
}

// WeightFunc computes a transaction's contribution to block weight; the
// caller supplies it since weight accounting (size vs. a more elaborate
// cost model) is a consensus-constant concern kept outside this package.
type WeightFunc func(txn.Transaction) uint32

// BuildCandidate drains the mempool, in FIFO order, into a block subject to
// consensus_constants.max_block_weight (spec.md §4.6 point 4: "build a
// candidate by draining the transactions_pool subject to validation and
// block weight"). Transactions already validated by AddTransaction are not
// re-validated here. Returns the candidate block and the transactions left
// over in the mempool (not included for lack of remaining weight budget).
func (m *Manager) BuildCandidate(epoch primitives.Epoch, prevHash primitives.Hash, mint txn.Transaction, weight WeightFunc) (block.Block, []txn.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	blk := block.Block{
		Header: block.BlockHeader{
			Beacon: primitives.CheckpointBeacon{Checkpoint: epoch, HashPrevBlock: prevHash},
		},
		Mint: mint,
	}
	var used uint32
	var leftover []txn.Transaction
	for _, tx := range m.mempool {
		w := weight(tx)
		if used+w > m.cc.MaxBlockWeight {
			leftover = append(leftover, tx)
			continue
		}
		used += w
		switch tx.Kind {
		case txn.KindValueTransfer:
			blk.ValueTransfers = append(blk.ValueTransfers, tx)
		case txn.KindDataRequest:
			blk.DataRequests = append(blk.DataRequests, tx)
		case txn.KindCommit:
			blk.Commits = append(blk.Commits, tx)
		case txn.KindReveal:
			blk.Reveals = append(blk.Reveals, tx)
		case txn.KindTally:
			blk.Tallies = append(blk.Tallies, tx)
		}
	}
	blk.Header.MerkleRoots = blk.ComputeMerkleRoots()
	return blk, leftover
}

// IngestCandidate records a competing candidate for the current epoch
// (spec.md §4.6 point 5: "Ingest candidates received via gossip").
func (m *Manager) IngestCandidate(blk block.Block, elig eligibility.Candidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates = append(m.candidates, candidateEntry{Block: blk, Elig: elig})
}

// ConsolidateBest picks the best held candidate (spec.md §4.5 four-key
// order), replaces the UTXO pool and mempool with its outcome, advances
// ChainInfo, and persists the new ChainState atomically with the UTXO diff
// (spec.md §4.6 point 6, §5 "Ordering guarantees"). Returns false if there
// were no candidates to consolidate this epoch.
func (m *Manager) ConsolidateBest() (block.Block, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.candidates) == 0 {
		return block.Block{}, false, nil
	}
	best := m.candidates[0]
	for _, c := range m.candidates[1:] {
		if eligibility.Better(c.Elig, best.Elig) {
			best = c
		}
	}

	if err := m.applyBlock(best.Block); err != nil {
		return block.Block{}, false, err
	}

	m.pruneMempool(best.Block)
	m.info.HighestBlockCheckpoint = primitives.CheckpointBeacon{
		Checkpoint:    best.Block.Header.Beacon.Checkpoint,
		HashPrevBlock: best.Block.ID(),
	}
	m.candidates = nil

	if err := m.persist(); err != nil {
		return block.Block{}, false, err
	}
	return best.Block, true, nil
}

// applyBlock inserts every output the block's transactions create and
// removes every output they spend, recording both against m.utxo's diff so
// persist can write them atomically with ChainInfo.
func (m *Manager) applyBlock(blk block.Block) error {
	roleOf := map[txn.Kind]validators.OutputRole{
		txn.KindValueTransfer: validators.RoleValueTransfer,
		txn.KindDataRequest:   validators.RoleDataRequest,
		txn.KindCommit:        validators.RoleCommit,
		txn.KindReveal:        validators.RoleReveal,
		txn.KindTally:         validators.RoleTally,
		txn.KindMint:          validators.RoleValueTransfer,
	}
	for _, tx := range blk.AllTransactions() {
		for _, in := range tx.Inputs() {
			if err := m.utxo.Remove(in); err != nil {
				return errors.Wrapf(err, "chainmanager: consolidating %s", tx.ID())
			}
		}
		id := tx.ID()
		for i, out := range tx.Outputs() {
			op := primitives.OutputPointer{TransactionID: id, OutputIndex: uint32(i)}
			role := roleOf[tx.Kind]
			if tx.Kind == txn.KindDataRequest && uint32(i) != validators.DataRequestOutputIndex {
				// Only the DataRequest transaction's own output (index 0)
				// is the DR-out; any trailing output is ordinary VT-out
				// change (spec.md §4.6 "DR-out → commit-out only (and only
				// at matching indices)").
				role = validators.RoleValueTransfer
			}
			entry := utxo.Entry{
				Output:            out,
				InclusionBlockNum: uint32(blk.Header.Beacon.Checkpoint),
				Role:              role,
			}
			if err := m.utxo.Insert(op, entry); err != nil {
				return errors.Wrapf(err, "chainmanager: consolidating %s", tx.ID())
			}
		}
	}
	return nil
}

// pruneMempool removes every transaction included in blk from the pending
// pool (spec.md §4.6 point 6: "Replace transactions_pool with leftover
// mempool from the candidate build").
func (m *Manager) pruneMempool(blk block.Block) {
	included := make(map[primitives.Hash]struct{})
	for _, tx := range blk.AllTransactions() {
		included[tx.ID()] = struct{}{}
	}
	kept := m.mempool[:0]
	for _, tx := range m.mempool {
		if _, ok := included[tx.ID()]; ok {
			continue
		}
		kept = append(kept, tx)
	}
	m.mempool = kept
}

// persist writes ChainInfo and the accumulated UTXO diff as one atomic
// storage batch (spec.md §4.6 point 6, §5).
func (m *Manager) persist() error {
	diff := m.utxo.TakeDiff()
	batch := m.store.Batch()

	encoded, err := encodeChainInfo(m.info)
	if err != nil {
		return err
	}
	batch.Put(storage.PrefixChainInfo, encoded)

	for op, entry := range diff.Inserted {
		batch.Put(utxoKey(op), encodeUTXOEntry(entry))
	}
	for _, op := range diff.Removed {
		batch.Delete(utxoKey(op))
	}
	return batch.Commit()
}

func utxoKey(op primitives.OutputPointer) []byte {
	return append(append([]byte{}, storage.PrefixUTXO...), []byte(op.String())...)
}
