// Command witnetnode is the thin process entry point: it loads
// configuration, opens storage, bootstraps ChainManager and runs the
// EpochManager loop that drives mining/consolidation (spec.md §2 "Control
// flow").
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/witnet-go/witnet/chain/chainmanager"
	"github.com/witnet-go/witnet/chain/epoch"
	"github.com/witnet-go/witnet/chain/genesis"
	"github.com/witnet-go/witnet/chain/primitives"
	"github.com/witnet-go/witnet/chain/txn"
	"github.com/witnet-go/witnet/chain/utxo"
	"github.com/witnet-go/witnet/config"
	"github.com/witnet-go/witnet/internal/logging"
	"github.com/witnet-go/witnet/storage"
)

var log = logging.New("witnetnode")

func main() {
	configPath := flag.String("config", "", "path to a TOML config file (defaults built in if omitted)")
	genesisPath := flag.String("genesis", "", "path to the genesis allocation JSON file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("loading config")
	}

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		log.WithError(err).Fatal("opening storage")
	}
	defer store.Close()

	genesisHash, genesisMints, err := loadGenesis(*genesisPath)
	if err != nil {
		log.WithError(err).Fatal("loading genesis file")
	}

	utxoPool := utxo.New()
	seedGenesisUTXOs(utxoPool, genesisMints)

	cc := chainmanager.ConsensusConstants{
		CheckpointZero:      cfg.Consensus.CheckpointZero,
		CheckpointsPeriod:   cfg.Consensus.CheckpointsPeriod,
		SuperblockPeriod:    cfg.Consensus.SuperblockPeriod,
		MaxBlockWeight:      cfg.Consensus.MaxBlockWeight,
		MinConsensusPercent: cfg.Consensus.MinConsensusPercent,
		MinDifficulty:       cfg.Consensus.MinDifficulty,
		MiningReplication:   cfg.Consensus.MiningReplication,
		MiningBackupFactor:  cfg.Consensus.MiningBackupFactor,
		MinStakeNanowits:    cfg.Consensus.MinStakeNanowits,
	}
	mgr, err := chainmanager.Bootstrap(store, utxoPool, cfg.Environment, cc, genesisHash)
	if err != nil {
		log.WithError(err).Fatal("bootstrapping chain manager")
	}

	em := epoch.New(cfg.Consensus.CheckpointZero, cfg.Consensus.CheckpointsPeriod, nil)
	ticks := make(chan epoch.EveryEpoch, 8)
	em.Subscribe(ticks)
	go func() {
		if err := em.Run(); err != nil {
			log.WithError(err).Error("epoch manager stopped")
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.WithField("environment", cfg.Environment).Info("witnetnode started")
	runLoop(ctx, em, mgr, ticks)
}

// runLoop is ChainManager's per-epoch action (spec.md §4.6 point 6): each
// epoch boundary, consolidate whatever candidate currently holds the best
// eligibility ordering. Mining/gossip ingestion are collaborators wired
// independently (p2p/sessions, p2p/wire) and are not started here; this
// loop only drives consolidation so a standalone node still makes
// deterministic progress against locally admitted transactions.
func runLoop(ctx context.Context, em *epoch.Manager, mgr *chainmanager.Manager, ticks <-chan epoch.EveryEpoch) {
	for {
		select {
		case <-ctx.Done():
			em.Stop()
			return
		case tick := <-ticks:
			blk, ok, err := mgr.ConsolidateBest()
			if err != nil {
				log.WithError(err).WithField("epoch", tick.Epoch).Error("consolidating candidate")
				continue
			}
			if ok {
				log.WithFields(map[string]interface{}{
					"epoch": tick.Epoch,
					"block": blk.ID().String(),
				}).Info("consolidated block")
			}
		}
	}
}

// loadGenesis reads and parses the genesis file, if one was given, hashing
// its content to seed ChainInfo.HighestBlockCheckpoint.HashPrevBlock
// (spec.md §6 "Genesis block file"; §4.6 "genesis_hash").
func loadGenesis(path string) (primitives.Hash, []txn.MintBody, error) {
	if path == "" {
		return primitives.ZeroHash, nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return primitives.Hash{}, nil, err
	}
	mints, err := genesis.Load(data)
	if err != nil {
		return primitives.Hash{}, nil, err
	}
	return primitives.SHA256(data), mints, nil
}

// seedGenesisUTXOs inserts every genesis allocation output directly into
// the UTXO pool, keyed by (mint transaction id, output index), matching how
// chainmanager.applyBlock would have admitted them had they arrived in a
// consolidated block.
func seedGenesisUTXOs(pool *utxo.Pool, mints []txn.MintBody) {
	for _, mint := range mints {
		tx := txn.Transaction{Kind: txn.KindMint, Mint: &mint}
		id := tx.ID()
		for i, out := range mint.Outputs {
			op := primitives.OutputPointer{TransactionID: id, OutputIndex: uint32(i)}
			_ = pool.Insert(op, utxo.Entry{Output: out, InclusionBlockNum: 0})
		}
	}
}
