// Package chainmanager implements the epoch-driven consolidation state
// machine: bootstrap, mining, candidate collection, consolidation and
// mempool admission (spec.md §4.6).
package chainmanager

import (
	"github.com/pkg/errors"

	"github.com/witnet-go/witnet/chain/primitives"
	"github.com/witnet-go/witnet/storage"
)

// ConsensusConstants is the subset of config.Config that must match between
// a freshly loaded ChainInfo and the running node's configuration (spec.md
// §4.6 "assert that stored environment and consensus_constants match
// current config (fatal mismatch → abort)").
type ConsensusConstants struct {
	CheckpointZero      int64
	CheckpointsPeriod   uint32
	SuperblockPeriod    uint32
	MaxBlockWeight      uint32
	MinConsensusPercent uint8
	MinDifficulty       uint32
	MiningReplication   uint32
	MiningBackupFactor  uint32
	MinStakeNanowits    uint64
}

// ChainInfo is the small piece of chain metadata persisted across restarts
// (spec.md §3 "ChainInfo").
type ChainInfo struct {
	Environment            string
	ConsensusConstants      ConsensusConstants
	HighestBlockCheckpoint primitives.CheckpointBeacon
}

// ErrConsensusConstantsMismatch is fatal: the stored ChainInfo disagrees
// with the running configuration (spec.md §4.6, §7 "Fatal").
var ErrConsensusConstantsMismatch = errors.New("chainmanager: stored chain_info does not match current environment/consensus_constants")

// assertMatches implements spec.md §4.6's bootstrap config check.
func (ci ChainInfo) assertMatches(environment string, cc ConsensusConstants) error {
	if ci.Environment != environment || ci.ConsensusConstants != cc {
		return ErrConsensusConstantsMismatch
	}
	return nil
}

// loadOrInitChainInfo loads ChainInfo from store, or creates a fresh one
// seeded at CheckpointBeacon{checkpoint:0, hash_prev_block:genesisHash} if
// absent (spec.md §4.6 "Bootstrap").
func loadOrInitChainInfo(store storage.Manager, environment string, cc ConsensusConstants, genesisHash primitives.Hash) (ChainInfo, error) {
	raw, err := store.Get(storage.PrefixChainInfo)
	if errors.Is(err, storage.ErrNotFound) {
		return ChainInfo{
			Environment:        environment,
			ConsensusConstants: cc,
			HighestBlockCheckpoint: primitives.CheckpointBeacon{
				Checkpoint:    0,
				HashPrevBlock: genesisHash,
			},
		}, nil
	}
	if err != nil {
		return ChainInfo{}, errors.Wrap(err, "chainmanager: loading chain_info")
	}
	ci, err := decodeChainInfo(raw)
	if err != nil {
		return ChainInfo{}, err
	}
	if err := ci.assertMatches(environment, cc); err != nil {
		return ChainInfo{}, err
	}
	return ci, nil
}
