// Package stakes implements the Witnet-2.0 stake registry: entries keyed by
// (validator, withdrawer), power = coins·age, ranking and census iteration
// (spec.md §4.9, I6).
package stakes

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/witnet-go/witnet/chain/primitives"
)

// Capability distinguishes the two reference epochs a stake entry tracks
// (spec.md §3 "epochs: {mining, witnessing}").
type Capability uint8

// Capability values.
const (
	CapabilityMining Capability = iota
	CapabilityWitnessing
)

// Key identifies a stake entry by validator and withdrawer PKH (spec.md
// §4.9 "Stake entries keyed by (validator, withdrawer)").
type Key struct {
	Validator  primitives.PublicKeyHash
	Withdrawer primitives.PublicKeyHash
}

// Entry is one stake record (spec.md §3 "Stakes").
type Entry struct {
	Coins           uint64
	MiningEpoch     primitives.Epoch
	WitnessingEpoch primitives.Epoch
	Nonce           uint64
}

func (e *Entry) refEpoch(cap Capability) primitives.Epoch {
	if cap == CapabilityMining {
		return e.MiningEpoch
	}
	return e.WitnessingEpoch
}

func (e *Entry) setRefEpoch(cap Capability, epoch primitives.Epoch) {
	if cap == CapabilityMining {
		e.MiningEpoch = epoch
	} else {
		e.WitnessingEpoch = epoch
	}
}

// Registry is the in-memory stakes tracker. MinStake is the protocol
// constant I6 requires every entry to satisfy after mutation.
type Registry struct {
	mu       sync.Mutex
	entries  map[Key]*Entry
	MinStake uint64
}

// New returns an empty Registry with the given minimum stake.
func New(minStake uint64) *Registry {
	return &Registry{entries: make(map[Key]*Entry), MinStake: minStake}
}

// AddStake creates or tops up the entry for key, bumping both capability's
// reference epoch toward the current epoch by a coins-weighted average so
// freshly added coins earn power only gradually (spec.md §4.9
// "bumps mining/witnessing epoch references (weighted average)").
func (r *Registry) AddStake(key Key, coins uint64, epoch primitives.Epoch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		e = &Entry{MiningEpoch: epoch, WitnessingEpoch: epoch}
	}
	newCoins := e.Coins + coins
	if newCoins < r.MinStake {
		return errors.Errorf("stakes: %d coins is below min_stake %d", newCoins, r.MinStake)
	}
	for _, cap := range []Capability{CapabilityMining, CapabilityWitnessing} {
		e.setRefEpoch(cap, weightedAverageEpoch(e.Coins, e.refEpoch(cap), coins, epoch))
	}
	e.Coins = newCoins
	e.Nonce++
	r.entries[key] = e
	return nil
}

// weightedAverageEpoch computes the coins-weighted average of two
// (coins, epoch) pairs, rounding down. An all-zero existing stake collapses
// to the new epoch outright.
func weightedAverageEpoch(oldCoins uint64, oldEpoch primitives.Epoch, addedCoins uint64, newEpoch primitives.Epoch) primitives.Epoch {
	total := oldCoins + addedCoins
	if total == 0 {
		return newEpoch
	}
	weighted := uint64(oldCoins)*uint64(oldEpoch) + uint64(addedCoins)*uint64(newEpoch)
	return primitives.Epoch(weighted / total)
}

// RemoveStake withdraws coins from key's entry. The remaining balance must
// still satisfy MinStake, or be reduced to exactly zero (in which case the
// entry is removed outright) — spec.md §4.9 "requires remaining coins ≥
// min_stake or goes to zero".
func (r *Registry) RemoveStake(key Key, coins uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return errors.Errorf("stakes: %v has no stake entry", key)
	}
	if coins > e.Coins {
		return errors.Errorf("stakes: cannot remove %d coins from a balance of %d", coins, e.Coins)
	}
	remaining := e.Coins - coins
	if remaining != 0 && remaining < r.MinStake {
		return errors.Errorf("stakes: remaining balance %d is below min_stake %d", remaining, r.MinStake)
	}
	if remaining == 0 {
		delete(r.entries, key)
		return nil
	}
	e.Coins = remaining
	e.Nonce++
	return nil
}

// ErrNotStaking is returned by QueryPower when key has no entry.
var ErrNotStaking = errors.New("stakes: NotStaking")

// QueryPower computes coins · max(0, epoch − ref_epoch[capability])
// (spec.md §4.9).
func (r *Registry) QueryPower(key Key, cap Capability, epoch primitives.Epoch) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return 0, ErrNotStaking
	}
	ref := e.refEpoch(cap)
	if epoch <= ref {
		return 0, nil
	}
	return e.Coins * uint64(epoch-ref), nil
}

// RankEntry is one row of a Rank/Census iteration result.
type RankEntry struct {
	Key   Key
	Power uint64
}

// Rank returns every entry sorted by descending power at epoch (spec.md
// §4.9 "rank(capability, epoch): iterator over entries sorted by
// descending power at that epoch"). Ties break by Key.Validator then
// Key.Withdrawer for a deterministic order across nodes.
func (r *Registry) Rank(cap Capability, epoch primitives.Epoch) []RankEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RankEntry, 0, len(r.entries))
	for k, e := range r.entries {
		ref := e.refEpoch(cap)
		var power uint64
		if epoch > ref {
			power = e.Coins * uint64(epoch-ref)
		}
		out = append(out, RankEntry{Key: k, Power: power})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Power != out[j].Power {
			return out[i].Power > out[j].Power
		}
		if out[i].Key.Validator != out[j].Key.Validator {
			return out[i].Key.Validator.Less(out[j].Key.Validator)
		}
		return out[i].Key.Withdrawer.Less(out[j].Key.Withdrawer)
	})
	return out
}
