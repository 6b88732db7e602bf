// Package epoch implements EpochManager: the timestamp-to-epoch mapping and
// the epoch-tick fan-out every other component subscribes to (spec.md
// §4.1).
package epoch

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/witnet-go/witnet/async/event"
	"github.com/witnet-go/witnet/chain/primitives"
)

// EveryEpoch is the value broadcast on each tick: the epoch that just
// started (spec.md §4.1/§5 "EpochManager ticks").
type EveryEpoch struct {
	Epoch primitives.Epoch
}

// ErrCheckpointZeroInTheFuture is returned by EpochAt when asked for the
// epoch of a timestamp before the chain's genesis checkpoint (spec.md §4.1
// "fails with CheckpointZeroInTheFuture before genesis").
var ErrCheckpointZeroInTheFuture = errors.New("epoch: checkpoint zero is in the future")

// Clock abstracts wall-clock time so tests can drive EpochManager without
// sleeping; NTP-adjusted clocks implement the same single method.
type Clock interface {
	Now() time.Time
}

// systemClock is the default Clock, optionally shifted by a fixed NTP
// adjustment (spec.md §4.1 "NTP-adjusted wall clock").
type systemClock struct {
	adjustment time.Duration
}

func (c systemClock) Now() time.Time {
	return time.Now().Add(c.adjustment)
}

// Manager maps wall-clock time to protocol epochs and fans out an
// EveryEpoch notification to subscribers each time the epoch advances
// (spec.md §4.1). Subscriber fan-out uses async/event.Feed, the same
// one-event-many-listeners primitive EpochManager's teacher lineage uses for
// every broadcast surface.
type Manager struct {
	mu sync.Mutex

	checkpointZero    int64 // unix seconds of epoch 0
	checkpointsPeriod uint32

	clock Clock
	feed  event.Feed

	lastEpoch     primitives.Epoch
	lastEpochSet  bool
	stop          chan struct{}
	stopOnce      sync.Once
}

// New returns a Manager with the given genesis timestamp (unix seconds) and
// checkpoint period (seconds). clock may be nil to use the system clock.
func New(checkpointZero int64, checkpointsPeriod uint32, clock Clock) *Manager {
	if clock == nil {
		clock = systemClock{}
	}
	return &Manager{
		checkpointZero:    checkpointZero,
		checkpointsPeriod: checkpointsPeriod,
		clock:             clock,
		stop:              make(chan struct{}),
	}
}

// EpochAt computes the epoch containing ts: (ts - checkpoint_zero) /
// checkpoints_period (spec.md §4.1). Fails before genesis.
func (m *Manager) EpochAt(ts time.Time) (primitives.Epoch, error) {
	secs := ts.Unix() - m.checkpointZero
	if secs < 0 {
		return 0, ErrCheckpointZeroInTheFuture
	}
	if m.checkpointsPeriod == 0 {
		return 0, errors.New("epoch: checkpoints_period must be non-zero")
	}
	return primitives.Epoch(uint64(secs) / uint64(m.checkpointsPeriod)), nil
}

// CurrentEpoch returns EpochAt(clock.Now()).
func (m *Manager) CurrentEpoch() (primitives.Epoch, error) {
	return m.EpochAt(m.clock.Now())
}

// Subscribe registers ch to receive every EveryEpoch tick. Callers must
// drain ch promptly; a slow subscriber blocks the feed per async/event.Feed
// semantics.
func (m *Manager) Subscribe(ch chan<- EveryEpoch) event.Subscription {
	return m.feed.Subscribe(ch)
}

// Run polls the clock once per second, detecting epoch boundaries
// (including any epochs missed while the process was not polling, e.g.
// after a suspend) and broadcasting one EveryEpoch per epoch crossed, in
// order, until Stop is called.
func (m *Manager) Run() error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return nil
		case <-ticker.C:
			if err := m.tick(); err != nil {
				return err
			}
		}
	}
}

func (m *Manager) tick() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, err := m.EpochAt(m.clock.Now())
	if err != nil {
		return err
	}
	if !m.lastEpochSet {
		m.lastEpoch = current
		m.lastEpochSet = true
		m.feed.Send(EveryEpoch{Epoch: current})
		return nil
	}
	for e := m.lastEpoch + 1; e <= current; e++ {
		m.feed.Send(EveryEpoch{Epoch: e})
	}
	m.lastEpoch = current
	return nil
}

// Stop terminates Run.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}
