package sessions

import "github.com/witnet-go/witnet/chain/primitives"

// PeersBeacons is the payload emitted to ChainManager once per epoch
// (spec.md §4.10 "A PeersBeacons message is emitted to ChainManager").
type PeersBeacons struct {
	WithBeacon map[string]primitives.CheckpointBeacon
	NotBeacon  []string
}

// BeaconCollector buffers inbound LastBeacon messages for the current
// epoch and emits PeersBeacons exactly once, latched by AlreadySent, until
// the next epoch clears it (spec.md §4.10 "Beacons collection").
type BeaconCollector struct {
	withBeacon  map[string]primitives.CheckpointBeacon
	notBeacon   map[string]struct{}
	alreadySent bool
}

// NewBeaconCollector returns a collector seeded with the given set of
// outbound-consolidated peers, none of which have a beacon yet (spec.md
// §4.10 "on each epoch, the manager seeds peers_not_beacon with the set of
// outbound-consolidated peers").
func NewBeaconCollector(outboundConsolidated []string) *BeaconCollector {
	c := &BeaconCollector{}
	c.seed(outboundConsolidated)
	return c
}

func (c *BeaconCollector) seed(peers []string) {
	c.withBeacon = make(map[string]primitives.CheckpointBeacon)
	c.notBeacon = make(map[string]struct{}, len(peers))
	for _, p := range peers {
		c.notBeacon[p] = struct{}{}
	}
	c.alreadySent = false
}

// RecordBeacon moves peer from not_beacon to with_beacon (spec.md §4.10
// "Each inbound LastBeacon moves the peer from not_beacon -> with_beacon").
func (c *BeaconCollector) RecordBeacon(peer string, beacon primitives.CheckpointBeacon) {
	delete(c.notBeacon, peer)
	c.withBeacon[peer] = beacon
}

// Send returns the current (with_beacon, not_beacon) split the first time
// it is called in an epoch; every subsequent call in the same epoch returns
// ok=false (spec.md §4.10 "already_sent latches"; P9).
func (c *BeaconCollector) Send() (PeersBeacons, bool) {
	if c.alreadySent {
		return PeersBeacons{}, false
	}
	c.alreadySent = true

	notBeacon := make([]string, 0, len(c.notBeacon))
	for p := range c.notBeacon {
		notBeacon = append(notBeacon, p)
	}
	withBeacon := make(map[string]primitives.CheckpointBeacon, len(c.withBeacon))
	for p, b := range c.withBeacon {
		withBeacon[p] = b
	}
	return PeersBeacons{WithBeacon: withBeacon, NotBeacon: notBeacon}, true
}

// NewEpoch re-seeds the collector for the next epoch, restarting the
// already_sent latch (spec.md §4.10 P9: "After new_epoch() and
// clear({A,B}), the cycle restarts").
func (c *BeaconCollector) NewEpoch(outboundConsolidated []string) {
	c.seed(outboundConsolidated)
}
