package peers

import (
	"time"
)

// Clock abstracts wall-clock time for ice-bucket expiry tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Peers is the address book: tried/new buckets keyed by their BitcoinCore-
// style index, plus an ice blacklist keyed by the full socket address
// (spec.md §4.10).
type Peers struct {
	SK uint64

	IcePeriod time.Duration
	clock     Clock

	tried map[uint16]map[string]struct{}
	new   map[uint16]map[string]struct{}
	iced  map[string]time.Time
}

// New returns an empty Peers registry. icePeriod is the duration an iced
// address stays blacklisted.
func New(sk uint64, icePeriod time.Duration) *Peers {
	return &Peers{
		SK:        sk,
		IcePeriod: icePeriod,
		clock:     systemClock{},
		tried:     make(map[uint16]map[string]struct{}),
		new:       make(map[uint16]map[string]struct{}),
		iced:      make(map[string]time.Time),
	}
}

// WithClock overrides the clock used for ice expiry (tests only).
func (p *Peers) WithClock(c Clock) *Peers {
	p.clock = c
	return p
}

// AddTried records addr as successfully connected (spec.md §4.10 "tried").
func (p *Peers) AddTried(addr string) {
	idx := TriedBucketIndex(p.SK, addr)
	bucket, ok := p.tried[idx]
	if !ok {
		bucket = make(map[string]struct{})
		p.tried[idx] = bucket
	}
	bucket[addr] = struct{}{}
}

// TriedBucketContains reports whether addr is recorded in the tried bucket
// it hashes to.
func (p *Peers) TriedBucketContains(addr string) bool {
	idx := TriedBucketIndex(p.SK, addr)
	_, ok := p.tried[idx][addr]
	return ok
}

// AddNew records addr as learned-but-unverified, having been relayed by
// srcAddr (spec.md §4.10 "new: learned but unverified").
func (p *Peers) AddNew(addr, srcAddr string) {
	idx := NewBucketIndex(p.SK, addr, srcAddr)
	bucket, ok := p.new[idx]
	if !ok {
		bucket = make(map[string]struct{})
		p.new[idx] = bucket
	}
	bucket[addr] = struct{}{}
}

// NewBucketContains reports whether addr (learned from srcAddr) is recorded
// in the new bucket it hashes to.
func (p *Peers) NewBucketContains(addr, srcAddr string) bool {
	idx := NewBucketIndex(p.SK, addr, srcAddr)
	_, ok := p.new[idx][addr]
	return ok
}

// IcePeerAddress blacklists addr for IcePeriod (spec.md §4.10 "ice:
// time-boxed blacklist of recently misbehaving peers, keyed by SocketAddr
// (not by IP-prefix)").
func (p *Peers) IcePeerAddress(addr string) {
	p.iced[addr] = p.clock.Now()
}

// IceBucketContains reports whether addr is currently blacklisted.
func (p *Peers) IceBucketContains(addr string) bool {
	since, ok := p.iced[addr]
	if !ok {
		return false
	}
	return p.clock.Now().Sub(since) < p.IcePeriod
}

// RemoveFromIce lifts addr's blacklist early.
func (p *Peers) RemoveFromIce(addr string) {
	delete(p.iced, addr)
}
