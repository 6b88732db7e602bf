// Package peers implements BitcoinCore-style address-book buckets: tried
// (successfully connected), new (learned but unverified) and a time-boxed
// ice blacklist (spec.md §4.10 "SessionsManager + peer beacons").
package peers

import (
	"encoding/binary"
	"net"
	"strconv"

	"github.com/witnet-go/witnet/chain/primitives"
)

// TriedBucketCount/TriedBucketSize and NewBucketCount/NewBucketSize size the
// two address tables, following BitcoinCore's addrman layout of "buckets of
// slots" rather than one flat table.
const (
	TriedBucketCount = 256
	TriedBucketSize  = 64
	NewBucketCount   = 256
	NewBucketSize    = 64
)

// group returns the /16 supergroup of an IPv4 address (or the address
// itself for anything else), used to diversify buckets across networks
// rather than individual hosts.
func group(ip net.IP) string {
	if v4 := ip.To4(); v4 != nil {
		return net.IPv4(v4[0], v4[1], 0, 0).String()
	}
	return ip.String()
}

func splitHostPort(addr string) (ip net.IP, hostID string) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	return net.ParseIP(host), addr
}

func hashIndex(bucketCount, bucketSize int, sk uint64, parts ...string) uint16 {
	bucketHash := keyedHash(sk, parts[:len(parts)-1]...)
	slotHash := keyedHash(sk, parts...)
	bucket := uint32(bucketHash) % uint32(bucketCount)
	slot := uint32(slotHash) % uint32(bucketSize)
	return uint16(bucket*uint32(bucketSize) + slot)
}

func keyedHash(sk uint64, parts ...string) uint32 {
	var buf []byte
	var skBytes [8]byte
	binary.BigEndian.PutUint64(skBytes[:], sk)
	buf = append(buf, skBytes[:]...)
	for _, p := range parts {
		buf = append(buf, []byte(p)...)
		buf = append(buf, 0)
	}
	h := primitives.SHA256(buf)
	return binary.BigEndian.Uint32(h[:4])
}

// TriedBucketIndex is `H(sk, ip, group, host_id) mod Ntried` (spec.md §4.10
// "tried: successfully-connected peers"). The host_id carries the port, so
// two addresses differing only by port land in the same bucket (the ip/
// group hash is unaffected) but at a different slot within it (S5).
func TriedBucketIndex(sk uint64, addr string) uint16 {
	ip, hostID := splitHostPort(addr)
	g := group(ip)
	return hashIndex(TriedBucketCount, TriedBucketSize, sk, ip.String(), g, hostID)
}

// NewBucketIndex is `H(sk, src_group, group, host_id) mod Nnew` (spec.md
// §4.10 "new: learned but unverified peers"), additionally keyed by the
// informant's group so the same address learned from different peers can
// land in different buckets.
func NewBucketIndex(sk uint64, addr, srcAddr string) uint16 {
	ip, hostID := splitHostPort(addr)
	srcIP, _ := splitHostPort(srcAddr)
	return hashIndex(NewBucketCount, NewBucketSize, sk, group(srcIP), group(ip), hostID)
}

// CanonicalAddr normalizes addr (stripping brackets, default port...) for
// use as a map key; a thin wrapper so callers don't need to reason about
// net.JoinHostPort formatting themselves.
func CanonicalAddr(host string, port uint16) string {
	return net.JoinHostPort(host, strconv.Itoa(int(port)))
}
