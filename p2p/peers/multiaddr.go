package peers

import (
	"fmt"
	"net"

	"github.com/multiformats/go-multiaddr"
	"github.com/pkg/errors"
)

// ToMultiaddr converts a "host:port" address, as stored in the tried/new
// buckets, into a dialable multiaddr (e.g. "/ip4/127.0.0.1/tcp/21337"),
// matching the peer-addressing convention prysm's p2p stack uses
// throughout (`multiaddr.NewMultiaddr` over raw host:port strings).
func ToMultiaddr(addr string) (multiaddr.Multiaddr, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, errors.Wrapf(err, "peers: invalid address %q", addr)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return nil, errors.Errorf("peers: invalid IP in address %q", addr)
	}
	proto := "ip4"
	if ip.To4() == nil {
		proto = "ip6"
	}
	return multiaddr.NewMultiaddr(fmt.Sprintf("/%s/%s/tcp/%s", proto, ip.String(), port))
}
