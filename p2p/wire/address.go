package wire

import (
	"net"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Address is the wire IpAddress variant (spec.md §6 "Address format":
// `IpAddress::{Ipv4{ip:u32}, Ipv6{ip0,ip1,ip2,ip3:u32}}`; "over Protobuf,
// IPv4 is 6 bytes (ip||port, big-endian), IPv6 is 18 bytes").
type Address struct {
	IP   net.IP
	Port uint16
}

// ErrInvalidAddress is returned for an address payload of neither 6 nor 18
// raw bytes.
var ErrInvalidAddress = errors.New("wire: invalid address payload")

// AppendProto encodes a as one length-delimited bytes field (number 1)
// holding the raw ip||port layout spec.md §6 specifies.
func (a Address) AppendProto(dst []byte) []byte {
	dst = protowire.AppendTag(dst, 1, protowire.BytesType)
	var raw []byte
	if ip4 := a.IP.To4(); ip4 != nil {
		raw = make([]byte, 6)
		copy(raw[:4], ip4)
	} else {
		raw = make([]byte, 18)
		copy(raw[:16], a.IP.To16())
	}
	raw[len(raw)-2] = byte(a.Port >> 8)
	raw[len(raw)-1] = byte(a.Port)
	return protowire.AppendBytes(dst, raw)
}

// ParseAddress decodes the encoding written by AppendProto.
func ParseAddress(b []byte) (Address, error) {
	num, _, n := protowire.ConsumeTag(b)
	if n < 0 || num != 1 {
		return Address{}, ErrInvalidAddress
	}
	raw, n2 := protowire.ConsumeBytes(b[n:])
	if n2 < 0 {
		return Address{}, ErrInvalidAddress
	}
	switch len(raw) {
	case 6:
		ip := net.IPv4(raw[0], raw[1], raw[2], raw[3])
		port := uint16(raw[4])<<8 | uint16(raw[5])
		return Address{IP: ip, Port: port}, nil
	case 18:
		ip := make(net.IP, 16)
		copy(ip, raw[:16])
		port := uint16(raw[16])<<8 | uint16(raw[17])
		return Address{IP: ip, Port: port}, nil
	default:
		return Address{}, ErrInvalidAddress
	}
}
