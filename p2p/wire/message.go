// Package wire implements the P2P frame format: a 4-byte big-endian length
// prefix followed by a protobuf-wire-format Message body (spec.md §6 "Wire
// protocol (P2P)").
package wire

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/witnet-go/witnet/chain/primitives"
)

// Command identifies the kind of payload a Message carries (spec.md §6:
// `Command ∈ {Version, Verack, GetPeers, Peers, Block, Transaction,
// LastBeacon, InventoryAnnouncement, InventoryRequest, SuperBlockVote}`).
type Command uint8

// Command values, in declaration order.
const (
	CommandVersion Command = iota + 1
	CommandVerack
	CommandGetPeers
	CommandPeers
	CommandBlock
	CommandTransaction
	CommandLastBeacon
	CommandInventoryAnnouncement
	CommandInventoryRequest
	CommandSuperBlockVote
)

// Network magic numbers partitioning mainnet/testnet/devnet (spec.md §6
// "Magic numbers partition mainnet/testnet/devnet"; values are fixed local
// constants since the originals are chain-specific and not present in the
// retrieved pack).
const (
	MagicMainnet uint16 = 0x2112
	MagicTestnet uint16 = 0x1234
	MagicDevnet  uint16 = 0x4242
)

// Message is one frame body: a network magic plus a command-tagged payload.
type Message struct {
	Magic   uint16
	Kind    Command
	Payload []byte // pre-encoded command-specific body
}

// ErrTruncatedMessage is returned when a buffer ends before a required
// field has been fully read.
var ErrTruncatedMessage = errors.New("wire: truncated message")

// AppendProto encodes m as three fields: magic (1, varint), kind (2,
// varint), payload (3, bytes).
func (m Message) AppendProto(dst []byte) []byte {
	dst = protowire.AppendTag(dst, 1, protowire.VarintType)
	dst = protowire.AppendVarint(dst, uint64(m.Magic))
	dst = protowire.AppendTag(dst, 2, protowire.VarintType)
	dst = protowire.AppendVarint(dst, uint64(m.Kind))
	dst = protowire.AppendTag(dst, 3, protowire.BytesType)
	dst = protowire.AppendBytes(dst, m.Payload)
	return dst
}

// ParseMessage decodes the encoding written by AppendProto.
func ParseMessage(b []byte) (Message, error) {
	var m Message
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Message{}, ErrTruncatedMessage
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Message{}, ErrTruncatedMessage
			}
			m.Magic = uint16(v)
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Message{}, ErrTruncatedMessage
			}
			m.Kind = Command(v)
			b = b[n:]
		case 3:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Message{}, ErrTruncatedMessage
			}
			m.Payload = append([]byte{}, v...)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Message{}, ErrTruncatedMessage
			}
			b = b[n:]
		}
	}
	return m, nil
}

// VersionPayload is Version's command-specific body (spec.md §6: "`Version`
// carries `{version: u32 = 0x0000_0001, timestamp, capabilities: u64,
// sender_address, receiver_address, user_agent, last_epoch, nonce: u64}`").
type VersionPayload struct {
	Version         uint32
	Timestamp       int64
	Capabilities    uint64
	SenderAddress   Address
	ReceiverAddress Address
	UserAgent       string
	LastEpoch       primitives.Epoch
	Nonce           uint64
}

// ProtocolVersion is the fixed version field value spec.md §6 prescribes.
const ProtocolVersion uint32 = 0x0000_0001

// AppendProto encodes v's fields in declaration order.
func (v VersionPayload) AppendProto(dst []byte) []byte {
	dst = protowire.AppendTag(dst, 1, protowire.VarintType)
	dst = protowire.AppendVarint(dst, uint64(v.Version))
	dst = protowire.AppendTag(dst, 2, protowire.VarintType)
	dst = protowire.AppendVarint(dst, uint64(v.Timestamp))
	dst = protowire.AppendTag(dst, 3, protowire.VarintType)
	dst = protowire.AppendVarint(dst, v.Capabilities)
	dst = protowire.AppendTag(dst, 4, protowire.BytesType)
	dst = protowire.AppendBytes(dst, v.SenderAddress.AppendProto(nil))
	dst = protowire.AppendTag(dst, 5, protowire.BytesType)
	dst = protowire.AppendBytes(dst, v.ReceiverAddress.AppendProto(nil))
	dst = protowire.AppendTag(dst, 6, protowire.BytesType)
	dst = protowire.AppendString(dst, v.UserAgent)
	dst = protowire.AppendTag(dst, 7, protowire.VarintType)
	dst = protowire.AppendVarint(dst, uint64(v.LastEpoch))
	dst = protowire.AppendTag(dst, 8, protowire.VarintType)
	dst = protowire.AppendVarint(dst, v.Nonce)
	return dst
}

// ParseVersionPayload decodes the encoding written by AppendProto.
func ParseVersionPayload(b []byte) (VersionPayload, error) {
	var v VersionPayload
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return VersionPayload{}, ErrTruncatedMessage
		}
		b = b[n:]
		switch num {
		case 1:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return VersionPayload{}, ErrTruncatedMessage
			}
			v.Version = uint32(x)
			b = b[n:]
		case 2:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return VersionPayload{}, ErrTruncatedMessage
			}
			v.Timestamp = int64(x)
			b = b[n:]
		case 3:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return VersionPayload{}, ErrTruncatedMessage
			}
			v.Capabilities = x
			b = b[n:]
		case 4:
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return VersionPayload{}, ErrTruncatedMessage
			}
			addr, err := ParseAddress(raw)
			if err != nil {
				return VersionPayload{}, err
			}
			v.SenderAddress = addr
			b = b[n:]
		case 5:
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return VersionPayload{}, ErrTruncatedMessage
			}
			addr, err := ParseAddress(raw)
			if err != nil {
				return VersionPayload{}, err
			}
			v.ReceiverAddress = addr
			b = b[n:]
		case 6:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return VersionPayload{}, ErrTruncatedMessage
			}
			v.UserAgent = s
			b = b[n:]
		case 7:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return VersionPayload{}, ErrTruncatedMessage
			}
			v.LastEpoch = primitives.Epoch(x)
			b = b[n:]
		case 8:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return VersionPayload{}, ErrTruncatedMessage
			}
			v.Nonce = x
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return VersionPayload{}, ErrTruncatedMessage
			}
			b = b[n:]
		}
	}
	return v, nil
}
