// Package sessions implements SessionsManager: the handshake state machine
// and per-epoch peer-beacon collection (spec.md §4.10).
package sessions

import (
	"time"

	"github.com/libp2p/go-libp2p-core/network"
	"github.com/libp2p/go-libp2p-core/peer"
)

// HandshakeState collapses the original four independent flags
// (version_tx, version_rx, verack_tx, verack_rx) into a single enum, per the
// redesign in spec.md §9: a session is only ever in one of these states,
// rather than one of sixteen flag combinations most of which are invalid.
type HandshakeState int

// HandshakeState values, in handshake order.
const (
	HandshakeAwaitingVersion HandshakeState = iota
	HandshakeVersionSent
	HandshakeVersionReceived
	HandshakeVersionExchanged
	HandshakeConsolidated
)

// Session tracks one peer connection's handshake progress and the
// negotiated remote sender address (spec.md §4.10 "Sessions form via a
// 4-message handshake ...; only when all four are true and a remote
// sender_address is recorded is the session Consolidated").
type Session struct {
	state HandshakeState

	versionSent     bool
	versionReceived bool
	verackSent      bool
	verackReceived  bool
	senderAddress   string

	startedAt time.Time

	PeerID    peer.ID
	Direction network.Direction
}

// NewSession starts a handshake at startedAt (injected so timeout checks
// are deterministic in tests) with a peer identity and connection
// direction, mirroring how prysm's peer status tracker tags every
// connection (`network.DirInbound`/`network.DirOutbound`) rather than
// inferring it later from context.
func NewSession(startedAt time.Time, id peer.ID, direction network.Direction) *Session {
	return &Session{state: HandshakeAwaitingVersion, startedAt: startedAt, PeerID: id, Direction: direction}
}

// State returns the session's current handshake state.
func (s *Session) State() HandshakeState { return s.state }

// OnVersionSent records that our Version message was sent.
func (s *Session) OnVersionSent() { s.versionSent = true; s.advance() }

// OnVersionReceived records the peer's Version message, along with the
// sender_address it carried.
func (s *Session) OnVersionReceived(senderAddress string) {
	s.versionReceived = true
	s.senderAddress = senderAddress
	s.advance()
}

// OnVerackSent records that our Verack was sent.
func (s *Session) OnVerackSent() { s.verackSent = true; s.advance() }

// OnVerackReceived records the peer's Verack.
func (s *Session) OnVerackReceived() { s.verackReceived = true; s.advance() }

func (s *Session) advance() {
	switch {
	case s.versionSent && s.versionReceived && s.verackSent && s.verackReceived && s.senderAddress != "":
		s.state = HandshakeConsolidated
	case s.versionSent && s.versionReceived:
		s.state = HandshakeVersionExchanged
	case s.versionReceived:
		s.state = HandshakeVersionReceived
	case s.versionSent:
		s.state = HandshakeVersionSent
	}
}

// Consolidated reports whether the handshake has completed.
func (s *Session) Consolidated() bool { return s.state == HandshakeConsolidated }

// SenderAddress returns the peer's negotiated sender address, if received.
func (s *Session) SenderAddress() string { return s.senderAddress }

// TimedOut reports whether the handshake is unconsolidated past
// handshakeTimeout, measured from startedAt against now (spec.md §4.10 "A
// session unconsolidated past handshake_timeout is dropped").
func (s *Session) TimedOut(now time.Time, handshakeTimeout time.Duration) bool {
	return !s.Consolidated() && now.Sub(s.startedAt) > handshakeTimeout
}
