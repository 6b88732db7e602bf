package sessions

import (
	"testing"
	"time"

	"github.com/libp2p/go-libp2p-core/network"
	"github.com/stretchr/testify/require"
)

func TestHandshakeConsolidatesOnlyAfterAllFourMessagesAndSenderAddress(t *testing.T) {
	s := NewSession(time.Unix(0, 0), "peer1", network.DirOutbound)
	require.False(t, s.Consolidated())

	s.OnVersionSent()
	require.Equal(t, HandshakeVersionSent, s.State())
	require.False(t, s.Consolidated())

	s.OnVersionReceived("1.2.3.4:21337")
	require.Equal(t, HandshakeVersionExchanged, s.State())
	require.False(t, s.Consolidated())

	s.OnVerackSent()
	require.False(t, s.Consolidated())

	s.OnVerackReceived()
	require.True(t, s.Consolidated())
	require.Equal(t, "1.2.3.4:21337", s.SenderAddress())
}

func TestHandshakeNotConsolidatedWithoutSenderAddress(t *testing.T) {
	s := NewSession(time.Unix(0, 0), "peer1", network.DirInbound)
	s.OnVersionSent()
	s.versionReceived = true // simulate a Version with no sender_address
	s.OnVerackSent()
	s.OnVerackReceived()
	require.False(t, s.Consolidated())
}

func TestTimedOutPastHandshakeTimeout(t *testing.T) {
	s := NewSession(time.Unix(0, 0), "peer1", network.DirOutbound)
	require.False(t, s.TimedOut(time.Unix(29, 0), 30*time.Second))
	require.True(t, s.TimedOut(time.Unix(31, 0), 30*time.Second))
}

func TestTimedOutNeverTrueOnceConsolidated(t *testing.T) {
	s := NewSession(time.Unix(0, 0), "peer1", network.DirOutbound)
	s.OnVersionSent()
	s.OnVersionReceived("1.2.3.4:21337")
	s.OnVerackSent()
	s.OnVerackReceived()
	require.False(t, s.TimedOut(time.Unix(1000, 0), 30*time.Second))
}
