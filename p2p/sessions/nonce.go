package sessions

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
)

// NonceTracker generates the Version message's nonce (spec.md §6 "Version
// carries {..., nonce: u64}") and remembers every nonce this node has sent,
// so a Version echoing one of our own nonces back is recognized as a
// self-connection rather than a distinct peer.
type NonceTracker struct {
	mu   sync.Mutex
	sent map[uint64]struct{}
}

// NewNonceTracker returns an empty tracker.
func NewNonceTracker() *NonceTracker {
	return &NonceTracker{sent: make(map[uint64]struct{})}
}

// Generate returns a fresh nonce, derived from a random UUIDv4 truncated to
// 64 bits, and records it as one of ours.
func (t *NonceTracker) Generate() uint64 {
	id := uuid.New()
	nonce := binary.BigEndian.Uint64(id[:8])

	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent[nonce] = struct{}{}
	return nonce
}

// IsSelfConnect reports whether nonce matches one this node generated
// itself, meaning the Version carrying it came back over a loop (dialing
// our own listening address, or a NAT reflection).
func (t *NonceTracker) IsSelfConnect(nonce uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sent[nonce]
	return ok
}
