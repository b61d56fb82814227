package meshmodel

import (
	"sync"
	"time"
)

// PeerTTL is the freshness window after which a peer not re-seen during a
// discovery pass is evicted (spec.md §3, invariant 2).
const PeerTTL = 60 * time.Second

// PeerTable is the reader-writer-locked map of node_id -> Node for peers.
// The Discovery loop is the sole writer; the status query and the
// aggregator are readers.
type PeerTable struct {
	mu    sync.RWMutex
	peers map[string]*Node
}

// NewPeerTable creates an empty peer table.
func NewPeerTable() *PeerTable {
	return &PeerTable{peers: make(map[string]*Node)}
}

// Touch creates a peer on first reception or updates LastSeen and the
// advertised fields on subsequent receptions.
func (t *PeerTable) Touch(peer *Node, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	peer.LastSeen = now
	t.peers[peer.NodeID] = peer
}

// EvictStale removes every peer whose LastSeen exceeds PeerTTL relative
// to now, and returns the ids removed.
func (t *PeerTable) EvictStale(now time.Time) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var evicted []string
	for id, peer := range t.peers {
		if now.Sub(peer.LastSeen) > PeerTTL {
			delete(t.peers, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

// Snapshot returns a point-in-time copy of every peer record. Each
// returned Node is itself a value-copy snapshot, so callers never
// observe a record mutated mid-read.
func (t *PeerTable) Snapshot() []Node {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Node, 0, len(t.peers))
	for _, peer := range t.peers {
		out = append(out, peer.Snapshot())
	}
	return out
}

// Len reports the current peer count.
func (t *PeerTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.peers)
}
