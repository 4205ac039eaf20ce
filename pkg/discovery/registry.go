package discovery

import (
	"sort"
	"sync"
)

// Peer is one sighting of a remote instance. Two peers are the same only if
// both the ID and the address match, so an instance that changes address is
// listed twice.
type Peer struct {
	ID   string `json:"id" yaml:"id"`
	Addr string `json:"addr" yaml:"addr"`
}

func (p Peer) String() string {
	return p.ID + " (" + p.Addr + ")"
}

// Registry is the set of peers seen since it was created. Entries are never
// removed. It is safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	peers map[Peer]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{peers: make(map[Peer]struct{})}
}

// Add inserts p and reports whether it was not already present.
func (r *Registry) Add(p Peer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.peers[p]; exists {
		return false
	}
	r.peers[p] = struct{}{}
	return true
}

// Snapshot returns a copy of all peers, sorted by ID then address.
// The caller owns the returned slice.
func (r *Registry) Snapshot() []Peer {
	r.mu.Lock()
	out := make([]Peer, 0, len(r.peers))
	for p := range r.peers {
		out = append(out, p)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Addr < out[j].Addr
	})
	return out
}

// Len returns the number of distinct peers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.peers)
}
