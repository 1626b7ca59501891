package graph

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Snapshot is the full node and edge set as last fetched.
// It is immutable once built; a refresh creates a new Snapshot and swaps it in.
type Snapshot struct {
	Nodes     []Node
	Edges     []Edge
	Rejected  []Rejection
	FetchedAt time.Time
}

// Rejection records a payload item that was dropped while decoding.
type Rejection struct {
	Kind   string `json:"kind"` // "node" | "link"
	Index  int    `json:"index"`
	ID     NodeID `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// EmptySnapshot is what the store holds before the first successful fetch.
func EmptySnapshot() *Snapshot {
	return &Snapshot{Nodes: []Node{}, Edges: []Edge{}}
}

type payload struct {
	Nodes []json.RawMessage `json:"nodes"`
	Links []json.RawMessage `json:"links"`
}

// DecodeSnapshot parses a {"nodes": [...], "links": [...]} payload.
// Bad items are dropped individually and listed in Rejected; only a payload
// that is not a JSON object at all returns an error. Dangling links are kept:
// the projector drops them.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode graph payload: %w", err)
	}
	snap := &Snapshot{
		Nodes: make([]Node, 0, len(p.Nodes)),
		Edges: make([]Edge, 0, len(p.Links)),
	}
	seen := make(map[NodeID]struct{}, len(p.Nodes))
	domains := make(map[string]NodeID)

	for i, raw := range p.Nodes {
		n, err := DecodeNode(raw)
		if err != nil {
			snap.Rejected = append(snap.Rejected, Rejection{Kind: "node", Index: i, Reason: err.Error()})
			continue
		}
		if _, dup := seen[n.ID()]; dup {
			snap.Rejected = append(snap.Rejected, Rejection{Kind: "node", Index: i, ID: n.ID(), Reason: "duplicate id"})
			continue
		}
		if c, ok := n.(*Company); ok && c.Domain != "" {
			key := strings.ToLower(c.Domain)
			if first, dup := domains[key]; dup {
				snap.Rejected = append(snap.Rejected, Rejection{
					Kind: "node", Index: i, ID: n.ID(),
					Reason: fmt.Sprintf("domain %q already used by company %s", c.Domain, first),
				})
				continue
			}
			domains[key] = n.ID()
		}
		seen[n.ID()] = struct{}{}
		snap.Nodes = append(snap.Nodes, n)
	}

	for i, raw := range p.Links {
		var e Edge
		if err := json.Unmarshal(raw, &e); err != nil {
			snap.Rejected = append(snap.Rejected, Rejection{Kind: "link", Index: i, Reason: err.Error()})
			continue
		}
		snap.Edges = append(snap.Edges, e)
	}
	return snap, nil
}

// Index maps node ids to nodes.
type Index map[NodeID]Node

// IndexNodes builds an id → node lookup. The first node wins on duplicate ids.
func IndexNodes(nodes []Node) Index {
	idx := make(Index, len(nodes))
	for _, n := range nodes {
		if _, ok := idx[n.ID()]; !ok {
			idx[n.ID()] = n
		}
	}
	return idx
}

// Store holds the current snapshot. Replace swaps atomically, so the last
// call to complete wins.
type Store struct {
	snap atomic.Pointer[Snapshot]
}

// NewStore returns a store holding an empty snapshot.
func NewStore() *Store {
	s := &Store{}
	s.snap.Store(EmptySnapshot())
	return s
}

// Load returns the current snapshot. Callers must not mutate it.
func (s *Store) Load() *Snapshot {
	return s.snap.Load()
}

// Replace installs snap as the current snapshot.
func (s *Store) Replace(snap *Snapshot) {
	if snap == nil {
		snap = EmptySnapshot()
	}
	s.snap.Store(snap)
}
