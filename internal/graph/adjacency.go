package graph

import "sort"

// IDSet is a set of node ids.
type IDSet map[NodeID]struct{}

func (s IDSet) Has(id NodeID) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) add(id NodeID) {
	s[id] = struct{}{}
}

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []NodeID {
	out := make([]NodeID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Adjacency is an undirected neighbor map. Nodes without edges have no key;
// a missing key is an empty neighbor set.
type Adjacency map[NodeID]IDSet

// BuildAdjacency inserts every edge in both directions. Parallel edges
// collapse into one neighbor entry, so the result does not depend on edge order.
func BuildAdjacency(edges []Edge) Adjacency {
	adj := make(Adjacency)
	for _, e := range edges {
		adj.link(e.Source, e.Target)
		adj.link(e.Target, e.Source)
	}
	return adj
}

func (a Adjacency) link(from, to NodeID) {
	set, ok := a[from]
	if !ok {
		set = make(IDSet)
		a[from] = set
	}
	set.add(to)
}
