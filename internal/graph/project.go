package graph

// Subgraph is the node and edge list handed to the renderer.
type Subgraph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"links"`
}

// Project keeps the nodes in visible (input order preserved) and the edges
// whose endpoints are both visible. Edges are returned as fresh values so the
// render layer can decorate them without touching the snapshot. This is the
// only place nodes and edges are filtered together; an edge pointing at an
// unknown or hidden node is dropped here without error.
func Project(nodes []Node, edges []Edge, visible IDSet) Subgraph {
	out := Subgraph{
		Nodes: make([]Node, 0, len(visible)),
		Edges: make([]Edge, 0),
	}
	present := make(IDSet, len(visible))
	for _, n := range nodes {
		if visible.Has(n.ID()) {
			out.Nodes = append(out.Nodes, n)
			present.add(n.ID())
		}
	}
	for _, e := range edges {
		if present.Has(e.Source) && present.Has(e.Target) {
			out.Edges = append(out.Edges, Edge{Source: e.Source, Target: e.Target, Type: e.Type})
		}
	}
	return out
}
