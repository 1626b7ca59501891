package graph

// ResolveExpansion returns the evidence and lesson nodes revealed by focusing
// on focus. The walk is exactly two hops:
//
//  1. every evidence/lesson neighbor of focus;
//  2. every evidence/lesson neighbor of a strategy neighbor of focus.
//
// Strategy and company nodes are never added, so a focus cannot pull in
// other leads. An empty focus yields an empty set. Neither adj nor index is
// modified.
func ResolveExpansion(focus NodeID, adj Adjacency, index Index) IDSet {
	revealed := make(IDSet)
	if focus == "" {
		return revealed
	}
	for hop := range adj[focus] {
		n, ok := index[hop]
		if !ok {
			continue
		}
		switch n.Type() {
		case NodeTypeEvidence, NodeTypeLesson:
			revealed.add(hop)
		case NodeTypeStrategy:
			for second := range adj[hop] {
				if revealable(index[second]) {
					revealed.add(second)
				}
			}
		}
	}
	return revealed
}

func revealable(n Node) bool {
	if n == nil {
		return false
	}
	t := n.Type()
	return t == NodeTypeEvidence || t == NodeTypeLesson
}
