package graph

// LatestStrategyID returns the strategy with the strictly greatest version.
// When several strategies share the maximum, the first one in nodes wins.
// ok is false when nodes holds no strategy.
func LatestStrategyID(nodes []Node) (id NodeID, ok bool) {
	best := 0
	for _, n := range nodes {
		s, isStrategy := n.(*Strategy)
		if !isStrategy {
			continue
		}
		if !ok || s.Version > best {
			id, best, ok = s.ID(), s.Version, true
		}
	}
	return id, ok
}

// ComputeVisibleIDs applies the per-node inclusion rule:
//
//   - strategy: only the latest strategy, regardless of filters or expansion;
//   - company: its resolved classification is in active;
//   - evidence/lesson: revealed by the current expansion.
//
// Each node is judged on its own, so the result does not depend on order.
// An empty latest hides every strategy.
func ComputeVisibleIDs(nodes []Node, active ClassificationSet, revealed IDSet, latest NodeID) IDSet {
	visible := make(IDSet)
	for _, n := range nodes {
		if isVisible(n, active, revealed, latest) {
			visible.add(n.ID())
		}
	}
	return visible
}

func isVisible(n Node, active ClassificationSet, revealed IDSet, latest NodeID) bool {
	switch n.Type() {
	case NodeTypeStrategy:
		return latest != "" && n.ID() == latest
	case NodeTypeCompany:
		return active.Has(Classify(n))
	case NodeTypeEvidence, NodeTypeLesson:
		return revealed.Has(n.ID())
	}
	return false
}
