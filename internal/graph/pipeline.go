package graph

import "time"

// Filter is the slice of UI state the pipeline depends on.
type Filter struct {
	Active ClassificationSet
	Focus  NodeID
}

// View is the materialized, render-ready subgraph for one snapshot and filter.
type View struct {
	Subgraph
	Active         ClassificationSet `json:"active"`
	Focus          NodeID            `json:"focus,omitempty"`
	LatestStrategy NodeID            `json:"latest_strategy,omitempty"`
	Revealed       []NodeID          `json:"revealed"`
	TotalNodes     int               `json:"total_nodes"`
	TotalEdges     int               `json:"total_edges"`
	FetchedAt      time.Time         `json:"fetched_at"`
}

// Materialize runs the full pipeline:
// adjacency → expansion → latest strategy → visibility → projection.
// It is pure; the same snapshot and filter always produce the same view.
func Materialize(snap *Snapshot, f Filter) *View {
	if snap == nil {
		snap = EmptySnapshot()
	}
	adj := BuildAdjacency(snap.Edges)
	index := IndexNodes(snap.Nodes)
	revealed := ResolveExpansion(f.Focus, adj, index)
	latest, _ := LatestStrategyID(snap.Nodes)
	visible := ComputeVisibleIDs(snap.Nodes, f.Active, revealed, latest)

	return &View{
		Subgraph:       Project(snap.Nodes, snap.Edges, visible),
		Active:         f.Active,
		Focus:          f.Focus,
		LatestStrategy: latest,
		Revealed:       revealed.Sorted(),
		TotalNodes:     len(snap.Nodes),
		TotalEdges:     len(snap.Edges),
		FetchedAt:      snap.FetchedAt,
	}
}
