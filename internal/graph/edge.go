package graph

import (
	"encoding/json"
	"fmt"
)

// Edge is a directed relation between two nodes. It is rendered with
// direction but traversed as undirected for reachability.
type Edge struct {
	Source NodeID `json:"source"`
	Target NodeID `json:"target"`
	Type   string `json:"type"`
}

// UnmarshalJSON normalizes source/target from either a bare id or an
// embedded node object to a bare id.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var w struct {
		Source *endpoint `json:"source"`
		Target *endpoint `json:"target"`
		Type   string    `json:"type"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode edge: %w", err)
	}
	if w.Source == nil || *w.Source == "" {
		return fmt.Errorf("decode edge: source is required")
	}
	if w.Target == nil || *w.Target == "" {
		return fmt.Errorf("decode edge: target is required")
	}
	*e = Edge{Source: NodeID(*w.Source), Target: NodeID(*w.Target), Type: w.Type}
	return nil
}
