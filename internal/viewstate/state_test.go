package viewstate_test

import (
	"testing"

	"github.com/gyaneshwarpardhi/huntgraph/internal/graph"
	"github.com/gyaneshwarpardhi/huntgraph/internal/viewstate"
)

func clickCompany(id string) viewstate.ClickNode {
	return viewstate.ClickNode{ID: graph.NodeID(id), Type: graph.NodeTypeCompany}
}

func TestInitial(t *testing.T) {
	s := viewstate.Initial()
	if s.Active != graph.AllClassifications() {
		t.Errorf("Active = %s, want all", s.Active)
	}
	if s.Focus != "" || s.Selected != "" {
		t.Errorf("expected no focus or selection, got %+v", s)
	}
}

func TestClickCompanyTogglesFocus(t *testing.T) {
	s := viewstate.Initial()

	s = viewstate.Reduce(s, clickCompany("c1"))
	if s.Focus != "c1" {
		t.Fatalf("after first click Focus = %q, want c1", s.Focus)
	}
	if s.Selected != "c1" {
		t.Errorf("after first click Selected = %q, want c1", s.Selected)
	}

	s = viewstate.Reduce(s, clickCompany("c1"))
	if s.Focus != "" {
		t.Errorf("after second click Focus = %q, want none", s.Focus)
	}
}

func TestClickOtherCompanyMovesFocus(t *testing.T) {
	s := viewstate.Reduce(viewstate.Initial(), clickCompany("c1"))
	s = viewstate.Reduce(s, clickCompany("c2"))
	if s.Focus != "c2" {
		t.Errorf("Focus = %q, want c2", s.Focus)
	}
}

func TestClickNonCompanyOnlySelects(t *testing.T) {
	cases := []graph.NodeType{graph.NodeTypeStrategy, graph.NodeTypeEvidence, graph.NodeTypeLesson}
	for _, typ := range cases {
		t.Run(string(typ), func(t *testing.T) {
			s := viewstate.Reduce(viewstate.Initial(), clickCompany("c1"))
			s = viewstate.Reduce(s, viewstate.ClickNode{ID: "x", Type: typ})
			if s.Focus != "c1" {
				t.Errorf("Focus = %q, want c1 unchanged", s.Focus)
			}
			if s.Selected != "x" {
				t.Errorf("Selected = %q, want x", s.Selected)
			}
		})
	}
}

func TestClickBackground(t *testing.T) {
	s := viewstate.Reduce(viewstate.Initial(), clickCompany("c1"))
	s = viewstate.Reduce(s, viewstate.ClickBackground{})
	if s.Focus != "" || s.Selected != "" {
		t.Errorf("expected cleared focus and selection, got %+v", s)
	}
	if s.Active != graph.AllClassifications() {
		t.Errorf("background click changed filters: %s", s.Active)
	}
}

func TestToggleClassification(t *testing.T) {
	s := viewstate.Initial()
	s = viewstate.Reduce(s, viewstate.ToggleClassification{Classification: graph.Disregard})
	if s.Active.Has(graph.Disregard) {
		t.Error("Disregard still active after toggle")
	}
	s = viewstate.Reduce(s, viewstate.ToggleClassification{Classification: graph.Disregard})
	if !s.Active.Has(graph.Disregard) {
		t.Error("Disregard inactive after second toggle")
	}
}

func TestReset(t *testing.T) {
	start := viewstate.WithActive(graph.NewClassificationSet(graph.Strike))
	s := viewstate.Reduce(start, clickCompany("c1"))
	s = viewstate.Reduce(s, viewstate.ToggleClassification{Classification: graph.Monitor})
	s = viewstate.Reduce(s, viewstate.Reset{Start: start})
	if s != start {
		t.Errorf("Reset = %+v, want %+v", s, start)
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	before := viewstate.Initial()
	snapshot := before
	_ = viewstate.Reduce(before, clickCompany("c1"))
	_ = viewstate.Reduce(before, viewstate.ToggleClassification{Classification: graph.Strike})
	if before != snapshot {
		t.Errorf("input state changed: %+v", before)
	}
	if got := viewstate.Reduce(before, nil); got != before {
		t.Errorf("nil action changed state: %+v", got)
	}
}

func TestFilterFeedsPipeline(t *testing.T) {
	c1, err := graph.NewCompany("c1", "", graph.CompanyFields{Classification: "Strike"})
	if err != nil {
		t.Fatal(err)
	}
	ev, err := graph.NewEvidence("e1", "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	snap := &graph.Snapshot{
		Nodes: []graph.Node{c1, ev},
		Edges: []graph.Edge{{Source: "c1", Target: "e1", Type: "has_evidence"}},
	}

	s := viewstate.Reduce(viewstate.Initial(), clickCompany("c1"))
	if n := len(graph.Materialize(snap, s.Filter()).Nodes); n != 2 {
		t.Errorf("focused view has %d nodes, want 2", n)
	}
	s = viewstate.Reduce(s, clickCompany("c1"))
	if n := len(graph.Materialize(snap, s.Filter()).Nodes); n != 1 {
		t.Errorf("unfocused view has %d nodes, want 1", n)
	}
}
