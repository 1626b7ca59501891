package graph_test

import (
	"reflect"
	"testing"

	"github.com/gyaneshwarpardhi/huntgraph/internal/graph"
)

func strategy(t *testing.T, id string, version int) graph.Node {
	t.Helper()
	n, err := graph.NewStrategy(graph.NodeID(id), "", graph.StrategyFields{Version: version})
	if err != nil {
		t.Fatalf("NewStrategy(%s): %v", id, err)
	}
	return n
}

func company(t *testing.T, id, classification string) graph.Node {
	t.Helper()
	n, err := graph.NewCompany(graph.NodeID(id), "", graph.CompanyFields{
		Name:           id + " Inc",
		Domain:         id + ".example.com",
		Classification: classification,
	})
	if err != nil {
		t.Fatalf("NewCompany(%s): %v", id, err)
	}
	return n
}

func evidence(t *testing.T, id string) graph.Node {
	t.Helper()
	n, err := graph.NewEvidence(graph.NodeID(id), "", "https://"+id+".example.com", "summary of "+id)
	if err != nil {
		t.Fatalf("NewEvidence(%s): %v", id, err)
	}
	return n
}

func lesson(t *testing.T, id string) graph.Node {
	t.Helper()
	n, err := graph.NewLesson(graph.NodeID(id), "", graph.LessonFields{LessonID: id, Details: "details"})
	if err != nil {
		t.Fatalf("NewLesson(%s): %v", id, err)
	}
	return n
}

func edge(source, target, typ string) graph.Edge {
	return graph.Edge{Source: graph.NodeID(source), Target: graph.NodeID(target), Type: typ}
}

func ids(nodes []graph.Node) []graph.NodeID {
	out := make([]graph.NodeID, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID())
	}
	return out
}

func set(members ...string) graph.IDSet {
	s := make(graph.IDSet)
	for _, m := range members {
		s[graph.NodeID(m)] = struct{}{}
	}
	return s
}

// -----------------------------------------------------------------------
// Adjacency
// -----------------------------------------------------------------------

func TestBuildAdjacency_Symmetric(t *testing.T) {
	edges := []graph.Edge{
		edge("s1", "c1", "targets"),
		edge("c1", "e1", "has_evidence"),
		edge("s2", "s1", "evolved_from"),
		edge("l1", "s2", "informed"),
	}
	adj := graph.BuildAdjacency(edges)
	for a, neighbors := range adj {
		for b := range neighbors {
			if !adj[b].Has(a) {
				t.Errorf("%s -> %s present but %s -> %s missing", a, b, b, a)
			}
		}
	}
	if got := adj["c1"].Sorted(); !reflect.DeepEqual(got, []graph.NodeID{"e1", "s1"}) {
		t.Errorf("neighbors of c1 = %v, want [e1 s1]", got)
	}
}

func TestBuildAdjacency_MultiEdgesCollapse(t *testing.T) {
	adj := graph.BuildAdjacency([]graph.Edge{
		edge("a", "b", "x"),
		edge("a", "b", "y"),
		edge("b", "a", "z"),
	})
	if n := len(adj["a"]); n != 1 {
		t.Errorf("expected 1 neighbor for a, got %d", n)
	}
	if n := len(adj["b"]); n != 1 {
		t.Errorf("expected 1 neighbor for b, got %d", n)
	}
}

func TestBuildAdjacency_OrderIndependent(t *testing.T) {
	forward := []graph.Edge{edge("a", "b", ""), edge("b", "c", ""), edge("c", "d", "")}
	backward := []graph.Edge{edge("c", "d", ""), edge("b", "c", ""), edge("a", "b", "")}
	if !reflect.DeepEqual(graph.BuildAdjacency(forward), graph.BuildAdjacency(backward)) {
		t.Error("adjacency depends on edge order")
	}
}

func TestBuildAdjacency_IsolatedNodeAbsent(t *testing.T) {
	adj := graph.BuildAdjacency([]graph.Edge{edge("a", "b", "")})
	if _, ok := adj["z"]; ok {
		t.Error("isolated node should have no key")
	}
	if got := adj["z"].Sorted(); len(got) != 0 {
		t.Errorf("neighbors of isolated node = %v, want empty", got)
	}
}

// -----------------------------------------------------------------------
// Reachability
// -----------------------------------------------------------------------

func reachFixture(t *testing.T) ([]graph.Node, []graph.Edge) {
	t.Helper()
	nodes := []graph.Node{
		strategy(t, "s1", 1),
		company(t, "c1", "Strike"),
		company(t, "c2", "Monitor"),
		evidence(t, "e1"),
		evidence(t, "e2"),
		lesson(t, "l1"),
		lesson(t, "l2"),
	}
	edges := []graph.Edge{
		edge("c1", "e1", "has_evidence"), // direct hop
		edge("s1", "c1", "targets"),      // strategy neighbor of c1
		edge("s1", "l1", "learned"),      // second hop through s1
		edge("s1", "c2", "targets"),      // company via strategy: never pulled in
		edge("c2", "e2", "has_evidence"), // belongs to c2 only
		edge("e1", "l2", "supports"),     // three hops away from c1
	}
	return nodes, edges
}

func TestResolveExpansion_TwoHops(t *testing.T) {
	nodes, edges := reachFixture(t)
	got := graph.ResolveExpansion("c1", graph.BuildAdjacency(edges), graph.IndexNodes(nodes))
	if !reflect.DeepEqual(got, set("e1", "l1")) {
		t.Errorf("ResolveExpansion(c1) = %v, want {e1 l1}", got.Sorted())
	}
}

func TestResolveExpansion_NoFocus(t *testing.T) {
	nodes, edges := reachFixture(t)
	got := graph.ResolveExpansion("", graph.BuildAdjacency(edges), graph.IndexNodes(nodes))
	if len(got) != 0 {
		t.Errorf("expected empty set, got %v", got.Sorted())
	}
}

func TestResolveExpansion_NeverStrategyOrCompany(t *testing.T) {
	nodes, edges := reachFixture(t)
	adj := graph.BuildAdjacency(edges)
	index := graph.IndexNodes(nodes)
	for _, n := range nodes {
		for id := range graph.ResolveExpansion(n.ID(), adj, index) {
			switch index[id].Type() {
			case graph.NodeTypeStrategy, graph.NodeTypeCompany:
				t.Errorf("focus %s revealed %s node %s", n.ID(), index[id].Type(), id)
			}
		}
	}
}

func TestResolveExpansion_DoesNotMutateInputs(t *testing.T) {
	nodes, edges := reachFixture(t)
	adj := graph.BuildAdjacency(edges)
	index := graph.IndexNodes(nodes)
	before := graph.BuildAdjacency(edges)
	graph.ResolveExpansion("c1", adj, index)
	if !reflect.DeepEqual(adj, before) {
		t.Error("adjacency was mutated")
	}
	if len(index) != len(nodes) {
		t.Error("index was mutated")
	}
}

func TestResolveExpansion_UnknownNeighborIgnored(t *testing.T) {
	nodes := []graph.Node{company(t, "c1", "Strike")}
	adj := graph.BuildAdjacency([]graph.Edge{edge("c1", "ghost", "has_evidence")})
	if got := graph.ResolveExpansion("c1", adj, graph.IndexNodes(nodes)); len(got) != 0 {
		t.Errorf("expected empty set, got %v", got.Sorted())
	}
}

// -----------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		node graph.Node
		want graph.Classification
	}{
		{"strike", company(t, "a", "Strike"), graph.Strike},
		{"monitor", company(t, "b", "Monitor"), graph.Monitor},
		{"disregard", company(t, "c", "Disregard"), graph.Disregard},
		{"missing", company(t, "d", ""), graph.Unclassified},
		{"unknown value", company(t, "e", "Acquired"), graph.Unclassified},
		{"wrong case", company(t, "f", "strike"), graph.Unclassified},
		{"strategy", strategy(t, "s", 1), graph.Unclassified},
		{"evidence", evidence(t, "ev"), graph.Unclassified},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := graph.Classify(tc.node); got != tc.want {
				t.Errorf("Classify = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestClassificationSet(t *testing.T) {
	all := graph.AllClassifications()
	for _, c := range graph.Classifications {
		if !all.Has(c) {
			t.Errorf("AllClassifications missing %s", c)
		}
	}
	s := all.Toggle(graph.Monitor)
	if s.Has(graph.Monitor) {
		t.Error("Monitor still present after toggle")
	}
	if !all.Has(graph.Monitor) {
		t.Error("Toggle mutated the receiver")
	}
	if s.Toggle(graph.Monitor) != all {
		t.Error("double toggle should restore the set")
	}
	if _, err := graph.ParseClassificationSet([]string{"strike", "Nope"}); err == nil {
		t.Error("expected error for unknown classification name")
	}
	parsed, err := graph.ParseClassificationSet([]string{"strike", "UNCLASSIFIED"})
	if err != nil {
		t.Fatalf("ParseClassificationSet: %v", err)
	}
	if parsed != graph.NewClassificationSet(graph.Strike, graph.Unclassified) {
		t.Errorf("parsed = %s", parsed)
	}
}

// -----------------------------------------------------------------------
// Visibility
// -----------------------------------------------------------------------

func TestLatestStrategyID(t *testing.T) {
	cases := []struct {
		name   string
		nodes  []graph.Node
		want   graph.NodeID
		wantOK bool
	}{
		{"none", []graph.Node{company(t, "c1", "Strike")}, "", false},
		{"single", []graph.Node{strategy(t, "s1", 1)}, "s1", true},
		{"highest wins", []graph.Node{strategy(t, "s1", 1), strategy(t, "s3", 3), strategy(t, "s2", 2)}, "s3", true},
		{"tie first seen", []graph.Node{strategy(t, "a", 2), strategy(t, "b", 2), strategy(t, "c", 1)}, "a", true},
		{"tie first seen reversed", []graph.Node{strategy(t, "b", 2), strategy(t, "a", 2)}, "b", true},
		{"zero version", []graph.Node{strategy(t, "s0", 0)}, "s0", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := graph.LatestStrategyID(tc.nodes)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("LatestStrategyID = (%q, %v), want (%q, %v)", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestComputeVisibleIDs_Rules(t *testing.T) {
	nodes := []graph.Node{
		strategy(t, "s1", 1),
		strategy(t, "s2", 2),
		company(t, "c1", "Strike"),
		company(t, "c2", "Disregard"),
		company(t, "c3", "Acquired"),
		evidence(t, "e1"),
		lesson(t, "l1"),
	}
	active := graph.NewClassificationSet(graph.Strike, graph.Unclassified)
	got := graph.ComputeVisibleIDs(nodes, active, set("e1"), "s2")
	want := set("s2", "c1", "c3", "e1")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("visible = %v, want %v", got.Sorted(), want.Sorted())
	}
}

func TestComputeVisibleIDs_EmptyActiveHidesCompanies(t *testing.T) {
	nodes := []graph.Node{
		strategy(t, "s1", 1),
		company(t, "c1", "Strike"),
		company(t, "c2", ""),
		evidence(t, "e1"),
	}
	got := graph.ComputeVisibleIDs(nodes, graph.NewClassificationSet(), set("e1", "c1"), "s1")
	if got.Has("c1") || got.Has("c2") {
		t.Errorf("companies visible with empty filter: %v", got.Sorted())
	}
	if !got.Has("s1") || !got.Has("e1") {
		t.Errorf("strategy/evidence rules should still apply: %v", got.Sorted())
	}
}

func TestComputeVisibleIDs_OlderStrategyNeverShown(t *testing.T) {
	nodes := []graph.Node{strategy(t, "s1", 1), strategy(t, "s2", 2)}
	got := graph.ComputeVisibleIDs(nodes, graph.AllClassifications(), set("s1"), "s2")
	if got.Has("s1") {
		t.Error("older strategy visible through expansion")
	}
}

// -----------------------------------------------------------------------
// Projection
// -----------------------------------------------------------------------

func TestProject(t *testing.T) {
	nodes := []graph.Node{
		company(t, "c2", "Strike"),
		strategy(t, "s1", 1),
		company(t, "c1", "Strike"),
		evidence(t, "e1"),
	}
	edges := []graph.Edge{
		edge("s1", "c1", "targets"),
		edge("s1", "c2", "targets"),
		edge("c1", "e1", "has_evidence"), // e1 hidden
		edge("c1", "ghost", "targets"),   // dangling
	}
	sub := graph.Project(nodes, edges, set("c1", "c2", "s1", "ghost"))

	if got := ids(sub.Nodes); !reflect.DeepEqual(got, []graph.NodeID{"c2", "s1", "c1"}) {
		t.Errorf("nodes = %v, want input order [c2 s1 c1]", got)
	}
	if len(sub.Edges) != 2 {
		t.Fatalf("expected 2 edges, got %v", sub.Edges)
	}
	present := make(graph.IDSet)
	for _, n := range sub.Nodes {
		present[n.ID()] = struct{}{}
	}
	for _, e := range sub.Edges {
		if !present.Has(e.Source) || !present.Has(e.Target) {
			t.Errorf("edge %v has an endpoint outside the node list", e)
		}
	}

	sub.Edges[0].Type = "mutated"
	if edges[0].Type != "targets" {
		t.Error("projected edge aliases the input edge")
	}
}

func TestProject_Empty(t *testing.T) {
	sub := graph.Project(nil, nil, nil)
	if sub.Nodes == nil || sub.Edges == nil {
		t.Error("expected non-nil empty slices")
	}
}

// -----------------------------------------------------------------------
// Pipeline
// -----------------------------------------------------------------------

func TestMaterialize_LatestStrategyScenario(t *testing.T) {
	snap := &graph.Snapshot{
		Nodes: []graph.Node{
			strategy(t, "s1", 1),
			strategy(t, "s2", 2),
			company(t, "c1", "Strike"),
		},
		Edges: []graph.Edge{edge("s2", "c1", "targets")},
	}
	v := graph.Materialize(snap, graph.Filter{Active: graph.AllClassifications()})
	if got := ids(v.Nodes); !reflect.DeepEqual(got, []graph.NodeID{"s2", "c1"}) {
		t.Errorf("visible nodes = %v, want [s2 c1]", got)
	}
	if len(v.Edges) != 1 {
		t.Errorf("expected the s2->c1 edge, got %v", v.Edges)
	}
	if v.LatestStrategy != "s2" {
		t.Errorf("LatestStrategy = %q, want s2", v.LatestStrategy)
	}
}

func TestMaterialize_FocusRevealsEvidence(t *testing.T) {
	nodes, edges := reachFixture(t)
	snap := &graph.Snapshot{Nodes: nodes, Edges: edges}
	v := graph.Materialize(snap, graph.Filter{Active: graph.AllClassifications(), Focus: "c1"})
	got := make(graph.IDSet)
	for _, n := range v.Nodes {
		got[n.ID()] = struct{}{}
	}
	want := set("s1", "c1", "c2", "e1", "l1")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("visible = %v, want %v", got.Sorted(), want.Sorted())
	}
	if !reflect.DeepEqual(v.Revealed, []graph.NodeID{"e1", "l1"}) {
		t.Errorf("Revealed = %v", v.Revealed)
	}
}

func TestMaterialize_Idempotent(t *testing.T) {
	nodes, edges := reachFixture(t)
	snap := &graph.Snapshot{Nodes: nodes, Edges: edges}
	f := graph.Filter{Active: graph.NewClassificationSet(graph.Strike), Focus: "c1"}
	first := graph.Materialize(snap, f)
	second := graph.Materialize(snap, f)
	if !reflect.DeepEqual(ids(first.Nodes), ids(second.Nodes)) {
		t.Errorf("nodes differ: %v vs %v", ids(first.Nodes), ids(second.Nodes))
	}
	if !reflect.DeepEqual(first.Edges, second.Edges) {
		t.Errorf("edges differ: %v vs %v", first.Edges, second.Edges)
	}
}

func TestMaterialize_NilSnapshot(t *testing.T) {
	v := graph.Materialize(nil, graph.Filter{Active: graph.AllClassifications()})
	if len(v.Nodes) != 0 || len(v.Edges) != 0 {
		t.Errorf("expected empty view, got %d nodes %d edges", len(v.Nodes), len(v.Edges))
	}
}

func TestStore_ReplaceSwapsSnapshot(t *testing.T) {
	s := graph.NewStore()
	if len(s.Load().Nodes) != 0 {
		t.Fatal("new store should be empty")
	}
	first := &graph.Snapshot{Nodes: []graph.Node{company(t, "c1", "")}}
	second := &graph.Snapshot{Nodes: []graph.Node{company(t, "c2", "")}}
	s.Replace(first)
	s.Replace(second)
	if s.Load() != second {
		t.Error("last Replace should win")
	}
	s.Replace(nil)
	if s.Load() == nil {
		t.Error("Replace(nil) should install an empty snapshot")
	}
}
