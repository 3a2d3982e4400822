package snap

import (
	"testing"

	"github.com/unixpickle/meshknit/graph"
	"github.com/unixpickle/meshknit/mesh"
)

// line builds a path graph 0-1-2-...-(n-1) with unit edge lengths.
func line(n int) *graph.Graph {
	m := mesh.New()
	for i := 0; i < n; i++ {
		m.AddVertex(mesh.Coord3D{X: float64(i)})
	}
	// graph.Build derives adjacency only from triangles, and a row of
	// collinear vertices has none; snap.Path only needs Adjacency, not a
	// valid triangulation, so construct the adjacency directly instead.
	g := &graph.Graph{Adjacency: make([][]graph.Neighbor, n), Opposite: map[mesh.OrientedEdge]int{}}
	for i := 0; i < n-1; i++ {
		g.Adjacency[i] = append(g.Adjacency[i], graph.Neighbor{Vertex: i + 1, Length: 1})
		g.Adjacency[i+1] = append(g.Adjacency[i+1], graph.Neighbor{Vertex: i, Length: 1})
	}
	return g
}

func TestPathEmptyChain(t *testing.T) {
	path, diag := Path(line(5), nil, 0)
	if path != nil || diag != nil {
		t.Fatal("expected nil path and diagnostic for an empty chain")
	}
}

func TestPathDirectAdjacency(t *testing.T) {
	g := line(5)
	path, diag := Path(g, []int{0, 4}, 0)
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %v", diag)
	}
	want := []int{0, 1, 2, 3, 4}
	if !intsEqual(path, want) {
		t.Fatalf("got %v, want %v", path, want)
	}
}

func TestPathSkipsRepeatedGoal(t *testing.T) {
	g := line(3)
	path, diag := Path(g, []int{0, 0, 2}, 0)
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %v", diag)
	}
	want := []int{0, 1, 2}
	if !intsEqual(path, want) {
		t.Fatalf("got %v, want %v", path, want)
	}
}

func TestPathDisconnectedChainProducesDiagnostic(t *testing.T) {
	g := &graph.Graph{Adjacency: make([][]graph.Neighbor, 4), Opposite: map[mesh.OrientedEdge]int{}}
	g.Adjacency[0] = []graph.Neighbor{{Vertex: 1, Length: 1}}
	g.Adjacency[1] = []graph.Neighbor{{Vertex: 0, Length: 1}}
	// vertices 2,3 are isolated from 0,1

	path, diag := Path(g, []int{0, 1, 3}, 7)
	if diag == nil {
		t.Fatal("expected a diagnostic for a chain crossing components")
	}
	if diag.ConstraintIndex != 7 {
		t.Fatalf("expected constraint index 7, got %d", diag.ConstraintIndex)
	}
	if !intsEqual(path, []int{0, 1}) {
		t.Fatalf("expected path truncated at last reachable vertex, got %v", path)
	}
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
