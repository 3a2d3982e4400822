package planarmap

import (
	"math"
	"testing"

	"github.com/unixpickle/meshknit/embedded"
	"github.com/unixpickle/meshknit/mesh"
)

func rightTriangleMesh() *mesh.Mesh {
	m := mesh.New()
	m.AddVertex(mesh.Coord3D{X: 0, Y: 0})
	m.AddVertex(mesh.Coord3D{X: 2, Y: 0})
	m.AddVertex(mesh.Coord3D{X: 0, Y: 2})
	m.AddTriangle(mesh.Triangle{0, 1, 2})
	return m
}

func triArea(vs []embedded.Vertex, positions []mesh.Coord3D, t mesh.Triangle) float64 {
	a := vs[t[0]].Position(positions)
	b := vs[t[1]].Position(positions)
	c := vs[t[2]].Position(positions)
	return b.Sub(a).Cross(c.Sub(a)).Norm() / 2
}

func TestNewPreregistersMeshVertices(t *testing.T) {
	m := rightTriangleMesh()
	pm := New(m, 1e-6, SameValue)
	for i := range m.Vertices {
		if id := pm.ensureCorner(i); id != i {
			t.Fatalf("expected mesh vertex %d to keep id %d, got %d", i, i, id)
		}
	}
}

func TestSplitTrianglesNoEdgesIsIdentity(t *testing.T) {
	m := rightTriangleMesh()
	pm := New(m, 1e-6, SameValue)
	outVerts, outTris, idMap := pm.SplitTriangles()
	if len(outTris) != 1 || outTris[0] != (mesh.Triangle{0, 1, 2}) {
		t.Fatalf("expected the untouched triangle unchanged, got %v", outTris)
	}
	if len(outVerts) != 3 {
		t.Fatalf("expected 3 output vertices, got %d", len(outVerts))
	}
	for i := range idMap {
		if idMap[i] != i {
			t.Fatalf("expected an identity id map, got %v", idMap)
		}
	}
}

func TestAddVertexMergesWithinTolerance(t *testing.T) {
	m := rightTriangleMesh()
	pm := New(m, 1e-3, SameValue)
	a := pm.AddVertex(embedded.AtEdge(0, 1, 0.25))
	b := pm.AddVertex(embedded.AtEdge(1, 0, 0.74999999))
	if a != b {
		t.Fatalf("expected near-identical edge points to merge, got %d and %d", a, b)
	}
}

func TestAddVertexMergesIntoCorner(t *testing.T) {
	m := rightTriangleMesh()
	pm := New(m, 1e-2, SameValue)
	id := pm.AddVertex(embedded.AtEdge(0, 1, 0.001))
	if id != 0 {
		t.Fatalf("expected a near-zero t to merge into corner 0, got %d", id)
	}
}

func TestAddEdgeSameValueDropsMismatch(t *testing.T) {
	m := rightTriangleMesh()
	pm := New(m, 1e-6, SameValue)
	p := pm.AddVertex(embedded.AtEdge(0, 1, 0.25))
	q := pm.AddVertex(embedded.AtEdge(0, 2, 0.25))
	if !pm.AddEdge(p, q, 1.0) {
		t.Fatal("expected the first insert to succeed")
	}
	if pm.AddEdge(p, q, 2.0) {
		t.Fatal("expected a conflicting value to be dropped under SameValue")
	}
	if !pm.AddEdge(p, q, 1.0) {
		t.Fatal("expected a duplicate identical insert to be accepted under SameValue")
	}
}

func TestAddEdgeReplaceValueOverwrites(t *testing.T) {
	m := rightTriangleMesh()
	pm := New(m, 1e-6, ReplaceValue)
	p := pm.AddVertex(embedded.AtEdge(0, 1, 0.25))
	q := pm.AddVertex(embedded.AtEdge(0, 2, 0.25))
	pm.AddEdge(p, q, 1.0)
	if !pm.AddEdge(p, q, 2.0) {
		t.Fatal("expected ReplaceValue to accept the overwrite")
	}
}

func TestAddEdgePanicsWithNoCommonTriangle(t *testing.T) {
	m := mesh.New()
	for _, c := range []mesh.Coord3D{{X: 0}, {X: 1}, {Y: 1}, {X: 5}, {X: 6}, {Y: 5}} {
		m.AddVertex(c)
	}
	m.AddTriangle(mesh.Triangle{0, 1, 2})
	m.AddTriangle(mesh.Triangle{3, 4, 5})
	pm := New(m, 1e-6, SameValue)

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for vertices with no shared triangle")
		}
	}()
	pm.AddEdge(0, 3, 1.0)
}

func TestSplitTrianglesBisectsByOneChord(t *testing.T) {
	m := rightTriangleMesh()
	pm := New(m, 1e-6, SameValue)
	p := pm.AddVertex(embedded.AtEdge(0, 1, 0.25))
	q := pm.AddVertex(embedded.AtEdge(0, 2, 0.25))
	pm.AddEdge(p, q, 1.0)

	outVerts, outTris, _ := pm.SplitTriangles()
	if len(outTris) != 3 {
		t.Fatalf("expected 3 triangles (1 corner + quad split in 2), got %d", len(outTris))
	}

	var total float64
	for _, tri := range outTris {
		total += triArea(outVerts, m.Vertices, tri)
	}
	if math.Abs(total-2.0) > 1e-9 {
		t.Fatalf("expected sub-triangle areas to sum to the original area 2.0, got %v", total)
	}
}

func TestInscribedEdgesReportsValue(t *testing.T) {
	m := rightTriangleMesh()
	pm := New(m, 1e-6, SameValue)
	p := pm.AddVertex(embedded.AtEdge(0, 1, 0.25))
	q := pm.AddVertex(embedded.AtEdge(0, 2, 0.25))
	pm.AddEdge(p, q, 3.5)
	pm.SplitTriangles()

	inscribed := pm.InscribedEdges()
	if v, ok := inscribed[mesh.NewEdge(p, q)]; !ok || v != 3.5 {
		t.Fatalf("expected edge (%d,%d) inscribed with value 3.5, got %v, %v", p, q, v, ok)
	}
	if len(inscribed) != 1 {
		t.Fatalf("expected exactly 1 inscribed edge, got %d", len(inscribed))
	}
}

func TestSimplexEdgesReportsInsertedSegment(t *testing.T) {
	m := rightTriangleMesh()
	pm := New(m, 1e-6, SameValue)
	p := pm.AddVertex(embedded.AtEdge(0, 1, 0.25))
	q := pm.AddVertex(embedded.AtEdge(0, 2, 0.25))
	pm.AddEdge(p, q, 1.0)

	rows := pm.SimplexEdges(mesh.Triangle{0, 1, 2})
	if len(rows) != 1 {
		t.Fatalf("expected 1 stored segment, got %d", len(rows))
	}
	if rows[0][2] != 1.0 {
		t.Fatalf("expected stored value 1.0, got %v", rows[0][2])
	}
}
