package meshknit

import (
	"context"
	"math"
	"testing"

	"github.com/unixpickle/meshknit/mesh"
)

func unitCube() *mesh.Mesh {
	m := mesh.New()
	m.AddVertex(mesh.Coord3D{X: 0, Y: 0, Z: 0})
	m.AddVertex(mesh.Coord3D{X: 1, Y: 0, Z: 0})
	m.AddVertex(mesh.Coord3D{X: 1, Y: 1, Z: 0})
	m.AddVertex(mesh.Coord3D{X: 0, Y: 1, Z: 0})
	m.AddVertex(mesh.Coord3D{X: 0, Y: 0, Z: 1})
	m.AddVertex(mesh.Coord3D{X: 1, Y: 0, Z: 1})
	m.AddVertex(mesh.Coord3D{X: 1, Y: 1, Z: 1})
	m.AddVertex(mesh.Coord3D{X: 0, Y: 1, Z: 1})
	for _, t := range []mesh.Triangle{
		{0, 2, 1}, {0, 3, 2},
		{4, 5, 6}, {4, 6, 7},
		{0, 1, 5}, {0, 5, 4},
		{3, 6, 2}, {3, 7, 6},
		{0, 4, 7}, {0, 7, 3},
		{1, 2, 6}, {1, 6, 5},
	} {
		m.AddTriangle(t)
	}
	return m
}

// flatSquare is two triangles sharing the diagonal v0-v2.
func flatSquare() *mesh.Mesh {
	m := mesh.New()
	m.AddVertex(mesh.Coord3D{X: 0, Y: 0})
	m.AddVertex(mesh.Coord3D{X: 1, Y: 0})
	m.AddVertex(mesh.Coord3D{X: 1, Y: 1})
	m.AddVertex(mesh.Coord3D{X: 0, Y: 1})
	m.AddTriangle(mesh.Triangle{0, 1, 2})
	m.AddTriangle(mesh.Triangle{0, 2, 3})
	return m
}

func tetra(offset mesh.Coord3D, base int) ([]mesh.Coord3D, []mesh.Triangle) {
	verts := []mesh.Coord3D{
		offset,
		offset.Add(mesh.Coord3D{X: 1}),
		offset.Add(mesh.Coord3D{Y: 1}),
		offset.Add(mesh.Coord3D{Z: 1}),
	}
	tris := []mesh.Triangle{
		{base, base + 1, base + 2},
		{base, base + 3, base + 1},
		{base, base + 2, base + 3},
		{base + 1, base + 3, base + 2},
	}
	return verts, tris
}

func twoDisjointTetrahedra() *mesh.Mesh {
	m := mesh.New()
	vs1, ts1 := tetra(mesh.Coord3D{}, 0)
	vs2, ts2 := tetra(mesh.Coord3D{X: 10}, 4)
	for _, v := range vs1 {
		m.AddVertex(v)
	}
	for _, v := range vs2 {
		m.AddVertex(v)
	}
	for _, t := range ts1 {
		m.AddTriangle(t)
	}
	for _, t := range ts2 {
		m.AddTriangle(t)
	}
	return m
}

func TestEmbedNoConstraintsRoundTrips(t *testing.T) {
	m := unitCube()
	e := Embedder{MaxEdgeLength: 10}
	res, diags, err := e.Embed(context.Background(), m, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
	if len(res.Mesh.Vertices) != 8 || len(res.Mesh.Triangles) != 12 {
		t.Fatalf("expected the unrefined cube unchanged, got %d verts, %d tris",
			len(res.Mesh.Vertices), len(res.Mesh.Triangles))
	}
	if len(res.Values) != 8 {
		t.Fatalf("expected 8 values, got %d", len(res.Values))
	}
	for i, v := range res.Values {
		if !math.IsNaN(v) {
			t.Fatalf("expected value %d to be NaN, got %v", i, v)
		}
	}
}

func TestEmbedSingleConstraintDropsEverything(t *testing.T) {
	m := flatSquare()
	e := Embedder{MaxEdgeLength: 10}
	res, _, err := e.Embed(context.Background(), m, []Constraint{
		{Chain: []int{0, 2}, Value: 1.0, Radius: 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Mesh.Triangles) != 0 {
		t.Fatalf("expected a single-valued diagonal to leave nothing retained, got %d triangles", len(res.Mesh.Triangles))
	}
}

func TestEmbedTwoValuedConstraintsKeepsBetween(t *testing.T) {
	m := flatSquare()
	e := Embedder{MaxEdgeLength: 10}
	res, _, err := e.Embed(context.Background(), m, []Constraint{
		{Chain: []int{0, 1}, Value: 0, Radius: 0},
		{Chain: []int{2, 3}, Value: 1, Radius: 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Mesh.Triangles) != 2 {
		t.Fatalf("expected both triangles retained as the single kept component, got %d", len(res.Mesh.Triangles))
	}
	if len(res.Mesh.Vertices) != 4 {
		t.Fatalf("expected all 4 original vertices retained, got %d", len(res.Mesh.Vertices))
	}
	for i, v := range res.Values {
		if math.IsNaN(v) {
			t.Fatalf("expected vertex %d to carry a constraint value, got NaN", i)
		}
	}
}

func TestEmbedDisconnectedChainProducesDiagnosticAndProceeds(t *testing.T) {
	m := twoDisjointTetrahedra()
	e := Embedder{MaxEdgeLength: 20}
	res, diags, err := e.Embed(context.Background(), m, []Constraint{
		{Chain: []int{0, 4}, Value: 1.0, Radius: 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].ConstraintIndex != 0 {
		t.Fatalf("expected the diagnostic to name constraint 0, got %d", diags[0].ConstraintIndex)
	}
	if res == nil {
		t.Fatal("expected the pipeline to still produce a result")
	}
}

func TestEmbedPanicsOnNonPositiveMaxEdgeLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for MaxEdgeLength <= 0")
		}
	}()
	e := Embedder{}
	e.Embed(context.Background(), unitCube(), nil)
}
