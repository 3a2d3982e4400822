package unfold

import (
	"math"
	"reflect"
	"testing"

	"github.com/unixpickle/meshknit/graph"
	"github.com/unixpickle/meshknit/mesh"
)

// flatFan builds six unit-side equilateral triangles fanned around a
// central vertex (a regular hexagon of radius 1 around vertex 0), so the
// straight-line shortcut from one rim vertex to its opposite rim vertex
// (distance 2 through the center) is shorter than the 3-hop walk around
// the rim (distance 3).
func flatFan() (*mesh.Mesh, *graph.Graph) {
	m := mesh.New()
	m.AddVertex(mesh.Coord3D{X: 0, Y: 0})
	for i := 0; i < 6; i++ {
		angle := float64(i) * math.Pi / 3
		m.AddVertex(mesh.Coord3D{X: math.Cos(angle), Y: math.Sin(angle)})
	}
	for i := 0; i < 6; i++ {
		a, b := 1+i, 1+(i+1)%6
		m.AddTriangle(mesh.Triangle{0, a, b})
	}
	return m, graph.Build(m)
}

func TestAugmentKeepsDirectEdges(t *testing.T) {
	m, g := flatFan()
	aug := Augment(m, g, 1)
	found := false
	for _, nb := range aug.Adjacency[0] {
		if nb.Vertex == 1 {
			found = true
			if math.Abs(nb.Length-1) > 1e-9 {
				t.Fatalf("expected direct spoke length 1, got %v", nb.Length)
			}
		}
	}
	if !found {
		t.Fatal("expected direct edge (0,1) to survive augmentation")
	}
}

func TestAugmentFindsShortcutAcrossHub(t *testing.T) {
	m, g := flatFan()
	aug := Augment(m, g, 3)
	// Rim vertices 1 and 4 are opposite across the hub: straight-line
	// distance 2, versus 3 hops of length 1 around the rim.
	var shortcut *graph.Neighbor
	for i, nb := range aug.Adjacency[1] {
		if nb.Vertex == 4 {
			shortcut = &aug.Adjacency[1][i]
		}
	}
	if shortcut == nil {
		t.Fatal("expected a shortcut edge between opposite rim vertices")
	}
	if shortcut.Length >= 3-1e-9 {
		t.Fatalf("expected shortcut shorter than the 3-hop rim walk, got %v", shortcut.Length)
	}
	if math.Abs(shortcut.Length-2) > 1e-6 {
		t.Fatalf("expected shortcut length close to 2 (through the hub), got %v", shortcut.Length)
	}
}

func TestAugmentDefaultsDepth(t *testing.T) {
	m, g := flatFan()
	a := Augment(m, g, 0)
	b := Augment(m, g, DefaultDepth)
	if len(a.Adjacency) != len(b.Adjacency) {
		t.Fatal("expected depth<=0 to fall back to DefaultDepth")
	}
	for v := range a.Adjacency {
		if !reflect.DeepEqual(a.Adjacency[v], b.Adjacency[v]) {
			t.Fatalf("vertex %d: depth 0 gave %v, DefaultDepth gave %v", v, a.Adjacency[v], b.Adjacency[v])
		}
	}
}

func TestIsCCW(t *testing.T) {
	p := point2D{0, 0}
	q := point2D{1, 0}
	r := point2D{0, 1}
	if !isCCW(p, q, r) {
		t.Fatal("expected (0,0)-(1,0)-(0,1) to be counter-clockwise")
	}
	if isCCW(p, q, point2D{0, -1}) {
		t.Fatal("expected (0,0)-(1,0)-(0,-1) to be clockwise")
	}
}

func TestPoint2DPerp(t *testing.T) {
	p := point2D{1, 0}
	perp := p.perp()
	if perp != (point2D{0, 1}) {
		t.Fatalf("expected 90-degree CCW rotation, got %v", perp)
	}
}
