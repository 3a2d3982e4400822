package mesh

import "github.com/pkg/errors"

// Triangle is an oriented triple of vertex indices, counter-clockwise when
// viewed from outside the surface.
type Triangle [3]int

// Segments returns the triangle's three canonical undirected edges.
func (t Triangle) Segments() [3]Edge {
	return [3]Edge{
		NewEdge(t[0], t[1]),
		NewEdge(t[1], t[2]),
		NewEdge(t[2], t[0]),
	}
}

// Oriented returns the triangle's three oriented boundary edges, in
// winding order.
func (t Triangle) Oriented() [3]OrientedEdge {
	return [3]OrientedEdge{
		NewOrientedEdge(t[0], t[1]),
		NewOrientedEdge(t[1], t[2]),
		NewOrientedEdge(t[2], t[0]),
	}
}

// Distinct reports whether the triangle's three indices are pairwise
// different, the first half of the non-degeneracy invariant.
func (t Triangle) Distinct() bool {
	return t[0] != t[1] && t[1] != t[2] && t[2] != t[0]
}

// Mesh is the append-only indexed vertex/triangle container that the whole
// pipeline operates on. Vertex identity is a stable integer index rather
// than a position: refinement must be able to append new vertices and
// splice them into paths by index, which a coordinate-keyed container
// cannot express once duplicate positions occur (e.g. two
// independently-refined edges sharing a midpoint).
type Mesh struct {
	Vertices  []Coord3D
	Triangles []Triangle
}

// New creates an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// NewFrom creates a mesh from a given vertex slice and triangle slice. The
// slices are copied; the invariants (distinct indices, pairwise-distinct
// positions within a triangle) are asserted.
func NewFrom(vertices []Coord3D, triangles []Triangle) *Mesh {
	m := &Mesh{
		Vertices:  append([]Coord3D{}, vertices...),
		Triangles: append([]Triangle{}, triangles...),
	}
	m.CheckTriangles()
	return m
}

// CheckTriangles asserts that every triangle has three distinct,
// geometrically non-degenerate vertices, panicking on the first
// violation found.
func (m *Mesh) CheckTriangles() {
	for _, t := range m.Triangles {
		if !t.Distinct() {
			panic("mesh: triangle has repeated vertex index")
		}
		for i := 0; i < len(t); i++ {
			for j := i + 1; j < len(t); j++ {
				if m.Vertices[t[i]] == m.Vertices[t[j]] {
					panic("mesh: triangle has geometrically degenerate vertices")
				}
			}
		}
	}
}

// AddVertex appends a new vertex and returns its index.
func (m *Mesh) AddVertex(c Coord3D) int {
	m.Vertices = append(m.Vertices, c)
	return len(m.Vertices) - 1
}

// AddTriangle appends a triangle referencing existing vertex indices.
func (m *Mesh) AddTriangle(t Triangle) {
	m.Triangles = append(m.Triangles, t)
}

// Clone makes a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Vertices:  append([]Coord3D{}, m.Vertices...),
		Triangles: append([]Triangle{}, m.Triangles...),
	}
}

// NeedsRepair reports whether any undirected edge is touched by a number of
// triangles other than one (boundary) or two (interior), i.e. whether an
// opposite-vertex map built from this mesh would be ambiguous. Boundary
// edges (touched once) are allowed, since garment patches legitimately have
// them.
func (m *Mesh) NeedsRepair() error {
	counts := map[Edge]int{}
	for _, t := range m.Triangles {
		for _, seg := range t.Segments() {
			counts[seg]++
		}
	}
	for seg, n := range counts {
		if n > 2 {
			return errors.Errorf("mesh: edge %v touched by %d triangles (non-manifold)", seg, n)
		}
	}
	return nil
}

// Area computes a triangle's area given the mesh's vertex positions.
func (m *Mesh) Area(t Triangle) float64 {
	a, b, c := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
	return b.Sub(a).Cross(c.Sub(a)).Norm() / 2
}
