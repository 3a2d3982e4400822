// Package embedded defines the embedded-vertex tagged variant: a point on
// the mesh is tagged with which of three cases it falls into (on a vertex,
// on an edge, or inside a triangle), rather than carrying three index
// fields and three weights used indiscriminately.
package embedded

import "github.com/unixpickle/meshknit/mesh"

// Kind identifies which simplex an embedded vertex is located on.
type Kind int

const (
	// OnVertex means the embedded vertex coincides with an original mesh
	// vertex.
	OnVertex Kind = iota
	// OnEdge means the embedded vertex lies on the open interior of a
	// mesh edge, as a barycentric mix of its two endpoints.
	OnEdge
	// OnTriangle means the embedded vertex lies in the interior of a
	// triangle, as a barycentric combination of its three vertices.
	OnTriangle
)

// Vertex is a point on the mesh expressed as a convex combination of one,
// two, or three original-mesh vertex indices, tagged with which case
// applies.
type Vertex struct {
	Kind Kind

	// Vertex is populated when Kind == OnVertex.
	Vertex int

	// Edge and EdgeT are populated when Kind == OnEdge: the embedded point
	// is mesh.Lerp(pos[Edge.A], pos[Edge.B], EdgeT), EdgeT in (0,1).
	Edge  mesh.Edge
	EdgeT float64

	// Triangle and TriangleW are populated when Kind == OnTriangle: the
	// embedded point is the barycentric combination of the triangle's
	// three vertices with weights TriangleW (summing to 1).
	Triangle  mesh.Triangle
	TriangleW [3]float64
}

// AtVertex builds an embedded vertex that coincides with an original mesh
// vertex.
func AtVertex(v int) Vertex {
	return Vertex{Kind: OnVertex, Vertex: v}
}

// AtEdge builds an embedded vertex on the open interior of edge (a,b) at
// barycentric mix t (t=0 is a, t=1 is b). t must lie in (0,1); callers at
// the boundary should use AtVertex instead.
func AtEdge(a, b int, t float64) Vertex {
	return Vertex{Kind: OnEdge, Edge: mesh.NewEdge(a, b), EdgeT: edgeTFor(a, b, t)}
}

// edgeTFor re-expresses t relative to the canonical (min-first) edge
// ordering, since mesh.NewEdge may swap a and b.
func edgeTFor(a, b int, t float64) float64 {
	if a > b {
		return 1 - t
	}
	return t
}

// AtTriangle builds an embedded vertex in the interior of triangle (a,b,c)
// with the given barycentric weights (summing to 1).
func AtTriangle(t mesh.Triangle, w [3]float64) Vertex {
	return Vertex{Kind: OnTriangle, Triangle: t, TriangleW: w}
}

// Position resolves the embedded vertex to an actual 3D point given the
// positions of the original mesh's vertices.
func (v Vertex) Position(verts []mesh.Coord3D) mesh.Coord3D {
	switch v.Kind {
	case OnVertex:
		return verts[v.Vertex]
	case OnEdge:
		return mesh.Lerp(verts[v.Edge.A], verts[v.Edge.B], v.EdgeT)
	case OnTriangle:
		p := verts[v.Triangle[0]].Scale(v.TriangleW[0])
		p = p.Add(verts[v.Triangle[1]].Scale(v.TriangleW[1]))
		p = p.Add(verts[v.Triangle[2]].Scale(v.TriangleW[2]))
		return p
	default:
		panic("embedded: unknown vertex kind")
	}
}
