package mesh

// Edge is an undirected edge between two vertex indices, stored canonically
// with the smaller index first.
type Edge struct {
	A, B int
}

// NewEdge builds the canonical undirected edge between a and b. a and b
// must be distinct.
func NewEdge(a, b int) Edge {
	if a == b {
		panic("mesh: degenerate edge between identical vertices")
	}
	if a < b {
		return Edge{A: a, B: b}
	}
	return Edge{A: b, B: a}
}

// Other returns the endpoint of e that is not v. v must be one of e's
// endpoints.
func (e Edge) Other(v int) int {
	if v == e.A {
		return e.B
	}
	if v == e.B {
		return e.A
	}
	panic("mesh: vertex is not an endpoint of this edge")
}

// OrientedEdge is an ordered pair of vertex indices, used as the key of the
// opposite-vertex map.
type OrientedEdge struct {
	A, B int
}

// NewOrientedEdge builds an ordered edge (a,b). a and b must be distinct.
func NewOrientedEdge(a, b int) OrientedEdge {
	if a == b {
		panic("mesh: degenerate oriented edge between identical vertices")
	}
	return OrientedEdge{A: a, B: b}
}

// Reverse returns the oppositely-oriented edge (b,a).
func (e OrientedEdge) Reverse() OrientedEdge {
	return OrientedEdge{A: e.B, B: e.A}
}
