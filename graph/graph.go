// Package graph builds the mesh adjacency graph and provides the single
// Dijkstra utility shared by the geodesic path snapper and the level-set
// distance field, rather than duplicating a min-heap per caller.
package graph

import (
	"sort"

	"github.com/unixpickle/meshknit/mesh"
)

// Neighbor is one entry of a vertex's adjacency list: another vertex and
// the edge length (or shortcut distance, once augmented by package unfold)
// between them.
type Neighbor struct {
	Vertex int
	Length float64
}

// Graph is the mesh adjacency structure: an unordered neighbor list per
// vertex plus the opposite-vertex lookup per oriented edge.
type Graph struct {
	Adjacency [][]Neighbor
	Opposite  map[mesh.OrientedEdge]int
}

// Build constructs the adjacency graph and opposite map for m, deduping
// edges and checking the manifold precondition (no oriented edge belongs
// to more than one triangle).
func Build(m *mesh.Mesh) *Graph {
	g := &Graph{
		Adjacency: make([][]Neighbor, len(m.Vertices)),
		Opposite:  map[mesh.OrientedEdge]int{},
	}
	seen := map[mesh.Edge]bool{}
	for _, t := range m.Triangles {
		for i, oe := range t.Oriented() {
			if _, ok := g.Opposite[oe]; ok {
				panic("graph: oriented edge appears in more than one triangle (non-manifold)")
			}
			g.Opposite[oe] = t[(i+2)%3]
		}
		for _, seg := range t.Segments() {
			if seen[seg] {
				continue
			}
			seen[seg] = true
			length := m.Vertices[seg.A].Dist(m.Vertices[seg.B])
			g.Adjacency[seg.A] = append(g.Adjacency[seg.A], Neighbor{Vertex: seg.B, Length: length})
			g.Adjacency[seg.B] = append(g.Adjacency[seg.B], Neighbor{Vertex: seg.A, Length: length})
		}
	}
	return g
}

// SortNeighbors sorts each adjacency list by neighbor index, giving
// deterministic iteration order for downstream consumers that expect
// pre-sorted adjacency lists.
func (g *Graph) SortNeighbors() {
	for _, list := range g.Adjacency {
		sort.Slice(list, func(i, j int) bool { return list[i].Vertex < list[j].Vertex })
	}
}
