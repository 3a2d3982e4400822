// Package component implements the connected-component filter ("C7") that
// runs over a split triangulation: it floods triangles across edges that
// are not inscribed by any constraint, then keeps only the components
// whose boundary touches two or more distinct constraint values.
package component

import (
	"sort"

	"github.com/unixpickle/meshknit/mesh"
)

// Result is one flood-filled component of the split triangulation.
type Result struct {
	TriangleIndices []int
	Values          []float64
	Kept            bool
}

// Filter floods tris across every edge that is not a key of inscribed,
// groups triangles into connected components, and marks each component
// Kept iff the set of inscribed values touching its boundary has size
// >= 2 (a meaningful scalar interpolation domain between two contours).
func Filter(tris []mesh.Triangle, inscribed map[mesh.Edge]float64) []Result {
	over := buildOrientedMap(tris)

	visited := make([]bool, len(tris))
	var results []Result
	for start := range tris {
		if visited[start] {
			continue
		}
		visited[start] = true
		comp := []int{start}
		values := map[float64]bool{}

		queue := []int{start}
		for len(queue) > 0 {
			ti := queue[0]
			queue = queue[1:]
			for _, e := range tris[ti].Segments() {
				if v, ok := inscribed[e]; ok {
					values[v] = true
					continue
				}
				neighbor, ok := crossEdge(over, ti, e)
				if !ok || visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				comp = append(comp, neighbor)
				queue = append(queue, neighbor)
			}
		}

		sorted := make([]float64, 0, len(values))
		for v := range values {
			sorted = append(sorted, v)
		}
		sort.Float64s(sorted)

		results = append(results, Result{
			TriangleIndices: comp,
			Values:          sorted,
			Kept:            len(sorted) >= 2,
		})
	}
	return results
}

func buildOrientedMap(tris []mesh.Triangle) map[mesh.OrientedEdge]int {
	over := make(map[mesh.OrientedEdge]int, len(tris)*3)
	for i, t := range tris {
		for _, oe := range t.Oriented() {
			over[oe] = i
		}
	}
	return over
}

// crossEdge finds the triangle on the other side of edge e from ti, via
// the oppositely-oriented directed edge. A missing entry means e is a
// mesh boundary edge with no far side.
func crossEdge(over map[mesh.OrientedEdge]int, ti int, e mesh.Edge) (int, bool) {
	if n, ok := over[mesh.NewOrientedEdge(e.B, e.A)]; ok && n != ti {
		return n, true
	}
	if n, ok := over[mesh.NewOrientedEdge(e.A, e.B)]; ok && n != ti {
		return n, true
	}
	return 0, false
}
