// Package snap implements the geodesic path snapper:
// threading a shortest path between successive constraint-chain vertices
// using Dijkstra over the mesh adjacency graph.
package snap

import (
	"fmt"

	"github.com/unixpickle/meshknit/graph"
)

// Diagnostic is the non-fatal "constraint chain moves between connected
// components" record: surfaced to the caller instead of only being
// printed, so it can be inspected programmatically.
type Diagnostic struct {
	ConstraintIndex int
	Message         string
}

// Path snaps one constraint's chain of goal vertices to a path of
// directly-adjacent mesh vertices.
//
// If the chain moves between disconnected components, the returned
// Diagnostic is non-nil and the path is truncated at the last vertex that
// was reachable.
func Path(g *graph.Graph, chain []int, constraintIndex int) ([]int, *Diagnostic) {
	if len(chain) == 0 {
		return nil, nil
	}
	path := []int{chain[0]}
	for _, goal := range chain[1:] {
		end := path[len(path)-1]
		if end == goal {
			continue
		}
		res := graph.Run(g, []graph.Source{{Vertex: goal, Dist: 0}}, nil,
			func(v int, _ float64) bool { return v == end })

		if res.Pred[end] == graph.NoPredecessor && end != goal {
			return path, &Diagnostic{
				ConstraintIndex: constraintIndex,
				Message:         fmt.Sprintf("constraint %d: chain moves between connected components", constraintIndex),
			}
		}

		var extension []int
		for v := end; v != goal; v = res.Pred[v] {
			extension = append(extension, res.Pred[v])
		}
		path = append(path, extension...)
	}
	return path, nil
}
