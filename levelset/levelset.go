// Package levelset implements the iso-contour extractor ("C5"): given a
// snapped path and a radius, it builds a signed distance field around the
// path by multi-source Dijkstra and extracts the radius-distance contour as
// one or more embedded polylines.
package levelset

import (
	"github.com/unixpickle/essentials"

	"github.com/unixpickle/meshknit/embedded"
	"github.com/unixpickle/meshknit/graph"
	"github.com/unixpickle/meshknit/mesh"
)

// Constraint is one path/radius pair to extract a contour for.
type Constraint struct {
	Path   []int
	Radius float64
}

// Chain is one ordered polyline produced by a single constraint. Closed
// chains wrap around (the last vertex connects back to the first); open
// chains terminate at mesh boundaries.
type Chain struct {
	Vertices []embedded.Vertex
	Closed   bool
}

// Result holds every chain produced for one constraint. A well-formed
// closed band produces exactly one closed chain; mesh boundaries or an
// unusually shaped band can split it into several open chains.
type Result struct {
	Chains []Chain
}

// Extract builds the distance field around path at the given radius and
// returns its iso-contour. A non-positive radius instead returns the path
// itself, vertex-tagged, with no distance field computed.
func Extract(m *mesh.Mesh, g *graph.Graph, path []int, radius float64) Result {
	if radius <= 0 {
		return zeroRadiusResult(path)
	}
	dist := distanceField(g, path, radius)
	return contour(m, dist)
}

// ExtractAll runs Extract for every constraint, distributing the work
// across concurrency goroutines (each constraint's distance field and
// contour are independent of every other's).
func ExtractAll(m *mesh.Mesh, g *graph.Graph, constraints []Constraint, concurrency int) []Result {
	results := make([]Result, len(constraints))
	essentials.ConcurrentMap(concurrency, len(constraints), func(i int) {
		results[i] = Extract(m, g, constraints[i].Path, constraints[i].Radius)
	})
	return results
}

func zeroRadiusResult(path []int) Result {
	if len(path) == 0 {
		return Result{}
	}
	verts := make([]embedded.Vertex, len(path))
	for i, v := range path {
		verts[i] = embedded.AtVertex(v)
	}
	closed := len(path) > 1 && path[0] == path[len(path)-1]
	if closed {
		verts = verts[:len(verts)-1]
	}
	return Result{Chains: []Chain{{Vertices: verts, Closed: closed}}}
}

// distanceField seeds every path vertex at -radius and runs Dijkstra until
// the next vertex due to be settled has distance > 0: every vertex with a
// non-positive distance is final at that point (all of them sort before any
// positive-distance vertex), and every positive-distance vertex directly
// adjacent to one of them has already been relaxed from those final
// values. Positive distances are left at their last tentative value (or
// +Inf) and are not guaranteed to be shortest-path distances; the contour
// only reads distances on or adjacent to the zero crossing.
func distanceField(g *graph.Graph, path []int, radius float64) []float64 {
	sources := make([]graph.Source, len(path))
	for i, v := range path {
		sources[i] = graph.Source{Vertex: v, Dist: -radius}
	}
	res := graph.Run(g, sources, func(_ int, d float64) bool {
		return d > 0
	}, nil)
	return res.Dist
}

// link is one triangle's directed entry-to-exit crossing of the contour,
// keyed by the mesh edges the cut points sit on.
type link struct {
	enter, exit mesh.Edge
}

// contour classifies every triangle by the signs of its vertices'
// distances, computes a cut point per crossed edge, and chains the
// resulting per-triangle links into ordered polylines.
func contour(m *mesh.Mesh, dist []float64) Result {
	cutPoints := map[mesh.Edge]embedded.Vertex{}
	cut := func(inside, outside int) mesh.Edge {
		e := mesh.NewEdge(inside, outside)
		if _, ok := cutPoints[e]; !ok {
			t := -dist[inside] / (dist[outside] - dist[inside])
			cutPoints[e] = embedded.AtEdge(inside, outside, t)
		}
		return e
	}

	next := map[mesh.Edge]mesh.Edge{}
	for _, t := range m.Triangles {
		i := minDistIndex(dist, t)
		a, b, c := t[i], t[(i+1)%3], t[(i+2)%3]
		da, db, dc := dist[a], dist[b], dist[c]
		if da >= 0 {
			continue
		}
		var l link
		switch {
		case db >= 0 && dc >= 0:
			l = link{enter: cut(a, b), exit: cut(a, c)}
		case db >= 0 && dc < 0:
			l = link{enter: cut(a, b), exit: cut(c, b)}
		case db < 0 && dc >= 0:
			l = link{enter: cut(b, c), exit: cut(a, c)}
		default:
			continue
		}
		next[l.enter] = l.exit
	}

	return Result{Chains: chainLinks(next, cutPoints)}
}

func minDistIndex(dist []float64, t mesh.Triangle) int {
	idx := 0
	for i := 1; i < 3; i++ {
		if dist[t[i]] < dist[t[idx]] {
			idx = i
		}
	}
	return idx
}

// chainLinks walks the enter->exit map into ordered polylines. Each node
// (an edge the contour crosses) has at most one outgoing and one incoming
// link, so the link graph is a disjoint union of simple paths and simple
// cycles; this follows each forward from an arbitrary unvisited node and,
// if it doesn't loop back on itself, extends backward through the inverse
// map to pick up its start.
func chainLinks(next map[mesh.Edge]mesh.Edge, cutPoints map[mesh.Edge]embedded.Vertex) []Chain {
	prev := map[mesh.Edge]mesh.Edge{}
	nodes := map[mesh.Edge]bool{}
	for k, v := range next {
		prev[v] = k
		nodes[k] = true
		nodes[v] = true
	}

	visited := map[mesh.Edge]bool{}
	var chains []Chain
	for n := range nodes {
		if visited[n] {
			continue
		}
		seq := []mesh.Edge{n}
		visited[n] = true
		closed := false

		cur := n
		for {
			nxt, ok := next[cur]
			if !ok {
				break
			}
			if nxt == n {
				closed = true
				break
			}
			if visited[nxt] {
				break
			}
			seq = append(seq, nxt)
			visited[nxt] = true
			cur = nxt
		}

		if !closed {
			var backward []mesh.Edge
			cur = n
			for {
				p, ok := prev[cur]
				if !ok || visited[p] {
					break
				}
				backward = append(backward, p)
				visited[p] = true
				cur = p
			}
			for i, j := 0, len(backward)-1; i < j; i, j = i+1, j-1 {
				backward[i], backward[j] = backward[j], backward[i]
			}
			seq = append(backward, seq...)
		}

		verts := make([]embedded.Vertex, len(seq))
		for i, e := range seq {
			verts[i] = cutPoints[e]
		}
		chains = append(chains, Chain{Vertices: verts, Closed: closed})
	}
	return chains
}
