package graph

import (
	"math"

	"github.com/unixpickle/splaytree"
)

// NoPredecessor marks a vertex with no known predecessor in a Dijkstra run
// (the source start, or a vertex never reached).
const NoPredecessor = -1

// Source is a seed vertex for a (possibly multi-source) Dijkstra run, with
// its initial distance. The level-set extractor seeds every path
// vertex at -radius; the path snapper seeds a single goal at 0.
type Source struct {
	Vertex int
	Dist   float64
}

// Result holds the per-vertex distances and predecessors produced by a
// Dijkstra run. Vertices never reached keep Dist == +Inf and Pred ==
// NoPredecessor.
type Result struct {
	Dist []float64
	Pred []int
}

// queueEntry is a candidate (vertex, distance) pair in the priority queue.
// Compare is defined so that Tree.Max() returns the entry with the
// smallest Dist (ties broken toward the smallest vertex index), turning
// splaytree's max-queue into the min-priority queue Dijkstra needs —
// mirroring model3d/parameterization.go's neighborQueue, which uses the
// same Tree[*node]-with-Compare idiom for its own (unrelated) priority
// search.
type queueEntry struct {
	Dist   float64
	Vertex int
}

func (e *queueEntry) Compare(o *queueEntry) int {
	if e.Dist < o.Dist {
		return 1
	} else if e.Dist > o.Dist {
		return -1
	}
	if e.Vertex < o.Vertex {
		return 1
	} else if e.Vertex > o.Vertex {
		return -1
	}
	return 0
}

// Run executes Dijkstra from the given sources over g, relaxing edges with
// Adjacency[v] weights. onSettle is called once a vertex's final distance
// is fixed (just after it is popped and relaxed); if it returns true, the
// run stops immediately, leaving any remaining vertices at their current
// (possibly tentative, possibly +Inf) distance. onPeek, if non-nil, is
// called with the next vertex about to be settled *before* it is popped;
// if it returns true the run stops without settling that vertex — this is
// the hook the level-set extractor uses to stop "when the next-to-pop
// distance is > 0" while leaving that vertex's tentative
// distance in place for contour extraction.
func Run(g *Graph, sources []Source, onPeek func(vertex int, dist float64) bool, onSettle func(vertex int, dist float64) bool) *Result {
	n := len(g.Adjacency)
	res := &Result{
		Dist: make([]float64, n),
		Pred: make([]int, n),
	}
	for i := range res.Dist {
		res.Dist[i] = math.Inf(1)
		res.Pred[i] = NoPredecessor
	}
	settled := make([]bool, n)

	tree := &splaytree.Tree[*queueEntry]{}
	pending := 0
	push := func(v int, d float64) {
		tree.Insert(&queueEntry{Dist: d, Vertex: v})
		pending++
	}

	for _, s := range sources {
		if s.Dist < res.Dist[s.Vertex] {
			res.Dist[s.Vertex] = s.Dist
			push(s.Vertex, s.Dist)
		}
	}

	for pending > 0 {
		top := tree.Max()
		if top == nil {
			break
		}
		if top.Dist != res.Dist[top.Vertex] || settled[top.Vertex] {
			// Stale entry left behind by a relaxation that improved this
			// vertex's distance after it was queued; lazy deletion.
			tree.Delete(top)
			pending--
			continue
		}
		if onPeek != nil && onPeek(top.Vertex, top.Dist) {
			break
		}
		tree.Delete(top)
		pending--
		settled[top.Vertex] = true

		u := top.Vertex
		du := res.Dist[u]
		for _, nb := range g.Adjacency[u] {
			if settled[nb.Vertex] {
				continue
			}
			nd := du + nb.Length
			if nd < res.Dist[nb.Vertex] {
				res.Dist[nb.Vertex] = nd
				res.Pred[nb.Vertex] = u
				push(nb.Vertex, nd)
			} else if nd == res.Dist[nb.Vertex] && u < res.Pred[nb.Vertex] {
				// Tie: prefer the smallest predecessor index for
				// determinism, without disturbing the
				// already-correct distance or queue entries.
				res.Pred[nb.Vertex] = u
			}
		}

		if onSettle != nil && onSettle(u, du) {
			break
		}
	}

	return res
}
