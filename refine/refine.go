// Package refine implements the uniform edge-length refinement engine:
// repeatedly marking over-length edges, inserting midpoints, splicing them
// into tagged paths, and re-triangulating, looping until no edge exceeds
// the length cap.
package refine

import (
	"sort"

	"github.com/unixpickle/meshknit/mesh"
)

// Options configures the refinement engine.
type Options struct {
	// MaxEdgeLength is the edge-length cap; must be > 0.
	MaxEdgeLength float64

	// EnableRatioMarking turns on an additional minimum-to-maximum
	// edge-length ratio marking pass, known to be unreliable and MUST NOT
	// be enabled by default. Exposed only for experimentation.
	EnableRatioMarking bool

	// RatioThreshold is the minimum acceptable ratio of a triangle's
	// shortest to longest edge before EnableRatioMarking additionally
	// marks its longest edge. Unused unless EnableRatioMarking is true.
	RatioThreshold float64
}

// Result is the refined mesh together with the paths re-expressed over it.
type Result struct {
	Mesh  *mesh.Mesh
	Paths [][]int
}

// Run refines m until every edge is no longer than opts.MaxEdgeLength,
// keeping paths spliced in lockstep.
func Run(m *mesh.Mesh, paths [][]int, opts Options) Result {
	if opts.MaxEdgeLength <= 0 {
		panic("refine: MaxEdgeLength must be positive")
	}
	maxSq := opts.MaxEdgeLength * opts.MaxEdgeLength
	threshold := opts.RatioThreshold
	if threshold == 0 {
		threshold = 0.3
	}

	curMesh := m.Clone()
	curPaths := make([][]int, len(paths))
	for i, p := range paths {
		curPaths[i] = append([]int{}, p...)
	}

	for {
		marked := markEdges(curMesh, maxSq, opts.EnableRatioMarking, threshold)
		if len(marked) == 0 {
			break
		}

		midpoints := createMidpoints(curMesh, marked)

		for i, p := range curPaths {
			curPaths[i] = spliceMidpoints(p, midpoints)
		}

		curMesh.Triangles = subdivideTriangles(curMesh, midpoints)
	}

	assertPostcondition(curMesh, opts.MaxEdgeLength)
	return Result{Mesh: curMesh, Paths: curPaths}
}

// assertPostcondition asserts the two guarantees refinement is required to
// leave in place: no degenerate triangle, and no edge longer than
// maxEdgeLength. A violation here means a subdivision case produced bad
// output and should fail loudly rather than flow downstream.
func assertPostcondition(m *mesh.Mesh, maxEdgeLength float64) {
	m.CheckTriangles()
	maxSq := maxEdgeLength * maxEdgeLength
	for _, t := range m.Triangles {
		for _, seg := range t.Segments() {
			if m.Vertices[seg.A].DistSquared(m.Vertices[seg.B]) > maxSq {
				panic("refine: postcondition violated, edge exceeds MaxEdgeLength after refinement")
			}
		}
	}
}

// markEdges collects the set of undirected edges exceeding MaxEdgeLength,
// sorted by canonical pair ordering so new-vertex insertion order is
// deterministic.
func markEdges(m *mesh.Mesh, maxSq float64, ratioMarking bool, ratioThreshold float64) []mesh.Edge {
	markedSet := map[mesh.Edge]bool{}
	for _, t := range m.Triangles {
		segs := t.Segments()
		for _, seg := range segs {
			if markedSet[seg] {
				continue
			}
			if m.Vertices[seg.A].DistSquared(m.Vertices[seg.B]) > maxSq {
				markedSet[seg] = true
			}
		}
		if ratioMarking {
			markRatioOutlier(m, segs, markedSet, ratioThreshold)
		}
	}

	marked := make([]mesh.Edge, 0, len(markedSet))
	for seg := range markedSet {
		marked = append(marked, seg)
	}
	sort.Slice(marked, func(i, j int) bool {
		if marked[i].A != marked[j].A {
			return marked[i].A < marked[j].A
		}
		return marked[i].B < marked[j].B
	})
	return marked
}

// markRatioOutlier implements the optional ratio-based marking pass: if a
// triangle's shortest-to-longest edge ratio falls below ratioThreshold,
// its longest edge is marked for subdivision too, on the theory that a
// sliver triangle is improved by splitting its long side. Never called
// unless opts.EnableRatioMarking is set.
func markRatioOutlier(m *mesh.Mesh, segs [3]mesh.Edge, markedSet map[mesh.Edge]bool, ratioThreshold float64) {
	lens := [3]float64{
		m.Vertices[segs[0].A].Dist(m.Vertices[segs[0].B]),
		m.Vertices[segs[1].A].Dist(m.Vertices[segs[1].B]),
		m.Vertices[segs[2].A].Dist(m.Vertices[segs[2].B]),
	}
	minI, maxI := 0, 0
	for i := 1; i < 3; i++ {
		if lens[i] < lens[minI] {
			minI = i
		}
		if lens[i] > lens[maxI] {
			maxI = i
		}
	}
	if lens[maxI] == 0 {
		return
	}
	if lens[minI]/lens[maxI] < ratioThreshold {
		markedSet[segs[maxI]] = true
	}
}

// createMidpoints appends one new vertex per marked edge, in the marked
// slice's deterministic order, and returns the edge -> new-vertex-index
// map.
func createMidpoints(m *mesh.Mesh, marked []mesh.Edge) map[mesh.Edge]int {
	midpoints := make(map[mesh.Edge]int, len(marked))
	for _, seg := range marked {
		mid := mesh.Mid(m.Vertices[seg.A], m.Vertices[seg.B])
		midpoints[seg] = m.AddVertex(mid)
	}
	return midpoints
}

// spliceMidpoints inserts, between each consecutive pair of an existing
// path, the midpoint vertex created for that pair's edge, if any.
func spliceMidpoints(path []int, midpoints map[mesh.Edge]int) []int {
	if len(path) < 2 {
		return path
	}
	result := make([]int, 0, len(path))
	result = append(result, path[0])
	for i := 1; i < len(path); i++ {
		prev, cur := path[i-1], path[i]
		if mid, ok := midpoints[mesh.NewEdge(prev, cur)]; ok {
			result = append(result, mid)
		}
		result = append(result, cur)
	}
	return result
}

// subdivideTriangles re-triangulates every triangle according to the
// number of its marked edges.
func subdivideTriangles(m *mesh.Mesh, midpoints map[mesh.Edge]int) []mesh.Triangle {
	result := make([]mesh.Triangle, 0, len(m.Triangles))
	for _, t := range m.Triangles {
		segs := t.Segments()
		var mids [3]int
		var marks [3]bool
		numMarks := 0
		for i, seg := range segs {
			if mid, ok := midpoints[seg]; ok {
				mids[i] = mid
				marks[i] = true
				numMarks++
			}
		}
		switch numMarks {
		case 0:
			result = append(result, t)
		case 1:
			result = append(result, subdivideSingle(t, mids, marks)...)
		case 2:
			result = append(result, subdivideDouble(m, t, mids, marks)...)
		case 3:
			result = append(result, subdivideTriple(t, mids)...)
		}
	}
	return result
}

// subdivideSingle handles the one-marked-edge case: emits (a, mid, c) and
// (b, c, mid), where (a,b) is the marked edge in original winding order
// and c is the opposite vertex.
func subdivideSingle(t mesh.Triangle, mids [3]int, marks [3]bool) []mesh.Triangle {
	i := 0
	for !marks[i] {
		i++
	}
	a, b, c := t[i], t[(i+1)%3], t[(i+2)%3]
	mid := mids[i]
	return []mesh.Triangle{
		{a, mid, c},
		{b, c, mid},
	}
}

// subdivideDouble handles the two-marked-edges case: the shared corner of
// the two marked edges is carved off as its own small triangle, and the
// remaining quad is split along its shorter diagonal.
func subdivideDouble(m *mesh.Mesh, t mesh.Triangle, mids [3]int, marks [3]bool) []mesh.Triangle {
	// Rotate so that the unmarked edge is (c,a): the shared corner of the
	// two marked edges (ab and bc) is then b.
	i := 0
	for marks[i] {
		i++
	}
	// Edge i is (t[i], t[(i+1)%3]) and unmarked; rotate so edge "ca" is
	// that edge, i.e. a = t[(i+1)%3], b = t[(i+2)%3], c = t[i].
	a, b, c := t[(i+1)%3], t[(i+2)%3], t[i]
	ab := mids[(i+1)%3]
	bc := mids[(i+2)%3]

	small := mesh.Triangle{ab, b, bc}

	aPos, bcPos := m.Vertices[a], m.Vertices[bc]
	abPos, cPos := m.Vertices[ab], m.Vertices[c]
	if aPos.DistSquared(bcPos) <= abPos.DistSquared(cPos) {
		return []mesh.Triangle{
			{a, ab, bc},
			{a, bc, c},
			small,
		}
	}
	return []mesh.Triangle{
		{a, ab, c},
		{ab, bc, c},
		small,
	}
}

// subdivideTriple handles the three-marked-edges case: the standard
// 1-to-4 split into three corner triangles and one central triangle.
func subdivideTriple(t mesh.Triangle, mids [3]int) []mesh.Triangle {
	a, b, c := t[0], t[1], t[2]
	ab, bc, ca := mids[0], mids[1], mids[2]
	return []mesh.Triangle{
		{a, ab, ca},
		{ab, b, bc},
		{ca, bc, c},
		{ab, bc, ca},
	}
}
