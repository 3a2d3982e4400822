// Package planarmap implements the embedded planar map ("C6"): a store of
// embedded vertices and scalar-valued edges between them, with a
// split_triangles operation that re-triangulates the mesh so every stored
// edge becomes an actual triangle edge.
//
// The contract only constrains behavior at the add_vertex/add_edge/
// split_triangles boundary; everything below that line is one concrete way
// to satisfy it. Internally, every stored edge is required to lie entirely
// within a single original triangle (true of every edge this repository
// ever inserts, since both endpoints come from C5's per-triangle cut
// points or from path vertices of a single original mesh edge), so
// splitting reduces to a per-triangle planar-subdivision problem instead of
// a mesh-wide one.
package planarmap

import (
	"math"
	"sort"

	"github.com/unixpickle/meshknit/embedded"
	"github.com/unixpickle/meshknit/mesh"
)

// Combiner resolves a collision when add_edge is called twice for the same
// unordered vertex pair. It returns the value to keep and whether the
// insert should proceed; false drops the new value and leaves the
// existing edge untouched.
type Combiner func(existing, next float64) (float64, bool)

// SameValue requires the two values to agree; a mismatch drops the insert.
func SameValue(existing, next float64) (float64, bool) {
	if existing == next {
		return existing, true
	}
	return existing, false
}

// ReplaceValue always overwrites the existing value.
func ReplaceValue(existing, next float64) (float64, bool) {
	return next, true
}

type triKey [3]int

func canonicalTri(t mesh.Triangle) triKey {
	a := [3]int{t[0], t[1], t[2]}
	sort.Ints(a[:])
	return triKey(a)
}

type edgeKey struct{ a, b int }

func newEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

type vertexRecord struct {
	src embedded.Vertex
	pos mesh.Coord3D
}

type storedEdge struct {
	value float64
}

type segment struct {
	a, b  int
	value float64
}

// Map is one embedded planar map over the vertices and triangles of a
// fixed mesh.
type Map struct {
	mesh      *mesh.Mesh
	tolerance float64
	combine   Combiner

	verts []vertexRecord

	byVertex           map[int]int
	byEdge             map[mesh.Edge][]int
	byTriangleInterior map[triKey][]int

	edges              map[edgeKey]*storedEdge
	segmentsByTriangle map[int][]segment

	trianglesAtVertex map[int][]int
	trianglesAtEdge   map[mesh.Edge][]int
	triangleIndex     map[triKey]int
}

// New builds an empty planar map over m's triangles. tolerance bounds how
// close two embedded vertices must be (in m's coordinate units) before
// add_vertex merges them into the same id.
func New(m *mesh.Mesh, tolerance float64, combine Combiner) *Map {
	pm := &Map{
		mesh:      m,
		tolerance: tolerance,
		combine:   combine,

		byVertex:           map[int]int{},
		byEdge:             map[mesh.Edge][]int{},
		byTriangleInterior: map[triKey][]int{},

		edges:              map[edgeKey]*storedEdge{},
		segmentsByTriangle: map[int][]segment{},

		trianglesAtVertex: map[int][]int{},
		trianglesAtEdge:   map[mesh.Edge][]int{},
		triangleIndex:     map[triKey]int{},
	}
	for i, t := range m.Triangles {
		pm.triangleIndex[canonicalTri(t)] = i
		for _, v := range t {
			pm.trianglesAtVertex[v] = append(pm.trianglesAtVertex[v], i)
		}
		for _, seg := range t.Segments() {
			pm.trianglesAtEdge[seg] = append(pm.trianglesAtEdge[seg], i)
		}
	}
	// Pre-register every original mesh vertex so its epm id equals its
	// mesh index; this lets splitTriangle's untouched-triangle fast path
	// return the original Triangle's indices unchanged instead of having
	// to remap them.
	for i := range m.Vertices {
		pm.ensureCorner(i)
	}
	return pm
}

// AddVertex inserts an embedded vertex, merging it with an existing one on
// the same simplex within tolerance, and returns its id.
func (m *Map) AddVertex(v embedded.Vertex) int {
	switch v.Kind {
	case embedded.OnVertex:
		return m.ensureCorner(v.Vertex)
	case embedded.OnEdge:
		return m.addOnEdge(v)
	case embedded.OnTriangle:
		return m.addOnTriangle(v)
	default:
		panic("planarmap: unknown embedded vertex kind")
	}
}

func (m *Map) ensureCorner(v int) int {
	if id, ok := m.byVertex[v]; ok {
		return id
	}
	id := m.newVertex(embedded.AtVertex(v))
	m.byVertex[v] = id
	return id
}

func (m *Map) addOnEdge(v embedded.Vertex) int {
	pos := v.Position(m.mesh.Vertices)
	if id := m.ensureCorner(v.Edge.A); m.verts[id].pos.Dist(pos) <= m.tolerance {
		return id
	}
	if id := m.ensureCorner(v.Edge.B); m.verts[id].pos.Dist(pos) <= m.tolerance {
		return id
	}
	for _, id := range m.byEdge[v.Edge] {
		if m.verts[id].pos.Dist(pos) <= m.tolerance {
			return id
		}
	}
	id := m.newVertex(v)
	m.byEdge[v.Edge] = append(m.byEdge[v.Edge], id)
	return id
}

func (m *Map) addOnTriangle(v embedded.Vertex) int {
	pos := v.Position(m.mesh.Vertices)
	key := canonicalTri(v.Triangle)
	for _, id := range m.byTriangleInterior[key] {
		if m.verts[id].pos.Dist(pos) <= m.tolerance {
			return id
		}
	}
	id := m.newVertex(v)
	m.byTriangleInterior[key] = append(m.byTriangleInterior[key], id)
	return id
}

func (m *Map) newVertex(v embedded.Vertex) int {
	id := len(m.verts)
	m.verts = append(m.verts, vertexRecord{src: v, pos: v.Position(m.mesh.Vertices)})
	return id
}

// AddEdge inserts a scalar-valued edge between two previously added
// vertices. If an edge already exists for this unordered pair, the map's
// combiner decides whether to keep the new value; false drops the insert
// and reports false.
func (m *Map) AddEdge(a, b int, value float64) bool {
	if a == b {
		return false
	}
	k := newEdgeKey(a, b)
	if existing, ok := m.edges[k]; ok {
		merged, ok := m.combine(existing.value, value)
		if !ok {
			return false
		}
		existing.value = merged
		value = merged
	} else {
		m.edges[k] = &storedEdge{value: value}
	}

	tris, ok := m.commonTriangles(a, b)
	if !ok {
		panic("planarmap: edge endpoints share no common triangle")
	}
	for _, ti := range tris {
		m.segmentsByTriangle[ti] = append(m.segmentsByTriangle[ti], segment{a: a, b: b, value: value})
	}
	return true
}

func (m *Map) candidateTriangles(id int) []int {
	switch rec := m.verts[id].src; rec.Kind {
	case embedded.OnVertex:
		return m.trianglesAtVertex[rec.Vertex]
	case embedded.OnEdge:
		return m.trianglesAtEdge[rec.Edge]
	case embedded.OnTriangle:
		return []int{m.triangleIndex[canonicalTri(rec.Triangle)]}
	default:
		return nil
	}
}

func (m *Map) commonTriangles(a, b int) ([]int, bool) {
	set := map[int]bool{}
	for _, t := range m.candidateTriangles(b) {
		set[t] = true
	}
	var common []int
	for _, t := range m.candidateTriangles(a) {
		if set[t] {
			common = append(common, t)
		}
	}
	return common, len(common) > 0
}

// SimplexEdges returns the stored segments local to one original triangle,
// keyed by its canonical corner tuple, as (v1, v2, value) rows.
func (m *Map) SimplexEdges(t mesh.Triangle) [][3]float64 {
	segs := m.segmentsByTriangle[m.triangleIndex[canonicalTri(t)]]
	out := make([][3]float64, len(segs))
	for i, s := range segs {
		out[i] = [3]float64{float64(s.a), float64(s.b), s.value}
	}
	return out
}

// InscribedEdges returns every inscribed sub-edge actually present in the
// split triangulation, keyed in the same vertex id space SplitTriangles'
// out_tris use, so a caller can tell an inscribed triangle edge apart from
// an incidental one without re-deriving ids. Call this after
// SplitTriangles: it reads segmentsByTriangle as left by the per-triangle
// crossing resolution, so a constraint segment split at an interior
// crossing is reported as its two sub-edges rather than the original,
// now-stale endpoint pair.
func (m *Map) InscribedEdges() map[mesh.Edge]float64 {
	out := map[mesh.Edge]float64{}
	for _, segs := range m.segmentsByTriangle {
		for _, s := range segs {
			out[mesh.NewEdge(s.a, s.b)] = s.value
		}
	}
	return out
}

// SplitTriangles returns a triangulation that respects every inserted
// edge, together with the full embedded-vertex table and the (trivial,
// identity) epm-id-to-output-index map the contract calls for.
func (m *Map) SplitTriangles() ([]embedded.Vertex, []mesh.Triangle, []int) {
	var outTris []mesh.Triangle
	for i, t := range m.mesh.Triangles {
		outTris = append(outTris, m.splitTriangle(i, t)...)
	}

	outVerts := make([]embedded.Vertex, len(m.verts))
	idMap := make([]int, len(m.verts))
	for i, rec := range m.verts {
		outVerts[i] = rec.src
		idMap[i] = i
	}
	return outVerts, outTris, idMap
}

type vec2 struct{ x, y float64 }

// barycentric returns p's weights relative to triangle (p0,p1,p2); the
// second and third components double as a 2D coordinate system local to
// the triangle (corners at (0,0), (1,0), (0,1)).
func barycentric(p, p0, p1, p2 mesh.Coord3D) (float64, float64) {
	v0 := p1.Sub(p0)
	v1 := p2.Sub(p0)
	v2 := p.Sub(p0)
	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)
	denom := d00*d11 - d01*d01
	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	return v, w
}

func (m *Map) local2D(id int, t mesh.Triangle) vec2 {
	p0, p1, p2 := m.mesh.Vertices[t[0]], m.mesh.Vertices[t[1]], m.mesh.Vertices[t[2]]
	v, w := barycentric(m.verts[id].pos, p0, p1, p2)
	return vec2{v, w}
}

// splitTriangle re-triangulates one original triangle so that every
// constraint segment crossing it becomes an actual triangle edge.
func (m *Map) splitTriangle(triIdx int, t mesh.Triangle) []mesh.Triangle {
	key := canonicalTri(t)
	segs := append([]segment{}, m.segmentsByTriangle[triIdx]...)
	interior := m.byTriangleInterior[key]
	if len(segs) == 0 && len(interior) == 0 {
		hasEdgePoints := false
		for _, seg := range t.Segments() {
			if len(m.byEdge[seg]) > 0 {
				hasEdgePoints = true
			}
		}
		if !hasEdgePoints {
			return []mesh.Triangle{t}
		}
	}

	corners := [3]int{m.ensureCorner(t[0]), m.ensureCorner(t[1]), m.ensureCorner(t[2])}
	boundary := m.buildBoundaryRing(t, corners)

	segs = m.resolveCrossings(t, segs)
	// Persist the crossing-split segments so InscribedEdges (called after
	// every triangle has been split) reports the actual sub-edges rather
	// than the original, possibly-crossing add_edge pairs.
	m.segmentsByTriangle[triIdx] = segs

	pos := map[int]vec2{}
	neighbors := map[int][]int{}
	present := map[edgeKey]bool{}
	addEdge := func(a, b int) {
		k := newEdgeKey(a, b)
		if present[k] {
			// A constraint segment that happens to run along an edge the
			// boundary ring already has (e.g. a zero-radius chain
			// following an existing mesh edge exactly); adding it again
			// would duplicate a neighbor-list entry and break the
			// angular face walk below.
			return
		}
		present[k] = true
		neighbors[a] = append(neighbors[a], b)
		neighbors[b] = append(neighbors[b], a)
	}
	record := func(id int) {
		if _, ok := pos[id]; !ok {
			pos[id] = m.local2D(id, t)
		}
	}
	for i := range boundary {
		j := (i + 1) % len(boundary)
		record(boundary[i])
		record(boundary[j])
		addEdge(boundary[i], boundary[j])
	}
	for _, s := range segs {
		record(s.a)
		record(s.b)
		addEdge(s.a, s.b)
	}

	fs := faces(pos, neighbors)
	var tris []mesh.Triangle
	for _, f := range fs {
		if len(f) < 3 || signedArea2D(f, pos) <= 0 {
			continue
		}
		for i := 1; i < len(f)-1; i++ {
			tris = append(tris, mesh.Triangle{f[0], f[i], f[i+1]})
		}
	}
	return tris
}

// buildBoundaryRing returns the triangle's boundary, corners plus any
// vertices registered on its three edges, in consistent winding order.
func (m *Map) buildBoundaryRing(t mesh.Triangle, corners [3]int) []int {
	type ptT struct {
		id int
		t  float64
	}
	side := func(ci, cj int, extra []int) []int {
		p0, p1 := m.verts[ci].pos, m.verts[cj].pos
		length := p0.Dist(p1)
		pts := make([]ptT, 0, len(extra)+2)
		pts = append(pts, ptT{ci, 0})
		for _, id := range extra {
			d := p0.Dist(m.verts[id].pos)
			frac := 0.0
			if length > 0 {
				frac = d / length
			}
			pts = append(pts, ptT{id, frac})
		}
		pts = append(pts, ptT{cj, 1})
		sort.Slice(pts, func(i, j int) bool { return pts[i].t < pts[j].t })
		out := make([]int, len(pts))
		for i, p := range pts {
			out[i] = p.id
		}
		return out
	}

	segsArr := t.Segments()
	s0 := side(corners[0], corners[1], m.byEdge[segsArr[0]])
	s1 := side(corners[1], corners[2], m.byEdge[segsArr[1]])
	s2 := side(corners[2], corners[0], m.byEdge[segsArr[2]])

	ring := append([]int{}, s0[:len(s0)-1]...)
	ring = append(ring, s1[:len(s1)-1]...)
	ring = append(ring, s2[:len(s2)-1]...)
	return ring
}

// resolveCrossings splits any pair of constraint segments that properly
// cross within the triangle, inserting a new interior vertex at the
// crossing point, until no crossing remains. Real-world inputs almost
// never produce a crossing (it takes two different constraints' contours
// threading the exact same original triangle), so this loop typically
// runs zero iterations.
func (m *Map) resolveCrossings(t mesh.Triangle, segs []segment) []segment {
	for i := 0; i < len(segs); i++ {
		for j := i + 1; j < len(segs); j++ {
			a, b := segs[i], segs[j]
			if a.a == b.a || a.a == b.b || a.b == b.a || a.b == b.b {
				continue
			}
			p1, p2 := m.local2D(a.a, t), m.local2D(a.b, t)
			p3, p4 := m.local2D(b.a, t), m.local2D(b.b, t)
			if !properlyIntersect(p1, p2, p3, p4) {
				continue
			}
			x := intersectVec2(p1, p2, p3, p4)
			w1, w2 := x.x, x.y
			newV := embedded.AtTriangle(t, [3]float64{1 - w1 - w2, w1, w2})
			id := m.addOnTriangle(newV)

			segs[i] = segment{a: a.a, b: id, value: a.value}
			segs[j] = segment{a: id, b: a.b, value: a.value}
			segs = append(segs, segment{a: b.a, b: id, value: b.value}, segment{a: id, b: b.b, value: b.value})
			// Restart the scan since the segment slice changed shape.
			return m.resolveCrossings(t, segs)
		}
	}
	return segs
}

func properlyIntersect(p1, p2, p3, p4 vec2) bool {
	d1 := ccw2(p3, p4, p1)
	d2 := ccw2(p3, p4, p2)
	d3 := ccw2(p1, p2, p3)
	d4 := ccw2(p1, p2, p4)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func ccw2(a, b, c vec2) float64 {
	return (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
}

func intersectVec2(p1, p2, p3, p4 vec2) vec2 {
	d1x, d1y := p2.x-p1.x, p2.y-p1.y
	d2x, d2y := p4.x-p3.x, p4.y-p3.y
	denom := d1x*d2y - d1y*d2x
	tt := ((p3.x-p1.x)*d2y - (p3.y-p1.y)*d2x) / denom
	return vec2{p1.x + tt*d1x, p1.y + tt*d1y}
}

// faces traces every face of the planar graph (neighbors, positioned by
// pos) by, at each vertex, stepping to the next neighbor clockwise from
// the one just arrived from. Every directed edge belongs to exactly one
// face; the single face tracing the outside of the triangle is left in
// the result and filtered out by its signed area by the caller.
func faces(pos map[int]vec2, neighbors map[int][]int) [][]int {
	sortedAdj := map[int][]int{}
	for v, ns := range neighbors {
		cp := append([]int{}, ns...)
		sort.Slice(cp, func(i, j int) bool {
			return angleOf(pos[v], pos[cp[i]]) < angleOf(pos[v], pos[cp[j]])
		})
		sortedAdj[v] = cp
	}
	indexOf := func(v, w int) int {
		for i, x := range sortedAdj[v] {
			if x == w {
				return i
			}
		}
		return -1
	}

	type dedge struct{ u, v int }
	visited := map[dedge]bool{}
	var result [][]int
	for v, ns := range neighbors {
		for _, w := range ns {
			start := dedge{v, w}
			if visited[start] {
				continue
			}
			var face []int
			cu, cv := v, w
			for {
				visited[dedge{cu, cv}] = true
				face = append(face, cu)
				idx := indexOf(cv, cu)
				n := len(sortedAdj[cv])
				prevIdx := (idx - 1 + n) % n
				nxt := sortedAdj[cv][prevIdx]
				cu, cv = cv, nxt
				if cu == v && cv == w {
					break
				}
			}
			result = append(result, face)
		}
	}
	return result
}

func angleOf(from, to vec2) float64 {
	return math.Atan2(to.y-from.y, to.x-from.x)
}

func signedArea2D(face []int, pos map[int]vec2) float64 {
	var sum float64
	n := len(face)
	for i := 0; i < n; i++ {
		p := pos[face[i]]
		q := pos[face[(i+1)%n]]
		sum += p.x*q.y - q.x*p.y
	}
	return sum / 2
}
