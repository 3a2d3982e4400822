// Package unfold implements the unfolded-geodesic adjacency augmentation:
// for every mesh vertex, flatten its k-hop triangle fan into a plane and
// record straight-line "shortcut" distances that approximate true surface
// geodesics more closely than the raw edge graph.
//
// The unfolding recursion is bounded by a fixed depth D, so it is driven
// from an explicit stack of frame values in a loop rather than a true
// recursive call, avoiding a closure that captures its containing locals
// by reference.
package unfold

import (
	"math"

	"github.com/unixpickle/meshknit/graph"
	"github.com/unixpickle/meshknit/mesh"
)

// DefaultDepth is the default unfolding recursion depth.
const DefaultDepth = 3

// shortcuts tracks the minimum straight-line distance found so far for an
// undirected pair of vertices, across all unfoldings.
type shortcuts struct {
	best map[mesh.Edge]float64
}

func newShortcuts() *shortcuts {
	return &shortcuts{best: map[mesh.Edge]float64{}}
}

func (s *shortcuts) offer(a, b int, dist float64) {
	if a == b {
		return
	}
	e := mesh.NewEdge(a, b)
	if cur, ok := s.best[e]; !ok || dist < cur {
		s.best[e] = dist
	}
}

// frame is one pending unfolding step processed by the explicit stack in
// flattenAndUnfold, in place of a recursive closure.
type frame struct {
	depth int

	root     int
	flatRoot point2D

	a     int
	flatA point2D
	b     int
	flatB point2D

	limA point2D
	limB point2D
}

// Augment computes the unfolded-geodesic adjacency graph for m: it starts
// from g's direct edges, adds shortcut distances found by flattening every
// triangle's fan up to depth triangles deep from each of its three
// vertices as root, keeps the minimum distance per unordered pair, and
// returns a freshly rebuilt, neighbor-sorted Graph.
func Augment(m *mesh.Mesh, g *graph.Graph, depth int) *graph.Graph {
	if depth <= 0 {
		depth = DefaultDepth
	}
	sc := newShortcuts()

	for _, t := range m.Triangles {
		unfoldTriangle(m, g, t, depth, sc)
	}

	// Fold in the direct adjacency distances alongside the shortcuts,
	// keeping the minimum per pair.
	for v, neighbors := range g.Adjacency {
		for _, nb := range neighbors {
			sc.offer(v, nb.Vertex, nb.Length)
		}
	}

	augmented := &graph.Graph{
		Adjacency: make([][]graph.Neighbor, len(m.Vertices)),
		Opposite:  g.Opposite,
	}
	for e, dist := range sc.best {
		augmented.Adjacency[e.A] = append(augmented.Adjacency[e.A], graph.Neighbor{Vertex: e.B, Length: dist})
		augmented.Adjacency[e.B] = append(augmented.Adjacency[e.B], graph.Neighbor{Vertex: e.A, Length: dist})
	}
	augmented.SortNeighbors()
	return augmented
}

// unfoldTriangle runs the fan-flattening unfolding from each of t's three
// vertices as root.
func unfoldTriangle(m *mesh.Mesh, g *graph.Graph, t mesh.Triangle, depth int, sc *shortcuts) {
	for i := 0; i < 3; i++ {
		x, y, z := t[i], t[(i+1)%3], t[(i+2)%3]
		flattenAndUnfold(m, g, x, y, z, depth, sc)
	}
}

// flattenAndUnfold flattens triangle (x,y,z) into a plane with x at the
// origin and drives the explicit-stack unfolding recursion outward across
// the triangle's far edge.
func flattenAndUnfold(m *mesh.Mesh, g *graph.Graph, x, y, z int, depth int, sc *shortcuts) {
	xPos, yPos, zPos := m.Vertices[x], m.Vertices[y], m.Vertices[z]

	xyLen := xPos.Dist(yPos)
	if xyLen == 0 {
		return
	}
	u := yPos.Sub(xPos).Normalize()

	zRel := zPos.Sub(xPos)
	along := zRel.Dot(u)
	// The component of (z-x) orthogonal to u, within the triangle's own
	// plane; its length makes perp >= 0 by construction, keeping z above
	// the xy axis.
	perpVec := zRel.Sub(u.Scale(along))
	perpLen := perpVec.Norm()
	if perpLen == 0 {
		// Degenerate (collinear) triangle; nothing to unfold.
		return
	}

	flatY := point2D{xyLen, 0}
	flatZ := point2D{along, perpLen}

	stack := []frame{{
		depth: depth,
		root:  x, flatRoot: point2D{0, 0},
		a: y, flatA: flatY,
		b: z, flatB: flatZ,
		limA: flatY, limB: flatZ,
	}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth <= 0 {
			continue
		}

		oe := mesh.NewOrientedEdge(f.b, f.a)
		c, ok := g.Opposite[oe]
		if !ok {
			continue
		}

		flatC := placeOpposite(m, f.a, f.flatA, f.b, f.flatB, f.root, f.flatRoot, c)

		fullyVisible := isCCW(f.flatRoot, f.limA, flatC) && isCCW(f.flatRoot, flatC, f.limB)
		visibleViaFlat := isCCW(f.flatRoot, f.flatA, flatC) && isCCW(f.flatRoot, flatC, f.flatB)

		if fullyVisible || visibleViaFlat {
			sc.offer(f.root, c, f.flatRoot.Dist(flatC))
			stack = append(stack,
				frame{
					depth: f.depth - 1,
					root:  f.root, flatRoot: f.flatRoot,
					a: f.a, flatA: f.flatA,
					b: c, flatB: flatC,
					limA: f.limA, limB: flatC,
				},
				frame{
					depth: f.depth - 1,
					root:  f.root, flatRoot: f.flatRoot,
					a: c, flatA: flatC,
					b: f.b, flatB: f.flatB,
					limA: flatC, limB: f.limB,
				},
			)
			continue
		}

		visibleA := isCCW(f.flatRoot, f.limA, flatC)
		visibleB := isCCW(f.flatRoot, flatC, f.limB)
		if visibleA && !visibleB {
			stack = append(stack, frame{
				depth: f.depth - 1,
				root:  f.root, flatRoot: f.flatRoot,
				a: f.a, flatA: f.flatA,
				b: c, flatB: flatC,
				limA: f.limA, limB: f.limB,
			})
		} else if visibleB && !visibleA {
			stack = append(stack, frame{
				depth: f.depth - 1,
				root:  f.root, flatRoot: f.flatRoot,
				a: c, flatA: flatC,
				b: f.b, flatB: f.flatB,
				limA: f.limA, limB: f.limB,
			})
		}
	}
}

// placeOpposite computes the planar position of c, the vertex completing
// the triangle unfolded across edge (b,a), using the real 3D edge lengths
// from a and b to c and placing c on the side of ab opposite the root.
func placeOpposite(m *mesh.Mesh, a int, flatA point2D, b int, flatB point2D, root int, flatRoot point2D, c int) point2D {
	acLen := m.Vertices[a].Dist(m.Vertices[c])
	bcLen := m.Vertices[b].Dist(m.Vertices[c])
	abLen := flatA.Dist(flatB)

	dir := flatB.Sub(flatA).Normalize()
	perp := dir.perp()
	// Orient perp to point toward the root side, so that negating it
	// places c on the far side from the root.
	if perp.X*(flatRoot.X-flatA.X)+perp.Y*(flatRoot.Y-flatA.Y) < 0 {
		perp = perp.Scale(-1)
	}

	s := (acLen*acLen - bcLen*bcLen + abLen*abLen) / (2 * abLen)
	h2 := acLen*acLen - s*s
	if h2 < 0 {
		h2 = 0
	}
	h := math.Sqrt(h2)

	return flatA.Add(dir.Scale(s)).Add(perp.Scale(-h))
}
