// Package meshknit embeds scalar-valued iso-line constraints into a
// triangle mesh: it snaps each constraint's chain of vertices to a
// geodesic path, refines the mesh to a maximum edge length, extracts a
// level-set contour around each constraint, inscribes every contour into
// the mesh, and keeps only the region between two differently-valued
// contours.
package meshknit

import (
	"context"
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/unixpickle/meshknit/component"
	"github.com/unixpickle/meshknit/embedded"
	"github.com/unixpickle/meshknit/graph"
	"github.com/unixpickle/meshknit/levelset"
	"github.com/unixpickle/meshknit/mesh"
	"github.com/unixpickle/meshknit/planarmap"
	"github.com/unixpickle/meshknit/refine"
	"github.com/unixpickle/meshknit/snap"
	"github.com/unixpickle/meshknit/unfold"
)

// Constraint is one caller-supplied iso-line request: a chain of original
// mesh vertices to snap a geodesic path through, the scalar value its
// inscribed contour should carry, and the contour's offset radius (0
// pins the contour to the path itself).
type Constraint struct {
	Chain  []int
	Value  float64
	Radius float64
}

// Diagnostic is a non-fatal condition surfaced during Embed: currently
// only "constraint chain moves between connected components".
type Diagnostic struct {
	ConstraintIndex int
	Message         string
}

// Logger receives structured progress and diagnostic output from Embed.
// log.New(...) satisfies this without adaptation.
type Logger interface {
	Printf(format string, args ...interface{})
}

// NopLogger discards everything; it is the zero-value default.
type NopLogger struct{}

// Printf implements Logger by doing nothing.
func (NopLogger) Printf(string, ...interface{}) {}

// Result is the output of a successful Embed call.
type Result struct {
	// Mesh is the refined, pruned, re-triangulated model.
	Mesh *mesh.Mesh

	// Values holds one scalar per Mesh vertex: the inscribed edge's value
	// for vertices on a constraint contour, math.NaN() otherwise.
	Values []float64

	// SnappedPaths[i] is constraint i's geodesic path, in refined-mesh
	// coordinates. Nil if constraints were empty.
	SnappedPaths [][]mesh.Coord3D

	// ContourLoops[i] is constraint i's closed contour polyline, if its
	// level-set extraction produced one. Nil entries mean no closed loop
	// was produced (e.g. an open contour, or an empty one).
	ContourLoops [][]mesh.Coord3D
}

// Embedder configures and runs the constraint-embedding pipeline. The
// zero value is invalid only in that MaxEdgeLength must be set; every
// other field has a sensible default.
type Embedder struct {
	// MaxEdgeLength is the refinement edge-length cap. Required, > 0.
	MaxEdgeLength float64

	// UnfoldDepth is the unfolding recursion depth D. Default 3.
	UnfoldDepth int

	// MergeTolerance is the EPM's coincident-vertex merge radius. Default
	// 1e-3 * MaxEdgeLength.
	MergeTolerance float64

	// EnableRatioMarking turns on the disabled minimum-to-maximum
	// edge-length ratio marking pass. The source annotates this pass
	// "seems broken"; it defaults to false and exists for experimentation
	// only.
	EnableRatioMarking bool

	// Logger receives progress and diagnostic output. Default NopLogger{}.
	Logger Logger

	// Concurrency bounds the worker pool used for the per-constraint
	// level-set pass. 0 means essentials.ConcurrentMap's own default
	// (GOMAXPROCS).
	Concurrency int
}

// Embed runs the full pipeline: snap, refine, unfold, extract contours,
// inscribe, filter, and compact. An empty constraints list skips
// everything past refinement, returning the refined mesh with all-NaN
// values.
//
// ctx is checked for cancellation twice: on entry, right after the
// manifold check, and after refinement, before the (potentially expensive) unfolding,
// level-set and EPM/component phases. No stage blocks on I/O and no
// per-constraint loop checks ctx, so cancellation is cooperative rather
// than preemptive.
func (e Embedder) Embed(ctx context.Context, model *mesh.Mesh, constraints []Constraint) (*Result, []Diagnostic, error) {
	if e.MaxEdgeLength <= 0 {
		panic("meshknit: MaxEdgeLength must be positive")
	}
	if err := model.NeedsRepair(); err != nil {
		return nil, nil, errors.Wrap(err, "embed constraints")
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "embed constraints")
	}

	unfoldDepth := e.UnfoldDepth
	if unfoldDepth <= 0 {
		unfoldDepth = unfold.DefaultDepth
	}
	mergeTolerance := e.MergeTolerance
	if mergeTolerance <= 0 {
		mergeTolerance = 1e-3 * e.MaxEdgeLength
	}
	logger := e.Logger
	if logger == nil {
		logger = NopLogger{}
	}

	var paths [][]int
	var diagnostics []Diagnostic
	if len(constraints) > 0 {
		g1 := graph.Build(model)
		paths = make([][]int, len(constraints))
		for i, c := range constraints {
			path, diag := snap.Path(g1, c.Chain, i)
			paths[i] = path
			if diag != nil {
				diagnostics = append(diagnostics, Diagnostic{ConstraintIndex: diag.ConstraintIndex, Message: diag.Message})
				logger.Printf("%s", diag.Message)
			}
		}
	}

	refined := refine.Run(model, paths, refine.Options{
		MaxEdgeLength:      e.MaxEdgeLength,
		EnableRatioMarking: e.EnableRatioMarking,
	})
	logger.Printf("refined mesh: %d vertices, %d triangles", len(refined.Mesh.Vertices), len(refined.Mesh.Triangles))

	if len(constraints) == 0 {
		values := make([]float64, len(refined.Mesh.Vertices))
		for i := range values {
			values[i] = math.NaN()
		}
		return &Result{Mesh: refined.Mesh, Values: values}, diagnostics, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, diagnostics, errors.Wrap(err, "embed constraints")
	}

	g2 := graph.Build(refined.Mesh)
	g2.SortNeighbors()
	augmented := unfold.Augment(refined.Mesh, g2, unfoldDepth)

	lsConstraints := make([]levelset.Constraint, len(constraints))
	for i, c := range constraints {
		lsConstraints[i] = levelset.Constraint{Path: refined.Paths[i], Radius: c.Radius}
	}
	lsResults := levelset.ExtractAll(refined.Mesh, augmented, lsConstraints, e.Concurrency)
	logger.Printf("extracted %d level-set contours", len(lsResults))

	pm := planarmap.New(refined.Mesh, mergeTolerance, planarmap.SameValue)
	snappedPaths := make([][]mesh.Coord3D, len(constraints))
	contourLoops := make([][]mesh.Coord3D, len(constraints))
	for i, c := range constraints {
		snappedPaths[i] = coordsFromPath(refined.Mesh, refined.Paths[i])
		inscribeChains(pm, lsResults[i].Chains, c.Value, refined.Mesh.Vertices, &contourLoops[i])
	}

	outVerts, outTris, _ := pm.SplitTriangles()
	inscribed := pm.InscribedEdges()
	comps := component.Filter(outTris, inscribed)

	finalMesh, values := compact(outVerts, outTris, inscribed, comps, refined.Mesh.Vertices)
	logger.Printf("kept %d/%d components, %d vertices, %d triangles",
		keptCount(comps), len(comps), len(finalMesh.Vertices), len(finalMesh.Triangles))

	return &Result{
		Mesh:         finalMesh,
		Values:       values,
		SnappedPaths: snappedPaths,
		ContourLoops: contourLoops,
	}, diagnostics, nil
}

func coordsFromPath(m *mesh.Mesh, path []int) []mesh.Coord3D {
	pts := make([]mesh.Coord3D, len(path))
	for i, v := range path {
		pts[i] = m.Vertices[v]
	}
	return pts
}

// inscribeChains records one constraint's embedded chains into pm and, if
// one of them is closed, resolves its polyline into *loop.
func inscribeChains(pm *planarmap.Map, chains []levelset.Chain, value float64, positions []mesh.Coord3D, loop *[]mesh.Coord3D) {
	for _, chain := range chains {
		if len(chain.Vertices) == 0 {
			continue
		}
		ids := make([]int, len(chain.Vertices))
		pts := make([]mesh.Coord3D, len(chain.Vertices))
		for j, v := range chain.Vertices {
			ids[j] = pm.AddVertex(v)
			pts[j] = v.Position(positions)
		}
		for j := 0; j+1 < len(ids); j++ {
			pm.AddEdge(ids[j], ids[j+1], value)
		}
		if chain.Closed {
			if len(ids) > 1 {
				pm.AddEdge(ids[len(ids)-1], ids[0], value)
			}
			*loop = pts
		}
	}
}

func keptCount(comps []component.Result) int {
	n := 0
	for _, c := range comps {
		if c.Kept {
			n++
		}
	}
	return n
}

// compact retains only triangles of kept components, remapping their
// vertices to a dense 0-based space in first-seen order, and assigns each
// retained vertex the value of an inscribed edge it sits on (NaN if none).
func compact(outVerts []embedded.Vertex, outTris []mesh.Triangle, inscribed map[mesh.Edge]float64, comps []component.Result, positions []mesh.Coord3D) (*mesh.Mesh, []float64) {
	vertexValues := vertexValuesFromInscribed(inscribed)

	out := mesh.New()
	remap := map[int]int{}
	var values []float64

	for _, comp := range comps {
		if !comp.Kept {
			continue
		}
		for _, ti := range comp.TriangleIndices {
			t := outTris[ti]
			var newT mesh.Triangle
			for k, vid := range t {
				nid, ok := remap[vid]
				if !ok {
					nid = out.AddVertex(outVerts[vid].Position(positions))
					remap[vid] = nid
					val := math.NaN()
					if v, ok2 := vertexValues[vid]; ok2 {
						val = v
					}
					values = append(values, val)
				}
				newT[k] = nid
			}
			out.AddTriangle(newT)
		}
	}
	return out, values
}

// vertexValuesFromInscribed assigns each inscribed edge's endpoint the
// first value seen for it, in canonical edge order, so the result is
// deterministic even if two differently-valued constraints happen to
// share a vertex.
func vertexValuesFromInscribed(inscribed map[mesh.Edge]float64) map[int]float64 {
	keys := make([]mesh.Edge, 0, len(inscribed))
	for e := range inscribed {
		keys = append(keys, e)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].A != keys[j].A {
			return keys[i].A < keys[j].A
		}
		return keys[i].B < keys[j].B
	})
	values := map[int]float64{}
	for _, e := range keys {
		v := inscribed[e]
		if _, ok := values[e.A]; !ok {
			values[e.A] = v
		}
		if _, ok := values[e.B]; !ok {
			values[e.B] = v
		}
	}
	return values
}
