// Package mesh implements the indexed vertex/triangle data model
// that the rest of this module operates on: a Coord3D point type, an
// index-based Mesh container, and the undirected/oriented edge keys used
// throughout the pipeline.
package mesh

import "math"

// Coord3D is a point or vector in 3D space.
type Coord3D struct {
	X, Y, Z float64
}

// XYZ creates a Coord3D from three components.
func XYZ(x, y, z float64) Coord3D {
	return Coord3D{X: x, Y: y, Z: z}
}

// Add computes the sum of two coordinates.
func (c Coord3D) Add(c1 Coord3D) Coord3D {
	return Coord3D{X: c.X + c1.X, Y: c.Y + c1.Y, Z: c.Z + c1.Z}
}

// Sub computes the difference c - c1.
func (c Coord3D) Sub(c1 Coord3D) Coord3D {
	return Coord3D{X: c.X - c1.X, Y: c.Y - c1.Y, Z: c.Z - c1.Z}
}

// Scale multiplies every component by s.
func (c Coord3D) Scale(s float64) Coord3D {
	return Coord3D{X: c.X * s, Y: c.Y * s, Z: c.Z * s}
}

// Dot computes the dot product of c and c1.
func (c Coord3D) Dot(c1 Coord3D) float64 {
	return c.X*c1.X + c.Y*c1.Y + c.Z*c1.Z
}

// Cross computes the cross product c x c1.
func (c Coord3D) Cross(c1 Coord3D) Coord3D {
	return Coord3D{
		X: c.Y*c1.Z - c.Z*c1.Y,
		Y: c.Z*c1.X - c.X*c1.Z,
		Z: c.X*c1.Y - c.Y*c1.X,
	}
}

// NormSquared computes the squared Euclidean norm.
func (c Coord3D) NormSquared() float64 {
	return c.Dot(c)
}

// Norm computes the Euclidean norm.
func (c Coord3D) Norm() float64 {
	return math.Sqrt(c.NormSquared())
}

// Dist computes the Euclidean distance between c and c1.
func (c Coord3D) Dist(c1 Coord3D) float64 {
	return c.Sub(c1).Norm()
}

// DistSquared computes the squared Euclidean distance, avoiding the sqrt
// when only a comparison against a squared threshold is needed.
func (c Coord3D) DistSquared(c1 Coord3D) float64 {
	return c.Sub(c1).NormSquared()
}

// Normalize scales c to unit length. The zero vector is returned unchanged.
func (c Coord3D) Normalize() Coord3D {
	n := c.Norm()
	if n == 0 {
		return c
	}
	return c.Scale(1 / n)
}

// Array returns the components as a plain array.
func (c Coord3D) Array() [3]float64 {
	return [3]float64{c.X, c.Y, c.Z}
}

// Mid computes the midpoint (exact average) of two coordinates. Refinement
// relies on this being the plain average of the endpoints, not a
// projected or smoothed estimate.
func Mid(a, b Coord3D) Coord3D {
	return a.Add(b).Scale(0.5)
}

// Lerp linearly interpolates between a and b, t=0 giving a and t=1 giving b.
func Lerp(a, b Coord3D, t float64) Coord3D {
	return a.Scale(1 - t).Add(b.Scale(t))
}
