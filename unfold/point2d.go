package unfold

import "math"

// point2D is a 2D point in a per-root flattened fan plane. The unfolding
// algorithm never needs 3D coordinates once a fan has been
// flattened, so this is a package-private type distinct from mesh.Coord3D.
type point2D struct {
	X, Y float64
}

func (p point2D) Sub(o point2D) point2D {
	return point2D{p.X - o.X, p.Y - o.Y}
}

func (p point2D) Add(o point2D) point2D {
	return point2D{p.X + o.X, p.Y + o.Y}
}

func (p point2D) Scale(s float64) point2D {
	return point2D{p.X * s, p.Y * s}
}

func (p point2D) Norm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y)
}

func (p point2D) Dist(o point2D) float64 {
	return p.Sub(o).Norm()
}

func (p point2D) Normalize() point2D {
	n := p.Norm()
	if n == 0 {
		return p
	}
	return p.Scale(1 / n)
}

// perp returns the 90-degree counter-clockwise rotation of p.
func (p point2D) perp() point2D {
	return point2D{-p.Y, p.X}
}

// isCCW reports whether r lies to the left of the directed line p->q:
// is_ccw(p,q,r) = (-(q.y-p.y), q.x-p.x) . (r-p) > 0
func isCCW(p, q, r point2D) bool {
	d := q.Sub(p)
	normal := point2D{-d.Y, d.X}
	return normal.X*(r.X-p.X)+normal.Y*(r.Y-p.Y) > 0
}
