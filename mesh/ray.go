package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// rayEpsilon guards the Möller–Trumbore determinant and barycentric bounds
// against rays grazing a triangle edge.
const rayEpsilon = 1e-12

// rayTriangle computes the intersection of the ray origin+t*dir with the
// triangle (v0, v1, v2) using the Möller–Trumbore algorithm. It returns the
// distance t >= 0 along dir when the intersection point lies within the
// triangle. dir must be unit length for t to be a metric distance.
func rayTriangle(origin, dir, v0, v1, v2 r3.Vec) (float64, bool) {
	e1 := r3.Sub(v1, v0)
	e2 := r3.Sub(v2, v0)
	p := r3.Cross(dir, e2)
	det := r3.Dot(e1, p)
	if math.Abs(det) < rayEpsilon {
		// Ray parallel to the triangle plane.
		return 0, false
	}
	inv := 1 / det
	s := r3.Sub(origin, v0)
	u := inv * r3.Dot(s, p)
	if u < -rayEpsilon || u > 1+rayEpsilon {
		return 0, false
	}
	q := r3.Cross(s, e1)
	v := inv * r3.Dot(dir, q)
	if v < -rayEpsilon || u+v > 1+rayEpsilon {
		return 0, false
	}
	t := inv * r3.Dot(e2, q)
	if t < 0 {
		return 0, false
	}
	return t, true
}
