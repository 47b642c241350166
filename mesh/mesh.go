// Package mesh provides triangulated contact surfaces: per-triangle
// geometry, vertex-sharing adjacency, region labeling, optional per-triangle
// material data, and nearest-hit ray casting against an AABB tree.
package mesh

import "gonum.org/v1/gonum/spatial/r3"

// RayHit describes the nearest intersection of a ray with a surface.
type RayHit struct {
	Tri      int     // Index of the intersected triangle
	Distance float64 // Distance along the ray direction to the hit point
	Point    r3.Vec  // Intersection point
}

// Surface is the contact-surface collaborator consumed by the contact
// pipeline. Implementations must keep triangle indexing stable for the
// lifetime of the surface; geometry queries reflect the current pose.
type Surface interface {
	Name() string
	NumTriangles() int

	// Per-triangle geometry in the current pose.
	Centroid(i int) r3.Vec
	Normal(i int) r3.Vec
	Area(i int) float64

	// Degenerate reports whether triangle i has zero area or a zero-length
	// normal. Degenerate triangles are excluded from contact.
	Degenerate(i int) bool

	// Region labeling for localized statistics.
	Region(i int) int
	NumRegions() int
	RegionName(r int) string

	// Neighbors returns the triangles sharing at least one vertex with i.
	Neighbors(i int) []int

	// CastRay returns the nearest triangle intersected by the ray from
	// origin along dir, or ok=false when the ray misses the surface.
	CastRay(origin, dir r3.Vec) (hit RayHit, ok bool)

	// RayIntersectsTri tests the ray against a single triangle, returning
	// the distance along dir when the intersection point lies within the
	// triangle.
	RayIntersectsTri(i int, origin, dir r3.Vec) (dist float64, ok bool)

	// AttachedBody names the multibody frame the surface is fixed to.
	AttachedBody() string

	// Generation increments on every pose change; consumers use it to
	// invalidate cached per-step results.
	Generation() uint64

	// Variable material properties. The per-triangle accessors must only
	// be called when the corresponding Has method reports true.
	HasVariableThickness() bool
	HasVariableElasticModulus() bool
	HasVariablePoissonsRatio() bool
	Thickness(i int) float64
	ElasticModulus(i int) float64
	PoissonsRatio(i int) float64
}
