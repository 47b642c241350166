package contact

import (
	"sync/atomic"

	"github.com/jointmech/articular/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// NoContact marks a pair record whose triangle found no acceptable
// intersection on the other surface.
const NoContact = -1

// PairRecord stores the contact correspondence of one casting triangle for
// one step. It seeds the coherence search of the following step.
type PairRecord struct {
	Target int     // Contacting target triangle, or NoContact
	Depth  float64 // Signed overlap depth along the casting normal
	Point  r3.Vec  // Intersection point on the target surface
}

// DetectStats counts which search path located each contact during one
// detector pass. Once contact has stabilized across steps, FullQuery should
// be rare.
type DetectStats struct {
	Coherence int64 // Resolved by re-testing last step's pair
	Neighbor  int64 // Resolved by testing the previous pair's neighbors
	FullQuery int64 // Resolved by a full ray query against the AABB tree
	Miss      int64 // No acceptable intersection in any direction
}

// detector finds, for each casting triangle, the contacting target triangle
// and the signed overlap depth. The normal ray is cast backwards (against
// the casting normal) towards the overlapping target surface; the reverse
// direction is also tested so triangles that left contact are re-acquired.
type detector struct {
	minProximity float64
	maxProximity float64
}

// testTri casts both ray directions from the centroid against one target
// triangle and reports the first depth inside the accepted band.
func (d *detector) testTri(target mesh.Surface, ti int, centroid, normal r3.Vec) (PairRecord, bool) {
	back := r3.Scale(-1, normal)
	if t, ok := target.RayIntersectsTri(ti, centroid, back); ok && t >= d.minProximity && t <= d.maxProximity {
		return PairRecord{Target: ti, Depth: t, Point: r3.Add(centroid, r3.Scale(t, back))}, true
	}
	if t, ok := target.RayIntersectsTri(ti, centroid, normal); ok && -t >= d.minProximity && -t <= d.maxProximity {
		return PairRecord{Target: ti, Depth: -t, Point: r3.Add(centroid, r3.Scale(t, normal))}, true
	}
	return PairRecord{Target: NoContact}, false
}

// fullQuery issues nearest-hit ray queries against the target's bounding
// volume tree, backwards direction first.
func (d *detector) fullQuery(target mesh.Surface, centroid, normal r3.Vec) (PairRecord, bool) {
	back := r3.Scale(-1, normal)
	if hit, ok := target.CastRay(centroid, back); ok && hit.Distance >= d.minProximity && hit.Distance <= d.maxProximity {
		return PairRecord{Target: hit.Tri, Depth: hit.Distance, Point: hit.Point}, true
	}
	if hit, ok := target.CastRay(centroid, normal); ok && -hit.Distance >= d.minProximity && -hit.Distance <= d.maxProximity {
		return PairRecord{Target: hit.Tri, Depth: -hit.Distance, Point: hit.Point}, true
	}
	return PairRecord{Target: NoContact}, false
}

// detect produces the pair records of the casting surface against the
// target. prev is the previous step's record array (same length, read-only
// during the pass) or nil on the first step. Records are double-buffered
// into out, which must have length casting.NumTriangles().
func (d *detector) detect(casting, target mesh.Surface, prev, out []PairRecord) DetectStats {
	var stats DetectStats
	parallelFor(casting.NumTriangles(), func(lo, hi int) {
		var local DetectStats
		for i := lo; i < hi; i++ {
			out[i] = PairRecord{Target: NoContact}
			if casting.Degenerate(i) {
				continue
			}
			centroid := casting.Centroid(i)
			normal := casting.Normal(i)

			// Coherence: re-test last step's contacting triangle.
			if prev != nil && prev[i].Target != NoContact {
				last := prev[i].Target
				if rec, ok := d.testTri(target, last, centroid, normal); ok {
					out[i] = rec
					local.Coherence++
					continue
				}

				// Neighbor test around the previous pair.
				found := false
				for _, nb := range target.Neighbors(last) {
					if rec, ok := d.testTri(target, nb, centroid, normal); ok {
						out[i] = rec
						local.Neighbor++
						found = true
						break
					}
				}
				if found {
					continue
				}
			}

			// Full query against the target's bounding volume tree.
			if rec, ok := d.fullQuery(target, centroid, normal); ok {
				out[i] = rec
				local.FullQuery++
			} else {
				local.Miss++
			}
		}
		atomic.AddInt64(&stats.Coherence, local.Coherence)
		atomic.AddInt64(&stats.Neighbor, local.Neighbor)
		atomic.AddInt64(&stats.FullQuery, local.FullQuery)
		atomic.AddInt64(&stats.Miss, local.Miss)
	})
	return stats
}
