package contact

import (
	"math"

	"github.com/jointmech/articular/mesh"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Stats aggregates the contact state of a set of triangles (the whole mesh
// or one region). Proximity fields are available after the position stage;
// pressure, force, and moment fields after the dynamics stage.
type Stats struct {
	ContactArea       float64
	MeanProximity     float64
	MaxProximity      float64
	CenterOfProximity r3.Vec
	MeanPressure      float64
	MaxPressure       float64
	CenterOfPressure  r3.Vec
	ContactForce      r3.Vec
	ContactMoment     r3.Vec
}

// contactForceVector is the per-triangle contact force P*A*n.
func contactForceVector(pressure, area float64, normal r3.Vec) r3.Vec {
	return r3.Scale(pressure*area, normal)
}

// contactMomentVector is the moment of the triangle force about the mesh
// frame origin.
func contactMomentVector(force r3.Vec, center r3.Vec) r3.Vec {
	return r3.Cross(center, force)
}

// proximityStats fills the position-stage fields of Stats over the given
// triangles. Only contacting triangles contribute.
func proximityStats(surf mesh.Surface, tris []int, prox []float64, contacting []bool) Stats {
	var s Stats
	vals := make([]float64, 0, len(tris))
	var wsum float64
	var wcenter r3.Vec
	for _, i := range tris {
		if !contacting[i] {
			continue
		}
		area := surf.Area(i)
		s.ContactArea += area
		vals = append(vals, prox[i])
		w := area * prox[i]
		wsum += w
		wcenter = r3.Add(wcenter, r3.Scale(w, surf.Centroid(i)))
	}
	if len(vals) == 0 {
		return s
	}
	s.MeanProximity = stat.Mean(vals, nil)
	s.MaxProximity = floats.Max(vals)
	if wsum != 0 {
		s.CenterOfProximity = r3.Scale(1/wsum, wcenter)
	}
	return s
}

// pressureStats fills the dynamics-stage fields of s over the given
// triangles. Triangles whose pressure solve failed (NaN sentinel) keep
// their contact area but are excluded from the pressure statistics and
// contribute no force. Proximity-only triangles (negative depth, zero
// pressure) likewise keep their area without diluting the pressure means.
func pressureStats(s *Stats, surf mesh.Surface, tris []int, pressure []float64,
	contacting []bool, triForce, triMoment []r3.Vec) {

	vals := make([]float64, 0, len(tris))
	var wsum float64
	var wcenter r3.Vec
	for _, i := range tris {
		if !contacting[i] || pressure[i] == 0 || math.IsNaN(pressure[i]) {
			continue
		}
		area := surf.Area(i)
		vals = append(vals, pressure[i])
		w := area * pressure[i]
		wsum += w
		wcenter = r3.Add(wcenter, r3.Scale(w, surf.Centroid(i)))
		s.ContactForce = r3.Add(s.ContactForce, triForce[i])
		s.ContactMoment = r3.Add(s.ContactMoment, triMoment[i])
	}
	if len(vals) == 0 {
		return
	}
	s.MeanPressure = stat.Mean(vals, nil)
	s.MaxPressure = floats.Max(vals)
	if wsum != 0 {
		s.CenterOfPressure = r3.Scale(1/wsum, wcenter)
	}
}

// regionTriangles groups triangle indices by region id.
func regionTriangles(surf mesh.Surface) [][]int {
	groups := make([][]int, surf.NumRegions())
	for i := 0; i < surf.NumTriangles(); i++ {
		r := surf.Region(i)
		groups[r] = append(groups[r], i)
	}
	return groups
}
