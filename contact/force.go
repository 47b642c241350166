package contact

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync/atomic"

	"github.com/jointmech/articular/mesh"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Side selects one of the two symmetric mesh roles. The same pipeline runs
// for both; "casting" only names the surface whose normals seed the rays of
// that pass.
type Side uint8

const (
	Casting Side = iota
	Target
)

func (s Side) String() string {
	if s == Casting {
		return "casting"
	}
	return "target"
}

// ForceAccumulator receives the net spatial force each surface applies to
// the multibody it is attached to. Implemented by the host simulation.
type ForceAccumulator interface {
	AddBodyForce(body string, force, moment r3.Vec)
}

// ArticularContactForce is the per-step contact pipeline between two
// interpenetrating triangulated surfaces. It owns the configuration and the
// per-step cache and references the two surfaces without owning them; both
// must outlive the force.
//
// Results are realized in stages mirroring the host's state protocol: the
// position stage runs the proximity detector for both roles, the dynamics
// stage runs the pressure model and the force/statistics reduction. Query
// accessors realize lazily and read the cache; a surface pose change
// invalidates it.
type ArticularContactForce struct {
	cfg     Config
	casting mesh.Surface
	target  mesh.Surface

	det          detector
	castingModel *pressureModel // casting role: casting params vs target params
	targetModel  *pressureModel // target role: sides swapped

	sides [2]*sideState // Indexed by Side

	stage    realizationStage
	castGen  uint64
	targGen  uint64
	hasState bool // Generations captured at least once
}

// NewArticularContactForce validates the configuration against both
// surfaces and prepares the per-step cache. Configuration errors are fatal
// here; nothing fails later for the same reason.
func NewArticularContactForce(cfg Config, casting, target mesh.Surface) (*ArticularContactForce, error) {
	if casting == nil || target == nil {
		return nil, errors.New("contact: casting and target surfaces are required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Casting.validateAgainst(casting); err != nil {
		return nil, err
	}
	if err := cfg.Target.validateAgainst(target); err != nil {
		return nil, err
	}
	for _, s := range []mesh.Surface{casting, target} {
		nDegen := 0
		for i := 0; i < s.NumTriangles(); i++ {
			if s.Degenerate(i) {
				nDegen++
			}
		}
		if nDegen == s.NumTriangles() {
			return nil, fmt.Errorf("contact: mesh %s has no usable triangles (%d degenerate)", s.Name(), nDegen)
		}
		if nDegen > 0 && cfg.Verbose >= 1 {
			log.Printf("contact: mesh %s: %d degenerate triangles excluded from contact", s.Name(), nDegen)
		}
	}

	swapped := cfg
	swapped.Casting, swapped.Target = cfg.Target, cfg.Casting
	return &ArticularContactForce{
		cfg:          cfg,
		casting:      casting,
		target:       target,
		det:          detector{minProximity: cfg.MinProximity, maxProximity: cfg.MaxProximity},
		castingModel: newPressureModel(cfg, casting, target),
		targetModel:  newPressureModel(swapped, target, casting),
		sides: [2]*sideState{
			newSideState(casting.NumTriangles(), regionTriangles(casting)),
			newSideState(target.NumTriangles(), regionTriangles(target)),
		},
	}, nil
}

// Config returns the immutable configuration.
func (f *ArticularContactForce) Config() Config { return f.cfg }

func (f *ArticularContactForce) surface(side Side) mesh.Surface {
	if side == Casting {
		return f.casting
	}
	return f.target
}

// Invalidate drops the per-step cache, forcing the next query to re-run the
// detector. Pose changes on either surface are picked up automatically via
// their generation counters.
func (f *ArticularContactForce) Invalidate() { f.stage = stageInvalid }

func (f *ArticularContactForce) checkGenerations() {
	cg, tg := f.casting.Generation(), f.target.Generation()
	if !f.hasState || cg != f.castGen || tg != f.targGen {
		f.stage = stageInvalid
		f.castGen, f.targGen = cg, tg
		f.hasState = true
	}
}

// RealizePosition runs the proximity detector for both roles, filling the
// proximity vectors and the position-stage statistics. Idempotent per pose.
func (f *ArticularContactForce) RealizePosition() {
	f.checkGenerations()
	if f.stage >= stagePosition {
		return
	}
	f.realizeSidePosition(Casting, f.casting, f.target)
	f.realizeSidePosition(Target, f.target, f.casting)
	f.stage = stagePosition
}

func (f *ArticularContactForce) realizeSidePosition(side Side, castingSurf, targetSurf mesh.Surface) {
	s := f.sides[side]
	s.swapRecords()
	s.detect = f.det.detect(castingSurf, targetSurf, s.prevRecords, s.records)

	n := 0
	for i := range s.records {
		rec := &s.records[i]
		s.proximity[i] = rec.Depth
		s.contacting[i] = rec.Target != NoContact && rec.Depth != 0
		if s.contacting[i] {
			n++
		}
	}
	s.nContacting = n

	s.total = proximityStats(castingSurf, s.allTris, s.proximity, s.contacting)
	for r, tris := range s.regionTris {
		s.regional[r] = proximityStats(castingSurf, tris, s.proximity, s.contacting)
	}

	if f.cfg.Verbose >= 1 {
		log.Printf("contact: %s detector: %d contacting (coherence=%d neighbor=%d full=%d miss=%d)",
			side, n, s.detect.Coherence, s.detect.Neighbor, s.detect.FullQuery, s.detect.Miss)
	}
}

// RealizeDynamics runs the pressure model and the force reduction for both
// roles, then injects each side's net spatial force into acc at the body
// its surface is attached to. acc may be nil for query-only use.
func (f *ArticularContactForce) RealizeDynamics(acc ForceAccumulator) {
	f.realizeDynamics()
	if acc == nil {
		return
	}
	acc.AddBodyForce(f.casting.AttachedBody(), f.sides[Casting].total.ContactForce, f.sides[Casting].total.ContactMoment)
	acc.AddBodyForce(f.target.AttachedBody(), f.sides[Target].total.ContactForce, f.sides[Target].total.ContactMoment)
}

func (f *ArticularContactForce) realizeDynamics() {
	f.RealizePosition()
	if f.stage >= stageDynamics {
		return
	}
	f.realizeSideDynamics(Casting, f.casting, f.castingModel)
	f.realizeSideDynamics(Target, f.target, f.targetModel)
	f.stage = stageDynamics
}

func (f *ArticularContactForce) realizeSideDynamics(side Side, surf mesh.Surface, pm *pressureModel) {
	s := f.sides[side]
	var failures int64
	parallelFor(len(s.records), func(lo, hi int) {
		var local int64
		for i := lo; i < hi; i++ {
			rec := &s.records[i]
			s.pressure[i], s.energy[i] = 0, 0
			s.triForce[i], s.triMoment[i] = r3.Vec{}, r3.Vec{}
			if rec.Target == NoContact || rec.Depth <= 0 {
				continue
			}
			p, u, err := pm.compute(rec.Depth, i, rec.Target)
			if err != nil {
				local++
				if f.cfg.Verbose >= 1 {
					log.Printf("contact: %s tri %d depth %g: %v", side, i, rec.Depth, err)
				}
			}
			s.pressure[i] = p
			if math.IsNaN(p) {
				s.energy[i] = math.NaN()
				continue
			}
			if f.cfg.Verbose >= 2 {
				log.Printf("contact: %s tri %d -> target %d depth %g pressure %g", side, i, rec.Target, rec.Depth, p)
			}
			area := surf.Area(i)
			s.energy[i] = u * area
			s.triForce[i] = contactForceVector(p, area, surf.Normal(i))
			s.triMoment[i] = contactMomentVector(s.triForce[i], surf.Centroid(i))
		}
		atomic.AddInt64(&failures, local)
	})
	s.solveFailures = int(failures)

	pressureStats(&s.total, surf, s.allTris, s.pressure, s.contacting, s.triForce, s.triMoment)
	for r, tris := range s.regionTris {
		pressureStats(&s.regional[r], surf, tris, s.pressure, s.contacting, s.triForce, s.triMoment)
	}
}

// PotentialEnergy returns the elastic energy stored in the contact,
// accumulated over the casting-role triangles. Triangles with failed solves
// are skipped.
func (f *ArticularContactForce) PotentialEnergy() float64 {
	f.realizeDynamics()
	return totalEnergy(f.sides[Casting].energy)
}

// NumContacting returns the number of triangles of the given side that are
// in contact at the current pose.
func (f *ArticularContactForce) NumContacting(side Side) int {
	f.RealizePosition()
	return f.sides[side].nContacting
}

// TriProximity returns the per-triangle signed overlap depth of the side.
func (f *ArticularContactForce) TriProximity(side Side) []float64 {
	f.RealizePosition()
	return append([]float64(nil), f.sides[side].proximity...)
}

// TriPressure returns the per-triangle contact pressure of the side.
// Triangles whose nonlinear solve failed hold NaN.
func (f *ArticularContactForce) TriPressure(side Side) []float64 {
	f.realizeDynamics()
	return append([]float64(nil), f.sides[side].pressure...)
}

// TriPotentialEnergy returns the per-triangle stored elastic energy.
func (f *ArticularContactForce) TriPotentialEnergy(side Side) []float64 {
	f.realizeDynamics()
	return append([]float64(nil), f.sides[side].energy...)
}

// ContactArea returns the whole-mesh contact area of the side. Available at
// the position stage.
func (f *ArticularContactForce) ContactArea(side Side) float64 {
	f.RealizePosition()
	return f.sides[side].total.ContactArea
}

// MeanProximity returns the mean overlap depth over contacting triangles.
func (f *ArticularContactForce) MeanProximity(side Side) float64 {
	f.RealizePosition()
	return f.sides[side].total.MeanProximity
}

// MaxProximity returns the maximum overlap depth over contacting triangles.
func (f *ArticularContactForce) MaxProximity(side Side) float64 {
	f.RealizePosition()
	return f.sides[side].total.MaxProximity
}

// CenterOfProximity returns the area-and-depth weighted contact centroid.
func (f *ArticularContactForce) CenterOfProximity(side Side) r3.Vec {
	f.RealizePosition()
	return f.sides[side].total.CenterOfProximity
}

// ContactForce returns the whole-mesh net contact force on the side.
func (f *ArticularContactForce) ContactForce(side Side) r3.Vec {
	f.realizeDynamics()
	return f.sides[side].total.ContactForce
}

// ContactMoment returns the whole-mesh net contact moment about the frame
// origin.
func (f *ArticularContactForce) ContactMoment(side Side) r3.Vec {
	f.realizeDynamics()
	return f.sides[side].total.ContactMoment
}

// TotalStats returns the whole-mesh statistics of the side.
func (f *ArticularContactForce) TotalStats(side Side) Stats {
	f.realizeDynamics()
	return f.sides[side].total
}

// RegionalStats returns the per-region statistics of the side, ordered by
// region id.
func (f *ArticularContactForce) RegionalStats(side Side) []Stats {
	f.realizeDynamics()
	return append([]Stats(nil), f.sides[side].regional...)
}

// DetectorStats reports which search paths located this side's contacts in
// the last detector pass.
func (f *ArticularContactForce) DetectorStats(side Side) DetectStats {
	f.RealizePosition()
	return f.sides[side].detect
}

// SolveFailures returns the number of triangles whose pressure solve failed
// in the last dynamics realization.
func (f *ArticularContactForce) SolveFailures(side Side) int {
	f.realizeDynamics()
	return f.sides[side].solveFailures
}

// NSolverCalls reports the total nonlinear root-finder invocations across
// both roles since construction.
func (f *ArticularContactForce) NSolverCalls() int64 {
	return f.castingModel.nSolverCalls() + f.targetModel.nSolverCalls()
}

// totalEnergy is a reduction helper kept close to its only callers.
func totalEnergy(energy []float64) float64 {
	clean := make([]float64, 0, len(energy))
	for _, u := range energy {
		if !math.IsNaN(u) {
			clean = append(clean, u)
		}
	}
	return floats.Sum(clean)
}
