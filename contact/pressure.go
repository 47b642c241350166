package contact

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/jointmech/articular/mesh"
	"github.com/jointmech/articular/numeric"
)

// Convergence settings for the variable-property nonlinear solve.
const (
	solverTol     = 1e-12
	solverMaxIter = 100
)

// errDepthExceedsThickness flags an overlap depth outside the domain of the
// nonlinear law (d >= h). The triangle's pressure is reported as NaN rather
// than extrapolated.
var errDepthExceedsThickness = errors.New("contact: overlap depth exceeds elastic layer thickness")

// planeStrainFactor is the confined-compression stiffness E(1-nu) /
// [(1+nu)(1-2nu)] shared by every elastic foundation variant.
func planeStrainFactor(e, nu float64) float64 {
	return e * (1 - nu) / ((1 + nu) * (1 - 2*nu))
}

// sideProps resolves the material properties of one side for a given
// triangle, falling back to the uniform values unless the corresponding
// variable flag is set.
type sideProps struct {
	params Parameters
	surf   mesh.Surface
}

func (s sideProps) at(i int) (e, nu, h float64) {
	e, nu, h = s.params.ElasticModulus, s.params.PoissonsRatio, s.params.Thickness
	if s.params.UseVariableElasticModulus {
		e = s.surf.ElasticModulus(i)
	}
	if s.params.UseVariablePoissonsRatio {
		nu = s.surf.PoissonsRatio(i)
	}
	if s.params.UseVariableThickness {
		h = s.surf.Thickness(i)
	}
	return e, nu, h
}

// pressureModel converts overlap depth into contact pressure and stored
// elastic energy per unit area, using one of four variants selected by the
// formulation and lumped-model flags.
type pressureModel struct {
	formulation Formulation
	lumped      bool
	casting     sideProps
	target      sideProps

	solverCalls atomic.Int64 // Invocations of the nonlinear root-finder
}

func newPressureModel(cfg Config, casting, target mesh.Surface) *pressureModel {
	return &pressureModel{
		formulation: cfg.Formulation,
		lumped:      cfg.LumpedModel,
		casting:     sideProps{params: cfg.Casting, surf: casting},
		target:      sideProps{params: cfg.Target, surf: target},
	}
}

// compute returns the contact pressure and the stored potential energy per
// unit area for a casting triangle overlapping a target triangle by depth d.
// Negative depth (proximity without penetration) carries no pressure.
func (pm *pressureModel) compute(d float64, castTri, targTri int) (pressure, energy float64, err error) {
	if d <= 0 {
		return 0, 0, nil
	}
	e1, nu1, h1 := pm.casting.at(castTri)
	e2, nu2, h2 := pm.target.at(targTri)

	if pm.lumped {
		// Bei & Fregly: one effective layer with averaged properties and
		// summed thickness.
		e := 0.5 * (e1 + e2)
		nu := 0.5 * (nu1 + nu2)
		h := h1 + h2
		k := planeStrainFactor(e, nu)
		if pm.formulation == Linear {
			return k * d / h, k * d * d / (2 * h), nil
		}
		if d >= h {
			return math.NaN(), math.NaN(), errDepthExceedsThickness
		}
		return -k * math.Log(1 - d/h), k * ((h-d)*math.Log(1-d/h) + d), nil
	}

	// Variable-property formulation (Zevenbergen): per-side law, force
	// equilibrium, and depth split d = d1 + d2.
	s1 := planeStrainFactor(e1, nu1)
	s2 := planeStrainFactor(e2, nu2)

	if pm.formulation == Linear {
		// Closed-form split proportional to the per-depth stiffness ratio.
		k1 := s1 / h1
		k2 := s2 / h2
		d1 := d * k2 / (k1 + k2)
		d2 := d - d1
		return k1 * d1, k1*d1*d1/2 + k2*d2*d2/2, nil
	}

	pm.solverCalls.Add(1)
	if d >= h1+h2 {
		return math.NaN(), math.NaN(), errDepthExceedsThickness
	}

	// Bracket d1 so both layers stay inside their log domains.
	const margin = 1 - 1e-12
	lo := math.Max(0, d-h2*margin)
	hi := math.Min(d, h1*margin)
	resid := func(d1 float64) float64 {
		return -s1*math.Log(1-d1/h1) + s2*math.Log(1-(d-d1)/h2)
	}
	d1, serr := numeric.Brent(resid, lo, hi, solverTol, solverMaxIter)
	if serr != nil {
		return math.NaN(), math.NaN(), fmt.Errorf("contact: pressure equilibrium solve failed: %w", serr)
	}
	d2 := d - d1
	pressure = -s1 * math.Log(1-d1/h1)
	energy = s1*((h1-d1)*math.Log(1-d1/h1)+d1) + s2*((h2-d2)*math.Log(1-d2/h2)+d2)
	return pressure, energy, nil
}

// nSolverCalls reports how many times the nonlinear root-finder ran.
func (pm *pressureModel) nSolverCalls() int64 { return pm.solverCalls.Load() }
