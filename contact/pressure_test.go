package contact

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(form Formulation, lumped bool, castP, targP Parameters) *pressureModel {
	return &pressureModel{
		formulation: form,
		lumped:      lumped,
		casting:     sideProps{params: castP},
		target:      sideProps{params: targP},
	}
}

func TestLumpedLinearPressure(t *testing.T) {
	pm := newTestModel(Linear, true, uniformParams(), uniformParams())

	// Lumped layer: E=1e6, nu=0.4, h=0.002.
	k := planeStrainFactor(1e6, 0.4)
	for _, d := range []float64{1e-5, 1e-4, 0.001, 0.0015} {
		p, u, err := pm.compute(d, 0, 0)
		require.NoError(t, err)
		assert.InEpsilon(t, k*d/0.002, p, 1e-14)
		assert.InEpsilon(t, k*d*d/(2*0.002), u, 1e-14)
	}

	p, u, err := pm.compute(0, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, p)
	assert.Zero(t, u)

	// The reference scenario: d=0.001 against the combined 0.002 layer.
	p, _, err = pm.compute(0.001, 0, 0)
	require.NoError(t, err)
	assert.InEpsilon(t, 1e6*0.6/(1.4*0.2)*0.5, p, 1e-12)
}

func TestLumpedNonlinearPressure(t *testing.T) {
	pm := newTestModel(Nonlinear, true, uniformParams(), uniformParams())
	k := planeStrainFactor(1e6, 0.4)
	h := 0.002

	prev := 0.0
	for _, d := range []float64{1e-5, 1e-4, 5e-4, 0.001, 0.0015, 0.0019} {
		p, _, err := pm.compute(d, 0, 0)
		require.NoError(t, err)
		// Defining equation and monotonicity.
		assert.InEpsilon(t, -k*math.Log(1-d/h), p, 1e-14)
		assert.Greater(t, p, prev)
		prev = p
	}

	// Depth at or beyond the combined thickness is a domain violation, not
	// an extrapolation.
	p, u, err := pm.compute(h, 0, 0)
	assert.ErrorIs(t, err, errDepthExceedsThickness)
	assert.True(t, math.IsNaN(p))
	assert.True(t, math.IsNaN(u))

	// Small depths agree with the linear law to first order.
	pLin, _, _ := newTestModel(Linear, true, uniformParams(), uniformParams()).compute(1e-8, 0, 0)
	pNl, _, _ := pm.compute(1e-8, 0, 0)
	assert.InEpsilon(t, pLin, pNl, 1e-5)
}

func TestVariableLinearSplit(t *testing.T) {
	castP := Parameters{ElasticModulus: 5e6, PoissonsRatio: 0.46, Thickness: 0.002}
	targP := Parameters{ElasticModulus: 1e6, PoissonsRatio: 0.40, Thickness: 0.004}
	pm := newTestModel(Linear, false, castP, targP)

	k1 := planeStrainFactor(5e6, 0.46) / 0.002
	k2 := planeStrainFactor(1e6, 0.40) / 0.004

	d := 0.0012
	p, u, err := pm.compute(d, 0, 0)
	require.NoError(t, err)

	// Split proportional to the stiffness ratio; both sides carry the same
	// pressure and the depths sum exactly.
	d1 := d * k2 / (k1 + k2)
	d2 := d - d1
	assert.InEpsilon(t, k1*d1, p, 1e-14)
	assert.InEpsilon(t, k2*d2, p, 1e-12)
	assert.InEpsilon(t, k1*d1*d1/2+k2*d2*d2/2, u, 1e-14)

	// Never hits the numerical solver.
	assert.EqualValues(t, 0, pm.nSolverCalls())
}

func TestVariableNonlinearEquilibrium(t *testing.T) {
	castP := Parameters{ElasticModulus: 5e6, PoissonsRatio: 0.46, Thickness: 0.002}
	targP := Parameters{ElasticModulus: 1e6, PoissonsRatio: 0.40, Thickness: 0.004}
	pm := newTestModel(Nonlinear, false, castP, targP)

	s1 := planeStrainFactor(5e6, 0.46)
	s2 := planeStrainFactor(1e6, 0.40)

	for _, d := range []float64{1e-4, 5e-4, 0.0015, 0.003} {
		p, _, err := pm.compute(d, 0, 0)
		require.NoError(t, err)
		require.False(t, math.IsNaN(p))

		// Invert each side's law at the returned pressure: the recovered
		// depths must split d exactly and satisfy both domains.
		d1 := 0.002 * (1 - math.Exp(-p/s1))
		d2 := 0.004 * (1 - math.Exp(-p/s2))
		assert.InDelta(t, d, d1+d2, 1e-9)
		assert.Less(t, d1, 0.002)
		assert.Less(t, d2, 0.004)
	}
	assert.EqualValues(t, 4, pm.nSolverCalls())

	// Beyond the combined thickness the system has no solution.
	p, _, err := pm.compute(0.006, 0, 0)
	assert.ErrorIs(t, err, errDepthExceedsThickness)
	assert.True(t, math.IsNaN(p))
}

func TestVariableNonlinearSymmetricSplit(t *testing.T) {
	// Identical sides must split the depth in half.
	p1 := Parameters{ElasticModulus: 2e6, PoissonsRatio: 0.42, Thickness: 0.003}
	pm := newTestModel(Nonlinear, false, p1, p1)

	d := 0.002
	p, _, err := pm.compute(d, 0, 0)
	require.NoError(t, err)
	s := planeStrainFactor(2e6, 0.42)
	assert.InEpsilon(t, -s*math.Log(1-d/2/0.003), p, 1e-9)
}

func TestNegativeDepthCarriesNoPressure(t *testing.T) {
	pm := newTestModel(Nonlinear, true, uniformParams(), uniformParams())
	p, u, err := pm.compute(-0.0005, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, p)
	assert.Zero(t, u)
	assert.EqualValues(t, 0, pm.nSolverCalls())
}

func TestParseFormulation(t *testing.T) {
	f, err := ParseFormulation("linear")
	require.NoError(t, err)
	assert.Equal(t, Linear, f)

	f, err = ParseFormulation("nonlinear")
	require.NoError(t, err)
	assert.Equal(t, Nonlinear, f)

	_, err = ParseFormulation("quadratic")
	assert.Error(t, err)
}

func TestParameterValidation(t *testing.T) {
	cases := []struct {
		name string
		p    Parameters
		ok   bool
	}{
		{"valid", Parameters{ElasticModulus: 1e6, PoissonsRatio: 0.4, Thickness: 0.002}, true},
		{"zero modulus", Parameters{PoissonsRatio: 0.4, Thickness: 0.002}, false},
		{"zero thickness", Parameters{ElasticModulus: 1e6, PoissonsRatio: 0.4}, false},
		{"poisson at half", Parameters{ElasticModulus: 1e6, PoissonsRatio: 0.5, Thickness: 0.002}, false},
		{"negative poisson", Parameters{ElasticModulus: 1e6, PoissonsRatio: -0.1, Thickness: 0.002}, false},
		{"incompressible-adjacent", Parameters{ElasticModulus: 1e6, PoissonsRatio: 0.499, Thickness: 0.002}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := plateConfig()
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.MinProximity = 0.001
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.MaxProximity = -1
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Verbose = 3
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Target.Thickness = 0
	assert.Error(t, bad.Validate())
}
