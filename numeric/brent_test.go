package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrentCosine(t *testing.T) {
	root, err := Brent(math.Cos, 1, 2, 1e-12, 100)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, root, 1e-10)
}

func TestBrentCubic(t *testing.T) {
	f := func(x float64) float64 { return x*x*x - 2*x - 5 }
	root, err := Brent(f, 2, 3, 1e-12, 100)
	require.NoError(t, err)
	assert.InDelta(t, 2.0945514815423265, root, 1e-10)
	assert.InDelta(t, 0, f(root), 1e-9)
}

func TestBrentEndpointRoot(t *testing.T) {
	f := func(x float64) float64 { return x }
	root, err := Brent(f, 0, 1, 1e-12, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.0, root)
}

func TestBrentNoBracket(t *testing.T) {
	f := func(x float64) float64 { return x*x + 1 }
	_, err := Brent(f, -1, 1, 1e-12, 100)
	assert.ErrorIs(t, err, ErrNoBracket)
}

func TestBrentMaxIterations(t *testing.T) {
	// One iteration cannot reach the cubic's root at tolerance 1e-15; a
	// linear residual would be solved exactly by the first secant step.
	f := func(x float64) float64 { return x*x*x - 2*x - 5 }
	_, err := Brent(f, 2, 3, 1e-15, 1)
	assert.ErrorIs(t, err, ErrMaxIterations)
}

func TestBrentLogResidual(t *testing.T) {
	// Shape of the variable-property pressure equilibrium residual.
	f := func(x float64) float64 {
		return -math.Log(1-x/0.002) + math.Log(1-(0.001-x)/0.002)
	}
	root, err := Brent(f, 0, 0.001, 1e-12, 100)
	require.NoError(t, err)
	assert.InDelta(t, 0.0005, root, 1e-10)
}
