// Package numeric provides the small pieces of scalar numerics the contact
// pipeline needs that are not covered by gonum.
package numeric

import (
	"errors"
	"math"
)

var (
	// ErrNoBracket is returned when f(a) and f(b) do not straddle zero.
	ErrNoBracket = errors.New("numeric: root is not bracketed")

	// ErrMaxIterations is returned when the iteration cap is reached before
	// the bracket shrinks below tolerance.
	ErrMaxIterations = errors.New("numeric: maximum iterations exceeded")
)

// Brent finds a root of f on the bracketing interval [a, b] using Brent's
// method (inverse quadratic interpolation with bisection fallback). The
// returned root x satisfies |f(x)| at a bracket narrower than tol, or an
// error is returned. f(a) and f(b) must have opposite signs.
func Brent(f func(float64) float64, a, b, tol float64, maxIter int) (float64, error) {
	fa := f(a)
	fb := f(b)
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if fa*fb > 0 {
		return 0, ErrNoBracket
	}

	c, fc := a, fa
	d := b - a
	e := d

	for i := 0; i < maxIter; i++ {
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}

		const eps = 2.220446049250313e-16
		tol1 := 2*eps*math.Abs(b) + 0.5*tol
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol1 || fb == 0 {
			return b, nil
		}

		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			// Attempt inverse quadratic interpolation.
			s := fb / fa
			var p, q float64
			if a == c {
				p = 2 * xm * s
				q = 1 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2*xm*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			if 2*p < math.Min(3*xm*q-math.Abs(tol1*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}

		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else {
			b += math.Copysign(tol1, xm)
		}
		fb = f(b)
		if (fb > 0) == (fc > 0) {
			c, fc = a, fa
			d = b - a
			e = d
		}
	}
	return b, ErrMaxIterations
}
