// Package formulas provides example computations written once, polymorphic
// over any algebra providing the capability bundles they use, so the exact
// same source runs unchanged under Eval, Check, Graph1, and GraphN.
package formulas

import "github.com/facebookresearch/gad/algebra"

// coreArith is the capability bundle every formula in this package needs.
type coreArith[D, V any] interface {
	algebra.Core[D, V]
	algebra.Arith[V]
}

// Product computes a*b.
func Product[D, V any, A coreArith[D, V]](g A, a, b D) (V, error) {
	x := g.Variable(a)
	y := g.Variable(b)

	return g.Mul(x, y)
}

// Difference computes a-b.
func Difference[D, V any, A coreArith[D, V]](g A, a, b D) (V, error) {
	x := g.Variable(a)
	y := g.Variable(b)

	return g.Sub(x, y)
}

// Quadratic computes x*y*y, a formula with a non-trivial second and third
// derivative useful for exercising higher-order differentiation.
func Quadratic[D, V any, A coreArith[D, V]](g A, xv, yv D) (V, error) {
	x := g.Variable(xv)
	y := g.Variable(yv)

	xy, err := g.Mul(x, y)
	if err != nil {
		var zero V

		return zero, err
	}

	return g.Mul(xy, y)
}

// Polynomial computes ((a*b)+c)-d, a slightly larger DAG that combines
// Variable, Constant, Mul, Add and Sub in one formula. c enters as a
// constant, so it never receives a gradient.
func Polynomial[D, V any, A coreArith[D, V]](g A, a, b, c, d D) (V, error) {
	x := g.Variable(a)
	y := g.Variable(b)
	cc := g.Constant(c)
	z := g.Variable(d)

	xy, err := g.Mul(x, y)
	if err != nil {
		var zero V

		return zero, err
	}

	sum, err := g.Add(xy, cc)
	if err != nil {
		var zero V

		return zero, err
	}

	return g.Sub(sum, z)
}
