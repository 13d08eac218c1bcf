// Package checkalgebra implements Check, the dimension-only interpreter
// used to validate a formula cheaply before running it for real.
package checkalgebra

import (
	"github.com/facebookresearch/gad/aderr"
	"github.com/facebookresearch/gad/algebra"
)

// Check is the stateless, shape-only algebra. Its value type is
// algebra.Dims: operations compute the result shape from input shapes,
// failing with DimensionMismatch when incompatible, and never allocate
// datum-shaped memory.
type Check[D algebra.Shaped] struct{}

// New builds a Check algebra for datum type D.
func New[D algebra.Shaped]() Check[D] {
	return Check[D]{}
}

// Variable returns d's shape.
func (c Check[D]) Variable(d D) algebra.Dims { return d.Dims() }

// Constant returns d's shape.
func (c Check[D]) Constant(d D) algebra.Dims { return d.Dims() }

// Add checks that x and y have the same shape and returns it.
func (c Check[D]) Add(x, y algebra.Dims) (algebra.Dims, error) {
	return sameShape(x, y)
}

// Neg returns x unchanged; negation never changes shape.
func (c Check[D]) Neg(x algebra.Dims) (algebra.Dims, error) { return x, nil }

// Sub checks that x and y have the same shape and returns it.
func (c Check[D]) Sub(x, y algebra.Dims) (algebra.Dims, error) {
	return sameShape(x, y)
}

// Mul checks that x and y have the same shape and returns it.
func (c Check[D]) Mul(x, y algebra.Dims) (algebra.Dims, error) {
	return sameShape(x, y)
}

// Div checks that x and y have the same shape and returns it.
func (c Check[D]) Div(x, y algebra.Dims) (algebra.Dims, error) {
	return sameShape(x, y)
}

func sameShape(x, y algebra.Dims) (algebra.Dims, error) {
	if !x.Equal(y) {
		return nil, aderr.New(aderr.DimensionMismatch, "incompatible shapes %s and %s", x, y)
	}

	return x, nil
}
