// Package evalalgebra implements Eval, the stateless forward-only
// interpreter that every other algebra's forward pass is defined in terms
// of.
package evalalgebra

import "github.com/facebookresearch/gad/algebra"

// Eval is the reference, forward-only algebra. Its value type equals the
// datum type D: Variable and Constant both return the datum unchanged, and
// every operation executes the primitive directly with no tape.
type Eval[D any] struct {
	ops algebra.Ops[D]
}

// New builds an Eval algebra delegating primitive arithmetic to ops.
func New[D any](ops algebra.Ops[D]) Eval[D] {
	return Eval[D]{ops: ops}
}

// Variable returns d unchanged; Eval has no notion of differentiability.
func (e Eval[D]) Variable(d D) D { return d }

// Constant returns d unchanged.
func (e Eval[D]) Constant(d D) D { return d }

// Add executes addition on the underlying datum type.
func (e Eval[D]) Add(x, y D) (D, error) { return e.ops.Add(x, y) }

// Neg executes negation on the underlying datum type.
func (e Eval[D]) Neg(x D) (D, error) { return e.ops.Neg(x) }

// Sub executes subtraction on the underlying datum type.
func (e Eval[D]) Sub(x, y D) (D, error) { return e.ops.Sub(x, y) }

// Mul executes multiplication on the underlying datum type.
func (e Eval[D]) Mul(x, y D) (D, error) { return e.ops.Mul(x, y) }

// Div executes division on the underlying datum type.
func (e Eval[D]) Div(x, y D) (D, error) { return e.ops.Div(x, y) }
