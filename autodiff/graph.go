// Package autodiff implements Graph[D, GV], the generic adapter that lifts
// an eval algebra into a differentiating algebra backed by a tape. Graph1
// (first-order) and GraphN (arbitrary-order) are both instantiations of the
// same Graph type, selected by which gradient value type GV, and which
// gradient algebra, the Config binds.
package autodiff

import (
	"github.com/facebookresearch/gad/algebra"
	"github.com/facebookresearch/gad/tape"
	"github.com/facebookresearch/gad/value"
)

// gradAlgebra is the capability bundle a backward closure uses to compute
// local partial derivatives: Arith[GV] for the VJP arithmetic, and Core's
// Add as the GradStore's combine function. Forward operands reach the
// gradient value space through Graph.lift, not through Core's Constant.
type gradAlgebra[D, GV any] interface {
	algebra.Core[D, GV]
	algebra.Arith[GV]
}

// Graph is the generic differentiating algebra. D is the forward datum
// type; GV is the gradient value type used inside backward closures. For
// Graph1, GV = D and grad is the underlying eval algebra itself (gradients
// are plain data, not further differentiable). For GraphN, GV = Value[D]
// and grad is the Graph itself: backward closures call back into g.Add /
// g.Mul, recording new nodes on the same tape, which is what makes the
// gradients it produces themselves differentiable.
type Graph[D, GV any] struct {
	eval gradAlgebra[D, D]
	grad gradAlgebra[D, GV]
	tape *tape.Tape[GV]

	// lift turns one of this node's forward operands into the
	// gradient-algebra value a VJP closure can operate on. For Graph1,
	// GV=D and lift discards the operand's node id (gradients of
	// gradients aren't representable in this Config, so there is nothing
	// to preserve). For GraphN, GV=Value[D] and lift is the identity:
	// it hands the VJP closure the operand's own Value, id and all, so
	// that a Mul/Div of two lifted operands records a new node whose
	// inputs reach back to the original variables. Without this, a
	// backward closure that re-wrapped an operand's raw datum as a fresh
	// Constant would sever that chain and no gradient produced by this
	// Graph would itself carry an id, defeating higher-order
	// differentiation entirely.
	lift func(value.Value[D]) GV
}

// NewGraph1 builds a first-order differentiating algebra over eval: its
// recorded gradients are plain D values computed directly by eval, and are
// not themselves differentiable.
func NewGraph1[D any](eval algebra.Ops[D]) *Graph[D, D] {
	ev := evalAdapter[D]{ops: eval}

	return &Graph[D, D]{
		eval: ev,
		grad: ev,
		tape: tape.New[D](),
		lift: func(v value.Value[D]) D { return v.Data },
	}
}

// NewGraphN builds an arbitrary-order differentiating algebra over eval:
// its recorded gradients are Value[D], carrying their own node id on the
// very same tape, so differentiating a gradient is just calling
// EvaluateGradients again with that id as the new root.
func NewGraphN[D any](eval algebra.Ops[D]) *Graph[D, value.Value[D]] {
	g := &Graph[D, value.Value[D]]{eval: evalAdapter[D]{ops: eval}, tape: tape.New[value.Value[D]]()}
	g.grad = g // self-reference: see package doc and DESIGN.md.
	g.lift = func(v value.Value[D]) value.Value[D] { return v }

	return g
}

// evalAdapter adapts a bare algebra.Ops[D] into a Core[D,D]+Arith[D]
// algebra whose value type is D itself, i.e. Eval, inlined here so Graph1
// doesn't need to depend on package evalalgebra for its gradient algebra.
type evalAdapter[D any] struct {
	ops algebra.Ops[D]
}

func (e evalAdapter[D]) Variable(d D) D          { return d }
func (e evalAdapter[D]) Constant(d D) D          { return d }
func (e evalAdapter[D]) Add(x, y D) (D, error)   { return e.ops.Add(x, y) }
func (e evalAdapter[D]) Neg(x D) (D, error)      { return e.ops.Neg(x) }
func (e evalAdapter[D]) Sub(x, y D) (D, error)   { return e.ops.Sub(x, y) }
func (e evalAdapter[D]) Mul(x, y D) (D, error)   { return e.ops.Mul(x, y) }
func (e evalAdapter[D]) Div(x, y D) (D, error)   { return e.ops.Div(x, y) }

// Variable records a new leaf node and returns a Value carrying its id.
func (g *Graph[D, GV]) Variable(d D) value.Value[D] {
	id, err := g.tape.Record(nil, func(*tape.GradStore[GV], GV) error { return nil })
	if err != nil {
		// Recording a leaf cannot legitimately fail except on a spent
		// tape, which Variable has no error return to report, so a spent
		// tape simply yields an unrecorded constant instead of panicking.
		return value.Constant(d)
	}

	return value.WithID(d, id)
}

// Constant lifts d with no node id; it never receives a gradient.
func (g *Graph[D, GV]) Constant(d D) value.Value[D] {
	return value.Constant(d)
}

func inputIDs[D any](vs ...value.Value[D]) []value.NodeID {
	var ids []value.NodeID

	for _, v := range vs {
		if v.HasID() {
			id, _ := v.ID()
			ids = append(ids, id)
		}
	}

	return ids
}

func anyHasID[D any](vs ...value.Value[D]) bool {
	for _, v := range vs {
		if v.HasID() {
			return true
		}
	}

	return false
}

// Add forms x+y. If neither input carries a node id, the result is a
// constant and no node is recorded.
func (g *Graph[D, GV]) Add(x, y value.Value[D]) (value.Value[D], error) {
	fd, err := g.eval.Add(x.Data, y.Data)
	if err != nil {
		return value.Value[D]{}, err
	}

	if !anyHasID(x, y) {
		return value.Constant(fd), nil
	}

	xID, xHas := x.IDAndHasID()
	yID, yHas := y.IDAndHasID()

	id, err := g.tape.Record(inputIDs(x, y), func(s *tape.GradStore[GV], gout GV) error {
		if xHas {
			if err := s.AddGradient(xID, gout); err != nil {
				return err
			}
		}

		if yHas {
			if err := s.AddGradient(yID, gout); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return value.Value[D]{}, err
	}

	return value.WithID(fd, id), nil
}

// Neg forms -x.
func (g *Graph[D, GV]) Neg(x value.Value[D]) (value.Value[D], error) {
	fd, err := g.eval.Neg(x.Data)
	if err != nil {
		return value.Value[D]{}, err
	}

	if !x.HasID() {
		return value.Constant(fd), nil
	}

	xID, _ := x.IDAndHasID()

	id, err := g.tape.Record(inputIDs(x), func(s *tape.GradStore[GV], gout GV) error {
		dx, err := g.grad.Neg(gout)
		if err != nil {
			return err
		}

		return s.AddGradient(xID, dx)
	})
	if err != nil {
		return value.Value[D]{}, err
	}

	return value.WithID(fd, id), nil
}

// Sub forms x-y.
func (g *Graph[D, GV]) Sub(x, y value.Value[D]) (value.Value[D], error) {
	fd, err := g.eval.Sub(x.Data, y.Data)
	if err != nil {
		return value.Value[D]{}, err
	}

	if !anyHasID(x, y) {
		return value.Constant(fd), nil
	}

	xID, xHas := x.IDAndHasID()
	yID, yHas := y.IDAndHasID()

	id, err := g.tape.Record(inputIDs(x, y), func(s *tape.GradStore[GV], gout GV) error {
		if xHas {
			if err := s.AddGradient(xID, gout); err != nil {
				return err
			}
		}

		if yHas {
			dy, err := g.grad.Neg(gout)
			if err != nil {
				return err
			}

			if err := s.AddGradient(yID, dy); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return value.Value[D]{}, err
	}

	return value.WithID(fd, id), nil
}

// Mul forms x*y. The VJP keeps the incoming gradient adjacent to the other
// operand in its original left/right position (dx = gout⊗y, dy = x⊗gout)
// rather than assuming commutativity, so the same formula is correct for
// non-commutative gradient algebras too.
func (g *Graph[D, GV]) Mul(x, y value.Value[D]) (value.Value[D], error) {
	fd, err := g.eval.Mul(x.Data, y.Data)
	if err != nil {
		return value.Value[D]{}, err
	}

	if !anyHasID(x, y) {
		return value.Constant(fd), nil
	}

	xID, xHas := x.IDAndHasID()
	yID, yHas := y.IDAndHasID()

	id, err := g.tape.Record(inputIDs(x, y), func(s *tape.GradStore[GV], gout GV) error {
		if xHas {
			yc := g.lift(y)

			dx, err := g.grad.Mul(gout, yc)
			if err != nil {
				return err
			}

			if err := s.AddGradient(xID, dx); err != nil {
				return err
			}
		}

		if yHas {
			xc := g.lift(x)

			dy, err := g.grad.Mul(xc, gout)
			if err != nil {
				return err
			}

			if err := s.AddGradient(yID, dy); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return value.Value[D]{}, err
	}

	return value.WithID(fd, id), nil
}

// Div forms x/y, using the quotient-rule formulas dx = g/y,
// dy = -(g*x)/(y*y). Both partials are expressed directly in terms of the
// lifted x and y operands rather than the forward output, so that under
// GraphN the recorded nodes reach back to x's and y's own ids instead of a
// detached copy of the forward result, the same reason Mul lifts its
// operands (see Graph.lift's doc comment).
func (g *Graph[D, GV]) Div(x, y value.Value[D]) (value.Value[D], error) {
	fd, err := g.eval.Div(x.Data, y.Data)
	if err != nil {
		return value.Value[D]{}, err
	}

	if !anyHasID(x, y) {
		return value.Constant(fd), nil
	}

	xID, xHas := x.IDAndHasID()
	yID, yHas := y.IDAndHasID()

	id, err := g.tape.Record(inputIDs(x, y), func(s *tape.GradStore[GV], gout GV) error {
		yc := g.lift(y)

		dx, err := g.grad.Div(gout, yc)
		if err != nil {
			return err
		}

		if xHas {
			if err := s.AddGradient(xID, dx); err != nil {
				return err
			}
		}

		if yHas {
			xc := g.lift(x)

			gx, err := g.grad.Mul(gout, xc)
			if err != nil {
				return err
			}

			yy, err := g.grad.Mul(yc, yc)
			if err != nil {
				return err
			}

			dxp, err := g.grad.Div(gx, yy)
			if err != nil {
				return err
			}

			dy, err := g.grad.Neg(dxp)
			if err != nil {
				return err
			}

			if err := s.AddGradient(yID, dy); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return value.Value[D]{}, err
	}

	return value.WithID(fd, id), nil
}

// Tape exposes the underlying tape, mainly so callers can report its
// length or share it across non-consuming backward passes running
// concurrently.
func (g *Graph[D, GV]) Tape() *tape.Tape[GV] {
	return g.tape
}

