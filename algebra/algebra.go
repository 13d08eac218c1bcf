// Package algebra declares the capability-bundle interfaces that every
// execution mode (Eval, Check, Graph1, GraphN, or a user-defined algebra)
// implements against a value type V derived from a datum type D.
//
// A formula is written against whichever bundles it needs, e.g.
//
//	func Quadratic[D, V any, A interface {
//		Core[D, V]
//		Arith[V]
//	}](g A, xv, yv D) (V, error)
//
// and is then polymorphic over any algebra providing those bundles: Eval,
// Check, Graph1, and GraphN can all be substituted for A without touching
// the formula body.
package algebra

// Ops is the primitive arithmetic a concrete datum type D supplies. Eval
// delegates directly to it; Graph[D, GV] uses it to compute the forward
// pass before recording a backward closure.
type Ops[D any] interface {
	Neg(x D) (D, error)
	Add(x, y D) (D, error)
	Sub(x, y D) (D, error)
	Mul(x, y D) (D, error)
	Div(x, y D) (D, error)
}

// Core is the baseline capability every algebra must provide: lifting a
// datum into the algebra's value type, and addition.
type Core[D, V any] interface {
	// Variable lifts d into a value that participates in differentiation.
	Variable(d D) V
	// Constant lifts d into a value that never receives a gradient.
	Constant(d D) V
	// Add forms the sum of two values.
	Add(x, y V) (V, error)
}

// Arith extends Core with the remaining baseline arithmetic operations.
type Arith[V any] interface {
	Neg(x V) (V, error)
	Sub(x, y V) (V, error)
	Mul(x, y V) (V, error)
	Div(x, y V) (V, error)
}

// Dims is a lightweight, comparable shape descriptor.
type Dims interface {
	// Equal reports whether two shape descriptors describe the same shape.
	Equal(Dims) bool
	// String renders the shape for error messages.
	String() string
}

// Shaped is implemented by datum types that can report their own shape,
// the capability the Check algebra requires of D.
type Shaped interface {
	Dims() Dims
}
