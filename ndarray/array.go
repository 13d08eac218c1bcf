// Package ndarray provides Array, a dense 2-D datum type backed by
// gonum/mat, demonstrating that gad's datum type D can be an N-dimensional
// array and not just a scalar.
package ndarray

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/facebookresearch/gad/aderr"
	"github.com/facebookresearch/gad/algebra"
)

// Array is a dense row-major matrix datum.
type Array struct {
	m *mat.Dense
}

// New builds an Array with the given row/column count and row-major data.
// A nil data slice allocates a zero-filled matrix.
func New(rows, cols int, data []float64) Array {
	return Array{m: mat.NewDense(rows, cols, data)}
}

// Dense exposes the underlying gonum matrix for callers that want to run
// gonum linear-algebra routines directly against a forward value.
func (a Array) Dense() *mat.Dense { return a.m }

// Shape returns [rows, cols].
func (a Array) Shape() [2]int {
	r, c := a.m.Dims()

	return [2]int{r, c}
}

// Dims implements algebra.Shaped.
func (a Array) Dims() algebra.Dims {
	s := a.Shape()

	return arrayDims{rows: s[0], cols: s[1]}
}

// arrayDims is the algebra.Dims implementation for Array.
type arrayDims struct{ rows, cols int }

func (d arrayDims) Equal(other algebra.Dims) bool {
	o, ok := other.(arrayDims)

	return ok && o.rows == d.rows && o.cols == d.cols
}

func (d arrayDims) String() string {
	return fmt.Sprintf("(%d,%d)", d.rows, d.cols)
}

// Ops implements algebra.Ops[Array] with shape-checked elementwise
// arithmetic, grounded on the same shape-mismatch-is-an-error idiom as
// zerfoo/tensor.TensorNumeric, re-expressed over gonum/mat.Dense.
type Ops struct{}

func (Ops) sameShape(x, y Array) error {
	if !x.Dims().Equal(y.Dims()) {
		return aderr.New(aderr.DimensionMismatch, "incompatible shapes %s and %s", x.Dims(), y.Dims())
	}

	return nil
}

// Neg negates every element of x.
func (Ops) Neg(x Array) (Array, error) {
	var out mat.Dense

	out.Scale(-1, x.m)

	return Array{m: &out}, nil
}

// Add performs elementwise addition; the shapes must match exactly.
func (o Ops) Add(x, y Array) (Array, error) {
	if err := o.sameShape(x, y); err != nil {
		return Array{}, err
	}

	var out mat.Dense

	out.Add(x.m, y.m)

	return Array{m: &out}, nil
}

// Sub performs elementwise subtraction; the shapes must match exactly.
func (o Ops) Sub(x, y Array) (Array, error) {
	if err := o.sameShape(x, y); err != nil {
		return Array{}, err
	}

	var out mat.Dense

	out.Sub(x.m, y.m)

	return Array{m: &out}, nil
}

// Mul performs elementwise (Hadamard) multiplication; the shapes must
// match exactly. This is deliberately not matrix multiplication: the
// algebra.Ops[D] contract models the scalar ring operations the rest of
// the engine builds Neg/Add/Sub/Mul/Div VJPs out of, and those formulas
// assume an elementwise, not a contracting, product.
func (o Ops) Mul(x, y Array) (Array, error) {
	if err := o.sameShape(x, y); err != nil {
		return Array{}, err
	}

	var out mat.Dense

	out.MulElem(x.m, y.m)

	return Array{m: &out}, nil
}

// Div performs elementwise division using gonum/floats, since mat.Dense has
// no built-in elementwise divide.
func (o Ops) Div(x, y Array) (Array, error) {
	if err := o.sameShape(x, y); err != nil {
		return Array{}, err
	}

	shape := x.Shape()
	xs := make([]float64, shape[0]*shape[1])
	ys := make([]float64, shape[0]*shape[1])

	for i := 0; i < shape[0]; i++ {
		for j := 0; j < shape[1]; j++ {
			xs[i*shape[1]+j] = x.m.At(i, j)
			ys[i*shape[1]+j] = y.m.At(i, j)
		}
	}

	if floats.HasNaN(ys) {
		return Array{}, aderr.New(aderr.UnsupportedOperation, "division by NaN")
	}

	for _, v := range ys {
		if v == 0 {
			return Array{}, aderr.New(aderr.UnsupportedOperation, "division by zero")
		}
	}

	floats.DivTo(xs, xs, ys)

	return New(shape[0], shape[1], xs), nil
}
