package autodiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facebookresearch/gad/aderr"
	"github.com/facebookresearch/gad/checkalgebra"
	"github.com/facebookresearch/gad/evalalgebra"
	"github.com/facebookresearch/gad/ndarray"
	"github.com/facebookresearch/gad/scalarops"
	"github.com/facebookresearch/gad/symbolic"
	"github.com/facebookresearch/gad/value"
)

// Product rule gradient via Mul.
func TestGraph1_ProductGradient(t *testing.T) {
	g := NewGraph1[float64](scalarops.Float64{})

	a := g.Variable(1)
	b := g.Variable(2)

	c, err := g.Mul(a, b)
	require.NoError(t, err)

	cID, err := c.ID()
	require.NoError(t, err)

	store, err := g.EvaluateGradients(cID, 1)
	require.NoError(t, err)

	aID, _ := a.ID()
	bID, _ := b.ID()

	aGrad, ok := store.Get(aID)
	require.True(t, ok)
	assert.Equal(t, 2.0, aGrad)

	bGrad, ok := store.Get(bID)
	require.True(t, ok)
	assert.Equal(t, 1.0, bGrad)
}

// Integer-valued subtraction via the one-shot backward variant.
func TestGraph1_SubtractionOnce(t *testing.T) {
	g := NewGraph1[float64](scalarops.Float64{})

	a := g.Variable(1)
	b := g.Variable(2)

	c, err := g.Sub(a, b)
	require.NoError(t, err)
	assert.Equal(t, -1.0, c.Data)

	cID, err := c.ID()
	require.NoError(t, err)

	store, err := g.EvaluateGradientsOnce(cID, 1)
	require.NoError(t, err)

	aID, _ := a.ID()
	bID, _ := b.ID()

	aGrad, _ := store.Get(aID)
	bGrad, _ := store.Get(bID)
	assert.Equal(t, 1.0, aGrad)
	assert.Equal(t, -1.0, bGrad)
}

// Higher-order differentiation of z = x*y*y, carried through to third order
// by feeding each gradient's own node id back into ComputeGradients.
func TestGraphN_HigherOrder(t *testing.T) {
	g := NewGraphN[float64](scalarops.Float64{})

	x := g.Variable(1)
	y := g.Variable(0.4)

	xy, err := g.Mul(x, y)
	require.NoError(t, err)

	z, err := g.Mul(xy, y)
	require.NoError(t, err)

	zID, err := z.ID()
	require.NoError(t, err)

	dz, err := g.ComputeGradients(zID, value.Constant(1.0))
	require.NoError(t, err)

	xID, _ := x.ID()
	yID, _ := y.ID()

	dzDx, ok := dz.Get(xID)
	require.True(t, ok)
	assert.InDelta(t, 0.16, dzDx.Data, 1e-9) // y*y = 0.16

	dzDy, ok := dz.Get(yID)
	require.True(t, ok)
	assert.InDelta(t, 0.8, dzDy.Data, 1e-9) // 2*x*y = 0.8

	dzDyID, err := dzDy.ID()
	require.NoError(t, err)

	d2z, err := g.ComputeGradients(dzDyID, value.Constant(1.0))
	require.NoError(t, err)

	d2zDy, ok := d2z.Get(yID)
	require.True(t, ok)
	assert.InDelta(t, 2.0, d2zDy.Data, 1e-9) // d/dy(2*x*y) = 2*x = 2.0

	d2zDyID, err := d2zDy.ID()
	require.NoError(t, err)

	d3z, err := g.ComputeGradients(d2zDyID, value.Constant(1.0))
	require.NoError(t, err)

	d3zDx, ok := d3z.Get(xID)
	require.True(t, ok)
	assert.InDelta(t, 2.0, d3zDx.Data, 1e-9) // d/dx(2*x) = 2.0
}

// Symbolic Ops carries the product rule through as string concatenation
// instead of numeric arithmetic.
func TestGraph1_SymbolicCarryThrough(t *testing.T) {
	g := NewGraph1[string](symbolic.Ops{})

	a := g.Variable("a")
	b := g.Variable("b")

	ab, err := g.Mul(a, b)
	require.NoError(t, err)

	d, err := g.Mul(a, ab)
	require.NoError(t, err)
	assert.Equal(t, "aab", d.Data)

	dID, err := d.ID()
	require.NoError(t, err)

	store, err := g.EvaluateGradientsOnce(dID, "1")
	require.NoError(t, err)

	aID, _ := a.ID()
	bID, _ := b.ID()

	aGrad, _ := store.Get(aID)
	bGrad, _ := store.Get(bID)
	assert.Equal(t, "(1ab+a1b)", aGrad)
	assert.Equal(t, "aa1", bGrad)
}

// Dimension checking rejects mismatched shapes the same way under Check,
// Eval, and Graph1.
func TestDimensionMismatch_AcrossModes(t *testing.T) {
	x := ndarray.New(4, 3, nil)
	y := ndarray.New(4, 2, nil)

	t.Run("check", func(t *testing.T) {
		c := checkalgebra.New[ndarray.Array]()
		_, err := c.Add(c.Variable(x), c.Variable(y))
		requireDimensionMismatch(t, err)
	})

	t.Run("eval", func(t *testing.T) {
		e := evalalgebra.New[ndarray.Array](ndarray.Ops{})
		_, err := e.Add(e.Variable(x), e.Variable(y))
		requireDimensionMismatch(t, err)
	})

	t.Run("graph1", func(t *testing.T) {
		g := NewGraph1[ndarray.Array](ndarray.Ops{})

		xv := g.Variable(x)
		yv := g.Variable(y)
		before := g.Tape().Len()

		_, err := g.Add(xv, yv)
		requireDimensionMismatch(t, err)
		assert.Equal(t, before, g.Tape().Len(), "no node should be appended when the forward op fails")
	})
}

func requireDimensionMismatch(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)

	var adErr *aderr.Error
	require.ErrorAs(t, err, &adErr)
	assert.Equal(t, aderr.DimensionMismatch, adErr.Kind)
}

// Constant-only operations never touch the tape.
func TestGraph1_AllConstantInputs_NoNodeRecorded(t *testing.T) {
	g := NewGraph1[float64](scalarops.Float64{})

	a := g.Constant(2)
	b := g.Constant(3)

	c, err := g.Mul(a, b)
	require.NoError(t, err)
	assert.False(t, c.HasID())
	assert.Equal(t, 6.0, c.Data)
	assert.Zero(t, g.Tape().Len())
}

// Idempotent non-consuming backward: repeated evaluation of an unmodified
// tape yields equal gradient stores.
func TestGraph1_EvaluateGradients_Idempotent(t *testing.T) {
	g := NewGraph1[float64](scalarops.Float64{})

	a := g.Variable(2)
	b := g.Variable(5)

	c, err := g.Mul(a, b)
	require.NoError(t, err)

	cID, err := c.ID()
	require.NoError(t, err)

	store1, err := g.EvaluateGradients(cID, 1)
	require.NoError(t, err)

	store2, err := g.EvaluateGradients(cID, 1)
	require.NoError(t, err)

	assert.Equal(t, store1.IntoMap(), store2.IntoMap())
}

// Linearity of the seed: evaluate_gradients(root, a*s1+b*s2) equals
// a*evaluate_gradients(root, s1) + b*evaluate_gradients(root, s2).
func TestGraph1_EvaluateGradients_LinearInSeed(t *testing.T) {
	g := NewGraph1[float64](scalarops.Float64{})

	x := g.Variable(3)
	y := g.Variable(4)

	z, err := g.Mul(x, y)
	require.NoError(t, err)

	zID, err := z.ID()
	require.NoError(t, err)

	s1, s2 := 2.0, 5.0
	alpha, beta := 1.5, -0.5

	store1, err := g.EvaluateGradients(zID, s1)
	require.NoError(t, err)
	store2, err := g.EvaluateGradients(zID, s2)
	require.NoError(t, err)
	storeCombined, err := g.EvaluateGradients(zID, alpha*s1+beta*s2)
	require.NoError(t, err)

	xID, _ := x.ID()

	g1, _ := store1.Get(xID)
	g2, _ := store2.Get(xID)
	gc, _ := storeCombined.Get(xID)

	assert.InDelta(t, alpha*g1+beta*g2, gc, 1e-9)
}

// Tape-spent rejection.
func TestGraph1_TapeSpentRejection(t *testing.T) {
	g := NewGraph1[float64](scalarops.Float64{})

	a := g.Variable(1)
	b := g.Variable(2)

	c, err := g.Mul(a, b)
	require.NoError(t, err)

	cID, err := c.ID()
	require.NoError(t, err)

	_, err = g.EvaluateGradientsOnce(cID, 1)
	require.NoError(t, err)

	_, err = g.Mul(a, b)
	require.Error(t, err)

	var adErr *aderr.Error
	require.ErrorAs(t, err, &adErr)
	assert.Equal(t, aderr.TapeSpent, adErr.Kind)
}
