// Package scalarops provides algebra.Ops implementations for the scalar
// numeric datum types gad ships with: float32, float64, and the
// reduced-precision float16.Float16 and float8.Float8 types, demonstrating
// the engine's genericity over the datum type.
package scalarops

import (
	"github.com/zerfoo/float16"
	"github.com/zerfoo/float8"

	"github.com/facebookresearch/gad/aderr"
)

// Float64 implements algebra.Ops[float64].
type Float64 struct{}

func (Float64) Neg(x float64) (float64, error) { return -x, nil }
func (Float64) Add(x, y float64) (float64, error) { return x + y, nil }
func (Float64) Sub(x, y float64) (float64, error) { return x - y, nil }
func (Float64) Mul(x, y float64) (float64, error) { return x * y, nil }

func (Float64) Div(x, y float64) (float64, error) {
	if y == 0 {
		return 0, aderr.New(aderr.UnsupportedOperation, "division by zero")
	}

	return x / y, nil
}

// Float32 implements algebra.Ops[float32].
type Float32 struct{}

func (Float32) Neg(x float32) (float32, error) { return -x, nil }
func (Float32) Add(x, y float32) (float32, error) { return x + y, nil }
func (Float32) Sub(x, y float32) (float32, error) { return x - y, nil }
func (Float32) Mul(x, y float32) (float32, error) { return x * y, nil }

func (Float32) Div(x, y float32) (float32, error) {
	if y == 0 {
		return 0, aderr.New(aderr.UnsupportedOperation, "division by zero")
	}

	return x / y, nil
}

// Float16 implements algebra.Ops[float16.Float16], delegating to the
// fast-arithmetic mode the way zerfoo/numeric.Float16Ops does.
type Float16 struct{}

func (Float16) Neg(x float16.Float16) (float16.Float16, error) {
	zero := float16.FromFloat32(0)
	res, _ := float16.SubWithMode(zero, x, float16.ModeFastArithmetic, float16.RoundNearestEven)

	return res, nil
}

func (Float16) Add(x, y float16.Float16) (float16.Float16, error) {
	res, _ := float16.AddWithMode(x, y, float16.ModeFastArithmetic, float16.RoundNearestEven)

	return res, nil
}

func (Float16) Sub(x, y float16.Float16) (float16.Float16, error) {
	res, _ := float16.SubWithMode(x, y, float16.ModeFastArithmetic, float16.RoundNearestEven)

	return res, nil
}

func (Float16) Mul(x, y float16.Float16) (float16.Float16, error) {
	res, _ := float16.MulWithMode(x, y, float16.ModeFastArithmetic, float16.RoundNearestEven)

	return res, nil
}

func (Float16) Div(x, y float16.Float16) (float16.Float16, error) {
	if y.ToFloat32() == 0 {
		return float16.Float16{}, aderr.New(aderr.UnsupportedOperation, "division by zero")
	}

	res, _ := float16.DivWithMode(x, y, float16.ModeFastArithmetic, float16.RoundNearestEven)

	return res, nil
}

// Float8 implements algebra.Ops[float8.Float8].
type Float8 struct{}

func (Float8) Neg(x float8.Float8) (float8.Float8, error) {
	return float8.Sub(float8.ToFloat8(0), x), nil
}

func (Float8) Add(x, y float8.Float8) (float8.Float8, error) { return float8.Add(x, y), nil }
func (Float8) Sub(x, y float8.Float8) (float8.Float8, error) { return float8.Sub(x, y), nil }
func (Float8) Mul(x, y float8.Float8) (float8.Float8, error) { return float8.Mul(x, y), nil }

func (Float8) Div(x, y float8.Float8) (float8.Float8, error) {
	if y.ToFloat32() == 0 {
		return float8.Float8{}, aderr.New(aderr.UnsupportedOperation, "division by zero")
	}

	return float8.Div(x, y), nil
}

