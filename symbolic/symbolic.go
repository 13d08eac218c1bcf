// Package symbolic provides a string-rendering algebra.Ops[string], used to
// exercise gad with a symbolic-expression datum type rather than a numeric
// one.
//
// Add renders a fully parenthesized sum so that repeated contributions
// accumulated by a GradStore are visually distinguishable from a single
// multiplication term; Mul renders as plain juxtaposition, a terse notation
// for symbolic products.
package symbolic

// Ops implements algebra.Ops[string].
type Ops struct{}

// Neg renders "-x".
func (Ops) Neg(x string) (string, error) { return "-" + x, nil }

// Add renders "(x+y)".
func (Ops) Add(x, y string) (string, error) { return "(" + x + "+" + y + ")", nil }

// Sub renders "(x-y)".
func (Ops) Sub(x, y string) (string, error) { return "(" + x + "-" + y + ")", nil }

// Mul renders "xy", plain juxtaposition.
func (Ops) Mul(x, y string) (string, error) { return x + y, nil }

// Div renders "x/y".
func (Ops) Div(x, y string) (string, error) { return x + "/" + y, nil }
