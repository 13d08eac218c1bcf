// Command gad-demo evaluates one of a handful of small formulas under a
// chosen execution mode and prints the forward value and, for the
// differentiating modes, the gradient with respect to every named input.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/facebookresearch/gad/aderr"
	"github.com/facebookresearch/gad/algebra"
	"github.com/facebookresearch/gad/autodiff"
	"github.com/facebookresearch/gad/checkalgebra"
	"github.com/facebookresearch/gad/evalalgebra"
	"github.com/facebookresearch/gad/formulas"
	"github.com/facebookresearch/gad/ndarray"
	"github.com/facebookresearch/gad/scalarops"
	"github.com/facebookresearch/gad/value"
)

// DemoConfig represents command-line configuration for a single run.
type DemoConfig struct {
	Formula    string  `json:"formula"`     // "product", "difference", "quadratic", "polynomial"
	Mode       string  `json:"mode"`        // "eval", "check", "graph1", "graphn"
	A          float64 `json:"a"`
	B          float64 `json:"b"`
	C          float64 `json:"c"`
	D          float64 `json:"d"`
	OutputPath string  `json:"output_path"` // optional; empty means stdout only
	Verbose    bool    `json:"verbose"`
}

// DemoResult captures what a run produced, in the shape gad-demo writes out
// as JSON: to stdout, or to the -output file when one is given.
type DemoResult struct {
	Config    *DemoConfig       `json:"config"`
	Timestamp time.Time         `json:"timestamp"`
	Forward   string            `json:"forward"`
	Gradients map[string]string `json:"gradients,omitempty"`
	Duration  time.Duration     `json:"duration"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
}

func main() {
	config := parseFlags()

	if config.Verbose {
		log.Printf("running formula %q under mode %q with config: %+v", config.Formula, config.Mode, config)
	}

	result := &DemoResult{Config: config, Timestamp: time.Now()}

	start := time.Now()

	if err := run(config, result); err != nil {
		result.Error = err.Error()
		result.Duration = time.Since(start)
		writeResult(config, result)
		log.Fatalf("gad-demo failed: %v", err)
	}

	result.Success = true
	result.Duration = time.Since(start)

	writeResult(config, result)
	log.Printf("gad-demo completed in %v", result.Duration)
}

func parseFlags() *DemoConfig {
	config := &DemoConfig{}

	flag.StringVar(&config.Formula, "formula", "quadratic", "formula to run: product, difference, quadratic, polynomial")
	flag.StringVar(&config.Mode, "mode", "graph1", "execution mode: eval, check, graph1, graphn")
	flag.Float64Var(&config.A, "a", 1, "first operand")
	flag.Float64Var(&config.B, "b", 2, "second operand")
	flag.Float64Var(&config.C, "c", 3, "third operand (polynomial only)")
	flag.Float64Var(&config.D, "d", 4, "fourth operand (polynomial only)")
	flag.StringVar(&config.OutputPath, "output", "", "optional path to write the result as JSON")
	flag.BoolVar(&config.Verbose, "verbose", false, "verbose logging")

	flag.Parse()

	return config
}

func run(config *DemoConfig, result *DemoResult) error {
	switch config.Mode {
	case "eval":
		return runEval(config, result)
	case "check":
		return runCheck(config, result)
	case "graph1":
		return runGraph1(config, result)
	case "graphn":
		return runGraphN(config, result)
	default:
		return aderr.New(aderr.UnsupportedOperation, "unknown mode %q", config.Mode)
	}
}

func runEval(config *DemoConfig, result *DemoResult) error {
	e := evalalgebra.New[float64](scalarops.Float64{})

	var (
		out float64
		err error
	)

	switch config.Formula {
	case "product":
		out, err = formulas.Product[float64, float64](e, config.A, config.B)
	case "difference":
		out, err = formulas.Difference[float64, float64](e, config.A, config.B)
	case "quadratic":
		out, err = formulas.Quadratic[float64, float64](e, config.A, config.B)
	case "polynomial":
		out, err = formulas.Polynomial[float64, float64](e, config.A, config.B, config.C, config.D)
	default:
		return aderr.New(aderr.UnsupportedOperation, "unknown formula %q", config.Formula)
	}

	if err != nil {
		return err
	}

	result.Forward = fmt.Sprintf("%v", out)

	return nil
}

func runCheck(config *DemoConfig, result *DemoResult) error {
	c := checkalgebra.New[ndarray.Array]()

	x := ndarray.New(1, 1, []float64{config.A})
	y := ndarray.New(1, 1, []float64{config.B})
	z := ndarray.New(1, 1, []float64{config.C})
	w := ndarray.New(1, 1, []float64{config.D})

	var (
		dims fmt.Stringer
		err  error
	)

	switch config.Formula {
	case "product":
		dims, err = formulas.Product[ndarray.Array, algebra.Dims](c, x, y)
	case "difference":
		dims, err = formulas.Difference[ndarray.Array, algebra.Dims](c, x, y)
	case "quadratic":
		dims, err = formulas.Quadratic[ndarray.Array, algebra.Dims](c, x, y)
	case "polynomial":
		dims, err = formulas.Polynomial[ndarray.Array, algebra.Dims](c, x, y, z, w)
	default:
		return aderr.New(aderr.UnsupportedOperation, "unknown formula %q", config.Formula)
	}

	if err != nil {
		return err
	}

	result.Forward = dims.String()

	return nil
}

// buildFormula constructs the chosen formula directly against g, rather than
// through the formulas package, so the caller keeps the variable ids needed
// to label gradients by flag name afterward. It is written once, generic
// over the gradient-value type GV, and serves both Graph1 (GV=D) and GraphN
// (GV=value.Value[D]) since Graph's forward-building methods don't depend on
// GV's shape.
func buildFormula(
	config *DemoConfig,
	g *autodiff.Graph[float64, value.Value[float64]],
) (value.Value[float64], map[string]value.NodeID, error) {
	return buildFormulaGeneric[value.Value[float64]](config, g)
}

func buildFormula1(
	config *DemoConfig,
	g *autodiff.Graph[float64, float64],
) (value.Value[float64], map[string]value.NodeID, error) {
	return buildFormulaGeneric[float64](config, g)
}

func buildFormulaGeneric[GV any](
	config *DemoConfig,
	g *autodiff.Graph[float64, GV],
) (value.Value[float64], map[string]value.NodeID, error) {
	var zero value.Value[float64]

	idOf := func(v value.Value[float64]) value.NodeID {
		id, _ := v.ID()

		return id
	}

	switch config.Formula {
	case "product":
		a := g.Variable(config.A)
		b := g.Variable(config.B)

		out, err := g.Mul(a, b)
		if err != nil {
			return zero, nil, err
		}

		return out, map[string]value.NodeID{"a": idOf(a), "b": idOf(b)}, nil

	case "difference":
		a := g.Variable(config.A)
		b := g.Variable(config.B)

		out, err := g.Sub(a, b)
		if err != nil {
			return zero, nil, err
		}

		return out, map[string]value.NodeID{"a": idOf(a), "b": idOf(b)}, nil

	case "quadratic":
		a := g.Variable(config.A)
		b := g.Variable(config.B)

		ab, err := g.Mul(a, b)
		if err != nil {
			return zero, nil, err
		}

		out, err := g.Mul(ab, b)
		if err != nil {
			return zero, nil, err
		}

		return out, map[string]value.NodeID{"a": idOf(a), "b": idOf(b)}, nil

	case "polynomial":
		a := g.Variable(config.A)
		b := g.Variable(config.B)
		c := g.Constant(config.C)
		d := g.Variable(config.D)

		ab, err := g.Mul(a, b)
		if err != nil {
			return zero, nil, err
		}

		sum, err := g.Add(ab, c)
		if err != nil {
			return zero, nil, err
		}

		out, err := g.Sub(sum, d)
		if err != nil {
			return zero, nil, err
		}

		return out, map[string]value.NodeID{"a": idOf(a), "b": idOf(b), "d": idOf(d)}, nil

	default:
		return zero, nil, aderr.New(aderr.UnsupportedOperation, "unknown formula %q", config.Formula)
	}
}

func runGraph1(config *DemoConfig, result *DemoResult) error {
	g := autodiff.NewGraph1[float64](scalarops.Float64{})

	out, ids, err := buildFormula1(config, g)
	if err != nil {
		return err
	}

	result.Forward = fmt.Sprintf("%v", out.Data)

	rootID, err := out.ID()
	if err != nil {
		return nil // constant-only input graphs never reach the tape; nothing to differentiate
	}

	store, err := g.EvaluateGradients(rootID, 1)
	if err != nil {
		return err
	}

	gradients := make(map[string]string, len(ids))

	for name, id := range ids {
		gv, ok := store.Get(id)
		if !ok {
			continue
		}

		gradients[name] = fmt.Sprintf("%v", gv)
	}

	result.Gradients = gradients

	return nil
}

func runGraphN(config *DemoConfig, result *DemoResult) error {
	g := autodiff.NewGraphN[float64](scalarops.Float64{})

	out, ids, err := buildFormula(config, g)
	if err != nil {
		return err
	}

	result.Forward = fmt.Sprintf("%v", out.Data)

	rootID, err := out.ID()
	if err != nil {
		return nil
	}

	store, err := g.ComputeGradients(rootID, value.Constant(1.0))
	if err != nil {
		return err
	}

	gradients := make(map[string]string, len(ids))

	for name, id := range ids {
		gv, ok := store.Get(id)
		if !ok {
			continue
		}

		gradients[name] = fmt.Sprintf("%v", gv.Data)
	}

	result.Gradients = gradients

	return nil
}

func writeResult(config *DemoConfig, result *DemoResult) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Printf("failed to marshal result: %v", err)

		return
	}

	if config.OutputPath == "" {
		fmt.Println(string(data))

		return
	}

	if err := os.WriteFile(config.OutputPath, data, 0o644); err != nil {
		log.Printf("failed to write result to %s: %v", config.OutputPath, err)
	}
}
