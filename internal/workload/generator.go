package workload

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/dop251/goja"
	"github.com/me/rrsim/pkg/model"
)

// MaxGenerated caps the number of processes a generate block may produce.
const MaxGenerated = 10000

// Default expressions: each arrival one tick after the previous, bursts uniform in [3, 8].
const (
	DefaultArrivalExpr = "prev === null ? 0 : prev.arrival + 1"
	DefaultBurstExpr   = "3 + Math.floor(Math.random() * 6)"
)

// evalTimeout bounds a single expression evaluation.
const evalTimeout = time.Second

// Generator produces processes from JavaScript expressions.
//
// Each expression is evaluated once per process with these globals:
//
//	i     0-based index
//	n     Count
//	prev  previous generated process {arrival, burst}, or null
//
// Math.random is seeded from Seed so output is reproducible.
type Generator struct {
	Count   int    `yaml:"count"`
	Seed    uint64 `yaml:"seed"`
	Arrival string `yaml:"arrival"`
	Burst   string `yaml:"burst"`
}

// Generate evaluates the expressions Count times.
func (g Generator) Generate() ([]ProcessSpec, error) {
	if g.Count < 1 || g.Count > MaxGenerated {
		return nil, model.NewValidationError("invalid generate block",
			model.FieldError{Field: "generate.count", Message: fmt.Sprintf("must be in [1, %d], got %d", MaxGenerated, g.Count)})
	}

	arrivalSrc, burstSrc := g.Arrival, g.Burst
	if arrivalSrc == "" {
		arrivalSrc = DefaultArrivalExpr
	}
	if burstSrc == "" {
		burstSrc = DefaultBurstExpr
	}
	arrivalProg, err := compile("generate.arrival", arrivalSrc)
	if err != nil {
		return nil, err
	}
	burstProg, err := compile("generate.burst", burstSrc)
	if err != nil {
		return nil, err
	}

	vm := goja.New()
	rng := rand.New(rand.NewPCG(g.Seed, g.Seed^0x9e3779b97f4a7c15))
	vm.SetRandSource(rng.Float64)

	out := make([]ProcessSpec, 0, g.Count)
	var prev any
	for i := 0; i < g.Count; i++ {
		if err := vm.Set("i", i); err != nil {
			return nil, fmt.Errorf("set i: %w", err)
		}
		if err := vm.Set("n", g.Count); err != nil {
			return nil, fmt.Errorf("set n: %w", err)
		}
		if err := vm.Set("prev", prev); err != nil {
			return nil, fmt.Errorf("set prev: %w", err)
		}

		field := fmt.Sprintf("generate.arrival[%d]", i)
		arrival, err := evalInt(vm, arrivalProg, field)
		if err != nil {
			return nil, err
		}
		if arrival < 0 {
			return nil, fieldError(field, fmt.Sprintf("must be >= 0, got %d", arrival))
		}

		field = fmt.Sprintf("generate.burst[%d]", i)
		burst, err := evalInt(vm, burstProg, field)
		if err != nil {
			return nil, err
		}
		if burst <= 0 {
			return nil, fieldError(field, fmt.Sprintf("must be > 0, got %d", burst))
		}

		out = append(out, ProcessSpec{Arrival: arrival, Burst: burst})
		prev = map[string]any{"arrival": arrival, "burst": burst}
	}
	return out, nil
}

func compile(field, src string) (*goja.Program, error) {
	prog, err := goja.Compile(field, src, false)
	if err != nil {
		return nil, fieldError(field, fmt.Sprintf("compile: %v", err))
	}
	return prog, nil
}

// evalInt runs prog and requires an integral numeric result.
func evalInt(vm *goja.Runtime, prog *goja.Program, field string) (int, error) {
	timer := time.AfterFunc(evalTimeout, func() {
		vm.Interrupt("evaluation timed out")
	})
	v, err := vm.RunProgram(prog)
	timer.Stop()
	vm.ClearInterrupt()
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return 0, fieldError(field, fmt.Sprintf("timed out after %s", evalTimeout))
		}
		return 0, fieldError(field, err.Error())
	}

	switch x := v.Export().(type) {
	case int64:
		return int(x), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
			return 0, fieldError(field, fmt.Sprintf("must be an integer, got %v", x))
		}
		// float64(math.MaxInt) rounds up, so the upper bound is exclusive.
		if x >= math.MaxInt || x < math.MinInt {
			return 0, fieldError(field, fmt.Sprintf("out of range, got %v", x))
		}
		return int(x), nil
	default:
		return 0, fieldError(field, fmt.Sprintf("must be a number, got %T", x))
	}
}

func fieldError(field, msg string) *model.APIError {
	return model.NewValidationError("invalid generate block", model.FieldError{Field: field, Message: msg})
}
