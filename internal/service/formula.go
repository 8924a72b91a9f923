package service

import (
	"fmt"
	"math"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// FormulaEngine compiles and evaluates price formulas. A formula sees the
// numeric fillout value as `value` and the running price in cents as `price`
// and yields a price delta in cents.
type FormulaEngine struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
}

// NewFormulaEngine creates an engine with an empty program cache
func NewFormulaEngine() *FormulaEngine {
	return &FormulaEngine{programs: make(map[string]*vm.Program)}
}

func formulaEnv(value, price float64) map[string]interface{} {
	return map[string]interface{}{
		"value": value,
		"price": price,
	}
}

// Compile checks a formula and caches its program
func (e *FormulaEngine) Compile(source string) (*vm.Program, error) {
	e.mu.RLock()
	program, ok := e.programs[source]
	e.mu.RUnlock()
	if ok {
		return program, nil
	}

	program, err := expr.Compile(source, expr.Env(formulaEnv(0, 0)), expr.AsFloat64())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormula, err)
	}

	e.mu.Lock()
	e.programs[source] = program
	e.mu.Unlock()
	return program, nil
}

// Eval evaluates a formula and returns the delta rounded to whole cents
func (e *FormulaEngine) Eval(source string, value, price float64) (int64, error) {
	program, err := e.Compile(source)
	if err != nil {
		return 0, err
	}
	out, err := expr.Run(program, formulaEnv(value, price))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFormula, err)
	}
	delta, ok := out.(float64)
	if !ok || math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 0, fmt.Errorf("%w: formula %q yields no finite number", ErrInvalidFormula, source)
	}
	delta = math.Round(delta)
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range
	if delta >= math.MaxInt64 || delta < math.MinInt64 {
		return 0, fmt.Errorf("%w: formula %q yields %g cents", ErrInvalidFormula, source, delta)
	}
	return int64(delta), nil
}

// addCents adds a formula delta to a running price and fails on overflow
func addCents(price, delta int64) (int64, error) {
	sum := price + delta
	if (delta > 0 && sum < price) || (delta < 0 && sum > price) {
		return 0, fmt.Errorf("%w: price overflows", ErrInvalidFormula)
	}
	return sum, nil
}
