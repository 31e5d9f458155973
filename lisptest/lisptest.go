// Package lisptest provides a table driven harness that runs lisp source
// through the full parse and eval pipeline.
package lisptest

import (
	"testing"

	"github.com/VitalyAnkh/rune/lisp"
	"github.com/VitalyAnkh/rune/parser"
)

// Runner is a test runner.
type Runner struct {
	// Stress forces a collection pass at every evaluator safepoint.  Any
	// value the evaluator failed to root is reclaimed immediately and trips
	// a poisoned cell panic, so sequences double as rooting checks.
	Stress bool
	// Const parses expressions through the constant loader path, freezing
	// quoted structure the way program source loaded from a file is frozen.
	Const bool
}

// NewRuntime builds a fresh environment and arena configured per the
// runner.
func (r *Runner) NewRuntime() (*lisp.Environment, *lisp.Arena) {
	env := lisp.NewEnvironment()
	env.AddBuiltins()
	cx := lisp.NewArena()
	if r.Stress {
		cx.SetCollectThreshold(0)
	}
	return env, cx
}

// TestSequence is a sequence of lisp expressions which are evaluated
// sequentially in a shared runtime.
type TestSequence []struct {
	Expr   string // a lisp expression
	Result string // the rendered result, or the error message on failure
}

// TestSuite is a set of named TestSequences
type TestSuite []struct {
	Name string
	TestSequence
}

// RunTestSuite runs each TestSequence in tests on isolated runtimes.
func (r *Runner) RunTestSuite(t *testing.T, tests TestSuite) {
	parse := parser.ParseAll
	if r.Const {
		parse = parser.ParseConst
	}
	for i, test := range tests {
		env, cx := r.NewRuntime()
		for j, expr := range test.TestSequence {
			vs, err := parse(cx, env.Table(), []byte(expr.Expr))
			if err != nil {
				t.Errorf("test %d %q: expr %d: parse error: %v", i, test.Name, j, err)
				continue
			}
			if vs.Len() != 1 {
				t.Errorf("test %d %q: expr %d: %d expressions parsed", i, test.Name, j, vs.Len())
				vs.Release()
				continue
			}
			var result string
			v, err := lisp.Eval(vs.At(0), env, cx)
			if err != nil {
				result = err.Error()
			} else {
				result = lisp.FormatString(v, env.Table())
			}
			if result != expr.Result {
				t.Errorf("test %d %q: expr %d: expected result %s (got %s)", i, test.Name, j, expr.Result, result)
			}
			vs.Release()
		}
	}
}

// RunTestSuite runs tests with a zero Runner.
func RunTestSuite(t *testing.T, tests TestSuite) {
	r := &Runner{}
	r.RunTestSuite(t, tests)
}
