package lisp

import (
	"io"

	"github.com/VitalyAnkh/rune/symbol"
)

// Config is a function that configures a new Environment.
type Config func(env *Environment)

// WithStderr returns a Config that makes the environment write debugging
// output to w instead of the default, os.Stderr.
func WithStderr(w io.Writer) Config {
	return func(env *Environment) {
		env.Stderr = w
	}
}

// WithTable returns a Config that makes the environment intern symbols in t
// instead of a fresh copy of the global table.  The table must resolve
// every symbol interned during package init; a copy of the global table
// does.
func WithTable(t symbol.Table) Config {
	return func(env *Environment) {
		env.table = t
	}
}
