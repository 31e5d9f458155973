package lisp

import (
	"fmt"
	"io"
	"os"

	"github.com/VitalyAnkh/rune/symbol"
)

// Environment is the per-runtime state threaded through every evaluation:
// the table of dynamically scoped (special) variables, the global function
// registry, the stack of active catch tags and the one-slot transfer cell
// that carries a thrown tag/value pair out of band while a throw signal
// unwinds.  The Environment is single-owner state; nothing in it locks
// because evaluation is strictly single threaded.
type Environment struct {
	table     symbol.Table
	vars      map[symbol.ID]LVal
	funcs     map[symbol.ID]LVal
	catchTags []LVal
	thrownTag LVal
	thrownVal LVal

	// Stderr receives debug output such as backtraces printed by the
	// REPL.  It defaults to os.Stderr.
	Stderr io.Writer
}

// NewEnvironment initializes an Environment.  The environment's symbol
// table is a copy of the global table, so symbols interned at runtime stay
// private to it while every package-init symbol resolves.
func NewEnvironment(cfg ...Config) *Environment {
	env := &Environment{
		table:  symbol.CopyGlobalTable(),
		vars:   make(map[symbol.ID]LVal),
		funcs:  make(map[symbol.ID]LVal),
		Stderr: os.Stderr,
	}
	for _, fn := range cfg {
		fn(env)
	}
	return env
}

// Table returns the environment's symbol table.
func (env *Environment) Table() symbol.Table {
	return env.table
}

// SymbolName renders the symbol id through the environment's table.
func (env *Environment) SymbolName(id symbol.ID) string {
	return symbol.String(id, env.table)
}

// GetVar reads the dynamic (special) variable bound to id.  The second
// return is false when no dynamic binding exists, which also means id has
// never been declared special.
func (env *Environment) GetVar(id symbol.ID) (LVal, bool) {
	v, ok := env.vars[id]
	return v, ok
}

// SetVar writes the dynamic variable bound to id, creating the binding if
// necessary.  Installing a binding is what makes a symbol special: let
// forms rebind it dynamically from then on.
func (env *Environment) SetVar(id symbol.ID, v LVal) {
	env.vars[id] = v
}

// GetFun reads the global function cell of id.
func (env *Environment) GetFun(id symbol.ID) (LVal, bool) {
	v, ok := env.funcs[id]
	return v, ok
}

// SetFun writes the global function cell of id.
func (env *Environment) SetFun(id symbol.ID, v LVal) {
	env.funcs[id] = v
}

// FollowIndirect resolves id's function cell, chasing defalias symbol
// chains to a concrete function value.  FollowIndirect returns false when
// the chain ends in an empty cell or loops back on itself.
func (env *Environment) FollowIndirect(id symbol.ID) (LVal, bool) {
	var seen map[symbol.ID]bool
	for {
		v, ok := env.funcs[id]
		if !ok {
			return Nil(), false
		}
		next, ok := GetSymbol(v)
		if !ok {
			return v, true
		}
		if seen == nil {
			seen = map[symbol.ID]bool{id: true}
		}
		if seen[next] {
			return Nil(), false
		}
		seen[next] = true
		id = next
	}
}

// PushCatchTag marks tag as an active catch target.
func (env *Environment) PushCatchTag(tag LVal) {
	env.catchTags = append(env.catchTags, tag)
}

// PopCatchTag removes the most recently pushed catch tag.  PopCatchTag
// panics if the catch stack is empty; unbalanced push/pop pairs are a bug
// in the evaluator, never a user visible condition.
func (env *Environment) PopCatchTag() {
	n := len(env.catchTags) - 1
	if n < 0 {
		panic("lisp: pop called on an empty catch stack")
	}
	env.catchTags[n] = LVal{}
	env.catchTags = env.catchTags[:n]
}

// HasCatchTag reports whether tag matches any active catch target.  Tags
// match by identity (Eq).
func (env *Environment) HasCatchTag(tag LVal) bool {
	for _, t := range env.catchTags {
		if Eq(t, tag) {
			return true
		}
	}
	return false
}

// SetThrown stores the unwinding throw's tag and value.
func (env *Environment) SetThrown(tag, val LVal) {
	env.thrownTag = tag
	env.thrownVal = val
}

// ReadThrown reads the most recent throw's tag and value.
func (env *Environment) ReadThrown() (tag, val LVal) {
	return env.thrownTag, env.thrownVal
}

// AddBuiltins registers native functions in the environment's function
// registry.  When called with no arguments the default builtin set is
// registered.  AddBuiltins panics if a name is already bound, redefining a
// builtin is a setup bug.
func (env *Environment) AddBuiltins(defs ...*Builtin) {
	if len(defs) == 0 {
		defs = DefaultBuiltins()
	}
	for _, b := range defs {
		id := env.table.Intern(b.Name)
		if _, ok := env.funcs[id]; ok {
			panic(fmt.Sprintf("lisp: builtin already defined: %s", b.Name))
		}
		env.funcs[id] = BuiltinVal(b)
	}
}

// trace pushes every heap value reachable from the environment: dynamic
// variable values, function cells, active catch tags and the thrown pair.
func (env *Environment) trace(push func(LVal)) {
	for _, v := range env.vars {
		push(v)
	}
	for _, v := range env.funcs {
		push(v)
	}
	for _, v := range env.catchTags {
		push(v)
	}
	push(env.thrownTag)
	push(env.thrownVal)
}
