package lisp

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/nukata/goarith"
)

// BuiltinFn is the native signature of a builtin function.  Arguments
// arrive fully evaluated and rooted by the caller; any value a builtin
// keeps across a collection must be rooted by the builtin itself.
type BuiltinFn func(env *Environment, cx *Arena, args []LVal) (LVal, error)

// Builtin is a named native function callable from lisp code.
type Builtin struct {
	Name string
	Fn   BuiltinFn
}

var langBuiltins = []*Builtin{
	{"eval", builtinEval},
	{"error", builtinError},
	{"cons", builtinCons},
	{"car", builtinCAR},
	{"cdr", builtinCDR},
	{"setcar", builtinSetCAR},
	{"setcdr", builtinSetCDR},
	{"list", builtinList},
	{"length", builtinLength},
	{"nth", builtinNth},
	{"eq", builtinEq},
	{"equal", builtinEqual},
	{"not", builtinNot},
	{"funcall", builtinFuncall},
	{"apply", builtinApply},
	{"defalias", builtinDefalias},
	{"symbol-function", builtinSymbolFunction},
	{"+", builtinAdd},
	{"-", builtinSub},
	{"*", builtinMul},
	{"/", builtinDiv},
	{"<", builtinLT},
	{"<=", builtinLEq},
	{">", builtinGT},
	{">=", builtinGEq},
	{"=", builtinNumEq},
	{"vector", builtinVector},
	{"aref", builtinAref},
	{"aset", builtinAset},
	{"record", builtinRecord},
	{"type-of", builtinTypeOf},
	{"copy-tree", builtinCopyTree},
	{"prin1-to-string", builtinPrin1ToString},
	{"garbage-collect", builtinGarbageCollect},
}

// DefaultBuiltins returns the standard builtin function set.
func DefaultBuiltins() []*Builtin {
	defs := make([]*Builtin, len(langBuiltins))
	copy(defs, langBuiltins)
	return defs
}

func checkArity(name string, args []LVal, n int) error {
	if len(args) != n {
		return argErrorf(name, n, len(args))
	}
	return nil
}

func functionName(env *Environment, fn LVal) string {
	if id, ok := GetSymbol(fn); ok {
		return env.SymbolName(id)
	}
	if b, ok := GetBuiltin(fn); ok {
		return b.Name
	}
	return "lambda"
}

func builtinEval(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if err := checkArity("eval", args, 1); err != nil {
		return Nil(), err
	}
	return Eval(args[0], env, cx)
}

func builtinError(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if len(args) == 0 {
		return Nil(), argErrorf("error", 1, 0)
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		if s, ok := GetString(arg); ok {
			parts[i] = s
		} else {
			parts[i] = FormatString(arg, env.table)
		}
	}
	return Nil(), evalErrorf("%s", strings.Join(parts, " "))
}

func builtinCons(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if err := checkArity("cons", args, 2); err != nil {
		return Nil(), err
	}
	return cx.Cons(args[0], args[1]), nil
}

func builtinCAR(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if err := checkArity("car", args, 1); err != nil {
		return Nil(), err
	}
	if IsNil(args[0]) {
		return Nil(), nil
	}
	c, ok := GetCons(args[0])
	if !ok {
		return Nil(), typeErrorf("list", args[0])
	}
	return c.Car(), nil
}

func builtinCDR(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if err := checkArity("cdr", args, 1); err != nil {
		return Nil(), err
	}
	if IsNil(args[0]) {
		return Nil(), nil
	}
	c, ok := GetCons(args[0])
	if !ok {
		return Nil(), typeErrorf("list", args[0])
	}
	return c.Cdr(), nil
}

func builtinSetCAR(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if err := checkArity("setcar", args, 2); err != nil {
		return Nil(), err
	}
	c, ok := GetCons(args[0])
	if !ok {
		return Nil(), typeErrorf("cons", args[0])
	}
	if err := c.SetCar(args[1]); err != nil {
		return Nil(), newEvalError(err)
	}
	return args[1], nil
}

func builtinSetCDR(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if err := checkArity("setcdr", args, 2); err != nil {
		return Nil(), err
	}
	c, ok := GetCons(args[0])
	if !ok {
		return Nil(), typeErrorf("cons", args[0])
	}
	if err := c.SetCdr(args[1]); err != nil {
		return Nil(), newEvalError(err)
	}
	return args[1], nil
}

func builtinList(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	return cx.List(args...), nil
}

func builtinLength(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if err := checkArity("length", args, 1); err != nil {
		return Nil(), err
	}
	v := args[0]
	switch v.Type {
	case LNil:
		return Int(0), nil
	case LCons:
		n, ok := ListLen(v)
		if !ok {
			return Nil(), typeErrorf("list", v)
		}
		return Int(n), nil
	case LString:
		s, _ := GetString(v)
		return Int(utf8.RuneCountInString(s)), nil
	case LVector:
		vec, _ := GetVector(v)
		return Int(vec.Len()), nil
	default:
		return Nil(), typeErrorf("sequence", v)
	}
}

func builtinNth(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if err := checkArity("nth", args, 2); err != nil {
		return Nil(), err
	}
	n, ok := GetInt(args[0])
	if !ok {
		return Nil(), typeErrorf("integer", args[0])
	}
	v := args[1]
	for n > 0 {
		if IsNil(v) {
			return Nil(), nil
		}
		c, ok := GetCons(v)
		if !ok {
			return Nil(), typeErrorf("list", v)
		}
		v = c.Cdr()
		n--
	}
	if IsNil(v) {
		return Nil(), nil
	}
	c, ok := GetCons(v)
	if !ok {
		return Nil(), typeErrorf("list", v)
	}
	return c.Car(), nil
}

func builtinEq(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if err := checkArity("eq", args, 2); err != nil {
		return Nil(), err
	}
	return Bool(Eq(args[0], args[1])), nil
}

func builtinEqual(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if err := checkArity("equal", args, 2); err != nil {
		return Nil(), err
	}
	return Bool(Equal(args[0], args[1])), nil
}

func builtinNot(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if err := checkArity("not", args, 1); err != nil {
		return Nil(), err
	}
	return Bool(IsNil(args[0])), nil
}

func builtinFuncall(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if len(args) == 0 {
		return Nil(), argErrorf("funcall", 1, 0)
	}
	return CallFunction(env, cx, args[0], args[1:], functionName(env, args[0]))
}

func builtinApply(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if len(args) < 2 {
		return Nil(), argErrorf("apply", 2, len(args))
	}
	spread := append([]LVal{}, args[1:len(args)-1]...)
	tail := args[len(args)-1]
	for !IsNil(tail) {
		c, ok := GetCons(tail)
		if !ok {
			return Nil(), typeErrorf("list", tail)
		}
		spread = append(spread, c.Car())
		tail = c.Cdr()
	}
	return CallFunction(env, cx, args[0], spread, functionName(env, args[0]))
}

// builtinDefalias installs a function definition under a symbol.  Cons
// definitions (closures and macros) are deep cloned first, so the
// installed function's captured environment is fixed at installation time
// no matter what later mutates the defining scope.
func builtinDefalias(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if err := checkArity("defalias", args, 2); err != nil {
		return Nil(), err
	}
	id, ok := GetSymbol(args[0])
	if !ok {
		return Nil(), typeErrorf("symbol", args[0])
	}
	def := args[1]
	if def.Type == LCons {
		def = cx.Clone(def)
	}
	env.SetFun(id, def)
	return args[0], nil
}

func builtinSymbolFunction(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if err := checkArity("symbol-function", args, 1); err != nil {
		return Nil(), err
	}
	id, ok := GetSymbol(args[0])
	if !ok {
		return Nil(), typeErrorf("symbol", args[0])
	}
	fn, ok := env.GetFun(id)
	if !ok {
		return Nil(), evalErrorf("void function: %s", env.SymbolName(id))
	}
	return fn, nil
}

func asNumber(v LVal) (goarith.Number, error) {
	if x, ok := GetInt(v); ok {
		return goarith.AsNumber(int64(x)), nil
	}
	if x, ok := GetFloat(v); ok {
		return goarith.AsNumber(x), nil
	}
	return nil, typeErrorf("number", v)
}

// numberVal converts an arithmetic result back into an LVal.  Results that
// no longer fit in 64 bits are an overflow error rather than a silently
// promoted big integer.
func numberVal(n goarith.Number) (LVal, error) {
	switch x := n.(type) {
	case goarith.Int32:
		return Int(int(x)), nil
	case goarith.Int64:
		return Int(int(x)), nil
	case goarith.Float64:
		return Float(float64(x)), nil
	default:
		return Nil(), evalErrorf("integer overflow")
	}
}

func builtinAdd(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	acc := goarith.AsNumber(int64(0))
	for _, arg := range args {
		n, err := asNumber(arg)
		if err != nil {
			return Nil(), err
		}
		acc = acc.Add(n)
	}
	return numberVal(acc)
}

func builtinSub(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if len(args) == 0 {
		return Int(0), nil
	}
	acc, err := asNumber(args[0])
	if err != nil {
		return Nil(), err
	}
	if len(args) == 1 {
		return numberVal(goarith.AsNumber(int64(0)).Sub(acc))
	}
	for _, arg := range args[1:] {
		n, err := asNumber(arg)
		if err != nil {
			return Nil(), err
		}
		acc = acc.Sub(n)
	}
	return numberVal(acc)
}

func builtinMul(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	acc := goarith.AsNumber(int64(1))
	for _, arg := range args {
		n, err := asNumber(arg)
		if err != nil {
			return Nil(), err
		}
		acc = acc.Mul(n)
	}
	return numberVal(acc)
}

func asFloat(v LVal) (float64, bool) {
	if x, ok := GetFloat(v); ok {
		return x, true
	}
	if x, ok := GetInt(v); ok {
		return float64(x), true
	}
	return 0, false
}

// divideValues divides two numbers pairwise: integer division truncates,
// float contagion applies per step, integer division by zero fails.
func divideValues(a, b LVal) (LVal, error) {
	if ai, aok := GetInt(a); aok {
		if bi, bok := GetInt(b); bok {
			if bi == 0 {
				return Nil(), evalErrorf("division by zero")
			}
			if int64(ai) == math.MinInt64 && bi == -1 {
				return Nil(), evalErrorf("integer overflow")
			}
			return Int(ai / bi), nil
		}
	}
	af, ok := asFloat(a)
	if !ok {
		return Nil(), typeErrorf("number", a)
	}
	bf, ok := asFloat(b)
	if !ok {
		return Nil(), typeErrorf("number", b)
	}
	return Float(af / bf), nil
}

func builtinDiv(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if len(args) == 0 {
		return Nil(), argErrorf("/", 1, 0)
	}
	if len(args) == 1 {
		return divideValues(Int(1), args[0])
	}
	acc := args[0]
	if _, ok := asFloat(acc); !ok {
		return Nil(), typeErrorf("number", acc)
	}
	var err error
	for _, arg := range args[1:] {
		acc, err = divideValues(acc, arg)
		if err != nil {
			return Nil(), err
		}
	}
	return acc, nil
}

func compareChain(name string, args []LVal, ok func(int) bool) (LVal, error) {
	if len(args) == 0 {
		return Nil(), argErrorf(name, 1, 0)
	}
	prev, err := asNumber(args[0])
	if err != nil {
		return Nil(), err
	}
	for _, arg := range args[1:] {
		next, err := asNumber(arg)
		if err != nil {
			return Nil(), err
		}
		if !ok(prev.Cmp(next)) {
			return Nil(), nil
		}
		prev = next
	}
	return True(), nil
}

func builtinLT(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	return compareChain("<", args, func(c int) bool { return c < 0 })
}

func builtinLEq(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	return compareChain("<=", args, func(c int) bool { return c <= 0 })
}

func builtinGT(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	return compareChain(">", args, func(c int) bool { return c > 0 })
}

func builtinGEq(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	return compareChain(">=", args, func(c int) bool { return c >= 0 })
}

func builtinNumEq(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	return compareChain("=", args, func(c int) bool { return c == 0 })
}

func builtinVector(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	return cx.Vector(args), nil
}

func asCells(v LVal) (*Vector, bool) {
	switch v.Type {
	case LVector:
		return v.Native.(*Vector), true
	case LRecord:
		return &v.Native.(*Record).Vector, true
	}
	return nil, false
}

func builtinAref(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if err := checkArity("aref", args, 2); err != nil {
		return Nil(), err
	}
	vec, ok := asCells(args[0])
	if !ok {
		return Nil(), typeErrorf("array", args[0])
	}
	i, ok := GetInt(args[1])
	if !ok {
		return Nil(), typeErrorf("integer", args[1])
	}
	if i < 0 || i >= vec.Len() {
		return Nil(), evalErrorf("index %d out of range [0, %d)", i, vec.Len())
	}
	return vec.At(i), nil
}

func builtinAset(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if err := checkArity("aset", args, 3); err != nil {
		return Nil(), err
	}
	vec, ok := asCells(args[0])
	if !ok {
		return Nil(), typeErrorf("array", args[0])
	}
	i, ok := GetInt(args[1])
	if !ok {
		return Nil(), typeErrorf("integer", args[1])
	}
	if i < 0 || i >= vec.Len() {
		return Nil(), evalErrorf("index %d out of range [0, %d)", i, vec.Len())
	}
	m, err := vec.TryMut()
	if err != nil {
		return Nil(), newEvalError(err)
	}
	m.Set(i, args[2])
	return args[2], nil
}

func builtinRecord(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if len(args) == 0 {
		return Nil(), argErrorf("record", 1, 0)
	}
	return cx.Record(args), nil
}

func builtinTypeOf(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if err := checkArity("type-of", args, 1); err != nil {
		return Nil(), err
	}
	v := args[0]
	switch v.Type {
	case LNil, LTrue:
		return Symbol(env.table.Intern("symbol")), nil
	case LRecord:
		r, _ := GetRecord(v)
		if name := r.TypeName(); name.Type == LSymbol {
			return name, nil
		}
		return Symbol(env.table.Intern("record")), nil
	default:
		return Symbol(env.table.Intern(v.Type.String())), nil
	}
}

func builtinCopyTree(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if err := checkArity("copy-tree", args, 1); err != nil {
		return Nil(), err
	}
	return cx.Clone(args[0]), nil
}

func builtinPrin1ToString(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if err := checkArity("prin1-to-string", args, 1); err != nil {
		return Nil(), err
	}
	return String(FormatString(args[0], env.table)), nil
}

func builtinGarbageCollect(env *Environment, cx *Arena, args []LVal) (LVal, error) {
	if err := checkArity("garbage-collect", args, 0); err != nil {
		return Nil(), err
	}
	cx.Collect(true)
	st := cx.Stats()
	return cx.List(
		cx.Cons(Symbol(env.table.Intern("live")), Int(st.Live)),
		cx.Cons(Symbol(env.table.Intern("collections")), Int(int(st.Collections))),
		cx.Cons(Symbol(env.table.Intern("swept")), Int(st.LastSwept)),
	), nil
}
