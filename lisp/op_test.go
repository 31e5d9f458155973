package lisp

import (
	"testing"

	"github.com/VitalyAnkh/rune/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecialOpTable(t *testing.T) {
	names := []string{
		QuoteSymbol, LetSymbol, LetSeqSymbol, IfSymbol, AndSymbol, OrSymbol,
		CondSymbol, WhileSymbol, PrognSymbol, Prog1Symbol, Prog2Symbol,
		SetqSymbol, DefVarSymbol, DefConstSymbol, FunctionSymbol,
		InteractiveSymbol, CatchSymbol, ThrowSymbol, ConditionCaseSymbol,
	}
	assert.Len(t, langSpecialOps, len(names))
	for _, name := range names {
		fn, ok := langSpecialOps[symbol.Intern(name)]
		assert.True(t, ok, "no dispatch entry for %s", name)
		assert.NotNil(t, fn, "nil dispatch entry for %s", name)
	}
}

// A function binding under a special operator's name must not shadow the
// operator.
func TestSpecialOpPrecedence(t *testing.T) {
	env, cx := newTestRuntime()
	sym := func(s string) LVal { return Symbol(env.Table().Intern(s)) }
	env.SetFun(env.Table().Intern(IfSymbol), mustBuiltin(env, "car"))
	v, err := Eval(cx.List(sym("if"), Nil(), Int(1), Int(2)), env, cx)
	require.NoError(t, err)
	assert.True(t, Eq(Int(2), v))
}

func mustBuiltin(env *Environment, name string) LVal {
	fn, ok := env.GetFun(env.Table().Intern(name))
	if !ok {
		panic("builtin not registered: " + name)
	}
	return fn
}

// Special operators are not function values; calling one indirectly fails
// like any other missing function.
func TestSpecialOpNotFunction(t *testing.T) {
	env, cx := newTestRuntime()
	sym := func(s string) LVal { return Symbol(env.Table().Intern(s)) }
	form := cx.List(sym("funcall"), cx.List(sym("quote"), sym("progn")))
	_, err := Eval(form, env, cx)
	require.Error(t, err)
	assert.Equal(t, "void function: progn", err.Error())
}

func TestCatchTagsBalanced(t *testing.T) {
	env, cx := newTestRuntime()
	sym := func(s string) LVal { return Symbol(env.Table().Intern(s)) }
	quote := func(v LVal) LVal { return cx.List(sym("quote"), v) }

	form := cx.List(sym("catch"), quote(sym("tag")),
		cx.List(sym("throw"), quote(sym("tag")), Int(7)))
	v, err := Eval(form, env, cx)
	require.NoError(t, err)
	assert.True(t, Eq(Int(7), v))
	assert.Empty(t, env.catchTags)

	form = cx.List(sym("catch"), quote(sym("tag")), cx.List(sym("cdr"), Int(5)))
	_, err = Eval(form, env, cx)
	require.Error(t, err)
	assert.Empty(t, env.catchTags)
}

func TestLetRestoresDynamicOnError(t *testing.T) {
	env, cx := newTestRuntime()
	sym := func(s string) LVal { return Symbol(env.Table().Intern(s)) }
	x := env.Table().Intern("x")
	env.SetVar(x, Int(1))

	form := cx.List(sym("let"),
		cx.List(cx.List(sym("x"), Int(99))),
		cx.List(sym("cdr"), Int(5)))
	_, err := Eval(form, env, cx)
	require.Error(t, err)
	v, ok := env.GetVar(x)
	require.True(t, ok)
	assert.True(t, Eq(Int(1), v))
}

// function leaves anything that is not a lambda form untouched.
func TestFunctionNonLambda(t *testing.T) {
	env, cx := newTestRuntime()
	sym := func(s string) LVal { return Symbol(env.Table().Intern(s)) }

	v, err := Eval(cx.List(sym("function"), sym("car")), env, cx)
	require.NoError(t, err)
	assert.True(t, Eq(sym("car"), v))

	inner := cx.List(Int(1), Int(2))
	v, err = Eval(cx.List(sym("function"), inner), env, cx)
	require.NoError(t, err)
	assert.True(t, Eq(inner, v))
}

func TestFunctionLambdaCapture(t *testing.T) {
	env, cx := newTestRuntime()
	sym := func(s string) LVal { return Symbol(env.Table().Intern(s)) }
	lambda := cx.List(sym("lambda"), cx.List(sym("n")), sym("n"))
	form := cx.List(sym("let"),
		cx.List(cx.List(sym("a"), Int(1))),
		cx.List(sym("function"), lambda))
	v, err := Eval(form, env, cx)
	require.NoError(t, err)
	assert.Equal(t, "(closure ((a . 1) t) (n) n)", FormatString(v, env.Table()))
}
