package lisp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBuiltinsRegistered(t *testing.T) {
	env := NewEnvironment()
	env.AddBuiltins()
	for _, b := range DefaultBuiltins() {
		fn, ok := env.GetFun(env.Table().Intern(b.Name))
		require.True(t, ok, "builtin %s not registered", b.Name)
		assert.Equal(t, LBuiltin, fn.Type)
	}
}

func TestCallFunctionBuiltin(t *testing.T) {
	env, cx := newTestRuntime()
	fn := mustBuiltin(env, "+")
	v, err := CallFunction(env, cx, fn, []LVal{Int(1), Int(2)}, "+")
	require.NoError(t, err)
	assert.True(t, Eq(Int(3), v))
}

func TestCallFunctionClosure(t *testing.T) {
	env, cx := newTestRuntime()
	sym := func(s string) LVal { return Symbol(env.Table().Intern(s)) }
	lambda := cx.List(sym("lambda"), cx.List(sym("x")), sym("x"))
	closure, err := Eval(cx.List(sym("function"), lambda), env, cx)
	require.NoError(t, err)
	v, err := CallFunction(env, cx, closure, []LVal{Int(42)}, "identity")
	require.NoError(t, err)
	assert.True(t, Eq(Int(42), v))

	_, err = CallFunction(env, cx, closure, nil, "identity")
	require.Error(t, err)
	assert.Equal(t, "identity: expected 1 argument(s) (got 0)", err.Error())
}

func TestArithmeticOverflow(t *testing.T) {
	env, cx := newTestRuntime()
	sym := func(s string) LVal { return Symbol(env.Table().Intern(s)) }
	for _, form := range []LVal{
		cx.List(sym("+"), Int(math.MaxInt64), Int(1)),
		cx.List(sym("-"), Int(math.MinInt64), Int(1)),
		cx.List(sym("*"), Int(math.MaxInt64), Int(2)),
		cx.List(sym("/"), Int(math.MinInt64), Int(-1)),
	} {
		_, err := Eval(form, env, cx)
		require.Error(t, err)
		assert.Equal(t, "integer overflow", err.Error())
	}
}

func TestDivision(t *testing.T) {
	env, cx := newTestRuntime()
	sym := func(s string) LVal { return Symbol(env.Table().Intern(s)) }

	v, err := Eval(cx.List(sym("/"), Int(7), Int(2)), env, cx)
	require.NoError(t, err)
	assert.True(t, Eq(Int(3), v))

	v, err = Eval(cx.List(sym("/"), Int(-7), Int(2)), env, cx)
	require.NoError(t, err)
	assert.True(t, Eq(Int(-3), v))

	v, err = Eval(cx.List(sym("/"), Float(7), Int(2)), env, cx)
	require.NoError(t, err)
	assert.True(t, Eq(Float(3.5), v))

	v, err = Eval(cx.List(sym("/"), Float(2)), env, cx)
	require.NoError(t, err)
	assert.True(t, Eq(Float(0.5), v))

	_, err = Eval(cx.List(sym("/"), Int(1), Int(0)), env, cx)
	require.Error(t, err)
	assert.Equal(t, "division by zero", err.Error())
}

// Installed function definitions are fixed at installation time; mutating
// the closure value used in the defalias must not affect later calls.
func TestDefaliasClones(t *testing.T) {
	env, cx := newTestRuntime()
	sym := func(s string) LVal { return Symbol(env.Table().Intern(s)) }
	quote := func(v LVal) LVal { return cx.List(sym("quote"), v) }

	letForm := cx.List(sym("let"),
		cx.List(cx.List(sym("x"), Int(1))),
		cx.List(sym("function"), cx.List(sym("lambda"), Nil(), sym("x"))))
	closure, err := Eval(letForm, env, cx)
	require.NoError(t, err)
	cr := cx.Root(closure)
	defer cr.Release()

	_, err = Eval(cx.List(sym("defalias"), quote(sym("f")), quote(closure)), env, cx)
	require.NoError(t, err)

	capture := mustCons(mustCons(closure).Cdr()).Car()
	cell := mustCons(mustCons(capture).Car())
	require.NoError(t, cell.SetCdr(Int(99)))

	v, err := Eval(cx.List(sym("f")), env, cx)
	require.NoError(t, err)
	assert.True(t, Eq(Int(1), v))
}

func TestFunctionNameForms(t *testing.T) {
	env, cx := newTestRuntime()
	sym := func(s string) LVal { return Symbol(env.Table().Intern(s)) }
	assert.Equal(t, "car", functionName(env, sym("car")))
	assert.Equal(t, "+", functionName(env, mustBuiltin(env, "+")))
	closure := cx.List(sym("closure"), cx.List(True()), Nil())
	assert.Equal(t, "lambda", functionName(env, closure))
}
