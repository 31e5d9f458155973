package lisp

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgError(t *testing.T) {
	env, cx := newTestRuntime()
	sym := func(s string) LVal { return Symbol(env.Table().Intern(s)) }
	_, err := Eval(cx.List(sym("cons"), Int(1)), env, cx)
	require.Error(t, err)
	assert.Equal(t, "cons: expected 2 argument(s) (got 1)", err.Error())
	var argErr *ArgError
	require.True(t, errors.As(err, &argErr))
	assert.Equal(t, "cons", argErr.Name)
	assert.Equal(t, 2, argErr.Expected)
	assert.Equal(t, 1, argErr.Actual)
}

func TestTypeError(t *testing.T) {
	env, cx := newTestRuntime()
	sym := func(s string) LVal { return Symbol(env.Table().Intern(s)) }
	_, err := Eval(cx.List(sym("cdr"), Int(5)), env, cx)
	require.Error(t, err)
	assert.Equal(t, "expected list (got integer)", err.Error())
	var typeErr *TypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "list", typeErr.Expected)
	assert.Equal(t, LInt, typeErr.Actual)
}

func TestErrImmutable(t *testing.T) {
	env, cx := newTestRuntime()
	sym := func(s string) LVal { return Symbol(env.Table().Intern(s)) }
	frozen := cx.Cons(Int(1), Int(2))
	Freeze(frozen)
	form := cx.List(sym("setcar"), cx.List(sym("quote"), frozen), Int(9))
	_, err := Eval(form, env, cx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrImmutable))
	assert.Equal(t, "attempt to modify constant data", err.Error())
}

func TestThrowSignal(t *testing.T) {
	sig := throwSignal()
	assert.True(t, sig.IsThrow())
	assert.Equal(t, "no catch handler for throw", sig.Error())

	err := evalErrorf("ordinary failure")
	assert.False(t, err.IsThrow())
	assert.Equal(t, "ordinary failure", err.Error())
}

func TestEvalErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := newEvalError(cause)
	assert.True(t, errors.Is(err, cause))

	wrapped := asEvalError(cause)
	assert.Same(t, cause, wrapped.Unwrap())
	assert.Same(t, wrapped, asEvalError(wrapped))
}

func TestCallStackOrder(t *testing.T) {
	env, cx := newTestRuntime()
	sym := func(s string) LVal { return Symbol(env.Table().Intern(s)) }
	lambda := cx.List(sym("lambda"), Nil(), cx.List(sym("cdr"), Int(5)))
	form := cx.List(sym("funcall"), cx.List(sym("function"), lambda))
	_, err := Eval(form, env, cx)
	require.Error(t, err)
	e := asEvalError(err)
	require.NotNil(t, e.Stack)
	require.Len(t, e.Stack.Frames, 3)
	assert.Equal(t, "(cdr 5)", e.Stack.Frames[0].String())
	assert.Equal(t, "(lambda)", e.Stack.Frames[1].String())
	assert.Equal(t, "(funcall (closure (t) nil (cdr 5)))", e.Stack.Frames[2].String())
	top := e.Stack.Top()
	require.NotNil(t, top)
	assert.Equal(t, "cdr", top.Name)
}

func TestCallStackDebugPrint(t *testing.T) {
	s := &CallStack{}
	s.Push(CallFrame{Name: "cdr", Args: []string{"5"}})
	s.Push(CallFrame{Name: "inner", Args: nil})
	s.Push(CallFrame{Name: "outer", Args: []string{"1", "(2 3)"}})
	var buf bytes.Buffer
	_, err := s.DebugPrint(&buf)
	require.NoError(t, err)
	expect := "Stack Trace [3 frames -- entrypoint last]:\n" +
		"  height 2: (cdr 5)\n" +
		"  height 1: (inner)\n" +
		"  height 0: (outer 1 (2 3))\n"
	assert.Equal(t, expect, buf.String())
}

func TestCallStackTopEmpty(t *testing.T) {
	var s *CallStack
	assert.Nil(t, s.Top())
	assert.Nil(t, (&CallStack{}).Top())
}
