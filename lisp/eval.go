package lisp

import (
	"strings"

	"github.com/VitalyAnkh/rune/symbol"
)

// interp carries the state of one nested evaluation: the lexical binding
// stack and the shared Environment.  The lexical stack is a rooted sequence
// of (symbol . value) cons cells, most recent last; shadowing is by
// position.  Closure invocation builds a fresh interp over the closure's
// captured cells.
type interp struct {
	vars *RootVec
	env  *Environment
}

// Eval evaluates form in env, allocating through cx.  Eval is the only
// externally invoked operation of the core: it roots the form and the
// environment, takes the initial collection safepoint and dispatches.  The
// environment's thrown slot and catch stack must not be manipulated by the
// caller while Eval runs.
func Eval(form LVal, env *Environment, cx *Arena) (LVal, error) {
	fr := cx.Root(form)
	defer fr.Release()
	er := cx.rootEnv(env)
	defer er.Release()
	cx.Collect(false)
	vars := cx.RootVec()
	defer vars.Release()
	in := &interp{vars: vars, env: env}
	return in.evalForm(fr, cx)
}

// CallFunction invokes the function value fn on already evaluated
// arguments.  Builtins implementing funcall-style operations use it to
// reenter the evaluator; the called function sees an empty lexical stack,
// closures bring their own captured bindings.
func CallFunction(env *Environment, cx *Arena, fn LVal, args []LVal, name string) (LVal, error) {
	vars := cx.RootVec()
	defer vars.Release()
	in := &interp{vars: vars, env: env}
	fr := cx.Root(fn)
	defer fr.Release()
	av := cx.RootVec(args...)
	defer av.Release()
	return in.callFunction(fr, av, name, cx)
}

func mustCons(v LVal) *Cons {
	c, ok := GetCons(v)
	if !ok {
		panic("lisp: value is not a cons")
	}
	return c
}

func (in *interp) evalForm(form *Root, cx *Arena) (LVal, error) {
	v := form.Bind()
	switch v.Type {
	case LSymbol:
		return in.varRef(symbol.ID(v.Data), cx)
	case LCons:
		return in.evalSexp(form, cx)
	default:
		return v, nil
	}
}

func (in *interp) varRef(id symbol.ID, cx *Arena) (LVal, error) {
	name := in.env.SymbolName(id)
	if strings.HasPrefix(name, KeywordPrefix) {
		return Symbol(id), nil
	}
	if c := in.findLexical(id); c != nil {
		return c.Cdr(), nil
	}
	if v, ok := in.env.GetVar(id); ok {
		return v, nil
	}
	return Nil(), evalErrorf("void variable: %s", name)
}

func (in *interp) findLexical(id symbol.ID) *Cons {
	want := Symbol(id)
	for i := in.vars.Len() - 1; i >= 0; i-- {
		c := mustCons(in.vars.At(i))
		if Eq(c.Car(), want) {
			return c
		}
	}
	return nil
}

// varSet implements setq semantics: a lexically visible binding is always
// updated in place, the dynamic table is the fallback.
func (in *interp) varSet(id symbol.ID, v LVal) {
	if c := in.findLexical(id); c != nil {
		if err := c.SetCdr(v); err != nil {
			panic("lisp: lexical binding cell is immutable")
		}
		return
	}
	in.env.SetVar(id, v)
}

// evalSexp evaluates a compound form.  Special operators are consulted
// before the function registry, so their names cannot be shadowed by
// function bindings.
func (in *interp) evalSexp(form *Root, cx *Arena) (LVal, error) {
	c := mustCons(form.Bind())
	op, ok := GetSymbol(c.Car())
	if !ok {
		return Nil(), evalErrorf("invalid function: %s", FormatString(c.Car(), in.env.table))
	}
	forms := cx.Root(c.Cdr())
	defer forms.Release()
	if special, ok := langSpecialOps[op]; ok {
		return special(in, forms, cx)
	}
	return in.evalCall(op, forms, cx)
}

// listIter walks a list while keeping the current element and the unvisited
// tail rooted, so loop bodies are free to allocate and trigger collections.
// Callers must Release the iterator before releasing any root created
// before it.
type listIter struct {
	item *Root
	rest *Root
	err  *EvalError
}

func newListIter(cx *Arena, v LVal) *listIter {
	return &listIter{
		item: cx.Root(Nil()),
		rest: cx.Root(v),
	}
}

// Next advances to the next element.  Next returns false at the end of the
// list or when the tail turns out not to be a list; Err distinguishes the
// two.
func (it *listIter) Next() bool {
	if it.err != nil {
		return false
	}
	rest := it.rest.Bind()
	if IsNil(rest) {
		return false
	}
	c, ok := GetCons(rest)
	if !ok {
		it.err = typeErrorf("list", rest)
		return false
	}
	it.item.Set(c.Car())
	it.rest.Set(c.Cdr())
	return true
}

// Item returns the root holding the current element.
func (it *listIter) Item() *Root {
	return it.item
}

// Empty reports whether the iterator has no further elements.
func (it *listIter) Empty() bool {
	return it.err == nil && IsNil(it.rest.Bind())
}

func (it *listIter) Err() error {
	if it.err != nil {
		return it.err
	}
	return nil
}

func (it *listIter) Release() {
	it.rest.Release()
	it.item.Release()
}

// nextOrArgError advances it and returns the next element, or an arity
// error naming the form when the list ran out.
func nextOrArgError(it *listIter, name string, expected, actual int) (LVal, error) {
	if it.Next() {
		return it.item.Bind(), nil
	}
	if err := it.Err(); err != nil {
		return Nil(), err
	}
	return Nil(), argErrorf(name, expected, actual)
}

// implicitProgn evaluates every remaining element of it and returns the
// last value, nil when there are none.
func (in *interp) implicitProgn(it *listIter, cx *Arena) (LVal, error) {
	last := cx.Root(Nil())
	defer last.Release()
	for it.Next() {
		v, err := in.evalForm(it.Item(), cx)
		if err != nil {
			return Nil(), err
		}
		last.Set(v)
	}
	if err := it.Err(); err != nil {
		return Nil(), err
	}
	return last.Bind(), nil
}

func (in *interp) evalCall(id symbol.ID, forms *Root, cx *Arena) (LVal, error) {
	name := in.env.SymbolName(id)
	fn, ok := in.env.FollowIndirect(id)
	if !ok {
		return Nil(), evalErrorf("void function: %s", name)
	}
	fr := cx.Root(fn)
	defer fr.Release()
	if mfn, ok := macroFunction(fn); ok {
		return in.evalMacro(mfn, forms, name, cx)
	}
	args := cx.RootVec()
	defer args.Release()
	it := newListIter(cx, forms.Bind())
	for it.Next() {
		v, err := in.evalForm(it.Item(), cx)
		if err != nil {
			it.Release()
			return Nil(), err
		}
		args.Append(v)
	}
	err := it.Err()
	it.Release()
	if err != nil {
		return Nil(), err
	}
	return in.callFunction(fr, args, name, cx)
}

// callFunction invokes a resolved function value: a native builtin, a
// closure cons or a symbol naming another function.  Failed invocations
// pick up a call stack frame recording the call.
func (in *interp) callFunction(fn *Root, args *RootVec, name string, cx *Arena) (LVal, error) {
	v := fn.Bind()
	switch v.Type {
	case LBuiltin:
		b := v.Native.(*Builtin)
		result, err := b.Fn(in.env, cx, args.Slice())
		if err != nil {
			return Nil(), in.addCallFrame(err, name, args)
		}
		return result, nil
	case LCons:
		result, err := in.callClosure(fn, args, name, cx)
		if err != nil {
			return Nil(), in.addCallFrame(err, name, args)
		}
		return result, nil
	case LSymbol:
		id := symbol.ID(v.Data)
		resolved, ok := in.env.FollowIndirect(id)
		if !ok {
			return Nil(), evalErrorf("void function: %s", in.env.SymbolName(id))
		}
		fr := cx.Root(resolved)
		defer fr.Release()
		return in.callFunction(fr, args, name, cx)
	default:
		return Nil(), typeErrorf("function", v)
	}
}

func (in *interp) addCallFrame(err error, name string, args *RootVec) error {
	f := CallFrame{Name: name, Args: make([]string, 0, args.Len())}
	for _, a := range args.Slice() {
		f.Args = append(f.Args, FormatString(a, in.env.table))
	}
	return asEvalError(err).addFrame(f)
}

// callClosure invokes a (closure ENV ARGLIST . BODY) cons.  A collection
// safepoint is taken first; the closure and arguments are rooted by the
// caller.
func (in *interp) callClosure(closure *Root, args *RootVec, name string, cx *Arena) (LVal, error) {
	cx.Collect(false)
	c := mustCons(closure.Bind())
	if op, ok := GetSymbol(c.Car()); !ok || op != symClosure {
		return Nil(), typeErrorf("function", closure.Bind())
	}
	rest, ok := GetCons(c.Cdr())
	if !ok {
		return Nil(), evalErrorf("malformed closure: missing environment")
	}
	vars := cx.RootVec()
	defer vars.Release()
	if err := in.parseClosureEnv(rest.Car(), vars); err != nil {
		return Nil(), err
	}
	body, ok := GetCons(rest.Cdr())
	if !ok {
		return Nil(), evalErrorf("malformed closure: missing argument list")
	}
	if err := in.bindArgs(body.Car(), args, vars, name, cx); err != nil {
		return Nil(), err
	}
	sub := &interp{vars: vars, env: in.env}
	it := newListIter(cx, body.Cdr())
	result, err := sub.implicitProgn(it, cx)
	it.Release()
	return result, err
}

// parseClosureEnv loads a closure's captured (symbol . value) cells into
// vars.  The capture list must end with the t sentinel.
func (in *interp) parseClosureEnv(capture LVal, vars *RootVec) error {
	for {
		c, ok := GetCons(capture)
		if !ok {
			return evalErrorf("closure environment did not end with t")
		}
		item := c.Car()
		switch item.Type {
		case LCons:
			vars.Append(item)
		case LTrue:
			return nil
		default:
			return evalErrorf("invalid closure environment member: %s", FormatString(item, in.env.table))
		}
		capture = c.Cdr()
	}
}

// bindArgs parses an argument list and binds the supplied arguments on top
// of a closure's captured bindings.
func (in *interp) bindArgs(arglist LVal, args, vars *RootVec, name string, cx *Arena) error {
	required, optional, restSym, hasRest, err := parseArgList(arglist)
	if err != nil {
		return err
	}
	n := args.Len()
	if n < len(required) {
		return argErrorf(name, len(required), n)
	}
	i := 0
	for _, sym := range required {
		vars.Append(cx.Cons(sym, args.At(i)))
		i++
	}
	for _, sym := range optional {
		val := Nil()
		if i < n {
			val = args.At(i)
			i++
		}
		vars.Append(cx.Cons(sym, val))
	}
	if hasRest {
		vars.Append(cx.Cons(restSym, cx.List(args.Slice()[i:]...)))
		return nil
	}
	if i < n {
		return argErrorf(name, len(required)+len(optional), n)
	}
	return nil
}

// parseArgList partitions an argument list into required names, &optional
// names and at most one &rest name.
func parseArgList(arglist LVal) (required, optional []LVal, restSym LVal, hasRest bool, err error) {
	optionalMode := false
	v := arglist
	for !IsNil(v) {
		c, ok := GetCons(v)
		if !ok {
			return nil, nil, Nil(), false, typeErrorf("list", v)
		}
		item := c.Car()
		id, ok := GetSymbol(item)
		if !ok {
			return nil, nil, Nil(), false, typeErrorf("symbol", item)
		}
		switch id {
		case symOptArg:
			optionalMode = true
		case symVarArg:
			tail, ok := GetCons(c.Cdr())
			if !ok {
				if IsNil(c.Cdr()) {
					return required, optional, Nil(), false, nil
				}
				return nil, nil, Nil(), false, typeErrorf("list", c.Cdr())
			}
			if _, ok := GetSymbol(tail.Car()); !ok {
				return nil, nil, Nil(), false, typeErrorf("symbol", tail.Car())
			}
			if !IsNil(tail.Cdr()) {
				return nil, nil, Nil(), false, evalErrorf("multiple arguments after %s", VarArgSymbol)
			}
			return required, optional, tail.Car(), true, nil
		default:
			if optionalMode {
				optional = append(optional, item)
			} else {
				required = append(required, item)
			}
		}
		v = c.Cdr()
	}
	return required, optional, Nil(), false, nil
}
