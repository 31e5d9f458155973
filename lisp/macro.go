package lisp

// Macros are function bindings wrapped in a (macro . FN) cons.  The wrapped
// function receives the call's argument forms unevaluated and the value it
// returns is evaluated in place of the original form.

// macroFunction unwraps a (macro . FN) binding, returning FN.
func macroFunction(v LVal) (LVal, bool) {
	c, ok := GetCons(v)
	if !ok {
		return Nil(), false
	}
	if s, ok := GetSymbol(c.Car()); !ok || s != symMacro {
		return Nil(), false
	}
	return c.Cdr(), true
}

// evalMacro invokes the macro function fn with the unevaluated argument
// forms and then evaluates the expansion.
func (in *interp) evalMacro(fn LVal, forms *Root, name string, cx *Arena) (LVal, error) {
	fnr := cx.Root(fn)
	defer fnr.Release()
	args := cx.RootVec()
	defer args.Release()
	it := newListIter(cx, forms.Bind())
	for it.Next() {
		args.Append(it.Item().Bind())
	}
	err := it.Err()
	it.Release()
	if err != nil {
		return Nil(), err
	}
	expansion, err := in.callFunction(fnr, args, name, cx)
	if err != nil {
		return Nil(), err
	}
	er := cx.Root(expansion)
	defer er.Release()
	return in.evalForm(er, cx)
}
