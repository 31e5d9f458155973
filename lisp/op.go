package lisp

import (
	"github.com/VitalyAnkh/rune/symbol"
)

// specialOp evaluates a special form.  The operator receives its argument
// forms unevaluated, rooted by the caller.
type specialOp func(in *interp, forms *Root, cx *Arena) (LVal, error)

// langSpecialOps defines the special operators built into the language.
// It is populated in init rather than at declaration to avoid an
// initialization cycle through the evaluator.
var langSpecialOps map[symbol.ID]specialOp

func init() {
	langSpecialOps = map[symbol.ID]specialOp{
		symQuote:         (*interp).opQuote,
		symLet:           (*interp).opLet,
		symLetSeq:        (*interp).opLetSeq,
		symIf:            (*interp).opIf,
		symAnd:           (*interp).opAnd,
		symOr:            (*interp).opOr,
		symCond:          (*interp).opCond,
		symWhile:         (*interp).opWhile,
		symProgn:         (*interp).opProgn,
		symProg1:         (*interp).opProg1,
		symProg2:         (*interp).opProg2,
		symSetq:          (*interp).opSetq,
		symDefVar:        (*interp).opDefVar,
		symDefConst:      (*interp).opDefConst,
		symFunction:      (*interp).opFunction,
		symInteractive:   (*interp).opInteractive,
		symCatch:         (*interp).opCatch,
		symThrow:         (*interp).opThrow,
		symConditionCase: (*interp).opConditionCase,
	}
}

func (in *interp) opQuote(forms *Root, cx *Arena) (LVal, error) {
	v := forms.Bind()
	n, ok := ListLen(v)
	if !ok {
		return Nil(), typeErrorf("list", v)
	}
	if n != 1 {
		return Nil(), argErrorf(QuoteSymbol, 1, n)
	}
	return mustCons(v).Car(), nil
}

func (in *interp) opLet(forms *Root, cx *Arena) (LVal, error) {
	return in.evalLet(forms, false, cx)
}

func (in *interp) opLetSeq(forms *Root, cx *Arena) (LVal, error) {
	return in.evalLet(forms, true, cx)
}

func (in *interp) evalLet(forms *Root, serial bool, cx *Arena) (LVal, error) {
	name := LetSymbol
	if serial {
		name = LetSeqSymbol
	}
	it := newListIter(cx, forms.Bind())
	defer it.Release()
	if !it.Next() {
		if err := it.Err(); err != nil {
			return Nil(), err
		}
		return Nil(), argErrorf(name, 1, 0)
	}
	prevLen := in.vars.Len()
	// saved holds (symbol, previous value) pairs for rebindings of special
	// variables, flattened two entries per binding.
	saved := cx.RootVec()
	defer saved.Release()
	defer func() {
		in.vars.Truncate(prevLen)
		for i := saved.Len() - 2; i >= 0; i -= 2 {
			id, ok := GetSymbol(saved.At(i))
			if !ok {
				panic("lisp: saved dynamic binding is not a symbol")
			}
			in.env.SetVar(id, saved.At(i+1))
		}
	}()
	bit := newListIter(cx, it.Item().Bind())
	var err error
	if serial {
		err = in.bindLetSerial(bit, saved, name, cx)
	} else {
		err = in.bindLetParallel(bit, saved, name, cx)
	}
	bit.Release()
	if err != nil {
		return Nil(), err
	}
	return in.implicitProgn(it, cx)
}

func (in *interp) bindLetSerial(bit *listIter, saved *RootVec, name string, cx *Arena) error {
	for bit.Next() {
		sym, val, err := in.evalBinding(bit.Item(), name, cx)
		if err != nil {
			return err
		}
		in.installBinding(sym, val, saved, cx)
	}
	return bit.Err()
}

// bindLetParallel evaluates every initializer before installing any
// binding, so initializers never see their sibling bindings.
func (in *interp) bindLetParallel(bit *listIter, saved *RootVec, name string, cx *Arena) error {
	pairs := cx.RootVec()
	defer pairs.Release()
	for bit.Next() {
		sym, val, err := in.evalBinding(bit.Item(), name, cx)
		if err != nil {
			return err
		}
		pairs.Append(sym, val)
	}
	if err := bit.Err(); err != nil {
		return err
	}
	for i := 0; i < pairs.Len(); i += 2 {
		in.installBinding(pairs.At(i), pairs.At(i+1), saved, cx)
	}
	return nil
}

// evalBinding destructures a single let binding form: a bare symbol binds
// nil, (sym) binds nil, (sym form) binds the evaluated form.
func (in *interp) evalBinding(binding *Root, name string, cx *Arena) (sym, val LVal, err error) {
	b := binding.Bind()
	switch b.Type {
	case LSymbol:
		return b, Nil(), nil
	case LCons:
		c := mustCons(b)
		sym = c.Car()
		if _, ok := GetSymbol(sym); !ok {
			return Nil(), Nil(), typeErrorf("symbol", sym)
		}
		rest := c.Cdr()
		n, ok := ListLen(rest)
		if !ok {
			return Nil(), Nil(), typeErrorf("list", rest)
		}
		switch n {
		case 0:
			return sym, Nil(), nil
		case 1:
			vf := cx.Root(mustCons(rest).Car())
			defer vf.Release()
			val, err = in.evalForm(vf, cx)
			return sym, val, err
		default:
			return Nil(), Nil(), evalErrorf("%s: binding can only have one value form", name)
		}
	default:
		return Nil(), Nil(), typeErrorf("cons", b)
	}
}

// installBinding pushes a lexical binding cell, or rebinds dynamically when
// the symbol has been declared special, remembering the displaced value in
// saved.
func (in *interp) installBinding(sym, val LVal, saved *RootVec, cx *Arena) {
	id, ok := GetSymbol(sym)
	if !ok {
		panic("lisp: binding name is not a symbol")
	}
	if prev, ok := in.env.GetVar(id); ok {
		saved.Append(sym, prev)
		in.env.SetVar(id, val)
		return
	}
	in.vars.Append(cx.Cons(sym, val))
}

func (in *interp) opIf(forms *Root, cx *Arena) (LVal, error) {
	it := newListIter(cx, forms.Bind())
	defer it.Release()
	condForm, err := nextOrArgError(it, IfSymbol, 2, 0)
	if err != nil {
		return Nil(), err
	}
	cond := cx.Root(condForm)
	defer cond.Release()
	thenForm, err := nextOrArgError(it, IfSymbol, 2, 1)
	if err != nil {
		return Nil(), err
	}
	then := cx.Root(thenForm)
	defer then.Release()
	v, err := in.evalForm(cond, cx)
	if err != nil {
		return Nil(), err
	}
	if Truthy(v) {
		return in.evalForm(then, cx)
	}
	return in.implicitProgn(it, cx)
}

func (in *interp) opAnd(forms *Root, cx *Arena) (LVal, error) {
	it := newListIter(cx, forms.Bind())
	defer it.Release()
	last := cx.Root(True())
	defer last.Release()
	for it.Next() {
		v, err := in.evalForm(it.Item(), cx)
		if err != nil {
			return Nil(), err
		}
		if IsNil(v) {
			return Nil(), nil
		}
		last.Set(v)
	}
	if err := it.Err(); err != nil {
		return Nil(), err
	}
	return last.Bind(), nil
}

func (in *interp) opOr(forms *Root, cx *Arena) (LVal, error) {
	it := newListIter(cx, forms.Bind())
	defer it.Release()
	for it.Next() {
		v, err := in.evalForm(it.Item(), cx)
		if err != nil {
			return Nil(), err
		}
		if Truthy(v) {
			return v, nil
		}
	}
	if err := it.Err(); err != nil {
		return Nil(), err
	}
	return Nil(), nil
}

func (in *interp) opCond(forms *Root, cx *Arena) (LVal, error) {
	it := newListIter(cx, forms.Bind())
	defer it.Release()
	for it.Next() {
		clause := it.Item().Bind()
		if !IsList(clause) {
			return Nil(), typeErrorf("list", clause)
		}
		cit := newListIter(cx, clause)
		if !cit.Next() {
			cit.Release()
			continue
		}
		v, err := in.evalForm(cit.Item(), cx)
		if err != nil {
			cit.Release()
			return Nil(), err
		}
		if !Truthy(v) {
			cit.Release()
			continue
		}
		if cit.Empty() {
			cit.Release()
			return v, nil
		}
		result, err := in.implicitProgn(cit, cx)
		cit.Release()
		return result, err
	}
	if err := it.Err(); err != nil {
		return Nil(), err
	}
	return Nil(), nil
}

func (in *interp) opWhile(forms *Root, cx *Arena) (LVal, error) {
	v := forms.Bind()
	c, ok := GetCons(v)
	if !ok {
		if IsNil(v) {
			return Nil(), argErrorf(WhileSymbol, 1, 0)
		}
		return Nil(), typeErrorf("list", v)
	}
	cond := cx.Root(c.Car())
	defer cond.Release()
	body := cx.Root(c.Cdr())
	defer body.Release()
	for {
		t, err := in.evalForm(cond, cx)
		if err != nil {
			return Nil(), err
		}
		if IsNil(t) {
			return Nil(), nil
		}
		bit := newListIter(cx, body.Bind())
		_, err = in.implicitProgn(bit, cx)
		bit.Release()
		if err != nil {
			return Nil(), err
		}
	}
}

func (in *interp) opProgn(forms *Root, cx *Arena) (LVal, error) {
	it := newListIter(cx, forms.Bind())
	defer it.Release()
	return in.implicitProgn(it, cx)
}

func (in *interp) opProg1(forms *Root, cx *Arena) (LVal, error) {
	return in.evalProgx(forms, 1, Prog1Symbol, cx)
}

func (in *interp) opProg2(forms *Root, cx *Arena) (LVal, error) {
	return in.evalProgx(forms, 2, Prog2Symbol, cx)
}

// evalProgx evaluates every form and returns the nth value, failing with an
// arity error when fewer than n forms were supplied.
func (in *interp) evalProgx(forms *Root, n int, name string, cx *Arena) (LVal, error) {
	it := newListIter(cx, forms.Bind())
	defer it.Release()
	returned := cx.Root(Nil())
	defer returned.Release()
	count := 0
	for it.Next() {
		v, err := in.evalForm(it.Item(), cx)
		if err != nil {
			return Nil(), err
		}
		count++
		if count == n {
			returned.Set(v)
		}
	}
	if err := it.Err(); err != nil {
		return Nil(), err
	}
	if count < n {
		return Nil(), argErrorf(name, n, count)
	}
	return returned.Bind(), nil
}

func (in *interp) opSetq(forms *Root, cx *Arena) (LVal, error) {
	it := newListIter(cx, forms.Bind())
	defer it.Release()
	last := cx.Root(Nil())
	defer last.Release()
	count := 0
	for {
		if !it.Next() {
			if err := it.Err(); err != nil {
				return Nil(), err
			}
			if count == 0 {
				return Nil(), argErrorf(SetqSymbol, 2, 0)
			}
			return last.Bind(), nil
		}
		id, ok := GetSymbol(it.Item().Bind())
		if !ok {
			return Nil(), typeErrorf("symbol", it.Item().Bind())
		}
		if !it.Next() {
			if err := it.Err(); err != nil {
				return Nil(), err
			}
			return Nil(), argErrorf(SetqSymbol, count+2, count+1)
		}
		v, err := in.evalForm(it.Item(), cx)
		if err != nil {
			return Nil(), err
		}
		in.varSet(id, v)
		last.Set(v)
		count += 2
	}
}

func (in *interp) opDefVar(forms *Root, cx *Arena) (LVal, error) {
	return in.evalDefVar(forms, DefVarSymbol, cx)
}

func (in *interp) opDefConst(forms *Root, cx *Arena) (LVal, error) {
	return in.evalDefVar(forms, DefConstSymbol, cx)
}

// evalDefVar installs a value directly into dynamic scope, which is what
// makes the symbol special from then on.  defconst behaves identically at
// runtime.
func (in *interp) evalDefVar(forms *Root, name string, cx *Arena) (LVal, error) {
	it := newListIter(cx, forms.Bind())
	defer it.Release()
	first, err := nextOrArgError(it, name, 1, 0)
	if err != nil {
		return Nil(), err
	}
	id, ok := GetSymbol(first)
	if !ok {
		return Nil(), typeErrorf("symbol", first)
	}
	value := Nil()
	if it.Next() {
		value, err = in.evalForm(it.Item(), cx)
		if err != nil {
			return Nil(), err
		}
	} else if err := it.Err(); err != nil {
		return Nil(), err
	}
	in.env.SetVar(id, value)
	return value, nil
}

// opFunction returns its argument unevaluated unless the argument is a
// (lambda ...) form, in which case it snapshots the current lexical stack
// into a closure.  The captured environment shares the live binding cells
// of the enclosing scopes and ends with the t sentinel.
func (in *interp) opFunction(forms *Root, cx *Arena) (LVal, error) {
	v := forms.Bind()
	n, ok := ListLen(v)
	if !ok {
		return Nil(), typeErrorf("list", v)
	}
	if n != 1 {
		return Nil(), argErrorf(FunctionSymbol, 1, n)
	}
	f := mustCons(v).Car()
	c, ok := GetCons(f)
	if !ok {
		return f, nil
	}
	if op, ok := GetSymbol(c.Car()); !ok || op != symLambda {
		return f, nil
	}
	captured := cx.ListTail(in.vars.Slice(), cx.Cons(True(), Nil()))
	return cx.Cons(Symbol(symClosure), cx.Cons(captured, c.Cdr())), nil
}

// opInteractive accepts and discards an interactive declaration.
func (in *interp) opInteractive(forms *Root, cx *Arena) (LVal, error) {
	return Nil(), nil
}

func (in *interp) opCatch(forms *Root, cx *Arena) (LVal, error) {
	it := newListIter(cx, forms.Bind())
	defer it.Release()
	tagForm, err := nextOrArgError(it, CatchSymbol, 1, 0)
	if err != nil {
		return Nil(), err
	}
	tf := cx.Root(tagForm)
	defer tf.Release()
	tag, err := in.evalForm(tf, cx)
	if err != nil {
		return Nil(), err
	}
	in.env.PushCatchTag(tag)
	result, err := in.implicitProgn(it, cx)
	in.env.PopCatchTag()
	if err == nil {
		return result, nil
	}
	e := asEvalError(err)
	thrownTag, thrownVal := in.env.ReadThrown()
	if e.IsThrow() && Eq(tag, thrownTag) {
		return thrownVal, nil
	}
	return Nil(), err
}

func (in *interp) opThrow(forms *Root, cx *Arena) (LVal, error) {
	v := forms.Bind()
	n, ok := ListLen(v)
	if !ok {
		return Nil(), typeErrorf("list", v)
	}
	if n != 2 {
		return Nil(), argErrorf(ThrowSymbol, 2, n)
	}
	c := mustCons(v)
	tf := cx.Root(c.Car())
	defer tf.Release()
	vf := cx.Root(mustCons(c.Cdr()).Car())
	defer vf.Release()
	tag, err := in.evalForm(tf, cx)
	if err != nil {
		return Nil(), err
	}
	tr := cx.Root(tag)
	defer tr.Release()
	val, err := in.evalForm(vf, cx)
	if err != nil {
		return Nil(), err
	}
	tag = tr.Bind()
	if !in.env.HasCatchTag(tag) {
		return Nil(), evalErrorf("no catch for tag: %s", FormatString(tag, in.env.table))
	}
	in.env.SetThrown(tag, val)
	return Nil(), throwSignal()
}

func (in *interp) opConditionCase(forms *Root, cx *Arena) (LVal, error) {
	it := newListIter(cx, forms.Bind())
	defer it.Release()
	varForm, err := nextOrArgError(it, ConditionCaseSymbol, 2, 0)
	if err != nil {
		return Nil(), err
	}
	vr := cx.Root(varForm)
	defer vr.Release()
	bodyForm, err := nextOrArgError(it, ConditionCaseSymbol, 2, 1)
	if err != nil {
		return Nil(), err
	}
	bf := cx.Root(bodyForm)
	defer bf.Release()
	result, err := in.evalForm(bf, cx)
	if err == nil {
		return result, nil
	}
	e := asEvalError(err)
	if e.IsThrow() {
		// condition-case never intercepts throws
		return Nil(), err
	}
	for it.Next() {
		handler := it.Item().Bind()
		if IsNil(handler) {
			continue
		}
		hc, ok := GetCons(handler)
		if !ok {
			return Nil(), evalErrorf("invalid condition handler: %s", FormatString(handler, in.env.table))
		}
		if cerr := in.checkCondition(hc.Car()); cerr != nil {
			return Nil(), cerr
		}
		return in.runHandler(vr, hc.Cdr(), e, cx)
	}
	if herr := it.Err(); herr != nil {
		return Nil(), herr
	}
	return Nil(), err
}

// checkCondition validates a handler's condition: the symbol error, or a
// list whose elements are the symbols error or debug.  Every structurally
// valid handler matches; non-error conditions are not supported.
func (in *interp) checkCondition(cond LVal) error {
	if id, ok := GetSymbol(cond); ok {
		if id == symError {
			return nil
		}
		return evalErrorf("unsupported condition: %s", in.env.SymbolName(id))
	}
	c, ok := GetCons(cond)
	if !ok {
		return evalErrorf("invalid condition handler: %s", FormatString(cond, in.env.table))
	}
	for {
		id, ok := GetSymbol(c.Car())
		if !ok || (id != symError && id != symDebug) {
			return evalErrorf("unsupported condition: %s", FormatString(c.Car(), in.env.table))
		}
		rest := c.Cdr()
		if IsNil(rest) {
			return nil
		}
		if c, ok = GetCons(rest); !ok {
			return typeErrorf("list", rest)
		}
	}
}

// runHandler evaluates a matched condition-case handler body with the
// handler variable, when it is a symbol, bound to (error MESSAGE) in a new
// lexical frame.  A dotted handler body yields nil.
func (in *interp) runHandler(vr *Root, body LVal, e *EvalError, cx *Arena) (LVal, error) {
	if _, ok := GetCons(body); !ok {
		return Nil(), nil
	}
	pushed := false
	if _, ok := GetSymbol(vr.Bind()); ok {
		errVal := cx.List(Symbol(symError), String(e.Error()))
		in.vars.Append(cx.Cons(vr.Bind(), errVal))
		pushed = true
	}
	it := newListIter(cx, body)
	result, err := in.implicitProgn(it, cx)
	it.Release()
	if pushed {
		in.vars.Truncate(in.vars.Len() - 1)
	}
	return result, err
}
