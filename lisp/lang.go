package lisp

import "github.com/VitalyAnkh/rune/symbol"

// NilSymbol and TrueSymbol are the printed names of the nil and t
// constants.  The reader maps both names directly onto the constants so
// neither ever appears as a live symbol value.
const (
	NilSymbol  = "nil"
	TrueSymbol = "t"
)

// KeywordPrefix marks self-evaluating symbols.
const KeywordPrefix = ":"

// Markers recognized inside closure argument lists.
const (
	// OptArgSymbol begins the optional argument names.
	OptArgSymbol = "&optional"
	// VarArgSymbol precedes the single rest argument name.
	VarArgSymbol = "&rest"
)

// ClosureSymbol tags a cons as a callable closure and MacroSymbol tags a
// function binding as a macro.
const (
	ClosureSymbol = "closure"
	MacroSymbol   = "macro"
	LambdaSymbol  = "lambda"
)

// Special form names handled directly by the evaluator.
const (
	QuoteSymbol         = "quote"
	LetSymbol           = "let"
	LetSeqSymbol        = "let*"
	IfSymbol            = "if"
	AndSymbol           = "and"
	OrSymbol            = "or"
	CondSymbol          = "cond"
	WhileSymbol         = "while"
	PrognSymbol         = "progn"
	Prog1Symbol         = "prog1"
	Prog2Symbol         = "prog2"
	SetqSymbol          = "setq"
	DefVarSymbol        = "defvar"
	DefConstSymbol      = "defconst"
	FunctionSymbol      = "function"
	InteractiveSymbol   = "interactive"
	CatchSymbol         = "catch"
	ThrowSymbol         = "throw"
	ConditionCaseSymbol = "condition-case"
)

// Condition names recognized by condition-case handlers.
const (
	ErrorSymbol = "error"
	DebugSymbol = "debug"
)

// Interned ids for the names above.  These are fixed during package init
// against the global table, so every table copied from it resolves them.
var (
	symQuote         = symbol.Intern(QuoteSymbol)
	symLet           = symbol.Intern(LetSymbol)
	symLetSeq        = symbol.Intern(LetSeqSymbol)
	symIf            = symbol.Intern(IfSymbol)
	symAnd           = symbol.Intern(AndSymbol)
	symOr            = symbol.Intern(OrSymbol)
	symCond          = symbol.Intern(CondSymbol)
	symWhile         = symbol.Intern(WhileSymbol)
	symProgn         = symbol.Intern(PrognSymbol)
	symProg1         = symbol.Intern(Prog1Symbol)
	symProg2         = symbol.Intern(Prog2Symbol)
	symSetq          = symbol.Intern(SetqSymbol)
	symDefVar        = symbol.Intern(DefVarSymbol)
	symDefConst      = symbol.Intern(DefConstSymbol)
	symFunction      = symbol.Intern(FunctionSymbol)
	symInteractive   = symbol.Intern(InteractiveSymbol)
	symCatch         = symbol.Intern(CatchSymbol)
	symThrow         = symbol.Intern(ThrowSymbol)
	symConditionCase = symbol.Intern(ConditionCaseSymbol)
	symClosure       = symbol.Intern(ClosureSymbol)
	symMacro         = symbol.Intern(MacroSymbol)
	symLambda        = symbol.Intern(LambdaSymbol)
	symOptArg        = symbol.Intern(OptArgSymbol)
	symVarArg        = symbol.Intern(VarArgSymbol)
	symError         = symbol.Intern(ErrorSymbol)
	symDebug         = symbol.Intern(DebugSymbol)
)
