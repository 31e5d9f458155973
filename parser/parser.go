/*
Package parser reads lisp source text into arena allocated values.

	expr   := <atom> | <list> | <vector> | <record> | '\'' <expr> | "#'" <expr>
	list   := '(' <expr>* ')' | '(' <expr>+ '.' <expr> ')'
	vector := '[' <expr>* ']'
	record := "#s(" <expr>+ ')'
	atom   := <number> | <string> | <symbol>
	number := /[+-]?[0-9]+/ <fraction>? <exponent>?
	fraction := '.' /[0-9]+/
	exponent := /[eE][+-]?[0-9]+/
	string := '"' <strcontent> '"'

The names nil and t read as the nil and true constants, '<expr> reads as
(quote <expr>), and #'<expr> reads as (function <expr>).  Heap cells are
allocated in the caller's arena and symbols are interned in the caller's
table.
*/
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/VitalyAnkh/rune/lisp"
	"github.com/VitalyAnkh/rune/symbol"
	parsec "github.com/prataprc/goparsec"
)

// ErrPartial reports source text that stops in the middle of an expression.
// A line editor can treat it as a continuation signal and collect more
// input before parsing again.
var ErrPartial = errors.New("parser: incomplete expression")

// Parse reads the first expression from text.  The expression is returned
// as a registered root, so it survives collections at later evaluation
// safepoints, and the caller must release it.  The unread remainder of text
// is returned alongside.  A nil root with a nil error means text held no
// expressions (only whitespace or comments).
func Parse(cx *lisp.Arena, table symbol.Table, text []byte) (*lisp.Root, []byte, error) {
	r := newReader(cx, table)
	s := parsec.NewScanner(text)
	for {
		node, next := r.expr(s)
		if node == nil {
			if err := classifyRest(text[s.GetCursor():]); err != nil {
				return nil, text[s.GetCursor():], err
			}
			return nil, nil, nil
		}
		s = next
		v, ok, err := nodeValue(node)
		if err != nil {
			return nil, text[s.GetCursor():], err
		}
		if !ok {
			continue // comment
		}
		return cx.Root(v), text[s.GetCursor():], nil
	}
}

// ParseAll reads every expression in text into a single rooted sequence.
// The caller must release the sequence.
func ParseAll(cx *lisp.Arena, table symbol.Table, text []byte) (*lisp.RootVec, error) {
	return parseAll(cx, table, text, false)
}

// ParseConst reads like ParseAll and freezes every expression it returns.
// Frozen cells reject later mutation, the contract for literal program data
// loaded from a trusted source.
func ParseConst(cx *lisp.Arena, table symbol.Table, text []byte) (*lisp.RootVec, error) {
	return parseAll(cx, table, text, true)
}

func parseAll(cx *lisp.Arena, table symbol.Table, text []byte, freeze bool) (*lisp.RootVec, error) {
	r := newReader(cx, table)
	vs := cx.RootVec()
	s := parsec.NewScanner(text)
	for {
		node, next := r.expr(s)
		if node == nil {
			if err := classifyRest(text[s.GetCursor():]); err != nil {
				vs.Release()
				return nil, err
			}
			return vs, nil
		}
		s = next
		v, ok, err := nodeValue(node)
		if err != nil {
			vs.Release()
			return nil, err
		}
		if !ok {
			continue
		}
		if freeze {
			lisp.Freeze(v)
		}
		vs.Append(v)
	}
}

// reader holds the grammar alongside the arena and symbol table its node
// callbacks allocate through.
type reader struct {
	cx    *lisp.Arena
	table symbol.Table
	expr  parsec.Parser
}

func newReader(cx *lisp.Arena, table symbol.Table) *reader {
	r := &reader{cx: cx, table: table}
	r.expr = r.grammar()
	return r
}

func (r *reader) grammar() parsec.Parser {
	openP := parsec.Atom("(", "OPENP")
	closeP := parsec.Atom(")", "CLOSEP")
	openV := parsec.Atom("[", "OPENV")
	closeV := parsec.Atom("]", "CLOSEV")
	openR := parsec.Atom("#s(", "OPENR")
	quote := parsec.Atom("'", "QUOTE")
	function := parsec.Atom("#'", "FUNCTION")
	dot := parsec.Atom(".", "DOT")
	comment := parsec.Token(`;([^\n]*[^\s])?`, "COMMENT")
	number := parsec.Token(`[+-]?[0-9]+([.][0-9]+)?([eE][+-]?[0-9]+)?`, "NUMBER")
	symbol := parsec.Token(`:?(?:\pL|[_+\-*/\=<>!&~%?])(?:\pL|[0-9]|[_+\-*/\=<>!&~%?])*`, "SYMBOL")
	term := parsec.OrdChoice(r.astTerm, // terminal token
		parsec.String(),
		number,
		symbol, // symbol comes last because it swallows leading signs
	)
	var expr parsec.Parser // forward declaration allows for recursive parsing
	items := parsec.Kleene(nil, &expr)
	list := parsec.And(r.astList, openP, items, closeP)
	pair := parsec.And(r.astList, openP, items, dot, &expr, closeP)
	vector := parsec.And(r.astVector, openV, items, closeV)
	record := parsec.And(r.astRecord, openR, items, closeP)
	quoted := parsec.And(r.astQuote, quote, &expr)
	funcquoted := parsec.And(r.astFunction, function, &expr)
	expr = parsec.OrdChoice(nil, comment, term, list, pair, quoted, funcquoted, vector, record)
	return expr
}

// parseErr carries a syntax error through the parsec node tree so it can
// surface from Parse as a Go error.
type parseErr struct {
	err error
}

func (r *reader) astTerm(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = cleanParsecNodeList(nodes)
	switch term := nodes[0].(type) {
	case string:
		s, err := strconv.Unquote(term)
		if err != nil {
			return parseErr{fmt.Errorf("parser: invalid string literal: %s", term)}
		}
		return lisp.String(s)
	case *parsec.Terminal:
		switch term.Name {
		case "NUMBER":
			return numberNode(term.Value)
		case "SYMBOL":
			switch term.Value {
			case lisp.NilSymbol:
				return lisp.Nil()
			case lisp.TrueSymbol:
				return lisp.True()
			}
			return lisp.Symbol(r.table.Intern(term.Value))
		}
	}
	return parseErr{fmt.Errorf("parser: unexpected term %v", nodes[0])}
}

func numberNode(text string) parsec.ParsecNode {
	if strings.ContainsAny(text, ".eE") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return parseErr{fmt.Errorf("parser: invalid number literal: %s", text)}
		}
		return lisp.Float(f)
	}
	x, err := strconv.Atoi(text)
	if err != nil {
		return parseErr{fmt.Errorf("parser: invalid number literal: %s", text)}
	}
	return lisp.Int(x)
}

func (r *reader) astList(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = cleanParsecNodeList(nodes)
	if e := firstErr(nodes); e != nil {
		return e
	}
	var cells []lisp.LVal
	tail := lisp.Nil()
	dotted := false
	for _, n := range nodes {
		switch n := n.(type) {
		case lisp.LVal:
			if dotted {
				tail = n
			} else {
				cells = append(cells, n)
			}
		case *parsec.Terminal:
			if n.Name == "DOT" {
				dotted = true
			}
		}
	}
	if dotted && len(cells) == 0 {
		return parseErr{errors.New("parser: dotted form with no leading expression")}
	}
	if len(cells) == 0 {
		return lisp.Nil() // () reads as nil
	}
	return r.cx.ListTail(cells, tail)
}

func (r *reader) astVector(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = cleanParsecNodeList(nodes)
	if e := firstErr(nodes); e != nil {
		return e
	}
	return r.cx.Vector(lvalCells(nodes))
}

func (r *reader) astRecord(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = cleanParsecNodeList(nodes)
	if e := firstErr(nodes); e != nil {
		return e
	}
	cells := lvalCells(nodes)
	if len(cells) == 0 {
		return parseErr{errors.New("parser: record literal needs a type tag")}
	}
	return r.cx.Record(cells)
}

func (r *reader) astQuote(nodes []parsec.ParsecNode) parsec.ParsecNode {
	return r.sugar("'", lisp.QuoteSymbol, nodes)
}

func (r *reader) astFunction(nodes []parsec.ParsecNode) parsec.ParsecNode {
	return r.sugar("#'", lisp.FunctionSymbol, nodes)
}

func (r *reader) sugar(mark, name string, nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = cleanParsecNodeList(nodes)
	if e := firstErr(nodes); e != nil {
		return e
	}
	cells := lvalCells(nodes)
	if len(cells) != 1 {
		return parseErr{fmt.Errorf("parser: %s must be followed by one expression", mark)}
	}
	return r.cx.List(lisp.Symbol(r.table.Intern(name)), cells[0])
}

func lvalCells(nodes []parsec.ParsecNode) []lisp.LVal {
	var cells []lisp.LVal
	for _, n := range nodes {
		if v, ok := n.(lisp.LVal); ok {
			cells = append(cells, v)
		}
	}
	return cells
}

func firstErr(nodes []parsec.ParsecNode) parsec.ParsecNode {
	for _, n := range nodes {
		if e, ok := n.(parseErr); ok {
			return e
		}
	}
	return nil
}

func cleanParsecNodeList(lis []parsec.ParsecNode) []parsec.ParsecNode {
	var nodes []parsec.ParsecNode
	for _, n := range lis {
		switch node := n.(type) {
		case []parsec.ParsecNode:
			nodes = append(nodes, cleanParsecNodeList(node)...)
		default:
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// nodeValue extracts the parsed value from a grammar node.  Comment nodes
// report ok false, and syntax errors carried through the tree surface here.
func nodeValue(root parsec.ParsecNode) (v lisp.LVal, ok bool, err error) {
	nodes := cleanParsecNodeList([]parsec.ParsecNode{root})
	if len(nodes) == 0 {
		return lisp.Nil(), false, nil
	}
	switch n := nodes[0].(type) {
	case parseErr:
		return lisp.Nil(), false, n.err
	case lisp.LVal:
		return n, true, nil
	}
	return lisp.Nil(), false, nil
}

// classifyRest inspects text the grammar could not consume.  Whitespace and
// comments classify as a clean end.  Text that more input could complete
// (open brackets, an unterminated string, trailing quote marks) classifies
// as ErrPartial; everything else is a syntax error.
func classifyRest(rest []byte) error {
	depth := 0
	inString := false
	escaped := false
	sawSugar := false
	sawAtom := false
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case ' ', '\t', '\r', '\n':
		case ';':
			for i+1 < len(rest) && rest[i+1] != '\n' {
				i++
			}
		case '"':
			inString = true
		case '(', '[':
			depth++
		case ')', ']':
			if depth == 0 {
				return fmt.Errorf("parser: unexpected %q", string(c))
			}
			depth--
		case '\'', '#':
			sawSugar = true
		default:
			sawAtom = true
		}
	}
	if inString || depth > 0 {
		return ErrPartial
	}
	if sawAtom {
		return fmt.Errorf("parser: unexpected text %q", strings.TrimSpace(string(rest)))
	}
	if sawSugar {
		return ErrPartial
	}
	return nil
}
