package lisp

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/VitalyAnkh/rune/symbol"
)

// Format writes the printed representation of v to w, rendering symbols
// through t.  Right-nested cons chains ending in nil print as bare lists
// and any other chain prints with a dotted tail.  Vectors print as
// [...], records as #s(...).
func Format(w io.Writer, v LVal, t symbol.Table) error {
	f := &formatter{w: w, t: symbol.ResolveUnknown("", t)}
	f.format(v)
	return f.err
}

// FormatString renders v as a string through t.
func FormatString(v LVal, t symbol.Table) string {
	var b strings.Builder
	Format(&b, v, t)
	return b.String()
}

type formatter struct {
	w   io.Writer
	t   symbol.Table
	err error
}

func (f *formatter) string(s string) {
	if f.err == nil {
		_, f.err = io.WriteString(f.w, s)
	}
}

func (f *formatter) format(v LVal) {
	switch v.Type {
	case LNil:
		f.string(NilSymbol)
	case LTrue:
		f.string(TrueSymbol)
	case LInt:
		f.string(strconv.FormatInt(int64(v.Data), 10))
	case LFloat:
		f.string(formatFloat(math.Float64frombits(v.Data)))
	case LString:
		f.string(strconv.Quote(v.Native.(string)))
	case LSymbol:
		s, _ := f.t.Symbol(symbol.ID(v.Data))
		f.string(s)
	case LCons:
		f.formatCons(v.Native.(*Cons))
	case LVector:
		f.formatCells("[", v.Native.(*Vector), "]")
	case LRecord:
		f.formatCells("#s(", &v.Native.(*Record).Vector, ")")
	case LBuiltin:
		f.string("#<subr ")
		f.string(v.Native.(*Builtin).Name)
		f.string(">")
	default:
		f.string("#<invalid>")
	}
}

func (f *formatter) formatCons(c *Cons) {
	f.string("(")
	for {
		f.format(c.Car())
		cdr := c.Cdr()
		if IsNil(cdr) {
			break
		}
		next, ok := GetCons(cdr)
		if !ok {
			f.string(" . ")
			f.format(cdr)
			break
		}
		f.string(" ")
		c = next
	}
	f.string(")")
}

func (f *formatter) formatCells(open string, v *Vector, closing string) {
	f.string(open)
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			f.string(" ")
		}
		f.format(v.At(i))
	}
	f.string(closing)
}

// formatFloat renders floats so they never read back as integers.
func formatFloat(x float64) string {
	switch {
	case math.IsInf(x, 1):
		return "1.0e+INF"
	case math.IsInf(x, -1):
		return "-1.0e+INF"
	case math.IsNaN(x):
		return "0.0e+NaN"
	}
	s := strconv.FormatFloat(x, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
