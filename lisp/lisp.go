// Package lisp implements the evaluation core of the rune runtime: a tagged
// object model backed by a garbage collected arena, a rooted reference
// discipline that keeps live values visible to the collector during
// evaluation, and a tree-walking evaluator with lexical and dynamic scope,
// closures, and non-local control transfer.
package lisp

import (
	"math"

	"github.com/VitalyAnkh/rune/symbol"
)

// LType describes the type of an LVal.
type LType uint8

// Possible LType values.  Atomic types come first, heap resident types
// follow LCons.
const (
	LNil LType = iota
	LTrue
	LInt
	LFloat
	LString
	LSymbol
	LCons
	LVector
	LRecord
	LBuiltin
	lTypeMax
)

var typeNames = [lTypeMax]string{
	LNil:     "nil",
	LTrue:    "t",
	LInt:     "integer",
	LFloat:   "float",
	LString:  "string",
	LSymbol:  "symbol",
	LCons:    "cons",
	LVector:  "vector",
	LRecord:  "record",
	LBuiltin: "subr",
}

func (t LType) String() string {
	if t < lTypeMax {
		return typeNames[t]
	}
	return "invalid"
}

// LVal is a single lisp value.  The zero LVal is nil.  Atomic values (nil,
// t, numbers, strings, symbols) live entirely inside the LVal and never
// touch the arena.  Heap values hold a pointer to an arena managed cell in
// Native.
type LVal struct {
	// Type describes the data stored in the LVal.
	Type LType
	// Data holds numeric values: int64 bits for LInt, float64 bits for
	// LFloat and the symbol.ID for LSymbol.
	Data uint64
	// Native holds a string for LString, a *Cons for LCons, a *Vector for
	// LVector, a *Record for LRecord and a *Builtin for LBuiltin.
	Native interface{}
}

// Nil returns the nil value.
func Nil() LVal {
	return LVal{}
}

// True returns the t value.
func True() LVal {
	return LVal{Type: LTrue}
}

// Bool returns True() if b, otherwise Nil().
func Bool(b bool) LVal {
	if b {
		return True()
	}
	return Nil()
}

// Int returns an integer value.
func Int(x int) LVal {
	return LVal{Type: LInt, Data: uint64(int64(x))}
}

// Float returns a floating point value.
func Float(x float64) LVal {
	return LVal{Type: LFloat, Data: math.Float64bits(x)}
}

// String returns a string value.
func String(s string) LVal {
	return LVal{Type: LString, Native: s}
}

// Symbol returns a symbol value for the interned id.
func Symbol(id symbol.ID) LVal {
	return LVal{Type: LSymbol, Data: uint64(id)}
}

// BuiltinVal returns a function value wrapping the native function b.
// Builtins are static program data and are not managed by any arena.
func BuiltinVal(b *Builtin) LVal {
	return LVal{Type: LBuiltin, Native: b}
}

// IsNil returns true if v is nil.
func IsNil(v LVal) bool {
	return v.Type == LNil
}

// Truthy returns true if v is anything other than nil.
func Truthy(v LVal) bool {
	return v.Type != LNil
}

// IsList returns true if v is a proper or improper list head: a cons or nil.
func IsList(v LVal) bool {
	return v.Type == LNil || v.Type == LCons
}

// GetInt extracts an integer from v.
func GetInt(v LVal) (int, bool) {
	if v.Type != LInt {
		return 0, false
	}
	return int(int64(v.Data)), true
}

// GetFloat extracts a floating point number from v.
func GetFloat(v LVal) (float64, bool) {
	if v.Type != LFloat {
		return 0, false
	}
	return math.Float64frombits(v.Data), true
}

// GetString extracts a string from v.
func GetString(v LVal) (string, bool) {
	if v.Type != LString {
		return "", false
	}
	return v.Native.(string), true
}

// GetSymbol extracts a symbol id from v.
func GetSymbol(v LVal) (symbol.ID, bool) {
	if v.Type != LSymbol {
		return 0, false
	}
	return symbol.ID(v.Data), true
}

// GetCons extracts a cons cell from v.
func GetCons(v LVal) (*Cons, bool) {
	if v.Type != LCons {
		return nil, false
	}
	return v.Native.(*Cons), true
}

// GetVector extracts a vector from v.
func GetVector(v LVal) (*Vector, bool) {
	if v.Type != LVector {
		return nil, false
	}
	return v.Native.(*Vector), true
}

// GetRecord extracts a record from v.
func GetRecord(v LVal) (*Record, bool) {
	if v.Type != LRecord {
		return nil, false
	}
	return v.Native.(*Record), true
}

// GetBuiltin extracts a native function from v.
func GetBuiltin(v LVal) (*Builtin, bool) {
	if v.Type != LBuiltin {
		return nil, false
	}
	return v.Native.(*Builtin), true
}

// Eq reports identity equality: atoms are identical when their type and
// contents match, heap values only when they are the same cell.  Catch tags
// are matched with Eq.
func Eq(a, b LVal) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case LNil, LTrue:
		return true
	case LInt, LFloat, LSymbol:
		return a.Data == b.Data
	case LString:
		return a.Native.(string) == b.Native.(string)
	default:
		return a.Native == b.Native
	}
}

// Equal reports structural equality.  Cons equality recurses through cars
// and iterates the cdr spine so arbitrarily long lists do not overflow the
// goroutine stack.  Vector and record equality is element-wise.
func Equal(a, b LVal) bool {
	for {
		if a.Type != b.Type {
			return false
		}
		switch a.Type {
		case LCons:
			ca := a.Native.(*Cons)
			cb := b.Native.(*Cons)
			if ca == cb {
				return true
			}
			if !Equal(ca.Car(), cb.Car()) {
				return false
			}
			a = ca.Cdr()
			b = cb.Cdr()
		case LVector:
			return vectorEqual(a.Native.(*Vector), b.Native.(*Vector))
		case LRecord:
			return vectorEqual(&a.Native.(*Record).Vector, &b.Native.(*Record).Vector)
		default:
			return Eq(a, b)
		}
	}
}

func vectorEqual(a, b *Vector) bool {
	if a == b {
		return true
	}
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if !Equal(a.At(i), b.At(i)) {
			return false
		}
	}
	return true
}

// ListLen computes the length of the proper list v.  ListLen returns false
// if v is not a proper list.
func ListLen(v LVal) (int, bool) {
	n := 0
	for !IsNil(v) {
		c, ok := GetCons(v)
		if !ok {
			return n, false
		}
		v = c.Cdr()
		n++
	}
	return n, true
}
