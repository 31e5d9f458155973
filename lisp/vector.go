package lisp

// Vector is a heap allocated fixed-length cell array.  Like Cons cells,
// vectors carry a one-way constant flag: reads always succeed while
// mutation goes through TryMut, which fails once the vector is frozen.
type Vector struct {
	gcHeader
	isConst bool
	cells   []LVal
}

// Len returns the number of cells.
func (v *Vector) Len() int {
	v.checkLive()
	return len(v.cells)
}

// At returns the cell at index i.  At panics if i is out of range, exactly
// like a slice access.
func (v *Vector) At(i int) LVal {
	v.checkLive()
	return v.cells[i]
}

// TryMut returns a mutable view of the vector, or ErrImmutable if the
// vector has been frozen.  All writes go through the returned view.
func (v *Vector) TryMut() (MutVec, error) {
	v.checkLive()
	if v.isConst {
		return MutVec{}, ErrImmutable
	}
	return MutVec{v}, nil
}

// MakeConst permanently freezes the vector.  MakeConst is idempotent.
func (v *Vector) MakeConst() {
	v.checkLive()
	v.isConst = true
}

func (v *Vector) checkLive() {
	if v.dead {
		panic("lisp: vector used after collection")
	}
}

func (v *Vector) trace(push func(LVal)) {
	for _, cell := range v.cells {
		push(cell)
	}
}

func (v *Vector) poison() {
	v.dead = true
	v.cells = nil
}

// MutVec is a write capability for an unfrozen vector, obtained from
// TryMut.  The zero MutVec is invalid.
type MutVec struct {
	v *Vector
}

// Set writes the cell at index i.
func (m MutVec) Set(i int, w LVal) {
	m.v.checkLive()
	m.v.cells[i] = w
}

// Record is a vector carrying a leading type discriminator cell.  Records
// print as #s(TYPE FIELDS...) and compare element-wise like vectors.
type Record struct {
	Vector
}

// TypeName returns the record's type discriminator cell.
func (r *Record) TypeName() LVal {
	if r.Len() == 0 {
		return Nil()
	}
	return r.At(0)
}
