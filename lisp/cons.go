package lisp

// Cons is a heap allocated pair cell.  Cells are mutable by default; the
// trusted literal loader freezes cells holding quoted program data, after
// which every mutation attempt fails with ErrImmutable.  Cons cells are
// created through an Arena and become invalid when a collection sweeps
// them; reading a swept cell panics, it is always a rooting bug in the
// caller and never a user visible condition.
type Cons struct {
	gcHeader
	mutable bool
	car     LVal
	cdr     LVal
}

// Car returns the cell's car.
func (c *Cons) Car() LVal {
	c.checkLive()
	return c.car
}

// Cdr returns the cell's cdr.
func (c *Cons) Cdr() LVal {
	c.checkLive()
	return c.cdr
}

// SetCar writes the cell's car.  SetCar fails with ErrImmutable if the cell
// has been frozen.
func (c *Cons) SetCar(v LVal) error {
	c.checkLive()
	if !c.mutable {
		return ErrImmutable
	}
	c.car = v
	return nil
}

// SetCdr writes the cell's cdr.  SetCdr fails with ErrImmutable if the cell
// has been frozen.
func (c *Cons) SetCdr(v LVal) error {
	c.checkLive()
	if !c.mutable {
		return ErrImmutable
	}
	c.cdr = v
	return nil
}

func (c *Cons) freeze() {
	c.mutable = false
}

func (c *Cons) checkLive() {
	if c.dead {
		panic("lisp: cons cell used after collection")
	}
}

func (c *Cons) trace(push func(LVal)) {
	push(c.car)
	push(c.cdr)
}

func (c *Cons) poison() {
	c.dead = true
	c.car = LVal{}
	c.cdr = LVal{}
}
