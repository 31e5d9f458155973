package lisp

// The arena owns every heap allocated lisp value.  Allocation never
// collects; collection happens only at explicit safepoints (top level Eval
// entry and closure invocation) and only reclaims cells unreachable from
// the registered roots.  Swept cells are poisoned so that a reference kept
// across a collection without a root fails loudly instead of reading
// garbage.

// DefaultCollectThreshold is the number of allocations after which a
// non-forced Collect call actually runs a mark/sweep pass.
const DefaultCollectThreshold = 2048

type gcHeader struct {
	marked bool
	dead   bool
}

func (h *gcHeader) header() *gcHeader { return h }

// gcObject is implemented by every arena managed cell type.
type gcObject interface {
	header() *gcHeader
	// trace pushes every LVal directly reachable from the object.
	trace(push func(LVal))
	// poison invalidates the object after a sweep.
	poison()
}

// rooted is implemented by stack registered slots the mark phase traces.
type rooted interface {
	traceRoot(push func(LVal))
}

// Arena owns all garbage collected allocations for one runtime instance.
type Arena struct {
	objects     []gcObject
	roots       []rooted
	work        []gcObject
	allocs      int
	threshold   int
	collections uint64
	lastSwept   int
}

// NewArena returns an empty arena using DefaultCollectThreshold.
func NewArena() *Arena {
	return &Arena{threshold: DefaultCollectThreshold}
}

// SetCollectThreshold adjusts the allocation count that triggers a
// non-forced collection.  Values below 1 force a pass on every safepoint.
func (a *Arena) SetCollectThreshold(n int) {
	a.threshold = n
}

func (a *Arena) track(o gcObject) {
	a.objects = append(a.objects, o)
	a.allocs++
}

// Cons allocates a mutable pair cell.
func (a *Arena) Cons(car, cdr LVal) LVal {
	c := &Cons{mutable: true, car: car, cdr: cdr}
	a.track(c)
	return LVal{Type: LCons, Native: c}
}

// Vector allocates a vector holding a copy of cells.
func (a *Arena) Vector(cells []LVal) LVal {
	cs := make([]LVal, len(cells))
	copy(cs, cells)
	v := &Vector{cells: cs}
	a.track(v)
	return LVal{Type: LVector, Native: v}
}

// Record allocates a record holding a copy of cells.  The first cell is the
// record's type discriminator.
func (a *Arena) Record(cells []LVal) LVal {
	cs := make([]LVal, len(cells))
	copy(cs, cells)
	r := &Record{Vector{cells: cs}}
	a.track(r)
	return LVal{Type: LRecord, Native: r}
}

// List allocates a proper list of the given values.
func (a *Arena) List(vs ...LVal) LVal {
	return a.ListTail(vs, Nil())
}

// ListTail allocates a list of the given values ending in tail rather than
// nil.
func (a *Arena) ListTail(vs []LVal, tail LVal) LVal {
	v := tail
	for i := len(vs) - 1; i >= 0; i-- {
		v = a.Cons(vs[i], v)
	}
	return v
}

// Clone produces a deep structural copy of v with every heap cell allocated
// in a.  The copy is mutable even where v was frozen.  Cloning into a
// longer lived arena is how a value outlives collections of the arena that
// built it; the global function registry clones installed closures for the
// same reason.
func (a *Arena) Clone(v LVal) LVal {
	switch v.Type {
	case LCons:
		var cars []LVal
		for {
			c, ok := GetCons(v)
			if !ok {
				break
			}
			cars = append(cars, a.Clone(c.Car()))
			v = c.Cdr()
		}
		return a.ListTail(cars, a.Clone(v))
	case LVector:
		return a.Vector(a.cloneCells(v.Native.(*Vector)))
	case LRecord:
		return a.Record(a.cloneCells(&v.Native.(*Record).Vector))
	default:
		return v
	}
}

func (a *Arena) cloneCells(v *Vector) []LVal {
	cells := make([]LVal, v.Len())
	for i := range cells {
		cells[i] = a.Clone(v.At(i))
	}
	return cells
}

// Freeze permanently marks every cons and vector reachable from v constant.
// Freeze is idempotent and safe on shared and cyclic structure.  Only the
// loader of literal data freezes cells; evaluation never does.
func Freeze(v LVal) {
	work := []LVal{v}
	for len(work) > 0 {
		v := work[len(work)-1]
		work = work[:len(work)-1]
		switch v.Type {
		case LCons:
			c := v.Native.(*Cons)
			if !c.mutable {
				continue
			}
			c.freeze()
			work = append(work, c.Car(), c.Cdr())
		case LVector:
			work = freezeVector(v.Native.(*Vector), work)
		case LRecord:
			work = freezeVector(&v.Native.(*Record).Vector, work)
		}
	}
}

func freezeVector(v *Vector, work []LVal) []LVal {
	if v.isConst {
		return work
	}
	v.MakeConst()
	return append(work, v.cells...)
}

// Root registers a single-value root slot holding v and returns it.  Roots
// are strictly scoped: they must be released in the reverse of the order
// they were created.
func (a *Arena) Root(v LVal) *Root {
	r := &Root{a: a, v: v}
	a.roots = append(a.roots, r)
	return r
}

// RootVec registers a root slot holding an ordered sequence of values.  The
// evaluator uses RootVec for its lexical binding stack and argument lists.
func (a *Arena) RootVec(vs ...LVal) *RootVec {
	r := &RootVec{a: a}
	r.vals = append(r.vals, vs...)
	a.roots = append(a.roots, r)
	return r
}

func (a *Arena) rootEnv(env *Environment) *envRoot {
	r := &envRoot{a: a, env: env}
	a.roots = append(a.roots, r)
	return r
}

func (a *Arena) unroot(r rooted) {
	n := len(a.roots) - 1
	if n < 0 || a.roots[n] != r {
		panic("lisp: root released out of order")
	}
	a.roots[n] = nil
	a.roots = a.roots[:n]
}

// Root is a stack registered slot holding one value.  The collector traces
// the slot's current contents, so a value stored in a live root survives
// any number of collections.
type Root struct {
	a *Arena
	v LVal
}

// Bind reads the slot.
func (r *Root) Bind() LVal {
	return r.v
}

// Set replaces the slot's contents.
func (r *Root) Set(v LVal) {
	r.v = v
}

// Release removes the root from the arena's root stack.  Release panics if
// the root is not the most recently registered live root.
func (r *Root) Release() {
	r.a.unroot(r)
}

func (r *Root) traceRoot(push func(LVal)) {
	push(r.v)
}

// RootVec is a stack registered slot holding an ordered sequence of values.
type RootVec struct {
	a    *Arena
	vals []LVal
}

// Len returns the number of values held.
func (r *RootVec) Len() int {
	return len(r.vals)
}

// At returns the value at index i.
func (r *RootVec) At(i int) LVal {
	return r.vals[i]
}

// Append adds values at the end of the sequence.
func (r *RootVec) Append(vs ...LVal) {
	r.vals = append(r.vals, vs...)
}

// Truncate drops every value at index n and beyond.
func (r *RootVec) Truncate(n int) {
	tail := r.vals[n:]
	for i := range tail {
		tail[i] = LVal{}
	}
	r.vals = r.vals[:n]
}

// Slice returns the underlying value sequence.  The slice remains rooted
// only while the RootVec is live and must not be retained past Release.
func (r *RootVec) Slice() []LVal {
	return r.vals
}

// Release removes the root from the arena's root stack.
func (r *RootVec) Release() {
	r.a.unroot(r)
}

func (r *RootVec) traceRoot(push func(LVal)) {
	for _, v := range r.vals {
		push(v)
	}
}

type envRoot struct {
	a   *Arena
	env *Environment
}

func (r *envRoot) Release() {
	r.a.unroot(r)
}

func (r *envRoot) traceRoot(push func(LVal)) {
	r.env.trace(push)
}

// Collect runs a stop-the-world mark/sweep pass.  When force is false the
// pass is skipped unless allocations since the last pass reached the
// arena's threshold.  The mark phase walks an explicit worklist so deep or
// long structures cannot overflow the goroutine stack.
func (a *Arena) Collect(force bool) {
	if !force && a.allocs < a.threshold {
		return
	}
	work := a.work[:0]
	push := func(v LVal) {
		if o := heapObject(v); o != nil && !o.header().marked {
			work = append(work, o)
		}
	}
	for _, r := range a.roots {
		r.traceRoot(push)
	}
	for len(work) > 0 {
		o := work[len(work)-1]
		work = work[:len(work)-1]
		h := o.header()
		if h.marked {
			continue
		}
		h.marked = true
		o.trace(push)
	}
	a.work = work[:0]

	live := a.objects[:0]
	for _, o := range a.objects {
		h := o.header()
		if h.marked {
			h.marked = false
			live = append(live, o)
			continue
		}
		o.poison()
	}
	a.lastSwept = len(a.objects) - len(live)
	tail := a.objects[len(live):]
	for i := range tail {
		tail[i] = nil
	}
	a.objects = live
	a.allocs = 0
	a.collections++
}

func heapObject(v LVal) gcObject {
	switch v.Type {
	case LCons:
		return v.Native.(*Cons)
	case LVector:
		return v.Native.(*Vector)
	case LRecord:
		return v.Native.(*Record)
	default:
		return nil
	}
}

// ArenaStats describes an arena's heap.
type ArenaStats struct {
	// Live is the number of heap cells that survived the last sweep plus
	// cells allocated since.
	Live int
	// Collections is the number of mark/sweep passes run.
	Collections uint64
	// LastSwept is the number of cells reclaimed by the last pass.
	LastSwept int
}

// Stats reports the arena's current heap statistics.
func (a *Arena) Stats() ArenaStats {
	return ArenaStats{
		Live:        len(a.objects),
		Collections: a.collections,
		LastSwept:   a.lastSwept,
	}
}
