// Package symbol implements symbol interning.  Symbols are identified by
// opaque IDs handed out by a Table, which maintains the two-way mapping
// between IDs and names.
package symbol

import (
	"fmt"
	"sort"
	"sync"
)

// An ID is the identity of an interned symbol.  Two symbols with the same
// name interned in the same Table always receive the same ID.
type ID uint64

// String is equivalent to calling String(id, DefaultGlobalTable).
func (id ID) String() string {
	return String(id, DefaultGlobalTable)
}

// DefaultGlobalTable is the default symbol table.  It should be used by
// packages to intern fixed symbol handles during init.  Runtime interning of
// user symbols should go through a per-runtime table so short-lived junk
// never reaches the global table.
var DefaultGlobalTable Exporter = NewGlobalTable()

// Intern uses DefaultGlobalTable to intern s and returns its ID.
func Intern(s string) ID {
	return DefaultGlobalTable.Intern(s)
}

// Table maps symbol IDs to strings.
type Table interface {
	// Len returns the number of symbols interned in the table.
	Len() int
	// Intern inserts the given symbol into the table if it is not present
	// and returns its ID.
	Intern(symbol string) ID
	// Peek retrieves the ID of a symbol without automatically interning it.
	// Peek returns true iff the symbol has been interned into the table.
	Peek(symbol string) (ID, bool)
	// Symbol returns the symbol associated with id.
	Symbol(id ID) (string, bool)
}

// Exporter is a Table that can dump its symbol mapping.
type Exporter interface {
	Table
	// Export returns a slice containing all table data which can be used to
	// bootstrap a new Table.
	Export() []TableRow
}

// TableRow is a single symbol mapping exported from a Table.
type TableRow struct {
	Symbol string
	ID     ID
}

// String renders id through t, falling back to a diagnostic form for IDs
// unknown to t.
func String(id ID, t Table) string {
	if s, ok := t.Symbol(id); ok {
		return s
	}
	return fmt.Sprintf(defaultUnknownFormat, uint64(id))
}

const defaultUnknownFormat = "#<symbol %#x>"

// ResolveUnknown returns a Table that renders diagnostic strings when the
// method Symbol is passed an ID unknown to t.  The Symbol method on the
// returned Table always returns true.  All other methods proxy t.
func ResolveUnknown(format string, t Table) Table {
	if format == "" {
		format = defaultUnknownFormat
	}
	return &unknownResolver{format, t}
}

type unknownResolver struct {
	format string
	Table
}

func (t *unknownResolver) Symbol(id ID) (string, bool) {
	s, ok := t.Table.Symbol(id)
	if ok {
		return s, true
	}
	return fmt.Sprintf(t.format, uint64(id)), true
}

// InternAll interns every name in symbols and returns the matching IDs.
func InternAll(t Table, symbols ...string) []ID {
	ids := make([]ID, 0, len(symbols))
	for _, s := range symbols {
		ids = append(ids, t.Intern(s))
	}
	return ids
}

// NewGlobalTable returns an empty Exporter suitable for process-wide use.
func NewGlobalTable() Exporter {
	return newTable()
}

// NewTable returns a Table bootstrapped with the given rows.
func NewTable(rows ...TableRow) Exporter {
	return newTable(rows...)
}

// CopyGlobalTable is equivalent to NewTable(DefaultGlobalTable.Export()...).
// The copy resolves every ID the global table knows while keeping symbols
// interned after the copy private.
func CopyGlobalTable() Exporter {
	return newTable(DefaultGlobalTable.Export()...)
}

type table struct {
	sync sync.RWMutex
	last ID
	i    map[ID]string
	s    map[string]ID
}

var _ Exporter = (*table)(nil)

func newTable(rows ...TableRow) *table {
	t := &table{
		i: make(map[ID]string),
		s: make(map[string]ID),
	}
	for _, r := range rows {
		t.i[r.ID] = r.Symbol
		t.s[r.Symbol] = r.ID
		if r.ID > t.last {
			t.last = r.ID
		}
	}
	return t
}

func (t *table) Len() int {
	t.sync.RLock()
	defer t.sync.RUnlock()
	return len(t.s)
}

func (t *table) Export() []TableRow {
	t.sync.RLock()
	defer t.sync.RUnlock()
	rows := make([]TableRow, 0, len(t.s))
	for sym, id := range t.s {
		rows = append(rows, TableRow{Symbol: sym, ID: id})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Symbol < rows[j].Symbol })
	return rows
}

func (t *table) Intern(s string) ID {
	t.sync.Lock()
	defer t.sync.Unlock()
	if id, ok := t.s[s]; ok {
		return id
	}
	t.last++
	id := t.last
	t.s[s] = id
	t.i[id] = s
	return id
}

func (t *table) Peek(s string) (ID, bool) {
	t.sync.RLock()
	defer t.sync.RUnlock()
	id, ok := t.s[s]
	return id, ok
}

func (t *table) Symbol(id ID) (string, bool) {
	t.sync.RLock()
	defer t.sync.RUnlock()
	s, ok := t.i[id]
	return s, ok
}
