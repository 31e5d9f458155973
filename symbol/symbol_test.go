package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable(t *testing.T) {
	table := newTable()
	assert.Equal(t, ID(1), table.Intern("testing"))
	assert.Equal(t, ID(2), table.Intern("hello"))
	assert.Equal(t, ID(1), table.Intern("testing"))
	assert.Equal(t, 2, table.Len())
	id, ok := table.Peek("hello")
	assert.True(t, ok)
	assert.Equal(t, ID(2), id)
	_, ok = table.Peek("notfound")
	assert.False(t, ok)
	s, ok := table.Symbol(1)
	assert.True(t, ok)
	assert.Equal(t, "testing", s)
	_, ok = table.Symbol(100)
	assert.False(t, ok)
}

func TestTable_Copy(t *testing.T) {
	table := newTable()
	id := table.Intern("shared")
	cp := NewTable(table.Export()...)
	s, ok := cp.Symbol(id)
	assert.True(t, ok)
	assert.Equal(t, "shared", s)
	// Symbols interned after the copy stay private to it.
	priv := cp.Intern("private")
	_, ok = table.Symbol(priv)
	assert.False(t, ok)
	assert.NotEqual(t, id, priv)
}

func TestResolveUnknown(t *testing.T) {
	table := ResolveUnknown("", newTable())
	s, ok := table.Symbol(42)
	assert.True(t, ok)
	assert.Equal(t, "#<symbol 0x2a>", s)
	id := table.Intern("known")
	s, ok = table.Symbol(id)
	assert.True(t, ok)
	assert.Equal(t, "known", s)
}

func TestInternAll(t *testing.T) {
	table := newTable()
	ids := InternAll(table, "a", "b", "a")
	assert.Len(t, ids, 3)
	assert.Equal(t, ids[0], ids[2])
	assert.NotEqual(t, ids[0], ids[1])
}
