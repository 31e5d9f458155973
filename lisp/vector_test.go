package lisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorMutation(t *testing.T) {
	cx := NewArena()
	v := cx.Vector([]LVal{Int(1), Int(2)})
	vec, ok := GetVector(v)
	require.True(t, ok)
	assert.Equal(t, 2, vec.Len())

	m, err := vec.TryMut()
	require.NoError(t, err)
	m.Set(0, Int(9))
	assert.True(t, Eq(Int(9), vec.At(0)))

	vec.MakeConst()
	_, err = vec.TryMut()
	assert.Equal(t, ErrImmutable, err)
	vec.MakeConst()
	_, err = vec.TryMut()
	assert.Equal(t, ErrImmutable, err)
	assert.True(t, Eq(Int(9), vec.At(0)))
}

func TestVectorCopiesCells(t *testing.T) {
	cells := []LVal{Int(1)}
	cx := NewArena()
	v := cx.Vector(cells)
	cells[0] = Int(9)
	vec, _ := GetVector(v)
	assert.True(t, Eq(Int(1), vec.At(0)))
}

func TestRecord(t *testing.T) {
	cx := NewArena()
	env := NewEnvironment()
	point := Symbol(env.Table().Intern("point"))
	r := cx.Record([]LVal{point, Int(1), Int(2)})
	rec, ok := GetRecord(r)
	require.True(t, ok)
	assert.True(t, Eq(point, rec.TypeName()))
	assert.Equal(t, 3, rec.Len())
	assert.True(t, Eq(Int(2), rec.At(2)))
}
