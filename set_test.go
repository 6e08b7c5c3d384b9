package tecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntitySetSwapRemove(t *testing.T) {
	s := newEntitySet()
	a, b, c := &Entity{id: "a"}, &Entity{id: "b"}, &Entity{id: "c"}

	assert.True(t, s.add(a))
	assert.True(t, s.add(b))
	assert.True(t, s.add(c))
	assert.False(t, s.add(a))

	assert.True(t, s.remove("a"))
	assert.False(t, s.remove("a"))
	assert.Equal(t, []EntityID{"c", "b"}, s.entityIDs())
	assert.True(t, s.has("c"))
	assert.Equal(t, 2, s.len())

	s.clear()
	assert.Equal(t, 0, s.len())
	assert.False(t, s.has("b"))
}

func TestIDSet(t *testing.T) {
	s := newIDSet()
	s.add("x")
	s.add("y")
	s.add("x")
	assert.Equal(t, []EntityID{"x", "y"}, s.list())

	s.remove("x")
	assert.Equal(t, []EntityID{"y"}, s.list())
	s.clear()
	assert.Equal(t, 0, s.len())
}
