package tecs_test

import (
	"fmt"
	"testing"

	"github.com/oriumgames/tecs"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAssignsMonotonicBits(t *testing.T) {
	r := tecs.NewRegistry()

	pos, err := r.RegisterType("Position", tecs.TypeSpec{Fields: []tecs.FieldSpec{tecs.Field("x", 0)}})
	require.NoError(t, err)
	hidden, err := r.RegisterTag("Hidden")
	require.NoError(t, err)
	vel, err := r.RegisterType("Velocity", tecs.TypeSpec{})
	require.NoError(t, err)

	assert.Equal(t, tecs.TypeID(0), pos)
	assert.Equal(t, tecs.TypeID(1), hidden)
	assert.Equal(t, tecs.TypeID(2), vel)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []string{"Position", "Hidden", "Velocity"}, r.Names())
	assert.Equal(t, "Hidden", r.Name(hidden))
	assert.Equal(t, "", r.Name(200))
	assert.True(t, r.IsTag("Hidden"))
	assert.False(t, r.IsTag("Position"))

	m, err := r.Mask("Position", "Velocity")
	require.NoError(t, err)
	assert.Equal(t, []tecs.TypeID{pos, vel}, m.Bits())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := tecs.NewRegistry()
	_, err := r.RegisterType("Tile", tecs.TypeSpec{})
	require.NoError(t, err)

	_, err = r.RegisterTag("Tile")
	assert.True(t, eris.Is(err, tecs.ErrDuplicateName))
	assert.True(t, tecs.IsConfigurationError(err))

	_, err = r.RegisterType("Tile", tecs.TypeSpec{})
	assert.True(t, eris.Is(err, tecs.ErrDuplicateName))
	assert.Equal(t, 1, r.Len())
}

func TestRegistryRejectsBadFields(t *testing.T) {
	r := tecs.NewRegistry()

	for _, name := range []string{"id", "type", "key", "entity"} {
		_, err := r.RegisterType("Bad_"+name, tecs.TypeSpec{Fields: []tecs.FieldSpec{tecs.Field(name, 1)}})
		assert.True(t, eris.Is(err, tecs.ErrReservedField), name)
	}

	_, err := r.RegisterType("Twice", tecs.TypeSpec{Fields: []tecs.FieldSpec{tecs.Field("a", 1), tecs.Field("a", 2)}})
	assert.True(t, eris.Is(err, tecs.ErrDuplicateName))

	_, err = r.RegisterType("", tecs.TypeSpec{})
	assert.True(t, eris.Is(err, tecs.ErrInvalidValue))

	assert.Equal(t, 0, r.Len())
}

func TestRegistryExtends(t *testing.T) {
	r := tecs.NewRegistry()
	_, err := r.RegisterType("Shape", tecs.TypeSpec{Fields: []tecs.FieldSpec{
		tecs.Field("color", "white"),
		tecs.Field("size", 1),
	}})
	require.NoError(t, err)

	_, err = r.RegisterType("Circle", tecs.TypeSpec{
		Extends: "Shape",
		Fields: []tecs.FieldSpec{
			tecs.Field("size", 5),
			tecs.Field("radius", 2.5),
		},
	})
	require.NoError(t, err)

	circle, ok := r.Lookup("Circle")
	require.True(t, ok)
	fields := circle.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, "color", fields[0].Name)
	assert.Equal(t, "size", fields[1].Name)
	assert.Equal(t, 5, fields[1].Default)
	assert.Equal(t, "radius", fields[2].Name)

	_, err = r.RegisterType("Square", tecs.TypeSpec{Extends: "Polygon"})
	assert.True(t, eris.Is(err, tecs.ErrUnknownType))
}

func TestRegistryTypeLimit(t *testing.T) {
	r := tecs.NewRegistry()
	for i := 0; i < tecs.MaxTypes; i++ {
		_, err := r.RegisterTag(fmt.Sprintf("T%d", i))
		require.NoError(t, err)
	}
	_, err := r.RegisterTag("Overflow")
	assert.True(t, eris.Is(err, tecs.ErrTooManyTypes))
	assert.True(t, tecs.IsConfigurationError(err))
}

func TestRegistryMaskUnknown(t *testing.T) {
	r := tecs.NewRegistry()
	_, err := r.Mask("Nope")
	assert.True(t, eris.Is(err, tecs.ErrUnknownType))
}
