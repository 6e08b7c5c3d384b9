package tecs_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oriumgames/tecs"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformDefaults(t *testing.T) {
	w := newTestWorld(t)
	_, err := tecs.RegisterTransform(w)
	require.NoError(t, err)

	c, err := w.NewEntity().AddComponent(tecs.TransformType, nil)
	require.NoError(t, err)

	pos, err := c.Vec3("position")
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{}, pos)
	scale, err := c.Vec3("scale")
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, scale)
	rot, err := c.Quat("rotation")
	require.NoError(t, err)
	assert.Equal(t, mgl64.QuatIdent(), rot)
	parent, ok := c.Descriptor().Field("parent")
	require.True(t, ok)
	assert.Equal(t, tecs.KindEntityRef, parent.Kind)

	m, err := c.Matrix()
	require.NoError(t, err)
	assert.True(t, m.ApproxEqual(mgl64.Ident4()))
}

func TestTransformFromDefinition(t *testing.T) {
	w := newTestWorld(t)
	_, err := tecs.RegisterTransform(w)
	require.NoError(t, err)

	defs, err := tecs.DecodeDefinitions([]byte(`
entities:
  - id: root
    components:
      Transform: {position: [10, 0, 0]}
  - id: child
    components:
      Transform:
        position: [1, 2, 3]
        parent: root
`), tecs.FormatYAML)
	require.NoError(t, err)
	ents, err := w.CreateEntities(defs)
	require.NoError(t, err)

	child := ents[1].Component(tecs.TransformType)
	pos, err := child.Vec3("position")
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, pos)

	m, err := child.WorldMatrix()
	require.NoError(t, err)
	got := m.Mul4x1(mgl64.Vec4{0, 0, 0, 1})
	assert.True(t, got.ApproxEqual(mgl64.Vec4{11, 2, 3, 1}), "got %v", got)

	ents[0].Destroy()
	m, err = child.WorldMatrix()
	require.NoError(t, err)
	assert.True(t, m.Mul4x1(mgl64.Vec4{0, 0, 0, 1}).ApproxEqual(mgl64.Vec4{1, 2, 3, 1}))
}

func TestTransformParentCycle(t *testing.T) {
	w := newTestWorld(t)
	_, err := tecs.RegisterTransform(w)
	require.NoError(t, err)

	a := w.NewEntity()
	b := w.NewEntity()
	ta, err := a.AddComponent(tecs.TransformType, tecs.Values{"parent": b})
	require.NoError(t, err)
	_, err = b.AddComponent(tecs.TransformType, tecs.Values{"parent": a})
	require.NoError(t, err)

	_, err = ta.WorldMatrix()
	assert.True(t, eris.Is(err, tecs.ErrInvalidValue))

	require.NoError(t, ta.Set("position", []any{1, "two", 3}))
	_, err = ta.Vec3("position")
	assert.True(t, eris.Is(err, tecs.ErrInvalidValue))
}
