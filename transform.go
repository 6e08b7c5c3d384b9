package tecs

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rotisserie/eris"
)

// TransformType is the name RegisterTransform registers.
const TransformType = "Transform"

// Transform is the prototype of the built-in spatial component. Parent
// references the entity the transform is relative to.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
	Parent   EntityID
}

// RegisterTransform registers the Transform component type on w.
func RegisterTransform(w *World) (TypeID, error) {
	spec, err := SpecOf(Transform{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	})
	if err != nil {
		return 0, err
	}
	return w.RegisterType(TransformType, spec)
}

// Vec3 reads field as a vector. Values decoded from definition files
// arrive as numeric sequences and are converted.
func (c *Component) Vec3(field string) (mgl64.Vec3, error) {
	switch v := c.Get(field).(type) {
	case mgl64.Vec3:
		return v, nil
	case []float64:
		if len(v) == 3 {
			return mgl64.Vec3{v[0], v[1], v[2]}, nil
		}
	case []any:
		if len(v) == 3 {
			var out mgl64.Vec3
			for i, x := range v {
				f, ok := toFloat(x)
				if !ok {
					return mgl64.Vec3{}, eris.Wrapf(ErrInvalidValue, "%s.%s[%d] is %T", c.typ.name, field, i, x)
				}
				out[i] = f
			}
			return out, nil
		}
	}
	return mgl64.Vec3{}, eris.Wrapf(ErrInvalidValue, "%s.%s is not a vector", c.typ.name, field)
}

// Quat reads field as a rotation. Numeric sequences are read as w, x, y, z.
func (c *Component) Quat(field string) (mgl64.Quat, error) {
	switch v := c.Get(field).(type) {
	case mgl64.Quat:
		return v, nil
	case []any:
		if len(v) == 4 {
			var f [4]float64
			for i, x := range v {
				n, ok := toFloat(x)
				if !ok {
					return mgl64.Quat{}, eris.Wrapf(ErrInvalidValue, "%s.%s[%d] is %T", c.typ.name, field, i, x)
				}
				f[i] = n
			}
			return mgl64.Quat{W: f[0], V: mgl64.Vec3{f[1], f[2], f[3]}}, nil
		}
	}
	return mgl64.Quat{}, eris.Wrapf(ErrInvalidValue, "%s.%s is not a rotation", c.typ.name, field)
}

// Matrix composes the local transform of a Transform component as
// translation * rotation * scale.
func (c *Component) Matrix() (mgl64.Mat4, error) {
	pos, err := c.Vec3("position")
	if err != nil {
		return mgl64.Mat4{}, err
	}
	rot, err := c.Quat("rotation")
	if err != nil {
		return mgl64.Mat4{}, err
	}
	scale, err := c.Vec3("scale")
	if err != nil {
		return mgl64.Mat4{}, err
	}
	m := mgl64.Translate3D(pos[0], pos[1], pos[2])
	m = m.Mul4(rot.Normalize().Mat4())
	return m.Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2])), nil
}

// WorldMatrix composes Matrix with the matrices of every Transform up the
// parent chain. A parent without a Transform ends the chain.
func (c *Component) WorldMatrix() (mgl64.Mat4, error) {
	m, err := c.Matrix()
	if err != nil {
		return mgl64.Mat4{}, err
	}
	seen := map[EntityID]struct{}{c.owner: {}}
	for parent := c.Ref("parent"); parent != nil; {
		if _, loop := seen[parent.id]; loop {
			return mgl64.Mat4{}, eris.Wrapf(ErrInvalidValue, "transform parent cycle at %s", parent.id)
		}
		seen[parent.id] = struct{}{}
		pt := parent.Component(TransformType)
		if pt == nil {
			break
		}
		pm, err := pt.Matrix()
		if err != nil {
			return mgl64.Mat4{}, err
		}
		m = pm.Mul4(m)
		parent = pt.Ref("parent")
	}
	return m, nil
}

func toFloat(x any) (float64, bool) {
	switch n := x.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
