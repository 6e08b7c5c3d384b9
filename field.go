package tecs

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rotisserie/eris"
)

// FieldKind selects the handler used to store and clear a component field.
type FieldKind uint8

const (
	// KindValue is a plain value copied in and out of the component.
	KindValue FieldKind = iota
	// KindEntityRef holds a single entity reference.
	KindEntityRef
	// KindEntitySet holds an unordered set of entity references.
	KindEntitySet
	// KindEntityMap holds entity references under string keys.
	KindEntityMap
)

// String returns the string representation of the kind.
func (k FieldKind) String() string {
	switch k {
	case KindValue:
		return "Value"
	case KindEntityRef:
		return "EntityRef"
	case KindEntitySet:
		return "EntitySet"
	case KindEntityMap:
		return "EntityMap"
	default:
		return "Unknown"
	}
}

// IsRef reports whether fields of this kind point at other entities.
func (k FieldKind) IsRef() bool {
	return k != KindValue
}

// FieldSpec declares one field of a component type.
type FieldSpec struct {
	Name string
	Kind FieldKind
	// Default is the literal assigned on checkout. Ignored when Factory is set.
	Default any
	// Factory builds a fresh default on every checkout. Use it for maps,
	// slices and pointers so pooled instances never share state.
	Factory func() any
}

// Field declares a plain value field with a literal default.
func Field(name string, def any) FieldSpec {
	return FieldSpec{Name: name, Kind: KindValue, Default: def}
}

// FactoryField declares a plain value field whose default is rebuilt by fn
// each time an instance leaves its pool.
func FactoryField(name string, fn func() any) FieldSpec {
	return FieldSpec{Name: name, Kind: KindValue, Factory: fn}
}

// RefField declares a single entity reference.
func RefField(name string) FieldSpec {
	return FieldSpec{Name: name, Kind: KindEntityRef}
}

// RefSetField declares a set of entity references.
func RefSetField(name string) FieldSpec {
	return FieldSpec{Name: name, Kind: KindEntitySet}
}

// RefMapField declares a string-keyed map of entity references.
func RefMapField(name string) FieldSpec {
	return FieldSpec{Name: name, Kind: KindEntityMap}
}

// defaultValue materializes the default for a plain field.
func (f *FieldSpec) defaultValue() any {
	if f.Factory != nil {
		return f.Factory()
	}
	return f.Default
}

// reservedFields are addressed by the component itself and cannot be
// declared as data.
var reservedFields = map[string]struct{}{
	"id":     {},
	"type":   {},
	"key":    {},
	"entity": {},
}

func isReserved(name string) bool {
	_, ok := reservedFields[name]
	return ok
}

// Struct tag handling for SpecOf.
const (
	tagName = "tecs"

	modRef  = "ref"
	modSet  = "set"
	modMap  = "map"
	modSkip = "-"
)

var (
	entityIDType    = reflect.TypeOf(EntityID(""))
	entityIDSlice   = reflect.TypeOf([]EntityID(nil))
	entityIDMapType = reflect.TypeOf(map[string]EntityID(nil))
)

// SpecOf derives a TypeSpec from a struct prototype. Exported fields become
// component fields named after the field with its first letter lowered, and
// the prototype's values become the defaults.
//
// Tag reference:
//
//	tecs:"name"      rename the field
//	tecs:",ref"      single entity reference (implied for EntityID)
//	tecs:",set"      entity reference set (implied for []EntityID)
//	tecs:",map"      entity reference map (implied for map[string]EntityID)
//	tecs:"-"         skip the field
//
// Map and slice defaults are copied per checkout.
func SpecOf(prototype any) (TypeSpec, error) {
	v := reflect.ValueOf(prototype)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return TypeSpec{}, eris.Wrapf(ErrInvalidValue, "prototype must be a struct, got %v", v.Kind())
	}

	t := v.Type()
	spec := TypeSpec{}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, kind, skip := parseFieldTag(sf)
		if skip {
			continue
		}
		fs := FieldSpec{Name: name, Kind: kind}
		if kind == KindValue {
			fv := v.Field(i)
			switch fv.Kind() {
			case reflect.Map, reflect.Slice:
				proto := fv.Interface()
				fs.Factory = func() any { return copyContainer(proto) }
			default:
				fs.Default = fv.Interface()
			}
		}
		spec.Fields = append(spec.Fields, fs)
	}
	return spec, nil
}

// parseFieldTag resolves the field name and kind from a struct field.
func parseFieldTag(sf reflect.StructField) (string, FieldKind, bool) {
	tag := sf.Tag.Get(tagName)
	if tag == modSkip {
		return "", 0, true
	}

	name := lowerFirst(sf.Name)
	kind := inferKind(sf.Type)

	if tag != "" {
		parts := strings.Split(tag, ",")
		if n := strings.TrimSpace(parts[0]); n != "" {
			name = n
		}
		for _, part := range parts[1:] {
			switch strings.TrimSpace(part) {
			case modRef:
				kind = KindEntityRef
			case modSet:
				kind = KindEntitySet
			case modMap:
				kind = KindEntityMap
			}
		}
	}
	return name, kind, false
}

func inferKind(t reflect.Type) FieldKind {
	switch t {
	case entityIDType:
		return KindEntityRef
	case entityIDSlice:
		return KindEntitySet
	case entityIDMapType:
		return KindEntityMap
	default:
		return KindValue
	}
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}

// copyContainer returns a shallow copy of a map or slice value.
func copyContainer(src any) any {
	v := reflect.ValueOf(src)
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return reflect.MakeMap(v.Type()).Interface()
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return out.Interface()
	case reflect.Slice:
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		reflect.Copy(out, v)
		return out.Interface()
	default:
		return src
	}
}
