package tecs

import (
	"sort"

	"github.com/rotisserie/eris"
)

// TypeSpec describes a component type at registration time.
type TypeSpec struct {
	// Fields lists the data fields of the type.
	Fields []FieldSpec

	// Extends names a previously registered type whose fields are copied in
	// front of Fields. A field redeclared here replaces the inherited one.
	Extends string

	// Multi allows several instances per entity, addressed by key.
	Multi bool

	// PoolSize preallocates this many pooled instances.
	PoolSize int

	// Init runs after the instance is attached and populated.
	Init func(c *Component)

	// Destroy runs before the instance is detached and returned to its pool.
	Destroy func(c *Component)
}

// ComponentType is the resolved, flattened descriptor of a registered type
// or tag. It is immutable after registration.
type ComponentType struct {
	name   string
	id     TypeID
	tag    bool
	multi  bool
	fields []FieldSpec
	index  map[string]int
	refs   []int // indices of reference fields

	poolSize int
	init     func(*Component)
	destroy  func(*Component)
}

// Name returns the registered name.
func (t *ComponentType) Name() string { return t.name }

// ID returns the bit position of the type.
func (t *ComponentType) ID() TypeID { return t.id }

// IsTag reports whether the type is a data-less tag.
func (t *ComponentType) IsTag() bool { return t.tag }

// Multi reports whether an entity may hold several instances.
func (t *ComponentType) Multi() bool { return t.multi }

// Fields returns a copy of the flattened field list.
func (t *ComponentType) Fields() []FieldSpec {
	out := make([]FieldSpec, len(t.fields))
	copy(out, t.fields)
	return out
}

// Field returns the descriptor for name.
func (t *ComponentType) Field(name string) (FieldSpec, bool) {
	i, ok := t.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return t.fields[i], true
}

// Registry assigns every component type and tag a unique bit position.
// Bits are handed out monotonically and never reused.
//
// A Registry is not safe for concurrent use; it is owned by the goroutine
// driving its world.
type Registry struct {
	types map[string]*ComponentType
	byID  [MaxTypes]*ComponentType
	next  int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]*ComponentType),
	}
}

// RegisterType registers a data-bearing component type and returns its bit.
func (r *Registry) RegisterType(name string, spec TypeSpec) (TypeID, error) {
	if err := r.checkName(name); err != nil {
		return 0, err
	}

	fields, err := r.flatten(name, spec)
	if err != nil {
		return 0, err
	}

	t := &ComponentType{
		name:     name,
		multi:    spec.Multi,
		fields:   fields,
		index:    make(map[string]int, len(fields)),
		poolSize: spec.PoolSize,
		init:     spec.Init,
		destroy:  spec.Destroy,
	}
	for i, f := range fields {
		t.index[f.Name] = i
		if f.Kind.IsRef() {
			t.refs = append(t.refs, i)
		}
	}
	return r.add(t), nil
}

// RegisterTag registers a zero-data tag and returns its bit.
func (r *Registry) RegisterTag(name string) (TypeID, error) {
	if err := r.checkName(name); err != nil {
		return 0, err
	}
	return r.add(&ComponentType{name: name, tag: true}), nil
}

func (r *Registry) checkName(name string) error {
	if name == "" {
		return eris.Wrap(ErrInvalidValue, "empty type name")
	}
	if _, ok := r.types[name]; ok {
		return eris.Wrapf(ErrDuplicateName, "register %q", name)
	}
	if r.next >= MaxTypes {
		return eris.Wrapf(ErrTooManyTypes, "register %q (max %d)", name, MaxTypes)
	}
	return nil
}

// flatten resolves inheritance into a single field list and validates names.
func (r *Registry) flatten(name string, spec TypeSpec) ([]FieldSpec, error) {
	var fields []FieldSpec
	pos := make(map[string]int)

	if spec.Extends != "" {
		base, ok := r.types[spec.Extends]
		if !ok || base.tag {
			return nil, eris.Wrapf(ErrUnknownType, "%q extends %q", name, spec.Extends)
		}
		for _, f := range base.fields {
			pos[f.Name] = len(fields)
			fields = append(fields, f)
		}
	}

	own := make(map[string]struct{}, len(spec.Fields))
	for _, f := range spec.Fields {
		if f.Name == "" {
			return nil, eris.Wrapf(ErrInvalidValue, "%q declares an unnamed field", name)
		}
		if isReserved(f.Name) {
			return nil, eris.Wrapf(ErrReservedField, "%q declares field %q", name, f.Name)
		}
		if _, dup := own[f.Name]; dup {
			return nil, eris.Wrapf(ErrDuplicateName, "%q declares field %q twice", name, f.Name)
		}
		own[f.Name] = struct{}{}

		if i, inherited := pos[f.Name]; inherited {
			fields[i] = f
			continue
		}
		pos[f.Name] = len(fields)
		fields = append(fields, f)
	}
	return fields, nil
}

func (r *Registry) add(t *ComponentType) TypeID {
	t.id = TypeID(r.next)
	r.next++
	r.types[t.name] = t
	r.byID[t.id] = t
	return t.id
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*ComponentType, bool) {
	t, ok := r.types[name]
	return t, ok
}

// ByID returns the descriptor for a bit position, or nil.
func (r *Registry) ByID(id TypeID) *ComponentType {
	return r.byID[id]
}

// Bit returns the bit position of name.
func (r *Registry) Bit(name string) (TypeID, bool) {
	t, ok := r.types[name]
	if !ok {
		return 0, false
	}
	return t.id, true
}

// Name returns the name registered at id, or "" if the bit is unassigned.
func (r *Registry) Name(id TypeID) string {
	if t := r.byID[id]; t != nil {
		return t.name
	}
	return ""
}

// IsTag reports whether name is a registered tag.
func (r *Registry) IsTag(name string) bool {
	t, ok := r.types[name]
	return ok && t.tag
}

// Mask ORs the bits of names together. Unknown names are a configuration
// error.
func (r *Registry) Mask(names ...string) (Bitmask, error) {
	var m Bitmask
	for _, n := range names {
		t, ok := r.types[n]
		if !ok {
			return Bitmask{}, eris.Wrapf(ErrUnknownType, "mask %q", n)
		}
		m.Set(t.id)
	}
	return m, nil
}

// Len returns the number of assigned bits.
func (r *Registry) Len() int {
	return r.next
}

// Names returns all registered names in bit order.
func (r *Registry) Names() []string {
	out := make([]string, 0, r.next)
	for i := 0; i < r.next; i++ {
		out = append(out, r.byID[i].name)
	}
	return out
}

// namesOf returns the sorted names for the bits set in m.
func (r *Registry) namesOf(m Bitmask, tags bool) []string {
	var out []string
	for _, id := range m.Bits() {
		if t := r.byID[id]; t != nil && t.tag == tags {
			out = append(out, t.name)
		}
	}
	sort.Strings(out)
	return out
}
