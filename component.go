package tecs

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Values is a flat field-name to value mapping used to initialize and
// export components.
type Values map[string]any

// Component is a pooled data record owned by exactly one entity. Field
// storage is a flat slice laid out by the type's flattened descriptor list.
//
// The owner is held by id and resolved through the world on access.
type Component struct {
	world  *World
	typ    *ComponentType
	id     string
	key    string
	owner  EntityID
	values []any

	ready   bool
	updated uint64
}

// newComponent allocates a blank instance of t. Reference containers are
// created once and reused across checkouts.
func newComponent(w *World, t *ComponentType) *Component {
	c := &Component{
		world:  w,
		typ:    t,
		values: make([]any, len(t.fields)),
	}
	for _, i := range t.refs {
		f := &t.fields[i]
		switch f.Kind {
		case KindEntityRef:
			c.values[i] = EntityID("")
		case KindEntitySet:
			c.values[i] = newEntitySetField(c, f.Name)
		case KindEntityMap:
			c.values[i] = newEntityMapField(c, f.Name)
		}
	}
	return c
}

// populate assigns type defaults. Factory fields are rebuilt here, on
// every checkout.
func (c *Component) populate() {
	for i := range c.typ.fields {
		f := &c.typ.fields[i]
		if f.Kind == KindValue {
			c.values[i] = f.defaultValue()
		}
	}
}

// sever drops every outgoing reference and empties reference fields.
func (c *Component) sever() {
	for _, i := range c.typ.refs {
		switch v := c.values[i].(type) {
		case EntityID:
			if v != "" {
				c.untrack(v, c.typ.fields[i].Name, "")
				c.values[i] = EntityID("")
			}
		case *EntitySet:
			for id := range v.members {
				c.untrack(id, v.field, "")
			}
			clear(v.members)
		case *EntityMap:
			for k, id := range v.entries {
				c.untrack(id, v.field, k)
			}
			clear(v.entries)
		}
	}
}

// reset returns the instance to its blank pooled state.
func (c *Component) reset() {
	c.sever()
	for i := range c.typ.fields {
		if c.typ.fields[i].Kind == KindValue {
			c.values[i] = nil
		}
	}
	c.id = ""
	c.key = ""
	c.owner = ""
	c.ready = false
	c.updated = 0
}

func (c *Component) track(target EntityID, field, sub string) {
	if c.owner == "" {
		return
	}
	c.world.refs.AddRef(target, c.owner, c.id, c.typ.name, field, sub)
}

func (c *Component) untrack(target EntityID, field, sub string) {
	if c.owner == "" {
		return
	}
	c.world.refs.DeleteRef(target, c.owner, c.id, c.typ.name, field, sub)
}

// changed stamps the value tick on the component and its entity.
func (c *Component) changed() {
	tick := c.world.tick
	c.updated = tick
	if !c.ready {
		return
	}
	if e := c.world.entities[c.owner]; e != nil {
		e.valuesTick = tick
	}
}

// ID returns the component id.
func (c *Component) ID() string { return c.id }

// Type returns the registered type name.
func (c *Component) Type() string { return c.typ.name }

// Descriptor returns the resolved type descriptor.
func (c *Component) Descriptor() *ComponentType { return c.typ }

// Key returns the key addressing this component on its entity.
func (c *Component) Key() string { return c.key }

// Ready reports whether the component is attached and initialized.
func (c *Component) Ready() bool { return c.ready }

// UpdatedTick returns the world tick of the last field write.
func (c *Component) UpdatedTick() uint64 { return c.updated }

// Entity resolves the owning entity, or nil once detached.
func (c *Component) Entity() *Entity {
	if c.owner == "" {
		return nil
	}
	return c.world.entities[c.owner]
}

// Get returns the value of field. Reference fields return an EntityID,
// *EntitySet or *EntityMap. Unknown fields return nil.
func (c *Component) Get(field string) any {
	i, ok := c.typ.index[field]
	if !ok {
		return nil
	}
	return c.values[i]
}

// Set assigns a single field.
func (c *Component) Set(field string, v any) error {
	i, ok := c.typ.index[field]
	if !ok {
		return eris.Wrapf(ErrUnknownField, "%s.%s", c.typ.name, field)
	}
	return c.assign(i, v)
}

// Update assigns every known field in values. Names the type does not
// declare are dropped.
func (c *Component) Update(values Values) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if isReserved(name) {
			continue
		}
		i, ok := c.typ.index[name]
		if !ok {
			c.world.log.Debug("tecs: dropping unknown field",
				zap.String("type", c.typ.name),
				zap.String("field", name))
			continue
		}
		if err := c.assign(i, values[name]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Component) assign(i int, v any) error {
	f := &c.typ.fields[i]
	switch f.Kind {
	case KindValue:
		c.values[i] = v
		c.changed()
	case KindEntityRef:
		id, ok := toEntityID(v)
		if !ok {
			return eris.Wrapf(ErrInvalidValue, "%s.%s: cannot reference %T", c.typ.name, f.Name, v)
		}
		c.setRef(i, id)
	case KindEntitySet:
		ids, ok := toEntityIDs(v)
		if !ok {
			return eris.Wrapf(ErrInvalidValue, "%s.%s: cannot build set from %T", c.typ.name, f.Name, v)
		}
		c.values[i].(*EntitySet).replace(ids)
	case KindEntityMap:
		entries, ok := toEntityMap(v)
		if !ok {
			return eris.Wrapf(ErrInvalidValue, "%s.%s: cannot build map from %T", c.typ.name, f.Name, v)
		}
		c.values[i].(*EntityMap).replace(entries)
	}
	return nil
}

func (c *Component) setRef(i int, id EntityID) {
	old := c.values[i].(EntityID)
	if old == id {
		return
	}
	field := c.typ.fields[i].Name
	if old != "" {
		c.untrack(old, field, "")
	}
	c.values[i] = id
	if id != "" {
		c.track(id, field, "")
	}
	c.changed()
}

// Ref returns the live entity referenced by field, or nil.
func (c *Component) Ref(field string) *Entity {
	id := c.RefID(field)
	if id == "" {
		return nil
	}
	return c.world.Entity(id)
}

// RefID returns the id referenced by field.
func (c *Component) RefID(field string) EntityID {
	i, ok := c.typ.index[field]
	if !ok || c.typ.fields[i].Kind != KindEntityRef {
		return ""
	}
	return c.values[i].(EntityID)
}

// SetRef points field at target, which may be an *Entity, EntityID, string
// or nil.
//
// The target does not have to be live. An id with no entity behind it is
// kept as a forward reference: Ref returns nil until an entity with that id
// is created, and the field is cleared when that entity is destroyed. A
// reference to an id that never appears stays recorded until the field is
// overwritten or the component is removed.
func (c *Component) SetRef(field string, target any) error {
	i, ok := c.typ.index[field]
	if !ok {
		return eris.Wrapf(ErrUnknownField, "%s.%s", c.typ.name, field)
	}
	if c.typ.fields[i].Kind != KindEntityRef {
		return eris.Wrapf(ErrInvalidValue, "%s.%s is %s", c.typ.name, field, c.typ.fields[i].Kind)
	}
	return c.assign(i, target)
}

// RefSet returns the set stored in field, or nil if field is not a set.
func (c *Component) RefSet(field string) *EntitySet {
	i, ok := c.typ.index[field]
	if !ok {
		return nil
	}
	s, _ := c.values[i].(*EntitySet)
	return s
}

// RefMap returns the map stored in field, or nil if field is not a map.
func (c *Component) RefMap(field string) *EntityMap {
	i, ok := c.typ.index[field]
	if !ok {
		return nil
	}
	m, _ := c.values[i].(*EntityMap)
	return m
}

// clearRefTo removes target from the reference stored at field.
func (c *Component) clearRefTo(field, sub string, target EntityID) {
	i, ok := c.typ.index[field]
	if !ok {
		return
	}
	switch v := c.values[i].(type) {
	case EntityID:
		if v == target {
			c.setRef(i, "")
		}
	case *EntitySet:
		v.DeleteID(target)
	case *EntityMap:
		if id, ok := v.entries[sub]; ok && id == target {
			v.Delete(sub)
		}
	}
}

// Values exports the fields as a plain mapping. References become id
// strings. The key is included when it differs from the id or when ids are
// requested.
func (c *Component) Values(includeIDs bool) Values {
	out := make(Values, len(c.values)+2)
	for i := range c.typ.fields {
		f := &c.typ.fields[i]
		switch v := c.values[i].(type) {
		case EntityID:
			out[f.Name] = string(v)
		case *EntitySet:
			ids := v.IDs()
			list := make([]string, len(ids))
			for j, id := range ids {
				list[j] = string(id)
			}
			out[f.Name] = list
		case *EntityMap:
			out[f.Name] = v.snapshot()
		default:
			out[f.Name] = v
		}
	}
	if includeIDs {
		out["id"] = c.id
		out["key"] = c.key
	} else if c.key != c.id {
		out["key"] = c.key
	}
	return out
}

// Destroy removes the component from its entity.
func (c *Component) Destroy() bool {
	e := c.Entity()
	if e == nil {
		return false
	}
	return e.RemoveComponent(c)
}

func toEntityID(v any) (EntityID, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case EntityID:
		return t, true
	case string:
		return EntityID(t), true
	case *Entity:
		if t == nil {
			return "", true
		}
		return t.id, true
	default:
		return "", false
	}
}

func toEntityIDs(v any) ([]EntityID, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case []EntityID:
		return t, true
	case []string:
		out := make([]EntityID, len(t))
		for i, s := range t {
			out[i] = EntityID(s)
		}
		return out, true
	case []*Entity:
		out := make([]EntityID, 0, len(t))
		for _, e := range t {
			if e != nil {
				out = append(out, e.id)
			}
		}
		return out, true
	case []any:
		out := make([]EntityID, 0, len(t))
		for _, x := range t {
			id, ok := toEntityID(x)
			if !ok {
				return nil, false
			}
			out = append(out, id)
		}
		return out, true
	case *EntitySet:
		return t.IDs(), true
	default:
		return nil, false
	}
}

func toEntityMap(v any) (map[string]EntityID, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case map[string]EntityID:
		return t, true
	case map[string]string:
		out := make(map[string]EntityID, len(t))
		for k, s := range t {
			out[k] = EntityID(s)
		}
		return out, true
	case map[string]*Entity:
		out := make(map[string]EntityID, len(t))
		for k, e := range t {
			if e != nil {
				out[k] = e.id
			}
		}
		return out, true
	case map[string]any:
		out := make(map[string]EntityID, len(t))
		for k, x := range t {
			id, ok := toEntityID(x)
			if !ok {
				return nil, false
			}
			out[k] = id
		}
		return out, true
	case *EntityMap:
		out := make(map[string]EntityID, len(t.entries))
		for k, id := range t.entries {
			out[k] = id
		}
		return out, true
	default:
		return nil, false
	}
}
