package tecs

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// EntityID identifies an entity within a world. Generated ids are UUIDv7
// strings; definitions may supply their own.
type EntityID string

// newID returns a fresh time-ordered identifier.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Entity owns a set of components and tags. Its mask is the OR of the bits
// of every attached component type and tag, and is updated on each add and
// remove.
//
// Entities are pooled. A destroyed *Entity may be handed out again by a
// later CreateEntity, so callers must not keep pointers across destruction.
type Entity struct {
	world *World
	id    EntityID
	mask  Bitmask

	// types holds components by type bit in insertion order.
	types map[TypeID][]*Component
	// byKey addresses every component by its per-entity key.
	byKey map[string]*Component

	componentsTick uint64
	valuesTick     uint64

	ready     bool
	destroyed bool
}

func newEntity(w *World) *Entity {
	return &Entity{
		world:     w,
		types:     make(map[TypeID][]*Component),
		byKey:     make(map[string]*Component),
		destroyed: true,
	}
}

// reset returns the entity to its blank pooled state.
func (e *Entity) reset() {
	e.id = ""
	e.mask = Bitmask{}
	clear(e.types)
	clear(e.byKey)
	e.componentsTick = 0
	e.valuesTick = 0
	e.ready = false
	e.destroyed = true
}

// ID returns the entity id.
func (e *Entity) ID() EntityID { return e.id }

// World returns the owning world.
func (e *Entity) World() *World { return e.world }

// Mask returns a copy of the entity's type bitmask.
func (e *Entity) Mask() Bitmask { return e.mask }

// Ready reports whether construction has completed.
func (e *Entity) Ready() bool { return e.ready }

// Destroyed reports whether the entity has been destroyed.
func (e *Entity) Destroyed() bool { return e.destroyed }

// ComponentsTick returns the tick of the last structural change.
func (e *Entity) ComponentsTick() uint64 { return e.componentsTick }

// ValuesTick returns the tick of the last field write on any component.
func (e *Entity) ValuesTick() uint64 { return e.valuesTick }

// Has reports whether the entity carries the named type or tag.
func (e *Entity) Has(name string) bool {
	id, ok := e.world.registry.Bit(name)
	return ok && e.mask.Has(id)
}

// HasTag reports whether the entity carries the named tag.
func (e *Entity) HasTag(name string) bool {
	return e.world.registry.IsTag(name) && e.Has(name)
}

// Tags returns the tag names in sorted order.
func (e *Entity) Tags() []string {
	return e.world.registry.namesOf(e.mask, true)
}

// Types returns the names of attached component types in sorted order.
func (e *Entity) Types() []string {
	return e.world.registry.namesOf(e.mask, false)
}

// Component returns the first instance of the named type, or nil.
func (e *Entity) Component(typ string) *Component {
	id, ok := e.world.registry.Bit(typ)
	if !ok {
		return nil
	}
	list := e.types[id]
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

// Components returns every instance of the named type.
func (e *Entity) Components(typ string) []*Component {
	id, ok := e.world.registry.Bit(typ)
	if !ok {
		return nil
	}
	list := e.types[id]
	out := make([]*Component, len(list))
	copy(out, list)
	return out
}

// ComponentByKey returns the component addressed by key, or nil.
func (e *Entity) ComponentByKey(key string) *Component {
	return e.byKey[key]
}

// AllComponents returns every attached component ordered by type bit.
func (e *Entity) AllComponents() []*Component {
	out := make([]*Component, 0, len(e.byKey))
	for _, id := range e.mask.Bits() {
		out = append(out, e.types[id]...)
	}
	return out
}

// AddComponent attaches a new instance of typ initialized from values. The
// key is taken from values["key"] and defaults to the component id.
func (e *Entity) AddComponent(typ string, values Values) (*Component, error) {
	key, _ := values["key"].(string)
	return e.addComponent(typ, key, values)
}

// AddComponentWithKey attaches a new instance of typ under key.
func (e *Entity) AddComponentWithKey(typ, key string, values Values) (*Component, error) {
	return e.addComponent(typ, key, values)
}

func (e *Entity) addComponent(typ, key string, values Values) (*Component, error) {
	if e.destroyed {
		return nil, eris.Wrapf(ErrEntityDestroyed, "add %q to %s", typ, e.id)
	}
	w := e.world
	t, ok := w.registry.Lookup(typ)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownType, "add %q to %s", typ, e.id)
	}
	if t.tag {
		return nil, eris.Wrapf(ErrUnknownType, "add %q to %s: name is a tag", typ, e.id)
	}

	id, _ := values["id"].(string)
	if id == "" {
		id = newID()
	} else if _, taken := w.components[id]; taken {
		return nil, eris.Wrapf(ErrDuplicateKey, "component id %q", id)
	}
	if key == "" {
		key = id
	}
	if _, taken := e.byKey[key]; taken {
		if existing := e.byKey[key]; t.multi || existing.typ != t {
			return nil, eris.Wrapf(ErrDuplicateKey, "key %q on %s", key, e.id)
		}
	}

	c := w.checkoutComponent(t)
	c.id = id
	c.key = key
	c.owner = e.id
	c.populate()
	if err := c.Update(values); err != nil {
		w.releaseComponent(c)
		return nil, err
	}

	// Singleton types replace the current instance once the new one is valid.
	if !t.multi {
		if list := e.types[t.id]; len(list) > 0 {
			e.RemoveComponent(list[0])
		}
	}

	e.types[t.id] = append(e.types[t.id], c)
	e.byKey[key] = c
	w.components[id] = c
	if !e.mask.Has(t.id) {
		e.mask.Set(t.id)
		w.holder(t.id).add(e)
	}
	e.componentsTick = w.tick
	c.ready = true
	c.updated = w.tick
	w.markDirty(e)

	if t.init != nil {
		t.init(c)
	}
	return c, nil
}

// RemoveComponent detaches c and returns it to its pool. It returns false
// if c is not attached to this entity.
func (e *Entity) RemoveComponent(c *Component) bool {
	if c == nil || c.owner != e.id || e.byKey[c.key] != c {
		return false
	}
	w := e.world
	t := c.typ

	if t.destroy != nil {
		t.destroy(c)
	}

	list := e.types[t.id]
	for i, x := range list {
		if x == c {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(e.types, t.id)
		e.mask.Clear(t.id)
		w.holder(t.id).remove(e.id)
	} else {
		e.types[t.id] = list
	}
	delete(e.byKey, c.key)
	delete(w.components, c.id)

	w.releaseComponent(c)
	e.componentsTick = w.tick
	w.markDirty(e)
	return true
}

// RemoveComponentByKey removes the component addressed by key.
func (e *Entity) RemoveComponentByKey(key string) bool {
	return e.RemoveComponent(e.byKey[key])
}

// AddTag sets a registered tag on the entity. Adding a present tag is a
// no-op.
func (e *Entity) AddTag(name string) error {
	if e.destroyed {
		return eris.Wrapf(ErrEntityDestroyed, "tag %q on %s", name, e.id)
	}
	w := e.world
	t, ok := w.registry.Lookup(name)
	if !ok {
		return eris.Wrapf(ErrUnknownType, "tag %q on %s", name, e.id)
	}
	if !t.tag {
		return eris.Wrapf(ErrNotTag, "tag %q on %s", name, e.id)
	}
	if e.mask.Has(t.id) {
		return nil
	}
	e.mask.Set(t.id)
	w.holder(t.id).add(e)
	e.componentsTick = w.tick
	w.markDirty(e)
	return nil
}

// RemoveTag clears a tag. It returns false if the tag was not set.
func (e *Entity) RemoveTag(name string) bool {
	w := e.world
	t, ok := w.registry.Lookup(name)
	if !ok || !t.tag || !e.mask.Has(t.id) {
		return false
	}
	e.mask.Clear(t.id)
	w.holder(t.id).remove(e.id)
	e.componentsTick = w.tick
	w.markDirty(e)
	return true
}

// Destroy removes the entity from the world. With deferred destruction
// enabled the entity is only tagged and the sweep finishes the job. Calling
// Destroy on a destroyed entity does nothing.
func (e *Entity) Destroy() {
	if e.destroyed {
		return
	}
	w := e.world
	if w.cfg.DeferredDestroy && e.ready {
		_ = e.AddTag(w.cfg.DestroyTag)
		return
	}
	w.destroyEntity(e)
}

// GetObject exports the entity as a definition. With includeIDs false the
// output recreates an equivalent entity under a fresh id.
func (e *Entity) GetObject(includeIDs bool) EntityDefinition {
	def := EntityDefinition{
		Tags:       e.Tags(),
		Components: make(map[string]ComponentList),
	}
	if includeIDs {
		def.ID = string(e.id)
	}
	for _, id := range e.mask.Bits() {
		for _, c := range e.types[id] {
			def.Components[c.typ.name] = append(def.Components[c.typ.name], c.Values(includeIDs))
		}
	}
	return def
}
