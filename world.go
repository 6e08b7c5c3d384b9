package tecs

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// World owns the type registry, the pools, the live entity table and the
// persisted queries. Structural changes mark entities dirty; Reindex
// replays the dirty set against every persisted query.
//
// A World is driven by one goroutine. Concurrent use must be serialized by
// the caller.
type World struct {
	cfg      Config
	log      *zap.Logger
	registry *Registry
	refs     *ReferenceTracker

	entityPool *Pool[*Entity]
	compPools  [MaxTypes]*Pool[*Component]

	entities   map[EntityID]*Entity
	components map[string]*Component
	holders    [MaxTypes]*entitySet

	dirty   *entitySet
	queries []*Query

	systems map[string][]System
	tick    uint64
}

// Option customizes a World at construction.
type Option func(*World)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.log = l
		}
	}
}

// WithRegistry makes the world use an existing registry.
func WithRegistry(r *Registry) Option {
	return func(w *World) {
		if r != nil {
			w.registry = r
		}
	}
}

// NewWorld creates a world from cfg. With deferred destruction enabled the
// destroy tag is registered and the sweep system is installed first in the
// destroy group.
func NewWorld(cfg Config, opts ...Option) (*World, error) {
	cfg = cfg.withDefaults()
	w := &World{
		cfg:        cfg,
		log:        zap.NewNop(),
		registry:   NewRegistry(),
		refs:       NewReferenceTracker(),
		entities:   make(map[EntityID]*Entity),
		components: make(map[string]*Component),
		dirty:      newEntitySet(),
		systems:    make(map[string][]System),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.entityPool = NewPool(func() *Entity { return newEntity(w) }, (*Entity).reset)
	if cfg.EntityPoolSize > 0 {
		w.entityPool.SpinUp(cfg.EntityPoolSize)
	}

	if cfg.DeferredDestroy {
		if !w.registry.IsTag(cfg.DestroyTag) {
			if _, err := w.registry.RegisterTag(cfg.DestroyTag); err != nil {
				return nil, eris.Wrap(err, "register destroy tag")
			}
		}
		w.systems[cfg.DestroyGroup] = append(w.systems[cfg.DestroyGroup], &DestroySweep{})
	}
	return w, nil
}

// Config returns the configuration the world was built with.
func (w *World) Config() Config { return w.cfg }

// Logger returns the world logger.
func (w *World) Logger() *zap.Logger { return w.log }

// Registry returns the type registry.
func (w *World) Registry() *Registry { return w.registry }

// Refs returns the reference tracker.
func (w *World) Refs() *ReferenceTracker { return w.refs }

// CurrentTick returns the logical tick counter.
func (w *World) CurrentTick() uint64 { return w.tick }

// RegisterType registers a component type on the world's registry and
// preallocates its pool.
func (w *World) RegisterType(name string, spec TypeSpec) (TypeID, error) {
	id, err := w.registry.RegisterType(name, spec)
	if err != nil {
		return 0, err
	}
	w.componentPool(w.registry.ByID(id))
	w.log.Debug("tecs: registered type",
		zap.String("name", name),
		zap.Uint8("bit", uint8(id)),
		zap.Int("fields", len(spec.Fields)))
	return id, nil
}

// RegisterTag registers a tag on the world's registry.
func (w *World) RegisterTag(name string) (TypeID, error) {
	id, err := w.registry.RegisterTag(name)
	if err != nil {
		return 0, err
	}
	w.log.Debug("tecs: registered tag", zap.String("name", name), zap.Uint8("bit", uint8(id)))
	return id, nil
}

func (w *World) holder(id TypeID) *entitySet {
	s := w.holders[id]
	if s == nil {
		s = newEntitySet()
		w.holders[id] = s
	}
	return s
}

func (w *World) componentPool(t *ComponentType) *Pool[*Component] {
	p := w.compPools[t.id]
	if p != nil {
		return p
	}
	p = NewPool(func() *Component { return newComponent(w, t) }, (*Component).reset)
	size := t.poolSize
	if size == 0 {
		size = w.cfg.ComponentPoolSize
	}
	if size > 0 {
		p.SpinUp(size)
	}
	w.compPools[t.id] = p
	return p
}

func (w *World) checkoutComponent(t *ComponentType) *Component {
	return w.componentPool(t).Checkout()
}

func (w *World) releaseComponent(c *Component) {
	w.componentPool(c.typ).Release(c)
}

// markDirty queues e for reindexing. Entities still under construction
// are queued once when they become ready.
func (w *World) markDirty(e *Entity) {
	if !e.ready {
		return
	}
	w.dirty.add(e)
}

// NewEntity creates an empty, ready entity.
func (w *World) NewEntity() *Entity {
	e, _ := w.CreateEntity(EntityDefinition{})
	return e
}

// CreateEntity builds an entity from def. Components are keyed either by
// type name or, for entries whose name is not a registered type, by the
// component key with the type given in the "type" field.
func (w *World) CreateEntity(def EntityDefinition) (*Entity, error) {
	id := EntityID(def.ID)
	if id == "" {
		id = EntityID(newID())
	} else if _, taken := w.entities[id]; taken {
		return nil, eris.Wrapf(ErrDuplicateEntity, "create %q", id)
	}

	e := w.entityPool.Checkout()
	e.id = id
	e.destroyed = false
	e.componentsTick = w.tick
	e.valuesTick = w.tick
	w.entities[id] = e

	if err := w.populate(e, def); err != nil {
		w.destroyEntity(e)
		return nil, err
	}

	e.ready = true
	w.markDirty(e)
	return e, nil
}

func (w *World) populate(e *Entity, def EntityDefinition) error {
	for _, tag := range def.Tags {
		if err := e.AddTag(tag); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(def.Components))
	for name := range def.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		list := def.Components[name]
		if t, ok := w.registry.Lookup(name); ok && !t.tag {
			for _, values := range list {
				if _, err := e.AddComponent(name, values); err != nil {
					return err
				}
			}
			continue
		}
		for _, values := range list {
			typ, _ := values["type"].(string)
			if typ == "" {
				return eris.Wrapf(ErrUnknownType, "definition component %q", name)
			}
			key, _ := values["key"].(string)
			if key == "" && len(list) == 1 {
				key = name
			}
			if _, err := e.AddComponentWithKey(typ, key, values); err != nil {
				return err
			}
		}
	}
	return nil
}

// CreateEntities builds one entity per definition. On error the entities
// created so far are kept and returned with the error.
func (w *World) CreateEntities(defs []EntityDefinition) ([]*Entity, error) {
	out := make([]*Entity, 0, len(defs))
	for i, def := range defs {
		e, err := w.CreateEntity(def)
		if err != nil {
			return out, eris.Wrapf(err, "definition %d", i)
		}
		out = append(out, e)
	}
	return out, nil
}

// destroyEntity removes every component and tag, clears references into
// the entity, drops it from all queries and returns it to its pool.
func (w *World) destroyEntity(e *Entity) {
	if e.destroyed {
		return
	}
	e.destroyed = true
	e.ready = false

	for _, c := range e.AllComponents() {
		e.RemoveComponent(c)
	}
	for _, id := range e.mask.Bits() {
		w.holder(id).remove(e.id)
	}
	e.mask = Bitmask{}

	w.clearRefsTo(e.id)

	delete(w.entities, e.id)
	w.dirty.remove(e.id)
	for _, q := range w.queries {
		q.drop(e)
	}
	w.entityPool.Release(e)
}

// clearRefsTo empties every field that references target.
func (w *World) clearRefsTo(target EntityID) {
	for _, edge := range w.refs.Edges(target) {
		if c := w.components[edge.Component]; c != nil {
			c.clearRefTo(edge.Field, edge.Sub, target)
		}
	}
	w.refs.Forget(target)
}

// FlushDestroyed destroys every entity carrying the destroy tag and
// returns how many were removed.
func (w *World) FlushDestroyed() int {
	if !w.cfg.DeferredDestroy {
		return 0
	}
	id, ok := w.registry.Bit(w.cfg.DestroyTag)
	if !ok || w.holders[id] == nil {
		return 0
	}
	pending := w.holders[id].entities()
	for _, e := range pending {
		w.destroyEntity(e)
	}
	if len(pending) > 0 {
		w.log.Debug("tecs: swept destroyed entities", zap.Int("count", len(pending)))
	}
	return len(pending)
}

// Entity returns the live entity with id, or nil.
func (w *World) Entity(id EntityID) *Entity {
	return w.entities[id]
}

// Component returns the live component with id, or nil.
func (w *World) Component(id string) *Component {
	return w.components[id]
}

// Entities returns every live entity ordered by id.
func (w *World) Entities() []*Entity {
	out := make([]*Entity, 0, len(w.entities))
	for _, e := range w.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	return len(w.entities)
}

// Reindex replays every dirty entity against the persisted queries.
func (w *World) Reindex() {
	if w.dirty.len() == 0 {
		return
	}
	pending := w.dirty.entities()
	w.dirty.clear()
	for _, e := range pending {
		if e.destroyed {
			continue
		}
		for _, q := range w.queries {
			q.updateEntity(e)
		}
	}
}

// Tick advances the logical clock and trims idle pools when enabled.
func (w *World) Tick() uint64 {
	w.tick++
	if w.cfg.CleanupPools {
		w.cleanupPools()
	}
	return w.tick
}

func (w *World) cleanupPools() {
	dropped := w.entityPool.Cleanup()
	for _, p := range w.compPools {
		if p != nil {
			dropped += p.Cleanup()
		}
	}
	if dropped > 0 {
		w.log.Debug("tecs: trimmed pools", zap.Int("dropped", dropped), zap.Uint64("tick", w.tick))
	}
}

// Stats is a snapshot of world bookkeeping.
type Stats struct {
	Tick             uint64
	Entities         int
	Components       int
	PooledEntities   int
	PooledComponents int
	Queries          int
	Dirty            int
	Referenced       int
}

// Stats returns a snapshot of world bookkeeping.
func (w *World) Stats() Stats {
	s := Stats{
		Tick:           w.tick,
		Entities:       len(w.entities),
		Components:     len(w.components),
		PooledEntities: w.entityPool.Len(),
		Queries:        len(w.queries),
		Dirty:          w.dirty.len(),
		Referenced:     w.refs.Len(),
	}
	for _, p := range w.compPools {
		if p != nil {
			s.PooledComponents += p.Len()
		}
	}
	return s
}
