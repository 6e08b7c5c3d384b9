package tecs

import (
	"slices"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// QueryConfig describes a query. All, Any and Not name registered types or
// tags. At most one of From, FromReverse and FromQuery may be set; without
// any of them the query runs over the whole world.
type QueryConfig struct {
	All []string
	Any []string
	Not []string

	// From fixes the candidate list.
	From []*Entity
	// FromReverse takes as candidates every entity holding a component of
	// the given type that references the given entity.
	FromReverse *ReverseSource
	// FromQuery takes as candidates the current results of another query.
	FromQuery *Query

	// Persist registers the query with the world so that Reindex keeps it
	// current. Only world-sourced queries can be persisted.
	Persist bool

	TrackAdded   bool
	TrackRemoved bool
}

// ReverseSource selects entities through reference edges into Entity.
type ReverseSource struct {
	Entity *Entity
	Type   string
}

// Filter narrows Execute output by change ticks. An entity passes when its
// values tick is at least UpdatedValues and its components tick is at least
// UpdatedComponents. Zero disables a threshold.
type Filter struct {
	UpdatedValues     uint64
	UpdatedComponents uint64
}

type querySource uint8

const (
	sourceWorld querySource = iota
	sourceList
	sourceReverse
	sourceQuery
)

// Query is a compiled mask predicate with a result set. Persisted queries
// are updated incrementally from the world's dirty set; the rest are
// rebuilt on every Execute.
type Query struct {
	world *World

	allMask, anyMask, notMask Bitmask

	source  querySource
	from    []EntityID
	reverse ReverseSource
	target  EntityID
	parent  *Query

	persist      bool
	trackAdded   bool
	trackRemoved bool

	results *entitySet
	added   *idSet
	removed *idSet

	built  bool
	closed bool
}

// CreateQuery compiles cfg and performs the initial build.
func (w *World) CreateQuery(cfg QueryConfig) (*Query, error) {
	q := &Query{
		world:        w,
		persist:      cfg.Persist,
		trackAdded:   cfg.TrackAdded,
		trackRemoved: cfg.TrackRemoved,
		results:      newEntitySet(),
		added:        newIDSet(),
		removed:      newIDSet(),
	}

	var err error
	if q.allMask, err = w.registry.Mask(cfg.All...); err != nil {
		return nil, eris.Wrap(err, "query all")
	}
	if q.anyMask, err = w.registry.Mask(cfg.Any...); err != nil {
		return nil, eris.Wrap(err, "query any")
	}
	if q.notMask, err = w.registry.Mask(cfg.Not...); err != nil {
		return nil, eris.Wrap(err, "query not")
	}

	sources := 0
	if cfg.From != nil {
		sources++
		q.source = sourceList
		q.from = make([]EntityID, 0, len(cfg.From))
		for _, e := range cfg.From {
			if e != nil {
				q.from = append(q.from, e.id)
			}
		}
	}
	if cfg.FromReverse != nil {
		sources++
		q.source = sourceReverse
		if cfg.FromReverse.Entity == nil {
			return nil, eris.Wrap(ErrInvalidValue, "query reverse source without entity")
		}
		if t, ok := w.registry.Lookup(cfg.FromReverse.Type); !ok || t.tag {
			return nil, eris.Wrapf(ErrUnknownType, "query reverse source %q", cfg.FromReverse.Type)
		}
		q.reverse = *cfg.FromReverse
		q.target = cfg.FromReverse.Entity.id
	}
	if cfg.FromQuery != nil {
		sources++
		q.source = sourceQuery
		q.parent = cfg.FromQuery
	}
	if sources > 1 {
		return nil, eris.Wrap(ErrInvalidValue, "query declares more than one source")
	}
	if q.persist && q.source != sourceWorld {
		return nil, eris.Wrap(ErrUnindexableSource, "persist query with explicit source")
	}

	if q.source == sourceWorld && q.allMask.IsZero() {
		w.log.Warn("tecs: query has no required types, scanning all entities",
			zap.Int("entities", len(w.entities)),
			zap.Bool("persist", q.persist))
	}

	q.rebuild()
	if q.persist {
		w.queries = append(w.queries, q)
	}
	return q, nil
}

// Matches applies the mask rule to e.
func (q *Query) Matches(e *Entity) bool {
	return e.mask.Matches(q.allMask, q.anyMask, q.notMask)
}

// Persisted reports whether the world maintains the query incrementally.
func (q *Query) Persisted() bool { return q.persist }

// Execute returns the current results. Non-persisted queries are rebuilt
// first. The returned slice is a copy.
func (q *Query) Execute() []*Entity {
	if !q.persist && !q.closed {
		q.rebuild()
	}
	return q.results.entities()
}

// ExecuteFiltered is Execute restricted by f. The result set itself is not
// modified.
func (q *Query) ExecuteFiltered(f Filter) []*Entity {
	all := q.Execute()
	out := all[:0]
	for _, e := range all {
		if e.valuesTick < f.UpdatedValues || e.componentsTick < f.UpdatedComponents {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Refresh rebuilds the results from scratch. Differences against the
// previous results are recorded when tracking is enabled.
func (q *Query) Refresh() {
	if q.closed {
		return
	}
	q.rebuild()
}

// Has reports whether e is in the results.
func (q *Query) Has(e *Entity) bool {
	return e != nil && !e.destroyed && q.results.has(e.id)
}

// Len returns the size of the results as of the last update.
func (q *Query) Len() int {
	return q.results.len()
}

// Added returns entities that joined the results since the last
// ClearChanges. Entities destroyed in the meantime are left out.
func (q *Query) Added() []*Entity {
	return q.world.resolve(q.added.list())
}

// Removed returns the ids of entities that left the results since the last
// ClearChanges. Destroyed entities are reported here too, so only ids are
// kept.
func (q *Query) Removed() []EntityID {
	return q.removed.list()
}

// ClearChanges empties the added and removed sets.
func (q *Query) ClearChanges() {
	q.added.clear()
	q.removed.clear()
}

// Close detaches a persisted query from its world and empties it.
func (q *Query) Close() {
	if q.closed {
		return
	}
	q.closed = true
	if q.persist {
		w := q.world
		if i := slices.Index(w.queries, q); i >= 0 {
			w.queries = slices.Delete(w.queries, i, i+1)
		}
	}
	q.results.clear()
	q.ClearChanges()
}

// updateEntity re-evaluates a single dirty entity.
func (q *Query) updateEntity(e *Entity) {
	in := q.results.has(e.id)
	match := q.Matches(e)
	switch {
	case match && !in:
		q.results.add(e)
		if q.trackAdded {
			q.added.add(e.id)
		}
	case !match && in:
		q.results.remove(e.id)
		if q.trackRemoved {
			q.removed.add(e.id)
		}
	}
}

// drop removes an entity that is being destroyed.
func (q *Query) drop(e *Entity) {
	q.added.remove(e.id)
	if q.results.remove(e.id) && q.trackRemoved {
		q.removed.add(e.id)
	}
}

// rebuild recomputes the results. The first build records no changes.
func (q *Query) rebuild() {
	prev := q.results
	next := newEntitySet()
	for _, e := range q.candidates() {
		if e.ready && !e.destroyed && q.Matches(e) {
			next.add(e)
		}
	}
	q.results = next

	if !q.built {
		q.built = true
		return
	}
	if q.trackAdded {
		for _, e := range next.items {
			if !prev.has(e.id) {
				q.added.add(e.id)
			}
		}
	}
	if q.trackRemoved {
		for _, id := range prev.ids {
			if !next.has(id) {
				q.removed.add(id)
			}
		}
	}
}

func (q *Query) candidates() []*Entity {
	w := q.world
	switch q.source {
	case sourceList:
		return w.resolve(q.from)
	case sourceReverse:
		return w.resolve(w.refs.Sources(q.target, q.reverse.Type))
	case sourceQuery:
		return q.parent.Execute()
	}

	if q.allMask.IsZero() {
		return w.Entities()
	}
	var smallest *entitySet
	for _, id := range q.allMask.Bits() {
		s := w.holders[id]
		if s == nil {
			return nil
		}
		if smallest == nil || s.len() < smallest.len() {
			smallest = s
		}
	}
	return smallest.entities()
}

// resolve maps ids to live entities, skipping any that are gone.
func (w *World) resolve(ids []EntityID) []*Entity {
	out := make([]*Entity, 0, len(ids))
	for _, id := range ids {
		if e := w.entities[id]; e != nil {
			out = append(out, e)
		}
	}
	return out
}
