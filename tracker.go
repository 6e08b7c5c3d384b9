package tecs

import (
	"sort"
)

// RefEdge is one recorded reference into a target entity.
type RefEdge struct {
	Source    EntityID
	Component string
	Type      string
	Field     string
	Sub       string
	Count     int
}

type refPath struct {
	component string
	typ       string
	field     string
	sub       string
}

// ReferenceTracker records which component fields point at which entities,
// keyed target -> field path -> source -> count. Destroying a target walks
// its edges to clear every field that still points at it.
type ReferenceTracker struct {
	edges map[EntityID]map[refPath]map[EntityID]int
}

// NewReferenceTracker creates an empty tracker.
func NewReferenceTracker() *ReferenceTracker {
	return &ReferenceTracker{
		edges: make(map[EntityID]map[refPath]map[EntityID]int),
	}
}

// AddRef records that field (and sub key, for maps) of component on source
// points at target. Repeated adds are counted.
func (t *ReferenceTracker) AddRef(target, source EntityID, component, typ, field, sub string) {
	if target == "" {
		return
	}
	paths := t.edges[target]
	if paths == nil {
		paths = make(map[refPath]map[EntityID]int)
		t.edges[target] = paths
	}
	p := refPath{component: component, typ: typ, field: field, sub: sub}
	sources := paths[p]
	if sources == nil {
		sources = make(map[EntityID]int, 1)
		paths[p] = sources
	}
	sources[source]++
}

// DeleteRef undoes one AddRef with the same key. The edge disappears when
// its count reaches zero.
func (t *ReferenceTracker) DeleteRef(target, source EntityID, component, typ, field, sub string) {
	paths := t.edges[target]
	if paths == nil {
		return
	}
	p := refPath{component: component, typ: typ, field: field, sub: sub}
	sources := paths[p]
	if sources == nil {
		return
	}
	if sources[source] <= 1 {
		delete(sources, source)
	} else {
		sources[source]--
	}
	if len(sources) == 0 {
		delete(paths, p)
	}
	if len(paths) == 0 {
		delete(t.edges, target)
	}
}

// Count returns the total reference count held against target.
func (t *ReferenceTracker) Count(target EntityID) int {
	n := 0
	for _, sources := range t.edges[target] {
		for _, c := range sources {
			n += c
		}
	}
	return n
}

// Sources returns the distinct entities holding a component of type typ
// that references target. An empty typ matches every type.
func (t *ReferenceTracker) Sources(target EntityID, typ string) []EntityID {
	seen := make(map[EntityID]struct{})
	var out []EntityID
	for p, sources := range t.edges[target] {
		if typ != "" && p.typ != typ {
			continue
		}
		for src := range sources {
			if _, ok := seen[src]; ok {
				continue
			}
			seen[src] = struct{}{}
			out = append(out, src)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Edges returns a snapshot of every edge pointing at target.
func (t *ReferenceTracker) Edges(target EntityID) []RefEdge {
	var out []RefEdge
	for p, sources := range t.edges[target] {
		for src, c := range sources {
			out = append(out, RefEdge{
				Source:    src,
				Component: p.component,
				Type:      p.typ,
				Field:     p.field,
				Sub:       p.sub,
				Count:     c,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Component != b.Component {
			return a.Component < b.Component
		}
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		return a.Sub < b.Sub
	})
	return out
}

// Forget drops every edge pointing at target.
func (t *ReferenceTracker) Forget(target EntityID) {
	delete(t.edges, target)
}

// Len returns the number of entities currently referenced.
func (t *ReferenceTracker) Len() int {
	return len(t.edges)
}
