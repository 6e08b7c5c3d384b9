package tecs

import (
	"sort"
)

// EntitySet is a component field holding references to other entities.
// Members are removed automatically when the referenced entity is
// destroyed.
//
// Usage:
//
//	inv := c.RefSet("items")
//	inv.Add(sword)
//	inv.Has(sword) // true
type EntitySet struct {
	comp    *Component
	field   string
	members map[EntityID]struct{}
}

func newEntitySetField(c *Component, field string) *EntitySet {
	return &EntitySet{comp: c, field: field, members: make(map[EntityID]struct{})}
}

// Add inserts e into the set.
func (s *EntitySet) Add(e *Entity) {
	if e == nil {
		return
	}
	s.AddID(e.id)
}

// AddID inserts the entity with the given id.
func (s *EntitySet) AddID(id EntityID) {
	if id == "" {
		return
	}
	if _, ok := s.members[id]; ok {
		return
	}
	s.members[id] = struct{}{}
	s.comp.track(id, s.field, "")
	s.comp.changed()
}

// Delete removes e from the set.
func (s *EntitySet) Delete(e *Entity) {
	if e == nil {
		return
	}
	s.DeleteID(e.id)
}

// DeleteID removes the entity with the given id.
func (s *EntitySet) DeleteID(id EntityID) {
	if _, ok := s.members[id]; !ok {
		return
	}
	delete(s.members, id)
	s.comp.untrack(id, s.field, "")
	s.comp.changed()
}

// Has reports whether e is a member.
func (s *EntitySet) Has(e *Entity) bool {
	if e == nil {
		return false
	}
	return s.HasID(e.id)
}

// HasID reports whether id is a member.
func (s *EntitySet) HasID(id EntityID) bool {
	_, ok := s.members[id]
	return ok
}

// Len returns the number of members.
func (s *EntitySet) Len() int {
	return len(s.members)
}

// IDs returns the member ids in sorted order.
func (s *EntitySet) IDs() []EntityID {
	out := make([]EntityID, 0, len(s.members))
	for id := range s.members {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Entities returns the live members.
func (s *EntitySet) Entities() []*Entity {
	ids := s.IDs()
	out := make([]*Entity, 0, len(ids))
	for _, id := range ids {
		if e := s.comp.world.Entity(id); e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Clear removes every member.
func (s *EntitySet) Clear() {
	if len(s.members) == 0 {
		return
	}
	for id := range s.members {
		s.comp.untrack(id, s.field, "")
	}
	clear(s.members)
	s.comp.changed()
}

// replace swaps the contents for ids.
func (s *EntitySet) replace(ids []EntityID) {
	s.Clear()
	for _, id := range ids {
		s.AddID(id)
	}
}

// EntityMap is a component field holding entity references under string
// keys. A key is deleted automatically when its entity is destroyed.
type EntityMap struct {
	comp    *Component
	field   string
	entries map[string]EntityID
}

func newEntityMapField(c *Component, field string) *EntityMap {
	return &EntityMap{comp: c, field: field, entries: make(map[string]EntityID)}
}

// Set stores e under key. A nil e deletes the key.
func (m *EntityMap) Set(key string, e *Entity) {
	if e == nil {
		m.Delete(key)
		return
	}
	m.SetID(key, e.id)
}

// SetID stores the entity id under key.
func (m *EntityMap) SetID(key string, id EntityID) {
	if id == "" {
		m.Delete(key)
		return
	}
	old, ok := m.entries[key]
	if ok && old == id {
		return
	}
	if ok {
		m.comp.untrack(old, m.field, key)
	}
	m.entries[key] = id
	m.comp.track(id, m.field, key)
	m.comp.changed()
}

// Get returns the live entity stored under key.
func (m *EntityMap) Get(key string) *Entity {
	id, ok := m.entries[key]
	if !ok {
		return nil
	}
	return m.comp.world.Entity(id)
}

// GetID returns the id stored under key.
func (m *EntityMap) GetID(key string) (EntityID, bool) {
	id, ok := m.entries[key]
	return id, ok
}

// Delete removes key.
func (m *EntityMap) Delete(key string) {
	id, ok := m.entries[key]
	if !ok {
		return
	}
	delete(m.entries, key)
	m.comp.untrack(id, m.field, key)
	m.comp.changed()
}

// Keys returns the keys in sorted order.
func (m *EntityMap) Keys() []string {
	out := make([]string, 0, len(m.entries))
	for k := range m.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of entries.
func (m *EntityMap) Len() int {
	return len(m.entries)
}

// Clear removes every entry.
func (m *EntityMap) Clear() {
	if len(m.entries) == 0 {
		return
	}
	for k, id := range m.entries {
		m.comp.untrack(id, m.field, k)
	}
	clear(m.entries)
	m.comp.changed()
}

// snapshot returns a copy of the entries keyed by string id.
func (m *EntityMap) snapshot() map[string]string {
	out := make(map[string]string, len(m.entries))
	for k, id := range m.entries {
		out[k] = string(id)
	}
	return out
}

func (m *EntityMap) replace(entries map[string]EntityID) {
	m.Clear()
	for k, id := range entries {
		m.SetID(k, id)
	}
}
