package tecs

// entitySet is an insertion-ordered set of entities keyed by id. Removal
// swaps the last element into the hole.
type entitySet struct {
	index map[EntityID]int
	items []*Entity
	ids   []EntityID
}

func newEntitySet() *entitySet {
	return &entitySet{index: make(map[EntityID]int)}
}

func (s *entitySet) add(e *Entity) bool {
	if _, ok := s.index[e.id]; ok {
		return false
	}
	s.index[e.id] = len(s.items)
	s.items = append(s.items, e)
	s.ids = append(s.ids, e.id)
	return true
}

func (s *entitySet) remove(id EntityID) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	last := len(s.items) - 1
	if i != last {
		s.items[i] = s.items[last]
		s.ids[i] = s.ids[last]
		s.index[s.ids[i]] = i
	}
	s.items[last] = nil
	s.items = s.items[:last]
	s.ids = s.ids[:last]
	delete(s.index, id)
	return true
}

func (s *entitySet) has(id EntityID) bool {
	_, ok := s.index[id]
	return ok
}

func (s *entitySet) len() int {
	return len(s.items)
}

func (s *entitySet) entities() []*Entity {
	out := make([]*Entity, len(s.items))
	copy(out, s.items)
	return out
}

func (s *entitySet) entityIDs() []EntityID {
	out := make([]EntityID, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *entitySet) clear() {
	clear(s.index)
	clear(s.items)
	s.items = s.items[:0]
	s.ids = s.ids[:0]
}

// idSet is an insertion-ordered set of entity ids. Queries record their
// diffs by id because an entity may already be back in its pool.
type idSet struct {
	index map[EntityID]int
	ids   []EntityID
}

func newIDSet() *idSet {
	return &idSet{index: make(map[EntityID]int)}
}

func (s *idSet) add(id EntityID) {
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
}

func (s *idSet) remove(id EntityID) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	last := len(s.ids) - 1
	if i != last {
		s.ids[i] = s.ids[last]
		s.index[s.ids[i]] = i
	}
	s.ids = s.ids[:last]
	delete(s.index, id)
}

func (s *idSet) len() int {
	return len(s.ids)
}

func (s *idSet) list() []EntityID {
	out := make([]EntityID, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *idSet) clear() {
	clear(s.index)
	s.ids = s.ids[:0]
}
