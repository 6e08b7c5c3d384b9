package tecs

import (
	"math/bits"
)

// MaxTypes is the number of distinct component types and tags a single
// registry can hold. It is the bit width of Bitmask.
const MaxTypes = 256

// TypeID is the bit position assigned to a registered type or tag.
type TypeID uint8

// Bitmask is a fixed 256-bit vector with one bit per registered type or tag.
// Component types and tags share the same bit space.
type Bitmask [4]uint64

// Set sets the bit for id.
func (m *Bitmask) Set(id TypeID) {
	m[id>>6] |= 1 << (id & 63)
}

// Clear clears the bit for id.
func (m *Bitmask) Clear(id TypeID) {
	m[id>>6] &^= 1 << (id & 63)
}

// Has reports whether the bit for id is set.
func (m Bitmask) Has(id TypeID) bool {
	return m[id>>6]&(1<<(id&63)) != 0
}

// ContainsAll reports whether every bit of other is also set in m.
func (m Bitmask) ContainsAll(other Bitmask) bool {
	return m[0]&other[0] == other[0] &&
		m[1]&other[1] == other[1] &&
		m[2]&other[2] == other[2] &&
		m[3]&other[3] == other[3]
}

// ContainsAny reports whether m and other share at least one bit.
func (m Bitmask) ContainsAny(other Bitmask) bool {
	return m[0]&other[0] != 0 ||
		m[1]&other[1] != 0 ||
		m[2]&other[2] != 0 ||
		m[3]&other[3] != 0
}

// IsZero reports whether no bit is set.
func (m Bitmask) IsZero() bool {
	return m[0]|m[1]|m[2]|m[3] == 0
}

// Or returns the union of m and other.
func (m Bitmask) Or(other Bitmask) Bitmask {
	return Bitmask{m[0] | other[0], m[1] | other[1], m[2] | other[2], m[3] | other[3]}
}

// And returns the intersection of m and other.
func (m Bitmask) And(other Bitmask) Bitmask {
	return Bitmask{m[0] & other[0], m[1] & other[1], m[2] & other[2], m[3] & other[3]}
}

// AndNot returns the bits of m that are not set in other.
func (m Bitmask) AndNot(other Bitmask) Bitmask {
	return Bitmask{m[0] &^ other[0], m[1] &^ other[1], m[2] &^ other[2], m[3] &^ other[3]}
}

// Count returns the number of set bits.
func (m Bitmask) Count() int {
	return bits.OnesCount64(m[0]) +
		bits.OnesCount64(m[1]) +
		bits.OnesCount64(m[2]) +
		bits.OnesCount64(m[3])
}

// Equals reports whether m and other are identical.
func (m Bitmask) Equals(other Bitmask) bool {
	return m == other
}

// Bits returns the set bit positions in ascending order.
func (m Bitmask) Bits() []TypeID {
	out := make([]TypeID, 0, m.Count())
	for w, word := range m {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			out = append(out, TypeID(w*64+b))
			word &= word - 1
		}
	}
	return out
}

// Matches applies the query rule: every bit of all is present, at least one
// bit of oneOf is present (or oneOf is empty), and no bit of none is present.
func (m Bitmask) Matches(all, oneOf, none Bitmask) bool {
	if !m.ContainsAll(all) {
		return false
	}
	if !oneOf.IsZero() && !m.ContainsAny(oneOf) {
		return false
	}
	return !m.ContainsAny(none)
}
