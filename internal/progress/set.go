package progress

import (
	"encoding/json"
	"sort"
)

// Set is a set of flashcard indices. It serializes as a sorted JSON array.
type Set map[int]struct{}

// NewSet returns a set holding the given indices.
func NewSet(indices ...int) Set {
	s := make(Set, len(indices))
	for _, i := range indices {
		s[i] = struct{}{}
	}
	return s
}

func (s Set) Add(i int)      { s[i] = struct{}{} }
func (s Set) Remove(i int)   { delete(s, i) }
func (s Set) Has(i int) bool { _, ok := s[i]; return ok }
func (s Set) Len() int       { return len(s) }

// Sorted returns the indices in ascending order.
func (s Set) Sorted() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	return NewSet(s.Sorted()...)
}

// MarshalJSON implements json.Marshaler.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Set) UnmarshalJSON(data []byte) error {
	var indices []int
	if err := json.Unmarshal(data, &indices); err != nil {
		return err
	}
	*s = NewSet(indices...)
	return nil
}
