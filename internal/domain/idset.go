package domain

import (
	"bytes"
	"encoding/json"
	"io"
)

// IDSet is an insertion-ordered set of canonical ids.
// Iteration order is the order ids were first added; removing an id keeps the
// relative order of the remaining entries. The zero value is an empty set.
//
// Add and Remove never write to storage shared with another copy, so a copy
// made by assignment is an independent snapshot.
type IDSet struct {
	ids   []string
	index map[string]struct{}
}

// NewIDSet builds a set from ids, canonicalizing each and keeping the first
// occurrence of duplicates.
func NewIDSet(ids ...any) IDSet {
	s := IDSet{index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		key := CanonicalID(id)
		if _, ok := s.index[key]; ok {
			continue
		}
		s.index[key] = struct{}{}
		s.ids = append(s.ids, key)
	}
	return s
}

// Add appends id when absent. Returns true if the set changed.
func (s *IDSet) Add(id any) bool {
	key := CanonicalID(id)
	if _, ok := s.index[key]; ok {
		return false
	}
	index := s.copyIndex(len(s.ids) + 1)
	index[key] = struct{}{}
	s.index = index
	s.ids = append(s.ids[:len(s.ids):len(s.ids)], key)
	return true
}

// Remove deletes id when present. Returns true if the set changed.
func (s *IDSet) Remove(id any) bool {
	key := CanonicalID(id)
	if _, ok := s.index[key]; !ok {
		return false
	}
	index := s.copyIndex(len(s.ids))
	delete(index, key)
	s.index = index
	for i, v := range s.ids {
		if v == key {
			s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
			break
		}
	}
	return true
}

func (s IDSet) copyIndex(size int) map[string]struct{} {
	index := make(map[string]struct{}, size)
	for k := range s.index {
		index[k] = struct{}{}
	}
	return index
}

// Has reports membership after canonicalizing id.
func (s IDSet) Has(id any) bool {
	_, ok := s.index[CanonicalID(id)]
	return ok
}

// Index returns the position of id in insertion order, or -1.
func (s IDSet) Index(id any) int {
	key := CanonicalID(id)
	if _, ok := s.index[key]; !ok {
		return -1
	}
	for i, v := range s.ids {
		if v == key {
			return i
		}
	}
	return -1
}

// At returns the id at position i in insertion order.
func (s IDSet) At(i int) string { return s.ids[i] }

func (s IDSet) Len() int { return len(s.ids) }

// Values returns a copy of the ids in insertion order.
func (s IDSet) Values() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// MarshalJSON encodes the set as a JSON array of strings (never null).
func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON decodes an array whose elements may be strings or numbers.
func (s *IDSet) UnmarshalJSON(data []byte) error {
	var raw []any
	dec := json.NewDecoder(bytesReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*s = NewIDSet(raw...)
	return nil
}

func bytesReader(data []byte) io.Reader {
	return bytes.NewReader(data)
}
