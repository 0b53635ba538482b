package container

import (
	"iter"
	"maps"
	"slices"
)

// HashSet is an unordered set backed by a Go map.
type HashSet[E comparable] struct {
	elems map[E]struct{}
}

func NewHashSet[E comparable](elems ...E) *HashSet[E] {
	s := &HashSet[E]{elems: make(map[E]struct{}, len(elems))}
	for _, e := range elems {
		s.elems[e] = struct{}{}
	}
	return s
}

func (s *HashSet[E]) Len() int { return len(s.elems) }

func (s *HashSet[E]) Ordered() bool { return false }

func (s *HashSet[E]) Contains(e E) bool {
	_, ok := s.elems[e]
	return ok
}

func (s *HashSet[E]) Add(e E) bool {
	if s.Contains(e) {
		return false
	}
	s.elems[e] = struct{}{}
	return true
}

func (s *HashSet[E]) Remove(e E) bool {
	if !s.Contains(e) {
		return false
	}
	delete(s.elems, e)
	return true
}

func (s *HashSet[E]) Clear() { clear(s.elems) }

func (s *HashSet[E]) Values() []E { return slices.Collect(maps.Keys(s.elems)) }

func (s *HashSet[E]) All() iter.Seq[E] { return maps.Keys(s.elems) }

func (s *HashSet[E]) Iterator() Iterator[E] {
	return newSnapshotIterator(s.Values(), func(e E) { s.Remove(e) })
}

func (s *HashSet[E]) Clone() *HashSet[E] {
	return &HashSet[E]{elems: maps.Clone(s.elems)}
}

func (s *HashSet[E]) CloneAny() any { return s.Clone() }
