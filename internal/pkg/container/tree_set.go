package container

import (
	"iter"

	"github.com/emirpasic/gods/sets/treeset"
)

// TreeSet is a set kept sorted by a comparator.
type TreeSet[E comparable] struct {
	set     *treeset.Set
	compare Comparator[E]
}

func NewTreeSet[E comparable](compare Comparator[E], elems ...E) *TreeSet[E] {
	s := &TreeSet[E]{set: treeset.NewWith(erase(compare)), compare: compare}
	for _, e := range elems {
		s.set.Add(e)
	}
	return s
}

func (s *TreeSet[E]) Len() int { return s.set.Size() }

// Ordered is false: the order is derived from the comparator, not from
// insertion history.
func (s *TreeSet[E]) Ordered() bool { return false }

func (s *TreeSet[E]) Comparator() Comparator[E] { return s.compare }

func (s *TreeSet[E]) Contains(e E) bool { return s.set.Contains(e) }

func (s *TreeSet[E]) Add(e E) bool {
	if s.set.Contains(e) {
		return false
	}
	s.set.Add(e)
	return true
}

func (s *TreeSet[E]) Remove(e E) bool {
	if !s.set.Contains(e) {
		return false
	}
	s.set.Remove(e)
	return true
}

func (s *TreeSet[E]) Clear() { s.set.Clear() }

func (s *TreeSet[E]) Values() []E { return typed[E](s.set.Values()) }

func (s *TreeSet[E]) All() iter.Seq[E] { return seqOf(s.Values()) }

func (s *TreeSet[E]) Iterator() Iterator[E] {
	return newSnapshotIterator(s.Values(), func(e E) { s.Remove(e) })
}

// First returns the smallest element.
func (s *TreeSet[E]) First() (E, bool) {
	values := s.set.Values()
	if len(values) == 0 {
		var zero E
		return zero, false
	}
	return as[E](values[0]), true
}

// Last returns the largest element.
func (s *TreeSet[E]) Last() (E, bool) {
	values := s.set.Values()
	if len(values) == 0 {
		var zero E
		return zero, false
	}
	return as[E](values[len(values)-1]), true
}

func (s *TreeSet[E]) Clone() *TreeSet[E] {
	return NewTreeSet(s.compare, s.Values()...)
}

func (s *TreeSet[E]) CloneAny() any { return s.Clone() }
