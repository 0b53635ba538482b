package container

import (
	"iter"

	"github.com/emirpasic/gods/sets/linkedhashset"
)

// LinkedHashSet is a set that iterates in insertion order.
type LinkedHashSet[E comparable] struct {
	set *linkedhashset.Set
}

func NewLinkedHashSet[E comparable](elems ...E) *LinkedHashSet[E] {
	s := &LinkedHashSet[E]{set: linkedhashset.New()}
	for _, e := range elems {
		s.set.Add(e)
	}
	return s
}

func (s *LinkedHashSet[E]) Len() int { return s.set.Size() }

func (s *LinkedHashSet[E]) Ordered() bool { return true }

func (s *LinkedHashSet[E]) Contains(e E) bool { return s.set.Contains(e) }

func (s *LinkedHashSet[E]) Add(e E) bool {
	if s.set.Contains(e) {
		return false
	}
	s.set.Add(e)
	return true
}

func (s *LinkedHashSet[E]) Remove(e E) bool {
	if !s.set.Contains(e) {
		return false
	}
	s.set.Remove(e)
	return true
}

func (s *LinkedHashSet[E]) Clear() { s.set.Clear() }

func (s *LinkedHashSet[E]) Values() []E { return typed[E](s.set.Values()) }

func (s *LinkedHashSet[E]) All() iter.Seq[E] { return seqOf(s.Values()) }

func (s *LinkedHashSet[E]) Iterator() Iterator[E] {
	return newSnapshotIterator(s.Values(), func(e E) { s.Remove(e) })
}

func (s *LinkedHashSet[E]) Clone() *LinkedHashSet[E] {
	return NewLinkedHashSet(s.Values()...)
}

func (s *LinkedHashSet[E]) CloneAny() any { return s.Clone() }

func typed[E any](values []interface{}) []E {
	out := make([]E, len(values))
	for i, v := range values {
		out[i] = as[E](v)
	}
	return out
}

// as converts an untyped gods value back to E; a nil interface becomes the
// zero value.
func as[E any](v interface{}) E {
	if v == nil {
		var zero E
		return zero
	}
	return v.(E)
}

func seqOf[E any](values []E) iter.Seq[E] {
	return func(yield func(E) bool) {
		for _, v := range values {
			if !yield(v) {
				return
			}
		}
	}
}
