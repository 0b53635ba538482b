package container

import (
	"iter"

	"github.com/emirpasic/gods/maps/treemap"
)

// TreeMap keeps its keys sorted by a comparator.
type TreeMap[K comparable, V any] struct {
	m       *treemap.Map
	compare Comparator[K]
}

func NewTreeMap[K comparable, V any](compare Comparator[K]) *TreeMap[K, V] {
	return &TreeMap[K, V]{m: treemap.NewWith(erase(compare)), compare: compare}
}

func (m *TreeMap[K, V]) Comparator() Comparator[K] { return m.compare }

func (m *TreeMap[K, V]) Len() int { return m.m.Size() }

func (m *TreeMap[K, V]) Get(k K) (V, bool) {
	v, ok := m.m.Get(k)
	if !ok {
		var zero V
		return zero, false
	}
	return as[V](v), true
}

func (m *TreeMap[K, V]) ContainsKey(k K) bool {
	_, ok := m.m.Get(k)
	return ok
}

func (m *TreeMap[K, V]) Put(k K, v V) (V, bool) {
	prev, ok := m.Get(k)
	m.m.Put(k, v)
	return prev, ok
}

func (m *TreeMap[K, V]) Remove(k K) (V, bool) {
	prev, ok := m.Get(k)
	if ok {
		m.m.Remove(k)
	}
	return prev, ok
}

func (m *TreeMap[K, V]) Clear() { m.m.Clear() }

func (m *TreeMap[K, V]) Keys() []K { return typed[K](m.m.Keys()) }

func (m *TreeMap[K, V]) Values() []V { return typed[V](m.m.Values()) }

func (m *TreeMap[K, V]) All() iter.Seq2[K, V] { return seq2Of(m.Keys(), m.Values()) }

func (m *TreeMap[K, V]) Iterator() EntryIterator[K, V] {
	return newSnapshotEntryIterator(m.Keys(), m.Values(), func(k K) { m.Remove(k) })
}

func (m *TreeMap[K, V]) Clone() *TreeMap[K, V] {
	c := NewTreeMap[K, V](m.compare)
	keys, values := m.Keys(), m.Values()
	for i := range keys {
		c.m.Put(keys[i], values[i])
	}
	return c
}

func (m *TreeMap[K, V]) CloneAny() any { return m.Clone() }
