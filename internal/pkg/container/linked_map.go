package container

import (
	"iter"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// LinkedHashMap iterates in key insertion order. Re-putting an existing key
// keeps its position.
type LinkedHashMap[K comparable, V any] struct {
	m *linkedhashmap.Map
}

func NewLinkedHashMap[K comparable, V any]() *LinkedHashMap[K, V] {
	return &LinkedHashMap[K, V]{m: linkedhashmap.New()}
}

func (m *LinkedHashMap[K, V]) Len() int { return m.m.Size() }

func (m *LinkedHashMap[K, V]) Get(k K) (V, bool) {
	v, ok := m.m.Get(k)
	if !ok {
		var zero V
		return zero, false
	}
	return as[V](v), true
}

func (m *LinkedHashMap[K, V]) ContainsKey(k K) bool {
	_, ok := m.m.Get(k)
	return ok
}

func (m *LinkedHashMap[K, V]) Put(k K, v V) (V, bool) {
	prev, ok := m.Get(k)
	m.m.Put(k, v)
	return prev, ok
}

func (m *LinkedHashMap[K, V]) Remove(k K) (V, bool) {
	prev, ok := m.Get(k)
	if ok {
		m.m.Remove(k)
	}
	return prev, ok
}

func (m *LinkedHashMap[K, V]) Clear() { m.m.Clear() }

func (m *LinkedHashMap[K, V]) Keys() []K { return typed[K](m.m.Keys()) }

func (m *LinkedHashMap[K, V]) Values() []V { return typed[V](m.m.Values()) }

func (m *LinkedHashMap[K, V]) All() iter.Seq2[K, V] { return seq2Of(m.Keys(), m.Values()) }

func (m *LinkedHashMap[K, V]) Iterator() EntryIterator[K, V] {
	return newSnapshotEntryIterator(m.Keys(), m.Values(), func(k K) { m.Remove(k) })
}

func (m *LinkedHashMap[K, V]) Clone() *LinkedHashMap[K, V] {
	c := NewLinkedHashMap[K, V]()
	keys, values := m.Keys(), m.Values()
	for i := range keys {
		c.m.Put(keys[i], values[i])
	}
	return c
}

func (m *LinkedHashMap[K, V]) CloneAny() any { return m.Clone() }

func seq2Of[K, V any](keys []K, values []V) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := range keys {
			if !yield(keys[i], values[i]) {
				return
			}
		}
	}
}
