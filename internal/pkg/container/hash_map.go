package container

import (
	"iter"
	"maps"
	"slices"
)

// HashMap is an unordered map backed by a Go map.
type HashMap[K comparable, V any] struct {
	entries map[K]V
}

func NewHashMap[K comparable, V any]() *HashMap[K, V] {
	return &HashMap[K, V]{entries: make(map[K]V)}
}

// HashMapOf copies src into a new HashMap.
func HashMapOf[K comparable, V any](src map[K]V) *HashMap[K, V] {
	m := &HashMap[K, V]{entries: make(map[K]V, len(src))}
	maps.Copy(m.entries, src)
	return m
}

func (m *HashMap[K, V]) Len() int { return len(m.entries) }

func (m *HashMap[K, V]) Get(k K) (V, bool) {
	v, ok := m.entries[k]
	return v, ok
}

func (m *HashMap[K, V]) ContainsKey(k K) bool {
	_, ok := m.entries[k]
	return ok
}

func (m *HashMap[K, V]) Put(k K, v V) (V, bool) {
	prev, ok := m.entries[k]
	m.entries[k] = v
	return prev, ok
}

func (m *HashMap[K, V]) Remove(k K) (V, bool) {
	prev, ok := m.entries[k]
	if ok {
		delete(m.entries, k)
	}
	return prev, ok
}

func (m *HashMap[K, V]) Clear() { clear(m.entries) }

func (m *HashMap[K, V]) Keys() []K { return slices.Collect(maps.Keys(m.entries)) }

func (m *HashMap[K, V]) Values() []V { return slices.Collect(maps.Values(m.entries)) }

func (m *HashMap[K, V]) All() iter.Seq2[K, V] { return maps.All(m.entries) }

func (m *HashMap[K, V]) Iterator() EntryIterator[K, V] {
	keys := m.Keys()
	values := make([]V, len(keys))
	for i, k := range keys {
		values[i] = m.entries[k]
	}
	return newSnapshotEntryIterator(keys, values, func(k K) { m.Remove(k) })
}

func (m *HashMap[K, V]) Clone() *HashMap[K, V] {
	return HashMapOf(m.entries)
}

func (m *HashMap[K, V]) CloneAny() any { return m.Clone() }
