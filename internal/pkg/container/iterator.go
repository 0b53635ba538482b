package container

// snapshotIterator iterates over a copy of the elements taken when the
// iterator was created; Remove deletes the current element from the source.
type snapshotIterator[E any] struct {
	values  []E
	pos     int
	removed bool
	remove  func(E)
}

func newSnapshotIterator[E any](values []E, remove func(E)) *snapshotIterator[E] {
	return &snapshotIterator[E]{values: values, pos: -1, remove: remove}
}

func (it *snapshotIterator[E]) Next() bool {
	if it.pos+1 >= len(it.values) {
		it.pos = len(it.values)
		return false
	}
	it.pos++
	it.removed = false
	return true
}

func (it *snapshotIterator[E]) Value() E {
	return it.values[it.pos]
}

func (it *snapshotIterator[E]) Remove() {
	if it.pos < 0 || it.pos >= len(it.values) || it.removed {
		panic("container: Remove called without a current element")
	}
	it.removed = true
	it.remove(it.values[it.pos])
}

type snapshotEntryIterator[K comparable, V any] struct {
	keys    []K
	values  []V
	pos     int
	removed bool
	remove  func(K)
}

func newSnapshotEntryIterator[K comparable, V any](keys []K, values []V, remove func(K)) *snapshotEntryIterator[K, V] {
	return &snapshotEntryIterator[K, V]{keys: keys, values: values, pos: -1, remove: remove}
}

func (it *snapshotEntryIterator[K, V]) Next() bool {
	if it.pos+1 >= len(it.keys) {
		it.pos = len(it.keys)
		return false
	}
	it.pos++
	it.removed = false
	return true
}

func (it *snapshotEntryIterator[K, V]) Key() K {
	return it.keys[it.pos]
}

func (it *snapshotEntryIterator[K, V]) Value() V {
	return it.values[it.pos]
}

func (it *snapshotEntryIterator[K, V]) Remove() {
	if it.pos < 0 || it.pos >= len(it.keys) || it.removed {
		panic("container: Remove called without a current entry")
	}
	it.removed = true
	it.remove(it.keys[it.pos])
}
