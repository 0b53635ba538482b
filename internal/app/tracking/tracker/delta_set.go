package tracker

import "slices"

// deltaSet keeps delta elements in arrival order. With dups set it behaves
// like a list, otherwise like a set.
type deltaSet[T any] struct {
	items  []T
	keys   []any
	counts map[any]int
	dups   bool
}

func newDeltaSet[T any](dups bool) *deltaSet[T] {
	return &deltaSet[T]{counts: make(map[any]int), dups: dups}
}

func (d *deltaSet[T]) add(v T, key any) bool {
	if !d.dups && d.counts[key] > 0 {
		return false
	}
	d.items = append(d.items, v)
	d.keys = append(d.keys, key)
	d.counts[key]++
	return true
}

// remove drops the first element with the given key.
func (d *deltaSet[T]) remove(key any) bool {
	if d == nil || d.counts[key] == 0 {
		return false
	}
	i := slices.IndexFunc(d.keys, func(k any) bool { return k == key })
	d.items = slices.Delete(d.items, i, i+1)
	d.keys = slices.Delete(d.keys, i, i+1)
	if d.counts[key]--; d.counts[key] == 0 {
		delete(d.counts, key)
	}
	return true
}

func (d *deltaSet[T]) contains(key any) bool {
	return d != nil && d.counts[key] > 0
}

func (d *deltaSet[T]) len() int {
	if d == nil {
		return 0
	}
	return len(d.items)
}

func (d *deltaSet[T]) values() []T {
	if d == nil {
		return nil
	}
	return slices.Clone(d.items)
}

func (d *deltaSet[T]) erased() []any {
	if d == nil {
		return nil
	}
	out := make([]any, len(d.items))
	for i, v := range d.items {
		out[i] = v
	}
	return out
}
