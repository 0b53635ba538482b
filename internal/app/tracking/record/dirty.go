package record

import "slices"

// dirtySet tracks which fields of a record have been modified since the last
// flush, so a store can write only those.
type dirtySet struct {
	fields map[int]struct{}
}

func newDirtySet() *dirtySet {
	return &dirtySet{fields: make(map[int]struct{})}
}

func (d *dirtySet) mark(field int) {
	d.fields[field] = struct{}{}
}

func (d *dirtySet) dirty(field int) bool {
	_, ok := d.fields[field]
	return ok
}

func (d *dirtySet) clear() {
	clear(d.fields)
}

func (d *dirtySet) empty() bool {
	return len(d.fields) == 0
}

// sorted returns the dirty field indexes in declaration order.
func (d *dirtySet) sorted() []int {
	out := make([]int, 0, len(d.fields))
	for f := range d.fields {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}
