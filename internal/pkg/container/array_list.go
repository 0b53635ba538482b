package container

import (
	"fmt"
	"iter"
	"slices"
)

// ArrayList is a slice-backed list. It allows duplicates and keeps insertion
// order. It also serves the queue kinds (Offer/Poll/Peek work on the head).
type ArrayList[E comparable] struct {
	elems []E
}

// NewArrayList creates a list holding the given elements in order.
func NewArrayList[E comparable](elems ...E) *ArrayList[E] {
	return &ArrayList[E]{elems: slices.Clone(elems)}
}

func (l *ArrayList[E]) Len() int { return len(l.elems) }

func (l *ArrayList[E]) Contains(e E) bool { return slices.Contains(l.elems, e) }

// IndexOf returns the first index of e, or -1.
func (l *ArrayList[E]) IndexOf(e E) int { return slices.Index(l.elems, e) }

func (l *ArrayList[E]) Get(i int) E {
	l.checkIndex(i, len(l.elems))
	return l.elems[i]
}

// Set replaces the element at i and returns the previous one.
func (l *ArrayList[E]) Set(i int, e E) E {
	l.checkIndex(i, len(l.elems))
	prev := l.elems[i]
	l.elems[i] = e
	return prev
}

// Add appends e. It always reports true.
func (l *ArrayList[E]) Add(e E) bool {
	l.elems = append(l.elems, e)
	return true
}

// Insert places e at index i, shifting later elements right. i may equal Len.
func (l *ArrayList[E]) Insert(i int, e E) {
	l.checkIndex(i, len(l.elems)+1)
	l.elems = slices.Insert(l.elems, i, e)
}

func (l *ArrayList[E]) RemoveAt(i int) E {
	l.checkIndex(i, len(l.elems))
	prev := l.elems[i]
	l.elems = slices.Delete(l.elems, i, i+1)
	return prev
}

// Remove deletes the first occurrence of e.
func (l *ArrayList[E]) Remove(e E) bool {
	i := l.IndexOf(e)
	if i < 0 {
		return false
	}
	l.elems = slices.Delete(l.elems, i, i+1)
	return true
}

func (l *ArrayList[E]) Clear() {
	clear(l.elems)
	l.elems = l.elems[:0]
}

func (l *ArrayList[E]) Sort(compare Comparator[E]) {
	slices.SortStableFunc(l.elems, compare)
}

// Offer appends e at the tail.
func (l *ArrayList[E]) Offer(e E) bool { return l.Add(e) }

// Poll removes and returns the head.
func (l *ArrayList[E]) Poll() (E, bool) {
	if len(l.elems) == 0 {
		var zero E
		return zero, false
	}
	return l.RemoveAt(0), true
}

// Peek returns the head without removing it.
func (l *ArrayList[E]) Peek() (E, bool) {
	if len(l.elems) == 0 {
		var zero E
		return zero, false
	}
	return l.elems[0], true
}

func (l *ArrayList[E]) Values() []E { return slices.Clone(l.elems) }

func (l *ArrayList[E]) All() iter.Seq[E] {
	return func(yield func(E) bool) {
		for _, e := range l.elems {
			if !yield(e) {
				return
			}
		}
	}
}

func (l *ArrayList[E]) Iterator() Iterator[E] {
	return &listIterator[E]{list: l, pos: -1}
}

func (l *ArrayList[E]) Clone() *ArrayList[E] {
	return NewArrayList(l.elems...)
}

func (l *ArrayList[E]) CloneAny() any { return l.Clone() }

func (l *ArrayList[E]) checkIndex(i, bound int) {
	if i < 0 || i >= bound {
		panic(fmt.Sprintf("container: index %d out of range [0,%d)", i, bound))
	}
}

// listIterator tracks a position so that Remove deletes the current slot,
// not the first equal element.
type listIterator[E comparable] struct {
	list    *ArrayList[E]
	pos     int
	removed bool
}

func (it *listIterator[E]) Next() bool {
	if it.pos+1 >= len(it.list.elems) {
		it.pos = len(it.list.elems)
		return false
	}
	it.pos++
	it.removed = false
	return true
}

func (it *listIterator[E]) Value() E {
	return it.list.elems[it.pos]
}

func (it *listIterator[E]) Remove() {
	if it.pos < 0 || it.pos >= len(it.list.elems) || it.removed {
		panic("container: Remove called without a current element")
	}
	it.list.RemoveAt(it.pos)
	it.pos--
	it.removed = true
}
