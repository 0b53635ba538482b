// Package container holds the plain, unproxied container families that
// managed records keep in their fields. Proxies in the tracking packages wrap
// these types and forward to them; copies handed out for rollback snapshots
// are always one of these.
package container

import (
	"cmp"
	"iter"
	"reflect"
)

// Comparator orders two elements, returning a negative number, zero or a
// positive number like cmp.Compare.
type Comparator[E any] func(a, b E) int

// Collection is the common surface of the list and set families.
type Collection[E comparable] interface {
	Len() int
	Contains(e E) bool
	Add(e E) bool
	Remove(e E) bool
	Clear()
	Values() []E
	All() iter.Seq[E]
	Iterator() Iterator[E]
}

// Set is a Collection without duplicates.
type Set[E comparable] interface {
	Collection[E]
	// Ordered reports whether iteration follows insertion order.
	Ordered() bool
}

// Map is the common surface of the map family.
type Map[K comparable, V any] interface {
	Len() int
	Get(k K) (V, bool)
	ContainsKey(k K) bool
	Put(k K, v V) (V, bool)
	Remove(k K) (V, bool)
	Clear()
	Keys() []K
	Values() []V
	All() iter.Seq2[K, V]
	Iterator() EntryIterator[K, V]
}

// Iterator walks a collection and can remove the element it is positioned on.
type Iterator[E any] interface {
	Next() bool
	Value() E
	Remove()
}

// EntryIterator walks a map and can remove the entry it is positioned on.
type EntryIterator[K comparable, V any] interface {
	Next() bool
	Key() K
	Value() V
	Remove()
}

// Cloner is implemented by every container in this package; it returns an
// independent copy of the same concrete type.
type Cloner interface {
	CloneAny() any
}

// NaturalOrder returns a comparator for element types with a built-in order
// (integers, floats and strings, including named types over them).
func NaturalOrder[E any]() (Comparator[E], bool) {
	t := reflect.TypeFor[E]()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(a, b E) int {
			return cmp.Compare(reflect.ValueOf(a).Int(), reflect.ValueOf(b).Int())
		}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(a, b E) int {
			return cmp.Compare(reflect.ValueOf(a).Uint(), reflect.ValueOf(b).Uint())
		}, true
	case reflect.Float32, reflect.Float64:
		return func(a, b E) int {
			return cmp.Compare(reflect.ValueOf(a).Float(), reflect.ValueOf(b).Float())
		}, true
	case reflect.String:
		return func(a, b E) int {
			return cmp.Compare(reflect.ValueOf(a).String(), reflect.ValueOf(b).String())
		}, true
	}
	return nil, false
}

// erase adapts a typed comparator to the untyped form gods expects.
func erase[E any](c Comparator[E]) func(a, b interface{}) int {
	return func(a, b interface{}) int {
		return c(as[E](a), as[E](b))
	}
}
