package proxy

import (
	"reflect"
	"slices"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
	"github.com/light-bringer/changeproxy/internal/pkg/container"
	"github.com/light-bringer/changeproxy/internal/pkg/metrics"
)

// The Before and After functions below run around every mutation of a
// concrete proxy. Before steps assert types and dirty the owner; After steps
// run only once the backing container has changed and feed the tracker.

type typeChecked interface {
	typeChecker() contracts.TypeChecker
}

// Dirty marks the owner's field as modified. With stopTracking set the
// tracker is turned off first, for mutations that deltas cannot express.
func Dirty(p Proxy, stopTracking bool) {
	if stopTracking {
		if ct := p.ChangeTracker(); ct != nil && ct.IsTracking() {
			metrics.TrackingDisabled.WithLabelValues(metrics.ReasonWholeMutation).Inc()
			ct.StopTracking()
		}
	}
	if owner := p.Owner(); owner != nil {
		owner.Dirty(p.OwnerField())
	}
}

// Removed tells the owner that value left the container.
func Removed(p Proxy, value any, isKey bool) {
	if owner := p.Owner(); owner != nil {
		owner.Removed(p.OwnerField(), value, isKey)
	}
}

// AssertAllowedType checks value against allowed using the proxy's type
// checker. A nil allowed type accepts everything.
func AssertAllowedType(p Proxy, value any, allowed reflect.Type) error {
	if allowed == nil {
		return nil
	}
	checker := DefaultTypeChecker
	if tc, ok := p.(typeChecked); ok {
		checker = tc.typeChecker()
	}
	return checker.AssertAllowed(value, allowed)
}

// IsOwner reports whether p is attached to the given record field.
func IsOwner(p Proxy, owner contracts.Handle, field int) bool {
	return !owner.IsZero() && p.OwnerHandle() == owner && p.OwnerField() == field
}

func BeforeAdd[E comparable](c ProxyCollection[E], e E) error {
	if err := AssertAllowedType(c, e, c.ElementType()); err != nil {
		return err
	}
	Dirty(c, false)
	return nil
}

func AfterAdd[E comparable](c ProxyCollection[E], e E, added bool) bool {
	if added {
		if t := c.CollectionTracker(); t != nil {
			t.RecordAdd(e)
		}
	}
	return added
}

// BeforeInsert guards a positional insert, which stops tracking.
func BeforeInsert[E comparable](c ProxyCollection[E], index int, e E) error {
	if err := AssertAllowedType(c, e, c.ElementType()); err != nil {
		return err
	}
	Dirty(c, true)
	return nil
}

// BeforeSet guards a positional replace, which stops tracking.
func BeforeSet[E comparable](c ProxyCollection[E], index int, e E) error {
	if err := AssertAllowedType(c, e, c.ElementType()); err != nil {
		return err
	}
	Dirty(c, true)
	return nil
}

func AfterSet[E comparable](c ProxyCollection[E], index int, e, replaced E) E {
	if replaced != e {
		Removed(c, replaced, false)
	}
	return replaced
}

func BeforeRemove[E comparable](c ProxyCollection[E], e E) {
	Dirty(c, false)
}

func AfterRemove[E comparable](c ProxyCollection[E], e E, removed bool) bool {
	if !removed {
		return false
	}
	if t := c.CollectionTracker(); t != nil {
		t.RecordRemove(e)
	}
	Removed(c, e, false)
	return true
}

func BeforeRemoveAt[E comparable](c ProxyCollection[E], index int) {
	Dirty(c, false)
}

func AfterRemoveAt[E comparable](c ProxyCollection[E], index int, removed E) E {
	if t := c.CollectionTracker(); t != nil {
		t.RecordRemove(removed)
	}
	Removed(c, removed, false)
	return removed
}

// BeforeClear stops tracking and reports every element as removed.
func BeforeClear[E comparable](c ProxyCollection[E]) {
	Dirty(c, true)
	for e := range c.All() {
		Removed(c, e, false)
	}
}

// BeforeRetainAll stops tracking and returns the contents to diff against
// once the retain has run.
func BeforeRetainAll[E comparable](c ProxyCollection[E]) []E {
	Dirty(c, true)
	return c.Values()
}

func AfterRetainAll[E comparable](c ProxyCollection[E], before []E, changed bool) bool {
	if !changed {
		return false
	}
	after := c.Values()
	for _, e := range before {
		if !slices.Contains(after, e) {
			Removed(c, e, false)
		}
	}
	return true
}

func BeforeOffer[E comparable](c ProxyCollection[E], e E) error {
	return BeforeAdd(c, e)
}

func AfterOffer[E comparable](c ProxyCollection[E], e E, added bool) bool {
	return AfterAdd(c, e, added)
}

func BeforePoll[E comparable](c ProxyCollection[E]) {
	if c.Len() > 0 {
		Dirty(c, false)
	}
}

func AfterPoll[E comparable](c ProxyCollection[E], e E, ok bool) (E, bool) {
	if ok {
		AfterRemoveAt(c, 0, e)
	}
	return e, ok
}

// BeforePut asserts key and value types, dirties the owner and reports
// whether the key was already present.
func BeforePut[K comparable, V any](m ProxyMap[K, V], k K, v V) (bool, error) {
	if err := AssertAllowedType(m, k, m.KeyType()); err != nil {
		return false, err
	}
	if err := AssertAllowedType(m, v, m.ValueType()); err != nil {
		return false, err
	}
	Dirty(m, false)
	return m.ContainsKey(k), nil
}

func AfterPut[K comparable, V any](m ProxyMap[K, V], k K, v, prev V, existed bool) V {
	t := m.MapTracker()
	if existed {
		if t != nil {
			t.RecordChange(k, prev, v)
		}
		Removed(m, prev, false)
	} else if t != nil {
		t.RecordAdd(k, v)
	}
	return prev
}

func BeforeMapRemove[K comparable, V any](m ProxyMap[K, V], k K) bool {
	Dirty(m, false)
	return m.ContainsKey(k)
}

func AfterMapRemove[K comparable, V any](m ProxyMap[K, V], k K, prev V, existed bool) V {
	if existed {
		if t := m.MapTracker(); t != nil {
			t.RecordRemove(k, prev)
		}
		Removed(m, k, true)
		Removed(m, prev, false)
	}
	return prev
}

// BeforeMapClear stops tracking and reports every key and value as removed.
func BeforeMapClear[K comparable, V any](m ProxyMap[K, V]) {
	Dirty(m, true)
	for k, v := range m.All() {
		Removed(m, k, true)
		Removed(m, v, false)
	}
}

// AfterIterator wraps it so that removals go through the interceptors.
// Wrapping an already wrapped iterator returns it unchanged.
func AfterIterator[E comparable](c ProxyCollection[E], it container.Iterator[E]) container.Iterator[E] {
	if _, ok := it.(*trackedIterator[E]); ok {
		return it
	}
	return &trackedIterator[E]{Iterator: it, coll: c}
}

// AfterEntryIterator is AfterIterator for maps.
func AfterEntryIterator[K comparable, V any](m ProxyMap[K, V], it container.EntryIterator[K, V]) container.EntryIterator[K, V] {
	if _, ok := it.(*trackedEntryIterator[K, V]); ok {
		return it
	}
	return &trackedEntryIterator[K, V]{EntryIterator: it, m: m}
}

type trackedIterator[E comparable] struct {
	container.Iterator[E]
	coll ProxyCollection[E]
}

func (it *trackedIterator[E]) Remove() {
	e := it.Value()
	Dirty(it.coll, false)
	it.Iterator.Remove()
	AfterRemove(it.coll, e, true)
}

type trackedEntryIterator[K comparable, V any] struct {
	container.EntryIterator[K, V]
	m ProxyMap[K, V]
}

func (it *trackedEntryIterator[K, V]) Remove() {
	k, v := it.Key(), it.Value()
	Dirty(it.m, false)
	it.EntryIterator.Remove()
	AfterMapRemove(it.m, k, v, true)
}
