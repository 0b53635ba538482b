package proxy

import (
	"iter"
	"reflect"

	"github.com/samber/lo"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
	"github.com/light-bringer/changeproxy/internal/app/tracking/tracker"
	"github.com/light-bringer/changeproxy/internal/pkg/container"
)

// ListProxy proxies an ArrayList. It also serves the queue kinds.
type ListProxy[E comparable] struct {
	owned
	list     *container.ArrayList[E]
	tracker  *tracker.CollectionTracker[E]
	elemType reflect.Type
	settings Settings
}

// NewList returns an empty, unowned list proxy. The tracker is created but
// not started; the owner starts it once the field is installed.
func NewList[E comparable](elemType reflect.Type, trackChanges, autoOff bool, settings Settings) *ListProxy[E] {
	l := newList[E](elemType, settings)
	if trackChanges {
		l.tracker = tracker.NewCollectionTracker[E](l.list, true, true, autoOff)
	}
	return l
}

func newList[E comparable](elemType reflect.Type, settings Settings) *ListProxy[E] {
	return &ListProxy[E]{
		owned:    unowned(),
		list:     container.NewArrayList[E](),
		elemType: elemType,
		settings: settings,
	}
}

func (l *ListProxy[E]) typeChecker() contracts.TypeChecker { return l.settings.checker() }

func (l *ListProxy[E]) ChangeTracker() tracker.ChangeTracker {
	if l.tracker == nil {
		return nil
	}
	return l.tracker
}

func (l *ListProxy[E]) CollectionTracker() *tracker.CollectionTracker[E] { return l.tracker }

func (l *ListProxy[E]) ElementType() reflect.Type { return l.elemType }

func (l *ListProxy[E]) Err() error { return nil }

func (l *ListProxy[E]) Len() int { return l.list.Len() }

func (l *ListProxy[E]) Contains(e E) bool { return l.list.Contains(e) }

func (l *ListProxy[E]) IndexOf(e E) int { return l.list.IndexOf(e) }

func (l *ListProxy[E]) Get(i int) (E, error) {
	if i < 0 || i >= l.list.Len() {
		var zero E
		return zero, indexError(i, l.list.Len())
	}
	return l.list.Get(i), nil
}

func (l *ListProxy[E]) Values() []E { return l.list.Values() }

func (l *ListProxy[E]) All() iter.Seq[E] { return l.list.All() }

func (l *ListProxy[E]) Iterator() container.Iterator[E] {
	return AfterIterator[E](l, l.list.Iterator())
}

func (l *ListProxy[E]) Peek() (E, bool) { return l.list.Peek() }

func (l *ListProxy[E]) Add(e E) (bool, error) {
	if err := BeforeAdd[E](l, e); err != nil {
		return false, err
	}
	return AfterAdd[E](l, e, l.list.Add(e)), nil
}

func (l *ListProxy[E]) AddAll(elems ...E) (bool, error) {
	if err := l.assertAll(elems); err != nil {
		return false, err
	}
	changed := false
	for _, e := range elems {
		added, _ := l.Add(e)
		changed = changed || added
	}
	return changed, nil
}

// Insert places e at index i, shifting later elements. It stops tracking.
func (l *ListProxy[E]) Insert(i int, e E) error {
	if i < 0 || i > l.list.Len() {
		return indexError(i, l.list.Len())
	}
	if err := BeforeInsert[E](l, i, e); err != nil {
		return err
	}
	l.list.Insert(i, e)
	return nil
}

// InsertAll places elems at index i in order. It stops tracking.
func (l *ListProxy[E]) InsertAll(i int, elems ...E) error {
	if i < 0 || i > l.list.Len() {
		return indexError(i, l.list.Len())
	}
	if err := l.assertAll(elems); err != nil {
		return err
	}
	if len(elems) == 0 {
		return nil
	}
	Dirty(l, true)
	for j, e := range elems {
		l.list.Insert(i+j, e)
	}
	return nil
}

// Set replaces the element at i and returns the previous one. It stops
// tracking.
func (l *ListProxy[E]) Set(i int, e E) (E, error) {
	if i < 0 || i >= l.list.Len() {
		var zero E
		return zero, indexError(i, l.list.Len())
	}
	if err := BeforeSet[E](l, i, e); err != nil {
		var zero E
		return zero, err
	}
	return AfterSet[E](l, i, e, l.list.Set(i, e)), nil
}

func (l *ListProxy[E]) Remove(e E) (bool, error) {
	BeforeRemove[E](l, e)
	return AfterRemove[E](l, e, l.list.Remove(e)), nil
}

func (l *ListProxy[E]) RemoveAt(i int) (E, error) {
	if i < 0 || i >= l.list.Len() {
		var zero E
		return zero, indexError(i, l.list.Len())
	}
	BeforeRemoveAt[E](l, i)
	return AfterRemoveAt[E](l, i, l.list.RemoveAt(i)), nil
}

func (l *ListProxy[E]) RemoveAll(elems ...E) (bool, error) {
	changed := false
	for _, e := range elems {
		// every copy goes, as with a bulk removal
		for l.list.Contains(e) {
			removed, _ := l.Remove(e)
			changed = changed || removed
		}
	}
	return changed, nil
}

// RetainAll keeps only the elements in keep. It stops tracking.
func (l *ListProxy[E]) RetainAll(keep ...E) (bool, error) {
	before := BeforeRetainAll[E](l)
	changed := false
	it := l.list.Iterator()
	for it.Next() {
		if !lo.Contains(keep, it.Value()) {
			it.Remove()
			changed = true
		}
	}
	return AfterRetainAll[E](l, before, changed), nil
}

func (l *ListProxy[E]) Clear() error {
	BeforeClear[E](l)
	l.list.Clear()
	return nil
}

// Sort reorders the list. It stops tracking.
func (l *ListProxy[E]) Sort(compare container.Comparator[E]) error {
	Dirty(l, true)
	l.list.Sort(compare)
	return nil
}

// Offer appends e to the tail of the queue.
func (l *ListProxy[E]) Offer(e E) (bool, error) {
	if err := BeforeOffer[E](l, e); err != nil {
		return false, err
	}
	return AfterOffer[E](l, e, l.list.Offer(e)), nil
}

// Poll removes and returns the head of the queue.
func (l *ListProxy[E]) Poll() (E, bool, error) {
	BeforePoll[E](l)
	e, ok := l.list.Poll()
	e, ok = AfterPoll[E](l, e, ok)
	return e, ok, nil
}

func (l *ListProxy[E]) Snapshot() any { return l.list.Clone() }

func (l *ListProxy[E]) Copy(src Source[E]) container.Collection[E] {
	return container.NewArrayList(src.Values()...)
}

func (l *ListProxy[E]) NewInstance(elemType reflect.Type, _ container.Comparator[E], trackChanges, autoOff bool) ProxyCollection[E] {
	return NewList[E](elemType, trackChanges, autoOff, l.settings)
}

func (l *ListProxy[E]) assertAll(elems []E) error {
	for _, e := range elems {
		if err := AssertAllowedType(l, e, l.elemType); err != nil {
			return err
		}
	}
	return nil
}
