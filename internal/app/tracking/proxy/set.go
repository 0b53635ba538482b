package proxy

import (
	"iter"
	"reflect"

	"github.com/samber/lo"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
	"github.com/light-bringer/changeproxy/internal/app/tracking/tracker"
	"github.com/light-bringer/changeproxy/internal/pkg/container"
)

// SetFactory builds the backing container of a set proxy. compare is nil
// for the unsorted kinds.
type SetFactory[E comparable] func(compare container.Comparator[E]) container.Set[E]

// SetProxy proxies any of the set kinds.
type SetProxy[E comparable] struct {
	owned
	set      container.Set[E]
	newSet   SetFactory[E]
	compare  container.Comparator[E]
	tracker  *tracker.CollectionTracker[E]
	elemType reflect.Type
	settings Settings
}

// NewSet returns an empty, unowned set proxy over a container built by newSet.
func NewSet[E comparable](newSet SetFactory[E], elemType reflect.Type, compare container.Comparator[E], trackChanges, autoOff bool, settings Settings) *SetProxy[E] {
	s := newSetProxy(newSet, elemType, compare, settings)
	if trackChanges {
		s.tracker = tracker.NewCollectionTracker[E](s.set, false, s.set.Ordered(), autoOff)
	}
	return s
}

func newSetProxy[E comparable](newSet SetFactory[E], elemType reflect.Type, compare container.Comparator[E], settings Settings) *SetProxy[E] {
	return &SetProxy[E]{
		owned:    unowned(),
		set:      newSet(compare),
		newSet:   newSet,
		compare:  compare,
		elemType: elemType,
		settings: settings,
	}
}

func (s *SetProxy[E]) typeChecker() contracts.TypeChecker { return s.settings.checker() }

func (s *SetProxy[E]) ChangeTracker() tracker.ChangeTracker {
	if s.tracker == nil {
		return nil
	}
	return s.tracker
}

func (s *SetProxy[E]) CollectionTracker() *tracker.CollectionTracker[E] { return s.tracker }

func (s *SetProxy[E]) ElementType() reflect.Type { return s.elemType }

// Comparator is nil unless the set is sorted.
func (s *SetProxy[E]) Comparator() container.Comparator[E] { return s.compare }

func (s *SetProxy[E]) Ordered() bool { return s.set.Ordered() }

// KeyedByElement is true: a set element is its own identity.
func (s *SetProxy[E]) KeyedByElement() bool { return true }

func (s *SetProxy[E]) Err() error { return nil }

func (s *SetProxy[E]) Len() int { return s.set.Len() }

func (s *SetProxy[E]) Contains(e E) bool { return s.set.Contains(e) }

func (s *SetProxy[E]) Values() []E { return s.set.Values() }

func (s *SetProxy[E]) All() iter.Seq[E] { return s.set.All() }

func (s *SetProxy[E]) Iterator() container.Iterator[E] {
	return AfterIterator[E](s, s.set.Iterator())
}

func (s *SetProxy[E]) Add(e E) (bool, error) {
	if err := BeforeAdd[E](s, e); err != nil {
		return false, err
	}
	return AfterAdd[E](s, e, s.set.Add(e)), nil
}

func (s *SetProxy[E]) AddAll(elems ...E) (bool, error) {
	for _, e := range elems {
		if err := AssertAllowedType(s, e, s.elemType); err != nil {
			return false, err
		}
	}
	changed := false
	for _, e := range elems {
		added, _ := s.Add(e)
		changed = changed || added
	}
	return changed, nil
}

func (s *SetProxy[E]) Remove(e E) (bool, error) {
	BeforeRemove[E](s, e)
	return AfterRemove[E](s, e, s.set.Remove(e)), nil
}

func (s *SetProxy[E]) RemoveAll(elems ...E) (bool, error) {
	changed := false
	for _, e := range elems {
		removed, _ := s.Remove(e)
		changed = changed || removed
	}
	return changed, nil
}

// RetainAll keeps only the elements in keep. It stops tracking.
func (s *SetProxy[E]) RetainAll(keep ...E) (bool, error) {
	before := BeforeRetainAll[E](s)
	drop := lo.Without(before, keep...)
	for _, e := range drop {
		s.set.Remove(e)
	}
	return AfterRetainAll[E](s, before, len(drop) > 0), nil
}

func (s *SetProxy[E]) Clear() error {
	BeforeClear[E](s)
	s.set.Clear()
	return nil
}

func (s *SetProxy[E]) Snapshot() any {
	if c, ok := s.set.(container.Cloner); ok {
		return c.CloneAny()
	}
	return s.Copy(s.set)
}

func (s *SetProxy[E]) Copy(src Source[E]) container.Collection[E] {
	out := s.newSet(s.compare)
	for _, e := range src.Values() {
		out.Add(e)
	}
	return out
}

func (s *SetProxy[E]) NewInstance(elemType reflect.Type, compare container.Comparator[E], trackChanges, autoOff bool) ProxyCollection[E] {
	return NewSet(s.newSet, elemType, compare, trackChanges, autoOff, s.settings)
}
