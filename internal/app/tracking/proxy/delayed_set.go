package proxy

import (
	"context"
	"iter"
	"reflect"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
	"github.com/light-bringer/changeproxy/internal/app/tracking/tracker"
	"github.com/light-bringer/changeproxy/internal/pkg/container"
)

// DelayedSet is the set counterpart of DelayedList.
type DelayedSet[E comparable] struct {
	*SetProxy[E]
	core delayedCore[E]
}

func NewDelayedSet[E comparable](newSet SetFactory[E], elemType reflect.Type, compare container.Comparator[E], trackChanges, autoOff bool, settings Settings) *DelayedSet[E] {
	s := newSetProxy(newSet, elemType, compare, settings)
	d := &DelayedSet[E]{SetProxy: s}
	d.core = delayedCore[E]{owner: &s.owned, backing: s.set, settings: settings.Load}
	if trackChanges {
		s.tracker = tracker.NewCollectionTracker[E](&d.core, false, s.set.Ordered(), autoOff)
		d.core.tracker = s.tracker
	}
	return d
}

func (d *DelayedSet[E]) SetOwner(h contracts.Handle, field int) error {
	return d.core.setOwner(h, field)
}

func (d *DelayedSet[E]) Load(ctx context.Context) error {
	d.core.err = d.core.load(ctx)
	return d.core.err
}

func (d *DelayedSet[E]) IsLoaded() bool { return !d.core.pending() && d.core.state == loaded }

func (d *DelayedSet[E]) DelayedOwner() contracts.Handle { return d.core.delayedOwner }

func (d *DelayedSet[E]) DelayedField() int { return d.core.delayedField }

func (d *DelayedSet[E]) Err() error { return d.core.err }

func (d *DelayedSet[E]) Len() int {
	if !d.core.ensure() {
		return 0
	}
	return d.SetProxy.Len()
}

func (d *DelayedSet[E]) Contains(e E) bool {
	return d.core.ensure() && d.SetProxy.Contains(e)
}

func (d *DelayedSet[E]) Values() []E {
	if !d.core.ensure() {
		return nil
	}
	return d.SetProxy.Values()
}

func (d *DelayedSet[E]) All() iter.Seq[E] {
	if !d.core.ensure() {
		return func(func(E) bool) {}
	}
	return d.SetProxy.All()
}

func (d *DelayedSet[E]) Iterator() container.Iterator[E] {
	if !d.core.ensure() {
		return container.NewArrayList[E]().Iterator()
	}
	return d.SetProxy.Iterator()
}

func (d *DelayedSet[E]) Add(e E) (bool, error) {
	if d.core.blindAdd(e) {
		if err := BeforeAdd[E](d.SetProxy, e); err != nil {
			return false, err
		}
		d.tracker.RecordAdd(e)
		return true, nil
	}
	if !d.core.ensure() {
		return false, d.core.err
	}
	return d.SetProxy.Add(e)
}

func (d *DelayedSet[E]) AddAll(elems ...E) (bool, error) {
	if d.core.blind() {
		for _, e := range elems {
			if err := AssertAllowedType(d.SetProxy, e, d.elemType); err != nil {
				return false, err
			}
		}
		for _, e := range elems {
			d.Add(e)
		}
		return len(elems) > 0, nil
	}
	if !d.core.ensure() {
		return false, d.core.err
	}
	return d.SetProxy.AddAll(elems...)
}

// Remove reports true without loading when the removal is blind.
func (d *DelayedSet[E]) Remove(e E) (bool, error) {
	if d.core.blindRemove(e) {
		BeforeRemove[E](d.SetProxy, e)
		d.tracker.RecordRemove(e)
		Removed(d.SetProxy, e, false)
		return true, nil
	}
	if !d.core.ensure() {
		return false, d.core.err
	}
	return d.SetProxy.Remove(e)
}

func (d *DelayedSet[E]) RemoveAll(elems ...E) (bool, error) {
	if d.core.blind() {
		for _, e := range elems {
			d.Remove(e)
		}
		return len(elems) > 0, nil
	}
	if !d.core.ensure() {
		return false, d.core.err
	}
	return d.SetProxy.RemoveAll(elems...)
}

func (d *DelayedSet[E]) RetainAll(keep ...E) (bool, error) {
	if !d.core.ensure() {
		return false, d.core.err
	}
	return d.SetProxy.RetainAll(keep...)
}

func (d *DelayedSet[E]) Clear() error {
	if !d.core.ensure() {
		return d.core.err
	}
	return d.SetProxy.Clear()
}

func (d *DelayedSet[E]) Snapshot() any {
	d.core.ensure()
	return d.SetProxy.Snapshot()
}

func (d *DelayedSet[E]) NewInstance(elemType reflect.Type, compare container.Comparator[E], trackChanges, autoOff bool) ProxyCollection[E] {
	return NewDelayedSet(d.newSet, elemType, compare, trackChanges, autoOff, d.settings)
}
