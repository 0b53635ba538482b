package proxy

import (
	"context"
	"iter"
	"reflect"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
	"github.com/light-bringer/changeproxy/internal/app/tracking/tracker"
	"github.com/light-bringer/changeproxy/internal/pkg/container"
)

// DelayedList is a list proxy whose contents load on first informed use.
// While unloaded and tracking, Add, AddAll, Remove, RemoveAll and Offer only
// record deltas. Reads that trigger a failed load return empty results and
// report the failure through Err.
type DelayedList[E comparable] struct {
	*ListProxy[E]
	core delayedCore[E]
}

func NewDelayedList[E comparable](elemType reflect.Type, trackChanges, autoOff bool, settings Settings) *DelayedList[E] {
	l := newList[E](elemType, settings)
	d := &DelayedList[E]{ListProxy: l}
	d.core = delayedCore[E]{owner: &l.owned, backing: l.list, settings: settings.Load}
	if trackChanges {
		l.tracker = tracker.NewCollectionTracker[E](&d.core, true, true, autoOff)
		d.core.tracker = l.tracker
	}
	return d
}

func (d *DelayedList[E]) SetOwner(h contracts.Handle, field int) error {
	return d.core.setOwner(h, field)
}

func (d *DelayedList[E]) Load(ctx context.Context) error {
	d.core.err = d.core.load(ctx)
	return d.core.err
}

func (d *DelayedList[E]) IsLoaded() bool { return !d.core.pending() && d.core.state == loaded }

func (d *DelayedList[E]) DelayedOwner() contracts.Handle { return d.core.delayedOwner }

func (d *DelayedList[E]) DelayedField() int { return d.core.delayedField }

func (d *DelayedList[E]) Err() error { return d.core.err }

func (d *DelayedList[E]) Len() int {
	if !d.core.ensure() {
		return 0
	}
	return d.ListProxy.Len()
}

func (d *DelayedList[E]) Contains(e E) bool {
	return d.core.ensure() && d.ListProxy.Contains(e)
}

func (d *DelayedList[E]) IndexOf(e E) int {
	if !d.core.ensure() {
		return -1
	}
	return d.ListProxy.IndexOf(e)
}

func (d *DelayedList[E]) Get(i int) (E, error) {
	if !d.core.ensure() {
		var zero E
		return zero, d.core.err
	}
	return d.ListProxy.Get(i)
}

func (d *DelayedList[E]) Values() []E {
	if !d.core.ensure() {
		return nil
	}
	return d.ListProxy.Values()
}

func (d *DelayedList[E]) All() iter.Seq[E] {
	if !d.core.ensure() {
		return func(func(E) bool) {}
	}
	return d.ListProxy.All()
}

func (d *DelayedList[E]) Iterator() container.Iterator[E] {
	if !d.core.ensure() {
		return container.NewArrayList[E]().Iterator()
	}
	return d.ListProxy.Iterator()
}

func (d *DelayedList[E]) Peek() (E, bool) {
	if !d.core.ensure() {
		var zero E
		return zero, false
	}
	return d.ListProxy.Peek()
}

func (d *DelayedList[E]) Add(e E) (bool, error) {
	if d.core.blindAdd(e) {
		if err := BeforeAdd[E](d.ListProxy, e); err != nil {
			return false, err
		}
		d.tracker.RecordAdd(e)
		return true, nil
	}
	if !d.core.ensure() {
		return false, d.core.err
	}
	return d.ListProxy.Add(e)
}

func (d *DelayedList[E]) AddAll(elems ...E) (bool, error) {
	if d.core.blind() {
		if err := d.assertAll(elems); err != nil {
			return false, err
		}
		for _, e := range elems {
			d.Add(e)
		}
		return len(elems) > 0, nil
	}
	if !d.core.ensure() {
		return false, d.core.err
	}
	return d.ListProxy.AddAll(elems...)
}

func (d *DelayedList[E]) Offer(e E) (bool, error) {
	if d.core.blind() {
		return d.Add(e)
	}
	if !d.core.ensure() {
		return false, d.core.err
	}
	return d.ListProxy.Offer(e)
}

// Remove reports true without loading when the removal is blind, since
// membership is unknown.
func (d *DelayedList[E]) Remove(e E) (bool, error) {
	if d.core.blindRemove(e) {
		BeforeRemove[E](d.ListProxy, e)
		d.tracker.RecordRemove(e)
		Removed(d.ListProxy, e, false)
		return true, nil
	}
	if !d.core.ensure() {
		return false, d.core.err
	}
	return d.ListProxy.Remove(e)
}

func (d *DelayedList[E]) RemoveAll(elems ...E) (bool, error) {
	if d.core.blind() {
		for _, e := range elems {
			d.Remove(e)
		}
		return len(elems) > 0, nil
	}
	if !d.core.ensure() {
		return false, d.core.err
	}
	return d.ListProxy.RemoveAll(elems...)
}

func (d *DelayedList[E]) Insert(i int, e E) error {
	if !d.core.ensure() {
		return d.core.err
	}
	return d.ListProxy.Insert(i, e)
}

func (d *DelayedList[E]) InsertAll(i int, elems ...E) error {
	if !d.core.ensure() {
		return d.core.err
	}
	return d.ListProxy.InsertAll(i, elems...)
}

func (d *DelayedList[E]) Set(i int, e E) (E, error) {
	if !d.core.ensure() {
		var zero E
		return zero, d.core.err
	}
	return d.ListProxy.Set(i, e)
}

func (d *DelayedList[E]) RemoveAt(i int) (E, error) {
	if !d.core.ensure() {
		var zero E
		return zero, d.core.err
	}
	return d.ListProxy.RemoveAt(i)
}

func (d *DelayedList[E]) RetainAll(keep ...E) (bool, error) {
	if !d.core.ensure() {
		return false, d.core.err
	}
	return d.ListProxy.RetainAll(keep...)
}

func (d *DelayedList[E]) Clear() error {
	if !d.core.ensure() {
		return d.core.err
	}
	return d.ListProxy.Clear()
}

func (d *DelayedList[E]) Sort(compare container.Comparator[E]) error {
	if !d.core.ensure() {
		return d.core.err
	}
	return d.ListProxy.Sort(compare)
}

func (d *DelayedList[E]) Poll() (E, bool, error) {
	if !d.core.ensure() {
		var zero E
		return zero, false, d.core.err
	}
	return d.ListProxy.Poll()
}

func (d *DelayedList[E]) Snapshot() any {
	d.core.ensure()
	return d.ListProxy.Snapshot()
}

func (d *DelayedList[E]) NewInstance(elemType reflect.Type, _ container.Comparator[E], trackChanges, autoOff bool) ProxyCollection[E] {
	return NewDelayedList[E](elemType, trackChanges, autoOff, d.settings)
}
