package tracker

import "github.com/light-bringer/changeproxy/internal/pkg/metrics"

// Container is what a CollectionTracker needs to know about the collection it
// watches.
type Container[E comparable] interface {
	Sizer
	Contains(e E) bool
}

// CollectionTracker records additions and removals on a list or set.
// Removing and re-adding an element of an unordered collection is reported
// as a change; on an ordered collection it disables tracking because the
// new position cannot be expressed as a delta.
type CollectionTracker[E comparable] struct {
	state
	coll    Container[E]
	dups    bool
	ordered bool

	added   *deltaSet[E]
	removed *deltaSet[E]
	changed *deltaSet[E]
}

// NewCollectionTracker creates a tracker over coll. dups tells whether the
// collection allows duplicates, ordered whether it keeps insertion order.
// The tracker starts out not tracking.
func NewCollectionTracker[E comparable](coll Container[E], dups, ordered, autoOff bool) *CollectionTracker[E] {
	return &CollectionTracker[E]{
		state:   newState(autoOff),
		coll:    coll,
		dups:    dups,
		ordered: ordered,
	}
}

func (t *CollectionTracker[E]) StartTracking() {
	t.tracking = true
	if t.seq == -1 {
		t.seq = t.initialSequence()
	}
	t.reset()
}

func (t *CollectionTracker[E]) StopTracking() {
	t.tracking = false
	t.seq = -1
	t.reset()
}

func (t *CollectionTracker[E]) initialSequence() int {
	if !t.ordered {
		return 0
	}
	return max(t.coll.Len(), 0)
}

func (t *CollectionTracker[E]) reset() {
	t.added, t.removed, t.changed = nil, nil, nil
	t.identity = identityUnset
}

// Ordered reports whether the tracked collection keeps insertion order.
func (t *CollectionTracker[E]) Ordered() bool { return t.ordered }

// AllowsDuplicates reports whether the tracked collection is a list.
func (t *CollectionTracker[E]) AllowsDuplicates() bool { return t.dups }

func (t *CollectionTracker[E]) Added() []E   { return t.added.values() }
func (t *CollectionTracker[E]) Removed() []E { return t.removed.values() }
func (t *CollectionTracker[E]) Changed() []E { return t.changed.values() }

func (t *CollectionTracker[E]) Deltas() Deltas {
	return Deltas{
		Added:   t.added.erased(),
		Removed: t.removed.erased(),
		Changed: t.changed.erased(),
	}
}

// RecordAdd notes that e was added to the collection.
func (t *CollectionTracker[E]) RecordAdd(e E) {
	if !t.tracking {
		return
	}
	key, ok := t.keyFor(e)
	if !ok {
		t.disable(metrics.ReasonUnhashable)
		return
	}
	if t.removed.remove(key) {
		if t.ordered {
			t.disable(metrics.ReasonOrderedReadd)
			return
		}
		if t.changed == nil {
			t.changed = newDeltaSet[E](false)
		}
		t.changed.add(e, key)
		return
	}
	if t.overflows(0) {
		t.disable(metrics.ReasonAutoOff)
		return
	}
	if t.added == nil {
		t.added = newDeltaSet[E](t.dups || t.ordered)
	}
	t.added.add(e, key)
}

// RecordRemove notes that e was removed from the collection. The collection
// must already reflect the removal.
func (t *CollectionTracker[E]) RecordRemove(e E) {
	if !t.tracking {
		return
	}
	key, ok := t.keyFor(e)
	if !ok {
		t.disable(metrics.ReasonUnhashable)
		return
	}
	// with another copy still present there is no telling which one went
	if t.dups && t.coll.Len() >= 0 && t.coll.Contains(e) {
		t.disable(metrics.ReasonDuplicate)
		return
	}
	if t.added.remove(key) {
		return
	}
	if t.changed.remove(key) {
		t.addRemoved(e, key)
		return
	}
	// the collection no longer counts e, hence the extra element
	if t.overflows(1) {
		t.disable(metrics.ReasonAutoOff)
		return
	}
	t.addRemoved(e, key)
}

// DisablesAdd reports whether RecordAdd(e) would switch tracking off.
func (t *CollectionTracker[E]) DisablesAdd(e E) bool {
	if !t.tracking {
		return false
	}
	key, ok := t.keyFor(e)
	if !ok {
		return true
	}
	if t.removed.contains(key) {
		return t.ordered
	}
	return t.overflows(0)
}

// DisablesRemove reports whether RecordRemove(e) would switch tracking off,
// given the collection has already dropped e.
func (t *CollectionTracker[E]) DisablesRemove(e E) bool {
	if !t.tracking {
		return false
	}
	key, ok := t.keyFor(e)
	if !ok {
		return true
	}
	if t.dups && t.coll.Len() >= 0 && t.coll.Contains(e) {
		return true
	}
	if t.added.contains(key) || t.changed.contains(key) {
		return false
	}
	return t.overflows(1)
}

func (t *CollectionTracker[E]) addRemoved(e E, key any) {
	if t.removed == nil {
		t.removed = newDeltaSet[E](false)
	}
	t.removed.add(e, key)
}

func (t *CollectionTracker[E]) overflows(pending int) bool {
	size := t.coll.Len()
	return t.autoOff && size >= 0 && t.added.len()+t.removed.len() >= size+pending
}

func (t *CollectionTracker[E]) disable(reason string) {
	recordDisabled(reason)
	t.StopTracking()
}
