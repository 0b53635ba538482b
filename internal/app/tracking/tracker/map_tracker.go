package tracker

import "github.com/light-bringer/changeproxy/internal/pkg/metrics"

// MapTracker records additions, removals and value replacements on a map.
// By default deltas are expressed in keys; SetTrackKeys(false) switches to
// values, which assumes each value appears under a single key.
type MapTracker[K comparable, V any] struct {
	state
	m         Sizer
	trackKeys bool

	added   *deltaSet[any]
	removed *deltaSet[any]
	changed *deltaSet[any]
}

// NewMapTracker creates a key-tracking tracker over m that starts out not
// tracking.
func NewMapTracker[K comparable, V any](m Sizer, autoOff bool) *MapTracker[K, V] {
	return &MapTracker[K, V]{state: newState(autoOff), m: m, trackKeys: true}
}

func (t *MapTracker[K, V]) TrackKeys() bool { return t.trackKeys }

func (t *MapTracker[K, V]) SetTrackKeys(keys bool) { t.trackKeys = keys }

func (t *MapTracker[K, V]) StartTracking() {
	t.tracking = true
	if t.seq == -1 {
		t.seq = 0
	}
	t.reset()
}

func (t *MapTracker[K, V]) StopTracking() {
	t.tracking = false
	t.seq = -1
	t.reset()
}

func (t *MapTracker[K, V]) reset() {
	t.added, t.removed, t.changed = nil, nil, nil
	t.identity = identityUnset
}

// Added returns added keys, or added values when tracking by value.
func (t *MapTracker[K, V]) Added() []any   { return t.added.values() }
func (t *MapTracker[K, V]) Removed() []any { return t.removed.values() }
func (t *MapTracker[K, V]) Changed() []any { return t.changed.values() }

func (t *MapTracker[K, V]) Deltas() Deltas {
	return Deltas{Added: t.Added(), Removed: t.Removed(), Changed: t.Changed()}
}

// RecordAdd notes a new entry.
func (t *MapTracker[K, V]) RecordAdd(k K, v V) {
	if !t.tracking {
		return
	}
	if t.trackKeys {
		t.add(k)
	} else {
		t.add(v)
	}
}

// RecordRemove notes a removed entry. The map must already reflect it.
func (t *MapTracker[K, V]) RecordRemove(k K, v V) {
	if !t.tracking {
		return
	}
	if t.trackKeys {
		t.remove(k)
	} else {
		t.remove(v)
	}
}

// RecordChange notes that the value under an existing key was replaced.
func (t *MapTracker[K, V]) RecordChange(k K, old, updated V) {
	if !t.tracking {
		return
	}
	if t.trackKeys {
		t.change(k)
		return
	}
	t.remove(old)
	if t.tracking {
		t.add(updated)
	}
}

func (t *MapTracker[K, V]) add(obj any) {
	key, ok := t.keyFor(obj)
	if !ok {
		t.disable(metrics.ReasonUnhashable)
		return
	}
	if t.removed.remove(key) {
		t.changedSet().add(obj, key)
		return
	}
	if t.overflows(0) {
		t.disable(metrics.ReasonAutoOff)
		return
	}
	if t.added == nil {
		t.added = newDeltaSet[any](false)
	}
	t.added.add(obj, key)
}

func (t *MapTracker[K, V]) remove(obj any) {
	key, ok := t.keyFor(obj)
	if !ok {
		t.disable(metrics.ReasonUnhashable)
		return
	}
	t.changed.remove(key)
	if t.added.remove(key) {
		return
	}
	if t.overflows(1) {
		t.disable(metrics.ReasonAutoOff)
		return
	}
	if t.removed == nil {
		t.removed = newDeltaSet[any](false)
	}
	t.removed.add(obj, key)
}

func (t *MapTracker[K, V]) change(obj any) {
	key, ok := t.keyFor(obj)
	if !ok {
		t.disable(metrics.ReasonUnhashable)
		return
	}
	if t.changed.contains(key) || t.added.contains(key) {
		return
	}
	if t.overflows(0) {
		t.disable(metrics.ReasonAutoOff)
		return
	}
	t.changedSet().add(obj, key)
}

func (t *MapTracker[K, V]) changedSet() *deltaSet[any] {
	if t.changed == nil {
		t.changed = newDeltaSet[any](false)
	}
	return t.changed
}

func (t *MapTracker[K, V]) overflows(pending int) bool {
	size := t.m.Len()
	return t.autoOff && size >= 0 &&
		t.added.len()+t.changed.len()+t.removed.len() >= size+pending
}

func (t *MapTracker[K, V]) disable(reason string) {
	recordDisabled(reason)
	t.StopTracking()
}
