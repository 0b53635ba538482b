// Package tracker records fine-grained deltas against proxied containers so
// that a flush can write only what changed.
package tracker

import (
	"reflect"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
	"github.com/light-bringer/changeproxy/internal/pkg/metrics"
)

// ChangeTracker is the type-erased view of a tracker used by flush and
// rollback code that does not know the container's element types.
type ChangeTracker interface {
	IsTracking() bool

	// StartTracking resets all deltas and, when no sequence is set, computes
	// the initial one.
	StartTracking()

	// StopTracking clears all deltas and resets the sequence to -1.
	StopTracking()

	AutoOff() bool
	SetAutoOff(autoOff bool)

	// NextSequence is the position hint for the next element appended to an
	// ordered container, for stores that keep elements in a sequence.
	NextSequence() int
	SetNextSequence(seq int)

	Deltas() Deltas
}

// Deltas is a copy of a tracker's delta collections.
type Deltas struct {
	Added   []any
	Removed []any
	Changed []any
}

// Empty reports whether there is nothing to flush.
func (d Deltas) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Sizer reports the current size of the tracked container. A negative size
// means the size is unknown, as for an unloaded delayed collection.
type Sizer interface {
	Len() int
}

type identityMode int8

const (
	identityUnset identityMode = iota
	identityValue
	identityRef
)

// state is shared by the collection and map trackers.
type state struct {
	tracking bool
	autoOff  bool
	seq      int
	identity identityMode
}

func newState(autoOff bool) state {
	return state{autoOff: autoOff, seq: -1}
}

func (s *state) IsTracking() bool { return s.tracking }

func (s *state) AutoOff() bool { return s.autoOff }

func (s *state) SetAutoOff(autoOff bool) { s.autoOff = autoOff }

func (s *state) NextSequence() int { return s.seq }

func (s *state) SetNextSequence(seq int) { s.seq = seq }

// keyFor returns the delta-set key of v. The first value seen in a
// generation fixes whether values compare by reference or by value.
func (s *state) keyFor(v any) (any, bool) {
	if s.identity == identityUnset {
		s.identity = identityValue
		if m, ok := v.(contracts.Managed); ok && m.IsManaged() {
			s.identity = identityRef
		}
	}
	k := v
	if s.identity == identityValue {
		if kd, ok := v.(contracts.Keyed); ok {
			k = kd.EqualityKey()
		}
	}
	if k != nil && !reflect.TypeOf(k).Comparable() {
		return nil, false
	}
	return k, true
}

func recordDisabled(reason string) {
	metrics.TrackingDisabled.WithLabelValues(reason).Inc()
}
