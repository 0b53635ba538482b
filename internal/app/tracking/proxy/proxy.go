// Package proxy wraps the plain containers of a managed record's fields so
// that every mutation dirties the owning record and feeds a change tracker.
package proxy

import (
	"iter"
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
	"github.com/light-bringer/changeproxy/internal/app/tracking/tracker"
	"github.com/light-bringer/changeproxy/internal/pkg/container"
)

// Proxy is implemented by every proxied field value.
type Proxy interface {
	// SetOwner attaches the proxy to a record field. A zero handle detaches.
	SetOwner(owner contracts.Handle, field int) error

	// Owner resolves the owning record, or returns nil when detached.
	Owner() contracts.OwnerRecord
	OwnerHandle() contracts.Handle
	// OwnerField is -1 when detached.
	OwnerField() int

	// ChangeTracker returns nil when changes are not tracked.
	ChangeTracker() tracker.ChangeTracker

	// Snapshot returns an unproxied copy of the current contents.
	Snapshot() any
}

// Source is anything whose elements can be copied.
type Source[E any] interface {
	Values() []E
}

// MapSource is anything whose entries can be copied.
type MapSource[K comparable, V any] interface {
	All() iter.Seq2[K, V]
}

// ProxyCollection is a proxied list or set.
type ProxyCollection[E comparable] interface {
	Proxy

	Len() int
	Contains(e E) bool
	Add(e E) (bool, error)
	AddAll(elems ...E) (bool, error)
	Remove(e E) (bool, error)
	RemoveAll(elems ...E) (bool, error)
	RetainAll(elems ...E) (bool, error)
	Clear() error
	Values() []E
	All() iter.Seq[E]
	// Iterator returns an iterator whose Remove is intercepted like Remove.
	Iterator() container.Iterator[E]

	// Err reports the last failed implicit load. It is always nil for
	// proxies that never load.
	Err() error

	// ElementType is nil unless element types are asserted.
	ElementType() reflect.Type

	// Copy returns a plain container of the proxy's concrete kind holding the
	// elements of src. The copy is not a proxy and fires no hooks.
	Copy(src Source[E]) container.Collection[E]

	// NewInstance mints an empty, unowned proxy of the same kind.
	NewInstance(elemType reflect.Type, compare container.Comparator[E], trackChanges, autoOff bool) ProxyCollection[E]

	CollectionTracker() *tracker.CollectionTracker[E]
}

// ElementKeyed is implemented by collections stored one row per distinct
// element rather than one row per position.
type ElementKeyed interface {
	KeyedByElement() bool
}

// ProxyMap is a proxied map.
type ProxyMap[K comparable, V any] interface {
	Proxy

	Len() int
	Get(k K) (V, bool)
	ContainsKey(k K) bool
	Put(k K, v V) (V, bool, error)
	PutAll(src MapSource[K, V]) error
	Remove(k K) (V, bool, error)
	Clear() error
	Keys() []K
	Values() []V
	All() iter.Seq2[K, V]
	Iterator() container.EntryIterator[K, V]

	KeyType() reflect.Type
	ValueType() reflect.Type

	Copy(src MapSource[K, V]) container.Map[K, V]
	NewInstance(keyType, valueType reflect.Type, compare container.Comparator[K], trackChanges, autoOff bool) ProxyMap[K, V]

	MapTracker() *tracker.MapTracker[K, V]
}

// owned holds the owner back-reference shared by all proxies.
type owned struct {
	handle contracts.Handle
	field  int
}

func unowned() owned { return owned{field: -1} }

func (o *owned) SetOwner(h contracts.Handle, field int) error {
	if h.IsZero() {
		o.handle, o.field = contracts.Handle{}, -1
		return nil
	}
	if !o.handle.IsZero() && (o.handle != h || o.field != field) {
		return errors.WithHint(
			errors.Wrapf(ErrOwnershipConflict, "record %d field %d, requested record %d field %d",
				o.handle.ID(), o.field, h.ID(), field),
			"detach the proxy first or store a copy of it")
	}
	o.handle, o.field = h, field
	return nil
}

func (o *owned) Owner() contracts.OwnerRecord { return o.handle.Resolve() }

func (o *owned) OwnerHandle() contracts.Handle { return o.handle }

func (o *owned) OwnerField() int { return o.field }

// assignable is the default type checker.
type assignable struct{}

func (assignable) AssertAllowed(value any, allowed reflect.Type) error {
	if allowed == nil {
		return nil
	}
	if value == nil {
		switch allowed.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return nil
		}
		return errors.Wrapf(ErrTypeMismatch, "nil is not a %s", allowed)
	}
	if t := reflect.TypeOf(value); !t.AssignableTo(allowed) {
		return errors.Wrapf(ErrTypeMismatch, "%s is not assignable to %s", t, allowed)
	}
	return nil
}

// DefaultTypeChecker accepts values assignable to the allowed type.
var DefaultTypeChecker contracts.TypeChecker = assignable{}

// Settings carries what every proxy of a manager shares.
type Settings struct {
	// Checker validates element, key and value types when they are asserted.
	Checker contracts.TypeChecker
	// Load configures delayed proxies.
	Load LoadSettings
}

func (s Settings) checker() contracts.TypeChecker {
	if s.Checker == nil {
		return DefaultTypeChecker
	}
	return s.Checker
}
