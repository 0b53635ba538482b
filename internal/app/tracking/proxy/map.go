package proxy

import (
	"iter"
	"reflect"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
	"github.com/light-bringer/changeproxy/internal/app/tracking/tracker"
	"github.com/light-bringer/changeproxy/internal/pkg/container"
)

// MapFactory builds the backing container of a map proxy. compare is nil
// for the unsorted kinds.
type MapFactory[K comparable, V any] func(compare container.Comparator[K]) container.Map[K, V]

// MapProxy proxies any of the map kinds.
type MapProxy[K comparable, V any] struct {
	owned
	m         container.Map[K, V]
	newMap    MapFactory[K, V]
	compare   container.Comparator[K]
	tracker   *tracker.MapTracker[K, V]
	keyType   reflect.Type
	valueType reflect.Type
	settings  Settings
}

// NewMap returns an empty, unowned map proxy over a container built by newMap.
func NewMap[K comparable, V any](newMap MapFactory[K, V], keyType, valueType reflect.Type, compare container.Comparator[K], trackChanges, autoOff bool, settings Settings) *MapProxy[K, V] {
	p := &MapProxy[K, V]{
		owned:     unowned(),
		m:         newMap(compare),
		newMap:    newMap,
		compare:   compare,
		keyType:   keyType,
		valueType: valueType,
		settings:  settings,
	}
	if trackChanges {
		p.tracker = tracker.NewMapTracker[K, V](p.m, autoOff)
	}
	return p
}

func (p *MapProxy[K, V]) typeChecker() contracts.TypeChecker { return p.settings.checker() }

func (p *MapProxy[K, V]) ChangeTracker() tracker.ChangeTracker {
	if p.tracker == nil {
		return nil
	}
	return p.tracker
}

func (p *MapProxy[K, V]) MapTracker() *tracker.MapTracker[K, V] { return p.tracker }

func (p *MapProxy[K, V]) KeyType() reflect.Type { return p.keyType }

func (p *MapProxy[K, V]) ValueType() reflect.Type { return p.valueType }

// Comparator is nil unless the map is sorted.
func (p *MapProxy[K, V]) Comparator() container.Comparator[K] { return p.compare }

func (p *MapProxy[K, V]) Len() int { return p.m.Len() }

func (p *MapProxy[K, V]) Get(k K) (V, bool) { return p.m.Get(k) }

func (p *MapProxy[K, V]) ContainsKey(k K) bool { return p.m.ContainsKey(k) }

func (p *MapProxy[K, V]) Keys() []K { return p.m.Keys() }

func (p *MapProxy[K, V]) Values() []V { return p.m.Values() }

func (p *MapProxy[K, V]) All() iter.Seq2[K, V] { return p.m.All() }

func (p *MapProxy[K, V]) Iterator() container.EntryIterator[K, V] {
	return AfterEntryIterator[K, V](p, p.m.Iterator())
}

// Put stores v under k and returns the previous value, if any.
func (p *MapProxy[K, V]) Put(k K, v V) (V, bool, error) {
	existed, err := BeforePut[K, V](p, k, v)
	if err != nil {
		var zero V
		return zero, false, err
	}
	prev, _ := p.m.Put(k, v)
	return AfterPut[K, V](p, k, v, prev, existed), existed, nil
}

// PutAll stores every entry of src. Types are checked before anything is
// stored.
func (p *MapProxy[K, V]) PutAll(src MapSource[K, V]) error {
	for k, v := range src.All() {
		if err := AssertAllowedType(p, k, p.keyType); err != nil {
			return err
		}
		if err := AssertAllowedType(p, v, p.valueType); err != nil {
			return err
		}
	}
	for k, v := range src.All() {
		if _, _, err := p.Put(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (p *MapProxy[K, V]) Remove(k K) (V, bool, error) {
	existed := BeforeMapRemove[K, V](p, k)
	prev, _ := p.m.Remove(k)
	return AfterMapRemove[K, V](p, k, prev, existed), existed, nil
}

func (p *MapProxy[K, V]) Clear() error {
	BeforeMapClear[K, V](p)
	p.m.Clear()
	return nil
}

func (p *MapProxy[K, V]) Snapshot() any {
	if c, ok := p.m.(container.Cloner); ok {
		return c.CloneAny()
	}
	return p.Copy(p.m)
}

func (p *MapProxy[K, V]) Copy(src MapSource[K, V]) container.Map[K, V] {
	out := p.newMap(p.compare)
	for k, v := range src.All() {
		out.Put(k, v)
	}
	return out
}

func (p *MapProxy[K, V]) NewInstance(keyType, valueType reflect.Type, compare container.Comparator[K], trackChanges, autoOff bool) ProxyMap[K, V] {
	return NewMap(p.newMap, keyType, valueType, compare, trackChanges, autoOff, p.settings)
}
