// Package manager hands out proxies for record fields. It keeps one
// template proxy per container kind and type combination and mints every
// field proxy from it.
//
// Applications embedding the engine build their manager from the shared
// configuration file:
//
//	settings, err := config.Load(path)
//	...
//	cfg, err := manager.ConfigFrom(settings)
//	...
//	m := manager.New(cfg, manager.WithSessions(repo.NewSpannerSessions(client)))
package manager

import (
	"reflect"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
	"github.com/light-bringer/changeproxy/internal/app/tracking/proxy"
	"github.com/light-bringer/changeproxy/internal/pkg/clock"
	"github.com/light-bringer/changeproxy/internal/pkg/container"
	"github.com/light-bringer/changeproxy/internal/pkg/logging"
	"github.com/light-bringer/changeproxy/internal/pkg/metrics"
)

// Manager creates and copies proxies. It is safe for concurrent use.
type Manager struct {
	cfg      Config
	settings proxy.Settings
	clock    clock.Clock
	logger   *log.Logger

	// templates never shrink: the set of kind and type combinations a
	// program uses is small and fixed.
	templates sync.Map
}

// Option customizes a Manager.
type Option func(*Manager)

// WithTypeChecker replaces the default assignability check.
func WithTypeChecker(tc contracts.TypeChecker) Option {
	return func(m *Manager) { m.settings.Checker = tc }
}

// WithSessions sets the opener detached delayed proxies load through.
func WithSessions(opener contracts.SessionOpener) Option {
	return func(m *Manager) { m.settings.Load.Sessions = opener }
}

func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func New(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		cfg:    cfg,
		clock:  clock.NewRealClock(),
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.settings.Load.Timeout = cfg.LoadTimeout
	m.settings.Load.Clock = m.clock
	m.settings.Load.Logger = m.logger
	return m
}

func (m *Manager) Config() Config { return m.cfg }

// IsUnproxyable reports whether kind was configured as unproxyable.
func (m *Manager) IsUnproxyable(kind Kind) bool {
	c, _ := kind.Concrete()
	return lo.Contains(m.cfg.Unproxyable, kind) || lo.Contains(m.cfg.Unproxyable, c)
}

type templateKey struct {
	kind    Kind
	elem    reflect.Type
	key     reflect.Type
	value   reflect.Type
	delayed bool
}

// resolve maps kind to a concrete kind of the wanted family.
func (m *Manager) resolve(kind Kind, wantMap bool) (Kind, error) {
	c, ok := kind.Concrete()
	if !ok {
		return "", errors.Wrapf(proxy.ErrUnsupported, "unknown container kind %q", kind)
	}
	if c.IsMap() != wantMap {
		family := "collection"
		if wantMap {
			family = "map"
		}
		return "", errors.WithHint(
			errors.Wrapf(proxy.ErrUnsupported, "kind %q is not a %s kind", kind, family),
			"use NewCollectionProxy for lists and sets and NewMapProxy for maps")
	}
	if m.IsUnproxyable(kind) {
		return "", errors.Wrapf(proxy.ErrUnsupported, "kind %q is configured as unproxyable", kind)
	}
	return c, nil
}

// lookup returns the cached template for key or stores the one built by
// synth. Two callers racing on the same key may both synthesize; the last
// store wins.
func (m *Manager) lookup(key templateKey, synth func() any) any {
	if t, ok := m.templates.Load(key); ok {
		metrics.TemplateHits.WithLabelValues(string(key.kind)).Inc()
		return t
	}
	t := synth()
	m.templates.Store(key, t)
	metrics.TemplatesSynthesized.WithLabelValues(string(key.kind)).Inc()
	m.logger.Debug("synthesized proxy template", "kind", key.kind,
		"elem", key.elem, "key", key.key, "value", key.value, "delayed", key.delayed)
	return t
}

// NewCollectionProxy returns an unowned proxy for a list or set field.
// Sorted kinds need compare unless E has a natural order. The element type
// is only enforced when the manager asserts types.
func NewCollectionProxy[E comparable](m *Manager, kind Kind, elemType reflect.Type, compare container.Comparator[E], autoOff bool) (proxy.ProxyCollection[E], error) {
	c, err := m.resolve(kind, false)
	if err != nil {
		return nil, err
	}
	if c.Sorted() && compare == nil {
		natural, ok := container.NaturalOrder[E]()
		if !ok {
			return nil, errors.WithHint(
				errors.Wrapf(proxy.ErrUnsupported, "kind %q of %s has no order", kind, reflect.TypeFor[E]()),
				"pass a comparator")
		}
		compare = natural
	}
	if !m.cfg.AssertAllowedType {
		elemType = nil
	}

	key := templateKey{kind: c, elem: reflect.TypeFor[E](), delayed: m.cfg.DelayCollectionLoading}
	tmpl := m.lookup(key, func() any { return synthCollection[E](c, key.delayed, m.settings) })
	return tmpl.(proxy.ProxyCollection[E]).NewInstance(elemType, compare, m.cfg.TrackChanges, autoOff), nil
}

func synthCollection[E comparable](kind Kind, delayed bool, settings proxy.Settings) proxy.ProxyCollection[E] {
	if kind == KindArrayList {
		if delayed {
			return proxy.NewDelayedList[E](nil, false, false, settings)
		}
		return proxy.NewList[E](nil, false, false, settings)
	}
	newSet := setFactory[E](kind)
	if delayed {
		return proxy.NewDelayedSet(newSet, nil, nil, false, false, settings)
	}
	return proxy.NewSet(newSet, nil, nil, false, false, settings)
}

func setFactory[E comparable](kind Kind) proxy.SetFactory[E] {
	switch kind {
	case KindLinkedHashSet:
		return func(container.Comparator[E]) container.Set[E] { return container.NewLinkedHashSet[E]() }
	case KindTreeSet:
		return func(compare container.Comparator[E]) container.Set[E] { return container.NewTreeSet(compare) }
	default:
		return func(container.Comparator[E]) container.Set[E] { return container.NewHashSet[E]() }
	}
}

// NewMapProxy returns an unowned proxy for a map field.
func NewMapProxy[K comparable, V any](m *Manager, kind Kind, keyType, valueType reflect.Type, compare container.Comparator[K], autoOff bool) (proxy.ProxyMap[K, V], error) {
	c, err := m.resolve(kind, true)
	if err != nil {
		return nil, err
	}
	if c.Sorted() && compare == nil {
		natural, ok := container.NaturalOrder[K]()
		if !ok {
			return nil, errors.WithHint(
				errors.Wrapf(proxy.ErrUnsupported, "kind %q keyed by %s has no order", kind, reflect.TypeFor[K]()),
				"pass a comparator")
		}
		compare = natural
	}
	if !m.cfg.AssertAllowedType {
		keyType, valueType = nil, nil
	}

	key := templateKey{kind: c, key: reflect.TypeFor[K](), value: reflect.TypeFor[V]()}
	tmpl := m.lookup(key, func() any {
		return proxy.NewMap(mapFactory[K, V](c), nil, nil, nil, false, false, m.settings)
	})
	return tmpl.(proxy.ProxyMap[K, V]).NewInstance(keyType, valueType, compare, m.cfg.TrackChanges, autoOff), nil
}

func mapFactory[K comparable, V any](kind Kind) proxy.MapFactory[K, V] {
	switch kind {
	case KindLinkedHashMap:
		return func(container.Comparator[K]) container.Map[K, V] { return container.NewLinkedHashMap[K, V]() }
	case KindTreeMap:
		return func(compare container.Comparator[K]) container.Map[K, V] { return container.NewTreeMap[K, V](compare) }
	default:
		return func(container.Comparator[K]) container.Map[K, V] { return container.NewHashMap[K, V]() }
	}
}

// NewDateProxy returns an unowned date proxy. A zero t means now.
func (m *Manager) NewDateProxy(t time.Time) *proxy.Date {
	if t.IsZero() {
		t = m.clock.Now()
	}
	return proxy.NewDate(t)
}

// NewCalendarProxy returns an unowned calendar set to now in loc. A nil loc
// means UTC.
func (m *Manager) NewCalendarProxy(loc *time.Location) *proxy.Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return proxy.NewCalendar(m.clock.Now().In(loc))
}
