package manager

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/copystructure"

	"github.com/light-bringer/changeproxy/internal/app/tracking/proxy"
	"github.com/light-bringer/changeproxy/internal/pkg/container"
)

// CopyCollection returns a plain copy of src. Proxies copy into their own
// concrete kind; plain containers clone themselves.
func CopyCollection[E comparable](src proxy.Source[E]) (container.Collection[E], error) {
	switch c := src.(type) {
	case proxy.ProxyCollection[E]:
		return c.Copy(c), nil
	case container.Cloner:
		if out, ok := c.CloneAny().(container.Collection[E]); ok {
			return out, nil
		}
	}
	return nil, errors.Wrapf(proxy.ErrUnsupported, "cannot copy collection %T", src)
}

// CopyMap is CopyCollection for maps.
func CopyMap[K comparable, V any](src proxy.MapSource[K, V]) (container.Map[K, V], error) {
	switch m := src.(type) {
	case proxy.ProxyMap[K, V]:
		return m.Copy(m), nil
	case container.Cloner:
		if out, ok := m.CloneAny().(container.Map[K, V]); ok {
			return out, nil
		}
	}
	return nil, errors.Wrapf(proxy.ErrUnsupported, "cannot copy map %T", src)
}

// CopyDate returns the plain time of a date proxy or time value.
func CopyDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case *proxy.Date:
		return d.Time(), nil
	case time.Time:
		return d, nil
	}
	return time.Time{}, errors.Wrapf(proxy.ErrUnsupported, "cannot copy %T as a date", v)
}

// CopyCalendar returns the plain zoned time of a calendar proxy or time value.
func CopyCalendar(v any) (time.Time, error) {
	switch c := v.(type) {
	case *proxy.Calendar:
		return c.Time(), nil
	case time.Time:
		return c, nil
	}
	return time.Time{}, errors.Wrapf(proxy.ErrUnsupported, "cannot copy %T as a calendar", v)
}

// CopyCustom copies a value of any other field type. Proxies are replaced by
// their snapshot, containers clone themselves and everything else is deep
// copied.
func CopyCustom(v any) (any, error) {
	switch c := v.(type) {
	case nil:
		return nil, nil
	case proxy.Proxy:
		return c.Snapshot(), nil
	case container.Cloner:
		return c.CloneAny(), nil
	case time.Time:
		return c, nil
	}
	out, err := copystructure.Copy(v)
	if err != nil {
		return nil, errors.Wrapf(errors.Mark(err, proxy.ErrUnsupported), "deep copy %T", v)
	}
	return out, nil
}
