package proxy

import (
	"cmp"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/changeproxy/internal/pkg/container"
)

func hashMaps(compare container.Comparator[string]) container.Map[string, int] {
	return container.NewHashMap[string, int]()
}

func treeMaps(compare container.Comparator[string]) container.Map[string, int] {
	return container.NewTreeMap[string, int](compare)
}

func ownedMap(t *testing.T, newMap MapFactory[string, int], entries map[string]int) (*MapProxy[string, int], *fakeOwner) {
	t.Helper()
	m := NewMap(newMap, nil, nil, cmp.Compare[string], true, false, Settings{})
	require.NoError(t, m.PutAll(container.HashMapOf(entries)))
	owner := newFakeOwner()
	require.NoError(t, m.SetOwner(newFakeTable().attach(3, owner), field))
	m.ChangeTracker().StartTracking()
	return m, owner
}

func TestMapProxy_Put(t *testing.T) {
	m, owner := ownedMap(t, hashMaps, map[string]int{"a": 1})

	_, existed, err := m.Put("b", 2)
	require.NoError(t, err)
	assert.False(t, existed)

	prev, existed, err := m.Put("a", 10)
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, 1, prev)

	assert.Equal(t, []any{"b"}, m.MapTracker().Added())
	assert.Equal(t, []any{"a"}, m.MapTracker().Changed())
	assert.Equal(t, []removal{{field: field, value: 1}}, owner.removed)
	assert.Equal(t, []int{field, field}, owner.dirty)
}

func TestMapProxy_RemoveThenReAdd(t *testing.T) {
	m, owner := ownedMap(t, hashMaps, map[string]int{"a": 1, "b": 2})

	prev, existed, err := m.Remove("a")
	require.NoError(t, err)
	require.True(t, existed)
	assert.Equal(t, 1, prev)
	assert.Equal(t, []removal{
		{field: field, value: "a", isKey: true},
		{field: field, value: 1},
	}, owner.removed)

	_, _, err = m.Put("a", 5)
	require.NoError(t, err)

	assert.Equal(t, []any{"a"}, m.MapTracker().Changed())
	assert.Empty(t, m.MapTracker().Added())
	assert.Empty(t, m.MapTracker().Removed())
}

func TestMapProxy_RemoveMissingKey(t *testing.T) {
	m, owner := ownedMap(t, hashMaps, map[string]int{"a": 1})

	_, existed, err := m.Remove("zz")
	require.NoError(t, err)

	assert.False(t, existed)
	assert.Empty(t, owner.removed)
	assert.True(t, m.ChangeTracker().Deltas().Empty())
}

func TestMapProxy_TypeAssertion(t *testing.T) {
	m := NewMap[string, any](func(container.Comparator[string]) container.Map[string, any] {
		return container.NewHashMap[string, any]()
	}, nil, reflect.TypeFor[int](), nil, true, true, Settings{})

	_, _, err := m.Put("a", "not a number")
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Equal(t, 0, m.Len())

	_, _, err = m.Put("a", 1)
	assert.NoError(t, err)
}

func TestMapProxy_Clear(t *testing.T) {
	m, owner := ownedMap(t, treeMaps, map[string]int{"a": 1, "b": 2})

	require.NoError(t, m.Clear())

	assert.Equal(t, 0, m.Len())
	assert.False(t, m.ChangeTracker().IsTracking())
	assert.Equal(t, []removal{
		{field: field, value: "a", isKey: true},
		{field: field, value: 1},
		{field: field, value: "b", isKey: true},
		{field: field, value: 2},
	}, owner.removed)
}

func TestMapProxy_Iterator(t *testing.T) {
	m, owner := ownedMap(t, treeMaps, map[string]int{"a": 1, "b": 2, "c": 3})

	it := m.Iterator()
	for it.Next() {
		if it.Key() == "b" {
			it.Remove()
		}
	}

	assert.Equal(t, []string{"a", "c"}, m.Keys())
	assert.Equal(t, []any{"b"}, m.MapTracker().Removed())
	assert.Len(t, owner.removed, 2)
	assert.Same(t, it, AfterEntryIterator[string, int](m, it))
}

func TestMapProxy_CopyAndSnapshot(t *testing.T) {
	m, _ := ownedMap(t, treeMaps, map[string]int{"b": 2, "a": 1})

	cp := m.Copy(m)
	assert.IsType(t, &container.TreeMap[string, int]{}, cp)
	assert.Equal(t, []string{"a", "b"}, cp.Keys())

	snap := m.Snapshot().(*container.TreeMap[string, int])
	_, _, err := m.Put("c", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Len())
}
