package manager

import (
	"cmp"
	"reflect"
	"sync"
	"testing"
	"time"

	gocmp "github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/changeproxy/internal/app/tracking/proxy"
	"github.com/light-bringer/changeproxy/internal/pkg/clock"
	"github.com/light-bringer/changeproxy/internal/pkg/config"
	"github.com/light-bringer/changeproxy/internal/pkg/logging"
)

type point struct{ x, y int }

func newManager(cfg Config) *Manager {
	return New(cfg, WithLogger(logging.Discard()))
}

func TestNewCollectionProxy_KindResolution(t *testing.T) {
	m := newManager(DefaultConfig())

	tests := []struct {
		kind Kind
		want any
	}{
		{KindCollection, &proxy.ListProxy[string]{}},
		{KindList, &proxy.ListProxy[string]{}},
		{KindQueue, &proxy.ListProxy[string]{}},
		{KindSet, &proxy.SetProxy[string]{}},
		{KindSortedSet, &proxy.SetProxy[string]{}},
		{KindLinkedHashSet, &proxy.SetProxy[string]{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			p, err := NewCollectionProxy[string](m, tt.kind, nil, nil, true)
			require.NoError(t, err)

			assert.IsType(t, tt.want, p)
			assert.Nil(t, p.Owner())
			require.NotNil(t, p.CollectionTracker())
			assert.True(t, p.CollectionTracker().AutoOff())
			assert.False(t, p.ChangeTracker().IsTracking())
		})
	}
}

func TestNewCollectionProxy_SortedUsesNaturalOrder(t *testing.T) {
	m := newManager(DefaultConfig())

	p, err := NewCollectionProxy[int](m, KindSortedSet, nil, nil, false)
	require.NoError(t, err)
	_, err = p.AddAll(3, 1, 2)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, p.Values())
}

func TestNewCollectionProxy_Unsupported(t *testing.T) {
	m := newManager(Config{TrackChanges: true, Unproxyable: []Kind{KindLinkedHashSet}})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := NewCollectionProxy[string](m, Kind("deque"), nil, nil, true)
		assert.ErrorIs(t, err, proxy.ErrUnsupported)
	})

	t.Run("map kind", func(t *testing.T) {
		_, err := NewCollectionProxy[string](m, KindMap, nil, nil, true)
		assert.ErrorIs(t, err, proxy.ErrUnsupported)
	})

	t.Run("unproxyable kind", func(t *testing.T) {
		_, err := NewCollectionProxy[string](m, KindLinkedHashSet, nil, nil, true)
		assert.ErrorIs(t, err, proxy.ErrUnsupported)
	})

	t.Run("sorted without order", func(t *testing.T) {
		_, err := NewCollectionProxy[point](m, KindSortedSet, nil, nil, true)
		assert.ErrorIs(t, err, proxy.ErrUnsupported)

		byX := func(a, b point) int { return cmp.Compare(a.x, b.x) }
		_, err = NewCollectionProxy[point](m, KindSortedSet, nil, byX, true)
		assert.NoError(t, err)
	})
}

func TestNewCollectionProxy_Options(t *testing.T) {
	t.Run("untracked", func(t *testing.T) {
		m := newManager(Config{})
		p, err := NewCollectionProxy[string](m, KindList, nil, nil, true)
		require.NoError(t, err)
		assert.Nil(t, p.ChangeTracker())
	})

	t.Run("element type only when asserted", func(t *testing.T) {
		elem := reflect.TypeFor[string]()

		p, err := NewCollectionProxy[any](newManager(DefaultConfig()), KindList, elem, nil, true)
		require.NoError(t, err)
		assert.Nil(t, p.ElementType())

		strict := newManager(Config{TrackChanges: true, AssertAllowedType: true})
		p, err = NewCollectionProxy[any](strict, KindList, elem, nil, true)
		require.NoError(t, err)
		assert.Equal(t, elem, p.ElementType())
		_, err = p.Add(1)
		assert.ErrorIs(t, err, proxy.ErrTypeMismatch)
	})

	t.Run("delayed loading", func(t *testing.T) {
		m := newManager(Config{TrackChanges: true, DelayCollectionLoading: true})

		l, err := NewCollectionProxy[string](m, KindList, nil, nil, true)
		require.NoError(t, err)
		s, err := NewCollectionProxy[string](m, KindTreeSet, nil, nil, true)
		require.NoError(t, err)

		assert.IsType(t, &proxy.DelayedList[string]{}, l)
		assert.IsType(t, &proxy.DelayedSet[string]{}, s)
	})
}

func TestNewCollectionProxy_TemplatesAreCached(t *testing.T) {
	m := newManager(DefaultConfig())

	a, err := NewCollectionProxy[string](m, KindList, nil, nil, true)
	require.NoError(t, err)
	b, err := NewCollectionProxy[string](m, KindCollection, nil, nil, true)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	count := 0
	m.templates.Range(func(_, _ any) bool { count++; return true })
	assert.Equal(t, 1, count)
}

func TestNewCollectionProxy_ConcurrentFirstUse(t *testing.T) {
	m := newManager(DefaultConfig())

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := NewCollectionProxy[int](m, KindSet, nil, nil, true)
			if err == nil {
				_, err = p.Add(1)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestNewMapProxy(t *testing.T) {
	m := newManager(DefaultConfig())

	t.Run("sorted map", func(t *testing.T) {
		p, err := NewMapProxy[string, int](m, KindSortedMap, nil, nil, nil, true)
		require.NoError(t, err)

		for _, k := range []string{"b", "c", "a"} {
			_, _, err := p.Put(k, len(k))
			require.NoError(t, err)
		}
		assert.Equal(t, []string{"a", "b", "c"}, p.Keys())
		assert.NotNil(t, p.MapTracker())
	})

	t.Run("linked map keeps insertion order", func(t *testing.T) {
		p, err := NewMapProxy[string, int](m, KindLinkedHashMap, nil, nil, nil, true)
		require.NoError(t, err)

		for _, k := range []string{"b", "c", "a"} {
			_, _, err := p.Put(k, 0)
			require.NoError(t, err)
		}
		assert.Equal(t, []string{"b", "c", "a"}, p.Keys())
	})

	t.Run("collection kind refused", func(t *testing.T) {
		_, err := NewMapProxy[string, int](m, KindList, nil, nil, nil, true)
		assert.ErrorIs(t, err, proxy.ErrUnsupported)
	})

	t.Run("sorted map without key order", func(t *testing.T) {
		_, err := NewMapProxy[point, int](m, KindTreeMap, nil, nil, nil, true)
		assert.ErrorIs(t, err, proxy.ErrUnsupported)
	})
}

func TestDateAndCalendarProxies(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	m := New(DefaultConfig(), WithClock(clock.NewMockClock(now)), WithLogger(logging.Discard()))

	d := m.NewDateProxy(time.Time{})
	assert.Equal(t, now, d.Time())

	c := m.NewCalendarProxy(time.FixedZone("CET", 3600))
	assert.True(t, c.Time().Equal(now))
	assert.Equal(t, "CET", c.Location().String())
}

func TestConfigFrom(t *testing.T) {
	cfg := config.Default()
	cfg.Unproxyable = []string{"tree_map", "sorted_set"}
	cfg.DelayCollectionLoading = true

	got, err := ConfigFrom(cfg)
	require.NoError(t, err)
	assert.Empty(t, gocmp.Diff(Config{
		TrackChanges:           true,
		DelayCollectionLoading: true,
		Unproxyable:            []Kind{KindTreeMap, KindSortedSet},
		LoadTimeout:            cfg.LoadTimeout,
	}, got))

	cfg.Unproxyable = []string{"ring_buffer"}
	_, err = ConfigFrom(cfg)
	assert.ErrorIs(t, err, proxy.ErrUnsupported)
}

func TestIsUnproxyable(t *testing.T) {
	m := newManager(Config{Unproxyable: []Kind{KindTreeSet}})

	assert.True(t, m.IsUnproxyable(KindTreeSet))
	assert.True(t, m.IsUnproxyable(KindSortedSet))
	assert.False(t, m.IsUnproxyable(KindSet))
}

func TestKind(t *testing.T) {
	assert.True(t, KindList.Ordered())
	assert.True(t, KindList.AllowsDuplicates())
	assert.True(t, KindLinkedHashSet.Ordered())
	assert.False(t, KindLinkedHashSet.AllowsDuplicates())
	assert.False(t, KindSet.Ordered())
	assert.True(t, KindSortedMap.IsMap())
	assert.True(t, KindSortedMap.Sorted())

	_, err := ParseKind("hash_set")
	assert.NoError(t, err)
	_, err = ParseKind("bag")
	assert.ErrorIs(t, err, proxy.ErrUnsupported)
}
