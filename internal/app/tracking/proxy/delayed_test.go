package proxy

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
	"github.com/light-bringer/changeproxy/internal/pkg/container"
)

func delayedList(t *testing.T, settings Settings, rows ...any) (*DelayedList[string], *fakeOwner, contracts.Handle) {
	t.Helper()
	owner := newFakeOwner()
	owner.delayed[field] = true
	owner.rows = rows
	h := newFakeTable().attach(11, owner)

	d := NewDelayedList[string](nil, true, true, settings)
	require.NoError(t, d.SetOwner(h, field))
	d.ChangeTracker().StartTracking()
	return d, owner, h
}

func TestDelayedList_BlindAddsDeferLoad(t *testing.T) {
	d, owner, _ := delayedList(t, Settings{}, "x", "y")

	for _, e := range []string{"a", "b", "c"} {
		added, err := d.Add(e)
		require.NoError(t, err)
		assert.True(t, added)
	}
	assert.Equal(t, 0, owner.loads)
	assert.False(t, d.IsLoaded())
	assert.Len(t, owner.dirty, 3)

	assert.Equal(t, 5, d.Len())
	assert.Equal(t, 1, owner.loads)
	assert.True(t, d.IsLoaded())
	assert.Equal(t, []string{"x", "y", "a", "b", "c"}, d.Values())
	assert.True(t, d.ChangeTracker().IsTracking())
	assert.Equal(t, []string{"a", "b", "c"}, d.CollectionTracker().Added())
	assert.Equal(t, 2, d.ChangeTracker().NextSequence())
}

func TestDelayedList_BlindRemove(t *testing.T) {
	d, owner, _ := delayedList(t, Settings{}, "x", "y", "z")

	removed, err := d.Remove("y")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []any{"y"}, owner.removedValues())
	assert.Equal(t, 0, owner.loads)

	_, err = d.RemoveAll("nope")
	require.NoError(t, err)

	require.NoError(t, d.Load(context.Background()))
	assert.Equal(t, []string{"x", "z"}, d.Values())
	assert.Equal(t, []string{"y"}, d.CollectionTracker().Removed())
}

func TestDelayedList_BlindAddThenRemoveCancels(t *testing.T) {
	d, _, _ := delayedList(t, Settings{}, "x")

	d.Add("a")
	d.Remove("a")

	assert.True(t, d.ChangeTracker().Deltas().Empty())
	assert.Equal(t, []string{"x"}, d.Values())
}

func TestDelayedList_InformedOperationsLoad(t *testing.T) {
	t.Run("indexed read", func(t *testing.T) {
		d, owner, _ := delayedList(t, Settings{}, "x", "y")

		got, err := d.Get(1)
		require.NoError(t, err)

		assert.Equal(t, "y", got)
		assert.Equal(t, 1, owner.loads)
	})

	t.Run("insert", func(t *testing.T) {
		d, owner, _ := delayedList(t, Settings{}, "x", "y")

		require.NoError(t, d.Insert(0, "w"))

		assert.Equal(t, []string{"w", "x", "y"}, d.Values())
		assert.Equal(t, 1, owner.loads)
	})

	t.Run("loads once", func(t *testing.T) {
		d, owner, _ := delayedList(t, Settings{}, "x")

		d.Len()
		d.Contains("x")
		d.Iterator()

		assert.Equal(t, 1, owner.loads)
	})
}

func TestDelayedList_UntrackedAddLoads(t *testing.T) {
	d, owner, _ := delayedList(t, Settings{}, "x")
	d.ChangeTracker().StopTracking()

	_, err := d.Add("a")
	require.NoError(t, err)

	assert.Equal(t, 1, owner.loads)
	assert.Equal(t, []string{"x", "a"}, d.Values())
}

func TestDelayedList_OwnerWithNothingDelayed(t *testing.T) {
	d, owner, _ := delayedList(t, Settings{})
	owner.delayed[field] = false

	assert.Equal(t, 0, d.Len())
	assert.True(t, d.IsLoaded())
	assert.Equal(t, 0, owner.loads)
}

func TestDelayedList_LoadFailure(t *testing.T) {
	boom := errors.New("store unavailable")
	d, owner, _ := delayedList(t, Settings{}, "x")
	owner.loadErr = boom

	d.Add("a")

	assert.Equal(t, 0, d.Len())
	assert.ErrorIs(t, d.Err(), boom)
	assert.False(t, d.IsLoaded())
	assert.Equal(t, []string{"a"}, d.CollectionTracker().Added())

	_, err := d.Set(0, "q")
	assert.ErrorIs(t, err, boom)

	owner.loadErr = nil
	require.NoError(t, d.Load(context.Background()))
	assert.NoError(t, d.Err())
	assert.Equal(t, []string{"x", "a"}, d.Values())
	assert.Equal(t, 3, owner.loads)
}

func TestDelayedList_DetachedLoadUsesTransientSession(t *testing.T) {
	t.Run("session closed after load", func(t *testing.T) {
		sess := &mockSession{}
		sess.On("Close").Return(nil).Once()
		opener := &mockOpener{}
		opener.On("OpenSession", mock.Anything).Return(sess, nil).Once()

		d, owner, h := delayedList(t, Settings{Load: LoadSettings{Sessions: opener}}, "x")
		require.NoError(t, d.SetOwner(contracts.Handle{}, 0))
		assert.Equal(t, h, d.DelayedOwner())
		assert.Equal(t, field, d.DelayedField())

		assert.Equal(t, []string{"x"}, d.Values())
		require.Len(t, owner.sessions, 1)
		assert.Same(t, sess, owner.sessions[0])
		assert.True(t, sess.IsClosed())
		opener.AssertExpectations(t)
		sess.AssertExpectations(t)
	})

	t.Run("session closed after failure", func(t *testing.T) {
		sess := &mockSession{}
		sess.On("Close").Return(nil).Once()
		opener := &mockOpener{}
		opener.On("OpenSession", mock.Anything).Return(sess, nil).Once()

		d, owner, _ := delayedList(t, Settings{Load: LoadSettings{Sessions: opener}}, "x")
		owner.loadErr = errors.New("read failed")
		require.NoError(t, d.SetOwner(contracts.Handle{}, 0))

		assert.Error(t, d.Load(context.Background()))
		assert.True(t, sess.IsClosed())
		sess.AssertExpectations(t)
	})

	t.Run("attached load uses the owner's session", func(t *testing.T) {
		opener := &mockOpener{}
		d, owner, _ := delayedList(t, Settings{Load: LoadSettings{Sessions: opener}}, "x")

		require.NoError(t, d.Load(context.Background()))

		assert.Equal(t, []contracts.Session{nil}, owner.sessions)
		opener.AssertNotCalled(t, "OpenSession", mock.Anything)
	})
}

func TestDelayedList_EvictedOwner(t *testing.T) {
	owner := newFakeOwner()
	owner.delayed[field] = true
	table := newFakeTable()
	d := NewDelayedList[string](nil, true, true, Settings{})
	require.NoError(t, d.SetOwner(table.attach(5, owner), field))
	delete(table.records, 5)

	assert.ErrorIs(t, d.Load(context.Background()), ErrNoLoadOwner)
	assert.Nil(t, d.Values())
	assert.ErrorIs(t, d.Err(), ErrNoLoadOwner)
}

func TestDelayedList_LoadedElementOfWrongType(t *testing.T) {
	d, _, _ := delayedList(t, Settings{}, "x", 42)

	err := d.Load(context.Background())

	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.False(t, d.IsLoaded())
}

func TestDelayedList_ImplicitLoadTimeout(t *testing.T) {
	d, owner, _ := delayedList(t, Settings{Load: LoadSettings{Timeout: time.Second}}, "x")

	d.Len()

	assert.True(t, owner.deadline)
}

func TestDelayedList_NewInstanceIsDelayed(t *testing.T) {
	d, _, _ := delayedList(t, Settings{})

	sibling := d.NewInstance(nil, nil, true, true)

	_, ok := sibling.(DelayedProxy)
	assert.True(t, ok)
}

func TestDelayedSet_BlindAddsMergeWithLoaded(t *testing.T) {
	owner := newFakeOwner()
	owner.delayed[field] = true
	owner.rows = []any{"a", "b"}
	d := NewDelayedSet[string](func(container.Comparator[string]) container.Set[string] {
		return container.NewHashSet[string]()
	}, nil, nil, true, false, Settings{})
	require.NoError(t, d.SetOwner(newFakeTable().attach(1, owner), field))
	d.ChangeTracker().StartTracking()

	_, err := d.AddAll("a", "c")
	require.NoError(t, err)
	removed, err := d.Remove("b")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 0, owner.loads)

	assert.ElementsMatch(t, []string{"a", "c"}, d.Values())
	assert.Equal(t, []string{"c"}, d.CollectionTracker().Added())
	assert.Equal(t, []string{"b"}, d.CollectionTracker().Removed())
}

func stringSet(t *testing.T, rows ...any) (*DelayedSet[string], *fakeOwner) {
	t.Helper()
	owner := newFakeOwner()
	owner.delayed[field] = true
	owner.rows = rows
	d := NewDelayedSet[string](func(container.Comparator[string]) container.Set[string] {
		return container.NewHashSet[string]()
	}, nil, nil, true, false, Settings{})
	require.NoError(t, d.SetOwner(newFakeTable().attach(1, owner), field))
	d.ChangeTracker().StartTracking()
	return d, owner
}

func TestDelayedSet_BlindReaddSurvivesLoad(t *testing.T) {
	t.Run("element not stored", func(t *testing.T) {
		d, owner := stringSet(t, "a")

		d.Remove("x")
		d.Add("x")
		require.Equal(t, []string{"x"}, d.CollectionTracker().Changed())
		assert.Equal(t, 0, owner.loads)

		assert.True(t, d.Contains("x"))
		assert.ElementsMatch(t, []string{"a", "x"}, d.Values())
		assert.Equal(t, []string{"x"}, d.CollectionTracker().Added())
	})

	t.Run("element stored", func(t *testing.T) {
		d, _ := stringSet(t, "a", "x")

		d.Remove("x")
		d.Add("x")

		assert.ElementsMatch(t, []string{"a", "x"}, d.Values())
		assert.True(t, d.ChangeTracker().Deltas().Empty())
	})

	t.Run("failed load keeps the change", func(t *testing.T) {
		d, owner := stringSet(t, "a")
		owner.loadErr = errors.New("store unavailable")

		d.Remove("x")
		d.Add("x")
		d.Len()

		assert.False(t, d.IsLoaded())
		assert.Equal(t, []string{"x"}, d.CollectionTracker().Changed())
		assert.Empty(t, d.CollectionTracker().Removed())
	})
}

// tag compares by name unless its key cannot be hashed.
type tag struct {
	name   string
	sliced bool
}

func (g tag) EqualityKey() any {
	if g.sliced {
		return []string{g.name}
	}
	return g.name
}

func TestDelayedList_DisablingOperationLoadsFirst(t *testing.T) {
	t.Run("ordered readd", func(t *testing.T) {
		d, owner, _ := delayedList(t, Settings{}, "x")

		d.Add("a")
		d.Remove("x")
		assert.Equal(t, 0, owner.loads)

		added, err := d.Add("x")
		require.NoError(t, err)
		assert.True(t, added)

		assert.Equal(t, 1, owner.loads)
		assert.False(t, d.ChangeTracker().IsTracking())
		assert.Equal(t, []string{"a", "x"}, d.Values())
	})

	t.Run("unhashable element", func(t *testing.T) {
		owner := newFakeOwner()
		owner.delayed[field] = true
		owner.rows = []any{tag{name: "x"}}
		d := NewDelayedList[tag](nil, true, false, Settings{})
		require.NoError(t, d.SetOwner(newFakeTable().attach(3, owner), field))
		d.ChangeTracker().StartTracking()

		d.Add(tag{name: "a"})
		d.Remove(tag{name: "x"})
		assert.Equal(t, 0, owner.loads)

		_, err := d.Add(tag{name: "b", sliced: true})
		require.NoError(t, err)

		assert.Equal(t, 1, owner.loads)
		assert.False(t, d.ChangeTracker().IsTracking())
		assert.Equal(t, []tag{{name: "a"}, {name: "b", sliced: true}}, d.Values())
	})

	t.Run("unhashable removal", func(t *testing.T) {
		owner := newFakeOwner()
		owner.delayed[field] = true
		owner.rows = []any{tag{name: "x"}, tag{name: "y", sliced: true}}
		d := NewDelayedList[tag](nil, true, false, Settings{})
		require.NoError(t, d.SetOwner(newFakeTable().attach(4, owner), field))
		d.ChangeTracker().StartTracking()

		d.Add(tag{name: "a"})
		removed, err := d.Remove(tag{name: "y", sliced: true})
		require.NoError(t, err)
		assert.True(t, removed)

		assert.Equal(t, 1, owner.loads)
		assert.False(t, d.ChangeTracker().IsTracking())
		assert.Equal(t, []tag{{name: "x"}, {name: "a"}}, d.Values())
	})
}

func TestDelayedSet_UnhashableAddLoadsFirst(t *testing.T) {
	owner := newFakeOwner()
	owner.delayed[field] = true
	owner.rows = []any{tag{name: "x"}}
	d := NewDelayedSet[tag](func(container.Comparator[tag]) container.Set[tag] {
		return container.NewHashSet[tag]()
	}, nil, nil, true, false, Settings{})
	require.NoError(t, d.SetOwner(newFakeTable().attach(5, owner), field))
	d.ChangeTracker().StartTracking()

	d.Add(tag{name: "a"})
	d.Remove(tag{name: "x"})
	_, err := d.Add(tag{name: "b", sliced: true})
	require.NoError(t, err)

	assert.Equal(t, 1, owner.loads)
	assert.False(t, d.ChangeTracker().IsTracking())
	assert.ElementsMatch(t, []tag{{name: "a"}, {name: "b", sliced: true}}, d.Values())
}
