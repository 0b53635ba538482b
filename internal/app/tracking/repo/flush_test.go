package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/changeproxy/internal/app/tracking/manager"
	"github.com/light-bringer/changeproxy/internal/app/tracking/proxy"
	"github.com/light-bringer/changeproxy/internal/pkg/logging"
)

func newManager(track bool) *manager.Manager {
	cfg := manager.DefaultConfig()
	cfg.TrackChanges = track
	return manager.New(cfg, manager.WithLogger(logging.Discard()))
}

// tracked returns a proxy of kind holding initial, tracking from there on.
func tracked(t *testing.T, kind manager.Kind, initial ...string) proxy.ProxyCollection[string] {
	t.Helper()
	p, err := manager.NewCollectionProxy[string](newManager(true), kind, nil, nil, false)
	require.NoError(t, err)
	_, err = p.AddAll(initial...)
	require.NoError(t, err)
	p.ChangeTracker().StartTracking()
	return p
}

func TestPlanCollection_UnorderedDeltas(t *testing.T) {
	p := tracked(t, manager.KindSet, "x", "y")
	_, err := p.Add("a")
	require.NoError(t, err)
	_, err = p.Remove("x")
	require.NoError(t, err)

	f, err := PlanCollection(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, StrategyDelta, f.Strategy)
	assert.Equal(t, TargetElements, f.Target)
	assert.Equal(t, -1, f.NextSequence)
	assert.Equal(t, []Write{
		{Op: OpUpsert, Key: `"a"`, Payload: []byte(`"a"`)},
		{Op: OpDelete, Key: `"x"`},
	}, f.Writes)
}

func TestPlanCollection_NothingChanged(t *testing.T) {
	p := tracked(t, manager.KindSet, "x")

	f, err := PlanCollection(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, StrategyNone, f.Strategy)

	b := NewBatch()
	require.NoError(t, AddCollection(context.Background(), b, "order-1", "tags", p))
	assert.True(t, b.Empty())
}

func TestPlanCollection_OrderedAppend(t *testing.T) {
	p := tracked(t, manager.KindList, "a", "b")
	_, err := p.AddAll("c", "c")
	require.NoError(t, err)

	f, err := PlanCollection(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, StrategyAppend, f.Strategy)
	assert.Equal(t, 4, f.NextSequence)
	assert.Equal(t, []Write{
		{Op: OpUpsert, Key: "000000000002", Seq: 2, Payload: []byte(`"c"`)},
		{Op: OpUpsert, Key: "000000000003", Seq: 3, Payload: []byte(`"c"`)},
	}, f.Writes)

	f.Done(p.ChangeTracker())
	assert.Equal(t, 4, p.ChangeTracker().NextSequence())
}

func TestPlanCollection_Rewrite(t *testing.T) {
	t.Run("ordered removal", func(t *testing.T) {
		p := tracked(t, manager.KindList, "a", "b", "c")
		_, err := p.Remove("b")
		require.NoError(t, err)

		f, err := PlanCollection(context.Background(), p)
		require.NoError(t, err)

		assert.Equal(t, StrategyRewrite, f.Strategy)
		assert.Equal(t, 2, f.NextSequence)
		assert.Equal(t, []Write{
			{Op: OpClear},
			{Op: OpUpsert, Key: "000000000000", Seq: 0, Payload: []byte(`"a"`)},
			{Op: OpUpsert, Key: "000000000001", Seq: 1, Payload: []byte(`"c"`)},
		}, f.Writes)
	})

	t.Run("untracked set keys rows by element", func(t *testing.T) {
		p, err := manager.NewCollectionProxy[string](newManager(false), manager.KindLinkedHashSet, nil, nil, false)
		require.NoError(t, err)
		_, err = p.AddAll("b", "a")
		require.NoError(t, err)

		f, err := PlanCollection(context.Background(), p)
		require.NoError(t, err)

		assert.Equal(t, StrategyRewrite, f.Strategy)
		assert.Equal(t, []Write{
			{Op: OpClear},
			{Op: OpUpsert, Key: `"b"`, Seq: 0, Payload: []byte(`"b"`)},
			{Op: OpUpsert, Key: `"a"`, Seq: 1, Payload: []byte(`"a"`)},
		}, f.Writes)
	})

	t.Run("tracking disabled by a whole-container mutation", func(t *testing.T) {
		p := tracked(t, manager.KindList, "a")
		require.NoError(t, p.Clear())

		f, err := PlanCollection(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, StrategyRewrite, f.Strategy)
		assert.Equal(t, []Write{{Op: OpClear}}, f.Writes)
	})
}

func TestPlanMap(t *testing.T) {
	newMap := func(t *testing.T, track bool) proxy.ProxyMap[string, int] {
		t.Helper()
		p, err := manager.NewMapProxy[string, int](newManager(track), manager.KindMap, nil, nil, nil, false)
		require.NoError(t, err)
		_, _, err = p.Put("keep", 1)
		require.NoError(t, err)
		_, _, err = p.Put("drop", 2)
		require.NoError(t, err)
		if track {
			p.ChangeTracker().StartTracking()
		}
		return p
	}

	t.Run("tracked keys", func(t *testing.T) {
		p := newMap(t, true)
		_, _, err := p.Put("new", 3)
		require.NoError(t, err)
		_, _, err = p.Put("keep", 10)
		require.NoError(t, err)
		_, _, err = p.Remove("drop")
		require.NoError(t, err)

		f, err := PlanMap(p)
		require.NoError(t, err)

		assert.Equal(t, TargetEntries, f.Target)
		assert.Equal(t, StrategyDelta, f.Strategy)
		assert.Equal(t, []Write{
			{Op: OpUpsert, Key: `"new"`, Payload: []byte(`3`), KeyPayload: []byte(`"new"`)},
			{Op: OpUpsert, Key: `"keep"`, Payload: []byte(`10`), KeyPayload: []byte(`"keep"`)},
			{Op: OpDelete, Key: `"drop"`},
		}, f.Writes)
	})

	t.Run("untracked", func(t *testing.T) {
		p := newMap(t, false)

		f, err := PlanMap(p)
		require.NoError(t, err)

		assert.Equal(t, StrategyRewrite, f.Strategy)
		require.Len(t, f.Writes, 3)
		assert.Equal(t, Write{Op: OpClear}, f.Writes[0])
		assert.ElementsMatch(t, []Write{
			{Op: OpUpsert, Key: `"keep"`, Payload: []byte(`1`), KeyPayload: []byte(`"keep"`)},
			{Op: OpUpsert, Key: `"drop"`, Payload: []byte(`2`), KeyPayload: []byte(`"drop"`)},
		}, f.Writes[1:])
	})
}

func TestKeyedByElement(t *testing.T) {
	assert.False(t, keyedByElement(tracked(t, manager.KindList)))
	assert.True(t, keyedByElement(tracked(t, manager.KindSet)))
	assert.True(t, keyedByElement(tracked(t, manager.KindLinkedHashSet)))

	cfg := manager.DefaultConfig()
	cfg.DelayCollectionLoading = true
	m := manager.New(cfg, manager.WithLogger(logging.Discard()))
	delayed, err := manager.NewCollectionProxy[string](m, manager.KindSet, nil, nil, false)
	require.NoError(t, err)
	_, isDelayed := delayed.(proxy.DelayedProxy)
	require.True(t, isDelayed)
	assert.True(t, keyedByElement(delayed))

	assert.False(t, keyedByElement(orderedList{tracked(t, manager.KindList)}))
}

// orderedList is a positional collection that reports an order.
type orderedList struct {
	proxy.ProxyCollection[string]
}

func (orderedList) Ordered() bool { return true }
