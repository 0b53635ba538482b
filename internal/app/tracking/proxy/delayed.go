package proxy

import (
	"context"
	"reflect"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
	"github.com/light-bringer/changeproxy/internal/app/tracking/tracker"
	"github.com/light-bringer/changeproxy/internal/pkg/clock"
	"github.com/light-bringer/changeproxy/internal/pkg/container"
	"github.com/light-bringer/changeproxy/internal/pkg/logging"
	"github.com/light-bringer/changeproxy/internal/pkg/metrics"
)

// LoadSettings configures how delayed proxies load.
type LoadSettings struct {
	// Sessions opens a transient session when a detached proxy must load.
	// Without it the owner is asked to load on its own session.
	Sessions contracts.SessionOpener
	// Timeout bounds implicit loads. Zero means no bound.
	Timeout time.Duration
	Logger  *log.Logger
	Clock   clock.Clock
}

func (s LoadSettings) logger() *log.Logger {
	if s.Logger == nil {
		return logging.Default()
	}
	return s.Logger
}

func (s LoadSettings) clock() clock.Clock {
	if s.Clock == nil {
		return clock.NewRealClock()
	}
	return s.Clock
}

// DelayedProxy is a collection proxy whose contents load on first use.
type DelayedProxy interface {
	// Load materializes the contents now. It is a no-op once loaded.
	Load(ctx context.Context) error
	IsLoaded() bool
	// DelayedOwner is the owner the proxy had before it was detached.
	DelayedOwner() contracts.Handle
	DelayedField() int
}

type loadState int8

const (
	unloaded loadState = iota
	// loading lets the owner's loader write the backing container
	// directly; informed operations in this state do not load again.
	loading
	loaded
)

func (s loadState) String() string {
	switch s {
	case unloaded:
		return "unloaded"
	case loading:
		return "loading"
	default:
		return "loaded"
	}
}

// delayedCore is the load state machine shared by the delayed proxies.
type delayedCore[E comparable] struct {
	state        loadState
	owner        *owned
	backing      container.Collection[E]
	tracker      *tracker.CollectionTracker[E]
	delayedOwner contracts.Handle
	delayedField int
	settings     LoadSettings
	err          error
}

func (c *delayedCore[E]) setOwner(h contracts.Handle, field int) error {
	if h.IsZero() && !c.owner.handle.IsZero() {
		c.delayedOwner, c.delayedField = c.owner.handle, c.owner.field
	}
	return c.owner.SetOwner(h, field)
}

func (c *delayedCore[E]) loadTarget() (contracts.Handle, int) {
	if !c.owner.handle.IsZero() {
		return c.owner.handle, c.owner.field
	}
	return c.delayedOwner, c.delayedField
}

// pending reports whether the contents still have to be loaded. A proxy
// whose owner has nothing delayed is marked loaded on the spot.
func (c *delayedCore[E]) pending() bool {
	if c.state != unloaded {
		return false
	}
	h, field := c.loadTarget()
	if h.IsZero() {
		c.state = loaded
		return false
	}
	if rec := h.Resolve(); rec != nil && !rec.IsDelayed(field) {
		c.state = loaded
		return false
	}
	return true
}

// blind reports whether a simple add or remove can be recorded without
// loading.
func (c *delayedCore[E]) blind() bool {
	return c.tracker != nil && c.tracker.IsTracking() && c.pending()
}

// blindAdd reports whether e can be added without loading. An add that
// would switch tracking off must see the loaded contents, or the blind
// deltas recorded so far would be lost with the tracker.
func (c *delayedCore[E]) blindAdd(e E) bool {
	return c.blind() && !c.tracker.DisablesAdd(e)
}

func (c *delayedCore[E]) blindRemove(e E) bool {
	return c.blind() && !c.tracker.DisablesRemove(e)
}

// blindDeltas are the changes recorded before the contents were loaded.
type blindDeltas[E comparable] struct {
	added, removed, changed []E
}

func (b blindDeltas[E]) len() int {
	return len(b.added) + len(b.removed) + len(b.changed)
}

// Len is the size the tracker sees: unknown while unloaded.
func (c *delayedCore[E]) Len() int {
	if c.pending() {
		return -1
	}
	return c.backing.Len()
}

func (c *delayedCore[E]) Contains(e E) bool { return c.backing.Contains(e) }

// ensure runs an implicit load and records its outcome in err.
func (c *delayedCore[E]) ensure() bool {
	if !c.pending() {
		return true
	}
	ctx := context.Background()
	if c.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.settings.Timeout)
		defer cancel()
	}
	c.err = c.load(ctx)
	return c.err == nil
}

func (c *delayedCore[E]) load(ctx context.Context) error {
	if !c.pending() {
		return nil
	}
	h, field := c.loadTarget()
	rec := h.Resolve()
	if rec == nil {
		return errors.WithHint(
			errors.Wrapf(ErrNoLoadOwner, "record %d field %d", h.ID(), field),
			"the owning record was evicted before its delayed field was read")
	}

	start := c.settings.clock().Now()
	c.state = loading
	wasTracking := c.tracker != nil && c.tracker.IsTracking()
	var deltas blindDeltas[E]
	if wasTracking {
		deltas = blindDeltas[E]{
			added:   c.tracker.Added(),
			removed: c.tracker.Removed(),
			changed: c.tracker.Changed(),
		}
	}
	if c.tracker != nil {
		c.tracker.StopTracking()
	}
	c.backing.Clear()

	req := contracts.LoadRequest{Field: field, Sink: sink[E]{c.backing}}
	if c.owner.handle.IsZero() && c.settings.Sessions != nil {
		sess, err := c.settings.Sessions.OpenSession(ctx)
		if err != nil {
			c.revert(deltas, wasTracking)
			metrics.DelayedLoads.WithLabelValues("error").Inc()
			return errors.Wrap(err, "open transient session")
		}
		metrics.TransientSessions.Inc()
		defer c.closeSession(sess)
		req.Session = sess
	}

	if err := rec.LoadDelayedField(ctx, req); err != nil {
		c.revert(deltas, wasTracking)
		metrics.DelayedLoads.WithLabelValues("error").Inc()
		c.settings.logger().Debug("delayed load failed", "record", h.ID(), "field", field, "err", err)
		return err
	}

	c.state = loaded
	c.err = nil
	if wasTracking {
		c.tracker.StartTracking()
		// a removed and re-added element must be present whether or not it
		// was stored
		for _, e := range append(deltas.added, deltas.changed...) {
			if c.backing.Add(e) {
				c.tracker.RecordAdd(e)
			}
		}
		for _, e := range deltas.removed {
			if c.backing.Remove(e) {
				c.tracker.RecordRemove(e)
			}
		}
	}
	metrics.DelayedLoads.WithLabelValues("ok").Inc()
	metrics.DelayedLoadDuration.Observe(clock.Since(c.settings.clock(), start).Seconds())
	c.settings.logger().Debug("delayed field loaded",
		"record", h.ID(), "field", field, "size", c.backing.Len(),
		"replayed", deltas.len())
	return nil
}

// revert puts a failed load back to unloaded with its blind deltas intact.
func (c *delayedCore[E]) revert(deltas blindDeltas[E], wasTracking bool) {
	c.state = unloaded
	c.backing.Clear()
	if !wasTracking {
		return
	}
	c.tracker.StartTracking()
	for _, e := range deltas.added {
		c.tracker.RecordAdd(e)
	}
	for _, e := range deltas.removed {
		c.tracker.RecordRemove(e)
	}
	for _, e := range deltas.changed {
		c.tracker.RecordRemove(e)
		c.tracker.RecordAdd(e)
	}
}

func (c *delayedCore[E]) closeSession(sess contracts.Session) {
	if sess.IsClosed() {
		return
	}
	if err := sess.Close(); err != nil {
		c.settings.logger().Warn("closing transient session", "session", sess.ID(), "err", err)
	}
}

// sink writes loaded elements straight into the backing container.
type sink[E comparable] struct {
	c container.Collection[E]
}

func (s sink[E]) Append(elem any) error {
	if err := DefaultTypeChecker.AssertAllowed(elem, reflect.TypeFor[E]()); err != nil {
		return err
	}
	v, _ := elem.(E)
	s.c.Add(v)
	return nil
}
