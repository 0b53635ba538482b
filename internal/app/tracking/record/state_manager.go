package record

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
	"github.com/light-bringer/changeproxy/internal/app/tracking/manager"
	"github.com/light-bringer/changeproxy/internal/app/tracking/proxy"
)

// RemovalListener is told about every element or map key that leaves a
// container field, for inverse relationship maintenance.
type RemovalListener func(field string, value any, isKey bool)

// StateManager holds the field values of one managed record and answers the
// callbacks of the proxies installed in them.
//
// A StateManager is not safe for concurrent use.
type StateManager struct {
	table   *Table
	id      contracts.RecordID
	key     string
	fields  []Field
	values  []any
	delayed []bool
	dirty   *dirtySet
	loader  contracts.FieldLoader
	session contracts.Session
	removed RemovalListener
	logger  *log.Logger
}

var _ contracts.OwnerRecord = (*StateManager)(nil)

func (sm *StateManager) ID() contracts.RecordID { return sm.id }

// Key is the record's primary key in the store.
func (sm *StateManager) Key() string { return sm.key }

// Handle returns the non-owning reference proxies keep to this record.
func (sm *StateManager) Handle() contracts.Handle {
	return contracts.NewHandle(sm.table, sm.id)
}

func (sm *StateManager) Fields() []Field { return sm.fields }

// FieldIndex returns the index of the named field.
func (sm *StateManager) FieldIndex(name string) (int, error) {
	for i, f := range sm.fields {
		if f.Name == name {
			return i, nil
		}
	}
	return -1, errors.Wrapf(ErrUnknownField, "%q on record %s", name, sm.key)
}

func (sm *StateManager) checkField(field int) error {
	if field < 0 || field >= len(sm.fields) {
		return errors.Wrapf(ErrUnknownField, "index %d on record %s", field, sm.key)
	}
	return nil
}

// Value returns the current value of a field.
func (sm *StateManager) Value(field int) any {
	if sm.checkField(field) != nil {
		return nil
	}
	return sm.values[field]
}

// Session is nil while the record is detached.
func (sm *StateManager) Session() contracts.Session { return sm.session }

// OnRemove installs the removal listener.
func (sm *StateManager) OnRemove(l RemovalListener) { sm.removed = l }

func (sm *StateManager) Dirty(field int) {
	if sm.checkField(field) == nil {
		sm.dirty.mark(field)
	}
}

func (sm *StateManager) Removed(field int, value any, isKey bool) {
	if sm.removed == nil || sm.checkField(field) != nil {
		return
	}
	sm.removed(sm.fields[field].Name, value, isKey)
}

func (sm *StateManager) IsDelayed(field int) bool {
	return sm.checkField(field) == nil && sm.delayed[field]
}

// LoadDelayedField reads the field's elements through the record's loader.
// A session in the request takes precedence over the record's own; loader
// errors are returned unchanged.
func (sm *StateManager) LoadDelayedField(ctx context.Context, req contracts.LoadRequest) error {
	if err := sm.checkField(req.Field); err != nil {
		return err
	}
	f := sm.fields[req.Field]
	if sm.loader == nil || f.Decode == nil {
		return errors.Wrapf(ErrNotLoadable, "%s.%s", sm.key, f.Name)
	}
	sess := req.Session
	if sess == nil {
		sess = sm.session
	}
	if sess == nil {
		return errors.WithHint(
			errors.Wrapf(ErrDetached, "load %s.%s", sm.key, f.Name),
			"attach the record or configure a session opener on the manager")
	}

	err := sm.loader.LoadField(ctx, sess, contracts.FieldLoad{
		OwnerKey: sm.key,
		Field:    f.Name,
		Decode:   f.Decode,
		Sink:     req.Sink,
	})
	if err != nil {
		return err
	}
	sm.delayed[req.Field] = false
	sm.logger.Debug("field loaded", "record", sm.key, "field", f.Name, "session", sess.ID())
	return nil
}

// Install places v in a field as loaded from the store: a proxy value is
// owned by the record and starts tracking, and the field is not dirtied.
// A delayed field is loaded on first use by its proxy.
func (sm *StateManager) Install(field int, v any, delayed bool) error {
	if err := sm.checkField(field); err != nil {
		return err
	}
	p, isProxy := v.(proxy.Proxy)
	if isProxy {
		if err := p.SetOwner(sm.Handle(), field); err != nil {
			return err
		}
	}
	sm.release(field, v)

	// The flag must be set before tracking starts: an unloaded delayed proxy
	// asks the record whether its field is still delayed.
	sm.delayed[field] = delayed
	if isProxy {
		if ct := p.ChangeTracker(); ct != nil {
			ct.StartTracking()
		}
	}
	sm.values[field] = v
	return nil
}

// SetField assigns a new value to a field and dirties it.
func (sm *StateManager) SetField(field int, v any) error {
	if err := sm.Install(field, v, false); err != nil {
		return err
	}
	sm.dirty.mark(field)
	return nil
}

// release detaches the proxy currently held by field unless it is next.
func (sm *StateManager) release(field int, next any) {
	p, ok := sm.values[field].(proxy.Proxy)
	if !ok || p == next {
		return
	}
	if p.OwnerHandle() == sm.Handle() && p.OwnerField() == field {
		_ = p.SetOwner(contracts.Handle{}, -1)
	}
}

// Detach drops the record's session and releases its proxies. Delayed
// proxies remember the record and can still load through a transient
// session.
func (sm *StateManager) Detach() {
	sm.session = nil
	for i, v := range sm.values {
		if p, ok := v.(proxy.Proxy); ok && p.OwnerField() == i {
			_ = p.SetOwner(contracts.Handle{}, -1)
		}
	}
	sm.logger.Debug("record detached", "record", sm.key)
}

// Attach binds the record to sess and takes its proxies back.
func (sm *StateManager) Attach(sess contracts.Session) error {
	sm.session = sess
	for i, v := range sm.values {
		p, ok := v.(proxy.Proxy)
		if !ok {
			continue
		}
		if err := p.SetOwner(sm.Handle(), i); err != nil {
			return err
		}
	}
	return nil
}

// DirtyFields returns the names of the modified fields in declaration order.
func (sm *StateManager) DirtyFields() []string {
	idx := sm.dirty.sorted()
	names := make([]string, len(idx))
	for i, f := range idx {
		names[i] = sm.fields[f].Name
	}
	return names
}

func (sm *StateManager) IsDirty(field int) bool { return sm.dirty.dirty(field) }

func (sm *StateManager) HasChanges() bool { return !sm.dirty.empty() }

// ClearDirty forgets modifications after a successful flush. Every proxy
// with a tracker tracks again from here, including trackers that switched
// themselves off, and keeps the sequence the flush left behind.
func (sm *StateManager) ClearDirty() {
	sm.dirty.clear()
	for _, v := range sm.values {
		p, ok := v.(proxy.Proxy)
		if !ok {
			continue
		}
		if ct := p.ChangeTracker(); ct != nil {
			ct.StartTracking()
		}
	}
}

// Snapshot is a copy of a record's field values for rollback.
type Snapshot struct {
	values  []any
	delayed []bool
}

// Snapshot copies every field. Proxies contribute an unproxied copy of their
// contents.
func (sm *StateManager) Snapshot() (Snapshot, error) {
	s := Snapshot{values: make([]any, len(sm.values)), delayed: make([]bool, len(sm.delayed))}
	copy(s.delayed, sm.delayed)
	for i, v := range sm.values {
		c, err := manager.CopyCustom(v)
		if err != nil {
			return Snapshot{}, errors.Wrapf(err, "snapshot %s.%s", sm.key, sm.fields[i].Name)
		}
		s.values[i] = c
	}
	return s, nil
}

// Restore puts the snapshot's values back and clears the dirty set. Proxies
// held before are released; restored containers are plain until re-proxied.
func (sm *StateManager) Restore(s Snapshot) error {
	if len(s.values) != len(sm.values) {
		return errors.Newf("snapshot has %d fields, record %s has %d", len(s.values), sm.key, len(sm.values))
	}
	for i := range sm.values {
		sm.release(i, nil)
	}
	copy(sm.values, s.values)
	copy(sm.delayed, s.delayed)
	sm.dirty.clear()
	return nil
}
