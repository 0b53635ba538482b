package proxy

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
)

type removal struct {
	field int
	value any
	isKey bool
}

// fakeOwner records every notification and serves loads from rows.
type fakeOwner struct {
	dirty    []int
	removed  []removal
	delayed  map[int]bool
	rows     []any
	loadErr  error
	loads    int
	sessions []contracts.Session
	deadline bool
}

func newFakeOwner() *fakeOwner {
	return &fakeOwner{delayed: make(map[int]bool)}
}

func (o *fakeOwner) Dirty(field int) { o.dirty = append(o.dirty, field) }

func (o *fakeOwner) Removed(field int, value any, isKey bool) {
	o.removed = append(o.removed, removal{field: field, value: value, isKey: isKey})
}

func (o *fakeOwner) IsDelayed(field int) bool { return o.delayed[field] }

func (o *fakeOwner) LoadDelayedField(ctx context.Context, req contracts.LoadRequest) error {
	o.loads++
	_, o.deadline = ctx.Deadline()
	o.sessions = append(o.sessions, req.Session)
	if o.loadErr != nil {
		return o.loadErr
	}
	for _, r := range o.rows {
		if err := req.Sink.Append(r); err != nil {
			return err
		}
	}
	o.delayed[req.Field] = false
	return nil
}

func (o *fakeOwner) removedValues() []any {
	out := make([]any, 0, len(o.removed))
	for _, r := range o.removed {
		out = append(out, r.value)
	}
	return out
}

type fakeTable struct {
	records map[contracts.RecordID]contracts.OwnerRecord
}

func newFakeTable() *fakeTable {
	return &fakeTable{records: make(map[contracts.RecordID]contracts.OwnerRecord)}
}

func (t *fakeTable) Lookup(id contracts.RecordID) (contracts.OwnerRecord, bool) {
	rec, ok := t.records[id]
	return rec, ok
}

// attach registers owner under id and returns its handle.
func (t *fakeTable) attach(id contracts.RecordID, owner contracts.OwnerRecord) contracts.Handle {
	t.records[id] = owner
	return contracts.NewHandle(t, id)
}

type mockSession struct {
	mock.Mock
	closed bool
}

func (s *mockSession) ID() string { return "sess-1" }

func (s *mockSession) IsClosed() bool { return s.closed }

func (s *mockSession) Close() error {
	s.closed = true
	return s.Called().Error(0)
}

type mockOpener struct {
	mock.Mock
}

func (m *mockOpener) OpenSession(ctx context.Context) (contracts.Session, error) {
	args := m.Called(ctx)
	sess, _ := args.Get(0).(contracts.Session)
	return sess, args.Error(1)
}
