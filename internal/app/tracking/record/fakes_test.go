package record

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
)

type fakeSession struct {
	id     string
	closed bool
}

func newFakeSession() *fakeSession { return &fakeSession{id: uuid.NewString()} }

func (s *fakeSession) ID() string     { return s.id }
func (s *fakeSession) IsClosed() bool { return s.closed }
func (s *fakeSession) Close() error   { s.closed = true; return nil }

type fakeOpener struct {
	opened []*fakeSession
}

func (o *fakeOpener) OpenSession(context.Context) (contracts.Session, error) {
	s := newFakeSession()
	o.opened = append(o.opened, s)
	return s, nil
}

// fakeLoader serves JSON rows keyed by "owner/field".
type fakeLoader struct {
	rows     map[string][]any
	err      error
	sessions []contracts.Session
}

func newFakeLoader() *fakeLoader { return &fakeLoader{rows: make(map[string][]any)} }

func (l *fakeLoader) put(owner, field string, elems ...any) {
	l.rows[owner+"/"+field] = elems
}

func (l *fakeLoader) LoadField(_ context.Context, sess contracts.Session, req contracts.FieldLoad) error {
	l.sessions = append(l.sessions, sess)
	if l.err != nil {
		return l.err
	}
	for _, e := range l.rows[req.OwnerKey+"/"+req.Field] {
		raw, err := json.Marshal(e)
		if err != nil {
			return err
		}
		v, err := req.Decode(raw)
		if err != nil {
			return err
		}
		if err := req.Sink.Append(v); err != nil {
			return err
		}
	}
	return nil
}
