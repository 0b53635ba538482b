package repo

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
)

type fieldRef struct {
	owner string
	field string
}

type memRow struct {
	key     string
	seq     int64
	payload []byte
	keyRaw  []byte
}

// MemoryStore keeps container fields in process memory with the same row
// layout as ElementRepo. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	elements map[fieldRef]map[string]memRow
	entries  map[fieldRef]map[string]memRow
}

var (
	_ Store                   = (*MemoryStore)(nil)
	_ contracts.SessionOpener = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		elements: make(map[fieldRef]map[string]memRow),
		entries:  make(map[fieldRef]map[string]memRow),
	}
}

type memSession struct {
	id     string
	closed bool
}

func (s *memSession) ID() string     { return s.id }
func (s *memSession) IsClosed() bool { return s.closed }
func (s *memSession) Close() error   { s.closed = true; return nil }

func (s *MemoryStore) OpenSession(context.Context) (contracts.Session, error) {
	return &memSession{id: uuid.NewString()}, nil
}

func checkSession(sess contracts.Session) error {
	if sess != nil && sess.IsClosed() {
		return fmt.Errorf("session %s: %w", sess.ID(), ErrSessionClosed)
	}
	return nil
}

// rows returns a field's rows ordered by sequence, then key.
func (s *MemoryStore) rows(table map[fieldRef]map[string]memRow, ref fieldRef) []memRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := lo.Values(table[ref])
	slices.SortFunc(out, func(a, b memRow) int {
		return cmp.Or(cmp.Compare(a.seq, b.seq), strings.Compare(a.key, b.key))
	})
	return out
}

func (s *MemoryStore) LoadField(ctx context.Context, sess contracts.Session, req contracts.FieldLoad) error {
	if err := checkSession(sess); err != nil {
		return err
	}
	for _, row := range s.rows(s.elements, fieldRef{req.OwnerKey, req.Field}) {
		if err := ctx.Err(); err != nil {
			return err
		}
		elem, err := req.Decode(row.payload)
		if err != nil {
			return err
		}
		if err := req.Sink.Append(elem); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) ReadEntries(ctx context.Context, sess contracts.Session, owner, field string, fn func(key, value []byte) error) error {
	if err := checkSession(sess); err != nil {
		return err
	}
	for _, row := range s.rows(s.entries, fieldRef{owner, field}) {
		if err := fn(row.keyRaw, row.payload); err != nil {
			return err
		}
	}
	return nil
}

// Commit applies every write of the batch under one lock and advances the
// batch's trackers.
func (s *MemoryStore) Commit(_ context.Context, b *Batch) error {
	s.mu.Lock()
	for _, f := range b.Flushes() {
		table := s.elements
		if f.Target == TargetEntries {
			table = s.entries
		}
		s.apply(table, fieldRef{f.Owner, f.Field}, f.Writes)
	}
	s.mu.Unlock()

	b.Done()
	return nil
}

func (s *MemoryStore) apply(table map[fieldRef]map[string]memRow, ref fieldRef, writes []Write) {
	for _, w := range writes {
		switch w.Op {
		case OpClear:
			delete(table, ref)
		case OpDelete:
			delete(table[ref], w.Key)
		case OpUpsert:
			rows, ok := table[ref]
			if !ok {
				rows = make(map[string]memRow)
				table[ref] = rows
			}
			rows[w.Key] = memRow{key: w.Key, seq: w.Seq, payload: w.Payload, keyRaw: w.KeyPayload}
		}
	}
}

// Len returns the number of stored rows of a collection field.
func (s *MemoryStore) Len(owner, field string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements[fieldRef{owner, field}])
}
